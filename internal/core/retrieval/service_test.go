package retrieval

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinford/docrag/internal/core/ingestion"
)

// stubSearchRepo はテスト用のRepository実装
type stubSearchRepo struct {
	hits      []*SearchHit
	lastLimit int
	count     int64
	failWith  error
}

func (r *stubSearchRepo) SearchPoints(ctx context.Context, queryVector []float32, limit int) ([]*SearchHit, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.lastLimit = limit
	if len(r.hits) > limit {
		return r.hits[:limit], nil
	}
	return r.hits, nil
}

func (r *stubSearchRepo) CountPoints(ctx context.Context) (int64, error) {
	return r.count, nil
}

// stubQueryEmbedder はテスト用のEmbedder実装
type stubQueryEmbedder struct {
	calls     int
	failTimes int
	failWith  error
}

func (e *stubQueryEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	if e.calls <= e.failTimes {
		return nil, e.failWith
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func TestService_Retrieve_ThresholdFiltering(t *testing.T) {
	// スコア下限未満のヒットは結果から除外される
	repo := &stubSearchRepo{hits: []*SearchHit{
		{SourceDocument: "a.txt", SequenceIndex: 0, Content: "high", Score: 0.9},
		{SourceDocument: "b.txt", SequenceIndex: 5, Content: "mid", Score: 0.5},
		{SourceDocument: "c.txt", SequenceIndex: 2, Content: "low", Score: 0.1},
	}}
	svc := NewService(repo, &stubQueryEmbedder{},
		WithRetrievalConfig(Config{TopK: 3, ScoreThreshold: 0.30, ExcerptLength: 200}),
	)

	results, err := svc.Retrieve(context.Background(), RetrieveParams{Question: "質問"})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "a.txt", results[0].SourceDocument)
	assert.Equal(t, "b.txt", results[1].SourceDocument)
}

func TestService_Retrieve_NoRelevantContext(t *testing.T) {
	// 閾値を超えるヒットがない場合は空スライスを返す（エラーではない）
	repo := &stubSearchRepo{hits: []*SearchHit{
		{SourceDocument: "a.txt", SequenceIndex: 0, Content: "weak", Score: 0.05},
	}}
	svc := NewService(repo, &stubQueryEmbedder{})

	results, err := svc.Retrieve(context.Background(), RetrieveParams{Question: "無関係な質問"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestService_Retrieve_TopKOverride(t *testing.T) {
	// TopK指定はストア検索の件数に反映される
	repo := &stubSearchRepo{hits: []*SearchHit{
		{SourceDocument: "a.txt", SequenceIndex: 0, Content: "x", Score: 0.9},
	}}
	svc := NewService(repo, &stubQueryEmbedder{})

	_, err := svc.Retrieve(context.Background(), RetrieveParams{
		Question: "質問",
		TopK:     mo.Some(7),
	})
	require.NoError(t, err)
	assert.Equal(t, 7, repo.lastLimit)
}

func TestService_Retrieve_DedupAdjacentChunks(t *testing.T) {
	// 同一ドキュメントの隣接チャンクはスコアの高い方だけが残る
	repo := &stubSearchRepo{hits: []*SearchHit{
		{SourceDocument: "doc.txt", SequenceIndex: 3, Content: "best", Score: 0.90},
		{SourceDocument: "doc.txt", SequenceIndex: 4, Content: "overlap", Score: 0.85},
		{SourceDocument: "doc.txt", SequenceIndex: 9, Content: "far", Score: 0.80},
		{SourceDocument: "other.txt", SequenceIndex: 4, Content: "other doc", Score: 0.70},
	}}
	svc := NewService(repo, &stubQueryEmbedder{},
		WithRetrievalConfig(Config{TopK: 10, ScoreThreshold: 0.30, ExcerptLength: 200}),
	)

	results, err := svc.Retrieve(context.Background(), RetrieveParams{Question: "質問"})
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, 3, results[0].SequenceIndex)
	assert.Equal(t, 9, results[1].SequenceIndex)
	assert.Equal(t, "other.txt", results[2].SourceDocument)
}

func TestService_Retrieve_DedupDisabled(t *testing.T) {
	// DisableDedup指定時は隣接チャンクも残る
	repo := &stubSearchRepo{hits: []*SearchHit{
		{SourceDocument: "doc.txt", SequenceIndex: 3, Content: "a", Score: 0.90},
		{SourceDocument: "doc.txt", SequenceIndex: 4, Content: "b", Score: 0.85},
	}}
	svc := NewService(repo, &stubQueryEmbedder{},
		WithRetrievalConfig(Config{TopK: 10, ScoreThreshold: 0.30, ExcerptLength: 200}),
	)

	results, err := svc.Retrieve(context.Background(), RetrieveParams{
		Question:     "質問",
		DisableDedup: true,
	})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestService_Retrieve_OrderedByScore(t *testing.T) {
	// 結果はスコア降順、同点は source → sequence 昇順で決定的に並ぶ
	repo := &stubSearchRepo{hits: []*SearchHit{
		{SourceDocument: "b.txt", SequenceIndex: 0, Content: "x", Score: 0.80},
		{SourceDocument: "a.txt", SequenceIndex: 7, Content: "y", Score: 0.80},
		{SourceDocument: "a.txt", SequenceIndex: 3, Content: "z", Score: 0.95},
	}}
	svc := NewService(repo, &stubQueryEmbedder{},
		WithRetrievalConfig(Config{TopK: 10, ScoreThreshold: 0.30, ExcerptLength: 200}),
	)

	results, err := svc.Retrieve(context.Background(), RetrieveParams{Question: "質問"})
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, 0.95, results[0].Score)
	assert.Equal(t, "a.txt", results[1].SourceDocument)
	assert.Equal(t, 7, results[1].SequenceIndex)
	assert.Equal(t, "b.txt", results[2].SourceDocument)
}

func TestService_Retrieve_ExcerptTruncation(t *testing.T) {
	// 抜粋は設定文字数に切り詰められ、全文は保持される
	longText := strings.Repeat("あ", 300)
	repo := &stubSearchRepo{hits: []*SearchHit{
		{SourceDocument: "doc.txt", SequenceIndex: 0, Content: longText, Score: 0.9},
	}}
	svc := NewService(repo, &stubQueryEmbedder{},
		WithRetrievalConfig(Config{TopK: 3, ScoreThreshold: 0.30, ExcerptLength: 200}),
	)

	results, err := svc.Retrieve(context.Background(), RetrieveParams{Question: "質問"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, longText, results[0].ChunkText)
	assert.Equal(t, strings.Repeat("あ", 200)+"...", results[0].Excerpt)
}

func TestService_Retrieve_EmptyQuestion(t *testing.T) {
	// 空の質問はバリデーションエラー
	svc := NewService(&stubSearchRepo{}, &stubQueryEmbedder{})

	_, err := svc.Retrieve(context.Background(), RetrieveParams{Question: ""})
	assert.Error(t, err)
}

func TestService_Retrieve_RetriesTransientEmbeddingFailure(t *testing.T) {
	// 質問Embeddingの一時障害は有限回リトライされる
	embedder := &stubQueryEmbedder{
		failTimes: 1,
		failWith:  fmt.Errorf("%w: overloaded", ingestion.ErrEmbeddingUnavailable),
	}
	repo := &stubSearchRepo{hits: []*SearchHit{
		{SourceDocument: "a.txt", SequenceIndex: 0, Content: "x", Score: 0.9},
	}}
	svc := NewService(repo, embedder)

	results, err := svc.Retrieve(context.Background(), RetrieveParams{Question: "質問"})
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, 2, embedder.calls)
}

func TestMakeExcerpt(t *testing.T) {
	// 短いテキストはそのまま、長いテキストは省略記号付きで切り詰め
	assert.Equal(t, "short", makeExcerpt("short", 200))
	assert.Equal(t, "abcde", makeExcerpt("abcde", 5))
	assert.Equal(t, "abcde...", makeExcerpt("abcdef", 5))
}
