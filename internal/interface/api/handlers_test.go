package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinford/docrag/internal/core/answer"
	"github.com/jinford/docrag/internal/core/extract"
	"github.com/jinford/docrag/internal/core/ingestion"
	"github.com/jinford/docrag/internal/core/registry"
	"github.com/jinford/docrag/internal/core/retrieval"
	"github.com/jinford/docrag/internal/platform/container"
)

// fakeStore はインメモリのベクトルストア兼レジストリ
type fakeStore struct {
	mu        sync.Mutex
	documents map[string][]ingestion.IndexPoint
	score     float64 // 検索ヒットに付与するスコア
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		documents: make(map[string][]ingestion.IndexPoint),
		score:     0.9,
	}
}

func (s *fakeStore) ReplaceDocument(ctx context.Context, source string, points []ingestion.IndexPoint, ingestedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[source] = points
	return nil
}

func (s *fakeStore) DeleteDocument(ctx context.Context, source string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	points, ok := s.documents[source]
	if !ok {
		return 0, nil
	}
	delete(s.documents, source)
	return len(points), nil
}

func (s *fakeStore) SearchPoints(ctx context.Context, queryVector []float32, limit int) ([]*retrieval.SearchHit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var hits []*retrieval.SearchHit
	for _, points := range s.documents {
		for _, p := range points {
			hits = append(hits, &retrieval.SearchHit{
				SourceDocument: p.Chunk.SourceDocument,
				SequenceIndex:  p.Chunk.SequenceIndex,
				Content:        p.Chunk.Text,
				Score:          s.score,
			})
		}
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (s *fakeStore) CountPoints(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, points := range s.documents {
		total += int64(len(points))
	}
	return total, nil
}

func (s *fakeStore) ListDocuments(ctx context.Context) ([]*registry.DocumentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var records []*registry.DocumentRecord
	for source, points := range s.documents {
		records = append(records, &registry.DocumentRecord{
			SourceDocument: source,
			ChunkCount:     len(points),
			IngestedAt:     time.Now(),
		})
	}
	return records, nil
}

func (s *fakeStore) RebuildFromPoints(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.documents), nil
}

// fakeEmbedder は固定ベクトルを返すEmbedder
type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}

func (fakeEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{0.1, 0.2}
	}
	return vectors, nil
}

func (fakeEmbedder) Dimension() int    { return 2 }
func (fakeEmbedder) MaxBatchSize() int { return 100 }

// fakeLLM は固定回答を返すLLMClient
type fakeLLM struct{}

func (fakeLLM) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	return "テスト回答", nil
}

// wordCounter は簡易トークンカウンタ
type wordCounter struct{}

func (wordCounter) Count(text string) int { return len([]rune(text)) }

func newTestServer(t *testing.T) (*Server, *fakeStore) {
	t.Helper()

	store := newFakeStore()

	c := &container.ServiceContainer{
		IngestionService: ingestion.NewService(extract.NewExtractor(), fakeEmbedder{}, store),
		RetrievalService: retrieval.NewService(store, fakeEmbedder{}),
		AnswerService:    answer.NewService(fakeLLM{}, wordCounter{}),
		RegistryService:  registry.NewService(store),
	}

	return NewServer(c, 0), store
}

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHandleUpload_Success(t *testing.T) {
	// テキストファイルのアップロードでインデックスが更新される
	server, store := newTestServer(t)

	rec := httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(rec, uploadRequest(t, "manual.txt", []byte("マニュアル本文です。")))

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "manual.txt", resp.SourceDocument)
	assert.NotZero(t, resp.ChunksIndexed)
	assert.Contains(t, store.documents, "manual.txt")
}

func TestHandleUpload_UnsupportedFormat(t *testing.T) {
	// 未対応形式は 415
	server, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(rec, uploadRequest(t, "image.png", []byte{0x89}))

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestHandleUpload_MissingFile(t *testing.T) {
	// fileフィールドなしは 400
	server, _ := newTestServer(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	rec := httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleQuery_Success(t *testing.T) {
	// 取り込み済みドキュメントへの質問に回答と出典が返る
	server, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(rec, uploadRequest(t, "doc.txt", []byte("経費精算は月末締めです。")))
	require.Equal(t, http.StatusCreated, rec.Code)

	body, _ := json.Marshal(queryRequest{Question: "経費精算の締め日は？"})
	req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec = httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result answer.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "テスト回答", result.Answer)
	assert.NotEmpty(t, result.Sources)
}

func TestHandleQuery_NoContext(t *testing.T) {
	// ヒットなしの場合も 200 で固定回答が返る
	server, _ := newTestServer(t)

	body, _ := json.Marshal(queryRequest{Question: "何もない質問"})
	req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewReader(body))

	rec := httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result answer.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, answer.NoContextAnswer, result.Answer)
	assert.Empty(t, result.Sources)
}

func TestHandleQuery_ZeroScoreThresholdOverride(t *testing.T) {
	// scoreThreshold: 0 の明示指定は足切りなしとして扱われる
	server, store := newTestServer(t)
	store.score = 0.1 // デフォルト閾値(0.30)未満

	rec := httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(rec, uploadRequest(t, "weak.txt", []byte("関連の弱い本文")))
	require.Equal(t, http.StatusCreated, rec.Code)

	// 未指定の場合はデフォルト閾値で全ヒットが落ちる
	body, _ := json.Marshal(queryRequest{Question: "質問"})
	req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var result answer.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Empty(t, result.Sources)

	// 0 を明示すると閾値が無効化され、ヒットが返る
	zero := 0.0
	body, _ = json.Marshal(queryRequest{Question: "質問", ScoreThreshold: &zero})
	req = httptest.NewRequest(http.MethodPost, "/query", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result.Sources)
}

func TestHandleQuery_EmptyQuestion(t *testing.T) {
	// 質問なしは 400
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleListDocuments(t *testing.T) {
	// ドキュメント一覧が返る
	server, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(rec, uploadRequest(t, "a.txt", []byte("本文A")))
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	rec = httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var records []*registry.DocumentRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "a.txt", records[0].SourceDocument)
}

func TestHandleDeleteDocument(t *testing.T) {
	// 削除は 200、存在しないドキュメントは 404
	server, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(rec, uploadRequest(t, "b.txt", []byte("本文B")))
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodDelete, "/documents/b.txt", nil)
	rec = httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp deleteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "b.txt", resp.SourceDocument)
	assert.NotZero(t, resp.ChunksDeleted)

	req = httptest.NewRequest(http.MethodDelete, "/documents/b.txt", nil)
	rec = httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleStats(t *testing.T) {
	// ドキュメント数とチャンク数が返る
	server, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(rec, uploadRequest(t, "s.txt", []byte(fmt.Sprintf("統計用の本文 %d", 1))))
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec = httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var stats statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Documents)
	assert.NotZero(t, stats.Chunks)
}
