package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jinford/docrag/internal/core/ingestion"
)

const (
	// maxEmbedAttempts は質問Embedding一時障害時の最大試行回数
	maxEmbedAttempts = 3

	// embedBackoffBase はExponential Backoffの基底時間
	embedBackoffBase = 500 * time.Millisecond
)

// Service は検索のビジネスロジックを提供する
type Service struct {
	repo     Repository
	embedder Embedder
	config   Config
	logger   *slog.Logger
}

type serviceOptions struct {
	config Config
	logger *slog.Logger
}

// ServiceOption は Service のオプション設定
type ServiceOption func(*serviceOptions)

// WithRetrievalLogger は Service にロガーを設定する
func WithRetrievalLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// WithRetrievalConfig は検索の既定値を上書きする
func WithRetrievalConfig(cfg Config) ServiceOption {
	return func(o *serviceOptions) {
		o.config = cfg
	}
}

// NewService は新しい Service を作成する
func NewService(repo Repository, embedder Embedder, opts ...ServiceOption) *Service {
	options := serviceOptions{
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	return &Service{
		repo:     repo,
		embedder: embedder,
		config:   options.config,
		logger:   options.logger,
	}
}

// Retrieve は質問に関連するコンテキストをランク順で返す
//
// 手順: 質問のEmbedding → 近傍検索（topK件） → スコア下限で足切り →
// 重複排除 → スコア降順で整列。閾値を超えるヒットがない場合は
// 空のスライスを返す（エラーではない）
func (s *Service) Retrieve(ctx context.Context, params RetrieveParams) ([]*RetrievedContext, error) {
	// バリデーション
	if params.Question == "" {
		return nil, fmt.Errorf("question is required")
	}

	topK := params.TopK.OrElse(s.config.TopK)
	if topK <= 0 {
		topK = s.config.TopK
	}
	threshold := params.ScoreThreshold.OrElse(s.config.ScoreThreshold)

	// 質問をEmbeddingに変換
	queryVector, err := s.embedQuestion(ctx, params.Question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	// ベクトルストアを検索
	hits, err := s.repo.SearchPoints(ctx, queryVector, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	// スコア下限で足切り
	candidates := make([]*SearchHit, 0, len(hits))
	for _, hit := range hits {
		if hit.Score >= threshold {
			candidates = append(candidates, hit)
		}
	}

	// 重複排除: 同一ドキュメントで隣接（または同一）チャンクのヒットは
	// スライディングウィンドウの重複により内容がほぼ同じため、
	// スコアの高い方だけを残す
	if !params.DisableDedup {
		candidates = dedupOverlapping(candidates)
	}

	// スコア降順で整列（同点は決定性のため source → sequence の昇順）
	sortHits(candidates)

	results := make([]*RetrievedContext, 0, len(candidates))
	for _, hit := range candidates {
		results = append(results, &RetrievedContext{
			ChunkText:      hit.Content,
			SourceDocument: hit.SourceDocument,
			SequenceIndex:  hit.SequenceIndex,
			Score:          hit.Score,
			Excerpt:        makeExcerpt(hit.Content, s.config.ExcerptLength),
		})
	}

	s.logger.Info("retrieval completed",
		"question", params.Question,
		"topK", topK,
		"threshold", threshold,
		"rawHits", len(hits),
		"results", len(results),
	)

	return results, nil
}

// TotalPoints はインデックス内の全ポイント数を返す（統計情報用）
func (s *Service) TotalPoints(ctx context.Context) (int64, error) {
	count, err := s.repo.CountPoints(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	return count, nil
}

// embedQuestion は一時障害に限り有限回リトライして質問をEmbeddingする
func (s *Service) embedQuestion(ctx context.Context, question string) ([]float32, error) {
	var lastErr error

	for attempt := 0; attempt < maxEmbedAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(embedBackoffBase << (attempt - 1)):
			}
		}

		vector, err := s.embedder.Embed(ctx, question)
		if err == nil {
			return vector, nil
		}
		lastErr = err

		if !errors.Is(err, ingestion.ErrEmbeddingUnavailable) && !errors.Is(err, ingestion.ErrEmbeddingTimeout) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("embedding failed after %d attempts: %w", maxEmbedAttempts, lastErr)
}

// dedupOverlapping は同一ドキュメント内で隣接・同一位置のヒットを間引く
// スコアの高いヒットを優先して残す
func dedupOverlapping(hits []*SearchHit) []*SearchHit {
	ranked := make([]*SearchHit, len(hits))
	copy(ranked, hits)
	sortHits(ranked)

	kept := make([]*SearchHit, 0, len(ranked))
	for _, hit := range ranked {
		overlaps := false
		for _, k := range kept {
			if k.SourceDocument != hit.SourceDocument {
				continue
			}
			diff := k.SequenceIndex - hit.SequenceIndex
			if diff >= -1 && diff <= 1 {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, hit)
		}
	}

	return kept
}

// sortHits はスコア降順、同点は source → sequence 昇順で整列する
func sortHits(hits []*SearchHit) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].SourceDocument != hits[j].SourceDocument {
			return hits[i].SourceDocument < hits[j].SourceDocument
		}
		return hits[i].SequenceIndex < hits[j].SequenceIndex
	})
}

// makeExcerpt は出典表示用の抜粋を作る（maxLen文字 + "..."）
func makeExcerpt(text string, maxLen int) string {
	if maxLen <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + "..."
}
