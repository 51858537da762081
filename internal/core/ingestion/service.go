package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jinford/docrag/internal/core/extract"
)

const (
	// maxEmbedAttempts はEmbedding一時障害時の最大試行回数
	maxEmbedAttempts = 3

	// embedBackoffBase はExponential Backoffの基底時間
	embedBackoffBase = 500 * time.Millisecond

	// embedBackoffMax はExponential Backoffの最大待機時間
	embedBackoffMax = 4 * time.Second
)

// Service はドキュメント取り込みのユースケースを提供する
//
// 取り込みは extract → chunk → embed → upsert → レジストリ更新 の順に進み、
// 同一ドキュメントに対しては全区間がドキュメント単位で直列化される
type Service struct {
	extractor *extract.Extractor
	embedder  Embedder
	repo      Repository
	chunkCfg  ChunkConfig
	locks     keyedMutex
	logger    *slog.Logger
}

type serviceOptions struct {
	chunkCfg ChunkConfig
	logger   *slog.Logger
}

// ServiceOption は Service のオプション設定
type ServiceOption func(*serviceOptions)

// WithIngestionLogger は Service にロガーを設定する
func WithIngestionLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// WithChunkConfig はチャンク設定を上書きする
func WithChunkConfig(cfg ChunkConfig) ServiceOption {
	return func(o *serviceOptions) {
		o.chunkCfg = cfg
	}
}

// NewService は新しい Service を作成する
func NewService(extractor *extract.Extractor, embedder Embedder, repo Repository, opts ...ServiceOption) *Service {
	options := serviceOptions{
		chunkCfg: DefaultChunkConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	return &Service{
		extractor: extractor,
		embedder:  embedder,
		repo:      repo,
		chunkCfg:  options.chunkCfg,
		logger:    options.logger,
	}
}

// Ingest はファイルを取り込み、ベクトルインデックスへ反映する
func (s *Service) Ingest(ctx context.Context, params IngestParams) (*IngestResult, error) {
	startTime := time.Now()

	// 1. バリデーション
	if params.FileName == "" {
		return nil, fmt.Errorf("fileName is required")
	}
	if len(params.Data) == 0 {
		return nil, fmt.Errorf("file content is empty")
	}
	source := params.SourceDocument
	if source == "" {
		source = params.FileName
	}

	// 2. 形式判定とテキスト抽出
	format, err := extract.DetectFormat(params.FileName)
	if err != nil {
		return nil, err
	}

	text, err := s.extractor.Extract(params.Data, format)
	if err != nil {
		return nil, err
	}

	// 3. チャンク分割
	chunks, err := SplitIntoChunks(text, source, s.chunkCfg)
	if err != nil {
		return nil, err
	}

	if len(chunks) == 0 {
		// 空のドキュメントはインデックスに何も残さない
		s.logger.Warn("document produced no chunks, skipping index update",
			"source", source,
		)
		return &IngestResult{
			SourceDocument: source,
			ChunkCount:     0,
			Duration:       time.Since(startTime),
		}, nil
	}

	// 4. 同一ドキュメントの取り込みを直列化する
	// 別バージョンのチャンク集合が混ざった状態を作らないため、
	// embed から upsert までをドキュメント単位のクリティカルセクションで囲む
	s.locks.Lock(source)
	defer s.locks.Unlock(source)

	// 5. Embedding生成（バッチ + 一時障害への有限リトライ）
	vectors, err := s.embedAll(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPartialIngestion, err)
	}

	// 6. 決定的IDでポイントを構築し、1トランザクションで書き換える
	points := make([]IndexPoint, len(chunks))
	for i, chunk := range chunks {
		points[i] = IndexPoint{
			ID:     PointID(source, chunk.SequenceIndex),
			Vector: vectors[i],
			Chunk:  chunk,
		}
	}

	if err := s.repo.ReplaceDocument(ctx, source, points, time.Now()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPartialIngestion, err)
	}

	result := &IngestResult{
		SourceDocument: source,
		ChunkCount:     len(points),
		Duration:       time.Since(startTime),
	}

	s.logger.Info("document ingested",
		"source", source,
		"format", string(format),
		"chunks", result.ChunkCount,
		"duration", result.Duration.String(),
	)

	return result, nil
}

// Delete はドキュメントの全ポイントとレジストリレコードを削除する
func (s *Service) Delete(ctx context.Context, sourceDocument string) (int, error) {
	if sourceDocument == "" {
		return 0, fmt.Errorf("sourceDocument is required")
	}

	s.locks.Lock(sourceDocument)
	defer s.locks.Unlock(sourceDocument)

	deleted, err := s.repo.DeleteDocument(ctx, sourceDocument)
	if err != nil {
		return 0, fmt.Errorf("failed to delete document: %w", err)
	}
	if deleted == 0 {
		return 0, fmt.Errorf("%w: %s", ErrDocumentNotFound, sourceDocument)
	}

	s.logger.Info("document deleted",
		"source", sourceDocument,
		"chunks", deleted,
	)

	return deleted, nil
}

// embedAll は全チャンクのEmbeddingをバッチ単位で生成する
func (s *Service) embedAll(ctx context.Context, chunks []Chunk) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	batchSize := s.embedder.MaxBatchSize()
	if batchSize <= 0 {
		batchSize = 1
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := s.batchEmbedWithRetry(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(batch), end-start)
		}
		vectors = append(vectors, batch...)
	}

	return vectors, nil
}

// batchEmbedWithRetry は一時障害に限り有限回リトライする
func (s *Service) batchEmbedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error

	for attempt := 0; attempt < maxEmbedAttempts; attempt++ {
		if attempt > 0 {
			backoff := embedBackoffBase << (attempt - 1)
			if backoff > embedBackoffMax {
				backoff = embedBackoffMax
			}

			s.logger.Warn("retrying embedding batch",
				"attempt", attempt+1,
				"backoff", backoff.String(),
				"error", lastErr,
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		vectors, err := s.embedder.BatchEmbed(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		lastErr = err

		// 一時的な障害のみリトライする
		if !errors.Is(err, ErrEmbeddingUnavailable) && !errors.Is(err, ErrEmbeddingTimeout) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("embedding failed after %d attempts: %w", maxEmbedAttempts, lastErr)
}
