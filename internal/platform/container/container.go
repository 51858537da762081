package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jinford/docrag/internal/core/answer"
	"github.com/jinford/docrag/internal/core/extract"
	"github.com/jinford/docrag/internal/core/ingestion"
	"github.com/jinford/docrag/internal/core/registry"
	"github.com/jinford/docrag/internal/core/retrieval"
	"github.com/jinford/docrag/internal/infra/openai"
	"github.com/jinford/docrag/internal/infra/postgres"
	"github.com/jinford/docrag/internal/infra/postgres/sqlc"
	"github.com/jinford/docrag/internal/platform/config"
	"github.com/jinford/docrag/internal/platform/database"
)

// ServiceContainer はアプリケーション全体の依存関係を保持する
type ServiceContainer struct {
	IngestionService *ingestion.Service
	RetrievalService *retrieval.Service
	AnswerService    *answer.Service
	RegistryService  *registry.Service

	logger   *slog.Logger
	database *database.DB
}

type containerOptions struct {
	embedder  ingestion.Embedder
	llmClient answer.LLMClient
}

// ContainerOption は ServiceContainer のオプション設定
type ContainerOption func(*containerOptions)

// WithEmbedder はEmbedder実装を差し替える（テスト用）
func WithEmbedder(embedder ingestion.Embedder) ContainerOption {
	return func(o *containerOptions) {
		o.embedder = embedder
	}
}

// WithLLMClient はLLMクライアント実装を差し替える（テスト用）
func WithLLMClient(llm answer.LLMClient) ContainerOption {
	return func(o *containerOptions) {
		o.llmClient = llm
	}
}

// NewContainer は設定とロガーからコンテナを生成する
func NewContainer(ctx context.Context, logger *slog.Logger, cfg *config.Config, opts ...ContainerOption) (*ServiceContainer, error) {
	db, err := database.New(ctx, database.ConnectionParams{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("データベース初期化に失敗しました: %w", err)
	}

	return NewContainerWithDB(logger, cfg, db, opts...)
}

// NewContainerWithDB は既存の DB を受け取りコンテナを生成する
func NewContainerWithDB(logger *slog.Logger, cfg *config.Config, db *database.DB, opts ...ContainerOption) (*ServiceContainer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	options := containerOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	// Embedder (OpenAI)
	embedder := options.embedder
	if embedder == nil {
		embedder = openai.NewEmbedder(cfg.OpenAI.APIKey,
			openai.WithEmbeddingModel(cfg.OpenAI.EmbeddingModel),
			openai.WithEmbeddingDimension(cfg.OpenAI.EmbeddingDimension),
			openai.WithEmbeddingTimeout(cfg.OpenAI.EmbeddingTimeout),
		)
	}

	// LLMクライアント (OpenAI)
	llmClient := options.llmClient
	if llmClient == nil {
		generator, err := openai.NewGenerator(cfg.OpenAI.APIKey,
			openai.WithChatModel(cfg.OpenAI.LLMModel),
			openai.WithChatTimeout(cfg.OpenAI.GenerationTimeout),
		)
		if err != nil {
			return nil, fmt.Errorf("LLMクライアント初期化に失敗しました: %w", err)
		}
		llmClient = generator
	}

	// TokenCounter (tiktoken)
	tokenCounter, err := answer.NewTiktokenCounter()
	if err != nil {
		return nil, fmt.Errorf("TokenCounter 初期化に失敗しました: %w", err)
	}

	// Repository (PostgreSQL)
	provider := database.NewTransactionProvider(db.Pool)
	queries := sqlc.New(db.Pool)
	writerRepo := postgres.NewWriterRepository(provider)
	searchRepo := postgres.NewSearchRepository(queries)
	registryRepo := postgres.NewRegistryRepository(queries, provider)

	// Extractor
	extractor := extract.NewExtractor()

	// コアサービス
	ingestionService := ingestion.NewService(extractor, embedder, writerRepo,
		ingestion.WithIngestionLogger(logger),
		ingestion.WithChunkConfig(ingestion.ChunkConfig{
			Size:    cfg.Chunking.Size,
			Overlap: cfg.Chunking.Overlap,
		}),
	)

	retrievalService := retrieval.NewService(searchRepo, embedder,
		retrieval.WithRetrievalLogger(logger),
		retrieval.WithRetrievalConfig(retrieval.Config{
			TopK:           cfg.Retrieval.TopK,
			ScoreThreshold: cfg.Retrieval.ScoreThreshold,
			ExcerptLength:  cfg.Retrieval.ExcerptLength,
		}),
	)

	answerService := answer.NewService(llmClient, tokenCounter,
		answer.WithAnswerLogger(logger),
		answer.WithAnswerConfig(answer.Config{
			MaxContextTokens: cfg.Answer.MaxContextTokens,
		}),
	)

	registryService := registry.NewService(registryRepo,
		registry.WithRegistryLogger(logger),
	)

	return &ServiceContainer{
		IngestionService: ingestionService,
		RetrievalService: retrievalService,
		AnswerService:    answerService,
		RegistryService:  registryService,
		logger:           logger,
		database:         db,
	}, nil
}

// Close は内部リソースを解放する
func (c *ServiceContainer) Close() {
	if c != nil && c.database != nil {
		c.database.Close()
	}
}

// Logger はロガーを返す
func (c *ServiceContainer) Logger() *slog.Logger {
	if c == nil || c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

// Database はデータベースを返す
func (c *ServiceContainer) Database() *database.DB {
	if c == nil {
		return nil
	}
	return c.database
}
