package answer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jinford/docrag/internal/core/retrieval"
)

// Service は質問応答の回答組み立てを提供する
type Service struct {
	llm     LLMClient
	counter TokenCounter
	config  Config
	logger  *slog.Logger
}

type serviceOptions struct {
	config Config
	logger *slog.Logger
}

// ServiceOption は Service のオプション設定
type ServiceOption func(*serviceOptions)

// WithAnswerLogger は Service にロガーを設定する
func WithAnswerLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// WithAnswerConfig は回答生成設定を上書きする
func WithAnswerConfig(cfg Config) ServiceOption {
	return func(o *serviceOptions) {
		o.config = cfg
	}
}

// NewService は新しい Service を作成する
func NewService(llm LLMClient, counter TokenCounter, opts ...ServiceOption) *Service {
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
		llm:     llm,
		counter: counter,
		config:  options.config,
		logger:  options.logger,
	}
}

// Answer は検索済みコンテキストから回答を生成する
//
// コンテキストが空の場合は生成サービスを呼ばず固定回答を返す。
// 生成サービスの失敗は ErrGenerationUnavailable としてそのまま返し、
// 捏造した回答には決して置き換えない
func (s *Service) Answer(ctx context.Context, question string, contexts []*retrieval.RetrievedContext) (*Result, error) {
	if question == "" {
		return nil, fmt.Errorf("question is required")
	}

	// コンテキストなしは正常系として扱う（ポリシー: 生成呼び出しを省略）
	if len(contexts) == 0 {
		s.logger.Info("no relevant context found, skipping generation",
			"question", question,
		)
		return &Result{
			Answer:      NoContextAnswer,
			Sources:     []SourceReference{},
			GeneratedAt: time.Now(),
		}, nil
	}

	prompt, included := BuildAnswerPrompt(question, contexts, s.config.MaxContextTokens, s.counter)

	if len(included) < len(contexts) {
		s.logger.Info("context truncated to fit token budget",
			"total", len(contexts),
			"included", len(included),
			"maxContextTokens", s.config.MaxContextTokens,
		)
	}

	answerText, err := s.llm.GenerateCompletion(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationUnavailable, err)
	}

	// 出典はプロンプトに載せたコンテキストのランク順をそのまま返す
	sources := make([]SourceReference, 0, len(included))
	for _, c := range included {
		sources = append(sources, SourceReference{
			SourceDocument: c.SourceDocument,
			Excerpt:        c.Excerpt,
			Score:          c.Score,
		})
	}

	s.logger.Info("answer generated",
		"question", question,
		"answerLength", len(answerText),
		"sources", len(sources),
	)

	return &Result{
		Answer:      answerText,
		Sources:     sources,
		GeneratedAt: time.Now(),
	}, nil
}
