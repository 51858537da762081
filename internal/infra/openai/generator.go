package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/jinford/docrag/internal/core/answer"
)

const (
	// DefaultChatModel はデフォルトで使用するOpenAIモデル
	DefaultChatModel = "gpt-4o-mini"

	// DefaultChatTimeout はAPI呼び出しのデフォルトタイムアウト
	DefaultChatTimeout = 60 * time.Second

	// DefaultChatTemperature は回答生成のデフォルト温度
	// コンテキストに忠実な回答を優先するため低めに設定している
	DefaultChatTemperature = 0.2

	// chatMaxRetries はレート制限エラー時の最大リトライ回数
	chatMaxRetries = 3

	// chatBaseBackoff はExponential Backoffの基底時間
	chatBaseBackoff = 2 * time.Second

	// chatMaxBackoff はExponential Backoffの最大待機時間
	chatMaxBackoff = 32 * time.Second
)

var (
	// ErrAPIKeyNotSet はAPIキーが設定されていない場合のエラー
	ErrAPIKeyNotSet = errors.New("OpenAI API key not set: please set OPENAI_API_KEY environment variable")

	// ErrMaxRetriesExceeded は最大リトライ回数を超過した場合のエラー
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// Generator は OpenAI Chat Completions API を使用した回答生成クライアント
type Generator struct {
	client      openai.Client
	model       string
	temperature float64
	timeout     time.Duration
}

type generatorOptions struct {
	model       string
	temperature float64
	timeout     time.Duration
}

// GeneratorOption は Generator のオプション設定
type GeneratorOption func(*generatorOptions)

// WithChatModel はモデル名を上書きする
func WithChatModel(model string) GeneratorOption {
	return func(o *generatorOptions) {
		o.model = model
	}
}

// WithChatTemperature は生成温度を上書きする
func WithChatTemperature(temperature float64) GeneratorOption {
	return func(o *generatorOptions) {
		o.temperature = temperature
	}
}

// WithChatTimeout はタイムアウトを上書きする
func WithChatTimeout(timeout time.Duration) GeneratorOption {
	return func(o *generatorOptions) {
		o.timeout = timeout
	}
}

// NewGenerator は新しい Generator を作成する
func NewGenerator(apiKey string, opts ...GeneratorOption) (*Generator, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyNotSet
	}

	options := generatorOptions{
		model:       DefaultChatModel,
		temperature: DefaultChatTemperature,
		timeout:     DefaultChatTimeout,
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &Generator{
		client:      openai.NewClient(option.WithAPIKey(apiKey)),
		model:       options.model,
		temperature: options.temperature,
		timeout:     options.timeout,
	}, nil
}

// ModelName はモデル名を返す
func (g *Generator) ModelName() string {
	return g.model
}

// GenerateCompletion は OpenAI API を使用してテキストを生成する
// レート制限 (429) のみリトライし、その他のエラーは即座に返す
func (g *Generator) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var lastErr error

	for attempt := 0; attempt <= chatMaxRetries; attempt++ {
		if attempt > 0 {
			backoffDuration := time.Duration(math.Pow(2, float64(attempt-1))) * chatBaseBackoff
			if backoffDuration > chatMaxBackoff {
				backoffDuration = chatMaxBackoff
			}

			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoffDuration):
			}
		}

		params := openai.ChatCompletionNewParams{
			Model: shared.ChatModel(g.model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Temperature: openai.Float(g.temperature),
		}

		completion, err := g.client.Chat.Completions.New(ctx, params)
		if err != nil {
			lastErr = err

			if isRateLimitError(err) {
				continue
			}

			return "", fmt.Errorf("OpenAI API call failed: %w", err)
		}

		if len(completion.Choices) == 0 {
			return "", fmt.Errorf("no completion choices returned")
		}

		return completion.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("%w: %v", ErrMaxRetriesExceeded, lastErr)
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}

	return false
}

// インターフェース実装の確認
var _ answer.LLMClient = (*Generator)(nil)
