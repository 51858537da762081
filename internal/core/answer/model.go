package answer

import (
	"context"
	"errors"
	"time"
)

// ErrGenerationUnavailable は生成サービスの失敗・タイムアウトを表すエラー
// 「関連情報なし」とは区別して呼び出し側へそのまま表面化する
var ErrGenerationUnavailable = errors.New("generation service unavailable")

// NoContextAnswer はコンテキストが空のときに返す固定回答
// この場合、生成サービスは呼び出さない
const NoContextAnswer = "ドキュメントの中に、ご質問に関連する情報は見つかりませんでした。"

// LLMClient はLLM通信インターフェース
type LLMClient interface {
	GenerateCompletion(ctx context.Context, prompt string) (string, error)
}

// TokenCounter はテキストのトークン数を数えるインターフェース
type TokenCounter interface {
	Count(text string) int
}

// SourceReference は回答の根拠となったソース参照を表す
type SourceReference struct {
	SourceDocument string  `json:"sourceDocument"`
	Excerpt        string  `json:"excerpt"`
	Score          float64 `json:"relevanceScore"`
}

// Result は質問応答の結果を表す
type Result struct {
	Answer      string            `json:"answer"`
	Sources     []SourceReference `json:"sources"`
	GeneratedAt time.Time         `json:"timestamp"`
}

// Config は回答生成の設定
type Config struct {
	MaxContextTokens int // プロンプトに載せるコンテキストのトークン上限
}

// DefaultConfig はデフォルトの回答生成設定を返す
func DefaultConfig() Config {
	return Config{
		MaxContextTokens: 3000,
	}
}
