package answer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// TiktokenCounter は tiktoken によるトークンカウンタ
type TiktokenCounter struct {
	encoder *tiktoken.Tiktoken
}

// NewTiktokenCounter は cl100k_base エンコーダのカウンタを作成する
func NewTiktokenCounter() (*TiktokenCounter, error) {
	encoder, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("failed to get tiktoken encoder: %w", err)
	}
	return &TiktokenCounter{encoder: encoder}, nil
}

// Count はテキストのトークン数を返す
func (c *TiktokenCounter) Count(text string) int {
	return len(c.encoder.Encode(text, nil, nil))
}

// インターフェース実装の確認
var _ TokenCounter = (*TiktokenCounter)(nil)
