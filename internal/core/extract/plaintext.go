package extract

import (
	"fmt"
	"unicode/utf8"
)

// extractPlainText はテキスト系ファイル（.txt / .md）を文字列として返す
func extractPlainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: content is not valid UTF-8", ErrExtractionFailed)
	}
	return string(data), nil
}
