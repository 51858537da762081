package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFormat は対応していないファイル形式を表すエラー
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrExtractionFailed はファイルの解析に失敗した場合のエラー
	// （破損したファイル、パスワード付きファイルなど）
	ErrExtractionFailed = errors.New("failed to extract text")
)

// Format はドキュメントのファイル形式を表す
type Format string

const (
	FormatPlainText Format = "txt"
	FormatMarkdown  Format = "md"
	FormatPDF       Format = "pdf"
	FormatDOCX      Format = "docx"
)

// DetectFormat はファイル名の拡張子から Format を判定する
func DetectFormat(filename string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return FormatPlainText, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// ExtractFunc は単一形式のバイト列をプレーンテキストへ変換する関数
type ExtractFunc func(data []byte) (string, error)

// Extractor は形式ごとの抽出関数を束ねる
// クラス階層ではなく Format -> 関数 のマッピングで表現する
type Extractor struct {
	funcs map[Format]ExtractFunc
}

// NewExtractor は対応形式をすべて登録した Extractor を作成する
func NewExtractor() *Extractor {
	return &Extractor{
		funcs: map[Format]ExtractFunc{
			FormatPlainText: extractPlainText,
			FormatMarkdown:  extractPlainText, // Markdownはプレーンテキストとして扱う
			FormatPDF:       extractPDF,
			FormatDOCX:      extractDOCX,
		},
	}
}

// Extract はバイト列を宣言された形式として解釈し、プレーンテキストを返す
// ページや段落の境界は空白としてのみ保持される
func (e *Extractor) Extract(data []byte, format Format) (string, error) {
	fn, ok := e.funcs[format]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	text, err := fn(data)
	if err != nil {
		return "", err
	}
	return text, nil
}

// SupportedFormats は登録されている形式の一覧を返す
func (e *Extractor) SupportedFormats() []Format {
	formats := make([]Format, 0, len(e.funcs))
	for f := range e.funcs {
		formats = append(formats, f)
	}
	return formats
}
