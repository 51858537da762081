package extract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	// 拡張子から形式を判定する（大文字小文字は区別しない）
	cases := []struct {
		filename string
		format   Format
	}{
		{"report.txt", FormatPlainText},
		{"README.md", FormatMarkdown},
		{"notes.markdown", FormatMarkdown},
		{"manual.pdf", FormatPDF},
		{"minutes.docx", FormatDOCX},
		{"UPPER.TXT", FormatPlainText},
		{"dir/nested/file.PDF", FormatPDF},
	}

	for _, tc := range cases {
		format, err := DetectFormat(tc.filename)
		require.NoError(t, err, tc.filename)
		assert.Equal(t, tc.format, format, tc.filename)
	}
}

func TestDetectFormat_Unsupported(t *testing.T) {
	// 未対応の拡張子は ErrUnsupportedFormat
	for _, filename := range []string{"image.png", "archive.zip", "noext", "doc.doc"} {
		_, err := DetectFormat(filename)
		assert.ErrorIs(t, err, ErrUnsupportedFormat, filename)
	}
}

func TestExtract_PlainText(t *testing.T) {
	// UTF-8テキストはそのまま返る
	extractor := NewExtractor()

	text, err := extractor.Extract([]byte("こんにちは\nworld"), FormatPlainText)
	require.NoError(t, err)
	assert.Equal(t, "こんにちは\nworld", text)
}

func TestExtract_PlainText_InvalidUTF8(t *testing.T) {
	// 不正なUTF-8バイト列は抽出エラー
	extractor := NewExtractor()

	_, err := extractor.Extract([]byte{0xff, 0xfe, 0x00}, FormatPlainText)
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestExtract_Markdown(t *testing.T) {
	// Markdownは記法を解釈せずプレーンテキストとして扱う
	extractor := NewExtractor()

	text, err := extractor.Extract([]byte("# 見出し\n\n本文です。"), FormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, "# 見出し\n\n本文です。", text)
}

func TestExtract_DOCX(t *testing.T) {
	// DOCXは段落境界を改行として保持しつつテキストを抽出する
	docXML := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>最初の段落</w:t></w:r></w:p>
    <w:p><w:r><w:t>次の</w:t></w:r><w:r><w:t>段落</w:t></w:r></w:p>
  </w:body>
</w:document>`

	data := buildDOCX(t, map[string]string{
		"word/document.xml": docXML,
	})

	extractor := NewExtractor()
	text, err := extractor.Extract(data, FormatDOCX)
	require.NoError(t, err)

	assert.Contains(t, text, "最初の段落\n")
	assert.Contains(t, text, "次の段落\n")
}

func TestExtract_DOCX_MissingDocumentXML(t *testing.T) {
	// document.xml を含まないアーカイブは抽出エラー
	data := buildDOCX(t, map[string]string{
		"word/styles.xml": "<styles/>",
	})

	extractor := NewExtractor()
	_, err := extractor.Extract(data, FormatDOCX)
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestExtract_DOCX_Corrupt(t *testing.T) {
	// ZIPとして読めないバイト列は抽出エラー
	extractor := NewExtractor()

	_, err := extractor.Extract([]byte("this is not a zip archive"), FormatDOCX)
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestExtract_PDF_Corrupt(t *testing.T) {
	// PDFとして読めないバイト列は抽出エラー
	extractor := NewExtractor()

	_, err := extractor.Extract([]byte("%PDF-broken garbage"), FormatPDF)
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestExtractor_SupportedFormats(t *testing.T) {
	// 4形式すべてが登録されている
	extractor := NewExtractor()

	formats := extractor.SupportedFormats()
	assert.Len(t, formats, 4)
	assert.ElementsMatch(t, []Format{FormatPlainText, FormatMarkdown, FormatPDF, FormatDOCX}, formats)
}

// buildDOCX はテスト用のZIPアーカイブをメモリ上に構築する
func buildDOCX(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return buf.Bytes()
}
