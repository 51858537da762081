package ingestion

import (
	"fmt"
	"strings"
)

// SplitIntoChunks はテキストを重複付きスライディングウィンドウで分割する
//
// ウィンドウ幅は cfg.Size 文字、開始位置は cfg.Size - cfg.Overlap ずつ進む。
// 最後のチャンクはテキスト末尾で終わる（Size より短いことがある）。
// トリムすると空になるウィンドウ（空白の連続区間に収まったもの）は
// チャンクとして採用せず、連番は採用したチャンクのみで連続する。
// 文の途中で切れうる単純な設計だが、同一テキスト・同一設定なら
// 常にバイト単位で同一の境界を生成する。この決定性が
// ポイントIDによる上書き型の再取り込みを成立させる。
func SplitIntoChunks(text, sourceDocument string, cfg ChunkConfig) ([]Chunk, error) {
	if cfg.Size <= 0 || cfg.Overlap < 0 || cfg.Overlap >= cfg.Size {
		return nil, fmt.Errorf("%w: size=%d overlap=%d", ErrInvalidChunkConfig, cfg.Size, cfg.Overlap)
	}

	// 空または空白のみのテキストはチャンクなし（エラーではない）
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	// マルチバイト文字を壊さないよう文字（rune）単位で扱う
	runes := []rune(text)
	stride := cfg.Size - cfg.Overlap

	var chunks []Chunk
	for start := 0; start < len(runes); start += stride {
		end := start + cfg.Size
		if end > len(runes) {
			end = len(runes)
		}

		// 空白のみのウィンドウは採用しない
		// （抽出済みPDFではページ境界が長い空白の連続になることがある）
		window := string(runes[start:end])
		if strings.TrimSpace(window) != "" {
			chunks = append(chunks, Chunk{
				Text:           window,
				SourceDocument: sourceDocument,
				SequenceIndex:  len(chunks),
				CharStart:      start,
				CharLength:     end - start,
			})
		}

		if end == len(runes) {
			break
		}
	}

	return chunks, nil
}
