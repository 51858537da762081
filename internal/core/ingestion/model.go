package ingestion

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Chunk は抽出済みテキストの連続した区間を表す
// 生成後は不変であり、元ドキュメントの削除とともに論理的に破棄される
type Chunk struct {
	Text           string // チャンク本文（トリム後に非空）
	SourceDocument string // 元ドキュメントの識別子（通常はファイル名）
	SequenceIndex  int    // 同一ドキュメント内での0始まりの通し番号（読み順）
	CharStart      int    // 抽出テキスト内の開始オフセット（文字単位）
	CharLength     int    // 区間の長さ（文字単位）
}

// ChunkConfig はチャンク分割の設定
type ChunkConfig struct {
	Size    int // ウィンドウ幅（文字数）
	Overlap int // 前チャンクとの重複文字数
}

// DefaultChunkConfig はデフォルトのチャンク設定を返す
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		Size:    500,
		Overlap: 50,
	}
}

// IndexPoint はベクトルストアへ永続化する単位
// ID は (SourceDocument, SequenceIndex) から決定的に導出され、
// 同一ドキュメントの再取り込みは重複ではなく上書きになる
type IndexPoint struct {
	ID     uuid.UUID
	Vector []float32
	Chunk  Chunk
}

// IngestParams は取り込み処理のパラメータ
type IngestParams struct {
	FileName       string // 形式判定に使うファイル名
	SourceDocument string // 省略時は FileName
	Data           []byte // ファイルの生バイト列
}

// IngestResult は取り込み処理の結果
type IngestResult struct {
	SourceDocument string
	ChunkCount     int
	Duration       time.Duration
}

// pointNamespace はポイントID導出用のUUID v5名前空間
var pointNamespace = uuid.MustParse("a2f1c0d4-9b3e-4a77-8c11-5e2d9f6b0c3a")

// PointID は (sourceDocument, sequenceIndex) から決定的なポイントIDを導出する
func PointID(sourceDocument string, sequenceIndex int) uuid.UUID {
	name := fmt.Sprintf("%s\x00%d", sourceDocument, sequenceIndex)
	return uuid.NewSHA1(pointNamespace, []byte(name))
}
