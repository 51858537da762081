package ingestion

import "context"

// Embedder はテキストのEmbedding生成インターフェース
// 実装はリトライポリシーを持たない。リトライは呼び出し側（取り込み/検索サービス）の責務
type Embedder interface {
	// Embed は単一テキストのEmbeddingを生成する
	Embed(ctx context.Context, text string) ([]float32, error)

	// BatchEmbed は複数テキストのEmbeddingを入力と同順で生成する
	BatchEmbed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension はベクトル次元数を返す
	Dimension() int

	// MaxBatchSize は1回の呼び出しで処理できる最大テキスト数を返す
	MaxBatchSize() int
}
