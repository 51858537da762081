package retrieval

import "context"

// Repository はベクトルストアの読み取り境界
type Repository interface {
	// SearchPoints はクエリベクトルに近い順に最大 limit 件のヒットを返す
	// スコアはコサイン類似度ベース（高いほど近い）
	SearchPoints(ctx context.Context, queryVector []float32, limit int) ([]*SearchHit, error)

	// CountPoints はストア内の全ポイント数を返す
	CountPoints(ctx context.Context) (int64, error)
}

// Embedder は質問文のEmbedding生成インターフェース
type Embedder interface {
	// Embed は単一テキストのEmbeddingを生成する
	Embed(ctx context.Context, text string) ([]float32, error)
}
