package postgres

import (
	"context"
	"fmt"

	pgvector "github.com/pgvector/pgvector-go"

	"github.com/jinford/docrag/internal/core/retrieval"
	"github.com/jinford/docrag/internal/infra/postgres/sqlc"
)

// SearchRepository は retrieval.Repository インターフェースを実装する PostgreSQL リポジトリです
// 読み取り専用のためトランザクションは使用しません
type SearchRepository struct {
	q sqlc.Querier
}

// NewSearchRepository は新しい SearchRepository を作成します
func NewSearchRepository(q sqlc.Querier) *SearchRepository {
	return &SearchRepository{q: q}
}

// コンパイル時の型チェック
var _ retrieval.Repository = (*SearchRepository)(nil)

// SearchPoints はクエリベクトルとのコサイン距離が近い順にヒットを返します
func (r *SearchRepository) SearchPoints(ctx context.Context, queryVector []float32, limit int) ([]*retrieval.SearchHit, error) {
	rows, err := r.q.SearchIndexPoints(ctx, sqlc.SearchIndexPointsParams{
		QueryVector: pgvector.NewVector(queryVector),
		RowLimit:    int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search index points: %w", err)
	}

	hits := make([]*retrieval.SearchHit, 0, len(rows))
	for _, row := range rows {
		hits = append(hits, &retrieval.SearchHit{
			SourceDocument: row.SourceDocument,
			SequenceIndex:  int(row.SequenceIndex),
			Content:        row.Content,
			Score:          row.Score,
		})
	}

	return hits, nil
}

// CountPoints はストア内の全ポイント数を返します
func (r *SearchRepository) CountPoints(ctx context.Context) (int64, error) {
	count, err := r.q.CountIndexPoints(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count index points: %w", err)
	}
	return count, nil
}
