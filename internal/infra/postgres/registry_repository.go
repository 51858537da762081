package postgres

import (
	"context"
	"fmt"

	"github.com/jinford/docrag/internal/core/registry"
	"github.com/jinford/docrag/internal/infra/postgres/sqlc"
	"github.com/jinford/docrag/internal/platform/database"
)

// RegistryRepository は registry.Repository インターフェースを実装する PostgreSQL リポジトリです
type RegistryRepository struct {
	q        sqlc.Querier
	provider *database.TransactionProvider
}

// NewRegistryRepository は新しい RegistryRepository を作成します
func NewRegistryRepository(q sqlc.Querier, provider *database.TransactionProvider) *RegistryRepository {
	return &RegistryRepository{q: q, provider: provider}
}

// コンパイル時の型チェック
var _ registry.Repository = (*RegistryRepository)(nil)

// ListDocuments はレジストリの全レコードを返します
func (r *RegistryRepository) ListDocuments(ctx context.Context) ([]*registry.DocumentRecord, error) {
	rows, err := r.q.ListDocumentRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list document records: %w", err)
	}

	records := make([]*registry.DocumentRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, &registry.DocumentRecord{
			SourceDocument: row.SourceDocument,
			ChunkCount:     int(row.ChunkCount),
			IngestedAt:     PgtypeToTime(row.IngestedAt),
		})
	}

	return records, nil
}

// RebuildFromPoints はレジストリを全削除し、ベクトルストアのポイントを
// 集計して再構築します。削除と再構築は1トランザクションで実行されます
func (r *RegistryRepository) RebuildFromPoints(ctx context.Context) (int, error) {
	count, err := database.Transact(ctx, r.provider, func(a *database.Adapter) (int64, error) {
		if err := a.Queries.DeleteAllDocumentRecords(ctx); err != nil {
			return 0, fmt.Errorf("failed to clear document records: %w", err)
		}

		count, err := a.Queries.RebuildDocumentRecords(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to rebuild document records: %w", err)
		}

		return count, nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to rebuild registry: %w", err)
	}

	return int(count), nil
}
