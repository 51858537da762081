package postgres

import (
	"context"
	"fmt"
	"time"

	pgvector "github.com/pgvector/pgvector-go"

	"github.com/jinford/docrag/internal/core/ingestion"
	"github.com/jinford/docrag/internal/infra/postgres/sqlc"
	"github.com/jinford/docrag/internal/platform/database"
)

// WriterRepository は ingestion.Repository インターフェースを実装する PostgreSQL リポジトリです
//
// 各メソッドは1トランザクションで実行し、同一ドキュメントへの書き込みは
// アドバイザリロックで直列化します。ポイントとレジストリレコードは
// 常に同じトランザクション内で更新されます
type WriterRepository struct {
	provider *database.TransactionProvider
}

// NewWriterRepository は新しい WriterRepository を作成します
func NewWriterRepository(provider *database.TransactionProvider) *WriterRepository {
	return &WriterRepository{provider: provider}
}

// コンパイル時の型チェック
var _ ingestion.Repository = (*WriterRepository)(nil)

// ReplaceDocument はドキュメントの全ポイントを原子的に書き換えます
//
// 1. ドキュメント単位のアドバイザリロックを取得
// 2. 新しいポイントをIDベースでUpsert
// 3. sequence_index が新しいチャンク数以上の残骸ポイントを削除
// 4. レジストリレコードを同一トランザクションで更新
func (r *WriterRepository) ReplaceDocument(ctx context.Context, sourceDocument string, points []ingestion.IndexPoint, ingestedAt time.Time) error {
	_, err := database.Transact(ctx, r.provider, func(a *database.Adapter) (struct{}, error) {
		var zero struct{}

		lockID := database.GenerateLockID("document", sourceDocument)
		if _, err := a.Locks.Acquire(ctx, lockID); err != nil {
			return zero, err
		}

		for _, point := range points {
			err := a.Queries.UpsertIndexPoint(ctx, sqlc.UpsertIndexPointParams{
				ID:             UUIDToPgtype(point.ID),
				SourceDocument: point.Chunk.SourceDocument,
				SequenceIndex:  int32(point.Chunk.SequenceIndex),
				Content:        point.Chunk.Text,
				Embedding:      pgvector.NewVector(point.Vector),
			})
			if err != nil {
				return zero, fmt.Errorf("failed to upsert index point %d: %w", point.Chunk.SequenceIndex, err)
			}
		}

		// チャンク数が減った場合の残骸を同一トランザクションで掃除する
		if _, err := a.Queries.DeleteStaleIndexPoints(ctx, sqlc.DeleteStaleIndexPointsParams{
			SourceDocument:    sourceDocument,
			FromSequenceIndex: int32(len(points)),
		}); err != nil {
			return zero, fmt.Errorf("failed to delete stale index points: %w", err)
		}

		if err := a.Queries.UpsertDocumentRecord(ctx, sqlc.UpsertDocumentRecordParams{
			SourceDocument: sourceDocument,
			ChunkCount:     int32(len(points)),
			IngestedAt:     TimeToPgtype(ingestedAt),
		}); err != nil {
			return zero, fmt.Errorf("failed to upsert document record: %w", err)
		}

		return zero, nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace document %s: %w", sourceDocument, err)
	}

	return nil
}

// DeleteDocument はドキュメントの全ポイントとレジストリレコードを削除し、
// 削除したポイント数を返します
func (r *WriterRepository) DeleteDocument(ctx context.Context, sourceDocument string) (int, error) {
	deleted, err := database.Transact(ctx, r.provider, func(a *database.Adapter) (int64, error) {
		lockID := database.GenerateLockID("document", sourceDocument)
		if _, err := a.Locks.Acquire(ctx, lockID); err != nil {
			return 0, err
		}

		deleted, err := a.Queries.DeleteIndexPointsBySource(ctx, sourceDocument)
		if err != nil {
			return 0, fmt.Errorf("failed to delete index points: %w", err)
		}

		if _, err := a.Queries.DeleteDocumentRecord(ctx, sourceDocument); err != nil {
			return 0, fmt.Errorf("failed to delete document record: %w", err)
		}

		return deleted, nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete document %s: %w", sourceDocument, err)
	}

	return int(deleted), nil
}
