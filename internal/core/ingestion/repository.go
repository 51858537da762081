package ingestion

import (
	"context"
	"time"
)

// Repository はベクトルストアとドキュメントレジストリへの書き込み境界
//
// 各メソッドは1トランザクションとして実行され、ポイントとレジストリの
// 整合性を保つ（レジストリは検索可能な状態を正確に反映する）
type Repository interface {
	// ReplaceDocument はドキュメントの全ポイントを原子的に書き換える
	// 既存ポイントのうち sequence_index が len(points) 以上のものは同時に削除され、
	// チャンク数が減る再取り込みでも残骸が残らない
	ReplaceDocument(ctx context.Context, sourceDocument string, points []IndexPoint, ingestedAt time.Time) error

	// DeleteDocument はドキュメントの全ポイントとレジストリレコードを削除し、
	// 削除したポイント数を返す。該当ポイントが存在しない場合は 0 を返す
	DeleteDocument(ctx context.Context, sourceDocument string) (int, error)
}
