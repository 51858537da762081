package registry

import "context"

// Repository はドキュメントレジストリへのデータアクセス境界
//
// レジストリの書き込みは取り込み側のトランザクションに同居しており、
// ここから独立に更新されることはない（ドリフト防止）
type Repository interface {
	// ListDocuments はレジストリの全レコードを返す
	ListDocuments(ctx context.Context) ([]*DocumentRecord, error)

	// RebuildFromPoints はベクトルストアのポイントを集計してレジストリを再構築し、
	// 再構築後のドキュメント数を返す
	RebuildFromPoints(ctx context.Context) (int, error)
}
