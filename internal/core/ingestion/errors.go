package ingestion

import "errors"

var (
	// ErrInvalidChunkConfig はチャンク設定が不正な場合のエラー（設定バグ、リトライ不可）
	ErrInvalidChunkConfig = errors.New("invalid chunk config: require 0 <= overlap < size")

	// ErrEmbeddingUnavailable はEmbeddingサービスに到達できない場合のエラー（一時的、リトライ可）
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrEmbeddingTimeout はEmbedding呼び出しがタイムアウトした場合のエラー
	ErrEmbeddingTimeout = errors.New("embedding request timed out")

	// ErrPartialIngestion はEmbeddingまたはストア書き込みの途中失敗を表すエラー
	// ドキュメント全体の取り込み失敗として単一のエラーで表面化する
	ErrPartialIngestion = errors.New("document ingestion failed")

	// ErrDocumentNotFound は存在しないドキュメントの削除を表すエラー
	// 削除済みドキュメントの再削除はサイレントな no-op にせず、このエラーで報告する
	ErrDocumentNotFound = errors.New("document not found")
)
