package registry

import "time"

// DocumentRecord はインデックス済みドキュメントのレジストリエントリ
// ChunkCount はそのドキュメントの生きているポイント数と常に一致する
type DocumentRecord struct {
	SourceDocument string    `json:"sourceDocument"`
	ChunkCount     int       `json:"chunkCount"`
	IngestedAt     time.Time `json:"ingestedAt"`
}
