package ingestion

import "sync"

// keyedMutex はキーごとの排他制御を提供する
//
// 同一ドキュメントの並行取り込みを extract→chunk→embed→upsert の
// 全区間で直列化するために使う。グローバルロックにすると無関係な
// ドキュメント同士まで直列化してしまうため、キー単位で持つ。
// エントリは解放後も破棄されず、保持数は取り込んだことのある
// ドキュメント識別子の種類数に比例する（1キーあたり数十バイト）
type keyedMutex struct {
	mus sync.Map // map[string]*sync.Mutex
}

// Lock はキーに対応するミューテックスを取得してロックする
func (k *keyedMutex) Lock(key string) {
	mu, _ := k.mus.LoadOrStore(key, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
}

// Unlock はキーに対応するミューテックスを解放する
func (k *keyedMutex) Unlock(key string) {
	mu, ok := k.mus.Load(key)
	if !ok {
		return
	}
	mu.(*sync.Mutex).Unlock()
}
