package retrieval

import "github.com/samber/mo"

// RetrievedContext はクエリに対するランク付き検索結果を表す
// クエリごとに計算され、永続化はされない
type RetrievedContext struct {
	ChunkText      string  // プロンプト構築に使う全文
	SourceDocument string  // 出典ドキュメント
	SequenceIndex  int     // ドキュメント内のチャンク位置
	Score          float64 // 関連度スコア（高いほど関連が強い）
	Excerpt        string  // 出典表示用の抜粋（長さ制限付き）
}

// SearchHit はベクトルストアから返る生の検索ヒット
type SearchHit struct {
	SourceDocument string
	SequenceIndex  int
	Content        string
	Score          float64
}

// RetrieveParams は検索パラメータを表す
type RetrieveParams struct {
	Question       string             // ユーザーの質問文
	TopK           mo.Option[int]     // 取得件数の上書き（省略時は設定値）
	ScoreThreshold mo.Option[float64] // スコア下限の上書き（省略時は設定値）
	DisableDedup   bool               // 重複排除を無効化する（チューニング用）
}

// Config は検索の既定値を保持する
type Config struct {
	TopK           int
	ScoreThreshold float64
	ExcerptLength  int // 抜粋の最大文字数
}

// DefaultConfig はデフォルトの検索設定を返す
func DefaultConfig() Config {
	return Config{
		TopK:           3,
		ScoreThreshold: 0.30,
		ExcerptLength:  200,
	}
}
