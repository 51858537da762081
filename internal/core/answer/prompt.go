package answer

import (
	"fmt"
	"strings"

	"github.com/jinford/docrag/internal/core/retrieval"
)

// BuildAnswerPrompt はRAG質問応答用のプロンプトを構築する
//
// コンテキストはランク順のまま maxContextTokens のトークン予算内に収める。
// 予算を超える場合は下位ランクのコンテキストを丸ごと落とし、
// チャンクの途中で切り詰めることはしない。
// 戻り値の2つ目は実際にプロンプトへ載せたコンテキスト
func BuildAnswerPrompt(
	question string,
	contexts []*retrieval.RetrievedContext,
	maxContextTokens int,
	counter TokenCounter,
) (string, []*retrieval.RetrievedContext) {
	included := make([]*retrieval.RetrievedContext, 0, len(contexts))
	usedTokens := 0
	for _, ctx := range contexts {
		tokens := counter.Count(ctx.ChunkText)
		if usedTokens+tokens > maxContextTokens && len(included) > 0 {
			break
		}
		included = append(included, ctx)
		usedTokens += tokens
	}

	var sb strings.Builder

	sb.WriteString("あなたはアップロードされたドキュメントに基づいて質問に回答するアシスタントです。\n")
	sb.WriteString("以下のコンテキスト情報のみを根拠として、正確かつ簡潔に回答してください。\n\n")

	sb.WriteString("## 回答のガイドライン\n")
	sb.WriteString("- コンテキストに含まれる情報のみを使用して回答してください\n")
	sb.WriteString("- コンテキストから回答できない場合は、推測せずにその旨を述べてください\n\n")

	sb.WriteString("## コンテキスト\n")
	for i, ctx := range included {
		sb.WriteString(fmt.Sprintf("### [断片 %d] 出典: %s (関連度: %.3f)\n", i+1, ctx.SourceDocument, ctx.Score))
		sb.WriteString(ctx.ChunkText)
		sb.WriteString("\n\n")
	}

	sb.WriteString("## 質問\n")
	sb.WriteString(question)
	sb.WriteString("\n\n")

	sb.WriteString("## 回答\n")

	return sb.String(), included
}
