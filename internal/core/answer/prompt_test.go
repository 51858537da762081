package answer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinford/docrag/internal/core/retrieval"
)

func TestBuildAnswerPrompt_Structure(t *testing.T) {
	// プロンプトはガイドライン・コンテキスト・質問・回答のセクションを持つ
	contexts := []*retrieval.RetrievedContext{
		{ChunkText: "チャンク本文", SourceDocument: "doc.txt", Score: 0.85},
	}

	prompt, included := BuildAnswerPrompt("質問文", contexts, 1000, runeCounter{})

	require.Len(t, included, 1)
	assert.Contains(t, prompt, "## 回答のガイドライン")
	assert.Contains(t, prompt, "## コンテキスト")
	assert.Contains(t, prompt, "[断片 1] 出典: doc.txt")
	assert.Contains(t, prompt, "チャンク本文")
	assert.Contains(t, prompt, "## 質問\n質問文")
	assert.True(t, strings.HasSuffix(prompt, "## 回答\n"))
}

func TestBuildAnswerPrompt_BudgetDropsWholeChunks(t *testing.T) {
	// 予算超過時はチャンクを途中で切らず丸ごと落とす
	contexts := []*retrieval.RetrievedContext{
		{ChunkText: strings.Repeat("a", 50), SourceDocument: "1.txt", Score: 0.9},
		{ChunkText: strings.Repeat("b", 50), SourceDocument: "2.txt", Score: 0.8},
		{ChunkText: strings.Repeat("c", 50), SourceDocument: "3.txt", Score: 0.7},
	}

	prompt, included := BuildAnswerPrompt("質問", contexts, 120, runeCounter{})

	require.Len(t, included, 2)
	assert.Contains(t, prompt, strings.Repeat("a", 50))
	assert.Contains(t, prompt, strings.Repeat("b", 50))
	assert.NotContains(t, prompt, strings.Repeat("c", 50))
}

func TestBuildAnswerPrompt_AlwaysIncludesTopContext(t *testing.T) {
	// 先頭コンテキストが単独で予算を超えても必ず1件は含める
	contexts := []*retrieval.RetrievedContext{
		{ChunkText: strings.Repeat("x", 500), SourceDocument: "big.txt", Score: 0.9},
	}

	_, included := BuildAnswerPrompt("質問", contexts, 10, runeCounter{})
	require.Len(t, included, 1)
}
