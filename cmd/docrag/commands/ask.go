package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/mo"
	"github.com/urfave/cli/v3"

	"github.com/jinford/docrag/internal/core/retrieval"
)

// AskAction は質問に回答するコマンドのアクション
func AskAction(ctx context.Context, cmd *cli.Command) error {
	question := cmd.String("question")
	topK := cmd.Int("top-k")
	envFile := cmd.String("env")

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	slog.Info("質問応答を開始", "question", question)

	params := retrieval.RetrieveParams{Question: question}
	if topK > 0 {
		params.TopK = mo.Some(int(topK))
	}

	contexts, err := appCtx.Container.RetrievalService.Retrieve(ctx, params)
	if err != nil {
		slog.Error("コンテキスト検索に失敗しました", "error", err)
		return err
	}

	result, err := appCtx.Container.AnswerService.Answer(ctx, question, contexts)
	if err != nil {
		slog.Error("回答生成に失敗しました", "error", err)
		return err
	}

	fmt.Println(result.Answer)

	if len(result.Sources) > 0 {
		fmt.Println("\n出典:")
		for i, src := range result.Sources {
			fmt.Printf("  [%d] %s (関連度: %.3f)\n", i+1, src.SourceDocument, src.Score)
		}
	}

	return nil
}
