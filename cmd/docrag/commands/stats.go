package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"
)

// StatsAction はインデックスの統計情報を表示するコマンドのアクション
func StatsAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	records, err := appCtx.Container.RegistryService.List(ctx)
	if err != nil {
		slog.Error("ドキュメント一覧の取得に失敗しました", "error", err)
		return err
	}

	chunks, err := appCtx.Container.RetrievalService.TotalPoints(ctx)
	if err != nil {
		slog.Error("ポイント数の取得に失敗しました", "error", err)
		return err
	}

	fmt.Printf("ドキュメント数: %d\n", len(records))
	fmt.Printf("チャンク数: %d\n", chunks)

	return nil
}
