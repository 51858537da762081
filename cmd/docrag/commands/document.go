package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"
)

// DocumentListAction はインデックス済みドキュメント一覧を表示するコマンドのアクション
func DocumentListAction(ctx context.Context, cmd *cli.Command) error {
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

	if len(records) == 0 {
		fmt.Println("インデックス済みドキュメントはありません")
		return nil
	}

	for _, record := range records {
		fmt.Printf("%s\t%dチャンク\t%s\n",
			record.SourceDocument,
			record.ChunkCount,
			record.IngestedAt.Format("2006-01-02 15:04:05"),
		)
	}

	return nil
}

// DocumentDeleteAction はドキュメントをインデックスから削除するコマンドのアクション
func DocumentDeleteAction(ctx context.Context, cmd *cli.Command) error {
	source := cmd.String("source")
	envFile := cmd.String("env")

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	slog.Info("ドキュメント削除を開始", "source", source)

	deleted, err := appCtx.Container.IngestionService.Delete(ctx, source)
	if err != nil {
		slog.Error("ドキュメント削除に失敗しました", "error", err)
		return err
	}

	fmt.Printf("削除完了: %s (%dチャンク)\n", source, deleted)

	return nil
}
