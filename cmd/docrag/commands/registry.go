package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"
)

// RegistryRebuildAction はベクトルストアからレジストリを再構築するコマンドのアクション
//
// レジストリが何らかの理由でストアとずれた場合の復旧手段であり、
// 通常運用で実行する必要はない
func RegistryRebuildAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	slog.Info("レジストリ再構築を開始")

	count, err := appCtx.Container.RegistryService.Rebuild(ctx)
	if err != nil {
		slog.Error("レジストリ再構築に失敗しました", "error", err)
		return err
	}

	fmt.Printf("レジストリ再構築完了: %dドキュメント\n", count)

	return nil
}
