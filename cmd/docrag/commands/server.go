package commands

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/jinford/docrag/internal/interface/api"
)

// ServerStartAction はHTTPサーバを起動するコマンドのアクション
func ServerStartAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	port := int(cmd.Int("port"))

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	if port <= 0 {
		port = appCtx.Config.Server.Port
	}

	server := api.NewServer(appCtx.Container, port,
		api.WithServerLogger(appCtx.Logger()),
		api.WithMaxUploadSize(appCtx.Config.Server.MaxUploadSize),
	)

	if err := server.Start(ctx); err != nil {
		slog.Error("HTTPサーバの実行に失敗しました", "error", err)
		return err
	}

	return nil
}
