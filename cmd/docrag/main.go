package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/jinford/docrag/cmd/docrag/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 構造化ログの設定
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	app := &cli.Command{
		Name:  "docrag",
		Usage: "社内ドキュメント向け RAG 質問応答システム",
		Commands: []*cli.Command{
			{
				Name:  "ingest",
				Usage: "ドキュメントをインデックスに取り込む",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "env",
						Usage: "環境変数ファイルパス",
						Value: ".env",
					},
					&cli.StringFlag{
						Name:     "file",
						Usage:    "取り込むファイルパス (txt/md/pdf/docx)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "ドキュメント識別子（省略時はファイル名）",
					},
				},
				Action: commands.IngestAction,
			},
			{
				Name:  "ask",
				Usage: "インデックス済みドキュメントに質問する",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "env",
						Usage: "環境変数ファイルパス",
						Value: ".env",
					},
					&cli.StringFlag{
						Name:     "question",
						Usage:    "質問文",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "検索するコンテキスト数（省略時は設定値）",
					},
				},
				Action: commands.AskAction,
			},
			{
				Name:  "document",
				Usage: "ドキュメント管理コマンド",
				Commands: []*cli.Command{
					{
						Name:  "list",
						Usage: "インデックス済みドキュメント一覧を表示",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
						},
						Action: commands.DocumentListAction,
					},
					{
						Name:  "delete",
						Usage: "ドキュメントをインデックスから削除",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.StringFlag{
								Name:     "source",
								Usage:    "ドキュメント識別子",
								Required: true,
							},
						},
						Action: commands.DocumentDeleteAction,
					},
				},
			},
			{
				Name:  "registry",
				Usage: "ドキュメントレジストリ管理コマンド",
				Commands: []*cli.Command{
					{
						Name:  "rebuild",
						Usage: "ベクトルストアからレジストリを再構築",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
						},
						Action: commands.RegistryRebuildAction,
					},
				},
			},
			{
				Name:  "stats",
				Usage: "インデックスの統計情報を表示",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "env",
						Usage: "環境変数ファイルパス",
						Value: ".env",
					},
				},
				Action: commands.StatsAction,
			},
			{
				Name:  "server",
				Usage: "サーバ関連コマンド",
				Commands: []*cli.Command{
					{
						Name:  "start",
						Usage: "HTTPサーバを起動",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.IntFlag{
								Name:  "port",
								Usage: "HTTPポート（省略時は環境変数またはデフォルトの8080）",
							},
						},
						Action: commands.ServerStartAction,
					},
				},
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
