package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/jinford/docrag/internal/core/ingestion"
)

// IngestAction はファイルを取り込むコマンドのアクション
func IngestAction(ctx context.Context, cmd *cli.Command) error {
	filePath := cmd.String("file")
	source := cmd.String("source")
	envFile := cmd.String("env")

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("ファイルの読み込みに失敗: %w", err)
	}

	slog.Info("ドキュメント取り込みを開始",
		"file", filePath,
		"source", source,
	)

	result, err := appCtx.Container.IngestionService.Ingest(ctx, ingestion.IngestParams{
		FileName:       filepath.Base(filePath),
		SourceDocument: source,
		Data:           data,
	})
	if err != nil {
		slog.Error("ドキュメント取り込みに失敗しました", "error", err)
		return err
	}

	slog.Info("ドキュメント取り込みが完了しました",
		"source", result.SourceDocument,
		"chunks", result.ChunkCount,
		"duration", result.Duration.String(),
	)

	fmt.Printf("取り込み完了: %s (%dチャンク)\n", result.SourceDocument, result.ChunkCount)

	return nil
}
