package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jinford/docrag/internal/platform/container"
)

const (
	// shutdownTimeout はGraceful Shutdownの待機時間
	shutdownTimeout = 10 * time.Second

	// defaultMaxUploadSize はアップロードサイズ上限のデフォルト値
	defaultMaxUploadSize = 32 << 20
)

// Server はドキュメント取り込みと質問応答のHTTP APIを提供する
type Server struct {
	container     *container.ServiceContainer
	logger        *slog.Logger
	maxUploadSize int64
	httpServer    *http.Server
}

type serverOptions struct {
	logger        *slog.Logger
	maxUploadSize int64
}

// ServerOption は Server のオプション設定
type ServerOption func(*serverOptions)

// WithServerLogger は Server にロガーを設定する
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(o *serverOptions) {
		o.logger = logger
	}
}

// WithMaxUploadSize はアップロードサイズ上限を上書きする
func WithMaxUploadSize(size int64) ServerOption {
	return func(o *serverOptions) {
		o.maxUploadSize = size
	}
}

// NewServer は新しい Server を作成する
func NewServer(c *container.ServiceContainer, port int, opts ...ServerOption) *Server {
	options := serverOptions{
		logger:        c.Logger(),
		maxUploadSize: defaultMaxUploadSize,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	s := &Server{
		container:     c,
		logger:        options.logger,
		maxUploadSize: options.maxUploadSize,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("POST /query", s.handleQuery)
	mux.HandleFunc("GET /documents", s.handleListDocuments)
	mux.HandleFunc("DELETE /documents/{source}", s.handleDeleteDocument)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.logMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Start はHTTPサーバを起動し、ctxのキャンセルでGraceful Shutdownする
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTPサーバを起動します", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTPサーバの起動に失敗しました: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("HTTPサーバを停止します")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTPサーバの停止に失敗しました: %w", err)
	}

	return nil
}

// logMiddleware はリクエストごとのアクセスログを出力する
func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start).String(),
		)
	})
}
