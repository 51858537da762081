package registry

import (
	"context"
	"fmt"
	"log/slog"
)

// Service はドキュメントレジストリの読み取りと再構築を提供する
//
// レジストリはベクトルストアから導出されるキャッシュであり、
// 信頼できる唯一の情報源はストア側にある
type Service struct {
	repo   Repository
	logger *slog.Logger
}

type serviceOptions struct {
	logger *slog.Logger
}

// ServiceOption は Service のオプション設定
type ServiceOption func(*serviceOptions)

// WithRegistryLogger は Service にロガーを設定する
func WithRegistryLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// NewService は新しい Service を作成する
func NewService(repo Repository, opts ...ServiceOption) *Service {
	options := serviceOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	return &Service{
		repo:   repo,
		logger: options.logger,
	}
}

// List はインデックス済みドキュメントの一覧を返す
func (s *Service) List(ctx context.Context) ([]*DocumentRecord, error) {
	records, err := s.repo.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return records, nil
}

// Rebuild はベクトルストアの内容からレジストリを再構築する
func (s *Service) Rebuild(ctx context.Context) (int, error) {
	count, err := s.repo.RebuildFromPoints(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to rebuild registry: %w", err)
	}

	s.logger.Info("document registry rebuilt", "documents", count)
	return count, nil
}
