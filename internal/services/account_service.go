package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	orchestrator_errors "content-orchestrator/pkg/errors"
	"content-orchestrator/pkg/logger"

	"go.uber.org/zap"
)

type ProviderDirectory interface {
	ListWorkspaces(ctx context.Context) ([]json.RawMessage, error)
	ListAccounts(ctx context.Context, workspaceID string) ([]json.RawMessage, error)
}

// DirectoryCache stores provider listings. Get methods return nil, nil on a miss.
type DirectoryCache interface {
	GetWorkspaces(ctx context.Context) ([]json.RawMessage, error)
	SetWorkspaces(ctx context.Context, items []json.RawMessage) error
	GetAccounts(ctx context.Context, workspaceID string) ([]json.RawMessage, error)
	SetAccounts(ctx context.Context, workspaceID string, items []json.RawMessage) error
}

// AccountService proxies provider workspace and account listings.
type AccountService struct {
	directory ProviderDirectory
	cache     DirectoryCache
	log       *logger.Logger
}

// NewAccountService builds the proxy. cache may be nil.
func NewAccountService(directory ProviderDirectory, cache DirectoryCache, log *logger.Logger) *AccountService {
	if log == nil {
		log = logger.NewNop()
	}
	return &AccountService{directory: directory, cache: cache, log: log}
}

func (s *AccountService) ListWorkspaces(ctx context.Context) ([]json.RawMessage, error) {
	if s.cache != nil {
		if items, err := s.cache.GetWorkspaces(ctx); err == nil && items != nil {
			return items, nil
		} else if err != nil {
			s.log.WithContext(ctx).Warn("workspace cache read failed", zap.Error(err))
		}
	}
	items, err := s.directory.ListWorkspaces(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetWorkspaces(ctx, items); err != nil {
			s.log.WithContext(ctx).Warn("workspace cache write failed", zap.Error(err))
		}
	}
	return items, nil
}

func (s *AccountService) ListAccounts(ctx context.Context, workspaceID string) ([]json.RawMessage, error) {
	if strings.TrimSpace(workspaceID) == "" {
		return nil, fmt.Errorf("%w: workspace query param required", orchestrator_errors.ErrInvalidInput)
	}
	log := s.log.WithContext(logger.WithWorkspace(ctx, workspaceID))
	if s.cache != nil {
		if items, err := s.cache.GetAccounts(ctx, workspaceID); err == nil && items != nil {
			return items, nil
		} else if err != nil {
			log.Warn("account cache read failed", zap.Error(err))
		}
	}
	items, err := s.directory.ListAccounts(ctx, workspaceID)
	if err != nil {
		log.Error("accounts fetch failed", zap.Error(err))
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetAccounts(ctx, workspaceID, items); err != nil {
			log.Warn("account cache write failed", zap.Error(err))
		}
	}
	return items, nil
}
