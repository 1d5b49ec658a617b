package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"content-orchestrator/internal/domain/mapping"
	"content-orchestrator/internal/mapper"
	"content-orchestrator/internal/repository"
	orchestrator_errors "content-orchestrator/pkg/errors"
)

type MappingService struct {
	repo   repository.AccountMappingRepository
	mapper *mapper.Mapper
}

func NewMappingService(repo repository.AccountMappingRepository, m *mapper.Mapper) *MappingService {
	return &MappingService{repo: repo, mapper: m}
}

// List returns the active rows and the same data keyed by slug.
func (s *MappingService) List(ctx context.Context, workspaceID string) ([]mapping.AccountMapping, map[string]mapper.AccountIDs, error) {
	if strings.TrimSpace(workspaceID) == "" {
		return nil, nil, fmt.Errorf("%w: workspace is required", orchestrator_errors.ErrInvalidInput)
	}
	items, err := s.repo.ListActive(ctx, workspaceID)
	if err != nil {
		return nil, nil, err
	}
	legacy := make(map[string]mapper.AccountIDs, len(items))
	for _, m := range items {
		legacy[m.ChannelSlug] = mapper.AccountIDs(m.AccountIDs)
	}
	return items, legacy, nil
}

func (s *MappingService) Upsert(ctx context.Context, workspaceID, slug string, accountIDs []string) (mapping.AccountMapping, error) {
	m, err := newMapping(workspaceID, slug, accountIDs)
	if err != nil {
		return mapping.AccountMapping{}, err
	}
	if err := s.repo.Upsert(ctx, &m); err != nil {
		return mapping.AccountMapping{}, err
	}
	return m, nil
}

// UpsertMany writes every slug of the table in one transaction, in slug order.
func (s *MappingService) UpsertMany(ctx context.Context, workspaceID string, table map[string]mapper.AccountIDs) ([]mapping.AccountMapping, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("%w: mappings are required", orchestrator_errors.ErrInvalidInput)
	}
	slugs := make([]string, 0, len(table))
	for slug := range table {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	items := make([]mapping.AccountMapping, 0, len(slugs))
	for _, slug := range slugs {
		m, err := newMapping(workspaceID, slug, table[slug])
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return s.repo.UpsertMany(ctx, items)
}

func (s *MappingService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Resolve runs the channel mapper for a workspace.
func (s *MappingService) Resolve(ctx context.Context, workspaceID string, channels []string) ([]string, error) {
	if strings.TrimSpace(workspaceID) == "" {
		return nil, fmt.Errorf("%w: workspace is required", orchestrator_errors.ErrInvalidInput)
	}
	return s.mapper.Resolve(ctx, workspaceID, channels)
}

func newMapping(workspaceID, slug string, accountIDs []string) (mapping.AccountMapping, error) {
	workspaceID = strings.TrimSpace(workspaceID)
	slug = strings.TrimSpace(slug)
	if workspaceID == "" || slug == "" {
		return mapping.AccountMapping{}, fmt.Errorf("%w: workspace_id and channel_slug are required", orchestrator_errors.ErrInvalidInput)
	}
	ids := make([]string, 0, len(accountIDs))
	for _, id := range accountIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return mapping.AccountMapping{}, fmt.Errorf("%w: account_ids must not be empty", orchestrator_errors.ErrInvalidInput)
	}
	return mapping.AccountMapping{WorkspaceID: workspaceID, ChannelSlug: slug, AccountIDs: ids, Active: true}, nil
}
