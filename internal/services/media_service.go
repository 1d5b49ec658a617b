package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"content-orchestrator/internal/domain/media"
	"content-orchestrator/internal/repository"
	"content-orchestrator/internal/storage"
	orchestrator_errors "content-orchestrator/pkg/errors"
	"content-orchestrator/pkg/logger"

	"go.uber.org/zap"
)

type ObjectStore interface {
	PresignPut(ctx context.Context, key, contentType string, sizeBytes int64) (storage.PresignedUpload, error)
	DeleteObject(ctx context.Context, key string) error
}

type MediaService struct {
	repo  repository.MediaRepository
	store ObjectStore
	log   *logger.Logger
}

// NewMediaService builds the media library. store may be nil when uploads are not configured.
func NewMediaService(repo repository.MediaRepository, store ObjectStore, log *logger.Logger) *MediaService {
	if log == nil {
		log = logger.NewNop()
	}
	return &MediaService{repo: repo, store: store, log: log}
}

type PresignInput struct {
	WorkspaceID string
	Filename    string
	ContentType string
	FileSize    int64
	AltText     string
	Tags        []string
	Folder      string
	CreatedBy   string
}

type PresignResult struct {
	Asset     media.Asset
	UploadURL string
	Headers   map[string]string
	ExpiresAt time.Time
}

func (s *MediaService) CreatePresignedUpload(ctx context.Context, input PresignInput) (PresignResult, error) {
	if s.store == nil {
		return PresignResult{}, orchestrator_errors.ErrNotConfigured
	}
	if input.WorkspaceID == "" || input.Filename == "" || input.FileSize <= 0 {
		return PresignResult{}, fmt.Errorf("%w: workspace_id, filename and file_size are required", orchestrator_errors.ErrInvalidInput)
	}
	if err := storage.ValidateContentType(input.ContentType); err != nil {
		return PresignResult{}, fmt.Errorf("%w: %s", orchestrator_errors.ErrInvalidInput, err.Error())
	}

	key := storage.ObjectKey(input.WorkspaceID, input.Filename)
	upload, err := s.store.PresignPut(ctx, key, input.ContentType, input.FileSize)
	if err != nil {
		return PresignResult{}, err
	}

	asset := media.Asset{
		WorkspaceID: input.WorkspaceID,
		URL:         upload.FileURL,
		ObjectKey:   key,
		Filename:    input.Filename,
		AltText:     input.AltText,
		FileType:    input.ContentType,
		FileSize:    input.FileSize,
		Tags:        input.Tags,
		Folder:      orchestrator_errors.StringPtr(input.Folder),
		CreatedBy:   orchestrator_errors.StringPtr(input.CreatedBy),
	}
	if asset.URL == "" {
		asset.URL = stripQuery(upload.URL)
	}
	if err := s.repo.Create(ctx, &asset); err != nil {
		return PresignResult{}, err
	}

	return PresignResult{
		Asset:     asset,
		UploadURL: upload.URL,
		Headers:   upload.Headers,
		ExpiresAt: upload.ExpiresAt,
	}, nil
}

// Register records an asset hosted elsewhere.
func (s *MediaService) Register(ctx context.Context, asset media.Asset) (media.Asset, error) {
	if asset.WorkspaceID == "" || asset.URL == "" {
		return media.Asset{}, fmt.Errorf("%w: workspace_id and url are required", orchestrator_errors.ErrInvalidInput)
	}
	asset.ID = ""
	asset.ObjectKey = ""
	if err := s.repo.Create(ctx, &asset); err != nil {
		return media.Asset{}, err
	}
	return asset, nil
}

func (s *MediaService) Get(ctx context.Context, id string) (media.Asset, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *MediaService) List(ctx context.Context, filter media.ListFilter) ([]media.Asset, error) {
	if filter.WorkspaceID == "" {
		return nil, fmt.Errorf("%w: workspace is required", orchestrator_errors.ErrInvalidInput)
	}
	return s.repo.List(ctx, filter)
}

func (s *MediaService) Folders(ctx context.Context, workspaceID string) ([]string, error) {
	if workspaceID == "" {
		return nil, fmt.Errorf("%w: workspace is required", orchestrator_errors.ErrInvalidInput)
	}
	return s.repo.Folders(ctx, workspaceID)
}

// Delete removes the row, then best-effort removes the uploaded object.
func (s *MediaService) Delete(ctx context.Context, id string) error {
	asset, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if asset.ObjectKey != "" && s.store != nil {
		if err := s.store.DeleteObject(ctx, asset.ObjectKey); err != nil {
			s.log.WithContext(ctx).Warn("failed to delete media object",
				zap.String("media_id", id),
				zap.String("object_key", asset.ObjectKey),
				zap.Error(err),
			)
		}
	}
	return nil
}

func stripQuery(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return strings.SplitN(raw, "?", 2)[0]
	}
	u.RawQuery = ""
	return u.String()
}
