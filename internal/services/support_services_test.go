package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"content-orchestrator/internal/domain/media"
	"content-orchestrator/internal/mapper"
	"content-orchestrator/internal/redis"
	"content-orchestrator/internal/repository"
	"content-orchestrator/internal/services"
	"content-orchestrator/internal/storage"
	"content-orchestrator/internal/testutil"
	orchestrator_errors "content-orchestrator/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMappingService_CRUDAndResolve(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repository.NewAccountMappingRepository(db)
	snap, err := mapper.ParseSnapshot(`{"ws_1":{"x":"acc_env"}}`)
	require.NoError(t, err)
	svc := services.NewMappingService(repo, mapper.New(snap, repo))

	_, err = svc.UpsertMany(ctx, "ws_1", map[string]mapper.AccountIDs{
		"linkedin":  {"acc_111"},
		"instagram": {"acc_222", "acc_333"},
	})
	require.NoError(t, err)

	items, legacy, err := svc.List(ctx, "ws_1")
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, mapper.AccountIDs{"acc_111"}, legacy["linkedin"])

	accounts, err := svc.Resolve(ctx, "ws_1", []string{"instagram", "x", "raw_acc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"acc_222", "acc_333", "acc_env", "raw_acc"}, accounts)

	_, err = svc.Upsert(ctx, "ws_1", "tiktok", []string{" "})
	assert.ErrorIs(t, err, orchestrator_errors.ErrInvalidInput)
	_, err = svc.Upsert(ctx, "", "tiktok", []string{"acc"})
	assert.ErrorIs(t, err, orchestrator_errors.ErrInvalidInput)

	require.NoError(t, svc.Delete(ctx, items[0].ID))
	items, _, err = svc.List(ctx, "ws_1")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

type fakeDirectory struct {
	calls int
	err   error
}

func (f *fakeDirectory) ListWorkspaces(context.Context) ([]json.RawMessage, error) {
	f.calls++
	return []json.RawMessage{json.RawMessage(`{"id":"ws_1"}`)}, f.err
}

func (f *fakeDirectory) ListAccounts(_ context.Context, ws string) ([]json.RawMessage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []json.RawMessage{json.RawMessage(`{"id":"acc_1","workspace":"` + ws + `"}`)}, nil
}

func TestAccountService_CachesAccounts(t *testing.T) {
	ctx := context.Background()
	_, client := testutil.NewRedis(t)
	dir := &fakeDirectory{}
	svc := services.NewAccountService(dir, redis.NewCacheStore(client, redis.DefaultCacheConfig()), nil)

	first, err := svc.ListAccounts(ctx, "ws_1")
	require.NoError(t, err)
	second, err := svc.ListAccounts(ctx, "ws_1")
	require.NoError(t, err)
	assert.Equal(t, 1, dir.calls)
	assert.Equal(t, len(first), len(second))

	_, err = svc.ListAccounts(ctx, "")
	assert.ErrorIs(t, err, orchestrator_errors.ErrInvalidInput)
}

func TestAccountService_UpstreamFailure(t *testing.T) {
	dir := &fakeDirectory{err: errors.New("upstream 500")}
	svc := services.NewAccountService(dir, nil, nil)

	_, err := svc.ListAccounts(context.Background(), "ws_1")
	assert.Error(t, err)
}

type fakeObjectStore struct {
	deleted []string
}

func (f *fakeObjectStore) PresignPut(_ context.Context, key, contentType string, size int64) (storage.PresignedUpload, error) {
	return storage.PresignedUpload{
		URL:       "https://bucket.s3.amazonaws.com/" + key + "?X-Amz-Signature=abc",
		Headers:   map[string]string{"Content-Type": contentType},
		ObjectKey: key,
		ExpiresAt: time.Now().Add(time.Minute),
	}, nil
}

func (f *fakeObjectStore) DeleteObject(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func TestMediaService_PresignAndDelete(t *testing.T) {
	ctx := context.Background()
	store := &fakeObjectStore{}
	svc := services.NewMediaService(repository.NewMediaRepository(testutil.NewDB(t)), store, nil)

	res, err := svc.CreatePresignedUpload(ctx, services.PresignInput{
		WorkspaceID: "ws_1",
		Filename:    "hero.png",
		ContentType: "image/png",
		FileSize:    1024,
		Folder:      "launch",
	})
	require.NoError(t, err)
	assert.Contains(t, res.UploadURL, "X-Amz-Signature")
	assert.False(t, strings.Contains(res.Asset.URL, "?"))
	assert.True(t, strings.HasPrefix(res.Asset.ObjectKey, "media/ws_1/"))

	folders, err := svc.Folders(ctx, "ws_1")
	require.NoError(t, err)
	assert.Equal(t, []string{"launch"}, folders)

	require.NoError(t, svc.Delete(ctx, res.Asset.ID))
	assert.Equal(t, []string{res.Asset.ObjectKey}, store.deleted)

	_, err = svc.Get(ctx, res.Asset.ID)
	assert.ErrorIs(t, err, orchestrator_errors.ErrNotFound)

	_, err = svc.CreatePresignedUpload(ctx, services.PresignInput{WorkspaceID: "ws_1", Filename: "x.sh", ContentType: "application/x-sh", FileSize: 1})
	assert.ErrorIs(t, err, orchestrator_errors.ErrInvalidInput)
}

func TestMediaService_WithoutStorage(t *testing.T) {
	ctx := context.Background()
	svc := services.NewMediaService(repository.NewMediaRepository(testutil.NewDB(t)), nil, nil)

	_, err := svc.CreatePresignedUpload(ctx, services.PresignInput{WorkspaceID: "ws_1", Filename: "a.png", ContentType: "image/png", FileSize: 1})
	assert.ErrorIs(t, err, orchestrator_errors.ErrNotConfigured)

	asset, err := svc.Register(ctx, media.Asset{WorkspaceID: "ws_1", URL: "https://cdn/a.png", Tags: []string{"hero"}})
	require.NoError(t, err)
	assert.NotEmpty(t, asset.ID)

	list, err := svc.List(ctx, media.ListFilter{WorkspaceID: "ws_1", Tags: []string{"hero"}})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
