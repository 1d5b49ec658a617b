package repository_test

import (
	"context"
	"testing"
	"time"

	"content-orchestrator/internal/domain/webhook"
	"content-orchestrator/internal/repository"
	"content-orchestrator/internal/testutil"
	orchestrator_errors "content-orchestrator/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestWebhookEventRepository_CreateAndMarkProcessed(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewWebhookEventRepository(testutil.NewDB(t))

	e := &webhook.Event{Payload: `{"post_id":"p1"}`, ProviderPostID: strPtr("p1")}
	require.NoError(t, repo.Create(ctx, e))
	require.NotEmpty(t, e.ID)
	assert.Equal(t, webhook.SourceContentStudio, e.Source)

	require.NoError(t, repo.MarkProcessed(ctx, e.ID, webhook.Outcome{LinkedPostID: strPtr("post-1")}))

	stored, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, stored.Processed)
	require.NotNil(t, stored.ProcessedAt)
	require.NotNil(t, stored.LinkedPostID)
	assert.Equal(t, "post-1", *stored.LinkedPostID)
	assert.Equal(t, `{"post_id":"p1"}`, stored.Payload)

	err = repo.MarkProcessed(ctx, "missing", webhook.Outcome{})
	assert.ErrorIs(t, err, orchestrator_errors.ErrNotFound)
}

func TestWebhookEventRepository_ListUnlinked(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewWebhookEventRepository(testutil.NewDB(t))
	now := time.Now().UTC()

	old := &webhook.Event{Payload: "{}", ProviderPostID: strPtr("p-old"), ReceivedAt: now.Add(-48 * time.Hour)}
	recent := &webhook.Event{Payload: "{}", ProviderPostID: strPtr("p-new"), ReceivedAt: now.Add(-time.Minute)}
	noID := &webhook.Event{Payload: "not json", ReceivedAt: now}
	linked := &webhook.Event{Payload: "{}", ProviderPostID: strPtr("p-linked"), ReceivedAt: now}
	for _, e := range []*webhook.Event{old, recent, noID, linked} {
		require.NoError(t, repo.Create(ctx, e))
	}
	require.NoError(t, repo.MarkProcessed(ctx, linked.ID, webhook.Outcome{LinkedPostID: strPtr("post-x")}))

	events, err := repo.ListUnlinked(ctx, now.Add(-24*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, recent.ID, events[0].ID)
}
