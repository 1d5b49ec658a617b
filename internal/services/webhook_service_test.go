package services_test

import (
	"context"
	"testing"
	"time"
	"unicode/utf8"

	"content-orchestrator/internal/domain/post"
	"content-orchestrator/internal/domain/webhook"
	"content-orchestrator/internal/repository"
	"content-orchestrator/internal/services"
	"content-orchestrator/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type webhookFixture struct {
	svc    *services.WebhookService
	posts  repository.PostRepository
	events repository.WebhookEventRepository
}

func newWebhookFixture(t *testing.T) webhookFixture {
	t.Helper()
	db := testutil.NewDB(t)
	posts := repository.NewPostRepository(db)
	events := repository.NewWebhookEventRepository(db)
	return webhookFixture{
		svc:    services.NewWebhookService(events, posts, nil),
		posts:  posts,
		events: events,
	}
}

func (f webhookFixture) seedPost(t *testing.T, key, providerID string, status post.Status) post.Post {
	t.Helper()
	ctx := context.Background()
	p := &post.Post{
		WorkspaceID:       "ws_1",
		IdempotencyKey:    key,
		Body:              "body",
		ScheduledAt:       time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC),
		Timezone:          "Europe/London",
		RequestedChannels: []string{"linkedin"},
		MappedAccounts:    []string{"acc"},
	}
	_, err := f.posts.Upsert(ctx, p)
	require.NoError(t, err)
	require.NoError(t, f.posts.UpdateStatus(ctx, p.ID, post.StatusUpdate{Status: status, ProviderPostID: &providerID}))
	stored, err := f.posts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	return stored
}

func TestWebhook_PublishedEndToEnd(t *testing.T) {
	f := newWebhookFixture(t)
	ctx := context.Background()
	p := f.seedPost(t, "k1", "p1", post.StatusScheduled)
	payload := `{"post_id":"p1","event":"post.published","published_url":"http://x"}`

	receipt, err := f.svc.Receive(ctx, []byte(payload))
	require.NoError(t, err)
	assert.True(t, receipt.Matched)
	assert.Equal(t, post.StatusPublished, receipt.Status)

	stored, err := f.posts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, post.StatusPublished, stored.Status)

	event, err := f.events.GetByID(ctx, receipt.EventID)
	require.NoError(t, err)
	assert.True(t, event.Processed)
	require.NotNil(t, event.LinkedPostID)
	assert.Equal(t, p.ID, *event.LinkedPostID)
	assert.Equal(t, payload, event.Payload)
	require.NotNil(t, event.EventType)
	assert.Equal(t, "post.published", *event.EventType)
}

func TestWebhook_Unmatched(t *testing.T) {
	f := newWebhookFixture(t)
	ctx := context.Background()

	receipt, err := f.svc.Receive(ctx, []byte(`{"post_id":"unknown","status":"published"}`))
	require.NoError(t, err)
	assert.False(t, receipt.Matched)

	event, err := f.events.GetByID(ctx, receipt.EventID)
	require.NoError(t, err)
	assert.True(t, event.Processed)
	assert.Nil(t, event.LinkedPostID)
	assert.Nil(t, event.Error)
	require.NotNil(t, event.ProviderPostID)
	assert.Equal(t, "unknown", *event.ProviderPostID)
}

func TestWebhook_MalformedPayloadIsStillLogged(t *testing.T) {
	f := newWebhookFixture(t)
	ctx := context.Background()

	receipt, err := f.svc.Receive(ctx, []byte(`not json at all`))
	require.NoError(t, err)

	event, err := f.events.GetByID(ctx, receipt.EventID)
	require.NoError(t, err)
	assert.True(t, event.Processed)
	assert.Equal(t, "not json at all", event.Payload)
	require.NotNil(t, event.Error)
	assert.Equal(t, "malformed payload", *event.Error)
}

func TestWebhook_LargeNumericPostIDMatchesExactly(t *testing.T) {
	f := newWebhookFixture(t)
	ctx := context.Background()
	p := f.seedPost(t, "k-big", "9007199254740993", post.StatusScheduled)
	f.seedPost(t, "k-near", "9007199254740992", post.StatusScheduled)

	receipt, err := f.svc.Receive(ctx, []byte(`{"post_id":9007199254740993,"event":"post.published"}`))
	require.NoError(t, err)
	assert.Equal(t, "9007199254740993", receipt.ProviderPostID)
	assert.True(t, receipt.Matched)
	assert.Equal(t, p.ID, receipt.PostID)
}

func TestWebhook_BinaryBodyIsStoredLosslessly(t *testing.T) {
	f := newWebhookFixture(t)
	ctx := context.Background()
	raw := []byte("{\"post_id\":\"p1\"}\x00\xff\xfe")

	receipt, err := f.svc.Receive(ctx, raw)
	require.NoError(t, err)

	event, err := f.events.GetByID(ctx, receipt.EventID)
	require.NoError(t, err)
	assert.Equal(t, webhook.PayloadEncodingBase64, event.PayloadEncoding)
	assert.True(t, utf8.ValidString(event.Payload))
	got, err := event.RawPayload()
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestWebhook_NulInFieldsIsDropped(t *testing.T) {
	f := newWebhookFixture(t)
	ctx := context.Background()
	f.seedPost(t, "k-nul", "p1", post.StatusScheduled)

	receipt, err := f.svc.Receive(ctx, []byte(`{"post_id":"p\u00001","event":"post.published"}`))
	require.NoError(t, err)
	assert.True(t, receipt.Matched)

	event, err := f.events.GetByID(ctx, receipt.EventID)
	require.NoError(t, err)
	assert.Equal(t, webhook.PayloadEncodingRaw, event.PayloadEncoding)
	require.NotNil(t, event.ProviderPostID)
	assert.Equal(t, "p1", *event.ProviderPostID)
}

func TestWebhook_StatusDerivation(t *testing.T) {
	tests := []struct {
		name    string
		start   post.Status
		payload string
		want    post.Status
		errMsg  string
	}{
		{"posted keyword", post.StatusScheduled, `{"post_id":"p","status":"POSTED"}`, post.StatusPublished, ""},
		{"published url only", post.StatusScheduled, `{"postId":"p","publishedUrl":"https://li/x"}`, post.StatusPublished, ""},
		{"failure keyword", post.StatusScheduled, `{"post_id":"p","event":"post.failed"}`, post.StatusFailed, ""},
		{"error field", post.StatusScheduled, `{"post_id":"p","error":"token expired"}`, post.StatusFailed, "token expired"},
		{"scheduled keyword", post.StatusPending, `{"post_id":"p","type":"post.scheduled"}`, post.StatusScheduled, ""},
		{"never downgrades published", post.StatusPublished, `{"post_id":"p","status":"scheduled"}`, post.StatusPublished, ""},
		{"unknown keyword leaves status", post.StatusScheduled, `{"post_id":"p","event":"post.updated"}`, post.StatusScheduled, ""},
		{"nested data", post.StatusScheduled, `{"id":"evt_1","event":"post.published","data":{"id":"p"}}`, post.StatusPublished, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWebhookFixture(t)
			ctx := context.Background()
			p := f.seedPost(t, "k", "p", tt.start)

			receipt, err := f.svc.Receive(ctx, []byte(tt.payload))
			require.NoError(t, err)
			assert.True(t, receipt.Matched)

			stored, err := f.posts.GetByID(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stored.Status)
			if tt.errMsg != "" {
				require.NotNil(t, stored.ErrorMessage)
				assert.Equal(t, tt.errMsg, *stored.ErrorMessage)
			}

			event, err := f.events.GetByID(ctx, receipt.EventID)
			require.NoError(t, err)
			require.NotNil(t, event.LinkedPostID)
			assert.Equal(t, p.ID, *event.LinkedPostID)
		})
	}
}

func TestWebhook_NoPostID(t *testing.T) {
	f := newWebhookFixture(t)
	ctx := context.Background()

	receipt, err := f.svc.Receive(ctx, []byte(`{"event":"ping"}`))
	require.NoError(t, err)
	assert.False(t, receipt.Matched)

	event, err := f.events.GetByID(ctx, receipt.EventID)
	require.NoError(t, err)
	assert.True(t, event.Processed)
	assert.Nil(t, event.ProviderPostID)
}

func TestWebhook_ReplayLinksLateArrivals(t *testing.T) {
	f := newWebhookFixture(t)
	ctx := context.Background()

	receipt, err := f.svc.Receive(ctx, []byte(`{"post_id":"late","event":"post.published"}`))
	require.NoError(t, err)
	require.False(t, receipt.Matched)

	p := f.seedPost(t, "k-late", "late", post.StatusScheduled)

	sweeper := services.NewWebhookSweeper(f.svc, time.Minute, 24*time.Hour, nil)
	assert.Equal(t, 1, sweeper.RunOnce(ctx))

	stored, err := f.posts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, post.StatusPublished, stored.Status)

	event, err := f.events.GetByID(ctx, receipt.EventID)
	require.NoError(t, err)
	require.NotNil(t, event.LinkedPostID)
	assert.Equal(t, p.ID, *event.LinkedPostID)

	// Already linked events are not replayed again.
	assert.Equal(t, 0, sweeper.RunOnce(ctx))
}

func TestWebhookSweeper_StartStop(t *testing.T) {
	f := newWebhookFixture(t)
	sweeper := services.NewWebhookSweeper(f.svc, 10*time.Millisecond, time.Hour, nil)
	sweeper.Start()
	time.Sleep(30 * time.Millisecond)
	sweeper.Stop()
	sweeper.Stop()
}
