package contentstudio

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "secret"})
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(ClientConfig{})
	assert.Error(t, err)
}

func TestClient_CreatePost(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]interface{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-API-Key")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":"cs_42"}}`))
	})

	id, err := c.CreatePost(context.Background(), "ws_1", PostPayload{
		Message:      "hello",
		Accounts:     []string{"acc_1"},
		ScheduledAt:  "2026-11-01T09:00:00Z",
		Timezone:     "Europe/London",
		CustomFields: map[string]string{FieldIdempotencyKey: "k1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_42", id)
	assert.Equal(t, "/workspaces/ws_1/posts", gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "hello", gotBody["message"])
	assert.Equal(t, map[string]interface{}{FieldIdempotencyKey: "k1"}, gotBody["custom_fields"])
}

func TestClient_CreatePostIDShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"nested id", `{"data":{"id":"a"}}`, "a"},
		{"top level id", `{"id":"b"}`, "b"},
		{"nested mongo id", `{"data":{"_id":"c"}}`, "c"},
		{"numeric id", `{"data":{"id":17}}`, "17"},
		{"data list", `{"data":[{"id":"d"}]}`, "d"},
		{"bare list", `[{"data":{"id":"e"}}]`, "e"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			id, err := c.CreatePost(context.Background(), "ws", PostPayload{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{}}`))
	})
	_, err := c.CreatePost(context.Background(), "ws", PostPayload{})
	assert.ErrorIs(t, err, ErrMissingPostID)
}

func TestClient_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"accounts invalid"}`))
	})

	_, err := c.CreatePost(context.Background(), "ws", PostPayload{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, `{"message":"accounts invalid"}`, apiErr.Detail)
	assert.True(t, apiErr.Permanent())

	assert.False(t, (&APIError{StatusCode: 429}).Permanent())
	assert.False(t, (&APIError{StatusCode: 503}).Permanent())
}

func TestClient_ListNormalisesShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"data envelope", `{"data":[{"id":1},{"id":2}]}`, 2},
		{"named envelope", `{"accounts":[{"id":1}]}`, 1},
		{"bare array", `[{"id":1},{"id":2},{"id":3}]`, 3},
		{"single object", `{"id":1}`, 1},
		{"empty data", `{"data":[]}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/workspaces/ws_1/accounts", r.URL.Path)
				_, _ = w.Write([]byte(tt.body))
			})
			items, err := c.ListAccounts(context.Background(), "ws_1")
			require.NoError(t, err)
			assert.Len(t, items, tt.want)
		})
	}
}

func TestSubmitter_UnreadableAcceptanceIsNotRetried(t *testing.T) {
	bodies := []string{`not json`, `"created"`}
	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			calls := 0
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(body))
			})
			s := NewSubmitter(c, 3, time.Millisecond, WithSleep(func(context.Context, time.Duration) error { return nil }))

			_, err := s.Submit(context.Background(), "ws", PostPayload{})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnreadableAcceptance)
			assert.Equal(t, 1, calls)
		})
	}
}

func TestSubmitter_DataListAcceptedOnce(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":[{"id":"cs_1"}]}`))
	})
	s := NewSubmitter(c, 3, time.Millisecond, WithSleep(func(context.Context, time.Duration) error { return nil }))

	id, err := s.Submit(context.Background(), "ws", PostPayload{})
	require.NoError(t, err)
	assert.Equal(t, "cs_1", id)
	assert.Equal(t, 1, calls)
}
