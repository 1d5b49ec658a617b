package contentstudio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type MediaItem struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// PostPayload is the body of a create-post call.
type PostPayload struct {
	Title        string            `json:"title"`
	Message      string            `json:"message"`
	Accounts     []string          `json:"accounts"`
	ScheduledAt  string            `json:"scheduled_at"`
	Timezone     string            `json:"timezone"`
	FirstComment map[string]string `json:"first_comment"`
	Media        []MediaItem       `json:"media"`
	Tags         []string          `json:"tags"`
	Link         *string           `json:"link"`
	CustomFields map[string]string `json:"custom_fields"`
}

// Custom field names echoed back by provider webhooks when present.
const (
	FieldIdempotencyKey = "orchestrator_idempotency_key"
	FieldOrchestratorID = "orchestrator_id"
)

// APIError is a non-2xx provider response.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("contentstudio api error %d: %s", e.StatusCode, e.Detail)
}

// Permanent reports whether repeating the request cannot succeed.
func (e *APIError) Permanent() bool {
	if e.StatusCode == http.StatusRequestTimeout || e.StatusCode == http.StatusTooManyRequests {
		return false
	}
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// SubmissionError is returned once every attempt of a submission failed.
type SubmissionError struct {
	Attempts int
	Detail   string
	Err      error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission failed after %d attempt(s): %s", e.Attempts, e.Detail)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// ErrMissingPostID is returned when the provider accepted a post but did not report its id.
var ErrMissingPostID = errors.New("contentstudio response carried no post id")

// ErrUnreadableAcceptance is returned when the create call got a 2xx but its body could not be read.
// The post may exist upstream, so the call must not be repeated.
var ErrUnreadableAcceptance = errors.New("contentstudio accepted the post but the response was unreadable")

// createPostResponse covers the response shapes seen from the create endpoint. data may be an
// object or a list holding the created post.
type createPostResponse struct {
	ID   json.RawMessage `json:"id"`
	MID  json.RawMessage `json:"_id"`
	Data json.RawMessage `json:"data"`
}

type postRef struct {
	ID  json.RawMessage `json:"id"`
	MID json.RawMessage `json:"_id"`
}

// parseCreatePostResponse accepts an object envelope or a bare list of created posts.
func parseCreatePostResponse(body []byte) (createPostResponse, error) {
	var parsed createPostResponse
	if err := json.Unmarshal(body, &parsed); err == nil {
		return parsed, nil
	}
	var list []createPostResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return createPostResponse{}, err
	}
	if len(list) == 0 {
		return createPostResponse{}, nil
	}
	return list[0], nil
}

func (r createPostResponse) data() postRef {
	raw := bytes.TrimSpace(r.Data)
	var ref postRef
	switch {
	case len(raw) == 0:
	case raw[0] == '{':
		_ = json.Unmarshal(raw, &ref)
	case raw[0] == '[':
		var list []postRef
		if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
			ref = list[0]
		}
	}
	return ref
}

func (r createPostResponse) postID() string {
	data := r.data()
	for _, c := range []json.RawMessage{data.ID, r.ID, data.MID, r.MID} {
		if id := rawID(c); id != "" {
			return id
		}
	}
	return ""
}

// rawID accepts string and numeric ids.
func rawID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
