package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"content-orchestrator/internal/domain/post"
)

// webhookSignal is what reconciliation needs from a provider callback.
type webhookSignal struct {
	ProviderPostID string
	EventType      string
	keywords       string
	publishedURL   string
	errorDetail    string
}

var (
	postIDFields       = []string{"post_id", "postId"}
	eventTypeFields    = []string{"event", "type", "event_type"}
	keywordFields      = []string{"event", "type", "event_type", "status"}
	publishedURLFields = []string{"published_url", "publishedUrl"}
	errorFields        = []string{"error", "error_message", "errorMessage"}
)

// parseWebhook reads the callback body. ok is false when the body is not a JSON object.
func parseWebhook(raw []byte) (webhookSignal, bool) {
	body, err := decodeObject(raw)
	if err != nil || body == nil {
		return webhookSignal{}, false
	}

	scopes := []map[string]interface{}{body}
	for _, nested := range []string{"data", "post"} {
		if m, ok := body[nested].(map[string]interface{}); ok {
			scopes = append(scopes, m)
		}
	}

	var sig webhookSignal
	sig.ProviderPostID = providerPostID(scopes)
	var words []string
	for _, scope := range scopes {
		if sig.EventType == "" {
			sig.EventType = firstString(scope, eventTypeFields)
		}
		if sig.publishedURL == "" {
			sig.publishedURL = firstString(scope, publishedURLFields)
		}
		if sig.errorDetail == "" {
			sig.errorDetail = firstDetail(scope, errorFields)
		}
		for _, f := range keywordFields {
			if v := stringValue(scope[f]); v != "" {
				words = append(words, v)
			}
		}
	}
	sig.keywords = strings.ToLower(strings.Join(words, " "))
	return sig, true
}

// TargetStatus maps the callback onto a post status. ok is false when nothing matched.
func (s webhookSignal) TargetStatus() (post.Status, bool) {
	switch {
	case strings.Contains(s.keywords, "publish"), strings.Contains(s.keywords, "posted"), s.publishedURL != "":
		return post.StatusPublished, true
	case strings.Contains(s.keywords, "fail"), strings.Contains(s.keywords, "error"), s.errorDetail != "":
		return post.StatusFailed, true
	case strings.Contains(s.keywords, "schedul"):
		return post.StatusScheduled, true
	}
	return "", false
}

// providerPostID prefers explicit post id fields anywhere, then a nested object's id, then
// the top level id.
func providerPostID(scopes []map[string]interface{}) string {
	for _, scope := range scopes {
		if id := firstString(scope, postIDFields); id != "" {
			return id
		}
	}
	for _, scope := range scopes[1:] {
		if id := stringValue(scope["id"]); id != "" {
			return id
		}
	}
	return stringValue(scopes[0]["id"])
}

func firstString(m map[string]interface{}, fields []string) string {
	for _, f := range fields {
		if v := stringValue(m[f]); v != "" {
			return v
		}
	}
	return ""
}

// firstDetail accepts string and structured error values.
func firstDetail(m map[string]interface{}, fields []string) string {
	for _, f := range fields {
		v, ok := m[f]
		if !ok || v == nil {
			continue
		}
		if s := stringValue(v); s != "" {
			return s
		}
		if b, ok := v.(bool); ok {
			if b {
				return "error reported by provider"
			}
			continue
		}
		if buf, err := json.Marshal(v); err == nil && string(buf) != "{}" && string(buf) != "[]" {
			return string(buf)
		}
	}
	return ""
}

// decodeObject keeps numbers as json.Number so large numeric ids keep every digit.
func decodeObject(raw []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body map[string]interface{}
	if err := dec.Decode(&body); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON object")
	}
	return body, nil
}

// stringValue drops NUL characters, which text columns reject.
func stringValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(strings.ReplaceAll(t, "\x00", ""))
	case json.Number:
		return t.String()
	}
	return ""
}
