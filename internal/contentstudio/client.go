// Package contentstudio talks to the ContentStudio scheduling API.
package contentstudio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://api.contentstudio.io/api/v1"

type ClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// RPS paces outbound requests. Zero disables pacing.
	RPS float64
	// HTTPClient overrides the transport; Timeout is ignored when set.
	HTTPClient *http.Client
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("contentstudio api key is empty")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	var limiter *rate.Limiter
	if cfg.RPS > 0 {
		burst := int(cfg.RPS)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    httpClient,
		limiter: limiter,
	}, nil
}

// ListWorkspaces returns the workspaces visible to the API key, one raw JSON object each.
func (c *Client) ListWorkspaces(ctx context.Context) ([]json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodGet, "/workspaces", nil)
	if err != nil {
		return nil, err
	}
	return normaliseList(body, "workspaces")
}

// ListAccounts returns the social accounts connected to a workspace.
func (c *Client) ListAccounts(ctx context.Context, workspaceID string) ([]json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodGet, "/workspaces/"+url.PathEscape(workspaceID)+"/accounts", nil)
	if err != nil {
		return nil, err
	}
	return normaliseList(body, "accounts")
}

// CreatePost makes a single create call and returns the provider post id.
func (c *Client) CreatePost(ctx context.Context, workspaceID string, payload PostPayload) (string, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	body, err := c.do(ctx, http.MethodPost, "/workspaces/"+url.PathEscape(workspaceID)+"/posts", buf)
	if errors.Is(err, errResponseBody) {
		return "", fmt.Errorf("%w: %v", ErrUnreadableAcceptance, err)
	}
	if err != nil {
		return "", err
	}
	parsed, err := parseCreatePostResponse(body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableAcceptance, err)
	}
	id := parsed.postID()
	if id == "" {
		return "", ErrMissingPostID
	}
	return id, nil
}

var errResponseBody = errors.New("read response body")

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Detail: strings.TrimSpace(string(body))}
	}
	if readErr != nil {
		return nil, fmt.Errorf("%w: %v", errResponseBody, readErr)
	}
	return body, nil
}

// normaliseList accepts {data:[...]}, {<key>:[...]}, a bare array or a single object.
func normaliseList(body []byte, key string) ([]json.RawMessage, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err == nil {
		for _, k := range []string{"data", key} {
			if raw, ok := envelope[k]; ok && len(raw) > 0 && string(raw) != "null" {
				return asList(raw)
			}
		}
		return []json.RawMessage{json.RawMessage(body)}, nil
	}
	return asList(body)
}

func asList(raw json.RawMessage) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		if items == nil {
			items = []json.RawMessage{}
		}
		return items, nil
	}
	var single json.RawMessage
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("decode list response: %w", err)
	}
	return []json.RawMessage{single}, nil
}
