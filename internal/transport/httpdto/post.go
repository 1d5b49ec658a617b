package httpdto

import (
	"encoding/json"
	"errors"
	"fmt"

	"content-orchestrator/internal/domain/post"
	"content-orchestrator/internal/services"
)

type MediaItemDTO struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// BulkPostItem is one post of a bulk request. Items are decoded and validated one by one
// so a bad item never rejects the batch.
type BulkPostItem struct {
	Title        string            `json:"title"`
	Body         string            `json:"body"`
	Channels     []string          `json:"channels"`
	FirstComment map[string]string `json:"firstComment"`
	Media        []MediaItemDTO    `json:"media"`
	ScheduledAt  string            `json:"scheduledAt"`
	Link         *string           `json:"link"`
	Tags         []string          `json:"tags"`
	UTM          map[string]string `json:"utm"`
}

// BulkScheduleRequest is used for POST /posts/bulk
type BulkScheduleRequest struct {
	WorkspaceID string            `json:"workspaceId" binding:"required"`
	Timezone    string            `json:"timezone" binding:"omitempty,timezone"`
	Posts       []json.RawMessage `json:"posts" binding:"required,min=1"`
}

func (r BulkScheduleRequest) ToService() services.BulkRequest {
	posts := make([]services.BulkPost, 0, len(r.Posts))
	for _, raw := range r.Posts {
		var p BulkPostItem
		if err := json.Unmarshal(raw, &p); err != nil {
			posts = append(posts, services.BulkPost{DecodeError: itemDecodeError(err)})
			continue
		}
		var media []post.MediaItem
		for _, m := range p.Media {
			media = append(media, post.MediaItem{URL: m.URL, Alt: m.Alt})
		}
		posts = append(posts, services.BulkPost{
			Title:        p.Title,
			Body:         p.Body,
			Channels:     p.Channels,
			FirstComment: p.FirstComment,
			Media:        media,
			ScheduledAt:  p.ScheduledAt,
			Link:         p.Link,
			Tags:         p.Tags,
			UTM:          p.UTM,
		})
	}
	return services.BulkRequest{
		WorkspaceID: r.WorkspaceID,
		Timezone:    r.Timezone,
		Posts:       posts,
	}
}

func itemDecodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Errorf("%s has the wrong type", typeErr.Field)
	}
	return err
}

type BulkResultDTO struct {
	OK             bool     `json:"ok"`
	ID             string   `json:"id,omitempty"`
	OrchestratorID string   `json:"orchestratorId,omitempty"`
	IdempotencyKey string   `json:"idempotencyKey,omitempty"`
	ScheduledAt    string   `json:"scheduledAt"`
	Channels       []string `json:"channels"`
	Error          string   `json:"error,omitempty"`
	Skipped        bool     `json:"skipped,omitempty"`
	Reason         string   `json:"reason,omitempty"`
}

type BulkScheduleResponse struct {
	Results []BulkResultDTO `json:"results"`
}

func NewBulkScheduleResponse(results []services.BulkResult) BulkScheduleResponse {
	out := make([]BulkResultDTO, 0, len(results))
	for _, r := range results {
		channels := r.Channels
		if channels == nil {
			channels = []string{}
		}
		out = append(out, BulkResultDTO{
			OK:             r.OK,
			ID:             r.ProviderPostID,
			OrchestratorID: r.OrchestratorID,
			IdempotencyKey: r.IdempotencyKey,
			ScheduledAt:    r.ScheduledAt,
			Channels:       channels,
			Error:          r.Error,
			Skipped:        r.Skipped,
			Reason:         r.Reason,
		})
	}
	return BulkScheduleResponse{Results: out}
}

// ListPostsRequest holds query parameters for GET /posts
type ListPostsRequest struct {
	Workspace string `form:"workspace" binding:"required"`
	Status    string `form:"status" binding:"omitempty,oneof=pending scheduled published failed cancelled"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset    int    `form:"offset" binding:"omitempty,min=0"`
}

func (r ListPostsRequest) Filter() post.ListFilter {
	limit := r.Limit
	if limit == 0 {
		limit = 50
	}
	return post.ListFilter{
		WorkspaceID: r.Workspace,
		Status:      post.Status(r.Status),
		Limit:       limit,
		Offset:      r.Offset,
	}
}

type ListPostsResponse struct {
	Posts  []post.Post `json:"posts"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}
