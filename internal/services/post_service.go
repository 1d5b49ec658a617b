package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"content-orchestrator/internal/contentstudio"
	"content-orchestrator/internal/domain/post"
	"content-orchestrator/internal/fingerprint"
	"content-orchestrator/internal/repository"
	orchestrator_errors "content-orchestrator/pkg/errors"
	"content-orchestrator/pkg/logger"

	"go.uber.org/zap"
)

// Reasons reported on results that did not reach the provider.
const (
	ReasonAlreadyScheduled = "already_scheduled"
	ReasonInFlight         = "in_flight"
	ReasonInvalid          = "invalid_payload"
)

// persistTimeout bounds the status write that follows a provider call.
const persistTimeout = 5 * time.Second

type Submitter interface {
	Submit(ctx context.Context, workspaceID string, payload contentstudio.PostPayload) (string, error)
}

type ChannelResolver interface {
	Resolve(ctx context.Context, workspaceID string, channels []string) ([]string, error)
}

// KeyLocker serialises work on one idempotency key across processes.
type KeyLocker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// NopLocker is used when no shared lock backend is configured.
type NopLocker struct{}

func (NopLocker) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}

type BulkPost struct {
	Title        string
	Body         string
	Channels     []string
	FirstComment map[string]string
	Media        []post.MediaItem
	ScheduledAt  string
	Link         *string
	Tags         []string
	UTM          map[string]string
	// DecodeError is set when the item could not be read; the item is reported as invalid.
	DecodeError error
}

type BulkRequest struct {
	WorkspaceID string
	Timezone    string
	Posts       []BulkPost
}

// BulkResult is the outcome of one input post, in input order.
type BulkResult struct {
	OK             bool
	ProviderPostID string
	OrchestratorID string
	IdempotencyKey string
	ScheduledAt    string
	Channels       []string
	Error          string
	Skipped        bool
	Reason         string
}

type PostService struct {
	posts           repository.PostRepository
	resolver        ChannelResolver
	submitter       Submitter
	locker          KeyLocker
	defaultTimezone string
	log             *logger.Logger
}

func NewPostService(posts repository.PostRepository, resolver ChannelResolver, submitter Submitter, locker KeyLocker, defaultTimezone string, log *logger.Logger) *PostService {
	if locker == nil {
		locker = NopLocker{}
	}
	if defaultTimezone == "" {
		defaultTimezone = "Europe/London"
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &PostService{
		posts:           posts,
		resolver:        resolver,
		submitter:       submitter,
		locker:          locker,
		defaultTimezone: defaultTimezone,
		log:             log,
	}
}

// BulkSchedule submits every post of the batch in order. Only a malformed batch returns an
// error; per-post failures are reported in the results.
func (s *PostService) BulkSchedule(ctx context.Context, req BulkRequest) ([]BulkResult, error) {
	if strings.TrimSpace(req.WorkspaceID) == "" {
		return nil, fmt.Errorf("%w: workspaceId is required", orchestrator_errors.ErrInvalidInput)
	}
	if len(req.Posts) == 0 {
		return nil, fmt.Errorf("%w: posts[] is required", orchestrator_errors.ErrInvalidInput)
	}
	if req.Timezone == "" {
		req.Timezone = s.defaultTimezone
	}
	loc, err := time.LoadLocation(req.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", orchestrator_errors.ErrInvalidInput, req.Timezone)
	}

	ctx = logger.WithWorkspace(ctx, req.WorkspaceID)
	results := make([]BulkResult, 0, len(req.Posts))
	for i, p := range req.Posts {
		res := s.scheduleOne(ctx, req.WorkspaceID, req.Timezone, loc, p)
		s.log.WithContext(ctx).Info("bulk item processed",
			zap.Int("index", i),
			zap.Bool("ok", res.OK),
			zap.Bool("skipped", res.Skipped),
			zap.String("idempotency_key", res.IdempotencyKey),
			zap.String("error", res.Error),
		)
		results = append(results, res)
	}
	return results, nil
}

func (s *PostService) scheduleOne(ctx context.Context, workspaceID, timezone string, loc *time.Location, in BulkPost) BulkResult {
	res := BulkResult{ScheduledAt: in.ScheduledAt, Channels: in.Channels}
	log := s.log.WithContext(ctx)

	scheduledAt, err := validateBulkPost(in, loc)
	if err != nil {
		res.Error = "Invalid post payload: " + err.Error()
		res.Reason = ReasonInvalid
		return res
	}

	key := fingerprint.Key(fingerprint.Input{
		Title:       in.Title,
		Body:        in.Body,
		ScheduledAt: in.ScheduledAt,
		Channels:    in.Channels,
	})
	res.IdempotencyKey = key

	release, err := s.locker.Acquire(ctx, workspaceID+":"+key)
	switch {
	case errors.Is(err, orchestrator_errors.ErrInFlight):
		res.Error = "a submission for this post is already in progress"
		res.Reason = ReasonInFlight
		return res
	case err != nil:
		log.Warn("submission lock unavailable, continuing unlocked", zap.String("idempotency_key", key), zap.Error(err))
	default:
		defer release()
	}

	existing, err := s.posts.FindByIdempotencyKey(ctx, workspaceID, key)
	switch {
	case err == nil && existing.Status.Accepted():
		return skipped(res, existing)
	case err != nil && !errors.Is(err, orchestrator_errors.ErrNotFound):
		res.Error = "load post: " + err.Error()
		return res
	}

	accounts, err := s.resolver.Resolve(ctx, workspaceID, in.Channels)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	record := &post.Post{
		WorkspaceID:       workspaceID,
		IdempotencyKey:    key,
		Title:             in.Title,
		Body:              in.Body,
		ScheduledAt:       scheduledAt,
		Timezone:          timezone,
		RequestedChannels: in.Channels,
		MappedAccounts:    accounts,
		Media:             in.Media,
		FirstComment:      in.FirstComment,
		Tags:              in.Tags,
		Link:              in.Link,
		UTM:               in.UTM,
		Status:            post.StatusPending,
	}
	applied, err := s.posts.Upsert(ctx, record)
	if err != nil {
		res.Error = "record post: " + err.Error()
		return res
	}
	res.OrchestratorID = record.OrchestratorID
	if !applied {
		// Another submission reached the provider between the lookup and the write.
		return skipped(res, *record)
	}

	providerID, err := s.submitter.Submit(ctx, workspaceID, buildPayload(record, in.ScheduledAt))

	// The outcome is recorded even if the caller went away meanwhile.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	if err != nil {
		detail := err.Error()
		var subErr *contentstudio.SubmissionError
		if errors.As(err, &subErr) {
			detail = subErr.Detail
		}
		if uerr := s.posts.UpdateStatus(persistCtx, record.ID, post.StatusUpdate{
			Status:         post.StatusFailed,
			ErrorMessage:   &detail,
			IncrementRetry: true,
		}); uerr != nil {
			log.Error("failed to record submission failure", zap.String("post_id", record.ID), zap.Error(uerr))
		}
		res.Error = detail
		return res
	}

	if err := s.posts.UpdateStatus(persistCtx, record.ID, post.StatusUpdate{
		Status:         post.StatusScheduled,
		ProviderPostID: &providerID,
		ClearError:     true,
	}); err != nil {
		log.Error("provider accepted post but status update failed",
			zap.String("post_id", record.ID),
			zap.String("contentstudio_post_id", providerID),
			zap.Error(err),
		)
	}
	res.OK = true
	res.ProviderPostID = providerID
	return res
}

func skipped(res BulkResult, existing post.Post) BulkResult {
	res.OK = true
	res.Skipped = true
	res.Reason = ReasonAlreadyScheduled
	res.OrchestratorID = existing.OrchestratorID
	if existing.ProviderPostID != nil {
		res.ProviderPostID = *existing.ProviderPostID
	}
	return res
}

func validateBulkPost(in BulkPost, loc *time.Location) (time.Time, error) {
	if in.DecodeError != nil {
		return time.Time{}, &ValidationError{Field: "post", Message: "malformed item: " + in.DecodeError.Error()}
	}
	if in.Body == "" {
		return time.Time{}, &ValidationError{Field: "body", Message: "is required"}
	}
	if len(in.Channels) == 0 {
		return time.Time{}, &ValidationError{Field: "channels", Message: "must not be empty"}
	}
	for _, ch := range in.Channels {
		if strings.TrimSpace(ch) == "" {
			return time.Time{}, &ValidationError{Field: "channels", Message: "must not contain empty slugs"}
		}
	}
	scheduledAt, err := post.ParseScheduledAt(in.ScheduledAt, loc)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "scheduledAt", Message: "must be an ISO-8601 date-time"}
	}
	return scheduledAt, nil
}

// buildPayload composes the provider request. The idempotency key and orchestrator id ride
// along as custom fields so callbacks can echo them.
func buildPayload(p *post.Post, scheduledAt string) contentstudio.PostPayload {
	custom := make(map[string]string, len(p.UTM)+2)
	for k, v := range p.UTM {
		custom[k] = v
	}
	custom[contentstudio.FieldIdempotencyKey] = p.IdempotencyKey
	custom[contentstudio.FieldOrchestratorID] = p.OrchestratorID

	media := make([]contentstudio.MediaItem, 0, len(p.Media))
	for _, m := range p.Media {
		media = append(media, contentstudio.MediaItem{URL: m.URL, Alt: m.Alt})
	}
	firstComment := p.FirstComment
	if firstComment == nil {
		firstComment = map[string]string{}
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return contentstudio.PostPayload{
		Title:        p.Title,
		Message:      p.Body,
		Accounts:     p.MappedAccounts,
		ScheduledAt:  scheduledAt,
		Timezone:     p.Timezone,
		FirstComment: firstComment,
		Media:        media,
		Tags:         tags,
		Link:         p.Link,
		CustomFields: custom,
	}
}

func (s *PostService) Get(ctx context.Context, id string) (post.Post, error) {
	return s.posts.GetByID(ctx, id)
}

func (s *PostService) List(ctx context.Context, filter post.ListFilter) ([]post.Post, int64, error) {
	if strings.TrimSpace(filter.WorkspaceID) == "" {
		return nil, 0, fmt.Errorf("%w: workspace is required", orchestrator_errors.ErrInvalidInput)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", orchestrator_errors.ErrInvalidInput, filter.Status)
	}
	return s.posts.List(ctx, filter)
}
