package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"content-orchestrator/internal/domain/post"
	"content-orchestrator/internal/domain/webhook"
	"content-orchestrator/internal/repository"
	orchestrator_errors "content-orchestrator/pkg/errors"
	"content-orchestrator/pkg/logger"

	"go.uber.org/zap"
)

const errMalformedPayload = "malformed payload"

// WebhookReceipt summarises what happened to one callback.
type WebhookReceipt struct {
	EventID        string
	ProviderPostID string
	Matched        bool
	PostID         string
	Status         post.Status
}

type WebhookService struct {
	events repository.WebhookEventRepository
	posts  repository.PostRepository
	log    *logger.Logger
	now    func() time.Time
}

func NewWebhookService(events repository.WebhookEventRepository, posts repository.PostRepository, log *logger.Logger) *WebhookService {
	if log == nil {
		log = logger.NewNop()
	}
	return &WebhookService{
		events: events,
		posts:  posts,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Receive logs the callback and reconciles it. The only error returned is a failure to
// persist the event itself; reconciliation problems are recorded on the event.
func (s *WebhookService) Receive(ctx context.Context, raw []byte) (WebhookReceipt, error) {
	log := s.log.WithContext(ctx)
	sig, ok := parseWebhook(raw)

	event := &webhook.Event{
		Source:     webhook.SourceContentStudio,
		ReceivedAt: s.now(),
	}
	event.SetPayload(raw)
	if sig.EventType != "" {
		event.EventType = orchestrator_errors.StringPtr(sig.EventType)
	}
	if sig.ProviderPostID != "" {
		event.ProviderPostID = orchestrator_errors.StringPtr(sig.ProviderPostID)
	}
	if err := s.events.Create(ctx, event); err != nil {
		return WebhookReceipt{}, fmt.Errorf("record webhook event: %w", err)
	}

	receipt := WebhookReceipt{EventID: event.ID, ProviderPostID: sig.ProviderPostID}
	var outcome webhook.Outcome
	switch {
	case !ok:
		outcome.Error = orchestrator_errors.StringPtr(errMalformedPayload)
		log.Warn("webhook payload is not a JSON object", zap.String("event_id", event.ID))
	case sig.ProviderPostID == "":
		log.Info("webhook carried no post id", zap.String("event_id", event.ID))
	default:
		p, status, err := s.reconcile(ctx, sig)
		switch {
		case errors.Is(err, orchestrator_errors.ErrNotFound):
			log.Info("webhook unmatched", zap.String("event_id", event.ID), zap.String("contentstudio_post_id", sig.ProviderPostID))
		case err != nil:
			outcome.Error = orchestrator_errors.StringPtr(err.Error())
			log.Error("webhook reconciliation failed", zap.String("event_id", event.ID), zap.Error(err))
		default:
			outcome.LinkedPostID = orchestrator_errors.StringPtr(p.ID)
			receipt.Matched = true
			receipt.PostID = p.ID
			receipt.Status = status
			log.Info("webhook matched",
				zap.String("event_id", event.ID),
				zap.String("post_id", p.ID),
				zap.String("status", string(status)),
			)
		}
	}

	if err := s.events.MarkProcessed(ctx, event.ID, outcome); err != nil {
		log.Error("failed to mark webhook event processed", zap.String("event_id", event.ID), zap.Error(err))
	}
	return receipt, nil
}

// reconcile finds the post named by sig and applies the status it implies.
func (s *WebhookService) reconcile(ctx context.Context, sig webhookSignal) (post.Post, post.Status, error) {
	p, err := s.posts.FindByProviderPostID(ctx, sig.ProviderPostID)
	if err != nil {
		return post.Post{}, "", err
	}

	target, ok := sig.TargetStatus()
	if !ok || target == p.Status {
		return p, p.Status, nil
	}
	if target == post.StatusScheduled && p.Status == post.StatusPublished {
		return p, p.Status, nil
	}

	upd := post.StatusUpdate{Status: target}
	if sig.errorDetail != "" {
		upd.ErrorMessage = orchestrator_errors.StringPtr(sig.errorDetail)
	}
	if err := s.posts.UpdateStatus(ctx, p.ID, upd); err != nil {
		return post.Post{}, "", fmt.Errorf("apply status %s: %w", target, err)
	}
	return p, target, nil
}

// ReplayUnmatched re-runs reconciliation for events received since `since` that named a
// provider post nobody had recorded yet. It returns how many were linked.
func (s *WebhookService) ReplayUnmatched(ctx context.Context, since time.Time, limit int) (int, error) {
	events, err := s.events.ListUnlinked(ctx, since, limit)
	if err != nil {
		return 0, err
	}

	linked := 0
	for _, e := range events {
		raw, err := e.RawPayload()
		if err != nil {
			s.log.WithContext(ctx).Warn("stored webhook payload unreadable", zap.String("event_id", e.ID), zap.Error(err))
			continue
		}
		sig, ok := parseWebhook(raw)
		if !ok {
			continue
		}
		if sig.ProviderPostID == "" && e.ProviderPostID != nil {
			sig.ProviderPostID = *e.ProviderPostID
		}
		p, _, err := s.reconcile(ctx, sig)
		if errors.Is(err, orchestrator_errors.ErrNotFound) {
			continue
		}
		outcome := webhook.Outcome{}
		if err != nil {
			outcome.Error = orchestrator_errors.StringPtr(err.Error())
		} else {
			outcome.LinkedPostID = orchestrator_errors.StringPtr(p.ID)
		}
		if err := s.events.MarkProcessed(ctx, e.ID, outcome); err != nil {
			return linked, err
		}
		if outcome.LinkedPostID != nil {
			linked++
			s.log.WithContext(ctx).Info("webhook event relinked", zap.String("event_id", e.ID), zap.String("post_id", p.ID))
		}
	}
	return linked, nil
}
