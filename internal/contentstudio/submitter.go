package contentstudio

import (
	"context"
	"errors"
	"time"

	"content-orchestrator/pkg/logger"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// Poster makes a single create-post attempt.
type Poster interface {
	CreatePost(ctx context.Context, workspaceID string, payload PostPayload) (string, error)
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

type SubmitterOption func(*Submitter)

// WithSleep replaces the wait between attempts. Tests use it to record delays.
func WithSleep(fn SleepFunc) SubmitterOption {
	return func(s *Submitter) { s.sleep = fn }
}

func WithLogger(l *logger.Logger) SubmitterOption {
	return func(s *Submitter) { s.log = l }
}

// Submitter retries create-post calls with exponential backoff.
type Submitter struct {
	poster      Poster
	maxAttempts int
	baseDelay   time.Duration
	sleep       SleepFunc
	log         *logger.Logger
}

func NewSubmitter(poster Poster, maxAttempts int, baseDelay time.Duration, opts ...SubmitterOption) *Submitter {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	s := &Submitter{
		poster:      poster,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		sleep:       sleepContext,
		log:         logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Submitter) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.baseDelay
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = time.Minute
	b.Reset()
	return b
}

// Submit creates the post, waiting base, 2*base, ... before each retry. The first attempt is
// not delayed. Permanent provider rejections stop the loop early. On failure the returned
// *SubmissionError carries the last error only.
func (s *Submitter) Submit(ctx context.Context, workspaceID string, payload PostPayload) (string, error) {
	log := s.log.WithContext(ctx)
	b := s.newBackOff()

	var lastErr error
	attempts := 0
	for attempts < s.maxAttempts {
		if attempts > 0 {
			delay := b.NextBackOff()
			if err := s.sleep(ctx, delay); err != nil {
				break
			}
		}
		attempts++

		id, err := s.poster.CreatePost(ctx, workspaceID, payload)
		if err == nil {
			return id, nil
		}
		lastErr = err
		log.Warn("contentstudio submission attempt failed",
			zap.Int("attempt", attempts),
			zap.Int("max_attempts", s.maxAttempts),
			zap.Error(err),
		)
		if !retryable(err) || ctx.Err() != nil {
			break
		}
	}
	if lastErr == nil {
		lastErr = ctx.Err()
	}
	return "", &SubmissionError{Attempts: attempts, Detail: errorDetail(lastErr), Err: lastErr}
}

func retryable(err error) bool {
	if errors.Is(err, ErrMissingPostID) || errors.Is(err, ErrUnreadableAcceptance) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return !apiErr.Permanent()
	}
	return true
}

// errorDetail prefers the provider's response body over the wrapped error text.
func errorDetail(err error) string {
	if err == nil {
		return "unknown error"
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return err.Error()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
