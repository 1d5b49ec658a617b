package services

import (
	"context"
	"sync"
	"time"

	"content-orchestrator/pkg/logger"

	"go.uber.org/zap"
)

type WebhookReplayer interface {
	ReplayUnmatched(ctx context.Context, since time.Time, limit int) (int, error)
}

// WebhookSweeper periodically links webhook events that arrived before their post was recorded.
type WebhookSweeper struct {
	replayer  WebhookReplayer
	interval  time.Duration
	window    time.Duration
	batchSize int
	now       func() time.Time
	log       *logger.Logger
	stopChan  chan struct{}
	wg        sync.WaitGroup
	once      sync.Once
}

func NewWebhookSweeper(replayer WebhookReplayer, interval, window time.Duration, log *logger.Logger) *WebhookSweeper {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if window <= 0 {
		window = 24 * time.Hour
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &WebhookSweeper{
		replayer:  replayer,
		interval:  interval,
		window:    window,
		batchSize: 100,
		now:       func() time.Time { return time.Now().UTC() },
		log:       log,
		stopChan:  make(chan struct{}),
	}
}

// Start begins the sweep loop
func (w *WebhookSweeper) Start() {
	w.wg.Add(1)
	go w.run()
}

// Stop gracefully shuts down. Safe to call more than once.
func (w *WebhookSweeper) Stop() {
	w.once.Do(func() { close(w.stopChan) })
	w.wg.Wait()
}

func (w *WebhookSweeper) run() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.RunOnce(context.Background())
		}
	}
}

// RunOnce performs a single sweep over the replay window.
func (w *WebhookSweeper) RunOnce(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, w.interval)
	defer cancel()

	linked, err := w.replayer.ReplayUnmatched(ctx, w.now().Add(-w.window), w.batchSize)
	if err != nil {
		w.log.Error("webhook sweep failed", zap.Error(err))
		return linked
	}
	if linked > 0 {
		w.log.Info("webhook sweep linked events", zap.Int("linked", linked))
	}
	return linked
}
