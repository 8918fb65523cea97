package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/campusshield/campusshield/internal/apiserver/database"
	"github.com/campusshield/campusshield/internal/common/config"
)

const defaultBatchSize = 50

// Recorder receives delivery outcomes, typically backed by prometheus
// counters. A nil Recorder is valid.
type Recorder interface {
	NotificationSent(kind string)
	NotificationFailed(kind string)
}

// Worker drains the notification outbox. Rows are enqueued transactionally
// with the writes they announce; the worker polls for pending rows and
// delivers them with capped retries, so a mail failure is observable and
// retryable without ever failing the originating request.
type Worker struct {
	db       database.Database
	mailer   Mailer
	logger   *zap.Logger
	recorder Recorder

	pollInterval time.Duration
	maxAttempts  int
	retryBackoff time.Duration
}

// NewWorker creates a new outbox worker
func NewWorker(db database.Database, mailer Mailer, cfg *config.NotifyConfig, logger *zap.Logger, recorder Recorder) *Worker {
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	retryBackoff := cfg.RetryBackoff
	if retryBackoff < 0 {
		retryBackoff = 0
	}
	return &Worker{
		db:           db,
		mailer:       mailer,
		logger:       logger.Named("outbox"),
		recorder:     recorder,
		pollInterval: pollInterval,
		maxAttempts:  maxAttempts,
		retryBackoff: retryBackoff,
	}
}

// Run polls the outbox until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("outbox worker started",
		zap.Duration("poll_interval", w.pollInterval),
		zap.Duration("retry_backoff", w.retryBackoff),
		zap.Int("max_attempts", w.maxAttempts))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("outbox worker stopped")
			return
		case <-ticker.C:
			w.Drain(ctx)
		}
	}
}

// Drain delivers one batch of pending notifications. Exposed separately so
// tests can drive the worker without the timer.
func (w *Worker) Drain(ctx context.Context) {
	pending, err := w.db.ListPendingNotifications(ctx, defaultBatchSize)
	if err != nil {
		w.logger.Error("failed to list pending notifications", zap.Error(err))
		return
	}

	for _, n := range pending {
		if ctx.Err() != nil {
			return
		}
		w.deliver(ctx, n)
	}
}

func (w *Worker) deliver(ctx context.Context, n *database.Notification) {
	err := w.mailer.Send(ctx, n.Recipient, n.Subject, n.Body)
	if err == nil {
		if markErr := w.db.MarkNotificationSent(ctx, n.ID); markErr != nil {
			w.logger.Error("failed to mark notification sent",
				zap.Uint("id", n.ID), zap.Error(markErr))
			return
		}
		if w.recorder != nil {
			w.recorder.NotificationSent(n.Kind)
		}
		w.logger.Debug("notification delivered",
			zap.Uint("id", n.ID), zap.String("kind", n.Kind))
		return
	}

	attempts := n.Attempts + 1
	terminal := attempts >= w.maxAttempts
	nextAttempt := time.Now().Add(w.retryBackoff)
	if markErr := w.db.MarkNotificationFailed(ctx, n.ID, attempts, err.Error(), terminal, nextAttempt); markErr != nil {
		w.logger.Error("failed to mark notification failed",
			zap.Uint("id", n.ID), zap.Error(markErr))
		return
	}
	if terminal {
		if w.recorder != nil {
			w.recorder.NotificationFailed(n.Kind)
		}
		w.logger.Error("notification delivery gave up",
			zap.Uint("id", n.ID),
			zap.String("kind", n.Kind),
			zap.Int("attempts", attempts),
			zap.Error(err))
		return
	}
	w.logger.Warn("notification delivery failed, will retry",
		zap.Uint("id", n.ID),
		zap.String("kind", n.Kind),
		zap.Int("attempts", attempts),
		zap.Error(err))
}
