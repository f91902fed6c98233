package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/metrics"
)

// Notifier publishes committed domain events. Failures are logged and counted
// but never fail the request that caused them.
type Notifier struct {
	Events  events.Publisher
	Metrics *metrics.Metrics
	Now     func() time.Time
}

func (n *Notifier) now() time.Time {
	if n == nil || n.Now == nil {
		return time.Now().UTC()
	}
	return n.Now().UTC()
}

func (n *Notifier) publish(ctx context.Context, l *slog.Logger, topic, key string, ev events.Event) {
	if n == nil || n.Events == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = n.now()
	}
	// The request context may already be cancelled once the response is written.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := n.Events.PublishEvent(ctx, topic, key, ev); err != nil {
		n.Metrics.EventFailed(topic)
		l.Error("publish_event_failed", "topic", topic, "type", ev.Type, "error", err)
	}
}

// lockOwner locks userID's row inside tx. Tokens outlive account
// removal, so a removed user must not create rows under its old id.
func lockOwner(ctx context.Context, tx *repo.GormRepo, userID uuid.UUID) error {
	if _, err := tx.LockUser(ctx, userID); err != nil {
		if repo.IsNotFound(err) {
			return fmt.Errorf("user %s: %w", userID, ErrUserNotFound)
		}
		return fmt.Errorf("lock user: %w", err)
	}
	return nil
}
