// Package events publishes domain events after their transaction commits.
package events

import (
	"context"
	"sync"
	"time"
)

const (
	TopicUsers    = "user_events"
	TopicCarts    = "cart_events"
	TopicOrders   = "order_events"
	TopicProducts = "product_events"
)

const (
	UserRegistered = "user_registered"
	UserRemoved    = "user_removed"
	CartItemAdded  = "cart_item_added"
	CartItemRemove = "cart_item_removed"
	CartCleared    = "cart_cleared"
	OrderCreated   = "order_created"
	OrderDeleted   = "order_deleted"
	ProductCreated = "product_created"
)

type Event struct {
	Type   string         `json:"type"`
	ID     string         `json:"id"`
	UserID string         `json:"user_id,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
	At     time.Time      `json:"at"`
}

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event Event) error
	Close() error
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) PublishEvent(context.Context, string, string, Event) error { return nil }
func (Nop) Close() error                                            { return nil }

type Published struct {
	Topic string
	Key   string
	Event Event
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Published
	Err    error
}

func (r *Recorder) PublishEvent(_ context.Context, topic, key string, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, Published{Topic: topic, Key: key, Event: event})
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Published(nil), r.events...)
}

// OfType returns recorded events with the given type, in publish order.
func (r *Recorder) OfType(typ string) []Published {
	var out []Published
	for _, p := range r.Events() {
		if p.Event.Type == typ {
			out = append(out, p)
		}
	}
	return out
}
