package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	msg, err := encode(TopicOrders, "order-1", Event{
		Type:   OrderCreated,
		ID:     "order-1",
		UserID: "user-1",
		Data:   map[string]any{"total_amount": "12.50"},
		At:     at,
	})
	require.NoError(t, err)

	assert.Equal(t, TopicOrders, msg.Topic)
	assert.Equal(t, []byte("order-1"), msg.Key)
	assert.Equal(t, at, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, OrderCreated, string(msg.Headers[0].Value))

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "order_created", body["type"])
	assert.Equal(t, "user-1", body["user_id"])
	assert.Equal(t, "12.50", body["data"].(map[string]any)["total_amount"])
}

func TestEncode_Unmarshalable(t *testing.T) {
	t.Parallel()

	_, err := encode(TopicOrders, "k", Event{Data: map[string]any{"ch": make(chan int)}})
	require.Error(t, err)
}

func TestNewKafkaPublisher_NoBrokers(t *testing.T) {
	t.Parallel()

	_, err := NewKafkaPublisher(nil)
	require.Error(t, err)
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	r := &Recorder{}
	ctx := context.Background()
	require.NoError(t, r.PublishEvent(ctx, TopicCarts, "u", Event{Type: CartItemAdded}))
	require.NoError(t, r.PublishEvent(ctx, TopicOrders, "o", Event{Type: OrderCreated}))

	assert.Len(t, r.Events(), 2)
	got := r.OfType(OrderCreated)
	require.Len(t, got, 1)
	assert.Equal(t, TopicOrders, got[0].Topic)

	r.Err = errors.New("broker down")
	require.Error(t, r.PublishEvent(ctx, TopicCarts, "u", Event{}))
	assert.Len(t, r.Events(), 2)
}

func TestNop(t *testing.T) {
	t.Parallel()

	var p Publisher = Nop{}
	require.NoError(t, p.PublishEvent(context.Background(), TopicUsers, "k", Event{}))
	require.NoError(t, p.Close())
}
