package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishDeliversToSubscriber(t *testing.T) {
	b := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := b.Subscribe(ctx)
	b.Publish("task.updated", map[string]string{"id": "t1"})

	select {
	case evt := <-sub.Events:
		assert.Equal(t, "task.updated", evt.Name)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBus_PublishFansOutToAllSubscribers(t *testing.T) {
	b := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub1 := b.Subscribe(ctx)
	sub2 := b.Subscribe(ctx)

	b.Publish("ping", nil)

	require.Len(t, sub1.Events, 1)
	require.Len(t, sub2.Events, 1)
}

func TestBus_SlowSubscriberDropsWithoutBlocking(t *testing.T) {
	b := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := b.Subscribe(ctx)

	for i := 0; i < subscriberBuffer+10; i++ {
		b.Publish("spam", i)
	}

	assert.LessOrEqual(t, len(sub.Events), subscriberBuffer)
}

func TestBus_ContextCancelUnregisters(t *testing.T) {
	b := New()
	ctx, cancel := context.WithCancel(context.Background())

	b.Subscribe(ctx)
	require.Equal(t, 1, b.SubscriberCount())

	cancel()
	require.Eventually(t, func() bool {
		return b.SubscriberCount() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestBus_CloseUnregisters(t *testing.T) {
	b := New()
	sub := b.Subscribe(context.Background())
	require.Equal(t, 1, b.SubscriberCount())

	sub.Close()
	assert.Equal(t, 0, b.SubscriberCount())

	// Safe to call twice.
	sub.Close()
}
