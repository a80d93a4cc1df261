package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestContinuousListener_Next(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener := NewContinuousListener(ctx, broker)

	broker.Publish(UpdatedEvent, "changed")

	event, ok := listener.Next()
	require.True(t, ok)
	require.Equal(t, "changed", event.Payload)
	require.Equal(t, UpdatedEvent, event.Type)
}

func TestContinuousListener_ContextCancel(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	listener := NewContinuousListener(ctx, broker)

	cancel()

	done := make(chan bool)
	go func() {
		_, ok := listener.Next()
		require.False(t, ok)
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		require.Fail(t, "Next did not return after cancel")
	}
}
