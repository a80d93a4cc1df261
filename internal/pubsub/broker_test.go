package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// reload mirrors the watcher's broadcast payload shape.
type reload struct {
	ID   string
	Path string
}

func TestBroker_Subscribe(t *testing.T) {
	broker := NewBroker[reload]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := broker.Subscribe(ctx)

	broker.Publish(UpdatedEvent, reload{ID: "mat-1", Path: "assets/stone.mat"})

	select {
	case event := <-ch:
		require.Equal(t, "mat-1", event.Payload.ID)
		require.Equal(t, UpdatedEvent, event.Type)
		require.False(t, event.Timestamp.IsZero())
	case <-time.After(100 * time.Millisecond):
		require.Fail(t, "timeout waiting for event")
	}
}

func TestBroker_MultipleSubscribers(t *testing.T) {
	broker := NewBroker[reload]()
	defer broker.Close()

	ctx := context.Background()

	ch1 := broker.Subscribe(ctx)
	ch2 := broker.Subscribe(ctx)
	ch3 := broker.Subscribe(ctx)

	require.Equal(t, 3, broker.SubscriberCount())

	broker.Publish(CreatedEvent, reload{ID: "shader-1", Path: "shaders/pbr.shader"})

	for i, ch := range []<-chan Event[reload]{ch1, ch2, ch3} {
		select {
		case event := <-ch:
			require.Equal(t, "shader-1", event.Payload.ID, "subscriber %d", i)
			require.Equal(t, CreatedEvent, event.Type, "subscriber %d", i)
		case <-time.After(100 * time.Millisecond):
			require.Fail(t, "timeout waiting for event", "subscriber %d", i)
		}
	}
}

func TestBroker_ContextCancellation(t *testing.T) {
	broker := NewBroker[reload]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())

	ch := broker.Subscribe(ctx)
	require.Equal(t, 1, broker.SubscriberCount())

	cancel()
	time.Sleep(20 * time.Millisecond) // cleanup goroutine

	require.Equal(t, 0, broker.SubscriberCount())

	_, ok := <-ch
	require.False(t, ok, "channel should be closed")
}

func TestBroker_FullSubscriberDropsNotBlocks(t *testing.T) {
	broker := NewBrokerWithBuffer[reload](1)
	defer broker.Close()

	ctx := context.Background()

	ch := broker.Subscribe(ctx)

	// First reload fills the one-slot buffer.
	broker.Publish(UpdatedEvent, reload{ID: "mat-1"})

	done := make(chan bool)
	go func() {
		broker.Publish(UpdatedEvent, reload{ID: "mat-2"})
		broker.Publish(UpdatedEvent, reload{ID: "mat-3"})
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		require.Fail(t, "Publish blocked")
	}

	// Only the buffered reload survives.
	event := <-ch
	require.Equal(t, "mat-1", event.Payload.ID)
}

func TestBroker_Close(t *testing.T) {
	broker := NewBroker[reload]()

	ctx := context.Background()

	ch1 := broker.Subscribe(ctx)
	ch2 := broker.Subscribe(ctx)

	require.Equal(t, 2, broker.SubscriberCount())

	broker.Close()

	_, ok1 := <-ch1
	_, ok2 := <-ch2
	require.False(t, ok1, "ch1 should be closed")
	require.False(t, ok2, "ch2 should be closed")
	require.Equal(t, 0, broker.SubscriberCount())

	// Subscribing after shutdown yields an already-closed channel.
	ch3 := broker.Subscribe(ctx)
	_, ok3 := <-ch3
	require.False(t, ok3, "ch3 should be closed immediately")

	broker.Publish(DeletedEvent, reload{ID: "gone"}) // no panic
}

func TestBroker_CloseIdempotent(t *testing.T) {
	broker := NewBroker[reload]()

	ctx := context.Background()
	ch := broker.Subscribe(ctx)

	broker.Close()
	broker.Close()
	broker.Close()

	_, ok := <-ch
	require.False(t, ok, "channel should be closed")
}
