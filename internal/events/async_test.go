package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// recordingPublisher records delivered events. When gate is set every
// delivery waits for it to close.
type recordingPublisher struct {
	mu        sync.Mutex
	delivered []CloudEvent
	closed    bool
	gate      chan struct{}
	started   chan struct{}
	err       error
}

func (r *recordingPublisher) PublishEvent(ctx context.Context, topic string, ce CloudEvent) error {
	if r.started != nil {
		select {
		case r.started <- struct{}{}:
		default:
		}
	}
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delivered = append(r.delivered, ce)
	return r.err
}

func (r *recordingPublisher) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *recordingPublisher) snapshot() ([]CloudEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]CloudEvent(nil), r.delivered...), r.closed
}

func testEvent(t *testing.T, eventType string) CloudEvent {
	t.Helper()
	ce, err := NewCloudEvent("service-route-search", eventType, SearchFailedEvent{RequestID: "req-1"})
	require.NoError(t, err)
	return ce
}

func TestAsyncPublisher_DoesNotWaitForBroker(t *testing.T) {
	inner := &recordingPublisher{gate: make(chan struct{})}
	p := NewAsyncPublisher(inner, 4, time.Second, zaptest.NewLogger(t))

	begin := time.Now()
	require.NoError(t, p.PublishEvent(context.Background(), "route.search.events", testEvent(t, SearchCompleted)))
	assert.Less(t, time.Since(begin), 100*time.Millisecond)

	close(inner.gate)
	require.NoError(t, p.Close())

	delivered, closed := inner.snapshot()
	require.Len(t, delivered, 1)
	assert.Equal(t, SearchCompleted, delivered[0].Type)
	assert.True(t, closed)
}

func TestAsyncPublisher_QueueFull(t *testing.T) {
	inner := &recordingPublisher{gate: make(chan struct{}), started: make(chan struct{}, 1)}
	p := NewAsyncPublisher(inner, 1, time.Second, zaptest.NewLogger(t))

	require.NoError(t, p.PublishEvent(context.Background(), "t", testEvent(t, SearchCompleted)))
	select {
	case <-inner.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first event never reached the inner publisher")
	}

	require.NoError(t, p.PublishEvent(context.Background(), "t", testEvent(t, SearchCompleted)))
	err := p.PublishEvent(context.Background(), "t", testEvent(t, SearchFailed))
	assert.ErrorIs(t, err, ErrQueueFull)

	close(inner.gate)
	require.NoError(t, p.Close())
	delivered, _ := inner.snapshot()
	assert.Len(t, delivered, 2)
}

func TestAsyncPublisher_CloseDrainsQueue(t *testing.T) {
	inner := &recordingPublisher{}
	p := NewAsyncPublisher(inner, 0, 0, zaptest.NewLogger(t))

	for i := 0; i < 5; i++ {
		require.NoError(t, p.PublishEvent(context.Background(), "t", testEvent(t, SearchCompleted)))
	}
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	delivered, closed := inner.snapshot()
	assert.Len(t, delivered, 5)
	assert.True(t, closed)

	err := p.PublishEvent(context.Background(), "t", testEvent(t, SearchCompleted))
	assert.ErrorIs(t, err, ErrPublisherClosed)
}

func TestAsyncPublisher_CanceledContext(t *testing.T) {
	inner := &recordingPublisher{}
	p := NewAsyncPublisher(inner, 1, time.Second, zaptest.NewLogger(t))
	defer func() { _ = p.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.PublishEvent(ctx, "t", testEvent(t, SearchCompleted)), context.Canceled)
}

func TestAsyncPublisher_LogsDeliveryErrors(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	inner := &recordingPublisher{err: errors.New("broker unavailable")}
	p := NewAsyncPublisher(inner, 1, time.Second, zap.New(core))

	ce := testEvent(t, SearchFailed)
	require.NoError(t, p.PublishEvent(context.Background(), "route.search.events", ce))
	require.NoError(t, p.Close())

	entries := logs.FilterMessage("failed to deliver event").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "route.search.events", fields["topic"])
	assert.Equal(t, SearchFailed, fields["event_type"])
	assert.Equal(t, ce.ID, fields["event_id"])
	assert.Equal(t, "broker unavailable", fields["error"])
}
