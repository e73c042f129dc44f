package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull is returned when the background queue cannot take another event.
	ErrQueueFull = errors.New("event queue full")
	// ErrPublisherClosed is returned for events published after Close.
	ErrPublisherClosed = errors.New("event publisher closed")
)

const (
	DefaultQueueSize      = 256
	DefaultPublishTimeout = 5 * time.Second
)

type queuedEvent struct {
	topic string
	event CloudEvent
}

// AsyncPublisher hands events to a background goroutine so callers never wait
// on the broker. Delivery errors are logged, not returned.
type AsyncPublisher struct {
	next    Publisher
	queue   chan queuedEvent
	timeout time.Duration
	logger  *zap.Logger

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
	closeErr  error
	done      chan struct{}
}

// NewAsyncPublisher starts the delivery goroutine in front of next.
// Non-positive sizes and timeouts fall back to the defaults.
func NewAsyncPublisher(next Publisher, queueSize int, timeout time.Duration, logger *zap.Logger) *AsyncPublisher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	p := &AsyncPublisher{
		next:    next,
		queue:   make(chan queuedEvent, queueSize),
		timeout: timeout,
		logger:  logger.Named("async-publisher"),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

// PublishEvent enqueues ce without blocking. ctx is only checked for cancellation.
func (p *AsyncPublisher) PublishEvent(ctx context.Context, topic string, ce CloudEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	select {
	case p.queue <- queuedEvent{topic: topic, event: ce}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting events, delivers what is queued and closes the
// wrapped publisher.
func (p *AsyncPublisher) Close() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.queue)
		p.mu.Unlock()

		<-p.done
		p.closeErr = p.next.Close()
	})
	return p.closeErr
}

func (p *AsyncPublisher) run() {
	defer close(p.done)
	for qe := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		err := p.next.PublishEvent(ctx, qe.topic, qe.event)
		cancel()
		if err != nil {
			p.logger.Error("failed to deliver event",
				zap.String("topic", qe.topic),
				zap.String("event_type", qe.event.Type),
				zap.String("event_id", qe.event.ID),
				zap.Error(err),
			)
		}
	}
}
