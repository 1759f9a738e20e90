package analytics

import (
	"context"
	"sync"
	"sync/atomic"

	"searoute/pkg/logger"
)

// ChannelSink buffers events on a channel and drains them on a background
// goroutine into an underlying Sink, decoupling the coordinator's hot path
// from however long the real sink takes to emit (spec §7: analytics is a
// fire-and-forget external collaborator). When the buffer is full, Emit
// drops the event rather than blocking the caller — a lossy, best-effort
// contract is the point of a fire-and-forget sink.
type ChannelSink struct {
	events  chan Event
	next    Sink
	dropped atomic.Int64

	closeOnce sync.Once
	done      chan struct{}
}

// NewChannelSink starts a background drain loop writing to next, buffering
// up to capacity pending events.
func NewChannelSink(next Sink, capacity int) *ChannelSink {
	if capacity <= 0 {
		capacity = 1024
	}
	s := &ChannelSink{
		events: make(chan Event, capacity),
		next:   next,
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *ChannelSink) run() {
	defer close(s.done)
	for e := range s.events {
		s.next.Emit(context.Background(), e)
	}
}

// Emit enqueues e without blocking. If the buffer is full, the event is
// dropped and counted — the coordinator's request latency must never wait
// on analytics capacity.
func (s *ChannelSink) Emit(_ context.Context, e Event) {
	select {
	case s.events <- e:
	default:
		n := s.dropped.Add(1)
		if n%100 == 1 {
			logger.Warn("analytics channel sink dropping events under backpressure", "dropped_total", n)
		}
	}
}

// Dropped returns the number of events dropped since creation.
func (s *ChannelSink) Dropped() int64 {
	return s.dropped.Load()
}

// Close stops accepting new events, drains whatever is already buffered,
// and closes the underlying sink.
func (s *ChannelSink) Close() error {
	s.closeOnce.Do(func() { close(s.events) })
	<-s.done
	return s.next.Close()
}
