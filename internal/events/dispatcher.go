// Package events delivers committed booking events to Kafka, redis and
// notification channels without blocking the request that produced them.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kirinyoku/dakshina/internal/domain"
)

// Publisher accepts events after their transaction has committed.
type Publisher interface {
	Publish(ctx context.Context, evs ...domain.Event)
}

// Sink is one delivery channel.
type Sink interface {
	Name() string
	Send(ctx context.Context, ev domain.Event) error
}

// Dispatcher fans events out to every sink in the background. Sink failures
// are logged and dropped, as are events published after Close.
type Dispatcher struct {
	log     *slog.Logger
	sinks   []Sink
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(log *slog.Logger, sinks ...Sink) *Dispatcher {
	return &Dispatcher{
		log:     log,
		sinks:   sinks,
		timeout: 5 * time.Second,
	}
}

func (d *Dispatcher) Publish(ctx context.Context, evs ...domain.Event) {
	if len(evs) == 0 || len(d.sinks) == 0 {
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.log.Warn("event dropped after shutdown",
			slog.String("event", string(evs[0].Type)),
			slog.String("booking_id", evs[0].BookingID.String()),
			slog.Int("count", len(evs)),
		)
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	ctx = context.WithoutCancel(ctx)

	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()

		for _, ev := range evs {
			for _, s := range d.sinks {
				if err := s.Send(ctx, ev); err != nil {
					d.log.Warn("event delivery failed",
						slog.String("code", domain.ErrExternalFailure.Code),
						slog.String("sink", s.Name()),
						slog.String("event", string(ev.Type)),
						slog.String("booking_id", ev.BookingID.String()),
						slog.Any("err", err),
					)
				}
			}
		}
	}()
}

// Close stops accepting events and waits for in-flight deliveries.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.wg.Wait()
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, ...domain.Event) {}
