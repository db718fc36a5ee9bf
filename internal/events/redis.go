package events

import (
	"context"

	"github.com/kirinyoku/dakshina/internal/domain"
)

type BookingChangedPublisher interface {
	PublishBookingChanged(ctx context.Context, ev domain.Event) error
}

// RedisSink announces booking changes so every instance drops its cached
// views of the booking.
type RedisSink struct {
	pub BookingChangedPublisher
}

func NewRedisSink(pub BookingChangedPublisher) *RedisSink {
	return &RedisSink{pub: pub}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Send(ctx context.Context, ev domain.Event) error {
	return s.pub.PublishBookingChanged(ctx, ev)
}
