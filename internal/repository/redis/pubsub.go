package redis

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/kirinyoku/dakshina/internal/domain"
	"github.com/redis/go-redis/v9"
)

type BookingsPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewBookingsPubSub(rdb *redis.Client) *BookingsPubSub {
	return &BookingsPubSub{
		rdb:     rdb,
		channel: ChannelBookingsChanged(),
	}
}

type bookingChangedMsg struct {
	Type      string    `json:"type"`
	BookingID uuid.UUID `json:"booking_id"`
	Status    string    `json:"status"`
	TsUnix    int64     `json:"ts_unix"`
}

func (p *BookingsPubSub) PublishBookingChanged(ctx context.Context, ev domain.Event) error {
	msg := bookingChangedMsg{
		Type:      string(ev.Type),
		BookingID: ev.BookingID,
		Status:    string(ev.Status),
		TsUnix:    ev.OccurredAt.Unix(),
	}

	b, _ := json.Marshal(msg)

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

// Subscribe calls handler for every booking-changed message until ctx is
// cancelled or the subscription closes.
func (p *BookingsPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, bookingID uuid.UUID)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev bookingChangedMsg
			if err := json.Unmarshal([]byte(m.Payload), &ev); err == nil &&
				ev.BookingID != uuid.Nil {
				handler(ctx, ev.BookingID)
			}
		}
	}
}
