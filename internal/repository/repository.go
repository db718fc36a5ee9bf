package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/dakshina/internal/domain"
)

// Page bounds a list query.
type Page struct {
	Limit  int
	Offset int
}

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

type BookingRepo interface {
	// Create inserts a new booking. A second live booking for the same
	// pandit and day fails with ErrConflict.
	Create(ctx context.Context, b *domain.Booking) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	// GetForUpdate reads a booking and locks it until the transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	// NextNumber returns the next value of the booking number sequence.
	NextNumber(ctx context.Context) (int64, error)
	// PanditDayTaken reports whether another live booking holds the
	// pandit's day.
	PanditDayTaken(ctx context.Context, panditID uuid.UUID, day time.Time, exclude uuid.UUID) (bool, error)
	// Update writes every mutable field of b when the stored status still
	// equals expected, otherwise it returns ErrStale.
	Update(ctx context.Context, b *domain.Booking, expected domain.Status) error
	// MarkPayout completes a pending payout of a completed, paid booking.
	// It returns ErrStale when the booking no longer qualifies.
	MarkPayout(ctx context.Context, id uuid.UUID, reference string, at time.Time) error
	// SetRefund moves the refund status from one of from to to, stamping the
	// booking with at. Completing a refund also marks the payment REFUNDED
	// and records at as the refund time. It returns ErrStale when the current
	// refund status is not in from.
	SetRefund(ctx context.Context, id uuid.UUID, from []domain.RefundStatus, to domain.RefundStatus, reference string, at time.Time) error

	ListTravelQueue(ctx context.Context, p Page) ([]domain.Booking, error)
	ListCancellationQueue(ctx context.Context, p Page) ([]domain.Booking, error)
	ListPendingPayouts(ctx context.Context, p Page) ([]domain.Booking, error)
}

type StatusLogRepo interface {
	Append(ctx context.Context, u *domain.StatusUpdate) error
	// List returns the booking's history oldest first.
	List(ctx context.Context, bookingID uuid.UUID) ([]domain.StatusUpdate, error)
}

type DistanceRepo interface {
	// Lookup finds the distance between two cities in either direction,
	// ignoring case.
	Lookup(ctx context.Context, from, to string) (domain.CityDistance, error)
}

type PanditRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Pandit, error)
}

// Repos is the set of repositories bound to one connection or transaction.
type Repos interface {
	Bookings() BookingRepo
	StatusLog() StatusLogRepo
	Distances() DistanceRepo
	Pandits() PanditRepo
}
