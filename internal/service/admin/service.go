package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/dakshina/internal/domain"
	"github.com/kirinyoku/dakshina/internal/events"
	"github.com/kirinyoku/dakshina/internal/repository"
	redisrepo "github.com/kirinyoku/dakshina/internal/repository/redis"
	"github.com/kirinyoku/dakshina/internal/uow"
)

// Service is the back-office side of the engine: the payout ledger, refund
// settlement and the work queues.
type Service struct {
	repos  repository.Repos
	tx     uow.Transactor
	events events.Publisher
	cache  *redisrepo.Cache
	now    func() time.Time
}

func New(repos repository.Repos, tx uow.Transactor, publisher events.Publisher, cache *redisrepo.Cache) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}

	return &Service{
		repos:  repos,
		tx:     tx,
		events: publisher,
		cache:  cache,
		now:    time.Now,
	}
}

// WithClock replaces the service's time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// MarkPayout records that the pandit has been paid for a completed booking.
// A payout is marked exactly once; the first reference is never replaced.
//
// Parameters:
//   - ctx: request-scoped context.
//   - id: booking id.
//   - reference: bank or UPI transfer reference.
//
// Returns:
//   - *domain.Booking: the booking with its payout recorded.
//   - error: domain.ErrAlreadyPaid if the payout was already marked.
//   - error: domain.ErrNotPayoutEligible if the booking is not completed and paid.
func (s *Service) MarkPayout(ctx context.Context, id uuid.UUID, reference string) (*domain.Booking, error) {
	const op = "service.admin.MarkPayout"

	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, fmt.Errorf("%s:%w", op, domain.Validation("reference", "is required"))
	}

	var out *domain.Booking
	err := s.tx.Do(ctx, func(ctx context.Context, tx repository.Repos, after func(uow.AfterCommit)) error {
		b, err := tx.Bookings().GetForUpdate(ctx, id)
		if err != nil {
			return mapRepoErr(err)
		}

		if b.PayoutStatus == domain.PayoutCompleted {
			return domain.Conflict(domain.ErrAlreadyPaid, fmt.Sprintf("payout already completed with reference %s", b.PayoutReference))
		}
		if b.Status != domain.StatusCompleted || b.PaymentStatus != domain.PaymentPaid {
			return domain.Conflict(domain.ErrNotPayoutEligible,
				fmt.Sprintf("booking is %s with payment %s", b.Status, b.PaymentStatus))
		}

		now := s.now().UTC()
		if err := tx.Bookings().MarkPayout(ctx, id, reference, now); err != nil {
			if errors.Is(err, repository.ErrStale) {
				return domain.ErrAlreadyPaid
			}
			return err
		}

		b.PayoutStatus = domain.PayoutCompleted
		b.PayoutReference = reference
		b.PaidOutAt = &now
		b.UpdatedAt = now

		s.emit(after, b, domain.NewEvent(domain.EventPayoutCompleted, b, b.PanditPayout, now))
		out = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// SettleRefund records the gateway's final word on a refund. A failed
// refund stays open and may be settled again; a completed one is final.
//
// Returns:
//   - error: domain.ErrRefundSettled if no refund is open on the booking.
func (s *Service) SettleRefund(ctx context.Context, id uuid.UUID, status domain.RefundStatus, reference string) (*domain.Booking, error) {
	const op = "service.admin.SettleRefund"

	if status != domain.RefundCompleted && status != domain.RefundFailed {
		return nil, fmt.Errorf("%s:%w", op, domain.Validation("status", "must be COMPLETED or FAILED"))
	}
	reference = strings.TrimSpace(reference)

	open := []domain.RefundStatus{domain.RefundPending, domain.RefundProcessing, domain.RefundFailed}

	var out *domain.Booking
	err := s.tx.Do(ctx, func(ctx context.Context, tx repository.Repos, after func(uow.AfterCommit)) error {
		b, err := tx.Bookings().GetForUpdate(ctx, id)
		if err != nil {
			return mapRepoErr(err)
		}

		switch b.RefundStatus {
		case domain.RefundNone:
			return domain.Conflict(domain.ErrRefundSettled, "booking has no refund")
		case domain.RefundCompleted:
			return domain.Conflict(domain.ErrRefundSettled, fmt.Sprintf("refund already completed with reference %s", b.RefundReference))
		}

		now := s.now().UTC()
		if err := tx.Bookings().SetRefund(ctx, id, open, status, reference, now); err != nil {
			if errors.Is(err, repository.ErrStale) {
				return domain.ErrRefundSettled
			}
			return err
		}

		b.RefundStatus = status
		if reference != "" {
			b.RefundReference = reference
		}
		if status == domain.RefundCompleted {
			b.RefundedAt = &now
			b.PaymentStatus = domain.PaymentRefunded
		}
		b.UpdatedAt = now

		s.emit(after, b, domain.NewEvent(domain.EventRefundSettled, b, b.RefundAmount, now))
		out = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// TravelQueue lists bookings whose travel still has to be arranged, soonest
// event first.
func (s *Service) TravelQueue(ctx context.Context, p repository.Page) ([]domain.Booking, error) {
	const op = "service.admin.TravelQueue"

	out, err := s.repos.Bookings().ListTravelQueue(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	return out, nil
}

// CancellationQueue lists open cancellation requests, oldest first.
func (s *Service) CancellationQueue(ctx context.Context, p repository.Page) ([]domain.Booking, error) {
	const op = "service.admin.CancellationQueue"

	out, err := s.repos.Bookings().ListCancellationQueue(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	return out, nil
}

func (s *Service) PendingPayouts(ctx context.Context, p repository.Page) ([]domain.Booking, error) {
	const op = "service.admin.PendingPayouts"

	out, err := s.repos.Bookings().ListPendingPayouts(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	return out, nil
}

func (s *Service) emit(after func(uow.AfterCommit), b *domain.Booking, evs ...domain.Event) {
	id := b.ID
	after(func(ctx context.Context) {
		_ = s.cache.InvalidateBooking(ctx, id)
		s.events.Publish(ctx, evs...)
	})
}

func mapRepoErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain.ErrBookingNotFound
	}
	return err
}
