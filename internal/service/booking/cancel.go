package booking

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/dakshina/internal/domain"
	"github.com/kirinyoku/dakshina/internal/pricing"
	"github.com/kirinyoku/dakshina/internal/repository"
	"github.com/kirinyoku/dakshina/internal/uow"
)

type CancelResult struct {
	Booking      *domain.Booking `json:"booking"`
	RefundAmount int64           `json:"refund_amount"`
	// Estimate is set when the refund still awaits an admin decision and
	// RefundAmount is the policy figure as of now.
	Estimate        bool   `json:"estimate"`
	RefundReference string `json:"refund_reference,omitempty"`
}

// Cancel cancels a booking for its customer or an admin. A customer's paid
// booking only raises a cancellation request; the refund is settled when an
// admin processes it. Unpaid and admin cancellations take effect at once.
//
// Returns:
//   - error: domain.ErrCancellationNotAllowed once the pandit has set out.
//   - error: domain.ErrInvalidTransition if the booking is already closed or awaiting a decision.
func (s *Service) Cancel(ctx context.Context, actor domain.Actor, id uuid.UUID, reason string) (*CancelResult, error) {
	const op = "service.booking.Cancel"

	if actor.Role != domain.RoleCustomer && actor.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("%s:%w", op, domain.Conflict(domain.ErrForbidden, "pandits decline bookings through reject"))
	}
	reason = strings.TrimSpace(reason)

	var res CancelResult
	err := s.tx.Do(ctx, func(ctx context.Context, tx repository.Repos, after func(uow.AfterCommit)) error {
		b, err := load(ctx, tx, id)
		if err != nil {
			return err
		}
		if actor.Role == domain.RoleCustomer && b.CustomerID != actor.ID {
			return domain.ErrForbidden
		}

		switch {
		case b.Status.Irreversible():
			return domain.Conflict(domain.ErrCancellationNotAllowed,
				fmt.Sprintf("pandit has already set out (%s)", b.Status))
		case b.Status == domain.StatusCancellationRequested:
			return domain.Conflict(domain.ErrInvalidTransition, "cancellation already requested")
		case !b.Status.Cancellable():
			return domain.Conflict(domain.ErrInvalidTransition, fmt.Sprintf("booking is already %s", b.Status))
		}

		now := s.now().UTC()
		from := b.Status
		paid := b.PaymentStatus == domain.PaymentPaid
		b.CancelledBy = actor.Role
		b.CancellationReason = reason

		if actor.Role == domain.RoleCustomer && paid {
			if err := s.move(ctx, tx, b, domain.StatusCancellationRequested, actor, domain.StatusUpdate{Note: reason}, now); err != nil {
				return err
			}
			b.PriorStatus = from
			b.CancellationRequestedAt = &now
			if err := save(ctx, tx, b, from); err != nil {
				return err
			}

			res.RefundAmount = s.policyRefund(b, now)
			res.Estimate = true
			s.emit(after, b, domain.NewEvent(domain.EventCancellationRequested, b, res.RefundAmount, now))
			res.Booking = b
			return nil
		}

		var refund int64
		if paid {
			refund = s.policyRefund(b, now)
		}
		if err := s.settle(ctx, tx, b, refund, actor, reason, now); err != nil {
			return err
		}
		if err := save(ctx, tx, b, from); err != nil {
			return err
		}

		res.RefundAmount = refund
		s.emit(after, b, domain.NewEvent(domain.EventBookingCancelled, b, refund, now))
		res.Booking = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if !res.Estimate && res.Booking.RefundStatus == domain.RefundPending {
		res.RefundReference = s.initiateRefund(ctx, res.Booking, reason)
	}

	return &res, nil
}

type Action string

const (
	ActionApprove Action = "APPROVE"
	ActionPartial Action = "PARTIAL"
	ActionReject  Action = "REJECT"
)

type Decision struct {
	Action Action
	// RefundAmount is the explicit refund for ActionPartial, in rupees.
	RefundAmount *float64
	Note         string
}

type DecisionResult struct {
	Booking         *domain.Booking `json:"booking"`
	RefundAmount    int64           `json:"refund_amount"`
	RefundReference string          `json:"refund_reference,omitempty"`
}

// ProcessCancellation applies an admin decision to a pending cancellation
// request. Approval refunds by policy, counting days from now; a partial
// approval refunds the given amount; rejection restores the booking.
//
// Parameters:
//   - ctx: request-scoped context.
//   - actor: the deciding admin.
//   - id: booking id.
//   - d: the decision.
//
// Returns:
//   - *DecisionResult: the booking, the refund and the gateway reference when one was issued.
//   - error: domain.ErrInvalidTransition if no cancellation is pending.
func (s *Service) ProcessCancellation(ctx context.Context, actor domain.Actor, id uuid.UUID, d Decision) (*DecisionResult, error) {
	const op = "service.booking.ProcessCancellation"

	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	switch d.Action {
	case ActionApprove, ActionReject:
	case ActionPartial:
		if d.RefundAmount == nil {
			return nil, fmt.Errorf("%s:%w", op, domain.Validation("refund_amount", "is required for a partial refund"))
		}
		if math.IsNaN(*d.RefundAmount) || math.IsInf(*d.RefundAmount, 0) || *d.RefundAmount < 0 {
			return nil, fmt.Errorf("%s:%w", op, domain.Validation("refund_amount", "must be a finite non-negative number"))
		}
	default:
		return nil, fmt.Errorf("%s:%w", op, domain.Validation("action", fmt.Sprintf("unknown action %q", d.Action)))
	}
	note := strings.TrimSpace(d.Note)

	var res DecisionResult
	err := s.tx.Do(ctx, func(ctx context.Context, tx repository.Repos, after func(uow.AfterCommit)) error {
		b, err := load(ctx, tx, id)
		if err != nil {
			return err
		}
		if b.Status != domain.StatusCancellationRequested {
			return domain.Conflict(domain.ErrInvalidTransition, fmt.Sprintf("no cancellation pending, booking is %s", b.Status))
		}

		now := s.now().UTC()
		from := b.Status

		if d.Action == ActionReject {
			prior := b.PriorStatus
			if !prior.Cancellable() {
				return domain.Conflict(domain.ErrInvalidTransition, fmt.Sprintf("cannot restore status %q", prior))
			}
			if err := s.move(ctx, tx, b, prior, actor, domain.StatusUpdate{Note: note}, now); err != nil {
				return err
			}
			b.PriorStatus = ""
			b.CancelledBy = ""
			b.CancellationReason = ""
			b.CancellationRequestedAt = nil
			if err := save(ctx, tx, b, from); err != nil {
				return err
			}

			s.emit(after, b, domain.NewEvent(domain.EventCancellationRejected, b, 0, now))
			res.Booking = b
			return nil
		}

		paid := b.PaymentStatus == domain.PaymentPaid
		var refund int64
		switch d.Action {
		case ActionApprove:
			if paid {
				refund = s.policyRefund(b, now)
			}
		case ActionPartial:
			refund = pricing.Round(*d.RefundAmount)
			if refund > b.GrandTotal {
				return domain.Validation("refund_amount", fmt.Sprintf("must not exceed the grand total %d", b.GrandTotal))
			}
			if !paid && refund > 0 {
				return domain.Validation("refund_amount", "booking was never paid")
			}
		}

		if err := s.settle(ctx, tx, b, refund, actor, note, now); err != nil {
			return err
		}
		b.PriorStatus = ""
		if err := save(ctx, tx, b, from); err != nil {
			return err
		}

		res.RefundAmount = refund
		s.emit(after, b, domain.NewEvent(domain.EventBookingCancelled, b, refund, now))
		res.Booking = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if res.Booking.RefundStatus == domain.RefundPending {
		res.RefundReference = s.initiateRefund(ctx, res.Booking, res.Booking.CancellationReason)
	}

	return &res, nil
}

// policyRefund applies the refund tiers to b as of now.
func (s *Service) policyRefund(b *domain.Booking, now time.Time) int64 {
	return pricing.RefundAmount(b.GrandTotal, pricing.DaysBeforeEvent(b.EventDate, now, s.cfg.Location))
}

// settle closes a cancellation: REFUNDED when money goes back, CANCELLED
// otherwise.
func (s *Service) settle(
	ctx context.Context,
	tx repository.Repos,
	b *domain.Booking,
	refund int64,
	actor domain.Actor,
	note string,
	now time.Time,
) error {
	to := domain.StatusCancelled
	if refund > 0 {
		to = domain.StatusRefunded
	}
	if err := s.move(ctx, tx, b, to, actor, domain.StatusUpdate{Note: note}, now); err != nil {
		return err
	}

	b.RefundAmount = pricing.ClampRefund(refund, b.GrandTotal)
	if b.RefundAmount > 0 {
		b.RefundStatus = domain.RefundPending
	}
	b.CancelledAt = &now
	return nil
}

// initiateRefund hands a pending refund to the gateway after the booking has
// been committed. The outcome is recorded on the refund sub-state only; the
// booking status never depends on it.
func (s *Service) initiateRefund(ctx context.Context, b *domain.Booking, reason string) string {
	const op = "service.booking.initiateRefund"

	pending := []domain.RefundStatus{domain.RefundPending}
	ref, gwErr := s.gateway.InitiateRefund(ctx, b.ID, b.RefundAmount, reason)

	to := domain.RefundProcessing
	if gwErr != nil {
		to = domain.RefundFailed
		s.log.Warn("refund not initiated",
			slog.String("op", op),
			slog.String("code", domain.ErrExternalFailure.Code),
			slog.String("booking_id", b.ID.String()),
			slog.Int64("amount", b.RefundAmount),
			slog.String("err", gwErr.Error()),
		)
	}

	err := s.tx.Do(ctx, func(ctx context.Context, tx repository.Repos, after func(uow.AfterCommit)) error {
		now := s.now().UTC()
		if err := tx.Bookings().SetRefund(ctx, b.ID, pending, to, ref, now); err != nil {
			return err
		}
		b.RefundStatus = to
		b.UpdatedAt = now
		var evs []domain.Event
		if gwErr == nil {
			b.RefundReference = ref
			evs = append(evs, domain.NewEvent(domain.EventRefundInitiated, b, b.RefundAmount, now))
		}
		s.emit(after, b, evs...)
		return nil
	})
	if err != nil {
		s.log.Warn("refund state not recorded",
			slog.String("op", op),
			slog.String("booking_id", b.ID.String()),
			slog.String("err", err.Error()),
		)
		return ""
	}

	if gwErr != nil {
		return ""
	}
	return ref
}
