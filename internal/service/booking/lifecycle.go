package booking

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/kirinyoku/dakshina/internal/domain"
	"github.com/kirinyoku/dakshina/internal/repository"
	"github.com/kirinyoku/dakshina/internal/uow"
)

type PaymentProof struct {
	OrderID   string
	PaymentID string
	Signature string
}

// VerifyPayment checks the checkout signature and marks the booking paid.
// A paid booking with an assigned pandit is sent to the pandit.
//
// Returns:
//   - error: domain.ErrInvalidSignature if the signature does not match; the
//     failed attempt is recorded.
//   - error: domain.ErrPaymentVerified if the booking is already paid.
func (s *Service) VerifyPayment(ctx context.Context, actor domain.Actor, id uuid.UUID, proof PaymentProof) (*domain.Booking, error) {
	const op = "service.booking.VerifyPayment"

	if err := requireRole(actor, domain.RoleCustomer); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	if proof.OrderID == "" || proof.PaymentID == "" || proof.Signature == "" {
		return nil, fmt.Errorf("%s:%w", op, domain.Validation("payment", "order_id, payment_id and signature are required"))
	}

	var (
		out     *domain.Booking
		invalid bool
	)
	err := s.tx.Do(ctx, func(ctx context.Context, tx repository.Repos, after func(uow.AfterCommit)) error {
		b, err := load(ctx, tx, id)
		if err != nil {
			return err
		}
		if b.CustomerID != actor.ID {
			return domain.ErrForbidden
		}

		switch {
		case b.PaymentStatus == domain.PaymentPaid:
			return domain.ErrPaymentVerified
		case b.PaymentStatus == domain.PaymentRefunded,
			b.Status.IsTerminal(),
			b.Status == domain.StatusCancellationRequested:
			return domain.Conflict(domain.ErrInvalidTransition, fmt.Sprintf("booking in %s cannot take payment", b.Status))
		case b.PaymentOrderID != "" && b.PaymentOrderID != proof.OrderID:
			return domain.Validation("order_id", "does not belong to this booking")
		}

		now := s.now().UTC()
		from := b.Status
		b.UpdatedAt = now

		if !s.gateway.VerifySignature(proof.OrderID, proof.PaymentID, proof.Signature) {
			invalid = true
			b.PaymentStatus = domain.PaymentFailed
			if err := save(ctx, tx, b, from); err != nil {
				return err
			}
			after(func(ctx context.Context) { _ = s.cache.InvalidateBooking(ctx, b.ID) })
			return nil
		}

		b.PaymentStatus = domain.PaymentPaid
		b.PaymentOrderID = proof.OrderID
		b.PaymentID = proof.PaymentID

		evs := []domain.Event{domain.NewEvent(domain.EventPaymentReceived, b, b.GrandTotal, now)}
		if b.Status == domain.StatusCreated && b.PanditID != nil {
			if err := s.move(ctx, tx, b, domain.StatusPanditRequested, actor, domain.StatusUpdate{Note: "payment received"}, now); err != nil {
				return err
			}
			evs = append(evs, domain.NewEvent(domain.EventPanditRequested, b, 0, now))
		}

		if err := save(ctx, tx, b, from); err != nil {
			return err
		}

		s.emit(after, b, evs...)
		out = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	if invalid {
		return nil, fmt.Errorf("%s:%w", op, domain.ErrInvalidSignature)
	}

	return out, nil
}

// pandit loads a booking for its assigned pandit.
func pandit(ctx context.Context, tx repository.Repos, actor domain.Actor, id uuid.UUID) (*domain.Booking, error) {
	if err := requireRole(actor, domain.RolePandit); err != nil {
		return nil, err
	}
	b, err := load(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !b.HasPandit(actor.ID) {
		return nil, domain.ErrForbidden
	}
	return b, nil
}

// Accept confirms the booking on behalf of its assigned pandit.
func (s *Service) Accept(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Booking, error) {
	const op = "service.booking.Accept"

	var out *domain.Booking
	err := s.tx.Do(ctx, func(ctx context.Context, tx repository.Repos, after func(uow.AfterCommit)) error {
		b, err := pandit(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if !b.Status.AwaitingPandit() {
			return domain.Conflict(domain.ErrInvalidTransition, fmt.Sprintf("cannot accept a booking in %s", b.Status))
		}

		now := s.now().UTC()
		from := b.Status
		if err := s.move(ctx, tx, b, domain.StatusConfirmed, actor, domain.StatusUpdate{}, now); err != nil {
			return err
		}
		evs := []domain.Event{domain.NewEvent(domain.EventBookingConfirmed, b, 0, now)}

		// Travel arranged before acceptance still passes through TRAVEL_BOOKED.
		if b.TravelRequired() && b.TravelStatus == domain.TravelBooked {
			u := domain.StatusUpdate{Note: "travel already booked"}
			if err := s.move(ctx, tx, b, domain.StatusTravelBooked, actor, u, now); err != nil {
				return err
			}
			evs = append(evs, domain.NewEvent(domain.EventTravelBooked, b, 0, now))
		}

		if err := save(ctx, tx, b, from); err != nil {
			return err
		}

		s.emit(after, b, evs...)
		out = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// Reject declines the booking for its assigned pandit. A paid booking is
// refunded in full.
func (s *Service) Reject(ctx context.Context, actor domain.Actor, id uuid.UUID, reason string) (*domain.Booking, error) {
	const op = "service.booking.Reject"

	var out *domain.Booking
	err := s.tx.Do(ctx, func(ctx context.Context, tx repository.Repos, after func(uow.AfterCommit)) error {
		b, err := pandit(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if !b.Status.AwaitingPandit() {
			return domain.Conflict(domain.ErrInvalidTransition, fmt.Sprintf("cannot reject a booking in %s", b.Status))
		}

		now := s.now().UTC()
		from := b.Status
		if err := s.move(ctx, tx, b, domain.StatusCancelled, actor, domain.StatusUpdate{Note: reason}, now); err != nil {
			return err
		}
		b.CancelledBy = domain.RolePandit
		b.CancellationReason = strings.TrimSpace(reason)
		b.CancelledAt = &now
		if b.PaymentStatus == domain.PaymentPaid {
			b.RefundAmount = b.GrandTotal
			b.RefundStatus = domain.RefundPending
		}

		if err := save(ctx, tx, b, from); err != nil {
			return err
		}

		s.emit(after, b, domain.NewEvent(domain.EventBookingRejected, b, b.RefundAmount, now))
		out = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if out.RefundStatus == domain.RefundPending {
		s.initiateRefund(ctx, out, "rejected by pandit")
	}

	return out, nil
}

type ProgressRequest struct {
	Status domain.Status
	Note   string
	Lat    *float64
	Lng    *float64
}

func (r ProgressRequest) validate() error {
	if !r.Status.IsProgressStep() {
		return domain.Validation("status", fmt.Sprintf("%q is not a progress status", r.Status))
	}
	if (r.Lat == nil) != (r.Lng == nil) {
		return domain.Validation("location", "latitude and longitude go together")
	}
	if r.Lat != nil {
		if math.IsNaN(*r.Lat) || *r.Lat < -90 || *r.Lat > 90 {
			return domain.Validation("latitude", "must be between -90 and 90")
		}
		if math.IsNaN(*r.Lng) || *r.Lng < -180 || *r.Lng > 180 {
			return domain.Validation("longitude", "must be between -180 and 180")
		}
	}
	return nil
}

// UpdateProgress records the pandit's next checkpoint. Checkpoints cannot be
// skipped, and a pandit whose travel is arranged by the platform cannot set
// out before it is booked.
func (s *Service) UpdateProgress(ctx context.Context, actor domain.Actor, id uuid.UUID, req ProgressRequest) (*domain.Booking, error) {
	const op = "service.booking.UpdateProgress"

	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	var out *domain.Booking
	err := s.tx.Do(ctx, func(ctx context.Context, tx repository.Repos, after func(uow.AfterCommit)) error {
		b, err := pandit(ctx, tx, actor, id)
		if err != nil {
			return err
		}

		next, ok := b.Status.NextProgress()
		if !ok || next != req.Status {
			return domain.Conflict(domain.ErrInvalidTransition, fmt.Sprintf("cannot move from %s to %s", b.Status, req.Status))
		}
		if b.Status == domain.StatusConfirmed && b.TravelRequired() {
			return domain.Conflict(domain.ErrInvalidTransition, "travel has not been booked yet")
		}

		now := s.now().UTC()
		from := b.Status
		u := domain.StatusUpdate{Note: strings.TrimSpace(req.Note), Latitude: req.Lat, Longitude: req.Lng}
		if err := s.move(ctx, tx, b, req.Status, actor, u, now); err != nil {
			return err
		}

		if b.TravelRequired() {
			switch b.Status {
			case domain.StatusPanditEnRoute:
				b.TravelStatus = domain.TravelInTransit
			case domain.StatusPanditArrived:
				b.TravelStatus = domain.TravelArrived
			}
		}

		if err := save(ctx, tx, b, from); err != nil {
			return err
		}

		t := domain.EventProgressUpdated
		if b.Status == domain.StatusCompleted {
			t = domain.EventBookingCompleted
		}
		s.emit(after, b, domain.NewEvent(t, b, 0, now))
		out = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

type TravelUpdate struct {
	Status  domain.TravelStatus
	Details string
}

// UpdateTravel records an admin's progress arranging travel. Booking travel
// on a confirmed booking moves it to TRAVEL_BOOKED.
func (s *Service) UpdateTravel(ctx context.Context, actor domain.Actor, id uuid.UUID, req TravelUpdate) (*domain.Booking, error) {
	const op = "service.booking.UpdateTravel"

	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	var out *domain.Booking
	err := s.tx.Do(ctx, func(ctx context.Context, tx repository.Repos, after func(uow.AfterCommit)) error {
		b, err := load(ctx, tx, id)
		if err != nil {
			return err
		}
		if !b.TravelRequired() {
			return domain.Conflict(domain.ErrInvalidTransition, "booking does not need travel arranged")
		}

		switch b.Status {
		case domain.StatusCreated, domain.StatusPanditRequested, domain.StatusConfirmed, domain.StatusTravelBooked:
		default:
			return domain.Conflict(domain.ErrInvalidTransition, fmt.Sprintf("travel cannot be arranged in %s", b.Status))
		}
		if req.Status != b.TravelStatus && !b.TravelStatus.CanArrange(req.Status) {
			return domain.Conflict(domain.ErrInvalidTransition,
				fmt.Sprintf("travel cannot move from %s to %s", b.TravelStatus, req.Status))
		}

		now := s.now().UTC()
		from := b.Status
		b.TravelStatus = req.Status
		if d := strings.TrimSpace(req.Details); d != "" {
			b.TravelDetails = d
		}
		b.UpdatedAt = now

		var evs []domain.Event
		if b.TravelStatus == domain.TravelBooked && b.Status == domain.StatusConfirmed {
			if err := s.move(ctx, tx, b, domain.StatusTravelBooked, actor, domain.StatusUpdate{Note: b.TravelDetails}, now); err != nil {
				return err
			}
			evs = append(evs, domain.NewEvent(domain.EventTravelBooked, b, 0, now))
		}

		if err := save(ctx, tx, b, from); err != nil {
			return err
		}

		s.emit(after, b, evs...)
		out = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// AssignPandit attaches a pandit to a booking created without one.
//
// Returns:
//   - error: domain.ErrPanditUnavailable if the pandit is inactive or out of range.
//   - error: domain.ErrDateUnavailable if the pandit already holds a booking that day.
func (s *Service) AssignPandit(ctx context.Context, actor domain.Actor, id, panditID uuid.UUID) (*domain.Booking, error) {
	const op = "service.booking.AssignPandit"

	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	unassigned := func(b *domain.Booking) error {
		if b.Status != domain.StatusCreated || b.PanditID != nil {
			return domain.Conflict(domain.ErrInvalidTransition, "only unassigned new bookings take a pandit")
		}
		return nil
	}

	cur, err := s.repos.Bookings().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, mapRepoErr(err))
	}
	if err := unassigned(cur); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	if _, err := s.checkPandit(ctx, panditID, cur.VenueCity, "", cur.EventDays, cur.FoodArrangement); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	var out *domain.Booking
	err = s.tx.Do(ctx, func(ctx context.Context, tx repository.Repos, after func(uow.AfterCommit)) error {
		b, err := load(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := unassigned(b); err != nil {
			return err
		}

		taken, err := tx.Bookings().PanditDayTaken(ctx, panditID, b.EventDay, b.ID)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrDateUnavailable
		}

		now := s.now().UTC()
		from := b.Status
		b.PanditID = &panditID
		if err := s.move(ctx, tx, b, domain.StatusPanditRequested, actor, domain.StatusUpdate{Note: "pandit assigned"}, now); err != nil {
			return err
		}
		if err := save(ctx, tx, b, from); err != nil {
			return err
		}

		s.emit(after, b, domain.NewEvent(domain.EventPanditRequested, b, 0, now))
		out = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}
