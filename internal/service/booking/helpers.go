package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/dakshina/internal/domain"
	"github.com/kirinyoku/dakshina/internal/repository"
	"github.com/kirinyoku/dakshina/internal/uow"
)

// mapRepoErr turns storage sentinels into domain errors. Errors that are
// already domain errors pass through.
func mapRepoErr(err error) error {
	if _, ok := domain.AsError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return domain.ErrBookingNotFound
	case errors.Is(err, repository.ErrStale):
		return domain.Conflict(domain.ErrInvalidTransition, "booking changed concurrently, reload and retry")
	case errors.Is(err, repository.ErrConflict):
		return domain.ErrDateUnavailable
	}
	return err
}

// load reads a booking inside tx with a row lock.
func load(ctx context.Context, tx repository.Repos, id uuid.UUID) (*domain.Booking, error) {
	b, err := tx.Bookings().GetForUpdate(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return b, nil
}

// move applies one status change to b and writes its audit row. The booking
// row itself is written by save.
func (s *Service) move(
	ctx context.Context,
	tx repository.Repos,
	b *domain.Booking,
	to domain.Status,
	actor domain.Actor,
	u domain.StatusUpdate,
	at time.Time,
) error {
	from := b.Status
	if !from.CanTransitionTo(to) {
		return domain.Conflict(domain.ErrInvalidTransition, fmt.Sprintf("cannot move from %s to %s", from, to))
	}

	b.Status = to
	b.UpdatedAt = at

	return s.audit(ctx, tx, b, from, actor, u, at)
}

func (s *Service) audit(
	ctx context.Context,
	tx repository.Repos,
	b *domain.Booking,
	from domain.Status,
	actor domain.Actor,
	u domain.StatusUpdate,
	at time.Time,
) error {
	u.ID = uuid.New()
	u.BookingID = b.ID
	u.FromStatus = from
	u.ToStatus = b.Status
	u.UpdatedBy = actor.ID
	u.UpdatedByRole = actor.Role
	u.CreatedAt = at

	return tx.StatusLog().Append(ctx, &u)
}

// save writes b only if its stored status is still expected.
func save(ctx context.Context, tx repository.Repos, b *domain.Booking, expected domain.Status) error {
	if err := tx.Bookings().Update(ctx, b, expected); err != nil {
		return mapRepoErr(err)
	}
	return nil
}

// emit registers cache invalidation and event delivery for after commit.
func (s *Service) emit(after func(uow.AfterCommit), b *domain.Booking, evs ...domain.Event) {
	id := b.ID
	after(func(ctx context.Context) {
		_ = s.cache.InvalidateBooking(ctx, id)
		s.events.Publish(ctx, evs...)
	})
}

func requireRole(actor domain.Actor, role domain.Role) error {
	if actor.Role != role {
		return domain.Conflict(domain.ErrForbidden, fmt.Sprintf("requires role %s", role))
	}
	return nil
}
