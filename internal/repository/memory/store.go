// Package memory is an in-process store with the same semantics as the
// Postgres repositories. Transactions are serialized and applied on commit.
package memory

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/kirinyoku/dakshina/internal/domain"
	"github.com/kirinyoku/dakshina/internal/repository"
	"github.com/kirinyoku/dakshina/internal/uow"
)

type state struct {
	bookings  map[uuid.UUID]domain.Booking
	updates   []domain.StatusUpdate
	distances []domain.CityDistance
	pandits   map[uuid.UUID]domain.Pandit
}

func (st *state) clone() *state {
	cp := &state{
		bookings:  make(map[uuid.UUID]domain.Booking, len(st.bookings)),
		updates:   append([]domain.StatusUpdate(nil), st.updates...),
		distances: st.distances,
		pandits:   st.pandits,
	}
	for id, b := range st.bookings {
		cp.bookings[id] = copyBooking(b)
	}
	return cp
}

type Store struct {
	mu sync.Mutex
	st *state
	// seq survives rollbacks, as a database sequence does.
	seq atomic.Int64
}

func New() *Store {
	return &Store{
		st: &state{
			bookings: make(map[uuid.UUID]domain.Booking),
			pandits:  make(map[uuid.UUID]domain.Pandit),
		},
	}
}

// AddPandit registers or replaces a pandit profile.
func (s *Store) AddPandit(p domain.Pandit) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pandits := make(map[uuid.UUID]domain.Pandit, len(s.st.pandits)+1)
	for k, v := range s.st.pandits {
		pandits[k] = v
	}
	pandits[p.ID] = p
	s.st.pandits = pandits
}

// AddDistance adds a row to the distance reference table.
func (s *Store) AddDistance(d domain.CityDistance) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.distances = append(append([]domain.CityDistance(nil), s.st.distances...), d)
}

// Do runs fn against a private copy of the store and publishes the copy
// only when fn succeeds. After-commit hooks run once the lock is released.
func (s *Store) Do(ctx context.Context, fn uow.TxFunc) error {
	var hooks []uow.AfterCommit

	s.mu.Lock()
	tx := s.st.clone()
	err := fn(ctx, repos{v: view{s: s, tx: tx}}, func(h uow.AfterCommit) {
		hooks = append(hooks, h)
	})
	if err == nil {
		if err = ctx.Err(); err == nil {
			s.st = tx
		}
	}
	s.mu.Unlock()

	if err != nil {
		return err
	}

	for _, h := range hooks {
		h(ctx)
	}

	return nil
}

func (s *Store) Bookings() repository.BookingRepo    { return repos{v: view{s: s}}.Bookings() }
func (s *Store) StatusLog() repository.StatusLogRepo { return repos{v: view{s: s}}.StatusLog() }
func (s *Store) Distances() repository.DistanceRepo  { return repos{v: view{s: s}}.Distances() }
func (s *Store) Pandits() repository.PanditRepo      { return repos{v: view{s: s}}.Pandits() }

// view gives repositories access to either the committed state, under the
// store lock, or to a transaction's private state.
type view struct {
	s  *Store
	tx *state
}

func (v view) with(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}

	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	return fn(v.s.st)
}

type repos struct {
	v view
}

func (r repos) Bookings() repository.BookingRepo    { return bookingRepo{v: r.v} }
func (r repos) StatusLog() repository.StatusLogRepo { return statusLogRepo{v: r.v} }
func (r repos) Distances() repository.DistanceRepo  { return distanceRepo{v: r.v} }
func (r repos) Pandits() repository.PanditRepo      { return panditRepo{v: r.v} }

func copyBooking(b domain.Booking) domain.Booking {
	if b.PanditID != nil {
		id := *b.PanditID
		b.PanditID = &id
	}
	b.PaidOutAt = copyTime(b.PaidOutAt)
	b.RefundedAt = copyTime(b.RefundedAt)
	b.CancellationRequestedAt = copyTime(b.CancellationRequestedAt)
	b.CancelledAt = copyTime(b.CancelledAt)
	return b
}
