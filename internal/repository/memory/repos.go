package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/dakshina/internal/domain"
	"github.com/kirinyoku/dakshina/internal/repository"
)

type bookingRepo struct {
	v view
}

func (r bookingRepo) Create(_ context.Context, b *domain.Booking) error {
	const op = "memory.BookingRepo.Create"

	return r.v.with(func(st *state) error {
		if _, ok := st.bookings[b.ID]; ok {
			return fmt.Errorf("%s:%w", op, repository.ErrConflict)
		}
		for _, other := range st.bookings {
			if other.BookingNumber == b.BookingNumber {
				return fmt.Errorf("%s:%w", op, repository.ErrNumberTaken)
			}
			if clashes(other, *b) {
				return fmt.Errorf("%s:%w", op, repository.ErrConflict)
			}
		}
		st.bookings[b.ID] = copyBooking(*b)
		return nil
	})
}

func (r bookingRepo) Get(_ context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "memory.BookingRepo.Get"

	var out *domain.Booking
	err := r.v.with(func(st *state) error {
		b, ok := st.bookings[id]
		if !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		cp := copyBooking(b)
		out = &cp
		return nil
	})
	return out, err
}

// GetForUpdate is Get; transactions already hold the store lock.
func (r bookingRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return r.Get(ctx, id)
}

func (r bookingRepo) NextNumber(context.Context) (int64, error) {
	return r.v.s.seq.Add(1), nil
}

func (r bookingRepo) PanditDayTaken(_ context.Context, panditID uuid.UUID, day time.Time, exclude uuid.UUID) (bool, error) {
	var taken bool
	err := r.v.with(func(st *state) error {
		for id, b := range st.bookings {
			if id != exclude && b.HasPandit(panditID) && b.EventDay.Equal(day) && b.Status.BlocksDay() {
				taken = true
				return nil
			}
		}
		return nil
	})
	return taken, err
}

func (r bookingRepo) Update(_ context.Context, b *domain.Booking, expected domain.Status) error {
	const op = "memory.BookingRepo.Update"

	return r.v.with(func(st *state) error {
		cur, ok := st.bookings[b.ID]
		if !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		if cur.Status != expected {
			return fmt.Errorf("%s:%w", op, repository.ErrStale)
		}
		for id, other := range st.bookings {
			if id != b.ID && clashes(other, *b) {
				return fmt.Errorf("%s:%w", op, repository.ErrConflict)
			}
		}

		next := copyBooking(*b)
		// Identity, schedule and money breakdown are fixed at creation.
		next.BookingNumber = cur.BookingNumber
		next.CustomerID = cur.CustomerID
		next.EventDate = cur.EventDate
		next.EventDay = cur.EventDay
		next.EventDays = cur.EventDays
		next.EventType = cur.EventType
		next.Muhurat = cur.Muhurat
		next.VenueCity = cur.VenueCity
		next.TravelMode = cur.TravelMode
		next.FoodArrangement = cur.FoodArrangement
		next.Charges = cur.Charges
		next.CreatedAt = cur.CreatedAt

		st.bookings[b.ID] = next
		return nil
	})
}

func (r bookingRepo) MarkPayout(_ context.Context, id uuid.UUID, reference string, at time.Time) error {
	const op = "memory.BookingRepo.MarkPayout"

	return r.v.with(func(st *state) error {
		b, ok := st.bookings[id]
		if !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		if b.PayoutStatus != domain.PayoutPending ||
			b.Status != domain.StatusCompleted ||
			b.PaymentStatus != domain.PaymentPaid {
			return fmt.Errorf("%s:%w", op, repository.ErrStale)
		}

		b.PayoutStatus = domain.PayoutCompleted
		b.PayoutReference = reference
		b.PaidOutAt = &at
		b.UpdatedAt = at
		st.bookings[id] = copyBooking(b)
		return nil
	})
}

func (r bookingRepo) SetRefund(
	_ context.Context,
	id uuid.UUID,
	from []domain.RefundStatus,
	to domain.RefundStatus,
	reference string,
	at time.Time,
) error {
	const op = "memory.BookingRepo.SetRefund"

	return r.v.with(func(st *state) error {
		b, ok := st.bookings[id]
		if !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		if !slices.Contains(from, b.RefundStatus) {
			return fmt.Errorf("%s:%w", op, repository.ErrStale)
		}

		b.RefundStatus = to
		if to == domain.RefundCompleted {
			b.PaymentStatus = domain.PaymentRefunded
			b.RefundedAt = &at
		}
		if reference != "" {
			b.RefundReference = reference
		}
		b.UpdatedAt = at
		st.bookings[id] = copyBooking(b)
		return nil
	})
}

func (r bookingRepo) ListTravelQueue(_ context.Context, p repository.Page) ([]domain.Booking, error) {
	return r.list(p, func(b domain.Booking) bool {
		switch b.TravelStatus {
		case domain.TravelPending, domain.TravelAdminCalculating:
		default:
			return false
		}
		switch b.Status {
		case domain.StatusCreated, domain.StatusPanditRequested, domain.StatusConfirmed:
			return true
		}
		return false
	}, func(a, b domain.Booking) bool {
		return a.EventDate.Before(b.EventDate)
	})
}

func (r bookingRepo) ListCancellationQueue(_ context.Context, p repository.Page) ([]domain.Booking, error) {
	return r.list(p, func(b domain.Booking) bool {
		return b.Status == domain.StatusCancellationRequested
	}, func(a, b domain.Booking) bool {
		return timeOrZero(a.CancellationRequestedAt).Before(timeOrZero(b.CancellationRequestedAt))
	})
}

func (r bookingRepo) ListPendingPayouts(_ context.Context, p repository.Page) ([]domain.Booking, error) {
	return r.list(p, func(b domain.Booking) bool {
		return b.Status == domain.StatusCompleted &&
			b.PaymentStatus == domain.PaymentPaid &&
			b.PayoutStatus == domain.PayoutPending
	}, func(a, b domain.Booking) bool {
		return a.EventDate.Before(b.EventDate)
	})
}

func (r bookingRepo) list(
	p repository.Page,
	keep func(domain.Booking) bool,
	less func(a, b domain.Booking) bool,
) ([]domain.Booking, error) {
	p = p.Normalize()

	var out []domain.Booking
	err := r.v.with(func(st *state) error {
		for _, b := range st.bookings {
			if keep(b) {
				out = append(out, copyBooking(b))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		if less(out[i], out[j]) {
			return true
		}
		if less(out[j], out[i]) {
			return false
		}
		return out[i].ID.String() < out[j].ID.String()
	})

	if p.Offset >= len(out) {
		return []domain.Booking{}, nil
	}
	out = out[p.Offset:]
	if len(out) > p.Limit {
		out = out[:p.Limit]
	}
	return out, nil
}

type statusLogRepo struct {
	v view
}

func (r statusLogRepo) Append(_ context.Context, u *domain.StatusUpdate) error {
	const op = "memory.StatusLogRepo.Append"

	return r.v.with(func(st *state) error {
		if _, ok := st.bookings[u.BookingID]; !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		st.updates = append(st.updates, *u)
		return nil
	})
}

func (r statusLogRepo) List(_ context.Context, bookingID uuid.UUID) ([]domain.StatusUpdate, error) {
	var out []domain.StatusUpdate
	err := r.v.with(func(st *state) error {
		for _, u := range st.updates {
			if u.BookingID == bookingID {
				out = append(out, u)
			}
		}
		return nil
	})
	return out, err
}

type distanceRepo struct {
	v view
}

func (r distanceRepo) Lookup(_ context.Context, from, to string) (domain.CityDistance, error) {
	const op = "memory.DistanceRepo.Lookup"

	var out domain.CityDistance
	err := r.v.with(func(st *state) error {
		for _, d := range st.distances {
			if (strings.EqualFold(d.FromCity, from) && strings.EqualFold(d.ToCity, to)) ||
				(strings.EqualFold(d.FromCity, to) && strings.EqualFold(d.ToCity, from)) {
				out = d
				return nil
			}
		}
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	})
	return out, err
}

type panditRepo struct {
	v view
}

func (r panditRepo) Get(_ context.Context, id uuid.UUID) (*domain.Pandit, error) {
	const op = "memory.PanditRepo.Get"

	var out *domain.Pandit
	err := r.v.with(func(st *state) error {
		p, ok := st.pandits[id]
		if !ok {
			return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		out = &p
		return nil
	})
	return out, err
}

// clashes mirrors bookings_pandit_day_uq: two live bookings may not share a
// pandit and a day.
func clashes(a, b domain.Booking) bool {
	if a.ID == b.ID || a.PanditID == nil || b.PanditID == nil {
		return false
	}
	return *a.PanditID == *b.PanditID &&
		a.EventDay.Equal(b.EventDay) &&
		a.Status.BlocksDay() && b.Status.BlocksDay()
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
