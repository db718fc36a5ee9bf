package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/dakshina/internal/domain"
	"github.com/kirinyoku/dakshina/internal/events"
	"github.com/kirinyoku/dakshina/internal/payment"
	"github.com/kirinyoku/dakshina/internal/pricing"
	"github.com/kirinyoku/dakshina/internal/repository"
	redisrepo "github.com/kirinyoku/dakshina/internal/repository/redis"
	"github.com/kirinyoku/dakshina/internal/service/invoice"
	travelsvc "github.com/kirinyoku/dakshina/internal/service/travel"
	travelcost "github.com/kirinyoku/dakshina/internal/travel"
	"github.com/kirinyoku/dakshina/internal/uow"
)

// Limiter throttles booking creation per customer.
type Limiter interface {
	Allow(ctx context.Context, suffix string) (allowed bool, current int64, retryAfter time.Duration, err error)
}

// maxNumberAttempts bounds how many sequence values Create tries when a
// booking number is already taken.
const maxNumberAttempts = 3

type Config struct {
	NumberPrefix   string
	Location       *time.Location
	Pricing        pricing.Rates
	PaymentKeyID   string
	BookingViewTTL time.Duration
	MaxEventDays   int
}

type Service struct {
	repos   repository.Repos
	tx      uow.Transactor
	gateway payment.Gateway
	events  events.Publisher
	travel  *travelsvc.Service
	cache   *redisrepo.Cache
	limiter Limiter
	log     *slog.Logger
	cfg     Config
	now     func() time.Time
}

func New(
	repos repository.Repos,
	tx uow.Transactor,
	gateway payment.Gateway,
	publisher events.Publisher,
	travel *travelsvc.Service,
	cache *redisrepo.Cache,
	limiter Limiter,
	log *slog.Logger,
	cfg Config,
) *Service {
	if cfg.NumberPrefix == "" {
		cfg.NumberPrefix = "PJ"
	}

	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	if cfg.Pricing == (pricing.Rates{}) {
		cfg.Pricing = pricing.DefaultRates()
	}

	if cfg.BookingViewTTL <= 0 {
		cfg.BookingViewTTL = 30 * time.Second
	}

	if cfg.MaxEventDays <= 0 {
		cfg.MaxEventDays = 30
	}

	if publisher == nil {
		publisher = events.Nop{}
	}

	return &Service{
		repos:   repos,
		tx:      tx,
		gateway: gateway,
		events:  publisher,
		travel:  travel,
		cache:   cache,
		limiter: limiter,
		log:     log,
		cfg:     cfg,
		now:     time.Now,
	}
}

// WithClock replaces the service's time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CalculateFees prices a booking without persisting anything.
func (s *Service) CalculateFees(in pricing.Input) (domain.Charges, error) {
	const op = "service.booking.CalculateFees"

	c, err := pricing.Calculate(in, s.cfg.Pricing)
	if err != nil {
		return domain.Charges{}, fmt.Errorf("%s:%w", op, err)
	}

	return c, nil
}

type CreateRequest struct {
	PanditID          *uuid.UUID
	EventDate         time.Time
	EventDays         int
	EventType         string
	Muhurat           string
	VenueCity         string
	DakshinaAmount    float64
	AccommodationCost float64
	TravelMode        domain.TravelMode
	Food              domain.FoodArrangement
}

func (r *CreateRequest) normalize(maxDays int) error {
	r.EventType = strings.TrimSpace(r.EventType)
	r.VenueCity = strings.TrimSpace(r.VenueCity)

	if r.EventDays == 0 {
		r.EventDays = 1
	}
	if r.Food == "" {
		r.Food = domain.FoodNone
	}

	switch {
	case r.EventType == "":
		return domain.Validation("event_type", "is required")
	case r.VenueCity == "":
		return domain.Validation("venue_city", "is required")
	case r.EventDate.IsZero():
		return domain.Validation("event_date", "is required")
	case r.EventDays < 1 || r.EventDays > maxDays:
		return domain.Validation("event_days", fmt.Sprintf("must be between 1 and %d", maxDays))
	case r.TravelMode != "" && !r.TravelMode.Valid():
		return domain.Validation("travel_mode", fmt.Sprintf("unknown mode %q", r.TravelMode))
	case !r.Food.Valid():
		return domain.Validation("food_arrangement", fmt.Sprintf("unknown arrangement %q", r.Food))
	case r.TravelMode != "" && r.PanditID == nil:
		return domain.Validation("travel_mode", "requires a pandit")
	}

	return nil
}

type PaymentOrder struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id,omitempty"`
}

type CreateResult struct {
	Booking      *domain.Booking `json:"booking"`
	PaymentOrder *PaymentOrder   `json:"payment_order,omitempty"`
}

// Create books a ceremony for the calling customer. The pandit-day check and
// the insert share one transaction; the payment order is opened only after
// it commits.
//
// Parameters:
//   - ctx: request-scoped context.
//   - actor: the authenticated customer.
//   - req: schedule, venue and money inputs.
//
// Returns:
//   - *CreateResult: the stored booking and, when the gateway answered, its payment order.
//   - error: domain.ErrPanditUnavailable if the pandit is inactive or out of range.
//   - error: domain.ErrDateUnavailable if the pandit already holds a booking that day.
//   - error: domain.ErrRateLimited if the customer is creating bookings too fast.
func (s *Service) Create(ctx context.Context, actor domain.Actor, req CreateRequest) (*CreateResult, error) {
	const op = "service.booking.Create"

	if actor.Role != domain.RoleCustomer {
		return nil, fmt.Errorf("%s:%w", op, domain.Conflict(domain.ErrForbidden, "only customers create bookings"))
	}

	if s.limiter != nil {
		ok, _, retry, err := s.limiter.Allow(ctx, actor.ID.String())
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		if !ok {
			return nil, fmt.Errorf("%s:%w", op,
				domain.Conflict(domain.ErrRateLimited, fmt.Sprintf("retry in %s", retry.Round(time.Second))))
		}
	}

	if err := req.normalize(s.cfg.MaxEventDays); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	now := s.now().UTC()
	if req.EventDate.Before(now) {
		return nil, fmt.Errorf("%s:%w", op, domain.Validation("event_date", "must be in the future"))
	}

	in := pricing.Input{
		DakshinaAmount:    req.DakshinaAmount,
		AccommodationCost: req.AccommodationCost,
	}

	if req.PanditID != nil {
		opt, err := s.checkPandit(ctx, *req.PanditID, req.VenueCity, req.TravelMode, req.EventDays, req.Food)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		if opt != nil {
			in.TravelCost = float64(opt.TravelCost)
			in.FoodAllowanceAmount = float64(opt.FoodAllowance)
		}
	}

	charges, err := pricing.Calculate(in, s.cfg.Pricing)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	b := &domain.Booking{
		ID:              uuid.New(),
		CustomerID:      actor.ID,
		PanditID:        req.PanditID,
		EventDate:       req.EventDate.UTC(),
		EventDay:        pricing.CalendarDay(req.EventDate, s.cfg.Location),
		EventDays:       req.EventDays,
		EventType:       req.EventType,
		Muhurat:         req.Muhurat,
		VenueCity:       req.VenueCity,
		Status:          domain.StatusCreated,
		PaymentStatus:   domain.PaymentPending,
		TravelStatus:    domain.TravelNotRequired,
		PayoutStatus:    domain.PayoutPending,
		TravelMode:      req.TravelMode,
		FoodArrangement: req.Food,
		Charges:         charges,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.TravelMode.RequiresArrangement() {
		b.TravelStatus = domain.TravelPending
	}

	insert := func() error {
		return s.tx.Do(ctx, func(ctx context.Context, tx repository.Repos, after func(uow.AfterCommit)) error {
			if b.PanditID != nil {
				taken, err := tx.Bookings().PanditDayTaken(ctx, *b.PanditID, b.EventDay, uuid.Nil)
				if err != nil {
					return err
				}
				if taken {
					return domain.ErrDateUnavailable
				}
			}

			seq, err := tx.Bookings().NextNumber(ctx)
			if err != nil {
				return err
			}
			b.BookingNumber = fmt.Sprintf("%s-%d-%05d", s.cfg.NumberPrefix, now.In(s.cfg.Location).Year(), seq%100000)

			if err := tx.Bookings().Create(ctx, b); err != nil {
				return mapRepoErr(err)
			}

			if err := s.audit(ctx, tx, b, "", actor, domain.StatusUpdate{}, now); err != nil {
				return err
			}

			s.emit(after, b, domain.NewEvent(domain.EventBookingCreated, b, b.GrandTotal, now))
			return nil
		})
	}

	// The printed number wraps every 100000 bookings, so a clash takes the
	// next sequence value.
	for attempt := 1; ; attempt++ {
		err = insert()
		if attempt == maxNumberAttempts || !errors.Is(err, repository.ErrNumberTaken) {
			break
		}
	}
	if err != nil {
		if _, ok := domain.AsError(err); !ok && errors.Is(err, repository.ErrConflict) {
			err = domain.ErrDateUnavailable
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &CreateResult{Booking: b, PaymentOrder: s.openOrder(ctx, b)}, nil
}

// openOrder asks the gateway for a payment order and records its id. A
// gateway failure leaves the booking unpaid and is only logged.
func (s *Service) openOrder(ctx context.Context, b *domain.Booking) *PaymentOrder {
	orderID, err := s.gateway.CreateOrder(ctx, b.ID, b.GrandTotal)
	if err != nil {
		s.log.Warn("payment order not created",
			slog.String("code", domain.ErrExternalFailure.Code),
			slog.String("booking_id", b.ID.String()),
			slog.String("err", err.Error()),
		)
		return nil
	}

	err = s.tx.Do(ctx, func(ctx context.Context, tx repository.Repos, after func(uow.AfterCommit)) error {
		cur, err := tx.Bookings().GetForUpdate(ctx, b.ID)
		if err != nil {
			return err
		}
		cur.PaymentOrderID = orderID
		cur.UpdatedAt = s.now().UTC()
		if err := tx.Bookings().Update(ctx, cur, cur.Status); err != nil {
			return err
		}
		after(func(ctx context.Context) { _ = s.cache.InvalidateBooking(ctx, b.ID) })
		return nil
	})
	if err != nil {
		s.log.Warn("payment order not recorded",
			slog.String("booking_id", b.ID.String()),
			slog.String("order_id", orderID),
			slog.String("err", err.Error()),
		)
	} else {
		b.PaymentOrderID = orderID
	}

	return &PaymentOrder{
		OrderID:  orderID,
		Amount:   b.GrandTotal,
		Currency: "INR",
		KeyID:    s.cfg.PaymentKeyID,
	}
}

// checkPandit confirms the pandit takes bookings at the venue and, when a
// travel mode is chosen, costs the trip.
func (s *Service) checkPandit(
	ctx context.Context,
	panditID uuid.UUID,
	venue string,
	mode domain.TravelMode,
	eventDays int,
	food domain.FoodArrangement,
) (*travelcost.Option, error) {
	p, err := s.repos.Pandits().Get(ctx, panditID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrPanditNotFound
		}
		return nil, err
	}
	if !p.Bookable() {
		return nil, domain.Conflict(domain.ErrPanditUnavailable, "pandit is not active or not verified")
	}

	if mode != "" {
		q, err := s.travel.Quote(ctx, travelsvc.QuoteRequest{
			ToCity:    venue,
			PanditID:  &panditID,
			Mode:      mode,
			EventDays: eventDays,
			Food:      food,
		})
		if err != nil {
			return nil, err
		}
		if len(q.Options) == 0 {
			return nil, domain.Conflict(domain.ErrPanditUnavailable, "venue is outside the pandit's travel radius")
		}
		return &q.Options[0], nil
	}

	if p.MaxTravelKm > 0 {
		d, err := s.travel.Distance(ctx, p.HomeCity, venue)
		if err != nil {
			if errors.Is(err, domain.ErrDistanceNotFound) {
				return nil, nil
			}
			return nil, err
		}
		if d.DistanceKm > p.MaxTravelKm {
			return nil, domain.Conflict(domain.ErrPanditUnavailable, "venue is outside the pandit's travel radius")
		}
	}

	return nil, nil
}

// Get returns a booking the actor may see.
func (s *Service) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Booking, error) {
	const op = "service.booking.Get"

	b, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisrepo.KeyBooking(id),
		s.cfg.BookingViewTTL,
		func(ctx context.Context) (*domain.Booking, error) {
			return s.repos.Bookings().Get(ctx, id)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, mapRepoErr(err))
	}

	if !b.VisibleTo(actor) {
		return nil, fmt.Errorf("%s:%w", op, domain.ErrForbidden)
	}

	return b, nil
}

// History returns the audit trail of a booking, oldest first.
func (s *Service) History(ctx context.Context, actor domain.Actor, id uuid.UUID) ([]domain.StatusUpdate, error) {
	const op = "service.booking.History"

	b, err := s.repos.Bookings().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, mapRepoErr(err))
	}
	if !b.VisibleTo(actor) {
		return nil, fmt.Errorf("%s:%w", op, domain.ErrForbidden)
	}

	updates, err := s.repos.StatusLog().List(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	if updates == nil {
		updates = []domain.StatusUpdate{}
	}

	return updates, nil
}

// Invoice renders the booking's PDF invoice.
func (s *Service) Invoice(ctx context.Context, actor domain.Actor, id uuid.UUID) ([]byte, string, error) {
	const op = "service.booking.Invoice"

	b, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, "", fmt.Errorf("%s:%w", op, err)
	}

	pdf, name, err := invoice.Render(b, s.cfg.Location, s.now())
	if err != nil {
		return nil, "", fmt.Errorf("%s:%w", op, err)
	}

	return pdf, name, nil
}
