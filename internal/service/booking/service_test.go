package booking_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/dakshina/internal/domain"
	"github.com/kirinyoku/dakshina/internal/payment"
	"github.com/kirinyoku/dakshina/internal/pricing"
	"github.com/kirinyoku/dakshina/internal/repository"
	"github.com/kirinyoku/dakshina/internal/repository/memory"
	"github.com/kirinyoku/dakshina/internal/service/booking"
	travelsvc "github.com/kirinyoku/dakshina/internal/service/travel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+1800)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type recorder struct {
	mu  sync.Mutex
	evs []domain.Event
}

func (r *recorder) Publish(_ context.Context, evs ...domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evs = append(r.evs, evs...)
}

func (r *recorder) types() []domain.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.EventType, 0, len(r.evs))
	for _, ev := range r.evs {
		out = append(out, ev.Type)
	}
	return out
}

type brokenGateway struct {
	*payment.HMACGateway
}

func (brokenGateway) InitiateRefund(context.Context, uuid.UUID, int64, string) (string, error) {
	return "", errors.New("gateway timeout")
}

type denyLimiter struct{}

func (denyLimiter) Allow(context.Context, string) (bool, int64, time.Duration, error) {
	return false, 6, 30 * time.Second, nil
}

type fixture struct {
	store    *memory.Store
	svc      *booking.Service
	gw       *payment.HMACGateway
	events   *recorder
	clock    *clock
	pandit   domain.Actor
	customer domain.Actor
	admin    domain.Actor
}

func newFixture(t *testing.T, opts ...func(*fixtureOpts)) *fixture {
	t.Helper()

	o := fixtureOpts{}
	for _, fn := range opts {
		fn(&o)
	}

	store := memory.New()
	f := &fixture{
		store:    store,
		gw:       payment.NewHMACGateway(payment.Config{KeyID: "key_test", KeySecret: "s3cret"}),
		events:   &recorder{},
		clock:    &clock{t: time.Date(2026, 10, 1, 4, 30, 0, 0, time.UTC)},
		pandit:   domain.Actor{ID: uuid.New(), Role: domain.RolePandit},
		customer: domain.Actor{ID: uuid.New(), Role: domain.RoleCustomer},
		admin:    domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin},
	}

	store.AddPandit(domain.Pandit{
		ID:          f.pandit.ID,
		Name:        "Pt. Shastri",
		HomeCity:    "Varanasi",
		MaxTravelKm: 1200,
		Active:      true,
		Verified:    true,
	})
	store.AddDistance(domain.CityDistance{FromCity: "Delhi", ToCity: "Varanasi", DistanceKm: 800, DriveHours: 13})

	var gw payment.Gateway = f.gw
	if o.brokenRefunds {
		gw = brokenGateway{f.gw}
	}

	f.svc = booking.New(
		store,
		store,
		gw,
		f.events,
		travelsvc.New(store, nil, travelsvc.Config{}),
		nil,
		o.limiter,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		booking.Config{Location: ist, PaymentKeyID: "key_test"},
	).WithClock(f.clock.Now)

	return f
}

type fixtureOpts struct {
	brokenRefunds bool
	limiter       booking.Limiter
}

func withBrokenRefunds(o *fixtureOpts) { o.brokenRefunds = true }

// eventIn returns 10:00 IST days after the fixture's start.
func eventIn(days int) time.Time {
	return time.Date(2026, 10, 1+days, 4, 30, 0, 0, time.UTC)
}

func (f *fixture) request(days int) booking.CreateRequest {
	return booking.CreateRequest{
		PanditID:       &f.pandit.ID,
		EventDate:      eventIn(days),
		EventType:      "Satyanarayan Katha",
		VenueCity:      "Varanasi",
		DakshinaAmount: 5000,
	}
}

func (f *fixture) create(t *testing.T, req booking.CreateRequest) *booking.CreateResult {
	t.Helper()
	res, err := f.svc.Create(context.Background(), f.customer, req)
	require.NoError(t, err)
	return res
}

func (f *fixture) pay(t *testing.T, res *booking.CreateResult) *domain.Booking {
	t.Helper()
	require.NotNil(t, res.PaymentOrder)
	order := res.PaymentOrder.OrderID
	b, err := f.svc.VerifyPayment(context.Background(), f.customer, res.Booking.ID, booking.PaymentProof{
		OrderID:   order,
		PaymentID: "pay_123",
		Signature: f.gw.Sign(order, "pay_123"),
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) confirmed(t *testing.T, req booking.CreateRequest) *domain.Booking {
	t.Helper()
	res := f.create(t, req)
	f.pay(t, res)
	b, err := f.svc.Accept(context.Background(), f.pandit, res.Booking.ID)
	require.NoError(t, err)
	return b
}

func (f *fixture) progress(t *testing.T, id uuid.UUID, st domain.Status) *domain.Booking {
	t.Helper()
	b, err := f.svc.UpdateProgress(context.Background(), f.pandit, id, booking.ProgressRequest{Status: st})
	require.NoError(t, err)
	return b
}

func assertCode(t *testing.T, err error, want *domain.Error) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, want, "got %v", err)
}

func TestCreate_PricesAndNumbersBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.create(t, f.request(10))
	b := res.Booking

	assert.Equal(t, "PJ-2026-00001", b.BookingNumber)
	assert.Equal(t, domain.StatusCreated, b.Status)
	assert.Equal(t, domain.PaymentPending, b.PaymentStatus)
	assert.Equal(t, domain.TravelNotRequired, b.TravelStatus)
	assert.Equal(t, int64(750), b.PlatformFee)
	assert.Equal(t, int64(135), b.PlatformFeeGST)
	assert.Equal(t, int64(5885), b.GrandTotal)
	assert.Equal(t, int64(4250), b.PanditPayout)
	assert.Equal(t, time.Date(2026, 10, 11, 0, 0, 0, 0, time.UTC), b.EventDay)

	require.NotNil(t, res.PaymentOrder)
	assert.True(t, strings.HasPrefix(res.PaymentOrder.OrderID, "order_"))
	assert.Equal(t, int64(5885), res.PaymentOrder.Amount)
	assert.Equal(t, "INR", res.PaymentOrder.Currency)
	assert.Equal(t, "key_test", res.PaymentOrder.KeyID)

	stored, err := f.svc.Get(ctx, f.customer, b.ID)
	require.NoError(t, err)
	assert.Equal(t, res.PaymentOrder.OrderID, stored.PaymentOrderID)

	history, err := f.svc.History(ctx, f.customer, b.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.StatusCreated, history[0].ToStatus)
	assert.Equal(t, domain.Status(""), history[0].FromStatus)

	assert.Equal(t, []domain.EventType{domain.EventBookingCreated}, f.events.types())

	second := f.create(t, booking.CreateRequest{
		EventDate:      eventIn(12),
		EventType:      "Havan",
		VenueCity:      "Pune",
		DakshinaAmount: 2100,
	})
	assert.Equal(t, "PJ-2026-00002", second.Booking.BookingNumber)
	assert.Nil(t, second.Booking.PanditID)
}

func TestCreate_WithTravel(t *testing.T) {
	f := newFixture(t)

	req := f.request(10)
	req.VenueCity = "Delhi"
	req.TravelMode = domain.TravelSelfDrive
	req.Food = domain.FoodCustomer

	b := f.create(t, req).Booking
	assert.Equal(t, int64(19200), b.TravelCost)
	assert.Equal(t, int64(4000), b.FoodAllowanceAmount)
	assert.Equal(t, int64(960), b.TravelServiceFee)
	assert.Equal(t, b.Sum(), b.GrandTotal)
	assert.Equal(t, domain.TravelNotRequired, b.TravelStatus)

	train := f.request(20)
	train.VenueCity = "Delhi"
	train.TravelMode = domain.TravelTrain
	b = f.create(t, train).Booking
	assert.Equal(t, domain.TravelPending, b.TravelStatus)
	assert.Positive(t, b.TravelCost)
}

func TestCreate_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inactive := uuid.New()
	f.store.AddPandit(domain.Pandit{ID: inactive, HomeCity: "Varanasi", Active: true})
	local := uuid.New()
	f.store.AddPandit(domain.Pandit{ID: local, HomeCity: "Varanasi", MaxTravelKm: 300, Active: true, Verified: true})
	unknown := uuid.New()

	tests := []struct {
		name  string
		actor domain.Actor
		edit  func(r *booking.CreateRequest)
		want  *domain.Error
	}{
		{"pandit cannot create", f.pandit, func(*booking.CreateRequest) {}, domain.ErrForbidden},
		{"past date", f.customer, func(r *booking.CreateRequest) { r.EventDate = eventIn(-1) }, domain.ErrValidation},
		{"zero dakshina", f.customer, func(r *booking.CreateRequest) { r.DakshinaAmount = 0 }, domain.ErrValidation},
		{"missing venue", f.customer, func(r *booking.CreateRequest) { r.VenueCity = " " }, domain.ErrValidation},
		{"travel without pandit", f.customer, func(r *booking.CreateRequest) {
			r.PanditID = nil
			r.TravelMode = domain.TravelTrain
		}, domain.ErrValidation},
		{"unverified pandit", f.customer, func(r *booking.CreateRequest) { r.PanditID = &inactive }, domain.ErrPanditUnavailable},
		{"outside radius", f.customer, func(r *booking.CreateRequest) {
			r.PanditID = &local
			r.VenueCity = "Delhi"
		}, domain.ErrPanditUnavailable},
		{"unknown pandit", f.customer, func(r *booking.CreateRequest) { r.PanditID = &unknown }, domain.ErrPanditNotFound},
		{"infeasible mode", f.customer, func(r *booking.CreateRequest) {
			r.VenueCity = "Delhi"
			r.TravelMode = domain.TravelCab
		}, domain.ErrTravelModeInfeasible},
		{"no distance data", f.customer, func(r *booking.CreateRequest) {
			r.VenueCity = "Pune"
			r.TravelMode = domain.TravelTrain
		}, domain.ErrDistanceNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.request(10)
			tt.edit(&req)
			_, err := f.svc.Create(ctx, tt.actor, req)
			assertCode(t, err, tt.want)
		})
	}
}

func TestCreate_RateLimited(t *testing.T) {
	f := newFixture(t, func(o *fixtureOpts) { o.limiter = denyLimiter{} })

	_, err := f.svc.Create(context.Background(), f.customer, f.request(10))
	assertCode(t, err, domain.ErrRateLimited)
}

func TestCreate_PanditDayIsExclusive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.create(t, f.request(10))

	later := f.request(10)
	later.EventDate = later.EventDate.Add(6 * time.Hour)
	_, err := f.svc.Create(ctx, f.customer, later)
	assertCode(t, err, domain.ErrDateUnavailable)

	f.create(t, f.request(11))

	_, err = f.svc.Cancel(ctx, f.customer, first.Booking.ID, "plans changed")
	require.NoError(t, err)
	f.create(t, later)
}

func TestCreate_ParallelRequestsBookPanditOnce(t *testing.T) {
	f := newFixture(t)
	const n = 16

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		conflict int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			customer := domain.Actor{ID: uuid.New(), Role: domain.RoleCustomer}
			_, err := f.svc.Create(context.Background(), customer, f.request(10))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrDateUnavailable):
				conflict++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflict)
}

func TestLifecycle_ToCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.create(t, f.request(10))
	paid := f.pay(t, res)
	assert.Equal(t, domain.PaymentPaid, paid.PaymentStatus)
	assert.Equal(t, domain.StatusPanditRequested, paid.Status)
	assert.Equal(t, "pay_123", paid.PaymentID)

	b, err := f.svc.Accept(ctx, f.pandit, res.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, b.Status)

	lat, lng := 25.3176, 82.9739
	b, err = f.svc.UpdateProgress(ctx, f.pandit, b.ID, booking.ProgressRequest{
		Status: domain.StatusPanditEnRoute,
		Lat:    &lat,
		Lng:    &lng,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPanditEnRoute, b.Status)

	f.progress(t, b.ID, domain.StatusPanditArrived)
	f.progress(t, b.ID, domain.StatusPujaInProgress)
	b = f.progress(t, b.ID, domain.StatusCompleted)
	assert.Equal(t, domain.StatusCompleted, b.Status)

	history, err := f.svc.History(ctx, f.admin, b.ID)
	require.NoError(t, err)
	want := []domain.Status{
		domain.StatusCreated,
		domain.StatusPanditRequested,
		domain.StatusConfirmed,
		domain.StatusPanditEnRoute,
		domain.StatusPanditArrived,
		domain.StatusPujaInProgress,
		domain.StatusCompleted,
	}
	require.Len(t, history, len(want))
	for i, u := range history {
		assert.Equal(t, want[i], u.ToStatus)
		if i > 0 {
			assert.Equal(t, want[i-1], u.FromStatus)
		}
	}
	require.NotNil(t, history[3].Latitude)
	assert.Equal(t, lat, *history[3].Latitude)

	assert.Contains(t, f.events.types(), domain.EventBookingCompleted)
	assert.Contains(t, f.events.types(), domain.EventPaymentReceived)
}

func TestUpdateProgress_RejectsSkipsAndStrangers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := f.create(t, f.request(10)).Booking
	_, err := f.svc.UpdateProgress(ctx, f.pandit, created.ID, booking.ProgressRequest{Status: domain.StatusPanditArrived})
	assertCode(t, err, domain.ErrInvalidTransition)

	b := f.confirmed(t, f.request(11))

	tests := []struct {
		name  string
		actor domain.Actor
		req   booking.ProgressRequest
		want  *domain.Error
	}{
		{"skip to arrived", f.pandit, booking.ProgressRequest{Status: domain.StatusPanditArrived}, domain.ErrInvalidTransition},
		{"skip to completed", f.pandit, booking.ProgressRequest{Status: domain.StatusCompleted}, domain.ErrInvalidTransition},
		{"not a progress status", f.pandit, booking.ProgressRequest{Status: domain.StatusCancelled}, domain.ErrValidation},
		{"other pandit", domain.Actor{ID: uuid.New(), Role: domain.RolePandit},
			booking.ProgressRequest{Status: domain.StatusPanditEnRoute}, domain.ErrForbidden},
		{"customer", f.customer, booking.ProgressRequest{Status: domain.StatusPanditEnRoute}, domain.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.UpdateProgress(ctx, tt.actor, b.ID, tt.req)
			assertCode(t, err, tt.want)
		})
	}

	got, err := f.svc.Get(ctx, f.admin, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got.Status)
}

func TestAccept_OnlyWhileAwaitingPandit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := f.confirmed(t, f.request(10))
	_, err := f.svc.Accept(ctx, f.pandit, b.ID)
	assertCode(t, err, domain.ErrInvalidTransition)

	_, err = f.svc.Reject(ctx, f.pandit, b.ID, "busy")
	assertCode(t, err, domain.ErrInvalidTransition)
}

func TestTravel_MustBeBookedBeforeSettingOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.request(10)
	req.VenueCity = "Delhi"
	req.TravelMode = domain.TravelTrain
	b := f.confirmed(t, req)
	require.Equal(t, domain.TravelPending, b.TravelStatus)

	_, err := f.svc.UpdateProgress(ctx, f.pandit, b.ID, booking.ProgressRequest{Status: domain.StatusPanditEnRoute})
	assertCode(t, err, domain.ErrInvalidTransition)

	_, err = f.svc.UpdateTravel(ctx, f.customer, b.ID, booking.TravelUpdate{Status: domain.TravelBooked})
	assertCode(t, err, domain.ErrForbidden)

	b, err = f.svc.UpdateTravel(ctx, f.admin, b.ID, booking.TravelUpdate{Status: domain.TravelAdminCalculating})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, b.Status)

	_, err = f.svc.UpdateTravel(ctx, f.admin, b.ID, booking.TravelUpdate{Status: domain.TravelPending})
	assertCode(t, err, domain.ErrInvalidTransition)

	b, err = f.svc.UpdateTravel(ctx, f.admin, b.ID, booking.TravelUpdate{
		Status:  domain.TravelBooked,
		Details: "12560 Shiv Ganga Exp, coach B2",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTravelBooked, b.Status)
	assert.Equal(t, "12560 Shiv Ganga Exp, coach B2", b.TravelDetails)

	b = f.progress(t, b.ID, domain.StatusPanditEnRoute)
	assert.Equal(t, domain.TravelInTransit, b.TravelStatus)
	b = f.progress(t, b.ID, domain.StatusPanditArrived)
	assert.Equal(t, domain.TravelArrived, b.TravelStatus)

	self := f.request(20)
	_, err = f.svc.UpdateTravel(ctx, f.admin, f.create(t, self).Booking.ID, booking.TravelUpdate{Status: domain.TravelBooked})
	assertCode(t, err, domain.ErrInvalidTransition)
}

func TestCreate_TakesNextNumberOnClash(t *testing.T) {
	tests := []struct {
		name  string
		taken []string
		want  string
	}{
		{name: "free", want: "PJ-2026-00001"},
		{name: "one taken", taken: []string{"PJ-2026-00001"}, want: "PJ-2026-00002"},
		{name: "two taken", taken: []string{"PJ-2026-00001", "PJ-2026-00002"}, want: "PJ-2026-00003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			for i, number := range tt.taken {
				require.NoError(t, f.store.Bookings().Create(ctx, &domain.Booking{
					ID:            uuid.New(),
					BookingNumber: number,
					CustomerID:    uuid.New(),
					EventDay:      eventIn(40 + i),
					Status:        domain.StatusCreated,
				}))
			}

			res := f.create(t, f.request(10))
			assert.Equal(t, tt.want, res.Booking.BookingNumber)
		})
	}
}

func TestCreate_GivesUpAfterRepeatedNumberClashes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, f.store.Bookings().Create(ctx, &domain.Booking{
			ID:            uuid.New(),
			BookingNumber: fmt.Sprintf("PJ-2026-%05d", i),
			CustomerID:    uuid.New(),
			EventDay:      eventIn(40 + i),
			Status:        domain.StatusCreated,
		}))
	}

	_, err := f.svc.Create(ctx, f.customer, f.request(10))
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrNumberTaken)
	assert.NotErrorIs(t, err, domain.ErrDateUnavailable)
}

func TestAccept_TravelBookedEarlyPassesThroughTravelBooked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.request(10)
	req.VenueCity = "Delhi"
	req.TravelMode = domain.TravelTrain
	res := f.create(t, req)
	f.pay(t, res)

	b, err := f.svc.UpdateTravel(ctx, f.admin, res.Booking.ID, booking.TravelUpdate{Status: domain.TravelBooked})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPanditRequested, b.Status)

	b, err = f.svc.Accept(ctx, f.pandit, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTravelBooked, b.Status)
	assert.Contains(t, f.events.types(), domain.EventTravelBooked)

	b = f.progress(t, b.ID, domain.StatusPanditEnRoute)
	assert.Equal(t, domain.TravelInTransit, b.TravelStatus)

	history, err := f.svc.History(ctx, f.customer, b.ID)
	require.NoError(t, err)
	var path []domain.Status
	for _, u := range history {
		path = append(path, u.ToStatus)
	}
	assert.Equal(t, []domain.Status{
		domain.StatusCreated,
		domain.StatusPanditRequested,
		domain.StatusConfirmed,
		domain.StatusTravelBooked,
		domain.StatusPanditEnRoute,
	}, path)
}

func TestCancel_RejectedOnceUnderway(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := f.confirmed(t, f.request(10))
	f.progress(t, b.ID, domain.StatusPanditEnRoute)
	f.progress(t, b.ID, domain.StatusPanditArrived)

	for _, actor := range []domain.Actor{f.customer, f.admin} {
		_, err := f.svc.Cancel(ctx, actor, b.ID, "too late")
		assertCode(t, err, domain.ErrCancellationNotAllowed)
	}

	_, err := f.svc.Cancel(ctx, f.pandit, b.ID, "")
	assertCode(t, err, domain.ErrForbidden)

	got, err := f.svc.Get(ctx, f.customer, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPanditArrived, got.Status)
}

func TestCancel_UnpaidIsImmediate(t *testing.T) {
	f := newFixture(t)

	b := f.create(t, f.request(10)).Booking
	res, err := f.svc.Cancel(context.Background(), f.customer, b.ID, "plans changed")
	require.NoError(t, err)

	assert.False(t, res.Estimate)
	assert.Zero(t, res.RefundAmount)
	assert.Equal(t, domain.StatusCancelled, res.Booking.Status)
	assert.Equal(t, domain.RoleCustomer, res.Booking.CancelledBy)
	assert.NotNil(t, res.Booking.CancelledAt)

	_, err = f.svc.Cancel(context.Background(), f.customer, b.ID, "again")
	assertCode(t, err, domain.ErrInvalidTransition)
}

func TestCancel_RefundUsesProcessingTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := f.confirmed(t, f.request(10))

	res, err := f.svc.Cancel(ctx, f.customer, b.ID, "family emergency")
	require.NoError(t, err)
	assert.True(t, res.Estimate)
	assert.Equal(t, int64(5297), res.RefundAmount)
	assert.Equal(t, domain.StatusCancellationRequested, res.Booking.Status)
	assert.Equal(t, domain.StatusConfirmed, res.Booking.PriorStatus)

	_, err = f.svc.Cancel(ctx, f.customer, b.ID, "again")
	assertCode(t, err, domain.ErrInvalidTransition)

	// The pandit day stays blocked while the request is open.
	other := domain.Actor{ID: uuid.New(), Role: domain.RoleCustomer}
	_, err = f.svc.Create(ctx, other, f.request(10))
	assertCode(t, err, domain.ErrDateUnavailable)

	f.clock.Set(eventIn(5))

	dec, err := f.svc.ProcessCancellation(ctx, f.admin, b.ID, booking.Decision{Action: booking.ActionApprove})
	require.NoError(t, err)
	assert.Equal(t, int64(2943), dec.RefundAmount)
	assert.Equal(t, pricing.RefundAmount(5885, 5), dec.RefundAmount)
	assert.True(t, strings.HasPrefix(dec.RefundReference, "rfnd_"))

	got, err := f.svc.Get(ctx, f.customer, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRefunded, got.Status)
	assert.Equal(t, domain.RefundProcessing, got.RefundStatus)
	assert.Equal(t, dec.RefundReference, got.RefundReference)
	assert.Equal(t, int64(2943), got.RefundAmount)
	assert.Empty(t, got.PriorStatus)

	assert.Contains(t, f.events.types(), domain.EventRefundInitiated)

	_, err = f.svc.ProcessCancellation(ctx, f.admin, b.ID, booking.Decision{Action: booking.ActionApprove})
	assertCode(t, err, domain.ErrInvalidTransition)
}

func TestProcessCancellation_Decisions(t *testing.T) {
	ctx := context.Background()

	t.Run("reject restores prior status", func(t *testing.T) {
		f := newFixture(t)
		b := f.confirmed(t, f.request(10))
		_, err := f.svc.Cancel(ctx, f.customer, b.ID, "maybe")
		require.NoError(t, err)

		dec, err := f.svc.ProcessCancellation(ctx, f.admin, b.ID, booking.Decision{Action: booking.ActionReject, Note: "too close"})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusConfirmed, dec.Booking.Status)
		assert.Nil(t, dec.Booking.CancellationRequestedAt)
		assert.Empty(t, dec.RefundReference)

		history, err := f.svc.History(ctx, f.admin, b.ID)
		require.NoError(t, err)
		last := history[len(history)-1]
		assert.Equal(t, domain.StatusCancellationRequested, last.FromStatus)
		assert.Equal(t, domain.StatusConfirmed, last.ToStatus)
		assert.Equal(t, "too close", last.Note)
	})

	t.Run("partial within bounds", func(t *testing.T) {
		f := newFixture(t)
		b := f.confirmed(t, f.request(10))
		_, err := f.svc.Cancel(ctx, f.customer, b.ID, "")
		require.NoError(t, err)

		tooMuch := 6000.0
		_, err = f.svc.ProcessCancellation(ctx, f.admin, b.ID, booking.Decision{Action: booking.ActionPartial, RefundAmount: &tooMuch})
		assertCode(t, err, domain.ErrValidation)

		_, err = f.svc.ProcessCancellation(ctx, f.admin, b.ID, booking.Decision{Action: booking.ActionPartial})
		assertCode(t, err, domain.ErrValidation)

		amount := 1000.0
		dec, err := f.svc.ProcessCancellation(ctx, f.admin, b.ID, booking.Decision{Action: booking.ActionPartial, RefundAmount: &amount})
		require.NoError(t, err)
		assert.Equal(t, int64(1000), dec.RefundAmount)
		assert.Equal(t, domain.StatusRefunded, dec.Booking.Status)
	})

	t.Run("zero refund cancels", func(t *testing.T) {
		f := newFixture(t)
		b := f.confirmed(t, f.request(3))
		_, err := f.svc.Cancel(ctx, f.customer, b.ID, "")
		require.NoError(t, err)

		f.clock.Set(eventIn(3).Add(time.Hour))
		dec, err := f.svc.ProcessCancellation(ctx, f.admin, b.ID, booking.Decision{Action: booking.ActionApprove})
		require.NoError(t, err)
		assert.Zero(t, dec.RefundAmount)
		assert.Equal(t, domain.StatusCancelled, dec.Booking.Status)
		assert.Empty(t, dec.Booking.RefundStatus)
	})

	t.Run("admin only", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.ProcessCancellation(ctx, f.customer, uuid.New(), booking.Decision{Action: booking.ActionApprove})
		assertCode(t, err, domain.ErrForbidden)
	})
}

func TestAdminCancel_GatewayFailureKeepsBookingCancelled(t *testing.T) {
	f := newFixture(t, withBrokenRefunds)
	ctx := context.Background()

	b := f.confirmed(t, f.request(10))
	res, err := f.svc.Cancel(ctx, f.admin, b.ID, "pandit unwell")
	require.NoError(t, err)
	assert.False(t, res.Estimate)
	assert.Equal(t, int64(5297), res.RefundAmount)
	assert.Empty(t, res.RefundReference)

	got, err := f.svc.Get(ctx, f.admin, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRefunded, got.Status)
	assert.Equal(t, domain.RefundFailed, got.RefundStatus)
	assert.Equal(t, domain.RoleAdmin, got.CancelledBy)
}

func TestReject_RefundsPaidBookingInFull(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.create(t, f.request(10))
	f.pay(t, res)

	b, err := f.svc.Reject(ctx, f.pandit, res.Booking.ID, "travelling that week")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, b.Status)
	assert.Equal(t, domain.RolePandit, b.CancelledBy)
	assert.Equal(t, b.GrandTotal, b.RefundAmount)
	assert.Equal(t, domain.RefundProcessing, b.RefundStatus)
	assert.NotEmpty(t, b.RefundReference)

	// The day is free again.
	f.create(t, f.request(10))
}

func TestVerifyPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.create(t, f.request(10))
	order := res.PaymentOrder.OrderID
	id := res.Booking.ID

	_, err := f.svc.VerifyPayment(ctx, f.customer, id, booking.PaymentProof{OrderID: order, PaymentID: "pay_1", Signature: "deadbeef"})
	assertCode(t, err, domain.ErrInvalidSignature)

	got, err := f.svc.Get(ctx, f.customer, id)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentFailed, got.PaymentStatus)
	assert.Equal(t, domain.StatusCreated, got.Status)

	_, err = f.svc.VerifyPayment(ctx, f.customer, id, booking.PaymentProof{
		OrderID: "order_other", PaymentID: "pay_1", Signature: f.gw.Sign("order_other", "pay_1"),
	})
	assertCode(t, err, domain.ErrValidation)

	stranger := domain.Actor{ID: uuid.New(), Role: domain.RoleCustomer}
	_, err = f.svc.VerifyPayment(ctx, stranger, id, booking.PaymentProof{
		OrderID: order, PaymentID: "pay_1", Signature: f.gw.Sign(order, "pay_1"),
	})
	assertCode(t, err, domain.ErrForbidden)

	b := f.pay(t, res)
	assert.Equal(t, domain.PaymentPaid, b.PaymentStatus)

	_, err = f.svc.VerifyPayment(ctx, f.customer, id, booking.PaymentProof{
		OrderID: order, PaymentID: "pay_123", Signature: f.gw.Sign(order, "pay_123"),
	})
	assertCode(t, err, domain.ErrPaymentVerified)
}

func TestGet_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := f.create(t, f.request(10)).Booking

	for _, actor := range []domain.Actor{f.customer, f.pandit, f.admin} {
		_, err := f.svc.Get(ctx, actor, b.ID)
		assert.NoError(t, err, actor.Role)
	}

	_, err := f.svc.Get(ctx, domain.Actor{ID: uuid.New(), Role: domain.RoleCustomer}, b.ID)
	assertCode(t, err, domain.ErrForbidden)

	_, err = f.svc.Get(ctx, f.admin, uuid.New())
	assertCode(t, err, domain.ErrBookingNotFound)

	pdf, name, err := f.svc.Invoice(ctx, f.customer, b.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	assert.Equal(t, "invoice-"+b.BookingNumber+".pdf", name)
}

func TestAssignPandit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.request(10)
	req.PanditID = nil
	open := f.create(t, req).Booking

	taken := f.create(t, f.request(10)).Booking
	require.NotNil(t, taken.PanditID)

	_, err := f.svc.AssignPandit(ctx, f.admin, open.ID, f.pandit.ID)
	assertCode(t, err, domain.ErrDateUnavailable)

	_, err = f.svc.Cancel(ctx, f.customer, taken.ID, "")
	require.NoError(t, err)

	_, err = f.svc.AssignPandit(ctx, f.customer, open.ID, f.pandit.ID)
	assertCode(t, err, domain.ErrForbidden)

	b, err := f.svc.AssignPandit(ctx, f.admin, open.ID, f.pandit.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPanditRequested, b.Status)
	assert.True(t, b.HasPandit(f.pandit.ID))

	_, err = f.svc.AssignPandit(ctx, f.admin, open.ID, f.pandit.ID)
	assertCode(t, err, domain.ErrInvalidTransition)

	b, err = f.svc.Accept(ctx, f.pandit, open.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, b.Status)
}

func TestCalculateFees(t *testing.T) {
	f := newFixture(t)

	c, err := f.svc.CalculateFees(pricing.Input{DakshinaAmount: 5000})
	require.NoError(t, err)
	assert.Equal(t, int64(5885), c.GrandTotal)

	_, err = f.svc.CalculateFees(pricing.Input{DakshinaAmount: -1})
	assertCode(t, err, domain.ErrValidation)
}
