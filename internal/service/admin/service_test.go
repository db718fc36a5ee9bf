package admin_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/dakshina/internal/domain"
	"github.com/kirinyoku/dakshina/internal/repository"
	"github.com/kirinyoku/dakshina/internal/repository/memory"
	"github.com/kirinyoku/dakshina/internal/service/admin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu  sync.Mutex
	evs []domain.Event
}

func (r *recorder) Publish(_ context.Context, evs ...domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evs = append(r.evs, evs...)
}

var fixedNow = time.Date(2026, 11, 3, 10, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*memory.Store, *admin.Service, *recorder) {
	t.Helper()
	store := memory.New()
	rec := &recorder{}
	svc := admin.New(store, store, rec, nil).WithClock(func() time.Time { return fixedNow })
	return store, svc, rec
}

var seq int

func seed(t *testing.T, store *memory.Store, edit func(b *domain.Booking)) *domain.Booking {
	t.Helper()
	seq++
	pandit := uuid.New()
	b := &domain.Booking{
		ID:            uuid.New(),
		BookingNumber: "PJ-2026-" + uuid.NewString()[:5],
		CustomerID:    uuid.New(),
		PanditID:      &pandit,
		EventDate:     time.Date(2026, 11, seq%28+1, 4, 30, 0, 0, time.UTC),
		EventDay:      time.Date(2026, 11, seq%28+1, 0, 0, 0, 0, time.UTC),
		EventDays:     1,
		Status:        domain.StatusCompleted,
		PaymentStatus: domain.PaymentPaid,
		TravelStatus:  domain.TravelNotRequired,
		PayoutStatus:  domain.PayoutPending,
		Charges: domain.Charges{
			DakshinaAmount: 5000,
			PlatformFee:    750,
			PlatformFeeGST: 135,
			GrandTotal:     5885,
			PanditPayout:   4250,
		},
	}
	if edit != nil {
		edit(b)
	}
	require.NoError(t, store.Bookings().Create(context.Background(), b))
	return b
}

func TestMarkPayout_OnceOnly(t *testing.T) {
	store, svc, rec := setup(t)
	ctx := context.Background()
	b := seed(t, store, nil)

	got, err := svc.MarkPayout(ctx, b.ID, " UTR-1 ")
	require.NoError(t, err)
	assert.Equal(t, domain.PayoutCompleted, got.PayoutStatus)
	assert.Equal(t, "UTR-1", got.PayoutReference)
	require.NotNil(t, got.PaidOutAt)
	assert.Equal(t, fixedNow, *got.PaidOutAt)

	_, err = svc.MarkPayout(ctx, b.ID, "UTR-2")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAlreadyPaid)
	assert.Contains(t, err.Error(), "UTR-1")

	stored, err := store.Bookings().Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "UTR-1", stored.PayoutReference)

	require.Len(t, rec.evs, 1)
	assert.Equal(t, domain.EventPayoutCompleted, rec.evs[0].Type)
	assert.Equal(t, int64(4250), rec.evs[0].Amount)
}

func TestMarkPayout_ConcurrentCallsPayOnce(t *testing.T) {
	store, svc, _ := setup(t)
	b := seed(t, store, nil)

	const n = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.MarkPayout(context.Background(), b.ID, "UTR-"+uuid.NewString())
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else if !errors.Is(err, domain.ErrAlreadyPaid) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestMarkPayout_Rejections(t *testing.T) {
	store, svc, _ := setup(t)
	ctx := context.Background()

	confirmed := seed(t, store, func(b *domain.Booking) { b.Status = domain.StatusConfirmed })
	unpaid := seed(t, store, func(b *domain.Booking) { b.PaymentStatus = domain.PaymentPending })
	ok := seed(t, store, nil)

	tests := []struct {
		name string
		id   uuid.UUID
		ref  string
		want *domain.Error
	}{
		{"not completed", confirmed.ID, "UTR-1", domain.ErrNotPayoutEligible},
		{"not paid", unpaid.ID, "UTR-1", domain.ErrNotPayoutEligible},
		{"missing reference", ok.ID, "  ", domain.ErrValidation},
		{"unknown booking", uuid.New(), "UTR-1", domain.ErrBookingNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.MarkPayout(ctx, tt.id, tt.ref)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSettleRefund(t *testing.T) {
	store, svc, _ := setup(t)
	ctx := context.Background()

	refunded := func(b *domain.Booking) {
		b.Status = domain.StatusRefunded
		b.RefundAmount = 2943
		b.RefundStatus = domain.RefundProcessing
		b.RefundReference = "rfnd_1"
	}

	b := seed(t, store, refunded)

	got, err := svc.SettleRefund(ctx, b.ID, domain.RefundFailed, "")
	require.NoError(t, err)
	assert.Equal(t, domain.RefundFailed, got.RefundStatus)
	assert.Equal(t, "rfnd_1", got.RefundReference)

	got, err = svc.SettleRefund(ctx, b.ID, domain.RefundCompleted, "rfnd_2")
	require.NoError(t, err)
	assert.Equal(t, domain.RefundCompleted, got.RefundStatus)
	assert.Equal(t, domain.PaymentRefunded, got.PaymentStatus)

	stored, err := store.Bookings().Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "rfnd_2", stored.RefundReference)
	assert.Equal(t, domain.PaymentRefunded, stored.PaymentStatus)
	require.NotNil(t, stored.RefundedAt)
	assert.Equal(t, fixedNow.UTC(), *stored.RefundedAt)
	assert.Equal(t, fixedNow.UTC(), stored.UpdatedAt)

	_, err = svc.SettleRefund(ctx, b.ID, domain.RefundCompleted, "rfnd_3")
	assert.ErrorIs(t, err, domain.ErrRefundSettled)

	none := seed(t, store, nil)
	_, err = svc.SettleRefund(ctx, none.ID, domain.RefundCompleted, "")
	assert.ErrorIs(t, err, domain.ErrRefundSettled)

	_, err = svc.SettleRefund(ctx, b.ID, domain.RefundProcessing, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestQueues(t *testing.T) {
	store, svc, _ := setup(t)
	ctx := context.Background()

	payable := seed(t, store, nil)
	seed(t, store, func(b *domain.Booking) { b.PayoutStatus = domain.PayoutCompleted })
	requested := seed(t, store, func(b *domain.Booking) {
		at := fixedNow
		b.Status = domain.StatusCancellationRequested
		b.PriorStatus = domain.StatusConfirmed
		b.CancellationRequestedAt = &at
	})
	travel := seed(t, store, func(b *domain.Booking) {
		b.Status = domain.StatusConfirmed
		b.TravelMode = domain.TravelTrain
		b.TravelStatus = domain.TravelPending
	})

	payouts, err := svc.PendingPayouts(ctx, repository.Page{})
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	assert.Equal(t, payable.ID, payouts[0].ID)

	cancellations, err := svc.CancellationQueue(ctx, repository.Page{})
	require.NoError(t, err)
	require.Len(t, cancellations, 1)
	assert.Equal(t, requested.ID, cancellations[0].ID)

	trips, err := svc.TravelQueue(ctx, repository.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, travel.ID, trips[0].ID)
}
