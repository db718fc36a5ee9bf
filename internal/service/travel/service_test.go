package travel_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/kirinyoku/dakshina/internal/domain"
	"github.com/kirinyoku/dakshina/internal/repository/memory"
	travelsvc "github.com/kirinyoku/dakshina/internal/service/travel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup() (*memory.Store, *travelsvc.Service) {
	store := memory.New()
	store.AddDistance(domain.CityDistance{FromCity: "Delhi", ToCity: "Varanasi", DistanceKm: 800, DriveHours: 13})
	return store, travelsvc.New(store, nil, travelsvc.Config{})
}

func TestDistance(t *testing.T) {
	_, svc := setup()
	ctx := context.Background()

	d, err := svc.Distance(ctx, "varanasi", "Delhi")
	require.NoError(t, err)
	assert.Equal(t, 800.0, d.DistanceKm)

	d, err = svc.Distance(ctx, " Pune ", "pune")
	require.NoError(t, err)
	assert.Zero(t, d.DistanceKm)

	_, err = svc.Distance(ctx, "Delhi", "Pune")
	assert.ErrorIs(t, err, domain.ErrDistanceNotFound)

	_, err = svc.Distance(ctx, "", "Pune")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestQuote_RanksFeasibleModes(t *testing.T) {
	_, svc := setup()

	q, err := svc.Quote(context.Background(), travelsvc.QuoteRequest{
		FromCity:  "Delhi",
		ToCity:    "Varanasi",
		EventDays: 1,
		Food:      domain.FoodCustomer,
	})
	require.NoError(t, err)
	require.NotEmpty(t, q.Options)

	for i, o := range q.Options {
		assert.NotEqual(t, domain.TravelCab, o.Mode)
		if i > 0 {
			assert.LessOrEqual(t, q.Options[i-1].GrandTravelTotal, o.GrandTravelTotal)
		}
	}
}

func TestQuote_UsesPanditHomeAndRadius(t *testing.T) {
	store, svc := setup()
	ctx := context.Background()

	near := uuid.New()
	store.AddPandit(domain.Pandit{ID: near, HomeCity: "Varanasi", MaxTravelKm: 500, Active: true, Verified: true})
	far := uuid.New()
	store.AddPandit(domain.Pandit{ID: far, HomeCity: "Varanasi", MaxTravelKm: 1200, Active: true, Verified: true})

	q, err := svc.Quote(ctx, travelsvc.QuoteRequest{ToCity: "Delhi", PanditID: &near})
	require.NoError(t, err)
	assert.Empty(t, q.Options)
	assert.Equal(t, 500.0, q.MaxTravelKm)

	q, err = svc.Quote(ctx, travelsvc.QuoteRequest{ToCity: "Delhi", PanditID: &far, Mode: domain.TravelSelfDrive})
	require.NoError(t, err)
	require.Len(t, q.Options, 1)
	assert.Equal(t, int64(19200), q.Options[0].BaseFare)
	assert.Equal(t, "Varanasi", q.Distance.ToCity)

	missing := uuid.New()
	_, err = svc.Quote(ctx, travelsvc.QuoteRequest{ToCity: "Delhi", PanditID: &missing})
	assert.ErrorIs(t, err, domain.ErrPanditNotFound)

	_, err = svc.Quote(ctx, travelsvc.QuoteRequest{ToCity: "Delhi", PanditID: &far, Mode: domain.TravelCab})
	assert.ErrorIs(t, err, domain.ErrTravelModeInfeasible)
}
