package travel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/dakshina/internal/domain"
	"github.com/kirinyoku/dakshina/internal/repository"
	redisrepo "github.com/kirinyoku/dakshina/internal/repository/redis"
	travelcost "github.com/kirinyoku/dakshina/internal/travel"
)

type Config struct {
	Rates       travelcost.Rates
	DistanceTTL time.Duration
}

type Service struct {
	repos repository.Repos
	cache *redisrepo.Cache
	cfg   Config
}

func New(repos repository.Repos, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.DistanceTTL <= 0 {
		cfg.DistanceTTL = 24 * time.Hour
	}

	if cfg.Rates.PerDiem == 0 && len(cfg.Rates.TrainBands) == 0 {
		cfg.Rates = travelcost.DefaultRates()
	}

	return &Service{
		repos: repos,
		cache: cache,
		cfg:   cfg,
	}
}

func (s *Service) Rates() travelcost.Rates { return s.cfg.Rates }

// Distance looks up the one-way distance between two cities. The same city
// is zero kilometres away.
//
// Returns:
//   - error: domain.ErrDistanceNotFound if the pair is not in the reference table.
func (s *Service) Distance(ctx context.Context, from, to string) (domain.CityDistance, error) {
	const op = "service.travel.Distance"

	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" || to == "" {
		return domain.CityDistance{}, domain.Validation("city", "both cities are required")
	}

	if strings.EqualFold(from, to) {
		return domain.CityDistance{FromCity: from, ToCity: to}, nil
	}

	d, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisrepo.KeyDistance(from, to),
		s.cfg.DistanceTTL,
		func(ctx context.Context) (domain.CityDistance, error) {
			return s.repos.Distances().Lookup(ctx, from, to)
		},
	)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.CityDistance{}, fmt.Errorf("%s:%w", op,
				domain.Conflict(domain.ErrDistanceNotFound, fmt.Sprintf("no distance data between %s and %s", from, to)))
		}
		return domain.CityDistance{}, fmt.Errorf("%s:%w", op, err)
	}

	return d, nil
}

type QuoteRequest struct {
	FromCity  string
	ToCity    string
	PanditID  *uuid.UUID
	Mode      domain.TravelMode
	EventDays int
	Food      domain.FoodArrangement
}

type Quote struct {
	Distance    domain.CityDistance `json:"distance"`
	MaxTravelKm float64             `json:"max_travel_km,omitempty"`
	Options     []travelcost.Option `json:"options"`
}

// Quote costs a round trip. With a pandit the trip starts from the pandit's
// home city and is bounded by the pandit's travel radius; beyond it the
// quote has no options.
//
// Returns:
//   - error: domain.ErrPanditNotFound if the pandit does not exist.
//   - error: domain.ErrDistanceNotFound if the cities have no distance data.
//   - error: domain.ErrTravelModeInfeasible if the requested mode cannot cover the distance.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	const op = "service.travel.Quote"

	var maxKm float64
	if req.PanditID != nil {
		p, err := s.repos.Pandits().Get(ctx, *req.PanditID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%s:%w", op, domain.ErrPanditNotFound)
			}
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		if req.FromCity == "" {
			req.FromCity = p.HomeCity
		}
		maxKm = p.MaxTravelKm
	}

	if req.EventDays == 0 {
		req.EventDays = 1
	}
	if req.Food == "" {
		req.Food = domain.FoodNone
	}

	d, err := s.Distance(ctx, req.FromCity, req.ToCity)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	opts, err := travelcost.Calculate(travelcost.Request{
		DistanceKm:  d.DistanceKm,
		Mode:        req.Mode,
		EventDays:   req.EventDays,
		Food:        req.Food,
		MaxTravelKm: maxKm,
	}, s.cfg.Rates)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &Quote{Distance: d, MaxTravelKm: maxKm, Options: opts}, nil
}
