package service

import (
	"log/slog"

	"github.com/kirinyoku/dakshina/internal/events"
	"github.com/kirinyoku/dakshina/internal/payment"
	"github.com/kirinyoku/dakshina/internal/repository"
	redis "github.com/kirinyoku/dakshina/internal/repository/redis"
	"github.com/kirinyoku/dakshina/internal/service/admin"
	"github.com/kirinyoku/dakshina/internal/service/booking"
	"github.com/kirinyoku/dakshina/internal/service/travel"
	"github.com/kirinyoku/dakshina/internal/uow"
)

type Services struct {
	Booking *booking.Service
	Travel  *travel.Service
	Admin   *admin.Service
}

type Config struct {
	Booking booking.Config
	Travel  travel.Config
}

func NewServices(
	repos repository.Repos,
	tx uow.Transactor,
	gateway payment.Gateway,
	publisher events.Publisher,
	cache *redis.Cache,
	limiter booking.Limiter,
	log *slog.Logger,
	cfg Config,
) *Services {
	travelSvc := travel.New(repos, cache, cfg.Travel)

	return &Services{
		Booking: booking.New(repos, tx, gateway, publisher, travelSvc, cache, limiter, log, cfg.Booking),
		Travel:  travelSvc,
		Admin:   admin.New(repos, tx, publisher, cache),
	}
}
