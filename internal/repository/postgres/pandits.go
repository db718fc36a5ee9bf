package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/kirinyoku/dakshina/internal/domain"
)

type PanditRepo struct {
	pool Pool
	db   DB
}

func (r *PanditRepo) With(db DB) *PanditRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *PanditRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func (r *PanditRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Pandit, error) {
	const op = "postgres.PanditRepo.Get"

	const q = `
		SELECT id, name, home_city, max_travel_km, active, verified
		FROM pandits
		WHERE id = $1`

	var p domain.Pandit
	if err := r.handle().QueryRow(ctx, q, id).Scan(
		&p.ID, &p.Name, &p.HomeCity, &p.MaxTravelKm, &p.Active, &p.Verified,
	); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &p, nil
}
