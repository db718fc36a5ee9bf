package postgres

import (
	"context"

	"github.com/kirinyoku/dakshina/internal/domain"
)

type DistanceRepo struct {
	pool Pool
	db   DB
}

func (r *DistanceRepo) With(db DB) *DistanceRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *DistanceRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Lookup returns the distance between two cities. Rows are stored once per
// pair, so both directions are searched.
//
// Returns:
//   - error: repository.ErrNotFound if the pair is not in the table.
func (r *DistanceRepo) Lookup(ctx context.Context, from, to string) (domain.CityDistance, error) {
	const op = "postgres.DistanceRepo.Lookup"

	const q = `
		SELECT from_city, to_city, distance_km, drive_hours
		FROM city_distances
		WHERE (lower(from_city) = lower($1) AND lower(to_city) = lower($2))
		   OR (lower(from_city) = lower($2) AND lower(to_city) = lower($1))
		LIMIT 1`

	var d domain.CityDistance
	if err := r.handle().QueryRow(ctx, q, from, to).Scan(
		&d.FromCity, &d.ToCity, &d.DistanceKm, &d.DriveHours,
	); err != nil {
		return domain.CityDistance{}, wrapDBErr(op, err)
	}

	return d, nil
}
