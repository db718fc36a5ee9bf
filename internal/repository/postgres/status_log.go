package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/kirinyoku/dakshina/internal/domain"
)

type StatusLogRepo struct {
	pool Pool
	db   DB
}

func (r *StatusLogRepo) With(db DB) *StatusLogRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *StatusLogRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func (r *StatusLogRepo) Append(ctx context.Context, u *domain.StatusUpdate) error {
	const op = "postgres.StatusLogRepo.Append"

	const q = `
		INSERT INTO booking_status_updates (
			id, booking_id, from_status, to_status, updated_by, updated_by_role,
			note, latitude, longitude, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.handle().Exec(ctx, q,
		u.ID, u.BookingID, u.FromStatus, u.ToStatus, u.UpdatedBy, u.UpdatedByRole,
		u.Note, u.Latitude, u.Longitude, u.CreatedAt,
	)
	return wrapDBErr(op, err)
}

func (r *StatusLogRepo) List(ctx context.Context, bookingID uuid.UUID) ([]domain.StatusUpdate, error) {
	const op = "postgres.StatusLogRepo.List"

	const q = `
		SELECT id, booking_id, from_status, to_status, updated_by, updated_by_role,
		       note, latitude, longitude, created_at
		FROM booking_status_updates
		WHERE booking_id = $1
		ORDER BY seq`

	rows, err := r.handle().Query(ctx, q, bookingID)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var out []domain.StatusUpdate
	for rows.Next() {
		var u domain.StatusUpdate
		if err := rows.Scan(
			&u.ID, &u.BookingID, &u.FromStatus, &u.ToStatus, &u.UpdatedBy, &u.UpdatedByRole,
			&u.Note, &u.Latitude, &u.Longitude, &u.CreatedAt,
		); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, u)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}
