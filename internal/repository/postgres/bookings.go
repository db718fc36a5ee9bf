package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kirinyoku/dakshina/internal/domain"
	"github.com/kirinyoku/dakshina/internal/repository"
)

type BookingRepo struct {
	pool Pool
	db   DB
}

func (r *BookingRepo) With(db DB) *BookingRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *BookingRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const bookingColumns = `
	id, booking_number, customer_id, pandit_id,
	event_date, event_day, event_days, event_type, muhurat, venue_city,
	status, prior_status, payment_status, travel_status, payout_status, refund_status,
	travel_mode, food_arrangement, travel_details,
	dakshina_amount, travel_cost, food_allowance_amount, accommodation_cost,
	platform_fee, travel_service_fee, platform_fee_gst, travel_service_fee_gst,
	grand_total, pandit_payout, refund_amount,
	payment_order_id, payment_id, payout_reference, paid_out_at, refund_reference, refunded_at,
	cancelled_by, cancellation_reason, cancellation_requested_at, cancelled_at,
	created_at, updated_at`

// liveStatuses is the SQL list of statuses that occupy a pandit's day. It
// must match the predicate of bookings_pandit_day_uq.
const liveStatuses = `('CREATED','PANDIT_REQUESTED','CONFIRMED','TRAVEL_BOOKED',
	'PANDIT_EN_ROUTE','PANDIT_ARRIVED','PUJA_IN_PROGRESS','CANCELLATION_REQUESTED')`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID, &b.BookingNumber, &b.CustomerID, &b.PanditID,
		&b.EventDate, &b.EventDay, &b.EventDays, &b.EventType, &b.Muhurat, &b.VenueCity,
		&b.Status, &b.PriorStatus, &b.PaymentStatus, &b.TravelStatus, &b.PayoutStatus, &b.RefundStatus,
		&b.TravelMode, &b.FoodArrangement, &b.TravelDetails,
		&b.DakshinaAmount, &b.TravelCost, &b.FoodAllowanceAmount, &b.AccommodationCost,
		&b.PlatformFee, &b.TravelServiceFee, &b.PlatformFeeGST, &b.TravelServiceFeeGST,
		&b.GrandTotal, &b.PanditPayout, &b.RefundAmount,
		&b.PaymentOrderID, &b.PaymentID, &b.PayoutReference, &b.PaidOutAt, &b.RefundReference, &b.RefundedAt,
		&b.CancelledBy, &b.CancellationReason, &b.CancellationRequestedAt, &b.CancelledAt,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a new booking.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - b: the booking to insert, with ID and BookingNumber already assigned.
//
// Returns:
//   - error: repository.ErrConflict if the pandit already holds a live booking
//     on the same day or the booking number is taken.
func (r *BookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	const op = "postgres.BookingRepo.Create"

	const q = `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28, $29, $30,
			$31, $32, $33, $34, $35, $36, $37, $38, $39, $40,
			$41, $42
		)`

	_, err := r.handle().Exec(ctx, q,
		b.ID, b.BookingNumber, b.CustomerID, b.PanditID,
		b.EventDate, b.EventDay, b.EventDays, b.EventType, b.Muhurat, b.VenueCity,
		b.Status, b.PriorStatus, b.PaymentStatus, b.TravelStatus, b.PayoutStatus, b.RefundStatus,
		b.TravelMode, b.FoodArrangement, b.TravelDetails,
		b.DakshinaAmount, b.TravelCost, b.FoodAllowanceAmount, b.AccommodationCost,
		b.PlatformFee, b.TravelServiceFee, b.PlatformFeeGST, b.TravelServiceFeeGST,
		b.GrandTotal, b.PanditPayout, b.RefundAmount,
		b.PaymentOrderID, b.PaymentID, b.PayoutReference, b.PaidOutAt, b.RefundReference, b.RefundedAt,
		b.CancelledBy, b.CancellationReason, b.CancellationRequestedAt, b.CancelledAt,
		b.CreatedAt, b.UpdatedAt,
	)
	return wrapDBErr(op, err)
}

func (r *BookingRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.Get"

	b, err := scanBooking(r.handle().QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	return b, nil
}

func (r *BookingRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.GetForUpdate"

	b, err := scanBooking(r.handle().QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	return b, nil
}

func (r *BookingRepo) NextNumber(ctx context.Context) (int64, error) {
	const op = "postgres.BookingRepo.NextNumber"

	var n int64
	if err := r.handle().QueryRow(ctx, `SELECT nextval('booking_number_seq')`).Scan(&n); err != nil {
		return 0, wrapDBErr(op, err)
	}
	return n, nil
}

func (r *BookingRepo) PanditDayTaken(
	ctx context.Context,
	panditID uuid.UUID,
	day time.Time,
	exclude uuid.UUID,
) (bool, error) {
	const op = "postgres.BookingRepo.PanditDayTaken"

	const q = `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE pandit_id = $1
			  AND event_day = $2
			  AND id <> $3
			  AND status IN ` + liveStatuses + `
		)`

	var taken bool
	if err := r.handle().QueryRow(ctx, q, panditID, day, exclude).Scan(&taken); err != nil {
		return false, wrapDBErr(op, err)
	}
	return taken, nil
}

// Update writes the mutable fields of b.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - b: the booking with its new state.
//   - expected: the status b had when it was read.
//
// Returns:
//   - error: repository.ErrStale if the stored status is no longer expected.
//   - error: repository.ErrConflict if the new state collides with another
//     live booking of the same pandit and day.
func (r *BookingRepo) Update(ctx context.Context, b *domain.Booking, expected domain.Status) error {
	const op = "postgres.BookingRepo.Update"

	const q = `
		UPDATE bookings SET
			pandit_id = $2,
			status = $3,
			prior_status = $4,
			payment_status = $5,
			travel_status = $6,
			payout_status = $7,
			refund_status = $8,
			travel_details = $9,
			refund_amount = $10,
			payment_order_id = $11,
			payment_id = $12,
			payout_reference = $13,
			paid_out_at = $14,
			refund_reference = $15,
			refunded_at = $16,
			cancelled_by = $17,
			cancellation_reason = $18,
			cancellation_requested_at = $19,
			cancelled_at = $20,
			updated_at = $21
		WHERE id = $1 AND status = $22`

	tag, err := r.handle().Exec(ctx, q,
		b.ID, b.PanditID, b.Status, b.PriorStatus,
		b.PaymentStatus, b.TravelStatus, b.PayoutStatus, b.RefundStatus,
		b.TravelDetails, b.RefundAmount,
		b.PaymentOrderID, b.PaymentID,
		b.PayoutReference, b.PaidOutAt, b.RefundReference, b.RefundedAt,
		b.CancelledBy, b.CancellationReason, b.CancellationRequestedAt, b.CancelledAt,
		b.UpdatedAt, expected,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrStale)
	}
	return nil
}

func (r *BookingRepo) MarkPayout(ctx context.Context, id uuid.UUID, reference string, at time.Time) error {
	const op = "postgres.BookingRepo.MarkPayout"

	const q = `
		UPDATE bookings
		SET payout_status = 'COMPLETED',
			payout_reference = $2,
			paid_out_at = $3,
			updated_at = $3
		WHERE id = $1
		  AND payout_status = 'PENDING'
		  AND status = 'COMPLETED'
		  AND payment_status = 'PAID'`

	tag, err := r.handle().Exec(ctx, q, id, reference, at)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrStale)
	}
	return nil
}

func (r *BookingRepo) SetRefund(
	ctx context.Context,
	id uuid.UUID,
	from []domain.RefundStatus,
	to domain.RefundStatus,
	reference string,
	at time.Time,
) error {
	const op = "postgres.BookingRepo.SetRefund"

	fromText := make([]string, len(from))
	for i, s := range from {
		fromText[i] = string(s)
	}

	const q = `
		UPDATE bookings
		SET refund_status = $2,
			payment_status = CASE WHEN $2 = 'COMPLETED' THEN 'REFUNDED' ELSE payment_status END,
			refund_reference = CASE WHEN $3 = '' THEN refund_reference ELSE $3 END,
			refunded_at = CASE WHEN $2 = 'COMPLETED' THEN $4 ELSE refunded_at END,
			updated_at = $4
		WHERE id = $1 AND refund_status = ANY($5)`

	tag, err := r.handle().Exec(ctx, q, id, string(to), reference, at, fromText)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrStale)
	}
	return nil
}

func (r *BookingRepo) ListTravelQueue(ctx context.Context, p repository.Page) ([]domain.Booking, error) {
	const op = "postgres.BookingRepo.ListTravelQueue"

	const q = `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE travel_status IN ('PENDING', 'ADMIN_CALCULATING')
		  AND status IN ('CREATED', 'PANDIT_REQUESTED', 'CONFIRMED')
		ORDER BY event_date, id
		LIMIT $1 OFFSET $2`

	out, err := r.list(ctx, q, p)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	return out, nil
}

func (r *BookingRepo) ListCancellationQueue(ctx context.Context, p repository.Page) ([]domain.Booking, error) {
	const op = "postgres.BookingRepo.ListCancellationQueue"

	const q = `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = 'CANCELLATION_REQUESTED'
		ORDER BY cancellation_requested_at, id
		LIMIT $1 OFFSET $2`

	out, err := r.list(ctx, q, p)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	return out, nil
}

func (r *BookingRepo) ListPendingPayouts(ctx context.Context, p repository.Page) ([]domain.Booking, error) {
	const op = "postgres.BookingRepo.ListPendingPayouts"

	const q = `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = 'COMPLETED'
		  AND payment_status = 'PAID'
		  AND payout_status = 'PENDING'
		ORDER BY event_date, id
		LIMIT $1 OFFSET $2`

	out, err := r.list(ctx, q, p)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	return out, nil
}

func (r *BookingRepo) list(ctx context.Context, q string, p repository.Page) ([]domain.Booking, error) {
	p = p.Normalize()

	rows, err := r.handle().Query(ctx, q, p.Limit, p.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Booking, 0, p.Limit)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}

	return out, rows.Err()
}
