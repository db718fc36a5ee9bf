package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventBookingCreated        EventType = "booking.created"
	EventPaymentReceived       EventType = "booking.payment_received"
	EventPanditRequested       EventType = "booking.pandit_requested"
	EventBookingConfirmed      EventType = "booking.confirmed"
	EventBookingRejected       EventType = "booking.rejected"
	EventTravelBooked          EventType = "booking.travel_booked"
	EventProgressUpdated       EventType = "booking.progress_updated"
	EventBookingCompleted      EventType = "booking.completed"
	EventCancellationRequested EventType = "booking.cancellation_requested"
	EventCancellationRejected  EventType = "booking.cancellation_rejected"
	EventBookingCancelled      EventType = "booking.cancelled"
	EventRefundInitiated       EventType = "booking.refund_initiated"
	EventRefundSettled         EventType = "booking.refund_settled"
	EventPayoutCompleted       EventType = "booking.payout_completed"
)

// Event is a fact about a committed booking change. The state machine emits
// events; delivery happens outside the transaction.
type Event struct {
	ID            uuid.UUID  `json:"id"`
	Type          EventType  `json:"type"`
	BookingID     uuid.UUID  `json:"booking_id"`
	BookingNumber string     `json:"booking_number"`
	CustomerID    uuid.UUID  `json:"customer_id"`
	PanditID      *uuid.UUID `json:"pandit_id,omitempty"`
	Status        Status     `json:"status"`
	EventDate     time.Time  `json:"event_date"`
	Amount        int64      `json:"amount,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

func NewEvent(t EventType, b *Booking, amount int64, at time.Time) Event {
	return Event{
		ID:            uuid.New(),
		Type:          t,
		BookingID:     b.ID,
		BookingNumber: b.BookingNumber,
		CustomerID:    b.CustomerID,
		PanditID:      b.PanditID,
		Status:        b.Status,
		EventDate:     b.EventDate,
		Amount:        amount,
		OccurredAt:    at,
	}
}
