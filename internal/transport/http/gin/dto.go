package httpgin

import (
	"time"

	"github.com/kirinyoku/dakshina/internal/domain"
	"github.com/kirinyoku/dakshina/internal/travel"
)

type CalculateFeesRequest struct {
	DakshinaAmount      float64 `json:"dakshina_amount"`
	TravelCost          float64 `json:"travel_cost"`
	FoodAllowanceAmount float64 `json:"food_allowance_amount"`
	AccommodationCost   float64 `json:"accommodation_cost"`
}

type TravelCalculateRequest struct {
	FromCity        string `json:"from_city"`
	ToCity          string `json:"to_city" binding:"required"`
	PanditID        string `json:"pandit_id" binding:"omitempty,uuid"`
	TravelMode      string `json:"travel_mode"`
	EventDays       int    `json:"event_days"`
	FoodArrangement string `json:"food_arrangement"`
}

type TravelCalculateResponse struct {
	DistanceKm  float64         `json:"distance_km"`
	DriveHours  float64         `json:"drive_hours"`
	MaxTravelKm float64         `json:"max_travel_km,omitempty"`
	Options     []travel.Option `json:"options"`
}

type CreateBookingRequest struct {
	PanditID          string  `json:"pandit_id" binding:"omitempty,uuid"`
	EventDate         string  `json:"event_date" binding:"required"`
	EventDays         int     `json:"event_days"`
	EventType         string  `json:"event_type" binding:"required"`
	Muhurat           string  `json:"muhurat"`
	VenueCity         string  `json:"venue_city" binding:"required"`
	DakshinaAmount    float64 `json:"dakshina_amount"`
	AccommodationCost float64 `json:"accommodation_cost"`
	TravelMode        string  `json:"travel_mode"`
	FoodArrangement   string  `json:"food_arrangement"`
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

type ReasonRequest struct {
	Reason string `json:"reason"`
}

type StatusUpdateRequest struct {
	Status    string   `json:"status" binding:"required"`
	Note      string   `json:"note"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type TravelUpdateRequest struct {
	Status  string `json:"status" binding:"required"`
	Details string `json:"details"`
}

type CancellationDecisionRequest struct {
	Action       string   `json:"action" binding:"required,oneof=APPROVE PARTIAL REJECT"`
	RefundAmount *float64 `json:"refund_amount"`
	Note         string   `json:"note"`
}

type PayoutRequest struct {
	Reference string `json:"reference" binding:"required"`
}

type RefundSettleRequest struct {
	Status    string `json:"status" binding:"required,oneof=COMPLETED FAILED"`
	Reference string `json:"reference"`
}

type AssignPanditRequest struct {
	PanditID string `json:"pandit_id" binding:"required,uuid"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

type ListResponse struct {
	Items  []domain.Booking `json:"items"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

func parseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
