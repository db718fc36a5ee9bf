package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RolePandit   Role = "PANDIT"
	RoleAdmin    Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RolePandit, RoleAdmin:
		return true
	}
	return false
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

type TravelMode string

const (
	TravelSelfDrive TravelMode = "SELF_DRIVE"
	TravelTrain     TravelMode = "TRAIN"
	TravelFlight    TravelMode = "FLIGHT"
	TravelCab       TravelMode = "CAB"
	TravelBus       TravelMode = "BUS"
)

// TravelModes lists every mode in a stable order.
var TravelModes = []TravelMode{TravelSelfDrive, TravelTrain, TravelFlight, TravelCab, TravelBus}

func (m TravelMode) Valid() bool {
	for _, v := range TravelModes {
		if m == v {
			return true
		}
	}
	return false
}

// RequiresArrangement reports whether the platform has to book tickets or a
// vehicle for the pandit. Self-driving pandits arrange their own travel.
func (m TravelMode) RequiresArrangement() bool {
	return m != "" && m != TravelSelfDrive
}

// FoodArrangement decides which days the platform pays a per-diem for.
type FoodArrangement string

const (
	// FoodPlatform covers travel days and event days.
	FoodPlatform FoodArrangement = "PLATFORM"
	// FoodCustomer covers travel days only; the customer hosts event-day meals.
	FoodCustomer FoodArrangement = "CUSTOMER"
	// FoodNone pays no allowance at all.
	FoodNone FoodArrangement = "NONE"
)

func (f FoodArrangement) Valid() bool {
	switch f {
	case FoodPlatform, FoodCustomer, FoodNone:
		return true
	}
	return false
}

// Charges is the money breakdown of a booking in whole rupees.
type Charges struct {
	DakshinaAmount      int64 `json:"dakshina_amount"`
	TravelCost          int64 `json:"travel_cost"`
	FoodAllowanceAmount int64 `json:"food_allowance_amount"`
	AccommodationCost   int64 `json:"accommodation_cost"`
	PlatformFee         int64 `json:"platform_fee"`
	TravelServiceFee    int64 `json:"travel_service_fee"`
	PlatformFeeGST      int64 `json:"platform_fee_gst"`
	TravelServiceFeeGST int64 `json:"travel_service_fee_gst"`
	GrandTotal          int64 `json:"grand_total"`
	PanditPayout        int64 `json:"pandit_payout"`
}

// Sum adds every cost and fee component. It equals GrandTotal for any
// breakdown produced by the pricing engine.
func (c Charges) Sum() int64 {
	return c.DakshinaAmount + c.TravelCost + c.FoodAllowanceAmount + c.AccommodationCost +
		c.PlatformFee + c.TravelServiceFee + c.PlatformFeeGST + c.TravelServiceFeeGST
}

type Booking struct {
	ID            uuid.UUID  `json:"id"`
	BookingNumber string     `json:"booking_number"`
	CustomerID    uuid.UUID  `json:"customer_id"`
	PanditID      *uuid.UUID `json:"pandit_id,omitempty"`

	EventDate time.Time `json:"event_date"`
	// EventDay is the calendar day of EventDate in the booking timezone,
	// stored at midnight UTC.
	EventDay  time.Time `json:"event_day"`
	EventDays int       `json:"event_days"`
	EventType string    `json:"event_type"`
	Muhurat   string    `json:"muhurat,omitempty"`
	VenueCity string    `json:"venue_city"`

	Status Status `json:"status"`
	// PriorStatus remembers where a cancellation request came from so a
	// rejected request can restore it.
	PriorStatus   Status        `json:"prior_status,omitempty"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	TravelStatus  TravelStatus  `json:"travel_status"`
	PayoutStatus  PayoutStatus  `json:"payout_status"`
	RefundStatus  RefundStatus  `json:"refund_status,omitempty"`

	TravelMode      TravelMode      `json:"travel_mode,omitempty"`
	FoodArrangement FoodArrangement `json:"food_arrangement"`
	TravelDetails   string          `json:"travel_details,omitempty"`

	Charges
	RefundAmount int64 `json:"refund_amount"`

	PaymentOrderID  string     `json:"payment_order_id,omitempty"`
	PaymentID       string     `json:"payment_id,omitempty"`
	PayoutReference string     `json:"payout_reference,omitempty"`
	PaidOutAt       *time.Time `json:"paid_out_at,omitempty"`
	RefundReference string     `json:"refund_reference,omitempty"`
	RefundedAt      *time.Time `json:"refunded_at,omitempty"`

	CancelledBy             Role       `json:"cancelled_by,omitempty"`
	CancellationReason      string     `json:"cancellation_reason,omitempty"`
	CancellationRequestedAt *time.Time `json:"cancellation_requested_at,omitempty"`
	CancelledAt             *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TravelRequired reports whether the platform must arrange travel before
// the pandit can set out.
func (b *Booking) TravelRequired() bool {
	return b.TravelStatus != TravelNotRequired
}

// HasPandit reports whether id is the assigned pandit.
func (b *Booking) HasPandit(id uuid.UUID) bool {
	return b.PanditID != nil && *b.PanditID == id
}

// VisibleTo reports whether the actor may read the booking.
func (b *Booking) VisibleTo(a Actor) bool {
	switch a.Role {
	case RoleAdmin:
		return true
	case RoleCustomer:
		return b.CustomerID == a.ID
	case RolePandit:
		return b.HasPandit(a.ID)
	}
	return false
}

// StatusUpdate is one append-only audit row of a status change.
type StatusUpdate struct {
	ID            uuid.UUID `json:"id"`
	BookingID     uuid.UUID `json:"booking_id"`
	FromStatus    Status    `json:"from_status,omitempty"`
	ToStatus      Status    `json:"to_status"`
	UpdatedBy     uuid.UUID `json:"updated_by"`
	UpdatedByRole Role      `json:"updated_by_role"`
	Note          string    `json:"note,omitempty"`
	Latitude      *float64  `json:"latitude,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// CityDistance is one row of the read-only distance reference table.
type CityDistance struct {
	FromCity   string  `json:"from_city"`
	ToCity     string  `json:"to_city"`
	DistanceKm float64 `json:"distance_km"`
	DriveHours float64 `json:"drive_hours"`
}

// Pandit is the slice of a provider profile the engine reads.
type Pandit struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	HomeCity    string    `json:"home_city"`
	MaxTravelKm float64   `json:"max_travel_km"`
	Active      bool      `json:"active"`
	Verified    bool      `json:"verified"`
}

// Bookable reports whether the pandit accepts new engagements.
func (p *Pandit) Bookable() bool {
	return p.Active && p.Verified
}
