package domain

import "fmt"

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusCreated               Status = "CREATED"
	StatusPanditRequested       Status = "PANDIT_REQUESTED"
	StatusConfirmed             Status = "CONFIRMED"
	StatusTravelBooked          Status = "TRAVEL_BOOKED"
	StatusPanditEnRoute         Status = "PANDIT_EN_ROUTE"
	StatusPanditArrived         Status = "PANDIT_ARRIVED"
	StatusPujaInProgress        Status = "PUJA_IN_PROGRESS"
	StatusCompleted             Status = "COMPLETED"
	StatusCancellationRequested Status = "CANCELLATION_REQUESTED"
	StatusCancelled             Status = "CANCELLED"
	StatusRefunded              Status = "REFUNDED"
)

// transitions is the single authority on which status changes are legal.
// Leaving CANCELLATION_REQUESTED for a non-terminal status is only valid
// back into the booking's PriorStatus; callers check that separately.
var transitions = map[Status]map[Status]bool{
	StatusCreated: {
		StatusPanditRequested:       true,
		StatusConfirmed:             true,
		StatusCancellationRequested: true,
		StatusCancelled:             true,
		StatusRefunded:              true,
	},
	StatusPanditRequested: {
		StatusConfirmed:             true,
		StatusCancellationRequested: true,
		StatusCancelled:             true,
		StatusRefunded:              true,
	},
	StatusConfirmed: {
		StatusTravelBooked:          true,
		StatusPanditEnRoute:         true,
		StatusCancellationRequested: true,
		StatusCancelled:             true,
		StatusRefunded:              true,
	},
	StatusTravelBooked: {
		StatusPanditEnRoute:         true,
		StatusCancellationRequested: true,
		StatusCancelled:             true,
		StatusRefunded:              true,
	},
	StatusPanditEnRoute:  {StatusPanditArrived: true},
	StatusPanditArrived:  {StatusPujaInProgress: true},
	StatusPujaInProgress: {StatusCompleted: true},
	StatusCancellationRequested: {
		StatusCancelled:       true,
		StatusRefunded:        true,
		StatusCreated:         true,
		StatusPanditRequested: true,
		StatusConfirmed:       true,
		StatusTravelBooked:    true,
	},
	StatusCompleted: {},
	StatusCancelled: {},
	StatusRefunded:  {},
}

// progression is the provider-driven path, one step at a time.
var progression = map[Status]Status{
	StatusConfirmed:      StatusPanditEnRoute,
	StatusTravelBooked:   StatusPanditEnRoute,
	StatusPanditEnRoute:  StatusPanditArrived,
	StatusPanditArrived:  StatusPujaInProgress,
	StatusPujaInProgress: StatusCompleted,
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) CanTransitionTo(to Status) bool {
	return transitions[s][to]
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusRefunded
}

// Cancellable reports whether a cancellation may still be raised.
func (s Status) Cancellable() bool {
	switch s {
	case StatusCreated, StatusPanditRequested, StatusConfirmed, StatusTravelBooked:
		return true
	}
	return false
}

// Irreversible reports whether the pandit has set out; from here the
// engagement can only run to completion.
func (s Status) Irreversible() bool {
	switch s {
	case StatusPanditEnRoute, StatusPanditArrived, StatusPujaInProgress, StatusCompleted:
		return true
	}
	return false
}

// AwaitingPandit reports whether the assigned pandit can still accept or
// reject the request.
func (s Status) AwaitingPandit() bool {
	return s == StatusCreated || s == StatusPanditRequested
}

// NextProgress returns the only status a provider progress update may move
// to from s.
func (s Status) NextProgress() (Status, bool) {
	next, ok := progression[s]
	return next, ok
}

// IsProgressStep reports whether s is a status a provider reports through a
// progress update.
func (s Status) IsProgressStep() bool {
	switch s {
	case StatusPanditEnRoute, StatusPanditArrived, StatusPujaInProgress, StatusCompleted:
		return true
	}
	return false
}

// BlocksDay reports whether a booking in this status occupies its pandit's
// calendar day.
func (s Status) BlocksDay() bool {
	return s.Valid() && !s.IsTerminal()
}

// BlockingStatuses lists every status that occupies a pandit's day.
func BlockingStatuses() []Status {
	return []Status{
		StatusCreated,
		StatusPanditRequested,
		StatusConfirmed,
		StatusTravelBooked,
		StatusPanditEnRoute,
		StatusPanditArrived,
		StatusPujaInProgress,
		StatusCancellationRequested,
	}
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return st, nil
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
	PaymentFailed   PaymentStatus = "FAILED"
)

type TravelStatus string

const (
	TravelNotRequired      TravelStatus = "NOT_REQUIRED"
	TravelPending          TravelStatus = "PENDING"
	TravelAdminCalculating TravelStatus = "ADMIN_CALCULATING"
	TravelBooked           TravelStatus = "BOOKED"
	TravelInTransit        TravelStatus = "IN_TRANSIT"
	TravelArrived          TravelStatus = "ARRIVED"
)

// travelAdminSteps are the moves an admin may make while arranging travel.
var travelAdminSteps = map[TravelStatus]map[TravelStatus]bool{
	TravelPending:          {TravelAdminCalculating: true, TravelBooked: true},
	TravelAdminCalculating: {TravelBooked: true},
}

// CanArrange reports whether an admin may move travel from s to next.
func (s TravelStatus) CanArrange(next TravelStatus) bool {
	return travelAdminSteps[s][next]
}

func ParseTravelStatus(s string) (TravelStatus, error) {
	switch st := TravelStatus(s); st {
	case TravelNotRequired, TravelPending, TravelAdminCalculating, TravelBooked, TravelInTransit, TravelArrived:
		return st, nil
	}
	return "", fmt.Errorf("invalid travel status: %s", s)
}

type PayoutStatus string

const (
	PayoutPending   PayoutStatus = "PENDING"
	PayoutCompleted PayoutStatus = "COMPLETED"
)

// RefundStatus is empty until a refund is owed.
type RefundStatus string

const (
	RefundNone       RefundStatus = ""
	RefundPending    RefundStatus = "PENDING"
	RefundProcessing RefundStatus = "PROCESSING"
	RefundFailed     RefundStatus = "FAILED"
	RefundCompleted  RefundStatus = "COMPLETED"
)

func ParseRefundStatus(s string) (RefundStatus, error) {
	switch st := RefundStatus(s); st {
	case RefundPending, RefundProcessing, RefundFailed, RefundCompleted:
		return st, nil
	}
	return "", fmt.Errorf("invalid refund status: %s", s)
}
