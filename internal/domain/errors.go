package domain

import (
	"errors"
	"fmt"
)

// Kind groups error codes by how the caller can react to them.
type Kind string

const (
	KindValidation      Kind = "VALIDATION_ERROR"
	KindNotFound        Kind = "NOT_FOUND"
	KindForbidden       Kind = "FORBIDDEN"
	KindStateConflict   Kind = "STATE_CONFLICT"
	KindExternalFailure Kind = "EXTERNAL_FAILURE"
	KindRateLimited     Kind = "RATE_LIMITED"
)

// Error is a domain error with a stable machine-readable code.
// Two errors match under errors.Is when their codes are equal.
type Error struct {
	Kind Kind
	Code string
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

var (
	ErrValidation             = &Error{Kind: KindValidation, Code: "VALIDATION_ERROR", Msg: "invalid input"}
	ErrInvalidSignature       = &Error{Kind: KindValidation, Code: "INVALID_SIGNATURE", Msg: "payment signature mismatch"}
	ErrTravelModeInfeasible   = &Error{Kind: KindValidation, Code: "TRAVEL_MODE_INFEASIBLE", Msg: "travel mode not available for this distance"}
	ErrBookingNotFound        = &Error{Kind: KindNotFound, Code: "BOOKING_NOT_FOUND", Msg: "booking not found"}
	ErrDistanceNotFound       = &Error{Kind: KindNotFound, Code: "DISTANCE_NOT_FOUND", Msg: "no distance data between cities"}
	ErrPanditNotFound         = &Error{Kind: KindNotFound, Code: "PANDIT_NOT_FOUND", Msg: "pandit not found"}
	ErrForbidden              = &Error{Kind: KindForbidden, Code: "FORBIDDEN", Msg: "not allowed for this booking"}
	ErrInvalidTransition      = &Error{Kind: KindStateConflict, Code: "INVALID_TRANSITION", Msg: "transition not permitted from current status"}
	ErrPanditUnavailable      = &Error{Kind: KindStateConflict, Code: "PANDIT_UNAVAILABLE", Msg: "pandit is not accepting bookings"}
	ErrDateUnavailable        = &Error{Kind: KindStateConflict, Code: "DATE_UNAVAILABLE", Msg: "pandit already booked on this date"}
	ErrAlreadyPaid            = &Error{Kind: KindStateConflict, Code: "ALREADY_PAID", Msg: "payout already completed"}
	ErrNotPayoutEligible      = &Error{Kind: KindStateConflict, Code: "NOT_PAYOUT_ELIGIBLE", Msg: "booking must be completed and paid"}
	ErrCancellationNotAllowed = &Error{Kind: KindStateConflict, Code: "CANCELLATION_NOT_ALLOWED", Msg: "booking can no longer be cancelled"}
	ErrRefundSettled          = &Error{Kind: KindStateConflict, Code: "REFUND_ALREADY_SETTLED", Msg: "refund is not open"}
	ErrPaymentVerified        = &Error{Kind: KindStateConflict, Code: "PAYMENT_ALREADY_VERIFIED", Msg: "payment already verified"}
	ErrExternalFailure        = &Error{Kind: KindExternalFailure, Code: "EXTERNAL_FAILURE", Msg: "external service call failed"}
	ErrRateLimited            = &Error{Kind: KindRateLimited, Code: "RATE_LIMITED", Msg: "too many requests"}
)

// Validation returns a VALIDATION_ERROR naming the offending field.
func Validation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Code: ErrValidation.Code, Msg: fmt.Sprintf("%s: %s", field, msg)}
}

// Conflict returns a copy of a state-conflict sentinel with a specific message.
func Conflict(base *Error, msg string) *Error {
	return &Error{Kind: base.Kind, Code: base.Code, Msg: msg}
}

// AsError extracts the domain error from err's chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
