package pricing

import "time"

// RefundTier maps a minimum number of days before the event to the share
// of the grand total returned to the customer.
type RefundTier struct {
	MinDays int
	Percent float64
}

// refundTiers is ordered from the most generous tier down.
var refundTiers = []RefundTier{
	{MinDays: 8, Percent: 0.90},
	{MinDays: 3, Percent: 0.50},
	{MinDays: 1, Percent: 0.20},
}

// RefundPercent returns the refund share for a cancellation processed
// daysBeforeEvent whole days ahead of the event.
func RefundPercent(daysBeforeEvent int) float64 {
	for _, t := range refundTiers {
		if daysBeforeEvent >= t.MinDays {
			return t.Percent
		}
	}
	return 0
}

// RefundAmount applies the tiered policy. The result is always within
// [0, grandTotal].
func RefundAmount(grandTotal int64, daysBeforeEvent int) int64 {
	if grandTotal <= 0 {
		return 0
	}
	return ClampRefund(Percent(grandTotal, RefundPercent(daysBeforeEvent)), grandTotal)
}

// ClampRefund bounds an arbitrary refund to [0, grandTotal].
func ClampRefund(amount, grandTotal int64) int64 {
	if amount < 0 || grandTotal <= 0 {
		return 0
	}
	if amount > grandTotal {
		return grandTotal
	}
	return amount
}

// DaysBeforeEvent counts calendar days in loc from now until the event.
// An event later today is 0; a past event is negative.
func DaysBeforeEvent(event, now time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	return int(CalendarDay(event, loc).Sub(CalendarDay(now, loc)).Hours() / 24)
}

// CalendarDay returns t's date in loc as midnight UTC.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
