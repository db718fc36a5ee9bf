package pricing

import (
	"fmt"
	"math"

	"github.com/kirinyoku/dakshina/internal/domain"
)

// Rates are the fee fractions applied by Calculate (0.15 means 15%).
type Rates struct {
	PlatformFeePercent      float64
	TravelServiceFeePercent float64
	GSTPercent              float64
}

func DefaultRates() Rates {
	return Rates{
		PlatformFeePercent:      0.15,
		TravelServiceFeePercent: 0.05,
		GSTPercent:              0.18,
	}
}

func (r Rates) Validate() error {
	for name, v := range map[string]float64{
		"platform_fee_percent":       r.PlatformFeePercent,
		"travel_service_fee_percent": r.TravelServiceFeePercent,
		"gst_percent":                r.GSTPercent,
	} {
		if !finite(v) || v < 0 || v > 1 {
			return domain.Validation(name, "must be a fraction between 0 and 1")
		}
	}
	return nil
}

// MaxAmount caps every rupee input so derived totals stay well inside int64.
const MaxAmount = 1e12

// Input carries the base fee and optional pass-through costs in rupees.
type Input struct {
	DakshinaAmount      float64 `json:"dakshina_amount"`
	TravelCost          float64 `json:"travel_cost"`
	FoodAllowanceAmount float64 `json:"food_allowance_amount"`
	AccommodationCost   float64 `json:"accommodation_cost"`
}

// Validate rejects negative, non-finite and out-of-range amounts before any
// arithmetic.
func (in Input) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"dakshina_amount", in.DakshinaAmount},
		{"travel_cost", in.TravelCost},
		{"food_allowance_amount", in.FoodAllowanceAmount},
		{"accommodation_cost", in.AccommodationCost},
	}
	for _, f := range fields {
		if !finite(f.v) {
			return domain.Validation(f.name, "must be a finite number")
		}
		if f.v < 0 {
			return domain.Validation(f.name, "must not be negative")
		}
		if f.v > MaxAmount {
			return domain.Validation(f.name, fmt.Sprintf("must not exceed %.0f", MaxAmount))
		}
	}
	if in.DakshinaAmount == 0 {
		return domain.Validation("dakshina_amount", "must be positive")
	}
	return nil
}

// Calculate derives the full money breakdown. GST applies to the platform
// fee and the travel service fee only; dakshina and pass-through costs are
// never taxed. The result depends on nothing but its arguments.
func Calculate(in Input, r Rates) (domain.Charges, error) {
	if err := in.Validate(); err != nil {
		return domain.Charges{}, err
	}
	if err := r.Validate(); err != nil {
		return domain.Charges{}, err
	}

	c := domain.Charges{
		DakshinaAmount:      Round(in.DakshinaAmount),
		TravelCost:          Round(in.TravelCost),
		FoodAllowanceAmount: Round(in.FoodAllowanceAmount),
		AccommodationCost:   Round(in.AccommodationCost),
	}

	c.PlatformFee = Percent(c.DakshinaAmount, r.PlatformFeePercent)
	if c.TravelCost > 0 {
		c.TravelServiceFee = Percent(c.TravelCost, r.TravelServiceFeePercent)
	}
	c.PlatformFeeGST = Percent(c.PlatformFee, r.GSTPercent)
	c.TravelServiceFeeGST = Percent(c.TravelServiceFee, r.GSTPercent)

	c.GrandTotal = c.Sum()
	c.PanditPayout = c.DakshinaAmount - c.PlatformFee +
		c.TravelCost + c.FoodAllowanceAmount + c.AccommodationCost

	return c, nil
}

// Round converts a rupee amount to whole rupees, half away from zero.
func Round(x float64) int64 {
	return int64(math.Round(x))
}

// Percent returns round(amount * fraction).
func Percent(amount int64, fraction float64) int64 {
	return Round(float64(amount) * fraction)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
