package travel

import (
	"fmt"
	"math"
	"sort"

	"github.com/kirinyoku/dakshina/internal/domain"
	"github.com/kirinyoku/dakshina/internal/pricing"
)

// Band is a one-way fare for distances up to UpToKm. A zero UpToKm marks the
// open-ended last band.
type Band struct {
	UpToKm float64
	Fare   int64
}

// Rates hold every tariff the calculator uses. Fare bands are one-way and
// must be sorted by UpToKm with the open-ended band last.
type Rates struct {
	SelfDrivePerKm    float64
	CabPerKm          float64
	BusPerKm          float64
	TrainBands        []Band
	FlightBands       []Band
	LocalTransfer     int64
	PerDiem           int64
	ServiceFeePercent float64
	GSTPercent        float64
}

func DefaultRates() Rates {
	return Rates{
		SelfDrivePerKm: 12,
		CabPerKm:       14,
		BusPerKm:       2.5,
		TrainBands: []Band{
			{UpToKm: 200, Fare: 400},
			{UpToKm: 500, Fare: 900},
			{UpToKm: 1000, Fare: 1600},
			{Fare: 2500},
		},
		FlightBands: []Band{
			{UpToKm: 500, Fare: 4500},
			{UpToKm: 1000, Fare: 6500},
			{UpToKm: 2000, Fare: 8500},
			{Fare: 11000},
		},
		LocalTransfer:     500,
		PerDiem:           1000,
		ServiceFeePercent: 0.05,
		GSTPercent:        0.18,
	}
}

// Distance limits per mode, one-way kilometres.
const (
	selfDriveMaxKm = 2000
	cabMaxKm       = 300
	busMaxKm       = 1500
	flightMinKm    = 200
)

// kmPerTravelDay is how far a pandit covers in one day per mode. Flights
// always take one day each way.
var kmPerTravelDay = map[domain.TravelMode]float64{
	domain.TravelSelfDrive: 400,
	domain.TravelCab:       400,
	domain.TravelBus:       500,
	domain.TravelTrain:     700,
}

// Feasible reports whether mode can cover distanceKm one way.
func Feasible(mode domain.TravelMode, distanceKm float64) bool {
	switch mode {
	case domain.TravelSelfDrive:
		return distanceKm <= selfDriveMaxKm
	case domain.TravelCab:
		return distanceKm <= cabMaxKm
	case domain.TravelBus:
		return distanceKm <= busMaxKm
	case domain.TravelFlight:
		return distanceKm >= flightMinKm
	case domain.TravelTrain:
		return true
	}
	return false
}

// Upper bounds on a costing question.
const (
	MaxDistanceKm = 50000
	MaxEventDays  = 365
)

// Request describes one costing question. An empty Mode asks for every
// feasible mode. MaxTravelKm of zero means the pandit has no radius limit.
type Request struct {
	DistanceKm  float64
	Mode        domain.TravelMode
	EventDays   int
	Food        domain.FoodArrangement
	MaxTravelKm float64
}

func (r Request) Validate() error {
	if math.IsNaN(r.DistanceKm) || math.IsInf(r.DistanceKm, 0) || r.DistanceKm < 0 {
		return domain.Validation("distance_km", "must be a finite non-negative number")
	}
	if r.DistanceKm > MaxDistanceKm {
		return domain.Validation("distance_km", fmt.Sprintf("must not exceed %d", MaxDistanceKm))
	}
	if r.Mode != "" && !r.Mode.Valid() {
		return domain.Validation("travel_mode", fmt.Sprintf("unknown mode %q", r.Mode))
	}
	if r.EventDays < 1 || r.EventDays > MaxEventDays {
		return domain.Validation("event_days", fmt.Sprintf("must be between 1 and %d", MaxEventDays))
	}
	if !r.Food.Valid() {
		return domain.Validation("food_arrangement", fmt.Sprintf("unknown arrangement %q", r.Food))
	}
	if math.IsNaN(r.MaxTravelKm) || r.MaxTravelKm < 0 {
		return domain.Validation("max_travel_km", "must not be negative")
	}
	return nil
}

type LineItem struct {
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

// Option is the costed round trip for one mode.
type Option struct {
	Mode             domain.TravelMode `json:"mode"`
	DistanceKm       float64           `json:"distance_km"`
	RoundTripKm      float64           `json:"round_trip_km"`
	TravelDays       int               `json:"travel_days"`
	BaseFare         int64             `json:"base_fare"`
	LocalTransfer    int64             `json:"local_transfer"`
	TravelCost       int64             `json:"travel_cost"`
	FoodAllowance    int64             `json:"food_allowance"`
	ServiceFee       int64             `json:"service_fee"`
	ServiceFeeGST    int64             `json:"service_fee_gst"`
	GrandTravelTotal int64             `json:"grand_travel_total"`
	Breakdown        []LineItem        `json:"breakdown"`
}

// Calculate costs the requested mode, or every feasible mode ranked by
// GrandTravelTotal ascending. A distance beyond the pandit's radius yields
// no options and no error.
func Calculate(req Request, r Rates) ([]Option, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.MaxTravelKm > 0 && req.DistanceKm > req.MaxTravelKm {
		return []Option{}, nil
	}

	if req.Mode != "" {
		if !Feasible(req.Mode, req.DistanceKm) {
			return nil, domain.Conflict(domain.ErrTravelModeInfeasible,
				fmt.Sprintf("%s is not available for %.0f km", req.Mode, req.DistanceKm))
		}
		return []Option{cost(req, req.Mode, r)}, nil
	}

	out := make([]Option, 0, len(domain.TravelModes))
	for _, m := range domain.TravelModes {
		if Feasible(m, req.DistanceKm) {
			out = append(out, cost(req, m, r))
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].GrandTravelTotal < out[j].GrandTravelTotal
	})

	return out, nil
}

func cost(req Request, mode domain.TravelMode, r Rates) Option {
	d := req.DistanceKm
	o := Option{
		Mode:        mode,
		DistanceKm:  d,
		RoundTripKm: 2 * d,
		TravelDays:  travelDays(mode, d),
	}

	switch mode {
	case domain.TravelSelfDrive:
		o.BaseFare = pricing.Round(o.RoundTripKm * r.SelfDrivePerKm)
	case domain.TravelCab:
		o.BaseFare = pricing.Round(d * r.CabPerKm * 2)
	case domain.TravelBus:
		o.BaseFare = pricing.Round(d * r.BusPerKm * 2)
		o.LocalTransfer = r.LocalTransfer
	case domain.TravelTrain:
		o.BaseFare = bandFare(r.TrainBands, d) * 2
		o.LocalTransfer = r.LocalTransfer
	case domain.TravelFlight:
		o.BaseFare = bandFare(r.FlightBands, d) * 2
		o.LocalTransfer = r.LocalTransfer
	}

	o.TravelCost = o.BaseFare + o.LocalTransfer
	o.FoodAllowance = FoodAllowance(req.Food, o.TravelDays, req.EventDays, r.PerDiem)
	o.ServiceFee = pricing.Percent(o.TravelCost+o.FoodAllowance, r.ServiceFeePercent)
	o.ServiceFeeGST = pricing.Percent(o.ServiceFee, r.GSTPercent)
	o.GrandTravelTotal = o.TravelCost + o.FoodAllowance + o.ServiceFee + o.ServiceFeeGST

	o.Breakdown = []LineItem{{
		Label:  fmt.Sprintf("%s fare (round trip, %.0f km)", label(mode), o.RoundTripKm),
		Amount: o.BaseFare,
	}}
	if o.LocalTransfer > 0 {
		o.Breakdown = append(o.Breakdown, LineItem{Label: "Local transfer", Amount: o.LocalTransfer})
	}
	if o.FoodAllowance > 0 {
		o.Breakdown = append(o.Breakdown, LineItem{
			Label:  fmt.Sprintf("Food allowance (%d days)", o.FoodAllowance/max(r.PerDiem, 1)),
			Amount: o.FoodAllowance,
		})
	}
	o.Breakdown = append(o.Breakdown,
		LineItem{Label: "Travel service fee", Amount: o.ServiceFee},
		LineItem{Label: "GST on travel service fee", Amount: o.ServiceFeeGST},
	)

	return o
}

// FoodAllowance pays the per-diem for travel days, plus event days when the
// platform also covers meals at the venue.
func FoodAllowance(food domain.FoodArrangement, travelDays, eventDays int, perDiem int64) int64 {
	switch food {
	case domain.FoodPlatform:
		return int64(travelDays+eventDays) * perDiem
	case domain.FoodCustomer:
		return int64(travelDays) * perDiem
	}
	return 0
}

func travelDays(mode domain.TravelMode, distanceKm float64) int {
	if distanceKm <= 0 {
		return 0
	}
	if mode == domain.TravelFlight {
		return 2
	}
	return int(math.Ceil(distanceKm/kmPerTravelDay[mode])) * 2
}

func bandFare(bands []Band, distanceKm float64) int64 {
	for _, b := range bands {
		if b.UpToKm == 0 || distanceKm <= b.UpToKm {
			return b.Fare
		}
	}
	if len(bands) == 0 {
		return 0
	}
	return bands[len(bands)-1].Fare
}

func label(mode domain.TravelMode) string {
	switch mode {
	case domain.TravelSelfDrive:
		return "Self drive"
	case domain.TravelTrain:
		return "Train"
	case domain.TravelFlight:
		return "Flight"
	case domain.TravelCab:
		return "Cab"
	case domain.TravelBus:
		return "Bus"
	}
	return string(mode)
}
