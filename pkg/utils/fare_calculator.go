package utils

import (
	"errors"
	"math"
)

// ErrInvalidFareRates is returned when a rate is negative or not finite.
var ErrInvalidFareRates = errors.New("invalid fare rates")

// FareRates is the admin-tunable pricing triple.
type FareRates struct {
	BaseFare    float64 `json:"baseFare"`
	PerKmRate   float64 `json:"perKmRate"`
	MinimumFare float64 `json:"minimumFare"`
}

// Valid reports whether every rate is finite and non-negative.
func (r FareRates) Valid() bool {
	for _, v := range []float64{r.BaseFare, r.PerKmRate, r.MinimumFare} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	return true
}

// FareEstimate contains the priced trip and the distance it was priced on
type FareEstimate struct {
	Fare       float64 `json:"fare"`
	DistanceKm float64 `json:"distanceKm"`
}

// EstimateFare prices a trip as baseFare + distance*perKmRate rounded to the
// nearest whole currency unit, floored at minimumFare rounded up. Both booking
// and the public estimate go through here so quotes and stored fares agree.
func EstimateFare(pickup, drop Point, rates FareRates) (FareEstimate, error) {
	if !pickup.Valid() || !drop.Valid() {
		return FareEstimate{}, ErrInvalidCoordinates
	}
	if !rates.Valid() {
		return FareEstimate{}, ErrInvalidFareRates
	}

	distance := DistanceKm(pickup, drop)
	// the floor is applied after rounding so a fractional minimum still holds
	fare := math.Max(math.Round(rates.BaseFare+distance*rates.PerKmRate), math.Ceil(rates.MinimumFare))

	return FareEstimate{
		Fare:       fare,
		DistanceKm: math.Round(distance*100) / 100,
	}, nil
}
