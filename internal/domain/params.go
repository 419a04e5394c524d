package domain

import (
	"errors"
	"fmt"
	"math"
)

// Default sampling parameters.
const (
	DefaultRadiusKm          = 10.0
	DefaultPastYears         = 30.0
	DefaultNumEarthquakes    = 30
	DefaultBigEqMinMagnitude = 5.5
)

// Params controls sample extraction. It is passed explicitly through every
// stage; there are no package-level defaults consulted at run time.
type Params struct {
	RadiusKm          float64
	PastYears         float64
	NumEarthquakes    int
	BigEqMinMagnitude float64
}

// DefaultParams returns the standard sampling parameters.
func DefaultParams() Params {
	return Params{
		RadiusKm:          DefaultRadiusKm,
		PastYears:         DefaultPastYears,
		NumEarthquakes:    DefaultNumEarthquakes,
		BigEqMinMagnitude: DefaultBigEqMinMagnitude,
	}
}

// Validate rejects parameter sets that cannot produce a sample.
func (p Params) Validate() error {
	var errs []error
	if math.IsNaN(p.RadiusKm) || p.RadiusKm < 0 {
		errs = append(errs, fmt.Errorf("radius_km must be >= 0, got %g", p.RadiusKm))
	}
	if math.IsNaN(p.PastYears) || p.PastYears <= 0 {
		errs = append(errs, fmt.Errorf("past_years must be > 0, got %g", p.PastYears))
	}
	if p.NumEarthquakes < 1 {
		errs = append(errs, fmt.Errorf("num_earthquakes must be >= 1, got %d", p.NumEarthquakes))
	}
	if math.IsNaN(p.BigEqMinMagnitude) {
		errs = append(errs, errors.New("big_eq_min_magnitude must be a number"))
	}
	return errors.Join(errs...)
}
