package footprint

import "math"

// Emission coefficients per self-reported consumption unit, in kg CO2.
const (
	KgPerKWh      = 0.4
	KgPerCarKm    = 0.2
	KgPerFlight   = 200
	KgPerMeatKgWk = 50
)

// KgPerToken is the compensation granularity of one token.
const KgPerToken = 100

// Consumption is one self-reported consumption profile.
type Consumption struct {
	ElectricityKWh float64
	CarKm          float64
	Flights        float64
	MeatKgPerWeek  float64
}

// Estimate is a derived emissions figure with the token amount needed
// to compensate it in full.
type Estimate struct {
	CO2Kg        float64
	TokensNeeded uint64
}

// Estimate converts the consumption profile into an emissions estimate.
// Tokens round up so the estimate is always fully covered.
func (c Consumption) Estimate() Estimate {
	co2 := c.ElectricityKWh*KgPerKWh +
		c.CarKm*KgPerCarKm +
		c.Flights*KgPerFlight +
		c.MeatKgPerWeek*KgPerMeatKgWk

	if co2 <= 0 {
		return Estimate{}
	}

	return Estimate{
		CO2Kg:        co2,
		TokensNeeded: uint64(math.Ceil(co2 / KgPerToken)),
	}
}
