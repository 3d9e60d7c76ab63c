// Package formula implements the FuelEU Maritime compliance arithmetic:
// voyage energy, greenhouse-gas intensity, compliance balance, yearly
// intensity targets and the non-compliance penalty. All functions are pure.
package formula

import (
	"errors"
	"fmt"
	"math"
)

// Regulatory constants.
const (
	// BaselineTarget is the reference GHG intensity (gCO2e/MJ) used for
	// years before the first reduction milestone.
	BaselineTarget = 91.16

	// penaltyEnergyFactor and penaltyPriceFactor are the fixed regulatory
	// multipliers converting a deficit into EUR.
	penaltyEnergyFactor = 41_000
	penaltyPriceFactor  = 2_400

	// consecutiveEscalation is the penalty surcharge applied per additional
	// consecutive deficit year beyond the first.
	consecutiveEscalation = 0.1

	mrvScale = 1e5
)

// milestone pairs a reduction year with its GHG intensity target.
type milestone struct {
	year   int
	target float64
}

// targetMilestones holds the FuelEU reduction schedule, ascending by year.
var targetMilestones = []milestone{
	{2025, 89.3368},
	{2030, 85.6904},
	{2035, 77.9418},
	{2040, 62.9004},
	{2045, 34.6408},
	{2050, 18.232},
}

// FuelInput describes one consumed fuel for a reporting period.
// Mass is in grams, LCV in MJ per gram, intensity in gCO2e/MJ.
type FuelInput struct {
	MassGrams    float64 `json:"mass_g"`
	LCVMJPerGram float64 `json:"lcv_mj_per_g"`
	GHGIntensity float64 `json:"ghg_intensity"`
}

// ValidateFuels checks the caller-side constraints on a fuel mix: at least
// one fuel, and strictly positive mass, LCV and intensity on every entry.
func ValidateFuels(fuels []FuelInput) error {
	if len(fuels) == 0 {
		return errors.New("at least one fuel entry is required")
	}
	for i, f := range fuels {
		switch {
		case f.MassGrams <= 0:
			return fmt.Errorf("fuel %d: mass_g must be positive", i)
		case f.LCVMJPerGram <= 0:
			return fmt.Errorf("fuel %d: lcv_mj_per_g must be positive", i)
		case f.GHGIntensity <= 0:
			return fmt.Errorf("fuel %d: ghg_intensity must be positive", i)
		}
	}
	return nil
}

// RoundMRV rounds to 5 decimal places, the monitoring/reporting/verification
// convention used for energy and intensity figures.
func RoundMRV(v float64) float64 {
	return math.Round(v*mrvScale) / mrvScale
}

// TotalEnergyMJ returns the MRV-rounded total energy of the fuel mix plus
// any operational (shore/ops) energy.
func TotalEnergyMJ(fuels []FuelInput, opsEnergyMJ float64) float64 {
	var sum float64
	for _, f := range fuels {
		sum += f.MassGrams * f.LCVMJPerGram
	}
	return RoundMRV(sum + opsEnergyMJ)
}

// GHGIActual returns the energy-weighted average GHG intensity of the fuel
// mix, MRV-rounded. totalEnergyMJ must be non-zero; with the positive mass
// and LCV enforced by ValidateFuels it always is.
func GHGIActual(fuels []FuelInput, totalEnergyMJ float64) float64 {
	var weighted float64
	for _, f := range fuels {
		weighted += f.MassGrams * f.LCVMJPerGram * f.GHGIntensity
	}
	return RoundMRV(weighted / totalEnergyMJ)
}

// ComplianceBalance returns (target - actual) * energy rounded to the
// nearest gram of CO2e. Positive means surplus, negative means deficit.
func ComplianceBalance(ghgiTarget, ghgiActual, totalEnergyMJ float64) int64 {
	return int64(math.Round((ghgiTarget - ghgiActual) * totalEnergyMJ))
}

// GHGITarget returns the intensity target for a year: the value of the
// largest milestone year not exceeding it. Years between milestones inherit
// the most recent prior milestone (a step function, not interpolation);
// years before 2025 fall back to BaselineTarget.
func GHGITarget(year int) float64 {
	for i := len(targetMilestones) - 1; i >= 0; i-- {
		if year >= targetMilestones[i].year {
			return targetMilestones[i].target
		}
	}
	return BaselineTarget
}

// Penalty returns the EUR penalty for a compliance balance. Zero for any
// non-negative balance. ghgiActual must be non-zero; callers substitute 1
// when it is absent. Each consecutive deficit year beyond the first adds a
// 10% surcharge.
func Penalty(complianceBalance int64, ghgiActual float64, consecutiveYears int) int64 {
	if complianceBalance >= 0 {
		return 0
	}
	if consecutiveYears < 1 {
		consecutiveYears = 1
	}
	absCB := float64(-complianceBalance)
	base := absCB / ghgiActual * penaltyEnergyFactor * penaltyPriceFactor
	total := base * (1 + float64(consecutiveYears-1)*consecutiveEscalation)
	return int64(math.Round(total))
}
