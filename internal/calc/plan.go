package calc

import "github.com/kargig/divemap-sub000/internal/gas"

// ThirdsMultiplier turns dive gas into total gas under the rule of thirds
const ThirdsMultiplier = 1.5

// GasPlan is the gas requirement of a planned dive against one cylinder
type GasPlan struct {
	DiveGas           float64 `json:"dive_gas_l"`
	ReserveGas        float64 `json:"reserve_gas_l"`
	TotalGas          float64 `json:"total_gas_l"`
	TotalPressureBar  float64 `json:"total_pressure_bar"`
	IsSafe            bool    `json:"is_safe"`
	RemainingPressure float64 `json:"remaining_pressure_bar"` // negative when the plan does not fit
}

// PlanGas computes the gas needed for timeMin at depthM breathing sacLPerMin,
// optionally holding a third in reserve, and checks it against the cylinder.
func PlanGas(depthM, timeMin, sacLPerMin float64, cylinder gas.Cylinder, ruleOfThirds bool) GasPlan {
	ata := gas.AmbientPressureATA(depthM)
	dive := sacLPerMin * ata * timeMin

	plan := GasPlan{
		DiveGas:  dive,
		TotalGas: dive,
	}
	if ruleOfThirds {
		plan.TotalGas = dive * ThirdsMultiplier
		plan.ReserveGas = plan.TotalGas - dive
	}

	if cylinder.SizeLiters <= 0 {
		// No cylinder volume to spread the gas over
		plan.RemainingPressure = cylinder.PressureBar
		plan.IsSafe = plan.TotalGas <= 0
		return plan
	}

	plan.TotalPressureBar = plan.TotalGas / cylinder.SizeLiters
	plan.IsSafe = plan.TotalPressureBar <= cylinder.PressureBar
	plan.RemainingPressure = cylinder.PressureBar - plan.TotalPressureBar
	return plan
}
