package calc

import (
	"math"

	"github.com/kargig/divemap-sub000/internal/gas"
)

// SACResult holds surface air consumption under both gas models
type SACResult struct {
	IdealSAC float64 `json:"ideal_sac_l_per_min"` // ideal gas law
	RealSAC  float64 `json:"real_sac_l_per_min"`  // virial compressibility correction
}

// CalculateSAC returns the surface air consumption rate for a dive segment at
// constant depth, breathing start.PressureBar down to endPressureBar.
// A negative end pressure reads as an empty cylinder in both gas models.
func CalculateSAC(depthM, timeMin float64, start gas.Cylinder, endPressureBar float64, mix gas.Mix) SACResult {
	ata := gas.AmbientPressureATA(depthM)
	if timeMin <= 0 || ata <= 0 {
		return SACResult{}
	}

	endPressureBar = math.Max(0, endPressureBar)
	usedBar := start.PressureBar - endPressureBar
	usedIdeal := usedBar * start.SizeLiters

	volStart := gas.RealVolume(start.PressureBar, start.SizeLiters, mix)
	volEnd := gas.RealVolume(endPressureBar, start.SizeLiters, mix)
	usedReal := math.Max(0, volStart-volEnd)

	return SACResult{
		IdealSAC: math.Max(0, usedIdeal/timeMin/ata),
		RealSAC:  math.Max(0, usedReal/timeMin/ata),
	}
}
