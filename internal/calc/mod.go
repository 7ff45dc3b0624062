package calc

import (
	"math"

	"github.com/kargig/divemap-sub000/internal/gas"
)

// Common oxygen partial pressure limits (bar)
const (
	WorkingPO2 = 1.4
	DecoPO2    = 1.6
)

// MODResult holds the maximum operating and equivalent narcotic depth of a mix
type MODResult struct {
	MODMeters          float64 `json:"mod_m"`
	ENDMeters          float64 `json:"end_m"`
	AmbientPressureATA float64 `json:"ambient_pressure_ata"`
	FO2                float64 `json:"fO2"`
	FHe                float64 `json:"fHe"`
}

// CalculateMOD returns the MOD for the given maximum pO2 and the END at that depth.
// Oxygen is counted as narcotic. A mix without oxygen yields the zero result.
func CalculateMOD(mix gas.Mix, maxPO2 float64) MODResult {
	fO2 := mix.FO2()
	fHe := mix.FHe()
	if fO2 <= 0 {
		return MODResult{}
	}

	ata := maxPO2 / fO2
	endATA := ata * (1 - fHe)

	return MODResult{
		MODMeters:          math.Max(0, gas.DepthFromATA(ata)),
		ENDMeters:          math.Max(0, gas.DepthFromATA(endATA)),
		AmbientPressureATA: ata,
		FO2:                fO2,
		FHe:                fHe,
	}
}

// PO2AtDepth returns the oxygen partial pressure (bar) of the mix at depth
func PO2AtDepth(mix gas.Mix, depthM float64) float64 {
	return math.Max(0, mix.FO2()*gas.AmbientPressureATA(depthM))
}

// ENDAtDepth returns the equivalent narcotic depth of the mix at depth
func ENDAtDepth(mix gas.Mix, depthM float64) float64 {
	ata := gas.AmbientPressureATA(depthM)
	return math.Max(0, gas.DepthFromATA(ata*(1-mix.FHe())))
}

// BestMix returns the richest mix usable at depth without exceeding maxPO2,
// with just enough helium to keep the END at or below maxENDm.
func BestMix(depthM, maxPO2, maxENDm float64) gas.Mix {
	ata := gas.AmbientPressureATA(depthM)
	if ata <= 0 || maxPO2 <= 0 {
		return gas.Mix{}
	}

	fO2 := math.Min(1, maxPO2/ata)

	narcotic := gas.AmbientPressureATA(math.Max(0, maxENDm)) / ata
	fHe := 1 - narcotic
	if fHe < 0 {
		fHe = 0
	}
	if fHe > 1-fO2 {
		fHe = 1 - fO2
	}

	return gas.Mix{
		O2Percent: fO2 * 100,
		HePercent: fHe * 100,
	}
}
