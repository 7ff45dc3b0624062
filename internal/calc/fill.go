package calc

import (
	"math"

	"github.com/kargig/divemap-sub000/internal/gas"
)

// Composition of the air used to top up a partial-pressure blend
const (
	AirO2Fraction = 0.21
	AirN2Fraction = 0.79
)

// FillCost is the breakdown of a partial-pressure blend priced per liter
type FillCost struct {
	TotalVolume float64 `json:"total_volume_l"`
	TotalO2     float64 `json:"total_o2_l"`
	AddedO2     float64 `json:"added_o2_l"`
	TotalHe     float64 `json:"total_he_l"`
	AirVolume   float64 `json:"air_volume_l"`
	AirO2       float64 `json:"air_o2_l"`
	O2Cost      float64 `json:"o2_cost"`
	HeCost      float64 `json:"he_cost"`
	TotalCost   float64 `json:"total_cost"`
}

// CalculateFillCost prices filling the cylinder with the target mix. Helium is
// paid in full; nitrogen comes from an air top-up whose oxygen is free, so only
// the oxygen beyond it is charged.
func CalculateFillCost(cylinder gas.Cylinder, target gas.Mix, o2PricePerLiter, hePricePerLiter float64) FillCost {
	if cylinder.SizeLiters <= 0 || cylinder.PressureBar <= 0 {
		return FillCost{}
	}
	o2PricePerLiter = math.Max(0, o2PricePerLiter)
	hePricePerLiter = math.Max(0, hePricePerLiter)

	total := cylinder.SizeLiters * cylinder.PressureBar
	fO2 := target.FO2()
	fHe := target.FHe()
	fN2 := math.Max(0, 1-fO2-fHe)

	totalHe := total * fHe
	airVolume := total * fN2 / AirN2Fraction
	airO2 := airVolume * AirO2Fraction
	totalO2 := total * fO2
	addedO2 := math.Max(0, totalO2-airO2)

	o2Cost := addedO2 * o2PricePerLiter
	heCost := totalHe * hePricePerLiter

	return FillCost{
		TotalVolume: total,
		TotalO2:     totalO2,
		AddedO2:     addedO2,
		TotalHe:     totalHe,
		AirVolume:   airVolume,
		AirO2:       airO2,
		O2Cost:      o2Cost,
		HeCost:      heCost,
		TotalCost:   o2Cost + heCost,
	}
}
