package gas

// AtmBar is one standard atmosphere in bar
const AtmBar = 1.01325

// RealVolume returns the surface volume (liters) of gas stored in a cylinder,
// corrected for compressibility. Zero or negative inputs yield 0.
func RealVolume(pressureBar, cylinderLiters float64, mix Mix) float64 {
	if pressureBar <= 0 || cylinderLiters <= 0 {
		return 0
	}
	z := ZFactor(pressureBar, mix)
	return cylinderLiters * (pressureBar / AtmBar) / z
}

// IdealVolume returns the bar-liters of gas in a cylinder under the ideal gas law
func IdealVolume(pressureBar, cylinderLiters float64) float64 {
	if pressureBar <= 0 || cylinderLiters <= 0 {
		return 0
	}
	return pressureBar * cylinderLiters
}
