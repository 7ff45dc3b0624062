package gas

// Pressure domain of the virial fit (bar)
const (
	MinModelPressureBar = 0.0
	MaxModelPressureBar = 500.0
)

// virial holds the coefficients of v(p) = c1*p + c2*p^2 + c3*p^3
type virial struct {
	c1, c2, c3 float64
}

func (v virial) at(p float64) float64 {
	return v.c1*p + v.c2*p*p + v.c3*p*p*p
}

// Third-order virial coefficients per component gas
var (
	virialO2 = virial{-7.18092073703e-4, 2.81852572808e-6, -1.50290620492e-9}
	virialN2 = virial{-2.19260353292e-4, 2.92844845532e-6, -2.07613482075e-9}
	virialHe = virial{4.87320026468e-4, -8.83632921053e-8, 5.33304543646e-11}
)

// ClampPressure limits a pressure reading to the domain of the compressibility model
func ClampPressure(pressureBar float64) float64 {
	if pressureBar < MinModelPressureBar {
		return MinModelPressureBar
	}
	if pressureBar > MaxModelPressureBar {
		return MaxModelPressureBar
	}
	return pressureBar
}

// ZFactor returns the real-gas compressibility factor of the mix at the given pressure.
// 1.0 is an ideal gas. Out-of-range pressures are clamped, never rejected.
func ZFactor(pressureBar float64, mix Mix) float64 {
	p := ClampPressure(pressureBar)

	// per-mille composition
	o2 := mix.O2Percent * 10
	he := mix.HePercent * 10
	n2 := 1000 - o2 - he

	zm1 := virialO2.at(p)*o2 + virialHe.at(p)*he + virialN2.at(p)*n2
	return zm1*0.001 + 1.0
}
