package gas

// MetersPerBar is the seawater column approximation used throughout
const MetersPerBar = 10.0

// AmbientPressureATA converts a depth in meters of seawater to absolute pressure.
// Negative depths are not validated and give values below 1.
func AmbientPressureATA(depthM float64) float64 {
	return depthM/MetersPerBar + 1
}

// DepthFromATA converts absolute pressure back to meters of seawater
func DepthFromATA(ata float64) float64 {
	return (ata - 1) * MetersPerBar
}
