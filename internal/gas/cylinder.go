package gas

// Cylinder is a physical gas reservoir: water volume and fill pressure
type Cylinder struct {
	SizeLiters  float64 `json:"size_liters"`
	PressureBar float64 `json:"pressure_bar"`
}
