package gas

import (
	"fmt"
	"math"
)

// Mix describes a breathing gas by its oxygen and helium percentages.
// Nitrogen makes up the remainder and is always derived.
type Mix struct {
	O2Percent float64 `json:"o2_percent"`
	HePercent float64 `json:"he_percent"`
}

// Common mixes
var (
	Air    = Mix{O2Percent: 21}
	Oxygen = Mix{O2Percent: 100}
)

// Nitrox returns an oxygen-enriched air mix
func Nitrox(o2Percent float64) Mix {
	return Mix{O2Percent: o2Percent}
}

// Trimix returns a mix of oxygen, helium and nitrogen
func Trimix(o2Percent, hePercent float64) Mix {
	return Mix{O2Percent: o2Percent, HePercent: hePercent}
}

// N2Percent returns the nitrogen percentage
func (m Mix) N2Percent() float64 {
	return 100 - m.O2Percent - m.HePercent
}

// FO2 returns the oxygen fraction (0-1)
func (m Mix) FO2() float64 { return m.O2Percent / 100 }

// FHe returns the helium fraction (0-1)
func (m Mix) FHe() float64 { return m.HePercent / 100 }

// FN2 returns the nitrogen fraction (0-1)
func (m Mix) FN2() float64 { return m.N2Percent() / 100 }

// Validate reports whether the percentages describe a physical mix.
// Calculators never call it; it exists for callers that must reject input.
func (m Mix) Validate() error {
	if math.IsNaN(m.O2Percent) || math.IsNaN(m.HePercent) {
		return fmt.Errorf("gas percentages must be numbers")
	}
	if m.O2Percent < 0 || m.O2Percent > 100 {
		return fmt.Errorf("invalid oxygen percentage: %g (must be 0-100)", m.O2Percent)
	}
	if m.HePercent < 0 || m.HePercent > 100 {
		return fmt.Errorf("invalid helium percentage: %g (must be 0-100)", m.HePercent)
	}
	if m.O2Percent+m.HePercent > 100 {
		return fmt.Errorf("oxygen and helium add up to %g%% (must be at most 100%%)", m.O2Percent+m.HePercent)
	}
	return nil
}

// Name returns the conventional label for the mix, e.g. "EAN32" or "Tx18/45".
// Percentages in labels are shown to one decimal.
func (m Mix) Name() string {
	o2 := labelPercent(m.O2Percent)
	he := labelPercent(m.HePercent)

	switch {
	case m.HePercent == 0 && m.O2Percent == Air.O2Percent:
		return "Air"
	case m.HePercent == 0 && m.O2Percent == 100:
		return "Oxygen"
	case o2 == 0 && he == 0:
		return "Nitrogen"
	case o2 == 0 && he == 100:
		return "Helium"
	case he == 0:
		return fmt.Sprintf("EAN%g", o2)
	case o2+he == 100:
		return fmt.Sprintf("Heliox%g/%g", o2, he)
	default:
		return fmt.Sprintf("Tx%g/%g", o2, he)
	}
}

func labelPercent(v float64) float64 {
	return math.Round(v*10) / 10
}

// String implements fmt.Stringer
func (m Mix) String() string {
	return m.Name()
}
