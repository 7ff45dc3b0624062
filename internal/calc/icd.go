package calc

import (
	"fmt"
	"math"

	"github.com/kargig/divemap-sub000/internal/gas"
)

// ICDResult is the rule-of-fifths check for a gas switch
type ICDResult struct {
	Warning    bool    `json:"warning"`
	Applicable bool    `json:"applicable"` // false when the current gas carries no helium
	Message    string  `json:"message"`
	DeltaN2    float64 `json:"deltaN2"`
	DeltaHe    float64 `json:"deltaHe"`
}

// CheckICD checks the switch from current to next for isobaric counterdiffusion.
// The nitrogen increase must not exceed a fifth of the helium drop; the boundary
// itself is allowed.
func CheckICD(current, next gas.Mix) ICDResult {
	dN2 := next.N2Percent() - current.N2Percent()
	dHe := next.HePercent - current.HePercent

	res := ICDResult{
		Warning:    5*dN2 > math.Abs(dHe),
		Applicable: current.HePercent > 0,
		DeltaN2:    dN2,
		DeltaHe:    dHe,
	}

	switch {
	case !res.Applicable:
		res.Message = fmt.Sprintf("%s carries no helium; counterdiffusion does not apply when switching to %s", current.Name(), next.Name())
	case res.Warning:
		res.Message = fmt.Sprintf("ICD risk switching %s to %s: nitrogen rises %.1f%% while helium drops %.1f%% (limit is a fifth of the helium drop)",
			current.Name(), next.Name(), dN2, math.Abs(dHe))
	default:
		res.Message = fmt.Sprintf("Switch %s to %s is within the rule of fifths", current.Name(), next.Name())
	}

	return res
}
