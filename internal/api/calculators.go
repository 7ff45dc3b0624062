package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kargig/divemap-sub000/internal/calc"
	"github.com/kargig/divemap-sub000/internal/config"
	"github.com/kargig/divemap-sub000/internal/gas"
	"github.com/kargig/divemap-sub000/internal/physics"
	"github.com/kargig/divemap-sub000/internal/site"
)

// Calculator names, shared by the HTTP routes and websocket message types
const (
	CalcMOD      = "mod"
	CalcBestMix  = "best_mix"
	CalcSAC      = "sac"
	CalcGasPlan  = "gas_plan"
	CalcFillCost = "fill_cost"
	CalcICD      = "icd"
	CalcZFactor  = "z_factor"
)

var (
	// ErrUnknownCalculator is returned for a calculator name that does not exist
	ErrUnknownCalculator = errors.New("unknown calculator")
	// ErrOutOfRange is returned when inputs drive a result to Inf or NaN
	ErrOutOfRange = errors.New("inputs produce a result outside the representable range")
)

// MODRequest is the input of the MOD calculator. With DepthM set the
// response also reports pO2 and END at that depth.
type MODRequest struct {
	Gas    gas.Mix  `json:"gas"`
	MaxPO2 *float64 `json:"max_po2,omitempty"`
	DepthM *float64 `json:"depth_m,omitempty"`
}

// MODResult extends the MOD/END limits with values at a planned depth
type MODResult struct {
	calc.MODResult
	DepthM      *float64 `json:"depth_m,omitempty"`
	PO2AtDepth  *float64 `json:"po2_at_depth,omitempty"`
	ENDAtDepthM *float64 `json:"end_at_depth_m,omitempty"`
}

// Altitude selects the altitude correction for depth-based calculators:
// the elevation of a configured site or an explicit elevation. Depths are
// converted to their theoretical ocean depth before calculating.
type Altitude struct {
	SiteID     string   `json:"site_id,omitempty"`
	ElevationM *float64 `json:"elevation_m,omitempty"`
}

// BestMixRequest is the input of the best mix calculator
type BestMixRequest struct {
	DepthM  float64  `json:"depth_m"`
	MaxPO2  *float64 `json:"max_po2,omitempty"`
	MaxENDm *float64 `json:"max_end_m,omitempty"`
}

// SACRequest is the input of the SAC calculator
type SACRequest struct {
	DepthM         float64      `json:"depth_m"`
	TimeMin        float64      `json:"time_min"`
	Cylinder       gas.Cylinder `json:"cylinder"`
	EndPressureBar float64      `json:"end_pressure_bar"`
	Gas            *gas.Mix     `json:"gas,omitempty"` // air when omitted
	Altitude
}

// GasPlanRequest is the input of the gas planner
type GasPlanRequest struct {
	DepthM       float64      `json:"depth_m"`
	TimeMin      float64      `json:"time_min"`
	SACLPerMin   *float64     `json:"sac_l_per_min,omitempty"`
	Cylinder     gas.Cylinder `json:"cylinder"`
	RuleOfThirds *bool        `json:"rule_of_thirds,omitempty"`
	Altitude
}

// FillCostRequest is the input of the fill pricer
type FillCostRequest struct {
	Cylinder        gas.Cylinder `json:"cylinder"`
	Gas             gas.Mix      `json:"gas"`
	O2PricePerLiter *float64     `json:"o2_price_per_liter,omitempty"`
	HePricePerLiter *float64     `json:"he_price_per_liter,omitempty"`
}

// ICDRequest is the input of the ICD checker
type ICDRequest struct {
	CurrentGas gas.Mix `json:"current_gas"`
	NextGas    gas.Mix `json:"next_gas"`
}

// ZFactorRequest is the input of the compressibility calculator
type ZFactorRequest struct {
	PressureBar        float64 `json:"pressure_bar"`
	CylinderSizeLiters float64 `json:"cylinder_size_liters"`
	Gas                gas.Mix `json:"gas"`
}

// Response wraps a calculator result with labels and rounded display values
type Response struct {
	Calculator string             `json:"calculator"`
	Result     any                `json:"result"`
	Gas        string             `json:"gas,omitempty"`
	Display    map[string]float64 `json:"display,omitempty"`
}

// SiteLookup resolves configured dive sites
type SiteLookup interface {
	Get(id string) (config.Site, bool)
}

// Calculators runs calculator requests against the configured defaults
type Calculators struct {
	defaults config.CalculatorsConfig
	sites    SiteLookup
}

// NewCalculators creates a calculator dispatcher
func NewCalculators(defaults config.CalculatorsConfig, sites SiteLookup) *Calculators {
	return &Calculators{defaults: defaults, sites: sites}
}

// Run decodes data into the request type of the named calculator and computes it.
// Results that cannot be encoded as JSON numbers are rejected.
func (c *Calculators) Run(name string, data json.RawMessage) (*Response, error) {
	resp, err := c.run(name, data)
	if err != nil {
		return nil, err
	}
	if _, err := json.Marshal(resp); err != nil {
		var unsupported *json.UnsupportedValueError
		if errors.As(err, &unsupported) {
			return nil, fmt.Errorf("%w: %s", ErrOutOfRange, unsupported.Str)
		}
		return nil, err
	}
	return resp, nil
}

func (c *Calculators) run(name string, data json.RawMessage) (*Response, error) {
	switch name {
	case CalcMOD:
		var req MODRequest
		if err := decode(data, &req); err != nil {
			return nil, err
		}
		return c.MOD(req)
	case CalcBestMix:
		var req BestMixRequest
		if err := decode(data, &req); err != nil {
			return nil, err
		}
		return c.BestMix(req)
	case CalcSAC:
		var req SACRequest
		if err := decode(data, &req); err != nil {
			return nil, err
		}
		return c.SAC(req)
	case CalcGasPlan:
		var req GasPlanRequest
		if err := decode(data, &req); err != nil {
			return nil, err
		}
		return c.GasPlan(req)
	case CalcFillCost:
		var req FillCostRequest
		if err := decode(data, &req); err != nil {
			return nil, err
		}
		return c.FillCost(req)
	case CalcICD:
		var req ICDRequest
		if err := decode(data, &req); err != nil {
			return nil, err
		}
		return c.ICD(req)
	case CalcZFactor:
		var req ZFactorRequest
		if err := decode(data, &req); err != nil {
			return nil, err
		}
		return c.ZFactor(req)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCalculator, name)
	}
}

func decode(data json.RawMessage, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("missing request data")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// oceanDepth applies the requested altitude correction to depthM. The
// second return reports whether a correction was requested.
func (c *Calculators) oceanDepth(depthM float64, alt Altitude) (float64, bool, error) {
	var elevationM float64
	switch {
	case alt.SiteID != "" && alt.ElevationM != nil:
		return 0, false, fmt.Errorf("site_id and elevation_m are mutually exclusive")
	case alt.SiteID != "":
		var s config.Site
		ok := false
		if c.sites != nil {
			s, ok = c.sites.Get(alt.SiteID)
		}
		if !ok {
			return 0, false, fmt.Errorf("%w: %s", site.ErrNotFound, alt.SiteID)
		}
		elevationM = s.ElevationM
	case alt.ElevationM != nil:
		elevationM = *alt.ElevationM
	default:
		return depthM, false, nil
	}
	return physics.TheoreticalOceanDepth(depthM, elevationM), true, nil
}

func validateMix(label string, m gas.Mix) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	return nil
}

// MOD computes maximum operating and equivalent narcotic depth
func (c *Calculators) MOD(req MODRequest) (*Response, error) {
	if err := validateMix("gas", req.Gas); err != nil {
		return nil, err
	}
	res := MODResult{MODResult: calc.CalculateMOD(req.Gas, orDefault(req.MaxPO2, c.defaults.MaxPO2))}
	display := map[string]float64{
		"mod_m": calc.Round(res.MODMeters, 1),
		"end_m": calc.Round(res.ENDMeters, 1),
	}
	if req.DepthM != nil {
		depth := *req.DepthM
		po2 := calc.PO2AtDepth(req.Gas, depth)
		end := calc.ENDAtDepth(req.Gas, depth)
		res.DepthM, res.PO2AtDepth, res.ENDAtDepthM = &depth, &po2, &end
		display["po2_at_depth"] = calc.Round(po2, 2)
		display["end_at_depth_m"] = calc.Round(end, 1)
	}

	return &Response{
		Calculator: CalcMOD,
		Result:     res,
		Gas:        req.Gas.Name(),
		Display:    display,
	}, nil
}

// BestMix computes the best mix for a target depth
func (c *Calculators) BestMix(req BestMixRequest) (*Response, error) {
	mix := calc.BestMix(req.DepthM, orDefault(req.MaxPO2, c.defaults.MaxPO2), orDefault(req.MaxENDm, c.defaults.MaxENDMeters))
	return &Response{
		Calculator: CalcBestMix,
		Result:     mix,
		Gas:        mix.Name(),
		Display: map[string]float64{
			"o2_percent": calc.Round(mix.O2Percent, 0),
			"he_percent": calc.Round(mix.HePercent, 0),
		},
	}, nil
}

// SAC computes ideal and real surface air consumption
func (c *Calculators) SAC(req SACRequest) (*Response, error) {
	mix := gas.Air
	if req.Gas != nil {
		mix = *req.Gas
	}
	if err := validateMix("gas", mix); err != nil {
		return nil, err
	}
	depth, corrected, err := c.oceanDepth(req.DepthM, req.Altitude)
	if err != nil {
		return nil, err
	}
	res := calc.CalculateSAC(depth, req.TimeMin, req.Cylinder, req.EndPressureBar, mix)
	display := map[string]float64{
		"ideal_sac_l_per_min": calc.Round(res.IdealSAC, 1),
		"real_sac_l_per_min":  calc.Round(res.RealSAC, 1),
	}
	if corrected {
		display["ocean_depth_m"] = calc.Round(depth, 1)
	}

	return &Response{
		Calculator: CalcSAC,
		Result:     res,
		Gas:        mix.Name(),
		Display:    display,
	}, nil
}

// GasPlan computes the gas needed for a dive
func (c *Calculators) GasPlan(req GasPlanRequest) (*Response, error) {
	thirds := c.defaults.RuleOfThirds
	if req.RuleOfThirds != nil {
		thirds = *req.RuleOfThirds
	}
	depth, corrected, err := c.oceanDepth(req.DepthM, req.Altitude)
	if err != nil {
		return nil, err
	}
	res := calc.PlanGas(depth, req.TimeMin, orDefault(req.SACLPerMin, c.defaults.DefaultSAC), req.Cylinder, thirds)
	display := map[string]float64{
		"total_gas_l":            calc.Round(res.TotalGas, 0),
		"total_pressure_bar":     calc.Round(res.TotalPressureBar, 0),
		"remaining_pressure_bar": calc.Round(res.RemainingPressure, 0),
	}
	if corrected {
		display["ocean_depth_m"] = calc.Round(depth, 1)
	}

	return &Response{
		Calculator: CalcGasPlan,
		Result:     res,
		Display:    display,
	}, nil
}

// FillCost prices a partial-pressure fill
func (c *Calculators) FillCost(req FillCostRequest) (*Response, error) {
	if err := validateMix("gas", req.Gas); err != nil {
		return nil, err
	}
	res := calc.CalculateFillCost(req.Cylinder, req.Gas,
		orDefault(req.O2PricePerLiter, c.defaults.O2PricePerLiter),
		orDefault(req.HePricePerLiter, c.defaults.HePricePerLiter))
	return &Response{
		Calculator: CalcFillCost,
		Result:     res,
		Gas:        req.Gas.Name(),
		Display: map[string]float64{
			"o2_cost":    calc.Round(res.O2Cost, 2),
			"he_cost":    calc.Round(res.HeCost, 2),
			"total_cost": calc.Round(res.TotalCost, 2),
		},
	}, nil
}

// ICD checks a gas switch against the rule of fifths
func (c *Calculators) ICD(req ICDRequest) (*Response, error) {
	if err := validateMix("current_gas", req.CurrentGas); err != nil {
		return nil, err
	}
	if err := validateMix("next_gas", req.NextGas); err != nil {
		return nil, err
	}
	return &Response{
		Calculator: CalcICD,
		Result:     calc.CheckICD(req.CurrentGas, req.NextGas),
		Gas:        req.CurrentGas.Name() + " -> " + req.NextGas.Name(),
	}, nil
}

// ZFactor reports compressibility and the real and ideal gas content of a cylinder
func (c *Calculators) ZFactor(req ZFactorRequest) (*Response, error) {
	if err := validateMix("gas", req.Gas); err != nil {
		return nil, err
	}
	z := gas.ZFactor(req.PressureBar, req.Gas)
	realVol := gas.RealVolume(req.PressureBar, req.CylinderSizeLiters, req.Gas)
	idealVol := gas.IdealVolume(req.PressureBar, req.CylinderSizeLiters) / gas.AtmBar

	return &Response{
		Calculator: CalcZFactor,
		Result: map[string]float64{
			"z_factor":       z,
			"real_volume_l":  realVol,
			"ideal_volume_l": idealVol,
		},
		Gas: req.Gas.Name(),
		Display: map[string]float64{
			"z_factor":       calc.Round(z, 4),
			"real_volume_l":  calc.Round(realVol, 0),
			"ideal_volume_l": calc.Round(idealVol, 0),
		},
	}, nil
}
