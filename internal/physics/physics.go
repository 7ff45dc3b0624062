package physics

import (
	"math"
	"time"

	"github.com/westphae/geomag/pkg/egm96"
	"github.com/westphae/geomag/pkg/wmm"
)

// Constants
const (
	R        = 287.058 // Specific gas constant for dry air (J/(kg·K))
	G        = 9.80665 // Gravity (m/s^2)
	T0       = 288.15  // Standard Sea Level Temperature (K)
	P0       = 1013.25 // Standard Sea Level Pressure (hPa)
	L        = 0.0065  // Temperature Lapse Rate (K/m) in Troposphere
	FeetToM  = 0.3048
	HPaToBar = 0.001

	// ISA Layer Boundaries
	TropopauseAltM    = 11000.0 // 11 km
	StratosphereTempK = 216.65  // Constant temperature in Stratosphere
	TropopausePress   = 226.32  // Pressure at Tropopause (hPa)
)

// SeaLevelBar is the standard surface pressure in bar
const SeaLevelBar = P0 * HPaToBar

// AltitudeToPressure converts pressure altitude in feet to pressure in hPa
// Uses Standard Atmosphere model, supporting Troposphere and Stratosphere
func AltitudeToPressure(altFt float64) float64 {
	altM := altFt * FeetToM
	if altM < 0 {
		altM = 0
	}

	if altM <= TropopauseAltM {
		// P = P0 * (1 - L*h/T0)^(g/RL)
		exponent := G / (R * L)
		base := 1 - (L * altM / T0)
		return P0 * math.Pow(base, exponent)
	}

	// P = P_trop * exp( -g*(h - h_trop) / (R * T_strat) )
	relAlt := altM - TropopauseAltM
	exponent := -(G * relAlt) / (R * StratosphereTempK)
	return TropopausePress * math.Exp(exponent)
}

// SurfacePressureBar returns the standard atmospheric pressure (bar) at a dive
// site elevation in meters. Sites at or below sea level get sea level pressure.
func SurfacePressureBar(elevationM float64) float64 {
	return AltitudeToPressure(elevationM/FeetToM) * HPaToBar
}

// AltitudeFactor is the ratio of sea level to site surface pressure (>= 1)
func AltitudeFactor(elevationM float64) float64 {
	surface := SurfacePressureBar(elevationM)
	if surface <= 0 {
		return 1
	}
	return SeaLevelBar / surface
}

// TheoreticalOceanDepth converts an actual depth at altitude into the
// sea-level depth with the same pressure ratio, for use with sea-level tables
func TheoreticalOceanDepth(depthM, elevationM float64) float64 {
	return depthM * AltitudeFactor(elevationM)
}

// MagneticDeclination returns the magnetic declination at a dive site for
// compass navigation, in degrees (+East, -West)
func MagneticDeclination(lat, lon, elevationM float64, date time.Time) float64 {
	loc := egm96.NewLocationGeodetic(lat, lon, elevationM)

	mag, err := wmm.CalculateWMMMagneticField(loc, date)
	if err != nil {
		// Outside the model's validity window
		return 0.0
	}

	return mag.D()
}

// MagneticBearing converts a true bearing into the compass bearing to steer
func MagneticBearing(trueBearingDeg, declinationDeg float64) float64 {
	b := math.Mod(trueBearingDeg-declinationDeg, 360)
	if b < 0 {
		b += 360
	}
	return b
}
