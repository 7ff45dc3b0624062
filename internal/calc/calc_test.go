package calc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kargig/divemap-sub000/internal/gas"
)

func assertFinite(t *testing.T, name string, v float64) {
	t.Helper()
	assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "%s is not finite: %v", name, v)
}

func TestCalculateMOD_Nitrox32(t *testing.T) {
	res := CalculateMOD(gas.Nitrox(32), 1.4)

	assert.InDelta(t, 33.75, res.MODMeters, 1e-9)
	assert.Equal(t, 33.8, Round(res.MODMeters, 1))
	assert.InDelta(t, 4.375, res.AmbientPressureATA, 1e-9)
	// no helium: END equals MOD
	assert.InDelta(t, res.MODMeters, res.ENDMeters, 1e-9)
	assert.InDelta(t, 0.32, res.FO2, 1e-12)
	assert.Equal(t, 0.0, res.FHe)
}

func TestCalculateMOD_Trimix(t *testing.T) {
	res := CalculateMOD(gas.Trimix(18, 45), 1.4)

	assert.InDelta(t, 67.78, res.MODMeters, 0.005)
	assert.InDelta(t, 32.78, res.ENDMeters, 0.005)
	assert.Equal(t, 67.8, Round(res.MODMeters, 1))
	assert.Equal(t, 32.8, Round(res.ENDMeters, 1))
}

func TestCalculateMOD_Degenerate(t *testing.T) {
	assert.Equal(t, MODResult{}, CalculateMOD(gas.Mix{}, 1.4))
	assert.Equal(t, MODResult{}, CalculateMOD(gas.Mix{O2Percent: -5, HePercent: 50}, 1.4))

	// a pO2 limit below the surface partial pressure clamps to the surface
	res := CalculateMOD(gas.Air, 0.1)
	assert.Equal(t, 0.0, res.MODMeters)
	assert.Equal(t, 0.0, res.ENDMeters)
}

func TestPO2AndEND(t *testing.T) {
	assert.InDelta(t, 1.26, PO2AtDepth(gas.Nitrox(32), 29.375), 1e-9)
	assert.InDelta(t, 0.21, PO2AtDepth(gas.Air, 0), 1e-12)
	assert.Equal(t, 0.0, PO2AtDepth(gas.Air, -20))

	assert.InDelta(t, 30.0, ENDAtDepth(gas.Air, 30), 1e-9)
	assert.InDelta(t, 20.0, ENDAtDepth(gas.Trimix(21, 50), 50), 1e-9)
}

func TestBestMix(t *testing.T) {
	mix := BestMix(40, 1.4, 30)
	assert.InDelta(t, 28, mix.O2Percent, 1e-9)
	assert.InDelta(t, 20, mix.HePercent, 1e-9)

	// END already satisfied: nitrox
	mix = BestMix(30, 1.4, 30)
	assert.InDelta(t, 35, mix.O2Percent, 1e-9)
	assert.Equal(t, 0.0, mix.HePercent)

	mix = BestMix(100, 1.4, 30)
	assert.InDelta(t, 12.727, mix.O2Percent, 1e-3)
	assert.InDelta(t, 63.636, mix.HePercent, 1e-3)
	assert.NoError(t, mix.Validate())

	// surface: pure oxygen, helium capped by the remaining fraction
	mix = BestMix(0, 1.4, 30)
	assert.Equal(t, 100.0, mix.O2Percent)
	assert.Equal(t, 0.0, mix.HePercent)

	assert.Equal(t, gas.Mix{}, BestMix(-10, 1.4, 30))
	assert.Equal(t, gas.Mix{}, BestMix(30, 0, 30))
}

func TestCalculateSAC(t *testing.T) {
	start := gas.Cylinder{SizeLiters: 12, PressureBar: 200}
	res := CalculateSAC(20, 30, start, 100, gas.Air)

	assert.InDelta(t, 13.3333, res.IdealSAC, 1e-4)

	want := (gas.RealVolume(200, 12, gas.Air) - gas.RealVolume(100, 12, gas.Air)) / 30 / 3
	assert.InDelta(t, want, res.RealSAC, 1e-9)
	assert.InDelta(t, 12.18, res.RealSAC, 0.01)
	assert.NotEqual(t, res.IdealSAC, res.RealSAC)
}

func TestCalculateSAC_Guards(t *testing.T) {
	start := gas.Cylinder{SizeLiters: 12, PressureBar: 200}

	assert.Equal(t, SACResult{}, CalculateSAC(20, 0, start, 100, gas.Air))
	assert.Equal(t, SACResult{}, CalculateSAC(20, -5, start, 100, gas.Air))
	assert.Equal(t, SACResult{}, CalculateSAC(-10, 30, start, 100, gas.Air))
	assert.Equal(t, SACResult{}, CalculateSAC(-25, 30, start, 100, gas.Air))

	// end pressure above start: nothing consumed
	res := CalculateSAC(20, 30, start, 250, gas.Air)
	assert.Equal(t, 0.0, res.IdealSAC)
	assert.Equal(t, 0.0, res.RealSAC)

	// negative end pressure counts as an empty cylinder in both models
	res = CalculateSAC(20, 30, start, -50, gas.Air)
	empty := CalculateSAC(20, 30, start, 0, gas.Air)
	assert.Equal(t, empty, res)
	assert.InDelta(t, 200.0*12/30/3, res.IdealSAC, 1e-9)
	assert.InDelta(t, gas.RealVolume(200, 12, gas.Air)/30/3, res.RealSAC, 1e-9)

	res = CalculateSAC(20, 30, gas.Cylinder{}, 0, gas.Air)
	assert.Equal(t, 0.0, res.IdealSAC)
	assert.Equal(t, 0.0, res.RealSAC)
}

func TestCalculateFillCost_Trimix(t *testing.T) {
	cyl := gas.Cylinder{SizeLiters: 12, PressureBar: 232}
	res := CalculateFillCost(cyl, gas.Trimix(21, 35), 0.01, 0.05)

	assert.InDelta(t, 2784, res.TotalVolume, 1e-9)
	assert.InDelta(t, 974.4, res.TotalHe, 1e-9)
	assert.InDelta(t, 1550.5823, res.AirVolume, 1e-4)
	assert.InDelta(t, 325.6223, res.AirO2, 1e-4)
	assert.InDelta(t, 584.64, res.TotalO2, 1e-9)
	assert.InDelta(t, 259.0177, res.AddedO2, 1e-4)
	assert.InDelta(t, 2.5902, res.O2Cost, 1e-4)
	assert.InDelta(t, 48.72, res.HeCost, 1e-9)
	assert.InDelta(t, res.O2Cost+res.HeCost, res.TotalCost, 1e-12)
}

func TestCalculateFillCost_AirNeedsNoOxygen(t *testing.T) {
	cyl := gas.Cylinder{SizeLiters: 12, PressureBar: 200}
	res := CalculateFillCost(cyl, gas.Air, 0.01, 0.05)

	assert.InDelta(t, 0, res.AddedO2, 1e-9)
	assert.Equal(t, 0.0, res.TotalHe)
	assert.InDelta(t, 0, res.TotalCost, 1e-9)
	assert.GreaterOrEqual(t, res.TotalCost, 0.0)
	assert.InDelta(t, 2400, res.AirVolume, 1e-9)
}

func TestCalculateFillCost_HeliumProportional(t *testing.T) {
	cyl := gas.Cylinder{SizeLiters: 10, PressureBar: 200}
	for _, he := range []float64{0, 10, 35, 70} {
		res := CalculateFillCost(cyl, gas.Trimix(21, he), 0.01, 0.05)
		assert.InDelta(t, 2000*he/100, res.TotalHe, 1e-9)
		assert.GreaterOrEqual(t, res.AddedO2, 0.0)
		assert.GreaterOrEqual(t, res.TotalCost, 0.0)
	}
}

func TestCalculateFillCost_Degenerate(t *testing.T) {
	assert.Equal(t, FillCost{}, CalculateFillCost(gas.Cylinder{PressureBar: 200}, gas.Nitrox(32), 0.01, 0.05))
	assert.Equal(t, FillCost{}, CalculateFillCost(gas.Cylinder{SizeLiters: 12}, gas.Nitrox(32), 0.01, 0.05))

	res := CalculateFillCost(gas.Cylinder{SizeLiters: 12, PressureBar: 200}, gas.Trimix(18, 45), -1, -1)
	assert.Equal(t, 0.0, res.TotalCost)

	// hypoxic oxygen fraction below what the air top-up brings
	res = CalculateFillCost(gas.Cylinder{SizeLiters: 12, PressureBar: 200}, gas.Trimix(10, 50), 0.01, 0.05)
	assert.Equal(t, 0.0, res.AddedO2)
}

func TestPlanGas_Simple(t *testing.T) {
	cyl := gas.Cylinder{SizeLiters: 12, PressureBar: 200}
	plan := PlanGas(20, 30, 15, cyl, false)

	assert.InDelta(t, 1350, plan.DiveGas, 1e-9)
	assert.Equal(t, 0.0, plan.ReserveGas)
	assert.InDelta(t, 1350, plan.TotalGas, 1e-9)
	assert.InDelta(t, 112.5, plan.TotalPressureBar, 1e-9)
	assert.Equal(t, 113.0, Round(plan.TotalPressureBar, 0))
	assert.True(t, plan.IsSafe)
	assert.InDelta(t, 87.5, plan.RemainingPressure, 1e-9)
}

func TestPlanGas_RuleOfThirds(t *testing.T) {
	cyl := gas.Cylinder{SizeLiters: 12, PressureBar: 200}
	plan := PlanGas(20, 30, 15, cyl, true)

	assert.InDelta(t, 2025, plan.TotalGas, 1e-9)
	assert.InDelta(t, 675, plan.ReserveGas, 1e-9)
	assert.InDelta(t, plan.DiveGas*0.5, plan.ReserveGas, 1e-9)
	assert.InDelta(t, 168.75, plan.TotalPressureBar, 1e-9)
	assert.Equal(t, 169.0, Round(plan.TotalPressureBar, 0))
	assert.True(t, plan.IsSafe)
}

func TestPlanGas_Unsafe(t *testing.T) {
	cyl := gas.Cylinder{SizeLiters: 12, PressureBar: 150}
	plan := PlanGas(20, 30, 15, cyl, true)

	assert.False(t, plan.IsSafe)
	assert.InDelta(t, -18.75, plan.RemainingPressure, 1e-9)
}

func TestPlanGas_Degenerate(t *testing.T) {
	plan := PlanGas(20, 30, 15, gas.Cylinder{PressureBar: 200}, true)
	assert.Equal(t, 0.0, plan.TotalPressureBar)
	assert.False(t, plan.IsSafe)
	assert.Equal(t, 200.0, plan.RemainingPressure)

	plan = PlanGas(20, 0, 15, gas.Cylinder{}, false)
	assert.True(t, plan.IsSafe)
	assert.Equal(t, 0.0, plan.TotalGas)
}

func TestCheckICD_TrimixToDeco(t *testing.T) {
	res := CheckICD(gas.Trimix(18, 45), gas.Nitrox(50))

	assert.Equal(t, 13.0, res.DeltaN2)
	assert.Equal(t, -45.0, res.DeltaHe)
	assert.True(t, res.Warning)
	assert.True(t, res.Applicable)
	assert.Contains(t, res.Message, "Tx18/45")
}

func TestCheckICD_NoHelium(t *testing.T) {
	res := CheckICD(gas.Air, gas.Nitrox(32))

	assert.Equal(t, 0.0, res.DeltaHe)
	assert.Equal(t, -11.0, res.DeltaN2)
	assert.False(t, res.Warning)
	assert.False(t, res.Applicable)

	// formula still evaluated when not applicable
	res = CheckICD(gas.Nitrox(32), gas.Air)
	assert.Equal(t, 11.0, res.DeltaN2)
	assert.True(t, res.Warning)
	assert.False(t, res.Applicable)
}

func TestCheckICD_BoundaryIsNotWarning(t *testing.T) {
	// N2 +5, He -25: exactly a fifth
	res := CheckICD(gas.Trimix(20, 40), gas.Trimix(40, 15))
	assert.Equal(t, 5.0, res.DeltaN2)
	assert.Equal(t, -25.0, res.DeltaHe)
	assert.False(t, res.Warning)

	res = CheckICD(gas.Trimix(20, 40), gas.Trimix(39, 15))
	assert.True(t, res.Warning)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 113.0, Round(112.5, 0))
	assert.Equal(t, 169.0, Round(168.75, 0))
	assert.Equal(t, 33.8, Round(33.75, 1))
	assert.Equal(t, -2.0, Round(-1.5, 0))
	assert.True(t, math.IsInf(Round(math.Inf(1), 1), 1))
}

func TestCalculators_NeverNonFinite(t *testing.T) {
	mixes := []gas.Mix{{}, gas.Air, gas.Trimix(10, 90), {O2Percent: 100, HePercent: 0}}
	cylinders := []gas.Cylinder{{}, {SizeLiters: 12}, {PressureBar: 200}, {SizeLiters: 12, PressureBar: 200}}
	values := []float64{-50, -10, 0, 0.5, 30, 200}

	for _, mix := range mixes {
		for _, cyl := range cylinders {
			for _, v := range values {
				mod := CalculateMOD(mix, v)
				assertFinite(t, "mod", mod.MODMeters)
				assertFinite(t, "end", mod.ENDMeters)
				assert.GreaterOrEqual(t, mod.MODMeters, 0.0)

				sac := CalculateSAC(v, v, cyl, v, mix)
				assertFinite(t, "ideal sac", sac.IdealSAC)
				assertFinite(t, "real sac", sac.RealSAC)
				assert.GreaterOrEqual(t, sac.IdealSAC, 0.0)
				assert.GreaterOrEqual(t, sac.RealSAC, 0.0)

				fill := CalculateFillCost(cyl, mix, v, v)
				assertFinite(t, "fill", fill.TotalCost)
				assert.GreaterOrEqual(t, fill.TotalCost, 0.0)

				plan := PlanGas(v, v, v, cyl, true)
				assertFinite(t, "plan pressure", plan.TotalPressureBar)
				assertFinite(t, "plan remaining", plan.RemainingPressure)

				icd := CheckICD(mix, gas.Air)
				assertFinite(t, "icd n2", icd.DeltaN2)
			}
		}
	}
}
