package mpc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scenario struct {
	vRef          float64
	xInit         float64
	yInit         float64
	psiInit       float64
	curvatureInit float64
	polyShift     float64
}

func straight() scenario {
	return scenario{vRef: 30}
}

func references(polyShift float64) ([]float64, []float64) {
	yPts := make([]float64, LAT_MPC_N+1)
	headingPts := make([]float64, LAT_MPC_N+1)
	for i := range yPts {
		yPts[i] = polyShift
	}
	return yPts, headingPts
}

func runMpc(t *testing.T, s scenario) Solution {
	t.Helper()
	lat, err := New(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, lat.SetWeights(1, 1, 1))

	yPts, headingPts := references(s.polyShift)
	x0 := NewState(s.xInit, s.yInit, s.psiInit, s.curvatureInit)

	var sol Solution
	for range 20 {
		sol, err = lat.Run(x0, s.vRef, 0, yPts, headingPts)
		require.NoError(t, err)
	}
	return sol
}

func assertNull(t *testing.T, sol Solution, tol float64) {
	t.Helper()
	for i, x := range sol.States {
		assert.InDelta(t, 0, x.LateralOffset(), tol, "lateral offset stage %d", i)
		assert.InDelta(t, 0, x.HeadingError(), tol, "heading stage %d", i)
		assert.InDelta(t, 0, x.Curvature(), tol, "curvature stage %d", i)
	}
}

func assertMirrored(t *testing.T, a, b Solution, tol float64) {
	t.Helper()
	for i := range a.States {
		assert.InDelta(t, a.States[i].LateralOffset(), -b.States[i].LateralOffset(), tol, "lateral offset stage %d", i)
		assert.InDelta(t, a.States[i].HeadingError(), -b.States[i].HeadingError(), tol, "heading stage %d", i)
		assert.InDelta(t, a.States[i].Curvature(), -b.States[i].Curvature(), tol, "curvature stage %d", i)
		assert.Equal(t, a.States[i].PathProgress(), b.States[i].PathProgress(), "path progress stage %d", i)
	}
	for j := range a.Controls {
		assert.InDelta(t, a.Controls[j], -b.Controls[j], tol, "control %d", j)
	}
	assert.Equal(t, a.Status, b.Status)
}

func TestStraight(t *testing.T) {
	sol := runMpc(t, straight())
	assertNull(t, sol, 1e-6)
	assert.Equal(t, StatusSolved, sol.Status)
}

func TestStraightAtStandstill(t *testing.T) {
	s := straight()
	s.vRef = 0
	sol := runMpc(t, s)
	assertNull(t, sol, 1e-6)
}

func TestYSymmetry(t *testing.T) {
	a, b := straight(), straight()
	a.yInit, b.yInit = -0.5, 0.5
	assertMirrored(t, runMpc(t, a), runMpc(t, b), 1e-6)
}

func TestPolySymmetry(t *testing.T) {
	a, b := straight(), straight()
	a.polyShift, b.polyShift = -1, 1
	assertMirrored(t, runMpc(t, a), runMpc(t, b), 1e-6)
}

func TestCurvatureSymmetry(t *testing.T) {
	a, b := straight(), straight()
	a.curvatureInit, b.curvatureInit = -0.1, 0.1
	assertMirrored(t, runMpc(t, a), runMpc(t, b), 1e-6)
}

func TestPsiSymmetry(t *testing.T) {
	a, b := straight(), straight()
	a.psiInit, b.psiInit = -0.1, 0.1
	assertMirrored(t, runMpc(t, a), runMpc(t, b), 1e-6)
}

func TestNoOvershoot(t *testing.T) {
	for _, v := range []float64{0, 5, 15, 30, 40} {
		s := straight()
		s.vRef = v
		s.yInit = 1
		sol := runMpc(t, s)
		for i, x := range sol.States {
			assert.GreaterOrEqual(t, s.yInit, math.Abs(x.LateralOffset()), "v=%v stage %d", v, i)
		}
	}
}

func TestCurvatureFeasibility(t *testing.T) {
	cfg := DefaultConfig()
	cases := []scenario{
		{vRef: 30, polyShift: 3},
		{vRef: 10, psiInit: 0.3},
		{vRef: 5, yInit: -2},
		{vRef: 1, polyShift: -4},
	}
	for _, s := range cases {
		sol := runMpc(t, s)
		limit := CurvatureLimit(s.vRef, 0, cfg)
		assert.Equal(t, limit, sol.CurvatureLimit)
		for i := 1; i <= LAT_MPC_N; i++ {
			assert.LessOrEqual(t, math.Abs(sol.States[i].Curvature()), limit+1e-9, "%+v stage %d", s, i)
		}
		for j, u := range sol.Controls {
			assert.LessOrEqual(t, math.Abs(u), cfg.MaxCurvatureRate, "%+v control %d", s, j)
		}
	}
}

func TestTurningRadiusTightensBound(t *testing.T) {
	lat, err := New(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, lat.SetWeights(1, 1, 1))
	yPts, headingPts := references(2)

	var sol Solution
	for range 20 {
		sol, err = lat.Run(State{}, 2, 20, yPts, headingPts)
		require.NoError(t, err)
	}
	assert.InDelta(t, 0.05, sol.CurvatureLimit, 1e-12)
	for i := 1; i <= LAT_MPC_N; i++ {
		assert.LessOrEqual(t, math.Abs(sol.States[i].Curvature()), 0.05+1e-9)
	}
}

func TestInfeasibleCurvatureIsRelaxed(t *testing.T) {
	s := straight()
	s.curvatureInit = 0.1
	sol := runMpc(t, s)

	assert.Equal(t, StatusInfeasible, sol.Status)
	assert.False(t, sol.Status.Ok())
	assert.Equal(t, 0.1, sol.States[0].Curvature())
	for i, x := range sol.States {
		require.True(t, x.IsFinite(), "stage %d", i)
	}
	cfg := DefaultConfig()
	for i := 1; i <= LAT_MPC_N; i++ {
		envelope := math.Max(sol.CurvatureLimit, 0.1-cfg.MaxCurvatureRate*sol.Tidx[i])
		assert.LessOrEqual(t, math.Abs(sol.States[i].Curvature()), envelope+1e-8, "stage %d", i)
	}
}

func TestWeightsRequired(t *testing.T) {
	lat, err := New(DefaultConfig())
	require.NoError(t, err)
	yPts, headingPts := references(0)

	_, err = lat.Run(State{}, 10, 0, yPts, headingPts)
	assert.ErrorIs(t, err, ErrWeightsNotSet)
}

func TestSetWeights(t *testing.T) {
	lat, err := New(DefaultConfig())
	require.NoError(t, err)

	assert.ErrorIs(t, lat.SetWeights(0, 0, 0), ErrInvalidWeights)
	assert.ErrorIs(t, lat.SetWeights(-1, 1, 1), ErrInvalidWeights)
	assert.ErrorIs(t, lat.SetWeights(1, math.NaN(), 1), ErrInvalidWeights)
	_, set := lat.Weights()
	assert.False(t, set)

	require.NoError(t, lat.SetWeights(1, 2, 3))
	assert.ErrorIs(t, lat.SetWeights(1, math.Inf(1), 1), ErrInvalidWeights)
	w, set := lat.Weights()
	assert.True(t, set)
	assert.Equal(t, Weights{Path: 1, Heading: 2, CurvatureRate: 3}, w)
}

func TestContractRejectionLeavesStateUntouched(t *testing.T) {
	lat, err := New(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, lat.SetWeights(1, 1, 1))
	yPts, headingPts := references(0.5)
	x0 := NewState(0, 0.2, 0, 0)
	for range 3 {
		_, err = lat.Run(x0, 20, 0, yPts, headingPts)
		require.NoError(t, err)
	}
	before := lat.Solution()

	cases := []struct {
		name       string
		x0         State
		v          float64
		radius     float64
		yPts       []float64
		headingPts []float64
		err        error
	}{
		{"short reference", x0, 20, 0, yPts[:LAT_MPC_N], headingPts, ErrReferenceLength},
		{"long headings", x0, 20, 0, yPts, append(headingPts, 0), ErrReferenceLength},
		{"nan state", NewState(0, math.NaN(), 0, 0), 20, 0, yPts, headingPts, ErrNonFiniteInput},
		{"inf speed", x0, math.Inf(1), 0, yPts, headingPts, ErrNonFiniteInput},
		{"nan radius", x0, 20, math.NaN(), yPts, headingPts, ErrNonFiniteInput},
		{"negative speed", x0, -1, 0, yPts, headingPts, ErrNegativeSpeed},
		{"nan reference", x0, 20, 0, append(append([]float64{}, yPts[:LAT_MPC_N]...), math.NaN()), headingPts, ErrNonFiniteInput},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			sol, err := lat.Run(c.x0, c.v, c.radius, c.yPts, c.headingPts)
			assert.ErrorIs(t, err, c.err)
			assert.Equal(t, before, sol)
			assert.Equal(t, before, lat.Solution())
		})
	}

	after, err := lat.Run(x0, 20, 0, yPts, headingPts)
	require.NoError(t, err)
	reference, err := New(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, reference.SetWeights(1, 1, 1))
	var expected Solution
	for range 4 {
		expected, err = reference.Run(x0, 20, 0, yPts, headingPts)
		require.NoError(t, err)
	}
	assert.Equal(t, expected.States, after.States)
	assert.Equal(t, expected.Controls, after.Controls)
}

func TestStaleResolveIsFixedPoint(t *testing.T) {
	s := straight()
	s.yInit = 0.7
	s.psiInit = -0.05
	lat, err := New(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, lat.SetWeights(1, 1, 1))
	yPts, headingPts := references(0.2)
	x0 := NewState(0, s.yInit, s.psiInit, 0)

	for range 20 {
		_, err = lat.Run(x0, s.vRef, 0, yPts, headingPts)
		require.NoError(t, err)
	}
	first, err := lat.Run(x0, s.vRef, 0, yPts, headingPts)
	require.NoError(t, err)
	second, err := lat.Run(x0, s.vRef, 0, yPts, headingPts)
	require.NoError(t, err)

	for i := range first.States {
		for j := range NX {
			assert.InDelta(t, first.States[i][j], second.States[i][j], 1e-9, "stage %d index %d", i, j)
		}
	}
	for j := range first.Controls {
		assert.InDelta(t, first.Controls[j], second.Controls[j], 1e-9)
	}
}

func TestSolutionIsDynamicallyConsistentOnceConverged(t *testing.T) {
	s := straight()
	s.vRef = 15
	s.yInit = 0.8
	sol := runMpc(t, s)
	t0, vModel := StageTimes(s.vRef, DefaultConfig())
	dts := stageSteps(&t0)
	for i := range LAT_MPC_N {
		next := Propagate(sol.States[i], sol.Controls[i], dts[i], vModel)
		for j := range NX {
			assert.InDelta(t, next[j], sol.States[i+1][j], 1e-6, "stage %d index %d", i, j)
		}
	}
	assert.Equal(t, t0, sol.Tidx)
}

func maxChange(a, b Solution) float64 {
	var d float64
	for i := range a.States {
		for j := range NX {
			d = math.Max(d, math.Abs(a.States[i][j]-b.States[i][j]))
		}
	}
	return d
}

func TestLargeOffsetAtLowSpeedSettles(t *testing.T) {
	for _, v := range []float64{0, 2} {
		lat, err := New(DefaultConfig())
		require.NoError(t, err)
		require.NoError(t, lat.SetWeights(1, 1, 1))
		yPts, headingPts := references(0)
		x0 := NewState(0, 10, 0, 0)

		prev, err := lat.Run(x0, v, 0, yPts, headingPts)
		require.NoError(t, err)
		settled := -1
		for call := 1; call <= 60; call++ {
			sol, err := lat.Run(x0, v, 0, yPts, headingPts)
			require.NoError(t, err)
			require.True(t, sol.Status.Ok(), "v=%v call %d: %s", v, call, sol.Status)
			change := maxChange(sol, prev)
			prev = sol
			if change < 1e-6 {
				settled = call
				break
			}
		}
		require.NotEqual(t, -1, settled, "v=%v still moving after 60 calls", v)

		// settled plans stay put instead of alternating
		for call := range 20 {
			sol, err := lat.Run(x0, v, 0, yPts, headingPts)
			require.NoError(t, err)
			assert.Less(t, maxChange(sol, prev), 1e-6, "v=%v call %d after settling", v, call)
			prev = sol
		}
	}
}

func TestReset(t *testing.T) {
	s := straight()
	s.yInit = 1
	lat, err := New(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, lat.SetWeights(1, 1, 1))
	yPts, headingPts := references(0)

	_, err = lat.Run(NewState(0, 1, 0, 0), 30, 0, yPts, headingPts)
	require.NoError(t, err)
	lat.Reset()

	assert.Equal(t, [LAT_MPC_N + 1]State{}, lat.Solution().States)
	_, set := lat.Weights()
	assert.True(t, set)
}

func TestQPBudgetIsReported(t *testing.T) {
	cfg := DefaultConfig()
	cfg.QPMaxIterations = 1
	lat, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, lat.SetWeights(1, 1, 1))
	yPts, headingPts := references(3)

	sol, err := lat.Run(State{}, 30, 0, yPts, headingPts)
	require.NoError(t, err)
	assert.Equal(t, StatusMaxIterations, sol.Status)
	assert.True(t, sol.Status.Ok())
	for i := 1; i <= LAT_MPC_N; i++ {
		assert.LessOrEqual(t, math.Abs(sol.States[i].Curvature()), sol.CurvatureLimit+1e-9)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxCurvatureRate = 0
	_, err := New(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	for _, budget := range []int{0, -1, MAX_QP_ITERATIONS + 1} {
		cfg = DefaultConfig()
		cfg.QPMaxIterations = budget
		_, err = New(cfg)
		assert.ErrorIs(t, err, ErrInvalidConfig, "budget %d", budget)
	}
	cfg = DefaultConfig()
	cfg.QPMaxIterations = MAX_QP_ITERATIONS
	_, err = New(cfg)
	assert.NoError(t, err)
}
