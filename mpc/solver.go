package mpc

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	rateRows      = 2 * LAT_MPC_N
	curvatureRows = 2 * LAT_MPC_N
)

// LateralMpc is a real time iteration solver for the lateral path tracking problem. Every Run
// performs one linearization and one QP solve around the trajectory returned by the previous Run.
// An instance belongs to a single control loop and is not safe for concurrent use.
type LateralMpc struct {
	cfg        Config
	weights    Weights
	weightsSet bool

	// warm start, the linearization point of the next Run
	xs [LAT_MPC_N + 1]State
	us [LAT_MPC_N]float64

	solution Solution
	// accepted fraction of the last QP step, the next Run tries twice this
	step float64

	lin    *LinearModel
	cond   *condensed
	qp     *activeSetQP
	bounds [LAT_MPC_N + 1]float64
	start  [LAT_MPC_N]float64
	update *mat.VecDense
}

func New(cfg Config) (*LateralMpc, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &LateralMpc{
		cfg:    cfg,
		lin:    NewLinearModel(),
		cond:   newCondensed(),
		qp:     newActiveSetQP(LAT_MPC_N, rateRows+curvatureRows, cfg.QPMaxIterations),
		update: mat.NewVecDense(NX, nil),
	}
	m.Reset()
	return m, nil
}

func (m *LateralMpc) Config() Config {
	return m.cfg
}

// Weights returns the configured cost weights and whether they were set.
func (m *LateralMpc) Weights() (Weights, bool) {
	return m.weights, m.weightsSet
}

// SetWeights replaces all three cost weights. Invalid weights leave the previous ones in place.
func (m *LateralMpc) SetWeights(path, heading, curvatureRate float64) error {
	w := Weights{Path: path, Heading: heading, CurvatureRate: curvatureRate}
	if err := w.Validate(); err != nil {
		return err
	}
	m.weights = w
	m.weightsSet = true
	return nil
}

// Solution returns a copy of the most recent solution.
func (m *LateralMpc) Solution() Solution {
	return m.solution
}

// Reset drops the warm start back to the zero trajectory. Weights are kept.
func (m *LateralMpc) Reset() {
	m.xs = [LAT_MPC_N + 1]State{}
	m.us = [LAT_MPC_N]float64{}
	m.step = 1
	m.solution = Solution{Status: StatusSolved}
}

func (m *LateralMpc) validate(x0 State, vEgo, turningRadius float64, yPts, headingPts []float64) error {
	if !m.weightsSet {
		return ErrWeightsNotSet
	}
	if len(yPts) != LAT_MPC_N+1 {
		return errors.Wrapf(ErrReferenceLength, "yPts has %d points, want %d", len(yPts), LAT_MPC_N+1)
	}
	if len(headingPts) != LAT_MPC_N+1 {
		return errors.Wrapf(ErrReferenceLength, "headingPts has %d points, want %d", len(headingPts), LAT_MPC_N+1)
	}
	if !x0.IsFinite() {
		return errors.Wrapf(ErrNonFiniteInput, "initial state %v", x0)
	}
	if !isFinite(vEgo) || !isFinite(turningRadius) {
		return errors.Wrapf(ErrNonFiniteInput, "vEgo=%v turningRadius=%v", vEgo, turningRadius)
	}
	if vEgo < 0 {
		return errors.Wrapf(ErrNegativeSpeed, "vEgo=%v", vEgo)
	}
	for i := range yPts {
		if !isFinite(yPts[i]) || !isFinite(headingPts[i]) {
			return errors.Wrapf(ErrNonFiniteInput, "reference point %d", i)
		}
	}
	return nil
}

// Run performs one real time iteration from the measured state x0 towards the reference
// (yPts, headingPts), each holding LAT_MPC_N+1 points. Contract violations are returned as errors
// and leave the solver untouched. Solver trouble is reported through Solution.Status.
func (m *LateralMpc) Run(x0 State, vEgo, turningRadius float64, yPts, headingPts []float64) (Solution, error) {
	if err := m.validate(x0, vEgo, turningRadius, yPts, headingPts); err != nil {
		return m.solution, err
	}
	start := time.Now()

	t, vModel := StageTimes(vEgo, m.cfg)
	dts := stageSteps(&t)
	limit := CurvatureLimit(vEgo, turningRadius, m.cfg)

	Linearize(&m.xs, &m.us, &dts, vModel, m.lin)
	m.cond.propagate(x0, &m.xs, m.lin)
	m.cond.cost(&m.xs, &m.us, yPts, headingPts, m.weights)

	relaxed := curvatureEnvelope(x0.Curvature(), limit, &t, m.cfg.MaxCurvatureRate, &m.bounds)
	m.constraints()
	m.feasibleStart(x0.Curvature(), &dts)

	status := StatusSolved
	iterations, err := m.qp.solve(m.start[:])
	switch {
	case errors.Is(err, errQPMaxIterations):
		status = StatusMaxIterations
	case err != nil:
		status = StatusNumericalError
	case relaxed:
		status = StatusInfeasible
	}
	if status == StatusMaxIterations && relaxed {
		status = StatusInfeasible
	}

	if status != StatusNumericalError {
		m.stepLength(x0, &dts, vModel, yPts, headingPts)
		xs, us, ok := m.compose(x0)
		if ok {
			m.xs, m.us = xs, us
			m.solution.States = xs
			m.solution.Controls = us
		} else {
			status = StatusNumericalError
		}
	}

	m.solution.Tidx = t
	m.solution.Status = status
	m.solution.QPIterations = iterations
	m.solution.CurvatureLimit = limit
	m.solution.SolveTime = time.Since(start)
	return m.solution, nil
}

// constraints fills the inequality rows of the QP in the control increments z:
//
//	rows [0, N)     u + z <= maxRate
//	rows [N, 2N)    -(u + z) <= maxRate
//	rows [2N, 3N)   k_i + G_i z <= bound_i     for stages i = 1..N
//	rows [3N, 4N)   -(k_i + G_i z) <= bound_i
func (m *LateralMpc) constraints() {
	q := m.qp
	q.A.Zero()
	maxRate := m.cfg.MaxCurvatureRate
	for j := range LAT_MPC_N {
		q.A.Set(j, j, 1)
		q.b.SetVec(j, maxRate-m.us[j])
		q.A.Set(LAT_MPC_N+j, j, -1)
		q.b.SetVec(LAT_MPC_N+j, maxRate+m.us[j])
	}
	for i := 1; i <= LAT_MPC_N; i++ {
		upper := rateRows + i - 1
		lower := rateRows + LAT_MPC_N + i - 1
		k := m.cond.predicted(&m.xs, i, CURV_IDX)
		for j := range LAT_MPC_N {
			g := m.cond.G[i].At(CURV_IDX, j)
			q.A.Set(upper, j, g)
			q.A.Set(lower, j, -g)
		}
		q.b.SetVec(upper, m.bounds[i]-k)
		q.b.SetVec(lower, m.bounds[i]+k)
	}
	q.H.Copy(m.cond.H)
	q.g.CopyVec(m.cond.g)
}

// feasibleStart steers curvature towards zero as fast as the rate bound allows. That trajectory
// satisfies every curvature bound whenever any trajectory does, and the relaxed envelope otherwise.
func (m *LateralMpc) feasibleStart(k0 float64, dts *[LAT_MPC_N]float64) {
	k := k0
	for j := range LAT_MPC_N {
		u := clamp(-k/dts[j], -m.cfg.MaxCurvatureRate, m.cfg.MaxCurvatureRate)
		m.start[j] = u - m.us[j]
		k += dts[j] * u
	}
}

// stepLength shortens the QP step, starting from twice the previous length, until the cost of the
// single shooting rollout decreases by a fraction of what the quadratic model predicts. Once the
// predicted decrease drops below what the cost can resolve the previous length is kept.
func (m *LateralMpc) stepLength(x0 State, dts *[LAT_MPC_N]float64, vModel float64, yPts, headingPts []float64) {
	z := m.qp.z
	slope := mat.Dot(m.qp.g, z)
	curvature := mat.Inner(z, m.qp.H, z)
	cost0 := m.rolloutCost(x0, 0, dts, vModel, yPts, headingPts)

	alpha := math.Min(1, 2*m.step)
	for range maxBacktracks {
		predicted := -(alpha*slope + alpha*alpha*curvature/2)
		if predicted <= costResolution*(1+cost0) {
			alpha = math.Min(alpha, m.step)
			break
		}
		if cost0-m.rolloutCost(x0, alpha, dts, vModel, yPts, headingPts) >= sufficientDecrease*predicted {
			break
		}
		alpha /= 2
	}
	m.step = alpha
	if alpha < 1 {
		z.ScaleVec(alpha, z)
	}
}

// rolloutCost integrates the model from x0 under the controls u + alpha*z and returns the
// tracking cost of the resulting trajectory.
func (m *LateralMpc) rolloutCost(x0 State, alpha float64, dts *[LAT_MPC_N]float64, vModel float64, yPts, headingPts []float64) float64 {
	w := m.weights
	maxRate := m.cfg.MaxCurvatureRate
	x := x0
	var cost float64
	for j := range LAT_MPC_N {
		u := clamp(m.us[j]+alpha*m.qp.z.AtVec(j), -maxRate, maxRate)
		x = Propagate(x, u, dts[j], vModel)
		dy := x[Y_IDX] - yPts[j+1]
		dpsi := x[PSI_IDX] - headingPts[j+1]
		cost += w.Path*dy*dy + w.Heading*dpsi*dpsi + w.CurvatureRate*u*u
	}
	return cost / 2
}

// compose applies the QP step to the warm start. Curvature and rate are clamped to their bounds
// so rounding never leaks past them. ok is false when the result is not finite.
func (m *LateralMpc) compose(x0 State) (xs [LAT_MPC_N + 1]State, us [LAT_MPC_N]float64, ok bool) {
	z := m.qp.z
	maxRate := m.cfg.MaxCurvatureRate
	for j := range LAT_MPC_N {
		us[j] = clamp(m.us[j]+z.AtVec(j), -maxRate, maxRate)
		if !isFinite(us[j]) {
			return xs, us, false
		}
	}

	xs[0] = x0
	for i := 1; i <= LAT_MPC_N; i++ {
		m.update.MulVec(m.cond.G[i], z)
		for j := range NX {
			xs[i][j] = m.xs[i][j] + m.cond.c[i].AtVec(j) + m.update.AtVec(j)
		}
		xs[i][CURV_IDX] = clamp(xs[i][CURV_IDX], -m.bounds[i], m.bounds[i])
		if !xs[i].IsFinite() {
			return xs, us, false
		}
	}
	return xs, us, true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
