package mpc

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	errQPMaxIterations = errors.New("qp iteration budget exhausted")
	errQPSingular      = errors.New("qp kkt system is singular")
)

// activeSetQP solves
//
//	minimize 1/2 z'Hz + g'z subject to A z <= b
//
// with a primal active-set method started from a feasible point. Every iterate stays feasible so
// the last iterate is usable when the iteration budget runs out. The working set is kept linearly
// independent by construction: a constraint only blocks a step it is not parallel to.
//
// The equality sub-problem of every iteration is the fixed size KKT system
//
//	[ H   A_W' ] [ p      ]   [ -(Hz + g) ]
//	[ A_W  0   ] [ lambda ] = [     0     ]
//
// where rows of constraints outside the working set are replaced by identity rows, keeping
// their multipliers at zero and the workspace free of per iteration allocation.
type activeSetQP struct {
	n, m    int
	maxIter int

	H *mat.Dense    // n x n
	g *mat.VecDense // n
	A *mat.Dense    // m x n
	b *mat.VecDense // m

	z      *mat.VecDense
	grad   *mat.VecDense
	kkt    *mat.Dense
	rhs    *mat.VecDense
	sol    *mat.VecDense
	lu     mat.LU
	active []bool
}

func newActiveSetQP(n, m, maxIter int) *activeSetQP {
	return &activeSetQP{
		n:       n,
		m:       m,
		maxIter: maxIter,
		H:       mat.NewDense(n, n, nil),
		g:       mat.NewVecDense(n, nil),
		A:       mat.NewDense(m, n, nil),
		b:       mat.NewVecDense(m, nil),
		z:       mat.NewVecDense(n, nil),
		grad:    mat.NewVecDense(n, nil),
		kkt:     mat.NewDense(n+m, n+m, nil),
		rhs:     mat.NewVecDense(n+m, nil),
		sol:     mat.NewVecDense(n+m, nil),
		active:  make([]bool, m),
	}
}

// solve runs from start, which must satisfy A start <= b up to rounding. The solution is left
// in q.z. It returns the number of iterations used.
func (q *activeSetQP) solve(start []float64) (int, error) {
	copy(q.z.RawVector().Data, start)
	for i := range q.active {
		q.active[i] = false
	}

	for iter := 1; iter <= q.maxIter; iter++ {
		q.grad.MulVec(q.H, q.z)
		q.grad.AddVec(q.grad, q.g)

		if err := q.equalityStep(); err != nil {
			return iter, err
		}
		p := q.sol.RawVector().Data[:q.n]

		if floats.Norm(p, math.Inf(1)) < stepTol {
			j, lambda := q.mostNegativeMultiplier()
			if j < 0 || lambda >= -multiplierTol {
				return iter, nil
			}
			q.active[j] = false
			continue
		}

		alpha, blocking := q.stepLength(p)
		floats.AddScaled(q.z.RawVector().Data, alpha, p)
		if blocking >= 0 {
			q.active[blocking] = true
		}
	}
	return q.maxIter, errQPMaxIterations
}

func (q *activeSetQP) equalityStep() error {
	n := q.n
	q.kkt.Zero()
	q.kkt.Slice(0, n, 0, n).(*mat.Dense).Copy(q.H)
	for j := range q.m {
		if !q.active[j] {
			q.kkt.Set(n+j, n+j, 1)
			continue
		}
		row := q.A.RawRowView(j)
		for k, v := range row {
			q.kkt.Set(n+j, k, v)
			q.kkt.Set(k, n+j, v)
		}
	}

	q.rhs.Zero()
	for i := range n {
		q.rhs.SetVec(i, -q.grad.AtVec(i))
	}

	q.lu.Factorize(q.kkt)
	if err := q.lu.SolveVecTo(q.sol, false, q.rhs); err != nil {
		return errors.Wrap(errQPSingular, err.Error())
	}
	for _, v := range q.sol.RawVector().Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errQPSingular
		}
	}
	return nil
}

// mostNegativeMultiplier returns the working set constraint with the most negative multiplier.
func (q *activeSetQP) mostNegativeMultiplier() (int, float64) {
	idx, lowest := -1, math.Inf(1)
	for j := range q.m {
		if !q.active[j] {
			continue
		}
		if lambda := q.sol.AtVec(q.n + j); lambda < lowest {
			idx, lowest = j, lambda
		}
	}
	return idx, lowest
}

// stepLength is the largest alpha in [0, 1] keeping z + alpha p feasible, and the constraint
// that limits it (-1 when the full step is feasible).
func (q *activeSetQP) stepLength(p []float64) (float64, int) {
	alpha, blocking := 1.0, -1
	z := q.z.RawVector().Data
	for j := range q.m {
		if q.active[j] {
			continue
		}
		row := q.A.RawRowView(j)
		ap := floats.Dot(row, p)
		if ap <= blockingTol {
			continue
		}
		slack := q.b.AtVec(j) - floats.Dot(row, z)
		if r := math.Max(slack/ap, 0); r < alpha {
			alpha, blocking = r, j
		}
	}
	return alpha, blocking
}
