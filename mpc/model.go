package mpc

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Kinematic path model, path relative frame, speed v held constant over the horizon:
//
//	d(path_progress)/dt  = v
//	d(lateral_offset)/dt = v * sin(heading_error)
//	d(heading_error)/dt  = v * curvature
//	d(curvature)/dt      = curvature_rate
//
// Progress, heading and curvature are integrated exactly over a stage. The lateral offset is a
// Fresnel type integral and uses composite Gauss-Legendre quadrature; the Jacobians differentiate
// the same quadrature so they are exact for the discrete map.

var (
	glNodes   = [4]float64{-0.8611363115940526, -0.3399810435848563, 0.3399810435848563, 0.8611363115940526}
	glWeights = [4]float64{0.3478548451374538, 0.6521451548625461, 0.6521451548625461, 0.3478548451374538}
)

const quadratureSegments = 2

type stageIntegrals struct {
	sin   float64 // int sin(psi(t)) dt
	cos   float64 // int cos(psi(t)) dt
	cosT  float64 // int cos(psi(t)) t dt
	cosT2 float64 // int cos(psi(t)) t^2/2 dt
}

func integrateStage(psi, k, u, dt, v float64) (q stageIntegrals) {
	h := dt / quadratureSegments
	for s := range quadratureSegments {
		start := float64(s) * h
		for j, node := range glNodes {
			t := start + h*(node+1)/2
			w := glWeights[j] * h / 2
			phi := psi + v*(k*t+u*t*t/2)
			c := math.Cos(phi)
			q.sin += w * math.Sin(phi)
			q.cos += w * c
			q.cosT += w * c * t
			q.cosT2 += w * c * t * t / 2
		}
	}
	return q
}

func advance(x State, u, dt, v float64, q stageIntegrals) State {
	return State{
		x[X_IDX] + v*dt,
		x[Y_IDX] + v*q.sin,
		x[PSI_IDX] + v*(x[CURV_IDX]*dt+u*dt*dt/2),
		x[CURV_IDX] + u*dt,
	}
}

// Propagate integrates the model over dt with a constant curvature rate u.
func Propagate(x State, u, dt, v float64) State {
	return advance(x, u, dt, v, integrateStage(x[PSI_IDX], x[CURV_IDX], u, dt, v))
}

// discretize writes d(next)/dx into a and d(next)/du into b.
func discretize(x State, u, dt, v float64, a *mat.Dense, b *mat.VecDense) State {
	q := integrateStage(x[PSI_IDX], x[CURV_IDX], u, dt, v)

	a.Zero()
	for i := range NX {
		a.Set(i, i, 1)
	}
	a.Set(Y_IDX, PSI_IDX, v*q.cos)
	a.Set(Y_IDX, CURV_IDX, v*v*q.cosT)
	a.Set(PSI_IDX, CURV_IDX, v*dt)

	b.SetVec(X_IDX, 0)
	b.SetVec(Y_IDX, v*v*q.cosT2)
	b.SetVec(PSI_IDX, v*dt*dt/2)
	b.SetVec(CURV_IDX, dt)

	return advance(x, u, dt, v, q)
}

// Discretize returns the next state together with the state and control Jacobians of the
// discrete map.
func Discretize(x State, u, dt, v float64) (State, *mat.Dense, *mat.VecDense) {
	a := mat.NewDense(NX, NX, nil)
	b := mat.NewVecDense(NX, nil)
	next := discretize(x, u, dt, v, a, b)
	return next, a, b
}

// LinearModel is the first order expansion of the discrete dynamics along a trajectory guess:
//
//	dx[i+1] = A[i] dx[i] + B[i] du[i] + Defect[i]
//
// where Defect[i] = f(x[i], u[i]) - x[i+1] closes the gap between consecutive guessed stages.
type LinearModel struct {
	A      [LAT_MPC_N]*mat.Dense
	B      [LAT_MPC_N]*mat.VecDense
	Defect [LAT_MPC_N]State
}

func NewLinearModel() *LinearModel {
	lin := &LinearModel{}
	for i := range LAT_MPC_N {
		lin.A[i] = mat.NewDense(NX, NX, nil)
		lin.B[i] = mat.NewVecDense(NX, nil)
	}
	return lin
}

// Linearize expands the dynamics around the guess (xs, us) on the stage steps dts. The result is
// written to lin, nothing else is touched.
func Linearize(xs *[LAT_MPC_N + 1]State, us *[LAT_MPC_N]float64, dts *[LAT_MPC_N]float64, v float64, lin *LinearModel) {
	for i := range LAT_MPC_N {
		next := discretize(xs[i], us[i], dts[i], v, lin.A[i], lin.B[i])
		for j := range NX {
			lin.Defect[i][j] = next[j] - xs[i+1][j]
		}
	}
}
