package main

import (
	"capnproto.org/go/capnp/v3"
	"github.com/pkg/errors"
	"pfeifer.dev/latmpc/cereal/lateral"
	"pfeifer.dev/latmpc/mpc"
)

// Input is one decoded lateralMpcIn snapshot.
type Input struct {
	State         mpc.State
	VEgo          float64
	TurningRadius float64
	YPts          []float64
	HeadingPts    []float64
}

func ReadInput(in lateral.LateralMpcIn) (Input, error) {
	yPts, err := in.YPts()
	if err != nil {
		return Input{}, errors.Wrap(err, "could not read yPts")
	}
	headingPts, err := in.HeadingPts()
	if err != nil {
		return Input{}, errors.Wrap(err, "could not read headingPts")
	}
	return Input{
		State: mpc.NewState(
			float64(in.X()),
			float64(in.Y()),
			float64(in.Psi()),
			float64(in.Curvature()),
		),
		VEgo:          float64(in.VEgo()),
		TurningRadius: float64(in.RotationRadius()),
		YPts:          lateral.Float64s(yPts),
		HeadingPts:    lateral.Float64s(headingPts),
	}, nil
}

func PlanStatus(status mpc.Status) lateral.SolverStatus {
	switch status {
	case mpc.StatusSolved:
		return lateral.SolverStatus_solved
	case mpc.StatusInfeasible:
		return lateral.SolverStatus_infeasible
	case mpc.StatusMaxIterations:
		return lateral.SolverStatus_maxIterations
	}
	return lateral.SolverStatus_numericalError
}

// FillPlan copies the solved trajectory into plan. The status and valid flag are left to the caller.
func FillPlan(plan lateral.LateralPlan, sol mpc.Solution, delay float64) error {
	var x, y, psi, curvature [mpc.LAT_MPC_N + 1]float64
	for i, s := range sol.States {
		x[i] = s.PathProgress()
		y[i] = s.LateralOffset()
		psi[i] = s.HeadingError()
		curvature[i] = s.Curvature()
	}

	lists := []struct {
		name    string
		newList func(int32) (capnp.Float32List, error)
		vals    []float64
	}{
		{"xSol", plan.NewXSol, x[:]},
		{"ySol", plan.NewYSol, y[:]},
		{"psiSol", plan.NewPsiSol, psi[:]},
		{"curvatureSol", plan.NewCurvatureSol, curvature[:]},
		{"curvatureRateSol", plan.NewCurvatureRateSol, sol.Controls[:]},
		{"tIdxs", plan.NewTIdxs, sol.Tidx[:]},
	}
	for _, l := range lists {
		if err := lateral.SetFloat64s(l.newList, l.vals); err != nil {
			return errors.Wrapf(err, "could not fill %s", l.name)
		}
	}

	plan.SetQpIterations(uint32(sol.QPIterations))
	plan.SetSolverExecutionTime(float32(sol.SolveTime.Seconds()))
	plan.SetCurvatureLimit(float32(sol.CurvatureLimit))
	plan.SetDesiredCurvature(float32(sol.DesiredCurvature(delay)))
	return nil
}
