package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pkg/errors"
	"pfeifer.dev/latmpc/mpc"
	ms "pfeifer.dev/latmpc/settings"
)

// SimulationOptions describe a closed loop run of the solver against the nonlinear model.
type SimulationOptions struct {
	VEgo      float64
	Y         float64
	Psi       float64
	Curvature float64
	Shift     float64 // constant lateral offset of the reference path
	Ticks     int
}

type SimulationStep struct {
	Tick      int
	Time      float64
	State     mpc.State
	Control   float64
	Status    mpc.Status
	QPIter    int
	SolveTime float64
}

// Simulate closes the loop: every tick the planned curvature rates are followed stage by stage for
// one loop period and the resulting state becomes the next initial state. The reference is a straight
// line shifted by Shift, expressed relative to the vehicle so path progress restarts at zero.
func Simulate(opts SimulationOptions, settings ms.LateralSettings) ([]SimulationStep, error) {
	if opts.Ticks <= 0 {
		return nil, errors.New("ticks must be positive")
	}
	solver, err := mpc.New(settings.MpcConfig())
	if err != nil {
		return nil, errors.Wrap(err, "could not create lateral mpc")
	}
	w := settings.Weights()
	if err := solver.SetWeights(w.Path, w.Heading, w.CurvatureRate); err != nil {
		return nil, errors.Wrap(err, "could not set lateral mpc weights")
	}

	yPts := make([]float64, mpc.LAT_MPC_N+1)
	headingPts := make([]float64, mpc.LAT_MPC_N+1)
	for i := range yPts {
		yPts[i] = opts.Shift
	}

	dt := ms.LOOP_DELAY.Seconds()
	_, vModel := mpc.StageTimes(opts.VEgo, settings.MpcConfig())
	x := mpc.NewState(0, opts.Y, opts.Psi, opts.Curvature)
	steps := make([]SimulationStep, 0, opts.Ticks)
	for tick := range opts.Ticks {
		sol, err := solver.Run(x, opts.VEgo, 0, yPts, headingPts)
		if err != nil {
			return steps, errors.Wrapf(err, "tick %d", tick)
		}
		u := sol.FirstControl()
		steps = append(steps, SimulationStep{
			Tick:      tick,
			Time:      float64(tick) * dt,
			State:     x,
			Control:   u,
			Status:    sol.Status,
			QPIter:    sol.QPIterations,
			SolveTime: sol.SolveTime.Seconds(),
		})
		x = followPlan(x, &sol, dt, vModel)
		x[mpc.X_IDX] = 0
	}
	return steps, nil
}

// followPlan integrates x over duration, applying each stage's control for the part of the stage
// that falls inside it. Time past the horizon holds the last control.
func followPlan(x mpc.State, sol *mpc.Solution, duration, v float64) mpc.State {
	remaining := duration
	for i := 0; remaining > 0; i++ {
		if i >= mpc.LAT_MPC_N {
			return mpc.Propagate(x, sol.Controls[mpc.LAT_MPC_N-1], remaining, v)
		}
		h := min(remaining, sol.Tidx[i+1]-sol.Tidx[i])
		x = mpc.Propagate(x, sol.Controls[i], h, v)
		remaining -= h
	}
	return x
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Align(lipgloss.Center)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
	failStyle   = cellStyle.Foreground(lipgloss.Color("9"))
)

// RenderSimulation formats every stride'th step as a table followed by a summary line.
func RenderSimulation(steps []SimulationStep, stride int) string {
	if len(steps) == 0 {
		return "no steps\n"
	}
	stride = max(stride, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("tick", "t [s]", "y [m]", "psi [rad]", "curvature", "rate", "status", "qp iter")

	failed := map[int]bool{}
	row := 0
	for i, s := range steps {
		if i%stride != 0 && i != len(steps)-1 {
			continue
		}
		failed[row] = !s.Status.Ok()
		row++
		t.Row(
			fmt.Sprint(s.Tick),
			fmt.Sprintf("%.2f", s.Time),
			fmt.Sprintf("%.4f", s.State.LateralOffset()),
			fmt.Sprintf("%.4f", s.State.HeadingError()),
			fmt.Sprintf("%.5f", s.State.Curvature()),
			fmt.Sprintf("%.5f", s.Control),
			s.Status.String(),
			fmt.Sprint(s.QPIter),
		)
	}
	t.StyleFunc(func(r, _ int) lipgloss.Style {
		if r == table.HeaderRow {
			return headerStyle
		}
		if failed[r] {
			return failStyle
		}
		return cellStyle
	})

	var b strings.Builder
	b.WriteString(t.String())
	b.WriteString("\n")
	b.WriteString(summary(steps))
	return b.String()
}

func summary(steps []SimulationStep) string {
	failures := 0
	maxIter := 0
	for _, s := range steps {
		if !s.Status.Ok() {
			failures++
		}
		maxIter = max(maxIter, s.QPIter)
	}
	last := steps[len(steps)-1]
	return fmt.Sprintf("final y=%.4f psi=%.4f curvature=%.5f after %d ticks, %d failed solves, max qp iterations %d\n",
		last.State.LateralOffset(), last.State.HeadingError(), last.State.Curvature(), len(steps), failures, maxIter)
}
