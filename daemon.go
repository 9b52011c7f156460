package main

import (
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"pfeifer.dev/latmpc/cereal"
	"pfeifer.dev/latmpc/cereal/lateral"
	"pfeifer.dev/latmpc/mpc"
	ms "pfeifer.dev/latmpc/settings"
	"pfeifer.dev/latmpc/utils"
)

// commands drained per tick, a flood of commands must not starve the solver
const maxCommandsPerTick = 32

type inputReader interface {
	Read() (lateral.LateralMpcIn, bool)
}

type commandReader interface {
	Read() (lateral.LateralMpcCommand, bool)
}

type Daemon struct {
	settings *ms.LateralSettings
	solver   *mpc.LateralMpc

	inputs   inputReader
	commands commandReader
	plans    sender

	InputTracker utils.UpdateTracker
	Diagnostics  Diagnostics
}

func NewDaemon(settings *ms.LateralSettings, inputs inputReader, commands commandReader, plans, diagnostics sender) (*Daemon, error) {
	d := &Daemon{
		settings: settings,
		inputs:   inputs,
		commands: commands,
		plans:    plans,
	}
	d.InputTracker.Init(ms.INPUT_MA_LENGTH)
	d.Diagnostics.Init()
	d.Diagnostics.Pub = diagnostics

	solver, err := newSolver(settings)
	if err != nil {
		return nil, err
	}
	d.solver = solver
	return d, nil
}

func newSolver(settings *ms.LateralSettings) (*mpc.LateralMpc, error) {
	solver, err := mpc.New(settings.MpcConfig())
	if err != nil {
		return nil, errors.Wrap(err, "could not create lateral mpc")
	}
	w := settings.Weights()
	if err := solver.SetWeights(w.Path, w.Heading, w.CurvatureRate); err != nil {
		return nil, errors.Wrap(err, "could not set lateral mpc weights")
	}
	return solver, nil
}

func (d *Daemon) Solver() *mpc.LateralMpc {
	return d.solver
}

// Tick runs one control cycle: apply pending commands, solve for the newest input when there is
// one, publish the plan and the periodic diagnostics.
func (d *Daemon) Tick(now time.Time) {
	d.handleCommands()

	in, success := d.inputs.Read()
	if success {
		d.InputTracker.UpdateAt(now)
		d.solve(in)
	}

	if d.settings.PublishDiagnostics {
		utils.Logwe(errors.Wrap(d.Diagnostics.Send(now, d.settings, &d.InputTracker), "could not send diagnostics"))
	}
}

func (d *Daemon) handleCommands() {
	for range maxCommandsPerTick {
		cmd, success := d.commands.Read()
		if !success {
			return
		}
		slog.Info("lateralMpcCommand", "type", cmd.Type().String(), "float", cmd.Float(), "bool", cmd.Bool())
		d.apply(d.settings.Handle(cmd))
	}
}

func (d *Daemon) apply(effect ms.Effect) {
	switch {
	case effect.Rebuild:
		solver, err := newSolver(d.settings)
		if err != nil {
			utils.Loge(err)
			return
		}
		d.solver = solver
	case effect.Reweight:
		w := d.settings.Weights()
		utils.Loge(d.solver.SetWeights(w.Path, w.Heading, w.CurvatureRate))
	}
	if effect.Reset {
		d.solver.Reset()
	}
}

func (d *Daemon) solve(in lateral.LateralMpcIn) {
	input, err := ReadInput(in)
	if err != nil {
		d.reject(err)
		return
	}

	sol, err := d.solver.Run(input.State, input.VEgo, input.TurningRadius, input.YPts, input.HeadingPts)
	if err != nil {
		d.reject(err)
		return
	}

	status := PlanStatus(sol.Status)
	d.Diagnostics.Record(status, sol.SolveTime)
	if !sol.Status.Ok() {
		slog.Warn("lateral mpc solve not ok", "status", sol.Status.String())
	}
	utils.Loge(errors.Wrap(d.publish(sol, status, sol.Status.Ok()), "could not publish lateral plan"))
}

// reject publishes an invalid plan carrying the last trajectory so consumers notice the gap.
func (d *Daemon) reject(err error) {
	utils.Logwe(errors.Wrap(err, "rejected lateral mpc input"))
	d.Diagnostics.Record(lateral.SolverStatus_rejected, 0)
	utils.Loge(errors.Wrap(d.publish(d.solver.Solution(), lateral.SolverStatus_rejected, false), "could not publish lateral plan"))
}

func (d *Daemon) publish(sol mpc.Solution, status lateral.SolverStatus, valid bool) error {
	msg, plan, err := cereal.NewEvent(valid, cereal.LateralPlanCreator)
	if err != nil {
		return err
	}
	if err := FillPlan(plan, sol, ms.LOOP_DELAY.Seconds()); err != nil {
		return err
	}
	plan.SetStatus(status)
	plan.SetValid(valid)
	logPlan(plan)
	return d.plans.Send(msg)
}

func logPlan(plan lateral.LateralPlan) {
	slog.Debug("lateralPlan",
		"valid", plan.Valid(),
		"status", plan.Status().String(),
		"qpIterations", plan.QpIterations(),
		"solverExecutionTime", plan.SolverExecutionTime(),
		"curvatureLimit", plan.CurvatureLimit(),
		"desiredCurvature", plan.DesiredCurvature(),
	)
}
