package main

import (
	"encoding/json"
	"log/slog"
	"time"

	"capnproto.org/go/capnp/v3"
	"pfeifer.dev/latmpc/cereal"
	"pfeifer.dev/latmpc/cereal/lateral"
	m "pfeifer.dev/latmpc/math"
	ms "pfeifer.dev/latmpc/settings"
	"pfeifer.dev/latmpc/utils"
)

// Diagnostics summarizes solver health and publishes it at most once per DIAGNOSTICS_INTERVAL.
type Diagnostics struct {
	Pub          sender
	SolveTime    m.MovingAverage
	SolveCount   uint32
	FailureCount uint32 // solves that did not return an ok status
	Rejected     uint32 // inputs refused before solving
	LastStatus   lateral.SolverStatus
	lastSend     time.Time
}

func (d *Diagnostics) Init() {
	d.SolveTime.Init(ms.SOLVE_MA_LENGTH)
}

func (d *Diagnostics) Record(status lateral.SolverStatus, solveTime time.Duration) {
	d.LastStatus = status
	if status == lateral.SolverStatus_rejected {
		d.Rejected++
		return
	}
	d.SolveCount++
	if status != lateral.SolverStatus_solved && status != lateral.SolverStatus_maxIterations {
		d.FailureCount++
	}
	d.SolveTime.Update(solveTime.Seconds())
}

func (d *Diagnostics) Send(now time.Time, settings *ms.LateralSettings, input *utils.UpdateTracker) error {
	if now.Sub(d.lastSend) < ms.DIAGNOSTICS_INTERVAL {
		return nil
	}
	d.lastSend = now

	msg, out, err := cereal.NewEvent(true, cereal.LateralMpcDiagnosticsCreator)
	if err != nil {
		return err
	}
	d.fill(out, now, settings, input)
	return d.Pub.Send(msg)
}

func (d *Diagnostics) fill(out lateral.LateralMpcDiagnostics, now time.Time, settings *ms.LateralSettings, input *utils.UpdateTracker) {
	out.SetSolveTimeAvg(float32(d.SolveTime.Estimate))
	out.SetInputIntervalAvg(float32(input.DiffMA.Estimate))
	out.SetSolveCount(d.SolveCount)
	out.SetFailureCount(d.FailureCount)
	out.SetRejectedCount(d.Rejected)
	out.SetLastStatus(d.LastStatus)
	out.SetInputStale(input.Stale(now, ms.INPUT_TIMEOUT))

	b, err := json.Marshal(settings)
	if err != nil {
		slog.Warn("failed to marshal settings for diagnostics")
		return
	}
	if err := out.SetSettings(string(b)); err != nil {
		slog.Warn("failed to set settings in diagnostics")
	}
}

type sender interface {
	Send(msg *capnp.Message) error
}
