package mpc

import "time"

// State is the path relative lateral state of the vehicle at one horizon stage.
type State [NX]float64

func NewState(pathProgress, lateralOffset, headingError, curvature float64) State {
	return State{pathProgress, lateralOffset, headingError, curvature}
}

func (s State) PathProgress() float64  { return s[X_IDX] }
func (s State) LateralOffset() float64 { return s[Y_IDX] }
func (s State) HeadingError() float64  { return s[PSI_IDX] }
func (s State) Curvature() float64     { return s[CURV_IDX] }

// Mirror reflects the state across the reference path. Path progress is unchanged.
func (s State) Mirror() State {
	return State{s[X_IDX], -s[Y_IDX], -s[PSI_IDX], -s[CURV_IDX]}
}

func (s State) IsFinite() bool {
	for _, v := range s {
		if !isFinite(v) {
			return false
		}
	}
	return true
}

// Solution is the result of one real time iteration.
type Solution struct {
	States         [LAT_MPC_N + 1]State
	Controls       [LAT_MPC_N]float64 // curvature rates
	Tidx           [LAT_MPC_N + 1]float64
	Status         Status
	QPIterations   int
	CurvatureLimit float64
	SolveTime      time.Duration
}

// FirstControl is the curvature rate to apply for the current tick.
func (s *Solution) FirstControl() float64 {
	return s.Controls[0]
}

// DesiredCurvature is the curvature the plan expects to reach after delay seconds, linearly
// interpolated over the stage times.
func (s *Solution) DesiredCurvature(delay float64) float64 {
	if delay <= s.Tidx[0] {
		return s.States[0].Curvature()
	}
	for i := 1; i <= LAT_MPC_N; i++ {
		if delay <= s.Tidx[i] {
			span := s.Tidx[i] - s.Tidx[i-1]
			if span <= 0 {
				return s.States[i].Curvature()
			}
			frac := (delay - s.Tidx[i-1]) / span
			return s.States[i-1].Curvature() + frac*(s.States[i].Curvature()-s.States[i-1].Curvature())
		}
	}
	return s.States[LAT_MPC_N].Curvature()
}
