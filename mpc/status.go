package mpc

type Status int

const (
	// StatusSolved the QP sub-problem was solved to optimality under the configured bounds.
	StatusSolved Status = iota
	// StatusInfeasible the initial curvature could not be brought inside the curvature bound, the
	// bound was relaxed to the reachable envelope and the relaxed optimum was returned.
	StatusInfeasible
	// StatusMaxIterations the QP iteration budget ran out, the last feasible iterate was returned.
	StatusMaxIterations
	// StatusNumericalError the sub-problem produced a non finite result, the previous warm start
	// was kept and returned.
	StatusNumericalError
)

func (s Status) String() string {
	switch s {
	case StatusSolved:
		return "solved"
	case StatusInfeasible:
		return "infeasible"
	case StatusMaxIterations:
		return "maxIterations"
	case StatusNumericalError:
		return "numericalError"
	}
	return "unknown"
}

// Ok reports whether the trajectory satisfies every configured bound.
func (s Status) Ok() bool {
	return s == StatusSolved || s == StatusMaxIterations
}
