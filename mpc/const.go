package mpc

const (
	LAT_MPC_N = 16 // number of control stages, the state trajectory has LAT_MPC_N+1 stages
	NX        = 4
	NU        = 1

	MAX_QP_ITERATIONS = 1000 // upper bound on Config.QPMaxIterations
)

// indexes into State
const (
	X_IDX = iota
	Y_IDX
	PSI_IDX
	CURV_IDX
)

const (
	// hessianRegularization keeps the condensed hessian positive definite when the curvature rate
	// weight is zero and the last control has no influence on any weighted state
	hessianRegularization = 1e-9
	// relaxationMargin pads a relaxed curvature envelope so the constructive start stays inside it
	relaxationMargin = 1e-9
	stepTol          = 1e-12
	multiplierTol    = 1e-10
	blockingTol      = 1e-14

	// step length control of the outer iteration
	sufficientDecrease = 1e-4
	maxBacktracks      = 12
	// relative cost change below which rounding dominates the comparison
	costResolution = 1e-10
)
