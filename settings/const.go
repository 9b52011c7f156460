package settings

import (
	"time"
)

const (
	DEFAULT_SEGMENT_SIZE = 10 * 1024 * 1024
	SMALL_SEGMENT_SIZE   = 1024 * 1024 // command and diagnostics topics
	LOOP_DELAY           = 50 * time.Millisecond
	DIAGNOSTICS_INTERVAL = 1 * time.Second
	INPUT_TIMEOUT        = 500 * time.Millisecond // lateralMpcIn older than this is stale
	INPUT_MA_LENGTH      = 20
	SOLVE_MA_LENGTH      = 20
)
