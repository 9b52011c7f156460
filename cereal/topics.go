package cereal

import (
	"time"

	"github.com/pfeiferj/gomsgq"
	"pfeifer.dev/latmpc/settings"
)

const (
	LATERAL_MPC_IN          = "lateralMpcIn"
	LATERAL_PLAN            = "lateralPlan"
	LATERAL_MPC_COMMAND     = "lateralMpcCommand"
	LATERAL_MPC_DIAGNOSTICS = "lateralMpcDiagnostics"
)

var monoStart = time.Now()

// GetTime is the monotonic clock in nanoseconds used for logMonoTime.
func GetTime() uint64 {
	return uint64(time.Since(monoStart).Nanoseconds())
}

// initMsgq opens the shared memory queue of a topic. Publisher and subscribers of a topic must
// agree on the segment size, so it is chosen here from the topic name alone.
func initMsgq(msgq *gomsgq.Msgq, name string) error {
	if name == LATERAL_MPC_COMMAND || name == LATERAL_MPC_DIAGNOSTICS {
		return msgq.Init(name, settings.SMALL_SEGMENT_SIZE)
	}
	return msgq.Init(name, settings.DEFAULT_SEGMENT_SIZE)
}
