package mpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageTimes(t *testing.T) {
	cfg := DefaultConfig()
	tIdx, v := StageTimes(30, cfg)
	assert.Equal(t, 30.0, v)
	assert.Equal(t, 0.0, tIdx[0])
	assert.InDelta(t, cfg.HorizonTime, tIdx[LAT_MPC_N], 1e-12)

	dts := stageSteps(&tIdx)
	for i := 1; i < LAT_MPC_N; i++ {
		assert.Greater(t, dts[i], dts[i-1], "steps widen towards the end of the horizon")
	}
}

func TestStageTimesLowSpeed(t *testing.T) {
	cfg := DefaultConfig()
	tIdx, v := StageTimes(0, cfg)
	assert.Equal(t, cfg.MinSpeed, v)
	assert.InDelta(t, cfg.MinLookahead/cfg.MinSpeed, tIdx[LAT_MPC_N], 1e-12)
}

func TestLookahead(t *testing.T) {
	cfg := DefaultConfig()
	assert.InDelta(t, cfg.MinLookahead, Lookahead(0, cfg), 1e-12)
	assert.InDelta(t, cfg.MinLookahead, Lookahead(2, cfg), 1e-12)
	assert.InDelta(t, 75, Lookahead(30, cfg), 1e-12)

	last := 0.0
	for v := 0.0; v <= 40; v += 0.5 {
		d := Lookahead(v, cfg)
		assert.GreaterOrEqual(t, d, cfg.MinLookahead)
		assert.GreaterOrEqual(t, d, last)
		last = d
	}
}
