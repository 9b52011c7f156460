package mpc

import (
	"math"

	"github.com/pkg/errors"
)

// Weights of the quadratic tracking cost.
type Weights struct {
	Path          float64 `json:"path"`
	Heading       float64 `json:"heading"`
	CurvatureRate float64 `json:"curvature_rate"`
}

func (w Weights) Validate() error {
	for _, v := range []float64{w.Path, w.Heading, w.CurvatureRate} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return errors.Wrapf(ErrInvalidWeights, "path=%v heading=%v curvature_rate=%v", w.Path, w.Heading, w.CurvatureRate)
		}
	}
	if w.Path == 0 && w.Heading == 0 && w.CurvatureRate == 0 {
		return errors.Wrap(ErrInvalidWeights, "all weights are zero")
	}
	return nil
}

// Config holds the construction time constants of a solver instance.
type Config struct {
	MaxCurvature     float64 `json:"max_curvature"`      // 1/m, static steering limit
	MaxCurvatureRate float64 `json:"max_curvature_rate"` // 1/(m*s)
	MaxLatAccel      float64 `json:"max_lat_accel"`      // m/s^2, comfort limit on v^2 * curvature
	HorizonTime      float64 `json:"horizon_time"`       // s
	MinLookahead     float64 `json:"min_lookahead"`      // m
	MinSpeed         float64 `json:"min_speed"`          // m/s, floor on the model speed
	QPMaxIterations  int     `json:"qp_max_iterations"`
}

func DefaultConfig() Config {
	return Config{
		MaxCurvature:     0.2,
		MaxCurvatureRate: 0.5,
		MaxLatAccel:      3.0,
		HorizonTime:      2.5,
		MinLookahead:     10.0,
		MinSpeed:         1.0,
		QPMaxIterations:  200,
	}
}

func (c Config) Validate() error {
	positive := map[string]float64{
		"max_curvature":      c.MaxCurvature,
		"max_curvature_rate": c.MaxCurvatureRate,
		"max_lat_accel":      c.MaxLatAccel,
		"horizon_time":       c.HorizonTime,
		"min_speed":          c.MinSpeed,
	}
	for name, v := range positive {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return errors.Wrapf(ErrInvalidConfig, "%s must be positive and finite, got %v", name, v)
		}
	}
	if math.IsNaN(c.MinLookahead) || math.IsInf(c.MinLookahead, 0) || c.MinLookahead < 0 {
		return errors.Wrapf(ErrInvalidConfig, "min_lookahead must be non-negative and finite, got %v", c.MinLookahead)
	}
	if c.QPMaxIterations <= 0 || c.QPMaxIterations > MAX_QP_ITERATIONS {
		return errors.Wrapf(ErrInvalidConfig, "qp_max_iterations must be in [1, %d], got %d", MAX_QP_ITERATIONS, c.QPMaxIterations)
	}
	return nil
}
