package settings

import (
	"encoding/json"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
	"pfeifer.dev/latmpc/cereal/lateral"
	"pfeifer.dev/latmpc/mpc"
	"pfeifer.dev/latmpc/params"
	"pfeifer.dev/latmpc/utils"
)

var (
	Settings = LateralSettings{}
)

type LateralSettings struct {
	PathWeight          float64 `json:"path_weight"`
	HeadingWeight       float64 `json:"heading_weight"`
	CurvatureRateWeight float64 `json:"curvature_rate_weight"`
	MaxCurvature        float64 `json:"max_curvature"`
	MaxCurvatureRate    float64 `json:"max_curvature_rate"`
	MaxLatAccel         float64 `json:"max_lat_accel"`
	HorizonTime         float64 `json:"horizon_time"`
	MinLookahead        float64 `json:"min_lookahead"`
	MinSpeed            float64 `json:"min_speed"`
	QPMaxIterations     int     `json:"qp_max_iterations"`
	LogLevel            string  `json:"log_level"`
	PublishDiagnostics  bool    `json:"publish_diagnostics"`
}

// Effect tells the caller what a handled command requires from the solver.
type Effect struct {
	Rebuild  bool // construction time config changed
	Reweight bool // cost weights changed
	Reset    bool // warm start must be dropped
}

func (e Effect) Any() bool {
	return e.Rebuild || e.Reweight || e.Reset
}

func (s *LateralSettings) Default() {
	cfg := mpc.DefaultConfig()
	s.PathWeight = 1.0
	s.HeadingWeight = 1.0
	s.CurvatureRateWeight = 1.0
	s.MaxCurvature = cfg.MaxCurvature
	s.MaxCurvatureRate = cfg.MaxCurvatureRate
	s.MaxLatAccel = cfg.MaxLatAccel
	s.HorizonTime = cfg.HorizonTime
	s.MinLookahead = cfg.MinLookahead
	s.MinSpeed = cfg.MinSpeed
	s.QPMaxIterations = cfg.QPMaxIterations
	s.LogLevel = "error"
	s.PublishDiagnostics = true
}

func (s *LateralSettings) MpcConfig() mpc.Config {
	return mpc.Config{
		MaxCurvature:     s.MaxCurvature,
		MaxCurvatureRate: s.MaxCurvatureRate,
		MaxLatAccel:      s.MaxLatAccel,
		HorizonTime:      s.HorizonTime,
		MinLookahead:     s.MinLookahead,
		MinSpeed:         s.MinSpeed,
		QPMaxIterations:  s.QPMaxIterations,
	}
}

func (s *LateralSettings) Weights() mpc.Weights {
	return mpc.Weights{
		Path:          s.PathWeight,
		Heading:       s.HeadingWeight,
		CurvatureRate: s.CurvatureRateWeight,
	}
}

func (s *LateralSettings) Validate() error {
	if err := s.MpcConfig().Validate(); err != nil {
		return errors.Wrap(err, "invalid lateral settings")
	}
	if err := s.Weights().Validate(); err != nil {
		return errors.Wrap(err, "invalid lateral settings")
	}
	return nil
}

func (s *LateralSettings) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	return data, errors.Wrap(err, "could not marshal lateral settings")
}

// Unmarshal overlays data on the defaults so fields missing from data keep their default value.
func (s *LateralSettings) Unmarshal(data []byte) error {
	s.Default()
	return errors.Wrap(json.Unmarshal(data, s), "could not unmarshal lateral settings")
}

func (s *LateralSettings) Load() (success bool) {
	s.Default() // set defaults so settings not already in param are defaulted
	data, err := params.GetParam(params.LATERAL_MPC_SETTINGS)
	if err != nil {
		utils.Logde(err)
		return false
	}

	if err := s.Unmarshal(data); err != nil {
		utils.Loge(err)
		s.Default()
		return false
	}
	if err := s.Validate(); err != nil {
		utils.Logwe(err)
		s.Default()
		return false
	}

	s.setLogLevel()

	return true
}

func (s *LateralSettings) LoadWithRetries(tries int) {
	for range tries {
		if s.Load() {
			break
		}
		time.Sleep(1 * time.Second)
	}
	s.Save()
}

func (s *LateralSettings) Save() {
	data, err := s.Marshal()
	if err != nil {
		utils.Loge(err)
		return
	}
	err = params.PutParam(params.LATERAL_MPC_SETTINGS, data)
	if err != nil {
		utils.Loge(err)
		return
	}
}

func (s *LateralSettings) setLogLevel() {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		slog.SetLogLoggerLevel(slog.LevelDebug)
	case "info":
		slog.SetLogLoggerLevel(slog.LevelInfo)
	case "warn":
		slog.SetLogLoggerLevel(slog.LevelWarn)
	case "error":
		slog.SetLogLoggerLevel(slog.LevelError)
	default:
		slog.SetLogLoggerLevel(slog.LevelError)
	}
}

// qpIterations truncates a command value to an iteration budget. NaN and values the budget cannot
// take map to 0, which validation rejects.
func qpIterations(value float64) int {
	if math.IsNaN(value) || value < 0 || value > mpc.MAX_QP_ITERATIONS {
		return 0
	}
	return int(value)
}

// Handle applies a runtime command. A command that would leave the settings invalid is rejected
// and the previous settings are kept.
func (s *LateralSettings) Handle(input lateral.LateralMpcCommand) (effect Effect) {
	previous := *s
	value := float64(input.Float())

	switch input.Type() {
	case lateral.CommandType_reloadSettings:
		s.Load()
		effect = Effect{Rebuild: true, Reweight: true}
	case lateral.CommandType_saveSettings:
		s.Save()
	case lateral.CommandType_loadDefaultSettings:
		s.Default()
		s.setLogLevel()
		effect = Effect{Rebuild: true, Reweight: true}
	case lateral.CommandType_setPathWeight:
		s.PathWeight = value
		effect.Reweight = true
	case lateral.CommandType_setHeadingWeight:
		s.HeadingWeight = value
		effect.Reweight = true
	case lateral.CommandType_setCurvatureRateWeight:
		s.CurvatureRateWeight = value
		effect.Reweight = true
	case lateral.CommandType_setMaxCurvature:
		s.MaxCurvature = value
		effect.Rebuild = true
	case lateral.CommandType_setMaxCurvatureRate:
		s.MaxCurvatureRate = value
		effect.Rebuild = true
	case lateral.CommandType_setMaxLatAccel:
		s.MaxLatAccel = value
		effect.Rebuild = true
	case lateral.CommandType_setHorizonTime:
		s.HorizonTime = value
		effect.Rebuild = true
	case lateral.CommandType_setMinLookahead:
		s.MinLookahead = value
		effect.Rebuild = true
	case lateral.CommandType_setMinSpeed:
		s.MinSpeed = value
		effect.Rebuild = true
	case lateral.CommandType_setQpMaxIterations:
		s.QPMaxIterations = qpIterations(value)
		effect.Rebuild = true
	case lateral.CommandType_setPublishDiagnostics:
		s.PublishDiagnostics = input.Bool()
	case lateral.CommandType_resetWarmStart:
		effect.Reset = true
	case lateral.CommandType_setLogLevel:
		logLevel, err := input.Str()
		if err != nil {
			utils.Loge(err)
			return Effect{}
		}
		s.LogLevel = logLevel
		s.setLogLevel()
	default:
		slog.Warn("unknown lateral mpc command", "type", uint16(input.Type()))
	}

	if err := s.Validate(); err != nil {
		slog.Warn("rejected lateral mpc command", "type", input.Type().String(), "value", value, "error", err)
		*s = previous
		return Effect{}
	}
	return effect
}
