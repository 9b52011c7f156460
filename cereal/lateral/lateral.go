package lateral

import (
	"capnproto.org/go/capnp/v3"
	"github.com/pkg/errors"
)

// Accessors for lateral.capnp. Offsets follow the capnp layout rules for the schema field order.

var ErrWrongUnion = errors.New("event does not hold the requested message")

type Event capnp.Struct

type Event_Which uint16

const (
	Event_Which_lateralMpcIn          Event_Which = 0
	Event_Which_lateralPlan           Event_Which = 1
	Event_Which_lateralMpcCommand     Event_Which = 2
	Event_Which_lateralMpcDiagnostics Event_Which = 3
)

func (w Event_Which) String() string {
	switch w {
	case Event_Which_lateralMpcIn:
		return "lateralMpcIn"
	case Event_Which_lateralPlan:
		return "lateralPlan"
	case Event_Which_lateralMpcCommand:
		return "lateralMpcCommand"
	case Event_Which_lateralMpcDiagnostics:
		return "lateralMpcDiagnostics"
	}
	return "Event_Which(" + itoa(uint16(w)) + ")"
}

var eventSize = capnp.ObjectSize{DataSize: 16, PointerCount: 1}

func NewRootEvent(s *capnp.Segment) (Event, error) {
	st, err := capnp.NewRootStruct(s, eventSize)
	return Event(st), err
}

func ReadRootEvent(msg *capnp.Message) (Event, error) {
	root, err := msg.Root()
	return Event(root.Struct()), err
}

func (s Event) LogMonoTime() uint64 {
	return capnp.Struct(s).Uint64(0)
}

func (s Event) SetLogMonoTime(v uint64) {
	capnp.Struct(s).SetUint64(0, v)
}

func (s Event) Valid() bool {
	return capnp.Struct(s).Bit(64)
}

func (s Event) SetValid(v bool) {
	capnp.Struct(s).SetBit(64, v)
}

func (s Event) Which() Event_Which {
	return Event_Which(capnp.Struct(s).Uint16(10))
}

func (s Event) member(w Event_Which) (capnp.Ptr, error) {
	if s.Which() != w {
		return capnp.Ptr{}, errors.Wrapf(ErrWrongUnion, "have %s, want %s", s.Which(), w)
	}
	return capnp.Struct(s).Ptr(0)
}

func (s Event) setMember(w Event_Which, st capnp.Struct) error {
	capnp.Struct(s).SetUint16(10, uint16(w))
	return capnp.Struct(s).SetPtr(0, st.ToPtr())
}

func (s Event) LateralMpcIn() (LateralMpcIn, error) {
	p, err := s.member(Event_Which_lateralMpcIn)
	return LateralMpcIn(p.Struct()), err
}

func (s Event) NewLateralMpcIn() (LateralMpcIn, error) {
	st, err := NewLateralMpcIn(capnp.Struct(s).Segment())
	if err != nil {
		return LateralMpcIn{}, err
	}
	return st, s.setMember(Event_Which_lateralMpcIn, capnp.Struct(st))
}

func (s Event) LateralPlan() (LateralPlan, error) {
	p, err := s.member(Event_Which_lateralPlan)
	return LateralPlan(p.Struct()), err
}

func (s Event) NewLateralPlan() (LateralPlan, error) {
	st, err := NewLateralPlan(capnp.Struct(s).Segment())
	if err != nil {
		return LateralPlan{}, err
	}
	return st, s.setMember(Event_Which_lateralPlan, capnp.Struct(st))
}

func (s Event) LateralMpcCommand() (LateralMpcCommand, error) {
	p, err := s.member(Event_Which_lateralMpcCommand)
	return LateralMpcCommand(p.Struct()), err
}

func (s Event) NewLateralMpcCommand() (LateralMpcCommand, error) {
	st, err := NewLateralMpcCommand(capnp.Struct(s).Segment())
	if err != nil {
		return LateralMpcCommand{}, err
	}
	return st, s.setMember(Event_Which_lateralMpcCommand, capnp.Struct(st))
}

func (s Event) LateralMpcDiagnostics() (LateralMpcDiagnostics, error) {
	p, err := s.member(Event_Which_lateralMpcDiagnostics)
	return LateralMpcDiagnostics(p.Struct()), err
}

func (s Event) NewLateralMpcDiagnostics() (LateralMpcDiagnostics, error) {
	st, err := NewLateralMpcDiagnostics(capnp.Struct(s).Segment())
	if err != nil {
		return LateralMpcDiagnostics{}, err
	}
	return st, s.setMember(Event_Which_lateralMpcDiagnostics, capnp.Struct(st))
}

// LateralMpcIn

type LateralMpcIn capnp.Struct

func NewLateralMpcIn(s *capnp.Segment) (LateralMpcIn, error) {
	st, err := capnp.NewStruct(s, capnp.ObjectSize{DataSize: 24, PointerCount: 2})
	return LateralMpcIn(st), err
}

func (s LateralMpcIn) YPts() (capnp.Float32List, error)       { return float32List(capnp.Struct(s), 0) }
func (s LateralMpcIn) HeadingPts() (capnp.Float32List, error) { return float32List(capnp.Struct(s), 1) }

func (s LateralMpcIn) NewYPts(n int32) (capnp.Float32List, error) {
	return newFloat32List(capnp.Struct(s), 0, n)
}

func (s LateralMpcIn) NewHeadingPts(n int32) (capnp.Float32List, error) {
	return newFloat32List(capnp.Struct(s), 1, n)
}

func (s LateralMpcIn) X() float32                  { return getFloat32(capnp.Struct(s), 0) }
func (s LateralMpcIn) SetX(v float32)              { setFloat32(capnp.Struct(s), 0, v) }
func (s LateralMpcIn) Y() float32                  { return getFloat32(capnp.Struct(s), 4) }
func (s LateralMpcIn) SetY(v float32)              { setFloat32(capnp.Struct(s), 4, v) }
func (s LateralMpcIn) Psi() float32                { return getFloat32(capnp.Struct(s), 8) }
func (s LateralMpcIn) SetPsi(v float32)            { setFloat32(capnp.Struct(s), 8, v) }
func (s LateralMpcIn) Curvature() float32          { return getFloat32(capnp.Struct(s), 12) }
func (s LateralMpcIn) SetCurvature(v float32)      { setFloat32(capnp.Struct(s), 12, v) }
func (s LateralMpcIn) VEgo() float32               { return getFloat32(capnp.Struct(s), 16) }
func (s LateralMpcIn) SetVEgo(v float32)           { setFloat32(capnp.Struct(s), 16, v) }
func (s LateralMpcIn) RotationRadius() float32     { return getFloat32(capnp.Struct(s), 20) }
func (s LateralMpcIn) SetRotationRadius(v float32) { setFloat32(capnp.Struct(s), 20, v) }

// SolverStatus

type SolverStatus uint16

const (
	SolverStatus_solved         SolverStatus = 0
	SolverStatus_infeasible     SolverStatus = 1
	SolverStatus_maxIterations  SolverStatus = 2
	SolverStatus_numericalError SolverStatus = 3
	SolverStatus_rejected       SolverStatus = 4
)

func (c SolverStatus) String() string {
	switch c {
	case SolverStatus_solved:
		return "solved"
	case SolverStatus_infeasible:
		return "infeasible"
	case SolverStatus_maxIterations:
		return "maxIterations"
	case SolverStatus_numericalError:
		return "numericalError"
	case SolverStatus_rejected:
		return "rejected"
	}
	return ""
}

// LateralPlan

type LateralPlan capnp.Struct

func NewLateralPlan(s *capnp.Segment) (LateralPlan, error) {
	st, err := capnp.NewStruct(s, capnp.ObjectSize{DataSize: 24, PointerCount: 6})
	return LateralPlan(st), err
}

func (s LateralPlan) XSol() (capnp.Float32List, error)   { return float32List(capnp.Struct(s), 0) }
func (s LateralPlan) YSol() (capnp.Float32List, error)   { return float32List(capnp.Struct(s), 1) }
func (s LateralPlan) PsiSol() (capnp.Float32List, error) { return float32List(capnp.Struct(s), 2) }
func (s LateralPlan) TIdxs() (capnp.Float32List, error)  { return float32List(capnp.Struct(s), 5) }

func (s LateralPlan) CurvatureSol() (capnp.Float32List, error) {
	return float32List(capnp.Struct(s), 3)
}

func (s LateralPlan) CurvatureRateSol() (capnp.Float32List, error) {
	return float32List(capnp.Struct(s), 4)
}

func (s LateralPlan) NewXSol(n int32) (capnp.Float32List, error) {
	return newFloat32List(capnp.Struct(s), 0, n)
}

func (s LateralPlan) NewYSol(n int32) (capnp.Float32List, error) {
	return newFloat32List(capnp.Struct(s), 1, n)
}

func (s LateralPlan) NewPsiSol(n int32) (capnp.Float32List, error) {
	return newFloat32List(capnp.Struct(s), 2, n)
}

func (s LateralPlan) NewCurvatureSol(n int32) (capnp.Float32List, error) {
	return newFloat32List(capnp.Struct(s), 3, n)
}

func (s LateralPlan) NewCurvatureRateSol(n int32) (capnp.Float32List, error) {
	return newFloat32List(capnp.Struct(s), 4, n)
}

func (s LateralPlan) NewTIdxs(n int32) (capnp.Float32List, error) {
	return newFloat32List(capnp.Struct(s), 5, n)
}

func (s LateralPlan) Status() SolverStatus {
	return SolverStatus(capnp.Struct(s).Uint16(0))
}

func (s LateralPlan) SetStatus(v SolverStatus) {
	capnp.Struct(s).SetUint16(0, uint16(v))
}

func (s LateralPlan) Valid() bool     { return capnp.Struct(s).Bit(16) }
func (s LateralPlan) SetValid(v bool) { capnp.Struct(s).SetBit(16, v) }

func (s LateralPlan) QpIterations() uint32     { return capnp.Struct(s).Uint32(4) }
func (s LateralPlan) SetQpIterations(v uint32) { capnp.Struct(s).SetUint32(4, v) }

func (s LateralPlan) SolverExecutionTime() float32     { return getFloat32(capnp.Struct(s), 8) }
func (s LateralPlan) SetSolverExecutionTime(v float32) { setFloat32(capnp.Struct(s), 8, v) }
func (s LateralPlan) CurvatureLimit() float32          { return getFloat32(capnp.Struct(s), 12) }
func (s LateralPlan) SetCurvatureLimit(v float32)      { setFloat32(capnp.Struct(s), 12, v) }
func (s LateralPlan) DesiredCurvature() float32        { return getFloat32(capnp.Struct(s), 16) }
func (s LateralPlan) SetDesiredCurvature(v float32)    { setFloat32(capnp.Struct(s), 16, v) }

// CommandType

type CommandType uint16

const (
	CommandType_reloadSettings         CommandType = 0
	CommandType_saveSettings           CommandType = 1
	CommandType_loadDefaultSettings    CommandType = 2
	CommandType_setPathWeight          CommandType = 3
	CommandType_setHeadingWeight       CommandType = 4
	CommandType_setCurvatureRateWeight CommandType = 5
	CommandType_setMaxCurvature        CommandType = 6
	CommandType_setMaxCurvatureRate    CommandType = 7
	CommandType_setMaxLatAccel         CommandType = 8
	CommandType_setHorizonTime         CommandType = 9
	CommandType_setMinLookahead        CommandType = 10
	CommandType_setMinSpeed            CommandType = 11
	CommandType_setQpMaxIterations     CommandType = 12
	CommandType_setLogLevel            CommandType = 13
	CommandType_setPublishDiagnostics  CommandType = 14
	CommandType_resetWarmStart         CommandType = 15
)

var commandTypeNames = map[CommandType]string{
	CommandType_reloadSettings:         "reloadSettings",
	CommandType_saveSettings:           "saveSettings",
	CommandType_loadDefaultSettings:    "loadDefaultSettings",
	CommandType_setPathWeight:          "setPathWeight",
	CommandType_setHeadingWeight:       "setHeadingWeight",
	CommandType_setCurvatureRateWeight: "setCurvatureRateWeight",
	CommandType_setMaxCurvature:        "setMaxCurvature",
	CommandType_setMaxCurvatureRate:    "setMaxCurvatureRate",
	CommandType_setMaxLatAccel:         "setMaxLatAccel",
	CommandType_setHorizonTime:         "setHorizonTime",
	CommandType_setMinLookahead:        "setMinLookahead",
	CommandType_setMinSpeed:            "setMinSpeed",
	CommandType_setQpMaxIterations:     "setQpMaxIterations",
	CommandType_setLogLevel:            "setLogLevel",
	CommandType_setPublishDiagnostics:  "setPublishDiagnostics",
	CommandType_resetWarmStart:         "resetWarmStart",
}

func (c CommandType) String() string {
	return commandTypeNames[c]
}

// CommandTypeFromString is the inverse of String. ok is false for unknown names.
func CommandTypeFromString(name string) (c CommandType, ok bool) {
	for t, n := range commandTypeNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// LateralMpcCommand

type LateralMpcCommand capnp.Struct

func NewLateralMpcCommand(s *capnp.Segment) (LateralMpcCommand, error) {
	st, err := capnp.NewStruct(s, capnp.ObjectSize{DataSize: 8, PointerCount: 1})
	return LateralMpcCommand(st), err
}

func (s LateralMpcCommand) Type() CommandType {
	return CommandType(capnp.Struct(s).Uint16(0))
}

func (s LateralMpcCommand) SetType(v CommandType) {
	capnp.Struct(s).SetUint16(0, uint16(v))
}

func (s LateralMpcCommand) Float() float32     { return getFloat32(capnp.Struct(s), 4) }
func (s LateralMpcCommand) SetFloat(v float32) { setFloat32(capnp.Struct(s), 4, v) }
func (s LateralMpcCommand) Bool() bool         { return capnp.Struct(s).Bit(16) }
func (s LateralMpcCommand) SetBool(v bool)     { capnp.Struct(s).SetBit(16, v) }

func (s LateralMpcCommand) Str() (string, error) {
	p, err := capnp.Struct(s).Ptr(0)
	return p.Text(), err
}

func (s LateralMpcCommand) SetStr(v string) error {
	return capnp.Struct(s).SetText(0, v)
}

// LateralMpcDiagnostics

type LateralMpcDiagnostics capnp.Struct

func NewLateralMpcDiagnostics(s *capnp.Segment) (LateralMpcDiagnostics, error) {
	st, err := capnp.NewStruct(s, capnp.ObjectSize{DataSize: 24, PointerCount: 1})
	return LateralMpcDiagnostics(st), err
}

func (s LateralMpcDiagnostics) Settings() (string, error) {
	p, err := capnp.Struct(s).Ptr(0)
	return p.Text(), err
}

func (s LateralMpcDiagnostics) SetSettings(v string) error {
	return capnp.Struct(s).SetText(0, v)
}

func (s LateralMpcDiagnostics) SolveTimeAvg() float32         { return getFloat32(capnp.Struct(s), 0) }
func (s LateralMpcDiagnostics) SetSolveTimeAvg(v float32)     { setFloat32(capnp.Struct(s), 0, v) }
func (s LateralMpcDiagnostics) InputIntervalAvg() float32     { return getFloat32(capnp.Struct(s), 4) }
func (s LateralMpcDiagnostics) SetInputIntervalAvg(v float32) { setFloat32(capnp.Struct(s), 4, v) }
func (s LateralMpcDiagnostics) SolveCount() uint32            { return capnp.Struct(s).Uint32(8) }
func (s LateralMpcDiagnostics) SetSolveCount(v uint32)        { capnp.Struct(s).SetUint32(8, v) }
func (s LateralMpcDiagnostics) FailureCount() uint32          { return capnp.Struct(s).Uint32(12) }
func (s LateralMpcDiagnostics) SetFailureCount(v uint32)      { capnp.Struct(s).SetUint32(12, v) }
func (s LateralMpcDiagnostics) RejectedCount() uint32         { return capnp.Struct(s).Uint32(20) }
func (s LateralMpcDiagnostics) SetRejectedCount(v uint32)     { capnp.Struct(s).SetUint32(20, v) }
func (s LateralMpcDiagnostics) InputStale() bool              { return capnp.Struct(s).Bit(144) }
func (s LateralMpcDiagnostics) SetInputStale(v bool)          { capnp.Struct(s).SetBit(144, v) }

func (s LateralMpcDiagnostics) LastStatus() SolverStatus {
	return SolverStatus(capnp.Struct(s).Uint16(16))
}

func (s LateralMpcDiagnostics) SetLastStatus(v SolverStatus) {
	capnp.Struct(s).SetUint16(16, uint16(v))
}
