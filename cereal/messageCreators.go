package cereal

import "pfeifer.dev/latmpc/cereal/lateral"

func LateralMpcInCreator(evt lateral.Event) (lateral.LateralMpcIn, error) {
	return evt.NewLateralMpcIn()
}

func LateralPlanCreator(evt lateral.Event) (lateral.LateralPlan, error) {
	return evt.NewLateralPlan()
}

func LateralMpcCommandCreator(evt lateral.Event) (lateral.LateralMpcCommand, error) {
	return evt.NewLateralMpcCommand()
}

func LateralMpcDiagnosticsCreator(evt lateral.Event) (lateral.LateralMpcDiagnostics, error) {
	return evt.NewLateralMpcDiagnostics()
}
