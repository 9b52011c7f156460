package cereal

import "pfeifer.dev/latmpc/cereal/lateral"

func LateralMpcInReader(evt lateral.Event) (lateral.LateralMpcIn, error) {
	return evt.LateralMpcIn()
}

func LateralPlanReader(evt lateral.Event) (lateral.LateralPlan, error) {
	return evt.LateralPlan()
}

func LateralMpcCommandReader(evt lateral.Event) (lateral.LateralMpcCommand, error) {
	return evt.LateralMpcCommand()
}

func LateralMpcDiagnosticsReader(evt lateral.Event) (lateral.LateralMpcDiagnostics, error) {
	return evt.LateralMpcDiagnostics()
}
