package main

import (
	"log/slog"
	"time"

	"pfeifer.dev/latmpc/cereal"
	"pfeifer.dev/latmpc/cli"
	"pfeifer.dev/latmpc/params"
	ms "pfeifer.dev/latmpc/settings"
)

func main() {
	cli.Handle()

	params.EnsureParamDirectories()
	ms.Settings.LoadWithRetries(5)

	inputSub := cereal.NewSubscriber(cereal.LATERAL_MPC_IN, cereal.LateralMpcInReader, true)
	defer inputSub.Sub.Msgq.Close()
	commandSub := cereal.NewSubscriber(cereal.LATERAL_MPC_COMMAND, cereal.LateralMpcCommandReader, false)
	defer commandSub.Sub.Msgq.Close()
	planPub := cereal.NewPublisher(cereal.LATERAL_PLAN, cereal.LateralPlanCreator)
	diagnosticsPub := cereal.NewPublisher(cereal.LATERAL_MPC_DIAGNOSTICS, cereal.LateralMpcDiagnosticsCreator)

	daemon, err := NewDaemon(&ms.Settings, &inputSub, &commandSub, &planPub, &diagnosticsPub)
	if err != nil {
		slog.Warn("falling back to default lateral settings", "error", err)
		ms.Settings.Default()
		daemon, err = NewDaemon(&ms.Settings, &inputSub, &commandSub, &planPub, &diagnosticsPub)
		if err != nil {
			panic(err)
		}
	}

	for {
		time.Sleep(ms.LOOP_DELAY)
		daemon.Tick(time.Now())
	}
}
