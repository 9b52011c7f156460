package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v3"
	ms "pfeifer.dev/latmpc/settings"
)

func Handle() {
	shouldExit := true
	cmd := &cli.Command{
		Commands: []*cli.Command{
			{
				Name:    "interactive",
				Aliases: []string{"i"},
				Usage:   "Send commands to an active lateral mpc instance",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					interactive()
					return nil
				},
			},
			{
				Name:    "simulate",
				Aliases: []string{"s"},
				Flags: []cli.Flag{
					&cli.Float64Flag{
						Category: "Initial State",
						Name:     "v-ego",
						Aliases:  []string{"v"},
						Usage:    "Vehicle speed in m/s held for the whole run",
						Value:    20,
					},
					&cli.Float64Flag{
						Category: "Initial State",
						Name:     "y",
						Usage:    "Initial lateral offset in meters",
						Value:    0,
					},
					&cli.Float64Flag{
						Category: "Initial State",
						Name:     "psi",
						Usage:    "Initial heading error in radians",
						Value:    0,
					},
					&cli.Float64Flag{
						Category: "Initial State",
						Name:     "curvature",
						Usage:    "Initial curvature in 1/m",
						Value:    0,
					},
					&cli.Float64Flag{
						Category: "Reference",
						Name:     "shift",
						Usage:    "Lateral offset of the straight reference path in meters",
						Value:    1,
					},
					&cli.IntFlag{
						Category: "Run",
						Name:     "ticks",
						Aliases:  []string{"n"},
						Usage:    "Number of control ticks to simulate",
						Value:    100,
					},
					&cli.IntFlag{
						Category: "Run",
						Name:     "stride",
						Usage:    "Print every n'th tick",
						Value:    5,
					},
					&cli.BoolFlag{
						Category: "Run",
						Name:     "stored-settings",
						Usage:    "Use the persisted settings instead of the defaults",
						Value:    false,
					},
				},
				Usage: "Runs the solver in closed loop against the vehicle model without the message bus",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					var settings ms.LateralSettings
					settings.Default()
					if cmd.Bool("stored-settings") {
						settings.Load()
					}
					steps, err := Simulate(SimulationOptions{
						VEgo:      cmd.Float64("v-ego"),
						Y:         cmd.Float64("y"),
						Psi:       cmd.Float64("psi"),
						Curvature: cmd.Float64("curvature"),
						Shift:     cmd.Float64("shift"),
						Ticks:     cmd.Int("ticks"),
					}, settings)
					fmt.Print(RenderSimulation(steps, cmd.Int("stride")))
					return err
				},
			},
		},
		Name:  "Lateral MPC",
		Usage: "Start an instance of the lateral mpc daemon",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			shouldExit = false
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}

	if shouldExit {
		os.Exit(0)
	}
}
