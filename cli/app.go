// Package cli implements the detconfig command line tool for
// validating, inspecting and comparing pipeline configs.
package cli

import (
	"io"

	"github.com/edaniels/golog"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var logger golog.Logger

// NewApp returns the detconfig CLI app with the given output writer.
func NewApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:            "detconfig",
		Usage:           "work with detection pipeline configs",
		Writer:          out,
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				logger = golog.NewDebugLogger("cli")
			} else {
				logger = zap.NewNop().Sugar()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "parse and validate one or more config files",
				ArgsUsage: "<file>...",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "dataset",
						Usage: "treat the files as standalone dataset configs",
					},
				},
				Action: ValidateAction,
			},
			{
				Name:      "show",
				Usage:     "print a config with defaults resolved",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "print the typed form as JSON instead of config text",
					},
				},
				Action: ShowAction,
			},
			{
				Name:      "diff",
				Usage:     "compare two config files",
				ArgsUsage: "<left> <right>",
				Action:    DiffAction,
			},
			{
				Name:      "schema",
				Usage:     "print the config schema",
				ArgsUsage: "[section]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "proto",
						Usage: "print the schema definition sources",
					},
				},
				Action: SchemaAction,
			},
		},
	}
}
