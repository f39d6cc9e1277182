package report

import (
	"github.com/urfave/cli/v2"
)

var StandardFlags = []cli.Flag{
	&cli.StringFlag{
		Name:        "workspace",
		Usage:       "The directory to load a workspace from",
		Value:       ".",
		DefaultText: ".",
		Aliases:     []string{"w"},
	},
	&cli.StringFlag{
		Name:    "format",
		Usage:   "Output format: text, json or repr",
		Value:   "text",
		Aliases: []string{"f"},
	},
	&cli.StringFlag{
		Name:  "log-level",
		Usage: "Log level: debug, info, warn or error (overrides the workspace file)",
	},
	&cli.StringFlag{
		Name:  "log-format",
		Usage: "Log format: text or json (overrides the workspace file)",
	},
}
