package main

import (
	"fmt"
	"os"

	"objmodel/inference"
	"objmodel/logging"
	"objmodel/modules"
	"objmodel/report"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "objmodel",
		Usage: "Statically infer attributes, MROs and truth values of Python classes",
		Commands: []*cli.Command{
			{
				Name:      "attrs",
				Usage:     "Infer attributes on an instance of a class",
				ArgsUsage: "<module> <Class> [attr...]",
				Flags:     report.StandardFlags,
				Action: withClass(2, func(c *cli.Context, ws *modules.Workspace, cls *inference.ClassDef) *report.Report {
					return report.Attrs(cls, c.Args().Slice()[2:], ws.NewContext)
				}),
			},
			{
				Name:      "mro",
				Usage:     "Print the method resolution order of a class",
				ArgsUsage: "<module> <Class>",
				Flags:     report.StandardFlags,
				Action: withClass(2, func(c *cli.Context, ws *modules.Workspace, cls *inference.ClassDef) *report.Report {
					return report.MRO(cls, ws.NewContext())
				}),
			},
			{
				Name:      "truth",
				Usage:     "Print the static truth value of an instance of a class",
				ArgsUsage: "<module> <Class>",
				Flags:     report.StandardFlags,
				Action: withClass(2, func(c *cli.Context, ws *modules.Workspace, cls *inference.ClassDef) *report.Report {
					return report.Truth(cls, ws.Manager.Settings())
				}),
			},
			{
				Name:      "super",
				Usage:     "Resolve an attribute through super() inside a class",
				ArgsUsage: "<module> <Class> <attr>",
				Flags:     report.StandardFlags,
				Action: withClass(3, func(c *cli.Context, ws *modules.Workspace, cls *inference.ClassDef) *report.Report {
					return report.Super(cls, c.Args().Get(2), ws.NewContext())
				}),
			},
		},
	}
}

type classAction func(c *cli.Context, ws *modules.Workspace, cls *inference.ClassDef) *report.Report

// withClass loads the workspace, finds the class named by the first two
// arguments and renders what action reports about it.
func withClass(minArgs int, action classAction) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.NArg() < minArgs {
			return fmt.Errorf("usage: %s %s %s", c.App.Name, c.Command.Name, c.Command.ArgsUsage)
		}
		ws, err := loadWorkspace(c)
		if err != nil {
			return err
		}
		cls, err := findClass(ws, c.Args().Get(0), c.Args().Get(1))
		if err != nil {
			return err
		}
		return report.Render(c.App.Writer, action(c, ws, cls), c.String("format"))
	}
}

func loadWorkspace(c *cli.Context) (*modules.Workspace, error) {
	dir := c.String("workspace")
	def, err := modules.LoadWorkspaceDefinitionFrom(dir)
	if err != nil {
		return nil, err
	}

	if lvl := c.String("log-level"); lvl != "" {
		def.Logging.Level = lvl
	}
	if format := c.String("log-format"); format != "" {
		def.Logging.Format = format
	}
	cfg, err := def.LoggerConfig()
	if err != nil {
		return nil, err
	}
	cfg.Output = c.App.ErrWriter
	logger := logging.NewLogger(cfg)

	ws, err := modules.NewWorkspace(dir, def, inference.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded workspace", "name", def.Name, "modules", len(ws.ModuleNames()))
	return ws, nil
}

func findClass(ws *modules.Workspace, module, name string) (*inference.ClassDef, error) {
	mod, err := ws.ModuleFor(module)
	if err != nil {
		return nil, err
	}
	decls := mod.Locals()[name]
	if len(decls) == 0 {
		return nil, fmt.Errorf("module %s has no class %s", module, name)
	}
	cls, ok := decls[len(decls)-1].(*inference.ClassDef)
	if !ok {
		return nil, fmt.Errorf("%s.%s is not a class", module, name)
	}
	return cls, nil
}
