package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cybertec-postgresql/pgsubst/internal/cli"
	"github.com/cybertec-postgresql/pgsubst/internal/logger"
	urfavecli "github.com/urfave/cli/v3"
)

const version = "1.0.0"

var (
	paramsFlag = &urfavecli.StringFlag{
		Name:    "params",
		Aliases: []string{"p"},
		Usage:   "Bindings file (.json, .yaml or .yml)",
	}
	setFlag = &urfavecli.StringSliceFlag{
		Name:  "set",
		Usage: "Bind a placeholder as name=value; value is parsed as JSON when possible. Overrides --params",
	}
	parallelFlag = &urfavecli.IntFlag{
		Name:  "parallel",
		Usage: "Maximum concurrent renders (1 = sequential)",
	}
	strictFlag = &urfavecli.BoolFlag{
		Name:  "strict",
		Usage: "Exit with status 3 when a placeholder is left unbound",
	}
	verboseFlag = &urfavecli.BoolFlag{
		Name:  "verbose",
		Usage: "Enable debug output",
	}
)

func main() {
	app := &urfavecli.Command{
		Name:    "pgsubst",
		Usage:   "Substitute :name placeholders in PostgreSQL scripts with SQL literals",
		Version: version,
		Commands: []*urfavecli.Command{
			{
				Name:      "render",
				Usage:     "Render templates to stdout or an output directory",
				ArgsUsage: "[path...]",
				Action:    renderCommand,
				Flags: []urfavecli.Flag{
					paramsFlag,
					setFlag,
					parallelFlag,
					strictFlag,
					verboseFlag,
					&urfavecli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Directory for *.rendered.sql files (default: stdout)",
					},
					&urfavecli.BoolFlag{
						Name:  "watch",
						Usage: "Keep running and re-render templates when they change (requires --output)",
					},
				},
			},
			{
				Name:      "exec",
				Usage:     "Render templates and execute them against PostgreSQL",
				ArgsUsage: "[path...]",
				Action:    execCommand,
				Flags: []urfavecli.Flag{
					paramsFlag,
					setFlag,
					parallelFlag,
					verboseFlag,
					&urfavecli.StringFlag{
						Name:    "connection",
						Aliases: []string{"c"},
						Usage:   "PostgreSQL connection string (URI or key=value format). Supports standard PG* environment variables.",
					},
					&urfavecli.DurationFlag{
						Name:  "timeout",
						Usage: "Per-template execution timeout",
					},
					&urfavecli.BoolFlag{
						Name:  "rows",
						Usage: "Print the rows returned by each template (one statement per template)",
					},
					&urfavecli.BoolFlag{
						Name:  "isolated",
						Usage: "Execute in a scratch database that is dropped afterwards",
					},
				},
			},
			{
				Name:      "literal",
				Usage:     "Print a JSON value (or bare string) as a SQL literal",
				ArgsUsage: "<value>",
				Action:    literalCommand,
				Flags: []urfavecli.Flag{
					&urfavecli.StringFlag{
						Name:  "context",
						Usage: "Quoting context (scalar or array-element)",
						Value: "scalar",
					},
				},
			},
			{
				Name:      "placeholders",
				Usage:     "List the placeholders used by templates",
				ArgsUsage: "[path...]",
				Action:    placeholdersCommand,
				Flags: []urfavecli.Flag{
					paramsFlag,
					setFlag,
					strictFlag,
				},
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// configFromFlags builds and validates the configuration shared by commands
func configFromFlags(cmd *urfavecli.Command) *cli.Config {
	config := cli.NewConfig()

	cli.ApplyFlagsToConfig(config,
		cmd.String("connection"),
		cmd.String("params"),
		cmd.String("output"),
		cmd.Int("parallel"),
		cmd.Duration("timeout"),
		cmd.Bool("verbose"),
	)

	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	logger.SetDefault(logger.New(config.Verbose, os.Stderr))
	return config
}

// exit terminates with code when it signals failure
func exit(code int, err error) error {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if code == 0 {
			code = 1
		}
	}
	if code != 0 {
		os.Exit(code)
	}
	return nil
}

// renderCommand handles the 'pgsubst render' command
func renderCommand(ctx context.Context, cmd *urfavecli.Command) error {
	config := configFromFlags(cmd)

	if cmd.Bool("watch") {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return cli.Watch(ctx, config, cmd.Args().Slice(), cmd.StringSlice("set"), nil)
	}
	return exit(cli.Render(ctx, config, cmd.Args().Slice(), cmd.StringSlice("set"),
		cmd.Bool("strict"), os.Stdin, os.Stdout))
}

// execCommand handles the 'pgsubst exec' command
func execCommand(ctx context.Context, cmd *urfavecli.Command) error {
	config := configFromFlags(cmd)
	return exit(cli.Exec(ctx, config, cmd.Args().Slice(), cmd.StringSlice("set"),
		cli.ExecOptions{Rows: cmd.Bool("rows"), Isolated: cmd.Bool("isolated")}, os.Stdin, os.Stdout))
}

// literalCommand handles the 'pgsubst literal' command
func literalCommand(ctx context.Context, cmd *urfavecli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one value, got %d", cmd.Args().Len())
	}
	return cli.Literal(cmd.Args().First(), cmd.String("context"), os.Stdout)
}

// placeholdersCommand handles the 'pgsubst placeholders' command
func placeholdersCommand(ctx context.Context, cmd *urfavecli.Command) error {
	config := configFromFlags(cmd)
	return exit(cli.Placeholders(config, cmd.Args().Slice(), cmd.StringSlice("set"),
		cmd.Bool("strict"), os.Stdin, os.Stdout))
}
