// Package commands holds the condaprep CLI commands.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/condaprep/internal/version"
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Prepare PrepareCmd `cmd:"" help:"Prepare a package recipe and an isolated conda environment for building"`
	Restore RestoreCmd `cmd:"" help:"Restore conda configuration files commented out by a previous prepare"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// Execute parses the command line and runs the selected command.
func Execute() {
	// Recipes rely on environment variables (TOOLCHAIN_ARCH, DATE_NUM, ...);
	// a .env next to the invocation is a convenient way to provide them.
	if err := godotenv.Load(); err == nil {
		slog.Debug("Loaded environment from .env")
	}

	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("condaprep"),
		kong.Description("Conda helper tool for build recipe and environment preparation"),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("condaprep %s (commit %s, built %s)",
				version.Version, version.GitCommit, version.BuildTime),
		},
	)
	if err := ctx.Run(&Global{Logger: slog.Default()}, cli); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
