package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"git.home.luguber.info/inful/condaprep/internal/conda"
	"git.home.luguber.info/inful/condaprep/internal/ledger"
	"git.home.luguber.info/inful/condaprep/internal/prepare"
	"git.home.luguber.info/inful/condaprep/internal/recipe"
)

// PrepareCmd implements the 'prepare' command.
type PrepareCmd struct {
	Package  string   `arg:"" type:"existingdir" help:"Package recipe directory"`
	Dir      string   `name:"dir" required:"" type:"path" help:"Directory to store generated files and cloned repositories"`
	Channels []string `help:"Each CHANNEL is added to the environment's .condarc (the last one ends up on top)" placeholder:"CHANNEL"`
}

func (p *PrepareCmd) Run(_ *Global, _ *CLI) error {
	if err := os.Mkdir(p.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create working directory: %w", err)
	}
	recipeDir := filepath.Join(p.Dir, "recipe")
	envDir := filepath.Join(p.Dir, "conda-env")
	reposDir := filepath.Join(p.Dir, "git-repos")

	if err := prepare.PrepareDirectory(p.Package, recipeDir); err != nil {
		return err
	}

	env, err := conda.PrepareEnvironment(recipeDir, envDir,
		environmentPackages(), environmentSettings(p.Channels),
		conda.LocalChannels(p.Package), ledger.New(""))
	if err != nil {
		return err
	}

	renderer := &recipe.Renderer{
		RecipeDir: recipeDir,
		ReposDir:  reposDir,
		Metadata:  env,
		EnvVars:   env,
	}
	if err := renderer.Render(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(env.ActivationHint(recipeDir))
	return nil
}

// environmentPackages lists what gets installed in the prepared environment.
func environmentPackages() []string {
	packages := []string{
		"python=3.7",
		"conda-build",
		"conda-verify",
		"anaconda-client",
		"jinja2",
		"pexpect",
	}
	if runtime.GOOS == "linux" || runtime.GOOS == "darwin" {
		packages = append(packages, "ripgrep")
	}
	return packages
}

// environmentSettings lists what gets applied to the environment's .condarc.
func environmentSettings(channels []string) []conda.Setting {
	settings := []conda.Setting{
		{Action: "set", Key: "safety_checks", Values: []string{"disabled"}},
		{Action: "set", Key: "channel_priority", Values: []string{"strict"}},
		{Action: "set", Key: "always_yes", Values: []string{"yes"}},
	}
	if len(channels) > 0 {
		settings = append(settings, conda.Setting{Action: "prepend", Key: "channels", Values: channels})
	}
	return settings
}
