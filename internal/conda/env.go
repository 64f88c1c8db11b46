package conda

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"

	"git.home.luguber.info/inful/condaprep/internal/ledger"
	"git.home.luguber.info/inful/condaprep/internal/logfields"
	"gopkg.in/yaml.v3"
)

// Env is a prepared, isolated conda environment.
type Env struct {
	Dir    string
	runner *Runner
}

// Setting is one configuration directive applied to the environment's
// .condarc. Actions are "set", "prepend" (alias "add") and "append".
// Settings are ordered; they apply in declaration order.
type Setting struct {
	Action string
	Key    string
	Values []string
}

var configSourceRE = regexp.MustCompile(`==> (.*) <==`)

// PrepareEnvironment creates an isolated environment at envDir, neutralizes
// every file-backed conda config source (recording each in the ledger for
// later restore), applies settings to the environment's .condarc, and
// installs the recipe's condarc with topChannels put on top.
func PrepareEnvironment(recipeDir, envDir string, packages []string, settings []Setting, topChannels []string, led *ledger.Ledger) (*Env, error) {
	if _, err := os.Stat(filepath.Join(recipeDir, "meta.yaml")); err != nil {
		return nil, fmt.Errorf("recipe directory has no meta.yaml: %w", err)
	}
	if _, err := os.Stat(envDir); err == nil {
		return nil, fmt.Errorf("environment directory already exists: %s", envDir)
	}
	if !filepath.IsAbs(envDir) {
		return nil, fmt.Errorf("environment directory must be absolute: %s", envDir)
	}

	slog.Info("Preparing the environment, please wait", logfields.Env(envDir))
	env := &Env{Dir: envDir, runner: defaultRunner}

	// conda-build is always needed in the created environment.
	if !slices.Contains(packages, "conda-build") {
		packages = append(packages, "conda-build")
	}

	// no-default-packages counteracts the create_default_packages option.
	createArgs := append([]string{"create", "--yes", "--no-default-packages", "-p", envDir}, packages...)
	if _, err := env.runner.Run(createArgs...); err != nil {
		return nil, err
	}

	if err := env.neutralizeConfigSources(led); err != nil {
		return nil, err
	}
	if err := env.ApplySettings(settings); err != nil {
		return nil, err
	}
	if err := env.installPackageCondarc(recipeDir, topChannels); err != nil {
		return nil, err
	}
	return env, nil
}

// neutralizeConfigSources comments out every config file that would
// influence the created environment. Sources that are not files (e.g.
// "envvars") are left alone.
func (e *Env) neutralizeConfigSources(led *ledger.Ledger) error {
	out, err := e.runner.RunInEnv(e.Dir, "conda", "config", "--show-sources")
	if err != nil {
		return err
	}
	modified := false
	for _, m := range configSourceRE.FindAllStringSubmatch(out, -1) {
		source := m[1]
		if !filepath.IsAbs(source) {
			continue
		}
		if err := led.CommentOut(source); err != nil {
			return err
		}
		modified = true
	}
	if modified {
		slog.Info("Use the restore command to bring commented config files back")
	}
	return nil
}

// ApplySettings applies configuration directives to the environment's
// .condarc, one conda invocation per action.
func (e *Env) ApplySettings(settings []Setting) error {
	for _, setting := range settings {
		args := append([]string{"conda", "config", "--env"}, settingArgs(setting)...)
		if _, err := e.runner.RunInEnv(e.Dir, args...); err != nil {
			return err
		}
	}
	return nil
}

func settingArgs(s Setting) []string {
	action := s.Action
	if action == "add" {
		action = "prepend"
	}
	var args []string
	for _, value := range s.Values {
		args = append(args, "--"+action, s.Key, value)
	}
	return args
}

// installPackageCondarc places the recipe's condarc as the environment's
// most important one ($ENV/condarc), prepending topChannels when the file
// declares channels.
func (e *Env) installPackageCondarc(recipeDir string, topChannels []string) error {
	condarcPath := PackageCondarc(recipeDir)
	if condarcPath == "" {
		return nil
	}
	data, err := os.ReadFile(condarcPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", condarcPath, err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return fmt.Errorf("failed to parse %s: %w", condarcPath, err)
	}
	if len(node.Content) > 0 {
		prependChannels(node.Content[0], topChannels)
	}
	out, err := yaml.Marshal(&node)
	if err != nil {
		return fmt.Errorf("failed to serialize condarc: %w", err)
	}
	dest := filepath.Join(e.Dir, "condarc")
	if err := os.WriteFile(dest, out, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	slog.Info("Installed package condarc", logfields.File(dest))
	return nil
}

func prependChannels(mapping *yaml.Node, topChannels []string) {
	if mapping.Kind != yaml.MappingNode || len(topChannels) == 0 {
		return
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value != "channels" || mapping.Content[i+1].Kind != yaml.SequenceNode {
			continue
		}
		channels := mapping.Content[i+1]
		var top []*yaml.Node
		for _, channel := range topChannels {
			top = append(top, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: channel})
		}
		channels.Content = append(top, channels.Content...)
		return
	}
}

// PackageCondarc returns the recipe's condarc path, preferring the
// OS-specific variant (condarc_linux, condarc_macos, condarc_windows) over
// the plain one. Empty means the recipe ships no condarc.
func PackageCondarc(recipeDir string) string {
	var osName string
	switch runtime.GOOS {
	case "linux":
		osName = "linux"
	case "darwin":
		osName = "macos"
	case "windows":
		osName = "windows"
	default:
		return ""
	}
	base := filepath.Join(recipeDir, "condarc")
	if path := base + "_" + osName; fileExists(path) {
		return path
	}
	if fileExists(base) {
		return base
	}
	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// SetVars forwards environment variables into the build environment's
// configuration.
func (e *Env) SetVars(vars map[string]string) error {
	if len(vars) == 0 {
		return nil
	}
	args := []string{"conda", "env", "config", "vars", "set"}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		args = append(args, k+"="+vars[k])
	}
	_, err := e.runner.RunInEnv(e.Dir, args...)
	return err
}

// ActivationHint returns the commands an operator runs to build in the
// prepared environment.
func (e *Env) ActivationHint(recipeDir string) string {
	rel := func(path string) string {
		if wd, err := os.Getwd(); err == nil {
			if r, err := filepath.Rel(wd, path); err == nil {
				return r
			}
		}
		return path
	}
	var b strings.Builder
	b.WriteString("To build the package in the prepared environment, run:\n")
	fmt.Fprintf(&b, "  conda activate %s\n", rel(e.Dir))
	fmt.Fprintf(&b, "  conda build %s\n", rel(recipeDir))
	b.WriteString("or:\n")
	fmt.Fprintf(&b, "  conda run -p %s conda build %s\n", rel(e.Dir), rel(recipeDir))
	return b.String()
}
