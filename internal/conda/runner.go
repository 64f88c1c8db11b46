// Package conda wraps the external conda tool: environment creation,
// configuration, metadata rendering and script_env embedding. Everything
// here is thin glue over blocking conda invocations; a hang in conda hangs
// the pipeline, which is acceptable for an operator-driven tool.
package conda

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes conda commands with a typed argument vector.
type Runner struct {
	// CondaPath overrides the conda executable; empty means "conda" from PATH.
	CondaPath string
}

var defaultRunner = &Runner{}

func (r *Runner) conda() string {
	if r.CondaPath != "" {
		return r.CondaPath
	}
	return "conda"
}

// CommandError carries the failing argv and captured output; conda buries
// the interesting part of a failure in stdout, so the error surfaces it.
type CommandError struct {
	Args   []string
	Stdout string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "conda %s failed: %v", strings.Join(e.Args, " "), e.Err)
	if out := strings.TrimSpace(e.Stdout); out != "" {
		fmt.Fprintf(&b, "\nstdout:\n%s", out)
	}
	if errOut := strings.TrimSpace(e.Stderr); errOut != "" {
		fmt.Fprintf(&b, "\nstderr:\n%s", errOut)
	}
	return b.String()
}

func (e *CommandError) Unwrap() error { return e.Err }

// Run executes conda with args and returns trimmed stdout.
func (r *Runner) Run(args ...string) (string, error) {
	cmd := exec.Command(r.conda(), args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	outStr := strings.TrimSpace(stdout.String())
	errStr := strings.TrimSpace(stderr.String())
	if err != nil {
		return outStr, &CommandError{Args: args, Stdout: outStr, Stderr: errStr, Err: err}
	}
	return outStr, nil
}

// RunInEnv executes a command inside the environment at envDir.
func (r *Runner) RunInEnv(envDir string, args ...string) (string, error) {
	full := append([]string{"run", "-p", envDir}, args...)
	return r.Run(full...)
}
