// Package gitrepo provides the version-control operations needed to prepare
// recipe sources: cloning, checkout, tag manipulation and describe queries.
//
// Graph-level queries (revision resolution, tag listing, commit times) go
// through go-git; operations whose exact semantics belong to the git binary
// (describe, annotated tag creation) run through a typed command runner that
// always takes an argument vector, never an interpolated command string.
package gitrepo

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes git commands inside a repository working copy.
type Runner struct {
	// GitPath overrides the git executable; empty means "git" from PATH.
	GitPath string
}

var defaultRunner = &Runner{}

func (r *Runner) git() string {
	if r.GitPath != "" {
		return r.GitPath
	}
	return "git"
}

// CommandError carries the failing argv and its captured output so the
// operator sees what the external tool actually said.
type CommandError struct {
	Args   []string
	Dir    string
	Stdout string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "git %s failed: %v", strings.Join(e.Args, " "), e.Err)
	if out := strings.TrimSpace(e.Stdout); out != "" {
		fmt.Fprintf(&b, "\nstdout:\n%s", out)
	}
	if errOut := strings.TrimSpace(e.Stderr); errOut != "" {
		fmt.Fprintf(&b, "\nstderr:\n%s", errOut)
	}
	return b.String()
}

func (e *CommandError) Unwrap() error { return e.Err }

// Run executes git with args in dir and returns trimmed stdout.
func (r *Runner) Run(dir string, args ...string) (string, error) {
	stdout, _, err := r.RunWithStderr(dir, args...)
	return stdout, err
}

// RunWithStderr executes git with args in dir, returning trimmed stdout and
// stderr separately. Callers that care about warning text on stderr (tag
// aliasing during describe) use this variant.
func (r *Runner) RunWithStderr(dir string, args ...string) (string, string, error) {
	cmd := exec.Command(r.git(), args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	outStr := strings.TrimSpace(stdout.String())
	errStr := strings.TrimSpace(stderr.String())
	if err != nil {
		return outStr, errStr, &CommandError{
			Args:   args,
			Dir:    dir,
			Stdout: outStr,
			Stderr: errStr,
			Err:    err,
		}
	}
	return outStr, errStr, nil
}

// Available reports whether the git executable can be found.
func (r *Runner) Available() bool {
	_, err := exec.LookPath(r.git())
	return err == nil
}

// Available reports whether the default git executable can be found.
func Available() bool { return defaultRunner.Available() }
