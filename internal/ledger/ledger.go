// Package ledger records which configuration files were commented out while
// preparing a build environment, so a later invocation can restore them.
// The record is a plain YAML file on disk; it must survive process exit
// because restore runs as a separate command.
package ledger

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/condaprep/internal/logfields"
	"gopkg.in/yaml.v3"
)

// ModificationLine marks a file as commented out by this tool. Restore
// refuses to touch files that do not start with it.
const ModificationLine = "# Modified by condaprep"

// Ledger is a path-backed list of commented-out files.
type Ledger struct {
	Path string
}

// DefaultPath places the ledger in the user temp directory, matching the
// lifetime of the scratch environments it describes.
func DefaultPath() string {
	return filepath.Join(os.TempDir(), "condaprep_commented_files.yaml")
}

// New returns a ledger at path, falling back to DefaultPath for "".
func New(path string) *Ledger {
	if path == "" {
		path = DefaultPath()
	}
	return &Ledger{Path: path}
}

// Paths returns the recorded file paths, oldest first. A missing ledger is
// an empty list.
func (l *Ledger) Paths() ([]string, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read ledger %s: %w", l.Path, err)
	}
	var paths []string
	if err := yaml.Unmarshal(data, &paths); err != nil {
		return nil, fmt.Errorf("failed to parse ledger %s: %w", l.Path, err)
	}
	return paths, nil
}

// Record appends a path to the ledger and persists it immediately, so an
// interrupted run still leaves a restorable record.
func (l *Ledger) Record(path string) error {
	paths, err := l.Paths()
	if err != nil {
		return err
	}
	paths = append(paths, path)
	data, err := yaml.Marshal(paths)
	if err != nil {
		return fmt.Errorf("failed to serialize ledger: %w", err)
	}
	if err := os.WriteFile(l.Path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write ledger %s: %w", l.Path, err)
	}
	return nil
}

// CommentOut comments every line of path and records it in the ledger.
func (l *Ledger) CommentOut(path string) error {
	if err := commentFile(path); err != nil {
		return err
	}
	if err := l.Record(path); err != nil {
		return err
	}
	slog.Info("Commented out configuration file", logfields.File(path))
	return nil
}

// Restore uncomments every recorded file and removes the ledger. Problems
// with individual files are logged and the rest proceed; operator-supplied
// state is restored as far as possible.
func (l *Ledger) Restore() error {
	paths, err := l.Paths()
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		slog.Info("There are no config files to restore")
		return nil
	}
	for _, path := range paths {
		if err := uncommentFile(path); err != nil {
			slog.Warn("Problem while restoring file", logfields.File(path), logfields.Error(err))
			continue
		}
		slog.Info("Restored configuration file", logfields.File(path))
	}
	if err := os.Remove(l.Path); err != nil {
		return fmt.Errorf("failed to remove ledger %s: %w", l.Path, err)
	}
	return nil
}

func commentFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	var b strings.Builder
	b.WriteString(ModificationLine + "\n")
	for _, line := range strings.SplitAfter(string(data), "\n") {
		if line == "" {
			continue
		}
		b.WriteString("#" + line)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func uncommentFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	lines := strings.SplitAfter(string(data), "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\n") != ModificationLine {
		return fmt.Errorf("%s wasn't modified by condaprep", path)
	}
	var b strings.Builder
	for _, line := range lines[1:] {
		b.WriteString(strings.TrimPrefix(line, "#"))
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
