// Package prepare copies a recipe directory into the scratch area and
// stamps it with build metadata before rendering.
package prepare

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"git.home.luguber.info/inful/condaprep/internal/gitrepo"
	"git.home.luguber.info/inful/condaprep/internal/logfields"
)

// PrepareDirectory copies packageDir to destDir, exports the DATE_NUM and
// DATE_STR variables many recipes expect, runs the recipe's prescript when
// one exists, and writes the build metadata file.
func PrepareDirectory(packageDir, destDir string) error {
	if _, err := os.Stat(packageDir); err != nil {
		return fmt.Errorf("package directory: %w", err)
	}
	if _, err := os.Stat(destDir); err == nil {
		return fmt.Errorf("destination already exists: %s", destDir)
	}

	setDateEnvVars(packageDir)

	if err := CopyDir(packageDir, destDir); err != nil {
		return fmt.Errorf("failed to copy recipe directory: %w", err)
	}
	if err := runPrescript(destDir); err != nil {
		return err
	}
	return WriteMetadata(destDir)
}

// setDateEnvVars derives DATE_NUM and DATE_STR from the recipe repository's
// HEAD commit time. A recipe outside any git repository is normal; the
// variables are then simply not provided.
func setDateEnvVars(packageDir string) {
	if os.Getenv("DATE_NUM") != "" && os.Getenv("DATE_STR") != "" {
		return
	}
	repo := gitrepo.At(packageDir)

	dateNum, err := repo.HeadTime("20060102150405")
	if err != nil {
		slog.Warn("Failed to set default DATE_NUM and DATE_STR; this is normal if the recipe isn't in a git repository")
		return
	}
	dateStr, err := repo.HeadTime("20060102_150405")
	if err != nil {
		slog.Warn("Failed to set default DATE_NUM and DATE_STR; this is normal if the recipe isn't in a git repository")
		return
	}
	slog.Info("Setting DATE_NUM and DATE_STR", slog.String("date_num", dateNum), slog.String("date_str", dateStr))
	os.Setenv("DATE_NUM", dateNum)
	os.Setenv("DATE_STR", dateStr)
}

// runPrescript executes prescript.$TOOLCHAIN_ARCH.sh inside destDir when
// the recipe ships one; its absence means the feature is unused.
func runPrescript(destDir string) error {
	name := fmt.Sprintf("prescript.%s.sh", os.Getenv("TOOLCHAIN_ARCH"))
	path := filepath.Join(destDir, name)
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	slog.Info("Prescript file found, executing", logfields.File(path))
	cmd := exec.Command("bash", path)
	cmd.Dir = destDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("prescript failed: %w", err)
	}
	slog.Info("Finished executing prescript")
	return nil
}

// CopyDir recursively copies a directory tree.
func CopyDir(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dst, srcInfo.Mode()); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err := CopyDir(srcPath, dstPath); err != nil {
				return err
			}
		} else {
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}
	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}
