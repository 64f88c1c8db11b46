package gitrepo

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/condaprep/internal/githost"
	"git.home.luguber.info/inful/condaprep/internal/logfields"
	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
)

// Clone clones url into parentDir. The destination directory name is dirName
// when given, otherwise it is derived from the URL (GitHub repository name,
// or the last path segment). The destination must not exist yet; a partially
// cloned tree left behind after an interrupt is kept for inspection.
func Clone(url, parentDir, dirName string) (*Repo, error) {
	if _, err := os.Stat(parentDir); err != nil {
		return nil, fmt.Errorf("clone parent directory %s: %w", parentDir, err)
	}
	if dirName == "" {
		dirName = githost.RepoDirName(url)
	}
	repoPath := filepath.Join(parentDir, dirName)
	if _, err := os.Stat(repoPath); err == nil {
		return nil, fmt.Errorf("clone destination already exists: %s", repoPath)
	}

	slog.Info("Cloning repository", logfields.URL(url), logfields.Path(repoPath))
	_, err := git.PlainClone(repoPath, false, &git.CloneOptions{
		URL:      url,
		Progress: os.Stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clone repository %s: %w", url, err)
	}
	return At(repoPath), nil
}

// CloneRelativeSubmodules clones every submodule declared with a
// "../"-relative URL in the repository's .gitmodules, placing each beside
// the parent working copy under its exact relative name. Relative URLs are
// resolved against the parent's remote URL, not its local path, so nested
// relative chains compose. Submodules with absolute URLs are left for the
// build tool to fetch itself.
func (r *Repo) CloneRelativeSubmodules(parentURL string) error {
	data, err := os.ReadFile(filepath.Join(r.Path, ".gitmodules"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read .gitmodules in %s: %w", r.Path, err)
	}

	modules := gitconfig.NewModules()
	if err := modules.Unmarshal(data); err != nil {
		return fmt.Errorf("failed to parse .gitmodules in %s: %w", r.Path, err)
	}

	for _, sub := range modules.Submodules {
		rel, ok := strings.CutPrefix(sub.URL, "../")
		if !ok {
			continue
		}
		moduleURL, err := resolveRelativeURL(parentURL, rel)
		if err != nil {
			return fmt.Errorf("failed to resolve submodule URL %q against %q: %w", sub.URL, parentURL, err)
		}
		parent := filepath.Dir(r.Path)
		dest := filepath.Join(parent, rel)
		if _, err := os.Stat(dest); err == nil {
			slog.Debug("Submodule already cloned", logfields.Path(dest))
			continue
		}
		// rel keeps the declared name (including any .git suffix) so the
		// parent repository finds it where the submodule config points.
		subRepo, err := Clone(moduleURL, parent, rel)
		if err != nil {
			return err
		}
		if err := subRepo.CloneRelativeSubmodules(moduleURL); err != nil {
			return err
		}
	}
	return nil
}

// resolveRelativeURL joins a relative submodule path onto the parent's
// remote URL. The leading "../" has already been removed, so the reference
// replaces the last path segment of the parent URL.
func resolveRelativeURL(parentURL, rel string) (string, error) {
	base, err := url.Parse(parentURL)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(rel)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}
