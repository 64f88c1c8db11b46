package conda

import (
	"os"
	"path/filepath"
	"testing"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearCIEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TRAVIS_REPO_SLUG", "")
	t.Setenv("TRAVIS_PULL_REQUEST_SLUG", "")
	t.Setenv("GITHUB_REPOSITORY", "")
}

func TestLocalChannels(t *testing.T) {
	clearCIEnv(t)
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	_, err = repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{"https://github.com/enjoy-digital/litex.git"},
	})
	require.NoError(t, err)
	_, err = repo.CreateRemote(&config.RemoteConfig{
		Name: "upstream",
		URLs: []string{"https://github.com/litex-hub/litex.git"},
	})
	require.NoError(t, err)

	channels := LocalChannels(dir)
	assert.ElementsMatch(t, []string{"enjoy-digital", "litex-hub"}, channels)
}

func TestLocalChannelsFromSubdirectory(t *testing.T) {
	clearCIEnv(t)
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	_, err = repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{"https://github.com/litex-hub/litex-conda-packages.git"},
	})
	require.NoError(t, err)

	// Recipes live below the repository root; detection must walk up.
	sub := filepath.Join(dir, "packages", "litex")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	assert.Equal(t, []string{"litex-hub"}, LocalChannels(sub))
}

func TestLocalChannelsNonRepo(t *testing.T) {
	clearCIEnv(t)
	assert.Empty(t, LocalChannels(t.TempDir()))
}

func TestLocalChannelsUsesCISlug(t *testing.T) {
	clearCIEnv(t)
	t.Setenv("TRAVIS_REPO_SLUG", "litex-hub/litex-conda-packages")
	channels := LocalChannels(t.TempDir())
	assert.Equal(t, []string{"litex-hub"}, channels)
}
