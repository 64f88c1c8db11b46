package gitrepo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initTestRepo(t *testing.T) *Repo {
	t.Helper()
	if !defaultRunner.Available() {
		t.Skip("git executable not available")
	}
	r := At(t.TempDir())
	mustRun(t, r, "init")
	mustRun(t, r, "config", "user.email", "you@example.com")
	mustRun(t, r, "config", "user.name", "Your Name")
	return r
}

func mustRun(t *testing.T, r *Repo, args ...string) string {
	t.Helper()
	out, err := r.Run(args...)
	require.NoError(t, err)
	return out
}

func commit(t *testing.T, r *Repo, msg string) string {
	t.Helper()
	path := filepath.Join(r.Path, "foo")
	require.NoError(t, os.WriteFile(path, []byte(msg), 0o644))
	mustRun(t, r, "add", "foo")
	mustRun(t, r, "commit", "-m", msg)
	return mustRun(t, r, "rev-parse", "HEAD")
}

func TestNearestTagPicksClosestReachable(t *testing.T) {
	r := initTestRepo(t)

	first := commit(t, r, "first")
	branch := mustRun(t, r, "rev-parse", "--abbrev-ref", "HEAD")

	mustRun(t, r, "checkout", "-b", "fixup")
	commit(t, r, "unreachable")
	mustRun(t, r, "tag", "v0.0-unreachable")

	mustRun(t, r, "checkout", branch)
	commit(t, r, "second")
	mustRun(t, r, "tag", "v0.1")
	commit(t, r, "untagged")
	commit(t, r, "third")
	mustRun(t, r, "tag", "v0.2")

	// Retroactive tag on the oldest commit must not win either.
	mustRun(t, r, "tag", "v0.0-retroactive", first)

	tag, ref, err := r.NearestTag()
	require.NoError(t, err)
	assert.Equal(t, "v0.2", tag)
	assert.Equal(t, "v0.2", ref)
}

func TestNearestTagEmptyWhenUntagged(t *testing.T) {
	r := initTestRepo(t)
	commit(t, r, "first")

	tag, ref, err := r.NearestTag()
	require.NoError(t, err)
	assert.Empty(t, tag)
	assert.Empty(t, ref)
}

func TestRootCommitAndInitialTag(t *testing.T) {
	r := initTestRepo(t)
	first := commit(t, r, "first")
	commit(t, r, "second")

	root, err := r.RootCommit()
	require.NoError(t, err)
	assert.Equal(t, first, root)

	require.NoError(t, r.AddInitialTag())
	tags, err := r.Tags()
	require.NoError(t, err)
	assert.Equal(t, []string{FallbackTag}, tags)

	pointed, err := r.TagCommit(FallbackTag)
	require.NoError(t, err)
	assert.Equal(t, first, pointed)
}

func TestAddTagReplacesExisting(t *testing.T) {
	r := initTestRepo(t)
	first := commit(t, r, "first")
	second := commit(t, r, "second")

	require.NoError(t, r.AddTag("1.0", first))
	require.NoError(t, r.AddTag("1.0", second))

	pointed, err := r.TagCommit("1.0")
	require.NoError(t, err)
	assert.Equal(t, second, pointed)
}

func TestDropTag(t *testing.T) {
	r := initTestRepo(t)
	head := commit(t, r, "first")
	require.NoError(t, r.AddTag("garbage", head))
	require.NoError(t, r.DropTag("garbage"))

	tags, err := r.Tags()
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestDescribeLongFormat(t *testing.T) {
	r := initTestRepo(t)
	commit(t, r, "first")
	mustRun(t, r, "tag", "-a", "-m", "v1.0", "v1.0")
	commit(t, r, "second")

	desc, err := r.Describe()
	require.NoError(t, err)
	assert.Regexp(t, `^v1\.0-1-g[0-9a-f]+$`, desc)
}

func TestCheckoutRevision(t *testing.T) {
	r := initTestRepo(t)
	first := commit(t, r, "first")
	commit(t, r, "second")

	require.NoError(t, r.Checkout(first))
	head, err := r.Head()
	require.NoError(t, err)
	assert.Equal(t, first, head)
}

func TestHeadTimeFromSubdirectory(t *testing.T) {
	r := initTestRepo(t)
	commit(t, r, "first")

	sub := filepath.Join(r.Path, "packages", "litex")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	stamp, err := At(sub).HeadTime("20060102150405")
	require.NoError(t, err)
	assert.Len(t, stamp, 14)
}

func TestResolveRelativeURL(t *testing.T) {
	got, err := resolveRelativeURL("https://github.com/enjoy-digital/litex.git", "migen.git")
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/enjoy-digital/migen.git", got)

	// A nested chain resolves against the URL, not the local path.
	got, err = resolveRelativeURL("https://example.com/group/sub/tool.git", "other.git")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/group/sub/other.git", got)
}
