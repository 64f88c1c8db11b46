package gitrepo

import (
	"log/slog"

	"git.home.luguber.info/inful/condaprep/internal/logfields"
)

// FallbackTag is created on the root commit when no reachable tag carries
// version information.
const FallbackTag = "0.0"

// Transient identity used for annotated tags so tagging works in clones
// without a configured user. Passed per-command instead of mutating the
// repository config.
const (
	tagUserName  = "condaprep"
	tagUserEmail = "condaprep@git.home.luguber.info"
)

// AddTag creates an annotated tag named name at commitish, replacing any
// existing tag of that name.
func (r *Repo) AddTag(name, commitish string) error {
	_, err := r.Run(
		"-c", "user.name="+tagUserName,
		"-c", "user.email="+tagUserEmail,
		"tag", "--annotate", "--force", "-m", name, name, commitish,
	)
	if err != nil {
		return err
	}
	slog.Info("Tagged object", logfields.Tag(name), logfields.Commit(commitish), logfields.Path(r.Path))
	return nil
}

// DropTag deletes a tag by name.
func (r *Repo) DropTag(name string) error {
	if _, err := r.Run("tag", "-d", name); err != nil {
		return err
	}
	slog.Debug("Dropped tag", logfields.Tag(name), logfields.Path(r.Path))
	return nil
}

// AddInitialTag places the fallback tag on the repository's root commit.
func (r *Repo) AddInitialTag() error {
	root, err := r.RootCommit()
	if err != nil {
		return err
	}
	return r.AddTag(FallbackTag, root)
}
