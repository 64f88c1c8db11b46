package tags

import (
	"log/slog"

	"git.home.luguber.info/inful/condaprep/internal/gitrepo"
	"git.home.luguber.info/inful/condaprep/internal/logfields"
)

// Rewrite normalizes the repository's tags so that the nearest tag reachable
// from HEAD has a pure version name, and returns that name.
//
// Tags without any version substring are dropped and the search repeats with
// the next reachable tag. The first tag that yields a version match is
// rewritten in place (annotated, forced) when its name is not already
// canonical, and rewriting stops there. When no reachable tag ever matches,
// the fallback tag is created on the root commit.
func Rewrite(repo *gitrepo.Repo) (string, error) {
	slog.Info("Rewriting tags", logfields.Path(repo.Path))

	for {
		tag, ref, err := repo.NearestTag()
		if err != nil {
			return "", err
		}
		if tag == "" {
			if err := repo.AddInitialTag(); err != nil {
				return "", err
			}
			return gitrepo.FallbackTag, nil
		}

		version, ok := ExtractVersion(tag)
		if !ok {
			// No version information at all; remove and keep searching.
			// The ref is what addresses the tag, also for misnamed ones.
			if err := repo.DropTag(ref); err != nil {
				return "", err
			}
			continue
		}
		if version != tag {
			commit, err := repo.TagCommit(ref)
			if err != nil {
				return "", err
			}
			if err := repo.DropTag(ref); err != nil {
				return "", err
			}
			if err := repo.AddTag(version, commit); err != nil {
				return "", err
			}
			return version, nil
		}
		return tag, nil
	}
}
