package tags

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/condaprep/internal/gitrepo"
	"git.home.luguber.info/inful/condaprep/internal/logfields"
)

// ExtraTagsFile is an operator-supplied list of "name sha" lines added to
// the first git source after normalization.
const ExtraTagsFile = "extra.tags"

// ApplyExtraTags adds each well-formed line of the recipe's extra.tags file
// as a forced annotated tag. Malformed lines and lines git rejects are
// logged and skipped; the file being absent means the feature is unused.
func ApplyExtraTags(recipeDir string, repo *gitrepo.Repo) error {
	data, err := os.ReadFile(filepath.Join(recipeDir, ExtraTagsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", ExtraTagsFile, err)
	}

	slog.Info("Adding tags from extra.tags file", logfields.Path(repo.Path))
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			slog.Warn("Malformed line in extra.tags", slog.String("line", line))
			continue
		}
		if err := repo.AddTag(fields[0], fields[1]); err != nil {
			slog.Warn("Git had problems adding extra.tags line", slog.String("line", line), logfields.Error(err))
		}
	}
	return nil
}
