package conda

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/condaprep/internal/logfields"
	"git.home.luguber.info/inful/condaprep/internal/recipe"
)

// RenderMetadata resolves the recipe through conda render inside the
// prepared environment and loads the result. Build data created while
// rendering is always purged and the intermediate file removed.
func (e *Env) RenderMetadata(recipeDir string) (*recipe.Document, error) {
	slog.Info("Rendering package metadata, please wait", logfields.Path(recipeDir))

	renderedPath := filepath.Join(recipeDir, "rendered_metadata.yaml")
	defer func() {
		if _, err := e.runner.RunInEnv(e.Dir, "conda", "build", "purge-all"); err != nil {
			slog.Warn("Failed to purge render build data", logfields.Error(err))
		}
		if err := os.Remove(renderedPath); err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to remove rendered metadata file", logfields.File(renderedPath), logfields.Error(err))
		}
	}()

	if _, err := e.runner.RunInEnv(e.Dir, "conda", "render", "-f", renderedPath, recipeDir); err != nil {
		return nil, fmt.Errorf("error during package metadata rendering: %w", err)
	}
	data, err := os.ReadFile(renderedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered metadata: %w", err)
	}
	return recipe.ParseYAML(string(data))
}
