package prepare

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"git.home.luguber.info/inful/condaprep/internal/ci"
	"git.home.luguber.info/inful/condaprep/internal/conda"
	"git.home.luguber.info/inful/condaprep/internal/gitrepo"
	"git.home.luguber.info/inful/condaprep/internal/logfields"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// MetadataFileName is picked up by conda-build and appended to the recipe.
const MetadataFileName = "recipe_append.yaml"

type metadata struct {
	Extra extra `yaml:"extra"`
}

type extra struct {
	BuildType     string       `yaml:"build_type"`
	BuildID       string       `yaml:"build_id"`
	RecipeSource  recipeSource `yaml:"recipe_source"`
	Travis        *travisInfo  `yaml:"travis,omitempty"`
	GitHubActions *actionsInfo `yaml:"github_actions,omitempty"`
	ToolchainArch string       `yaml:"toolchain_arch,omitempty"`
	Condarc       *yaml.Node   `yaml:"condarc,omitempty"`
}

type recipeSource struct {
	Repo     string `yaml:"repo"`
	Branch   string `yaml:"branch"`
	Commit   string `yaml:"commit"`
	Describe string `yaml:"describe"`
	Date     string `yaml:"date"`
}

type travisInfo struct {
	JobID  int    `yaml:"job_id"`
	JobNum string `yaml:"job_num"`
	Event  string `yaml:"event"`
}

type actionsInfo struct {
	ActionID string `yaml:"action_id"`
	RunID    string `yaml:"run_id"`
	RunNum   string `yaml:"run_num"`
	Event    string `yaml:"event"`
}

// WriteMetadata records where the recipe came from and under which CI
// context it is being built, as a recipe_append.yaml in packageDir.
func WriteMetadata(packageDir string) error {
	meta := metadata{
		Extra: extra{
			BuildType:     "local",
			BuildID:       uuid.NewString(),
			RecipeSource:  localRecipeSource(),
			ToolchainArch: os.Getenv("TOOLCHAIN_ARCH"),
		},
	}

	if ci.OnTravis() {
		meta.Extra.BuildType = "travis"
		jobID, _ := strconv.Atoi(os.Getenv("TRAVIS_JOB_ID"))
		meta.Extra.Travis = &travisInfo{
			JobID:  jobID,
			JobNum: os.Getenv("TRAVIS_JOB_NUMBER"),
			Event:  os.Getenv("TRAVIS_EVENT_TYPE"),
		}
		meta.Extra.RecipeSource.Repo = "https://github.com/" + ci.Slug()
		meta.Extra.RecipeSource.Branch = envOr("TRAVIS_BRANCH", "?")
		meta.Extra.RecipeSource.Commit = envOr("TRAVIS_COMMIT", "?")
	}

	if ci.OnGitHubActions() {
		meta.Extra.BuildType = "github_actions"
		meta.Extra.GitHubActions = &actionsInfo{
			ActionID: os.Getenv("GITHUB_ACTION"),
			RunID:    os.Getenv("GITHUB_RUN_ID"),
			RunNum:   os.Getenv("GITHUB_RUN_NUMBER"),
			Event:    os.Getenv("GITHUB_EVENT_NAME"),
		}
		meta.Extra.RecipeSource.Repo = "https://github.com/" + os.Getenv("GITHUB_REPOSITORY")
		meta.Extra.RecipeSource.Branch = envOr("GITHUB_REF", "?")
		meta.Extra.RecipeSource.Commit = os.Getenv("GITHUB_SHA")
	}

	if condarcPath := conda.PackageCondarc(packageDir); condarcPath != "" {
		data, err := os.ReadFile(condarcPath)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", condarcPath, err)
		}
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return fmt.Errorf("failed to parse %s: %w", condarcPath, err)
		}
		if len(node.Content) > 0 {
			meta.Extra.Condarc = node.Content[0]
		}
	}

	out, err := yaml.Marshal(&meta)
	if err != nil {
		return fmt.Errorf("failed to serialize metadata: %w", err)
	}
	path := filepath.Join(packageDir, MetadataFileName)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	slog.Info("Wrote build metadata", logfields.File(path))
	return nil
}

// localRecipeSource probes the repository containing the recipe, i.e. the
// working directory the tool was invoked from. Each probe degrades to a
// marker value instead of failing the run.
func localRecipeSource() recipeSource {
	repo := gitrepo.At(".")
	probe := func(args ...string) string {
		out, err := repo.Run(args...)
		if err != nil {
			return "GIT_ERROR"
		}
		return out
	}
	return recipeSource{
		Repo:     probe("remote", "get-url", "origin"),
		Branch:   probe("rev-parse", "--abbrev-ref", "HEAD"),
		Commit:   probe("rev-parse", "HEAD"),
		Describe: probe("describe", "--long"),
		Date:     time.Now().UTC().Format("20060102_150405"),
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
