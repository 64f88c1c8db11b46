package recipe

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/condaprep/internal/gitrepo"
	"git.home.luguber.info/inful/condaprep/internal/logfields"
	"git.home.luguber.info/inful/condaprep/internal/tags"
	"gopkg.in/yaml.v3"
)

// MetaFileName is the recipe's canonical file name.
const MetaFileName = "meta.yaml"

// Header written at the top of every rendered recipe.
const (
	headerLine1 = "# Rendered by condaprep"
	headerLine2 = "# Original meta.yaml can be found at the end of this file"
)

// MetadataRenderer runs an external render step over the recipe directory
// and returns the fully resolved document.
type MetadataRenderer interface {
	RenderMetadata(recipeDir string) (*Document, error)
}

// EnvVarSink receives the script_env variables retained for the build.
type EnvVarSink interface {
	SetVars(vars map[string]string) error
}

// Renderer rewrites a recipe in place: git sources are cloned and pinned to
// local paths, the package version is derived from the first git source's
// normalized tags, and the original document is preserved as a trailing
// comment block.
type Renderer struct {
	RecipeDir string
	ReposDir  string

	// Environ is the process environment used for template expansion and
	// script_env filtering; nil means the real environment.
	Environ map[string]string

	// Metadata, when set, produces the final document through the external
	// build tool; when nil the locally rewritten text is used directly.
	Metadata MetadataRenderer

	// EnvVars, when set, receives the retained script_env values.
	EnvVars EnvVarSink
}

var versionLineRE = regexp.MustCompile(`(\s+version:).+`)

// Render executes the full rewrite pipeline. A recipe with zero git sources
// is valid; its version stays author-supplied.
func (r *Renderer) Render() error {
	metaPath := filepath.Join(r.RecipeDir, MetaFileName)
	original, err := os.ReadFile(metaPath)
	if err != nil {
		return fmt.Errorf("failed to read recipe: %w", err)
	}
	text := string(original)

	doc, err := r.expand(text)
	if err != nil {
		return err
	}

	text, err = r.resolveSources(doc, text)
	if err != nil {
		return err
	}
	if err := os.WriteFile(metaPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write recipe: %w", err)
	}

	rendered, err := r.renderMetadata(text)
	if err != nil {
		return err
	}

	if err := r.embedScriptEnv(rendered); err != nil {
		return err
	}
	restoreCompilerEntries(rendered, string(original))
	localizeGitURLs(rendered)

	final, err := r.serialize(rendered, string(original))
	if err != nil {
		return err
	}
	if err := os.WriteFile(metaPath, final, 0o644); err != nil {
		return fmt.Errorf("failed to write rendered recipe: %w", err)
	}
	slog.Info("Recipe rendered", logfields.File(metaPath))
	return nil
}

func (r *Renderer) expand(text string) (*Document, error) {
	expanded, err := Expand(text, r.environ())
	if err != nil {
		return nil, err
	}
	return Parse(expanded)
}

// resolveSources clones every git source and rewrites the recipe text:
// git_url fields point at the local clones and the version line carries the
// version derived from the first git source.
func (r *Renderer) resolveSources(doc *Document, text string) (string, error) {
	if !doc.HasGitSources() {
		slog.Info("No git repositories in the package recipe; tag rewriting will be skipped.")
		return text, nil
	}
	sources := doc.Sources()
	if Get(sources[0], "git_url") == nil {
		slog.Info("First source isn't a git repository; tag rewriting will be skipped.")
		return text, nil
	}

	slog.Info("Cloning git sources", logfields.Path(r.ReposDir))
	if err := os.Mkdir(r.ReposDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create scratch directory: %w", err)
	}

	var firstRepo *gitrepo.Repo
	for _, src := range sources {
		urlNode := Get(src, "git_url")
		if urlNode == nil {
			// Mixed git and non-git sources are fine; non-git entries are
			// left untouched.
			continue
		}
		repo, err := r.prepareSource(src, urlNode.Value)
		if err != nil {
			return "", err
		}
		abs, err := repo.AbsPath()
		if err != nil {
			return "", err
		}
		text = strings.ReplaceAll(text, "git_url: "+urlNode.Value, "git_url: "+abs)
		if firstRepo == nil {
			firstRepo = repo
		}
	}

	slog.Info("Modifying git tags to set proper package version")
	if _, err := tags.Rewrite(firstRepo); err != nil {
		return "", err
	}
	if err := tags.ApplyExtraTags(r.RecipeDir, firstRepo); err != nil {
		return "", err
	}
	version, err := tags.DeriveVersion(firstRepo)
	if err != nil {
		return "", err
	}
	slog.Info("Derived package version", logfields.Version(version))
	return versionLineRE.ReplaceAllString(text, "${1} "+version), nil
}

// prepareSource clones one git source into the scratch directory, checks
// out its declared revision and fetches relative submodules.
func (r *Renderer) prepareSource(src *yaml.Node, url string) (*gitrepo.Repo, error) {
	repo, err := gitrepo.Clone(url, r.ReposDir, "")
	if err != nil {
		return nil, err
	}
	if rev := Get(src, "git_rev"); rev != nil && rev.Value != "" {
		if err := repo.Checkout(rev.Value); err != nil {
			return nil, err
		}
	}
	if err := repo.CloneRelativeSubmodules(url); err != nil {
		return nil, err
	}
	return repo, nil
}

// renderMetadata produces the document that will be re-serialized: through
// the external build tool when configured, otherwise by re-expanding the
// rewritten text.
func (r *Renderer) renderMetadata(text string) (*Document, error) {
	if r.Metadata != nil {
		return r.Metadata.RenderMetadata(r.RecipeDir)
	}
	return r.expand(text)
}

// embedScriptEnv keeps only the script_env variables present in the calling
// environment, forwarding their values to the build environment. Unset
// variables are dropped with a warning.
func (r *Renderer) embedScriptEnv(doc *Document) error {
	node := doc.Lookup("build", "script_env")
	if node == nil || node.Kind != yaml.SequenceNode {
		return nil
	}
	environ := r.environ()
	kept := make([]*yaml.Node, 0, len(node.Content))
	values := make(map[string]string)
	for _, entry := range node.Content {
		name := entry.Value
		if value, ok := environ[name]; ok {
			kept = append(kept, entry)
			values[name] = value
			continue
		}
		slog.Warn("Variable isn't set; won't be allowed during building", logfields.Variable(name))
	}
	node.Content = kept
	if len(values) > 0 && r.EnvVars != nil {
		if err := r.EnvVars.SetVars(values); err != nil {
			return err
		}
	}
	return nil
}

var compilerRE = regexp.MustCompile(`\{\{\s*compiler[('"\s]+([a-zA-Z]+)[)'"\s]+\}\}(.*)`)

// restoreCompilerEntries re-appends {{ compiler("lang") }} requirements
// harvested from the original text. Their corresponding packages are already
// resolved, but the directive's presence still influences conda-build.
func restoreCompilerEntries(doc *Document, original string) {
	matches := compilerRE.FindAllStringSubmatch(original, -1)
	if len(matches) == 0 {
		return
	}
	requirements := doc.Lookup("requirements")
	if requirements == nil {
		key := StringScalar("requirements")
		requirements = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		doc.Root.Content = append(doc.Root.Content, key, requirements)
	}
	build := Get(requirements, "build")
	if build == nil {
		key := StringScalar("build")
		build = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		requirements.Content = append(requirements.Content, key, build)
	}
	for _, m := range matches {
		lang, extra := m[1], m[2]
		// Selector annotations only survive inside a quoted string after a
		// comment marker.
		extra = strings.ReplaceAll(extra, "[", "# [")
		build.Content = append(build.Content, StringScalar(`{{ compiler("`+lang+`") }}`+extra))
	}
}

// localizeGitURLs converts local clone paths through cygpath where that
// tool exists; everywhere else this is a no-op.
func localizeGitURLs(doc *Document) {
	cygpath, err := exec.LookPath("cygpath")
	if err != nil {
		return
	}
	for node := range FindKey(doc.Root, "git_url") {
		if info, err := os.Stat(node.Value); err != nil || !info.IsDir() {
			continue
		}
		out, err := exec.Command(cygpath, "-a", node.Value).Output()
		if err != nil {
			continue
		}
		setString(node, strings.TrimSpace(string(out)))
	}
}

func (r *Renderer) serialize(doc *Document, original string) ([]byte, error) {
	body, err := doc.Marshal()
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	b.WriteString(headerLine1 + "\n")
	b.WriteString(headerLine2 + "\n")
	b.WriteString("\n")
	b.Write(body)
	b.WriteString("\n")
	b.WriteString("# Original meta.yaml:\n")
	b.WriteString("#\n")
	for _, line := range strings.Split(strings.TrimRight(original, "\n"), "\n") {
		b.WriteString("# " + line + "\n")
	}
	return []byte(b.String()), nil
}

func (r *Renderer) environ() map[string]string {
	if r.Environ != nil {
		return r.Environ
	}
	environ := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			environ[k] = v
		}
	}
	return environ
}
