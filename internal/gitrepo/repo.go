package gitrepo

import (
	"fmt"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repo is a handle to a git working copy. It never deletes the working copy;
// scratch directory cleanup belongs to the caller.
type Repo struct {
	Path   string
	runner *Runner
}

// At wraps an existing working copy path in a Repo handle.
func At(path string) *Repo {
	return &Repo{Path: path, runner: defaultRunner}
}

// Run executes a git command inside the repository.
func (r *Repo) Run(args ...string) (string, error) {
	return r.runner.Run(r.Path, args...)
}

func (r *Repo) open() (*git.Repository, error) {
	// Recipes usually live in a subdirectory of their repository, so the
	// .git directory is found the way the git binary finds it: by walking
	// up from the path.
	repo, err := git.PlainOpenWithOptions(r.Path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %s: %w", r.Path, err)
	}
	return repo, nil
}

// Head returns the commit hash HEAD points at.
func (r *Repo) Head() (string, error) {
	repo, err := r.open()
	if err != nil {
		return "", err
	}
	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD in %s: %w", r.Path, err)
	}
	return ref.Hash().String(), nil
}

// Checkout moves the worktree to the given revision (branch, tag or hash).
func (r *Repo) Checkout(revision string) error {
	repo, err := r.open()
	if err != nil {
		return err
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return fmt.Errorf("failed to resolve revision %q in %s: %w", revision, r.Path, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree for %s: %w", r.Path, err)
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash}); err != nil {
		return fmt.Errorf("failed to checkout %q in %s: %w", revision, r.Path, err)
	}
	return nil
}

// TagCommit resolves a tag name to the commit it points at, peeling
// annotated tag objects.
func (r *Repo) TagCommit(tag string) (string, error) {
	repo, err := r.open()
	if err != nil {
		return "", err
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(tag))
	if err != nil {
		return "", fmt.Errorf("failed to resolve tag %q in %s: %w", tag, r.Path, err)
	}
	if tagObj, err := repo.TagObject(*hash); err == nil {
		return tagObj.Target.String(), nil
	}
	return hash.String(), nil
}

// Tags lists all tag names in the repository.
func (r *Repo) Tags() ([]string, error) {
	repo, err := r.open()
	if err != nil {
		return nil, err
	}
	iter, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags in %s: %w", r.Path, err)
	}
	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate tags in %s: %w", r.Path, err)
	}
	return names, nil
}

// RootCommit returns the hash of the first parentless commit reachable from
// HEAD.
func (r *Repo) RootCommit() (string, error) {
	repo, err := r.open()
	if err != nil {
		return "", err
	}
	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD in %s: %w", r.Path, err)
	}
	iter, err := repo.Log(&git.LogOptions{From: ref.Hash()})
	if err != nil {
		return "", fmt.Errorf("failed to walk history of %s: %w", r.Path, err)
	}
	var root string
	err = iter.ForEach(func(c *object.Commit) error {
		if c.NumParents() == 0 {
			root = c.Hash.String()
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to walk history of %s: %w", r.Path, err)
	}
	if root == "" {
		return "", fmt.Errorf("no root commit reachable from HEAD in %s", r.Path)
	}
	return root, nil
}

// HeadTime returns the HEAD committer timestamp formatted with layout.
func (r *Repo) HeadTime(layout string) (string, error) {
	repo, err := r.open()
	if err != nil {
		return "", err
	}
	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD in %s: %w", r.Path, err)
	}
	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return "", fmt.Errorf("failed to load HEAD commit in %s: %w", r.Path, err)
	}
	return commit.Committer.When.UTC().Format(layout), nil
}

// AbsPath returns the absolute path of the working copy.
func (r *Repo) AbsPath() (string, error) {
	abs, err := filepath.Abs(r.Path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s: %w", r.Path, err)
	}
	return abs, nil
}
