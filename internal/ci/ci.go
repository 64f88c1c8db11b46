// Package ci detects the continuous-integration context a build runs in.
package ci

import "os"

// OnTravis reports whether the process runs inside a Travis CI job.
func OnTravis() bool { return os.Getenv("TRAVIS") == "true" }

// OnGitHubActions reports whether the process runs inside a GitHub Actions
// job.
func OnGitHubActions() bool { return os.Getenv("GITHUB_ACTIONS") == "true" }

// Slug returns the "user/repo" slug of the repository under CI, or "".
func Slug() string {
	if slug := os.Getenv("TRAVIS_REPO_SLUG"); slug != "" {
		return slug
	}
	if slug := os.Getenv("TRAVIS_PULL_REQUEST_SLUG"); slug != "" {
		return slug
	}
	if slug := os.Getenv("GITHUB_REPOSITORY"); slug != "" {
		return slug
	}
	return ""
}
