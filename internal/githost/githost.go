// Package githost extracts identity information from git hosting URLs.
//
// Clone destination directories and local channel names are derived from the
// GitHub user/repo parts of a source URL; any other host falls back to the
// last URL path segment.
package githost

import (
	"regexp"
	"strings"
)

var githubRE = regexp.MustCompile(`github\.com[:/](?P<user>[^/\n]+)(/(?P<repo>[^/.].*?))?(\.git|/|$)`)

// Parts returns the GitHub user and repository names embedded in url.
// Either part is empty when the URL does not carry it; non-GitHub URLs
// yield two empty strings.
func Parts(url string) (user, repo string) {
	if url == "" {
		return "", ""
	}
	m := githubRE.FindStringSubmatch(url)
	if m == nil {
		return "", ""
	}
	return m[githubRE.SubexpIndex("user")], m[githubRE.SubexpIndex("repo")]
}

// User returns the GitHub user part of url, or "" when absent.
func User(url string) string {
	user, _ := Parts(url)
	return user
}

// Repo returns the GitHub repository part of url, or "" when absent.
func Repo(url string) string {
	_, repo := Parts(url)
	return repo
}

// RepoDirName picks a directory name for a clone of url: the GitHub
// repository name when the URL is a GitHub one, otherwise the last path
// segment with any ".git" suffix stripped.
func RepoDirName(url string) string {
	if name := Repo(url); name != "" {
		return name
	}
	trimmed := strings.TrimRight(url, "/")
	if i := strings.LastIndexAny(trimmed, "/:"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	return strings.TrimSuffix(trimmed, ".git")
}
