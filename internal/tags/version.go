// Package tags normalizes the version tags of a cloned source repository so
// that the nearest tag reachable from HEAD carries a clean version name, and
// derives a package version string from it.
package tags

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/condaprep/internal/gitrepo"
)

// versionRE matches a version substring anywhere inside a tag name:
// required major and minor integers, optional micro and fourth integer, and
// an optional release-candidate suffix. Separators are '.', '_' or '-'.
var versionRE = regexp.MustCompile(`[0-9]+[._-][0-9]+([._-][0-9]+)?([._-][0-9]+)?([._-]*rc[0-9]+)?`)

// ExtractVersion returns the version substring of a tag name and whether one
// was found. Prefix and suffix garbage around the match is discarded.
func ExtractVersion(tag string) (string, bool) {
	match := versionRE.FindString(tag)
	return match, match != ""
}

// DeriveVersion turns the repository's describe output into a package
// version string. Package versions cannot contain '-', the separator used by
// describe, so every dash becomes an underscore.
func DeriveVersion(repo *gitrepo.Repo) (string, error) {
	desc, err := repo.Describe()
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(desc, "-", "_"), nil
}
