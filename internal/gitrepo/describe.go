package gitrepo

import (
	"log/slog"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/condaprep/internal/logfields"
)

// Older and newer git wordings for a tag whose refs/tags name differs from
// the name stored in the tag object. The first quoted name is the ref, the
// second the stored one; describe-based versions must use the stored name,
// while deleting the tag only works through the ref.
var misnamedTagRE = []*regexp.Regexp{
	regexp.MustCompile(`warning: tag '([^']+)' is really '([^']+)' here`),
	regexp.MustCompile(`warning: tag '([^']+)' is externally known as '([^']+)'`),
}

// NearestTag returns the tag closest to HEAD by graph distance: name is the
// tag object's stored name (the one versions derive from), ref the refs/tags
// entry addressing it. They differ only for misnamed tags. Both are "" when
// no tag is reachable; a failing describe probe is the legitimate "no tag"
// case, not an error.
func (r *Repo) NearestTag() (name, ref string, err error) {
	stdout, stderr, err := r.runner.RunWithStderr(r.Path, "describe", "--tags", "--abbrev=0")
	if err != nil {
		return "", "", nil
	}
	name, ref = resolveTagName(stdout, stderr)
	return name, ref, nil
}

// Describe returns the long describe output for HEAD: nearest tag, commit
// count since it, and abbreviated hash.
func (r *Repo) Describe() (string, error) {
	stdout, stderr, err := r.runner.RunWithStderr(r.Path, "describe", "--long", "--tags")
	if err != nil {
		return "", err
	}
	surfaceUnknownWarnings(stderr)
	return stdout, nil
}

// resolveTagName splits a describe result into the stored tag name and the
// ref addressing it when git warns about an alias; any other warning
// vocabulary is surfaced verbatim.
func resolveTagName(displayed, stderr string) (name, ref string) {
	for _, re := range misnamedTagRE {
		if m := re.FindStringSubmatch(stderr); m != nil {
			slog.Debug("Tag name differs from its ref",
				logfields.Tag(m[2]), slog.String("ref", m[1]), slog.String("displayed", displayed))
			return m[2], m[1]
		}
	}
	surfaceUnknownWarnings(stderr)
	return displayed, displayed
}

func surfaceUnknownWarnings(stderr string) {
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "warning:") {
			slog.Warn("Unrecognized git warning", slog.String("text", line))
		}
	}
}
