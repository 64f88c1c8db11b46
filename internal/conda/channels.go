package conda

import (
	"git.home.luguber.info/inful/condaprep/internal/ci"
	"git.home.luguber.info/inful/condaprep/internal/githost"
	git "github.com/go-git/go-git/v5"
)

// LocalChannels derives the user channels for the recipe's own repository:
// the CI slug's GitHub user first, then the user of every fetch remote, in
// order and deduplicated.
func LocalChannels(repoDir string) []string {
	var urls []string
	if slug := ci.Slug(); slug != "" {
		urls = append(urls, "https://github.com/"+slug)
	}
	urls = append(urls, fetchRemoteURLs(repoDir)...)

	var channels []string
	seen := make(map[string]bool)
	for _, url := range urls {
		user := githost.User(url)
		if user == "" || seen[user] {
			continue
		}
		seen[user] = true
		channels = append(channels, user)
	}
	return channels
}

func fetchRemoteURLs(repoDir string) []string {
	// The recipe directory is normally a subdirectory of the packages
	// repository; walk up to find it like the git binary would.
	repo, err := git.PlainOpenWithOptions(repoDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil
	}
	cfg, err := repo.Config()
	if err != nil {
		return nil
	}
	var urls []string
	for _, remote := range cfg.Remotes {
		urls = append(urls, remote.URLs...)
	}
	return urls
}
