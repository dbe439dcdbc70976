package metadata

import (
	"time"

	"github.com/go-git/go-git/v5"
	giturls "github.com/whilp/git-urls"

	"github.com/synthwatch/synthwatch/pkg/logging"
)

// discoverLocalGit reads the repository containing path, when there is one.
// It is the fallback for runs outside a recognised CI provider, so every
// failure is a debug-level event, never an error.
func discoverLocalGit(path string) *Git {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		logging.S().Debugw("no git repository found", "path", path, "error", err)
		return nil
	}

	g := &Git{}

	if remote, err := repo.Remote("origin"); err == nil && len(remote.Config().URLs) > 0 {
		g.RepositoryURL = sanitizeRemoteURL(remote.Config().URLs[0])
	}

	head, err := repo.Head()
	if err != nil {
		logging.S().Debugw("cannot resolve git HEAD", "error", err)
		return g
	}
	g.CommitSHA = head.Hash().String()
	if head.Name().IsBranch() {
		g.Branch = head.Name().String()
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		logging.S().Debugw("cannot read HEAD commit", "error", err)
		return g
	}
	g.CommitMessage = commit.Message
	g.AuthorName = commit.Author.Name
	g.AuthorEmail = commit.Author.Email
	g.AuthorDate = commit.Author.When.Format(time.RFC3339)
	g.CommitterName = commit.Committer.Name
	g.CommitterEmail = commit.Committer.Email
	g.CommitterDate = commit.Committer.When.Format(time.RFC3339)
	return g
}

// sanitizeRemoteURL normalises a remote URL and strips any embedded
// credentials before it travels in request metadata.
func sanitizeRemoteURL(raw string) string {
	u, err := giturls.Parse(raw)
	if err != nil {
		return raw
	}
	u.User = nil
	return u.String()
}
