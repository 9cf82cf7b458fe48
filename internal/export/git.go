package export

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/autosdlc/autosdlc/internal/errors"
)

// CommitOptions configures Commit.
type CommitOptions struct {
	Message     string
	AuthorName  string
	AuthorEmail string
	When        time.Time
}

// Commit stages paths (relative to dir, slash separated) in the repository
// at dir, creating the repository when dir is not one, and commits them. It
// returns the commit hash.
func Commit(dir string, paths []string, opts CommitOptions) (string, error) {
	repo, err := git.PlainOpen(dir)
	if stderrors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(dir, false)
	}
	if err != nil {
		return "", gitError("open repository", dir, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", gitError("open worktree", dir, err)
	}

	for _, p := range paths {
		if _, err := wt.Add(p); err != nil {
			return "", gitError(fmt.Sprintf("stage %s", p), dir, err)
		}
	}

	if opts.AuthorName == "" {
		opts.AuthorName = "AutoSDLC"
	}
	if opts.AuthorEmail == "" {
		opts.AuthorEmail = "autosdlc@localhost"
	}
	if opts.When.IsZero() {
		opts.When = time.Now()
	}

	hash, err := wt.Commit(opts.Message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  opts.AuthorName,
			Email: opts.AuthorEmail,
			When:  opts.When,
		},
	})
	if err != nil {
		return "", gitError("commit", dir, err)
	}
	return hash.String(), nil
}

func gitError(action, dir string, err error) error {
	return errors.Wrap(errors.ErrCodeGitFailed, fmt.Sprintf("git %s in %s failed", action, dir), err)
}
