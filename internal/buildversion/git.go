package buildversion

import (
	stderrors "errors"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// commitHash returns the abbreviated HEAD commit of the repository containing dir.
func commitHash(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", err
	}
	return head.Hash().String()[:ShortLength], nil
}

// isNoCommit reports whether err means there is no commit to derive a version from.
func isNoCommit(err error) bool {
	return stderrors.Is(err, git.ErrRepositoryNotExists) || stderrors.Is(err, plumbing.ErrReferenceNotFound)
}
