package testutil

import (
	"fmt"
	"testing"
)

// LinearHistory creates a repo with n sequential commits on the default branch.
func LinearHistory(t *testing.T, n int) *TestRepo {
	t.Helper()
	repo := NewTestRepo(t)
	for i := 1; i <= n; i++ {
		repo.Commit(
			fmt.Sprintf("commit %d", i),
			map[string]string{
				fmt.Sprintf("file%d.txt", i): fmt.Sprintf("content %d", i),
			},
		)
	}
	return repo
}

// TaggedRelease creates a repo with an annotated tag at HEAD, exercising
// the peeled-tag resolution path in ls-remote output.
func TaggedRelease(t *testing.T, tag string) *TestRepo {
	t.Helper()
	repo := NewTestRepo(t)
	repo.Commit("release commit", map[string]string{"VERSION": tag})
	repo.t.Helper()
	run(repo.t, repo.Dir, "tag", "-a", tag, "-m", "release "+tag)
	return repo
}

// SubtreeRepo creates a repo with nested directories, useful for exercising
// partial-clone subpath checkout behavior.
func SubtreeRepo(t *testing.T) *TestRepo {
	t.Helper()
	repo := NewTestRepo(t)
	repo.Commit("initial", map[string]string{
		"README.md":   "# toy\n",
		"src/a.py":    "print(1)\n",
		"docs/api.md": "# api\n",
	})
	return repo
}
