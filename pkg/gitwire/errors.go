package gitwire

import (
	"errors"
	"strings"
)

// Sentinel errors for common git failure modes.
var (
	ErrNotRepo     = errors.New("not a git repository")
	ErrRefNotFound = errors.New("ref not found")
)

// Error wraps an exec error with the command that was run and stderr output.
type Error struct {
	Args   []string // git subcommand and arguments
	Stderr string   // stderr output from git
	Err    error    // underlying exec error
}

func (e *Error) Error() string {
	s := strings.TrimSpace(e.Stderr)
	if s != "" {
		return s
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotRepo reports whether err indicates the directory is not a git repository.
func IsNotRepo(err error) bool {
	var gitErr *Error
	if errors.As(err, &gitErr) {
		return strings.Contains(gitErr.Stderr, "not a git repository")
	}
	return false
}
