// Package gitprov implements the Git Provisioner (C3): reachability,
// token validation, ref resolution, and the shallow/partial clone
// sequence, all routed through pkg/gitwire's single adapter.
package gitprov

import (
	"regexp"

	"github.com/corpuslens/gitingest/internal/types"
)

// classicTokenPattern matches gh[pousr]_ + 36 alphanumerics.
var classicTokenPattern = regexp.MustCompile(`^gh[pousr]_[A-Za-z0-9]{36}$`)

// fineGrainedTokenPattern matches github_pat_ + 22 + "_" + 59 alphanumerics.
var fineGrainedTokenPattern = regexp.MustCompile(`^github_pat_[A-Za-z0-9]{22}_[A-Za-z0-9]{59}$`)

// ValidateTokenFormat checks a personal access token against the two
// well-known GitHub token shapes. An empty token is valid (anonymous
// access).
func ValidateTokenFormat(token string) error {
	if token == "" {
		return nil
	}
	if classicTokenPattern.MatchString(token) || fineGrainedTokenPattern.MatchString(token) {
		return nil
	}
	return types.New(types.InvalidToken, "token does not match a known GitHub token format")
}
