// Package query implements the Source Resolver (C1): parsing a raw source
// string into a normalized, read-only types.Query.
package query

import (
	"regexp"
	"strings"
)

// KnownHosts lists the git hosting providers recognized without a scheme,
// probed in this order when a bare "owner/repo" string is given.
var KnownHosts = []string{
	"github.com",
	"gitlab.com",
	"bitbucket.org",
	"gitea.com",
	"codeberg.org",
}

var githubEnterprisePattern = regexp.MustCompile(`^github\.[A-Za-z0-9.-]+$`)

// IsKnownHost reports whether host is one of KnownHosts or a GitHub
// Enterprise-style host ("github.*").
func IsKnownHost(host string) bool {
	for _, h := range KnownHosts {
		if host == h {
			return true
		}
	}
	return host == "github.com" || githubEnterprisePattern.MatchString(host)
}

// IsGitHubHost reports whether host is github.com or a github.* enterprise
// variant, the set the provisioner applies token authentication to.
func IsGitHubHost(host string) bool {
	return host == "github.com" || githubEnterprisePattern.MatchString(host)
}

func hasScheme(s string) bool {
	return strings.Contains(s, "://")
}

func hasDottedHostPrefix(s string) bool {
	first := s
	if i := strings.IndexByte(s, '/'); i >= 0 {
		first = s[:i]
	}
	return strings.Contains(first, ".")
}
