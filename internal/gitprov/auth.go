package gitprov

import (
	"encoding/base64"
	"net/url"

	"github.com/corpuslens/gitingest/internal/query"
	"github.com/corpuslens/gitingest/pkg/gitwire"
)

// authFor builds a per-invocation gitwire.AuthConfig for rawURL and token,
// scoped to the specific host and applied only for GitHub hosts. Returns
// nil when no auth applies.
func authFor(rawURL, token string) *gitwire.AuthConfig {
	if token == "" {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil || !query.IsGitHubHost(u.Host) {
		return nil
	}
	basic := base64.StdEncoding.EncodeToString([]byte("x-oauth-basic:" + token))
	return &gitwire.AuthConfig{
		Host:   u.Host,
		Header: "Authorization: Basic " + basic,
	}
}
