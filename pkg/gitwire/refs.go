package gitwire

import (
	"context"
	"strings"
)

// RemoteRef is one line of `git ls-remote` output.
type RemoteRef struct {
	SHA string
	Ref string // e.g. "refs/heads/main", "refs/tags/v1.0.0", "refs/tags/v1.0.0^{}"
}

// LsRemote lists refs matching pattern (or all refs, if pattern is empty)
// for the remote at url, without requiring a local clone. Used for
// reachability probing and ref resolution.
func (g *Git) LsRemote(ctx context.Context, url string, pattern string) ([]RemoteRef, error) {
	args := []string{"ls-remote", url}
	if pattern != "" {
		args = append(args, pattern)
	}
	lines, err := g.RunLines(ctx, args...)
	if err != nil {
		return nil, err
	}
	refs := make([]RemoteRef, 0, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		refs = append(refs, RemoteRef{SHA: fields[0], Ref: fields[1]})
	}
	return refs, nil
}

// LsRemoteHeads checks basic reachability of a remote by listing its
// branch heads. An empty, error-free result still indicates a reachable
// (if empty) repository; a non-nil error indicates it could not be
// listed at all.
func (g *Git) LsRemoteHeads(ctx context.Context, url string) ([]RemoteRef, error) {
	return g.LsRemote(ctx, url, "refs/heads/*")
}

// PickCommitSHA selects the winning SHA from a set of ls-remote lines for
// a tag pattern: an annotated tag's peeled commit object (ref ending in
// "^{}") wins over the tag object itself; otherwise the first line wins.
func PickCommitSHA(refs []RemoteRef) string {
	if len(refs) == 0 {
		return ""
	}
	for _, r := range refs {
		if strings.HasSuffix(r.Ref, "^{}") {
			return r.SHA
		}
	}
	return refs[0].SHA
}
