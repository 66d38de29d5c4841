package gitprov

import (
	"context"
	"runtime"
	"strings"

	"github.com/corpuslens/gitingest/internal/types"
	"github.com/corpuslens/gitingest/pkg/gitwire"
)

// Provisioner performs reachability checks, ref resolution, and the
// clone/checkout sequence. It is stateless; each call opens a fresh
// gitwire.Git rooted at the caller-supplied directory.
type Provisioner struct {
	Logger types.Logger
}

func New(logger types.Logger) *Provisioner {
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &Provisioner{Logger: logger}
}

// Exists implements query.Prober: a reachable HEAD-equivalent probe via
// `git ls-remote --heads`. 2xx-equivalent (the command succeeds, even with
// zero refs) means reachable; a hard failure means not reachable.
func (p *Provisioner) Exists(ctx context.Context, rawURL, token string) (bool, error) {
	g := gitwire.New("").WithAuth(authFor(rawURL, token))
	_, err := g.LsRemote(ctx, rawURL, "refs/heads/*")
	if err != nil {
		return false, nil
	}
	return true, nil
}

// CheckReachable classifies a remote as reachable, not found, or
// unauthorized.
func (p *Provisioner) CheckReachable(ctx context.Context, rawURL, token string) error {
	if err := ValidateTokenFormat(token); err != nil {
		return err
	}
	g := gitwire.New("").WithAuth(authFor(rawURL, token))
	_, err := g.LsRemote(ctx, rawURL, "")
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "Authentication failed"), strings.Contains(msg, "403"):
		return types.New(types.Unauthorized, "authentication failed for "+rawURL)
	case strings.Contains(msg, "not found"), strings.Contains(msg, "404"), strings.Contains(msg, "Repository not found"):
		return types.New(types.NotFound, "repository not found: "+rawURL)
	default:
		return types.Wrap(types.ProvisionerError, "could not reach repository", err)
	}
}

// ListBranchesAndTags implements query.RefLister via ls-remote.
func (p *Provisioner) ListBranchesAndTags(ctx context.Context, rawURL, token string) (branches, tags []string, err error) {
	g := gitwire.New("").WithAuth(authFor(rawURL, token))
	refs, err := g.LsRemote(ctx, rawURL, "")
	if err != nil {
		return nil, nil, types.Wrap(types.ProvisionerError, "failed to list refs", err)
	}
	for _, r := range refs {
		switch {
		case strings.HasPrefix(r.Ref, "refs/heads/"):
			branches = append(branches, strings.TrimPrefix(r.Ref, "refs/heads/"))
		case strings.HasPrefix(r.Ref, "refs/tags/") && !strings.HasSuffix(r.Ref, "^{}"):
			tags = append(tags, strings.TrimPrefix(r.Ref, "refs/tags/"))
		}
	}
	return branches, tags, nil
}

// ResolveRef resolves a query's commit/tag/branch/none selector to a
// concrete commit SHA. No selector means HEAD.
func (p *Provisioner) ResolveRef(ctx context.Context, rawURL, token string, q *types.Query) (string, error) {
	g := gitwire.New("").WithAuth(authFor(rawURL, token))

	switch {
	case q.Commit != "":
		return q.Commit, nil
	case q.Tag != "":
		refs, err := g.LsRemote(ctx, rawURL, "refs/tags/"+q.Tag+"*")
		if err != nil || len(refs) == 0 {
			return "", types.New(types.RefNotFound, "tag not found: "+q.Tag)
		}
		return gitwire.PickCommitSHA(refs), nil
	case q.Branch != "":
		refs, err := g.LsRemote(ctx, rawURL, "refs/heads/"+q.Branch)
		if err != nil || len(refs) == 0 {
			return "", types.New(types.RefNotFound, "branch not found: "+q.Branch)
		}
		return refs[0].SHA, nil
	default:
		refs, err := g.LsRemote(ctx, rawURL, "HEAD")
		if err != nil || len(refs) == 0 {
			return "", types.New(types.RefNotFound, "could not resolve HEAD")
		}
		return refs[0].SHA, nil
	}
}

// Provision clones the remote into workDir, which must already be an
// empty directory, and returns the resolved commit SHA. A non-root
// subpath turns the clone into a blob-filtered sparse checkout.
func (p *Provisioner) Provision(ctx context.Context, rawURL, token string, q *types.Query, workDir string) (commit string, err error) {
	if werr := warnWindowsLongPaths(ctx, workDir, p.Logger); werr != nil {
		p.Logger.Warnf("longpaths advisory: %v", werr)
	}

	commit, err = p.ResolveRef(ctx, rawURL, token, q)
	if err != nil {
		return "", err
	}

	g := gitwire.New(workDir).WithAuth(authFor(rawURL, token))

	partial := q.Subpath != "/"
	opts := gitwire.CloneOpts{SingleBranch: true, NoCheckout: true, Depth: 1}
	if partial {
		opts.Filter = "blob:none"
		opts.Sparse = true
	}
	if err := g.Clone(ctx, rawURL, opts); err != nil {
		return "", types.Wrap(types.ProvisionerError, "clone failed", err)
	}

	if partial {
		sparsePath := strings.TrimPrefix(q.Subpath, "/")
		if q.Blob {
			if idx := strings.LastIndexByte(sparsePath, '/'); idx >= 0 {
				sparsePath = sparsePath[:idx]
			} else {
				sparsePath = "."
			}
		}
		if err := g.SparseCheckoutSet(ctx, sparsePath); err != nil {
			return "", types.Wrap(types.ProvisionerError, "sparse-checkout set failed", err)
		}
	}

	if err := g.FetchDepth(ctx, "origin", commit, 1); err != nil {
		return "", types.Wrap(types.ProvisionerError, "fetch failed", err)
	}
	if err := g.Checkout(ctx, commit); err != nil {
		return "", types.Wrap(types.ProvisionerError, "checkout failed", err)
	}
	if q.IncludeSubmodules {
		if err := g.SubmoduleUpdate(ctx, 1); err != nil {
			return "", types.Wrap(types.ProvisionerError, "submodule update failed", err)
		}
	}
	return commit, nil
}

// warnWindowsLongPaths emits a non-fatal advisory when core.longpaths is
// not enabled on Windows.
func warnWindowsLongPaths(ctx context.Context, dir string, logger types.Logger) error {
	if runtime.GOOS != "windows" {
		return nil
	}
	g := gitwire.New(dir)
	val, err := g.ConfigGet(ctx, "core.longpaths")
	if err == nil && val != "true" {
		logger.Warnf("core.longpaths is not enabled; long paths in this repository may fail to clone")
	}
	return nil
}
