package gitwire

import (
	"context"
	"fmt"
	"os/exec"
)

// CloneOpts configures a partial or shallow clone.
type CloneOpts struct {
	Filter       string // e.g. "blob:none" for a treeless partial clone
	Sparse       bool
	SingleBranch bool
	NoCheckout   bool
	Depth        int
}

// Clone clones url into this directory with the given options. With
// NoCheckout set no working tree is checked out, and callers check out
// explicitly via FetchDepth and Checkout.
func (g *Git) Clone(ctx context.Context, url string, opts CloneOpts) error {
	args := []string{"clone"}
	if opts.Filter != "" {
		args = append(args, "--filter="+opts.Filter)
	}
	if opts.Sparse {
		args = append(args, "--sparse")
	}
	if opts.SingleBranch {
		args = append(args, "--single-branch")
	}
	if opts.NoCheckout {
		args = append(args, "--no-checkout")
	}
	if opts.Depth > 0 {
		args = append(args, "--depth", fmt.Sprintf("%d", opts.Depth))
	}
	args = append(args, url, ".")
	return g.RunSilent(ctx, args...)
}

// SparseCheckoutSet restricts the working tree to the given path.
func (g *Git) SparseCheckoutSet(ctx context.Context, path string) error {
	return g.RunSilent(ctx, "sparse-checkout", "set", path)
}

// FetchDepth fetches a single ref from origin at the given depth.
func (g *Git) FetchDepth(ctx context.Context, remote, ref string, depth int) error {
	args := []string{"fetch"}
	if depth > 0 {
		args = append(args, "--depth", fmt.Sprintf("%d", depth))
	}
	args = append(args, remote, ref)
	return g.RunSilent(ctx, args...)
}

// Checkout checks out a ref (branch, tag, or commit hash).
func (g *Git) Checkout(ctx context.Context, ref string) error {
	return g.RunSilent(ctx, "checkout", ref)
}

// SubmoduleUpdate performs a recursive, shallow submodule checkout.
func (g *Git) SubmoduleUpdate(ctx context.Context, depth int) error {
	args := []string{"submodule", "update", "--init", "--recursive"}
	if depth > 0 {
		args = append(args, "--depth", fmt.Sprintf("%d", depth))
	}
	return g.RunSilent(ctx, args...)
}

// ConfigGet reads a git config key, returning ("", nil) if unset.
func (g *Git) ConfigGet(ctx context.Context, key string) (string, error) {
	out, err := g.Run(ctx, "config", "--get", key)
	if err != nil {
		if IsExitStatus1(err) {
			return "", nil
		}
		return "", err
	}
	return out, nil
}

// IsExitStatus1 reports whether err represents a plain "not found"/"no
// match" git exit (status 1 with no stderr), as opposed to a real failure.
func IsExitStatus1(err error) bool {
	var gitErr *Error
	if e, ok := err.(*Error); ok {
		gitErr = e
	} else {
		return false
	}
	exitErr, ok := gitErr.Err.(*exec.ExitError)
	if !ok || exitErr.ExitCode() != 1 {
		return false
	}
	return gitErr.Stderr == ""
}
