package query

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/corpuslens/gitingest/internal/pattern"
	"github.com/corpuslens/gitingest/internal/types"
	"github.com/google/uuid"
)

// Prober checks whether a candidate remote URL is reachable; Resolve uses
// it to probe KnownHosts in order for a bare "owner/repo" string.
// internal/gitprov implements this via `git ls-remote`.
type Prober interface {
	Exists(ctx context.Context, rawURL, token string) (bool, error)
}

// RefLister lists a remote's branch and tag names, used to recover
// branches/tags containing "/" in a blob/tree deep link.
type RefLister interface {
	ListBranchesAndTags(ctx context.Context, rawURL, token string) (branches, tags []string, err error)
}

// Options carries the budgets, filters, and flags a Query is built from:
// everything in the ingest option bag except the source string itself.
type Options struct {
	MaxFileSize  int64
	MaxFiles     int
	MaxTotalSize int64
	MaxDirDepth  int

	IncludePatterns []string
	ExcludePatterns []string

	Branch string
	Tag    string
	Commit string

	IncludeGitignored bool
	IncludeSubmodules bool

	Token string

	MaxTokens int

	ScratchRoot string // process-wide temp root; defaults to os.TempDir()/gitingest
}

var hex40 = regexp.MustCompile(`^[0-9a-f]{40}$`)

func isCommitSHA(s string) bool {
	return hex40.MatchString(s)
}

// Resolve parses a raw source string (URL, owner/repo slug, or local
// path) into a normalized Query.
func Resolve(ctx context.Context, source string, opts Options, prober Prober, refs RefLister) (*types.Query, error) {
	source = strings.TrimSpace(source)
	if decoded, err := url.QueryUnescape(source); err == nil {
		source = decoded
	}
	if source == "" {
		return nil, types.New(types.InvalidSource, "empty source")
	}

	q := &types.Query{
		MaxFileSize:       opts.MaxFileSize,
		MaxFiles:          opts.MaxFiles,
		MaxTotalSize:      opts.MaxTotalSize,
		MaxDirDepth:       opts.MaxDirDepth,
		IncludeSubmodules: opts.IncludeSubmodules,
		IncludeGitignored: opts.IncludeGitignored,
		Token:             opts.Token,
		MaxTokens:         opts.MaxTokens,
		ID:                uuid.NewString(),
	}

	include, err := parsePatternList(opts.IncludePatterns)
	if err != nil {
		return nil, err
	}
	exclude, err := parsePatternList(opts.ExcludePatterns)
	if err != nil {
		return nil, err
	}
	q.IncludePatterns = include
	q.IgnorePatterns = exclude

	if fi, statErr := os.Stat(source); statErr == nil {
		return resolveLocal(q, source, fi.IsDir())
	}

	return resolveRemote(ctx, q, source, opts, prober, refs)
}

func parsePatternList(raw []string) ([]string, error) {
	var out []string
	for _, r := range raw {
		parsed, err := pattern.Parse(r)
		if err != nil {
			return nil, types.Wrap(types.PatternSyntax, "invalid pattern", err)
		}
		out = append(out, parsed...)
	}
	return out, nil
}

func resolveLocal(q *types.Query, source string, isDir bool) (*types.Query, error) {
	abs, err := filepath.Abs(source)
	if err != nil {
		return nil, types.Wrap(types.InvalidSource, "cannot resolve local path", err)
	}
	if !isDir {
		// A single local file is treated as its parent directory scoped to
		// that one file via Subpath, mirroring the remote blob case.
		q.RootPath = filepath.Dir(abs)
		q.Subpath = "/" + filepath.Base(abs)
		q.Blob = true
	} else {
		q.RootPath = abs
		q.Subpath = "/"
	}
	q.SourceKind = types.SourceLocal
	parent := filepath.Base(filepath.Dir(abs))
	name := filepath.Base(abs)
	q.Slug = parent + "/" + name
	return q, nil
}

func resolveRemote(ctx context.Context, q *types.Query, source string, opts Options, prober Prober, refs RefLister) (*types.Query, error) {
	q.SourceKind = types.SourceRemote
	q.Subpath = "/"

	var host, rest string

	switch {
	case hasScheme(source):
		u, err := url.Parse(source)
		if err != nil {
			return nil, types.Wrap(types.InvalidSource, "malformed URL", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, types.New(types.InvalidSource, "scheme must be http or https")
		}
		if !IsKnownHost(u.Host) {
			return nil, types.New(types.UnknownHost, "unknown git host "+u.Host).
				WithContext("host", u.Host)
		}
		host = u.Host
		rest = strings.TrimPrefix(u.Path, "/")

	case hasDottedHostPrefix(source):
		first := source
		tail := ""
		if i := strings.IndexByte(source, '/'); i >= 0 {
			first = source[:i]
			tail = source[i+1:]
		}
		if !IsKnownHost(first) {
			return nil, types.New(types.UnknownHost, "unknown git host "+first).
				WithContext("host", first)
		}
		host = first
		rest = tail

	default:
		rest = strings.TrimSuffix(source, "/")
		found := ""
		for _, candidate := range KnownHosts {
			candidateURL := fmt.Sprintf("https://%s/%s", candidate, rest)
			if prober == nil {
				found = candidate
				break
			}
			ok, err := prober.Exists(ctx, candidateURL, opts.Token)
			if err == nil && ok {
				found = candidate
				break
			}
		}
		if found == "" {
			return nil, types.New(types.NotFound, "could not find "+source+" on any known host")
		}
		host = found
	}

	q.Host = host
	rest = strings.TrimSuffix(rest, ".git")
	segments := strings.Split(strings.Trim(rest, "/"), "/")
	if len(segments) < 2 || segments[0] == "" || segments[1] == "" {
		return nil, types.New(types.InvalidSource, "source must include owner and repo").
			WithContext("source", source)
	}
	q.Owner = segments[0]
	q.Repo = strings.TrimSuffix(segments[1], ".git")
	q.Slug = q.Owner + "-" + q.Repo
	remaining := segments[2:]

	if len(remaining) == 0 {
		applyRefOption(q, opts)
		return q, nil
	}

	kind := remaining[0]
	if kind == "issues" || kind == "pull" {
		q.Subpath = "/"
		return q, nil
	}
	if kind != "tree" && kind != "blob" {
		// Unrecognized path shape; treat the whole remainder as a subpath
		// under the default ref.
		applyRefOption(q, opts)
		q.Subpath = "/" + strings.Join(remaining, "/")
		return q, nil
	}

	q.Blob = kind == "blob"
	remaining = remaining[1:]
	if len(remaining) == 0 {
		return nil, types.New(types.InvalidSource, "missing ref after "+kind)
	}

	refSeg, pathSegs := splitRef(remaining, ctx, q, refs, opts.Token)
	if isCommitSHA(refSeg) {
		q.Commit = refSeg
	} else {
		q.Branch = refSeg
	}
	q.Subpath = "/" + path.Join(pathSegs...)
	if q.Subpath == "/." {
		q.Subpath = "/"
	}
	return q, nil
}

// splitRef recovers a ref that may contain "/" by greedily matching against
// the remote's branch and tag name sets when a RefLister is available,
// falling back to treating the first segment as the whole ref.
func splitRef(segments []string, ctx context.Context, q *types.Query, refs RefLister, token string) (ref string, rest []string) {
	if len(segments) == 1 || isCommitSHA(segments[0]) {
		return segments[0], segments[1:]
	}
	if refs == nil {
		return segments[0], segments[1:]
	}
	url := fmt.Sprintf("https://%s/%s/%s", q.Host, q.Owner, q.Repo)
	branches, tags, err := refs.ListBranchesAndTags(ctx, url, token)
	if err != nil {
		return segments[0], segments[1:]
	}
	candidates := append(append([]string{}, branches...), tags...)
	for n := len(segments); n >= 1; n-- {
		candidate := strings.Join(segments[:n], "/")
		for _, c := range candidates {
			if c == candidate {
				return candidate, segments[n:]
			}
		}
	}
	return segments[0], segments[1:]
}

func applyRefOption(q *types.Query, opts Options) {
	switch {
	case opts.Commit != "":
		q.Commit = opts.Commit
	case opts.Tag != "":
		q.Tag = opts.Tag
	case opts.Branch != "":
		q.Branch = opts.Branch
	}
}
