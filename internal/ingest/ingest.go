// Package ingest ties the pipeline together: source resolution,
// provisioning, traversal, content reading, digest assembly, and token
// accounting, advanced through the job state machine.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/corpuslens/gitingest/internal/content"
	"github.com/corpuslens/gitingest/internal/digest"
	"github.com/corpuslens/gitingest/internal/gitprov"
	"github.com/corpuslens/gitingest/internal/ignorelist"
	"github.com/corpuslens/gitingest/internal/pattern"
	"github.com/corpuslens/gitingest/internal/query"
	"github.com/corpuslens/gitingest/internal/tokens"
	"github.com/corpuslens/gitingest/internal/types"
	"github.com/corpuslens/gitingest/internal/walk"
)

// Options is the per-call option bag of the ingest API. Zero budgets
// fall back to the Env's values.
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

	// OutputPath, when set, additionally writes
	// summary + "\n" + tree + "\n" + content to that path as UTF-8.
	OutputPath string
}

// Result is the digest tuple plus the job's stable identifier.
type Result struct {
	Summary  string
	Tree     string
	Content  string
	DigestID string
}

// Pipeline wires the components with injectable collaborators. The zero
// collaborators are filled in by New; tests swap in stubs.
type Pipeline struct {
	Env      Env
	Logger   types.Logger
	Observer types.Observer
	Renderer digest.Renderer
	Counter  tokens.Counter
	Prov     *gitprov.Provisioner

	// RemoteURL builds the clone URL for a resolved remote query. Tests
	// point it at a local fixture repository.
	RemoteURL func(q *types.Query) string
}

// New builds a Pipeline over env with default collaborators.
func New(env Env, logger types.Logger, observer types.Observer) *Pipeline {
	if logger == nil {
		logger = types.NopLogger{}
	}
	var counter tokens.Counter = tokens.TiktokenCounter{}
	if env.DisableTokenCounting {
		counter = tokens.HeuristicCounter{}
	}
	return &Pipeline{
		Env:      env,
		Logger:   logger,
		Observer: observer,
		Renderer: digest.DefaultRenderer{},
		Counter:  counter,
		Prov:     gitprov.New(logger),
		RemoteURL: func(q *types.Query) string {
			return fmt.Sprintf("https://%s/%s/%s", q.Host, q.Owner, q.Repo)
		},
	}
}

// Ingest is the package-level convenience entry point: one call over a
// process-environment pipeline with default collaborators.
func Ingest(ctx context.Context, source string, opts Options) (*Result, error) {
	return New(EnvFromProcess(), nil, nil).Ingest(ctx, source, opts)
}

// readWorkers is the bounded fan-out for per-file reads: min(16, cpu*2).
func readWorkers() int {
	n := runtime.NumCPU() * 2
	if n > 16 {
		n = 16
	}
	if n < 1 {
		n = 1
	}
	return n
}

type job struct {
	state    types.JobState
	observer types.Observer
}

func (j *job) transition(to types.JobState) {
	from := j.state
	j.state = to
	if j.observer != nil {
		j.observer.OnTransition(types.Transition{From: from, To: to})
	}
}

// failState maps an error kind to its terminal job state.
func failState(err error) types.JobState {
	kind, _ := types.KindOf(err)
	switch kind {
	case types.Unauthorized, types.InvalidToken:
		return types.JobUnauthorized
	case types.NotFound, types.UnknownHost, types.InvalidSource:
		return types.JobNotFound
	case types.RefNotFound:
		return types.JobRefNotFound
	case types.QuotaExceeded:
		return types.JobQuotaExceeded
	default:
		return types.JobIOError
	}
}

// Ingest runs one ingestion job end to end and returns the digest.
func (p *Pipeline) Ingest(ctx context.Context, source string, opts Options) (*Result, error) {
	j := &job{state: types.JobCreated, observer: p.Observer}
	res, err := p.run(ctx, j, source, opts)
	if err != nil {
		j.transition(failState(err))
		return nil, err
	}
	j.transition(types.JobDone)
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, j *job, source string, opts Options) (*Result, error) {
	j.transition(types.JobResolving)

	qopts := query.Options{
		MaxFileSize:       orInt64(opts.MaxFileSize, p.Env.MaxFileSize),
		MaxFiles:          orInt(opts.MaxFiles, p.Env.MaxFiles),
		MaxTotalSize:      orInt64(opts.MaxTotalSize, p.Env.MaxTotalSize),
		MaxDirDepth:       orInt(opts.MaxDirDepth, p.Env.MaxDirDepth),
		IncludePatterns:   opts.IncludePatterns,
		ExcludePatterns:   opts.ExcludePatterns,
		Branch:            opts.Branch,
		Tag:               opts.Tag,
		Commit:            opts.Commit,
		IncludeGitignored: opts.IncludeGitignored,
		IncludeSubmodules: opts.IncludeSubmodules,
		Token:             opts.Token,
		MaxTokens:         opts.MaxTokens,
		ScratchRoot:       p.Env.TmpRoot,
	}
	if err := gitprov.ValidateTokenFormat(opts.Token); err != nil {
		return nil, err
	}
	q, err := query.Resolve(ctx, source, qopts, p.Prov, p.Prov)
	if err != nil {
		return nil, err
	}

	scanRoot := q.RootPath
	if q.SourceKind == types.SourceRemote {
		j.transition(types.JobProvisioning)
		root, perr := p.provision(ctx, q)
		if perr != nil {
			return nil, perr
		}
		scanRoot = root
		defer p.cleanupScratch(q)
	}

	engine := p.buildEngine(q)

	j.transition(types.JobWalking)
	stats := &types.Stats{}
	wopts := walk.Options{
		MaxFileSize:       q.MaxFileSize,
		MaxFiles:          q.MaxFiles,
		MaxTotalSize:      q.MaxTotalSize,
		MaxDirDepth:       q.MaxDirDepth,
		IncludeGitignored: q.IncludeGitignored,
	}
	root, err := walk.Walk(ctx, scanRoot, engine, wopts, stats, p.Logger)
	if err != nil {
		return nil, err
	}
	// The scratch directory is named by slug for on-disk uniqueness; a
	// tree rooted at the working tree itself is labeled by the bare repo
	// name instead.
	if q.SourceKind == types.SourceRemote {
		sub := q.Subpath
		if q.Blob {
			sub = path.Dir(sub)
		}
		if sub == "/" || sub == "." {
			root.Name = q.Repo
		}
	}
	if root.Name == "" || root.Name == "." {
		root.Name = q.Slug
	}

	j.transition(types.JobReading)
	if err := p.readAll(ctx, root); err != nil {
		return nil, err
	}

	j.transition(types.JobAssembling)
	res, err := p.assemble(q, root)
	if err != nil {
		return nil, err
	}

	if opts.OutputPath != "" {
		text := res.Summary + "\n" + res.Tree + "\n" + res.Content
		if werr := os.WriteFile(opts.OutputPath, []byte(text), 0o644); werr != nil {
			return nil, types.Wrap(types.IOError, "cannot write digest to "+opts.OutputPath, werr)
		}
	}
	return res, nil
}

// provision clones the remote working tree and returns the scan root
// (working tree joined with the query's subpath). The provisioning stage
// runs under its own wall-clock timeout.
func (p *Pipeline) provision(ctx context.Context, q *types.Query) (string, error) {
	pctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	rawURL := p.RemoteURL(q)
	if err := p.Prov.CheckReachable(pctx, rawURL, q.Token); err != nil {
		return "", err
	}

	workDir := filepath.Join(p.Env.TmpRoot, q.ID, q.Slug)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", types.Wrap(types.IOError, "cannot create working directory", err)
	}
	q.ScratchPath = workDir

	commit, err := p.Prov.Provision(pctx, rawURL, q.Token, q, workDir)
	if err != nil {
		if errors.Is(pctx.Err(), context.DeadlineExceeded) {
			return "", types.Wrap(types.Timeout, "provisioning timed out", err)
		}
		return "", err
	}
	q.Commit = commit

	sub := q.Subpath
	if q.Blob {
		sub = path.Dir(sub)
		if sub == "." {
			sub = "/"
		}
	}
	scanRoot := filepath.Join(workDir, filepath.FromSlash(strings.TrimPrefix(sub, "/")))
	if _, serr := os.Stat(scanRoot); serr != nil {
		return "", types.New(types.NotFound, "subpath not found in repository: "+q.Subpath)
	}
	return scanRoot, nil
}

// buildEngine assembles the effective pattern engine: the built-in
// default ignore set plus the user's ignores, with the user's includes
// taking precedence. For a single-file digest the include set narrows to
// exactly that file.
func (p *Pipeline) buildEngine(q *types.Query) *pattern.Engine {
	include := q.IncludePatterns
	if q.Blob {
		name := q.Subpath[strings.LastIndexByte(q.Subpath, '/')+1:]
		include = []string{name}
	}
	return pattern.New(include, ignorelist.Default(), q.IgnorePatterns)
}

// readAll classifies and reads every file node with a bounded worker
// pool. Node order is fixed by the walker; workers only fill content in
// place, so parallelism cannot affect output ordering.
func (p *Pipeline) readAll(ctx context.Context, root *types.Node) error {
	var files []*types.Node
	digest.WalkFiles(root, func(f *types.Node) { files = append(files, f) })
	if len(files) == 0 {
		return nil
	}

	workers := readWorkers()
	if workers > len(files) {
		workers = len(files)
	}
	jobs := make(chan *types.Node, len(files))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range jobs {
				if ctx.Err() != nil {
					return
				}
				content.Read(f)
			}
		}()
	}
	for _, f := range files {
		jobs <- f
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return types.Wrap(types.Cancelled, "read stage cancelled", err)
	}
	return nil
}

func (p *Pipeline) assemble(q *types.Query, root *types.Node) (*Result, error) {
	summary := p.Renderer.RenderSummary(q, root)
	tree := p.Renderer.RenderTree(root)

	var contentText string
	if q.MaxTokens > 0 {
		blocks := digest.FileBlocks(root)
		selected, truncated := tokens.SelectWithinBudget(p.Counter, summary+tree, blocks, q.MaxTokens)
		contentText = selected
		if truncated {
			p.Logger.Warnf("content truncated to %d tokens", q.MaxTokens)
		}
	} else {
		contentText = p.Renderer.RenderContent(root)
	}

	count, precise := tokens.Estimate(p.Counter, tree+contentText)
	summary += "Estimated tokens: " + tokens.Format(count) + "\n"
	if !precise {
		summary += "Warning: precise tokenizer unavailable; estimate is character-based\n"
		p.Logger.Warnf("o200k_base tokenizer unavailable; using character heuristic")
	}

	return &Result{
		Summary:  summary,
		Tree:     tree,
		Content:  contentText,
		DigestID: q.ID,
	}, nil
}

// cleanupScratch removes the job's working tree after assembly. Failures
// are logged, not fatal; the caller-owned reaper sweeps leftovers.
func (p *Pipeline) cleanupScratch(q *types.Query) {
	if q.ScratchPath == "" {
		return
	}
	if err := os.RemoveAll(filepath.Join(p.Env.TmpRoot, q.ID)); err != nil {
		p.Logger.Warnf("could not remove working tree %s: %v", q.ScratchPath, err)
	}
}

// Release removes a job's working tree by id, for hosts that keep trees
// alive past assembly and reap them on an idle timer.
func (p *Pipeline) Release(jobID string) error {
	if jobID == "" {
		return types.New(types.InvalidSource, "empty job id")
	}
	dir := filepath.Join(p.Env.TmpRoot, jobID)
	if err := os.RemoveAll(dir); err != nil {
		return types.Wrap(types.IOError, "cannot remove working tree "+dir, err)
	}
	return nil
}

func orInt64(v, fallback int64) int64 {
	if v > 0 {
		return v
	}
	return fallback
}

func orInt(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
