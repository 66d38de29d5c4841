// Package main implements the ingest CLI: one command that turns a Git
// repository or local directory into an LLM-ready text digest.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/mattn/go-isatty"

	"github.com/corpuslens/gitingest/internal/cliprint"
	"github.com/corpuslens/gitingest/internal/ignorelist"
	"github.com/corpuslens/gitingest/internal/ingest"
	"github.com/corpuslens/gitingest/internal/types"
	"github.com/corpuslens/gitingest/internal/version"
	"github.com/corpuslens/gitingest/pkg/gitwire"
)

// Exit codes per the CLI contract.
const (
	exitOK          = 0
	exitGeneric     = 1
	exitInvalidArgs = 2
	exitAuth        = 3
	exitNotFound    = 4
	exitQuota       = 5
)

type cliFlags struct {
	source  string
	output  string
	mode    cliprint.OutputMode
	verbose bool

	opts ingest.Options
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		os.Exit(exitOK)
	}
	switch args[0] {
	case "--help", "-h", "help":
		printUsage()
		os.Exit(exitOK)
	case "--version":
		fmt.Printf("ingest %s\n", version.GetFullVersion())
		os.Exit(exitOK)
	}

	flags, err := parseFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		printUsage()
		os.Exit(exitInvalidArgs)
	}

	styled := isatty.IsTerminal(os.Stderr.Fd())
	printer := cliprint.NewPrinter(flags.mode, styled)

	if !gitwire.IsInstalled() {
		printer.ShowError(types.New(types.ProvisionerError, "git not found on PATH"))
		os.Exit(exitGeneric)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var observer types.Observer
	switch {
	case flags.mode != cliprint.OutputNormal:
		observer = cliprint.NoOpObserver{}
	case styled:
		observer = cliprint.NewLivePhaseView(flags.source)
	default:
		observer = &cliprint.TextPhaseObserver{Printer: printer}
	}

	logger := &cliprint.Logger{Printer: printer, Verbose: flags.verbose}
	pipeline := ingest.New(ingest.EnvFromProcess(), logger, observer)

	res, err := pipeline.Ingest(ctx, flags.source, flags.opts)
	if err != nil {
		printer.ShowError(err)
		os.Exit(exitCodeFor(err))
	}

	if flags.output != "" {
		printer.ShowSuccess("Digest written to "+flags.output, map[string]interface{}{
			"digest_id": res.DigestID,
			"output":    flags.output,
		})
		printer.ShowStatus(res.Summary)
	} else {
		fmt.Print(res.Summary + "\n" + res.Tree + "\n" + res.Content)
	}
	os.Exit(exitOK)
}

func exitCodeFor(err error) int {
	kind, ok := types.KindOf(err)
	if !ok {
		return exitGeneric
	}
	switch kind {
	case types.InvalidSource, types.PatternSyntax:
		return exitInvalidArgs
	case types.InvalidToken, types.Unauthorized:
		return exitAuth
	case types.NotFound, types.RefNotFound, types.UnknownHost:
		return exitNotFound
	case types.QuotaExceeded:
		return exitQuota
	default:
		return exitGeneric
	}
}

func parseFlags(args []string) (*cliFlags, error) {
	flags := &cliFlags{}

	need := func(i int, name string) (string, error) {
		if i+1 >= len(args) {
			return "", fmt.Errorf("%s requires a value", name)
		}
		return args[i+1], nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--output", "-o":
			v, err := need(i, arg)
			if err != nil {
				return nil, err
			}
			flags.output = v
			flags.opts.OutputPath = v
			i++
		case "--max-size", "-s":
			v, err := need(i, arg)
			if err != nil {
				return nil, err
			}
			n, perr := strconv.ParseInt(v, 10, 64)
			if perr != nil || n <= 0 {
				return nil, fmt.Errorf("invalid --max-size %q", v)
			}
			flags.opts.MaxFileSize = n
			i++
		case "--max-tokens":
			v, err := need(i, arg)
			if err != nil {
				return nil, err
			}
			n, perr := strconv.Atoi(v)
			if perr != nil || n <= 0 {
				return nil, fmt.Errorf("invalid --max-tokens %q", v)
			}
			flags.opts.MaxTokens = n
			i++
		case "--include-pattern", "-i":
			v, err := need(i, arg)
			if err != nil {
				return nil, err
			}
			flags.opts.IncludePatterns = append(flags.opts.IncludePatterns, v)
			i++
		case "--exclude-pattern", "-e":
			v, err := need(i, arg)
			if err != nil {
				return nil, err
			}
			flags.opts.ExcludePatterns = append(flags.opts.ExcludePatterns, v)
			i++
		case "--branch", "-b":
			v, err := need(i, arg)
			if err != nil {
				return nil, err
			}
			flags.opts.Branch = v
			i++
		case "--tag":
			v, err := need(i, arg)
			if err != nil {
				return nil, err
			}
			flags.opts.Tag = v
			i++
		case "--commit", "-c":
			v, err := need(i, arg)
			if err != nil {
				return nil, err
			}
			flags.opts.Commit = v
			i++
		case "--token", "-t":
			v, err := need(i, arg)
			if err != nil {
				return nil, err
			}
			flags.opts.Token = v
			i++
		case "--ignore-file":
			v, err := need(i, arg)
			if err != nil {
				return nil, err
			}
			patterns, lerr := ignorelist.LoadOverride(v)
			if lerr != nil {
				return nil, fmt.Errorf("cannot load ignore file %s: %v", v, lerr)
			}
			flags.opts.ExcludePatterns = append(flags.opts.ExcludePatterns, patterns...)
			i++
		case "--include-gitignored":
			flags.opts.IncludeGitignored = true
		case "--include-submodules":
			flags.opts.IncludeSubmodules = true
		case "--json":
			flags.mode = cliprint.OutputJSON
		case "--quiet", "-q":
			flags.mode = cliprint.OutputQuiet
		case "--verbose", "-v":
			flags.verbose = true
		default:
			if len(arg) > 0 && arg[0] == '-' {
				return nil, fmt.Errorf("unknown flag %s", arg)
			}
			if flags.source != "" {
				return nil, fmt.Errorf("unexpected argument %q (source already given)", arg)
			}
			flags.source = arg
		}
	}
	if flags.source == "" {
		return nil, fmt.Errorf("a source (URL, owner/repo, or path) is required")
	}
	refs := 0
	for _, r := range []string{flags.opts.Branch, flags.opts.Tag, flags.opts.Commit} {
		if r != "" {
			refs++
		}
	}
	if refs > 1 {
		return nil, fmt.Errorf("--branch, --tag, and --commit are mutually exclusive")
	}
	return flags, nil
}

func printUsage() {
	fmt.Print(`ingest - turn a Git repository or directory into an LLM-ready digest

Usage:
  ingest <source> [options]

Source:
  A repository URL (https://github.com/owner/repo[/tree/<ref>[/<subpath>]]),
  an owner/repo slug (known hosts are probed in order), or a local path.

Options:
  -o, --output PATH          write the digest to PATH instead of stdout
  -s, --max-size BYTES       skip files larger than BYTES
      --max-tokens N         trim content to fit a token budget
  -i, --include-pattern P    only include paths matching P (repeatable)
  -e, --exclude-pattern P    exclude paths matching P (repeatable)
      --ignore-file PATH     load extra exclude patterns from a YAML file
  -b, --branch REF           ingest a branch
      --tag REF              ingest a tag
  -c, --commit SHA           ingest an exact commit
      --include-gitignored   do not honor .gitignore files
      --include-submodules   clone submodules as well
  -t, --token TOKEN          GitHub personal access token
      --json                 machine-readable status output
  -q, --quiet                suppress status output
  -v, --verbose              debug output
      --version              print version
  -h, --help                 this help
`)
}
