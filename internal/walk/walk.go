package walk

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/corpuslens/gitingest/internal/pattern"
	"github.com/corpuslens/gitingest/internal/types"
)

// Options carries the budgets and flags the walker enforces, taken
// straight from the owning types.Query.
type Options struct {
	MaxFileSize       int64
	MaxFiles          int
	MaxTotalSize      int64
	MaxDirDepth       int
	IncludeGitignored bool
}

// Walk performs a depth-first traversal rooted at scanRoot and returns
// the root Directory node. stats is updated monotonically as files are
// accepted.
func Walk(ctx context.Context, scanRoot string, engine *pattern.Engine, opts Options, stats *types.Stats, logger types.Logger) (*types.Node, error) {
	if logger == nil {
		logger = types.NopLogger{}
	}
	absRoot, err := filepath.Abs(scanRoot)
	if err != nil {
		return nil, types.Wrap(types.IOError, "cannot resolve scan root", err)
	}
	root := &types.Node{
		Kind:    types.KindDirectory,
		Name:    filepath.Base(absRoot),
		RelPath: "",
		AbsPath: absRoot,
		Depth:   0,
	}
	if err := walkDir(ctx, absRoot, absRoot, "", root, engine, opts, stats, logger); err != nil {
		return nil, err
	}
	return root, nil
}

func walkDir(ctx context.Context, scanRoot, dirAbs, relPath string, node *types.Node, engine *pattern.Engine, opts Options, stats *types.Stats, logger types.Logger) error {
	if err := ctx.Err(); err != nil {
		return types.Wrap(types.Cancelled, "walk cancelled", err)
	}

	if node.Depth > opts.MaxDirDepth {
		// Recorded as present but emptied of children.
		return nil
	}

	if !opts.IncludeGitignored {
		if gi := readGitignore(filepath.Join(dirAbs, ".gitignore")); len(gi) > 0 {
			// Lines outside the supported glob alphabet (negations,
			// character classes) are skipped, not fatal.
			var parsed []string
			for _, line := range gi {
				p, perr := pattern.Parse(line)
				if perr != nil {
					logger.Debugf("unsupported .gitignore line %q skipped", line)
					continue
				}
				parsed = append(parsed, p...)
			}
			engine = engine.WithExtraIgnore(scopeGitignore(parsed, relPath))
		}
	}

	osEntries, err := os.ReadDir(dirAbs)
	if err != nil {
		return types.Wrap(types.IOError, "cannot read directory "+dirAbs, err)
	}

	entries := make([]dirEntry, 0, len(osEntries))
	for _, e := range osEntries {
		info, ierr := e.Info()
		if ierr != nil {
			continue
		}
		entries = append(entries, dirEntry{name: e.Name(), isDir: e.IsDir() && info.Mode()&os.ModeSymlink == 0, info: info})
	}
	entries = orderEntries(entries)

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return types.Wrap(types.Cancelled, "walk cancelled", err)
		}
		childRel := e.name
		if relPath != "" {
			childRel = relPath + "/" + e.name
		}
		childAbs := filepath.Join(dirAbs, e.name)

		isSymlink := e.info.Mode()&os.ModeSymlink != 0

		if isSymlink {
			child, ok, serr := buildSymlink(scanRoot, childAbs, childRel, node.Depth+1, e.name)
			if serr != nil {
				logger.Warnf("symlink skipped: %v", serr)
				continue
			}
			if !ok {
				continue // resolved target escapes scan root
			}
			if engine.Selected(childRel) {
				node.Children = append(node.Children, child)
			}
			continue
		}

		if e.isDir {
			if !engine.AllowDescent(childRel) {
				continue
			}
			childNode := &types.Node{
				Kind:    types.KindDirectory,
				Name:    e.name,
				RelPath: childRel,
				AbsPath: childAbs,
				Depth:   node.Depth + 1,
			}
			if err := walkDir(ctx, scanRoot, childAbs, childRel, childNode, engine, opts, stats, logger); err != nil {
				return err
			}
			if engine.Selected(childRel) || len(childNode.Children) > 0 {
				node.Children = append(node.Children, childNode)
				node.DirCount++
				node.FileCount += childNode.FileCount
			}
			continue
		}

		// Regular file.
		if !engine.Selected(childRel) {
			continue
		}
		size := e.info.Size()
		if size > opts.MaxFileSize {
			logger.Debugf("skipping %s: exceeds max file size", childRel)
			continue
		}
		if opts.MaxTotalSize > 0 && stats.TotalSize+size > opts.MaxTotalSize {
			logger.Debugf("skipping %s: would exceed max total size", childRel)
			continue
		}
		if opts.MaxFiles > 0 && stats.TotalFiles+1 > opts.MaxFiles {
			logger.Debugf("skipping %s: would exceed max file count", childRel)
			continue
		}
		stats.TotalSize += size
		stats.TotalFiles++
		node.Children = append(node.Children, &types.Node{
			Kind:      types.KindFile,
			Name:      e.name,
			RelPath:   childRel,
			AbsPath:   childAbs,
			Depth:     node.Depth + 1,
			SizeBytes: size,
		})
		node.FileCount++
	}
	return nil
}

func buildSymlink(scanRoot, abs, rel string, depth int, name string) (*types.Node, bool, error) {
	target, err := os.Readlink(abs)
	if err != nil {
		return nil, false, err
	}
	resolved := target
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(filepath.Dir(abs), target)
	}
	resolved, err = filepath.Abs(resolved)
	if err != nil {
		return nil, false, err
	}
	root := scanRoot + string(filepath.Separator)
	if resolved != scanRoot && !strings.HasPrefix(resolved, root) {
		return nil, false, nil
	}
	return &types.Node{
		Kind:    types.KindSymlink,
		Name:    name,
		RelPath: rel,
		AbsPath: abs,
		Depth:   depth,
		Target:  target,
	}, true, nil
}

// scopeGitignore rewrites .gitignore-derived globs so they only govern
// the subtree rooted at dirRel. A pattern containing a separator is
// anchored to the directory itself; a bare pattern matches at any depth
// below it, the way gitignore treats basename patterns.
func scopeGitignore(patterns []string, dirRel string) []string {
	prefix := ""
	if dirRel != "" {
		prefix = dirRel + "/"
	}
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if strings.Contains(p, "/") {
			out = append(out, prefix+p)
			continue
		}
		out = append(out, prefix+p, prefix+"**/"+p)
	}
	return out
}

func readGitignore(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
