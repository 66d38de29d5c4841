package walk

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpuslens/gitingest/internal/pattern"
	"github.com/corpuslens/gitingest/internal/types"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func defaultOpts() Options {
	return Options{
		MaxFileSize:  1 << 20,
		MaxFiles:     1000,
		MaxTotalSize: 10 << 20,
		MaxDirDepth:  20,
	}
}

func walkAll(t *testing.T, root string, engine *pattern.Engine, opts Options) (*types.Node, *types.Stats) {
	t.Helper()
	stats := &types.Stats{}
	node, err := Walk(context.Background(), root, engine, opts, stats, nil)
	require.NoError(t, err)
	return node, stats
}

func childNames(n *types.Node) []string {
	names := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		names = append(names, c.Name)
	}
	return names
}

func TestWalkOrdering(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"zeta.go": "z",
		"Alpha.go": "a",
		".hidden.txt": "h",
		"README.md": "r",
		"readme": "r2",
		"src/a.go": "a",
		".config/c.yml": "c",
		"docs/guide.md": "g",
	})
	require.NoError(t, os.Symlink(filepath.Join(dir, "README.md"), filepath.Join(dir, "link.md")))

	engine := pattern.New(nil, nil, nil)
	root, _ := walkAll(t, dir, engine, defaultOpts())

	assert.Equal(t, []string{
		"readme", "README.md", // README group first, case-insensitive alpha
		"Alpha.go", "zeta.go", // non-hidden files
		".hidden.txt",         // hidden files
		"docs", "src",         // non-hidden directories
		".config",             // hidden directories
		"link.md",             // symlinks last
	}, childNames(root))
}

func TestWalkDepthBudget(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a/b/c/deep.txt": "x",
		"a/shallow.txt": "y",
	})

	opts := defaultOpts()
	opts.MaxDirDepth = 2
	root, _ := walkAll(t, dir, pattern.New(nil, nil, nil), opts)

	// a (depth 1) and a/b (depth 2) are traversed; a/b/c (depth 3) is
	// recorded as present but emptied of children.
	a := root.Children[0]
	require.Equal(t, "a", a.Name)
	var b *types.Node
	for _, c := range a.Children {
		if c.Name == "b" {
			b = c
		}
	}
	require.NotNil(t, b)
	require.Len(t, b.Children, 1)
	c := b.Children[0]
	assert.Equal(t, "c", c.Name)
	assert.Empty(t, c.Children)
	assert.Equal(t, 1, root.FileCount, "only a/shallow.txt counts")
}

func TestWalkFileSizeBoundary(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"exact.txt": "0123456789", // 10 bytes
		"over.txt": "0123456789X", // 11 bytes
	})

	opts := defaultOpts()
	opts.MaxFileSize = 10
	root, stats := walkAll(t, dir, pattern.New(nil, nil, nil), opts)

	assert.Equal(t, []string{"exact.txt"}, childNames(root))
	assert.Equal(t, 1, stats.TotalFiles)
	assert.Equal(t, int64(10), stats.TotalSize)
}

func TestWalkFileCountBudget(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.txt": "1", "b.txt": "2", "c.txt": "3",
	})

	opts := defaultOpts()
	opts.MaxFiles = 2
	_, stats := walkAll(t, dir, pattern.New(nil, nil, nil), opts)
	assert.Equal(t, 2, stats.TotalFiles)
}

func TestWalkTotalSizeBudget(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.txt": "12345", "b.txt": "12345", "c.txt": "12345",
	})

	opts := defaultOpts()
	opts.MaxTotalSize = 10
	_, stats := walkAll(t, dir, pattern.New(nil, nil, nil), opts)
	assert.Equal(t, int64(10), stats.TotalSize)
	assert.Equal(t, 2, stats.TotalFiles)
}

func TestWalkSymlinkContainment(t *testing.T) {
	outside := t.TempDir()
	writeTree(t, outside, map[string]string{"secret.txt": "s"})

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"inside.txt": "i"})
	require.NoError(t, os.Symlink(filepath.Join(dir, "inside.txt"), filepath.Join(dir, "good-link")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "secret.txt"), filepath.Join(dir, "bad-link")))

	root, _ := walkAll(t, dir, pattern.New(nil, nil, nil), defaultOpts())

	names := childNames(root)
	assert.Contains(t, names, "good-link")
	assert.NotContains(t, names, "bad-link", "symlink escaping the scan root must be skipped")

	for _, c := range root.Children {
		if c.Name == "good-link" {
			assert.Equal(t, types.KindSymlink, c.Kind)
			assert.NotEmpty(t, c.Target)
		}
	}
}

func TestWalkGitignoreMode(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		".gitignore": "*.log\n# a comment\n",
		"app.go": "package app",
		"debug.log": "noise",
		"sub/trace.log": "noise",
		"sub/keep.go": "package sub",
	})

	t.Run("honored by default", func(t *testing.T) {
		root, _ := walkAll(t, dir, pattern.New(nil, nil, nil), defaultOpts())
		names := childNames(root)
		assert.NotContains(t, names, "debug.log")
		var sub *types.Node
		for _, c := range root.Children {
			if c.Name == "sub" {
				sub = c
			}
		}
		require.NotNil(t, sub)
		assert.Equal(t, []string{"keep.go"}, childNames(sub), "parent .gitignore governs the subtree")
	})

	t.Run("plain file when IncludeGitignored", func(t *testing.T) {
		opts := defaultOpts()
		opts.IncludeGitignored = true
		root, _ := walkAll(t, dir, pattern.New(nil, nil, nil), opts)
		assert.Contains(t, childNames(root), "debug.log")
	})
}

func TestWalkRelPathsArePOSIX(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a/b/c.txt": "x"})

	root, _ := walkAll(t, dir, pattern.New(nil, nil, nil), defaultOpts())
	a := root.Children[0]
	b := a.Children[0]
	c := b.Children[0]
	assert.Equal(t, "a/b/c.txt", c.RelPath)
	assert.Equal(t, 3, c.Depth)
	assert.Equal(t, b.Depth+1, c.Depth)
}

func TestWalkCancellation(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.txt": "1"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats := &types.Stats{}
	_, err := Walk(ctx, dir, pattern.New(nil, nil, nil), defaultOpts(), stats, nil)
	require.Error(t, err)
	assert.True(t, types.IsCancelled(err))
}
