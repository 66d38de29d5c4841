package digest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpuslens/gitingest/internal/types"
)

func toyTree() *types.Node {
	readme := &types.Node{
		Kind: types.KindFile, Name: "README.md", RelPath: "README.md",
		Depth: 1, SizeBytes: 6,
		Content: "# toy\n", ContentKind: types.ContentText, LineCount: 2,
	}
	apy := &types.Node{
		Kind: types.KindFile, Name: "a.py", RelPath: "src/a.py",
		Depth: 2, SizeBytes: 9,
		Content: "print(1)\n", ContentKind: types.ContentText, LineCount: 2,
	}
	src := &types.Node{
		Kind: types.KindDirectory, Name: "src", RelPath: "src",
		Depth: 1, Children: []*types.Node{apy}, FileCount: 1,
	}
	return &types.Node{
		Kind: types.KindDirectory, Name: "toy", RelPath: "",
		Children:  []*types.Node{readme, src},
		FileCount: 2, DirCount: 1,
	}
}

func remoteQuery() *types.Query {
	return &types.Query{
		SourceKind: types.SourceRemote,
		Host:       "github.com", Owner: "acme", Repo: "toy",
		Slug: "acme-toy", Subpath: "/",
	}
}

func TestRenderTree(t *testing.T) {
	tree := DefaultRenderer{}.RenderTree(toyTree())
	assert.Equal(t, "toy/\n├── README.md\n└── src/\n    └── a.py\n", tree)
}

func TestRenderTreeContinuation(t *testing.T) {
	deep := &types.Node{
		Kind: types.KindDirectory, Name: "root",
		Children: []*types.Node{
			{Kind: types.KindDirectory, Name: "a", Children: []*types.Node{
				{Kind: types.KindFile, Name: "x.txt"},
			}},
			{Kind: types.KindFile, Name: "z.txt"},
		},
	}
	tree := DefaultRenderer{}.RenderTree(deep)
	assert.Equal(t, "root/\n├── a/\n│   └── x.txt\n└── z.txt\n", tree)
}

func TestRenderTreeSymlink(t *testing.T) {
	root := &types.Node{
		Kind: types.KindDirectory, Name: "r",
		Children: []*types.Node{
			{Kind: types.KindSymlink, Name: "link", Target: "README.md"},
		},
	}
	tree := DefaultRenderer{}.RenderTree(root)
	assert.Contains(t, tree, "└── link -> README.md\n")
}

func TestRenderSummaryRemote(t *testing.T) {
	q := remoteQuery()
	q.Branch = "dev"
	q.Commit = strings.Repeat("ab", 20)

	sum := DefaultRenderer{}.RenderSummary(q, toyTree())
	assert.True(t, strings.HasPrefix(sum, "Repository: acme/toy\n"))
	assert.Contains(t, sum, "Branch: dev\n")
	assert.Contains(t, sum, "Commit: "+strings.Repeat("ab", 20)+"\n")
	assert.Contains(t, sum, "Files analyzed: 2\n")
}

func TestRenderSummaryDefaultBranchOmitted(t *testing.T) {
	for _, branch := range []string{"main", "master"} {
		q := remoteQuery()
		q.Branch = branch
		sum := DefaultRenderer{}.RenderSummary(q, toyTree())
		assert.NotContains(t, sum, "Branch:", "branch %s is omitted", branch)
	}
}

func TestRenderSummaryTagBeatsBranch(t *testing.T) {
	q := remoteQuery()
	q.Tag = "v1.0.0"
	q.Branch = "dev"
	sum := DefaultRenderer{}.RenderSummary(q, toyTree())
	assert.Contains(t, sum, "Tag: v1.0.0\n")
	assert.NotContains(t, sum, "Branch:")
}

func TestRenderSummaryLocal(t *testing.T) {
	q := &types.Query{SourceKind: types.SourceLocal, Slug: "work/toy", Subpath: "/"}
	sum := DefaultRenderer{}.RenderSummary(q, toyTree())
	assert.True(t, strings.HasPrefix(sum, "Directory: work/toy\n"))
}

func TestRenderSummarySubpath(t *testing.T) {
	q := remoteQuery()
	q.Subpath = "/src"
	sum := DefaultRenderer{}.RenderSummary(q, toyTree())
	assert.Contains(t, sum, "Subpath: /src\n")
}

func TestRenderSummarySingleFile(t *testing.T) {
	f := &types.Node{
		Kind: types.KindFile, Name: "a.py", RelPath: "a.py",
		Content: "print(1)\n", ContentKind: types.ContentText, LineCount: 2,
	}
	root := &types.Node{
		Kind: types.KindDirectory, Name: "toy",
		Children: []*types.Node{f}, FileCount: 1,
	}
	q := remoteQuery()
	q.Blob = true
	q.Subpath = "/src/a.py"

	sum := DefaultRenderer{}.RenderSummary(q, root)
	assert.Contains(t, sum, "File: a.py\n")
	assert.Contains(t, sum, "Lines: 2\n")
	assert.NotContains(t, sum, "Subpath:", "single-file digests omit the subpath line")
	assert.NotContains(t, sum, "Files analyzed:")
}

func TestRenderContent(t *testing.T) {
	content := DefaultRenderer{}.RenderContent(toyTree())

	require.Equal(t, 48, len(Separator))
	require.Equal(t, strings.Repeat("=", 48), Separator)

	blocks := strings.Count(content, Separator)
	assert.Equal(t, 4, blocks, "two files, two separators each")

	readmeIdx := strings.Index(content, "FILE: README.md")
	apyIdx := strings.Index(content, "FILE: src/a.py")
	require.GreaterOrEqual(t, readmeIdx, 0)
	require.GreaterOrEqual(t, apyIdx, 0)
	assert.Less(t, readmeIdx, apyIdx, "traversal order: README before src/a.py")

	assert.Contains(t, content, Separator+"\nFILE: README.md\n"+Separator+"\n# toy\n\n")
	assert.Contains(t, content, Separator+"\nFILE: src/a.py\n"+Separator+"\nprint(1)\n\n")
}

func TestRenderContentPlaceholders(t *testing.T) {
	root := &types.Node{
		Kind: types.KindDirectory, Name: "r",
		Children: []*types.Node{
			{Kind: types.KindFile, Name: "e", RelPath: "e", ContentKind: types.ContentEmptyPlaceholder},
			{Kind: types.KindFile, Name: "b", RelPath: "b", ContentKind: types.ContentBinaryPlaceholder},
			{Kind: types.KindFile, Name: "x", RelPath: "x", ContentKind: types.ContentReadError, ReadError: "permission denied"},
		},
		FileCount: 3,
	}
	content := DefaultRenderer{}.RenderContent(root)
	assert.Contains(t, content, "[Empty file]")
	assert.Contains(t, content, "[Binary file]")
	assert.Contains(t, content, "Error reading content of x: permission denied")
}

func TestFileBlocksMatchesRenderContent(t *testing.T) {
	root := toyTree()
	assert.Equal(t,
		DefaultRenderer{}.RenderContent(root),
		strings.Join(FileBlocks(root), ""))
}

func TestEmptyRepository(t *testing.T) {
	root := &types.Node{Kind: types.KindDirectory, Name: "empty"}
	q := remoteQuery()

	sum := DefaultRenderer{}.RenderSummary(q, root)
	assert.Contains(t, sum, "Files analyzed: 0\n")
	assert.Empty(t, DefaultRenderer{}.RenderContent(root))
}

func TestGroupedCounts(t *testing.T) {
	assert.Equal(t, "0", itoaGrouped(0))
	assert.Equal(t, "999", itoaGrouped(999))
	assert.Equal(t, "1,000", itoaGrouped(1000))
	assert.Equal(t, "12,345", itoaGrouped(12345))
	assert.Equal(t, "1,234,567", itoaGrouped(1234567))
}

func TestDebugRendererImplementsRenderer(t *testing.T) {
	var r Renderer = DebugRenderer{}
	out := r.RenderTree(toyTree())
	assert.Contains(t, out, "src/a.py")
}
