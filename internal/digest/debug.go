package digest

import (
	"fmt"
	"strings"

	"github.com/corpuslens/gitingest/internal/types"
)

// DebugRenderer is an alternate Renderer that annotates every entry with
// sizes and classification, for inspecting what the walker and reader
// decided. Its output is not part of the stable digest format.
type DebugRenderer struct{}

var _ Renderer = DebugRenderer{}

func (DebugRenderer) RenderSummary(q *types.Query, root *types.Node) string {
	var b strings.Builder
	fmt.Fprintf(&b, "source=%s slug=%s id=%s\n", q.SourceKind, q.Slug, q.ID)
	fmt.Fprintf(&b, "budgets: file=%d files=%d total=%d depth=%d\n",
		q.MaxFileSize, q.MaxFiles, q.MaxTotalSize, q.MaxDirDepth)
	fmt.Fprintf(&b, "files=%d dirs=%d\n", root.FileCount, root.DirCount)
	return b.String()
}

func (DebugRenderer) RenderTree(root *types.Node) string {
	var b strings.Builder
	var walk func(n *types.Node)
	walk = func(n *types.Node) {
		fmt.Fprintf(&b, "%*s%s kind=%d depth=%d size=%d\n",
			n.Depth*2, "", n.RelPath, n.Kind, n.Depth, n.SizeBytes)
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return b.String()
}

func (DebugRenderer) RenderContent(root *types.Node) string {
	var b strings.Builder
	WalkFiles(root, func(f *types.Node) {
		fmt.Fprintf(&b, "%s content_kind=%d lines=%d bytes=%d\n",
			f.RelPath, f.ContentKind, f.LineCount, f.SizeBytes)
	})
	return b.String()
}
