// Package digest implements the Digest Assembler (C6): rendering the
// summary, ASCII tree, and concatenated content blocks from a traversed
// node tree.
package digest

import (
	"strconv"
	"strings"

	"github.com/corpuslens/gitingest/internal/types"
)

// Separator is the line delimiting file blocks in the content stream. It
// is exactly 48 "=" characters so the o200k_base tokenizer counts it as
// two tokens instead of one; downstream parsers split on it.
var Separator = strings.Repeat("=", 48)

// Placeholder bodies emitted instead of content for non-text files.
const (
	BinaryPlaceholder = "[Binary file]"
	EmptyPlaceholder  = "[Empty file]"
)

// Renderer produces the three digest artifacts. The pipeline depends only
// on this interface; alternate renderings are additional implementations,
// not subclasses.
type Renderer interface {
	RenderSummary(q *types.Query, root *types.Node) string
	RenderTree(root *types.Node) string
	RenderContent(root *types.Node) string
}

// DefaultRenderer is the stable digest format downstream parsers rely on.
type DefaultRenderer struct{}

var _ Renderer = DefaultRenderer{}

// singleFile returns the lone file node when the digest is rooted at a
// single file (a blob URL or a local file path), nil otherwise.
func singleFile(q *types.Query, root *types.Node) *types.Node {
	if !q.Blob {
		return nil
	}
	var found *types.Node
	WalkFiles(root, func(f *types.Node) { found = f })
	if root.FileCount == 1 {
		return found
	}
	return nil
}

// RenderSummary renders the multi-line summary prefix. The "Estimated
// tokens:" line is appended later by the Token Accountant, once the full
// digest exists to measure.
func (DefaultRenderer) RenderSummary(q *types.Query, root *types.Node) string {
	var b strings.Builder
	if q.SourceKind == types.SourceRemote {
		b.WriteString("Repository: " + q.Owner + "/" + q.Repo + "\n")
	} else {
		b.WriteString("Directory: " + q.Slug + "\n")
	}
	if q.Tag != "" {
		b.WriteString("Tag: " + q.Tag + "\n")
	} else if q.Branch != "" && q.Branch != "main" && q.Branch != "master" {
		b.WriteString("Branch: " + q.Branch + "\n")
	}
	if q.Commit != "" {
		b.WriteString("Commit: " + q.Commit + "\n")
	}

	if f := singleFile(q, root); f != nil {
		b.WriteString("File: " + f.Name + "\n")
		b.WriteString("Lines: " + itoaGrouped(f.LineCount) + "\n")
		return b.String()
	}
	if q.Subpath != "/" && q.Subpath != "" {
		b.WriteString("Subpath: " + q.Subpath + "\n")
	}
	b.WriteString("Files analyzed: " + itoaGrouped(root.FileCount) + "\n")
	return b.String()
}

// RenderTree renders the ASCII box-drawing tree. The root line is the bare
// directory name with a trailing slash; children use "├── "/"└── " with
// "│   " continuation and four-space indentation.
func (DefaultRenderer) RenderTree(root *types.Node) string {
	var b strings.Builder
	b.WriteString(displayName(root) + "\n")
	renderChildren(&b, root, "")
	return b.String()
}

func renderChildren(b *strings.Builder, node *types.Node, prefix string) {
	for i, child := range node.Children {
		last := i == len(node.Children)-1
		connector := "├── "
		continuation := "│   "
		if last {
			connector = "└── "
			continuation = "    "
		}
		b.WriteString(prefix + connector + displayName(child) + "\n")
		if child.Kind == types.KindDirectory {
			renderChildren(b, child, prefix+continuation)
		}
	}
}

func displayName(n *types.Node) string {
	switch n.Kind {
	case types.KindDirectory:
		return n.Name + "/"
	case types.KindSymlink:
		return n.Name + " -> " + n.Target
	default:
		return n.Name
	}
}

// RenderContent concatenates every file block in traversal order.
func (DefaultRenderer) RenderContent(root *types.Node) string {
	return strings.Join(FileBlocks(root), "")
}

// FileBlocks returns one separator-bracketed block per file, in traversal
// order. Exposed separately so the Token Accountant can admit blocks
// atomically under a token budget.
func FileBlocks(root *types.Node) []string {
	var blocks []string
	WalkFiles(root, func(f *types.Node) {
		blocks = append(blocks, fileBlock(f))
	})
	return blocks
}

func fileBlock(f *types.Node) string {
	var b strings.Builder
	b.WriteString(Separator + "\n")
	b.WriteString("FILE: " + f.RelPath + "\n")
	b.WriteString(Separator + "\n")
	body := bodyOf(f)
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

func bodyOf(f *types.Node) string {
	switch f.ContentKind {
	case types.ContentText, types.ContentNotebook:
		return f.Content
	case types.ContentEmptyPlaceholder:
		return EmptyPlaceholder
	case types.ContentBinaryPlaceholder:
		return BinaryPlaceholder
	default:
		return "Error reading content of " + f.Name + ": " + f.ReadError
	}
}

// WalkFiles visits every File node under root in traversal order.
func WalkFiles(root *types.Node, visit func(f *types.Node)) {
	for _, child := range root.Children {
		switch child.Kind {
		case types.KindFile:
			visit(child)
		case types.KindDirectory:
			WalkFiles(child, visit)
		}
	}
}

// itoaGrouped formats n with thousands separators ("12,345").
func itoaGrouped(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
