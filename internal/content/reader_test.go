package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpuslens/gitingest/internal/types"
)

func fileNode(t *testing.T, dir, name string, data []byte) *types.Node {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return &types.Node{
		Kind:      types.KindFile,
		Name:      name,
		RelPath:   name,
		AbsPath:   p,
		SizeBytes: int64(len(data)),
	}
}

func TestReadUTF8Text(t *testing.T) {
	dir := t.TempDir()
	n := fileNode(t, dir, "a.go", []byte("package a\n\nfunc A() {}\n"))

	Read(n)

	assert.Equal(t, types.ContentText, n.ContentKind)
	assert.Equal(t, "package a\n\nfunc A() {}\n", n.Content)
	assert.Equal(t, 4, n.LineCount)
}

func TestReadEmptyFile(t *testing.T) {
	dir := t.TempDir()
	n := fileNode(t, dir, "empty.txt", nil)

	Read(n)

	assert.Equal(t, types.ContentEmptyPlaceholder, n.ContentKind)
	assert.Empty(t, n.Content)
}

func TestReadBinary(t *testing.T) {
	dir := t.TempDir()
	// An ELF-style header: invalid UTF-8, not decodable as UTF-16 either.
	data := []byte{0x7F, 'E', 'L', 'F', 0x02, 0x01, 0x01, 0x00, 0xFF, 0xFE, 0xFD}
	n := fileNode(t, dir, "prog", data)

	Read(n)

	assert.Equal(t, types.ContentBinaryPlaceholder, n.ContentKind)
	assert.Empty(t, n.Content)
}

func TestReadLatin1Fallback(t *testing.T) {
	dir := t.TempDir()
	// "café" in Latin-1: 0xE9 is invalid as UTF-8.
	n := fileNode(t, dir, "latin.txt", []byte{'c', 'a', 'f', 0xE9, '\n'})

	Read(n)

	require.Equal(t, types.ContentText, n.ContentKind)
	assert.Contains(t, n.Content, "caf")
	assert.NotContains(t, n.Content, string(rune(0xFFFD)), "no replacement characters")
}

func TestReadMissingFile(t *testing.T) {
	n := &types.Node{
		Kind:      types.KindFile,
		Name:      "gone.txt",
		AbsPath:   filepath.Join(t.TempDir(), "gone.txt"),
		SizeBytes: 12,
	}

	Read(n)

	assert.Equal(t, types.ContentReadError, n.ContentKind)
	assert.NotEmpty(t, n.ReadError)
}

func TestRenderNotebook(t *testing.T) {
	nb := `{
  "cells": [
    {"cell_type": "markdown", "source": ["# Title\n", "text"]},
    {"cell_type": "code", "source": ["print(1)\n"],
     "outputs": [{"output_type": "stream", "text": ["1\n"]}]},
    {"cell_type": "code", "source": ["x = 2"],
     "outputs": [{"output_type": "execute_result", "data": {"text/plain": ["2"]}}]}
  ]
}`
	out, err := RenderNotebook([]byte(nb))
	require.NoError(t, err)

	assert.Contains(t, out, "%% Cell-Type: markdown %%")
	assert.Contains(t, out, "# Title\ntext")
	assert.Contains(t, out, "%% Cell-Type: code %%")
	assert.Contains(t, out, "print(1)")
	assert.Contains(t, out, "%% Output %%\n1\n")
	assert.Contains(t, out, "%% Output %%\n2\n")
}

func TestRenderNotebookInvalidJSON(t *testing.T) {
	_, err := RenderNotebook([]byte("not json"))
	require.Error(t, err)
}

func TestReadNotebookFile(t *testing.T) {
	dir := t.TempDir()
	nb := `{"cells": [{"cell_type": "code", "source": ["1+1"], "outputs": []}]}`
	n := fileNode(t, dir, "nb.ipynb", []byte(nb))

	Read(n)

	assert.Equal(t, types.ContentNotebook, n.ContentKind)
	assert.Contains(t, n.Content, "%% Cell-Type: code %%")
}
