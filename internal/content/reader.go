// Package content implements the Content Reader (C5): per-file
// classification (text/binary/notebook/empty) and UTF-8 text with
// encoding fallback.
package content

import (
	"bytes"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/corpuslens/gitingest/internal/types"
)

const probeSize = 1024

// fallbackEncodings is the OS-preferred decode list tried after UTF-8
// fails on the probe chunk.
var fallbackEncodings = []struct {
	name string
	enc  encoding.Encoding
}{
	{"utf-16le", unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)},
	{"utf-16be", unicode.UTF16(unicode.BigEndian, unicode.UseBOM)},
	{"windows-1252", charmap.Windows1252},
	{"latin-1", charmap.ISO8859_1},
}

// decode runs b through enc and rejects the result when the decoder had
// to substitute replacement characters; charmap and UTF-16 decoders never
// hard-error, so substitution is what a failed decode looks like.
func decode(enc encoding.Encoding, b []byte) (string, bool) {
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", false
	}
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", false
	}
	return string(out), true
}

// trimPartialRune drops up to three trailing bytes of an incomplete UTF-8
// sequence cut off by the probe boundary.
func trimPartialRune(b []byte) []byte {
	for i := 0; i < 3 && len(b) > 0; i++ {
		r, size := utf8.DecodeLastRune(b)
		if r != utf8.RuneError || size != 1 {
			return b
		}
		b = b[:len(b)-1]
	}
	return b
}

// Read classifies and reads a single file node. A read failure never
// fails the whole job; it becomes a per-file placeholder.
func Read(node *types.Node) {
	if node.SizeBytes == 0 {
		node.ContentKind = types.ContentEmptyPlaceholder
		return
	}

	lower := strings.ToLower(node.Name)
	if strings.HasSuffix(lower, ".ipynb") {
		data, err := os.ReadFile(node.AbsPath)
		if err != nil {
			node.ContentKind = types.ContentReadError
			node.ReadError = err.Error()
			return
		}
		rendered, err := RenderNotebook(data)
		if err != nil {
			node.ContentKind = types.ContentReadError
			node.ReadError = err.Error()
			return
		}
		node.ContentKind = types.ContentNotebook
		node.Content = rendered
		node.LineCount = strings.Count(rendered, "\n") + 1
		return
	}

	f, err := os.Open(node.AbsPath)
	if err != nil {
		node.ContentKind = types.ContentReadError
		node.ReadError = err.Error()
		return
	}
	defer func() { _ = f.Close() }()

	probe := make([]byte, probeSize)
	n, rerr := f.Read(probe)
	probe = probe[:n]
	if rerr != nil && n == 0 {
		node.ContentKind = types.ContentReadError
		node.ReadError = rerr.Error()
		return
	}

	if bytes.IndexByte(probe, 0) >= 0 {
		node.ContentKind = types.ContentBinaryPlaceholder
		return
	}

	if n == probeSize {
		probe = trimPartialRune(probe)
	}
	if utf8.Valid(probe) {
		data, err := os.ReadFile(node.AbsPath)
		if err != nil {
			node.ContentKind = types.ContentReadError
			node.ReadError = err.Error()
			return
		}
		node.ContentKind = types.ContentText
		node.Content = string(data)
		node.LineCount = strings.Count(node.Content, "\n") + 1
		return
	}

	for _, fb := range fallbackEncodings {
		if _, ok := decode(fb.enc, probe); !ok {
			continue
		}
		data, err := os.ReadFile(node.AbsPath)
		if err != nil {
			node.ContentKind = types.ContentReadError
			node.ReadError = err.Error()
			return
		}
		if decoded, ok := decode(fb.enc, data); ok {
			node.ContentKind = types.ContentText
			node.Content = decoded
			node.LineCount = strings.Count(node.Content, "\n") + 1
			return
		}
	}

	node.ContentKind = types.ContentBinaryPlaceholder
}
