// Package tokens implements the Token Accountant (C7): pluggable token
// counting with the canonical o200k_base encoding, a character-based
// fallback, human-readable formatting, and token-budgeted content
// selection.
package tokens

//go:generate mockgen -source=tokens.go -destination=mocks/counter.go -package=mocks

import (
	"fmt"
	"math"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/corpuslens/gitingest/internal/types"
)

// Counter counts tokens in a text. Implementations must be safe for
// concurrent use; the digest pipeline accepts any Counter so hosts and
// tests can inject their own.
type Counter interface {
	Count(text string) (int, error)
}

// encodingName is the canonical byte-pair encoding used for estimation.
const encodingName = "o200k_base"

// chunkSize bounds how much text is handed to the encoder at once so a
// multi-hundred-megabyte digest does not force one giant token slice to
// be held in memory.
const chunkSize = 1 << 20

var (
	encodingMu     sync.Mutex
	cachedEncoding *tiktoken.Tiktoken
)

func getEncoding() (*tiktoken.Tiktoken, error) {
	encodingMu.Lock()
	defer encodingMu.Unlock()
	if cachedEncoding != nil {
		return cachedEncoding, nil
	}
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, err
	}
	cachedEncoding = enc
	return enc, nil
}

// ClearEncodingCache drops the process-wide cached encoder so
// memory-sensitive hosts can reclaim the vocabulary tables.
func ClearEncodingCache() {
	encodingMu.Lock()
	defer encodingMu.Unlock()
	cachedEncoding = nil
}

// TiktokenCounter is the canonical Counter: o200k_base via tiktoken, with
// the encoder cached process-wide.
type TiktokenCounter struct{}

func (TiktokenCounter) Count(text string) (int, error) {
	enc, err := getEncoding()
	if err != nil {
		return 0, types.Wrap(types.TokenizerUnavailable, "o200k_base encoding unavailable", err)
	}
	total := 0
	for len(text) > 0 {
		n := chunkSize
		if n > len(text) {
			n = len(text)
		}
		// Never split a multi-byte rune across chunks.
		for n < len(text) && !isRuneStart(text[n]) {
			n++
		}
		total += len(enc.Encode(text[:n], nil, nil))
		text = text[n:]
	}
	return total, nil
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

// HeuristicCounter estimates tokens as ceil(len(text) * 1.3), the offline
// fallback when the encoder cannot be loaded or counting is disabled.
type HeuristicCounter struct{}

func (HeuristicCounter) Count(text string) (int, error) {
	return int(math.Ceil(float64(len(text)) * 1.3)), nil
}

// Estimate counts tokens with c, recovering from TokenizerUnavailable by
// switching to the character heuristic. precise reports whether the
// requested counter was actually used.
func Estimate(c Counter, text string) (n int, precise bool) {
	if c == nil {
		c = TiktokenCounter{}
	}
	n, err := c.Count(text)
	if err == nil {
		return n, true
	}
	n, _ = HeuristicCounter{}.Count(text)
	return n, false
}

// Format renders a token count for humans: plain integer below 1,000,
// "%.1fk" below 1,000,000, "%.1fM" above.
func Format(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}
