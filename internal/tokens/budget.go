package tokens

import "fmt"

// SelectWithinBudget applies greedy token-budgeted content selection:
// the header (summary prefix + tree) is measured first and subtracted from
// maxTokens, then blocks are admitted in order until the next one would
// exceed what remains. Blocks are atomic; a file body is never split.
//
// The returned content is the concatenation of the admitted blocks plus,
// when anything was dropped, a trailing "[Content truncated to N tokens]"
// line. truncated reports whether that happened.
func SelectWithinBudget(c Counter, header string, blocks []string, maxTokens int) (content string, truncated bool) {
	headerTokens, _ := Estimate(c, header)
	remaining := maxTokens - headerTokens

	var out string
	for _, block := range blocks {
		blockTokens, _ := Estimate(c, block)
		if blockTokens > remaining {
			truncated = true
			break
		}
		out += block
		remaining -= blockTokens
	}
	if truncated {
		out += fmt.Sprintf("[Content truncated to %d tokens]\n", maxTokens)
	}
	return out, truncated
}
