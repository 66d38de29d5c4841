// Package pattern implements the Pattern Engine (C2): normalizing
// include/exclude glob patterns and evaluating path matches against them.
package pattern

import (
	"fmt"
	"path/filepath"
	"strings"
)

// isValidPatternChar reports whether r is in the alphabet a pattern may use.
func isValidPatternChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case strings.ContainsRune("-_./+*", r):
		return true
	}
	return false
}

// Normalize strips a leading path separator and expands a trailing
// separator into a directory-match glob ("foo/" -> "foo/*").
func Normalize(p string) string {
	p = strings.TrimPrefix(p, "/")
	if strings.HasSuffix(p, "/") {
		p += "*"
	}
	return p
}

// Parse splits a comma/space separated pattern list, validates each member's
// alphabet, and normalizes it. Returns a plain error on the first invalid
// pattern; internal/query wraps it as a PatternSyntax error.
func Parse(raw string) ([]string, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' '
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		for _, r := range f {
			if !isValidPatternChar(r) {
				return nil, fmt.Errorf("invalid character %q in pattern %q", r, f)
			}
		}
		out = append(out, Normalize(f))
	}
	return out, nil
}

// matchSimple matches a path against a pattern without "**", converting both
// to OS-native separators so '*' never silently crosses a directory boundary
// the way raw forward-slash paths would under Windows' backslash separator.
func matchSimple(path, pat string) bool {
	matched, _ := filepath.Match(filepath.FromSlash(pat), filepath.FromSlash(path))
	return matched
}

// matchOne reports whether path matches a single glob pattern, with support
// for "**" as a multi-segment wildcard.
func matchOne(path, pat string) bool {
	if !strings.Contains(pat, "**") {
		return matchSimple(path, pat)
	}
	return matchDoublestar(path, pat)
}

func matchDoublestar(path, pat string) bool {
	parts := strings.Split(pat, "**")
	if len(parts) == 2 {
		prefix := strings.TrimSuffix(parts[0], "/")
		suffix := strings.TrimPrefix(parts[1], "/")

		if suffix == "" {
			if prefix == "" {
				return true
			}
			return path == prefix || strings.HasPrefix(path, prefix+"/")
		}
		if prefix == "" {
			if matchSimple(path, suffix) {
				return true
			}
			for i := 0; i < len(path); i++ {
				if path[i] == '/' && matchSimple(path[i+1:], suffix) {
					return true
				}
			}
			return false
		}
		if path != prefix && !strings.HasPrefix(path, prefix+"/") {
			return false
		}
		remaining := strings.TrimPrefix(path, prefix+"/")
		if matchSimple(remaining, suffix) {
			return true
		}
		for i := 0; i < len(remaining); i++ {
			if remaining[i] == '/' && matchSimple(remaining[i+1:], suffix) {
				return true
			}
		}
		return false
	}

	firstStar := strings.Index(pat, "**")
	prefix := strings.TrimSuffix(pat[:firstStar], "/")
	rest := strings.TrimPrefix(pat[firstStar+2:], "/")

	if prefix == "" {
		if matchOne(path, rest) {
			return true
		}
		for i := 0; i < len(path); i++ {
			if path[i] == '/' && matchOne(path[i+1:], rest) {
				return true
			}
		}
		return false
	}
	if path != prefix && !strings.HasPrefix(path, prefix+"/") {
		return false
	}
	remaining := strings.TrimPrefix(path, prefix+"/")
	if matchOne(remaining, rest) {
		return true
	}
	for i := 0; i < len(remaining); i++ {
		if remaining[i] == '/' && matchOne(remaining[i+1:], rest) {
			return true
		}
	}
	return false
}

// matchAny reports whether relPath (POSIX, forward-slash) matches any of
// patterns.
func matchAny(relPath string, patterns []string) bool {
	normalized := filepath.ToSlash(relPath)
	for _, pat := range patterns {
		if matchOne(normalized, filepath.ToSlash(pat)) {
			return true
		}
	}
	return false
}
