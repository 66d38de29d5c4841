package pattern

// Engine evaluates path-selection decisions: a candidate's POSIX-relative
// path is tested against the built-in default ignore set and the user
// ignores, then against includes.
//
// The two ignore classes behave differently once include patterns are in
// play: an include match overrides the built-in defaults (and any
// .gitignore-derived patterns layered on later), while a user ignore
// still excludes unless the same pattern appears verbatim in the
// includes.
type Engine struct {
	include       []string
	defaultIgnore []string
	userIgnore    []string
}

// New builds an Engine from already-parsed pattern lists. Any user ignore
// also present in include is removed; include takes precedence.
func New(include, defaultIgnore, userIgnore []string) *Engine {
	eff := userIgnore
	if len(include) > 0 {
		incSet := make(map[string]struct{}, len(include))
		for _, p := range include {
			incSet[p] = struct{}{}
		}
		eff = make([]string, 0, len(userIgnore))
		for _, p := range userIgnore {
			if _, dup := incSet[p]; !dup {
				eff = append(eff, p)
			}
		}
	}
	return &Engine{include: include, defaultIgnore: defaultIgnore, userIgnore: eff}
}

// Selected reports whether relPath should be included in the digest.
func (e *Engine) Selected(relPath string) bool {
	if len(e.include) > 0 {
		return matchAny(relPath, e.include) && !matchAny(relPath, e.userIgnore)
	}
	return !matchAny(relPath, e.defaultIgnore) && !matchAny(relPath, e.userIgnore)
}

// AllowDescent reports whether a directory at relPath should still be
// walked even if an ignore rule would otherwise prune it. While include
// patterns are in play, the default ignore set never prunes a directory,
// since an include pattern rooted deeper than this directory could still
// select a descendant; only a user ignore matching the directory itself
// prunes it. With no include patterns, an ignore match prunes the whole
// subtree.
func (e *Engine) AllowDescent(relPath string) bool {
	if len(e.include) > 0 {
		return !matchAny(relPath, e.userIgnore)
	}
	return e.Selected(relPath)
}
