package pattern

// WithExtraIgnore returns a new Engine that additionally ignores extra
// patterns, used by the Filesystem Walker to layer a directory's own
// .gitignore onto the patterns governing its subtree: per-directory,
// inherited by descendants. The extra patterns join the default class, so
// an explicit include still overrides them.
func (e *Engine) WithExtraIgnore(extra []string) *Engine {
	if len(extra) == 0 {
		return e
	}
	merged := make([]string, len(e.defaultIgnore), len(e.defaultIgnore)+len(extra))
	copy(merged, e.defaultIgnore)
	merged = append(merged, extra...)
	return &Engine{include: e.include, defaultIgnore: merged, userIgnore: e.userIgnore}
}
