// Package ignorelist holds the built-in default ignore set as an
// embedded, reviewable data file rather than a code literal, and loads
// optional user ignore-override files in the same format.
package ignorelist

import (
	_ "embed"

	"github.com/corpuslens/gitingest/internal/yamlstore"
)

//go:embed default_ignore.yaml
var defaultIgnoreYAML []byte

type patternDocument struct {
	Patterns []string `yaml:"patterns"`
}

// Default returns the built-in default ignore pattern set, already
// normalized (see internal/pattern.Normalize).
func Default() []string {
	doc, err := yamlstore.DecodeBytes[patternDocument](defaultIgnoreYAML)
	if err != nil {
		// The embedded asset is compiled into the binary; a decode failure
		// here means the binary itself is broken, not a runtime condition
		// callers can recover from.
		panic("ignorelist: embedded default_ignore.yaml is invalid: " + err.Error())
	}
	return doc.Patterns
}

// LoadOverride reads a user-supplied YAML ignore-pattern file in the same
// `patterns: [...]` shape as the embedded default.
func LoadOverride(path string) ([]string, error) {
	store := yamlstore.New[patternDocument]("", path, false)
	doc, err := store.Load()
	if err != nil {
		return nil, err
	}
	return doc.Patterns, nil
}
