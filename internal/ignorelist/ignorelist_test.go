package ignorelist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCoversContractedCategories(t *testing.T) {
	patterns := Default()
	require.NotEmpty(t, patterns)

	// One representative per category the contract names.
	for _, want := range []string{
		".git/**",           // VCS metadata
		"node_modules/**",   // build/dependency artifacts
		".idea/**",          // editor caches
		"package-lock.json", // dependency lockfiles
		"*.min.js",          // minified assets
		"*.exe",             // binary extensions
	} {
		assert.Contains(t, patterns, want)
	}
}

func TestDefaultIsStable(t *testing.T) {
	assert.Equal(t, Default(), Default())
}

func TestLoadOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ignore.yaml")
	require.NoError(t, os.WriteFile(path, []byte("patterns:\n  - \"*.tmp\"\n  - \"scratch/**\"\n"), 0o644))

	patterns, err := LoadOverride(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"*.tmp", "scratch/**"}, patterns)
}

func TestLoadOverrideMissingFile(t *testing.T) {
	_, err := LoadOverride(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
