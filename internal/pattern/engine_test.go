package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{"single", "*.go", []string{"*.go"}, false},
		{"comma separated", "*.go,*.md", []string{"*.go", "*.md"}, false},
		{"space separated", "*.go *.md", []string{"*.go", "*.md"}, false},
		{"leading separator stripped", "/src/*.go", []string{"src/*.go"}, false},
		{"trailing separator expands", "docs/", []string{"docs/*"}, false},
		{"plus allowed", "c++/*.cc", []string{"c++/*.cc"}, false},
		{"empty members dropped", ",,*.go,", []string{"*.go"}, false},
		{"invalid character", "src/[abc].go", nil, true},
		{"invalid bang", "!important", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchOne(t *testing.T) {
	tests := []struct {
		path string
		pat  string
		want bool
	}{
		{"main.go", "*.go", true},
		{"src/main.go", "*.go", false},
		{"src/main.go", "src/*.go", true},
		{"src/main.go", "**/*.go", true},
		{"a/b/c/main.go", "**/*.go", true},
		{"node_modules/x/y.js", "node_modules/**", true},
		{"node_modules", "node_modules/**", true},
		{"notnode_modules/x.js", "node_modules/**", false},
		{"dist/bundle.min.js", "*.min.js", false},
		{"bundle.min.js", "*.min.js", true},
		{"dist/bundle.min.js", "**/*.min.js", true},
		{"a/vendor/b/c.go", "a/**/*.go", true},
	}
	for _, tt := range tests {
		t.Run(tt.path+"~"+tt.pat, func(t *testing.T) {
			assert.Equal(t, tt.want, matchOne(tt.path, tt.pat), "matchOne(%q, %q)", tt.path, tt.pat)
		})
	}
}

func TestEngineSelected(t *testing.T) {
	defaults := []string{".git/**", "dist/**", "*.min.js"}

	t.Run("no includes, ignore decides", func(t *testing.T) {
		e := New(nil, defaults, []string{"*.log"})
		assert.True(t, e.Selected("main.go"))
		assert.False(t, e.Selected("dist/bundle.js"))
		assert.False(t, e.Selected("server.log"))
	})

	t.Run("includes override default ignore", func(t *testing.T) {
		e := New([]string{"dist/*.js"}, defaults, nil)
		assert.True(t, e.Selected("dist/bundle.js"))
		assert.False(t, e.Selected("main.go"), "not matched by any include")
	})

	t.Run("user ignore still excludes under includes", func(t *testing.T) {
		e := New([]string{"src/*.go"}, defaults, []string{"src/generated.go"})
		assert.True(t, e.Selected("src/main.go"))
		assert.False(t, e.Selected("src/generated.go"))
	})

	t.Run("pattern in both include and ignore is kept", func(t *testing.T) {
		e := New([]string{"src/*.go"}, defaults, []string{"src/*.go"})
		assert.True(t, e.Selected("src/main.go"))
	})
}

func TestEngineAllowDescent(t *testing.T) {
	defaults := []string{"node_modules/**"}

	t.Run("prunes ignored directory without includes", func(t *testing.T) {
		e := New(nil, defaults, nil)
		assert.False(t, e.AllowDescent("node_modules"))
		assert.True(t, e.AllowDescent("src"))
	})

	t.Run("never prunes while includes are in play", func(t *testing.T) {
		e := New([]string{"node_modules/left-pad/*.js"}, defaults, nil)
		assert.True(t, e.AllowDescent("node_modules"))
	})
}

// Adding an ignore never grows the included set; adding an include never
// shrinks it (relative to the same include-mode evaluation).
func TestPatternMonotonicity(t *testing.T) {
	paths := []string{
		"main.go", "src/a.go", "src/b.md", "dist/bundle.js", "docs/x.txt",
	}
	base := New([]string{"src/*.go", "*.go"}, nil, nil)
	narrowed := New([]string{"src/*.go", "*.go"}, nil, []string{"src/*.go"})
	widened := New([]string{"src/*.go", "*.go", "docs/*"}, nil, nil)

	for _, p := range paths {
		if narrowed.Selected(p) {
			assert.True(t, base.Selected(p), "ignore grew the set at %s", p)
		}
		if base.Selected(p) {
			assert.True(t, widened.Selected(p), "include shrank the set at %s", p)
		}
	}
}
