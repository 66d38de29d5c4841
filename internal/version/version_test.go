package version

import (
	"strings"
	"testing"
)

func TestGetVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
	}{
		{"development build", "dev"},
		{"release", "v0.3.0"},
		{"prerelease", "v0.3.0-rc.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := Version
			defer func() { Version = orig }()
			Version = tt.version

			if got := GetVersion(); got != tt.version {
				t.Errorf("GetVersion() = %q, want %q", got, tt.version)
			}
		})
	}
}

func TestGetFullVersion(t *testing.T) {
	origV, origC, origD := Version, Commit, Date
	defer func() { Version, Commit, Date = origV, origC, origD }()

	Version, Commit, Date = "v0.3.0", "abc123", "2026-07-01T10:30:00Z"

	full := GetFullVersion()
	for _, want := range []string{"v0.3.0", "commit: abc123", "built: 2026-07-01T10:30:00Z"} {
		if !strings.Contains(full, want) {
			t.Errorf("GetFullVersion() = %q, missing %q", full, want)
		}
	}
}
