package ingest

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Built-in budget defaults, overridable per call or via GIT_INGEST_*
// environment variables (explicit option > environment > default).
const (
	DefaultMaxFileSize  = 10 * 1024 * 1024  // 10 MB per file
	DefaultMaxFiles     = 10_000            // files per digest
	DefaultMaxTotalSize = 500 * 1024 * 1024 // 500 MB per digest
	DefaultMaxDirDepth  = 20

	// DefaultTimeout bounds the provisioning stage (probe, ref listing,
	// clone, checkout, submodules). Traversal has no fixed timeout; it is
	// bounded by the file-count and total-size budgets instead.
	DefaultTimeout = 60 * time.Second

	// DeleteRepoAfter is the idle period after which a caller-owned reaper
	// should reclaim a working tree that was kept alive via Release being
	// deferred. The core only exposes Release; no timer runs here.
	DeleteRepoAfter = time.Hour
)

// Env carries the process-wide pipeline configuration: the temporary root
// under which every job's working tree lives, the effective budgets, and
// the token-counting switch. Passing it explicitly keeps the singletons
// non-load-bearing.
type Env struct {
	TmpRoot              string
	MaxFileSize          int64
	MaxFiles             int
	MaxTotalSize         int64
	MaxDirDepth          int
	DisableTokenCounting bool
}

// EnvFromProcess resolves an Env from the GIT_INGEST_* environment
// variables, falling back to the built-in defaults.
func EnvFromProcess() Env {
	return Env{
		TmpRoot:              envString("GIT_INGEST_TMP_ROOT", filepath.Join(os.TempDir(), "gitingest")),
		MaxFileSize:          envInt64("GIT_INGEST_MAX_FILE_SIZE", DefaultMaxFileSize),
		MaxFiles:             envInt("GIT_INGEST_MAX_FILES", DefaultMaxFiles),
		MaxTotalSize:         envInt64("GIT_INGEST_MAX_TOTAL_SIZE", DefaultMaxTotalSize),
		MaxDirDepth:          envInt("GIT_INGEST_MAX_DIR_DEPTH", DefaultMaxDirDepth),
		DisableTokenCounting: envBool("GIT_INGEST_DISABLE_TOKEN_COUNTING"),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envBool(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
