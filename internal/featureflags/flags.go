package featureflags

import (
	"os"
	"strings"
)

// Known flags. Search indexing and the portfolio module can be switched off
// without a redeploy.
const (
	SearchIndexing = "search_indexing"
	Portfolio      = "portfolio"
)

// Enabled returns true if a flag is enabled via environment variable.
// Flags are read from env as FLAG_<NAME>=true/1/yes (case-insensitive).
// SearchIndexing and Portfolio default to on when unset.
func Enabled(name string) bool {
	v := os.Getenv("FLAG_" + strings.ToUpper(name))
	if v == "" && (name == SearchIndexing || name == Portfolio) {
		return true
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
