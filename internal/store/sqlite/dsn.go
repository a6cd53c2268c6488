package sqlite

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

func parseDSN(dsn string) (string, error) {
	if !strings.HasPrefix(dsn, "sqlite://") {
		return "", fmt.Errorf("invalid sqlite DSN scheme, expected sqlite://")
	}

	rest := strings.TrimPrefix(dsn, "sqlite://")

	if rest == ":memory:" {
		return ":memory:", nil
	}

	var query string
	if idx := strings.Index(rest, "?"); idx >= 0 {
		query = rest[idx+1:]
		rest = rest[:idx]
	}

	unescaped, err := url.PathUnescape(rest)
	if err != nil {
		return "", fmt.Errorf("unescaping path: %w", err)
	}
	rest = unescaped

	if !filepath.IsAbs(rest) && !strings.HasPrefix(rest, "./") {
		rest = "./" + rest
	}

	if query != "" {
		return rest + "?" + query, nil
	}
	return rest, nil
}

// storePath strips driver query options, leaving the filesystem path the
// migration step stages its temporary sibling next to.
func storePath(driverDSN string) string {
	if idx := strings.Index(driverDSN, "?"); idx >= 0 {
		return driverDSN[:idx]
	}
	return driverDSN
}

func isMemory(driverDSN string) bool {
	return storePath(driverDSN) == ":memory:"
}
