package http

import (
	"strings"

	applog "sbuboard/internal/log"
)

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// parseDomain maps a path segment to a leaderboard domain.
func parseDomain(s string) (string, bool) {
	return applog.CanonicalDomain(sanitizeInput(s))
}
