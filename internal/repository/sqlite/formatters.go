package sqlite

import (
	"strings"
	"time"
)

// FormatTimeForDB formats t as RFC3339 in UTC, keeping sub-second precision
func FormatTimeForDB(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTimeFromDB parses an RFC3339 formatted time string from the database
func ParseTimeFromDB(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// FormatBreaksForDB joins "H:M" texts into the single unpaid_breaks column
func FormatBreaksForDB(breaks []string) string {
	return strings.Join(breaks, ",")
}

// ParseBreaksFromDB splits the unpaid_breaks column; an empty column yields nil
func ParseBreaksFromDB(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	breaks := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			breaks = append(breaks, p)
		}
	}
	return breaks
}
