package migrations

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

func init() {
	RegisterGoMigration(4, "000004_normalize_times_to_rfc3339",
		Up_000004_normalize_times_to_rfc3339, nil)
}

// Tables whose start_time/end_time columns are rewritten, with their key column.
var timeTables = []struct {
	table string
	key   string
}{
	{"shifts", "id"},
	{"shift_templates", "name"},
}

// Up_000004_normalize_times_to_rfc3339 rewrites stored instants in UTC
// RFC3339 form so they sort lexically in time order.
func Up_000004_normalize_times_to_rfc3339(tx *sql.Tx) error {
	for _, t := range timeTables {
		if err := normalizeTable(tx, t.table, t.key); err != nil {
			return err
		}
	}
	return nil
}

type timeRow struct {
	key   string
	start string
	end   string
}

func normalizeTable(tx *sql.Tx, table, key string) error {
	rows, err := tx.Query(fmt.Sprintf("SELECT %s, start_time, end_time FROM %s", key, table))
	if err != nil {
		return err
	}

	var pending []timeRow
	for rows.Next() {
		var r timeRow
		if err := rows.Scan(&r.key, &r.start, &r.end); err != nil {
			rows.Close()
			return err
		}
		pending = append(pending, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	update := fmt.Sprintf("UPDATE %s SET start_time = ?, end_time = ? WHERE %s = ?", table, key)
	for _, r := range pending {
		start, err := normalizeTime(r.start)
		if err != nil {
			return fmt.Errorf("%s %s start_time: %w", table, r.key, err)
		}
		end, err := normalizeTime(r.end)
		if err != nil {
			return fmt.Errorf("%s %s end_time: %w", table, r.key, err)
		}
		if start == r.start && end == r.end {
			continue
		}
		log.Debug().Str("table", table).Str("key", r.key).Str("from", r.start).Str("to", start).Msg("normalizing stored time")
		if _, err := tx.Exec(update, start, end, r.key); err != nil {
			return err
		}
	}
	return nil
}

var monotonicSuffix = regexp.MustCompile(`\s+m=[+-][0-9.]+$`)

// stripMonotonicSuffix removes the " m=+0.0024" reading that time.Time.String appends
func stripMonotonicSuffix(s string) string {
	return monotonicSuffix.ReplaceAllString(s, "")
}

var storedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999 -0700",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

func normalizeTime(value string) (string, error) {
	s := stripMonotonicSuffix(strings.TrimSpace(value))
	for _, layout := range storedLayouts {
		// Values without a zone were written in UTC.
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(time.RFC3339Nano), nil
		}
	}
	return "", fmt.Errorf("unrecognized time %q", value)
}
