// Package persistence saves and restores the application state: shifts,
// the work info catalog, the check-in session and shift templates.
package persistence

import (
	"context"
	"sort"
	"time"

	"shiftpay/internal/domain"
)

// Persistence is the local storage collaborator behind every store.
type Persistence interface {
	// LoadShifts parses every stored shift. Records that fail to parse are
	// skipped and reported through ParseResult.Success.
	LoadShifts(ctx context.Context) (domain.ParseResult, error)
	SaveShifts(ctx context.Context, shifts []*domain.Shift) error

	LoadWorkInfos(ctx context.Context) (domain.WorkInfos, error)
	SaveWorkInfos(ctx context.Context, infos domain.WorkInfos) error

	// LoadCheckIn returns nil when no valid check-in instant is stored.
	LoadCheckIn(ctx context.Context) (*time.Time, error)
	// SaveCheckIn stores at, or clears the session when at is nil.
	SaveCheckIn(ctx context.Context, at *time.Time) error

	LoadTemplates(ctx context.Context) ([]*domain.Template, error)
	SaveTemplates(ctx context.Context, templates []*domain.Template) error

	Close() error
}

// Storage keys. The legacy keys are read when the current key is absent
// and removed once their content has been migrated.
const (
	KeyShifts          = "shifts"
	KeyLegacyShifts    = "entries"
	KeyWorkInfos       = "workInfos"
	KeyLegacyWorkInfos = "prevWorkInfos"
	KeyCheckInTime     = "checkInTime"
	KeyShiftTemplates  = "shiftTemplates"
)

func parseCheckIn(text string) *time.Time {
	t, ok := domain.ParseInstant(text)
	if !ok {
		return nil
	}
	return &t
}

func sortTemplates(templates []*domain.Template) {
	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Name < templates[j].Name
	})
}
