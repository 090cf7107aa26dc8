package services

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"shiftpay/internal/domain"
)

// Auth reports whether the current session may talk to the remote API.
type Auth interface {
	IsAuthenticated() bool
}

// RemoteShifts is the remote shifts resource.
type RemoteShifts interface {
	Fetch(ctx context.Context, id string, params url.Values) (json.RawMessage, error)
	Create(ctx context.Context, shift *domain.Shift) (json.RawMessage, error)
	CreateBatch(ctx context.Context, shifts []*domain.Shift) (json.RawMessage, error)
	Update(ctx context.Context, id string, shift *domain.Shift) (json.RawMessage, error)
	Delete(ctx context.Context, id string) (json.RawMessage, error)
	DeleteMany(ctx context.Context, ids []string) (json.RawMessage, error)
	DeleteAll(ctx context.Context) (json.RawMessage, error)
}

// RemoteWorkInfos is the remote work info resource.
type RemoteWorkInfos interface {
	Fetch(ctx context.Context) (json.RawMessage, error)
	Create(ctx context.Context, workplace string, payRates []float64) (json.RawMessage, error)
	Delete(ctx context.Context, workplace string, payRate *float64) (json.RawMessage, error)
}

// LoadResult reports how a fetch went. Success is false when some stored
// records were skipped.
type LoadResult struct {
	Count   int  `json:"count"`
	Success bool `json:"success"`
}

// Stats aggregates the shifts of a time range
type Stats struct {
	Count    int             `json:"count"`
	Income   float64         `json:"income"`
	Total    domain.Duration `json:"total"`
	Billable domain.Duration `json:"billable"`
	Breaks   domain.Duration `json:"breaks"`
	// Worked counts only the part of each shift inside the range.
	Worked domain.Duration `json:"worked"`
}

// ShiftService owns the list of recorded shifts
type ShiftService interface {
	// Loading
	Fetch(ctx context.Context) (LoadResult, error)

	// Queries
	Shifts() []*domain.Shift
	Get(id string) (*domain.Shift, error)

	// Mutations, each persisted after it succeeds
	Add(ctx context.Context, shifts ...*domain.Shift) ([]*domain.Shift, error)
	Update(ctx context.Context, id string, shift *domain.Shift) (*domain.Shift, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) error
	Clear(ctx context.Context) error
}

// ReportingService answers range and statistics queries over the shifts
type ReportingService interface {
	Range(start, end time.Time) []*domain.Shift
	Day(date time.Time) []*domain.Shift
	Stats(start, end time.Time) Stats
}

// WorkInfoService keeps the workplace and pay rate catalog
type WorkInfoService interface {
	Fetch(ctx context.Context) error
	WorkInfos() domain.WorkInfos
	Add(ctx context.Context, workplace string, payRate float64) error
	// Delete removes one rate, or the whole workplace when payRate is nil.
	Delete(ctx context.Context, workplace string, payRate *float64) error
	Status() Status
}

// CheckOut describes the shift recorded when a session ends.
type CheckOut struct {
	Workplace    string
	PayRate      float64
	UnpaidBreaks []domain.Duration
	// EndTime defaults to now.
	EndTime time.Time
}

// SessionService tracks the running check-in
type SessionService interface {
	Fetch(ctx context.Context) error
	CheckIn(ctx context.Context, at time.Time) error
	CheckOut(ctx context.Context, out CheckOut) (*domain.Shift, error)
	Clear(ctx context.Context) error
	IsCheckedIn() bool
	CheckInTime() *time.Time
	Status() Status
}

// TemplateService keeps named shift templates
type TemplateService interface {
	Fetch(ctx context.Context) error
	Templates() []*domain.Template
	Get(name string) (*domain.Template, error)
	// Add stores a template, replacing any with the same name.
	Add(ctx context.Context, name string, shift *domain.Shift) (*domain.Template, error)
	Delete(ctx context.Context, name string) error
	Status() Status
}

// ServiceContainer manages all services and their dependencies
type ServiceContainer struct {
	ShiftService     ShiftService
	ReportingService ReportingService
	WorkInfoService  WorkInfoService
	SessionService   SessionService
	TemplateService  TemplateService
}
