package persistence

import (
	"context"
	"time"

	"shiftpay/internal/domain"
	"shiftpay/internal/errors"
	"shiftpay/internal/repository/sqlite"
)

// SQLite persists state in the relational schema of repository/sqlite.
type SQLite struct {
	repo      sqlite.Repository
	shifts    *domain.ShiftMapper
	workInfos *domain.WorkInfoMapper
	templates *domain.TemplateMapper
}

// NewSQLite wraps repo. Close closes the repository.
func NewSQLite(repo sqlite.Repository) *SQLite {
	return &SQLite{
		repo:      repo,
		shifts:    domain.NewShiftMapper(),
		workInfos: domain.NewWorkInfoMapper(),
		templates: domain.NewTemplateMapper(),
	}
}

func (p *SQLite) LoadShifts(ctx context.Context) (domain.ParseResult, error) {
	rows, err := p.repo.ListShifts(ctx)
	if err != nil {
		return domain.ParseResult{}, err
	}
	return p.shifts.FromDatabaseSlice(rows), nil
}

func (p *SQLite) SaveShifts(ctx context.Context, shifts []*domain.Shift) error {
	return p.repo.ReplaceShifts(ctx, p.shifts.ToDatabaseSlice(shifts))
}

func (p *SQLite) LoadWorkInfos(ctx context.Context) (domain.WorkInfos, error) {
	rows, err := p.repo.ListWorkInfoRates(ctx)
	if err != nil {
		return domain.WorkInfos{}, err
	}
	return p.workInfos.FromDatabase(rows), nil
}

func (p *SQLite) SaveWorkInfos(ctx context.Context, infos domain.WorkInfos) error {
	return p.repo.ReplaceWorkInfoRates(ctx, p.workInfos.ToDatabase(infos))
}

func (p *SQLite) LoadCheckIn(ctx context.Context) (*time.Time, error) {
	setting, err := p.repo.GetSetting(ctx, KeyCheckInTime)
	if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return parseCheckIn(setting.Value), nil
}

func (p *SQLite) SaveCheckIn(ctx context.Context, at *time.Time) error {
	if at == nil {
		return p.repo.DeleteSetting(ctx, KeyCheckInTime)
	}
	return p.repo.SetSetting(ctx, KeyCheckInTime, domain.FormatInstant(*at))
}

func (p *SQLite) LoadTemplates(ctx context.Context) ([]*domain.Template, error) {
	rows, err := p.repo.ListShiftTemplates(ctx)
	if err != nil {
		return nil, err
	}
	return p.templates.FromDatabaseSlice(rows), nil
}

func (p *SQLite) SaveTemplates(ctx context.Context, templates []*domain.Template) error {
	rows := make([]*sqlite.ShiftTemplate, len(templates))
	for i, tpl := range templates {
		rows[i] = p.templates.ToDatabase(tpl)
	}
	return p.repo.ReplaceShiftTemplates(ctx, rows)
}

func (p *SQLite) Close() error {
	return p.repo.Close()
}
