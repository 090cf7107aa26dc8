package sqlite

import (
	"context"
	"database/sql"
	"time"

	"shiftpay/internal/errors"
	"shiftpay/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// Options tunes the SQLite repository
type Options struct {
	// QueryTimeout bounds every statement issued by the repository.
	// Zero leaves the caller's context untouched.
	QueryTimeout time.Duration
}

// Repository defines the interface for database operations. The list
// operations return rows in stored order; the replace operations swap
// the whole set atomically.
type Repository interface {
	// Shifts
	ListShifts(ctx context.Context) ([]*Shift, error)
	ReplaceShifts(ctx context.Context, shifts []*Shift) error

	// Work info catalog
	ListWorkInfoRates(ctx context.Context) ([]*WorkInfoRate, error)
	ReplaceWorkInfoRates(ctx context.Context, rates []*WorkInfoRate) error

	// Settings
	GetSetting(ctx context.Context, key string) (*Setting, error)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error

	// Shift templates
	ListShiftTemplates(ctx context.Context) ([]*ShiftTemplate, error)
	ReplaceShiftTemplates(ctx context.Context, templates []*ShiftTemplate) error

	// Utility
	Close() error
}

// SQLiteRepository implements the Repository interface
type SQLiteRepository struct {
	db   *sql.DB
	opts Options
}

// New creates a new SQLite repository instance and brings its schema up to date
func New(dbPath string, opts Options) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}
	// A single connection keeps ":memory:" databases shared across statements.
	db.SetMaxOpenConns(1)

	if err := migrations.RunMigrations(db); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}

	return &SQLiteRepository{db: db, opts: opts}, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opts.QueryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.opts.QueryTimeout)
}

const shiftColumns = "id, workplace, pay_rate, start_time, end_time, unpaid_breaks"

// ListShifts returns every stored shift in insertion order
func (r *SQLiteRepository) ListShifts(ctx context.Context) ([]*Shift, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := "SELECT " + shiftColumns + " FROM shifts ORDER BY position, start_time"
	shifts, err := QueryMultiple(ctx, r.db, query, ScanShifts, "shifts")
	if err != nil {
		return nil, err
	}
	if shifts == nil {
		shifts = []*Shift{}
	}
	return shifts, nil
}

// ReplaceShifts stores exactly the given shifts, preserving their order
func (r *SQLiteRepository) ReplaceShifts(ctx context.Context, shifts []*Shift) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return WithTransaction(ctx, r.db, "replace shifts", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM shifts"); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO shifts (id, workplace, pay_rate, start_time, end_time, unpaid_breaks, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, s := range shifts {
			_, err := stmt.ExecContext(ctx,
				s.ID,
				s.Workplace,
				s.PayRate,
				FormatTimeForDB(s.StartTime),
				FormatTimeForDB(s.EndTime),
				FormatBreaksForDB(s.UnpaidBreaks),
				i,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ListWorkInfoRates returns the catalog ordered by workplace then rate
func (r *SQLiteRepository) ListWorkInfoRates(ctx context.Context) ([]*WorkInfoRate, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := "SELECT workplace, pay_rate FROM work_info_pay_rates ORDER BY workplace, pay_rate"
	rates, err := QueryMultiple(ctx, r.db, query, ScanWorkInfoRates, "work info")
	if err != nil {
		return nil, err
	}
	if rates == nil {
		rates = []*WorkInfoRate{}
	}
	return rates, nil
}

// ReplaceWorkInfoRates stores exactly the given rates; duplicates collapse
func (r *SQLiteRepository) ReplaceWorkInfoRates(ctx context.Context, rates []*WorkInfoRate) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return WithTransaction(ctx, r.db, "replace work info", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM work_info_pay_rates"); err != nil {
			return err
		}
		for _, rate := range rates {
			_, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO work_info_pay_rates (workplace, pay_rate) VALUES (?, ?)",
				rate.Workplace, rate.PayRate)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// GetSetting returns the setting stored under key or a not_found error
func (r *SQLiteRepository) GetSetting(ctx context.Context, key string) (*Setting, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return QuerySingle(ctx, r.db, "SELECT key, value FROM settings WHERE key = ?", ScanSetting, "setting", key, key)
}

// SetSetting inserts or overwrites a setting
func (r *SQLiteRepository) SetSetting(ctx context.Context, key, value string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
	INSERT INTO settings (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return HandleDatabaseError("set setting", err)
	}
	return nil
}

// DeleteSetting removes a setting; deleting a missing key is not an error
func (r *SQLiteRepository) DeleteSetting(ctx context.Context, key string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", key); err != nil {
		return HandleDatabaseError("delete setting", err)
	}
	return nil
}

// ListShiftTemplates returns the templates ordered by name
func (r *SQLiteRepository) ListShiftTemplates(ctx context.Context) ([]*ShiftTemplate, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := "SELECT name, " + shiftColumns + " FROM shift_templates ORDER BY name"
	templates, err := QueryMultiple(ctx, r.db, query, ScanShiftTemplates, "shift templates")
	if err != nil {
		return nil, err
	}
	if templates == nil {
		templates = []*ShiftTemplate{}
	}
	return templates, nil
}

// ReplaceShiftTemplates stores exactly the given templates
func (r *SQLiteRepository) ReplaceShiftTemplates(ctx context.Context, templates []*ShiftTemplate) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return WithTransaction(ctx, r.db, "replace shift templates", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM shift_templates"); err != nil {
			return err
		}
		for _, tpl := range templates {
			s := tpl.Shift
			_, err := tx.ExecContext(ctx, `
			INSERT INTO shift_templates (name, id, workplace, pay_rate, start_time, end_time, unpaid_breaks)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
				tpl.Name,
				s.ID,
				s.Workplace,
				s.PayRate,
				FormatTimeForDB(s.StartTime),
				FormatTimeForDB(s.EndTime),
				FormatBreaksForDB(s.UnpaidBreaks),
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}
