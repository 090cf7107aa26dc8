package persistence

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/rs/zerolog/log"

	"shiftpay/internal/domain"
	"shiftpay/internal/errors"
	"shiftpay/internal/repository/kv"
)

// Documents persists each piece of state as one JSON document in a kv.Store.
type Documents struct {
	store kv.Store
}

// NewDocuments wraps store. Close closes the store.
func NewDocuments(store kv.Store) *Documents {
	return &Documents{store: store}
}

// get returns the value of the first present key, and that key.
func (d *Documents) get(ctx context.Context, keys ...string) ([]byte, string, error) {
	for _, key := range keys {
		value, err := d.store.Get(ctx, key)
		if stderrors.Is(err, kv.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, "", storageError("read "+key, err)
		}
		return value, key, nil
	}
	return nil, "", nil
}

func (d *Documents) put(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeInvalidInput, "failed to encode "+key)
	}
	if err := d.store.Set(ctx, key, b); err != nil {
		return storageError("write "+key, err)
	}
	return nil
}

// migrate rewrites a value found under a legacy key to its current key.
func (d *Documents) migrate(ctx context.Context, from, to string, value []byte) {
	if from == to {
		return
	}
	if err := d.store.Set(ctx, to, value); err != nil {
		log.Warn().Err(err).Str("key", from).Msg("failed to migrate legacy key")
		return
	}
	if err := d.store.Delete(ctx, from); err != nil {
		log.Warn().Err(err).Str("key", from).Msg("failed to remove legacy key")
	}
}

func (d *Documents) LoadShifts(ctx context.Context) (domain.ParseResult, error) {
	value, key, err := d.get(ctx, KeyShifts, KeyLegacyShifts)
	if err != nil {
		return domain.ParseResult{}, err
	}
	if value == nil {
		return domain.ParseResult{Shifts: []*domain.Shift{}, Success: true}, nil
	}

	result := domain.ParseAll(json.RawMessage(value))
	d.migrate(ctx, key, KeyShifts, value)
	return result, nil
}

func (d *Documents) SaveShifts(ctx context.Context, shifts []*domain.Shift) error {
	return d.put(ctx, KeyShifts, domain.ToRecords(shifts))
}

func (d *Documents) LoadWorkInfos(ctx context.Context) (domain.WorkInfos, error) {
	value, key, err := d.get(ctx, KeyWorkInfos, KeyLegacyWorkInfos)
	if err != nil || value == nil {
		return domain.WorkInfos{}, err
	}

	var entries []domain.WorkInfo
	if err := json.Unmarshal(value, &entries); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("ignoring unreadable work infos")
		return domain.WorkInfos{}, nil
	}
	d.migrate(ctx, key, KeyWorkInfos, value)
	return domain.NewWorkInfos(entries), nil
}

func (d *Documents) SaveWorkInfos(ctx context.Context, infos domain.WorkInfos) error {
	return d.put(ctx, KeyWorkInfos, infos.Entries())
}

// LoadCheckIn reads the raw ISO text stored under checkInTime.
func (d *Documents) LoadCheckIn(ctx context.Context) (*time.Time, error) {
	value, _, err := d.get(ctx, KeyCheckInTime)
	if err != nil || value == nil {
		return nil, err
	}
	return parseCheckIn(string(value)), nil
}

func (d *Documents) SaveCheckIn(ctx context.Context, at *time.Time) error {
	if at == nil {
		if err := d.store.Delete(ctx, KeyCheckInTime); err != nil {
			return storageError("delete "+KeyCheckInTime, err)
		}
		return nil
	}
	if err := d.store.Set(ctx, KeyCheckInTime, []byte(domain.FormatInstant(*at))); err != nil {
		return storageError("write "+KeyCheckInTime, err)
	}
	return nil
}

// LoadTemplates reads a name -> record object; unparsable templates are skipped.
func (d *Documents) LoadTemplates(ctx context.Context) ([]*domain.Template, error) {
	value, _, err := d.get(ctx, KeyShiftTemplates)
	if err != nil || value == nil {
		return []*domain.Template{}, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(value, &raw); err != nil {
		log.Warn().Err(err).Msg("ignoring unreadable shift templates")
		return []*domain.Template{}, nil
	}

	templates := make([]*domain.Template, 0, len(raw))
	for name, record := range raw {
		s, err := domain.Parse(record)
		if err != nil {
			log.Warn().Err(err).Str("template", name).Msg("failed to parse shift template from source")
			continue
		}
		tpl, err := domain.NewTemplate(name, s)
		if err != nil {
			log.Warn().Err(err).Str("template", name).Msg("skipping invalid shift template")
			continue
		}
		templates = append(templates, tpl)
	}
	sortTemplates(templates)
	return templates, nil
}

func (d *Documents) SaveTemplates(ctx context.Context, templates []*domain.Template) error {
	records := make(map[string]domain.Record, len(templates))
	for _, tpl := range templates {
		records[tpl.Name] = tpl.Shift.ToRecord()
	}
	return d.put(ctx, KeyShiftTemplates, records)
}

func (d *Documents) Close() error {
	return d.store.Close()
}

func storageError(operation string, err error) error {
	if appErr := errors.FromContext(operation, err); appErr != nil {
		return appErr
	}
	return errors.NewDatabaseError(operation, err)
}
