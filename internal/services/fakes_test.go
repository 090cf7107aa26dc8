package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"shiftpay/internal/domain"
	"shiftpay/internal/errors"
	"shiftpay/internal/persistence"
	"shiftpay/internal/repository/kv"
)

type fakeAuth bool

func (a fakeAuth) IsAuthenticated() bool { return bool(a) }

// fakeRemoteShifts answers like the remote API: created records get
// server ids and every call is recorded.
type fakeRemoteShifts struct {
	mu      sync.Mutex
	calls   []string
	fetched json.RawMessage
	err     error
	nextID  int
}

func (f *fakeRemoteShifts) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeRemoteShifts) serverRecord(shift *domain.Shift, id string) domain.Record {
	if id == "" {
		f.mu.Lock()
		f.nextID++
		id = fmt.Sprintf("srv-%d", f.nextID)
		f.mu.Unlock()
	}
	return domain.Record{ID: id, ShiftDTO: shift.ToDTO()}
}

func (f *fakeRemoteShifts) Fetch(ctx context.Context, id string, params url.Values) (json.RawMessage, error) {
	if err := f.record("fetch"); err != nil {
		return nil, err
	}
	return f.fetched, nil
}

func (f *fakeRemoteShifts) Create(ctx context.Context, shift *domain.Shift) (json.RawMessage, error) {
	if err := f.record("create"); err != nil {
		return nil, err
	}
	return json.Marshal(f.serverRecord(shift, ""))
}

func (f *fakeRemoteShifts) CreateBatch(ctx context.Context, shifts []*domain.Shift) (json.RawMessage, error) {
	if err := f.record("createBatch"); err != nil {
		return nil, err
	}
	records := make([]domain.Record, len(shifts))
	for i, s := range shifts {
		records[i] = f.serverRecord(s, "")
	}
	return json.Marshal(records)
}

func (f *fakeRemoteShifts) Update(ctx context.Context, id string, shift *domain.Shift) (json.RawMessage, error) {
	if err := f.record("update " + id); err != nil {
		return nil, err
	}
	return json.Marshal(f.serverRecord(shift, id))
}

func (f *fakeRemoteShifts) Delete(ctx context.Context, id string) (json.RawMessage, error) {
	return nil, f.record("delete " + id)
}

func (f *fakeRemoteShifts) DeleteMany(ctx context.Context, ids []string) (json.RawMessage, error) {
	return nil, f.record(fmt.Sprintf("deleteMany %v", ids))
}

func (f *fakeRemoteShifts) DeleteAll(ctx context.Context) (json.RawMessage, error) {
	return nil, f.record("deleteAll")
}

type fakeRemoteWorkInfos struct {
	calls   []string
	fetched json.RawMessage
	err     error
}

func (f *fakeRemoteWorkInfos) Fetch(ctx context.Context) (json.RawMessage, error) {
	f.calls = append(f.calls, "fetch")
	return f.fetched, f.err
}

func (f *fakeRemoteWorkInfos) Create(ctx context.Context, workplace string, payRates []float64) (json.RawMessage, error) {
	f.calls = append(f.calls, fmt.Sprintf("create %s %v", workplace, payRates))
	return nil, f.err
}

func (f *fakeRemoteWorkInfos) Delete(ctx context.Context, workplace string, payRate *float64) (json.RawMessage, error) {
	call := "delete " + workplace
	if payRate != nil {
		call += fmt.Sprintf(" %v", *payRate)
	}
	f.calls = append(f.calls, call)
	return nil, f.err
}

func newTestPersistence(t *testing.T) persistence.Persistence {
	t.Helper()
	p := persistence.NewDocuments(kv.NewMemoryStore())
	t.Cleanup(func() { _ = p.Close() })
	return p
}

var baseStart = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func testShift(t *testing.T, id string, start time.Time, hours int, breaks ...domain.Duration) *domain.Shift {
	t.Helper()
	s, err := domain.NewShift(domain.ShiftParams{
		ID:           id,
		Workplace:    "Cafe",
		PayRate:      12,
		StartTime:    start,
		EndTime:      start.Add(time.Duration(hours) * time.Hour),
		UnpaidBreaks: breaks,
	})
	require.NoError(t, err)
	return s
}

func shiftIDs(shifts []*domain.Shift) []string {
	ids := make([]string, len(shifts))
	for i, s := range shifts {
		ids[i] = s.ID()
	}
	return ids
}

// failingSaves wraps a Persistence and fails SaveShifts while failing is set
type failingSaves struct {
	persistence.Persistence
	failing bool
}

func (f *failingSaves) SaveShifts(ctx context.Context, shifts []*domain.Shift) error {
	if f.failing {
		return errors.NewDatabaseError("save shifts", fmt.Errorf("disk full"))
	}
	return f.Persistence.SaveShifts(ctx, shifts)
}
