package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"shiftpay/internal/domain"
	"shiftpay/internal/errors"
	"shiftpay/internal/persistence"
)

// shiftServiceImpl implements the ShiftService interface
type shiftServiceImpl struct {
	mu     sync.RWMutex
	shifts []*domain.Shift
	store  persistence.Persistence
	auth   Auth
	remote RemoteShifts
	policy domain.BillablePolicy
}

// NewShiftService creates a new ShiftService instance. remote may be nil,
// in which case the service works from local storage only.
func NewShiftService(store persistence.Persistence, auth Auth, remote RemoteShifts, policy domain.BillablePolicy) ShiftService {
	if policy == "" {
		policy = domain.BillableClamp
	}
	return &shiftServiceImpl{
		shifts: []*domain.Shift{},
		store:  store,
		auth:   auth,
		remote: remote,
		policy: policy,
	}
}

func (s *shiftServiceImpl) online() bool {
	return s.remote != nil && isAuthenticated(s.auth)
}

// Fetch replaces the in-memory shifts with the remote list when
// authenticated, or with the stored list otherwise.
func (s *shiftServiceImpl) Fetch(ctx context.Context) (LoadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result domain.ParseResult
	if s.online() {
		raw, err := s.remote.Fetch(ctx, "", nil)
		if err != nil {
			return LoadResult{}, fmt.Errorf("failed to fetch shifts: %w", err)
		}
		if raw == nil {
			result = domain.ParseResult{Shifts: []*domain.Shift{}, Success: true}
		} else {
			result = domain.ParseAll(raw)
		}
	} else {
		var err error
		result, err = s.store.LoadShifts(ctx)
		if err != nil {
			return LoadResult{}, err
		}
	}

	if !result.Success {
		log.Warn().Int("loaded", len(result.Shifts)).Msg("some shifts could not be loaded")
	}

	loaded := uniqueByID(result.Shifts)
	if len(loaded) < len(result.Shifts) {
		log.Warn().Int("dropped", len(result.Shifts)-len(loaded)).Msg("dropped shifts with repeated ids")
	}
	if err := s.commit(ctx, loaded); err != nil {
		return LoadResult{}, err
	}
	return LoadResult{Count: len(loaded), Success: result.Success}, nil
}

// Shifts returns copies of the shifts in insertion order.
func (s *shiftServiceImpl) Shifts() []*domain.Shift {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneShifts(s.shifts)
}

func (s *shiftServiceImpl) Get(id string) (*domain.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, errors.NewNotFoundError("shift", id)
	}
	return s.shifts[idx].Clone(), nil
}

// Add validates every shift before storing any of them. When authenticated
// the server's copies, with server-assigned ids, are stored instead.
func (s *shiftServiceImpl) Add(ctx context.Context, items ...*domain.Shift) ([]*domain.Shift, error) {
	if len(items) == 0 {
		return []*domain.Shift{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	valid, err := s.validateAll(items)
	if err != nil {
		return nil, err
	}

	added := valid
	if s.online() {
		added, err = s.createRemote(ctx, valid)
		if err != nil {
			return nil, err
		}
	}

	next := cloneSlice(s.shifts)
	for _, shift := range added {
		next = upsert(next, shift)
	}
	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}

	log.Debug().Int("count", len(added)).Msg("shifts added")
	return cloneShifts(added), nil
}

func (s *shiftServiceImpl) createRemote(ctx context.Context, shifts []*domain.Shift) ([]*domain.Shift, error) {
	if len(shifts) == 1 {
		raw, err := s.remote.Create(ctx, shifts[0])
		if err != nil {
			return nil, fmt.Errorf("failed to create shift: %w", err)
		}
		created, err := domain.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("server returned an invalid shift: %w", err)
		}
		return []*domain.Shift{created}, nil
	}

	raw, err := s.remote.CreateBatch(ctx, shifts)
	if err != nil {
		return nil, fmt.Errorf("failed to create shifts: %w", err)
	}
	result := domain.ParseAll(raw)
	if !result.Success {
		log.Warn().Int("sent", len(shifts)).Int("parsed", len(result.Shifts)).Msg("some created shifts could not be read back")
	}
	return result.Shifts, nil
}

// Update replaces the shift stored under id. Locally the id must exist;
// when authenticated the server decides and its copy is stored.
func (s *shiftServiceImpl) Update(ctx context.Context, id string, shift *domain.Shift) (*domain.Shift, error) {
	updated, err := s.validate(shift)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneSlice(s.shifts)
	if s.online() {
		raw, err := s.remote.Update(ctx, id, updated)
		if err != nil {
			return nil, fmt.Errorf("failed to update shift %s: %w", id, err)
		}
		updated, err = domain.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("server returned an invalid shift: %w", err)
		}
		next = upsert(next, updated)
	} else {
		idx := s.indexOf(id)
		if idx < 0 {
			return nil, errors.NewNotFoundError("shift", id).WithContext("operation", "update")
		}
		if updated.ID() != id && s.indexOf(updated.ID()) >= 0 {
			return nil, errors.NewValidationError(fmt.Sprintf("shift id %s is already in use", updated.ID()), nil)
		}
		next[idx] = updated
	}

	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	return updated.Clone(), nil
}

// Delete removes one shift. Unknown ids are ignored locally.
func (s *shiftServiceImpl) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.online() {
		if _, err := s.remote.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete shift %s: %w", id, err)
		}
	}
	return s.commit(ctx, s.without(map[string]struct{}{id: {}}))
}

func (s *shiftServiceImpl) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.online() {
		if _, err := s.remote.DeleteMany(ctx, ids); err != nil {
			return fmt.Errorf("failed to delete %d shifts: %w", len(ids), err)
		}
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return s.commit(ctx, s.without(set))
}

// Clear deletes every shift.
func (s *shiftServiceImpl) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.online() {
		if _, err := s.remote.DeleteAll(ctx); err != nil {
			return fmt.Errorf("failed to delete all shifts: %w", err)
		}
	}
	return s.commit(ctx, []*domain.Shift{})
}

// validate rebuilds shift through NewShift so callers cannot store a
// hand-assembled value, then applies the billable policy.
func (s *shiftServiceImpl) validate(shift *domain.Shift) (*domain.Shift, error) {
	if shift == nil {
		return nil, errors.NewInvalidInputError("shift", nil, "shift is required")
	}
	valid, err := domain.NewShift(shift.Params())
	if err != nil {
		return nil, err
	}
	if err := s.policy.Check(valid); err != nil {
		return nil, err
	}
	return valid, nil
}

// validateAll checks each item, including that its id is neither stored
// already nor repeated earlier in the batch. Callers hold s.mu.
func (s *shiftServiceImpl) validateAll(items []*domain.Shift) ([]*domain.Shift, error) {
	valid := make([]*domain.Shift, 0, len(items))
	seen := make(map[string]bool, len(items))
	var messages []string
	for i, item := range items {
		shift, err := s.validate(item)
		if err == nil && (seen[shift.ID()] || s.indexOf(shift.ID()) >= 0) {
			err = fmt.Errorf("id %s is already in use", shift.ID())
		}
		if err != nil {
			messages = append(messages, fmt.Sprintf("Item #%d is invalid: %v", i, err))
			continue
		}
		seen[shift.ID()] = true
		valid = append(valid, shift)
	}
	if len(messages) > 0 {
		return nil, errors.NewValidationError(strings.Join(messages, " | "), nil).WithContext("invalid", len(messages))
	}
	return valid, nil
}

func (s *shiftServiceImpl) indexOf(id string) int {
	for i, shift := range s.shifts {
		if shift.ID() == id {
			return i
		}
	}
	return -1
}

// without returns a new slice of the current shifts minus ids
func (s *shiftServiceImpl) without(ids map[string]struct{}) []*domain.Shift {
	kept := make([]*domain.Shift, 0, len(s.shifts))
	for _, shift := range s.shifts {
		if _, drop := ids[shift.ID()]; !drop {
			kept = append(kept, shift)
		}
	}
	return kept
}

// commit stores next and only then makes it current, so a failed save
// leaves memory matching what is on disk.
func (s *shiftServiceImpl) commit(ctx context.Context, next []*domain.Shift) error {
	if err := s.store.SaveShifts(ctx, next); err != nil {
		return err
	}
	s.shifts = next
	return nil
}

func cloneSlice(shifts []*domain.Shift) []*domain.Shift {
	return append(make([]*domain.Shift, 0, len(shifts)+1), shifts...)
}

// upsert replaces the shift with the same id or appends it
func upsert(shifts []*domain.Shift, shift *domain.Shift) []*domain.Shift {
	for i, existing := range shifts {
		if existing.ID() == shift.ID() {
			shifts[i] = shift
			return shifts
		}
	}
	return append(shifts, shift)
}

// uniqueByID keeps the first shift for each id
func uniqueByID(shifts []*domain.Shift) []*domain.Shift {
	seen := make(map[string]bool, len(shifts))
	out := make([]*domain.Shift, 0, len(shifts))
	for _, shift := range shifts {
		if seen[shift.ID()] {
			continue
		}
		seen[shift.ID()] = true
		out = append(out, shift)
	}
	return out
}

func cloneShifts(shifts []*domain.Shift) []*domain.Shift {
	out := make([]*domain.Shift, len(shifts))
	for i, shift := range shifts {
		out[i] = shift.Clone()
	}
	return out
}
