package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"shiftpay/internal/domain"
	"shiftpay/internal/errors"
	"shiftpay/internal/persistence"
)

var timeNow = time.Now

// sessionServiceImpl implements the SessionService interface
type sessionServiceImpl struct {
	statusTracker
	mu      sync.RWMutex
	checkIn *time.Time
	store   persistence.Persistence
	shifts  ShiftService
}

// NewSessionService creates a new SessionService. Check-outs are recorded
// through shifts.
func NewSessionService(store persistence.Persistence, shifts ShiftService) SessionService {
	return &sessionServiceImpl{
		store:  store,
		shifts: shifts,
	}
}

func (s *sessionServiceImpl) Fetch(ctx context.Context) error {
	return withStatus(&s.statusTracker, "fetch session", func() error {
		at, err := s.store.LoadCheckIn(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.checkIn = at
		s.mu.Unlock()
		return nil
	})
}

// CheckIn starts a session at at, or now when at is zero. An existing
// session is replaced.
func (s *sessionServiceImpl) CheckIn(ctx context.Context, at time.Time) error {
	if at.IsZero() {
		at = timeNow()
	}
	return withStatus(&s.statusTracker, "check in", func() error {
		s.mu.Lock()
		defer s.mu.Unlock()

		if err := s.store.SaveCheckIn(ctx, &at); err != nil {
			return err
		}
		s.checkIn = &at
		log.Debug().Time("at", at).Msg("checked in")
		return nil
	})
}

// CheckOut records the running session as a shift and clears it.
func (s *sessionServiceImpl) CheckOut(ctx context.Context, out CheckOut) (*domain.Shift, error) {
	var recorded *domain.Shift
	err := withStatus(&s.statusTracker, "check out", func() error {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.checkIn == nil {
			return errors.NewValidationError("not checked in", nil)
		}
		end := out.EndTime
		if end.IsZero() {
			end = timeNow()
		}

		shift, err := domain.NewShift(domain.ShiftParams{
			Workplace:    out.Workplace,
			PayRate:      out.PayRate,
			StartTime:    *s.checkIn,
			EndTime:      end,
			UnpaidBreaks: out.UnpaidBreaks,
		})
		if err != nil {
			return err
		}
		added, err := s.shifts.Add(ctx, shift)
		if err != nil {
			return err
		}
		if len(added) > 0 {
			recorded = added[0]
		}
		return s.clearLocked(ctx)
	})
	return recorded, err
}

func (s *sessionServiceImpl) Clear(ctx context.Context) error {
	return withStatus(&s.statusTracker, "clear session", func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.clearLocked(ctx)
	})
}

func (s *sessionServiceImpl) clearLocked(ctx context.Context) error {
	if err := s.store.SaveCheckIn(ctx, nil); err != nil {
		return err
	}
	s.checkIn = nil
	return nil
}

func (s *sessionServiceImpl) IsCheckedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkIn != nil
}

// CheckInTime returns a copy of the check-in instant, or nil.
func (s *sessionServiceImpl) CheckInTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.checkIn == nil {
		return nil
	}
	at := *s.checkIn
	return &at
}
