package services

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Status is the lifecycle state of a store's latest action.
type Status string

const (
	StatusReady   Status = "ready"
	StatusLoading Status = "loading"
	StatusError   Status = "error"
)

type statusTracker struct {
	mu     sync.RWMutex
	status Status
}

func (s *statusTracker) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.status == "" {
		return StatusReady
	}
	return s.status
}

func (s *statusTracker) set(status Status) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

// withStatus runs action as Loading and ends in Ready, or Error when action fails.
func withStatus(s *statusTracker, name string, action func() error) error {
	s.set(StatusLoading)
	if err := action(); err != nil {
		log.Debug().Err(err).Str("action", name).Msg("store action failed")
		s.set(StatusError)
		return err
	}
	s.set(StatusReady)
	return nil
}

func isAuthenticated(auth Auth) bool {
	return auth != nil && auth.IsAuthenticated()
}
