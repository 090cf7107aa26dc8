package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"shiftpay/internal/config"
	"shiftpay/internal/domain"
	"shiftpay/internal/errors"
	"shiftpay/internal/persistence"
	"shiftpay/internal/validation"
)

// workInfoServiceImpl implements the WorkInfoService interface
type workInfoServiceImpl struct {
	statusTracker
	mu        sync.RWMutex
	infos     domain.WorkInfos
	store     persistence.Persistence
	auth      Auth
	remote    RemoteWorkInfos
	validator *validation.WorkInfoValidator
}

// NewWorkInfoService creates a new WorkInfoService instance
func NewWorkInfoService(store persistence.Persistence, auth Auth, remote RemoteWorkInfos, cfg *config.Config) WorkInfoService {
	return &workInfoServiceImpl{
		store:     store,
		auth:      auth,
		remote:    remote,
		validator: validation.NewWorkInfoValidator(cfg),
	}
}

func (w *workInfoServiceImpl) online() bool {
	return w.remote != nil && isAuthenticated(w.auth)
}

func (w *workInfoServiceImpl) Fetch(ctx context.Context) error {
	return withStatus(&w.statusTracker, "fetch work infos", func() error {
		w.mu.Lock()
		defer w.mu.Unlock()

		var infos domain.WorkInfos
		if w.online() {
			raw, err := w.remote.Fetch(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch work infos: %w", err)
			}
			if infos, err = decodeWorkInfos(raw); err != nil {
				return err
			}
		} else {
			var err error
			if infos, err = w.store.LoadWorkInfos(ctx); err != nil {
				return err
			}
		}

		w.infos = infos
		return w.store.SaveWorkInfos(ctx, w.infos)
	})
}

func decodeWorkInfos(raw json.RawMessage) (domain.WorkInfos, error) {
	if raw == nil {
		return domain.WorkInfos{}, nil
	}
	var entries []domain.WorkInfo
	if err := json.Unmarshal(raw, &entries); err != nil {
		return domain.WorkInfos{}, errors.NewInvalidInputError("workInfos", string(raw), "not a list of work infos")
	}
	return domain.NewWorkInfos(entries), nil
}

// WorkInfos returns a copy of the catalog.
func (w *workInfoServiceImpl) WorkInfos() domain.WorkInfos {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.infos.Clone()
}

func (w *workInfoServiceImpl) Add(ctx context.Context, workplace string, payRate float64) error {
	if err := w.validator.ValidateWorkInfo(workplace, payRate); err != nil {
		return err
	}
	workplace = strings.TrimSpace(workplace)

	return withStatus(&w.statusTracker, "add work info", func() error {
		w.mu.Lock()
		defer w.mu.Unlock()

		if w.online() {
			if _, err := w.remote.Create(ctx, workplace, []float64{payRate}); err != nil {
				return fmt.Errorf("failed to add work info %s: %w", workplace, err)
			}
		}
		w.infos.Add(workplace, payRate)
		return w.store.SaveWorkInfos(ctx, w.infos)
	})
}

func (w *workInfoServiceImpl) Delete(ctx context.Context, workplace string, payRate *float64) error {
	if err := w.validator.ValidateWorkplace(workplace); err != nil {
		return err
	}
	workplace = strings.TrimSpace(workplace)

	return withStatus(&w.statusTracker, "delete work info", func() error {
		w.mu.Lock()
		defer w.mu.Unlock()

		next := w.infos.Clone()
		if !next.Remove(workplace, payRate) {
			return errors.NewNotFoundError("work info", describeWorkInfo(workplace, payRate))
		}
		if w.online() {
			if _, err := w.remote.Delete(ctx, workplace, payRate); err != nil {
				return fmt.Errorf("failed to delete work info %s: %w", workplace, err)
			}
		}
		w.infos = next
		return w.store.SaveWorkInfos(ctx, w.infos)
	})
}

func describeWorkInfo(workplace string, payRate *float64) string {
	if payRate == nil {
		return workplace
	}
	return workplace + " @ " + strconv.FormatFloat(*payRate, 'f', -1, 64)
}
