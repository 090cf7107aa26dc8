package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"shiftpay/internal/config"
	"shiftpay/internal/domain"
	"shiftpay/internal/persistence"
)

// Dependencies are the collaborators shared by every store. Auth and the
// remote resources are optional; without them the stores stay local.
type Dependencies struct {
	Persistence     persistence.Persistence
	Auth            Auth
	RemoteShifts    RemoteShifts
	RemoteWorkInfos RemoteWorkInfos
	Config          *config.Config
}

// NewServiceContainer wires the stores together
func NewServiceContainer(deps Dependencies) *ServiceContainer {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.NewConfig()
	}

	shifts := NewShiftService(deps.Persistence, deps.Auth, deps.RemoteShifts, domain.BillablePolicy(cfg.Shifts.BillablePolicy))
	return &ServiceContainer{
		ShiftService:     shifts,
		ReportingService: NewReportingService(shifts),
		WorkInfoService:  NewWorkInfoService(deps.Persistence, deps.Auth, deps.RemoteWorkInfos, cfg),
		SessionService:   NewSessionService(deps.Persistence, shifts),
		TemplateService:  NewTemplateService(deps.Persistence),
	}
}

// FetchAll loads every store concurrently. The first failure cancels the
// remaining loads.
func (c *ServiceContainer) FetchAll(ctx context.Context) (LoadResult, error) {
	g, ctx := errgroup.WithContext(ctx)

	var shifts LoadResult
	g.Go(func() error {
		var err error
		shifts, err = c.ShiftService.Fetch(ctx)
		return err
	})
	g.Go(func() error { return c.WorkInfoService.Fetch(ctx) })
	g.Go(func() error { return c.SessionService.Fetch(ctx) })
	g.Go(func() error { return c.TemplateService.Fetch(ctx) })

	if err := g.Wait(); err != nil {
		return LoadResult{}, err
	}
	return shifts, nil
}
