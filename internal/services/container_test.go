package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftpay/internal/config"
	"shiftpay/internal/domain"
	"shiftpay/internal/errors"
)

func TestServiceContainer_FetchAll(t *testing.T) {
	ctx := context.Background()
	store := newTestPersistence(t)
	require.NoError(t, store.SaveShifts(ctx, []*domain.Shift{testShift(t, "a", baseStart, 1), testShift(t, "b", baseStart, 2)}))
	require.NoError(t, store.SaveWorkInfos(ctx, domain.NewWorkInfos([]domain.WorkInfo{{Workplace: "Cafe", PayRates: []float64{10}}})))
	require.NoError(t, store.SaveCheckIn(ctx, &baseStart))
	tpl, err := domain.NewTemplate("t", testShift(t, "x", baseStart, 1))
	require.NoError(t, err)
	require.NoError(t, store.SaveTemplates(ctx, []*domain.Template{tpl}))

	container := NewServiceContainer(Dependencies{Persistence: store, Config: config.NewConfig()})
	result, err := container.FetchAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, LoadResult{Count: 2, Success: true}, result)
	assert.True(t, container.WorkInfoService.WorkInfos().Has("Cafe"))
	assert.True(t, container.SessionService.IsCheckedIn())
	assert.Len(t, container.TemplateService.Templates(), 1)
	assert.Len(t, container.ReportingService.Day(baseStart), 2)
}

func TestServiceContainer_FetchAllFailure(t *testing.T) {
	remote := &fakeRemoteShifts{err: errors.NewAPIError("GET", "shifts", 502, "")}
	container := NewServiceContainer(Dependencies{
		Persistence:  newTestPersistence(t),
		Auth:         fakeAuth(true),
		RemoteShifts: remote,
	})

	_, err := container.FetchAll(context.Background())
	require.Error(t, err)
	assert.Equal(t, 502, errors.APIStatus(err))
}

func TestServiceContainer_BillablePolicyFromConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Shifts.BillablePolicy = config.BillableReject
	container := NewServiceContainer(Dependencies{Persistence: newTestPersistence(t), Config: cfg})

	_, err := container.ShiftService.Add(context.Background(), testShift(t, "a", baseStart, 1, domain.MustDuration(2, 0)))
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))
}
