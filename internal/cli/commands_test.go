package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftpay/internal/domain"
	apperrors "shiftpay/internal/errors"
	"shiftpay/internal/validation"
)

func float(v float64) *float64 { return &v }

func TestAddCommand(t *testing.T) {
	withFixedNow(t, localTime("2024-03-04", "12:00"))
	ctx := context.Background()

	t.Run("records a shift for today", func(t *testing.T) {
		app := setupTestApp(t)
		err := NewAddCommand(app.App).Execute(ctx, AddOptions{
			Workplace: "Cafe",
			PayRate:   float(12.5),
			Start:     "09:00",
			End:       "17:00",
			Breaks:    []string{"0:30"},
		})
		require.NoError(t, err)

		shifts := app.services.ShiftService.Shifts()
		require.Len(t, shifts, 1)
		assert.Equal(t, localTime("2024-03-04", "09:00"), shifts[0].StartTime())
		assert.Equal(t, localTime("2024-03-04", "17:00"), shifts[0].EndTime())
		assert.Contains(t, app.out.String(), "Added shift")
		assert.Contains(t, app.out.String(), "billable 7h 30m, EUR 93.75")

		// the workplace and rate are remembered
		assert.Equal(t, []float64{12.5}, app.services.WorkInfoService.WorkInfos().Rates("Cafe"))
	})

	t.Run("overnight shift on a given date", func(t *testing.T) {
		app := setupTestApp(t)
		err := NewAddCommand(app.App).Execute(ctx, AddOptions{
			Workplace: "Bar",
			PayRate:   float(14),
			Date:      "2024-03-01",
			Start:     "22:00",
			End:       "02:00",
		})
		require.NoError(t, err)

		shifts := app.services.ShiftService.Shifts()
		require.Len(t, shifts, 1)
		assert.Equal(t, localTime("2024-03-02", "02:00"), shifts[0].EndTime())
	})

	t.Run("reports every missing field", func(t *testing.T) {
		app := setupTestApp(t)
		err := NewAddCommand(app.App).Execute(ctx, AddOptions{Start: "09:00"})

		ve, ok := validation.AsValidationError(err)
		require.True(t, ok)
		fields := make([]string, 0, len(ve.Errors))
		for _, fe := range ve.Errors {
			fields = append(fields, fe.Field)
		}
		assert.Equal(t, []string{"workplace", "rate", "end"}, fields)
		assert.Empty(t, app.services.ShiftService.Shifts())
	})

	t.Run("unknown template", func(t *testing.T) {
		app := setupTestApp(t)
		err := NewAddCommand(app.App).Execute(ctx, AddOptions{Template: "night"})
		assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
	})
}

func TestListCommand(t *testing.T) {
	withFixedNow(t, localTime("2024-03-14", "12:00"))
	ctx := context.Background()

	app := setupTestApp(t)
	app.seedShift(t, "march-2", localTime("2024-03-10", "09:00"), localTime("2024-03-10", "17:00"), domain.MustDuration(0, 30))
	app.seedShift(t, "march-1", localTime("2024-03-01", "22:00"), localTime("2024-03-02", "06:00"))

	t.Run("table of all shifts oldest first", func(t *testing.T) {
		app.out.Reset()
		require.NoError(t, NewListCommand(app.App).Execute(ctx, ListOptions{}))

		lines := strings.Split(strings.TrimSpace(app.out.String()), "\n")
		require.Len(t, lines, 4)
		assert.True(t, strings.HasPrefix(lines[0], "ID"))
		assert.Contains(t, lines[1], "march-1")
		assert.Contains(t, lines[1], "22:00-06:00+1")
		assert.Contains(t, lines[2], "march-2")
		assert.Contains(t, lines[2], "EUR 90.00")
		assert.Equal(t, "2 shifts, 15h 30m billable, EUR 186.00", lines[3])
	})

	t.Run("period and json", func(t *testing.T) {
		app.out.Reset()
		require.NoError(t, NewListCommand(app.App).Execute(ctx, ListOptions{
			PeriodOptions: PeriodOptions{Period: "1w"},
			JSON:          true,
		}))

		var records []domain.Record
		require.NoError(t, json.Unmarshal(app.out.Bytes(), &records))
		require.Len(t, records, 1)
		assert.Equal(t, "march-2", records[0].ID)
		assert.Equal(t, []string{"0:30"}, records[0].UnpaidBreaks)
	})

	t.Run("workplace filter without matches", func(t *testing.T) {
		app.out.Reset()
		require.NoError(t, NewListCommand(app.App).Execute(ctx, ListOptions{Workplace: "bar"}))
		assert.Equal(t, "No shifts found\n", app.out.String())
	})
}

func TestStatsCommand(t *testing.T) {
	withFixedNow(t, localTime("2024-03-14", "12:00"))
	ctx := context.Background()

	app := setupTestApp(t)
	app.seedShift(t, "s1", localTime("2024-03-04", "09:00"), localTime("2024-03-04", "17:00"), domain.MustDuration(0, 30))
	app.seedShift(t, "s2", localTime("2024-03-05", "09:00"), localTime("2024-03-05", "13:00"))
	app.seedShift(t, "old", localTime("2024-02-05", "09:00"), localTime("2024-02-05", "13:00"))

	t.Run("current month as json", func(t *testing.T) {
		app.out.Reset()
		require.NoError(t, NewStatsCommand(app.App).Execute(ctx, StatsOptions{JSON: true}))

		var report statsReport
		require.NoError(t, json.Unmarshal(app.out.Bytes(), &report))
		assert.Equal(t, 2, report.Stats.Count)
		assert.InDelta(t, 138.0, report.Stats.Income, 1e-9)
		assert.Equal(t, domain.MustDuration(11, 30), report.Stats.Billable)
		assert.Equal(t, domain.MustDuration(0, 30), report.Stats.Breaks)
		assert.Equal(t, "EUR", report.Currency)
	})

	t.Run("table for one day", func(t *testing.T) {
		app.out.Reset()
		require.NoError(t, NewStatsCommand(app.App).Execute(ctx, StatsOptions{PeriodOptions: PeriodOptions{Day: "2024-03-05"}}))

		out := app.out.String()
		assert.Contains(t, out, "Shifts from 2024-03-05 00:00 to 2024-03-06 00:00")
		assert.Contains(t, out, "Billable time")
		assert.Contains(t, out, "EUR 48.00")
	})
}

func TestEditCommand(t *testing.T) {
	withFixedNow(t, localTime("2024-03-14", "12:00"))
	ctx := context.Background()

	t.Run("changes the end and drops breaks", func(t *testing.T) {
		app := setupTestApp(t)
		app.seedShift(t, "shift-1", localTime("2024-03-04", "09:00"), localTime("2024-03-04", "17:00"), domain.MustDuration(0, 30))

		err := NewEditCommand(app.App).Execute(ctx, EditOptions{ID: "shift", End: "18:00", NoBreaks: true})
		require.NoError(t, err)

		edited, err := app.services.ShiftService.Get("shift-1")
		require.NoError(t, err)
		assert.Equal(t, localTime("2024-03-04", "09:00"), edited.StartTime())
		assert.Equal(t, localTime("2024-03-04", "18:00"), edited.EndTime())
		assert.Empty(t, edited.UnpaidBreaks())
		assert.Contains(t, app.out.String(), "Updated shift shift-1")
	})

	t.Run("moves to another day", func(t *testing.T) {
		app := setupTestApp(t)
		app.seedShift(t, "shift-1", localTime("2024-03-04", "09:00"), localTime("2024-03-04", "17:00"))

		workplace := "Bar"
		require.NoError(t, NewEditCommand(app.App).Execute(ctx, EditOptions{ID: "shift-1", Date: "2024-03-08", Workplace: &workplace}))

		edited, err := app.services.ShiftService.Get("shift-1")
		require.NoError(t, err)
		assert.Equal(t, "Bar", edited.Workplace())
		assert.Equal(t, localTime("2024-03-08", "09:00"), edited.StartTime())
		assert.Equal(t, localTime("2024-03-08", "17:00"), edited.EndTime())
	})

	t.Run("nothing to change", func(t *testing.T) {
		app := setupTestApp(t)
		app.seedShift(t, "shift-1", localTime("2024-03-04", "09:00"), localTime("2024-03-04", "17:00"))

		err := NewEditCommand(app.App).Execute(ctx, EditOptions{ID: "shift-1"})
		assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidInput))
	})

	t.Run("unknown shift", func(t *testing.T) {
		app := setupTestApp(t)
		err := NewEditCommand(app.App).Execute(ctx, EditOptions{ID: "nope", End: "18:00"})
		assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
	})
}

func TestDeleteCommand(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, app *testApp) {
		app.seedShift(t, "aaa111", localTime("2024-03-04", "09:00"), localTime("2024-03-04", "17:00"))
		app.seedShift(t, "bbb222", localTime("2024-03-05", "09:00"), localTime("2024-03-05", "17:00"))
		app.seedShift(t, "ccc333", localTime("2024-03-06", "09:00"), localTime("2024-03-06", "17:00"))
	}

	t.Run("one shift by prefix", func(t *testing.T) {
		app := setupTestApp(t)
		seed(t, app)

		require.NoError(t, NewDeleteCommand(app.App).Execute(ctx, DeleteOptions{IDs: []string{"bbb"}}))
		assert.Len(t, app.services.ShiftService.Shifts(), 2)
		assert.Contains(t, app.out.String(), "Deleted shift bbb222")
	})

	t.Run("several shifts", func(t *testing.T) {
		app := setupTestApp(t)
		seed(t, app)

		require.NoError(t, NewDeleteCommand(app.App).Execute(ctx, DeleteOptions{IDs: []string{"aaa111", "ccc", "aaa"}}))
		shifts := app.services.ShiftService.Shifts()
		require.Len(t, shifts, 1)
		assert.Equal(t, "bbb222", shifts[0].ID())
		assert.Contains(t, app.out.String(), "Deleted 2 shifts")
	})

	t.Run("unknown id deletes nothing", func(t *testing.T) {
		app := setupTestApp(t)
		seed(t, app)

		err := NewDeleteCommand(app.App).Execute(ctx, DeleteOptions{IDs: []string{"aaa111", "zzz"}})
		assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
		assert.Len(t, app.services.ShiftService.Shifts(), 3)
	})

	t.Run("no ids", func(t *testing.T) {
		app := setupTestApp(t)
		err := NewDeleteCommand(app.App).Execute(ctx, DeleteOptions{})
		assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidInput))
	})

	t.Run("all after confirmation", func(t *testing.T) {
		app := setupTestAppWithInput(t, "y\n")
		seed(t, app)

		require.NoError(t, NewDeleteCommand(app.App).Execute(ctx, DeleteOptions{All: true}))
		assert.Empty(t, app.services.ShiftService.Shifts())
		assert.Contains(t, app.out.String(), "Delete all 3 shifts? [y/N]: ")
		assert.Contains(t, app.out.String(), "Deleted 3 shifts")
	})

	t.Run("all cancelled", func(t *testing.T) {
		app := setupTestAppWithInput(t, "n\n")
		seed(t, app)

		require.NoError(t, NewDeleteCommand(app.App).Execute(ctx, DeleteOptions{All: true}))
		assert.Len(t, app.services.ShiftService.Shifts(), 3)
		assert.Contains(t, app.out.String(), "Delete cancelled.")
	})

	t.Run("all without asking", func(t *testing.T) {
		app := setupTestApp(t)
		seed(t, app)

		require.NoError(t, NewDeleteCommand(app.App).Execute(ctx, DeleteOptions{All: true, Yes: true}))
		assert.Empty(t, app.services.ShiftService.Shifts())
	})
}

func TestSessionCommand(t *testing.T) {
	withFixedNow(t, localTime("2024-03-04", "17:15"))
	ctx := context.Background()

	app := setupTestApp(t)
	cmd := NewSessionCommand(app.App)

	require.NoError(t, cmd.Status(ctx))
	assert.Equal(t, "Not checked in\n", app.out.String())

	err := cmd.CheckOut(ctx, CheckOutOptions{Workplace: "Cafe", PayRate: float(12), End: "17:00"})
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeValidation))

	require.NoError(t, cmd.CheckIn(ctx, "09:00"))
	assert.Contains(t, app.out.String(), "Checked in at 2024-03-04 09:00")

	app.out.Reset()
	require.NoError(t, cmd.Status(ctx))
	assert.Contains(t, app.out.String(), "Checked in since 2024-03-04 09:00")
	assert.Contains(t, app.out.String(), "Elapsed: 8h 15m")

	err = cmd.CheckOut(ctx, CheckOutOptions{End: "17:00"})
	_, isValidation := validation.AsValidationError(err)
	assert.True(t, isValidation)

	app.out.Reset()
	require.NoError(t, cmd.CheckOut(ctx, CheckOutOptions{
		Workplace: "Cafe",
		PayRate:   float(12),
		Breaks:    []string{"0:30"},
		End:       "17:00",
	}))
	assert.Contains(t, app.out.String(), "billable 7h 30m, EUR 90.00")
	assert.False(t, app.services.SessionService.IsCheckedIn())

	shifts := app.services.ShiftService.Shifts()
	require.Len(t, shifts, 1)
	assert.Equal(t, localTime("2024-03-04", "09:00"), shifts[0].StartTime())
	assert.Equal(t, localTime("2024-03-04", "17:00"), shifts[0].EndTime())
}

func TestWorkInfoCommand(t *testing.T) {
	ctx := context.Background()
	app := setupTestApp(t)
	cmd := NewWorkInfoCommand(app.App)

	require.NoError(t, cmd.List(ctx))
	assert.Equal(t, "No workplaces recorded\n", app.out.String())

	require.NoError(t, cmd.Add(ctx, []string{" Cafe ", "12.5"}))
	require.NoError(t, cmd.Add(ctx, []string{"Cafe", "14"}))
	require.NoError(t, cmd.Add(ctx, []string{"Bar", "11"}))

	app.out.Reset()
	require.NoError(t, cmd.List(ctx))
	out := app.out.String()
	assert.Contains(t, out, "EUR 12.50, EUR 14.00")
	assert.Contains(t, out, "Bar")

	err := cmd.Add(ctx, []string{"Cafe", "lots"})
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidInput))

	err = cmd.Add(ctx, []string{"Cafe"})
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidInput))

	require.NoError(t, cmd.Delete(ctx, []string{"Cafe", "14"}))
	assert.Equal(t, []float64{12.5}, app.services.WorkInfoService.WorkInfos().Rates("Cafe"))

	require.NoError(t, cmd.Delete(ctx, []string{"Bar"}))
	assert.False(t, app.services.WorkInfoService.WorkInfos().Has("Bar"))

	err = cmd.Delete(ctx, []string{"Bar"})
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
}

func TestTemplateCommand(t *testing.T) {
	withFixedNow(t, localTime("2024-03-04", "12:00"))
	ctx := context.Background()
	app := setupTestApp(t)
	cmd := NewTemplateCommand(app.App)

	require.NoError(t, cmd.List(ctx))
	assert.Equal(t, "No templates saved\n", app.out.String())

	require.NoError(t, cmd.Add(ctx, TemplateAddOptions{
		Name: "morning",
		Shift: AddOptions{
			Workplace: "Cafe",
			PayRate:   float(12),
			Start:     "07:00",
			End:       "15:00",
			Breaks:    []string{"0:30"},
		},
	}))
	assert.Contains(t, app.out.String(), "Saved template morning: Cafe, 07:00-15:00")

	t.Run("add from template", func(t *testing.T) {
		require.NoError(t, NewAddCommand(app.App).Execute(ctx, AddOptions{Template: "morning", Date: "2024-03-06"}))
		require.NoError(t, NewAddCommand(app.App).Execute(ctx, AddOptions{Template: "morning", Date: "2024-03-07", End: "16:00"}))

		shifts := app.services.ShiftService.Shifts()
		require.Len(t, shifts, 2)
		sortByStart(shifts)
		assert.Equal(t, localTime("2024-03-06", "07:00"), shifts[0].StartTime())
		assert.Equal(t, localTime("2024-03-06", "15:00"), shifts[0].EndTime())
		assert.Equal(t, domain.MustDuration(7, 30), shifts[0].BillableDuration())
		assert.Equal(t, localTime("2024-03-07", "16:00"), shifts[1].EndTime())
		assert.NotEqual(t, shifts[0].ID(), shifts[1].ID())
	})

	t.Run("from an existing shift", func(t *testing.T) {
		shift := app.seedShift(t, "late-1", localTime("2024-03-01", "18:00"), localTime("2024-03-01", "23:00"))
		require.NoError(t, cmd.Add(ctx, TemplateAddOptions{Name: "late", FromShift: shift.ID()}))

		app.out.Reset()
		require.NoError(t, cmd.List(ctx))
		lines := strings.Split(strings.TrimSpace(app.out.String()), "\n")
		require.Len(t, lines, 3)
		assert.Contains(t, lines[1], "late")
		assert.Contains(t, lines[1], "18:00-23:00")
		assert.Contains(t, lines[2], "morning")
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, cmd.Delete(ctx, []string{"late"}))
		err := cmd.Delete(ctx, []string{"late"})
		assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))

		err = cmd.Delete(ctx, nil)
		assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidInput))
	})
}

func TestImportCommand(t *testing.T) {
	ctx := context.Background()
	app := setupTestApp(t)
	app.seedShift(t, "existing", localTime("2024-03-01", "09:00"), localTime("2024-03-01", "17:00"))

	list := `[
		{"id": "existing", "workplace": "Cafe", "payRate": 12, "startTime": "2024-03-01T09:00:00.000Z", "endTime": "2024-03-01T17:00:00.000Z", "unpaidBreaks": []},
		{"id": "new-1", "workplace": "Bar", "payRate": 14, "startTime": "2024-03-02T18:00:00.000Z", "endTime": "2024-03-02T23:00:00.000Z", "unpaidBreaks": ["0:30"]},
		{"id": "broken"},
		{"id": "new-1", "workplace": "Pub", "payRate": 9, "startTime": "2024-03-03T18:00:00.000Z", "endTime": "2024-03-03T23:00:00.000Z"}
	]`
	encoded, err := json.Marshal(map[string]string{"shifts": list})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "shifts.json")
	require.NoError(t, os.WriteFile(path, encoded, 0o600))

	require.NoError(t, NewImportCommand(app.App).Execute(ctx, path))
	assert.Contains(t, app.out.String(), "Imported 1 shifts")
	assert.Contains(t, app.errOut.String(), "Skipped 2 shifts whose id was already stored or repeated")
	assert.Contains(t, app.errOut.String(), "Skipped 1 records that could not be read")

	imported, err := app.services.ShiftService.Get("new-1")
	require.NoError(t, err)
	assert.Equal(t, "Bar", imported.Workplace())
	assert.True(t, app.services.WorkInfoService.WorkInfos().Has("Bar"))

	err = NewImportCommand(app.App).Execute(ctx, filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidInput))
}

func TestDecodeShiftList(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "array", input: `[{"id": "a"}, {"id": "b"}]`, want: 2},
		{name: "object with shifts", input: `{"shifts": [{"id": "a"}]}`, want: 1},
		{name: "legacy entries key", input: `{"entries": [{"id": "a"}]}`, want: 1},
		{name: "encoded string", input: `{"shifts": "[{\"id\": \"a\"}]"}`, want: 1},
		{name: "empty list", input: `[]`, want: 0},
		{name: "not json", input: `shifts`, wantErr: true},
		{name: "object without list", input: `{"other": []}`, wantErr: true},
		{name: "broken string", input: `{"shifts": "[{"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeShiftList([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestExportCommand(t *testing.T) {
	ctx := context.Background()
	app := setupTestApp(t)
	app.seedShift(t, "s2", localTime("2024-03-05", "09:00"), localTime("2024-03-05", "13:00"))
	app.seedShift(t, "s1", localTime("2024-03-04", "09:00"), localTime("2024-03-04", "17:00"), domain.MustDuration(0, 30))

	t.Run("csv", func(t *testing.T) {
		app.out.Reset()
		require.NoError(t, NewExportCommand(app.App).Execute(ctx, ExportOptions{Format: "CSV"}))

		lines := strings.Split(strings.TrimSpace(app.out.String()), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "id,workplace,payRate,startTime,endTime,unpaidBreaks,billable,income", lines[0])
		assert.True(t, strings.HasPrefix(lines[1], "s1,Cafe,12,"))
		assert.True(t, strings.HasSuffix(lines[1], ",0:30,7:30,90.00"))
	})

	t.Run("yaml", func(t *testing.T) {
		app.out.Reset()
		require.NoError(t, NewExportCommand(app.App).Execute(ctx, ExportOptions{Format: "yaml"}))
		out := app.out.String()
		assert.Contains(t, out, "- id: s1")
		assert.Contains(t, out, "workplace: Cafe")
	})

	t.Run("json file can be imported again", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "export.json")
		require.NoError(t, NewExportCommand(app.App).Execute(ctx, ExportOptions{Output: path}))
		assert.Contains(t, app.out.String(), "Exported 2 shifts to "+path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		records, err := decodeShiftList(data)
		require.NoError(t, err)
		result := domain.ParseAll(records)
		assert.True(t, result.Success)
		require.Len(t, result.Shifts, 2)
		assert.Equal(t, "s1", result.Shifts[0].ID())
	})

	t.Run("unknown format", func(t *testing.T) {
		err := NewExportCommand(app.App).Execute(ctx, ExportOptions{Format: "xml"})
		assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidInput))
	})
}
