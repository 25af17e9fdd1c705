package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/warehouse-finops-dashboard-go/internal/adapter/driven/warehouse"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/application/chat"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/application/usecase"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/domain/entity"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/domain/repository"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/shared/types"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/testutil"
)

var ctx = context.Background()

func day(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

func januaryFilter() entity.FilterState {
	return entity.FilterState{
		StartDate:     day(1),
		EndDate:       day(3),
		Warehouse:     entity.AllWarehouses,
		CostPerCredit: decimal.NewFromInt(3),
	}
}

func seededRepo(t *testing.T) repository.WarehouseRepository {
	t.Helper()
	repo, err := warehouse.NewSQLRepository(testutil.OpenSeededDuckDB(t), types.WarehouseConfig{})
	require.NoError(t, err)
	return repo
}

func emptyRepo() *testutil.MockWarehouseRepo {
	return &testutil.MockWarehouseRepo{
		WarehousesFn: func(context.Context) ([]string, error) { return nil, nil },
		DailyCreditsFn: func(context.Context, entity.FilterState) ([]entity.DailyCredits, error) {
			return nil, nil
		},
		WarehouseCreditsFn: func(context.Context, entity.FilterState, int) ([]entity.WarehouseCredits, error) {
			return nil, nil
		},
		QueryMetricsFn: func(context.Context, entity.FilterState) ([]entity.DailyQueryMetrics, error) {
			return nil, nil
		},
		StorageUsageFn: func(context.Context, entity.FilterState) ([]entity.DailyStorage, error) {
			return nil, nil
		},
	}
}

type fixture struct {
	uc        *usecase.DashboardUseCase
	completer *testutil.MockCompleter
	exporter  *testutil.MockExporter
	store     *testutil.MockReportStore
	console   *testutil.MockConsole
}

func newFixture(repo repository.WarehouseRepository) *fixture {
	f := &fixture{
		completer: &testutil.MockCompleter{},
		exporter:  &testutil.MockExporter{},
		store:     &testutil.MockReportStore{},
		console:   testutil.NewMockConsole(),
	}
	f.uc = usecase.NewDashboardUseCase(repo, f.completer, f.exporter, f.store, f.console, "mistral-large2")
	return f
}

func TestDashboardEndToEnd(t *testing.T) {
	fx := newFixture(seededRepo(t))

	report, err := fx.uc.Dashboard(ctx, januaryFilter())
	require.NoError(t, err)
	assert.Empty(t, report.Warnings)
	assert.Empty(t, report.Errors)

	require.NotNil(t, report.Summary)
	require.Len(t, report.Summary.Rows, 3)
	for i, want := range []int64{30, 45, 45} {
		assert.True(t, decimal.NewFromInt(want).Equal(report.Summary.Rows[i].CumCost), "row %d", i)
	}
	assert.True(t, decimal.NewFromInt(15).Equal(report.Summary.TotalCredits))
	assert.True(t, decimal.NewFromInt(45).Equal(report.Summary.TotalCost))
	assert.True(t, decimal.NewFromInt(45).Equal(report.Summary.DiscountedCost))
	assert.Equal(t, 3, report.Summary.Days)

	require.NotNil(t, report.Warehouses)
	assert.Equal(t, "ETL_WH", report.Warehouses.Rows[0].WarehouseName)
	assert.True(t, decimal.NewFromInt(36).Equal(report.Warehouses.Rows[0].EstCost))

	require.NotNil(t, report.Performance)
	assert.Equal(t, int64(120), report.Performance.TotalQueries)
	assert.InDelta(t, 3.0, report.Performance.TotalElapsedMin, 1e-9)
	assert.InDelta(t, 1.5, report.Performance.AvgQuerySeconds, 1e-9)

	require.NotNil(t, report.Storage)
	assert.InDelta(t, 25.0, report.Storage.GrowthGB, 1e-9)
}

func TestDashboardDiscount(t *testing.T) {
	fx := newFixture(seededRepo(t))
	f := januaryFilter()
	f.DiscountPct = 100

	report, err := fx.uc.Dashboard(ctx, f, entity.PanelSummary)
	require.NoError(t, err)
	assert.True(t, report.Summary.DiscountedCost.IsZero())
	assert.Nil(t, report.Storage, "only the requested panel is computed")
}

func TestDashboardIsolatesPanelFailures(t *testing.T) {
	repo := emptyRepo()
	repo.DailyCreditsFn = func(context.Context, entity.FilterState) ([]entity.DailyCredits, error) {
		return nil, &types.QueryExecutionError{Query: "daily_credits", Err: errors.New("warehouse suspended")}
	}
	fx := newFixture(repo)

	report, err := fx.uc.Dashboard(ctx, januaryFilter())
	require.NoError(t, err)

	assert.Nil(t, report.Summary)
	assert.Contains(t, report.Errors[entity.PanelSummary], "warehouse suspended")
	for _, panel := range []string{entity.PanelWarehouses, entity.PanelPerformance, entity.PanelStorage} {
		assert.Equal(t, usecase.NoDataMessage, report.Warnings[panel], panel)
	}
}

func TestDashboardRejectsInvalidFilter(t *testing.T) {
	fx := newFixture(emptyRepo())
	f := januaryFilter()
	f.StartDate, f.EndDate = f.EndDate, f.StartDate

	_, err := fx.uc.Dashboard(ctx, f)
	assert.ErrorIs(t, err, types.ErrInvalidDateRange)

	_, err = fx.uc.Dashboard(ctx, januaryFilter(), "billing")
	assert.ErrorContains(t, err, "unknown panel")
}

func TestSinglePanelsReturnNoData(t *testing.T) {
	fx := newFixture(emptyRepo())

	_, err := fx.uc.Summary(ctx, januaryFilter())
	assert.ErrorIs(t, err, types.ErrNoData)
	_, err = fx.uc.WarehouseUsage(ctx, januaryFilter())
	assert.ErrorIs(t, err, types.ErrNoData)
	_, err = fx.uc.QueryPerformance(ctx, januaryFilter())
	assert.ErrorIs(t, err, types.ErrNoData)
	_, err = fx.uc.Storage(ctx, januaryFilter())
	assert.ErrorIs(t, err, types.ErrNoData)
}

func TestListWarehouses(t *testing.T) {
	fx := newFixture(seededRepo(t))

	names, err := fx.uc.ListWarehouses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"(All)", "BI_WH", "ETL_WH", "O'Brien_WH"}, names)
}

func TestInsightsUsesTopWarehouses(t *testing.T) {
	repo := emptyRepo()
	var gotLimit int
	repo.WarehouseCreditsFn = func(_ context.Context, _ entity.FilterState, limit int) ([]entity.WarehouseCredits, error) {
		gotLimit = limit
		return []entity.WarehouseCredits{{WarehouseName: "ETL_WH", Credits: decimal.NewFromInt(12)}}, nil
	}
	fx := newFixture(repo)
	fx.completer.CompleteFn = func(_ context.Context, model, _ string) (string, error) {
		assert.Equal(t, "mistral-large2", model)
		return "Executive summary: ETL_WH dominates.", nil
	}

	text, err := fx.uc.Insights(ctx, januaryFilter())
	require.NoError(t, err)
	assert.Equal(t, "Executive summary: ETL_WH dominates.", text)
	assert.Equal(t, 5, gotLimit)
	assert.Contains(t, fx.completer.LastPrompt(), "ETL_WH,12")
	assert.Contains(t, fx.completer.LastPrompt(), "2024-01-01 to 2024-01-03")
}

func TestAskFailureKeepsOnlyUserTurn(t *testing.T) {
	fx := newFixture(seededRepo(t))
	fx.completer.CompleteFn = func(_ context.Context, model, _ string) (string, error) {
		return "", &types.CompletionError{Model: model, Err: errors.New("quota exceeded")}
	}
	history := chat.NewHistory()

	_, err := fx.uc.Ask(ctx, history, januaryFilter(), "Why is ETL_WH expensive?")
	var ce *types.CompletionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 1, history.Len())
	assert.False(t, history.Pending())

	fx.completer.CompleteFn = func(context.Context, string, string) (string, error) {
		return "Resize it.", nil
	}
	answer, err := fx.uc.Ask(ctx, history, januaryFilter(), "And now?")
	require.NoError(t, err)
	assert.Equal(t, "Resize it.", answer)
	assert.Equal(t, 3, history.Len())
	assert.Contains(t, fx.completer.LastPrompt(), "And now?")
	assert.NotContains(t, fx.completer.LastPrompt(), "Why is ETL_WH expensive?")
}

func TestRunDashboardExportsAndUploads(t *testing.T) {
	fx := newFixture(seededRepo(t))
	args := &types.CLIArgs{
		ReportName: "finops",
		ReportType: []string{"csv", "json", "xml"},
		Dir:        "/tmp/reports",
		Upload:     "s3://bucket/finops",
	}

	require.NoError(t, fx.uc.RunDashboard(ctx, args, januaryFilter()))

	assert.Equal(t, []string{"csv:finops", "json:finops"}, fx.exporter.Calls)
	assert.Equal(t, []string{"/tmp/reports/finops.csv", "/tmp/reports/finops.json"}, fx.store.Uploaded)
	assert.Contains(t, fx.console.Warnings, "Unsupported report type: xml")
	assert.Contains(t, fx.console.Bars, "Daily Cost ($)")
	assert.Contains(t, fx.console.Bars, "Storage Growth (GB)")
	require.NotEmpty(t, fx.console.Metrics)
	assert.Equal(t, types.Metric{Label: "Total Cost ($)", Value: "45.00"}, fx.console.Metrics[0][1])
	assert.Equal(t, []int{len(usecase.AllPanels)}, fx.console.Progress)
	assert.Equal(t, len(usecase.AllPanels), fx.console.ProgressSteps)
}

func TestRunDashboardShowsWarningsAndSQL(t *testing.T) {
	repo := emptyRepo()
	repo.StatementsFn = func(entity.FilterState) (map[string]string, error) {
		return map[string]string{"daily_credits": "SELECT 1"}, nil
	}
	fx := newFixture(repo)

	require.NoError(t, fx.uc.RunDashboard(ctx, &types.CLIArgs{ShowSQL: true}, januaryFilter(), entity.PanelSummary))

	assert.Equal(t, []string{usecase.NoDataMessage}, fx.console.Warnings)
	assert.Equal(t, []int{1}, fx.console.Progress)
	assert.Equal(t, 1, fx.console.ProgressSteps)
	assert.Equal(t, "SELECT 1", fx.console.Panels["daily_credits"])
	assert.Empty(t, fx.exporter.Calls)
}

func TestRunInsightsReportsCompletionErrorInline(t *testing.T) {
	fx := newFixture(seededRepo(t))
	fx.completer.CompleteFn = func(_ context.Context, model, _ string) (string, error) {
		return "", &types.CompletionError{Model: model, Err: errors.New("model unavailable")}
	}

	require.NoError(t, fx.uc.RunInsights(ctx, januaryFilter()))
	assert.Equal(t, []string{"Cortex error: model unavailable"}, fx.console.Errors)
	assert.Empty(t, fx.console.Panels)
}

func TestRunChat(t *testing.T) {
	fx := newFixture(seededRepo(t))
	fx.completer.CompleteFn = func(context.Context, string, string) (string, error) {
		return "ETL_WH uses the most credits.", nil
	}

	input := strings.NewReader("Which warehouse costs most?\n\n  \nexit\nnever asked\n")
	require.NoError(t, fx.uc.RunChat(ctx, januaryFilter(), input))

	require.Len(t, fx.console.Turns, 2)
	assert.Equal(t, entity.RoleUser, fx.console.Turns[0].Role)
	assert.Equal(t, "Which warehouse costs most?", fx.console.Turns[0].Content)
	assert.Equal(t, entity.ChatTurn{Role: entity.RoleAssistant, Content: "ETL_WH uses the most credits."}, fx.console.Turns[1])
	assert.Len(t, fx.completer.Prompts, 1)
}
