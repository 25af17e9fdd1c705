package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/warehouse-finops-dashboard-go/internal/adapter/driven/export"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/adapter/driven/warehouse"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/application/usecase"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/shared/types"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/testutil"
	"github.com/diillson/warehouse-finops-dashboard-go/pkg/console"
)

type stubConfigRepo struct {
	cfg  *types.Config
	err  error
	path string
}

func (s *stubConfigRepo) LoadConfigFile(path string) (*types.Config, error) {
	return s.LoadConfig(path)
}

func (s *stubConfigRepo) LoadConfig(path string) (*types.Config, error) {
	s.path = path
	if s.err != nil {
		return nil, s.err
	}
	cfg := *s.cfg
	return &cfg, nil
}

type cliFixture struct {
	app       *CLIApp
	out       *bytes.Buffer
	completer *testutil.MockCompleter
	config    *stubConfigRepo
	gotConfig *types.Config
}

func newCLI(t *testing.T, stdin string) *cliFixture {
	t.Helper()
	pterm.DisableStyling()
	color.NoColor = true
	t.Cleanup(pterm.EnableStyling)

	fx := &cliFixture{
		out:       &bytes.Buffer{},
		completer: &testutil.MockCompleter{},
		config:    &stubConfigRepo{cfg: types.DefaultConfig()},
	}
	db := testutil.OpenSeededDuckDB(t)

	factory := func(_ context.Context, cfg *types.Config) (*usecase.DashboardUseCase, io.Closer, error) {
		fx.gotConfig = cfg
		repo, err := warehouse.NewSQLRepository(db, types.WarehouseConfig{})
		if err != nil {
			return nil, nil, err
		}
		uc := usecase.NewDashboardUseCase(repo, fx.completer, export.NewExportRepository(), nil,
			console.NewConsoleWithWriter(fx.out), cfg.Completion.Model)
		return uc, io.NopCloser(nil), nil
	}

	fx.app = NewCLIApp("0.0.0-dev", fx.config, factory)
	fx.app.now = func() time.Time { return time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC) }
	fx.app.SetIO(strings.NewReader(stdin), fx.out)
	return fx
}

func (fx *cliFixture) run(args ...string) error {
	fx.app.SetArgs(args)
	return fx.app.Execute()
}

func TestListWarehousesCommand(t *testing.T) {
	fx := newCLI(t, "")

	require.NoError(t, fx.run("list-warehouses"))
	assert.Equal(t, "(All)\nBI_WH\nETL_WH\nO'Brien_WH\n", fx.out.String())
}

func TestSummaryCommand(t *testing.T) {
	fx := newCLI(t, "")

	require.NoError(t, fx.run("summary", "--start", "2024-01-01", "--end", "2024-01-03", "--discount", "10"))

	out := fx.out.String()
	assert.Contains(t, out, "Warehouse FinOps Dashboard CLI")
	assert.Contains(t, out, "Credits Used")
	assert.Contains(t, out, "45.00")
	assert.Contains(t, out, "40.50")
	assert.Contains(t, out, "Daily Cost ($)")
	assert.NotContains(t, out, "Storage Growth (GB)")
}

func TestRootCommandRendersAllPanels(t *testing.T) {
	fx := newCLI(t, "")

	require.NoError(t, fx.run("--days", "2", "--show-sql"))

	out := fx.out.String()
	for _, title := range []string{"Summary", "Warehouse Usage", "Query Performance", "Storage", "Cost by Warehouse", "Avg Query Time (Sec)"} {
		assert.Contains(t, out, title)
	}
	assert.Contains(t, out, "BETWEEN '2024-01-01' AND '2024-01-03'")
}

func TestInvalidFilterFlags(t *testing.T) {
	fx := newCLI(t, "")
	assert.ErrorIs(t, fx.run("summary", "--start", "2024-02-01"), types.ErrInvalidDateRange)

	fx = newCLI(t, "")
	assert.ErrorIs(t, fx.run("summary", "--discount", "120"), types.ErrInvalidDiscount)

	fx = newCLI(t, "")
	assert.ErrorContains(t, fx.run("summary", "--end", "03/01/2024"), "expected YYYY-MM-DD")

	fx = newCLI(t, "")
	assert.ErrorIs(t, fx.run("summary", "--cost-per-credit", "NaN"), types.ErrInvalidCostPerCredit)
}

func TestConfigFileAndErrors(t *testing.T) {
	fx := newCLI(t, "")
	fx.config.err = errors.New("unsupported config file format: .ini")

	err := fx.run("summary", "-C", "finops.ini")
	assert.ErrorContains(t, err, "unsupported config file format")
	assert.Equal(t, "finops.ini", fx.config.path)
}

func TestExportAndUploadFlagsReachConfig(t *testing.T) {
	fx := newCLI(t, "")
	dir := t.TempDir()

	require.NoError(t, fx.run("storage", "--days", "2", "-n", "finops", "-y", "json", "-d", dir, "--upload", "s3://bucket/reports"))

	matches, err := filepath.Glob(filepath.Join(dir, "finops_*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"growth_gb": 25`)

	assert.Equal(t, "s3://bucket/reports", fx.gotConfig.Export.Upload)
	assert.Contains(t, fx.out.String(), "no report store configured")
}

func TestChatCommand(t *testing.T) {
	fx := newCLI(t, "Which warehouse costs most?\nexit\n")
	fx.completer.CompleteFn = func(context.Context, string, string) (string, error) {
		return "ETL_WH, by far.", nil
	}

	require.NoError(t, fx.run("chat", "--days", "2"))

	out := fx.out.String()
	assert.Contains(t, out, "You: Which warehouse costs most?")
	assert.Contains(t, out, "Cortex: ETL_WH, by far.")
	assert.Contains(t, fx.completer.LastPrompt(), "Which warehouse costs most?")
}

func TestInsightsCommandShowsCompletionErrorInline(t *testing.T) {
	fx := newCLI(t, "")
	fx.completer.CompleteFn = func(_ context.Context, model, _ string) (string, error) {
		return "", &types.CompletionError{Model: model, Err: errors.New("model not available in region")}
	}

	require.NoError(t, fx.run("insights"))
	assert.Contains(t, fx.out.String(), "Cortex error: model not available in region")
}
