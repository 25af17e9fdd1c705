package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/diillson/warehouse-finops-dashboard-go/internal/domain/entity"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/domain/repository"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/shared/types"
)

// === Completion Mock ===

// MockCompleter implements repository.CompletionRepository for testing.
type MockCompleter struct {
	CompleteFn func(ctx context.Context, model string, prompt string) (string, error)

	mu      sync.Mutex
	Prompts []string // collected prompts for assertions
}

// Complete implements the interface method for testing.
func (m *MockCompleter) Complete(ctx context.Context, model string, prompt string) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	m.mu.Unlock()
	if m.CompleteFn != nil {
		return m.CompleteFn(ctx, model, prompt)
	}
	panic("unexpected call to MockCompleter.Complete")
}

// LastPrompt returns the last prompt sent, or "" if none.
func (m *MockCompleter) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Prompts) == 0 {
		return ""
	}
	return m.Prompts[len(m.Prompts)-1]
}

var _ repository.CompletionRepository = (*MockCompleter)(nil)

// === Warehouse Repository Mock ===

// MockWarehouseRepo implements repository.WarehouseRepository for testing.
type MockWarehouseRepo struct {
	WarehousesFn       func(ctx context.Context) ([]string, error)
	DailyCreditsFn     func(ctx context.Context, f entity.FilterState) ([]entity.DailyCredits, error)
	WarehouseCreditsFn func(ctx context.Context, f entity.FilterState, limit int) ([]entity.WarehouseCredits, error)
	QueryMetricsFn     func(ctx context.Context, f entity.FilterState) ([]entity.DailyQueryMetrics, error)
	StorageUsageFn     func(ctx context.Context, f entity.FilterState) ([]entity.DailyStorage, error)
	StatementsFn       func(f entity.FilterState) (map[string]string, error)
}

// Warehouses implements the interface method for testing.
func (m *MockWarehouseRepo) Warehouses(ctx context.Context) ([]string, error) {
	if m.WarehousesFn != nil {
		return m.WarehousesFn(ctx)
	}
	panic("unexpected call to MockWarehouseRepo.Warehouses")
}

// DailyCredits implements the interface method for testing.
func (m *MockWarehouseRepo) DailyCredits(ctx context.Context, f entity.FilterState) ([]entity.DailyCredits, error) {
	if m.DailyCreditsFn != nil {
		return m.DailyCreditsFn(ctx, f)
	}
	panic("unexpected call to MockWarehouseRepo.DailyCredits")
}

// WarehouseCredits implements the interface method for testing.
func (m *MockWarehouseRepo) WarehouseCredits(ctx context.Context, f entity.FilterState, limit int) ([]entity.WarehouseCredits, error) {
	if m.WarehouseCreditsFn != nil {
		return m.WarehouseCreditsFn(ctx, f, limit)
	}
	panic("unexpected call to MockWarehouseRepo.WarehouseCredits")
}

// QueryMetrics implements the interface method for testing.
func (m *MockWarehouseRepo) QueryMetrics(ctx context.Context, f entity.FilterState) ([]entity.DailyQueryMetrics, error) {
	if m.QueryMetricsFn != nil {
		return m.QueryMetricsFn(ctx, f)
	}
	panic("unexpected call to MockWarehouseRepo.QueryMetrics")
}

// StorageUsage implements the interface method for testing.
func (m *MockWarehouseRepo) StorageUsage(ctx context.Context, f entity.FilterState) ([]entity.DailyStorage, error) {
	if m.StorageUsageFn != nil {
		return m.StorageUsageFn(ctx, f)
	}
	panic("unexpected call to MockWarehouseRepo.StorageUsage")
}

// Statements implements the interface method for testing.
func (m *MockWarehouseRepo) Statements(f entity.FilterState) (map[string]string, error) {
	if m.StatementsFn != nil {
		return m.StatementsFn(f)
	}
	return map[string]string{}, nil
}

var _ repository.WarehouseRepository = (*MockWarehouseRepo)(nil)

// === Export Mocks ===

// MockExporter implements repository.ExportRepository and records each call as "<type>:<filename>".
type MockExporter struct {
	Err   error
	Calls []string
}

func (m *MockExporter) record(kind, filename, dir string) (string, error) {
	m.Calls = append(m.Calls, kind+":"+filename)
	if m.Err != nil {
		return "", m.Err
	}
	return fmt.Sprintf("%s/%s.%s", strings.TrimSuffix(dir, "/"), filename, kind), nil
}

// ExportToCSV implements the interface method for testing.
func (m *MockExporter) ExportToCSV(_ entity.DashboardReport, filename, dir string) (string, error) {
	return m.record("csv", filename, dir)
}

// ExportToJSON implements the interface method for testing.
func (m *MockExporter) ExportToJSON(_ entity.DashboardReport, filename, dir string) (string, error) {
	return m.record("json", filename, dir)
}

// ExportToPDF implements the interface method for testing.
func (m *MockExporter) ExportToPDF(_ entity.DashboardReport, filename, dir string) (string, error) {
	return m.record("pdf", filename, dir)
}

var _ repository.ExportRepository = (*MockExporter)(nil)

// MockReportStore implements repository.ReportStore for testing.
type MockReportStore struct {
	UploadFn func(ctx context.Context, localPath, destination string) (string, error)
	Uploaded []string
}

// Upload implements the interface method for testing.
func (m *MockReportStore) Upload(ctx context.Context, localPath, destination string) (string, error) {
	m.Uploaded = append(m.Uploaded, localPath)
	if m.UploadFn != nil {
		return m.UploadFn(ctx, localPath, destination)
	}
	return destination + "/" + localPath, nil
}

var _ repository.ReportStore = (*MockReportStore)(nil)

// === Console Mock ===

// MockConsole implements types.ConsoleInterface and keeps everything written to it.
type MockConsole struct {
	mu       sync.Mutex
	Out      strings.Builder
	Warnings []string
	Errors   []string
	Panels   map[string]string
	Bars     map[string][]types.SeriesPoint
	Metrics  [][]types.Metric
	Turns    []entity.ChatTurn
	// Progress guarda o total de cada barra criada; ProgressSteps soma os incrementos.
	Progress      []int
	ProgressSteps int
}

// NewMockConsole returns an empty MockConsole.
func NewMockConsole() *MockConsole {
	return &MockConsole{
		Panels: map[string]string{},
		Bars:   map[string][]types.SeriesPoint{},
	}
}

func (m *MockConsole) write(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Out.WriteString(s)
}

func (m *MockConsole) Print(a ...interface{})                 { m.write(fmt.Sprint(a...)) }
func (m *MockConsole) Printf(format string, a ...interface{}) { m.write(fmt.Sprintf(format, a...)) }
func (m *MockConsole) Println(a ...interface{})               { m.write(fmt.Sprintln(a...)) }

func (m *MockConsole) LogInfo(format string, a ...interface{}) {
	m.write("INFO: " + fmt.Sprintf(format, a...) + "\n")
}

func (m *MockConsole) LogSuccess(format string, a ...interface{}) {
	m.write("SUCCESS: " + fmt.Sprintf(format, a...) + "\n")
}

func (m *MockConsole) LogWarning(format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	m.mu.Lock()
	m.Warnings = append(m.Warnings, msg)
	m.mu.Unlock()
	m.write("WARNING: " + msg + "\n")
}

func (m *MockConsole) LogError(format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	m.mu.Lock()
	m.Errors = append(m.Errors, msg)
	m.mu.Unlock()
	m.write("ERROR: " + msg + "\n")
}

func (m *MockConsole) Status(string) types.StatusHandle { return nopHandle{} }
func (m *MockConsole) ProgressWithTotal(total int) types.ProgressHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Progress = append(m.Progress, total)
	return &mockProgress{console: m}
}
func (m *MockConsole) CreateTable() types.TableInterface { return &mockTable{console: m} }
func (m *MockConsole) DisplayMetrics(metrics []types.Metric) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Metrics = append(m.Metrics, metrics)
}

func (m *MockConsole) DisplayBars(title string, points []types.SeriesPoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Bars[title] = points
}

func (m *MockConsole) DisplayPanel(title, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Panels[title] = body
}

func (m *MockConsole) DisplayChatTurn(role, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Turns = append(m.Turns, entity.ChatTurn{Role: entity.Role(role), Content: content})
}

// Output returns everything printed so far.
func (m *MockConsole) Output() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Out.String()
}

var _ types.ConsoleInterface = (*MockConsole)(nil)

type nopHandle struct{}

func (nopHandle) Update(string) {}
func (nopHandle) Increment()    {}
func (nopHandle) Stop()         {}

type mockProgress struct {
	console *MockConsole
}

func (p *mockProgress) Increment() {
	p.console.mu.Lock()
	defer p.console.mu.Unlock()
	p.console.ProgressSteps++
}

func (p *mockProgress) Stop() {}

type mockTable struct {
	console *MockConsole
	rows    []string
}

func (t *mockTable) AddColumn(name string, _ ...interface{}) { t.rows = append(t.rows, "#"+name) }

func (t *mockTable) AddRow(cells ...interface{}) {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = fmt.Sprint(c)
	}
	t.rows = append(t.rows, strings.Join(parts, " | "))
}

func (t *mockTable) Render() string { return strings.Join(t.rows, "\n") }
