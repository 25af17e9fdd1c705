package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/diillson/warehouse-finops-dashboard-go/internal/application/chat"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/application/metrics"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/application/prompt"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/domain/entity"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/domain/repository"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/shared/types"
)

// NoDataMessage é o aviso exibido quando um painel não tem linhas no período.
const NoDataMessage = "No data available."

// DashboardUseCase handles the main dashboard functionality.
// Each method is one interaction: build the query, run it, derive the metrics.
type DashboardUseCase struct {
	warehouseRepo  repository.WarehouseRepository
	completionRepo repository.CompletionRepository
	exportRepo     repository.ExportRepository
	reportStore    repository.ReportStore
	console        types.ConsoleInterface
	model          string
	now            func() time.Time
}

// NewDashboardUseCase creates a new dashboard use case. reportStore may be nil
// when uploads are not configured.
func NewDashboardUseCase(
	warehouseRepo repository.WarehouseRepository,
	completionRepo repository.CompletionRepository,
	exportRepo repository.ExportRepository,
	reportStore repository.ReportStore,
	console types.ConsoleInterface,
	model string,
) *DashboardUseCase {
	return &DashboardUseCase{
		warehouseRepo:  warehouseRepo,
		completionRepo: completionRepo,
		exportRepo:     exportRepo,
		reportStore:    reportStore,
		console:        console,
		model:          model,
		now:            time.Now,
	}
}

// Model returns the completion model identifier.
func (uc *DashboardUseCase) Model() string {
	return uc.model
}

// ListWarehouses retorna as opções do seletor: "(All)" seguido dos nomes distintos.
func (uc *DashboardUseCase) ListWarehouses(ctx context.Context) ([]string, error) {
	names, err := uc.warehouseRepo.Warehouses(ctx)
	if err != nil {
		return nil, err
	}
	names = lo.Without(names, entity.AllWarehouses, "")
	return append([]string{entity.AllWarehouses}, names...), nil
}

// Summary computes the summary panel.
func (uc *DashboardUseCase) Summary(ctx context.Context, f entity.FilterState) (entity.SummaryReport, error) {
	if err := f.Validate(); err != nil {
		return entity.SummaryReport{}, err
	}
	rows, err := uc.warehouseRepo.DailyCredits(ctx, f)
	if err != nil {
		return entity.SummaryReport{}, err
	}
	return metrics.Summarize(rows, f)
}

// WarehouseUsage computes the per-warehouse ranking. The warehouse filter does not apply here.
func (uc *DashboardUseCase) WarehouseUsage(ctx context.Context, f entity.FilterState) (entity.WarehouseReport, error) {
	if err := f.Validate(); err != nil {
		return entity.WarehouseReport{}, err
	}
	rows, err := uc.warehouseRepo.WarehouseCredits(ctx, f, 0)
	if err != nil {
		return entity.WarehouseReport{}, err
	}
	return metrics.RankWarehouses(rows, f)
}

// QueryPerformance computes the query performance panel.
func (uc *DashboardUseCase) QueryPerformance(ctx context.Context, f entity.FilterState) (entity.PerformanceReport, error) {
	if err := f.Validate(); err != nil {
		return entity.PerformanceReport{}, err
	}
	rows, err := uc.warehouseRepo.QueryMetrics(ctx, f)
	if err != nil {
		return entity.PerformanceReport{}, err
	}
	return metrics.QueryPerformance(rows)
}

// Storage computes the storage panel.
func (uc *DashboardUseCase) Storage(ctx context.Context, f entity.FilterState) (entity.StorageReport, error) {
	if err := f.Validate(); err != nil {
		return entity.StorageReport{}, err
	}
	rows, err := uc.warehouseRepo.StorageUsage(ctx, f)
	if err != nil {
		return entity.StorageReport{}, err
	}
	return metrics.StorageGrowth(rows)
}

// Dashboard monta os painéis pedidos (todos quando panels está vazio).
// Um painel sem dados vira aviso e um painel com falha vira erro; os demais
// continuam sendo calculados. Só um filtro inválido aborta a chamada.
func (uc *DashboardUseCase) Dashboard(ctx context.Context, f entity.FilterState, panels ...string) (entity.DashboardReport, error) {
	return uc.dashboard(ctx, f, nil, panels...)
}

// dashboard chama onPanel depois de cada painel carregado, com sucesso ou não.
func (uc *DashboardUseCase) dashboard(
	ctx context.Context,
	f entity.FilterState,
	onPanel func(),
	panels ...string,
) (entity.DashboardReport, error) {
	if err := f.Validate(); err != nil {
		return entity.DashboardReport{}, err
	}
	if len(panels) == 0 {
		panels = AllPanels
	}

	report := entity.DashboardReport{
		Filter:      f,
		GeneratedAt: uc.now().UTC(),
		Warnings:    map[string]string{},
		Errors:      map[string]string{},
	}

	record := func(panel string, err error) bool {
		switch {
		case err == nil:
			return true
		case errors.Is(err, types.ErrNoData):
			report.Warnings[panel] = NoDataMessage
		default:
			report.Errors[panel] = err.Error()
		}
		return false
	}

	for _, panel := range lo.Uniq(panels) {
		switch panel {
		case entity.PanelSummary:
			if r, err := uc.Summary(ctx, f); record(panel, err) {
				report.Summary = &r
			}
		case entity.PanelWarehouses:
			if r, err := uc.WarehouseUsage(ctx, f); record(panel, err) {
				report.Warehouses = &r
			}
		case entity.PanelPerformance:
			if r, err := uc.QueryPerformance(ctx, f); record(panel, err) {
				report.Performance = &r
			}
		case entity.PanelStorage:
			if r, err := uc.Storage(ctx, f); record(panel, err) {
				report.Storage = &r
			}
		default:
			return entity.DashboardReport{}, fmt.Errorf("unknown panel: %s", panel)
		}
		if onPanel != nil {
			onPanel()
		}
	}
	return report, nil
}

// AllPanels lista os painéis de dados na ordem de exibição.
var AllPanels = []string{entity.PanelSummary, entity.PanelWarehouses, entity.PanelPerformance, entity.PanelStorage}

// Statements retorna o SQL de cada painel com os literais embutidos, para exibição.
func (uc *DashboardUseCase) Statements(f entity.FilterState) (map[string]string, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return uc.warehouseRepo.Statements(f)
}

// promptContext busca o top 5 de warehouses usado pelos prompts.
func (uc *DashboardUseCase) promptContext(ctx context.Context, f entity.FilterState) (prompt.Context, error) {
	top, err := uc.warehouseRepo.WarehouseCredits(ctx, f, prompt.TopWarehouseLimit)
	if err != nil {
		return prompt.Context{}, err
	}
	return prompt.Context{Filter: f, TopWarehouses: top}, nil
}

// Insights gera o relatório executivo. Uma falha do serviço volta como *types.CompletionError.
func (uc *DashboardUseCase) Insights(ctx context.Context, f entity.FilterState) (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	pc, err := uc.promptContext(ctx, f)
	if err != nil {
		return "", err
	}
	return uc.completionRepo.Complete(ctx, uc.model, prompt.Insights(pc))
}

// Ask runs one chat turn against history. On failure history keeps the
// user turn and no assistant turn.
func (uc *DashboardUseCase) Ask(ctx context.Context, history *chat.History, f entity.FilterState, question string) (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	return history.Exchange(ctx, question, func(ctx context.Context, q string) (string, error) {
		pc, err := uc.promptContext(ctx, f)
		if err != nil {
			return "", err
		}
		return uc.completionRepo.Complete(ctx, uc.model, prompt.Chat(pc, q))
	})
}
