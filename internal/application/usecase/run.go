package usecase

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pterm/pterm"
	"github.com/samber/lo"

	"github.com/diillson/warehouse-finops-dashboard-go/internal/application/chat"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/application/metrics"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/domain/entity"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/shared/types"
)

var panelTitles = map[string]string{
	entity.PanelSummary:     "Summary",
	entity.PanelWarehouses:  "Warehouse Usage",
	entity.PanelPerformance: "Query Performance",
	entity.PanelStorage:     "Storage",
}

// RunDashboard renderiza os painéis no terminal e exporta o relatório quando pedido.
func (uc *DashboardUseCase) RunDashboard(
	ctx context.Context,
	args *types.CLIArgs,
	f entity.FilterState,
	panels ...string,
) error {
	if args.ShowSQL {
		if err := uc.showStatements(f); err != nil {
			return err
		}
	}

	if len(panels) == 0 {
		panels = AllPanels
	}
	panels = lo.Uniq(panels)

	progress := uc.console.ProgressWithTotal(len(panels))
	report, err := uc.dashboard(ctx, f, progress.Increment, panels...)
	progress.Stop()
	if err != nil {
		return err
	}

	uc.console.Printf("\n%s\n", pterm.FgCyan.Sprintf("Period: %s | Warehouse: %s | $%s/credit | Discount %d%%",
		f.DateRange(), f.WarehouseLabel(), f.CostPerCredit.StringFixed(2), f.DiscountPct))

	for _, panel := range panels {
		uc.renderPanel(report, panel)
	}

	uc.exportReport(ctx, args, report)
	return nil
}

func (uc *DashboardUseCase) showStatements(f entity.FilterState) error {
	statements, err := uc.Statements(f)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(statements))
	for name := range statements {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		uc.console.DisplayPanel(name, statements[name])
	}
	return nil
}

func (uc *DashboardUseCase) renderPanel(report entity.DashboardReport, panel string) {
	uc.console.Printf("\n%s\n", pterm.DefaultSection.Sprint(panelTitles[panel]))

	if msg, ok := report.Errors[panel]; ok {
		uc.console.LogError("%s", msg)
		return
	}
	if msg, ok := report.Warnings[panel]; ok {
		uc.console.LogWarning("%s", msg)
		return
	}

	switch panel {
	case entity.PanelSummary:
		uc.renderSummary(*report.Summary)
	case entity.PanelWarehouses:
		uc.renderWarehouses(*report.Warehouses)
	case entity.PanelPerformance:
		uc.renderPerformance(*report.Performance)
	case entity.PanelStorage:
		uc.renderStorage(*report.Storage)
	}
}

func (uc *DashboardUseCase) renderSummary(s entity.SummaryReport) {
	uc.console.DisplayMetrics([]types.Metric{
		{Label: "Credits Used", Value: metrics.FormatAmount(s.TotalCredits)},
		{Label: "Total Cost ($)", Value: metrics.FormatAmount(s.TotalCost)},
		{Label: "Discounted Cost ($)", Value: metrics.FormatAmount(s.DiscountedCost)},
		{Label: "Days", Value: fmt.Sprint(s.Days)},
	})

	daily := make([]types.SeriesPoint, 0, len(s.Rows))
	cumulative := make([]types.SeriesPoint, 0, len(s.Rows))
	for _, row := range s.Rows {
		label := row.UsageDate.Format(entity.DateLayout)
		daily = append(daily, types.SeriesPoint{Label: label, Value: row.DailyCost.InexactFloat64()})
		cumulative = append(cumulative, types.SeriesPoint{Label: label, Value: row.CumCost.InexactFloat64()})
	}
	uc.console.DisplayBars("Daily Cost ($)", daily)
	uc.console.DisplayBars("Cumulative Cost ($)", cumulative)
}

func (uc *DashboardUseCase) renderWarehouses(w entity.WarehouseReport) {
	points := make([]types.SeriesPoint, 0, len(w.Rows))
	table := uc.console.CreateTable()
	table.AddColumn("Warehouse")
	table.AddColumn("Credits")
	table.AddColumn("Est. Cost ($)")
	for _, row := range w.Rows {
		points = append(points, types.SeriesPoint{Label: row.WarehouseName, Value: row.EstCost.InexactFloat64()})
		table.AddRow(row.WarehouseName, metrics.FormatAmount(row.Credits), metrics.FormatAmount(row.EstCost))
	}
	uc.console.DisplayBars("Cost by Warehouse", points)
	uc.console.Println(table.Render())
}

func (uc *DashboardUseCase) renderPerformance(p entity.PerformanceReport) {
	avg := "0"
	if p.TotalQueries > 0 {
		avg = metrics.FormatFloat(p.AvgQuerySeconds)
	}
	uc.console.DisplayMetrics([]types.Metric{
		{Label: "Total Queries", Value: metrics.FormatCount(p.TotalQueries)},
		{Label: "Elapsed Time (Min)", Value: metrics.FormatFloat(p.TotalElapsedMin)},
		{Label: "Avg Query Time (Sec)", Value: avg},
	})

	queries := make([]types.SeriesPoint, 0, len(p.Rows))
	elapsed := make([]types.SeriesPoint, 0, len(p.Rows))
	for _, row := range p.Rows {
		label := row.UsageDate.Format(entity.DateLayout)
		queries = append(queries, types.SeriesPoint{Label: label, Value: float64(row.Queries)})
		elapsed = append(elapsed, types.SeriesPoint{Label: label, Value: row.ElapsedMin})
	}
	uc.console.DisplayBars("Queries per Day", queries)
	uc.console.DisplayBars("Elapsed Time per Day (min)", elapsed)
}

func (uc *DashboardUseCase) renderStorage(s entity.StorageReport) {
	uc.console.DisplayMetrics([]types.Metric{
		{Label: "Latest (GB)", Value: metrics.FormatFloat(s.LatestGB)},
		{Label: "Growth (GB)", Value: metrics.FormatFloat(s.GrowthGB)},
	})
	points := make([]types.SeriesPoint, 0, len(s.Rows))
	for _, row := range s.Rows {
		points = append(points, types.SeriesPoint{Label: row.UsageDate.Format(entity.DateLayout), Value: row.StorageGB})
	}
	uc.console.DisplayBars("Storage Growth (GB)", points)
}

// exportReport grava o relatório nos formatos pedidos e, com --upload, envia cada arquivo.
// Falhas são registradas no console e não interrompem os demais formatos.
func (uc *DashboardUseCase) exportReport(ctx context.Context, args *types.CLIArgs, report entity.DashboardReport) []string {
	if args.ReportName == "" || len(args.ReportType) == 0 {
		return nil
	}

	var paths []string
	for _, reportType := range args.ReportType {
		var path string
		var err error
		switch strings.ToLower(reportType) {
		case "csv":
			path, err = uc.exportRepo.ExportToCSV(report, args.ReportName, args.Dir)
		case "json":
			path, err = uc.exportRepo.ExportToJSON(report, args.ReportName, args.Dir)
		case "pdf":
			path, err = uc.exportRepo.ExportToPDF(report, args.ReportName, args.Dir)
		default:
			uc.console.LogWarning("Unsupported report type: %s", reportType)
			continue
		}
		if err != nil {
			uc.console.LogError("Failed to export to %s: %s", strings.ToUpper(reportType), err)
			continue
		}
		uc.console.LogSuccess("Successfully exported to %s: %s", strings.ToUpper(reportType), path)
		paths = append(paths, path)
	}

	if args.Upload == "" {
		return paths
	}
	if uc.reportStore == nil {
		uc.console.LogWarning("Upload destination %s ignored: no report store configured", args.Upload)
		return paths
	}
	for _, path := range paths {
		uri, err := uc.reportStore.Upload(ctx, path, args.Upload)
		if err != nil {
			uc.console.LogError("Failed to upload %s: %s", path, err)
			continue
		}
		uc.console.LogSuccess("Uploaded report to %s", uri)
	}
	return paths
}

// RunInsights gera e exibe o relatório executivo. Falhas do serviço de
// completion aparecem no lugar do texto e não encerram o comando com erro.
func (uc *DashboardUseCase) RunInsights(ctx context.Context, f entity.FilterState) error {
	status := uc.console.Status("Cortex AI analyzing usage...")
	text, err := uc.Insights(ctx, f)
	status.Stop()

	var completionErr *types.CompletionError
	switch {
	case errors.As(err, &completionErr):
		uc.console.LogError("Cortex error: %s", completionErr.Err)
		return nil
	case err != nil:
		return err
	}

	uc.console.DisplayPanel("Cortex AI Insights", text)
	return nil
}

// RunChat lê perguntas de in, uma por linha, até EOF ou "exit"/"quit".
// O histórico vive apenas durante a execução.
func (uc *DashboardUseCase) RunChat(ctx context.Context, f entity.FilterState, in io.Reader) error {
	if err := f.Validate(); err != nil {
		return err
	}

	history := chat.NewHistory()
	defer history.Clear()

	uc.console.LogInfo("Ask anything about usage (type 'exit' to quit).")
	scanner := bufio.NewScanner(in)
	for {
		uc.console.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		uc.console.DisplayChatTurn(string(entity.RoleUser), question)
		status := uc.console.Status("Thinking...")
		answer, err := uc.Ask(ctx, history, f, question)
		status.Stop()

		var completionErr *types.CompletionError
		switch {
		case errors.As(err, &completionErr):
			uc.console.LogError("Cortex error: %s", completionErr.Err)
		case err != nil:
			uc.console.LogError("%s", err)
		default:
			uc.console.DisplayChatTurn(string(entity.RoleAssistant), answer)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading chat input: %w", err)
	}
	return nil
}
