package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyCost carries the derived cost columns of a summary row.
type DailyCost struct {
	UsageDate time.Time       `json:"usage_date"`
	Credits   decimal.Decimal `json:"credits"`
	DailyCost decimal.Decimal `json:"daily_cost"`
	CumCost   decimal.Decimal `json:"cum_cost"`
}

// SummaryReport é o painel de resumo: custo diário, acumulado e totais.
type SummaryReport struct {
	Rows           []DailyCost     `json:"rows"`
	TotalCredits   decimal.Decimal `json:"total_credits"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	DiscountedCost decimal.Decimal `json:"discounted_cost"`
	Days           int             `json:"days"`
}

// WarehouseCost é uma linha do ranking com o custo estimado.
type WarehouseCost struct {
	WarehouseName string          `json:"warehouse_name"`
	Credits       decimal.Decimal `json:"credits"`
	EstCost       decimal.Decimal `json:"est_cost"`
}

// WarehouseReport é o painel de uso por warehouse.
type WarehouseReport struct {
	Rows         []WarehouseCost `json:"rows"`
	TotalCredits decimal.Decimal `json:"total_credits"`
	TotalCost    decimal.Decimal `json:"total_cost"`
}

// DailyPerformance adds ELAPSED_MIN to a query metrics row.
type DailyPerformance struct {
	UsageDate  time.Time `json:"usage_date"`
	Queries    int64     `json:"queries"`
	ElapsedMS  float64   `json:"elapsed_ms"`
	ElapsedMin float64   `json:"elapsed_min"`
}

// PerformanceReport é o painel de performance de consultas.
type PerformanceReport struct {
	Rows            []DailyPerformance `json:"rows"`
	TotalQueries    int64              `json:"total_queries"`
	TotalElapsedMin float64            `json:"total_elapsed_min"`
	AvgQuerySeconds float64            `json:"avg_query_seconds"`
}

// StorageReport é o painel de crescimento de armazenamento.
type StorageReport struct {
	Rows     []DailyStorage `json:"rows"`
	FirstGB  float64        `json:"first_gb"`
	LatestGB float64        `json:"latest_gb"`
	GrowthGB float64        `json:"growth_gb"`
}

// DashboardReport agrega os quatro painéis de dados de uma interação.
// Painéis sem dados ou com falha ficam nulos e a mensagem vai para Warnings/Errors.
type DashboardReport struct {
	Filter      FilterState        `json:"filter"`
	GeneratedAt time.Time          `json:"generated_at"`
	Summary     *SummaryReport     `json:"summary,omitempty"`
	Warehouses  *WarehouseReport   `json:"warehouses,omitempty"`
	Performance *PerformanceReport `json:"performance,omitempty"`
	Storage     *StorageReport     `json:"storage,omitempty"`
	Warnings    map[string]string  `json:"warnings,omitempty"`
	Errors      map[string]string  `json:"errors,omitempty"`
}

// Panel names used in DashboardReport.Warnings and DashboardReport.Errors.
const (
	PanelSummary     = "summary"
	PanelWarehouses  = "warehouses"
	PanelPerformance = "queries"
	PanelStorage     = "storage"
)
