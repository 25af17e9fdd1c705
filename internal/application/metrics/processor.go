// Package metrics deriva as colunas secundárias (custo, acumulado, médias)
// a partir das tabelas retornadas pelo warehouse. Nada aqui é persistido.
package metrics

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/diillson/warehouse-finops-dashboard-go/internal/domain/entity"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/shared/types"
)

const msPerMinute = 60000.0

// Summarize computes DAILY_COST, CUM_COST and the period totals.
// CUM_COST follows the order of rows as returned; rows are never re-sorted.
func Summarize(rows []entity.DailyCredits, filter entity.FilterState) (entity.SummaryReport, error) {
	if len(rows) == 0 {
		return entity.SummaryReport{}, types.ErrNoData
	}

	report := entity.SummaryReport{
		Rows: make([]entity.DailyCost, 0, len(rows)),
		Days: len(rows),
	}

	cumCost := decimal.Zero
	for _, row := range rows {
		dailyCost := row.Credits.Mul(filter.CostPerCredit)
		cumCost = cumCost.Add(dailyCost)
		report.Rows = append(report.Rows, entity.DailyCost{
			UsageDate: row.UsageDate,
			Credits:   row.Credits,
			DailyCost: dailyCost,
			CumCost:   cumCost,
		})
	}

	report.TotalCredits = sumCredits(rows, func(r entity.DailyCredits) decimal.Decimal { return r.Credits })
	report.TotalCost = report.TotalCredits.Mul(filter.CostPerCredit)
	report.DiscountedCost = report.TotalCost.Mul(filter.DiscountMultiplier())

	return report, nil
}

// RankWarehouses calcula EST_COST por warehouse mantendo a ordem do ranking.
func RankWarehouses(rows []entity.WarehouseCredits, filter entity.FilterState) (entity.WarehouseReport, error) {
	if len(rows) == 0 {
		return entity.WarehouseReport{}, types.ErrNoData
	}

	report := entity.WarehouseReport{
		Rows: lo.Map(rows, func(row entity.WarehouseCredits, _ int) entity.WarehouseCost {
			return entity.WarehouseCost{
				WarehouseName: row.WarehouseName,
				Credits:       row.Credits,
				EstCost:       row.Credits.Mul(filter.CostPerCredit),
			}
		}),
	}
	report.TotalCredits = sumCredits(rows, func(r entity.WarehouseCredits) decimal.Decimal { return r.Credits })
	report.TotalCost = report.TotalCredits.Mul(filter.CostPerCredit)

	return report, nil
}

// QueryPerformance derives ELAPSED_MIN and the average query time.
// AvgQuerySeconds is 0 when there were no queries.
func QueryPerformance(rows []entity.DailyQueryMetrics) (entity.PerformanceReport, error) {
	if len(rows) == 0 {
		return entity.PerformanceReport{}, types.ErrNoData
	}

	report := entity.PerformanceReport{
		Rows: make([]entity.DailyPerformance, 0, len(rows)),
	}
	for _, row := range rows {
		elapsedMin := row.ElapsedMS / msPerMinute
		report.Rows = append(report.Rows, entity.DailyPerformance{
			UsageDate:  row.UsageDate,
			Queries:    row.Queries,
			ElapsedMS:  row.ElapsedMS,
			ElapsedMin: elapsedMin,
		})
		report.TotalQueries += row.Queries
		report.TotalElapsedMin += elapsedMin
	}

	report.AvgQuerySeconds = AverageQuerySeconds(report.TotalElapsedMin, report.TotalQueries)
	return report, nil
}

// AverageQuerySeconds retorna totalElapsedMin*60/totalQueries, ou 0 sem consultas.
func AverageQuerySeconds(totalElapsedMin float64, totalQueries int64) float64 {
	if totalQueries <= 0 {
		return 0
	}
	return totalElapsedMin * 60 / float64(totalQueries)
}

// StorageGrowth resume a série de armazenamento: primeiro dia, último dia e crescimento.
func StorageGrowth(rows []entity.DailyStorage) (entity.StorageReport, error) {
	if len(rows) == 0 {
		return entity.StorageReport{}, types.ErrNoData
	}

	first := rows[0].StorageGB
	latest := rows[len(rows)-1].StorageGB
	return entity.StorageReport{
		Rows:     rows,
		FirstGB:  first,
		LatestGB: latest,
		GrowthGB: latest - first,
	}, nil
}

func sumCredits[T any](rows []T, credits func(T) decimal.Decimal) decimal.Decimal {
	return lo.Reduce(rows, func(acc decimal.Decimal, row T, _ int) decimal.Decimal {
		return acc.Add(credits(row))
	}, decimal.Zero)
}
