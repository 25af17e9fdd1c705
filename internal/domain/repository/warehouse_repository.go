package repository

import (
	"context"

	"github.com/diillson/warehouse-finops-dashboard-go/internal/domain/entity"
)

// WarehouseRepository defines the queries the dashboard runs against the warehouse usage tables.
// Every method is one synchronous round trip; failures come back as *types.QueryExecutionError.
type WarehouseRepository interface {
	Warehouses(ctx context.Context) ([]string, error)

	DailyCredits(ctx context.Context, filter entity.FilterState) ([]entity.DailyCredits, error)
	WarehouseCredits(ctx context.Context, filter entity.FilterState, limit int) ([]entity.WarehouseCredits, error)
	QueryMetrics(ctx context.Context, filter entity.FilterState) ([]entity.DailyQueryMetrics, error)
	StorageUsage(ctx context.Context, filter entity.FilterState) ([]entity.DailyStorage, error)

	// Statements returns the SQL the methods above would run, with literals inlined.
	Statements(filter entity.FilterState) (map[string]string, error)
}
