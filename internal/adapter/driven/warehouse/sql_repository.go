package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/diillson/warehouse-finops-dashboard-go/internal/application/query"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/domain/entity"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/domain/repository"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/shared/types"
)

// Nome do driver na configuração -> nome registrado no database/sql.
var driverNames = map[string]string{
	"duckdb":     "duckdb",
	"sqlite":     "sqlite3",
	"sqlite3":    "sqlite3",
	"clickhouse": "clickhouse",
}

// Querier é o subconjunto de *sql.DB usado pelos adaptadores.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open abre a conexão com o warehouse configurado e verifica que ele responde.
func Open(ctx context.Context, cfg types.WarehouseConfig) (*sql.DB, error) {
	driver, ok := driverNames[strings.ToLower(cfg.Driver)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrUnsupportedDriver, cfg.Driver)
	}

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s warehouse: %w", cfg.Driver, err)
	}
	if driver == "sqlite3" {
		// cada conexão sqlite em memória seria um banco diferente
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &types.QueryExecutionError{Query: "ping", Err: err}
	}
	return db, nil
}

// SQLRepository implementa o WarehouseRepository sobre database/sql.
type SQLRepository struct {
	db      Querier
	builder *query.Builder
}

// NewSQLRepository cria o repositório para as tabelas em cfg.Database.cfg.Schema.
func NewSQLRepository(db Querier, cfg types.WarehouseConfig) (repository.WarehouseRepository, error) {
	builder, err := query.NewBuilder(cfg.Database, cfg.Schema)
	if err != nil {
		return nil, err
	}
	return &SQLRepository{db: db, builder: builder}, nil
}

// Warehouses lista os nomes distintos de warehouse.
func (r *SQLRepository) Warehouses(ctx context.Context) ([]string, error) {
	var names []string
	err := r.run(ctx, r.builder.DistinctWarehouses(), func(rows *sql.Rows) error {
		var name sql.NullString
		if err := rows.Scan(&name); err != nil {
			return err
		}
		if name.Valid {
			names = append(names, name.String)
		}
		return nil
	})
	return names, err
}

// DailyCredits busca os créditos por dia.
func (r *SQLRepository) DailyCredits(ctx context.Context, filter entity.FilterState) ([]entity.DailyCredits, error) {
	var out []entity.DailyCredits
	err := r.run(ctx, r.builder.DailyCredits(filter), func(rows *sql.Rows) error {
		var rawDate any
		var credits sql.NullFloat64
		if err := rows.Scan(&rawDate, &credits); err != nil {
			return err
		}
		usageDate, err := scanDate(rawDate)
		if err != nil {
			return err
		}
		out = append(out, entity.DailyCredits{
			UsageDate: usageDate,
			Credits:   decimal.NewFromFloat(credits.Float64),
		})
		return nil
	})
	return out, err
}

// WarehouseCredits busca o ranking de créditos por warehouse.
func (r *SQLRepository) WarehouseCredits(ctx context.Context, filter entity.FilterState, limit int) ([]entity.WarehouseCredits, error) {
	var out []entity.WarehouseCredits
	err := r.run(ctx, r.builder.WarehouseCredits(filter, limit), func(rows *sql.Rows) error {
		var name sql.NullString
		var credits sql.NullFloat64
		if err := rows.Scan(&name, &credits); err != nil {
			return err
		}
		out = append(out, entity.WarehouseCredits{
			WarehouseName: name.String,
			Credits:       decimal.NewFromFloat(credits.Float64),
		})
		return nil
	})
	return out, err
}

// QueryMetrics busca quantidade e tempo de consultas por dia.
func (r *SQLRepository) QueryMetrics(ctx context.Context, filter entity.FilterState) ([]entity.DailyQueryMetrics, error) {
	var out []entity.DailyQueryMetrics
	err := r.run(ctx, r.builder.QueryPerformance(filter), func(rows *sql.Rows) error {
		var rawDate any
		var queries sql.NullInt64
		var elapsed sql.NullFloat64
		if err := rows.Scan(&rawDate, &queries, &elapsed); err != nil {
			return err
		}
		usageDate, err := scanDate(rawDate)
		if err != nil {
			return err
		}
		out = append(out, entity.DailyQueryMetrics{
			UsageDate: usageDate,
			Queries:   queries.Int64,
			ElapsedMS: elapsed.Float64,
		})
		return nil
	})
	return out, err
}

// StorageUsage busca o armazenamento estimado por dia.
func (r *SQLRepository) StorageUsage(ctx context.Context, filter entity.FilterState) ([]entity.DailyStorage, error) {
	var out []entity.DailyStorage
	err := r.run(ctx, r.builder.StorageGrowth(filter), func(rows *sql.Rows) error {
		var rawDate any
		var storage sql.NullFloat64
		if err := rows.Scan(&rawDate, &storage); err != nil {
			return err
		}
		usageDate, err := scanDate(rawDate)
		if err != nil {
			return err
		}
		out = append(out, entity.DailyStorage{UsageDate: usageDate, StorageGB: storage.Float64})
		return nil
	})
	return out, err
}

// Statements returns every dashboard query for filter with literals inlined.
func (r *SQLRepository) Statements(filter entity.FilterState) (map[string]string, error) {
	statements := map[string]string{}
	for _, q := range []query.Query{
		r.builder.DistinctWarehouses(),
		r.builder.DailyCredits(filter),
		r.builder.WarehouseCredits(filter, 0),
		r.builder.QueryPerformance(filter),
		r.builder.StorageGrowth(filter),
	} {
		statements[q.Name] = q.Inline()
	}
	return statements, nil
}

// run executa q e chama scan para cada linha. Qualquer falha vira QueryExecutionError.
func (r *SQLRepository) run(ctx context.Context, q query.Query, scan func(*sql.Rows) error) error {
	rows, err := r.db.QueryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return &types.QueryExecutionError{Query: q.Name, Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return &types.QueryExecutionError{Query: q.Name, Err: err}
		}
	}
	if err := rows.Err(); err != nil {
		return &types.QueryExecutionError{Query: q.Name, Err: err}
	}
	return nil
}

// scanDate normaliza o tipo de data de cada driver (time.Time, texto ou bytes).
func scanDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		y, m, day := d.Date()
		return time.Date(y, m, day, 0, 0, 0, 0, time.UTC), nil
	case string:
		return parseDatePrefix(d)
	case []byte:
		return parseDatePrefix(string(d))
	default:
		return time.Time{}, fmt.Errorf("unexpected %s type %T", query.ColUsageDate, v)
	}
}

func parseDatePrefix(s string) (time.Time, error) {
	if len(s) > len(entity.DateLayout) {
		s = s[:len(entity.DateLayout)]
	}
	return entity.ParseDate(s)
}
