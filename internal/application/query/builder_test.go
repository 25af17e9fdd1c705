package query_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/warehouse-finops-dashboard-go/internal/application/query"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/domain/entity"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/shared/types"
)

func day(s string) time.Time {
	t, err := time.Parse(entity.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func filter(start, end, warehouse string) entity.FilterState {
	return entity.FilterState{
		StartDate:     day(start),
		EndDate:       day(end),
		Warehouse:     warehouse,
		CostPerCredit: decimal.NewFromInt(3),
	}
}

func openDuckDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDimFilterAllIsAlwaysTrue(t *testing.T) {
	p := query.DimFilter(query.ColWarehouseName, entity.AllWarehouses)
	assert.Equal(t, "1=1", p.SQL)
	assert.Empty(t, p.Args)

	p = query.DimFilter(query.ColWarehouseName, "")
	assert.Equal(t, "1=1", p.SQL)
}

func TestDimFilterBindsValue(t *testing.T) {
	p := query.DimFilter(query.ColWarehouseName, "O'Brien_WH")
	assert.Equal(t, "WAREHOUSE_NAME = ?", p.SQL)
	assert.Equal(t, []any{"O'Brien_WH"}, p.Args)
	assert.Equal(t, "WAREHOUSE_NAME = 'O''Brien_WH'", p.Inline())
}

func TestQuoteLiteralParsesAsSingleLiteral(t *testing.T) {
	db := openDuckDB(t)

	values := []string{
		"plain",
		"O'Brien",
		"''",
		"x' OR '1'='1",
		"trailing'",
		`back\slash'`,
		"semi'; DROP TABLE t; --",
	}
	for _, v := range values {
		t.Run(v, func(t *testing.T) {
			var got string
			err := db.QueryRowContext(context.Background(), "SELECT "+query.QuoteLiteral(v)).Scan(&got)
			require.NoError(t, err)
			assert.Equal(t, v, got)
		})
	}
}

func TestPredicateInlineSkipsQuotedQuestionMarks(t *testing.T) {
	p := query.Predicate{SQL: "a = '?' AND b = ?", Args: []any{"x"}}
	assert.Equal(t, "a = '?' AND b = 'x'", p.Inline())
}

func TestAndKeepsArgumentOrder(t *testing.T) {
	p := query.And(
		query.DateBetween(query.ColUsageDate, day("2024-01-01"), day("2024-01-31")),
		query.DimFilter(query.ColWarehouseName, "WH"),
	)
	assert.Equal(t, "USAGE_DATE BETWEEN ? AND ?\n  AND WAREHOUSE_NAME = ?", p.SQL)
	assert.Equal(t, []any{"2024-01-01", "2024-01-31", "WH"}, p.Args)
}

func TestNewBuilderQualifiesRelations(t *testing.T) {
	b, err := query.NewBuilder("FINOPS", "SNOWFLAKE_USAGE")
	require.NoError(t, err)

	q := b.DailyCredits(filter("2024-01-01", "2024-01-03", entity.AllWarehouses))
	assert.Contains(t, q.SQL, "FROM FINOPS.SNOWFLAKE_USAGE.DAILY_WAREHOUSE_METERING")
	assert.Equal(t, query.NameDailyCredits, q.Name)

	b, err = query.NewBuilder("", "")
	require.NoError(t, err)
	q = b.StorageGrowth(filter("2024-01-01", "2024-01-03", entity.AllWarehouses))
	assert.Contains(t, q.SQL, "FROM DAILY_STORAGE\n")
}

func TestNewBuilderRejectsUnsafeIdentifiers(t *testing.T) {
	_, err := query.NewBuilder("FINOPS; DROP", "X")
	assert.ErrorIs(t, err, types.ErrInvalidIdentifier)

	_, err = query.NewBuilder("FINOPS", "x.y")
	assert.ErrorIs(t, err, types.ErrInvalidIdentifier)
}

func TestWarehouseFilterOnlyWhenSelected(t *testing.T) {
	b, err := query.NewBuilder("", "")
	require.NoError(t, err)

	all := b.DailyCredits(filter("2024-01-01", "2024-01-03", entity.AllWarehouses))
	assert.Contains(t, all.SQL, "AND 1=1")
	assert.Len(t, all.Args, 2)

	one := b.QueryPerformance(filter("2024-01-01", "2024-01-03", "ETL_WH"))
	assert.Contains(t, one.SQL, "AND WAREHOUSE_NAME = ?")
	assert.Equal(t, []any{"2024-01-01", "2024-01-03", "ETL_WH"}, one.Args)

	// o ranking e o armazenamento nunca filtram por warehouse
	rank := b.WarehouseCredits(filter("2024-01-01", "2024-01-03", "ETL_WH"), 0)
	assert.NotContains(t, rank.SQL, "WAREHOUSE_NAME = ?")
	assert.NotContains(t, rank.SQL, "LIMIT")
}

func TestWarehouseCreditsLimit(t *testing.T) {
	b, err := query.NewBuilder("", "")
	require.NoError(t, err)

	q := b.WarehouseCredits(filter("2024-01-01", "2024-01-03", entity.AllWarehouses), 5)
	assert.Contains(t, q.SQL, "ORDER BY CREDITS DESC, WAREHOUSE_NAME\nLIMIT 5")
}

func TestQueryInlineRendersLiterals(t *testing.T) {
	b, err := query.NewBuilder("", "")
	require.NoError(t, err)

	q := b.DailyCredits(filter("2024-01-01", "2024-01-03", "O'Brien"))
	inline := q.Inline()
	assert.Contains(t, inline, "USAGE_DATE BETWEEN '2024-01-01' AND '2024-01-03'")
	assert.Contains(t, inline, "WAREHOUSE_NAME = 'O''Brien'")
	assert.NotContains(t, inline, "?")
}

func TestDateBetweenIsInclusive(t *testing.T) {
	db := openDuckDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `
		CREATE TABLE DAILY_WAREHOUSE_METERING (
			USAGE_DATE DATE,
			WAREHOUSE_NAME VARCHAR,
			CREDITS_USED_TOTAL DOUBLE
		);
		INSERT INTO DAILY_WAREHOUSE_METERING VALUES
			('2024-01-09', 'WH', 1),
			('2024-01-10', 'WH', 2),
			('2024-01-15', 'WH', 3),
			('2024-01-20', 'WH', 4),
			('2024-01-21', 'WH', 5);
	`)
	require.NoError(t, err)

	b, err := query.NewBuilder("", "")
	require.NoError(t, err)

	for _, mode := range []string{"bound", "inline"} {
		t.Run(mode, func(t *testing.T) {
			q := b.DailyCredits(filter("2024-01-10", "2024-01-20", entity.AllWarehouses))
			sqlText, args := q.SQL, q.Args
			if mode == "inline" {
				sqlText, args = q.Inline(), nil
			}

			rows, err := db.QueryContext(ctx, sqlText, args...)
			require.NoError(t, err)
			defer rows.Close()

			var dates []string
			for rows.Next() {
				var d time.Time
				var credits float64
				require.NoError(t, rows.Scan(&d, &credits))
				dates = append(dates, d.Format(entity.DateLayout))
			}
			require.NoError(t, rows.Err())
			assert.Equal(t, []string{"2024-01-10", "2024-01-15", "2024-01-20"}, dates)
		})
	}
}

func TestValidateQualifiedName(t *testing.T) {
	assert.NoError(t, query.ValidateQualifiedName("SNOWFLAKE.CORTEX.COMPLETE"))
	assert.NoError(t, query.ValidateQualifiedName("complete"))
	assert.ErrorIs(t, query.ValidateQualifiedName("SNOWFLAKE..COMPLETE"), types.ErrInvalidIdentifier)
	assert.ErrorIs(t, query.ValidateQualifiedName("f(); --"), types.ErrInvalidIdentifier)
	assert.ErrorIs(t, query.ValidateQualifiedName(""), types.ErrInvalidIdentifier)
}
