// Package testutil provides a seeded in-memory warehouse and mock ports
// shared by tests across the codebase.
package testutil

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/stretchr/testify/require"
)

// UsageSchema creates the three usage relations without a database/schema prefix.
const UsageSchema = `
CREATE TABLE DAILY_WAREHOUSE_METERING (
	USAGE_DATE DATE,
	WAREHOUSE_NAME VARCHAR,
	CREDITS_USED_TOTAL DOUBLE
);
CREATE TABLE DAILY_QUERY_METRICS (
	USAGE_DATE DATE,
	WAREHOUSE_NAME VARCHAR,
	QUERY_COUNT BIGINT,
	TOTAL_ELAPSED_MS BIGINT
);
CREATE TABLE DAILY_STORAGE (
	USAGE_DATE DATE,
	EST_STORAGE_GB DOUBLE
);
`

// UsageData seeds the relations. For 2024-01-01..2024-01-03 across all
// warehouses the daily credits are 10, 5 and 0; the ranking is
// ETL_WH 12, BI_WH 3, O'Brien_WH 0. Rows on 2023-12-31 and 2024-01-04
// sit one day outside that window.
const UsageData = `
INSERT INTO DAILY_WAREHOUSE_METERING VALUES
	('2023-12-31', 'ETL_WH', 100),
	('2024-01-01', 'ETL_WH', 7),
	('2024-01-01', 'BI_WH', 3),
	('2024-01-02', 'ETL_WH', 5),
	('2024-01-03', 'O''Brien_WH', 0),
	('2024-01-03', NULL, 0),
	('2024-01-04', 'BI_WH', 50);
INSERT INTO DAILY_QUERY_METRICS VALUES
	('2024-01-01', 'ETL_WH', 100, 120000),
	('2024-01-01', 'BI_WH', 20, 60000),
	('2024-01-02', 'ETL_WH', 0, 0),
	('2024-01-04', 'ETL_WH', 999, 999999);
INSERT INTO DAILY_STORAGE VALUES
	('2024-01-01', 60),
	('2024-01-01', 40),
	('2024-01-02', 110),
	('2024-01-03', 125);
`

// OpenDuckDB opens an empty in-memory DuckDB closed at test cleanup.
func OpenDuckDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// OpenSeededDuckDB opens an in-memory DuckDB with UsageSchema and UsageData loaded.
func OpenSeededDuckDB(t *testing.T) *sql.DB {
	t.Helper()

	db := OpenDuckDB(t)
	ctx := context.Background()
	_, err := db.ExecContext(ctx, UsageSchema)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, UsageData)
	require.NoError(t, err)
	return db
}
