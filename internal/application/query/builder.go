package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/diillson/warehouse-finops-dashboard-go/internal/domain/entity"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/shared/types"
)

// Colunas das tabelas de uso.
const (
	ColUsageDate      = "USAGE_DATE"
	ColWarehouseName  = "WAREHOUSE_NAME"
	ColCreditsUsed    = "CREDITS_USED_TOTAL"
	ColQueryCount     = "QUERY_COUNT"
	ColTotalElapsedMS = "TOTAL_ELAPSED_MS"
	ColEstStorageGB   = "EST_STORAGE_GB"
)

// Tabelas de uso, relativas a database.schema.
const (
	TableWarehouseMetering = "DAILY_WAREHOUSE_METERING"
	TableQueryMetrics      = "DAILY_QUERY_METRICS"
	TableStorage           = "DAILY_STORAGE"
)

// Nomes das consultas, usados em mensagens de erro e no --show-sql.
const (
	NameWarehouses       = "warehouses"
	NameDailyCredits     = "daily_credits"
	NameWarehouseCredits = "warehouse_credits"
	NameQueryPerformance = "query_performance"
	NameStorageGrowth    = "storage_growth"
)

var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// Query is a parameter-bound statement. Args bind to the "?" placeholders in order.
type Query struct {
	Name string
	SQL  string
	Args []any
}

// Inline renders the query with its arguments as SQL literals. Only for display.
func (q Query) Inline() string {
	return Predicate{SQL: q.SQL, Args: q.Args}.Inline()
}

// Predicate é um fragmento de WHERE com seus parâmetros.
type Predicate struct {
	SQL  string
	Args []any
}

// Inline substitui cada "?" fora de literais pelo argumento correspondente.
func (p Predicate) Inline() string {
	var b strings.Builder
	argIdx := 0
	inQuote := false
	for _, r := range p.SQL {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote && argIdx < len(p.Args):
			b.WriteString(literal(p.Args[argIdx]))
			argIdx++
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// QuoteLiteral returns value as a single-quoted SQL string literal, doubling embedded quotes.
func QuoteLiteral(value string) string {
	return "'" + EscapeQuotes(value) + "'"
}

// EscapeQuotes dobra as aspas simples de value.
func EscapeQuotes(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}

func literal(arg any) string {
	switch v := arg.(type) {
	case string:
		return QuoteLiteral(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return QuoteLiteral(v.Format(entity.DateLayout))
	default:
		return QuoteLiteral(fmt.Sprint(v))
	}
}

// DateBetween filtra col entre start e end, incluindo os dois extremos.
func DateBetween(col string, start, end time.Time) Predicate {
	return Predicate{
		SQL:  col + " BETWEEN ? AND ?",
		Args: []any{start.Format(entity.DateLayout), end.Format(entity.DateLayout)},
	}
}

// DimFilter restringe col ao valor informado; "(All)" não restringe nada.
func DimFilter(col, value string) Predicate {
	if value == "" || value == entity.AllWarehouses {
		return Predicate{SQL: "1=1"}
	}
	return Predicate{SQL: col + " = ?", Args: []any{value}}
}

// And junta predicados com AND, preservando a ordem dos argumentos.
func And(preds ...Predicate) Predicate {
	parts := make([]string, 0, len(preds))
	var args []any
	for _, p := range preds {
		parts = append(parts, p.SQL)
		args = append(args, p.Args...)
	}
	return Predicate{SQL: strings.Join(parts, "\n  AND "), Args: args}
}

// ValidateQualifiedName checks that every dot-separated part of name is a plain identifier.
func ValidateQualifiedName(name string) error {
	for _, part := range strings.Split(name, ".") {
		if !identifierRegex.MatchString(part) {
			return fmt.Errorf("%w: %q", types.ErrInvalidIdentifier, name)
		}
	}
	return nil
}

// Builder monta as consultas do dashboard a partir do FilterState.
type Builder struct {
	metering     string
	queryMetrics string
	storage      string
}

// NewBuilder cria um Builder para as tabelas em database.schema.
// database e schema podem ser vazios.
func NewBuilder(database, schema string) (*Builder, error) {
	var prefix []string
	for _, part := range []string{database, schema} {
		if part == "" {
			continue
		}
		if !identifierRegex.MatchString(part) {
			return nil, fmt.Errorf("%w: %q", types.ErrInvalidIdentifier, part)
		}
		prefix = append(prefix, part)
	}

	qualify := func(table string) string {
		return strings.Join(append(append([]string{}, prefix...), table), ".")
	}

	return &Builder{
		metering:     qualify(TableWarehouseMetering),
		queryMetrics: qualify(TableQueryMetrics),
		storage:      qualify(TableStorage),
	}, nil
}

// DistinctWarehouses lista os warehouses conhecidos, em ordem alfabética.
func (b *Builder) DistinctWarehouses() Query {
	return Query{
		Name: NameWarehouses,
		SQL: fmt.Sprintf(`SELECT DISTINCT %[1]s
FROM %[2]s
WHERE %[1]s IS NOT NULL
ORDER BY 1`, ColWarehouseName, b.metering),
	}
}

// DailyCredits soma os créditos por dia.
func (b *Builder) DailyCredits(f entity.FilterState) Query {
	where := And(
		DateBetween(ColUsageDate, f.StartDate, f.EndDate),
		DimFilter(ColWarehouseName, f.Warehouse),
	)
	return Query{
		Name: NameDailyCredits,
		SQL: fmt.Sprintf(`SELECT
    %[1]s,
    CAST(SUM(%[2]s) AS DOUBLE) AS CREDITS
FROM %[3]s
WHERE %[4]s
GROUP BY %[1]s
ORDER BY %[1]s`, ColUsageDate, ColCreditsUsed, b.metering, where.SQL),
		Args: where.Args,
	}
}

// WarehouseCredits ranks warehouses by credits, highest first. limit <= 0 means no limit.
// The ranking always covers every warehouse; the warehouse filter does not apply.
func (b *Builder) WarehouseCredits(f entity.FilterState, limit int) Query {
	where := DateBetween(ColUsageDate, f.StartDate, f.EndDate)
	sql := fmt.Sprintf(`SELECT
    %[1]s,
    CAST(SUM(%[2]s) AS DOUBLE) AS CREDITS
FROM %[3]s
WHERE %[4]s
GROUP BY %[1]s
ORDER BY CREDITS DESC, %[1]s`, ColWarehouseName, ColCreditsUsed, b.metering, where.SQL)
	if limit > 0 {
		sql += fmt.Sprintf("\nLIMIT %d", limit)
	}
	return Query{Name: NameWarehouseCredits, SQL: sql, Args: where.Args}
}

// QueryPerformance soma quantidade e tempo total de consultas por dia.
func (b *Builder) QueryPerformance(f entity.FilterState) Query {
	where := And(
		DateBetween(ColUsageDate, f.StartDate, f.EndDate),
		DimFilter(ColWarehouseName, f.Warehouse),
	)
	return Query{
		Name: NameQueryPerformance,
		SQL: fmt.Sprintf(`SELECT
    %[1]s,
    CAST(SUM(%[2]s) AS BIGINT) AS QUERIES,
    CAST(SUM(%[3]s) AS DOUBLE) AS ELAPSED_MS
FROM %[4]s
WHERE %[5]s
GROUP BY %[1]s
ORDER BY %[1]s`, ColUsageDate, ColQueryCount, ColTotalElapsedMS, b.queryMetrics, where.SQL),
		Args: where.Args,
	}
}

// StorageGrowth soma o armazenamento estimado por dia. A tabela não tem warehouse.
func (b *Builder) StorageGrowth(f entity.FilterState) Query {
	where := DateBetween(ColUsageDate, f.StartDate, f.EndDate)
	return Query{
		Name: NameStorageGrowth,
		SQL: fmt.Sprintf(`SELECT
    %[1]s,
    CAST(SUM(%[2]s) AS DOUBLE) AS STORAGE_GB
FROM %[3]s
WHERE %[4]s
GROUP BY %[1]s
ORDER BY %[1]s`, ColUsageDate, ColEstStorageGB, b.storage, where.SQL),
		Args: where.Args,
	}
}
