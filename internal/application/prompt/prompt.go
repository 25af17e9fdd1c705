// Package prompt monta as instruções enviadas ao serviço de completion
// para os painéis de insights e de chat.
package prompt

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode"

	"github.com/diillson/warehouse-finops-dashboard-go/internal/application/query"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/domain/entity"
)

// TopWarehouseLimit é quantos warehouses entram no contexto do prompt.
const TopWarehouseLimit = 5

const (
	insightsPersona = "You are a Snowflake FinOps expert advising engineering leadership."
	chatPersona     = "You are a Snowflake FinOps expert helping an engineer."
	chatClosing     = "Respond clearly with actionable recommendations."
)

var insightSections = []string{
	"Executive summary",
	"Key cost drivers",
	"Any anomalies or spikes",
	"Optimization recommendations",
	"Concrete warehouse-level actions",
}

// Context is what a prompt knows about the dashboard. Built fresh for every AI call.
type Context struct {
	Filter        entity.FilterState
	TopWarehouses []entity.WarehouseCredits
}

// Insights monta o prompt do relatório executivo.
func Insights(c Context) string {
	var b strings.Builder
	b.WriteString(insightsPersona + "\n\n")
	fmt.Fprintf(&b, "Cost per credit: $%s\n", c.Filter.CostPerCredit.StringFixed(2))
	fmt.Fprintf(&b, "Date range: %s\n", c.Filter.DateRange())
	fmt.Fprintf(&b, "Selected warehouse: %s\n\n", Clean(c.Filter.WarehouseLabel()))
	b.WriteString("Top warehouses by credit usage:\n")
	b.WriteString(WarehouseCSV(c.TopWarehouses))
	b.WriteString("\n\nProvide:\n")
	for i, section := range insightSections {
		fmt.Fprintf(&b, "%d. %s\n", i+1, section)
	}
	return b.String()
}

// Chat monta o prompt de um turno de chat a partir da pergunta mais recente.
func Chat(c Context, question string) string {
	var b strings.Builder
	b.WriteString(chatPersona + "\n\n")
	fmt.Fprintf(&b, "Date range: %s\n", c.Filter.DateRange())
	fmt.Fprintf(&b, "Cost per credit: $%s\n", c.Filter.CostPerCredit.StringFixed(2))
	fmt.Fprintf(&b, "Selected warehouse: %s\n\n", Clean(c.Filter.WarehouseLabel()))
	b.WriteString("Top warehouses by credits:\n")
	b.WriteString(WarehouseCSV(c.TopWarehouses))
	b.WriteString("\n\nUser question:\n")
	b.WriteString(Clean(question))
	b.WriteString("\n\n" + chatClosing)
	return b.String()
}

// WarehouseCSV renders the ranking as CSV with a header row.
func WarehouseCSV(rows []entity.WarehouseCredits) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{query.ColWarehouseName, "CREDITS"})
	for _, row := range rows {
		_ = w.Write([]string{Clean(row.WarehouseName), row.Credits.String()})
	}
	w.Flush()
	return strings.TrimRight(buf.String(), "\n")
}

// Clean remove caracteres de controle (exceto quebra de linha e tab) e normaliza CRLF.
func Clean(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r == '\r' || unicode.IsControl(r) || r == unicode.ReplacementChar {
			return -1
		}
		return r
	}, s)
}

// EscapeLiteral prepara o prompt para ser embutido em um literal SQL.
func EscapeLiteral(prompt string) string {
	return query.EscapeQuotes(Clean(prompt))
}
