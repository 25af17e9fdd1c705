package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/diillson/warehouse-finops-dashboard-go/internal/shared/types"
)

// AllWarehouses é o valor sentinela do seletor de warehouse: nenhum filtro.
const AllWarehouses = "(All)"

// DateLayout é o formato usado para datas de uso nas consultas e nos relatórios.
const DateLayout = "2006-01-02"

// FilterState representa os filtros escolhidos pelo usuário para uma interação.
// É construído a cada requisição e não é alterado durante ela.
type FilterState struct {
	StartDate     time.Time       `json:"start_date"`
	EndDate       time.Time       `json:"end_date"`
	Warehouse     string          `json:"warehouse"`
	CostPerCredit decimal.Decimal `json:"cost_per_credit"`
	DiscountPct   int             `json:"discount_pct"`
}

// DefaultFilter returns the window [today-days, today] with the dashboard defaults.
func DefaultFilter(today time.Time, days int) FilterState {
	end := truncateDay(today)
	return FilterState{
		StartDate:     end.AddDate(0, 0, -days),
		EndDate:       end,
		Warehouse:     AllWarehouses,
		CostPerCredit: decimal.NewFromFloat(3.00),
		DiscountPct:   0,
	}
}

// Validate checks the filter invariants.
func (f FilterState) Validate() error {
	if truncateDay(f.StartDate).After(truncateDay(f.EndDate)) {
		return fmt.Errorf("%w: %s > %s", types.ErrInvalidDateRange,
			f.StartDate.Format(DateLayout), f.EndDate.Format(DateLayout))
	}
	if f.CostPerCredit.IsNegative() {
		return types.ErrNegativeCostPerCredit
	}
	if f.DiscountPct < 0 || f.DiscountPct > 100 {
		return fmt.Errorf("%w: %d", types.ErrInvalidDiscount, f.DiscountPct)
	}
	return nil
}

// AllWarehouses reports whether no warehouse restriction applies.
func (f FilterState) AllWarehouses() bool {
	return f.Warehouse == "" || f.Warehouse == AllWarehouses
}

// WarehouseLabel retorna o warehouse selecionado ou "(All)".
func (f FilterState) WarehouseLabel() string {
	if f.AllWarehouses() {
		return AllWarehouses
	}
	return f.Warehouse
}

// DiscountMultiplier retorna 1 - desconto/100.
func (f FilterState) DiscountMultiplier() decimal.Decimal {
	return decimal.NewFromInt(1).Sub(decimal.NewFromInt(int64(f.DiscountPct)).Div(decimal.NewFromInt(100)))
}

// DateRange formata o período como "YYYY-MM-DD to YYYY-MM-DD".
func (f FilterState) DateRange() string {
	return fmt.Sprintf("%s to %s", f.StartDate.Format(DateLayout), f.EndDate.Format(DateLayout))
}

// ParseDate interpreta uma data no formato YYYY-MM-DD (UTC).
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", value, err)
	}
	return t, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
