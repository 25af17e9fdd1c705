package usecase

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/diillson/warehouse-finops-dashboard-go/internal/domain/entity"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/shared/types"
)

// FilterInput são os filtros informados pelo usuário (flags ou query string).
// Campos vazios ou nulos herdam os padrões da configuração.
type FilterInput struct {
	StartDate     string
	EndDate       string
	Days          *int
	Warehouse     string
	CostPerCredit *float64
	DiscountPct   *int
}

// BuildFilter monta o FilterState de uma interação. Sem datas explícitas a janela é
// [today-days, today]; com só StartDate o fim é today; com só EndDate o início é EndDate-days.
func BuildFilter(defaults types.DashboardConfig, today time.Time, in FilterInput) (entity.FilterState, error) {
	days := defaults.Days
	if in.Days != nil {
		days = *in.Days
	}
	if days < 0 {
		days = 0
	}

	f := entity.DefaultFilter(today, days)
	rate, err := costPerCredit(defaults.CostPerCredit)
	if err != nil {
		return entity.FilterState{}, err
	}
	f.CostPerCredit = rate
	f.DiscountPct = defaults.DiscountPct
	if defaults.Warehouse != "" {
		f.Warehouse = defaults.Warehouse
	}

	if in.EndDate != "" {
		end, err := entity.ParseDate(in.EndDate)
		if err != nil {
			return entity.FilterState{}, err
		}
		f.EndDate = end
		f.StartDate = end.AddDate(0, 0, -days)
	}
	if in.StartDate != "" {
		start, err := entity.ParseDate(in.StartDate)
		if err != nil {
			return entity.FilterState{}, err
		}
		f.StartDate = start
	}

	if in.Warehouse != "" {
		f.Warehouse = in.Warehouse
	}
	if in.CostPerCredit != nil {
		rate, err := costPerCredit(*in.CostPerCredit)
		if err != nil {
			return entity.FilterState{}, err
		}
		f.CostPerCredit = rate
	}
	if in.DiscountPct != nil {
		f.DiscountPct = *in.DiscountPct
	}

	if err := f.Validate(); err != nil {
		return entity.FilterState{}, err
	}
	return f, nil
}

// costPerCredit converte a tarifa para decimal. NaN e ±Inf não têm representação.
func costPerCredit(value float64) (decimal.Decimal, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return decimal.Decimal{}, fmt.Errorf("%w: %v", types.ErrInvalidCostPerCredit, value)
	}
	return decimal.NewFromFloat(value), nil
}
