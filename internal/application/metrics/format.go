package metrics

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount formata um valor com duas casas e separador de milhar ("1,234.50").
func FormatAmount(value decimal.Decimal) string {
	return groupThousands(value.StringFixed(2))
}

// FormatFloat é o equivalente de FormatAmount para float64.
func FormatFloat(value float64) string {
	return groupThousands(strconv.FormatFloat(value, 'f', 2, 64))
}

// FormatCount formata inteiros com separador de milhar.
func FormatCount(value int64) string {
	return groupThousands(strconv.FormatInt(value, 10))
}

func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + fracPart
}
