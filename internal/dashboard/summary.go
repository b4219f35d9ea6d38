package dashboard

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gdiv-se/richflow/internal/domain/finance"
	"github.com/gdiv-se/richflow/internal/services"
)

// IncomeTotals breaks income down by type.
type IncomeTotals struct {
	Total     decimal.Decimal
	Earned    decimal.Decimal
	Portfolio decimal.Decimal
	Passive   decimal.Decimal
}

// SumIncome totals the income lines by type.
func SumIncome(lines []finance.IncomeLine) IncomeTotals {
	t := IncomeTotals{
		Total:     decimal.Zero,
		Earned:    decimal.Zero,
		Portfolio: decimal.Zero,
		Passive:   decimal.Zero,
	}
	for _, line := range lines {
		t.Total = t.Total.Add(line.Amount)
		switch line.Type {
		case finance.IncomeEarned:
			t.Earned = t.Earned.Add(line.Amount)
		case finance.IncomePortfolio:
			t.Portfolio = t.Portfolio.Add(line.Amount)
		case finance.IncomePassive:
			t.Passive = t.Passive.Add(line.Amount)
		}
	}
	return t
}

// SumExpenses totals the expense amounts.
func SumExpenses(expenses []finance.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// Summary is the overview the dashboard header renders.
type Summary struct {
	Income          IncomeTotals
	TotalExpenses   decimal.Decimal
	NetCash         decimal.Decimal
	PassiveCoverage float64
}

// BuildSummary derives the overview numbers from raw records.
func BuildSummary(lines []finance.IncomeLine, expenses []finance.Expense) Summary {
	income := SumIncome(lines)
	totalExpenses := SumExpenses(expenses)
	return Summary{
		Income:          income,
		TotalExpenses:   totalExpenses,
		NetCash:         income.Total.Sub(totalExpenses),
		PassiveCoverage: PassiveCoverage(income.Passive, totalExpenses),
	}
}

// PassiveCoverage reports how much of the expenses passive income covers, as
// a percentage clamped to [0, 100]. Zero or negative expenses yield exactly
// 0, never a division error or an infinity.
func PassiveCoverage(passive, expenses decimal.Decimal) float64 {
	if expenses.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	pct, _ := passive.Div(expenses).Mul(decimal.NewFromInt(100)).Float64()
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// BarScale is the denominator the income bars are normalized against:
// max(totalIncome, passive, 1). The floor of 1 keeps empty charts from
// dividing by zero.
func BarScale(totalIncome, passive decimal.Decimal) decimal.Decimal {
	scale := decimal.NewFromInt(1)
	if totalIncome.GreaterThan(scale) {
		scale = totalIncome
	}
	if passive.GreaterThan(scale) {
		scale = passive
	}
	return scale
}

// BarWidth converts a value into a 0-100 bar width against the scale.
func BarWidth(value, scale decimal.Decimal) float64 {
	if scale.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	w, _ := value.Div(scale).Mul(decimal.NewFromInt(100)).Float64()
	if w < 0 {
		return 0
	}
	if w > 100 {
		return 100
	}
	return w
}

// ValidateCashSavingsInput parses the free-text savings field. Invalid or
// negative input fails here, before any request is made.
func ValidateCashSavingsInput(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, services.Invalidf("amount is required")
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, services.Invalidf("amount must be a number")
	}
	if amount.IsNegative() {
		return decimal.Decimal{}, services.Invalidf("amount must not be negative")
	}
	return amount, nil
}
