package dashboard

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/gdiv-se/richflow/internal/domain/finance"
	"github.com/gdiv-se/richflow/internal/services"
)

func incomeLine(typ finance.IncomeType, amount int64) finance.IncomeLine {
	return finance.IncomeLine{Type: typ, Amount: decimal.NewFromInt(amount)}
}

func expenseOf(amount int64) finance.Expense {
	return finance.Expense{Amount: decimal.NewFromInt(amount)}
}

func TestBuildSummary(t *testing.T) {
	lines := []finance.IncomeLine{
		incomeLine(finance.IncomeEarned, 1000),
		incomeLine(finance.IncomePassive, 200),
	}
	expenses := []finance.Expense{expenseOf(500)}

	s := BuildSummary(lines, expenses)
	if !s.Income.Total.Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("total income %s, want 1200", s.Income.Total)
	}
	if !s.Income.Passive.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("passive income %s, want 200", s.Income.Passive)
	}
	if !s.NetCash.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("net cash %s, want 700", s.NetCash)
	}
	if s.PassiveCoverage != 40 {
		t.Fatalf("passive coverage %v, want 40", s.PassiveCoverage)
	}
}

func TestSumIncomeByType(t *testing.T) {
	totals := SumIncome([]finance.IncomeLine{
		incomeLine(finance.IncomeEarned, 100),
		incomeLine(finance.IncomeEarned, 50),
		incomeLine(finance.IncomePortfolio, 30),
		incomeLine(finance.IncomePassive, 20),
	})
	if !totals.Earned.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("earned %s", totals.Earned)
	}
	if !totals.Portfolio.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("portfolio %s", totals.Portfolio)
	}
	if !totals.Passive.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("passive %s", totals.Passive)
	}
	if !totals.Total.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("total %s", totals.Total)
	}
}

func TestPassiveCoverage(t *testing.T) {
	cases := []struct {
		passive, expenses int64
		want              float64
	}{
		{200, 500, 40},
		{0, 500, 0},
		{500, 500, 100},
		{800, 500, 100}, // clamped, never above 100
		{200, 0, 0},     // no expenses: exactly 0, not infinity
		{200, -10, 0},
	}
	for _, tc := range cases {
		got := PassiveCoverage(decimal.NewFromInt(tc.passive), decimal.NewFromInt(tc.expenses))
		if got != tc.want {
			t.Fatalf("PassiveCoverage(%d, %d) = %v, want %v", tc.passive, tc.expenses, got, tc.want)
		}
	}
}

func TestBarScale(t *testing.T) {
	if got := BarScale(decimal.NewFromInt(1200), decimal.NewFromInt(200)); !got.Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("scale %s, want 1200", got)
	}
	if got := BarScale(decimal.NewFromInt(100), decimal.NewFromInt(400)); !got.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("scale %s, want 400", got)
	}
	// Empty chart still has a usable denominator.
	if got := BarScale(decimal.Zero, decimal.Zero); !got.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("scale %s, want 1", got)
	}
}

func TestBarWidth(t *testing.T) {
	if got := BarWidth(decimal.NewFromInt(600), decimal.NewFromInt(1200)); got != 50 {
		t.Fatalf("width %v, want 50", got)
	}
	if got := BarWidth(decimal.NewFromInt(200), decimal.Zero); got != 0 {
		t.Fatalf("zero scale width %v, want 0", got)
	}
}

func TestValidateCashSavingsInput(t *testing.T) {
	if _, err := ValidateCashSavingsInput("abc"); !services.IsValidation(err) {
		t.Fatalf("non-numeric: %v, want validation error", err)
	}
	if _, err := ValidateCashSavingsInput("-5"); !services.IsValidation(err) {
		t.Fatalf("negative: %v, want validation error", err)
	}
	if _, err := ValidateCashSavingsInput("   "); !services.IsValidation(err) {
		t.Fatalf("blank: %v, want validation error", err)
	}

	amount, err := ValidateCashSavingsInput(" 1234.56 ")
	if err != nil {
		t.Fatalf("valid input: %v", err)
	}
	if !amount.Equal(decimal.RequireFromString("1234.56")) {
		t.Fatalf("amount %s, want 1234.56", amount)
	}
	if _, err := ValidateCashSavingsInput("0"); err != nil {
		t.Fatalf("zero is allowed: %v", err)
	}
}
