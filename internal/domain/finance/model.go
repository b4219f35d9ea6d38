// Package finance defines the recorded financial entities: income lines,
// expenses, assets, liabilities and cash savings.
package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

// IncomeType classifies an income line.
type IncomeType string

const (
	IncomeEarned    IncomeType = "Earned"
	IncomePortfolio IncomeType = "Portfolio"
	IncomePassive   IncomeType = "Passive"
)

// ParseIncomeType maps text to a known income type.
func ParseIncomeType(s string) (IncomeType, bool) {
	switch IncomeType(s) {
	case IncomeEarned, IncomePortfolio, IncomePassive:
		return IncomeType(s), true
	}
	return "", false
}

// IncomeLine is a single recorded income source.
type IncomeLine struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Type      IncomeType      `json:"type"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Expense is a recorded recurring expense.
type Expense struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Asset is an owned item of value on the balance sheet.
type Asset struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Name      string          `json:"name"`
	Value     decimal.Decimal `json:"value"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Liability is an owed amount on the balance sheet.
type Liability struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Name      string          `json:"name"`
	Value     decimal.Decimal `json:"value"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// CashSavings is the single per-user savings figure. At most one row exists
// per user; writes use upsert semantics.
type CashSavings struct {
	UserID    string          `json:"userId"`
	Amount    decimal.Decimal `json:"amount"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// BalanceSheet bundles assets and liabilities with their totals.
type BalanceSheet struct {
	Assets           []Asset         `json:"assets"`
	Liabilities      []Liability     `json:"liabilities"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	NetWorth         decimal.Decimal `json:"netWorth"`
}
