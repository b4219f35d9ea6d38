package dashboard

import (
	"context"

	"github.com/gdiv-se/richflow/internal/domain/finance"
)

// Dashboard wires the API client to the observable stores the widgets read.
// Each refresh goes through the store's sequence tokens, so overlapping
// refreshes resolve in favour of the latest-started one.
type Dashboard struct {
	client *Client

	Income      *Store[[]finance.IncomeLine]
	Expenses    *Store[[]finance.Expense]
	CashSavings *Store[finance.CashSavings]
	Analysis    *Store[string]
}

// New creates a dashboard with empty stores.
func New(client *Client) *Dashboard {
	return &Dashboard{
		client:      client,
		Income:      NewStore[[]finance.IncomeLine](nil),
		Expenses:    NewStore[[]finance.Expense](nil),
		CashSavings: NewStore(finance.CashSavings{}),
		Analysis:    NewStore(""),
	}
}

// RefreshIncome fetches income lines into the income store.
func (d *Dashboard) RefreshIncome(ctx context.Context) error {
	seq := d.Income.Begin()
	lines, err := d.client.IncomeLines(ctx)
	if err != nil {
		return err
	}
	d.Income.Complete(seq, lines)
	return nil
}

// RefreshExpenses fetches expenses into the expense store.
func (d *Dashboard) RefreshExpenses(ctx context.Context) error {
	seq := d.Expenses.Begin()
	expenses, err := d.client.Expenses(ctx)
	if err != nil {
		return err
	}
	d.Expenses.Complete(seq, expenses)
	return nil
}

// RefreshCashSavings fetches the savings figure into its store.
func (d *Dashboard) RefreshCashSavings(ctx context.Context) error {
	seq := d.CashSavings.Begin()
	cs, err := d.client.CashSavings(ctx)
	if err != nil {
		return err
	}
	d.CashSavings.Complete(seq, cs)
	return nil
}

// RefreshAnalysis fetches the AI analysis into its store.
func (d *Dashboard) RefreshAnalysis(ctx context.Context) error {
	seq := d.Analysis.Begin()
	text, err := d.client.Analysis(ctx)
	if err != nil {
		return err
	}
	d.Analysis.Complete(seq, text)
	return nil
}

// SubmitCashSavings validates the raw input and, only when valid, writes it
// through the API and updates the store with the server's response.
func (d *Dashboard) SubmitCashSavings(ctx context.Context, input string) error {
	amount, err := ValidateCashSavingsInput(input)
	if err != nil {
		return err
	}
	seq := d.CashSavings.Begin()
	cs, err := d.client.SetCashSavings(ctx, amount)
	if err != nil {
		return err
	}
	d.CashSavings.Complete(seq, cs)
	return nil
}

// Summary derives the overview numbers from the current store contents.
func (d *Dashboard) Summary() Summary {
	return BuildSummary(d.Income.Get(), d.Expenses.Get())
}
