// Package advisor aggregates a user's financial records and forwards them to
// the external generation API for a narrative analysis.
package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gdiv-se/richflow/internal/domain/finance"
	"github.com/gdiv-se/richflow/internal/gemini"
	"github.com/gdiv-se/richflow/internal/logging"
	"github.com/gdiv-se/richflow/internal/metrics"
	"github.com/gdiv-se/richflow/internal/storage"
)

// ErrInsufficientData is returned when the user has no income, expenses or
// cash savings to analyze. It is a not-found condition, not a failure.
var ErrInsufficientData = errors.New("missing or insufficient information")

// Generator is the slice of the Gemini client the advisor needs.
type Generator interface {
	GenerateContent(ctx context.Context, prompt, systemInstruction string) ([]byte, error)
}

// Service gathers financial status and produces the analysis text.
type Service struct {
	income      storage.IncomeStore
	expenses    storage.ExpenseStore
	cashSavings storage.CashSavingsStore
	generator   Generator
	log         *logging.Logger
}

// New constructs the advisor service.
func New(income storage.IncomeStore, expenses storage.ExpenseStore, cashSavings storage.CashSavingsStore, generator Generator, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("advisor")
	}
	return &Service{
		income:      income,
		expenses:    expenses,
		cashSavings: cashSavings,
		generator:   generator,
		log:         log,
	}
}

// FinancialStatus bundles the three record sets the analysis is built from.
type FinancialStatus struct {
	Incomes     []finance.IncomeLine `json:"incomes"`
	Expenses    []finance.Expense    `json:"expenses"`
	CashSavings *finance.CashSavings `json:"cashSavings"`
}

// Empty reports whether there is nothing to analyze.
func (fs FinancialStatus) Empty() bool {
	return len(fs.Incomes) == 0 && len(fs.Expenses) == 0 && fs.CashSavings == nil
}

// CollectFinancialStatus fetches income lines, expenses and cash savings
// concurrently. A failure of any fetch fails the whole aggregate; there is no
// partial result.
func (s *Service) CollectFinancialStatus(ctx context.Context, userID string) (FinancialStatus, error) {
	var (
		wg     sync.WaitGroup
		status FinancialStatus

		incomeErr  error
		expenseErr error
		savingsErr error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		status.Incomes, incomeErr = s.income.ListIncomeLines(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		status.Expenses, expenseErr = s.expenses.ListExpenses(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		cs, err := s.cashSavings.GetCashSavings(ctx, userID)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				savingsErr = err
			}
			return
		}
		status.CashSavings = &cs
	}()
	wg.Wait()

	for _, err := range []error{incomeErr, expenseErr, savingsErr} {
		if err != nil {
			return FinancialStatus{}, fmt.Errorf("collect financial status: %w", err)
		}
	}
	return status, nil
}

const systemInstruction = ` return in this format, at most 3 sentences per category and just put the main takeaways { 'Income analysis': '', 'Expense behavior': '', 'Cashflow and savings': '', 'Assets and liabilities': '', 'Financial Freedom Progress': '' }`

// Analyze collects the user's records, forwards them to the generation API
// and returns the extracted analysis text. An empty record set yields
// ErrInsufficientData; external failures propagate.
func (s *Service) Analyze(ctx context.Context, userID string) (string, error) {
	status, err := s.CollectFinancialStatus(ctx, userID)
	if err != nil {
		metrics.RecordAdvisorRequest("collect_error")
		return "", err
	}
	if status.Empty() {
		metrics.RecordAdvisorRequest("insufficient_data")
		return "", ErrInsufficientData
	}

	prompt, err := buildPrompt(status)
	if err != nil {
		metrics.RecordAdvisorRequest("prompt_error")
		return "", err
	}

	body, err := s.generator.GenerateContent(ctx, prompt, systemInstruction)
	if err != nil {
		metrics.RecordAdvisorRequest("generation_error")
		return "", fmt.Errorf("analyze finance: %w", err)
	}

	extraction := gemini.ExtractText(body)
	if !extraction.Recognized {
		// Unknown response shape. Surface the raw body rather than failing;
		// the caller decides how to present it.
		s.log.WithField("user_id", userID).Warn("unrecognized generation response shape")
		metrics.RecordAdvisorRequest("unrecognized_shape")
		return extraction.Raw, nil
	}

	metrics.RecordAdvisorRequest("ok")
	return extraction.Text, nil
}

// buildPrompt serializes the collected records into the analysis prompt with
// its fixed category instruction set.
func buildPrompt(status FinancialStatus) (string, error) {
	incomes, err := json.Marshal(status.Incomes)
	if err != nil {
		return "", fmt.Errorf("serialize incomes: %w", err)
	}
	expenses, err := json.Marshal(status.Expenses)
	if err != nil {
		return "", fmt.Errorf("serialize expenses: %w", err)
	}
	savings, err := json.Marshal(status.CashSavings)
	if err != nil {
		return "", fmt.Errorf("serialize cash savings: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are a financial advisor. Given this user data, return only valid json with keys:\n")
	b.WriteString("- Income analysis: insights on earned, passive, and portfolio income trends, ratios and more\n")
	b.WriteString("- Expense behavior: notable increases, recurring high-cost categories, spending balance and more\n")
	b.WriteString("- Cashflow and savings: sustainability of current savings rate, spending-to-income ratio and more\n")
	b.WriteString("- Assets and liabilities: asset growth, debt-to-asset ratio, liquidity and more\n")
	b.WriteString("- Financial Freedom Progress: percentage of expenses covered by passive/portfolio income, suggestions to improve the ratio and more\n")
	b.WriteString("\nUser Data:\n")
	fmt.Fprintf(&b, "Incomes: %s\n", incomes)
	fmt.Fprintf(&b, "Expenses: %s\n", expenses)
	fmt.Fprintf(&b, "Cash Savings: %s\n", savings)
	return b.String(), nil
}
