package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gdiv-se/richflow/internal/domain/finance"
)

// Client is a Bearer-authenticated JSON client for the REST API.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// NewClient creates a client for the API at baseURL. Call Login or SetToken
// before using the authenticated endpoints.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken installs a session token obtained elsewhere.
func (c *Client) SetToken(token string) { c.token = token }

// Token returns the current session token, empty when logged out.
func (c *Client) Token() string { return c.token }

// Login authenticates and stores the session token on the client.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var out struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email": email, "password": password,
	}, &out)
	if err != nil {
		return err
	}
	c.token = out.Token
	return nil
}

// Logout revokes the session and clears the stored token. On transient
// failures the token is kept so revocation can be retried; a 401 means the
// session is already dead, so the token is dropped anyway.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	var apiErr *APIError
	if err == nil || (errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized) {
		c.token = ""
	}
	return err
}

// IncomeLines fetches the user's income lines.
func (c *Client) IncomeLines(ctx context.Context) ([]finance.IncomeLine, error) {
	var out []finance.IncomeLine
	if err := c.do(ctx, http.MethodGet, "/api/income", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Expenses fetches the user's expenses.
func (c *Client) Expenses(ctx context.Context) ([]finance.Expense, error) {
	var out []finance.Expense
	if err := c.do(ctx, http.MethodGet, "/api/expenses", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CashSavings fetches the user's cash savings figure.
func (c *Client) CashSavings(ctx context.Context) (finance.CashSavings, error) {
	var out finance.CashSavings
	if err := c.do(ctx, http.MethodGet, "/api/cash-savings", nil, &out); err != nil {
		return finance.CashSavings{}, err
	}
	return out, nil
}

// SetCashSavings overwrites the user's cash savings figure.
func (c *Client) SetCashSavings(ctx context.Context, amount decimal.Decimal) (finance.CashSavings, error) {
	var out finance.CashSavings
	err := c.do(ctx, http.MethodPut, "/api/cash-savings", map[string]decimal.Decimal{"amount": amount}, &out)
	if err != nil {
		return finance.CashSavings{}, err
	}
	return out, nil
}

// BalanceSheet fetches the user's assets and liabilities with totals.
func (c *Client) BalanceSheet(ctx context.Context) (finance.BalanceSheet, error) {
	var out finance.BalanceSheet
	if err := c.do(ctx, http.MethodGet, "/api/balance-sheet", nil, &out); err != nil {
		return finance.BalanceSheet{}, err
	}
	return out, nil
}

// Analysis fetches the AI analysis text.
func (c *Client) Analysis(ctx context.Context) (string, error) {
	var out struct {
		Success bool   `json:"success"`
		Data    string `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/ai/analysis", nil, &out); err != nil {
		return "", err
	}
	return out.Data, nil
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: unexpected status %d", e.Status)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
