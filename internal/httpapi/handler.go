// Package httpapi exposes the REST API.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/gdiv-se/richflow/internal/logging"
	"github.com/gdiv-se/richflow/internal/services"
	"github.com/gdiv-se/richflow/internal/services/advisor"
	authsvc "github.com/gdiv-se/richflow/internal/services/auth"
	"github.com/gdiv-se/richflow/internal/services/balancesheet"
	"github.com/gdiv-se/richflow/internal/services/cashsavings"
	"github.com/gdiv-se/richflow/internal/services/expense"
	"github.com/gdiv-se/richflow/internal/services/income"
	"github.com/gdiv-se/richflow/internal/storage"
)

// Services bundles everything the handlers call into.
type Services struct {
	Auth         *authsvc.Service
	Income       *income.Service
	Expense      *expense.Service
	BalanceSheet *balancesheet.Service
	CashSavings  *cashsavings.Service
	Advisor      *advisor.Service
}

type handler struct {
	svc Services
	log *logging.Logger
}

// --- auth -------------------------------------------------------------------

func (h *handler) signup(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	profile, err := h.svc.Auth.Register(r.Context(), payload.Name, payload.Email, payload.Password)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User created successfully",
		"user":    profile,
	})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := h.svc.Auth.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": res.Token,
		"user":  res.User,
	})
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if err := h.svc.Auth.Logout(r.Context(), token); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- income -----------------------------------------------------------------

type incomePayload struct {
	Type   string          `json:"type"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

func (h *handler) listIncome(w http.ResponseWriter, r *http.Request) {
	lines, err := h.svc.Income.List(r.Context(), userID(r))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

func (h *handler) addIncome(w http.ResponseWriter, r *http.Request) {
	var payload incomePayload
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	line, err := h.svc.Income.Add(r.Context(), userID(r), payload.Type, payload.Name, payload.Amount)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, line)
}

func (h *handler) updateIncome(w http.ResponseWriter, r *http.Request) {
	var payload incomePayload
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	line, err := h.svc.Income.Update(r.Context(), userID(r), mux.Vars(r)["id"], payload.Type, payload.Name, payload.Amount)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, line)
}

func (h *handler) deleteIncome(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Income.Delete(r.Context(), userID(r), mux.Vars(r)["id"]); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- expenses ---------------------------------------------------------------

type expensePayload struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

func (h *handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.svc.Expense.List(r.Context(), userID(r))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (h *handler) addExpense(w http.ResponseWriter, r *http.Request) {
	var payload expensePayload
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	exp, err := h.svc.Expense.Add(r.Context(), userID(r), payload.Name, payload.Amount)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, exp)
}

func (h *handler) updateExpense(w http.ResponseWriter, r *http.Request) {
	var payload expensePayload
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	exp, err := h.svc.Expense.Update(r.Context(), userID(r), mux.Vars(r)["id"], payload.Name, payload.Amount)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

func (h *handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Expense.Delete(r.Context(), userID(r), mux.Vars(r)["id"]); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- balance sheet ----------------------------------------------------------

type entryPayload struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

func (h *handler) getBalanceSheet(w http.ResponseWriter, r *http.Request) {
	sheet, err := h.svc.BalanceSheet.BalanceSheet(r.Context(), userID(r))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sheet)
}

// createBalanceSheet accepts a batch of assets and liabilities in one call.
func (h *handler) createBalanceSheet(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Assets      []entryPayload `json:"assets"`
		Liabilities []entryPayload `json:"liabilities"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	uid := userID(r)
	for _, a := range payload.Assets {
		if _, err := h.svc.BalanceSheet.AddAsset(r.Context(), uid, a.Name, a.Value); err != nil {
			h.respondServiceError(w, r, err)
			return
		}
	}
	for _, l := range payload.Liabilities {
		if _, err := h.svc.BalanceSheet.AddLiability(r.Context(), uid, l.Name, l.Value); err != nil {
			h.respondServiceError(w, r, err)
			return
		}
	}

	sheet, err := h.svc.BalanceSheet.BalanceSheet(r.Context(), uid)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sheet)
}

func (h *handler) listAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.svc.BalanceSheet.ListAssets(r.Context(), userID(r))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assets)
}

func (h *handler) addAsset(w http.ResponseWriter, r *http.Request) {
	var payload entryPayload
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	a, err := h.svc.BalanceSheet.AddAsset(r.Context(), userID(r), payload.Name, payload.Value)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *handler) updateAsset(w http.ResponseWriter, r *http.Request) {
	var payload entryPayload
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	a, err := h.svc.BalanceSheet.UpdateAsset(r.Context(), userID(r), mux.Vars(r)["id"], payload.Name, payload.Value)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *handler) deleteAsset(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.BalanceSheet.DeleteAsset(r.Context(), userID(r), mux.Vars(r)["id"]); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) listLiabilities(w http.ResponseWriter, r *http.Request) {
	liabilities, err := h.svc.BalanceSheet.ListLiabilities(r.Context(), userID(r))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, liabilities)
}

func (h *handler) addLiability(w http.ResponseWriter, r *http.Request) {
	var payload entryPayload
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	l, err := h.svc.BalanceSheet.AddLiability(r.Context(), userID(r), payload.Name, payload.Value)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (h *handler) updateLiability(w http.ResponseWriter, r *http.Request) {
	var payload entryPayload
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	l, err := h.svc.BalanceSheet.UpdateLiability(r.Context(), userID(r), mux.Vars(r)["id"], payload.Name, payload.Value)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *handler) deleteLiability(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.BalanceSheet.DeleteLiability(r.Context(), userID(r), mux.Vars(r)["id"]); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- cash savings -----------------------------------------------------------

func (h *handler) getCashSavings(w http.ResponseWriter, r *http.Request) {
	cs, err := h.svc.CashSavings.Get(r.Context(), userID(r))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (h *handler) setCashSavings(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	cs, err := h.svc.CashSavings.Set(r.Context(), userID(r), payload.Amount)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

// --- AI analysis ------------------------------------------------------------

func (h *handler) aiAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.svc.Advisor.Analyze(r.Context(), userID(r))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    analysis,
	})
}

// --- health -----------------------------------------------------------------

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// --- helpers ----------------------------------------------------------------

// respondServiceError maps service errors onto the status taxonomy. Unknown
// failures are logged and surfaced as a generic 500.
func (h *handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case services.IsValidation(err):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, authsvc.ErrEmailTaken), errors.Is(err, authsvc.ErrNameTaken):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, authsvc.ErrInvalidCredentials), errors.Is(err, authsvc.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, err)
	case errors.Is(err, advisor.ErrInsufficientData):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	default:
		h.log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
		writeError(w, http.StatusInternalServerError, fmt.Errorf("internal server error"))
	}
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
