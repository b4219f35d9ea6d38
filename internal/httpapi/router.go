package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/gdiv-se/richflow/internal/logging"
	"github.com/gdiv-se/richflow/internal/metrics"
)

// RouterConfig tunes the routing layer.
type RouterConfig struct {
	// SignupLimit and SignupWindow throttle account creation per client IP.
	SignupLimit  int
	SignupWindow time.Duration
}

// DefaultRouterConfig mirrors the production throttle of five signups per
// fifteen minutes.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{SignupLimit: 5, SignupWindow: 15 * time.Minute}
}

// NewRouter builds the full API routing table.
func NewRouter(svc Services, log *logging.Logger, cfg RouterConfig) http.Handler {
	h := &handler{svc: svc, log: log}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.health).Methods("GET")
	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	signupLimiter := newRateLimiter(cfg.SignupLimit, cfg.SignupWindow, log)
	api.Handle("/auth/signup", signupLimiter.handler(http.HandlerFunc(h.signup))).Methods("POST")
	api.HandleFunc("/auth/login", h.login).Methods("POST")

	authed := api.NewRoute().Subrouter()
	authed.Use(h.requireAuth)

	authed.HandleFunc("/auth/logout", h.logout).Methods("POST")

	authed.HandleFunc("/income", h.listIncome).Methods("GET")
	authed.HandleFunc("/income", h.addIncome).Methods("POST")
	authed.HandleFunc("/income/{id}", h.updateIncome).Methods("PUT")
	authed.HandleFunc("/income/{id}", h.deleteIncome).Methods("DELETE")

	authed.HandleFunc("/expenses", h.listExpenses).Methods("GET")
	authed.HandleFunc("/expenses", h.addExpense).Methods("POST")
	authed.HandleFunc("/expenses/{id}", h.updateExpense).Methods("PUT")
	authed.HandleFunc("/expenses/{id}", h.deleteExpense).Methods("DELETE")

	authed.HandleFunc("/balance-sheet", h.getBalanceSheet).Methods("GET")
	authed.HandleFunc("/balance-sheet", h.createBalanceSheet).Methods("POST")

	authed.HandleFunc("/assets", h.listAssets).Methods("GET")
	authed.HandleFunc("/assets", h.addAsset).Methods("POST")
	authed.HandleFunc("/assets/{id}", h.updateAsset).Methods("PUT")
	authed.HandleFunc("/assets/{id}", h.deleteAsset).Methods("DELETE")

	authed.HandleFunc("/liabilities", h.listLiabilities).Methods("GET")
	authed.HandleFunc("/liabilities", h.addLiability).Methods("POST")
	authed.HandleFunc("/liabilities/{id}", h.updateLiability).Methods("PUT")
	authed.HandleFunc("/liabilities/{id}", h.deleteLiability).Methods("DELETE")

	authed.HandleFunc("/cash-savings", h.getCashSavings).Methods("GET")
	authed.HandleFunc("/cash-savings", h.setCashSavings).Methods("PUT")

	authed.HandleFunc("/ai/analysis", h.aiAnalysis).Methods("GET")

	return metrics.InstrumentHandler(r)
}
