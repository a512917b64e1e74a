package main

import (
	"log"
	"net/http"

	httphandlers "kasa/internal/interfaces/http"
	"kasa/internal/shared/config"
	"kasa/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", httphandlers.HandleHealth)

	// Public auth routes
	mux.HandleFunc("/api/auth/register", deps.AuthHandler.HandleRegister)
	mux.HandleFunc("/api/auth/login", deps.AuthHandler.HandleLogin)
	mux.HandleFunc("/api/auth/logout", deps.AuthHandler.HandleLogout)

	// Protected routes
	authMiddleware := middleware.Auth(deps.JWT)

	mux.Handle("/api/users/me", authMiddleware(http.HandlerFunc(deps.AuthHandler.HandleMe)))

	mux.Handle("/api/entries/", authMiddleware(http.HandlerFunc(routeEntries(deps))))

	mux.Handle("/api/bank-transactions/", authMiddleware(http.HandlerFunc(routeBankTransactions(deps))))
	mux.Handle("/api/bank/connect", authMiddleware(http.HandlerFunc(deps.BankTxHandler.HandleConnect)))
	mux.Handle("/api/bank/sync", authMiddleware(http.HandlerFunc(deps.BankTxHandler.HandleSync)))

	mux.Handle("/api/reports/monthly", authMiddleware(http.HandlerFunc(deps.ReportsHandler.HandleMonthlyTotals)))
	mux.Handle("/api/reports/yearly", authMiddleware(http.HandlerFunc(deps.ReportsHandler.HandleYearlyTotals)))

	mux.Handle("/api/reconciliation/suggestions", authMiddleware(http.HandlerFunc(deps.ReconciliationHandler.HandleSuggestions)))
	mux.Handle("/api/reconciliation/mark-duplicate", authMiddleware(http.HandlerFunc(deps.ReconciliationHandler.HandleMarkDuplicate)))
	mux.Handle("/api/reconciliation/confirm-separate", authMiddleware(http.HandlerFunc(deps.ReconciliationHandler.HandleConfirmSeparate)))
	mux.Handle("/api/reconciliation/reopen", authMiddleware(http.HandlerFunc(deps.ReconciliationHandler.HandleReopen)))

	// Apply global middleware
	var handler http.Handler = mux
	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(middleware.Tracing(handler))
	}
	handler = middleware.Logging(middleware.CORS(cfg.Server.AllowedHosts)(handler))

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(middleware.SecureCookies(handler))
		log.Println("TLS security middleware enabled (HSTS + SecureCookies)")
	}

	return handler
}

// routeEntries splits /api/entries/ between the collection handler and the
// per-entry handler.
func routeEntries(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/entries/" || r.URL.Path == "/api/entries" {
			deps.EntryHandler.HandleEntries(w, r)
			return
		}
		deps.EntryHandler.HandleEntryByID(w, r)
	}
}

// routeBankTransactions splits /api/bank-transactions/ between listing and
// the per-transaction triage actions.
func routeBankTransactions(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/bank-transactions/" || r.URL.Path == "/api/bank-transactions" {
			deps.BankTxHandler.HandleListBankTransactions(w, r)
			return
		}
		deps.BankTxHandler.HandleTriage(w, r)
	}
}
