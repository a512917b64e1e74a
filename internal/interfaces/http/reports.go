package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"kasa/internal/domain/ledger"
	"kasa/internal/domain/reconciliation"
	"kasa/internal/shared/middleware"
)

type ReportsHandler struct {
	calculator *reconciliation.Calculator
}

func NewReportsHandler(calculator *reconciliation.Calculator) *ReportsHandler {
	return &ReportsHandler{calculator: calculator}
}

// HandleMonthlyTotals returns reconciled totals for one month.
// Query params: year, month, kind (expense or income). Year and month
// default to the current month.
func (h *ReportsHandler) HandleMonthlyTotals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	now := time.Now().UTC()
	year := now.Year()
	month := int(now.Month())

	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		parsed, err := strconv.Atoi(yearStr)
		if err != nil {
			http.Error(w, "Invalid year", http.StatusBadRequest)
			return
		}
		year = parsed
	}

	if monthStr := r.URL.Query().Get("month"); monthStr != "" {
		parsed, err := strconv.Atoi(monthStr)
		if err != nil {
			http.Error(w, "Invalid month", http.StatusBadRequest)
			return
		}
		month = parsed
	}

	kind := ledger.Kind(r.URL.Query().Get("kind"))

	totals, err := h.calculator.Calculate(r.Context(), userID, year, month, kind)
	if err != nil {
		h.writeTotalsError(w, userID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(totals)
}

// HandleYearlyTotals returns per-month reconciled totals for a full year.
// Query params: year, kind (expense or income).
func (h *ReportsHandler) HandleYearlyTotals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	year := time.Now().UTC().Year()
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		parsed, err := strconv.Atoi(yearStr)
		if err != nil {
			http.Error(w, "Invalid year", http.StatusBadRequest)
			return
		}
		year = parsed
	}

	kind := ledger.Kind(r.URL.Query().Get("kind"))

	totals, err := h.calculator.CalculateYear(r.Context(), userID, year, kind)
	if err != nil {
		h.writeTotalsError(w, userID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(totals)
}

func (h *ReportsHandler) writeTotalsError(w http.ResponseWriter, userID int64, err error) {
	if errors.Is(err, ledger.ErrInvalidPeriod) {
		http.Error(w, "Invalid year or month", http.StatusBadRequest)
		return
	}
	if errors.Is(err, ledger.ErrInvalidKind) {
		http.Error(w, "Invalid kind (use expense or income)", http.StatusBadRequest)
		return
	}
	log.Printf("Error calculating totals for user %d: %v", userID, err)
	http.Error(w, "Failed to calculate totals", http.StatusInternalServerError)
}
