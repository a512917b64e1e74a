package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"kasa/internal/domain/ledger"
	"kasa/internal/domain/reconciliation"
	"kasa/internal/shared/middleware"
)

type ReconciliationHandler struct {
	matcher *reconciliation.Matcher
	review  *reconciliation.ReviewService

	minScore float64
	limit    int
}

func NewReconciliationHandler(matcher *reconciliation.Matcher, review *reconciliation.ReviewService, minScore float64, limit int) *ReconciliationHandler {
	if minScore <= 0 {
		minScore = reconciliation.DefaultMinScore
	}
	if limit <= 0 {
		limit = reconciliation.DefaultSuggestionLimit
	}
	return &ReconciliationHandler{
		matcher:  matcher,
		review:   review,
		minScore: minScore,
		limit:    limit,
	}
}

// HandleSuggestions returns scored duplicate candidates for human review.
// Query params minScore and limit override the configured defaults.
func (h *ReconciliationHandler) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	minScore := h.minScore
	limit := h.limit

	if scoreStr := r.URL.Query().Get("minScore"); scoreStr != "" {
		parsed, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil || parsed <= 0 || parsed > 1 {
			http.Error(w, "minScore must be in (0, 1]", http.StatusBadRequest)
			return
		}
		minScore = parsed
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	suggestions, err := h.matcher.SuggestDuplicates(r.Context(), userID, limit, minScore)
	if err != nil {
		log.Printf("Error suggesting duplicates for user %d: %v", userID, err)
		http.Error(w, "Failed to compute suggestions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(suggestions)
}

type MarkDuplicateRequest struct {
	EntryID           int64   `json:"entryId"`
	BankTransactionID string  `json:"bankTransactionId"`
	Note              *string `json:"note,omitempty"`
}

type ConfirmSeparateRequest struct {
	EntryID int64   `json:"entryId"`
	Note    *string `json:"note,omitempty"`
}

type ReopenRequest struct {
	EntryID int64 `json:"entryId"`
}

// HandleMarkDuplicate links a manual entry to the bank transaction it
// duplicates, removing it from totals
func (h *ReconciliationHandler) HandleMarkDuplicate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req MarkDuplicateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.EntryID <= 0 || req.BankTransactionID == "" {
		http.Error(w, "entryId and bankTransactionId are required", http.StatusBadRequest)
		return
	}

	entry, err := h.review.MarkDuplicate(r.Context(), userID, req.EntryID, req.BankTransactionID, req.Note)
	if err != nil {
		h.writeReviewError(w, req.EntryID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entry)
}

// HandleConfirmSeparate records that a manual entry is a real transaction
// distinct from anything the bank reported
func (h *ReconciliationHandler) HandleConfirmSeparate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req ConfirmSeparateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.EntryID <= 0 {
		http.Error(w, "entryId is required", http.StatusBadRequest)
		return
	}

	entry, err := h.review.ConfirmSeparate(r.Context(), userID, req.EntryID, req.Note)
	if err != nil {
		h.writeReviewError(w, req.EntryID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entry)
}

// HandleReopen returns a reviewed entry to the unreviewed pool
func (h *ReconciliationHandler) HandleReopen(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req ReopenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.EntryID <= 0 {
		http.Error(w, "entryId is required", http.StatusBadRequest)
		return
	}

	entry, err := h.review.Reopen(r.Context(), userID, req.EntryID)
	if err != nil {
		h.writeReviewError(w, req.EntryID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entry)
}

func (h *ReconciliationHandler) writeReviewError(w http.ResponseWriter, entryID int64, err error) {
	switch {
	case errors.Is(err, ledger.ErrEntryNotFound):
		http.Error(w, "Entry not found", http.StatusNotFound)
	case errors.Is(err, ledger.ErrBankTransactionNotFound):
		http.Error(w, "Bank transaction not found", http.StatusNotFound)
	case errors.Is(err, ledger.ErrAlreadyBankBacked):
		http.Error(w, "Entry is bank-backed and cannot be reviewed", http.StatusConflict)
	case errors.Is(err, ledger.ErrInconsistentDuplicateTarget):
		http.Error(w, "Bank transaction belongs to a different user", http.StatusConflict)
	default:
		log.Printf("Error reviewing entry %d: %v", entryID, err)
		http.Error(w, "Failed to review entry", http.StatusInternalServerError)
	}
}
