package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"kasa/internal/domain/ledger"
	"kasa/internal/shared/middleware"
)

type EntryHandler struct {
	entryRepo ledger.EntryRepository
}

func NewEntryHandler(entryRepo ledger.EntryRepository) *EntryHandler {
	return &EntryHandler{entryRepo: entryRepo}
}

type CreateEntryRequest struct {
	Kind        string  `json:"kind"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	EndDate     *string `json:"endDate,omitempty"`
	IsRecurring bool    `json:"isRecurring"`
	// PreBankEra marks imported history predating the user's bank
	// connection so it never surfaces in duplicate review.
	PreBankEra bool `json:"preBankEra,omitempty"`
}

type UpdateEntryRequest struct {
	Category    *string  `json:"category,omitempty"`
	Description *string  `json:"description,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Date        *string  `json:"date,omitempty"`
	EndDate     *string  `json:"endDate,omitempty"`
	ClearEnd    bool     `json:"clearEnd,omitempty"`
	IsRecurring *bool    `json:"isRecurring,omitempty"`
}

// HandleEntries routes collection-level requests based on method
func (h *EntryHandler) HandleEntries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleListEntries(w, r)
	case http.MethodPost:
		h.handleCreateEntry(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *EntryHandler) handleListEntries(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit := 50
	offset := 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 {
			limit = parsedLimit
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if parsedOffset, err := strconv.Atoi(offsetStr); err == nil && parsedOffset >= 0 {
			offset = parsedOffset
		}
	}

	if kindStr := r.URL.Query().Get("kind"); kindStr != "" {
		kind := ledger.Kind(kindStr)
		if !kind.IsValid() {
			http.Error(w, "Invalid kind (use expense or income)", http.StatusBadRequest)
			return
		}

		entries, err := h.entryRepo.ListByKind(r.Context(), userID, kind)
		if err != nil {
			log.Printf("Error listing %s entries for user %d: %v", kind, userID, err)
			http.Error(w, "Failed to list entries", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(entries)
		return
	}

	entries, err := h.entryRepo.ListByUserID(r.Context(), userID, limit, offset)
	if err != nil {
		log.Printf("Error listing entries for user %d: %v", userID, err)
		http.Error(w, "Failed to list entries", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

func (h *EntryHandler) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		http.Error(w, "Invalid date format (use YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	var endDate *time.Time
	if req.EndDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			http.Error(w, "Invalid endDate format (use YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		endDate = &parsed
	}

	params := ledger.CreateEntryParams{
		UserID:      userID,
		Kind:        ledger.Kind(req.Kind),
		Category:    req.Category,
		Description: req.Description,
		Amount:      req.Amount,
		Date:        date,
		EndDate:     endDate,
		IsRecurring: req.IsRecurring,
	}
	if req.PreBankEra {
		params.Status = ledger.StatusPreBankEra
	}

	if err := params.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := h.entryRepo.Create(r.Context(), params)
	if err != nil {
		log.Printf("Error creating entry for user %d: %v", userID, err)
		http.Error(w, "Failed to create entry", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entry)
}

// HandleEntryByID routes item-level requests based on method
func (h *EntryHandler) HandleEntryByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	entryID, err := entryIDFromPath(r.URL.Path)
	if err != nil {
		http.Error(w, "Invalid entry ID", http.StatusBadRequest)
		return
	}

	entry, err := h.entryRepo.GetByID(r.Context(), entryID)
	if err != nil {
		log.Printf("Error getting entry %d: %v", entryID, err)
		http.Error(w, "Failed to get entry", http.StatusInternalServerError)
		return
	}
	if entry == nil || entry.UserID != userID {
		// Foreign entries are indistinguishable from missing ones.
		http.Error(w, "Entry not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(entry)
	case http.MethodPatch:
		h.handleUpdateEntry(w, r, entry)
	case http.MethodDelete:
		h.handleDeleteEntry(w, r, entry)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *EntryHandler) handleUpdateEntry(w http.ResponseWriter, r *http.Request, entry *ledger.Entry) {
	var req UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	params := ledger.UpdateEntryParams{
		Category:    req.Category,
		Description: req.Description,
		Amount:      req.Amount,
		ClearEnd:    req.ClearEnd,
		IsRecurring: req.IsRecurring,
	}

	if req.Amount != nil && *req.Amount <= 0 {
		http.Error(w, "Amount must be positive", http.StatusBadRequest)
		return
	}

	if req.Date != nil {
		parsed, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			http.Error(w, "Invalid date format (use YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		params.Date = &parsed
	}

	if req.EndDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			http.Error(w, "Invalid endDate format (use YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		params.EndDate = &parsed
	}

	updated, err := h.entryRepo.Update(r.Context(), entry.ID, params)
	if err != nil {
		log.Printf("Error updating entry %d: %v", entry.ID, err)
		http.Error(w, "Failed to update entry", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

func (h *EntryHandler) handleDeleteEntry(w http.ResponseWriter, r *http.Request, entry *ledger.Entry) {
	if err := h.entryRepo.Delete(r.Context(), entry.ID); err != nil {
		if errors.Is(err, ledger.ErrEntryNotFound) {
			http.Error(w, "Entry not found", http.StatusNotFound)
			return
		}
		log.Printf("Error deleting entry %d: %v", entry.ID, err)
		http.Error(w, "Failed to delete entry", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func entryIDFromPath(path string) (int64, error) {
	idStr := strings.TrimPrefix(path, "/api/entries/")
	idStr = strings.TrimSuffix(idStr, "/")
	return strconv.ParseInt(idStr, 10, 64)
}
