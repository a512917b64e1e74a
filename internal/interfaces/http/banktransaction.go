package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"kasa/internal/domain/banksync"
	"kasa/internal/domain/ledger"
	"kasa/internal/domain/user"
	"kasa/internal/shared/middleware"
)

type BankTransactionHandler struct {
	bankTxRepo ledger.BankTransactionRepository
	triage     *banksync.TriageService
	connect    *banksync.ConnectService
	sync       *banksync.SyncService
}

func NewBankTransactionHandler(bankTxRepo ledger.BankTransactionRepository, triage *banksync.TriageService, connect *banksync.ConnectService, sync *banksync.SyncService) *BankTransactionHandler {
	return &BankTransactionHandler{
		bankTxRepo: bankTxRepo,
		triage:     triage,
		connect:    connect,
		sync:       sync,
	}
}

// HandleListBankTransactions returns the user's imported bank transactions,
// optionally filtered by triage status
func (h *BankTransactionHandler) HandleListBankTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var status ledger.BankTransactionStatus
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status = ledger.BankTransactionStatus(statusStr)
		if !status.IsValid() {
			http.Error(w, "Invalid status (use pending, accepted, rejected, or ignored)", http.StatusBadRequest)
			return
		}
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

	transactions, err := h.bankTxRepo.ListByUserID(r.Context(), userID, status, limit, offset)
	if err != nil {
		log.Printf("Error listing bank transactions for user %d: %v", userID, err)
		http.Error(w, "Failed to list bank transactions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(transactions)
}

type TriageRequest struct {
	Category string `json:"category,omitempty"`
}

// HandleTriage dispatches POST /api/bank-transactions/{id}/{action} where
// action is accept, reject or ignore
func (h *BankTransactionHandler) HandleTriage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	transactionID, action, err := triagePath(r.URL.Path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch action {
	case "accept":
		var req TriageRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}
		}

		entry, err := h.triage.Accept(r.Context(), userID, transactionID, req.Category)
		if err != nil {
			h.writeTriageError(w, transactionID, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(entry)

	case "reject":
		tx, err := h.triage.Reject(r.Context(), userID, transactionID)
		if err != nil {
			h.writeTriageError(w, transactionID, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(tx)

	case "ignore":
		tx, err := h.triage.Ignore(r.Context(), userID, transactionID)
		if err != nil {
			h.writeTriageError(w, transactionID, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(tx)

	default:
		http.Error(w, "Unknown action (use accept, reject, or ignore)", http.StatusBadRequest)
	}
}

func (h *BankTransactionHandler) writeTriageError(w http.ResponseWriter, transactionID string, err error) {
	if errors.Is(err, ledger.ErrBankTransactionNotFound) {
		http.Error(w, "Bank transaction not found", http.StatusNotFound)
		return
	}
	log.Printf("Error triaging bank transaction %s: %v", transactionID, err)
	http.Error(w, "Failed to triage bank transaction", http.StatusInternalServerError)
}

type ConnectRequest struct {
	APIKey string `json:"apiKey"`
}

type ConnectResponse struct {
	User           *user.User `json:"user"`
	RetiredEntries int64      `json:"retiredEntries"`
}

// HandleConnect validates and stores a bank aggregator key for the user
func (h *BankTransactionHandler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req ConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.APIKey == "" {
		http.Error(w, "apiKey is required", http.StatusBadRequest)
		return
	}

	u, retired, err := h.connect.Connect(r.Context(), userID, req.APIKey)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		log.Printf("Error connecting bank for user %d: %v", userID, err)
		http.Error(w, "Provider rejected the key", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ConnectResponse{
		User:           u,
		RetiredEntries: retired,
	})
}

// HandleSync triggers an on-demand transaction sync for the current user
func (h *BankTransactionHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	result, err := h.sync.SyncUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrNoProviderKey) {
			http.Error(w, "No bank connection configured", http.StatusConflict)
			return
		}
		if errors.Is(err, user.ErrNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		log.Printf("Error syncing bank transactions for user %d: %v", userID, err)
		http.Error(w, "Failed to sync bank transactions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func triagePath(path string) (transactionID, action string, err error) {
	rest := strings.TrimPrefix(path, "/api/bank-transactions/")
	rest = strings.TrimSuffix(rest, "/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.New("transaction ID and action are required")
	}
	return parts[0], parts[1], nil
}
