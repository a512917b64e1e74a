package bankapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	baseURL          = "https://api.kasabank.dev/aggregator"
	defaultTimeout   = 180 * time.Second // Increased for large transaction fetches
	transactionsPath = "/get-transactions"
	statusPath       = "/connection-status"
)

// Client handles communication with the bank aggregator API
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a new bank aggregator API client
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL: baseURL,
	}
}

// TransactionResponse represents the API response for transaction data
type TransactionResponse struct {
	Success   bool          `json:"success"`
	Data      []Transaction `json:"data"`
	Count     int           `json:"count"`
	Timestamp string        `json:"timestamp"`
}

// Transaction represents a transaction from the bank aggregator API
type Transaction struct {
	ID           string  `json:"id"`
	Description  string  `json:"description"`
	MerchantName *string `json:"merchantName"`
	CurrencyCode string  `json:"currency_code"`
	AmountString string  `json:"amount"` // API returns amount as string, negative for outflows
	DateString   string  `json:"date"`   // "2025-09-28 03:00:00" format
	Status       string  `json:"status"` // "PENDING" or "POSTED"
	AccountName  string  `json:"account_name"`
	ItemBankName string  `json:"item_bank_name"` // Bank name from the item
}

// GetAmount returns the signed amount as a float64
func (t *Transaction) GetAmount() (float64, error) {
	if t.AmountString == "" {
		return 0, nil
	}
	amount, err := strconv.ParseFloat(t.AmountString, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse amount '%s': %w", t.AmountString, err)
	}
	return amount, nil
}

// GetDate parses and returns the transaction date
func (t *Transaction) GetDate() (*time.Time, error) {
	if t.DateString == "" {
		return nil, nil
	}
	// Format: "2025-09-28 03:00:00"
	parsed, err := time.Parse("2006-01-02 15:04:05", t.DateString)
	if err != nil {
		parsed, err = time.Parse("2006-01-02", t.DateString)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date '%s': %w", t.DateString, err)
		}
	}
	return &parsed, nil
}

// GetMerchantName returns the merchant name, falling back to the raw description.
func (t *Transaction) GetMerchantName() string {
	if t.MerchantName != nil && *t.MerchantName != "" {
		return *t.MerchantName
	}
	return t.Description
}

// StatusResponse represents the API response for a connection status check
type StatusResponse struct {
	Success   bool   `json:"success"`
	Connected bool   `json:"connected"`
	BankName  string `json:"bankName"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// GetTransactions fetches transactions dated on or after startDate
// ("YYYY-MM-DD") for a user using their API key.
func (c *Client) GetTransactions(ctx context.Context, apiKey string, startDate string) (*TransactionResponse, error) {
	reqURL := c.baseURL + transactionsPath
	if startDate != "" {
		reqURL += "?startDate=" + url.QueryEscape(startDate)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Add Bearer token authentication
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// Handle non-200 status codes
	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.Unmarshal(body, &errResp); err != nil {
			return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("API error (status %d): %s - %s", resp.StatusCode, errResp.Error, errResp.Message)
	}

	var txResp TransactionResponse
	if err := json.Unmarshal(body, &txResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !txResp.Success {
		return nil, fmt.Errorf("API returned success=false")
	}

	return &txResp, nil
}

// GetStatusWithCode checks the connection behind an API key and returns both
// the response and HTTP status code. This allows callers to handle different
// status codes (e.g., 401 for a revoked key) while still parsing successful
// responses.
func (c *Client) GetStatusWithCode(ctx context.Context, apiKey string) (*StatusResponse, int, error) {
	reqURL := c.baseURL + statusPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.Unmarshal(body, &errResp); err != nil {
			return nil, resp.StatusCode, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
		}
		return nil, resp.StatusCode, fmt.Errorf("API error (status %d): %s - %s", resp.StatusCode, errResp.Error, errResp.Message)
	}

	var statusResp StatusResponse
	if err := json.Unmarshal(body, &statusResp); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !statusResp.Success {
		return nil, resp.StatusCode, fmt.Errorf("API returned success=false")
	}

	return &statusResp, resp.StatusCode, nil
}
