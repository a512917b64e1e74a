package bankapi

import (
	"context"
)

// ClientInterface defines the methods required from the bank aggregator API client
type ClientInterface interface {
	GetTransactions(ctx context.Context, apiKey string, startDate string) (*TransactionResponse, error)
	GetStatusWithCode(ctx context.Context, apiKey string) (*StatusResponse, int, error) // Returns response and status code
}
