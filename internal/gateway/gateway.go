// Package gateway talks to the external e-payment provider. Two
// implementations share the same capability set: KhaltiGateway calls the
// real provider over HTTP, DemoGateway simulates it in memory for tests
// and offline operation.
package gateway

import (
	"context"
	"errors"
	"time"
)

// Gateway-side payment statuses as reported by lookup
const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
	StatusExpired   = "Expired"
)

var (
	// ErrUnavailable means the provider could not be reached (connection
	// refused, DNS failure). The caller may retry; the gateway never does.
	ErrUnavailable = errors.New("payment gateway is temporarily unavailable")
	// ErrRejected means the provider answered with a non-2xx status.
	ErrRejected = errors.New("payment gateway rejected the request")
	// ErrPaymentNotFound means the reference is unknown to the provider.
	ErrPaymentNotFound = errors.New("payment not found")
)

// InitiateRequest is the provider's initiate payload. Amount is in minor
// currency units (paisa), i.e. total rupees × 100.
type InitiateRequest struct {
	ReturnURL         string `json:"return_url"`
	PurchaseOrderID   string `json:"purchase_order_id"`
	Amount            int64  `json:"amount"`
	WebsiteURL        string `json:"website_url"`
	PurchaseOrderName string `json:"purchase_order_name"`
}

// InitiateResponse carries the provider-assigned reference (pidx) and the
// redirect URL the client must follow to complete payment.
type InitiateResponse struct {
	Pidx       string    `json:"pidx"`
	PaymentURL string    `json:"payment_url"`
	ExpiresAt  time.Time `json:"expires_at"`
	Status     string    `json:"status"`
}

// LookupResult is the provider's view of a transaction. TotalAmount is in
// minor units, like the initiate amount.
type LookupResult struct {
	Pidx          string `json:"pidx"`
	Status        string `json:"status"`
	TotalAmount   int64  `json:"total_amount"`
	TransactionID string `json:"transaction_id"`
	Fee           int64  `json:"fee"`
	Refunded      bool   `json:"refunded"`
}

// Gateway is the capability set both variants provide
type Gateway interface {
	Initiate(ctx context.Context, req *InitiateRequest) (*InitiateResponse, error)
	Lookup(ctx context.Context, pidx string) (*LookupResult, error)
}
