package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TestSecretKeyPlaceholder is the sample key that ships in example env
// files. A deployment still carrying it is not talking to a real account,
// so selection treats it the same as no key at all.
const TestSecretKeyPlaceholder = "test_secret_key_583b0022d828403aa655b2ed39ccaed7"

const defaultBaseURL = "https://a.khalti.com/api/v2"

// KhaltiGateway is the HTTP client for the live e-payment provider
type KhaltiGateway struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

// NewKhaltiGateway creates a live gateway client. baseURL may be empty, in
// which case the production API endpoint is used.
func NewKhaltiGateway(baseURL, secretKey string) *KhaltiGateway {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &KhaltiGateway{
		baseURL:   baseURL,
		secretKey: secretKey,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

type khaltiInitiateResponse struct {
	Pidx       string `json:"pidx"`
	PaymentURL string `json:"payment_url"`
	ExpiresAt  string `json:"expires_at"`
	Status     string `json:"status"`
}

type khaltiLookupResponse struct {
	Pidx          string `json:"pidx"`
	Status        string `json:"status"`
	TotalAmount   int64  `json:"total_amount"`
	TransactionID string `json:"transaction_id"`
	Fee           int64  `json:"fee"`
	Refunded      bool   `json:"refunded"`
}

func (g *KhaltiGateway) Initiate(ctx context.Context, req *InitiateRequest) (*InitiateResponse, error) {
	var resp khaltiInitiateResponse
	if err := g.post(ctx, "/epayment/initiate/", req, &resp); err != nil {
		return nil, err
	}

	expiresAt, err := time.Parse(time.RFC3339, resp.ExpiresAt)
	if err != nil {
		// Provider omits or reformats expires_at occasionally; fall back
		// to the documented 15 minute window.
		expiresAt = time.Now().Add(15 * time.Minute)
	}

	return &InitiateResponse{
		Pidx:       resp.Pidx,
		PaymentURL: resp.PaymentURL,
		ExpiresAt:  expiresAt,
		Status:     resp.Status,
	}, nil
}

func (g *KhaltiGateway) Lookup(ctx context.Context, pidx string) (*LookupResult, error) {
	var resp khaltiLookupResponse
	payload := map[string]string{"pidx": pidx}
	if err := g.post(ctx, "/epayment/lookup/", payload, &resp); err != nil {
		return nil, err
	}

	return &LookupResult{
		Pidx:          resp.Pidx,
		Status:        resp.Status,
		TotalAmount:   resp.TotalAmount,
		TransactionID: resp.TransactionID,
		Fee:           resp.Fee,
		Refunded:      resp.Refunded,
	}, nil
}

func (g *KhaltiGateway) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Authorization", "key "+g.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		// Connectivity failures surface as retryable-by-user; there is
		// no automatic retry here.
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, string(detail))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return nil
}
