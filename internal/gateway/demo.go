package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type demoPayment struct {
	req         *InitiateRequest
	status      string
	createdAt   time.Time
	expiresAt   time.Time
	completedAt *time.Time
}

// DemoGateway is a deterministic in-memory stand-in for the provider.
// Payments stay Pending until Complete is called explicitly, which lets
// tests drive the full lifecycle without network access.
type DemoGateway struct {
	mu       sync.Mutex
	payments map[string]*demoPayment
	counter  int
}

// NewDemoGateway creates a demo gateway with its own payment store
func NewDemoGateway() *DemoGateway {
	return &DemoGateway{payments: make(map[string]*demoPayment)}
}

func (g *DemoGateway) Initiate(ctx context.Context, req *InitiateRequest) (*InitiateResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.counter++
	now := time.Now()
	pidx := fmt.Sprintf("DEMO-%d-%04d", now.Unix(), g.counter)
	expiresAt := now.Add(15 * time.Minute)

	g.payments[pidx] = &demoPayment{
		req:       req,
		status:    StatusPending,
		createdAt: now,
		expiresAt: expiresAt,
	}

	return &InitiateResponse{
		Pidx:       pidx,
		PaymentURL: fmt.Sprintf("https://test-pay.khalti.com/?pidx=%s", pidx),
		ExpiresAt:  expiresAt,
		Status:     StatusPending,
	}, nil
}

func (g *DemoGateway) Lookup(ctx context.Context, pidx string) (*LookupResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	payment, exists := g.payments[pidx]
	if !exists {
		return nil, ErrPaymentNotFound
	}

	result := &LookupResult{
		Pidx:        pidx,
		Status:      payment.status,
		TotalAmount: payment.req.Amount,
		Fee:         0,
		Refunded:    false,
	}
	if payment.status == StatusCompleted {
		result.TransactionID = fmt.Sprintf("TXN_%d", payment.completedAt.UnixNano())
	}
	return result, nil
}

// Complete transitions a pending demo payment to Completed. This is the
// only way a demo payment leaves the Pending state.
func (g *DemoGateway) Complete(pidx string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	payment, exists := g.payments[pidx]
	if !exists {
		return ErrPaymentNotFound
	}
	if payment.status != StatusCompleted {
		now := time.Now()
		payment.status = StatusCompleted
		payment.completedAt = &now
	}
	return nil
}
