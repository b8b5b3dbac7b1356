package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bluebook-nepal/bluebook-backend/internal/gateway"
	"github.com/bluebook-nepal/bluebook-backend/internal/storage"
)

// VerificationResult is what a completed reconciliation reports back to
// the client. Amounts are rupees (converted from the gateway's minor
// units).
type VerificationResult struct {
	TotalAmount   float64 `json:"total_amount"`
	TransactionID string  `json:"transaction_id"`
	Fee           float64 `json:"fee"`
	Refunded      bool    `json:"refunded"`
}

// ReconciliationService confirms gateway-side completion and commits the
// renewal exactly once
type ReconciliationService struct {
	store storage.Store
	gw    gateway.Gateway
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(store storage.Store, gw gateway.Gateway) *ReconciliationService {
	return &ReconciliationService{store: store, gw: gw}
}

// Verify looks up the gateway status for reference and, if the payment
// completed, marks the intent paid and extends the vehicle's tax expiry to
// one year from now. The paid check and the commit are a single
// conditional store write, so a second Verify for the same reference
// returns the cached result without extending again. A failed
// reconciliation never mutates the vehicle.
func (s *ReconciliationService) Verify(ctx context.Context, reference, vehicleID string) (*VerificationResult, error) {
	if reference == "" {
		return nil, fmt.Errorf("%w: missing transaction reference", ErrValidation)
	}

	lookup, err := s.gw.Lookup(ctx, reference)
	if err != nil {
		if errors.Is(err, gateway.ErrPaymentNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if lookup.Status != gateway.StatusCompleted {
		return nil, ErrPaymentNotCompleted
	}

	existing, err := s.store.GetIntentByReference(reference)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if vehicleID != "" && existing.VehicleID != vehicleID {
		return nil, fmt.Errorf("%w: reference does not belong to this vehicle", ErrValidation)
	}

	transactionID := lookup.TransactionID
	if transactionID == "" {
		transactionID = fmt.Sprintf("TXN_%d", time.Now().UnixMilli())
	}

	now := time.Now()
	newExpireDate := now.AddDate(1, 0, 0)

	intent, applied, err := s.store.MarkIntentPaidAndExtend(reference, transactionID, now, newExpireDate)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if applied {
		log.Printf("✅ Payment %s reconciled, tax renewed for vehicle %s until %s",
			reference, intent.VehicleID, newExpireDate.Format("2006-01-02"))
	} else {
		log.Printf("Payment %s already reconciled, returning cached result", reference)
	}

	return &VerificationResult{
		TotalAmount:   float64(lookup.TotalAmount) / 100,
		TransactionID: intent.TransactionID,
		Fee:           float64(lookup.Fee) / 100,
		Refunded:      lookup.Refunded,
	}, nil
}
