package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"github.com/bluebook-nepal/bluebook-backend/internal/gateway"
	"github.com/bluebook-nepal/bluebook-backend/internal/models"
	"github.com/bluebook-nepal/bluebook-backend/internal/storage"
)

// PaymentRequestResult is returned to the client after a payment request:
// the frozen breakdown plus the intent the OTP was issued for. The OTP
// itself travels only over the notification channel.
type PaymentRequestResult struct {
	Intent     *models.PaymentIntent `json:"payment"`
	Assessment *models.TaxAssessment `json:"assessment"`
	Breakdown  *TaxBreakdown         `json:"breakdown"`
}

// PaymentRedirect tells the client where to complete the payment
type PaymentRedirect struct {
	Reference  string    `json:"pidx"`
	PaymentURL string    `json:"payment_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// PaymentWorkflow sequences the tax computation, the OTP-gated intent and
// the gateway round trips across the full request lifecycle
type PaymentWorkflow struct {
	store      storage.Store
	gw         gateway.Gateway
	intents    *PaymentIntentService
	reconciler *ReconciliationService
	notifier   Notifier
	backendURL string
	websiteURL string
}

// NewPaymentWorkflow wires the payment workflow. Redirect URLs fall back
// to the local development defaults when the env is not set.
func NewPaymentWorkflow(store storage.Store, gw gateway.Gateway, notifier Notifier) *PaymentWorkflow {
	backendURL := os.Getenv("BACKEND_URL")
	if backendURL == "" {
		backendURL = "http://localhost:9005"
	}
	websiteURL := os.Getenv("FRONTEND_URL")
	if websiteURL == "" {
		websiteURL = "http://localhost:5173"
	}

	return &PaymentWorkflow{
		store:      store,
		gw:         gw,
		intents:    NewPaymentIntentService(store),
		reconciler: NewReconciliationService(store, gw),
		notifier:   notifier,
		backendURL: backendURL,
		websiteURL: websiteURL,
	}
}

// verifiedVehicle loads the vehicle and enforces the admin-verification
// gate that every payment step requires.
func (w *PaymentWorkflow) verifiedVehicle(vehicleID string) (*models.Vehicle, error) {
	vehicle, err := w.store.GetVehicle(vehicleID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if vehicle.Status != models.StatusVerified {
		return nil, ErrTargetNotVerified
	}
	return vehicle, nil
}

// RequestPayment computes the tax for a verified vehicle, snapshots the
// assessment, opens a payment intent and sends the OTP. The notification
// is fire-and-forget: a delivery failure never aborts the flow.
func (w *PaymentWorkflow) RequestPayment(ctx context.Context, user *models.User, vehicleID, method string) (*PaymentRequestResult, error) {
	vehicle, err := w.verifiedVehicle(vehicleID)
	if err != nil {
		return nil, err
	}

	breakdown, err := ComputeTax(vehicle.Category, vehicle.VehicleType, vehicle.Capacity,
		vehicle.TaxExpireDate, vehicle.RegistrationDate, time.Now())
	if err != nil {
		return nil, err
	}

	assessment := &models.TaxAssessment{
		VehicleID:     vehicle.VehicleID,
		Category:      vehicle.Category,
		VehicleType:   vehicle.VehicleType,
		Capacity:      vehicle.Capacity,
		BaseTax:       breakdown.BaseTax,
		RenewalCharge: breakdown.RenewalCharge,
		FineAmount:    breakdown.FineAmount,
		AgeSurcharge:  breakdown.AgeSurcharge,
		TotalAmount:   breakdown.Total,
		DaysLeft:      breakdown.DaysLeft,
	}
	if _, err := w.store.CreateAssessment(assessment); err != nil {
		return nil, fmt.Errorf("failed to record tax assessment: %w", err)
	}

	intent, err := w.intents.CreateIntent(user.UserID, vehicle.VehicleID, method, assessment)
	if err != nil {
		return nil, err
	}

	otp := intent.OTP
	go func() {
		if err := w.notifier.SendOTP(user, otp); err != nil {
			log.Printf("Failed to send payment OTP to %s: %v", user.Email, err)
		}
	}()

	return &PaymentRequestResult{
		Intent:     intent,
		Assessment: assessment,
		Breakdown:  breakdown,
	}, nil
}

// ConfirmPayment confirms the OTP, initiates the gateway payment and
// attaches the returned reference to the intent. The redirect URL is
// where the client completes the payment.
func (w *PaymentWorkflow) ConfirmPayment(ctx context.Context, intentID, otp string) (*PaymentRedirect, error) {
	intent, err := w.store.GetIntent(intentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if _, err := w.verifiedVehicle(intent.VehicleID); err != nil {
		return nil, err
	}

	confirmed, err := w.intents.ConfirmOTP(intentID, otp)
	if err != nil {
		return nil, err
	}

	resp, err := w.gw.Initiate(ctx, &gateway.InitiateRequest{
		ReturnURL:         fmt.Sprintf("%s/payment-verification/%s", w.backendURL, confirmed.VehicleID),
		PurchaseOrderID:   confirmed.AssessmentID,
		Amount:            int64(math.Round(confirmed.Amount * 100)),
		WebsiteURL:        w.websiteURL,
		PurchaseOrderName: fmt.Sprintf("Bluebook-Tax-%s", confirmed.AssessmentID),
	})
	if err != nil {
		return nil, err
	}

	if err := w.intents.AttachGatewayReference(intentID, resp.Pidx); err != nil {
		return nil, err
	}

	return &PaymentRedirect{
		Reference:  resp.Pidx,
		PaymentURL: resp.PaymentURL,
		ExpiresAt:  resp.ExpiresAt,
	}, nil
}

// CompleteAndVerify reconciles a gateway redirect for a verified vehicle
func (w *PaymentWorkflow) CompleteAndVerify(ctx context.Context, reference, vehicleID string) (*VerificationResult, error) {
	if _, err := w.verifiedVehicle(vehicleID); err != nil {
		return nil, err
	}
	return w.reconciler.Verify(ctx, reference, vehicleID)
}
