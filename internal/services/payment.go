package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/bluebook-nepal/bluebook-backend/internal/models"
	"github.com/bluebook-nepal/bluebook-backend/internal/storage"
	"github.com/bluebook-nepal/bluebook-backend/internal/utils"
)

const (
	// OTPValidity is how long a payment OTP stays usable after issuance
	OTPValidity = 5 * time.Minute
	// GuardWindow is how long a non-terminal intent blocks a new payment
	// attempt for the same user and vehicle
	GuardWindow = 5 * time.Minute
)

// PaymentIntentService owns intent creation, the duplicate-in-flight
// guard, and OTP issuance and validation
type PaymentIntentService struct {
	store storage.Store
}

// NewPaymentIntentService creates a new payment intent service
func NewPaymentIntentService(store storage.Store) *PaymentIntentService {
	return &PaymentIntentService{store: store}
}

// CreateIntent creates a pending intent with a fresh 6-digit OTP. The
// amount is frozen from the assessment. ErrDuplicateInProgress is returned
// when another non-terminal intent for the same user and vehicle was
// created inside the guard window; the store enforces that atomically.
func (s *PaymentIntentService) CreateIntent(userID, vehicleID, method string, assessment *models.TaxAssessment) (*models.PaymentIntent, error) {
	otp, err := utils.GenerateSecureOTP()
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP: %w", err)
	}

	expiresAt := time.Now().Add(OTPValidity)
	intent := &models.PaymentIntent{
		VehicleID:     vehicleID,
		UserID:        userID,
		AssessmentID:  assessment.AssessmentID,
		PaymentMethod: method,
		Amount:        assessment.TotalAmount,
		OTP:           otp,
		OTPExpiresAt:  &expiresAt,
		PaymentStatus: models.PaymentStatusPending,
	}

	created, err := s.store.CreateIntentIfNoneActive(intent, GuardWindow)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateIntent) {
			return nil, ErrDuplicateInProgress
		}
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	return created, nil
}

// ConfirmOTP validates the submitted code against the intent. On success
// the OTP is cleared and the intent moves to confirmed.
func (s *PaymentIntentService) ConfirmOTP(intentID, otp string) (*models.PaymentIntent, error) {
	if intentID == "" || !utils.IsSixDigitCode(otp) {
		return nil, fmt.Errorf("%w: OTP must be a 6-digit number", ErrValidation)
	}

	intent, err := s.store.GetIntent(intentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if intent.PaymentStatus == models.PaymentStatusPaid {
		return nil, ErrAlreadyPaid
	}
	if intent.OTP == "" {
		return nil, ErrOTPMissing
	}
	if intent.OTP != otp {
		return nil, ErrOTPMismatch
	}
	if intent.OTPExpiresAt == nil || time.Now().After(*intent.OTPExpiresAt) {
		return nil, ErrOTPExpired
	}

	// Conditional pending → confirmed transition; a concurrent confirm of
	// the same intent loses here rather than double-applying.
	if err := s.store.ConfirmIntent(intentID); err != nil {
		if errors.Is(err, storage.ErrStaleState) {
			return nil, ErrInvalidState
		}
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	intent.PaymentStatus = models.PaymentStatusConfirmed
	intent.OTP = ""
	intent.OTPExpiresAt = nil
	return intent, nil
}

// AttachGatewayReference records the gateway-assigned reference on a
// confirmed intent. Allowed exactly once; any other state is rejected.
func (s *PaymentIntentService) AttachGatewayReference(intentID, reference string) error {
	if reference == "" {
		return fmt.Errorf("%w: missing gateway reference", ErrValidation)
	}
	err := s.store.AttachIntentReference(intentID, reference)
	if errors.Is(err, storage.ErrStaleState) {
		return ErrInvalidState
	}
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
