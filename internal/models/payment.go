package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentIntent statuses. "paid" is the only successful terminal state;
// a pending intent is superseded naturally once its guard window lapses.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusConfirmed = "confirmed"
	PaymentStatusPaid      = "paid"
	PaymentStatusFailed    = "failed"
)

// PaymentIntent is one attempt to pay the tax on a vehicle. Amount and
// GatewayReference are write-once: amount is frozen at creation from the
// assessment, the reference is attached exactly once after OTP confirmation.
type PaymentIntent struct {
	gorm.Model
	IntentID         string     `json:"intent_id" gorm:"uniqueIndex"`
	VehicleID        string     `json:"vehicle_id" gorm:"index;not null"`
	UserID           string     `json:"user_id" gorm:"index;not null"`
	AssessmentID     string     `json:"assessment_id"`
	PaymentMethod    string     `json:"payment_method"`
	Amount           float64    `json:"amount"`
	OTP              string     `json:"-"` // cleared on confirmation
	OTPExpiresAt     *time.Time `json:"-"`
	GatewayReference string     `json:"gateway_reference" gorm:"index"`
	TransactionID    string     `json:"transaction_id"`
	PaymentStatus    string     `json:"payment_status" gorm:"default:pending;index"`
	PaidAt           *time.Time `json:"paid_at"`
}

func (p *PaymentIntent) BeforeCreate(tx *gorm.DB) error {
	if p.IntentID == "" {
		p.IntentID = uuid.NewString()
	}
	return nil
}

// Terminal reports whether the intent can no longer progress and so does
// not count against the duplicate-in-flight guard.
func (p *PaymentIntent) Terminal() bool {
	return p.PaymentStatus == PaymentStatusPaid || p.PaymentStatus == PaymentStatusFailed
}
