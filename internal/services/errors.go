package services

import "errors"

// Domain error taxonomy for the payment lifecycle. Handlers map these to
// HTTP statuses and user-facing messages; anything else is reported as a
// generic failure without internal detail.
var (
	ErrValidation          = errors.New("invalid request")
	ErrTargetNotVerified   = errors.New("vehicle is not verified yet")
	ErrNotDue              = errors.New("tax payment is not due yet")
	ErrDuplicateInProgress = errors.New("a payment is already in progress")
	ErrOTPMissing          = errors.New("no OTP found for this payment")
	ErrOTPMismatch         = errors.New("invalid OTP")
	ErrOTPExpired          = errors.New("OTP has expired")
	ErrAlreadyPaid         = errors.New("payment is already confirmed")
	ErrPaymentNotCompleted = errors.New("payment was not completed")
	ErrNotFound            = errors.New("not found")
	ErrInvalidState        = errors.New("payment is not in a valid state for this operation")
)
