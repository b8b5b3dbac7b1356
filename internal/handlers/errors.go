package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/bluebook-nepal/bluebook-backend/internal/gateway"
	"github.com/bluebook-nepal/bluebook-backend/internal/services"
	"github.com/bluebook-nepal/bluebook-backend/internal/storage"
)

// respondError maps domain errors to HTTP responses. Domain and validation
// failures carry precise user-facing reasons; anything unexpected becomes a
// generic 500 without leaking internals.
func respondError(c *fiber.Ctx, err error) error {
	type mapping struct {
		target  error
		status  int
		message string
	}

	mappings := []mapping{
		{services.ErrTargetNotVerified, fiber.StatusBadRequest,
			"Your bluebook is not verified yet. Please wait for admin verification before making payment."},
		{services.ErrNotDue, fiber.StatusBadRequest,
			"Tax payment is not due yet. You can pay when there are less than 30 days remaining."},
		{services.ErrDuplicateInProgress, fiber.StatusBadRequest,
			"You already have a payment in progress. Please complete the existing payment or wait 5 minutes before trying again."},
		{services.ErrOTPMissing, fiber.StatusBadRequest,
			"No OTP found for this payment. Please initiate payment again."},
		{services.ErrOTPMismatch, fiber.StatusBadRequest,
			"Invalid OTP. Please check and try again."},
		{services.ErrOTPExpired, fiber.StatusBadRequest,
			"OTP has expired. Please initiate payment again."},
		{services.ErrAlreadyPaid, fiber.StatusBadRequest,
			"Payment is already confirmed."},
		{services.ErrPaymentNotCompleted, fiber.StatusBadRequest,
			"Payment was not completed. Please try the payment again."},
		{services.ErrInvalidState, fiber.StatusConflict,
			"Payment is not in a valid state for this operation."},
		{services.ErrNotFound, fiber.StatusNotFound,
			"Record not found."},
		{storage.ErrNotFound, fiber.StatusNotFound,
			"Record not found."},
		{gateway.ErrPaymentNotFound, fiber.StatusNotFound,
			"Payment not found."},
		{gateway.ErrUnavailable, fiber.StatusBadRequest,
			"Payment gateway is temporarily unavailable. Please try again in a few minutes."},
		{gateway.ErrRejected, fiber.StatusBadRequest,
			"Invalid payment request. Please check your details and try again."},
	}

	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(fiber.Map{"message": m.message, "meta": nil})
		}
	}
	if errors.Is(err, services.ErrValidation) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error(), "meta": nil})
	}

	log.Printf("Unexpected error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Something went wrong. Please try again later.",
		"meta":    nil,
	})
}
