package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bluebook-nepal/bluebook-backend/internal/gateway"
	"github.com/bluebook-nepal/bluebook-backend/internal/middleware"
	"github.com/bluebook-nepal/bluebook-backend/internal/services"
)

// PaymentHandler exposes the tax payment lifecycle over HTTP
type PaymentHandler struct {
	workflow *services.PaymentWorkflow
	demo     *gateway.DemoGateway // nil when running against the live gateway
}

// NewPaymentHandler creates a new payment handler. demo may be nil.
func NewPaymentHandler(workflow *services.PaymentWorkflow, demo *gateway.DemoGateway) *PaymentHandler {
	return &PaymentHandler{workflow: workflow, demo: demo}
}

type payTaxRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

// PayTax computes the tax for a vehicle and opens an OTP-gated payment
// intent. POST /api/payment/:id
func (h *PaymentHandler) PayTax(c *fiber.Ctx) error {
	vehicleID := c.Params("id")
	user := middleware.AuthUser(c)

	var req payTaxRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body.",
			"meta":    nil,
		})
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = "khalti"
	}

	result, err := h.workflow.RequestPayment(c.Context(), user, vehicleID, req.PaymentMethod)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"result":  result,
		"message": "Payment initiated. An OTP has been sent to confirm the payment.",
		"meta":    nil,
	})
}

type verifyOTPRequest struct {
	PaymentID string `json:"paymentId"`
	OTP       string `json:"otp"`
}

// VerifyOTP confirms the payment OTP and returns the gateway redirect.
// POST /api/payment/verify-otp
func (h *PaymentHandler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil || req.PaymentID == "" || req.OTP == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Payment ID and OTP are required.",
			"meta":    nil,
		})
	}

	redirect, err := h.workflow.ConfirmPayment(c.Context(), req.PaymentID, req.OTP)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"payment": fiber.Map{
			"paymentUrl": redirect.PaymentURL,
			"expiresAt":  redirect.ExpiresAt,
			"pidx":       redirect.Reference,
		},
		"message": "Payment confirmed successfully.",
		"meta":    nil,
	})
}

type verifyTransactionRequest struct {
	Pidx string `json:"pidx"`
}

// VerifyTransaction reconciles a gateway redirect and commits the renewal.
// POST /api/payment/verify/:id
func (h *PaymentHandler) VerifyTransaction(c *fiber.Ctx) error {
	vehicleID := c.Params("id")

	var req verifyTransactionRequest
	if err := c.BodyParser(&req); err != nil || req.Pidx == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Payment verification failed: Missing transaction details. Please try again.",
			"meta":    nil,
		})
	}

	result, err := h.workflow.CompleteAndVerify(c.Context(), req.Pidx, vehicleID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"result":  result,
		"message": "Transaction is verified successfully",
		"meta":    nil,
	})
}

// CompleteDemoPayment marks a demo payment as completed, for testing.
// POST /api/payment/demo/complete
func (h *PaymentHandler) CompleteDemoPayment(c *fiber.Ctx) error {
	if h.demo == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Demo payments are not enabled.",
			"meta":    nil,
		})
	}

	var req verifyTransactionRequest
	if err := c.BodyParser(&req); err != nil || req.Pidx == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "PIDX is required.",
			"meta":    nil,
		})
	}

	if err := h.demo.Complete(req.Pidx); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Demo payment completed successfully",
		"pidx":    req.Pidx,
	})
}
