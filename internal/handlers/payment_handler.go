package handlers

import (
	"storefront/internal/apperr"
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PaymentHandler verifies client-reported payments.
type PaymentHandler struct {
	service  *services.PaymentService
	validate *validator.Validate
	log      *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *services.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{service: service, validate: validator.New(), log: log}
}

// RegisterRoutes registers the payment routes. router must require authentication.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/payments/upi/verify", h.HandleVerifyUPI)
}

// HandleVerifyUPI checks a UPI payment against the order and records it.
func (h *PaymentHandler) HandleVerifyUPI(c *fiber.Ctx) error {
	var req services.VerifyUPIRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	order, err := h.service.VerifyUPI(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		message := "Payment verification failed"
		if apperr.IsAmountMismatch(err) {
			message = "Amount mismatch"
		}
		status := statusFor(err)
		if status >= fiber.StatusInternalServerError {
			h.log.Error(message, zap.String("order_id", req.OrderID), zap.Error(err))
		}
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"message": message,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Payment verified",
		"order":   order,
	})
}
