package handlers

import (
	"time"

	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service    *services.OrderService
	sessionTTL time.Duration
	validate   *validator.Validate
	log        *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, sessionTTL time.Duration, log *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service:    service,
		sessionTTL: sessionTTL,
		validate:   validator.New(),
		log:        log,
	}
}

// RegisterRoutes registers the customer order routes. router must require authentication.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleListMyOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/", middleware.CartSession(h.sessionTTL), h.HandlePlaceOrder)
}

// RegisterAdminRoutes registers the order management routes. router must enforce the admin role.
func (h *OrderHandler) RegisterAdminRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleListAllOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Patch("/:id/deliver", h.HandleMarkDelivered)
	orderRoutes.Patch("/:id/pay", h.HandleMarkPaid)
}

// HandlePlaceOrder turns the caller's cart into an order.
func (h *OrderHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	var req services.PlaceOrderRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	order, err := h.service.PlaceOrder(c.UserContext(), middleware.UserID(c), middleware.SessionID(c), req)
	if err != nil {
		return respondError(c, h.log, "Could not create order", err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleGetOrderByID retrieves a single order. Customers only see their own orders.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.UserContext(), c.Params("id"), middleware.UserID(c), middleware.IsAdmin(c))
	if err != nil {
		return respondError(c, h.log, "Could not retrieve order", err)
	}
	return c.JSON(order)
}

// HandleListMyOrders lists the caller's orders, newest first.
func (h *OrderHandler) HandleListMyOrders(c *fiber.Ctx) error {
	list, err := h.service.ListOrders(c.UserContext(), middleware.UserID(c), c.QueryInt("page", 1), c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, h.log, "Could not retrieve orders", err)
	}
	return c.JSON(list)
}

// HandleListAllOrders lists every order for the admin panel.
func (h *OrderHandler) HandleListAllOrders(c *fiber.Ctx) error {
	list, err := h.service.ListOrders(c.UserContext(), "", c.QueryInt("page", 1), c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, h.log, "Could not retrieve orders", err)
	}
	return c.JSON(list)
}

// HandleMarkDelivered records delivery of an order.
func (h *OrderHandler) HandleMarkDelivered(c *fiber.Ctx) error {
	order, err := h.service.MarkDelivered(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, "Could not update order", err)
	}
	return c.JSON(order)
}

// HandleMarkPaid records a cash payment for an order.
func (h *OrderHandler) HandleMarkPaid(c *fiber.Ctx) error {
	order, err := h.service.MarkPaid(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, "Could not update order", err)
	}
	return c.JSON(order)
}
