package handlers

import (
	"time"

	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CartHandler serves the session cart.
type CartHandler struct {
	service    *services.CartService
	sessionTTL time.Duration
	validate   *validator.Validate
	log        *zap.Logger
}

// NewCartHandler creates a new CartHandler. sessionTTL bounds the cart_session cookie.
func NewCartHandler(service *services.CartService, sessionTTL time.Duration, log *zap.Logger) *CartHandler {
	return &CartHandler{
		service:    service,
		sessionTTL: sessionTTL,
		validate:   validator.New(),
		log:        log,
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart", middleware.CartSession(h.sessionTTL))
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Patch("/items/:clientId", h.HandleUpdateItem)
	cartRoutes.Delete("/items/:clientId", h.HandleRemoveItem)
}

// UpdateItemRequest is the body of PATCH /cart/items/:clientId. Zero removes the line.
type UpdateItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// HandleGetCart returns the session's cart.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	view, err := h.service.GetCart(c.UserContext(), middleware.SessionID(c), c.Query("currency"))
	if err != nil {
		return respondError(c, h.log, "Could not retrieve cart", err)
	}
	return c.JSON(view)
}

// HandleAddItem adds a product variant to the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req services.AddItemRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	change, err := h.service.AddItem(c.UserContext(), middleware.SessionID(c), req, c.Query("currency"))
	if err != nil {
		return respondError(c, h.log, "Could not add item to cart", err)
	}
	return c.Status(fiber.StatusCreated).JSON(change)
}

// HandleUpdateItem sets the quantity of a cart line.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req UpdateItemRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	change, err := h.service.UpdateItem(c.UserContext(), middleware.SessionID(c), c.Params("clientId"), req.Quantity, c.Query("currency"))
	if err != nil {
		return respondError(c, h.log, "Could not update cart item", err)
	}
	return c.JSON(change)
}

// HandleRemoveItem removes a cart line.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	view, err := h.service.RemoveItem(c.UserContext(), middleware.SessionID(c), c.Params("clientId"), c.Query("currency"))
	if err != nil {
		return respondError(c, h.log, "Could not remove cart item", err)
	}
	return c.JSON(view)
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	if err := h.service.ClearCart(c.UserContext(), middleware.SessionID(c)); err != nil {
		return respondError(c, h.log, "Could not clear cart", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
