package handlers

import (
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SettingHandler exposes the site settings.
type SettingHandler struct {
	service *services.SettingService
	log     *zap.Logger
}

// NewSettingHandler creates a new SettingHandler.
func NewSettingHandler(service *services.SettingService, log *zap.Logger) *SettingHandler {
	return &SettingHandler{service: service, log: log}
}

// RegisterRoutes registers the public settings route.
func (h *SettingHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/settings", h.HandleGetSettings)
}

// RegisterAdminRoutes registers the settings editor routes. router must enforce the admin role.
func (h *SettingHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/settings", h.HandleGetSettings)
	router.Put("/settings", h.HandleUpdateSettings)
}

// HandleGetSettings returns the current settings.
func (h *SettingHandler) HandleGetSettings(c *fiber.Ctx) error {
	setting, err := h.service.Get(c.UserContext())
	if err != nil {
		return respondError(c, h.log, "Could not retrieve settings", err)
	}
	return c.JSON(setting)
}

// HandleUpdateSettings replaces the settings. Validation happens in the service.
func (h *SettingHandler) HandleUpdateSettings(c *fiber.Ctx) error {
	var setting models.Setting
	if ok, err := parseBody(c, nil, &setting); !ok {
		return err
	}

	saved, err := h.service.Update(c.UserContext(), setting)
	if err != nil {
		return respondError(c, h.log, "Could not update settings", err)
	}
	return c.JSON(saved)
}
