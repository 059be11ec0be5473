package handler

import (
	"github.com/gofiber/fiber/v2"

	"viagens-crm/internal/domain"
	"viagens-crm/internal/middleware"
	"viagens-crm/internal/service/preferences"
)

type PreferencesHandler struct {
	prefsService preferences.Service
	validate     *Validator
}

func NewPreferencesHandler(prefsService preferences.Service, validate *Validator) *PreferencesHandler {
	return &PreferencesHandler{prefsService: prefsService, validate: validate}
}

func (h *PreferencesHandler) Get(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	prefs, err := h.prefsService.Get(c.Context(), userID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(prefs)
}

func (h *PreferencesHandler) Update(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var input domain.UpdatePreferencesInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if err := h.validate.Struct(input); err != nil {
		return err
	}

	prefs, err := h.prefsService.Update(c.Context(), userID, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(prefs)
}
