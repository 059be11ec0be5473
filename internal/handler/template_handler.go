package handler

import (
	"github.com/gofiber/fiber/v2"

	"viagens-crm/internal/domain"
	"viagens-crm/internal/middleware"
	"viagens-crm/internal/service/templates"
)

type TemplateHandler struct {
	templateService templates.Service
}

func NewTemplateHandler(templateService templates.Service) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// Preview renders a template with caller-supplied variables, or generated
// samples when the body is empty. Nothing is queued or sent.
func (h *TemplateHandler) Preview(c *fiber.Ctx) error {
	templateType := c.Params("type")
	if templateType == "" {
		return middleware.BadRequest("Missing template type")
	}

	var vars domain.Variables
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&vars); err != nil {
			return middleware.BadRequest("Invalid variables payload")
		}
	}

	rendered, err := h.templateService.Preview(c.Context(), templateType, vars)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(rendered)
}
