package server

import (
	"fmt"

	"larder/internal/export"
	"larder/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ExportRecipePDF handles GET /api/recipes/:id/export
func (s *Server) ExportRecipePDF(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	recipe, err := s.recipeService.Get(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	pdf, err := export.RecipePDF(recipe)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", export.Filename(recipe)))
	return c.Send(pdf)
}
