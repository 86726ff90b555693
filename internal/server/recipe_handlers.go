// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"larder/internal/models"
	"larder/internal/service"

	"github.com/gofiber/fiber/v2"
)

// recipeRequest is the JSON shape of the "recipe" multipart field (or a plain
// JSON body when no images accompany the submit).
type recipeRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	PrepTime    uint     `json:"prep_time"`
	CookTime    uint     `json:"cook_time"`
	Servings    uint     `json:"servings"`
	Ingredients []string `json:"ingredients"`
	Tags        []string `json:"tags"`
	Steps       []struct {
		Text     string  `json:"text"`
		ImageURL *string `json:"image_url"`
	} `json:"steps"`
	RemoveCover bool `json:"remove_cover"`
}

// ExploreRecipes handles GET /api/recipes?q=...&tag=a&tag=b
func (s *Server) ExploreRecipes(c *fiber.Ctx) error {
	ctx := c.Context()
	page := parsePagination(c, 20)

	list, err := s.recipeService.Explore(ctx, c.Query("q"), parseTagFilter(c), page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(list)
}

// parseTagFilter reads the active tag selection from repeated "tag" params,
// also accepting a comma-separated "tags" param.
func parseTagFilter(c *fiber.Ctx) []string {
	var tags []string
	for _, raw := range c.Context().QueryArgs().PeekMulti("tag") {
		if tag := strings.TrimSpace(string(raw)); tag != "" {
			tags = append(tags, tag)
		}
	}
	for _, raw := range strings.Split(c.Query("tags"), ",") {
		if tag := strings.TrimSpace(raw); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// GetRecipeTags handles GET /api/recipes/tags
func (s *Server) GetRecipeTags(c *fiber.Ctx) error {
	tags, err := s.recipeService.Tags(c.Context())
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{
		"tags": tags,
	})
}

// GetRecipe handles GET /api/recipes/:id
func (s *Server) GetRecipe(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	recipe, err := s.recipeService.Get(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(recipe)
}

// GetMyRecipes handles GET /api/recipes/mine?q=...
func (s *Server) GetMyRecipes(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	page := parsePagination(c, 20)

	list, err := s.recipeService.ListMine(c.Context(), userID, c.Query("q"), page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(list)
}

// CreateRecipe handles POST /api/recipes
func (s *Server) CreateRecipe(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	draft, err := s.parseDraft(c, 0)
	if err != nil {
		return nil
	}

	recipe, err := s.recipeService.Submit(c.UserContext(), userID, draft)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	s.publishFeedEvent(EventRecipeCreated, recipeSummary(recipe))

	return c.Status(fiber.StatusCreated).JSON(recipe)
}

// UpdateRecipe handles PUT /api/recipes/:id
func (s *Server) UpdateRecipe(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	draft, err := s.parseDraft(c, id)
	if err != nil {
		return nil
	}

	recipe, err := s.recipeService.Submit(c.UserContext(), userID, draft)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	s.publishFeedEvent(EventRecipeUpdated, recipeSummary(recipe))

	return c.JSON(recipe)
}

// DeleteRecipe handles DELETE /api/recipes/:id
func (s *Server) DeleteRecipe(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	if err := s.recipeService.Delete(c.Context(), userID, id); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	s.publishFeedEvent(EventRecipeDeleted, map[string]interface{}{
		"recipe_id":  id,
		"deleted_at": time.Now().UTC().Format(time.RFC3339Nano),
	})

	return c.SendStatus(fiber.StatusNoContent)
}

// parseDraft builds a recipe draft from the request. Submits with images use
// multipart/form-data (a "recipe" JSON field plus "cover" and "step_image_<i>"
// files); image-less submits may send plain JSON.
// On failure it writes a 400 response and returns errResponseWritten.
func (s *Server) parseDraft(c *fiber.Ctx, recipeID uint) (*service.RecipeDraft, error) {
	var req recipeRequest

	contentType := c.Get(fiber.HeaderContentType)
	multipartReq := strings.HasPrefix(contentType, fiber.MIMEMultipartForm)

	if multipartReq {
		raw := c.FormValue("recipe")
		if raw == "" {
			_ = models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Missing recipe field"))
			return nil, errResponseWritten
		}
		if err := json.Unmarshal([]byte(raw), &req); err != nil {
			_ = models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid recipe field"))
			return nil, errResponseWritten
		}
	} else if err := c.BodyParser(&req); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return nil, errResponseWritten
	}

	description := req.Description
	draft := &service.RecipeDraft{
		RecipeID:    recipeID,
		Title:       req.Title,
		Description: description,
		PrepTime:    req.PrepTime,
		CookTime:    req.CookTime,
		Servings:    req.Servings,
		Ingredients: req.Ingredients,
		Tags:        req.Tags,
	}
	for _, step := range req.Steps {
		draft.Steps = append(draft.Steps, service.DraftStep{
			Text:     step.Text,
			ImageURL: step.ImageURL,
		})
	}

	// Editing an existing recipe keeps its cover unless replaced or removed.
	if recipeID != 0 && !req.RemoveCover {
		existing, err := s.recipeService.Get(c.UserContext(), recipeID)
		if err == nil && existing.ImageURL != nil {
			draft.CoverURL = existing.ImageURL
		}
	}

	if !multipartReq {
		return draft, nil
	}

	if file, err := c.FormFile("cover"); err == nil {
		upload, upErr := readUpload(file)
		if upErr != nil {
			_ = models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Unable to read uploaded file"))
			return nil, errResponseWritten
		}
		draft.SetCover(upload)
	}

	for i := range draft.Steps {
		file, err := c.FormFile(fmt.Sprintf("step_image_%d", i))
		if err != nil {
			continue
		}
		upload, upErr := readUpload(file)
		if upErr != nil {
			_ = models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Unable to read uploaded file"))
			return nil, errResponseWritten
		}
		draft.SetStepImage(i, upload)
	}

	return draft, nil
}

func readUpload(file *multipart.FileHeader) (*service.Upload, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}

	return &service.Upload{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}

// mapServiceError translates service-layer errors into HTTP status codes.
func mapServiceError(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}

	switch appErr.Code {
	case "NOT_FOUND":
		return fiber.StatusNotFound
	case "VALIDATION_ERROR":
		return fiber.StatusBadRequest
	case "UNAUTHORIZED":
		return fiber.StatusUnauthorized
	case "FORBIDDEN":
		return fiber.StatusForbidden
	case "RATE_LIMITED":
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}
