package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"larder/internal/cache"
	"larder/internal/middleware"
	"larder/internal/models"
	"larder/internal/observability"
	"larder/internal/repository"
	"larder/internal/search"
	"larder/internal/storage"
	"larder/internal/validation"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// RecipeService implements recipe submission, listing and retrieval on top of
// the repository and object store.
type RecipeService struct {
	recipes  repository.RecipeRepository
	users    repository.UserRepository
	store    storage.ObjectStore
	maxBytes int64
}

// NewRecipeService creates a new recipe service. maxUploadBytes bounds a
// single staged image; zero disables the check.
func NewRecipeService(recipes repository.RecipeRepository, users repository.UserRepository, store storage.ObjectStore, maxUploadBytes int64) *RecipeService {
	return &RecipeService{
		recipes:  recipes,
		users:    users,
		store:    store,
		maxBytes: maxUploadBytes,
	}
}

// Submit normalizes the draft, resolves all staged uploads and persists the
// recipe in a single row write. Step uploads run concurrently and are joined
// before anything touches the database; if any of them fails the write is
// abandoned and already-written objects are reported as orphans.
func (s *RecipeService) Submit(ctx context.Context, userID uint, draft *RecipeDraft) (*models.Recipe, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	draft.Normalize()
	if err := validation.ValidateRecipeTitle(draft.Title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	for _, tag := range draft.Tags {
		if err := validation.ValidateTag(tag); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}

	var existing *models.Recipe
	if draft.RecipeID != 0 {
		found, err := s.ownedRecipe(ctx, userID, draft.RecipeID)
		if err != nil {
			return nil, err
		}
		existing = found
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	// Written object keys, kept so a failed submission can report what it
	// left behind in storage.
	var mu sync.Mutex
	var writtenKeys []string

	// Cover first: its URL feeds the row directly. A staged cover that fails
	// to upload aborts the whole submission; the previous cover survives an
	// edit only when no new file was staged.
	coverURL := draft.CoverURL
	if draft.CoverUpload != nil {
		url, key, upErr := s.uploadOne(ctx, userID, draft.CoverUpload, "cover")
		switch {
		case upErr == nil:
			coverURL = &url
			writtenKeys = append(writtenKeys, key)
		case isImageError(upErr):
			return nil, models.NewValidationError(upErr.Error())
		default:
			observability.ImageUploadFailures.WithLabelValues("cover").Inc()
			s.reportOrphans(ctx, writtenKeys, upErr)
			return nil, models.NewInternalError(fmt.Errorf("cover image: %w", upErr))
		}
	}

	// Step uploads fan out concurrently and join before the row write.
	stepURLs := make([]*string, len(draft.Steps))
	g, gctx := errgroup.WithContext(ctx)
	for i, step := range draft.Steps {
		if step.Upload == nil {
			stepURLs[i] = step.ImageURL
			continue
		}
		i, up := i, step.Upload
		g.Go(func() error {
			url, key, upErr := s.uploadOne(gctx, userID, up, "step")
			if upErr != nil {
				observability.ImageUploadFailures.WithLabelValues("step").Inc()
				return fmt.Errorf("step %d image: %w", i+1, upErr)
			}
			mu.Lock()
			stepURLs[i] = &url
			writtenKeys = append(writtenKeys, key)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.reportOrphans(ctx, writtenKeys, err)
		if isImageError(err) {
			return nil, models.NewValidationError(err.Error())
		}
		return nil, models.NewInternalError(err)
	}

	recipe := s.buildRecipe(draft, userID, user.Username, coverURL, stepURLs)

	if existing != nil {
		recipe.ID = existing.ID
		recipe.CreatedAt = existing.CreatedAt
		if err := s.recipes.Update(ctx, recipe); err != nil {
			s.reportOrphans(ctx, writtenKeys, err)
			return nil, models.NewInternalError(err)
		}
	} else {
		if err := s.recipes.Create(ctx, recipe); err != nil {
			s.reportOrphans(ctx, writtenKeys, err)
			return nil, models.NewInternalError(err)
		}
	}

	return recipe, nil
}

// uploadOne validates, re-encodes and stores a single staged upload. It
// returns the public URL of the JPEG master and the key it was written under.
func (s *RecipeService) uploadOne(ctx context.Context, userID uint, up *Upload, kind string) (string, string, error) {
	done := observability.TrackUpload(kind)
	defer done()

	processed, err := storage.ProcessImage(up.Content, up.ContentType, s.maxBytes)
	if err != nil {
		return "", "", err
	}

	var key string
	if kind == "cover" {
		key = storage.CoverKey(userID, "jpg")
	} else {
		key = storage.StepKey(userID, "jpg")
	}

	url, err := s.store.Put(ctx, key, processed.JPEG)
	if err != nil {
		return "", "", err
	}
	// The WebP rendition is best-effort; the JPEG master is canonical.
	if _, werr := s.store.Put(ctx, storage.WebPKey(key), processed.WebP); werr != nil {
		middleware.Logger.WarnContext(ctx, "webp rendition write failed",
			"key", key, "error", werr)
	}
	return url, key, nil
}

func (s *RecipeService) buildRecipe(draft *RecipeDraft, userID uint, username string, coverURL *string, stepURLs []*string) *models.Recipe {
	stepItems := make(models.StepItemList, len(draft.Steps))
	legacySteps := make(models.StringList, len(draft.Steps))
	for i, step := range draft.Steps {
		stepItems[i] = models.StepItem{Text: step.Text, ImageURL: stepURLs[i]}
		legacySteps[i] = step.Text
	}

	var description *string
	if draft.Description != "" {
		d := draft.Description
		description = &d
	}

	return &models.Recipe{
		Title:       draft.Title,
		Description: description,
		Ingredients: models.StringList(draft.Ingredients),
		Steps:       legacySteps,
		StepItems:   stepItems,
		Tags:        models.StringList(draft.Tags),
		ImageURL:    coverURL,
		PrepTime:    draft.PrepTime,
		CookTime:    draft.CookTime,
		Servings:    draft.Servings,
		UserID:      userID,
		AuthorName:  username,
	}
}

// reportOrphans records objects written by an abandoned submission. They are
// inventoried, not collected; the keys stay in storage for manual cleanup.
func (s *RecipeService) reportOrphans(ctx context.Context, keys []string, cause error) {
	if len(keys) == 0 {
		return
	}
	observability.OrphanedUploads.Add(float64(len(keys)))
	middleware.Logger.WarnContext(ctx, "submission abandoned, uploaded objects orphaned",
		"keys", keys, "error", cause)
}

// Get returns a single recipe by ID.
func (s *RecipeService) Get(ctx context.Context, id uint) (*models.Recipe, error) {
	recipe, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Recipe", id)
		}
		return nil, models.NewInternalError(err)
	}
	return recipe, nil
}

// RecipeList is a page of recipes plus the counts a client needs to tell
// "nothing exists" apart from "nothing matches the current filter".
type RecipeList struct {
	Recipes []*models.Recipe `json:"recipes"`
	Total   int              `json:"total"`
	Matched int              `json:"matched"`
}

// ListMine returns the caller's recipes, newest first, optionally narrowed by
// a free-text query. Collections are small enough to filter in memory.
func (s *RecipeService) ListMine(ctx context.Context, userID uint, query string, limit, offset int) (*RecipeList, error) {
	all, err := s.recipes.ListByOwner(ctx, userID, 0, 0)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	filtered := all
	if query != "" {
		filtered = make([]*models.Recipe, 0, len(all))
		for _, r := range all {
			if search.MatchesText(r, query) {
				filtered = append(filtered, r)
			}
		}
	}

	return &RecipeList{
		Recipes: paginate(filtered, limit, offset),
		Total:   len(all),
		Matched: len(filtered),
	}, nil
}

// Explore returns the public feed, optionally narrowed by a free-text query
// and a tag selection. Filtering happens in memory over the full set, so
// pagination applies to the filtered result.
func (s *RecipeService) Explore(ctx context.Context, query string, tags []string, limit, offset int) (*RecipeList, error) {
	unfiltered := query == "" && len(tags) == 0

	// The unfiltered first page is the hot path and worth caching.
	if unfiltered && offset == 0 && limit > 0 {
		var list RecipeList
		err := cache.Aside(ctx, cache.ExploreKey, &list, cache.ExploreTTL, func() error {
			page, ferr := s.recipes.ListAll(ctx, limit, 0)
			if ferr != nil {
				return ferr
			}
			total, ferr := s.recipes.Count(ctx)
			if ferr != nil {
				return ferr
			}
			list = RecipeList{Recipes: page, Total: int(total), Matched: int(total)}
			return nil
		})
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		return &list, nil
	}

	if unfiltered {
		recipes, err := s.recipes.ListAll(ctx, limit, offset)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		total, err := s.recipes.Count(ctx)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		return &RecipeList{Recipes: recipes, Total: int(total), Matched: int(total)}, nil
	}

	// A text-only query pushes the substring match down to SQL; tag
	// selections need the exact AND semantics of the in-memory filter.
	if len(tags) == 0 {
		matches, err := s.recipes.Search(ctx, query, 0, 0)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		total, err := s.recipes.Count(ctx)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		return &RecipeList{
			Recipes: paginate(matches, limit, offset),
			Total:   int(total),
			Matched: len(matches),
		}, nil
	}

	all, err := s.recipes.ListAll(ctx, 0, 0)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	filtered := search.Filter(all, query, tags)

	return &RecipeList{
		Recipes: paginate(filtered, limit, offset),
		Total:   len(all),
		Matched: len(filtered),
	}, nil
}

func paginate(recipes []*models.Recipe, limit, offset int) []*models.Recipe {
	if offset >= len(recipes) {
		return []*models.Recipe{}
	}
	recipes = recipes[offset:]
	if limit > 0 && limit < len(recipes) {
		recipes = recipes[:limit]
	}
	return recipes
}

// Tags returns the distinct tags across all recipes, sorted alphabetically.
func (s *RecipeService) Tags(ctx context.Context) ([]string, error) {
	var tags []string
	err := cache.Aside(ctx, cache.TagsKey, &tags, cache.TagsTTL, func() error {
		all, ferr := s.recipes.ListAll(ctx, 0, 0)
		if ferr != nil {
			return ferr
		}
		tags = search.CollectTags(all)
		return nil
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

// Delete removes a recipe owned by the caller. Stored images are left behind
// and inventoried as orphans.
func (s *RecipeService) Delete(ctx context.Context, userID, id uint) error {
	if _, err := s.ownedRecipe(ctx, userID, id); err != nil {
		return err
	}
	if err := s.recipes.Delete(ctx, id); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *RecipeService) ownedRecipe(ctx context.Context, userID, id uint) (*models.Recipe, error) {
	recipe, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Recipe", id)
		}
		return nil, models.NewInternalError(err)
	}
	if recipe.UserID != userID {
		return nil, models.NewForbiddenError("You do not own this recipe")
	}
	return recipe, nil
}

func isImageError(err error) bool {
	var imgErr *storage.ImageError
	return errors.As(err, &imgErr)
}
