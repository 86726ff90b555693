package repository

import (
	"context"

	"larder/internal/cache"
	"larder/internal/models"
	"larder/internal/observability"

	"gorm.io/gorm"
)

// RecipeRepository defines the interface for recipe data operations
type RecipeRepository interface {
	Create(ctx context.Context, recipe *models.Recipe) error
	GetByID(ctx context.Context, id uint) (*models.Recipe, error)
	Count(ctx context.Context) (int64, error)
	// ListByOwner returns one user's recipes newest first. A non-positive
	// limit disables pagination.
	ListByOwner(ctx context.Context, userID uint, limit, offset int) ([]*models.Recipe, error)
	// ListAll returns recipes newest first. A non-positive limit disables
	// pagination, which the feed uses when it filters in memory.
	ListAll(ctx context.Context, limit, offset int) ([]*models.Recipe, error)
	// Search returns recipes whose title or description contains query,
	// case-insensitively, newest first. A non-positive limit disables
	// pagination.
	Search(ctx context.Context, query string, limit, offset int) ([]*models.Recipe, error)
	Update(ctx context.Context, recipe *models.Recipe) error
	Delete(ctx context.Context, id uint) error
}

// recipeRepository implements RecipeRepository
type recipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	defer observability.TrackQuery("create", "recipes")()
	err := r.db.WithContext(ctx).Create(recipe).Error
	if err == nil {
		cache.Invalidate(ctx, cache.ExploreKey)
		cache.Invalidate(ctx, cache.TagsKey)
	}
	return err
}

func (r *recipeRepository) GetByID(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := cache.Aside(ctx, cache.RecipeKey(id), &recipe, cache.RecipeTTL, func() error {
		defer observability.TrackQuery("get_by_id", "recipes")()
		return r.db.WithContext(ctx).Preload("User").First(&recipe, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) Count(ctx context.Context) (int64, error) {
	defer observability.TrackQuery("count", "recipes")()
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Recipe{}).Count(&n).Error
	return n, err
}

func (r *recipeRepository) ListByOwner(ctx context.Context, userID uint, limit, offset int) ([]*models.Recipe, error) {
	defer observability.TrackQuery("list_by_owner", "recipes")()
	var recipes []*models.Recipe
	q := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	err := q.Find(&recipes).Error
	return recipes, err
}

func (r *recipeRepository) ListAll(ctx context.Context, limit, offset int) ([]*models.Recipe, error) {
	defer observability.TrackQuery("list_all", "recipes")()
	var recipes []*models.Recipe
	q := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	err := q.Find(&recipes).Error
	return recipes, err
}

func (r *recipeRepository) Search(ctx context.Context, query string, limit, offset int) ([]*models.Recipe, error) {
	defer observability.TrackQuery("search", "recipes")()
	var recipes []*models.Recipe
	like := "%" + query + "%"
	q := r.db.WithContext(ctx).
		Preload("User").
		Where("title ILIKE ? OR description ILIKE ?", like, like).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	err := q.Find(&recipes).Error
	return recipes, err
}

func (r *recipeRepository) Update(ctx context.Context, recipe *models.Recipe) error {
	defer observability.TrackQuery("update", "recipes")()
	if err := r.db.WithContext(ctx).Save(recipe).Error; err != nil {
		return err
	}
	cache.InvalidateRecipe(ctx, recipe.ID)
	return nil
}

func (r *recipeRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "recipes")()
	if err := r.db.WithContext(ctx).Delete(&models.Recipe{}, id).Error; err != nil {
		return err
	}
	cache.InvalidateRecipe(ctx, id)
	return nil
}
