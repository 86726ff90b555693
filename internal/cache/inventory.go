package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix   = "user:%d"
	RecipeKeyPrefix = "recipe:%d"
	ExploreKey      = "recipes:explore"
	TagsKey         = "recipes:tags"
)

const (
	UserTTL    = 5 * time.Minute
	RecipeTTL  = 30 * time.Minute
	ExploreTTL = 1 * time.Minute
	TagsTTL    = 5 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func RecipeKey(recipeID uint) string {
	return fmt.Sprintf(RecipeKeyPrefix, recipeID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidateRecipe drops the recipe entry plus the shared feed and tag caches,
// which both derive from recipe rows.
func InvalidateRecipe(ctx context.Context, recipeID uint) {
	Invalidate(ctx, RecipeKey(recipeID))
	Invalidate(ctx, ExploreKey)
	Invalidate(ctx, TagsKey)
}
