package service

import (
	"testing"

	"larder/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNewRecipeDraft(t *testing.T) {
	d := NewRecipeDraft()
	assert.Equal(t, []string{""}, d.Ingredients)
	require.Len(t, d.Steps, 1)
	assert.Empty(t, d.Steps[0].Text)
}

func TestDraftListEditing(t *testing.T) {
	t.Run("removing the last ingredient is a no-op", func(t *testing.T) {
		d := NewRecipeDraft()
		d.RemoveIngredient(0)
		assert.Len(t, d.Ingredients, 1)
	})

	t.Run("removing the last step is a no-op", func(t *testing.T) {
		d := NewRecipeDraft()
		d.RemoveStep(0)
		assert.Len(t, d.Steps, 1)
	})

	t.Run("remove drops the indexed entry", func(t *testing.T) {
		d := NewRecipeDraft()
		d.Ingredients = []string{"flour", "water", "salt"}
		d.RemoveIngredient(1)
		assert.Equal(t, []string{"flour", "salt"}, d.Ingredients)
	})

	t.Run("out-of-range remove is a no-op", func(t *testing.T) {
		d := NewRecipeDraft()
		d.Ingredients = []string{"flour", "water"}
		d.RemoveIngredient(5)
		d.RemoveIngredient(-1)
		assert.Len(t, d.Ingredients, 2)
	})

	t.Run("removing a step removes its image with it", func(t *testing.T) {
		d := NewRecipeDraft()
		d.Steps = []DraftStep{
			{Text: "Chop", ImageURL: strPtr("/media/1/a.jpg")},
			{Text: "Boil"},
		}
		d.RemoveStep(0)
		require.Len(t, d.Steps, 1)
		assert.Equal(t, "Boil", d.Steps[0].Text)
		assert.Nil(t, d.Steps[0].ImageURL)
	})
}

func TestDraftImageStaging(t *testing.T) {
	t.Run("SetStepImage replaces the persisted image", func(t *testing.T) {
		d := NewRecipeDraft()
		d.Steps = []DraftStep{{Text: "Chop", ImageURL: strPtr("/media/1/old.jpg")}}
		up := &Upload{Filename: "new.jpg"}
		d.SetStepImage(0, up)
		assert.Same(t, up, d.Steps[0].Upload)
		assert.Nil(t, d.Steps[0].ImageURL)
	})

	t.Run("ClearStepImage drops both staged and persisted", func(t *testing.T) {
		d := NewRecipeDraft()
		d.Steps = []DraftStep{{Text: "Chop", ImageURL: strPtr("/media/1/old.jpg"), Upload: &Upload{}}}
		d.ClearStepImage(0)
		assert.Nil(t, d.Steps[0].Upload)
		assert.Nil(t, d.Steps[0].ImageURL)
	})

	t.Run("SetCover and ClearCover mirror step behavior", func(t *testing.T) {
		d := NewRecipeDraft()
		d.CoverURL = strPtr("/media/1/cover.jpg")
		up := &Upload{Filename: "cover.png"}
		d.SetCover(up)
		assert.Same(t, up, d.CoverUpload)
		assert.Nil(t, d.CoverURL)

		d.ClearCover()
		assert.Nil(t, d.CoverUpload)
	})
}

func TestDraftNormalize(t *testing.T) {
	t.Run("strips blank entries and trims text", func(t *testing.T) {
		d := NewRecipeDraft()
		d.Title = "  Dal  "
		d.Ingredients = []string{" lentils ", "", "  ", "water"}
		d.Steps = []DraftStep{
			{Text: "  Rinse  "},
			{Text: "   "},
			{Text: "", ImageURL: strPtr("/media/1/x.jpg")},
		}
		d.Tags = []string{"indian", " ", ""}

		d.Normalize()

		assert.Equal(t, "Dal", d.Title)
		assert.Equal(t, []string{"lentils", "water"}, d.Ingredients)
		require.Len(t, d.Steps, 2)
		assert.Equal(t, "Rinse", d.Steps[0].Text)
		assert.NotNil(t, d.Steps[1].ImageURL, "a step with only an image survives")
		assert.Equal(t, []string{"indian"}, d.Tags)
	})

	t.Run("is idempotent", func(t *testing.T) {
		d := NewRecipeDraft()
		d.Title = " Dal "
		d.Ingredients = []string{" lentils ", ""}
		d.Steps = []DraftStep{{Text: " Rinse "}, {Text: ""}}

		d.Normalize()
		first := *d
		firstIngredients := append([]string(nil), d.Ingredients...)
		firstSteps := append([]DraftStep(nil), d.Steps...)

		d.Normalize()
		assert.Equal(t, first.Title, d.Title)
		assert.Equal(t, firstIngredients, d.Ingredients)
		assert.Equal(t, firstSteps, d.Steps)
	})
}

func TestDraftFromRecipe(t *testing.T) {
	t.Run("prefills from step items", func(t *testing.T) {
		r := &models.Recipe{
			ID:          3,
			Title:       "Pho",
			Ingredients: models.StringList{"bones", "star anise"},
			StepItems: models.StepItemList{
				{Text: "Char onion", ImageURL: strPtr("/media/8/s.jpg")},
				{Text: "Simmer broth"},
			},
			Tags:     models.StringList{"vietnamese"},
			ImageURL: strPtr("/media/8/c.jpg"),
		}
		d := DraftFromRecipe(r)
		assert.Equal(t, uint(3), d.RecipeID)
		require.Len(t, d.Steps, 2)
		assert.Equal(t, "Char onion", d.Steps[0].Text)
		assert.Equal(t, "/media/8/s.jpg", *d.Steps[0].ImageURL)
		assert.Equal(t, "/media/8/c.jpg", *d.CoverURL)
	})

	t.Run("falls back to legacy steps", func(t *testing.T) {
		r := &models.Recipe{
			Title: "Toast",
			Steps: models.StringList{"Slice", "Toast"},
		}
		d := DraftFromRecipe(r)
		require.Len(t, d.Steps, 2)
		assert.Equal(t, "Slice", d.Steps[0].Text)
		assert.Nil(t, d.Steps[0].ImageURL)
	})

	t.Run("empty recipe yields minimum rows", func(t *testing.T) {
		d := DraftFromRecipe(&models.Recipe{Title: "Empty"})
		assert.Len(t, d.Ingredients, 1)
		assert.Len(t, d.Steps, 1)
	})
}
