// Package service contains the recipe domain logic: draft editing, staged
// image uploads and submission.
package service

import (
	"strings"

	"larder/internal/models"
)

// Upload is a file staged in a draft but not yet written to storage.
type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// DraftStep is one instruction entry while composing. Text and image travel
// together so reordering or removing a step can never detach its image.
type DraftStep struct {
	Text string
	// ImageURL is an already-persisted image kept from a previous save.
	ImageURL *string
	// Upload is a newly staged image that replaces ImageURL on submit.
	Upload *Upload
}

// RecipeDraft is the editable state of the composer. Lists always hold at
// least one entry so the form never collapses to nothing.
type RecipeDraft struct {
	RecipeID    uint // zero for a new recipe
	Title       string
	Description string
	PrepTime    uint
	CookTime    uint
	Servings    uint
	Ingredients []string
	Steps       []DraftStep
	Tags        []string

	// CoverURL is the persisted cover kept from a previous save; CoverUpload
	// is a newly staged cover that replaces it on submit.
	CoverURL    *string
	CoverUpload *Upload
}

// NewRecipeDraft returns an empty draft with one blank ingredient and one
// blank step.
func NewRecipeDraft() *RecipeDraft {
	return &RecipeDraft{
		Ingredients: []string{""},
		Steps:       []DraftStep{{}},
	}
}

// DraftFromRecipe builds a draft prefilled from a stored recipe for editing.
func DraftFromRecipe(r *models.Recipe) *RecipeDraft {
	d := &RecipeDraft{
		RecipeID:    r.ID,
		Title:       r.Title,
		Description: r.DescriptionText(),
		PrepTime:    r.PrepTime,
		CookTime:    r.CookTime,
		Servings:    r.Servings,
		Ingredients: append([]string(nil), r.Ingredients...),
		Tags:        append([]string(nil), r.Tags...),
		CoverURL:    r.ImageURL,
	}
	for _, item := range r.EffectiveSteps() {
		d.Steps = append(d.Steps, DraftStep{Text: item.Text, ImageURL: item.ImageURL})
	}
	if len(d.Ingredients) == 0 {
		d.Ingredients = []string{""}
	}
	if len(d.Steps) == 0 {
		d.Steps = []DraftStep{{}}
	}
	return d
}

// AddIngredient appends a blank ingredient row.
func (d *RecipeDraft) AddIngredient() {
	d.Ingredients = append(d.Ingredients, "")
}

// RemoveIngredient removes the ingredient at i. Removing the last remaining
// entry is a no-op.
func (d *RecipeDraft) RemoveIngredient(i int) {
	if len(d.Ingredients) <= 1 || i < 0 || i >= len(d.Ingredients) {
		return
	}
	d.Ingredients = append(d.Ingredients[:i], d.Ingredients[i+1:]...)
}

// AddStep appends a blank step row.
func (d *RecipeDraft) AddStep() {
	d.Steps = append(d.Steps, DraftStep{})
}

// RemoveStep removes the step at i together with its image. Removing the last
// remaining entry is a no-op.
func (d *RecipeDraft) RemoveStep(i int) {
	if len(d.Steps) <= 1 || i < 0 || i >= len(d.Steps) {
		return
	}
	d.Steps = append(d.Steps[:i], d.Steps[i+1:]...)
}

// SetStepImage stages an upload for the step at i, replacing any staged or
// persisted image.
func (d *RecipeDraft) SetStepImage(i int, up *Upload) {
	if i < 0 || i >= len(d.Steps) {
		return
	}
	d.Steps[i].Upload = up
	d.Steps[i].ImageURL = nil
}

// ClearStepImage removes both the staged upload and the persisted image from
// the step at i.
func (d *RecipeDraft) ClearStepImage(i int) {
	if i < 0 || i >= len(d.Steps) {
		return
	}
	d.Steps[i].Upload = nil
	d.Steps[i].ImageURL = nil
}

// SetCover stages a new cover upload, replacing any staged or persisted cover.
func (d *RecipeDraft) SetCover(up *Upload) {
	d.CoverUpload = up
	d.CoverURL = nil
}

// ClearCover removes both the staged cover upload and the persisted cover.
func (d *RecipeDraft) ClearCover() {
	d.CoverUpload = nil
	d.CoverURL = nil
}

// Normalize strips blank ingredients, blank tags and steps with neither text
// nor image. It is idempotent: normalizing twice yields the same draft.
func (d *RecipeDraft) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)

	ingredients := d.Ingredients[:0]
	for _, ing := range d.Ingredients {
		if trimmed := strings.TrimSpace(ing); trimmed != "" {
			ingredients = append(ingredients, trimmed)
		}
	}
	d.Ingredients = ingredients

	steps := d.Steps[:0]
	for _, step := range d.Steps {
		step.Text = strings.TrimSpace(step.Text)
		if step.Text == "" && step.ImageURL == nil && step.Upload == nil {
			continue
		}
		steps = append(steps, step)
	}
	d.Steps = steps

	tags := d.Tags[:0]
	for _, tag := range d.Tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	d.Tags = tags
}
