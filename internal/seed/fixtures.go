package seed

import (
	_ "embed"
	"fmt"

	"larder/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yml
var fixturesYAML []byte

// fixtureRecipe is the YAML shape of a curated demo recipe.
type fixtureRecipe struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	PrepTime    uint     `yaml:"prep_time"`
	CookTime    uint     `yaml:"cook_time"`
	Servings    uint     `yaml:"servings"`
	Ingredients []string `yaml:"ingredients"`
	Steps       []string `yaml:"steps"`
	Tags        []string `yaml:"tags"`
}

// LoadFixtures parses the embedded curated recipes.
func LoadFixtures() ([]fixtureRecipe, error) {
	var parsed struct {
		Recipes []fixtureRecipe `yaml:"recipes"`
	}
	if err := yaml.Unmarshal(fixturesYAML, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse recipe fixtures: %w", err)
	}
	return parsed.Recipes, nil
}

func (fx fixtureRecipe) toRecipe(owner *models.User) *models.Recipe {
	description := fx.Description
	steps := make(models.StepItemList, 0, len(fx.Steps))
	for _, text := range fx.Steps {
		steps = append(steps, models.StepItem{Text: text})
	}

	return &models.Recipe{
		Title:       fx.Title,
		Description: &description,
		Ingredients: models.StringList(fx.Ingredients),
		Steps:       models.StringList(fx.Steps),
		StepItems:   steps,
		Tags:        models.StringList(fx.Tags),
		PrepTime:    fx.PrepTime,
		CookTime:    fx.CookTime,
		Servings:    fx.Servings,
		UserID:      owner.ID,
		AuthorName:  owner.Username,
	}
}
