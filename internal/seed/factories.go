// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"larder/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:     db,
		opts:   opts,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		nextID: 1000,
	}
}

var (
	cuisineTags = []string{
		"italian", "mexican", "indian", "thai", "japanese", "french",
		"middle-eastern", "korean", "greek", "spanish",
	}
	mealTags = []string{
		"breakfast", "lunch", "dinner", "dessert", "snack", "brunch",
	}
	dietTags = []string{
		"vegetarian", "vegan", "gluten-free", "dairy-free", "quick", "comfort-food",
	}

	pantryItems = []string{
		"olive oil", "garlic", "onion", "butter", "flour", "eggs", "milk",
		"salt", "black pepper", "sugar", "soy sauce", "lemon", "parsley",
		"cumin", "paprika", "canned tomatoes", "rice", "pasta", "chickpeas",
		"parmesan", "heavy cream", "chicken stock", "ginger", "cilantro",
	}

	stepVerbs = []string{
		"Chop", "Simmer", "Whisk", "Fold in", "Sear", "Roast", "Toast",
		"Saute", "Blend", "Season", "Rest", "Garnish with",
	}
)

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s", user.Username)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildRecipe constructs a plausible recipe for the given author without
// persisting it. Useful for batching.
func (f *Factory) BuildRecipe(user *models.User, overrides ...func(*models.Recipe)) *models.Recipe {
	title := f.recipeTitle()
	description := gofakeit.Paragraph(1, 2, 8, " ")

	numIngredients := f.rng.Intn(6) + 3
	ingredients := make(models.StringList, 0, numIngredients)
	for _, idx := range f.rng.Perm(len(pantryItems))[:numIngredients] {
		ingredients = append(ingredients, pantryItems[idx])
	}

	numSteps := f.rng.Intn(4) + 2
	steps := make(models.StepItemList, 0, numSteps)
	flat := make(models.StringList, 0, numSteps)
	for i := 0; i < numSteps; i++ {
		text := fmt.Sprintf("%s the %s and %s.",
			stepVerbs[f.rng.Intn(len(stepVerbs))],
			ingredients[f.rng.Intn(len(ingredients))],
			gofakeit.VerbAction())
		steps = append(steps, models.StepItem{Text: text})
		flat = append(flat, text)
	}

	tags := models.StringList{
		cuisineTags[f.rng.Intn(len(cuisineTags))],
		mealTags[f.rng.Intn(len(mealTags))],
	}
	if f.rng.Intn(2) == 0 {
		tags = append(tags, dietTags[f.rng.Intn(len(dietTags))])
	}

	cover := fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID())
	recipe := &models.Recipe{
		Title:       title,
		Description: &description,
		Ingredients: ingredients,
		Steps:       flat,
		StepItems:   steps,
		Tags:        tags,
		ImageURL:    &cover,
		PrepTime:    uint(f.rng.Intn(40) + 5),
		CookTime:    uint(f.rng.Intn(90) + 10),
		Servings:    uint(f.rng.Intn(6) + 1),
		UserID:      user.ID,
		AuthorName:  user.Username,
	}

	// realistic created_at spread
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	recipe.CreatedAt = time.Now().
		Add(-time.Duration(daysBack)*24*time.Hour -
			time.Duration(hoursBack)*time.Hour -
			time.Duration(minsBack)*time.Minute)

	for _, override := range overrides {
		override(recipe)
	}
	return recipe
}

// CreateRecipesBatch persists multiple recipes in a single DB call when possible.
func (f *Factory) CreateRecipesBatch(recipes []*models.Recipe) error {
	if f.opts.DryRun {
		for _, r := range recipes {
			f.nextID++
			r.ID = f.nextID
		}
		log.Printf("[dry-run] CreateRecipesBatch: %d recipes (no DB write)", len(recipes))
		return nil
	}
	return f.db.Create(&recipes).Error
}

func (f *Factory) recipeTitle() string {
	switch f.rng.Intn(5) {
	case 0:
		return gofakeit.Breakfast()
	case 1:
		return gofakeit.Lunch()
	case 2:
		return gofakeit.Dinner()
	case 3:
		return gofakeit.Dessert()
	default:
		return gofakeit.Snack()
	}
}
