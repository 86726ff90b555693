// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"

	"larder/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumRecipes  int
	ShouldClean bool
	// SkipBcrypt stores plaintext passwords for fast dev seeding.
	SkipBcrypt bool
	// DryRun logs what would be created without touching the database.
	DryRun bool
	// MaxDays spreads created_at timestamps over this many days back.
	MaxDays int
}

// Seeder populates the database with demo data.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{
		db:      db,
		opts:    opts,
		factory: NewFactory(db, opts),
	}
}

// ClearAll removes seeded rows. Order matters: recipes reference users.
func (s *Seeder) ClearAll() error {
	if s.opts.DryRun {
		log.Println("[dry-run] ClearAll: no DB write")
		return nil
	}
	if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Unscoped().Delete(&models.Recipe{}).Error; err != nil {
		return fmt.Errorf("failed to clear recipes: %w", err)
	}
	if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Unscoped().Delete(&models.User{}).Error; err != nil {
		return fmt.Errorf("failed to clear users: %w", err)
	}
	return nil
}

// Seed populates the database with users, curated fixture recipes and
// generated recipes.
func (s *Seeder) Seed() error {
	log.Printf("Seeding %d users and %d recipes...", s.opts.NumUsers, s.opts.NumRecipes)

	if s.opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	users, err := s.SeedUsers(s.opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("%d users created", len(users))

	fixtures, err := s.SeedFixtures(users)
	if err != nil {
		return fmt.Errorf("failed to seed fixture recipes: %w", err)
	}
	log.Printf("%d fixture recipes created", fixtures)

	generated, err := s.SeedRecipes(users, s.opts.NumRecipes)
	if err != nil {
		return fmt.Errorf("failed to create recipes: %w", err)
	}
	log.Printf("%d generated recipes created", generated)

	return nil
}

// SeedUsers creates n users with the shared demo password.
func (s *Seeder) SeedUsers(n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// SeedRecipes generates n recipes spread across the given users.
func (s *Seeder) SeedRecipes(users []*models.User, n int) (int, error) {
	if len(users) == 0 || n <= 0 {
		return 0, nil
	}

	recipes := make([]*models.Recipe, 0, n)
	for i := 0; i < n; i++ {
		owner := users[i%len(users)]
		recipes = append(recipes, s.factory.BuildRecipe(owner))
	}

	// Insert in chunks to keep statements bounded.
	const chunk = 100
	for start := 0; start < len(recipes); start += chunk {
		end := start + chunk
		if end > len(recipes) {
			end = len(recipes)
		}
		batch := recipes[start:end]
		if err := s.factory.CreateRecipesBatch(batch); err != nil {
			return start, err
		}
	}
	return len(recipes), nil
}

// SeedFixtures persists the curated fixture recipes, assigning authors
// round-robin from the given users.
func (s *Seeder) SeedFixtures(users []*models.User) (int, error) {
	if len(users) == 0 {
		return 0, nil
	}

	fixtures, err := LoadFixtures()
	if err != nil {
		return 0, err
	}

	recipes := make([]*models.Recipe, 0, len(fixtures))
	for i, fx := range fixtures {
		owner := users[i%len(users)]
		recipes = append(recipes, fx.toRecipe(owner))
	}

	if len(recipes) == 0 {
		return 0, nil
	}
	if err := s.factory.CreateRecipesBatch(recipes); err != nil {
		return 0, err
	}
	return len(recipes), nil
}
