package db

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/superfishal-intelligence/backend/internal/models"
)

//go:embed scripts/seed.json
var bootstrapFS embed.FS

type seedData struct {
	Categories []models.NewCategory `json:"categories"`
	Resources  []models.NewResource `json:"resources"`
}

func loadSeed() (*seedData, error) {
	raw, err := bootstrapFS.ReadFile("scripts/seed.json")
	if err != nil {
		return nil, fmt.Errorf("read seed.json: %w", err)
	}
	var seed seedData
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("decode seed.json: %w", err)
	}
	return &seed, nil
}

// EnsureSeeded inserts the default categories when the table is empty, then
// the default resources when that table is empty. Each table is checked on
// its own so partial data is topped up, never duplicated.
func EnsureSeeded(ctx context.Context, store Store) error {
	ctxBoot, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	seed, err := loadSeed()
	if err != nil {
		return err
	}

	categories, err := store.ListCategories(ctxBoot)
	if err != nil {
		return fmt.Errorf("category check failed: %w", err)
	}
	if len(categories) == 0 {
		for _, c := range seed.Categories {
			if err := store.CreateCategory(ctxBoot, &models.ResourceCategory{Name: c.Name, Description: c.Description}); err != nil {
				return fmt.Errorf("seed category %q: %w", c.Name, err)
			}
		}
	}

	resources, err := store.ListResources(ctxBoot)
	if err != nil {
		return fmt.Errorf("resource check failed: %w", err)
	}
	if len(resources) == 0 {
		for i := range seed.Resources {
			if err := store.CreateResource(ctxBoot, seed.Resources[i].ToResource()); err != nil {
				return fmt.Errorf("seed resource %q: %w", seed.Resources[i].Name, err)
			}
		}
	}
	return nil
}

// Reset clears the catalogue and seeds it again.
func Reset(ctx context.Context, store Store) error {
	if err := store.ClearCatalog(ctx); err != nil {
		return fmt.Errorf("clear catalogue: %w", err)
	}
	return EnsureSeeded(ctx, store)
}
