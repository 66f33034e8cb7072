package collection

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/pantry/internal/kv"
	"github.com/hpungsan/pantry/internal/recipe"
)

// Storage keys. They match the keys earlier pantry versions wrote, so
// existing data loads unchanged.
const (
	IdeasKey   = "pantry_saved_recipes"
	RecipesKey = "pantry_custom_recipes"
)

// Store holds the two user collections.
type Store struct {
	Ideas   *Collection[recipe.SavedIdea]
	Recipes *Collection[recipe.CustomRecipe]
}

// Open creates both collections over backend and loads them.
func Open(ctx context.Context, backend kv.Store, logger *zap.Logger) (*Store, error) {
	s := &Store{
		Ideas:   New[recipe.SavedIdea](backend, IdeasKey, logger),
		Recipes: New[recipe.CustomRecipe](backend, RecipesKey, logger),
	}
	if err := s.Ideas.Load(ctx); err != nil {
		return nil, err
	}
	if err := s.Recipes.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// IsIdeaSaved reports whether an idea for barcode with the same recipe
// text is already stored. Duplicates are allowed; this only informs callers.
func (s *Store) IsIdeaSaved(barcode, recipeIdea string) bool {
	recipeIdea = strings.TrimSpace(recipeIdea)
	for _, idea := range s.Ideas.Items() {
		if idea.Product.Barcode == barcode && strings.TrimSpace(idea.Enrichment.RecipeIdea) == recipeIdea {
			return true
		}
	}
	return false
}
