package ops

import (
	"math"
	"strings"

	"github.com/hpungsan/pantry/internal/errors"
	"github.com/hpungsan/pantry/internal/product"
	"github.com/hpungsan/pantry/internal/recipe"
	"github.com/hpungsan/pantry/internal/validate"
)

// IngredientView is an ingredient with its rounded contribution.
type IngredientView struct {
	recipe.Ingredient
	ContributedKcal int `json:"contributedKcal"`
}

// BuilderView is the current state of the recipe being composed.
type BuilderView struct {
	Ingredients   []IngredientView `json:"ingredients"`
	Count         int              `json:"count"`
	TotalCalories float64          `json:"total_calories"`
	TotalKcal     int              `json:"total_kcal"`
}

// ViewBuilder returns a consistent snapshot of b.
func ViewBuilder(b *recipe.Builder) BuilderView {
	items, total := b.Snapshot()
	return BuilderView{
		Ingredients:   viewIngredients(items),
		Count:         len(items),
		TotalCalories: total,
		TotalKcal:     recipe.Round(total),
	}
}

func viewIngredients(items []recipe.Ingredient) []IngredientView {
	views := make([]IngredientView, len(items))
	for i, ing := range items {
		views[i] = IngredientView{Ingredient: ing, ContributedKcal: recipe.Round(ing.ContributedCalories())}
	}
	return views
}

// AddOutput contains the added ingredient and the resulting builder state.
type AddOutput struct {
	Ingredient recipe.Ingredient `json:"ingredient"`
	Builder    BuilderView       `json:"builder"`
}

// AddProduct adds p to b with the default amount.
func AddProduct(b *recipe.Builder, p *product.Product) (*AddOutput, error) {
	if p == nil {
		return nil, errors.NewInvalidRequest("product is required")
	}
	ing, err := b.AddFromProduct(p)
	if err != nil {
		return nil, err
	}
	return &AddOutput{Ingredient: ing, Builder: ViewBuilder(b)}, nil
}

// AddManualInput contains parameters for the AddManual operation.
type AddManualInput struct {
	Name string `json:"name" validate:"required"`

	// CaloriesPer100g must be present; nil means the caller sent no number
	CaloriesPer100g *float64 `json:"calories_per_100g" validate:"required"`

	// AmountGrams defaults to 100 when not a positive number
	AmountGrams float64 `json:"amount_grams"`
}

// AddManual adds a hand-entered ingredient. Rejections leave b unchanged.
func AddManual(b *recipe.Builder, input AddManualInput) (*AddOutput, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validate.Struct(&input); err != nil {
		return nil, err
	}
	ing, err := b.AddManual(input.Name, *input.CaloriesPer100g, input.AmountGrams)
	if err != nil {
		return nil, err
	}
	return &AddOutput{Ingredient: ing, Builder: ViewBuilder(b)}, nil
}

// UpdateAmountInput sets (AmountGrams) or steps (Delta) an ingredient amount.
// Exactly one of the two must be given.
type UpdateAmountInput struct {
	ID          string   `json:"id" validate:"required"`
	AmountGrams *float64 `json:"amount_grams" validate:"required_without=Delta,excluded_with=Delta"`
	Delta       *float64 `json:"delta"`
}

// UpdateAmountOutput contains the new amount and the resulting builder state.
type UpdateAmountOutput struct {
	ID          string      `json:"id"`
	AmountGrams float64     `json:"amount_grams"`
	Builder     BuilderView `json:"builder"`
}

// UpdateAmount changes an ingredient amount, clamping at zero.
func UpdateAmount(b *recipe.Builder, input UpdateAmountInput) (*UpdateAmountOutput, error) {
	input.ID = strings.TrimSpace(input.ID)
	if err := validate.Struct(&input); err != nil {
		return nil, err
	}

	var grams float64
	var found bool
	if input.Delta != nil {
		if !isFinite(*input.Delta) {
			return nil, errors.NewInvalidRequest("delta must be a number")
		}
		grams, found = b.Adjust(input.ID, *input.Delta)
	} else {
		if !isFinite(*input.AmountGrams) {
			return nil, errors.NewInvalidRequest("amount_grams must be a number")
		}
		grams = math.Max(0, *input.AmountGrams)
		found = b.UpdateAmount(input.ID, grams)
	}
	if !found {
		return nil, errors.NewNotFound(input.ID)
	}

	return &UpdateAmountOutput{ID: input.ID, AmountGrams: grams, Builder: ViewBuilder(b)}, nil
}

// RemoveInput contains parameters for the Remove operation.
type RemoveInput struct {
	ID string `json:"id" validate:"required"`
}

// RemoveOutput reports whether anything was removed. Absent ids are a no-op.
type RemoveOutput struct {
	ID      string      `json:"id"`
	Removed bool        `json:"removed"`
	Builder BuilderView `json:"builder"`
}

// Remove deletes an ingredient from b.
func Remove(b *recipe.Builder, input RemoveInput) (*RemoveOutput, error) {
	input.ID = strings.TrimSpace(input.ID)
	if err := validate.Struct(&input); err != nil {
		return nil, err
	}
	removed := b.Remove(input.ID)
	return &RemoveOutput{ID: input.ID, Removed: removed, Builder: ViewBuilder(b)}, nil
}

// ClearOutput reports how many ingredients were discarded.
type ClearOutput struct {
	Cleared int `json:"cleared"`
}

// Clear empties b.
func Clear(b *recipe.Builder) *ClearOutput {
	return &ClearOutput{Cleared: b.Clear()}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
