package recipe

import (
	"math"
	"strings"
	"sync"

	"github.com/hpungsan/pantry/internal/errors"
	"github.com/hpungsan/pantry/internal/product"
)

// Builder holds the ingredient list of the recipe being composed.
// All methods are safe for concurrent use; mutations are serialized.
type Builder struct {
	mu    sync.Mutex
	items []Ingredient
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddFromProduct appends p with the default amount.
// Unavailable calories count as 0.
func (b *Builder) AddFromProduct(p *product.Product) (Ingredient, error) {
	id, err := NewID()
	if err != nil {
		return Ingredient{}, errors.NewInternal(err)
	}
	ing := Ingredient{
		ID:              id,
		Name:            p.Name,
		CaloriesPer100g: float64(p.CaloriesPer100g.Or(0)),
		AmountGrams:     DefaultAmountGrams,
	}

	b.mu.Lock()
	b.items = append(b.items, ing)
	b.mu.Unlock()
	return ing, nil
}

// AddManual appends a hand-entered ingredient.
// An empty name or non-finite calories is rejected without mutation.
// A non-positive or non-finite amount becomes DefaultAmountGrams.
func (b *Builder) AddManual(name string, caloriesPer100g, amountGrams float64) (Ingredient, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Ingredient{}, errors.NewInvalidRequest("ingredient name is required")
	}
	if math.IsNaN(caloriesPer100g) || math.IsInf(caloriesPer100g, 0) {
		return Ingredient{}, errors.NewInvalidRequest("calories per 100g must be a number")
	}
	if !(amountGrams > 0) || math.IsInf(amountGrams, 0) {
		amountGrams = DefaultAmountGrams
	}

	id, err := NewID()
	if err != nil {
		return Ingredient{}, errors.NewInternal(err)
	}
	ing := Ingredient{
		ID:              id,
		Name:            name,
		CaloriesPer100g: caloriesPer100g,
		AmountGrams:     amountGrams,
	}

	b.mu.Lock()
	b.items = append(b.items, ing)
	b.mu.Unlock()
	return ing, nil
}

// UpdateAmount replaces the amount of the ingredient with id.
// Callers clamp grams to >= 0. Reports whether the id was found.
func (b *Builder) UpdateAmount(id string, grams float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if b.items[i].ID == id {
			b.items[i].AmountGrams = grams
			return true
		}
	}
	return false
}

// Adjust changes the amount of id by delta, never going below zero.
// It returns the new amount and whether the id was found.
func (b *Builder) Adjust(id string, delta float64) (float64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if b.items[i].ID == id {
			b.items[i].AmountGrams = math.Max(0, b.items[i].AmountGrams+delta)
			return b.items[i].AmountGrams, true
		}
	}
	return 0, false
}

// Remove deletes the ingredient with id. Absent ids are a no-op.
func (b *Builder) Remove(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if b.items[i].ID == id {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return true
		}
	}
	return false
}

// TotalCalories is recomputed from the current ingredients on every call.
func (b *Builder) TotalCalories() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return TotalCalories(b.items)
}

// Items returns a copy of the ingredients in insertion order.
func (b *Builder) Items() []Ingredient {
	b.mu.Lock()
	defer b.mu.Unlock()
	return copyIngredients(b.items)
}

// Len returns the number of ingredients.
func (b *Builder) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Clear empties the ingredient list and returns how many were discarded.
func (b *Builder) Clear() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.items)
	b.items = nil
	return n
}

// Snapshot returns a copy of the ingredients together with their total,
// taken under one lock so the two agree.
func (b *Builder) Snapshot() ([]Ingredient, float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return copyIngredients(b.items), TotalCalories(b.items)
}

func copyIngredients(items []Ingredient) []Ingredient {
	out := make([]Ingredient, len(items))
	copy(out, items)
	return out
}
