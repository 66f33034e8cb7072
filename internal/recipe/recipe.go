package recipe

import (
	"crypto/rand"
	"math"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/pantry/internal/product"
)

// DefaultAmountGrams is used when an ingredient is added without a usable amount.
const DefaultAmountGrams = 100

// Ingredient is one line of an in-progress or saved recipe.
type Ingredient struct {
	// ID is unique per added line, even for repeated product names
	ID string `json:"id"`

	Name string `json:"productName"`

	// CaloriesPer100g is fixed when the ingredient is added
	CaloriesPer100g float64 `json:"calories100g"`

	AmountGrams float64 `json:"amountGrams"`
}

// ContributedCalories returns CaloriesPer100g scaled to AmountGrams.
func (i Ingredient) ContributedCalories() float64 {
	return i.CaloriesPer100g * i.AmountGrams / 100
}

// CustomRecipe is a saved snapshot of the builder.
type CustomRecipe struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Instructions string       `json:"instructions"`
	Ingredients  []Ingredient `json:"ingredients"`

	// TotalCalories is computed once at save time
	TotalCalories float64 `json:"totalCalories"`

	// DateCreated is Unix milliseconds
	DateCreated int64 `json:"dateCreated"`
}

// GetID returns the recipe ID.
func (r CustomRecipe) GetID() string { return r.ID }

// SavedIdea is a product with its enrichment, kept for later.
type SavedIdea struct {
	ID         string             `json:"id"`
	Product    product.Product    `json:"product"`
	Enrichment product.Enrichment `json:"aiData"`

	// DateSaved is Unix milliseconds
	DateSaved int64 `json:"dateSaved"`
}

// GetID returns the idea ID.
func (s SavedIdea) GetID() string { return s.ID }

// TotalCalories sums the contributions of ingredients.
func TotalCalories(ingredients []Ingredient) float64 {
	var total float64
	for _, i := range ingredients {
		total += i.ContributedCalories()
	}
	return total
}

// Round rounds kcal for display.
func Round(kcal float64) int {
	return int(math.Round(kcal))
}

// NowMillis returns the current time as Unix milliseconds.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID generates a new ULID.
func NewID() (string, error) {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
