package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/pantry/internal/collection"
	"github.com/hpungsan/pantry/internal/errors"
	"github.com/hpungsan/pantry/internal/product"
	"github.com/hpungsan/pantry/internal/recipe"
	"github.com/hpungsan/pantry/internal/validate"
)

// SaveIdeaInput contains parameters for the SaveIdea operation.
type SaveIdeaInput struct {
	Product    *product.Product   `json:"product" validate:"required"`
	Enrichment product.Enrichment `json:"enrichment"`
}

// SaveIdeaOutput contains the result of the SaveIdea operation.
type SaveIdeaOutput struct {
	ID        string `json:"id"`
	Barcode   string `json:"barcode"`
	Name      string `json:"name"`
	DateSaved int64  `json:"date_saved"`

	// WasSaved is true when an equal idea already existed; a duplicate was still stored
	WasSaved bool `json:"was_saved"`
}

// SaveIdea stores a snapshot of a product and its enrichment.
// Duplicates are allowed; WasSaved lets callers warn about them.
func SaveIdea(ctx context.Context, store *collection.Store, input SaveIdeaInput) (*SaveIdeaOutput, error) {
	if err := validate.Struct(&input); err != nil {
		return nil, err
	}

	id, err := recipe.NewID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	enrichment := input.Enrichment.Complete(product.UnavailableEnrichment())
	wasSaved := store.IsIdeaSaved(input.Product.Barcode, enrichment.RecipeIdea)

	idea := recipe.SavedIdea{
		ID:         id,
		Product:    *input.Product,
		Enrichment: enrichment,
		DateSaved:  recipe.NowMillis(),
	}
	if err := store.Ideas.Append(ctx, idea); err != nil {
		return nil, err
	}

	return &SaveIdeaOutput{
		ID:        idea.ID,
		Barcode:   idea.Product.Barcode,
		Name:      idea.Product.Name,
		DateSaved: idea.DateSaved,
		WasSaved:  wasSaved,
	}, nil
}

// IdeaSummary is the list view of a saved idea.
type IdeaSummary struct {
	ID              string           `json:"id"`
	Barcode         string           `json:"barcode"`
	Name            string           `json:"name"`
	Brand           string           `json:"brand"`
	CaloriesPer100g product.Calories `json:"caloriesPer100g"`
	RecipeIdea      string           `json:"recipeIdea"`
	DateSaved       int64            `json:"date_saved"`
}

// ListIdeasOutput contains the result of the ListIdeas operation.
type ListIdeasOutput struct {
	Items      []IdeaSummary `json:"items"`
	Pagination Pagination    `json:"pagination"`
	Cookbook   Cookbook      `json:"cookbook"`
	Sort       string        `json:"sort"`
}

// ListIdeas returns saved ideas, newest first.
func ListIdeas(store *collection.Store, input ListInput) *ListIdeasOutput {
	page, pagination := paginate(store.Ideas.Items(), input.Limit, input.Offset)

	items := make([]IdeaSummary, len(page))
	for i, idea := range page {
		items[i] = IdeaSummary{
			ID:              idea.ID,
			Barcode:         idea.Product.Barcode,
			Name:            idea.Product.Name,
			Brand:           idea.Product.Brand,
			CaloriesPer100g: idea.Product.CaloriesPer100g,
			RecipeIdea:      idea.Enrichment.RecipeIdea,
			DateSaved:       idea.DateSaved,
		}
	}

	return &ListIdeasOutput{
		Items:      items,
		Pagination: pagination,
		Cookbook:   CountCookbook(store),
		Sort:       "date_saved_desc",
	}
}

// GetIdea returns the idea with the given id.
func GetIdea(store *collection.Store, input GetInput) (*recipe.SavedIdea, error) {
	input.ID = strings.TrimSpace(input.ID)
	if err := validate.Struct(&input); err != nil {
		return nil, err
	}
	idea, ok := store.Ideas.Get(input.ID)
	if !ok {
		return nil, errors.NewNotFound(input.ID)
	}
	return &idea, nil
}

// RenderIdea renders a saved idea as markdown (default) or HTML.
func RenderIdea(store *collection.Store, input RenderInput) (*RenderOutput, error) {
	if err := validate.Struct(&input); err != nil {
		return nil, err
	}
	idea, err := GetIdea(store, GetInput{ID: input.ID})
	if err != nil {
		return nil, err
	}
	return render(idea.ID, recipe.IdeaMarkdown(idea), input.Format)
}

// DeleteIdea removes a saved idea.
func DeleteIdea(ctx context.Context, store *collection.Store, input DeleteInput) (*DeleteOutput, error) {
	input.ID = strings.TrimSpace(input.ID)
	if err := validate.Struct(&input); err != nil {
		return nil, err
	}
	deleted, err := store.Ideas.DeleteByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &DeleteOutput{Deleted: deleted, ID: input.ID}, nil
}
