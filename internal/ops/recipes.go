package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/pantry/internal/collection"
	"github.com/hpungsan/pantry/internal/errors"
	"github.com/hpungsan/pantry/internal/recipe"
	"github.com/hpungsan/pantry/internal/validate"
)

// SaveRecipeInput contains parameters for the SaveCustomRecipe operation.
type SaveRecipeInput struct {
	Name         string `json:"name" validate:"required,max=200"`
	Instructions string `json:"instructions"`
}

// SaveRecipeOutput contains the result of the SaveCustomRecipe operation.
type SaveRecipeOutput struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	IngredientCount int     `json:"ingredient_count"`
	TotalCalories   float64 `json:"total_calories"`
	TotalKcal       int     `json:"total_kcal"`
	DateCreated     int64   `json:"date_created"`
}

// SaveCustomRecipe snapshots the builder into a new recipe, stores it and
// empties the builder. An empty name or an empty builder is rejected with
// no change to the store or the builder.
func SaveCustomRecipe(ctx context.Context, store *collection.Store, b *recipe.Builder, input SaveRecipeInput) (*SaveRecipeOutput, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validate.Struct(&input); err != nil {
		return nil, err
	}

	ingredients, total := b.Snapshot()
	if len(ingredients) == 0 {
		return nil, errors.NewInvalidRequest("recipe has no ingredients")
	}

	id, err := recipe.NewID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	r := recipe.CustomRecipe{
		ID:            id,
		Name:          input.Name,
		Instructions:  strings.TrimSpace(input.Instructions),
		Ingredients:   ingredients,
		TotalCalories: total,
		DateCreated:   recipe.NowMillis(),
	}
	if err := store.Recipes.Append(ctx, r); err != nil {
		return nil, err
	}

	// Only the saved lines are removed; anything added meanwhile stays.
	for _, ing := range ingredients {
		b.Remove(ing.ID)
	}

	return &SaveRecipeOutput{
		ID:              r.ID,
		Name:            r.Name,
		IngredientCount: len(r.Ingredients),
		TotalCalories:   r.TotalCalories,
		TotalKcal:       recipe.Round(r.TotalCalories),
		DateCreated:     r.DateCreated,
	}, nil
}

// ListInput contains parameters for the list operations.
type ListInput struct {
	Limit  int `json:"limit"`  // default: 20, max: 100
	Offset int `json:"offset"` // default: 0
}

// Cookbook counts both collections.
type Cookbook struct {
	Ideas   int `json:"ideas"`
	Recipes int `json:"recipes"`
}

// CountCookbook returns the size of both collections.
func CountCookbook(store *collection.Store) Cookbook {
	return Cookbook{Ideas: store.Ideas.Len(), Recipes: store.Recipes.Len()}
}

// RecipeSummary is a recipe without its instructions.
type RecipeSummary struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	IngredientCount int     `json:"ingredient_count"`
	TotalKcal       int     `json:"total_kcal"`
	DateCreated     int64   `json:"date_created"`
	TotalCalories   float64 `json:"total_calories"`
}

// ListRecipesOutput contains the result of the ListRecipes operation.
type ListRecipesOutput struct {
	Items      []RecipeSummary `json:"items"`
	Pagination Pagination      `json:"pagination"`
	Cookbook   Cookbook        `json:"cookbook"`
	Sort       string          `json:"sort"`
}

// ListRecipes returns saved recipes, newest first.
func ListRecipes(store *collection.Store, input ListInput) *ListRecipesOutput {
	page, pagination := paginate(store.Recipes.Items(), input.Limit, input.Offset)

	items := make([]RecipeSummary, len(page))
	for i, r := range page {
		items[i] = RecipeSummary{
			ID:              r.ID,
			Name:            r.Name,
			IngredientCount: len(r.Ingredients),
			TotalKcal:       recipe.Round(r.TotalCalories),
			TotalCalories:   r.TotalCalories,
			DateCreated:     r.DateCreated,
		}
	}

	return &ListRecipesOutput{
		Items:      items,
		Pagination: pagination,
		Cookbook:   CountCookbook(store),
		Sort:       "date_created_desc",
	}
}

// GetInput addresses one stored item.
type GetInput struct {
	ID string `json:"id" validate:"required"`
}

// GetRecipe returns the recipe with the given id.
func GetRecipe(store *collection.Store, input GetInput) (*recipe.CustomRecipe, error) {
	input.ID = strings.TrimSpace(input.ID)
	if err := validate.Struct(&input); err != nil {
		return nil, err
	}
	r, ok := store.Recipes.Get(input.ID)
	if !ok {
		return nil, errors.NewNotFound(input.ID)
	}
	return &r, nil
}

// Render formats.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// RenderInput contains parameters for the render operations.
type RenderInput struct {
	ID     string `json:"id" validate:"required"`
	Format string `json:"format" validate:"omitempty,oneof=markdown html"`
}

// RenderOutput is a rendered document.
type RenderOutput struct {
	ID      string `json:"id"`
	Format  string `json:"format"`
	Content string `json:"content"`
}

// RenderRecipe renders a stored recipe as markdown (default) or HTML.
func RenderRecipe(store *collection.Store, input RenderInput) (*RenderOutput, error) {
	if err := validate.Struct(&input); err != nil {
		return nil, err
	}
	r, err := GetRecipe(store, GetInput{ID: input.ID})
	if err != nil {
		return nil, err
	}
	return render(r.ID, recipe.Markdown(r), input.Format)
}

func render(id, markdown, format string) (*RenderOutput, error) {
	if format != FormatHTML {
		return &RenderOutput{ID: id, Format: FormatMarkdown, Content: markdown}, nil
	}
	html, err := recipe.HTML(markdown)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &RenderOutput{ID: id, Format: FormatHTML, Content: html}, nil
}

// DeleteInput contains parameters for the delete operations.
type DeleteInput struct {
	ID string `json:"id" validate:"required"`
}

// DeleteOutput contains the result of a delete. Deleting an absent id is a no-op.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// DeleteRecipe removes a stored recipe.
func DeleteRecipe(ctx context.Context, store *collection.Store, input DeleteInput) (*DeleteOutput, error) {
	input.ID = strings.TrimSpace(input.ID)
	if err := validate.Struct(&input); err != nil {
		return nil, err
	}
	deleted, err := store.Recipes.DeleteByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &DeleteOutput{Deleted: deleted, ID: input.ID}, nil
}
