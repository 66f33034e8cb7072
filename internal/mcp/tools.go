package mcp

import "github.com/mark3labs/mcp-go/mcp"

var lookupToolDef = mcp.NewTool("product_lookup",
	mcp.WithDescription("Look up a product by barcode. Returns the normalized product with storage and expiration advice, plus AI enrichment (storage tip, recipe idea, fun fact) unless skipped."),
	mcp.WithString("barcode", mcp.Required(), mcp.Description("Product barcode (EAN/UPC)")),
	mcp.WithBoolean("skip_enrichment", mcp.Description("Skip the AI enrichment call")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var classifyToolDef = mcp.NewTool("product_classify",
	mcp.WithDescription("Classify free category text into storage advice and an after-opening shelf life, reporting which rule matched."),
	mcp.WithString("category", mcp.Required(), mcp.Description("Category text, e.g. \"Dairies, Milks\"")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var builderShowToolDef = mcp.NewTool("builder_show",
	mcp.WithDescription("Show the recipe being composed: ingredients, per-ingredient kcal and the running total."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var builderAddProductToolDef = mcp.NewTool("builder_add_product",
	mcp.WithDescription("Add a product to the recipe builder by barcode with a 100g default amount. Reuses the last product_lookup result for the barcode when available."),
	mcp.WithString("barcode", mcp.Required(), mcp.Description("Product barcode")),
)

var builderAddManualToolDef = mcp.NewTool("builder_add_manual",
	mcp.WithDescription("Add a hand-entered ingredient to the recipe builder."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Ingredient name")),
	mcp.WithNumber("calories_per_100g", mcp.Required(), mcp.Description("Energy in kcal per 100g")),
	mcp.WithNumber("amount_grams", mcp.Description("Amount in grams (default 100)")),
)

var builderUpdateAmountToolDef = mcp.NewTool("builder_update_amount",
	mcp.WithDescription("Set or step the amount of a builder ingredient. Give exactly one of amount_grams or delta. Amounts never go below zero."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Ingredient id from builder_show")),
	mcp.WithNumber("amount_grams", mcp.Description("New amount in grams")),
	mcp.WithNumber("delta", mcp.Description("Grams to add (negative to subtract)")),
)

var builderRemoveToolDef = mcp.NewTool("builder_remove",
	mcp.WithDescription("Remove an ingredient from the recipe builder. Unknown ids are a no-op."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Ingredient id")),
)

var builderClearToolDef = mcp.NewTool("builder_clear",
	mcp.WithDescription("Discard all ingredients in the recipe builder."),
	mcp.WithDestructiveHintAnnotation(true),
)

var recipeSaveToolDef = mcp.NewTool("recipe_save",
	mcp.WithDescription("Save the builder as a named recipe with its total calories, then empty the builder. Fails if the name is blank or the builder is empty."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Recipe name")),
	mcp.WithString("instructions", mcp.Description("Preparation instructions (markdown)")),
)

var recipeListToolDef = mcp.NewTool("recipe_list",
	mcp.WithDescription("List saved recipes, newest first."),
	mcp.WithNumber("limit", mcp.Description("Max results (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Results to skip")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var recipeShowToolDef = mcp.NewTool("recipe_show",
	mcp.WithDescription("Render a saved recipe as markdown or HTML."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Recipe id")),
	mcp.WithString("format", mcp.Enum("markdown", "html"), mcp.Description("Output format (default markdown)")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var recipeDeleteToolDef = mcp.NewTool("recipe_delete",
	mcp.WithDescription("Delete a saved recipe. Unknown ids are a no-op."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Recipe id")),
	mcp.WithDestructiveHintAnnotation(true),
)

var ideaSaveToolDef = mcp.NewTool("idea_save",
	mcp.WithDescription("Save a product and its AI enrichment as a recipe idea. Reuses the last product_lookup result for the barcode when available. Duplicates are stored and flagged with was_saved."),
	mcp.WithString("barcode", mcp.Required(), mcp.Description("Product barcode")),
)

var ideaListToolDef = mcp.NewTool("idea_list",
	mcp.WithDescription("List saved recipe ideas, newest first."),
	mcp.WithNumber("limit", mcp.Description("Max results (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Results to skip")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var ideaShowToolDef = mcp.NewTool("idea_show",
	mcp.WithDescription("Render a saved recipe idea as markdown or HTML."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Idea id")),
	mcp.WithString("format", mcp.Enum("markdown", "html"), mcp.Description("Output format (default markdown)")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var ideaDeleteToolDef = mcp.NewTool("idea_delete",
	mcp.WithDescription("Delete a saved recipe idea. Unknown ids are a no-op."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Idea id")),
	mcp.WithDestructiveHintAnnotation(true),
)
