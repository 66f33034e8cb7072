package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/hpungsan/pantry/internal/collection"
	"github.com/hpungsan/pantry/internal/errors"
	"github.com/hpungsan/pantry/internal/ops"
	"github.com/hpungsan/pantry/internal/product"
	"github.com/hpungsan/pantry/internal/recipe"
	"github.com/hpungsan/pantry/internal/validate"
)

// Deps are the collaborators a server session works against.
type Deps struct {
	Store    *collection.Store
	Lookuper ops.Lookuper
	Enricher ops.Enricher
	Logger   *zap.Logger

	// Builder is created empty when nil
	Builder *recipe.Builder
}

// lookupEntry is the most recent lookup result for one barcode.
// enrichment is nil when the lookup skipped enrichment.
type lookupEntry struct {
	product    *product.Product
	enrichment *product.Enrichment
}

// Handlers holds dependencies for MCP tool handlers.
// One Handlers value is one session: it owns the recipe builder and
// remembers recent lookups so follow-up tools can refer to a barcode.
type Handlers struct {
	store    *collection.Store
	builder  *recipe.Builder
	lookuper ops.Lookuper
	enricher ops.Enricher
	logger   *zap.Logger

	mu     sync.Mutex
	recent map[string]lookupEntry
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps Deps) *Handlers {
	h := &Handlers{
		store:    deps.Store,
		builder:  deps.Builder,
		lookuper: deps.Lookuper,
		enricher: deps.Enricher,
		logger:   deps.Logger,
		recent:   make(map[string]lookupEntry),
	}
	if h.builder == nil {
		h.builder = recipe.NewBuilder()
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	return h
}

// BarcodeRequest addresses a product by barcode.
type BarcodeRequest struct {
	Barcode string `json:"barcode" validate:"required,max=64"`
}

// Handler implementations

// HandleLookup handles the product_lookup tool call.
func (h *Handlers) HandleLookup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.LookupInput](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Lookup(ctx, h.lookuper, h.enricher, h.store, input)
	if err != nil {
		return errorResult(err), nil
	}
	h.remember(result.Product, result.Enrichment)

	return successResult(result)
}

// HandleClassify handles the product_classify tool call.
func (h *Handlers) HandleClassify(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.ClassifyInput](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	return successResult(ops.Classify(input))
}

// HandleBuilderShow handles the builder_show tool call.
func (h *Handlers) HandleBuilderShow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(ops.ViewBuilder(h.builder))
}

// HandleBuilderAddProduct handles the builder_add_product tool call.
func (h *Handlers) HandleBuilderAddProduct(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[BarcodeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	entry, err := h.resolve(ctx, input.Barcode, false)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.AddProduct(h.builder, entry.product)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleBuilderAddManual handles the builder_add_manual tool call.
func (h *Handlers) HandleBuilderAddManual(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.AddManualInput](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.AddManual(h.builder, input)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleBuilderUpdateAmount handles the builder_update_amount tool call.
func (h *Handlers) HandleBuilderUpdateAmount(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.UpdateAmountInput](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.UpdateAmount(h.builder, input)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleBuilderRemove handles the builder_remove tool call.
func (h *Handlers) HandleBuilderRemove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.RemoveInput](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Remove(h.builder, input)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleBuilderClear handles the builder_clear tool call.
func (h *Handlers) HandleBuilderClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(ops.Clear(h.builder))
}

// HandleRecipeSave handles the recipe_save tool call.
func (h *Handlers) HandleRecipeSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.SaveRecipeInput](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.SaveCustomRecipe(ctx, h.store, h.builder, input)
	if err != nil {
		return errorResult(err), nil
	}
	h.logger.Info("recipe saved", zap.String("id", result.ID), zap.Int("ingredients", result.IngredientCount))

	return successResult(result)
}

// HandleRecipeList handles the recipe_list tool call.
func (h *Handlers) HandleRecipeList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.ListInput](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	return successResult(ops.ListRecipes(h.store, input))
}

// HandleRecipeShow handles the recipe_show tool call.
func (h *Handlers) HandleRecipeShow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.RenderInput](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.RenderRecipe(h.store, input)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRecipeDelete handles the recipe_delete tool call.
func (h *Handlers) HandleRecipeDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.DeleteInput](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.DeleteRecipe(ctx, h.store, input)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleIdeaSave handles the idea_save tool call.
func (h *Handlers) HandleIdeaSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[BarcodeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	entry, err := h.resolve(ctx, input.Barcode, true)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.SaveIdea(ctx, h.store, ops.SaveIdeaInput{
		Product:    entry.product,
		Enrichment: *entry.enrichment,
	})
	if err != nil {
		return errorResult(err), nil
	}
	if result.WasSaved {
		h.logger.Info("saved duplicate idea", zap.String("barcode", result.Barcode))
	}

	return successResult(result)
}

// HandleIdeaList handles the idea_list tool call.
func (h *Handlers) HandleIdeaList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.ListInput](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	return successResult(ops.ListIdeas(h.store, input))
}

// HandleIdeaShow handles the idea_show tool call.
func (h *Handlers) HandleIdeaShow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.RenderInput](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.RenderIdea(h.store, input)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleIdeaDelete handles the idea_delete tool call.
func (h *Handlers) HandleIdeaDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.DeleteInput](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.DeleteIdea(ctx, h.store, input)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Session cache

func (h *Handlers) remember(p *product.Product, e *product.Enrichment) {
	if p == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	entry := h.recent[p.Barcode]
	entry.product = p
	if e != nil {
		entry.enrichment = e
	}
	h.recent[p.Barcode] = entry
}

func (h *Handlers) cached(barcode string) (lookupEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	entry, ok := h.recent[barcode]
	return entry, ok
}

// resolve returns the product for barcode, reusing the session cache.
// With withEnrichment, a missing enrichment is fetched and cached too.
func (h *Handlers) resolve(ctx context.Context, barcode string, withEnrichment bool) (lookupEntry, error) {
	barcode = strings.TrimSpace(barcode)
	if err := validate.Struct(&BarcodeRequest{Barcode: barcode}); err != nil {
		return lookupEntry{}, err
	}

	entry, ok := h.cached(barcode)
	if !ok {
		p, err := h.lookuper.Lookup(ctx, barcode)
		if err != nil {
			return lookupEntry{}, err
		}
		entry.product = p
	}

	if withEnrichment && entry.enrichment == nil {
		var e product.Enrichment
		if h.enricher != nil {
			e = h.enricher.Enrich(ctx, entry.product)
		}
		entry.enrichment = &e
	}

	h.remember(entry.product, entry.enrichment)
	return entry, nil
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if pErr, ok := errors.As(err); ok {
		errorObj := map[string]any{
			"code":    pErr.Code,
			"message": errors.Message(err),
			"status":  pErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if pErr.Code != errors.ErrInternal && pErr.Details != nil {
			errorObj["details"] = pErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
