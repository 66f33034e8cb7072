package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/pantry/internal/collection"
	"github.com/hpungsan/pantry/internal/product"
	"github.com/hpungsan/pantry/internal/validate"
)

// LookupInput contains parameters for the Lookup operation.
type LookupInput struct {
	Barcode string `json:"barcode" validate:"required,max=64"`

	// SkipEnrichment leaves Enrichment nil and makes no AI call
	SkipEnrichment bool `json:"skip_enrichment"`
}

// LookupOutput contains the result of the Lookup operation.
type LookupOutput struct {
	Product    *product.Product    `json:"product"`
	Enrichment *product.Enrichment `json:"enrichment,omitempty"`

	// Saved reports whether an idea with this barcode and recipe idea is already stored
	Saved bool `json:"saved"`
}

// Lookup fetches a product by barcode and, unless skipped, enriches it.
// Lookup failures (NOT_FOUND, UPSTREAM_FAILURE) are returned as-is.
// store may be nil, in which case Saved is always false.
func Lookup(ctx context.Context, lookuper Lookuper, enricher Enricher, store *collection.Store, input LookupInput) (*LookupOutput, error) {
	input.Barcode = strings.TrimSpace(input.Barcode)
	if err := validate.Struct(&input); err != nil {
		return nil, err
	}

	p, err := lookuper.Lookup(ctx, input.Barcode)
	if err != nil {
		return nil, err
	}

	out := &LookupOutput{Product: p}
	if input.SkipEnrichment || enricher == nil {
		return out, nil
	}

	e := enricher.Enrich(ctx, p)
	out.Enrichment = &e
	if store != nil {
		out.Saved = store.IsIdeaSaved(p.Barcode, e.RecipeIdea)
	}
	return out, nil
}
