// Package ops implements pantry operations shared by the CLI and the MCP server.
// Each operation takes an Input struct and returns an Output struct or a
// *errors.PantryError.
package ops

import (
	"context"

	"github.com/hpungsan/pantry/internal/product"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// Lookuper resolves a barcode into a normalized product.
type Lookuper interface {
	Lookup(ctx context.Context, barcode string) (*product.Product, error)
}

// Enricher returns enrichment for a product. It never fails; placeholders
// stand in for missing credentials or collaborator errors.
type Enricher interface {
	Enrich(ctx context.Context, p *product.Product) product.Enrichment
}

// paginate slices items (already newest first) by limit and offset.
func paginate[T any](items []T, limit, offset int) ([]T, Pagination) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset = max(offset, 0)

	total := len(items)
	start := min(offset, total)
	end := min(start+limit, total)

	page := make([]T, end-start)
	copy(page, items[start:end])

	return page, Pagination{
		Limit:   limit,
		Offset:  offset,
		HasMore: end < total,
		Total:   total,
	}
}
