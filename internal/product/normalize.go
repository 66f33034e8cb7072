package product

import (
	"math"
	"strings"

	"github.com/hpungsan/pantry/internal/errors"
)

// Nutrient keys read from the source nutriments map, in preference order.
const (
	NutrientKcal100g = "energy-kcal_100g"
	NutrientKcal     = "energy-kcal"
)

// RawRecord is the lookup response envelope (Open Food Facts API v0 shape).
type RawRecord struct {
	// Status is 0 when the barcode matched nothing
	Status  int         `json:"status"`
	Product *RawProduct `json:"product,omitempty"`
}

// RawProduct holds the source fields the normalizer reads. All are optional.
type RawProduct struct {
	ProductName            string         `json:"product_name,omitempty"`
	Brands                 string         `json:"brands,omitempty"`
	ImageFrontURL          string         `json:"image_front_url,omitempty"`
	ImageURL               string         `json:"image_url,omitempty"`
	Categories             string         `json:"categories,omitempty"`
	CategoriesTags         []string       `json:"categories_tags,omitempty"`
	ConservationConditions string         `json:"conservation_conditions,omitempty"`
	ExpirationDate         string         `json:"expiration_date,omitempty"`
	IngredientsText        string         `json:"ingredients_text,omitempty"`
	Nutriments             map[string]any `json:"nutriments,omitempty"`
}

// Normalize maps a raw lookup record into a Product.
// It fails only with NOT_FOUND; every other missing field is defaulted.
func Normalize(raw *RawRecord, barcode string) (*Product, error) {
	if raw == nil || raw.Status == 0 || raw.Product == nil {
		return nil, errors.NewProductNotFound(barcode)
	}
	p := raw.Product

	categories := CategoryString(p.Categories, p.CategoriesTags)

	storageTip := strings.TrimSpace(p.ConservationConditions)
	if storageTip == "" {
		storageTip = ClassifyStorage(categories)
	}

	// Source expiration data is never used for the after-opening estimate.
	expirationOpened := ClassifyExpirationAfterOpening(categories)

	expirationClosed := strings.TrimSpace(p.ExpirationDate)
	if expirationClosed == "" {
		expirationClosed = DefaultExpirationClose
	}

	return &Product{
		Barcode:                barcode,
		Name:                   orDefault(p.ProductName, UnknownName),
		Brand:                  orDefault(p.Brands, UnknownBrand),
		ImageURL:               firstNonBlank(p.ImageFrontURL, p.ImageURL),
		CaloriesPer100g:        ExtractCalories(p.Nutriments),
		StorageTip:             storageTip,
		ExpirationAfterOpening: expirationOpened,
		ExpirationUnopened:     expirationClosed,
		Categories:             categories,
		IngredientsText:        p.IngredientsText,
	}, nil
}

// CategoryString joins the free-text category field with the space-joined tags.
// Two empty inputs yield "".
func CategoryString(categories string, tags []string) string {
	return strings.TrimSpace(categories + " " + strings.Join(tags, " "))
}

// ExtractCalories prefers kcal per 100 g, falls back to the unscaled kcal field,
// and rounds to the nearest integer. Neither present yields unavailable.
func ExtractCalories(nutriments map[string]any) Calories {
	for _, key := range []string{NutrientKcal100g, NutrientKcal} {
		v, present := nutriments[key]
		if !present || v == nil {
			continue
		}
		if f, ok := parseKcal(v); ok {
			return KnownCalories(int(math.Round(f)))
		}
	}
	return UnknownCalories()
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
