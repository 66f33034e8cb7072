package product

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Display sentinels for missing source data.
const (
	UnknownName            = "Unknown Product"
	UnknownBrand           = "Unknown Brand"
	DefaultExpirationClose = "No date known, see packaging."
)

// CaloriesUnavailable is the wire marker for a product without energy data.
const CaloriesUnavailable = "N/A"

// Product is the canonical, normalized view of a packaged food item.
// It is built once per successful lookup and not modified afterwards.
type Product struct {
	// Barcode is the natural key used for the lookup
	Barcode string `json:"barcode"`

	Name  string `json:"name"`
	Brand string `json:"brand"`

	// ImageURL references an external image; empty when the source has none
	ImageURL string `json:"imageUrl,omitempty"`

	// CaloriesPer100g is rounded kcal per 100 g, or unavailable
	CaloriesPer100g Calories `json:"caloriesPer100g"`

	StorageTip             string `json:"storageTip"`
	ExpirationAfterOpening string `json:"expirationAfterOpening"`
	ExpirationUnopened     string `json:"expirationUnopened"`

	// Categories is the raw classifier input (free text + tags)
	Categories string `json:"categories"`

	IngredientsText string `json:"ingredientsText,omitempty"`
}

// Calories is an integer kcal value that can be explicitly unavailable.
// The zero value is unavailable; zero kcal is KnownCalories(0).
type Calories struct {
	Value int
	Known bool
}

// KnownCalories returns an available calorie value.
func KnownCalories(v int) Calories {
	return Calories{Value: v, Known: true}
}

// UnknownCalories returns the unavailable marker.
func UnknownCalories() Calories {
	return Calories{}
}

// Or returns the value when known, else fallback.
func (c Calories) Or(fallback int) int {
	if c.Known {
		return c.Value
	}
	return fallback
}

// String returns the value or "N/A".
func (c Calories) String() string {
	if !c.Known {
		return CaloriesUnavailable
	}
	return strconv.Itoa(c.Value)
}

// MarshalJSON encodes a number, or the "N/A" marker when unavailable.
func (c Calories) MarshalJSON() ([]byte, error) {
	if !c.Known {
		return json.Marshal(CaloriesUnavailable)
	}
	return json.Marshal(c.Value)
}

// UnmarshalJSON accepts a number, a numeric string, "N/A" or null.
func (c *Calories) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, ok := parseKcal(raw)
	if !ok {
		if s, isStr := raw.(string); raw == nil || (isStr && (s == CaloriesUnavailable || strings.TrimSpace(s) == "")) {
			*c = UnknownCalories()
			return nil
		}
		return fmt.Errorf("invalid calories value: %s", string(data))
	}
	*c = KnownCalories(int(math.Round(v)))
	return nil
}

// parseKcal converts a decoded JSON nutrient value to a float.
// Open Food Facts sends numbers, but some records carry numeric strings.
func parseKcal(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
