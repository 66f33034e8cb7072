package product

import "strings"

// Enrichment is AI-generated supplementary text shown alongside a Product.
// It is always fully populated; placeholders stand in when the source is unavailable.
type Enrichment struct {
	StorageTip string `json:"aiStorageTip"`
	RecipeIdea string `json:"recipeIdea"`
	FunFact    string `json:"funFact"`
}

// MissingKeyEnrichment is returned when no AI credentials are configured.
func MissingKeyEnrichment() Enrichment {
	return Enrichment{
		StorageTip: "AI key missing.",
		RecipeIdea: "AI features unavailable.",
		FunFact:    "Did you know? This app uses Open Food Facts!",
	}
}

// UnavailableEnrichment is returned when the AI call fails.
func UnavailableEnrichment() Enrichment {
	return Enrichment{
		StorageTip: "Could not retrieve AI tips.",
		RecipeIdea: "Could not retrieve recipe.",
		FunFact:    "Could not retrieve fun fact.",
	}
}

// Complete fills blank fields from fallback.
func (e Enrichment) Complete(fallback Enrichment) Enrichment {
	if strings.TrimSpace(e.StorageTip) == "" {
		e.StorageTip = fallback.StorageTip
	}
	if strings.TrimSpace(e.RecipeIdea) == "" {
		e.RecipeIdea = fallback.RecipeIdea
	}
	if strings.TrimSpace(e.FunFact) == "" {
		e.FunFact = fallback.FunFact
	}
	return e
}
