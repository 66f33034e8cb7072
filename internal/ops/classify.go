package ops

import "github.com/hpungsan/pantry/internal/product"

// FallbackRule names the generic advice when no keyword rule matched.
const FallbackRule = "default"

// ClassifyInput contains parameters for the Classify operation.
type ClassifyInput struct {
	Category string `json:"category"`
}

// ClassifyOutput reports both classifier results and which rule fired.
type ClassifyOutput struct {
	Category               string `json:"category"`
	StorageRule            string `json:"storage_rule"`
	StorageTip             string `json:"storage_tip"`
	ExpirationRule         string `json:"expiration_rule"`
	ExpirationAfterOpening string `json:"expiration_after_opening"`
}

// Classify runs the storage and expiration classifiers over free category text.
// It never fails.
func Classify(input ClassifyInput) *ClassifyOutput {
	storageRule, storageTip := product.MatchStorage(input.Category)
	expirationRule, expiration := product.MatchExpiration(input.Category)

	return &ClassifyOutput{
		Category:               input.Category,
		StorageRule:            ruleName(storageRule),
		StorageTip:             storageTip,
		ExpirationRule:         ruleName(expirationRule),
		ExpirationAfterOpening: expiration,
	}
}

func ruleName(name string) string {
	if name == "" {
		return FallbackRule
	}
	return name
}
