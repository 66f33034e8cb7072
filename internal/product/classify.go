package product

import "strings"

// Rule maps a keyword group to an advisory string.
// A rule matches when the lower-cased category text contains any of its keywords.
type Rule struct {
	Name     string
	Keywords []string
	Advice   string
}

// matches reports whether category (already lower-cased) contains any keyword.
func (r Rule) matches(category string) bool {
	for _, k := range r.Keywords {
		if strings.Contains(category, k) {
			return true
		}
	}
	return false
}

// Fallback advisories used when no rule matches.
const (
	DefaultStorageTip             = "Store in a cool, dry place. Check packaging for exact instructions."
	DefaultExpirationAfterOpening = "A few days after opening (refrigerated). Check packaging."
)

// storageRules is evaluated top to bottom; the first match wins.
var storageRules = []Rule{
	{
		Name:     "produce",
		Keywords: []string{"fruit", "vegetable", "produce", "groente"},
		Advice:   "Store in the fridge in an open container. Wash only before use.",
	},
	{
		Name:     "meat",
		Keywords: []string{"meat", "vlees", "chicken", "beef", "pork", "lamb"},
		Advice:   "Store in the fridge (0–4°C) and use within 1–2 days after opening.",
	},
	{
		Name:     "fish",
		Keywords: []string{"fish", "vis", "seafood"},
		Advice:   "Store in the fridge (0–3°C) and use within 1 day after opening.",
	},
	{
		Name:     "dairy",
		Keywords: []string{"dairy", "zuivel", "cheese", "kaas", "yogurt", "milk", "melk"},
		Advice:   "Keep refrigerated (0–6°C) and use within a few days after opening.",
	},
	{
		Name:     "chocolate",
		Keywords: []string{"chocolate", "chocolade"},
		Advice:   "Store in a cool, dark place, do not refrigerate.",
	},
	{
		Name:     "bread",
		Keywords: []string{"bread", "brood", "bakery", "bakkerij"},
		Advice:   "Store at room temperature in the bag. Freezing extends shelf life.",
	},
}

// expirationRules has its own keyword groups and order, independent of storageRules.
var expirationRules = []Rule{
	{
		Name:     "meat",
		Keywords: []string{"meat", "vlees", "chicken"},
		Advice:   "1–2 days after opening in the fridge.",
	},
	{
		Name:     "fish",
		Keywords: []string{"fish", "vis"},
		Advice:   "1 day after opening in the fridge.",
	},
	{
		Name:     "dairy",
		Keywords: []string{"yogurt", "cheese", "kaas", "dairy", "zuivel"},
		Advice:   "3–5 days after opening (refrigerated).",
	},
	{
		Name:     "juice",
		Keywords: []string{"juice", "sap", "beverage", "drink"},
		Advice:   "3–7 days after opening in the fridge.",
	},
	{
		Name:     "sauce",
		Keywords: []string{"sauce", "saus", "condiment"},
		Advice:   "1–3 months after opening in the fridge.",
	},
}

// ClassifyStorage returns the storage tip for free-text category input.
func ClassifyStorage(category string) string {
	_, advice := match(storageRules, category, DefaultStorageTip)
	return advice
}

// ClassifyExpirationAfterOpening returns the post-opening shelf-life estimate for category input.
func ClassifyExpirationAfterOpening(category string) string {
	_, advice := match(expirationRules, category, DefaultExpirationAfterOpening)
	return advice
}

// MatchStorage returns the name of the storage rule that fired ("" for the fallback) and its advice.
func MatchStorage(category string) (string, string) {
	return match(storageRules, category, DefaultStorageTip)
}

// MatchExpiration returns the name of the expiration rule that fired ("" for the fallback) and its advice.
func MatchExpiration(category string) (string, string) {
	return match(expirationRules, category, DefaultExpirationAfterOpening)
}

// StorageRules returns a copy of the ordered storage rule table.
func StorageRules() []Rule {
	return copyRules(storageRules)
}

// ExpirationRules returns a copy of the ordered expiration rule table.
func ExpirationRules() []Rule {
	return copyRules(expirationRules)
}

func match(rules []Rule, category, fallback string) (string, string) {
	category = strings.ToLower(category)
	for _, r := range rules {
		if r.matches(category) {
			return r.Name, r.Advice
		}
	}
	return "", fallback
}

func copyRules(rules []Rule) []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		out[i] = Rule{
			Name:     r.Name,
			Keywords: append([]string(nil), r.Keywords...),
			Advice:   r.Advice,
		}
	}
	return out
}
