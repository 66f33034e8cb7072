package recipe

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// md renders GFM tables; raw HTML in instructions is not passed through.
var md = goldmark.New(goldmark.WithExtensions(extension.Table))

// Markdown renders a saved recipe as a markdown document.
// Instructions are user-written markdown and are embedded as-is.
func Markdown(r *CustomRecipe) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", r.Name)
	fmt.Fprintf(&b, "_Created %s_\n\n", time.UnixMilli(r.DateCreated).UTC().Format("2006-01-02"))

	b.WriteString("## Ingredients\n\n")
	b.WriteString("| Ingredient | Amount | kcal |\n")
	b.WriteString("|---|---:|---:|\n")
	for _, ing := range r.Ingredients {
		fmt.Fprintf(&b, "| %s | %sg | %d |\n",
			escapeCell(ing.Name), formatGrams(ing.AmountGrams), Round(ing.ContributedCalories()))
	}
	fmt.Fprintf(&b, "\n**Total: %d kcal**\n", Round(r.TotalCalories))

	if instructions := strings.TrimSpace(r.Instructions); instructions != "" {
		b.WriteString("\n## Instructions\n\n")
		b.WriteString(instructions)
		b.WriteString("\n")
	}

	return b.String()
}

// IdeaMarkdown renders a saved idea as a markdown document.
func IdeaMarkdown(s *SavedIdea) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", s.Product.Name)
	fmt.Fprintf(&b, "_%s · %s kcal/100g · saved %s_\n\n",
		s.Product.Brand, s.Product.CaloriesPer100g, time.UnixMilli(s.DateSaved).UTC().Format("2006-01-02"))
	fmt.Fprintf(&b, "> %s\n\n", s.Enrichment.RecipeIdea)
	fmt.Fprintf(&b, "- **Storage:** %s\n", s.Product.StorageTip)
	fmt.Fprintf(&b, "- **After opening:** %s\n", s.Product.ExpirationAfterOpening)
	fmt.Fprintf(&b, "- **Unopened:** %s\n", s.Product.ExpirationUnopened)
	fmt.Fprintf(&b, "- **Fun fact:** %s\n", s.Enrichment.FunFact)

	return b.String()
}

// HTML converts markdown to an HTML fragment.
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatGrams(g float64) string {
	return strconv.FormatFloat(g, 'f', -1, 64)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
