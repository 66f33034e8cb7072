package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/hpungsan/pantry/internal/collection"
	"github.com/hpungsan/pantry/internal/db"
	"github.com/hpungsan/pantry/internal/errors"
	"github.com/hpungsan/pantry/internal/kv"
	"github.com/hpungsan/pantry/internal/ops"
	"github.com/hpungsan/pantry/internal/product"
)

const chocoBarcode = "3017620422003"

type fakeLookup struct {
	products map[string]*product.Product
}

func (f *fakeLookup) Lookup(_ context.Context, barcode string) (*product.Product, error) {
	p, ok := f.products[barcode]
	if !ok {
		return nil, errors.NewProductNotFound(barcode)
	}
	cp := *p
	return &cp, nil
}

type fakeEnricher struct{}

func (fakeEnricher) Enrich(context.Context, *product.Product) product.Enrichment {
	return product.Enrichment{
		StorageTip: "Keep the lid on.",
		RecipeIdea: "Spread on warm toast.",
		FunFact:    "Hazelnuts are drupes.",
	}
}

// setupTestDeps creates a temporary database-backed store and fake collaborators.
func setupTestDeps(t *testing.T) *cliDeps {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store, err := collection.Open(context.Background(), kv.NewSQLite(database), nil)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	return &cliDeps{
		store: store,
		lookuper: &fakeLookup{products: map[string]*product.Product{
			chocoBarcode: {
				Barcode:         chocoBarcode,
				Name:            "Choco Spread",
				Brand:           "Acme",
				CaloriesPer100g: product.KnownCalories(539),
			},
		}},
		enricher: fakeEnricher{},
		logger:   zap.NewNop(),
	}
}

// runCLI runs one command on a fresh app and returns stdout and stderr.
func runCLI(t *testing.T, d *cliDeps, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newCLIApp(d)
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.Run(append([]string{"pantry"}, args...))
	return stdout.String(), stderr.String(), err
}

func mustRun(t *testing.T, d *cliDeps, args ...string) string {
	t.Helper()
	out, _, err := runCLI(t, d, args...)
	if err != nil {
		t.Fatalf("%v failed: %v", args, err)
	}
	return out
}

func decodeJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, s)
	}
	return v
}

func TestParseIngredient(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantName  string
		wantKcal  float64
		wantGrams float64
		wantErr   bool
	}{
		{name: "name and kcal", input: "Rice:130", wantName: "Rice", wantKcal: 130},
		{name: "with grams", input: "Rice:130:200", wantName: "Rice", wantKcal: 130, wantGrams: 200},
		{name: "decimal values", input: "Oil:884.5:12.5", wantName: "Oil", wantKcal: 884.5, wantGrams: 12.5},
		{name: "colon in name", input: "Soup: tomato:40", wantName: "Soup: tomato", wantKcal: 40},
		{name: "no kcal", input: "Rice", wantErr: true},
		{name: "kcal not a number", input: "Rice:lots", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIngredient(tt.input)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrInvalidRequest) {
					t.Fatalf("expected INVALID_REQUEST, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", got.Name, tt.wantName)
			}
			if got.CaloriesPer100g == nil || *got.CaloriesPer100g != tt.wantKcal {
				t.Errorf("CaloriesPer100g = %v, want %v", got.CaloriesPer100g, tt.wantKcal)
			}
			if got.AmountGrams != tt.wantGrams {
				t.Errorf("AmountGrams = %v, want %v", got.AmountGrams, tt.wantGrams)
			}
		})
	}
}

func TestParseBarcodeAmount(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantBarcode string
		wantGrams   *float64
		wantErr     bool
	}{
		{name: "barcode only", input: "123", wantBarcode: "123"},
		{name: "with grams", input: "123:40", wantBarcode: "123", wantGrams: floatPtr(40)},
		{name: "trimmed", input: " 123 ", wantBarcode: "123"},
		{name: "bad grams", input: "123:abc", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "grams only", input: ":40", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			barcode, grams, err := parseBarcodeAmount(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if barcode != tt.wantBarcode {
				t.Errorf("barcode = %q, want %q", barcode, tt.wantBarcode)
			}
			if (grams == nil) != (tt.wantGrams == nil) || (grams != nil && *grams != *tt.wantGrams) {
				t.Errorf("grams = %v, want %v", grams, tt.wantGrams)
			}
		})
	}
}

func floatPtr(f float64) *float64 { return &f }

func TestCLILookup(t *testing.T) {
	d := setupTestDeps(t)

	output := decodeJSON[ops.LookupOutput](t, mustRun(t, d, "lookup", chocoBarcode))
	if output.Product.Name != "Choco Spread" {
		t.Errorf("name = %q, want Choco Spread", output.Product.Name)
	}
	if output.Enrichment == nil || output.Enrichment.RecipeIdea != "Spread on warm toast." {
		t.Errorf("enrichment = %+v", output.Enrichment)
	}

	output = decodeJSON[ops.LookupOutput](t, mustRun(t, d, "lookup", "--no-ai", chocoBarcode))
	if output.Enrichment != nil {
		t.Errorf("expected no enrichment with --no-ai, got %+v", output.Enrichment)
	}
}

func TestCLIClassify(t *testing.T) {
	d := setupTestDeps(t)

	output := decodeJSON[ops.ClassifyOutput](t, mustRun(t, d, "classify", "Fresh", "fish"))
	if output.Category != "Fresh fish" {
		t.Errorf("category = %q, want joined args", output.Category)
	}
	if output.StorageRule != "fish" || output.ExpirationRule != "fish" {
		t.Errorf("rules = %s/%s, want fish/fish", output.StorageRule, output.ExpirationRule)
	}
}

func TestCLIComposeAndRecipes(t *testing.T) {
	d := setupTestDeps(t)

	saved := decodeJSON[ops.SaveRecipeOutput](t, mustRun(t, d,
		"recipes", "compose",
		"--name", "Chocolate toast",
		"--instructions", "Toast, then spread.",
		"--barcode", chocoBarcode+":40",
		"--ingredient", "Bread:250:80",
	))
	if saved.IngredientCount != 2 {
		t.Errorf("ingredient_count = %d, want 2", saved.IngredientCount)
	}
	// 539 * 0.4 + 250 * 0.8
	if saved.TotalKcal != 416 {
		t.Errorf("total_kcal = %d, want 416", saved.TotalKcal)
	}

	listed := decodeJSON[ops.ListRecipesOutput](t, mustRun(t, d, "recipes", "list"))
	if len(listed.Items) != 1 || listed.Items[0].ID != saved.ID {
		t.Fatalf("list = %+v, want the saved recipe", listed.Items)
	}

	md := mustRun(t, d, "recipes", "show", saved.ID)
	for _, want := range []string{"# Chocolate toast", "| Choco Spread | 40g | 216 |", "Toast, then spread."} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}

	html := mustRun(t, d, "recipes", "show", "--html", saved.ID)
	if !strings.Contains(html, "<table>") {
		t.Errorf("html missing table\n%s", html)
	}

	envelope := decodeJSON[ops.RenderOutput](t, mustRun(t, d, "recipes", "show", "--json", saved.ID))
	if envelope.Format != ops.FormatMarkdown || envelope.ID != saved.ID {
		t.Errorf("envelope = %+v", envelope)
	}

	deleted := decodeJSON[ops.DeleteOutput](t, mustRun(t, d, "recipes", "delete", saved.ID))
	if !deleted.Deleted {
		t.Error("expected deleted=true")
	}
	deleted = decodeJSON[ops.DeleteOutput](t, mustRun(t, d, "recipes", "delete", saved.ID))
	if deleted.Deleted {
		t.Error("expected second delete to be a no-op")
	}
}

func TestCLICompose_DryRun(t *testing.T) {
	d := setupTestDeps(t)

	view := decodeJSON[ops.BuilderView](t, mustRun(t, d,
		"recipes", "compose", "--dry-run",
		"--ingredient", "Rice:130",
		"--ingredient", "Oil:884:10",
	))
	if view.Count != 2 {
		t.Errorf("count = %d, want 2", view.Count)
	}
	// 130 * 1 + 884 * 0.1
	if view.TotalKcal != 218 {
		t.Errorf("total_kcal = %d, want 218", view.TotalKcal)
	}
	if d.store.Recipes.Len() != 0 {
		t.Errorf("dry run saved %d recipes", d.store.Recipes.Len())
	}
}

func TestCLIIdeas(t *testing.T) {
	d := setupTestDeps(t)

	first := decodeJSON[ops.SaveIdeaOutput](t, mustRun(t, d, "ideas", "save", chocoBarcode))
	if first.WasSaved {
		t.Error("first save should not be flagged as duplicate")
	}

	out, stderr, err := runCLI(t, d, "ideas", "save", chocoBarcode)
	if err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	if second := decodeJSON[ops.SaveIdeaOutput](t, out); !second.WasSaved {
		t.Error("second save should be flagged as duplicate")
	}
	if !strings.Contains(stderr, "already saved") {
		t.Errorf("expected duplicate note on stderr, got %q", stderr)
	}

	listed := decodeJSON[ops.ListIdeasOutput](t, mustRun(t, d, "ideas", "list", "--limit", "1"))
	if len(listed.Items) != 1 || !listed.Pagination.HasMore || listed.Pagination.Total != 2 {
		t.Errorf("list = %+v", listed)
	}
	if listed.Cookbook.Ideas != 2 {
		t.Errorf("cookbook ideas = %d, want 2", listed.Cookbook.Ideas)
	}

	md := mustRun(t, d, "ideas", "show", first.ID)
	if !strings.Contains(md, "> Spread on warm toast.") {
		t.Errorf("idea markdown missing recipe idea\n%s", md)
	}

	deleted := decodeJSON[ops.DeleteOutput](t, mustRun(t, d, "ideas", "delete", first.ID))
	if !deleted.Deleted {
		t.Error("expected deleted=true")
	}
}

// TestCLIErrorHandling tests error handling in CLI commands.
func TestCLIErrorHandling(t *testing.T) {
	d := setupTestDeps(t)

	tests := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "lookup unknown barcode", args: []string{"lookup", "000"}, wantMsg: "[NOT_FOUND] Product not found"},
		{name: "lookup without barcode", args: []string{"lookup"}, wantMsg: "[INVALID_REQUEST]"},
		{name: "compose without ingredients", args: []string{"recipes", "compose", "--name", "Empty"}, wantMsg: "[INVALID_REQUEST] recipe has no ingredients"},
		{name: "compose without name", args: []string{"recipes", "compose", "--ingredient", "Rice:130"}, wantMsg: "[INVALID_REQUEST]"},
		{name: "compose bad ingredient", args: []string{"recipes", "compose", "--name", "X", "--ingredient", "Rice"}, wantMsg: "[INVALID_REQUEST]"},
		{name: "compose unknown barcode", args: []string{"recipes", "compose", "--name", "X", "--barcode", "999"}, wantMsg: "barcode 999"},
		{name: "show missing recipe", args: []string{"recipes", "show", "nope"}, wantMsg: "[NOT_FOUND]"},
		{name: "save idea unknown barcode", args: []string{"ideas", "save", "999"}, wantMsg: "[NOT_FOUND]"},
		{name: "serve bad port", args: []string{"serve", "--port", "0"}, wantMsg: "[INVALID_REQUEST] port must be 1-65535"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, d, tt.args...)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantMsg)
			}
		})
	}

	if d.store.Recipes.Len() != 0 || d.store.Ideas.Len() != 0 {
		t.Error("failed commands must not persist anything")
	}
}

func TestCLIHelpWithoutDeps(t *testing.T) {
	out, _, err := runCLI(t, nil, "--help")
	if err != nil {
		t.Fatalf("help failed: %v", err)
	}
	for _, want := range []string{"lookup", "classify", "ideas", "recipes", "serve"} {
		if !strings.Contains(out, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

// TestIsCLIMode tests the isCLIMode function.
func TestIsCLIMode(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{name: "no args", args: []string{"pantry"}, expected: false},
		{name: "lookup command", args: []string{"pantry", "lookup"}, expected: true},
		{name: "recipes command", args: []string{"pantry", "recipes"}, expected: true},
		{name: "ideas command", args: []string{"pantry", "ideas"}, expected: true},
		{name: "serve command", args: []string{"pantry", "serve"}, expected: true},
		{name: "help flag", args: []string{"pantry", "--help"}, expected: true},
		{name: "short version flag", args: []string{"pantry", "-v"}, expected: true},
		{name: "unknown arg defaults to MCP", args: []string{"pantry", "--unknown"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			if result := isCLIMode(); result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

// TestIsHelpOrVersion tests the isHelpOrVersion function.
func TestIsHelpOrVersion(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{name: "no args", args: []string{"pantry"}, expected: false},
		{name: "help flag", args: []string{"pantry", "--help"}, expected: true},
		{name: "short help flag", args: []string{"pantry", "-h"}, expected: true},
		{name: "version flag", args: []string{"pantry", "--version"}, expected: true},
		{name: "help subcommand", args: []string{"pantry", "help"}, expected: true},
		{name: "lookup command is not help", args: []string{"pantry", "lookup"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			if result := isHelpOrVersion(); result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

// TestReadStdinWithLimit tests the readStdin function respects size limits.
func TestReadStdinWithLimit(t *testing.T) {
	withStdin := func(t *testing.T, content string) {
		t.Helper()
		r, w, err := os.Pipe()
		if err != nil {
			t.Fatalf("Failed to create pipe: %v", err)
		}
		go func() {
			_, _ = w.WriteString(content)
			w.Close()
		}()
		oldStdin := os.Stdin
		os.Stdin = r
		t.Cleanup(func() { os.Stdin = oldStdin })
	}

	t.Run("within limit", func(t *testing.T) {
		withStdin(t, "  small content\n")
		result, err := readStdin(1000)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if result != "small content" {
			t.Errorf("expected trimmed content, got %q", result)
		}
	})

	t.Run("exceeds limit", func(t *testing.T) {
		withStdin(t, strings.Repeat("x", 100))
		_, err := readStdin(50)
		if !errors.Is(err, errors.ErrInvalidRequest) {
			t.Errorf("expected INVALID_REQUEST, got %v", err)
		}
	})
}
