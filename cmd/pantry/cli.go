package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/pantry/internal/collection"
	"github.com/hpungsan/pantry/internal/errors"
	"github.com/hpungsan/pantry/internal/ops"
	"github.com/hpungsan/pantry/internal/recipe"
	"github.com/hpungsan/pantry/internal/web"
)

// MaxInstructionsBytes bounds instructions read from stdin.
const MaxInstructionsBytes = 64 * 1024

// cliDeps are the collaborators CLI commands run against.
type cliDeps struct {
	store    *collection.Store
	lookuper ops.Lookuper
	enricher ops.Enricher
	logger   *zap.Logger
}

// newCLIApp creates the CLI application with all commands.
// d may be nil when only help or version output is needed.
func newCLIApp(d *cliDeps) *cli.App {
	app := &cli.App{
		Name:    "pantry",
		Usage:   "Barcode lookup and recipe composer",
		Version: Version,
		Commands: []*cli.Command{
			lookupCmd(d),
			classifyCmd(),
			ideasCmd(d),
			recipesCmd(d),
			serveCmd(d),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// serveCmd creates the serve command for the local cookbook viewer.
func serveCmd(d *cliDeps) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Browse saved recipes and ideas in a local web viewer",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: web.DefaultBind, Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: web.DefaultPort, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			port := c.Int("port")
			if port <= 0 || port > 65535 {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("port must be 1-65535, got %d", port)))
			}
			srv, err := web.NewServer(d.store, d.logger, Version, c.String("bind"), port)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			if err := web.Run(srv, d.logger); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// lookupCmd creates the lookup command.
func lookupCmd(d *cliDeps) *cli.Command {
	return &cli.Command{
		Name:      "lookup",
		Usage:     "Look up a product by barcode",
		ArgsUsage: "<barcode>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-ai", Usage: "Skip AI enrichment"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Lookup(c.Context, d.lookuper, d.enricher, d.store, ops.LookupInput{
				Barcode:        c.Args().First(),
				SkipEnrichment: c.Bool("no-ai"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// classifyCmd creates the classify command.
func classifyCmd() *cli.Command {
	return &cli.Command{
		Name:      "classify",
		Usage:     "Show storage and after-opening advice for category text",
		ArgsUsage: "<category text>",
		Action: func(c *cli.Context) error {
			category := strings.Join(c.Args().Slice(), " ")
			return outputJSON(c.App.Writer, ops.Classify(ops.ClassifyInput{Category: category}))
		},
	}
}

// ideasCmd creates the ideas command group.
func ideasCmd(d *cliDeps) *cli.Command {
	return &cli.Command{
		Name:  "ideas",
		Usage: "Manage saved recipe ideas",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List saved ideas, newest first",
				Flags: listFlags(),
				Action: func(c *cli.Context) error {
					return outputJSON(c.App.Writer, ops.ListIdeas(d.store, listInput(c)))
				},
			},
			{
				Name:      "save",
				Usage:     "Look up a product and save it with its AI recipe idea",
				ArgsUsage: "<barcode>",
				Action: func(c *cli.Context) error {
					found, err := ops.Lookup(c.Context, d.lookuper, d.enricher, d.store, ops.LookupInput{
						Barcode: c.Args().First(),
					})
					if err != nil {
						return outputError(err)
					}
					input := ops.SaveIdeaInput{Product: found.Product}
					if found.Enrichment != nil {
						input.Enrichment = *found.Enrichment
					}
					output, err := ops.SaveIdea(c.Context, d.store, input)
					if err != nil {
						return outputError(err)
					}
					if output.WasSaved {
						fmt.Fprintln(c.App.ErrWriter, "note: an identical idea was already saved; stored another copy")
					}
					return outputJSON(c.App.Writer, output)
				},
			},
			{
				Name:      "show",
				Usage:     "Render a saved idea",
				ArgsUsage: "<id>",
				Flags:     renderFlags(),
				Action: func(c *cli.Context) error {
					output, err := ops.RenderIdea(d.store, renderInput(c))
					if err != nil {
						return outputError(err)
					}
					return outputRendered(c, output)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a saved idea",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					output, err := ops.DeleteIdea(c.Context, d.store, ops.DeleteInput{ID: c.Args().First()})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c.App.Writer, output)
				},
			},
		},
	}
}

// recipesCmd creates the recipes command group.
func recipesCmd(d *cliDeps) *cli.Command {
	return &cli.Command{
		Name:  "recipes",
		Usage: "Compose and manage custom recipes",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List saved recipes, newest first",
				Flags: listFlags(),
				Action: func(c *cli.Context) error {
					return outputJSON(c.App.Writer, ops.ListRecipes(d.store, listInput(c)))
				},
			},
			{
				Name:      "show",
				Usage:     "Render a saved recipe",
				ArgsUsage: "<id>",
				Flags:     renderFlags(),
				Action: func(c *cli.Context) error {
					output, err := ops.RenderRecipe(d.store, renderInput(c))
					if err != nil {
						return outputError(err)
					}
					return outputRendered(c, output)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a saved recipe",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					output, err := ops.DeleteRecipe(c.Context, d.store, ops.DeleteInput{ID: c.Args().First()})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c.App.Writer, output)
				},
			},
			composeCmd(d),
		},
	}
}

// composeCmd builds a recipe from flags and saves it.
func composeCmd(d *cliDeps) *cli.Command {
	return &cli.Command{
		Name:  "compose",
		Usage: "Build a recipe from products and manual ingredients, then save it",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Recipe name"},
			&cli.StringFlag{Name: "instructions", Aliases: []string{"i"}, Usage: "Instructions, or - to read from stdin"},
			&cli.StringSliceFlag{Name: "barcode", Aliases: []string{"b"}, Usage: "Product barcode, optionally BARCODE:GRAMS (repeatable)"},
			&cli.StringSliceFlag{Name: "ingredient", Usage: "Manual ingredient NAME:KCAL_PER_100G[:GRAMS] (repeatable)"},
			&cli.BoolFlag{Name: "dry-run", Usage: "Print the composed ingredients without saving"},
		},
		Action: func(c *cli.Context) error {
			b := recipe.NewBuilder()

			for _, spec := range c.StringSlice("barcode") {
				if err := addBarcode(c.Context, d, b, spec); err != nil {
					return outputError(err)
				}
			}
			for _, spec := range c.StringSlice("ingredient") {
				input, err := parseIngredient(spec)
				if err != nil {
					return outputError(err)
				}
				if _, err := ops.AddManual(b, input); err != nil {
					return outputError(err)
				}
			}

			if c.Bool("dry-run") {
				return outputJSON(c.App.Writer, ops.ViewBuilder(b))
			}

			instructions := c.String("instructions")
			if instructions == "-" {
				text, err := readStdin(MaxInstructionsBytes)
				if err != nil {
					return outputError(err)
				}
				instructions = text
			}

			output, err := ops.SaveCustomRecipe(c.Context, d.store, b, ops.SaveRecipeInput{
				Name:         c.String("name"),
				Instructions: instructions,
			})
			if err != nil {
				return outputError(err)
			}
			d.logger.Debug("recipe composed", zap.String("id", output.ID), zap.Int("ingredients", output.IngredientCount))
			return outputJSON(c.App.Writer, output)
		},
	}
}

// addBarcode looks up BARCODE[:GRAMS] and adds it to b.
func addBarcode(ctx context.Context, d *cliDeps, b *recipe.Builder, spec string) error {
	barcode, grams, err := parseBarcodeAmount(spec)
	if err != nil {
		return err
	}
	p, err := d.lookuper.Lookup(ctx, barcode)
	if err != nil {
		return fmt.Errorf("barcode %s: %w", barcode, err)
	}
	added, err := ops.AddProduct(b, p)
	if err != nil {
		return err
	}
	if grams == nil {
		return nil
	}
	_, err = ops.UpdateAmount(b, ops.UpdateAmountInput{ID: added.Ingredient.ID, AmountGrams: grams})
	return err
}

func listFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Max results"},
		&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Results to skip"},
	}
}

func listInput(c *cli.Context) ops.ListInput {
	return ops.ListInput{Limit: c.Int("limit"), Offset: c.Int("offset")}
}

func renderFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "html", Usage: "Render as HTML instead of markdown"},
		&cli.BoolFlag{Name: "json", Usage: "Print the JSON envelope instead of the document"},
	}
}

func renderInput(c *cli.Context) ops.RenderInput {
	input := ops.RenderInput{ID: c.Args().First(), Format: ops.FormatMarkdown}
	if c.Bool("html") {
		input.Format = ops.FormatHTML
	}
	return input
}

// outputRendered prints a rendered document as-is, or its JSON envelope with --json.
func outputRendered(c *cli.Context, output *ops.RenderOutput) error {
	if c.Bool("json") {
		return outputJSON(c.App.Writer, output)
	}
	_, err := io.WriteString(c.App.Writer, output.Content)
	return err
}

// Helper functions

// outputJSON marshals result to w as JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if pErr, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", pErr.Code, errors.Message(err)), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// readStdin reads all content from stdin up to maxBytes.
func readStdin(maxBytes int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(os.Stdin, maxBytes+1))
	if err != nil {
		return "", errors.NewInternal(err)
	}
	if int64(len(data)) > maxBytes {
		return "", errors.NewInvalidRequest(fmt.Sprintf("stdin exceeds %d bytes", maxBytes))
	}
	return strings.TrimSpace(string(data)), nil
}

// parseIngredient parses NAME:KCAL_PER_100G[:GRAMS]. Names may contain colons;
// numbers are taken from the right.
func parseIngredient(spec string) (ops.AddManualInput, error) {
	parts := strings.Split(spec, ":")
	invalid := errors.NewInvalidRequest(fmt.Sprintf("invalid ingredient %q: want NAME:KCAL_PER_100G[:GRAMS]", spec))

	if len(parts) >= 3 {
		kcal, kcalErr := strconv.ParseFloat(parts[len(parts)-2], 64)
		grams, gramsErr := strconv.ParseFloat(parts[len(parts)-1], 64)
		if kcalErr == nil && gramsErr == nil {
			return ops.AddManualInput{
				Name:            strings.Join(parts[:len(parts)-2], ":"),
				CaloriesPer100g: &kcal,
				AmountGrams:     grams,
			}, nil
		}
	}
	if len(parts) >= 2 {
		kcal, err := strconv.ParseFloat(parts[len(parts)-1], 64)
		if err == nil {
			return ops.AddManualInput{
				Name:            strings.Join(parts[:len(parts)-1], ":"),
				CaloriesPer100g: &kcal,
			}, nil
		}
	}
	return ops.AddManualInput{}, invalid
}

// parseBarcodeAmount parses BARCODE[:GRAMS].
func parseBarcodeAmount(spec string) (string, *float64, error) {
	barcode, amount, hasAmount := strings.Cut(strings.TrimSpace(spec), ":")
	if barcode == "" {
		return "", nil, errors.NewInvalidRequest("barcode is required")
	}
	if !hasAmount {
		return barcode, nil, nil
	}
	grams, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return "", nil, errors.NewInvalidRequest(fmt.Sprintf("invalid amount in %q", spec))
	}
	return barcode, &grams, nil
}
