// Package enrich asks an OpenAI-compatible chat model for storage tips,
// a serving idea and a fun fact about a product.
//
// Enrichment never fails from the caller's point of view: missing
// credentials and collaborator errors both produce placeholder text.
package enrich

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/pantry/internal/errors"
	"github.com/hpungsan/pantry/internal/product"
)

// CollaboratorName identifies the AI service in errors and logs.
const CollaboratorName = "ai enrichment"

// Options configures a Client.
type Options struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// Client calls POST {BaseURL}/chat/completions.
type Client struct {
	http    *resty.Client
	model   string
	enabled bool
	logger  *zap.Logger
}

// New returns a Client. With an empty APIKey the client never makes requests.
func New(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	key := strings.TrimSpace(opts.APIKey)
	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetHeader("Content-Type", "application/json")
	if key != "" {
		client.SetAuthToken(key)
	}
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	return &Client{http: client, model: opts.Model, enabled: key != "", logger: opts.Logger}
}

// Enabled reports whether credentials are configured.
func (c *Client) Enabled() bool {
	return c.enabled
}

// Enrich returns enrichment for p. See the package comment for failure handling.
func (c *Client) Enrich(ctx context.Context, p *product.Product) product.Enrichment {
	if !c.enabled {
		return product.MissingKeyEnrichment()
	}

	e, err := c.request(ctx, p)
	if err != nil {
		c.logger.Warn("enrichment unavailable, using placeholder",
			zap.String("barcode", p.Barcode),
			zap.Error(errors.NewCollaboratorUnavailable(CollaboratorName, err)))
		return product.UnavailableEnrichment()
	}
	return e.Complete(product.UnavailableEnrichment())
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) request(ctx context.Context, p *product.Product) (product.Enrichment, error) {
	req := chatRequest{
		Model:          c.model,
		Messages:       []chatMessage{{Role: "user", Content: Prompt(p)}},
		ResponseFormat: map[string]string{"type": "json_object"},
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")
	if err != nil {
		return product.Enrichment{}, fmt.Errorf("send request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return product.Enrichment{}, fmt.Errorf("HTTP %d", resp.StatusCode())
	}

	var result chatResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return product.Enrichment{}, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return product.Enrichment{}, stderrors.New("no choices in response")
	}

	return ParseAnswer(result.Choices[0].Message.Content)
}

// Prompt builds the instruction sent for p.
func Prompt(p *product.Product) string {
	ingredients := strings.TrimSpace(p.IngredientsText)
	if ingredients == "" {
		ingredients = "Unknown"
	}

	var b strings.Builder
	b.WriteString("I have a food product with the following details:\n")
	fmt.Fprintf(&b, "Name: %s\n", p.Name)
	fmt.Fprintf(&b, "Brand: %s\n", p.Brand)
	fmt.Fprintf(&b, "Categories: %s\n", p.Categories)
	fmt.Fprintf(&b, "Ingredients: %s\n\n", ingredients)
	b.WriteString("Please provide:\n")
	b.WriteString("1. A smart, concise storage tip specifically for this product type to maximize freshness.\n")
	b.WriteString("2. A simple, creative 1-sentence serving suggestion or mini-recipe idea.\n")
	b.WriteString("3. A short, interesting fun fact about this type of food.\n\n")
	b.WriteString(`Return ONLY raw JSON with the string fields "aiStorageTip", "recipeIdea" and "funFact".`)
	return b.String()
}

// ParseAnswer decodes the model's JSON answer. Markdown code fences around
// the object are tolerated. An answer with no usable field is an error.
func ParseAnswer(content string) (product.Enrichment, error) {
	text := stripFences(content)
	if text == "" {
		return product.Enrichment{}, stderrors.New("empty answer")
	}

	var e product.Enrichment
	if err := json.Unmarshal([]byte(text), &e); err != nil {
		return product.Enrichment{}, fmt.Errorf("decode answer: %w", err)
	}
	if strings.TrimSpace(e.StorageTip) == "" && strings.TrimSpace(e.RecipeIdea) == "" && strings.TrimSpace(e.FunFact) == "" {
		return product.Enrichment{}, stderrors.New("answer has no fields")
	}
	return e, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// drop the language tag line
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
