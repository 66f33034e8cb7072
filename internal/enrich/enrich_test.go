package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hpungsan/pantry/internal/product"
)

func testProduct() *product.Product {
	return &product.Product{
		Barcode:    "3017620422003",
		Name:       "Choco Spread",
		Brand:      "Acme",
		Categories: "Chocolate spreads",
	}
}

func chatBody(content string) string {
	data, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return string(data)
}

func TestEnrich_MissingKeyMakesNoRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { calls.Add(1) }))
	t.Cleanup(srv.Close)

	c := New(Options{BaseURL: srv.URL, APIKey: "  "})
	require.False(t, c.Enabled())

	got := c.Enrich(context.Background(), testProduct())
	require.Equal(t, product.MissingKeyEnrichment(), got)
	require.Equal(t, int32(0), calls.Load())
}

func TestEnrich_Success(t *testing.T) {
	var gotAuth, gotPath string
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotReq)
		_, _ = w.Write([]byte(chatBody(`{"aiStorageTip":"Keep sealed.","recipeIdea":"Spread on toast.","funFact":"Cocoa is a seed."}`)))
	}))
	t.Cleanup(srv.Close)

	c := New(Options{BaseURL: srv.URL + "/", APIKey: "sk-test", Model: "test-model"})
	got := c.Enrich(context.Background(), testProduct())

	require.Equal(t, product.Enrichment{StorageTip: "Keep sealed.", RecipeIdea: "Spread on toast.", FunFact: "Cocoa is a seed."}, got)
	require.Equal(t, "/chat/completions", gotPath)
	require.Equal(t, "Bearer sk-test", gotAuth)
	require.Equal(t, "test-model", gotReq.Model)
	require.Len(t, gotReq.Messages, 1)
	require.Contains(t, gotReq.Messages[0].Content, "Name: Choco Spread")
	require.Contains(t, gotReq.Messages[0].Content, "Ingredients: Unknown")
}

func TestEnrich_FailuresUsePlaceholder(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"boom"}`},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{}`},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`},
		{name: "not json", status: http.StatusOK, body: `<html>`},
		{name: "answer not json", status: http.StatusOK, body: chatBody("Sure! Here are some tips.")},
		{name: "empty answer", status: http.StatusOK, body: chatBody("")},
		{name: "answer without fields", status: http.StatusOK, body: chatBody(`{"other":"x"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(srv.Close)

			var buf bytes.Buffer
			core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(&buf), zapcore.WarnLevel)

			c := New(Options{BaseURL: srv.URL, APIKey: "sk-test", Logger: zap.New(core)})
			got := c.Enrich(context.Background(), testProduct())

			require.Equal(t, product.UnavailableEnrichment(), got)
			require.Contains(t, buf.String(), "COLLABORATOR_UNAVAILABLE")
		})
	}
}

func TestEnrich_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	got := New(Options{BaseURL: base, APIKey: "sk"}).Enrich(context.Background(), testProduct())
	require.Equal(t, product.UnavailableEnrichment(), got)
}

func TestEnrich_PartialAnswerIsCompleted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chatBody(`{"recipeIdea":"Swirl into yogurt."}`)))
	}))
	t.Cleanup(srv.Close)

	got := New(Options{BaseURL: srv.URL, APIKey: "sk"}).Enrich(context.Background(), testProduct())
	require.Equal(t, "Swirl into yogurt.", got.RecipeIdea)
	require.Equal(t, product.UnavailableEnrichment().StorageTip, got.StorageTip)
	require.Equal(t, product.UnavailableEnrichment().FunFact, got.FunFact)
}

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    product.Enrichment
		wantErr bool
	}{
		{
			name: "plain",
			in:   `{"aiStorageTip":"a","recipeIdea":"b","funFact":"c"}`,
			want: product.Enrichment{StorageTip: "a", RecipeIdea: "b", FunFact: "c"},
		},
		{
			name: "json fence",
			in:   "```json\n{\"aiStorageTip\":\"a\",\"recipeIdea\":\"b\",\"funFact\":\"c\"}\n```",
			want: product.Enrichment{StorageTip: "a", RecipeIdea: "b", FunFact: "c"},
		},
		{
			name: "bare fence with whitespace",
			in:   "  ```\n{\"funFact\":\"c\"}\n```  ",
			want: product.Enrichment{FunFact: "c"},
		},
		{name: "prose", in: "no json here", wantErr: true},
		{name: "blank", in: "   ", wantErr: true},
		{name: "empty fields", in: `{"aiStorageTip":" "}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAnswer(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
