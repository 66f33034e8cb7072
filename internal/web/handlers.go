package web

import (
	"html/template"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/hpungsan/pantry/internal/collection"
	"github.com/hpungsan/pantry/internal/ops"
)

// Handlers contains HTTP route handlers for the cookbook viewer.
type Handlers struct {
	store    *collection.Store
	renderer *Renderer
	logger   *zap.Logger
}

// HandleRecipes handles GET /recipes and lists saved recipes.
func (h *Handlers) HandleRecipes(w http.ResponseWriter, r *http.Request) {
	result := ops.ListRecipes(h.store, listInput(r))

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "recipes", RecipesPageData{
		PageData: PageData{
			Title:   "Recipes",
			Version: h.renderer.version,
			Nav:     "recipes",
		},
		ListRecipesOutput: result,
	})
}

// HandleRecipe handles GET /recipes/{id}.
func (h *Handlers) HandleRecipe(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if wantsJSON(r) {
		rec, err := ops.GetRecipe(h.store, ops.GetInput{ID: id})
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		renderJSON(w, http.StatusOK, rec)
		return
	}

	out, err := ops.RenderRecipe(h.store, ops.RenderInput{ID: id, Format: ops.FormatHTML})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.renderDetail(w, r, "recipes", out)
}

// HandleIdeas handles GET /ideas.
func (h *Handlers) HandleIdeas(w http.ResponseWriter, r *http.Request) {
	result := ops.ListIdeas(h.store, listInput(r))

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "ideas", IdeasPageData{
		PageData: PageData{
			Title:   "Ideas",
			Version: h.renderer.version,
			Nav:     "ideas",
		},
		ListIdeasOutput: result,
	})
}

// HandleIdea handles GET /ideas/{id}.
func (h *Handlers) HandleIdea(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if wantsJSON(r) {
		idea, err := ops.GetIdea(h.store, ops.GetInput{ID: id})
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		renderJSON(w, http.StatusOK, idea)
		return
	}

	out, err := ops.RenderIdea(h.store, ops.RenderInput{ID: id, Format: ops.FormatHTML})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.renderDetail(w, r, "ideas", out)
}

// HandleDeleteRecipe handles DELETE /recipes/{id}.
func (h *Handlers) HandleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	result, err := ops.DeleteRecipe(r.Context(), h.store, ops.DeleteInput{ID: r.PathValue("id")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.deleted(w, r, "/recipes", result)
}

// HandleDeleteIdea handles DELETE /ideas/{id}.
func (h *Handlers) HandleDeleteIdea(w http.ResponseWriter, r *http.Request) {
	result, err := ops.DeleteIdea(r.Context(), h.store, ops.DeleteInput{ID: r.PathValue("id")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.deleted(w, r, "/ideas", result)
}

// renderDetail wraps a rendered document in the layout. The HTML comes from
// goldmark with raw HTML disabled.
func (h *Handlers) renderDetail(w http.ResponseWriter, r *http.Request, nav string, out *ops.RenderOutput) {
	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData: PageData{
			Title:   out.ID,
			Version: h.renderer.version,
			Nav:     nav,
		},
		RenderedHTML: template.HTML(out.Content),
		Back:         "/" + nav,
	})
}

// deleted answers a successful delete. Deleting an absent id is not an error.
func (h *Handlers) deleted(w http.ResponseWriter, r *http.Request, listPath string, result *ops.DeleteOutput) {
	if result.Deleted {
		h.logger.Info("deleted via web", zap.String("id", result.ID), zap.String("collection", listPath))
	}

	// HTMX request: redirect via HX-Redirect header
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", listPath)
		w.WriteHeader(http.StatusOK)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	http.Redirect(w, r, listPath, http.StatusFound)
}

func listInput(r *http.Request) ops.ListInput {
	return ops.ListInput{
		Limit:  parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset: parseIntParam(r, "offset", 0),
	}
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
