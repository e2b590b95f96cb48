package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lordwhitefire/new-portfolio/internal/observability"
	"github.com/lordwhitefire/new-portfolio/internal/pages"
	"github.com/lordwhitefire/new-portfolio/internal/site"
)

// OutcomeHeader carries the hydration outcome of a served page.
const OutcomeHeader = "X-Hydration-Outcome"

type pageHandlers struct {
	renderer PageRenderer
}

// Routes registers one route per manifest page, "/" for the index page and the preview API.
func (h *pageHandlers) Routes(r chi.Router) {
	if h.renderer == nil {
		return
	}
	for _, page := range h.renderer.Manifest().Pages {
		r.Get(page.Path, h.servePage(page))
		if page.Path == "/index.html" {
			r.Get("/", h.servePage(page))
		}
	}
	r.Get("/api/preview/{controller}", h.preview)
}

// servePage answers 200 even when hydration failed: the body is then the untouched template.
func (h *pageHandlers) servePage(page site.Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pass, err := h.renderer.RenderPage(r.Context(), page, pages.Params{Query: r.URL.Query()})
		if err != nil {
			observability.FromContext(r.Context()).Error("render page", zap.String("template", page.Template), zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set(OutcomeHeader, string(pass.Outcome))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(pass.Body)
	}
}

type previewResponse struct {
	Controller string        `json:"controller"`
	Path       string        `json:"path"`
	Outcome    pages.Outcome `json:"outcome"`
	Error      string        `json:"error,omitempty"`
	DurationMS int64         `json:"duration_ms"`
	Bytes      int           `json:"bytes"`
}

// preview runs the controller's page with the request query and reports the outcome as JSON.
func (h *pageHandlers) preview(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "controller")
	page, ok := h.renderer.Manifest().ForController(name)
	if !ok {
		writeError(r.Context(), w, http.StatusNotFound, "unknown_controller", "no page is hydrated by controller "+strconv.Quote(name))
		return
	}
	pass, err := h.renderer.RenderPage(r.Context(), page, pages.Params{Query: r.URL.Query()})
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "template_unavailable", err.Error())
		return
	}
	resp := previewResponse{
		Controller: name,
		Path:       page.Path,
		Outcome:    pass.Outcome,
		DurationMS: pass.Duration.Milliseconds(),
		Bytes:      len(pass.Body),
	}
	if pass.Err != nil {
		resp.Error = pass.Err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, code, message string) {
	payload := map[string]any{
		"error":   code,
		"message": message,
		"status":  status,
	}
	if id := middleware.GetReqID(ctx); id != "" {
		payload["request_id"] = id
	}
	writeJSON(w, status, payload)
}
