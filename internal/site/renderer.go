package site

import (
	"context"

	"github.com/lordwhitefire/new-portfolio/internal/pages"
)

// Hydrator runs a named controller over a template.
type Hydrator interface {
	Run(ctx context.Context, controller string, template []byte, params pages.Params) pages.Pass
}

// Renderer resolves manifest pages and hydrates their templates.
type Renderer struct {
	manifest  Manifest
	templates *Templates
	hydrator  Hydrator
}

// NewRenderer constructs a Renderer.
func NewRenderer(manifest Manifest, templates *Templates, hydrator Hydrator) *Renderer {
	return &Renderer{manifest: manifest, templates: templates, hydrator: hydrator}
}

// Manifest returns the manifest the renderer serves.
func (r *Renderer) Manifest() Manifest { return r.manifest }

// Render hydrates the page served at path. The error is non-nil only when the page cannot
// be resolved or its template cannot be read; a failed hydration pass is reported through
// the returned Pass, whose Body then holds the untouched template.
func (r *Renderer) Render(ctx context.Context, path string, params pages.Params) (pages.Pass, error) {
	page, err := r.manifest.Lookup(path)
	if err != nil {
		return pages.Pass{}, err
	}
	return r.RenderPage(ctx, page, params)
}

// RenderPage hydrates a page that is already resolved.
func (r *Renderer) RenderPage(ctx context.Context, page Page, params pages.Params) (pages.Pass, error) {
	tmpl, err := r.templates.Load(page.Template)
	if err != nil {
		return pages.Pass{}, err
	}
	return r.hydrator.Run(ctx, page.Controller, tmpl, params), nil
}
