// Package pages holds the page controllers. A controller fetches every content type its page
// needs concurrently and, only once all of them resolved, patches the page. Run drives one
// hydration pass over a fresh parse of the template, so a failed pass never exposes a
// partially patched document.
package pages

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/url"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/lordwhitefire/new-portfolio/internal/cms"
	"github.com/lordwhitefire/new-portfolio/internal/dom"
	"github.com/lordwhitefire/new-portfolio/internal/observability"
	"github.com/lordwhitefire/new-portfolio/internal/paginate"
	"github.com/lordwhitefire/new-portfolio/internal/reconcile"
)

// Controller names.
const (
	Home           = "home"
	About          = "about"
	Contact        = "contact"
	Pricing        = "pricing"
	Projects       = "projects"
	ProjectDetails = "project-details"
)

// ErrUnknownController is returned for a controller name that is not registered.
var ErrUnknownController = errors.New("pages: unknown controller")

// Outcome is the state of a hydration pass.
type Outcome string

const (
	Loading  Outcome = "loading"
	Hydrated Outcome = "hydrated"
	Failed   Outcome = "failed"
)

// Params carries the per-request inputs of a pass.
type Params struct {
	// Query holds the page URL query parameters (project, page).
	Query url.Values
	// Rand drives random selections; nil uses the global source.
	Rand *rand.Rand
}

func (p Params) get(key string) string {
	if p.Query == nil {
		return ""
	}
	return p.Query.Get(key)
}

func (p Params) perm(n int) []int {
	if p.Rand != nil {
		return p.Rand.Perm(n)
	}
	return rand.Perm(n)
}

// Controller hydrates one page.
type Controller func(ctx context.Context, page *dom.Page, params Params) error

// Pass is the result of Run.
type Pass struct {
	Controller string
	Outcome    Outcome
	// Body is the hydrated document, or the untouched template when the pass failed.
	Body     []byte
	Err      error
	Duration time.Duration
}

// Hydrator owns the controllers and their shared dependencies.
type Hydrator struct {
	fetcher   cms.Fetcher
	images    cms.Images
	locale    language.Tag
	pageSize  int
	sanitizer dom.Sanitizer
	passes    observability.PassCounter

	controllers map[string]Controller
}

// Option customises a Hydrator.
type Option func(*Hydrator)

// WithLocale sets the locale used for long-form dates.
func WithLocale(tag language.Tag) Option {
	return func(h *Hydrator) {
		if tag != language.Und {
			h.locale = tag
		}
	}
}

// WithPageSize sets the project grid page size.
func WithPageSize(n int) Option {
	return func(h *Hydrator) {
		if n > 0 {
			h.pageSize = n
		}
	}
}

// WithSanitizer replaces the sanitizer applied to CMS markup.
func WithSanitizer(s dom.Sanitizer) Option {
	return func(h *Hydrator) {
		if s != nil {
			h.sanitizer = s
		}
	}
}

// WithPassCounter records pass outcomes on the given counter.
func WithPassCounter(c observability.PassCounter) Option {
	return func(h *Hydrator) {
		h.passes = c
	}
}

// New constructs a Hydrator with every controller registered.
func New(fetcher cms.Fetcher, images cms.Images, opts ...Option) *Hydrator {
	h := &Hydrator{
		fetcher:   fetcher,
		images:    images,
		locale:    language.AmericanEnglish,
		pageSize:  paginate.DefaultSize,
		sanitizer: dom.DefaultPolicy(),
		passes:    observability.NewPassCounter(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.controllers = map[string]Controller{
		Home:           h.home,
		About:          h.about,
		Contact:        h.contact,
		Pricing:        h.pricing,
		Projects:       h.projects,
		ProjectDetails: h.projectDetails,
	}
	return h
}

// Controller looks a controller up by name.
func (h *Hydrator) Controller(name string) (Controller, error) {
	c, ok := h.controllers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownController, name)
	}
	return c, nil
}

// Names lists the registered controllers.
func (h *Hydrator) Names() []string {
	names := make([]string, 0, len(h.controllers))
	for name := range h.controllers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes one hydration pass of the named controller over template.
func (h *Hydrator) Run(ctx context.Context, name string, template []byte, params Params) (pass Pass) {
	pass = Pass{Controller: name, Outcome: Loading, Body: template}

	ctx, span := observability.StartSpan(ctx, "hydrate.pass", attribute.String("hydrate.controller", name))
	logger := observability.FromContext(ctx).With(zap.String("controller", name))
	ctx = observability.WithLogger(ctx, logger)
	start := time.Now()

	defer func() {
		pass.Duration = time.Since(start)
		observability.EndSpan(span, pass.Err)
		h.passes.Add(ctx, name, string(pass.Outcome))
		if pass.Outcome == Failed {
			logger.Error("hydration failed", zap.Error(pass.Err), zap.Duration("latency", pass.Duration))
			return
		}
		logger.Info("hydration complete", zap.Duration("latency", pass.Duration))
	}()

	fail := func(err error) Pass {
		pass.Outcome = Failed
		pass.Err = err
		pass.Body = template
		return pass
	}

	ctrl, err := h.Controller(name)
	if err != nil {
		return fail(err)
	}
	page, err := dom.ParseBytes(template, dom.WithSanitizer(h.sanitizer))
	if err != nil {
		return fail(err)
	}
	if err := ctrl(ctx, page, params); err != nil {
		return fail(err)
	}
	body, err := page.Bytes()
	if err != nil {
		return fail(fmt.Errorf("pages: render: %w", err))
	}
	pass.Outcome = Hydrated
	pass.Body = body
	return pass
}

// fetch issues the bindings concurrently and wraps a failure with the controller name.
func (h *Hydrator) fetch(ctx context.Context, controller string, bindings ...cms.Binding) error {
	if err := cms.FetchAll(ctx, h.fetcher, bindings...); err != nil {
		return fmt.Errorf("pages: %s: %w", controller, err)
	}
	return nil
}

func logResult(ctx context.Context, section string, res reconcile.Result) {
	observability.FromContext(ctx).Debug("reconciled",
		zap.String("section", section),
		zap.Int("reused", res.Reused),
		zap.Int("created", res.Created),
		zap.Int("removed", res.Removed),
		zap.Int("hidden", res.Hidden),
		zap.Int("dropped", res.Dropped),
	)
}
