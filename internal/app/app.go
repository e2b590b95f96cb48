// Package app assembles the hydrator from configuration. Both binaries share it.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/lordwhitefire/new-portfolio/internal/cms"
	"github.com/lordwhitefire/new-portfolio/internal/config"
	"github.com/lordwhitefire/new-portfolio/internal/dom"
	"github.com/lordwhitefire/new-portfolio/internal/pages"
	"github.com/lordwhitefire/new-portfolio/internal/secrets"
	"github.com/lordwhitefire/new-portfolio/internal/site"
)

// App holds the wired components.
type App struct {
	Config   config.Config
	Logger   *zap.Logger
	CMS      *cms.Client
	Hydrator *pages.Hydrator
	Renderer *site.Renderer

	resolver *secrets.Resolver
}

// Load resolves configuration (including secret:// references) and builds every component.
// Outside dev mode all manifest templates are read up front so a missing file fails startup.
func Load(ctx context.Context, logger *zap.Logger, opts ...config.Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	project, err := config.Lookup("SITE_SECRETS_PROJECT_ID", opts...)
	if err != nil {
		return nil, err
	}
	resolver := secrets.NewResolver(project, secrets.WithLogger(logger.Named("secrets")))

	cfg, err := config.Load(ctx, append(opts, config.WithSecretResolver(resolver))...)
	if err != nil {
		_ = resolver.Close()
		return nil, err
	}

	a, err := New(cfg, logger)
	if err != nil {
		_ = resolver.Close()
		return nil, err
	}
	a.resolver = resolver
	return a, nil
}

// New builds the components from an already loaded configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := cms.NewClient(cms.Endpoint{
		ProjectID:  cfg.CMS.ProjectID,
		Dataset:    cfg.CMS.Dataset,
		APIVersion: cfg.CMS.APIVersion,
		APIHost:    cfg.CMS.APIHost,
	}, cms.WithToken(cfg.CMS.Token), cms.WithTimeout(cfg.CMS.Timeout))

	images := cms.Images{ProjectID: cfg.CMS.ProjectID, Dataset: cfg.CMS.Dataset, CDNHost: cfg.CMS.CDNHost}
	opts := []pages.Option{
		pages.WithLocale(cfg.Site.DateLocale),
		pages.WithPageSize(cfg.Site.ProjectsPageSize),
	}
	if !cfg.Site.SanitizeHTML {
		opts = append(opts, pages.WithSanitizer(dom.Trusted{}))
	}
	hydrator := pages.New(client, images, opts...)

	manifest, err := site.LoadManifest(os.DirFS(filepath.Dir(cfg.Site.Manifest)), filepath.Base(cfg.Site.Manifest))
	if err != nil {
		return nil, err
	}
	for _, page := range manifest.Pages {
		if _, err := hydrator.Controller(page.Controller); err != nil {
			return nil, fmt.Errorf("app: page %s: %w", page.Path, err)
		}
	}

	templates := site.NewTemplates(os.DirFS(cfg.Site.TemplatesDir), cfg.Server.DevMode)
	if !cfg.Server.DevMode {
		if err := templates.Preload(manifest.Templates()...); err != nil {
			return nil, err
		}
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		CMS:      client,
		Hydrator: hydrator,
		Renderer: site.NewRenderer(manifest, templates, hydrator),
	}, nil
}

// Close releases the secret manager client, if one was created.
func (a *App) Close() error {
	if a == nil || a.resolver == nil {
		return nil
	}
	return a.resolver.Close()
}
