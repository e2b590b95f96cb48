package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lordwhitefire/new-portfolio/internal/config"
	"github.com/lordwhitefire/new-portfolio/internal/pages"
)

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func loadConfig(t *testing.T, env map[string]string) config.Config {
	t.Helper()
	values := map[string]string{
		"SITE_CMS_PROJECT_ID": "proj",
		"SITE_TEMPLATES_DIR":  filepath.Join("..", "pages", "testdata"),
	}
	for k, v := range env {
		values[k] = v
	}
	cfg, err := config.Load(context.Background(), config.WithEnvMap(values), config.WithoutSystemEnv(), config.WithEnvFile(""))
	require.NoError(t, err)
	return cfg
}

func TestNewWiresManifest(t *testing.T) {
	manifest := writeManifest(t, `
pages:
  - {path: /, template: home.html, controller: home}
  - {path: /contact.html, template: contact.html, controller: contact}
`)
	a, err := New(loadConfig(t, map[string]string{"SITE_MANIFEST": manifest}), nil)
	require.NoError(t, err)
	require.NoError(t, a.Close())

	page, err := a.Renderer.Manifest().Lookup("/")
	require.NoError(t, err)
	require.Equal(t, pages.Home, page.Controller)
	require.Contains(t, a.Hydrator.Names(), pages.ProjectDetails)
}

func TestNewRejectsUnknownController(t *testing.T) {
	manifest := writeManifest(t, "pages:\n  - {path: /, template: home.html, controller: blog}\n")
	_, err := New(loadConfig(t, map[string]string{"SITE_MANIFEST": manifest}), nil)
	require.ErrorIs(t, err, pages.ErrUnknownController)
}

func TestNewPreloadsTemplatesOutsideDevMode(t *testing.T) {
	manifest := writeManifest(t, "pages:\n  - {path: /, template: missing.html, controller: home}\n")

	_, err := New(loadConfig(t, map[string]string{"SITE_MANIFEST": manifest}), nil)
	require.ErrorContains(t, err, "missing.html")

	_, err = New(loadConfig(t, map[string]string{"SITE_MANIFEST": manifest, "SITE_DEV_MODE": "true"}), nil)
	require.NoError(t, err)
}

func TestLoadWithoutSecrets(t *testing.T) {
	manifest := writeManifest(t, "pages:\n  - {path: /, template: home.html, controller: home}\n")
	a, err := Load(context.Background(), nil,
		config.WithEnvMap(map[string]string{
			"SITE_CMS_PROJECT_ID": "proj",
			"SITE_TEMPLATES_DIR":  filepath.Join("..", "pages", "testdata"),
			"SITE_MANIFEST":       manifest,
		}),
		config.WithoutSystemEnv(),
		config.WithEnvFile(""),
	)
	require.NoError(t, err)
	require.Equal(t, "proj", a.Config.CMS.ProjectID)
	require.NoError(t, a.Close())
}
