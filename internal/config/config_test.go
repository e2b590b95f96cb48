package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/text/language"
)

func TestLoadWithDefaults(t *testing.T) {
	env := map[string]string{
		"SITE_CMS_PROJECT_ID": "c42v017z",
	}

	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.CMS.Dataset != "production" {
		t.Errorf("expected default dataset, got %s", cfg.CMS.Dataset)
	}
	if cfg.CMS.APIVersion != "2021-10-21" {
		t.Errorf("unexpected api version %s", cfg.CMS.APIVersion)
	}
	if cfg.CMS.CDNHost != "cdn.sanity.io" || cfg.CMS.APIHost != "api.sanity.io" {
		t.Errorf("unexpected hosts %s / %s", cfg.CMS.APIHost, cfg.CMS.CDNHost)
	}
	if cfg.Site.ProjectsPageSize != 9 {
		t.Errorf("expected page size 9, got %d", cfg.Site.ProjectsPageSize)
	}
	if !cfg.Site.SanitizeHTML {
		t.Errorf("expected sanitizing to default on")
	}
	if cfg.Site.DateLocale != language.AmericanEnglish {
		t.Errorf("expected en-US locale, got %s", cfg.Site.DateLocale)
	}
}

func TestLoadWithOverridesAndSecret(t *testing.T) {
	env := map[string]string{
		"SITE_SERVER_PORT":         "9090",
		"SITE_SERVER_READ_TIMEOUT": "20s",
		"SITE_DEV_MODE":            "yes",
		"SITE_CMS_PROJECT_ID":      "proj",
		"SITE_CMS_DATASET":         "staging",
		"SITE_CMS_API_VERSION":     "v2023-01-01",
		"SITE_CMS_TOKEN":           "sm://sanity-read-token",
		"SITE_SANITIZE_HTML":       "off",
		"SITE_DATE_LOCALE":         "en-GB",
		"SITE_PUBLISH_BUCKET":      "site-bucket",
		"SITE_PUBLISH_PREFIX":      "/live/",
	}
	resolver := SecretResolverFunc(func(_ context.Context, ref string) (string, error) {
		if ref != "secret://sanity-read-token" {
			t.Fatalf("unexpected ref %q", ref)
		}
		return "tok-123\n", nil
	})

	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""), WithSecretResolver(resolver))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Server.ReadTimeout != 20*time.Second || !cfg.Server.DevMode {
		t.Errorf("server overrides not applied: %+v", cfg.Server)
	}
	if cfg.CMS.APIVersion != "2023-01-01" {
		t.Errorf("expected leading v stripped, got %s", cfg.CMS.APIVersion)
	}
	if cfg.CMS.Token != "tok-123" {
		t.Errorf("expected resolved token, got %q", cfg.CMS.Token)
	}
	if cfg.Site.SanitizeHTML {
		t.Errorf("expected sanitizing disabled")
	}
	if cfg.Site.DateLocale != language.BritishEnglish {
		t.Errorf("unexpected locale %s", cfg.Site.DateLocale)
	}
	if cfg.Publish.Bucket != "site-bucket" || cfg.Publish.Prefix != "live" {
		t.Errorf("unexpected publish config %+v", cfg.Publish)
	}
}

func TestLoadMissingProject(t *testing.T) {
	_, err := Load(context.Background(), WithEnvMap(map[string]string{"SITE_DATE_LOCALE": "not a locale!"}), WithoutSystemEnv(), WithEnvFile(""))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	fields := verr.Fields()
	want := map[string]bool{"CMS.ProjectID": false, "Site.DateLocale": false}
	for _, f := range fields {
		if _, ok := want[f]; ok {
			want[f] = true
		}
	}
	for f, seen := range want {
		if !seen {
			t.Errorf("expected %s in %v", f, fields)
		}
	}
}

func TestLoadSecretWithoutResolver(t *testing.T) {
	env := map[string]string{
		"SITE_CMS_PROJECT_ID": "proj",
		"SITE_CMS_TOKEN":      "secret://token",
	}
	_, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	var serr *SecretError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SecretError, got %v", err)
	}
	if !errors.Is(err, errSecretResolverNotConfigured) {
		t.Fatalf("expected resolver-not-configured cause, got %v", err)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# local\nexport SITE_CMS_PROJECT_ID=\"from-dotenv\"\nSITE_SERVER_PORT=7000\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}

	cfg, err := Load(context.Background(), WithoutSystemEnv(), WithEnvFile(path), WithEnvMap(map[string]string{"SITE_SERVER_PORT": "7001"}))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.CMS.ProjectID != "from-dotenv" {
		t.Errorf("expected project from dotenv, got %s", cfg.CMS.ProjectID)
	}
	if cfg.Server.Port != "7001" {
		t.Errorf("expected env map to win over dotenv, got %s", cfg.Server.Port)
	}

	v, err := Lookup("SITE_CMS_PROJECT_ID", WithoutSystemEnv(), WithEnvFile(path))
	if err != nil || v != "from-dotenv" {
		t.Fatalf("Lookup = %q, %v", v, err)
	}
}
