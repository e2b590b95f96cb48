package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
)

const (
	defaultEnvFile          = ".env"
	defaultPort             = "8080"
	defaultReadTimeout      = 15 * time.Second
	defaultWriteTimeout     = 30 * time.Second
	defaultIdleTimeout      = 60 * time.Second
	defaultTemplatesDir     = "templates"
	defaultPublicDir        = "public"
	defaultManifest         = "site.yaml"
	defaultDataset          = "production"
	defaultAPIVersion       = "2021-10-21"
	defaultAPIHost          = "api.sanity.io"
	defaultCDNHost          = "cdn.sanity.io"
	defaultCMSTimeout       = 10 * time.Second
	defaultDateLocale       = "en-US"
	defaultProjectsPageSize = 9
	defaultPublishPrefix    = ""
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server  ServerConfig
	Site    SiteConfig
	CMS     CMSConfig
	Publish PublishConfig
	Secrets SecretsConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	DevMode      bool
}

// SiteConfig locates the static templates and controls how they are patched.
type SiteConfig struct {
	TemplatesDir     string
	PublicDir        string
	Manifest         string
	SanitizeHTML     bool
	DateLocale       language.Tag
	ProjectsPageSize int
}

// CMSConfig addresses the hosted query endpoint and image CDN.
type CMSConfig struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	APIHost    string
	CDNHost    string
	Token      string
	Timeout    time.Duration
}

// PublishConfig names the bucket receiving built pages.
type PublishConfig struct {
	Bucket string
	Prefix string
}

// SecretsConfig selects the project used for secret:// lookups.
type SecretsConfig struct {
	ProjectID string
}

// SecretResolver resolves references to external secrets (secret:// URIs).
type SecretResolver interface {
	ResolveSecret(ctx context.Context, ref string) (string, error)
}

// SecretResolverFunc adapts ordinary functions to SecretResolver.
type SecretResolverFunc func(context.Context, string) (string, error)

// ResolveSecret resolves the secret using the wrapped function.
func (f SecretResolverFunc) ResolveSecret(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// SecretError describes failures while resolving a secret reference.
type SecretError struct {
	Ref string
	Err error
}

// Error implements the error interface.
func (e *SecretError) Error() string {
	return fmt.Sprintf("secret resolution failed for ref %q: %v", e.Ref, e.Err)
}

// Unwrap exposes the underlying error.
func (e *SecretError) Unwrap() error { return e.Err }

var errSecretResolverNotConfigured = errors.New("secret resolver not configured")

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
	secret       SecretResolver
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// WithSecretResolver sets the resolver used for secret:// references.
func WithSecretResolver(resolver SecretResolver) Option {
	return func(o *loaderOptions) {
		o.secret = resolver
	}
}

// Lookup returns a single raw value using the same precedence as Load. It lets callers read
// bootstrap settings (e.g. the secrets project) before the full configuration is resolved.
func Lookup(key string, opts ...Option) (string, error) {
	lookup, err := newLookup(opts)
	if err != nil {
		return "", err
	}
	value, _ := lookup(key)
	return value, nil
}

// Load assembles the application configuration by combining defaults, .env overrides,
// environment variables, and optional secret manager lookups.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	lookup, err := newLookup(opts)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "SITE_SERVER_PORT", stringWithDefault(lookup, "PORT", defaultPort)),
			ReadTimeout:  durationWithDefault(lookup, "SITE_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "SITE_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "SITE_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
			DevMode:      boolWithDefault(lookup, "SITE_DEV_MODE", false),
		},
		Site: SiteConfig{
			TemplatesDir:     stringWithDefault(lookup, "SITE_TEMPLATES_DIR", defaultTemplatesDir),
			PublicDir:        stringWithDefault(lookup, "SITE_PUBLIC_DIR", defaultPublicDir),
			Manifest:         stringWithDefault(lookup, "SITE_MANIFEST", defaultManifest),
			SanitizeHTML:     boolWithDefault(lookup, "SITE_SANITIZE_HTML", true),
			ProjectsPageSize: intWithDefault(lookup, "SITE_PROJECTS_PAGE_SIZE", defaultProjectsPageSize),
		},
		CMS: CMSConfig{
			ProjectID:  stringWithDefault(lookup, "SITE_CMS_PROJECT_ID", ""),
			Dataset:    stringWithDefault(lookup, "SITE_CMS_DATASET", defaultDataset),
			APIVersion: strings.TrimPrefix(stringWithDefault(lookup, "SITE_CMS_API_VERSION", defaultAPIVersion), "v"),
			APIHost:    stringWithDefault(lookup, "SITE_CMS_API_HOST", defaultAPIHost),
			CDNHost:    stringWithDefault(lookup, "SITE_CMS_CDN_HOST", defaultCDNHost),
			Token:      stringWithDefault(lookup, "SITE_CMS_TOKEN", ""),
			Timeout:    durationWithDefault(lookup, "SITE_CMS_TIMEOUT", defaultCMSTimeout),
		},
		Publish: PublishConfig{
			Bucket: stringWithDefault(lookup, "SITE_PUBLISH_BUCKET", ""),
			Prefix: strings.Trim(stringWithDefault(lookup, "SITE_PUBLISH_PREFIX", defaultPublishPrefix), "/"),
		},
		Secrets: SecretsConfig{
			ProjectID: stringWithDefault(lookup, "SITE_SECRETS_PROJECT_ID", ""),
		},
	}

	var invalid []string
	tag, err := language.Parse(stringWithDefault(lookup, "SITE_DATE_LOCALE", defaultDateLocale))
	if err != nil {
		invalid = append(invalid, "Site.DateLocale")
		tag = language.AmericanEnglish
	}
	cfg.Site.DateLocale = tag

	token, err := resolveSecret(ctx, cfg.CMS.Token, options.secret)
	if err != nil {
		return Config{}, err
	}
	cfg.CMS.Token = token

	if err := validateConfig(cfg, invalid); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaultOptions() loaderOptions {
	return loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
		secret: SecretResolverFunc(func(ctx context.Context, ref string) (string, error) {
			return "", &SecretError{Ref: ref, Err: errSecretResolverNotConfigured}
		}),
	}
}

func newLookup(opts []Option) (func(string) (string, bool), error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return nil, err
	}
	return func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}, nil
}

func resolveSecret(ctx context.Context, value string, resolver SecretResolver) (string, error) {
	if value == "" || !IsSecretReference(value) {
		return value, nil
	}
	normalized := normalizeSecretReference(value)
	if resolver == nil {
		return "", &SecretError{Ref: normalized, Err: errSecretResolverNotConfigured}
	}
	secret, err := resolver.ResolveSecret(ctx, normalized)
	if err != nil {
		return "", &SecretError{Ref: normalized, Err: err}
	}
	return strings.TrimSpace(secret), nil
}

func validateConfig(cfg Config, invalid []string) error {
	missing := append([]string(nil), invalid...)

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	if cfg.CMS.ProjectID == "" {
		missing = append(missing, "CMS.ProjectID")
	}
	if cfg.CMS.Dataset == "" {
		missing = append(missing, "CMS.Dataset")
	}
	if cfg.CMS.Timeout <= 0 {
		missing = append(missing, "CMS.Timeout")
	}
	if cfg.Site.ProjectsPageSize <= 0 {
		missing = append(missing, "Site.ProjectsPageSize")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

// IsSecretReference reports whether value points at a secret manager entry.
func IsSecretReference(value string) bool {
	trimmed := strings.TrimSpace(value)
	return strings.HasPrefix(trimmed, "secret://") || strings.HasPrefix(trimmed, "sm://")
}

func normalizeSecretReference(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "sm://") {
		return "secret://" + strings.TrimPrefix(trimmed, "sm://")
	}
	return trimmed
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		if key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(parts[1]), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
