package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrNotFound is returned when the referenced secret or version does not exist.
var ErrNotFound = errors.New("secrets: not found")

var errProjectRequired = errors.New("secrets: project id is required")

var secretManagerClientFactory = func(ctx context.Context, opts ...option.ClientOption) (*secretmanager.Client, error) {
	return secretmanager.NewClient(ctx, opts...)
}

type secretManagerClient interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
	Close() error
}

// Resolver resolves secret:// references against Google Secret Manager and caches the values
// for the lifetime of the process.
type Resolver struct {
	client     secretManagerClient
	ownsClient bool
	clientOpts []option.ClientOption
	projectID  string
	logger     *zap.Logger

	mu    sync.Mutex
	cache map[string]string
}

type resolverConfig struct {
	logger     *zap.Logger
	client     secretManagerClient
	clientOpts []option.ClientOption
}

// Option customises Resolver construction.
type Option func(*resolverConfig)

// WithLogger sets the logger used for diagnostic output.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *resolverConfig) {
		cfg.logger = logger
	}
}

// WithSecretManagerClient injects a preconfigured client (primarily for tests).
func WithSecretManagerClient(client secretManagerClient) Option {
	return func(cfg *resolverConfig) {
		cfg.client = client
	}
}

// WithClientOptions forwards Cloud client options when constructing the Secret Manager client.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(cfg *resolverConfig) {
		cfg.clientOpts = append(cfg.clientOpts, opts...)
	}
}

// NewResolver builds a Resolver for the given default project. The Secret Manager client is
// created lazily on first use so that sites without secret references never dial GCP.
func NewResolver(projectID string, opts ...Option) *Resolver {
	cfg := resolverConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	r := &Resolver{
		client:    cfg.client,
		projectID: strings.TrimSpace(projectID),
		logger:    cfg.logger,
		cache:     make(map[string]string),
	}
	if r.client == nil {
		r.clientOpts = cfg.clientOpts
	}
	return r
}

// Close releases the Secret Manager client when the resolver created it.
func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ownsClient && r.client != nil {
		err := r.client.Close()
		r.client = nil
		r.ownsClient = false
		return err
	}
	return nil
}

// ResolveSecret implements config.SecretResolver.
func (r *Resolver) ResolveSecret(ctx context.Context, ref string) (string, error) {
	name, err := r.resourceName(ref)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if value, ok := r.cache[name]; ok {
		return value, nil
	}
	if r.client == nil {
		client, err := secretManagerClientFactory(ctx, r.clientOpts...)
		if err != nil {
			return "", fmt.Errorf("secrets: create client: %w", err)
		}
		r.client = client
		r.ownsClient = true
	}

	resp, err := r.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return "", fmt.Errorf("secrets: access %s: %w", name, err)
	}
	if resp == nil || resp.GetPayload() == nil {
		return "", fmt.Errorf("secrets: empty payload for %s", name)
	}
	value := string(resp.GetPayload().GetData())
	r.cache[name] = value
	r.logger.Debug("secret resolved", zap.String("name", name))
	return value, nil
}

// resourceName maps secret://name[#version] or secret://projects/p/secrets/name[/versions/v]
// onto a Secret Manager version resource.
func (r *Resolver) resourceName(ref string) (string, error) {
	trimmed := strings.TrimSpace(ref)
	trimmed = strings.TrimPrefix(trimmed, "secret://")
	trimmed = strings.TrimPrefix(trimmed, "sm://")
	if trimmed == "" {
		return "", fmt.Errorf("secrets: empty reference %q", ref)
	}
	if strings.HasPrefix(trimmed, "projects/") {
		if strings.Contains(trimmed, "/versions/") {
			return trimmed, nil
		}
		return trimmed + "/versions/latest", nil
	}

	secret, version, _ := strings.Cut(trimmed, "#")
	if version == "" {
		version = "latest"
	}
	if r.projectID == "" {
		return "", errProjectRequired
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/%s", r.projectID, secret, version), nil
}
