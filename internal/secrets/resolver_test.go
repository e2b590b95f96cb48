package secrets

import (
	"context"
	"errors"
	"sync"
	"testing"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeSecretClient struct {
	mu     sync.Mutex
	values map[string]string
	calls  map[string]int
	closed bool
}

func newFakeSecretClient() *fakeSecretClient {
	return &fakeSecretClient{values: map[string]string{}, calls: map[string]int{}}
}

func (f *fakeSecretClient) AccessSecretVersion(_ context.Context, req *secretmanagerpb.AccessSecretVersionRequest, _ ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[req.GetName()]++
	value, ok := f.values[req.GetName()]
	if !ok {
		return nil, status.Error(codes.NotFound, "missing")
	}
	return &secretmanagerpb.AccessSecretVersionResponse{
		Name:    req.GetName(),
		Payload: &secretmanagerpb.SecretPayload{Data: []byte(value)},
	}, nil
}

func (f *fakeSecretClient) Close() error {
	f.closed = true
	return nil
}

func TestResolveSecretCachesValue(t *testing.T) {
	client := newFakeSecretClient()
	resource := "projects/site/secrets/sanity-token/versions/latest"
	client.values[resource] = "tok"

	r := NewResolver("site", WithSecretManagerClient(client))
	defer r.Close()

	for i := 0; i < 2; i++ {
		got, err := r.ResolveSecret(context.Background(), "secret://sanity-token")
		if err != nil {
			t.Fatalf("ResolveSecret returned error: %v", err)
		}
		if got != "tok" {
			t.Fatalf("expected tok, got %s", got)
		}
	}
	if calls := client.calls[resource]; calls != 1 {
		t.Fatalf("expected one remote call, got %d", calls)
	}
	if client.closed {
		t.Fatalf("injected client must not be closed by the resolver")
	}
}

func TestResolveSecretVersionAndFullName(t *testing.T) {
	client := newFakeSecretClient()
	client.values["projects/site/secrets/token/versions/3"] = "v3"
	client.values["projects/other/secrets/token/versions/latest"] = "other"

	r := NewResolver("site", WithSecretManagerClient(client))

	got, err := r.ResolveSecret(context.Background(), "secret://token#3")
	if err != nil || got != "v3" {
		t.Fatalf("versioned ref = %q, %v", got, err)
	}
	got, err = r.ResolveSecret(context.Background(), "secret://projects/other/secrets/token")
	if err != nil || got != "other" {
		t.Fatalf("full ref = %q, %v", got, err)
	}
}

func TestResolveSecretNotFound(t *testing.T) {
	r := NewResolver("site", WithSecretManagerClient(newFakeSecretClient()))
	_, err := r.ResolveSecret(context.Background(), "secret://missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveSecretRequiresProject(t *testing.T) {
	r := NewResolver("", WithSecretManagerClient(newFakeSecretClient()))
	_, err := r.ResolveSecret(context.Background(), "secret://token")
	if !errors.Is(err, errProjectRequired) {
		t.Fatalf("expected errProjectRequired, got %v", err)
	}
}
