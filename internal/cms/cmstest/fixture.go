// Package cmstest provides an in-memory content source for controller and renderer tests.
package cmstest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/lordwhitefire/new-portfolio/internal/cms"
)

// Fixture answers queries from canned JSON keyed by content type. Entries in Errors fail the
// query instead. Calls are recorded for assertions.
type Fixture struct {
	Results map[string]string
	Errors  map[string]error

	mu    sync.Mutex
	calls []cms.Query
}

// New returns a Fixture with the given results.
func New(results map[string]string) *Fixture {
	return &Fixture{Results: results, Errors: map[string]error{}}
}

// Fetch implements cms.Fetcher.
func (f *Fixture) Fetch(ctx context.Context, q cms.Query, out any) error {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err, ok := f.Errors[q.ContentType]; ok && err != nil {
		return &cms.QueryError{ContentType: q.ContentType, Err: err}
	}
	raw, ok := f.Results[q.ContentType]
	if !ok {
		raw = "null"
	}
	return cms.DecodeResult(strings.NewReader(`{"result":`+raw+`}`), out)
}

// Calls returns the queries received so far.
func (f *Fixture) Calls() []cms.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]cms.Query(nil), f.calls...)
}

// JSON marshals v for use as a fixture result; it panics on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("cmstest: marshal fixture: %v", err))
	}
	return string(b)
}
