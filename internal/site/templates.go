package site

import (
	"fmt"
	"io/fs"
	"sync"
)

// Templates serves template bytes. In dev mode every Load re-reads the file so edits show up
// without a restart; otherwise files are read once and cached.
type Templates struct {
	fsys fs.FS
	dev  bool

	mu    sync.RWMutex
	cache map[string][]byte
}

// NewTemplates reads templates from fsys.
func NewTemplates(fsys fs.FS, dev bool) *Templates {
	return &Templates{fsys: fsys, dev: dev, cache: make(map[string][]byte)}
}

// Load returns the raw template. Callers must not modify the returned slice.
func (t *Templates) Load(name string) ([]byte, error) {
	if !t.dev {
		t.mu.RLock()
		b, ok := t.cache[name]
		t.mu.RUnlock()
		if ok {
			return b, nil
		}
	}
	b, err := fs.ReadFile(t.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("site: load template %s: %w", name, err)
	}
	if !t.dev {
		t.mu.Lock()
		t.cache[name] = b
		t.mu.Unlock()
	}
	return b, nil
}

// Preload reads every named template, failing on the first missing one.
func (t *Templates) Preload(names ...string) error {
	for _, name := range names {
		if _, err := t.Load(name); err != nil {
			return err
		}
	}
	return nil
}
