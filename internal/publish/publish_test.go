package publish

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

type memoryWriter struct {
	mu      sync.Mutex
	objects map[string][]byte
	attrs   map[string]Attrs
	failOn  string
}

func newMemoryWriter() *memoryWriter {
	return &memoryWriter{objects: map[string][]byte{}, attrs: map[string]Attrs{}}
}

func (m *memoryWriter) WriteObject(_ context.Context, name string, attrs Attrs, r io.Reader) error {
	if name == m.failOn {
		return errors.New("quota exceeded")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[name] = b
	m.attrs[name] = attrs
	return nil
}

func siteFS() fstest.MapFS {
	return fstest.MapFS{
		"index.html":          {Data: []byte("<p>home</p>")},
		"about/index.html":    {Data: []byte("<p>about</p>")},
		"assets/css/site.css": {Data: []byte("body{}")},
		"build.json":          {Data: []byte("{}")},
	}
}

func TestPublishMirrorsTreeUnderPrefix(t *testing.T) {
	w := newMemoryWriter()
	summary, err := New(w, WithPrefix("/preview/"), WithConcurrency(2)).Publish(context.Background(), siteFS())
	require.NoError(t, err)

	sort.Strings(summary.Objects)
	require.Equal(t, []string{
		"preview/about/index.html",
		"preview/assets/css/site.css",
		"preview/build.json",
		"preview/index.html",
	}, summary.Objects)
	require.EqualValues(t, len("<p>home</p>")+len("<p>about</p>")+len("body{}")+len("{}"), summary.Bytes)
	require.Equal(t, "<p>about</p>", string(w.objects["preview/about/index.html"]))

	require.Equal(t, cacheHTML, w.attrs["preview/index.html"].CacheControl)
	require.Contains(t, w.attrs["preview/index.html"].ContentType, "text/html")
	require.Equal(t, cacheAsset, w.attrs["preview/assets/css/site.css"].CacheControl)
	require.Equal(t, cacheReport, w.attrs["preview/build.json"].CacheControl)
}

func TestPublishWithoutPrefix(t *testing.T) {
	p := New(newMemoryWriter())
	require.Equal(t, "index.html", p.ObjectName("index.html"))
}

func TestPublishStopsOnFailure(t *testing.T) {
	w := newMemoryWriter()
	w.failOn = "index.html"
	_, err := New(w).Publish(context.Background(), siteFS())
	require.ErrorContains(t, err, "publish: upload index.html: quota exceeded")
}

func TestAttrsForUnknownExtension(t *testing.T) {
	require.Equal(t, Attrs{ContentType: "application/octet-stream", CacheControl: cacheAsset}, AttrsFor("LICENSE"))
}

func TestNewBucketWriterValidates(t *testing.T) {
	_, err := NewBucketWriter(nil, "site")
	require.Error(t, err)
}
