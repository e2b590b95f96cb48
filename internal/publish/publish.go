// Package publish uploads a built site directory to Cloud Storage.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"path"
	"strings"
	"sync"

	gcs "cloud.google.com/go/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lordwhitefire/new-portfolio/internal/observability"
)

const (
	defaultConcurrency = 8

	cacheHTML   = "no-cache, max-age=0"
	cacheReport = "no-store"
	cacheAsset  = "public, max-age=3600"
)

var errBucketRequired = errors.New("publish: bucket is required")

// Attrs are the object metadata set on upload.
type Attrs struct {
	ContentType  string
	CacheControl string
}

// ObjectWriter stores one object.
type ObjectWriter interface {
	WriteObject(ctx context.Context, name string, attrs Attrs, r io.Reader) error
}

// BucketWriter writes objects into a Cloud Storage bucket.
type BucketWriter struct {
	bucket *gcs.BucketHandle
}

// NewBucketWriter constructs a BucketWriter for bucket.
func NewBucketWriter(client *gcs.Client, bucket string) (*BucketWriter, error) {
	if client == nil {
		return nil, errors.New("publish: storage client is required")
	}
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errBucketRequired
	}
	return &BucketWriter{bucket: client.Bucket(bucket)}, nil
}

// WriteObject implements ObjectWriter.
func (b *BucketWriter) WriteObject(ctx context.Context, name string, attrs Attrs, r io.Reader) error {
	w := b.bucket.Object(name).NewWriter(ctx)
	w.ContentType = attrs.ContentType
	w.CacheControl = attrs.CacheControl
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// Summary reports what a Publish call uploaded.
type Summary struct {
	Objects []string
	Bytes   int64
}

// Publisher mirrors a directory tree under a bucket prefix.
type Publisher struct {
	writer      ObjectWriter
	prefix      string
	concurrency int
}

// Option customises a Publisher.
type Option func(*Publisher)

// WithPrefix places every object under prefix.
func WithPrefix(prefix string) Option {
	return func(p *Publisher) {
		p.prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	}
}

// WithConcurrency bounds the number of parallel uploads.
func WithConcurrency(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// New constructs a Publisher.
func New(writer ObjectWriter, opts ...Option) *Publisher {
	p := &Publisher{writer: writer, concurrency: defaultConcurrency}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ObjectName maps a file of the build onto its object name.
func (p *Publisher) ObjectName(file string) string {
	if p.prefix == "" {
		return file
	}
	return path.Join(p.prefix, file)
}

// Publish uploads every regular file of site. The first failed upload cancels the rest.
func (p *Publisher) Publish(ctx context.Context, site fs.FS) (Summary, error) {
	if p.writer == nil {
		return Summary{}, errors.New("publish: writer is required")
	}
	var files []string
	err := fs.WalkDir(site, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, name)
		}
		return nil
	})
	if err != nil {
		return Summary{}, fmt.Errorf("publish: walk site: %w", err)
	}

	logger := observability.FromContext(ctx)
	var (
		mu      sync.Mutex
		summary Summary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for _, file := range files {
		g.Go(func() error {
			n, err := p.upload(gctx, site, file)
			if err != nil {
				return err
			}
			mu.Lock()
			summary.Objects = append(summary.Objects, p.ObjectName(file))
			summary.Bytes += n
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}
	logger.Info("site published", zap.Int("objects", len(summary.Objects)), zap.Int64("bytes", summary.Bytes), zap.String("prefix", p.prefix))
	return summary, nil
}

func (p *Publisher) upload(ctx context.Context, site fs.FS, file string) (int64, error) {
	f, err := site.Open(file)
	if err != nil {
		return 0, fmt.Errorf("publish: open %s: %w", file, err)
	}
	defer f.Close()
	counter := &countingReader{r: f}
	if err := p.writer.WriteObject(ctx, p.ObjectName(file), AttrsFor(file), counter); err != nil {
		return 0, fmt.Errorf("publish: upload %s: %w", file, err)
	}
	return counter.n, nil
}

// AttrsFor derives object metadata from a file name. HTML is revalidated on every request so
// a new build shows up at once; the build report is never cached.
func AttrsFor(file string) Attrs {
	ext := strings.ToLower(path.Ext(file))
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	switch {
	case path.Base(file) == "build.json":
		return Attrs{ContentType: contentType, CacheControl: cacheReport}
	case ext == ".html" || ext == ".htm":
		return Attrs{ContentType: contentType, CacheControl: cacheHTML}
	default:
		return Attrs{ContentType: contentType, CacheControl: cacheAsset}
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(b []byte) (int, error) {
	n, err := c.r.Read(b)
	c.n += int64(n)
	return n, err
}
