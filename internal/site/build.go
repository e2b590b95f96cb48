package site

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/natefinch/atomic"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/lordwhitefire/new-portfolio/internal/observability"
	"github.com/lordwhitefire/new-portfolio/internal/pages"
)

// ReportFile is written at the root of every build.
const ReportFile = "build.json"

const filePerm = 0o644

// BuildReport describes one Build run.
type BuildReport struct {
	ID        string       `json:"id"`
	StartedAt time.Time    `json:"startedAt"`
	Duration  string       `json:"duration"`
	Pages     []PageReport `json:"pages"`
	Assets    []string     `json:"assets"`
}

// PageReport is the outcome of one page of a build.
type PageReport struct {
	Page
	File    string        `json:"file"`
	Outcome pages.Outcome `json:"outcome"`
	Error   string        `json:"error,omitempty"`
}

// Failed counts pages whose hydration failed.
func (r BuildReport) Failed() int {
	n := 0
	for _, p := range r.Pages {
		if p.Outcome == pages.Failed {
			n++
		}
	}
	return n
}

// Build renders every manifest page into outDir and copies the static files matched by the
// manifest patterns from public. Failed passes still write the untouched template, so the
// output is always a complete site. Files are replaced atomically.
func (r *Renderer) Build(ctx context.Context, outDir string, public fs.FS) (BuildReport, error) {
	logger := observability.FromContext(ctx)
	report := BuildReport{ID: ulid.Make().String(), StartedAt: time.Now().UTC()}
	logger = logger.With(zap.String("build_id", report.ID))

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return report, fmt.Errorf("site: create output dir: %w", err)
	}

	for _, page := range r.manifest.Pages {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		pass, err := r.RenderPage(ctx, page, pages.Params{})
		if err != nil {
			return report, err
		}
		entry := PageReport{Page: page, File: page.OutputName(), Outcome: pass.Outcome}
		if pass.Err != nil {
			entry.Error = pass.Err.Error()
		}
		if err := writeFile(outDir, entry.File, pass.Body); err != nil {
			return report, err
		}
		report.Pages = append(report.Pages, entry)
		logger.Info("page built", zap.String("path", page.Path), zap.String("outcome", string(pass.Outcome)))
	}

	if public != nil {
		assets, err := StaticFiles(public, r.manifest.Static)
		if err != nil {
			return report, err
		}
		for _, name := range assets {
			data, err := fs.ReadFile(public, name)
			if err != nil {
				return report, fmt.Errorf("site: read asset %s: %w", name, err)
			}
			if err := writeFile(outDir, name, data); err != nil {
				return report, err
			}
		}
		if len(assets) == 0 {
			logger.Info("no static files copied", zap.Strings("patterns", r.manifest.Static))
		}
		report.Assets = assets
	}

	report.Duration = time.Since(report.StartedAt).String()
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return report, fmt.Errorf("site: encode report: %w", err)
	}
	if err := writeFile(outDir, ReportFile, data); err != nil {
		return report, err
	}
	logger.Info("build complete", zap.Int("pages", len(report.Pages)), zap.Int("failed", report.Failed()), zap.Int("assets", len(report.Assets)))
	return report, nil
}

// StaticFiles lists the regular files of fsys matching any pattern, sorted by path. A missing
// root yields no files.
func StaticFiles(fsys fs.FS, patterns []string) ([]string, error) {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("site: bad static pattern %q: %w", pattern, doublestar.ErrBadPattern)
		}
	}
	if _, err := fs.Stat(fsys, "."); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	var out []string
	err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		for _, pattern := range patterns {
			matched, err := doublestar.Match(pattern, name)
			if err != nil {
				return fmt.Errorf("site: bad static pattern %q: %w", pattern, err)
			}
			if matched {
				out = append(out, name)
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func writeFile(outDir, name string, data []byte) error {
	target := filepath.Join(outDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("site: create dir for %s: %w", name, err)
	}
	if err := atomic.WriteFile(target, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("site: write %s: %w", name, err)
	}
	// atomic.WriteFile keeps the temp file's 0600 mode for new files.
	if err := os.Chmod(target, filePerm); err != nil {
		return fmt.Errorf("site: chmod %s: %w", name, err)
	}
	return nil
}
