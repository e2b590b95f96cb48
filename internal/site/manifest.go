// Package site ties templates, controllers and URL paths together. The manifest names every
// hydrated page; the renderer runs a page's controller over its template; Build renders the
// whole site to a directory.
package site

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownPage is returned for a path that the manifest does not list.
var ErrUnknownPage = errors.New("site: unknown page")

// Page binds a URL path to a template and the controller that hydrates it.
type Page struct {
	Path       string `yaml:"path" json:"path"`
	Template   string `yaml:"template" json:"template"`
	Controller string `yaml:"controller" json:"controller"`
}

// Manifest lists the pages of the site and the static files copied by Build.
type Manifest struct {
	Pages []Page `yaml:"pages"`
	// Static holds doublestar patterns, relative to the public directory.
	Static []string `yaml:"static"`
}

// DefaultManifest describes the stock portfolio site.
func DefaultManifest() Manifest {
	return Manifest{
		Pages: []Page{
			{Path: "/index.html", Template: "index.html", Controller: "home"},
			{Path: "/about.html", Template: "about.html", Controller: "about"},
			{Path: "/contact.html", Template: "contact.html", Controller: "contact"},
			{Path: "/pricing.html", Template: "pricing.html", Controller: "pricing"},
			{Path: "/projects.html", Template: "projects.html", Controller: "projects"},
			{Path: "/project-details.html", Template: "project-details.html", Controller: "project-details"},
		},
		Static: []string{"assets/**"},
	}
}

// ParseManifest decodes and validates a YAML manifest.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("site: parse manifest: %w", err)
	}
	if err := m.normalize(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// LoadManifest reads name from fsys. A missing file yields DefaultManifest.
func LoadManifest(fsys fs.FS, name string) (Manifest, error) {
	data, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultManifest(), nil
	}
	if err != nil {
		return Manifest{}, fmt.Errorf("site: read manifest: %w", err)
	}
	return ParseManifest(data)
}

// Lookup finds the page served at p. "/" and "" resolve to /index.html.
func (m Manifest) Lookup(p string) (Page, error) {
	p = cleanPath(p)
	for _, page := range m.Pages {
		if page.Path == p {
			return page, nil
		}
	}
	return Page{}, fmt.Errorf("%w: %s", ErrUnknownPage, p)
}

// ForController returns the first page hydrated by controller.
func (m Manifest) ForController(controller string) (Page, bool) {
	for _, page := range m.Pages {
		if page.Controller == controller {
			return page, true
		}
	}
	return Page{}, false
}

// Templates returns the distinct template names, in manifest order.
func (m Manifest) Templates() []string {
	seen := make(map[string]bool, len(m.Pages))
	var out []string
	for _, page := range m.Pages {
		if !seen[page.Template] {
			seen[page.Template] = true
			out = append(out, page.Template)
		}
	}
	return out
}

func (m *Manifest) normalize() error {
	if len(m.Pages) == 0 {
		return errors.New("site: manifest lists no pages")
	}
	seen := make(map[string]bool, len(m.Pages))
	var problems []string
	for i := range m.Pages {
		page := &m.Pages[i]
		page.Path = cleanPath(page.Path)
		page.Template = strings.TrimSpace(page.Template)
		page.Controller = strings.TrimSpace(page.Controller)
		switch {
		case page.Template == "":
			problems = append(problems, fmt.Sprintf("page %s: template is required", page.Path))
		case page.Controller == "":
			problems = append(problems, fmt.Sprintf("page %s: controller is required", page.Path))
		case seen[page.Path]:
			problems = append(problems, fmt.Sprintf("page %s: listed twice", page.Path))
		}
		seen[page.Path] = true
	}
	if len(problems) > 0 {
		return fmt.Errorf("site: invalid manifest: %s", strings.Join(problems, "; "))
	}
	return nil
}

func cleanPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "/" {
		return "/index.html"
	}
	dir := strings.HasSuffix(p, "/")
	p = path.Clean("/" + p)
	if dir {
		return path.Join(p, "index.html")
	}
	return p
}

// OutputName is the file a page is written to by Build, relative to the output directory.
func (p Page) OutputName() string {
	return strings.TrimPrefix(cleanPath(p.Path), "/")
}
