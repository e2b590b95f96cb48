// Package dom patches parsed HTML templates in place. Every setter is lenient: a missing
// target element or an empty value leaves the document untouched, because optional sections
// of a template may simply not exist on a given page.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Sanitizer cleans CMS supplied markup before it is inserted as inner HTML.
type Sanitizer interface {
	Sanitize(markup string) string
}

// Trusted inserts markup verbatim.
type Trusted struct{}

// Sanitize returns markup unchanged.
func (Trusted) Sanitize(markup string) string { return markup }

// Page is a parsed template being hydrated.
type Page struct {
	doc       *goquery.Document
	sanitizer Sanitizer
}

// Option customises a Page.
type Option func(*Page)

// WithSanitizer sets the sanitizer applied by SetHTML.
func WithSanitizer(s Sanitizer) Option {
	return func(p *Page) {
		if s != nil {
			p.sanitizer = s
		}
	}
}

// Parse reads a full HTML document. Markup passed to SetHTML is sanitized with the default
// policy unless another Sanitizer is supplied.
func Parse(r io.Reader, opts ...Option) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	p := &Page{doc: doc, sanitizer: DefaultPolicy()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// ParseBytes is Parse over a byte slice.
func ParseBytes(b []byte, opts ...Option) (*Page, error) {
	return Parse(bytes.NewReader(b), opts...)
}

// Document exposes the underlying goquery document.
func (p *Page) Document() *goquery.Document { return p.doc }

// Find runs a CSS selector over the whole document.
func (p *Page) Find(selector string) *goquery.Selection { return p.doc.Find(selector) }

// Render serialises the document.
func (p *Page) Render(w io.Writer) error {
	for _, n := range p.doc.Nodes {
		if err := html.Render(w, n); err != nil {
			return err
		}
	}
	return nil
}

// Bytes serialises the document into a byte slice.
func (p *Page) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ByID returns the first element carrying the id. ok is false when the template has none.
func (p *Page) ByID(id string) (*goquery.Selection, bool) {
	if id == "" {
		return nil, false
	}
	sel := p.doc.FindMatcher(idMatcher(id)).First()
	return sel, sel.Length() > 0
}

// SetText replaces the text content of #id.
func (p *Page) SetText(id, text string) {
	if text == "" {
		return
	}
	if sel, ok := p.ByID(id); ok {
		sel.SetText(text)
	}
}

// SetHTML replaces the inner markup of #id with sanitized markup.
func (p *Page) SetHTML(id, markup string) {
	if markup == "" {
		return
	}
	if sel, ok := p.ByID(id); ok {
		sel.SetHtml(p.sanitizer.Sanitize(markup))
	}
}

// SetSrc replaces the src attribute of #id.
func (p *Page) SetSrc(id, src string) {
	p.SetAttr(id, "src", src)
}

// SetHref replaces the href attribute of #id.
func (p *Page) SetHref(id, href string) {
	p.SetAttr(id, "href", href)
}

// SetAttr replaces an arbitrary attribute of #id.
func (p *Page) SetAttr(id, name, value string) {
	if value == "" {
		return
	}
	if sel, ok := p.ByID(id); ok {
		sel.SetAttr(name, value)
	}
}

// SetClass replaces the class list of #id.
func (p *Page) SetClass(id, class string) {
	p.SetAttr(id, "class", class)
}

// SetBackgroundImage points the inline background-image of #id at url.
func (p *Page) SetBackgroundImage(id, url string) {
	if url == "" {
		return
	}
	if sel, ok := p.ByID(id); ok {
		SetStyle(sel, "background-image", "url("+url+")")
	}
}

// SetTitle replaces the document title.
func (p *Page) SetTitle(title string) {
	if title == "" {
		return
	}
	if sel := p.doc.Find("head title").First(); sel.Length() > 0 {
		sel.SetText(title)
	}
}

// SetMeta replaces the content of <meta name=name>.
func (p *Page) SetMeta(name, content string) {
	if content == "" {
		return
	}
	p.doc.Find("meta[name]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.EqualFold(s.AttrOr("name", ""), name)
	}).First().SetAttr("content", content)
}

// SetFavicon replaces the href of the shortcut icon link.
func (p *Page) SetFavicon(href string) {
	if href == "" {
		return
	}
	p.doc.Find(`link[rel="shortcut icon"]`).First().SetAttr("href", href)
}

// SetHTMLOn replaces the inner markup of an already resolved selection.
func (p *Page) SetHTMLOn(sel *goquery.Selection, markup string) {
	if sel == nil || sel.Length() == 0 {
		return
	}
	sel.SetHtml(p.sanitizer.Sanitize(markup))
}

// Fragment parses trusted skeleton markup with a single root element into a detached
// selection ready to be appended somewhere in the page.
func Fragment(markup string) (*goquery.Selection, error) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	})
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			return goquery.NewDocumentFromNode(n).Selection, nil
		}
	}
	return nil, fmt.Errorf("dom: fragment has no element: %q", markup)
}

// MustFragment is Fragment for compile-time skeletons; it panics on malformed markup.
func MustFragment(markup string) *goquery.Selection {
	sel, err := Fragment(markup)
	if err != nil {
		panic(err)
	}
	return sel
}

// idMatcher implements goquery.Matcher for an exact id attribute.
type idMatcher string

func (m idMatcher) Match(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, a := range n.Attr {
		if a.Key == "id" && a.Namespace == "" {
			return a.Val == string(m)
		}
	}
	return false
}

func (m idMatcher) MatchAll(n *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if m.Match(node) {
			out = append(out, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func (m idMatcher) Filter(nodes []*html.Node) []*html.Node {
	var out []*html.Node
	for _, n := range nodes {
		if m.Match(n) {
			out = append(out, n)
		}
	}
	return out
}
