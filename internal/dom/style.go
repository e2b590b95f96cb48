package dom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gorilla/css/scanner"
	"github.com/microcosm-cc/bluemonday"
)

// DefaultPolicy allows the inline markup the site templates actually carry: line breaks,
// list items, icon <i> tags, links and simple headings.
func DefaultPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("br", "p", "span", "strong", "em", "b", "li", "h2", "h3", "h4")
	p.AllowAttrs("class").OnElements("i", "span", "p", "li", "div", "a", "h2", "h3", "h4")
	p.AllowAttrs("id").OnElements("div", "span")
	p.AllowElements("div", "i")
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("target").Matching(bluemonday.SpaceSeparatedTokens).OnElements("a")
	p.AllowStandardURLs()
	p.AllowURLSchemes("http", "https", "mailto", "tel")
	p.RequireNoFollowOnLinks(false)
	return p
}

// SetStyle sets one inline style declaration on every element of sel, keeping the others.
func SetStyle(sel *goquery.Selection, property, value string) {
	if sel == nil {
		return
	}
	sel.Each(func(_ int, s *goquery.Selection) {
		decls := parseStyle(s.AttrOr("style", ""))
		found := false
		for i := range decls {
			if decls[i][0] == property {
				decls[i][1] = value
				found = true
			}
		}
		if !found {
			decls = append(decls, [2]string{property, value})
		}
		s.SetAttr("style", formatStyle(decls))
	})
}

// RemoveStyle drops one inline style declaration; the attribute goes away when empty.
func RemoveStyle(sel *goquery.Selection, property string) {
	if sel == nil {
		return
	}
	sel.Each(func(_ int, s *goquery.Selection) {
		raw, ok := s.Attr("style")
		if !ok {
			return
		}
		decls := parseStyle(raw)
		kept := decls[:0]
		for _, d := range decls {
			if d[0] != property {
				kept = append(kept, d)
			}
		}
		if len(kept) == 0 {
			s.RemoveAttr("style")
			return
		}
		s.SetAttr("style", formatStyle(kept))
	})
}

// StyleValue returns the value of an inline declaration on the first element of sel.
func StyleValue(sel *goquery.Selection, property string) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	for _, d := range parseStyle(sel.First().AttrOr("style", "")) {
		if d[0] == property {
			return d[1]
		}
	}
	return ""
}

// Hide suppresses display of every element in sel.
func Hide(sel *goquery.Selection) {
	SetStyle(sel, "display", "none")
}

// Show makes previously hidden elements visible again.
func Show(sel *goquery.Selection) {
	SetStyle(sel, "display", "block")
}

// IsHidden reports whether the first element of sel has display suppressed inline.
func IsHidden(sel *goquery.Selection) bool {
	return StyleValue(sel, "display") == "none"
}

// Hide suppresses display of #id.
func (p *Page) Hide(id string) {
	if sel, ok := p.ByID(id); ok {
		Hide(sel)
	}
}

// Show reveals #id.
func (p *Page) Show(id string) {
	if sel, ok := p.ByID(id); ok {
		Show(sel)
	}
}

// parseStyle splits an inline style into declarations. Semicolons inside url(), functions
// and quoted strings do not end a declaration.
func parseStyle(raw string) [][2]string {
	var out [][2]string
	for _, part := range splitDeclarations(raw) {
		name, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.TrimSpace(value)
		if name == "" {
			continue
		}
		out = append(out, [2]string{name, value})
	}
	return out
}

func splitDeclarations(raw string) []string {
	var (
		parts []string
		cur   strings.Builder
		depth int
	)
	s := scanner.New(raw)
	for {
		tok := s.Next()
		switch tok.Type {
		case scanner.TokenEOF:
			return append(parts, cur.String())
		case scanner.TokenError:
			// unbalanced quotes or comments; fall back to a plain split
			return strings.Split(raw, ";")
		case scanner.TokenComment:
			continue
		case scanner.TokenFunction:
			depth++
		case scanner.TokenChar:
			switch tok.Value {
			case "(":
				depth++
			case ")":
				if depth > 0 {
					depth--
				}
			case ";":
				if depth == 0 {
					parts = append(parts, cur.String())
					cur.Reset()
					continue
				}
			}
		}
		cur.WriteString(tok.Value)
	}
}

func formatStyle(decls [][2]string) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d[0]+": "+d[1])
	}
	return strings.Join(parts, "; ") + ";"
}
