package pages

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/lordwhitefire/new-portfolio/internal/cms"
	"github.com/lordwhitefire/new-portfolio/internal/dom"
	"github.com/lordwhitefire/new-portfolio/internal/reconcile"
)

// Logos are cropped to the header slot.
const (
	logoWidth  = 70
	logoHeight = 76
)

// socialLink is one rendered entry of a social list.
type socialLink struct {
	network string
	label   string
	icon    string
	href    string
}

func heroSocialLinks(s *cms.SocialLinks) []socialLink {
	return presentLinks([]socialLink{
		{network: "twitter", icon: "fab fa-twitter", href: s.Twitter},
		{network: "facebook", icon: "fab fa-facebook-f", href: s.Facebook},
		{network: "behance", icon: "fab fa-behance", href: s.Behance},
	})
}

func footerSocialLinks(s *cms.SocialLinks) []socialLink {
	return presentLinks([]socialLink{
		{network: "twitter", label: "Twitter", href: s.Twitter},
		{network: "behance", label: "Behance", href: s.Behance},
		{network: "dribbble", label: "Dribbble", href: s.Dribbble},
		{network: "github", label: "Github", href: s.Github},
	})
}

func presentLinks(links []socialLink) []socialLink {
	out := links[:0]
	for _, l := range links {
		if l.href != "" {
			out = append(out, l)
		}
	}
	return out
}

// rebuild empties parent and appends one freshly created element per item.
func rebuild[T any](parent *goquery.Selection, items []T, create func(T) *goquery.Selection, render func(*goquery.Selection, T)) reconcile.Result {
	if parent == nil || parent.Length() == 0 {
		return reconcile.Result{}
	}
	parent.Empty()
	return reconcile.Apply(items, reconcile.List[T]{
		Parent: parent,
		Slots:  parent.Children(),
		Create: create,
		Render: render,
	})
}

func iconSocialItem(socialLink) *goquery.Selection {
	return dom.MustFragment(`<li><a target="_blank" href="#"><i></i></a></li>`)
}

func renderIconSocial(slot *goquery.Selection, l socialLink) {
	slot.Find("a").SetAttr("href", l.href)
	slot.Find("i").SetAttr("class", l.icon)
}

func labelSocialItem(socialLink) *goquery.Selection {
	return dom.MustFragment(`<li><a target="_blank" href="#"></a></li>`)
}

func renderLabelSocial(slot *goquery.Selection, l socialLink) {
	slot.Find("a").SetAttr("class", l.network).SetAttr("href", l.href).SetText(l.label)
}

// patchHead updates document title, meta description and favicon.
func (h *Hydrator) patchHead(page *dom.Page, s *cms.SiteSettings, titleSuffix string) {
	if s.Title != "" {
		page.SetTitle(s.Title + titleSuffix)
	}
	page.SetMeta("description", s.Description)
	page.SetFavicon(h.images.URL(s.Favicon, 0, 0))
}

func (h *Hydrator) patchLogos(page *dom.Page, s *cms.SiteSettings) {
	page.SetSrc("main-logo", h.images.URL(s.Logo, logoWidth, logoHeight))
	page.SetSrc("mobile-logo", h.images.URL(s.LogoMobile, logoWidth, logoHeight))
}

func patchFooter(page *dom.Page, f *cms.Footer) {
	if f == nil {
		return
	}
	page.SetText("footer-heading", f.Heading)
	if f.Email != "" {
		page.SetText("footer-email", f.Email)
		page.SetHref("footer-email-link", "mailto:"+f.Email)
	}
	page.SetText("footer-copyright-name", f.CopyrightName)
}

// patchSocial rebuilds the hero icon list and the footer label list.
func patchSocial(ctx context.Context, page *dom.Page, s *cms.SocialLinks, footerList *goquery.Selection) {
	if s == nil {
		return
	}
	if hero, ok := page.ByID("hero-social"); ok {
		logResult(ctx, "hero-social", rebuild(hero, heroSocialLinks(s), iconSocialItem, renderIconSocial))
	}
	if footerList != nil && footerList.Length() > 0 {
		logResult(ctx, "footer-social", rebuild(footerList, footerSocialLinks(s), labelSocialItem, renderLabelSocial))
	}
}

// patchChrome applies the settings every page shares: head, logos, footer and social lists.
func (h *Hydrator) patchChrome(ctx context.Context, page *dom.Page, s *cms.SiteSettings) {
	if s == nil {
		return
	}
	h.patchHead(page, s, "")
	h.patchLogos(page, s)
	patchFooter(page, s.Footer)
	footer, _ := page.ByID("footer-social")
	patchSocial(ctx, page, s.SocialLinks, footer)
}

// multiline converts CMS newlines into line breaks for inner markup.
func multiline(s string) string {
	return strings.ReplaceAll(s, "\n", "<br>")
}

// orDefault returns fallback when v is empty.
func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
