package pages

import (
	"context"
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"github.com/lordwhitefire/new-portfolio/internal/cms"
	"github.com/lordwhitefire/new-portfolio/internal/dom"
	"github.com/lordwhitefire/new-portfolio/internal/reconcile"
)

// Image boxes used on the home page.
const (
	aboutBgWidth     = 973
	aboutBgHeight    = 983
	signatureWidth   = 163
	signatureHeight  = 31
	clientLogoWidth  = 200
	clientLogoHeight = 85
	testimonialSlots = 2
)

// projectTab is one carousel of the projects section; an empty category lists everything.
type projectTab struct {
	id       string
	category string
}

var projectTabs = []projectTab{
	{id: "projects-all"},
	{id: "projects-webapps", category: "Web Applications"},
	{id: "projects-ecommerce", category: "E-commerce"},
	{id: "projects-dashboards", category: "Dashboards"},
}

func (h *Hydrator) home(ctx context.Context, page *dom.Page, params Params) error {
	var (
		settings     *cms.SiteSettings
		clients      []cms.ClientLogo
		projects     []cms.Project
		testimonials []cms.Testimonial
		featured     []cms.FeaturedYear
	)
	if err := h.fetch(ctx, Home,
		cms.Bind(cms.SiteSettingsQuery, &settings),
		cms.Bind(cms.ClientsQuery, &clients),
		cms.Bind(cms.ProjectsQuery, &projects),
		cms.Bind(cms.TestimonialsQuery, &testimonials),
		cms.Bind(cms.FeaturedQuery, &featured),
	); err != nil {
		return err
	}

	if settings != nil {
		h.patchChrome(ctx, page, settings)
		h.patchHero(page, settings.HeroSlides)
		h.patchAboutBlock(ctx, page, settings.About)
		patchCards(page, settings.WhyChoose)
		patchCounters(page, settings.Counters)
	}
	if len(clients) > 0 {
		if wrapper, ok := page.ByID("clients-wrapper"); ok {
			logResult(ctx, "clients", rebuild(wrapper, clients, newClientSlide, h.renderClientSlide))
		}
	}
	if len(projects) > 0 {
		h.patchProjectTabs(ctx, page, projects)
	}
	patchTestimonials(ctx, page, pickTestimonials(testimonials, params))
	if len(featured) > 0 {
		if container, ok := page.ByID("featured-container"); ok {
			h.patchTimeline(ctx, container, featured, homeTimeline)
		}
	}
	return nil
}

func (h *Hydrator) patchHero(page *dom.Page, slides []cms.HeroSlide) {
	for i, slide := range slides {
		n := strconv.Itoa(i + 1)
		page.SetText("slide-subtitle-"+n, slide.Subtitle)
		page.SetHTML("slide-title-"+n, multiline(slide.Title))
		page.SetText("slide-desc-"+n, slide.Description)
		page.SetText("slide-btn-"+n, slide.ButtonText)
		page.SetHref("slide-link-"+n, slide.ButtonLink)
		page.SetBackgroundImage("slide-bg-"+n, h.images.URL(slide.Background, 0, 0))
	}
}

func (h *Hydrator) patchAboutBlock(ctx context.Context, page *dom.Page, about *cms.About) {
	if about == nil {
		return
	}
	page.SetText("about-name", about.TeamName)
	page.SetBackgroundImage("about-bg", h.images.URL(about.BackgroundImage, aboutBgWidth, aboutBgHeight))
	page.SetSrc("signature-img", h.images.URL(about.SignatureImage, signatureWidth, signatureHeight))
	page.SetText("signature-name", about.SignatureName)

	if len(about.Bio) == 0 {
		return
	}
	if bio, ok := page.ByID("about-bio"); ok {
		res := rebuild(bio, about.Bio,
			func(cms.TextBlock) *goquery.Selection {
				return dom.MustFragment(`<p class="about-text"></p>`)
			},
			func(slot *goquery.Selection, block cms.TextBlock) {
				slot.SetText(block.PlainText())
			})
		logResult(ctx, "about-bio", res)
	}
}

func patchCards(page *dom.Page, cards []cms.Card) {
	for i, card := range cards {
		n := strconv.Itoa(i + 1)
		page.SetText("service-title-"+n, card.Title)
		page.SetText("service-desc-"+n, card.Text)
		page.SetClass("service-icon-"+n, card.Icon)
	}
}

func patchCounters(page *dom.Page, counters []cms.Counter) {
	for i, counter := range counters {
		n := strconv.Itoa(i + 1)
		page.SetAttr("counter-"+n, "data-count-to", counter.Number.String())
		page.SetText("counter-"+n, counter.Number.String())
		page.SetText("counter-label-"+n, counter.Label)
	}
}

func newClientSlide(cms.ClientLogo) *goquery.Selection {
	return dom.MustFragment(`<div class="swiper-slide"></div>`)
}

// renderClientSlide replaces the slide body with a linked logo.
func (h *Hydrator) renderClientSlide(slot *goquery.Selection, c cms.ClientLogo) {
	slot.SetHtml(`<div class="image-box"><a href="#"><img src="" alt=""></a></div>`)
	slot.Find(".image-box a").SetAttr("href", orDefault(c.URL, "#"))
	slot.Find(".image-box img").
		SetAttr("src", h.images.URL(c.Logo, clientLogoWidth, clientLogoHeight)).
		SetAttr("alt", c.Name)
}

func (h *Hydrator) patchProjectTabs(ctx context.Context, page *dom.Page, projects []cms.Project) {
	for _, tab := range projectTabs {
		container, ok := page.ByID(tab.id)
		if !ok {
			continue
		}
		res := reconcile.Apply(tab.filter(projects), reconcile.List[cms.Project]{
			Parent:  container,
			Slots:   container.Find(".swiper-slide"),
			Create:  newProjectSlide,
			Render:  h.renderProjectSlide,
			Deficit: reconcile.Remove,
		})
		logResult(ctx, tab.id, res)
	}
}

func (t projectTab) filter(projects []cms.Project) []cms.Project {
	if t.category == "" {
		return projects
	}
	var out []cms.Project
	for _, p := range projects {
		if p.Category == t.category {
			out = append(out, p)
		}
	}
	return out
}

func newProjectSlide(cms.Project) *goquery.Selection {
	return dom.MustFragment(`<div class="swiper-slide">` +
		`<div class="single-project-slide">` +
		`<div class="thumb"><a href="#" class="image"><img class="fit-image" src="" alt=""></a></div>` +
		`<div class="content"><h4 class="subtitle"></h4><h3 class="title"><a href="#"></a></h3></div>` +
		`</div></div>`)
}

func (h *Hydrator) renderProjectSlide(slot *goquery.Selection, p cms.Project) {
	link := orDefault(p.Link, "#")
	slot.Find(".title a").SetText(p.Title).SetAttr("href", link)
	slot.Find(".subtitle").SetText(orDefault(p.Category, "Project"))
	if src := h.images.URL(p.Image, 0, 0); src != "" {
		slot.Find(".image img").SetAttr("src", src).SetAttr("alt", p.Title)
	}
	slot.Find(".thumb a").SetAttr("href", link)
}

// numbered pairs an item with its 1-based display position.
type numbered[T any] struct {
	n    int
	item T
}

func number[T any](items []T) []numbered[T] {
	out := make([]numbered[T], len(items))
	for i, item := range items {
		out[i] = numbered[T]{n: i + 1, item: item}
	}
	return out
}

// pickTestimonials returns every testimonial when they fit the slots, else a random subset.
func pickTestimonials(all []cms.Testimonial, params Params) []cms.Testimonial {
	if len(all) <= testimonialSlots {
		return all
	}
	perm := params.perm(len(all))
	out := make([]cms.Testimonial, testimonialSlots)
	for i := range out {
		out[i] = all[perm[i]]
	}
	return out
}

// patchTestimonials fills the fixed dual slots; slots without a testimonial are hidden.
func patchTestimonials(ctx context.Context, page *dom.Page, chosen []cms.Testimonial) {
	slots := page.Find(`[id^="testimonial-slide-"]`)
	res := reconcile.Apply(number(chosen), reconcile.List[numbered[cms.Testimonial]]{
		Slots: slots,
		Key: func(t numbered[cms.Testimonial]) string {
			return "testimonial-slide-" + strconv.Itoa(t.n)
		},
		SlotKey: func(s *goquery.Selection) string { return s.AttrOr("id", "") },
		Render: func(_ *goquery.Selection, t numbered[cms.Testimonial]) {
			n := strconv.Itoa(t.n)
			if sel, ok := page.ByID("testimonial-name-" + n); ok {
				sel.SetText(t.item.Name)
			}
			if sel, ok := page.ByID("testimonial-position-" + n); ok {
				sel.SetText(t.item.Position)
			}
			if sel, ok := page.ByID("testimonial-content-" + n); ok {
				sel.SetText(t.item.Content)
			}
		},
		Deficit: reconcile.Hide,
	})
	logResult(ctx, "testimonials", res)
}
