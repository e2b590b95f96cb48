package pages

import (
	"context"

	"github.com/lordwhitefire/new-portfolio/internal/cms"
	"github.com/lordwhitefire/new-portfolio/internal/dom"
	"github.com/lordwhitefire/new-portfolio/internal/reconcile"
)

const (
	aboutTitleSuffix     = " — About"
	defaultFooterHeading = "Let’s work together"
)

func (h *Hydrator) about(ctx context.Context, page *dom.Page, _ Params) error {
	var (
		settings *cms.SiteSettings
		clients  []cms.ClientLogo
		featured []cms.FeaturedYear
	)
	if err := h.fetch(ctx, About,
		cms.Bind(cms.SiteSettingsQuery, &settings),
		cms.Bind(cms.ClientsQuery, &clients),
		cms.Bind(cms.FeaturedQuery, &featured),
	); err != nil {
		return err
	}

	if settings != nil {
		h.patchHead(page, settings, aboutTitleSuffix)
		h.patchLogos(page, settings)
	}

	if len(clients) > 0 {
		wrapper := page.Find(".client-active .swiper-wrapper").First()
		if wrapper.Length() > 0 {
			res := reconcile.Apply(clients, reconcile.List[cms.ClientLogo]{
				Parent:  wrapper,
				Slots:   wrapper.Find(".swiper-slide"),
				Create:  newClientSlide,
				Render:  h.renderClientSlide,
				Deficit: reconcile.Remove,
			})
			logResult(ctx, "clients", res)
		}
	}

	if len(featured) > 0 {
		container, ok := page.ByID("achieved-container")
		if !ok {
			container = page.Find(".achieved-year").First().Parent()
		}
		if container.Length() > 0 {
			h.patchTimeline(ctx, container, featured, aboutTimeline)
		}
	}

	if settings != nil {
		if f := settings.Footer; f != nil {
			page.SetHTML("footer-heading", orDefault(f.Heading, defaultFooterHeading))
			if f.Email != "" {
				page.SetText("footer-email", f.Email)
				page.SetHref("footer-email-link", "mailto:"+f.Email)
			}
			page.SetHTML("footer-copyright-name", f.CopyrightName)
		}
		if settings.SocialLinks != nil {
			list := page.Find(".footer-social .social").First()
			logResult(ctx, "footer-social", rebuild(list, footerSocialLinks(settings.SocialLinks), labelSocialItem, renderLabelSocial))
		}
	}
	return nil
}
