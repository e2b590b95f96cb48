package pages

import (
	"context"

	"github.com/lordwhitefire/new-portfolio/internal/cms"
	"github.com/lordwhitefire/new-portfolio/internal/dom"
)

func (h *Hydrator) contact(ctx context.Context, page *dom.Page, _ Params) error {
	var (
		settings *cms.SiteSettings
		contact  *cms.Contact
	)
	if err := h.fetch(ctx, Contact,
		cms.Bind(cms.SiteSettingsQuery, &settings),
		cms.Bind(cms.ContactQuery, &contact),
	); err != nil {
		return err
	}

	h.patchChrome(ctx, page, settings)
	if contact == nil {
		return nil
	}

	page.SetBackgroundImage("contact-bg", h.images.URL(contact.BackgroundImage, 0, 0))
	if contact.Email != "" {
		page.SetText("contact-email", contact.Email)
		page.SetText("contact-email-link", contact.Email)
		page.SetHref("contact-email-link", "mailto:"+contact.Email)
	}
	if contact.Phone != "" {
		page.SetText("contact-phone", contact.Phone)
		page.SetText("contact-phone-link", contact.Phone)
		page.SetHref("contact-phone-link", "tel:"+contact.Phone)
	}
	page.SetAttr("contact-form", "action", contact.FormAction)
	if s := contact.SocialLinks; s != nil {
		page.SetHref("contact-dribbble-link", s.Dribbble)
		page.SetHref("contact-behance-link", s.Behance)
		page.SetHref("contact-twitter-link", s.Twitter)
	}
	return nil
}
