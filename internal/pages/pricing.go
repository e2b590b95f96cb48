package pages

import (
	"context"
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"github.com/lordwhitefire/new-portfolio/internal/cms"
	"github.com/lordwhitefire/new-portfolio/internal/dom"
	"github.com/lordwhitefire/new-portfolio/internal/reconcile"
)

func (h *Hydrator) pricing(ctx context.Context, page *dom.Page, _ Params) error {
	var (
		settings *cms.SiteSettings
		banner   *cms.Pricing
		table    *cms.PricingTable
		faq      *cms.FAQ
	)
	if err := h.fetch(ctx, Pricing,
		cms.Bind(cms.SiteSettingsQuery, &settings),
		cms.Bind(cms.PricingQuery, &banner),
		cms.Bind(cms.PricingTableQuery, &table),
		cms.Bind(cms.FAQQuery, &faq),
	); err != nil {
		return err
	}

	h.patchChrome(ctx, page, settings)
	if banner != nil {
		page.SetBackgroundImage("pricing-banner", h.images.URL(banner.BackgroundImage, 0, 0))
		page.SetText("pricing-highlighted-text", banner.HighlightedText)
		page.SetText("pricing-main-text", banner.Title)
		page.SetText("pricing-subtitle", banner.Subtitle)
	}
	if table != nil {
		h.patchPlans(ctx, page, table.Plans)
	}
	if faq != nil {
		patchFAQ(ctx, page, faq.Categories)
	}
	return nil
}

func (h *Hydrator) patchPlans(ctx context.Context, page *dom.Page, plans []cms.Plan) {
	for i, plan := range plans {
		n := strconv.Itoa(i + 1)
		page.SetText("pricing-title-"+n, plan.Title)

		if badge, ok := page.ByID("pricing-subtitle-" + n); ok {
			if plan.Subtitle != "" {
				badge.SetText(plan.Subtitle)
				dom.Show(badge)
			} else {
				dom.Hide(badge)
			}
		}

		page.SetClass("pricing-icon-"+n, plan.Icon)
		page.SetText("pricing-price-"+n, plan.Price.String())
		page.SetText("pricing-period-"+n, plan.Period)

		if list, ok := page.ByID("pricing-features-" + n); ok && len(plan.Features) > 0 {
			res := rebuild(list, plan.Features,
				func(string) *goquery.Selection { return dom.MustFragment(`<li></li>`) },
				func(slot *goquery.Selection, feature string) { page.SetHTMLOn(slot, multiline(feature)) })
			logResult(ctx, "pricing-features-"+n, res)
		}

		if button, ok := page.ByID("pricing-button-" + n); ok {
			if plan.ButtonText != "" {
				button.SetText(plan.ButtonText)
			}
			if plan.ButtonLink != "" {
				button.SetAttr("href", plan.ButtonLink)
			}
		}
	}
}

func patchFAQ(ctx context.Context, page *dom.Page, categories []cms.FAQCategory) {
	for _, category := range categories {
		// without an id there is no tab to label and no pane to fill
		if category.TabID == "" {
			continue
		}
		if category.TabName != "" {
			page.Find(".faq-menu a").FilterFunction(func(_ int, s *goquery.Selection) bool {
				return s.AttrOr("href", "") == "#"+category.TabID
			}).First().SetText(category.TabName)
		}

		pane, ok := page.ByID(category.TabID)
		if !ok || len(category.Questions) == 0 {
			continue
		}
		res := reconcile.Apply(category.Questions, reconcile.List[cms.Question]{
			Parent: pane,
			Slots:  pane.Find(".single-faq"),
			Create: func(cms.Question) *goquery.Selection {
				return dom.MustFragment(`<div class="single-faq"><h4 class="title"></h4><p></p></div>`)
			},
			Render: func(slot *goquery.Selection, q cms.Question) {
				slot.Find(".title").First().SetText(q.Question)
				slot.Find("p").First().SetText(q.Answer)
			},
			Deficit: reconcile.Remove,
		})
		logResult(ctx, "faq-"+category.TabID, res)
	}
}
