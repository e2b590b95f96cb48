package pages

import (
	"context"
	"html"
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"github.com/lordwhitefire/new-portfolio/internal/cms"
	"github.com/lordwhitefire/new-portfolio/internal/dom"
	"github.com/lordwhitefire/new-portfolio/internal/reconcile"
)

// timelineLayout captures the markup differences between the home and about timelines.
type timelineLayout struct {
	name string
	// yearAttrs are extra attributes of a created year block.
	yearAttrs string
	// yearTextID gives created year labels an id of year-text-<year>.
	yearTextID bool
	// listID gives the created achievements column an id of achievements-<year>.
	listID bool
	// itemID numbers achievements as achievement-<year>-<n>.
	itemID bool
}

var (
	homeTimeline  = timelineLayout{name: "featured", yearTextID: true, itemID: true}
	aboutTimeline = timelineLayout{name: "achieved", yearAttrs: ` data-wow-delay="0.3s" data-wow-duration="1.5s"`, listID: true}
)

const defaultTagColor = "text-primary"

// patchTimeline reconciles year blocks by year and their achievements by position.
func (h *Hydrator) patchTimeline(ctx context.Context, container *goquery.Selection, years []cms.FeaturedYear, layout timelineLayout) {
	res := reconcile.Apply(years, reconcile.List[cms.FeaturedYear]{
		Parent: container,
		Slots:  container.Find(".achieved-year"),
		Key: func(y cms.FeaturedYear) string {
			return "year-" + y.Year.String()
		},
		SlotKey: func(s *goquery.Selection) string {
			return s.AttrOr("id", "")
		},
		Create: layout.newYear,
		Render: func(slot *goquery.Selection, y cms.FeaturedYear) {
			slot.Find(".year-text p").First().SetText(y.Year.String())
			list := slot.Find(".col-lg-9").First()
			if list.Length() == 0 {
				return
			}
			items := reconcile.Apply(number(y.Projects), reconcile.List[numbered[cms.Achievement]]{
				Parent:  list,
				Slots:   list.Find(".achieved-item"),
				Create:  newAchievement,
				Render:  layout.achievementRenderer(y.Year.String()),
				Deficit: reconcile.Remove,
			})
			logResult(ctx, layout.name+"-"+y.Year.String(), items)
		},
		Deficit: reconcile.Remove,
	})
	logResult(ctx, layout.name, res)
}

func (l timelineLayout) newYear(y cms.FeaturedYear) *goquery.Selection {
	year := html.EscapeString(y.Year.String())
	textID, listID := "", ""
	if l.yearTextID {
		textID = ` id="year-text-` + year + `"`
	}
	if l.listID {
		listID = ` id="achievements-` + year + `"`
	}
	return dom.MustFragment(`<div class="achieved-year wow fadeInUp" id="year-` + year + `"` + l.yearAttrs + `>` +
		`<div class="row">` +
		`<div class="col-lg-3"><div class="year-text"` + textID + `><p></p></div></div>` +
		`<div class="col-lg-9"` + listID + `></div>` +
		`</div></div>`)
}

func newAchievement(numbered[cms.Achievement]) *goquery.Selection {
	return dom.MustFragment(`<div class="achieved-item"><span class="sub-title"></span><h2 class="title"><a href="#"></a></h2></div>`)
}

func (l timelineLayout) achievementRenderer(year string) func(*goquery.Selection, numbered[cms.Achievement]) {
	return func(slot *goquery.Selection, a numbered[cms.Achievement]) {
		if l.itemID {
			slot.SetAttr("id", "achievement-"+year+"-"+strconv.Itoa(a.n))
		}
		slot.Find(".sub-title").First().
			SetText(a.item.Tag).
			SetAttr("class", "sub-title "+orDefault(a.item.TagColor, defaultTagColor))
		slot.Find(".title a").First().
			SetText(a.item.Title).
			SetAttr("href", orDefault(a.item.Link, "#"))
	}
}
