package pages

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/lordwhitefire/new-portfolio/internal/cms"
	"github.com/lordwhitefire/new-portfolio/internal/dom"
	"github.com/lordwhitefire/new-portfolio/internal/observability"
	"github.com/lordwhitefire/new-portfolio/internal/paginate"
	"github.com/lordwhitefire/new-portfolio/internal/reconcile"
)

const (
	// ProjectParam selects the project on the details page.
	ProjectParam = "project"
	// PageParam selects the projects grid page.
	PageParam = "page"

	detailsPath   = "project-details.html"
	gridColumn    = ".col-xl-4"
	gridColumnCSS = "col-xl-4 col-md-6"
	loadMoreLabel = "load more"
)

func (h *Hydrator) projects(ctx context.Context, page *dom.Page, params Params) error {
	var (
		settings *cms.SiteSettings
		cards    []cms.ProjectCard
	)
	if err := h.fetch(ctx, Projects,
		cms.Bind(cms.SiteSettingsQuery, &settings),
		cms.Bind(cms.ProjectGridQuery, &cards),
	); err != nil {
		return err
	}

	h.patchChrome(ctx, page, settings)
	if len(cards) == 0 {
		observability.FromContext(ctx).Info("no projects to show")
		dom.Hide(page.Find(".single-project"))
		return nil
	}
	grid, ok := page.ByID("projects-grid")
	if !ok {
		observability.FromContext(ctx).Info("projects grid not present")
		return nil
	}

	pager := paginate.New(cards, h.pageSize).At(paginate.PageParam(params.get(PageParam)))
	res := reconcile.Apply(pager.Current(), reconcile.List[cms.ProjectCard]{
		Slots:   grid.Find(".single-project"),
		Render:  h.renderProjectCard,
		Deficit: reconcile.Hide,
	})
	logResult(ctx, "projects-grid", res)
	patchLoadMore(page, pager)
	return nil
}

func (h *Hydrator) renderProjectCard(slot *goquery.Selection, p cms.ProjectCard) {
	href := ""
	if p.Slug != nil && p.Slug.Current != "" {
		q := url.Values{}
		q.Set(ProjectParam, p.Slug.Current)
		href = detailsPath + "?" + q.Encode()
	}

	if src := h.images.URL(p.GridImage, 0, 0); src != "" {
		slot.Find(".project-images img").First().SetAttr("src", src).SetAttr("alt", p.Title)
	}
	if href != "" {
		slot.Find(".project-images a").First().SetAttr("href", href)
	}
	title := slot.Find(".title a").First()
	title.SetText(p.Title)
	if href != "" {
		title.SetAttr("href", href)
	}
	if p.Category != "" {
		slot.Find(".category").First().SetText(p.Category)
	}
	if len(p.FilterClasses) > 0 {
		if col := slot.Closest(gridColumn); col.Length() > 0 {
			col.SetAttr("class", gridColumnCSS+" "+strings.Join(p.FilterClasses, " "))
		}
	}
}

// patchLoadMore points the control at the next page, or hides it on the last one.
func patchLoadMore[T any](page *dom.Page, pager paginate.Pager[T]) {
	more := page.Find(".load-more .more").First()
	if more.Length() == 0 {
		return
	}
	if !pager.HasMore() {
		dom.Hide(more)
		return
	}
	dom.Show(more)
	more.SetText(loadMoreLabel)
	more.SetAttr("href", pager.NextHref())
}

func (h *Hydrator) projectDetails(ctx context.Context, page *dom.Page, params Params) error {
	logger := observability.FromContext(ctx)
	slug := strings.TrimSpace(params.get(ProjectParam))
	if slug == "" {
		logger.Info("no project specified")
		return nil
	}

	var (
		settings *cms.SiteSettings
		project  *cms.ProjectDetail
	)
	if err := h.fetch(ctx, ProjectDetails,
		cms.Bind(cms.SiteSettingsQuery, &settings),
		cms.Bind(cms.ProjectDetailQuery(slug), &project),
	); err != nil {
		return err
	}

	h.patchChrome(ctx, page, settings)
	if project == nil {
		logger.Info("project not found", zap.String("slug", slug))
		return nil
	}

	page.SetText("project-page-title", project.PageTitle)
	page.SetText("project-page-subtitle", project.PageSubtitle)
	page.SetText("project-challenge-label", project.ChallengeLabel)
	page.SetText("project-challenge-title", project.ChallengeTitle)

	page.SetText("project-client", project.Client)
	if project.Date != "" {
		if formatted, ok := formatDate(project.Date, h.locale); ok {
			page.SetText("project-date", formatted)
		} else {
			logger.Warn("unparseable project date", zap.String("date", project.Date))
		}
	}
	page.SetText("project-team", project.Team)
	page.SetText("project-services", project.Services)

	page.SetText("project-concept-title", project.ConceptTitle)
	page.SetText("project-concept-description", project.ConceptDescription)

	page.SetSrc("project-main-image", h.images.URL(project.MainDetailImage, 0, 0))
	page.SetSrc("project-left-image", h.images.URL(project.LeftColumnImage, 0, 0))
	page.SetSrc("project-right-image", h.images.URL(project.RightColumnImage, 0, 0))
	page.SetSrc("project-bottom-image", h.images.URL(project.BottomDetailImage, 0, 0))

	page.SetText("project-testimonial", project.Testimonial)
	page.SetText("project-client-name", project.ClientName)
	page.SetText("project-client-position", project.ClientPosition)

	if s := project.SocialLinks; s != nil {
		page.SetHref("project-twitter-link", s.Twitter)
		page.SetHref("project-facebook-link", s.Facebook)
		page.SetHref("project-googleplus-link", s.GooglePlus)
	}
	page.SetHref("project-next-link", project.NextProjectLink)
	return nil
}

// Long-form date layouts per supported locale; the matcher picks the closest.
var (
	dateLocales = []language.Tag{language.AmericanEnglish, language.BritishEnglish}
	dateLayouts = []string{"January 2, 2006", "2 January 2006"}
	dateMatcher = language.NewMatcher(dateLocales)
)

var dateInputLayouts = []string{"2006-01-02", time.RFC3339Nano, time.RFC3339}

// formatDate renders a CMS date or datetime as a long-form date in the given locale.
func formatDate(raw string, locale language.Tag) (string, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateInputLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		_, idx, _ := dateMatcher.Match(locale)
		if idx < 0 || idx >= len(dateLayouts) {
			idx = 0
		}
		return t.UTC().Format(dateLayouts[idx]), true
	}
	return "", false
}
