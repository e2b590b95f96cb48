package cms

import "sort"

// Content type names as stored in the CMS.
const (
	TypeSiteSettings    = "siteSettings"
	TypeClient          = "client"
	TypeProject         = "project"
	TypeProjectMain     = "project_main"
	TypeTestimonial     = "testimonial"
	TypeFeaturedProject = "featuredProject"
	TypeContact         = "contact"
	TypePricing         = "pricing"
	TypePricingTable    = "pricingTable"
	TypeFAQ             = "faq"
)

// Query is one GROQ request against the query endpoint.
type Query struct {
	ContentType string
	GROQ        string
	Params      map[string]any
}

var (
	SiteSettingsQuery = Query{ContentType: TypeSiteSettings, GROQ: `*[_type == "siteSettings"][0]{
  title, description, favicon, logo, logoMobile, navigation, heroSlides,
  socialLinks, about, whyChoose, counters, footer
}`}

	ClientsQuery = Query{ContentType: TypeClient, GROQ: `*[_type == "client"] | order(_createdAt asc){ name, logo, url }`}

	ProjectsQuery = Query{ContentType: TypeProject, GROQ: `*[_type == "project"] | order(_createdAt asc){ title, category, image, link }`}

	TestimonialsQuery = Query{ContentType: TypeTestimonial, GROQ: `*[_type == "testimonial"] | order(_createdAt asc){ name, position, content, avatar }`}

	FeaturedQuery = Query{ContentType: TypeFeaturedProject, GROQ: `*[_type == "featuredProject"] | order(year desc){ year, projects }`}

	ContactQuery = Query{ContentType: TypeContact, GROQ: `*[_type == "contact"][0]{ backgroundImage, email, phone, formAction, socialLinks }`}

	PricingQuery = Query{ContentType: TypePricing, GROQ: `*[_type == "pricing"][0]{ title, highlightedText, subtitle, backgroundImage }`}

	PricingTableQuery = Query{ContentType: TypePricingTable, GROQ: `*[_type == "pricingTable"][0]{ plans }`}

	FAQQuery = Query{ContentType: TypeFAQ, GROQ: `*[_type == "faq"][0]{ categories }`}

	ProjectGridQuery = Query{ContentType: TypeProjectMain, GROQ: `*[_type == "project_main"] | order(_createdAt desc){
  title, slug, category, filterClasses, gridImage
}`}
)

const projectDetailGROQ = `*[_type == "project_main" && slug.current == $slug][0]{
  title, pageTitle, pageSubtitle, challengeLabel, challengeTitle, client, date, team,
  services, conceptTitle, conceptDescription, mainDetailImage, leftColumnImage,
  rightColumnImage, bottomDetailImage, testimonial, clientName, clientPosition,
  socialLinks, nextProjectLink
}`

// ProjectDetailQuery selects one project_main document by slug. The slug travels as a
// query parameter, never spliced into the GROQ text.
func ProjectDetailQuery(slug string) Query {
	return Query{
		ContentType: TypeProjectMain,
		GROQ:        projectDetailGROQ,
		Params:      map[string]any{"slug": slug},
	}
}

var named = map[string]Query{
	"settings":      SiteSettingsQuery,
	"clients":       ClientsQuery,
	"projects":      ProjectsQuery,
	"testimonials":  TestimonialsQuery,
	"featured":      FeaturedQuery,
	"contact":       ContactQuery,
	"pricing":       PricingQuery,
	"pricing-table": PricingTableQuery,
	"faq":           FAQQuery,
	"project-grid":  ProjectGridQuery,
}

// Named returns the stock query registered under name.
func Named(name string) (Query, bool) {
	q, ok := named[name]
	return q, ok
}

// Names lists the stock query names in sorted order.
func Names() []string {
	out := make([]string, 0, len(named))
	for name := range named {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
