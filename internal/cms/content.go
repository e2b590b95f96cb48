package cms

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ImageRef is a CMS image field. Asset is nil when no image was uploaded.
type ImageRef struct {
	Asset *AssetRef `json:"asset"`
}

// AssetRef points at an uploaded asset, e.g. "image-abc123-800x600-jpg".
type AssetRef struct {
	Ref string `json:"_ref"`
}

// Slug is the CMS slug object.
type Slug struct {
	Current string `json:"current"`
}

// Scalar accepts a JSON string, number or boolean and keeps its textual form. Editors store
// counters, prices and years inconsistently, so every such field is read through Scalar.
type Scalar string

// UnmarshalJSON implements json.Unmarshaler.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Scalar(str)
		return nil
	}
	*s = Scalar(string(data))
	return nil
}

// String returns the textual form.
func (s Scalar) String() string { return string(s) }

// Int parses the scalar as an integer.
func (s Scalar) Int() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(string(s)))
	return n, err == nil
}

// SocialLinks is shared by site settings, contact and project documents.
type SocialLinks struct {
	Twitter    string `json:"twitter"`
	Facebook   string `json:"facebook"`
	Behance    string `json:"behance"`
	Dribbble   string `json:"dribbble"`
	Github     string `json:"github"`
	GooglePlus string `json:"googleplus"`
}

// SiteSettings is the siteSettings singleton.
type SiteSettings struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Favicon     *ImageRef    `json:"favicon"`
	Logo        *ImageRef    `json:"logo"`
	LogoMobile  *ImageRef    `json:"logoMobile"`
	HeroSlides  []HeroSlide  `json:"heroSlides"`
	SocialLinks *SocialLinks `json:"socialLinks"`
	About       *About       `json:"about"`
	WhyChoose   []Card       `json:"whyChoose"`
	Counters    []Counter    `json:"counters"`
	Footer      *Footer      `json:"footer"`
}

// HeroSlide is one slide of the home page hero carousel.
type HeroSlide struct {
	Subtitle    string    `json:"subtitle"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ButtonText  string    `json:"buttonText"`
	ButtonLink  string    `json:"buttonLink"`
	Background  *ImageRef `json:"background"`
}

// About is the about block of site settings.
type About struct {
	TeamName        string      `json:"teamName"`
	BackgroundImage *ImageRef   `json:"backgroundImage"`
	SignatureImage  *ImageRef   `json:"signatureImage"`
	SignatureName   string      `json:"signatureName"`
	Bio             []TextBlock `json:"bio"`
}

// TextBlock is a portable-text block; only the span text is used.
type TextBlock struct {
	Children []TextSpan `json:"children"`
}

// TextSpan is a run of text inside a TextBlock.
type TextSpan struct {
	Text string `json:"text"`
}

// PlainText joins the span texts of the block.
func (b TextBlock) PlainText() string {
	var sb strings.Builder
	for _, child := range b.Children {
		sb.WriteString(child.Text)
	}
	return sb.String()
}

// Card is a "why choose us" service card.
type Card struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	Icon  string `json:"icon"`
}

// Counter is an animated fun-fact counter.
type Counter struct {
	Number Scalar `json:"number"`
	Label  string `json:"label"`
}

// Footer holds the footer call to action.
type Footer struct {
	Heading       string `json:"heading"`
	Email         string `json:"email"`
	CopyrightName string `json:"copyrightName"`
}

// ClientLogo is a logo in the clients carousel.
type ClientLogo struct {
	Name string    `json:"name"`
	Logo *ImageRef `json:"logo"`
	URL  string    `json:"url"`
}

// Project is a home page project slide.
type Project struct {
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Image    *ImageRef `json:"image"`
	Link     string    `json:"link"`
}

// Testimonial is a client quote.
type Testimonial struct {
	Name     string    `json:"name"`
	Position string    `json:"position"`
	Content  string    `json:"content"`
	Avatar   *ImageRef `json:"avatar"`
}

// FeaturedYear groups achievements under a year; Year is the natural key.
type FeaturedYear struct {
	Year     Scalar        `json:"year"`
	Projects []Achievement `json:"projects"`
}

// Achievement is one entry of the featured timeline.
type Achievement struct {
	Tag      string `json:"tag"`
	TagColor string `json:"tagColor"`
	Title    string `json:"title"`
	Link     string `json:"link"`
}

// ProjectCard is a project_main document as shown in the projects grid.
type ProjectCard struct {
	Title         string    `json:"title"`
	Slug          *Slug     `json:"slug"`
	Category      string    `json:"category"`
	FilterClasses []string  `json:"filterClasses"`
	GridImage     *ImageRef `json:"gridImage"`
}

// ProjectDetail is a project_main document as shown on the details page.
type ProjectDetail struct {
	Title              string       `json:"title"`
	PageTitle          string       `json:"pageTitle"`
	PageSubtitle       string       `json:"pageSubtitle"`
	ChallengeLabel     string       `json:"challengeLabel"`
	ChallengeTitle     string       `json:"challengeTitle"`
	Client             string       `json:"client"`
	Date               string       `json:"date"`
	Team               string       `json:"team"`
	Services           string       `json:"services"`
	ConceptTitle       string       `json:"conceptTitle"`
	ConceptDescription string       `json:"conceptDescription"`
	MainDetailImage    *ImageRef    `json:"mainDetailImage"`
	LeftColumnImage    *ImageRef    `json:"leftColumnImage"`
	RightColumnImage   *ImageRef    `json:"rightColumnImage"`
	BottomDetailImage  *ImageRef    `json:"bottomDetailImage"`
	Testimonial        string       `json:"testimonial"`
	ClientName         string       `json:"clientName"`
	ClientPosition     string       `json:"clientPosition"`
	SocialLinks        *SocialLinks `json:"socialLinks"`
	NextProjectLink    string       `json:"nextProjectLink"`
}

// Contact is the contact singleton.
type Contact struct {
	BackgroundImage *ImageRef    `json:"backgroundImage"`
	Email           string       `json:"email"`
	Phone           string       `json:"phone"`
	FormAction      string       `json:"formAction"`
	SocialLinks     *SocialLinks `json:"socialLinks"`
}

// Pricing is the pricing page banner.
type Pricing struct {
	Title           string    `json:"title"`
	HighlightedText string    `json:"highlightedText"`
	Subtitle        string    `json:"subtitle"`
	BackgroundImage *ImageRef `json:"backgroundImage"`
}

// PricingTable lists the plans in display order.
type PricingTable struct {
	Plans []Plan `json:"plans"`
}

// Plan is one pricing column.
type Plan struct {
	Title      string   `json:"title"`
	Subtitle   string   `json:"subtitle"`
	Icon       string   `json:"icon"`
	Price      Scalar   `json:"price"`
	Period     string   `json:"period"`
	Features   []string `json:"features"`
	ButtonText string   `json:"buttonText"`
	ButtonLink string   `json:"buttonLink"`
}

// FAQ groups questions into tabs.
type FAQ struct {
	Categories []FAQCategory `json:"categories"`
}

// FAQCategory is one tab; TabID is the id of the tab pane in the template.
type FAQCategory struct {
	TabName   string     `json:"tabName"`
	TabID     string     `json:"tabId"`
	Questions []Question `json:"questions"`
}

// Question is a single FAQ entry.
type Question struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
