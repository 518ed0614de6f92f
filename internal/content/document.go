// Package content defines the tenant content document and the pure
// functions that operate on it: schema migration, section ordering, and the
// plain-text crawler summary.
//
// Every field below the top level is optional.  Read sites must treat a
// zero value or nil pointer as "absent" and fall back, never fail.
package content

import "encoding/json"

// CurrentSchema is the schemaVersion written by this build.
const CurrentSchema = 1

// Document is the full editable content of one tenant site.
type Document struct {
	SchemaVersion  int                        `json:"schemaVersion,omitempty"`
	Site           Site                       `json:"site"`
	Navigation     []NavItem                  `json:"navigation,omitempty"`
	Hero           *Hero                      `json:"hero,omitempty"`
	About          *About                     `json:"about,omitempty"`
	Benefits       *Benefits                  `json:"benefits,omitempty"`
	Programs       []Program                  `json:"programs,omitempty"`
	Reviews        []Review                   `json:"reviews,omitempty"`
	Blog           []BlogPost                 `json:"blog,omitempty"`
	Location       *Location                  `json:"location,omitempty"`
	Locations      []Location                 `json:"locations,omitempty"`
	CTA            *CTA                       `json:"cta,omitempty"`
	Footer         *Footer                    `json:"footer,omitempty"`
	SEO            map[string]SEO             `json:"seo,omitempty"`
	Sections       map[string][]SectionConfig `json:"sections,omitempty"`
	ScheduleForm   *ScheduleForm              `json:"scheduleForm,omitempty"`
	CountdownOffer *CountdownOffer            `json:"countdownOffer,omitempty"`
	FAQ            []FAQItem                  `json:"faq,omitempty"`
	TechnicalSEO   *TechnicalSEO              `json:"technicalSeo,omitempty"`
	AIContent      *AIContent                 `json:"aiContent,omitempty"`

	// Extra keeps top-level fields this build does not know about so a
	// read-modify-write by an older binary does not drop them.
	Extra map[string]json.RawMessage `json:"-"`

	// Version is the storage ETag of the object this document was read
	// from.  It is never serialised.
	Version string `json:"-"`
}

// Site is the tenant-wide identity block.
type Site struct {
	Name     string `json:"name"`
	Tagline  string `json:"tagline,omitempty"`
	Logo     string `json:"logo,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Template string `json:"template,omitempty"`
}

type NavItem struct {
	Label    string    `json:"label"`
	Href     string    `json:"href"`
	Children []NavItem `json:"children,omitempty"`
}

type Hero struct {
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
	Image    string `json:"image,omitempty"`
	CTAText  string `json:"ctaText,omitempty"`
	CTALink  string `json:"ctaLink,omitempty"`
}

type About struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
	Image string `json:"image,omitempty"`
}

type Benefits struct {
	Title string    `json:"title,omitempty"`
	Items []Benefit `json:"items,omitempty"`
}

type Benefit struct {
	Icon        string `json:"icon,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Program is one class offering, addressed by Slug on /programs/{slug}.
type Program struct {
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	AgeRange    string   `json:"ageRange,omitempty"`
	Description string   `json:"description,omitempty"`
	Image       string   `json:"image,omitempty"`
	Icon        string   `json:"icon,omitempty"`
	Schedule    []string `json:"schedule,omitempty"`
	Features    []string `json:"features,omitempty"`
}

type Review struct {
	Author string `json:"author"`
	Rating int    `json:"rating,omitempty"`
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
}

// BlogPost is addressed by Slug on /blog/{slug}.
type BlogPost struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Excerpt     string `json:"excerpt,omitempty"`
	Body        string `json:"body,omitempty"`
	Image       string `json:"image,omitempty"`
	Author      string `json:"author,omitempty"`
	PublishedAt string `json:"publishedAt,omitempty"`
}

type Location struct {
	Name    string   `json:"name,omitempty"`
	Address string   `json:"address,omitempty"`
	Phone   string   `json:"phone,omitempty"`
	Email   string   `json:"email,omitempty"`
	MapURL  string   `json:"mapUrl,omitempty"`
	Hours   []string `json:"hours,omitempty"`
}

type CTA struct {
	Title      string `json:"title,omitempty"`
	Text       string `json:"text,omitempty"`
	ButtonText string `json:"buttonText,omitempty"`
	ButtonLink string `json:"buttonLink,omitempty"`
}

type Footer struct {
	Text   string       `json:"text,omitempty"`
	Links  []NavItem    `json:"links,omitempty"`
	Social []SocialLink `json:"social,omitempty"`
}

type SocialLink struct {
	Network string `json:"network"`
	URL     string `json:"url"`
}

// SEO is keyed by page id in Document.SEO.
type SEO struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	OGImage     string   `json:"ogImage,omitempty"`
}

// SectionConfig places one section on a page.  Visible nil means shown.
type SectionConfig struct {
	ID      string `json:"id"`
	Order   int    `json:"order"`
	Visible *bool  `json:"visible,omitempty"`
}

// Shown reports whether the section should render.
func (s SectionConfig) Shown() bool { return s.Visible == nil || *s.Visible }

type ScheduleForm struct {
	Enabled        bool     `json:"enabled"`
	Title          string   `json:"title,omitempty"`
	Programs       []string `json:"programs,omitempty"`
	SuccessMessage string   `json:"successMessage,omitempty"`
	WebhookURL     string   `json:"webhookUrl,omitempty"`
}

type CountdownOffer struct {
	Enabled    bool   `json:"enabled"`
	Title      string `json:"title,omitempty"`
	Text       string `json:"text,omitempty"`
	EndsAt     string `json:"endsAt,omitempty"`
	ButtonText string `json:"buttonText,omitempty"`
	ButtonLink string `json:"buttonLink,omitempty"`
}

type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// TechnicalSEO carries crawler-facing strings.  LLMsTxt, when non-empty,
// is served verbatim on /llms.txt.
type TechnicalSEO struct {
	CanonicalDomain    string `json:"canonicalDomain,omitempty"`
	Robots             string `json:"robots,omitempty"`
	GoogleVerification string `json:"googleVerification,omitempty"`
	LLMsTxt            string `json:"llmsTxt,omitempty"`
}

type AIContent struct {
	CompanySummary string   `json:"companySummary,omitempty"`
	KeyFacts       []string `json:"keyFacts,omitempty"`
}
