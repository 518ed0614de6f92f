package head

import (
	"html/template"
	"strings"

	"github.com/yanizio/sitehost/internal/content"
)

// ForPage seeds a Builder for pageID of doc.  Title and description come
// from the page's SEO entry; the site name and tagline fill the gaps.
// canonical is the absolute URL of the page, or empty.
func ForPage(doc *content.Document, pageID, canonical string) *Builder {
	b := New()
	if doc == nil {
		return b
	}

	seo := doc.SEO[pageID]
	title := seo.Title
	if title == "" {
		title = doc.Site.Name
	}
	desc := seo.Description
	if desc == "" {
		desc = doc.Site.Tagline
	}
	b.SetTitle(title)
	b.SetDescription(desc)

	if len(seo.Keywords) > 0 {
		b.MetaName("keywords", strings.Join(seo.Keywords, ", "))
	}
	b.MetaProp("og:title", title)
	b.MetaProp("og:description", desc)
	b.MetaProp("og:site_name", doc.Site.Name)
	b.MetaProp("og:image", seo.OGImage)
	if canonical != "" {
		b.MetaProp("og:url", canonical)
		b.Link(`<link rel="canonical" href="` + template.HTMLEscapeString(canonical) + `">`)
	}

	if t := doc.TechnicalSEO; t != nil {
		b.MetaName("robots", t.Robots)
		b.MetaName("google-site-verification", t.GoogleVerification)
	}
	if pageID == "home" {
		_ = b.JSONLD(localBusiness(doc, canonical))
	}
	return b
}

// localBusiness builds schema.org structured data for the dojo.
func localBusiness(doc *content.Document, url string) map[string]any {
	lb := map[string]any{
		"@context": "https://schema.org",
		"@type":    "SportsActivityLocation",
		"name":     doc.Site.Name,
	}
	if url != "" {
		lb["url"] = url
	}
	if doc.Site.Phone != "" {
		lb["telephone"] = doc.Site.Phone
	}
	if locs := content.AllLocations(doc); len(locs) > 0 && locs[0].Address != "" {
		lb["address"] = locs[0].Address
	}
	return lb
}
