package head

import (
	"strings"
	"testing"

	"github.com/yanizio/sitehost/internal/content"
)

func TestForPage_SEOAndFallback(t *testing.T) {
	doc := &content.Document{
		Site: content.Site{Name: "Apex Dojo", Tagline: "Train hard"},
		SEO: map[string]content.SEO{
			"about": {Title: "About Apex", Description: "Our story", Keywords: []string{"karate", "kids"}},
		},
	}

	b := ForPage(doc, "about", "")
	if b.TitleText() != "About Apex" {
		t.Fatalf("title = %q", b.TitleText())
	}
	if !strings.Contains(string(b.Description()), "Our story") {
		t.Fatalf("description = %s", b.Description())
	}
	if !strings.Contains(string(b.Metas()), `content="karate, kids"`) {
		t.Fatalf("metas = %s", b.Metas())
	}

	b = ForPage(doc, "contact", "")
	if b.TitleText() != "Apex Dojo" || !strings.Contains(string(b.Description()), "Train hard") {
		t.Fatalf("fallback title/description = %q %s", b.TitleText(), b.Description())
	}
}

func TestForPage_HomeStructuredData(t *testing.T) {
	doc := &content.Document{
		Site:     content.Site{Name: "Apex <Dojo>", Phone: "555-0100"},
		Location: &content.Location{Address: "1 Main St"},
	}
	b := ForPage(doc, "home", "https://apex.example.com/")

	js := string(b.JSON())
	if !strings.Contains(js, `"telephone":"555-0100"`) || !strings.Contains(js, `"address":"1 Main St"`) {
		t.Fatalf("json-ld = %s", js)
	}
	if strings.Contains(js, "<Dojo>") {
		t.Fatal("json-ld not escaped")
	}
	if !strings.Contains(string(b.Links()), `rel="canonical"`) {
		t.Fatalf("links = %s", b.Links())
	}
	if !strings.Contains(string(b.Title()), "Apex &lt;Dojo&gt;") {
		t.Fatalf("title = %s", b.Title())
	}
}

func TestBuilder_Dedup(t *testing.T) {
	b := New()
	b.MetaName("robots", "noindex")
	b.MetaName("robots", "noindex")
	b.MetaName("empty", "")
	if n := strings.Count(string(b.Metas()), "<meta"); n != 1 {
		t.Fatalf("metas = %d", n)
	}
}

func TestForPage_NilDocument(t *testing.T) {
	if b := ForPage(nil, "home", ""); b.Title() != "" {
		t.Fatal("expected empty head")
	}
}
