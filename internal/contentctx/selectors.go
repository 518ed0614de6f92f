package contentctx

import (
	"strings"

	"github.com/yanizio/sitehost/internal/content"
)

// Site returns the identity block; zero value when absent.
func (s *Store) Site() content.Site {
	if d := s.Content(); d != nil {
		return d.Site
	}
	return content.Site{}
}

func (s *Store) Navigation() []content.NavItem {
	if d := s.Content(); d != nil {
		return d.Navigation
	}
	return nil
}

func (s *Store) Hero() *content.Hero {
	if d := s.Content(); d != nil {
		return d.Hero
	}
	return nil
}

func (s *Store) About() *content.About {
	if d := s.Content(); d != nil {
		return d.About
	}
	return nil
}

func (s *Store) Benefits() *content.Benefits {
	if d := s.Content(); d != nil {
		return d.Benefits
	}
	return nil
}

func (s *Store) Programs() []content.Program {
	if d := s.Content(); d != nil {
		return d.Programs
	}
	return nil
}

// ProgramBySlug returns the program with slug, or false.
func (s *Store) ProgramBySlug(slug string) (content.Program, bool) {
	for _, p := range s.Programs() {
		if p.Slug == slug {
			return p, true
		}
	}
	return content.Program{}, false
}

func (s *Store) Reviews() []content.Review {
	if d := s.Content(); d != nil {
		return d.Reviews
	}
	return nil
}

func (s *Store) BlogPosts() []content.BlogPost {
	if d := s.Content(); d != nil {
		return d.Blog
	}
	return nil
}

// BlogPostBySlug returns the post with slug, or false.
func (s *Store) BlogPostBySlug(slug string) (content.BlogPost, bool) {
	for _, p := range s.BlogPosts() {
		if p.Slug == slug {
			return p, true
		}
	}
	return content.BlogPost{}, false
}

// Location returns the primary location: the first entry of the locations
// list, else the single location block.
func (s *Store) Location() *content.Location {
	all := content.AllLocations(s.Content())
	if len(all) == 0 {
		return nil
	}
	loc := all[0]
	return &loc
}

// Locations returns every location the site lists.
func (s *Store) Locations() []content.Location {
	return content.AllLocations(s.Content())
}

func (s *Store) CTA() *content.CTA {
	if d := s.Content(); d != nil {
		return d.CTA
	}
	return nil
}

func (s *Store) Footer() *content.Footer {
	if d := s.Content(); d != nil {
		return d.Footer
	}
	return nil
}

// SEO returns the metadata for pageID; zero value when absent.
func (s *Store) SEO(pageID string) content.SEO {
	if d := s.Content(); d != nil {
		return d.SEO[pageID]
	}
	return content.SEO{}
}

func (s *Store) FAQ() []content.FAQItem {
	if d := s.Content(); d != nil {
		return d.FAQ
	}
	return nil
}

func (s *Store) ScheduleForm() *content.ScheduleForm {
	if d := s.Content(); d != nil {
		return d.ScheduleForm
	}
	return nil
}

func (s *Store) CountdownOffer() *content.CountdownOffer {
	if d := s.Content(); d != nil {
		return d.CountdownOffer
	}
	return nil
}

func (s *Store) TechnicalSEO() *content.TechnicalSEO {
	if d := s.Content(); d != nil {
		return d.TechnicalSEO
	}
	return nil
}

func (s *Store) AIContent() *content.AIContent {
	if d := s.Content(); d != nil {
		return d.AIContent
	}
	return nil
}

// Sections returns the visible section ids for pageID in render order.
// Detail ids such as "programs/kids" use their parent page's sections.
func (s *Store) Sections(pageID string) []string {
	if parent, _, ok := strings.Cut(pageID, "/"); ok && parent != "" {
		pageID = parent
	}
	var cfg []content.SectionConfig
	if d := s.Content(); d != nil {
		cfg = d.Sections[pageID]
	}
	return content.OrderSections(cfg, content.DefaultSections(pageID))
}

// HasSection reports whether id renders on pageID.
func (s *Store) HasSection(pageID, id string) bool {
	for _, sec := range s.Sections(pageID) {
		if sec == id {
			return true
		}
	}
	return false
}
