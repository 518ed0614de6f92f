package content

import "sort"

// Section ids understood by the page templates.
const (
	SectionHero      = "hero"
	SectionAbout     = "about"
	SectionBenefits  = "benefits"
	SectionPrograms  = "programs"
	SectionReviews   = "reviews"
	SectionBlog      = "blog"
	SectionLocation  = "location"
	SectionCTA       = "cta"
	SectionFAQ       = "faq"
	SectionSchedule  = "schedule"
	SectionCountdown = "countdown"
)

// defaultOrder is the hard-coded section order per page id.  Pages not
// listed use the "home" order.
var defaultOrder = map[string][]string{
	"home": {
		SectionHero, SectionBenefits, SectionAbout, SectionPrograms,
		SectionCountdown, SectionReviews, SectionFAQ, SectionSchedule,
		SectionLocation, SectionCTA,
	},
	"about":    {SectionAbout, SectionBenefits, SectionReviews, SectionCTA},
	"programs": {SectionPrograms, SectionSchedule, SectionFAQ, SectionCTA},
	"blog":     {SectionBlog, SectionCTA},
	"contact":  {SectionLocation, SectionSchedule, SectionFAQ},
	"reviews":  {SectionReviews, SectionCTA},
}

// DefaultSections returns the built-in order for page.
func DefaultSections(page string) []string {
	if order, ok := defaultOrder[page]; ok {
		return order
	}
	return defaultOrder["home"]
}

// IsPage reports whether page has its own section order, which is also
// the set of page ids served at /{page}.
func IsPage(page string) bool {
	_, ok := defaultOrder[page]
	return ok
}

// IsSection reports whether id names a section on any page.
func IsSection(id string) bool {
	for _, order := range defaultOrder {
		for _, s := range order {
			if s == id {
				return true
			}
		}
	}
	return false
}

// OrderSections merges a page's configured sections with its defaults.
// Configured, visible sections come first in ascending Order (ties keep
// their listed order); sections the config never mentions follow in
// default order.  Hidden sections and ids unknown to the page are dropped.
func OrderSections(cfg []SectionConfig, defaults []string) []string {
	known := make(map[string]bool, len(defaults))
	for _, id := range defaults {
		known[id] = true
	}

	configured := make([]SectionConfig, 0, len(cfg))
	mentioned := make(map[string]bool, len(cfg))
	for _, c := range cfg {
		if !known[c.ID] || mentioned[c.ID] {
			continue
		}
		mentioned[c.ID] = true
		configured = append(configured, c)
	}
	sort.SliceStable(configured, func(i, j int) bool {
		return configured[i].Order < configured[j].Order
	})

	out := make([]string, 0, len(defaults))
	for _, c := range configured {
		if c.Shown() {
			out = append(out, c.ID)
		}
	}
	for _, id := range defaults {
		if !mentioned[id] {
			out = append(out, id)
		}
	}
	return out
}
