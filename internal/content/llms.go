package content

import (
	"fmt"
	"strings"
)

// LLMsText builds the plain-text summary served to AI crawlers.  A raw
// override in TechnicalSEO wins verbatim.  Otherwise the text is assembled
// from the company summary, programs, and locations, each under its own
// heading; empty groups are left out.
func LLMsText(d *Document) string {
	if d == nil {
		return ""
	}
	if d.TechnicalSEO != nil && strings.TrimSpace(d.TechnicalSEO.LLMsTxt) != "" {
		return d.TechnicalSEO.LLMsTxt
	}

	var b strings.Builder
	name := d.Site.Name
	if name == "" {
		name = "Site"
	}
	fmt.Fprintf(&b, "# %s\n", name)
	if d.Site.Tagline != "" {
		fmt.Fprintf(&b, "\n> %s\n", d.Site.Tagline)
	}

	if summary := companySummary(d); summary != "" {
		fmt.Fprintf(&b, "\n## About\n\n%s\n", summary)
	}

	if len(d.Programs) > 0 {
		b.WriteString("\n## Programs\n\n")
		for _, p := range d.Programs {
			b.WriteString("- ")
			b.WriteString(p.Name)
			if p.AgeRange != "" {
				fmt.Fprintf(&b, " (%s)", p.AgeRange)
			}
			if p.Description != "" {
				fmt.Fprintf(&b, ": %s", p.Description)
			}
			b.WriteByte('\n')
		}
	}

	if locs := AllLocations(d); len(locs) > 0 {
		b.WriteString("\n## Locations\n\n")
		for _, l := range locs {
			label := l.Name
			if label == "" {
				label = name
			}
			fmt.Fprintf(&b, "- %s: %s", label, l.Address)
			if l.Phone != "" {
				fmt.Fprintf(&b, " (%s)", l.Phone)
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// AllLocations returns Locations, falling back to the single legacy
// Location block.
func AllLocations(d *Document) []Location {
	if d == nil {
		return nil
	}
	if len(d.Locations) > 0 {
		return d.Locations
	}
	if d.Location != nil {
		return []Location{*d.Location}
	}
	return nil
}

func companySummary(d *Document) string {
	if d.AIContent != nil && d.AIContent.CompanySummary != "" {
		return d.AIContent.CompanySummary
	}
	if d.About != nil {
		return d.About.Body
	}
	return ""
}
