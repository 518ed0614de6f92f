// Package icon maps the free-form icon names found in content documents onto
// a fixed set of inline SVG icons.  Unknown names render the fallback icon.
package icon

import (
	"html/template"
	"strings"
)

// Name identifies one supported icon.
type Name string

const (
	Belt     Name = "belt"
	Calendar Name = "calendar"
	Check    Name = "check"
	Clock    Name = "clock"
	Heart    Name = "heart"
	Kids     Name = "kids"
	MapPin   Name = "map-pin"
	Mail     Name = "mail"
	Phone    Name = "phone"
	Shield   Name = "shield"
	Star     Name = "star"
	Trophy   Name = "trophy"
	Users    Name = "users"
	Zap      Name = "zap"

	// Fallback renders for any unknown name.
	Fallback = Star
)

// paths holds the 24x24 stroke path data of each icon.
var paths = map[Name]string{
	Belt:     "M3 12h18M8 12l-3 7M16 12l3 7M9 9h6v6H9z",
	Calendar: "M3 5h18v16H3zM3 10h18M8 3v4M16 3v4",
	Check:    "M5 13l4 4L19 7",
	Clock:    "M12 3a9 9 0 1 0 0 18a9 9 0 1 0 0-18zM12 7v5l3 3",
	Heart:    "M12 21l-8-8a5 5 0 0 1 8-6a5 5 0 0 1 8 6z",
	Kids:     "M12 4a3 3 0 1 0 0 6a3 3 0 1 0 0-6zM6 21v-4a6 6 0 0 1 12 0v4",
	MapPin:   "M12 22s7-7 7-12a7 7 0 0 0-14 0c0 5 7 12 7 12zM12 8a2 2 0 1 0 0 4a2 2 0 1 0 0-4z",
	Mail:     "M3 5h18v14H3zM3 5l9 8l9-8",
	Phone:    "M5 3h4l2 5l-3 2a11 11 0 0 0 6 6l2-3l5 2v4a2 2 0 0 1-2 2A17 17 0 0 1 3 5a2 2 0 0 1 2-2z",
	Shield:   "M12 3l8 3v6c0 5-4 8-8 9c-4-1-8-4-8-9V6z",
	Star:     "M12 3l3 6l6 1l-4.5 4.5L18 21l-6-3l-6 3l1.5-6.5L3 10l6-1z",
	Trophy:   "M7 4h10v5a5 5 0 0 1-10 0zM12 14v4M8 21h8M7 6H4a3 3 0 0 0 3 4M17 6h3a3 3 0 0 1-3 4",
	Users:    "M9 7a3 3 0 1 0 0 .01M3 21v-2a6 6 0 0 1 12 0v2M16 4a3 3 0 0 1 0 6M21 21v-2a5 5 0 0 0-3-4.5",
	Zap:      "M13 2L4 14h7l-1 8l9-12h-7z",
}

// aliases are names editors commonly type for the same glyph.
var aliases = map[string]Name{
	"karate":     Belt,
	"martial":    Belt,
	"dojo":       Belt,
	"children":   Kids,
	"child":      Kids,
	"family":     Users,
	"group":      Users,
	"community":  Users,
	"location":   MapPin,
	"map":        MapPin,
	"email":      Mail,
	"schedule":   Calendar,
	"time":       Clock,
	"fitness":    Zap,
	"energy":     Zap,
	"discipline": Shield,
	"safety":     Shield,
	"confidence": Trophy,
	"award":      Trophy,
	"love":       Heart,
}

// Lookup normalises s and returns the matching icon or Fallback.
func Lookup(s string) Name {
	key := strings.ToLower(strings.TrimSpace(s))
	if _, ok := paths[Name(key)]; ok {
		return Name(key)
	}
	if n, ok := aliases[key]; ok {
		return n
	}
	return Fallback
}

// Known reports whether s names a supported icon without falling back.
func Known(s string) bool {
	return Lookup(s) != Fallback || Name(strings.ToLower(strings.TrimSpace(s))) == Fallback
}

// SVG renders the inline icon for s.
func SVG(s string) template.HTML {
	n := Lookup(s)
	return template.HTML(`<svg class="icon icon-` + string(n) +
		`" viewBox="0 0 24 24" width="24" height="24" fill="none" stroke="currentColor"` +
		` stroke-width="2" stroke-linecap="round" stroke-linejoin="round" aria-hidden="true">` +
		`<path d="` + paths[n] + `"/></svg>`)
}
