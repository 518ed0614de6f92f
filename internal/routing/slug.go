// internal/routing/slug.go
//
// Slugs and detail-page paths.
//
// Context
// -------
// Programs and blog posts each get a detail page, /programs/<slug> and
// /blog/<slug>.  Editors may set the slug themselves; an entry saved
// without one is addressed by the slug of its name or title.  Template
// links and route lookups both go through EntrySlug, so they never
// disagree about an entry's address.
//
// Rules (MakeSlug)
// ----------------
// 1. Lower-case everything.
// 2. Turn any run of characters outside a-z and 0-9 into one "-".  That
//    drops spaces, punctuation, and accented letters.
// 3. Trim leading and trailing "-".
// 4. An empty result becomes "item".
// 5. Cap at 100 bytes and re-trim a trailing "-".

package routing

import (
	"strings"
)

const maxSlug = 100

// MakeSlug converts a program name or post title to lower-kebab ASCII.
func MakeSlug(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	dash := false
	for _, r := range strings.ToLower(title) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash {
			b.WriteByte('-')
			dash = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "item"
	}
	if len(slug) > maxSlug {
		slug = strings.TrimRight(slug[:maxSlug], "-")
	}
	return slug
}

// EntrySlug is the address of a program or post: its own slug when set,
// otherwise the slug of label.
func EntrySlug(slug, label string) string {
	if s := strings.Trim(strings.TrimSpace(slug), "/"); s != "" {
		return s
	}
	return MakeSlug(label)
}

// DetailPath is the visitor-facing path of an entry under section, for
// example DetailPath("programs", "", "Kids Karate") is
// "/programs/kids-karate".
func DetailPath(section, slug, label string) string {
	return "/" + strings.Trim(section, "/") + "/" + EntrySlug(slug, label)
}
