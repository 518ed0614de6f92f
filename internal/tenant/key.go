// internal/tenant/key.go
//
// Host → tenant key resolution.
//
// Context
// -------
// Every request names its tenant only through the Host header.  Resolve
// turns that header into the canonical key used as the content namespace:
//
//  1. strip the port,
//  2. lower-case and drop a leading `www.`,
//  3. map `<label><LocalSuffix>` to `<label>.<RootDomain>` so developers
//     can simulate tenant subdomains on their own machine,
//  4. collapse `<label>---<anything><PreviewSuffix>` to
//     `<label>.<RootDomain>` so per-deployment preview hosts share the
//     tenant's content,
//  5. otherwise return the host unchanged.
//
// The function is total.  An unknown host simply yields a key the content
// store has nothing for, and the page layer answers 404.
//
// Notes
// -----
// • Steps 3 and 4 are skipped when RootDomain is empty.
// • Oxford commas, two spaces after periods.
package tenant

import (
	"strings"

	"go.uber.org/zap"
)

// previewSeparator splits the tenant label from the deployment id in
// preview hostnames.
const previewSeparator = "---"

// Key is a canonical, lower-case tenant identifier such as
// "apex.apex-platform.io".
type Key string

// Equal compares keys case-insensitively.
func (k Key) Equal(other Key) bool { return strings.EqualFold(string(k), string(other)) }

func (k Key) String() string { return string(k) }

// Resolver maps Host headers to keys.  The zero value strips ports and
// `www.` only.
type Resolver struct {
	RootDomain    string // "apex-platform.io"
	LocalSuffix   string // ".localhost"
	PreviewSuffix string // ".vercel.app"
}

// NewResolver normalises its inputs so callers may pass config values as-is.
func NewResolver(rootDomain, localSuffix, previewSuffix string) *Resolver {
	return &Resolver{
		RootDomain:    strings.Trim(strings.ToLower(rootDomain), "."),
		LocalSuffix:   dotted(localSuffix),
		PreviewSuffix: dotted(previewSuffix),
	}
}

// Resolve derives the tenant key for a raw Host header.
func (r *Resolver) Resolve(host string) Key {
	h := strings.ToLower(StripPort(strings.TrimSpace(host)))
	h = strings.TrimPrefix(h, "www.")

	if r.RootDomain != "" {
		switch {
		case r.LocalSuffix != "" && strings.HasSuffix(h, r.LocalSuffix) && len(h) > len(r.LocalSuffix):
			h = strings.TrimSuffix(h, r.LocalSuffix) + "." + r.RootDomain
		case r.PreviewSuffix != "" && strings.HasSuffix(h, r.PreviewSuffix) && strings.Contains(h, previewSeparator):
			label, _, _ := strings.Cut(h, previewSeparator)
			if label != "" {
				h = label + "." + r.RootDomain
			}
		}
	}

	zap.L().Debug("tenant resolved", zap.String("host", host), zap.String("tenant", h))
	return Key(h)
}

// StripPort removes any “:port” suffix from a Host header.  Bracketed IPv6
// literals keep their brackets.
func StripPort(h string) string {
	if strings.HasPrefix(h, "[") {
		if i := strings.IndexByte(h, ']'); i != -1 {
			return h[:i+1]
		}
		return h
	}
	if i := strings.IndexByte(h, ':'); i != -1 {
		return h[:i]
	}
	return h
}

func dotted(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || strings.HasPrefix(s, ".") {
		return s
	}
	return "." + s
}
