// Package prefs persists visitor display preferences.  Pages read and write
// them through Port; the page session holds the loaded value.
package prefs

import (
	"net/http"
	"time"
)

// Scheme is the visitor's colour scheme choice.
type Scheme string

const (
	SchemeSystem Scheme = ""
	SchemeLight  Scheme = "light"
	SchemeDark   Scheme = "dark"
)

// ParseScheme returns the scheme named by s and whether s was valid.
func ParseScheme(s string) (Scheme, bool) {
	switch Scheme(s) {
	case SchemeLight, SchemeDark:
		return Scheme(s), true
	case "system":
		return SchemeSystem, true
	}
	return SchemeSystem, false
}

// Prefs is the full set of stored preferences.
type Prefs struct {
	Scheme Scheme
}

// Port loads and saves Prefs for one visitor.
type Port interface {
	Load(r *http.Request) Prefs
	Save(w http.ResponseWriter, p Prefs)
}

// CookiePort keeps Prefs in a first-party cookie.
type CookiePort struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// NewCookiePort returns a port using the "sh_theme" cookie for one year.
func NewCookiePort(secure bool) *CookiePort {
	return &CookiePort{Name: "sh_theme", MaxAge: 365 * 24 * time.Hour, Secure: secure}
}

func (c *CookiePort) Load(r *http.Request) Prefs {
	ck, err := r.Cookie(c.Name)
	if err != nil {
		return Prefs{}
	}
	s, _ := ParseScheme(ck.Value)
	return Prefs{Scheme: s}
}

func (c *CookiePort) Save(w http.ResponseWriter, p Prefs) {
	ck := &http.Cookie{
		Name:     c.Name,
		Value:    string(p.Scheme),
		Path:     "/",
		MaxAge:   int(c.MaxAge / time.Second),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if p.Scheme == SchemeSystem {
		ck.MaxAge = -1
	}
	http.SetCookie(w, ck)
}

// FromQuery applies a ?theme= override: when r carries a valid value it is
// saved through port and returned, otherwise the stored prefs are returned.
func FromQuery(port Port, w http.ResponseWriter, r *http.Request) Prefs {
	p := port.Load(r)
	if v := r.URL.Query().Get("theme"); v != "" {
		if s, ok := ParseScheme(v); ok {
			p.Scheme = s
			port.Save(w, p)
		}
	}
	return p
}
