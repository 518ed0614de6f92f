// Package site answers "which tenants exist": a static list from config
// merged with the active rows of the optional control-plane database.
package site

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/yanizio/sitehost/internal/tenant"
)

// Directory lists known tenant keys.  The zero value knows no tenants.
type Directory struct {
	static []tenant.Key
	reg    *Registry // may be nil
}

// NewDirectory normalises static keys and attaches reg (nil allowed).
func NewDirectory(static []string, reg *Registry) *Directory {
	d := &Directory{reg: reg}
	for _, s := range static {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			d.static = append(d.static, tenant.Key(s))
		}
	}
	return d
}

// Open reports whether the directory places no restriction on tenant keys,
// which is the case when neither a static list nor a registry is set.
func (d *Directory) Open() bool { return len(d.static) == 0 && d.reg == nil }

// List returns the sorted, de-duplicated union of static and registry keys.
// A registry failure is logged and the static list is still returned.
func (d *Directory) List(ctx context.Context) []tenant.Key {
	seen := make(map[tenant.Key]struct{}, len(d.static))
	out := make([]tenant.Key, 0, len(d.static))
	add := func(k tenant.Key) {
		if _, dup := seen[k]; !dup {
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	for _, k := range d.static {
		add(k)
	}
	if d.reg != nil {
		rows, err := d.reg.AllActive(ctx)
		if err != nil {
			zap.L().Warn("site registry unavailable", zap.Error(err))
		}
		for _, r := range rows {
			add(tenant.Key(strings.ToLower(r.Host)))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Contains reports whether key is known.  An open directory contains every
// key.
func (d *Directory) Contains(ctx context.Context, key tenant.Key) bool {
	if d.Open() {
		return true
	}
	for _, k := range d.static {
		if k.Equal(key) {
			return true
		}
	}
	if d.reg == nil {
		return false
	}
	rec, err := d.reg.ByHost(ctx, strings.ToLower(string(key)))
	if err != nil {
		zap.L().Warn("site registry lookup failed", zap.String("tenant", key.String()), zap.Error(err))
		return false
	}
	return rec != nil
}
