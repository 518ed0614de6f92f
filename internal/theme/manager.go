package theme

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"sort"

	"go.uber.org/zap"

	"github.com/yanizio/sitehost/internal/asset"
	"github.com/yanizio/sitehost/internal/cache"
)

// Default is used when a document names no theme or an unknown one.
const Default = "classic"

//go:embed templates
var embedded embed.FS

// Manager discovers and loads themes.  Parsed sets are kept in an LRU.
type Manager struct {
	fsys   fs.FS
	assets *asset.Resolver
	sets   *cache.LRU[string, *Theme]
	names  map[string]struct{}
}

// NewManager returns a Manager over the embedded templates.
func NewManager(assets *asset.Resolver) (*Manager, error) {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		return nil, err
	}
	return newManager(sub, assets)
}

func newManager(fsys fs.FS, assets *asset.Resolver) (*Manager, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read themes: %w", err)
	}
	m := &Manager{
		fsys:   fsys,
		assets: assets,
		sets:   cache.New[string, *Theme](16),
		names:  make(map[string]struct{}),
	}
	for _, e := range entries {
		if e.IsDir() && e.Name() != "shared" {
			m.names[e.Name()] = struct{}{}
		}
	}
	if _, ok := m.names[Default]; !ok {
		return nil, fmt.Errorf("default theme %q missing", Default)
	}
	return m, nil
}

// Names lists the available themes.
func (m *Manager) Names() []string {
	out := make([]string, 0, len(m.names))
	for n := range m.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Load returns the parsed theme called name, falling back to Default for an
// unknown or empty name.
func (m *Manager) Load(name string) (*Theme, error) {
	if _, ok := m.names[name]; !ok {
		if name != "" {
			zap.L().Debug("unknown theme, using default", zap.String("theme", name))
		}
		name = Default
	}
	if th, ok := m.sets.Get(name); ok {
		return th, nil
	}

	tpl := template.New(name).Funcs(FuncMap(m.assets))

	// 1. Shared sections (lowest precedence).
	if files, _ := CollectHTML(m.fsys, "shared"); len(files) > 0 {
		if _, err := tpl.ParseFS(m.fsys, files...); err != nil {
			return nil, fmt.Errorf("parse shared templates: %w", err)
		}
	}

	// 2. Theme layout and overrides (highest precedence).
	files, err := CollectHTML(m.fsys, name)
	if err != nil || len(files) == 0 {
		return nil, fmt.Errorf("theme %s has no templates", name)
	}
	if _, err := tpl.ParseFS(m.fsys, files...); err != nil {
		return nil, fmt.Errorf("parse theme %s: %w", name, err)
	}
	for _, required := range []string{"layout", "body"} {
		if tpl.Lookup(required) == nil {
			return nil, fmt.Errorf("theme %s does not define %q", name, required)
		}
	}

	th := &Theme{Name: name, Renderer: tpl}
	m.sets.Add(name, th)
	return th, nil
}
