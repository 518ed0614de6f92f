package content

import "encoding/json"

// Migrate upgrades documents written before schemaVersion existed.  It is
// idempotent and leaves current documents untouched.
//
// Version 0 → 1: early editors stored blog posts under "blogPosts".
func Migrate(d *Document) {
	if d.SchemaVersion >= CurrentSchema {
		return
	}
	if raw, ok := d.Extra["blogPosts"]; ok && len(d.Blog) == 0 {
		var posts []BlogPost
		if err := json.Unmarshal(raw, &posts); err == nil {
			d.Blog = posts
			delete(d.Extra, "blogPosts")
			if len(d.Extra) == 0 {
				d.Extra = nil
			}
		}
	}
}

// migrateRaw is Migrate over the undecoded top-level object.  It reports
// whether m changed.
func migrateRaw(m map[string]json.RawMessage) bool {
	var version int
	if raw, ok := m["schemaVersion"]; ok {
		_ = json.Unmarshal(raw, &version)
	}
	if version >= CurrentSchema {
		return false
	}
	legacy, ok := m["blogPosts"]
	if !ok {
		return false
	}
	if cur, ok := m["blog"]; ok {
		var posts []json.RawMessage
		if err := json.Unmarshal(cur, &posts); err != nil || len(posts) > 0 {
			return false
		}
	}
	var posts []BlogPost
	if err := json.Unmarshal(legacy, &posts); err != nil {
		return false
	}
	m["blog"] = legacy
	delete(m, "blogPosts")
	return true
}
