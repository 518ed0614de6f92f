package content

import (
	"bytes"
	"encoding/json"
	"errors"
)

// knownKeys lists every top-level key Document maps to a field.
var knownKeys = map[string]struct{}{
	"schemaVersion": {}, "site": {}, "navigation": {}, "hero": {},
	"about": {}, "benefits": {}, "programs": {}, "reviews": {}, "blog": {},
	"location": {}, "locations": {}, "cta": {}, "footer": {}, "seo": {},
	"sections": {}, "scheduleForm": {}, "countdownOffer": {}, "faq": {},
	"technicalSeo": {}, "aiContent": {},
}

// docFields breaks the MarshalJSON recursion.
type docFields Document

// UnmarshalJSON decodes the known fields and keeps the rest in Extra.
func (d *Document) UnmarshalJSON(b []byte) error {
	var f docFields
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}
	for k, v := range all {
		if _, ok := knownKeys[k]; ok {
			delete(all, k)
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err == nil {
			all[k] = buf.Bytes()
		}
	}
	if len(all) == 0 {
		all = nil
	}
	f.Extra = all
	f.Version = d.Version
	*d = Document(f)
	return nil
}

// MarshalJSON writes the known fields and merges Extra back in.  Known
// fields win over an Extra entry with the same key.
func (d Document) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(docFields(d))
	if err != nil {
		return nil, err
	}
	if len(d.Extra) == 0 {
		return known, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}
	for k, v := range d.Extra {
		if _, taken := merged[k]; !taken {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// Encode renders d as 2-space indented JSON, the storage format.
func Encode(d *Document) ([]byte, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return indent(raw)
}

// Decode parses a stored document and applies Migrate.
func Decode(raw []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	Migrate(&d)
	return &d, nil
}

var errNotObject = errors.New("content: document is not a JSON object")

// Normalize checks that raw decodes as a Document and returns it in
// storage form with the Migrate renames applied.  Fields the Document type
// does not model, at any depth, pass through unchanged, and so do empty
// arrays.
func Normalize(raw []byte) ([]byte, error) {
	if _, err := Decode(raw); err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errNotObject
	}
	if !migrateRaw(m) {
		return indent(bytes.TrimSpace(raw))
	}
	out, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return indent(out)
}

func indent(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
