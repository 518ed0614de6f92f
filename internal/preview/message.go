// Package preview implements the live-preview channel.  Each open preview
// page holds an event stream (a session) with its own copy of the tenant
// document; an editor posts typed messages for that session, and only that
// session applies them.  A save through the admin API is the one message
// broadcast to every session of the tenant.
//
// Trust model: messages are accepted from any origin but must name a
// session id, which is random and known only to the page that opened the
// stream.  The preview surface never persists anything; the worst a sender
// holding an id can do is change what that one tab shows until the next
// reload.  Persisted edits go through the authenticated admin API only.
package preview

import (
	"encoding/json"

	"github.com/yanizio/sitehost/internal/content"
)

// Wire type tags.
const (
	TypeContentUpdate   = "contentUpdate"
	TypeScrollToSection = "scrollToSection"
)

// Message is the closed set of preview messages.  The only implementations
// are ContentUpdate and ScrollToSection.
type Message interface {
	Kind() string
	sealed()
}

// ContentUpdate replaces the whole document of the page session.
type ContentUpdate struct {
	Content *content.Document
}

// ScrollToSection brings the section with SectionID into view.
type ScrollToSection struct {
	SectionID string
}

func (ContentUpdate) Kind() string   { return TypeContentUpdate }
func (ScrollToSection) Kind() string { return TypeScrollToSection }
func (ContentUpdate) sealed()        {}
func (ScrollToSection) sealed()      {}

type envelope struct {
	Type      string          `json:"type"`
	Content   json.RawMessage `json:"content"`
	SectionID string          `json:"sectionId"`
}

// Decode parses one raw message.  Anything that is not a well-formed member
// of the set reports false and must be ignored by the caller.
func Decode(raw []byte) (Message, bool) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, false
	}
	switch env.Type {
	case TypeContentUpdate:
		if len(env.Content) == 0 || string(env.Content) == "null" {
			return nil, false
		}
		doc, err := content.Decode(env.Content)
		if err != nil {
			return nil, false
		}
		return ContentUpdate{Content: doc}, true
	case TypeScrollToSection:
		if env.SectionID == "" {
			return nil, false
		}
		return ScrollToSection{SectionID: env.SectionID}, true
	}
	return nil, false
}

// Encode renders m in wire form.
func Encode(m Message) ([]byte, error) {
	switch v := m.(type) {
	case ContentUpdate:
		body, err := json.Marshal(v.Content)
		if err != nil {
			return nil, err
		}
		return json.Marshal(envelope{Type: TypeContentUpdate, Content: body})
	case ScrollToSection:
		return json.Marshal(struct {
			Type      string `json:"type"`
			SectionID string `json:"sectionId"`
		}{TypeScrollToSection, v.SectionID})
	}
	return nil, errUnknownMessage
}
