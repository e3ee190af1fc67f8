package capture

import (
	"encoding/json"
	"fmt"
)

// Kind discriminates cross-window messages.
type Kind int

// Message kinds. KindUnknown covers anything that is not part of the protocol.
const (
	KindUnknown Kind = iota
	KindReady
	KindHTML
	KindClose
	KindViewRecipe
)

func (k Kind) String() string {
	switch k {
	case KindReady:
		return "ready"
	case KindHTML:
		return "html"
	case KindClose:
		return "close"
	case KindViewRecipe:
		return "viewRecipe"
	default:
		return "unknown"
	}
}

// Wire values.
const (
	readySignal    = "ready"
	typeHTML       = "html"
	typeClose      = "close"
	typeViewRecipe = "viewRecipe"
)

// Message is one cross-window message. On the wire "ready" is a bare JSON
// string; every other message is an object with a "type" discriminator.
type Message struct {
	Kind Kind
	HTML string // KindHTML
	URL  string // KindHTML, KindViewRecipe
}

// Ready is the receiver's announcement that it is listening.
func Ready() Message { return Message{Kind: KindReady} }

// HTML carries the captured page.
func HTML(html, url string) Message { return Message{Kind: KindHTML, HTML: html, URL: url} }

// Close asks the opener to remove the capture UI.
func Close() Message { return Message{Kind: KindClose} }

// ViewRecipe asks the opener to open url in a new browsing context.
func ViewRecipe(url string) Message { return Message{Kind: KindViewRecipe, URL: url} }

type wireMessage struct {
	Type string  `json:"type"`
	HTML *string `json:"html,omitempty"`
	URL  *string `json:"url,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (m Message) MarshalJSON() ([]byte, error) {
	switch m.Kind {
	case KindReady:
		return json.Marshal(readySignal)
	case KindHTML:
		return json.Marshal(wireMessage{Type: typeHTML, HTML: &m.HTML, URL: &m.URL})
	case KindClose:
		return json.Marshal(wireMessage{Type: typeClose})
	case KindViewRecipe:
		return json.Marshal(wireMessage{Type: typeViewRecipe, URL: &m.URL})
	default:
		return nil, fmt.Errorf("capture: cannot encode message of kind %s", m.Kind)
	}
}

// UnmarshalJSON implements json.Unmarshaler. Well-formed JSON that is not a
// protocol message decodes to KindUnknown without error.
func (m *Message) UnmarshalJSON(data []byte) error {
	*m = Message{}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == readySignal {
			m.Kind = KindReady
		}
		return nil
	}

	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		// Arrays, numbers and objects with mistyped fields are noise.
		var anyValue any
		if json.Unmarshal(data, &anyValue) == nil {
			return nil
		}
		return err
	}

	switch w.Type {
	case typeHTML:
		if w.HTML != nil && w.URL != nil {
			*m = HTML(*w.HTML, *w.URL)
		}
	case typeClose:
		*m = Close()
	case typeViewRecipe:
		if w.URL != nil {
			*m = ViewRecipe(*w.URL)
		}
	}
	return nil
}

// Decode parses a raw message. It reports false for anything that is not a
// protocol message; callers drop those silently.
func Decode(data []byte) (Message, bool) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil || m.Kind == KindUnknown {
		return Message{}, false
	}
	return m, true
}
