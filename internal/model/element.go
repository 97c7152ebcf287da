package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Kind is the variant tag of an Element, stored as the "type" field.
type Kind string

const (
	KindTextbox  Kind = "Textbox"
	KindImagebox Kind = "Imagebox"
	KindCodebox  Kind = "Codebox"
)

// Kinds lists the element variants that can be added to a template, in
// toolbox order.
var Kinds = []Kind{KindTextbox, KindImagebox, KindCodebox}

// ParseKind returns the Kind for s, or false if s is not a known variant.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Layout is the pixel-space box of an element inside the template canvas.
type Layout struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Content is the variant-specific part of an Element. It is implemented
// only by Textbox, Imagebox, Codebox and Unknown.
type Content interface {
	Kind() Kind
	content()
}

// Textbox is an editable text field.
type Textbox struct {
	DefaultValue string `json:"defaultValue"`
	// DataSource names an external field that overrides DefaultValue at
	// fill time. It is opaque to labelkit.
	DataSource string `json:"dataSource"`
}

// Imagebox is an image slot filled in by the user at fill time.
type Imagebox struct{}

// Codebox renders a machine-readable code derived from the live value of
// another element in the same template.
type Codebox struct {
	// SourceTextboxID is a weak reference; it may dangle or point at a
	// non-Textbox element.
	SourceTextboxID string `json:"sourceTextboxId"`
}

// Unknown keeps an element whose type tag this version does not know, so
// that a load/save cycle does not lose it.
type Unknown struct {
	Type string
	Raw  json.RawMessage
}

func (Textbox) Kind() Kind  { return KindTextbox }
func (Imagebox) Kind() Kind { return KindImagebox }
func (Codebox) Kind() Kind  { return KindCodebox }
func (u Unknown) Kind() Kind { return Kind(u.Type) }

func (Textbox) content()  {}
func (Imagebox) content() {}
func (Codebox) content()  {}
func (Unknown) content()  {}

// Element is one positioned field on a Template.
type Element struct {
	ID string
	Layout
	Content Content
}

// Kind returns the element's variant tag.
func (e Element) Kind() Kind {
	if e.Content == nil {
		return ""
	}
	return e.Content.Kind()
}

// Textbox returns the Textbox content, if e is a Textbox.
func (e Element) Textbox() (Textbox, bool) {
	t, ok := e.Content.(Textbox)
	return t, ok
}

// Codebox returns the Codebox content, if e is a Codebox.
func (e Element) Codebox() (Codebox, bool) {
	c, ok := e.Content.(Codebox)
	return c, ok
}

// IsKnown reports whether the element is one of the editable variants.
func (e Element) IsKnown() bool {
	switch e.Content.(type) {
	case Textbox, Imagebox, Codebox:
		return true
	default:
		return false
	}
}

// Clone returns a deep copy of e.
func (e Element) Clone() Element {
	if u, ok := e.Content.(Unknown); ok {
		raw := make(json.RawMessage, len(u.Raw))
		copy(raw, u.Raw)
		e.Content = Unknown{Type: u.Type, Raw: raw}
	}
	return e
}

type elementHeader struct {
	ID     string   `json:"id"`
	Type   string   `json:"type"`
	Left   *float64 `json:"left"`
	Top    *float64 `json:"top"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
}

func pixel(v *float64) int {
	if v == nil {
		return 0
	}
	return int(*v)
}

// UnmarshalJSON decodes the flat persisted form, dispatching on "type".
func (e *Element) UnmarshalJSON(data []byte) error {
	var h elementHeader
	if err := json.Unmarshal(data, &h); err != nil {
		return fmt.Errorf("decoding element: %w", err)
	}
	e.ID = h.ID
	e.Layout = Layout{Left: pixel(h.Left), Top: pixel(h.Top), Width: pixel(h.Width), Height: pixel(h.Height)}

	switch Kind(h.Type) {
	case KindTextbox:
		var t Textbox
		if err := json.Unmarshal(data, &t); err != nil {
			return fmt.Errorf("decoding textbox %s: %w", h.ID, err)
		}
		e.Content = t
	case KindImagebox:
		e.Content = Imagebox{}
	case KindCodebox:
		var c Codebox
		if err := json.Unmarshal(data, &c); err != nil {
			return fmt.Errorf("decoding codebox %s: %w", h.ID, err)
		}
		e.Content = c
	default:
		raw := make(json.RawMessage, len(data))
		copy(raw, data)
		e.Content = Unknown{Type: h.Type, Raw: raw}
	}
	return nil
}

// MarshalJSON encodes the element in the flat persisted form.
func (e Element) MarshalJSON() ([]byte, error) {
	fields := map[string]any{
		"id":     e.ID,
		"type":   string(e.Kind()),
		"left":   e.Left,
		"top":    e.Top,
		"width":  e.Width,
		"height": e.Height,
	}
	switch c := e.Content.(type) {
	case Textbox:
		fields["defaultValue"] = c.DefaultValue
		fields["dataSource"] = c.DataSource
	case Imagebox:
	case Codebox:
		fields["sourceTextboxId"] = c.SourceTextboxID
	case Unknown:
		var extra map[string]any
		if len(c.Raw) > 0 {
			if err := json.Unmarshal(c.Raw, &extra); err != nil {
				return nil, fmt.Errorf("encoding unknown element %s: %w", e.ID, err)
			}
		}
		for k, v := range extra {
			if _, ok := fields[k]; !ok {
				fields[k] = v
			}
		}
	case nil:
		return nil, fmt.Errorf("element %s has no content", e.ID)
	}
	return json.Marshal(fields)
}

// DefaultLayout returns the geometry given to a new element of kind k in a
// template that already holds count elements. The top offset cascades to
// reduce visual overlap; it is not a collision solver.
func DefaultLayout(k Kind, count int) Layout {
	l := Layout{Left: 10, Top: (count * 30) % 150, Width: 120, Height: 25}
	if k == KindImagebox {
		l.Width, l.Height = 50, 50
	}
	return l
}

// NewElement builds a new element of kind k for a template currently
// holding existing. The id is derived from now and bumped until it is
// unique among existing.
func NewElement(k Kind, existing []Element, now time.Time) (Element, error) {
	var content Content
	switch k {
	case KindTextbox:
		content = Textbox{}
	case KindImagebox:
		content = Imagebox{}
	case KindCodebox:
		content = Codebox{}
	default:
		return Element{}, fmt.Errorf("unknown element type %q", k)
	}

	taken := make(map[string]bool, len(existing))
	for _, el := range existing {
		taken[el.ID] = true
	}
	prefix := strings.ToLower(string(k))
	ms := now.UnixMilli()
	id := fmt.Sprintf("%s_%d", prefix, ms)
	for taken[id] {
		ms++
		id = fmt.Sprintf("%s_%d", prefix, ms)
	}

	return Element{
		ID:      id,
		Layout:  DefaultLayout(k, len(existing)),
		Content: content,
	}, nil
}
