package model

import "strings"

// Unit is the physical unit of a template's width, height and margins.
type Unit string

const (
	UnitInch       Unit = "in"
	UnitCentimeter Unit = "cm"
)

// Margins are visual insets used while editing. They are independent of
// the template's width and height.
type Margins struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

// Template is a reusable label/card layout.
type Template struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Unit        Unit    `json:"unit"`
	Margins     Margins `json:"margins"`
	// Elements is in display (z) order.
	Elements []Element `json:"elements"`
}

// NewTemplate returns the template created by "add new".
func NewTemplate(id string) Template {
	return Template{
		ID:       id,
		Name:     "Untitled Template",
		Width:    4,
		Height:   2,
		Unit:     UnitInch,
		Margins:  Margins{Top: 0.1, Bottom: 0.1, Left: 0.1, Right: 0.1},
		Elements: []Element{},
	}
}

// Normalize fills in fields that older or partial documents may lack.
func (t *Template) Normalize() {
	if t.Elements == nil {
		t.Elements = []Element{}
	}
}

// Clone returns a deep copy of t. Mutating the copy never affects t.
func (t Template) Clone() Template {
	c := t
	c.Elements = make([]Element, len(t.Elements))
	for i, el := range t.Elements {
		c.Elements[i] = el.Clone()
	}
	return c
}

// Element returns the element with the given id.
func (t Template) Element(id string) (Element, bool) {
	if i := t.ElementIndex(id); i >= 0 {
		return t.Elements[i], true
	}
	return Element{}, false
}

// ElementIndex returns the index of the element with the given id, or -1.
func (t Template) ElementIndex(id string) int {
	for i, el := range t.Elements {
		if el.ID == id {
			return i
		}
	}
	return -1
}

// Textboxes returns the template's Textbox elements in order.
func (t Template) Textboxes() []Element {
	var out []Element
	for _, el := range t.Elements {
		if el.Kind() == KindTextbox {
			out = append(out, el)
		}
	}
	return out
}

// Validate checks the fields required to save a template.
func (t Template) Validate() error {
	var missing []string
	if strings.TrimSpace(t.Name) == "" {
		missing = append(missing, "name")
	}
	if !(t.Width > 0) {
		missing = append(missing, "width")
	}
	if !(t.Height > 0) {
		missing = append(missing, "height")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing, Message: "Template Name, Width, and Height are required."}
	}
	return nil
}

// SizeLabel formats the physical size for list views, e.g. "4x2 in".
func (t Template) SizeLabel() string {
	return formatDim(t.Width) + "x" + formatDim(t.Height) + " " + unitLabel(t.Unit)
}

// FindTemplate returns the template with the given id from all.
func FindTemplate(all []Template, id string) (Template, bool) {
	for _, t := range all {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

// ResolveTemplates maps ids to templates, preserving the order of ids.
// Ids with no matching template are returned in missing.
func ResolveTemplates(ids []string, all []Template) (found []Template, missing []string) {
	for _, id := range ids {
		if t, ok := FindTemplate(all, id); ok {
			found = append(found, t)
		} else {
			missing = append(missing, id)
		}
	}
	return found, missing
}
