package editor

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"

	"github.com/ziadkadry99/labelkit/internal/model"
)

// Descriptions are user text, so raw HTML stays escaped. Fenced blocks
// (printer command snippets, sample data) are highlighted inline.
var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.Linkify,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
		),
	),
)

// Render projects the current state to a View.
func (c *Controller) Render() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		Screen: c.state.Screen,
		Status: c.state.Status,
		Alert:  c.state.Alert,
	}
	if c.state.Draft == nil {
		v.List = renderList(c.state.Templates)
		return v
	}
	v.Detail = renderDetail(c.state)
	return v
}

func renderList(list []model.Template) []ListItem {
	items := make([]ListItem, 0, len(list))
	for _, t := range list {
		name := t.Name
		if name == "" {
			name = "Untitled Template"
		}
		desc := t.Description
		if desc == "" {
			desc = "No description"
		}
		items = append(items, ListItem{
			ID:              t.ID,
			Name:            name,
			DescriptionHTML: DescriptionHTML(desc),
			Size:            t.SizeLabel(),
		})
	}
	return items
}

// DescriptionHTML renders a template description written in Markdown.
// Text that fails to render is returned unchanged.
func DescriptionHTML(desc string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(desc), &buf); err != nil {
		return desc
	}
	return buf.String()
}

func renderDetail(s State) *DetailView {
	d := s.Draft
	dv := &DetailView{
		Title:    "Editing: " + d.Name,
		Template: d.Clone(),
		IsNew:    s.IsNew,
		Dirty:    s.Dirty,
		Canvas:   d.Canvas(),
		Elements: make([]ElementBox, 0, len(d.Elements)),
		Toolbox:  model.Kinds,
	}
	for _, el := range d.Elements {
		dv.Elements = append(dv.Elements, renderBox(el, el.ID == s.Selected))
	}
	if el, ok := d.Element(s.Selected); ok && s.Selected != "" {
		dv.Panel = renderPanel(*d, el)
	}
	return dv
}

func renderBox(el model.Element, selected bool) ElementBox {
	layout := el.Layout
	if layout.Width == 0 {
		layout.Width = 100
	}
	if layout.Height == 0 {
		layout.Height = 20
	}
	short := shortID(el.ID)
	box := ElementBox{
		ID:       el.ID,
		Kind:     el.Kind(),
		Layout:   layout,
		Selected: selected,
	}
	switch c := el.Content.(type) {
	case model.Textbox:
		box.Label = "[Text] " + short
		box.Detail = c.DefaultValue
		if box.Detail == "" {
			box.Detail = c.DataSource
		}
	case model.Imagebox:
		box.Label = "[Img] " + short
	case model.Codebox:
		src := c.SourceTextboxID
		if src == "" {
			src = "?"
		}
		box.Label = "[Code] " + short
		box.Detail = fmt.Sprintf("(Src: %s)", src)
	default:
		box.Label = fmt.Sprintf("[%s] %s", el.Kind(), short)
	}
	return box
}

func renderPanel(t model.Template, el model.Element) *Panel {
	p := &Panel{ID: el.ID, Kind: el.Kind(), Layout: el.Layout}
	if p.Layout.Width == 0 {
		p.Layout.Width = 100
	}
	if p.Layout.Height == 0 {
		p.Layout.Height = 20
	}
	switch c := el.Content.(type) {
	case model.Textbox:
		tb := c
		p.Textbox = &tb
	case model.Codebox:
		cp := &CodeboxPanel{SourceTextboxID: c.SourceTextboxID, Options: []SourceOption{}}
		for _, src := range t.Textboxes() {
			cp.Options = append(cp.Options, SourceOption{
				ID:       src.ID,
				Label:    src.ID + " (Textbox)",
				Selected: src.ID == c.SourceTextboxID,
			})
		}
		p.Codebox = cp
	default:
	}
	return p
}

func shortID(id string) string {
	if r := []rune(id); len(r) > 8 {
		return string(r[:8])
	}
	return id
}
