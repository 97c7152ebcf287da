package model

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"
)

func sampleTemplate() Template {
	return Template{
		ID:          "tpl-1",
		Name:        "Shipping label",
		Description: "4x2 parcel label",
		Width:       4,
		Height:      2,
		Unit:        UnitInch,
		Margins:     Margins{Top: 0.1, Bottom: 0.2, Left: 0.3, Right: 0.4},
		Elements: []Element{
			{ID: "t1", Layout: Layout{Left: 10, Top: 0, Width: 120, Height: 25}, Content: Textbox{DefaultValue: "ABC", DataSource: "order.id"}},
			{ID: "i1", Layout: Layout{Left: 10, Top: 30, Width: 50, Height: 50}, Content: Imagebox{}},
			{ID: "c1", Layout: Layout{Left: 10, Top: 60, Width: 120, Height: 25}, Content: Codebox{SourceTextboxID: "t1"}},
		},
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	original := sampleTemplate()

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var loaded Template
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if !reflect.DeepEqual(original, loaded) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", loaded, original)
	}
	for i, el := range loaded.Elements {
		if el.ID != original.Elements[i].ID {
			t.Errorf("element %d id = %q, want %q", i, el.ID, original.Elements[i].ID)
		}
	}
}

func TestElementPersistedFieldNames(t *testing.T) {
	el := Element{ID: "c1", Content: Codebox{SourceTextboxID: "t1"}}
	data, err := json.Marshal(el)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"type":"Codebox"`, `"sourceTextboxId":"t1"`, `"left":0`} {
		if !strings.Contains(s, want) {
			t.Errorf("encoded element %s missing %s", s, want)
		}
	}
}

func TestUnknownElementPreserved(t *testing.T) {
	doc := `{"id":"x1","type":"Linebox","left":1,"top":2,"width":3,"height":4,"thickness":2}`
	var el Element
	if err := json.Unmarshal([]byte(doc), &el); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if el.Kind() != "Linebox" {
		t.Errorf("kind = %q, want Linebox", el.Kind())
	}
	if el.IsKnown() {
		t.Error("unknown element reported as known")
	}

	data, err := json.Marshal(el)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal map: %v", err)
	}
	if back["thickness"] != float64(2) {
		t.Errorf("thickness = %v, want 2", back["thickness"])
	}
	if back["top"] != float64(2) {
		t.Errorf("top = %v, want 2", back["top"])
	}
}

func TestFractionalLayoutTolerated(t *testing.T) {
	var el Element
	if err := json.Unmarshal([]byte(`{"id":"t","type":"Textbox","left":10.7,"top":3}`), &el); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if el.Left != 10 || el.Top != 3 || el.Width != 0 {
		t.Errorf("layout = %+v", el.Layout)
	}
}

func TestNormalizeMissingElements(t *testing.T) {
	var tpl Template
	if err := json.Unmarshal([]byte(`{"id":"a","name":"A","width":1,"height":1,"unit":"cm"}`), &tpl); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	tpl.Normalize()
	if tpl.Elements == nil || len(tpl.Elements) != 0 {
		t.Errorf("elements = %#v, want empty slice", tpl.Elements)
	}
}

func TestCloneIsolation(t *testing.T) {
	original := sampleTemplate()
	clone := original.Clone()

	clone.Name = "changed"
	clone.Elements[0].Left = 999
	clone.Elements[0].Content = Textbox{DefaultValue: "changed"}
	clone.Elements = append(clone.Elements, Element{ID: "extra", Content: Imagebox{}})

	if original.Name != "Shipping label" {
		t.Errorf("original name mutated: %q", original.Name)
	}
	if original.Elements[0].Left != 10 {
		t.Errorf("original element mutated: %+v", original.Elements[0])
	}
	if tb, _ := original.Elements[0].Textbox(); tb.DefaultValue != "ABC" {
		t.Errorf("original content mutated: %+v", tb)
	}
	if len(original.Elements) != 3 {
		t.Errorf("original elements len = %d, want 3", len(original.Elements))
	}
}

func TestTemplateValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Template)
		fields []string
	}{
		{"valid", func(*Template) {}, nil},
		{"empty name", func(t *Template) { t.Name = "" }, []string{"name"}},
		{"blank name", func(t *Template) { t.Name = "   " }, []string{"name"}},
		{"zero width", func(t *Template) { t.Width = 0 }, []string{"width"}},
		{"negative height", func(t *Template) { t.Height = -1 }, []string{"height"}},
		{"all missing", func(t *Template) { t.Name, t.Width, t.Height = "", 0, 0 }, []string{"name", "width", "height"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := sampleTemplate()
			tt.mutate(&tpl)
			err := tpl.Validate()
			if tt.fields == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			ve, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if !reflect.DeepEqual(ve.Fields, tt.fields) {
				t.Errorf("fields = %v, want %v", ve.Fields, tt.fields)
			}
			if !IsValidation(err) {
				t.Error("IsValidation = false")
			}
		})
	}
}

func TestSiteValidate(t *testing.T) {
	if err := (Site{Name: "a", URIPattern: "https://*"}).Validate(); err != nil {
		t.Errorf("valid site: %v", err)
	}
	if err := (Site{Name: "a"}).Validate(); !IsValidation(err) {
		t.Errorf("missing pattern: err = %v", err)
	}
	if err := (Site{URIPattern: "x"}).Validate(); !IsValidation(err) {
		t.Errorf("missing name: err = %v", err)
	}
}

func TestNewElementDefaults(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	tests := []struct {
		kind   Kind
		count  int
		layout Layout
	}{
		{KindTextbox, 0, Layout{Left: 10, Top: 0, Width: 120, Height: 25}},
		{KindImagebox, 2, Layout{Left: 10, Top: 60, Width: 50, Height: 50}},
		{KindCodebox, 5, Layout{Left: 10, Top: 0, Width: 120, Height: 25}},
		{KindTextbox, 6, Layout{Left: 10, Top: 30, Width: 120, Height: 25}},
	}
	for _, tt := range tests {
		existing := make([]Element, tt.count)
		for i := range existing {
			existing[i] = Element{ID: string(rune('a' + i)), Content: Imagebox{}}
		}
		el, err := NewElement(tt.kind, existing, now)
		if err != nil {
			t.Fatalf("NewElement(%s): %v", tt.kind, err)
		}
		if el.Layout != tt.layout {
			t.Errorf("NewElement(%s, %d) layout = %+v, want %+v", tt.kind, tt.count, el.Layout, tt.layout)
		}
		if el.Kind() != tt.kind {
			t.Errorf("kind = %q, want %q", el.Kind(), tt.kind)
		}
	}
}

func TestNewElementUniqueID(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	existing := []Element{
		{ID: "textbox_1700000000000", Content: Textbox{}},
		{ID: "textbox_1700000000001", Content: Textbox{}},
	}
	el, err := NewElement(KindTextbox, existing, now)
	if err != nil {
		t.Fatalf("NewElement: %v", err)
	}
	if el.ID != "textbox_1700000000002" {
		t.Errorf("id = %q, want textbox_1700000000002", el.ID)
	}

	if _, err := NewElement("Linebox", nil, now); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestResolveTemplates(t *testing.T) {
	all := []Template{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}
	found, missing := ResolveTemplates([]string{"b", "gone", "a"}, all)
	if len(found) != 2 || found[0].ID != "b" || found[1].ID != "a" {
		t.Errorf("found = %+v", found)
	}
	if !reflect.DeepEqual(missing, []string{"gone"}) {
		t.Errorf("missing = %v", missing)
	}
}

func TestCanvasProjection(t *testing.T) {
	tpl := Template{Width: 4, Height: 2, Unit: UnitInch, Margins: Margins{Top: 0.5, Left: 0.25}}
	c := tpl.Canvas()
	if c.Width != 384 || c.Height != 192 {
		t.Errorf("canvas = %vx%v, want 384x192", c.Width, c.Height)
	}
	if c.Padding.Top != 48 || c.Padding.Left != 24 {
		t.Errorf("padding = %+v", c.Padding)
	}
	if c.InnerWidth != 360 || c.InnerHeight != 144 {
		t.Errorf("inner = %vx%v, want 360x144", c.InnerWidth, c.InnerHeight)
	}

	cm := Template{Width: 2.54, Height: 2.54, Unit: UnitCentimeter}.Canvas()
	if cm.Width < 95.999 || cm.Width > 96.001 {
		t.Errorf("cm canvas width = %v, want 96", cm.Width)
	}
}

func TestSizeLabel(t *testing.T) {
	if got := (Template{Width: 4, Height: 2.5, Unit: UnitInch}).SizeLabel(); got != "4x2.5 in" {
		t.Errorf("SizeLabel = %q", got)
	}
	if got := (Template{}).SizeLabel(); got != "?x? ?" {
		t.Errorf("SizeLabel(empty) = %q", got)
	}
}
