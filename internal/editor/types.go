package editor

import (
	"errors"

	"github.com/ziadkadry99/labelkit/internal/model"
)

var (
	// ErrNotEditing is returned by detail-screen operations while the
	// editor shows the list.
	ErrNotEditing = errors.New("no template is open")
	// ErrWrongScreen is returned by list-screen operations while a
	// template is open.
	ErrWrongScreen = errors.New("operation not available on this screen")
	// ErrTemplateNotFound is returned when the requested template id is
	// not in the list.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrElementNotFound is returned when the requested element id is not
	// in the open template.
	ErrElementNotFound = errors.New("element not found")
)

// Screen is the editor's top-level view.
type Screen string

const (
	ScreenList   Screen = "list"
	ScreenDetail Screen = "detail"
)

// Status and alert texts shown to the user.
const (
	StatusUnsaved   = "Unsaved changes"
	StatusSaved     = "Saved!"
	AlertSaveFailed = "Error saving templates. See console for details."
	questionExit    = "You have unsaved changes. Are you sure you want to exit without saving?"
)

// State is the editor's complete UI state. Render projects it to a View.
type State struct {
	Screen    Screen
	Templates []model.Template
	// Draft is a deep copy of the template being edited. Nothing outside
	// Save copies it back into Templates.
	Draft    *model.Template
	IsNew    bool
	Selected string
	Dirty    bool
	Status   string
	Alert    string
}

// TemplateProps is a partial update of the open template's properties.
// Nil fields are left unchanged.
type TemplateProps struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Width       *float64       `json:"width,omitempty"`
	Height      *float64       `json:"height,omitempty"`
	Unit        *model.Unit    `json:"unit,omitempty"`
	Margins     *model.Margins `json:"margins,omitempty"`
}

// ElementProps is a partial update of the selected element. Variant fields
// that do not apply to the element are ignored.
type ElementProps struct {
	Left   *int `json:"left,omitempty"`
	Top    *int `json:"top,omitempty"`
	Width  *int `json:"width,omitempty"`
	Height *int `json:"height,omitempty"`

	DefaultValue    *string `json:"defaultValue,omitempty"`
	DataSource      *string `json:"dataSource,omitempty"`
	SourceTextboxID *string `json:"sourceTextboxId,omitempty"`
}

// View is the rendered editor.
type View struct {
	Screen Screen      `json:"screen"`
	Status string      `json:"status,omitempty"`
	Alert  string      `json:"alert,omitempty"`
	List   []ListItem  `json:"list,omitempty"`
	Detail *DetailView `json:"detail,omitempty"`
}

// ListItem is one row of the template list.
type ListItem struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	DescriptionHTML string `json:"description_html"`
	Size            string `json:"size"`
}

// DetailView is the open template: properties, canvas and property panel.
type DetailView struct {
	Title    string         `json:"title"`
	Template model.Template `json:"template"`
	IsNew    bool           `json:"is_new"`
	Dirty    bool           `json:"dirty"`
	Canvas   model.Canvas   `json:"canvas"`
	Elements []ElementBox   `json:"elements"`
	Panel    *Panel         `json:"panel,omitempty"`
	Toolbox  []model.Kind   `json:"toolbox"`
}

// ElementBox is an element drawn on the canvas.
type ElementBox struct {
	ID       string       `json:"id"`
	Kind     model.Kind   `json:"kind"`
	Layout   model.Layout `json:"layout"`
	Label    string       `json:"label"`
	Detail   string       `json:"detail,omitempty"`
	Selected bool         `json:"selected"`
}

// Panel is the property panel of the selected element. Only the group
// matching the element's variant is set.
type Panel struct {
	ID      string         `json:"id"`
	Kind    model.Kind     `json:"kind"`
	Layout  model.Layout   `json:"layout"`
	Textbox *model.Textbox `json:"textbox,omitempty"`
	Codebox *CodeboxPanel  `json:"codebox,omitempty"`
}

// CodeboxPanel lists the Textboxes a Codebox can be sourced from.
type CodeboxPanel struct {
	SourceTextboxID string         `json:"sourceTextboxId"`
	Options         []SourceOption `json:"options"`
}

// SourceOption is one choice in the Codebox source selector.
type SourceOption struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}
