// Package fill is the live fill-in view: it matches the active tab's URL
// to a site, shows an editable instance of one of the site's templates and
// prints it.
package fill

import (
	"context"
	"errors"
	"fmt"

	"github.com/ziadkadry99/labelkit/internal/model"
)

var (
	// ErrNoTemplate is returned when an operation needs a selected
	// template and none is shown.
	ErrNoTemplate = errors.New("no template selected to print")
	// ErrTemplateNotFound is returned when selecting a template that is
	// not offered for the current site.
	ErrTemplateNotFound = errors.New("selected template not found")
	// ErrFieldNotFound is returned for an unknown field id.
	ErrFieldNotFound = errors.New("field not found")
	// ErrWrongFieldKind is returned when a field does not accept the
	// given kind of input.
	ErrWrongFieldKind = errors.New("field does not accept this input")
)

// Status texts shown above the fill view.
const (
	StatusChecking   = "Checking current site..."
	StatusTabError   = "Error getting current tab URL."
	StatusNoTemplate = "No template(s) assigned for this site."
)

func statusMatched(site string) string { return fmt.Sprintf("Site matched: %s.", site) }

func statusNoValidTemplates(site string) string {
	return fmt.Sprintf("Site matched: %s, but no valid templates assigned or found.", site)
}

// ImagePlaceholder is the printed value of an image field.
const ImagePlaceholder = "[Image Placeholder]"

// TabSource reports the URL of the active browser tab.
type TabSource interface {
	ActiveURL(ctx context.Context) (string, error)
}

// TabFunc adapts a function to a TabSource.
type TabFunc func(ctx context.Context) (string, error)

func (f TabFunc) ActiveURL(ctx context.Context) (string, error) { return f(ctx) }

// StaticTab is a TabSource that always reports the same URL.
type StaticTab string

func (t StaticTab) ActiveURL(context.Context) (string, error) {
	if t == "" {
		return "", errors.New("no active tab")
	}
	return string(t), nil
}

// CodeState describes what a Codebox field currently shows.
type CodeState string

const (
	// CodeNoSource means no source Textbox is configured.
	CodeNoSource CodeState = "no_source"
	// CodeNoText means the source Textbox is empty.
	CodeNoText CodeState = "no_text"
	// CodeRendered means the code was produced from the source text.
	CodeRendered CodeState = "rendered"
	// CodeSourceNotFound means the source id does not name a Textbox
	// field of the shown template.
	CodeSourceNotFound CodeState = "source_not_found"
)

// Field is the live instance of one template element.
type Field struct {
	ID   string     `json:"id"`
	Kind model.Kind `json:"kind"`
	// Revision increases each time this field's value or rendering
	// changes.
	Revision int `json:"revision"`

	// Textbox
	Text       string `json:"text,omitempty"`
	DataSource string `json:"data_source,omitempty"`

	// Imagebox
	ImageName string `json:"image_name,omitempty"`
	Image     []byte `json:"-"`

	// Codebox
	SourceID string    `json:"source_id,omitempty"`
	State    CodeState `json:"state,omitempty"`
	Rendered string    `json:"rendered,omitempty"`
}

// Option is one choice in the template selector.
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// View is the rendered fill view.
type View struct {
	Status   string   `json:"status"`
	URL      string   `json:"url,omitempty"`
	Site     string   `json:"site,omitempty"`
	Options  []Option `json:"options"`
	Selected string   `json:"selected,omitempty"`
	// Heading describes the shown template, e.g. "Editing: Label (4x2 in)".
	Heading  string  `json:"heading,omitempty"`
	Fields   []Field `json:"fields"`
	CanPrint bool    `json:"can_print"`
}
