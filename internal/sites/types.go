// Package sites manages Site entities: URL patterns and the templates
// assigned to them.
package sites

import (
	"errors"

	"github.com/ziadkadry99/labelkit/internal/model"
)

var (
	// ErrNotEditing is returned by form operations while no site form is
	// open.
	ErrNotEditing = errors.New("no site is being edited")
	// ErrSiteNotFound is returned for an unknown site id.
	ErrSiteNotFound = errors.New("site not found")
	// ErrTemplateNotFound is returned when assigning an unknown template.
	ErrTemplateNotFound = errors.New("template not found")
)

const (
	alertSaveFailed  = "Error saving sites. See console for details."
	noTemplatesHint  = `No templates defined. Use the "Templates" tab to create some.`
	titleEditSite    = "Edit Site"
	titleAddSite     = "Add New Site"
	noTemplatesLabel = "None"
)

// Session is an open site form. It is keyed by site id, so list changes
// made elsewhere while the form is open cannot redirect the save.
type Session struct {
	// SiteID is empty for a site that has not been saved yet.
	SiteID      string
	Name        string
	Description string
	URIPattern  string
	Checked     map[string]bool
}

func (s *Session) clone() *Session {
	c := *s
	c.Checked = make(map[string]bool, len(s.Checked))
	for id, v := range s.Checked {
		c.Checked[id] = v
	}
	return &c
}

// State is the registry's UI state.
type State struct {
	Templates []model.Template
	Sites     []model.Site
	Editing   *Session
	Alert     string
}

// View is the rendered site registry.
type View struct {
	Sites  []SiteItem  `json:"sites"`
	Editor *EditorView `json:"editor,omitempty"`
	Alert  string      `json:"alert,omitempty"`
}

// SiteItem is one row of the site list. Template ids with no matching
// template are left out of TemplateNames and counted in Missing.
type SiteItem struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	URIPattern    string   `json:"uriPattern"`
	TemplateNames []string `json:"template_names"`
	Templates     string   `json:"templates"`
	Missing       int      `json:"missing_templates"`
}

// EditorView is the open site form.
type EditorView struct {
	Title       string       `json:"title"`
	SiteID      string       `json:"site_id,omitempty"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	URIPattern  string       `json:"uriPattern"`
	Assignments []Assignment `json:"assignments"`
	Hint        string       `json:"hint,omitempty"`
}

// Assignment is one template checkbox of the site form.
type Assignment struct {
	TemplateID string `json:"template_id"`
	Name       string `json:"name"`
	Checked    bool   `json:"checked"`
}
