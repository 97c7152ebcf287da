// Package editor is the template editor: a list of templates and a detail
// screen editing an isolated copy of one of them.
package editor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ziadkadry99/labelkit/internal/kvstore"
	"github.com/ziadkadry99/labelkit/internal/logging"
	"github.com/ziadkadry99/labelkit/internal/model"
	"github.com/ziadkadry99/labelkit/internal/prompt"
	"github.com/ziadkadry99/labelkit/internal/templates"
)

// Controller owns the editor state. All methods are safe for concurrent
// use; each runs to completion before the next starts.
type Controller struct {
	store *templates.Store
	log   *zap.Logger
	now   func() time.Time
	newID func() string

	mu    sync.Mutex
	state State
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the time source used for element ids.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithIDGenerator overrides how new template ids are made.
func WithIDGenerator(newID func() string) Option {
	return func(c *Controller) { c.newID = newID }
}

// New creates an editor on the list screen. Call Reload to populate it.
func New(store *templates.Store, log *zap.Logger, opts ...Option) *Controller {
	c := &Controller{
		store: store,
		log:   logging.OrNop(log),
		now:   time.Now,
		newID: uuid.NewString,
		state: State{Screen: ScreenList, Templates: []model.Template{}},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Templates = append([]model.Template(nil), c.state.Templates...)
	if c.state.Draft != nil {
		d := c.state.Draft.Clone()
		s.Draft = &d
	}
	return s
}

// Reload replaces the template list from storage. An open draft is left
// untouched.
func (c *Controller) Reload(ctx context.Context) {
	list := c.store.Load(ctx)
	c.mu.Lock()
	c.state.Templates = list
	c.mu.Unlock()
}

// HandleChange reloads when the template key changed.
func (c *Controller) HandleChange(ctx context.Context, change kvstore.Change) {
	if !change.Has(templates.Key) {
		return
	}
	c.log.Debug("templates changed, reloading editor")
	c.Reload(ctx)
}

// Watch applies changes from ch until it closes or ctx is done.
func (c *Controller) Watch(ctx context.Context, ch <-chan kvstore.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-ch:
			if !ok {
				return
			}
			c.HandleChange(ctx, change)
		}
	}
}

// Open starts editing a copy of the template with the given id.
func (c *Controller) Open(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Screen != ScreenList {
		return ErrWrongScreen
	}
	t, ok := model.FindTemplate(c.state.Templates, id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	c.startEditing(t.Clone(), false)
	return nil
}

// AddNew starts editing a new, unsaved template.
func (c *Controller) AddNew() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Screen != ScreenList {
		return ErrWrongScreen
	}
	c.startEditing(model.NewTemplate(c.newID()), true)
	return nil
}

func (c *Controller) startEditing(draft model.Template, isNew bool) {
	c.state.Screen = ScreenDetail
	c.state.Draft = &draft
	c.state.IsNew = isNew
	c.state.Selected = ""
	c.state.Dirty = false
	c.state.Status = ""
	c.state.Alert = ""
	c.log.Debug("editing template", zap.String("template", draft.ID), zap.Bool("new", isNew))
}

// Rename sets a template's name from the list screen and saves. Blank
// names are ignored.
func (c *Controller) Rename(ctx context.Context, id, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Screen != ScreenList {
		return ErrWrongScreen
	}
	i := indexOf(c.state.Templates, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	list := cloneList(c.state.Templates)
	list[i].Name = name
	return c.commit(ctx, list)
}

// Delete removes a template after confirmation. Sites that reference it
// are not touched.
func (c *Controller) Delete(ctx context.Context, id string, confirm prompt.Confirmer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Screen != ScreenList {
		return ErrWrongScreen
	}
	i := indexOf(c.state.Templates, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	t := c.state.Templates[i]
	question := fmt.Sprintf("Are you sure you want to delete template %q? This cannot be undone.", t.Name)
	if !confirm.Confirm(question) {
		return prompt.ErrDeclined
	}

	list := make([]model.Template, 0, len(c.state.Templates)-1)
	list = append(list, c.state.Templates[:i]...)
	list = append(list, c.state.Templates[i+1:]...)
	if err := c.commit(ctx, list); err != nil {
		return err
	}
	c.log.Warn("template deleted, sites using it keep a dangling reference", zap.String("template", id))
	return nil
}

// commit persists list and adopts it on success. Callers hold mu.
func (c *Controller) commit(ctx context.Context, list []model.Template) error {
	if err := c.store.SaveAll(ctx, list); err != nil {
		c.state.Alert = AlertSaveFailed
		return err
	}
	c.state.Templates = list
	c.state.Alert = ""
	return nil
}

// UpdateTemplate applies property edits to the draft.
func (c *Controller) UpdateTemplate(p TemplateProps) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	d := c.state.Draft
	if d == nil {
		return ErrNotEditing
	}
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Width != nil {
		d.Width = *p.Width
	}
	if p.Height != nil {
		d.Height = *p.Height
	}
	if p.Unit != nil {
		d.Unit = *p.Unit
	}
	if p.Margins != nil {
		d.Margins = *p.Margins
	}
	c.markDirty()
	return nil
}

// AddElement appends a new element of kind k to the draft and selects it.
func (c *Controller) AddElement(k model.Kind) (model.Element, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	d := c.state.Draft
	if d == nil {
		return model.Element{}, ErrNotEditing
	}
	el, err := model.NewElement(k, d.Elements, c.now())
	if err != nil {
		return model.Element{}, err
	}
	d.Elements = append(d.Elements, el)
	c.state.Selected = el.ID
	c.markDirty()
	c.log.Debug("element added", zap.String("element", el.ID), zap.String("kind", string(k)))
	return el, nil
}

// Select makes the element with the given id the selected one.
func (c *Controller) Select(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	d := c.state.Draft
	if d == nil {
		return ErrNotEditing
	}
	if d.ElementIndex(id) < 0 {
		return fmt.Errorf("%w: %s", ErrElementNotFound, id)
	}
	c.state.Selected = id
	return nil
}

// Deselect clears the selection.
func (c *Controller) Deselect() {
	c.mu.Lock()
	c.state.Selected = ""
	c.mu.Unlock()
}

// UpdateElement applies property edits to the selected element. A width
// or height that is not positive falls back to 100 or 20.
func (c *Controller) UpdateElement(p ElementProps) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	d := c.state.Draft
	if d == nil {
		return ErrNotEditing
	}
	i := d.ElementIndex(c.state.Selected)
	if c.state.Selected == "" || i < 0 {
		return ErrElementNotFound
	}
	el := &d.Elements[i]

	if p.Left != nil {
		el.Left = *p.Left
	}
	if p.Top != nil {
		el.Top = *p.Top
	}
	if p.Width != nil {
		el.Width = orDefault(*p.Width, 100)
	}
	if p.Height != nil {
		el.Height = orDefault(*p.Height, 20)
	}

	switch content := el.Content.(type) {
	case model.Textbox:
		if p.DefaultValue != nil {
			content.DefaultValue = *p.DefaultValue
		}
		if p.DataSource != nil {
			content.DataSource = *p.DataSource
		}
		el.Content = content
	case model.Codebox:
		if p.SourceTextboxID != nil {
			content.SourceTextboxID = *p.SourceTextboxID
		}
		el.Content = content
	default:
	}
	c.markDirty()
	return nil
}

// Save validates the draft, writes it into the template list by id and
// persists the list. On success the editor returns to the list screen.
// On failure the draft stays open and dirty.
func (c *Controller) Save(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	d := c.state.Draft
	if d == nil {
		return ErrNotEditing
	}
	if err := d.Validate(); err != nil {
		c.state.Alert = err.Error()
		return err
	}

	list := cloneList(c.state.Templates)
	saved := d.Clone()
	if i := indexOf(list, saved.ID); i >= 0 {
		list[i] = saved
	} else {
		list = append(list, saved)
	}
	if err := c.commit(ctx, list); err != nil {
		return err
	}

	c.log.Info("template saved", zap.String("template", saved.ID), zap.Bool("new", c.state.IsNew))
	c.toList()
	c.state.Status = StatusSaved
	return nil
}

// Exit leaves the detail screen, discarding the draft. Unsaved changes
// need confirmation.
func (c *Controller) Exit(confirm prompt.Confirmer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Draft == nil {
		return ErrNotEditing
	}
	if c.state.Dirty && !confirm.Confirm(questionExit) {
		return prompt.ErrDeclined
	}
	c.toList()
	return nil
}

func (c *Controller) toList() {
	c.state.Screen = ScreenList
	c.state.Draft = nil
	c.state.IsNew = false
	c.state.Selected = ""
	c.state.Dirty = false
	c.state.Status = ""
	c.state.Alert = ""
}

func (c *Controller) markDirty() {
	c.state.Dirty = true
	c.state.Status = StatusUnsaved
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func indexOf(list []model.Template, id string) int {
	for i, t := range list {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func cloneList(list []model.Template) []model.Template {
	out := make([]model.Template, len(list))
	for i, t := range list {
		out[i] = t.Clone()
	}
	return out
}
