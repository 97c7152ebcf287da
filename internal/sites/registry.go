package sites

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ziadkadry99/labelkit/internal/kvstore"
	"github.com/ziadkadry99/labelkit/internal/logging"
	"github.com/ziadkadry99/labelkit/internal/model"
	"github.com/ziadkadry99/labelkit/internal/prompt"
	"github.com/ziadkadry99/labelkit/internal/templates"
)

// Registry is the site list with its inline add/edit form.
type Registry struct {
	templates *templates.Store
	sites     *Store
	log       *zap.Logger
	newID     func() string

	mu    sync.Mutex
	state State
}

// NewRegistry creates an empty registry. Call Reload to populate it.
func NewRegistry(tpl *templates.Store, sites *Store, log *zap.Logger) *Registry {
	return &Registry{
		templates: tpl,
		sites:     sites,
		log:       logging.OrNop(log),
		newID:     uuid.NewString,
		state: State{
			Templates: []model.Template{},
			Sites:     []model.Site{},
		},
	}
}

// SetIDGenerator overrides how new site ids are made.
func (g *Registry) SetIDGenerator(f func() string) { g.newID = f }

// State returns a copy of the current state.
func (g *Registry) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := g.state
	s.Templates = append([]model.Template(nil), g.state.Templates...)
	s.Sites = append([]model.Site(nil), g.state.Sites...)
	if g.state.Editing != nil {
		s.Editing = g.state.Editing.clone()
	}
	return s
}

// Sites returns the current site list.
func (g *Registry) Sites() []model.Site {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]model.Site(nil), g.state.Sites...)
}

// Reload re-reads templates and sites and reconciles an open form:
// checks for templates that no longer exist are dropped, and the form is
// closed if the site it edits was removed.
func (g *Registry) Reload(ctx context.Context) {
	tpls := g.templates.Load(ctx)
	sites := g.sites.Load(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.state.Templates = tpls
	g.state.Sites = sites

	ed := g.state.Editing
	if ed == nil {
		return
	}
	if ed.SiteID != "" {
		if _, ok := model.FindSite(sites, ed.SiteID); !ok {
			g.log.Warn("site removed while being edited, closing form", zap.String("site", ed.SiteID))
			g.state.Editing = nil
			return
		}
	}
	for id := range ed.Checked {
		if _, ok := model.FindTemplate(tpls, id); !ok {
			delete(ed.Checked, id)
		}
	}
}

// HandleChange reloads when templates or sites changed.
func (g *Registry) HandleChange(ctx context.Context, change kvstore.Change) {
	if change.Has(templates.Key, Key) {
		g.Reload(ctx)
	}
}

// Watch applies changes from ch until it closes or ctx is done.
func (g *Registry) Watch(ctx context.Context, ch <-chan kvstore.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-ch:
			if !ok {
				return
			}
			g.HandleChange(ctx, change)
		}
	}
}

// Add opens a blank form.
func (g *Registry) Add() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state.Editing = &Session{Checked: map[string]bool{}}
	g.state.Alert = ""
}

// Edit opens the form pre-filled with the site with the given id.
func (g *Registry) Edit(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	site, ok := model.FindSite(g.state.Sites, id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSiteNotFound, id)
	}
	checked := make(map[string]bool, len(site.TemplateIDs))
	for _, tid := range site.TemplateIDs {
		if _, ok := model.FindTemplate(g.state.Templates, tid); ok {
			checked[tid] = true
		}
	}
	g.state.Editing = &Session{
		SiteID:      site.ID,
		Name:        site.Name,
		Description: site.Description,
		URIPattern:  site.URIPattern,
		Checked:     checked,
	}
	g.state.Alert = ""
	return nil
}

// Cancel closes the form without saving.
func (g *Registry) Cancel() {
	g.mu.Lock()
	g.state.Editing = nil
	g.state.Alert = ""
	g.mu.Unlock()
}

// SetFields replaces the form's text fields.
func (g *Registry) SetFields(name, description, uriPattern string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	ed := g.state.Editing
	if ed == nil {
		return ErrNotEditing
	}
	ed.Name = name
	ed.Description = description
	ed.URIPattern = uriPattern
	return nil
}

// SetAssigned checks or unchecks a template in the form.
func (g *Registry) SetAssigned(templateID string, checked bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	ed := g.state.Editing
	if ed == nil {
		return ErrNotEditing
	}
	if _, ok := model.FindTemplate(g.state.Templates, templateID); !ok {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, templateID)
	}
	if checked {
		ed.Checked[templateID] = true
	} else {
		delete(ed.Checked, templateID)
	}
	return nil
}

// Save validates the form and writes the site. Assigned template ids are
// stored in template list order.
func (g *Registry) Save(ctx context.Context) (model.Site, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ed := g.state.Editing
	if ed == nil {
		return model.Site{}, ErrNotEditing
	}
	site := model.Site{
		ID:          ed.SiteID,
		Name:        ed.Name,
		Description: ed.Description,
		URIPattern:  ed.URIPattern,
		TemplateIDs: assignedIDs(g.state.Templates, ed.Checked),
	}
	if err := site.Validate(); err != nil {
		g.state.Alert = err.Error()
		return model.Site{}, err
	}
	if site.ID == "" {
		site.ID = g.newID()
	}

	list := append([]model.Site(nil), g.state.Sites...)
	replaced := false
	for i := range list {
		if list[i].ID == site.ID {
			list[i] = site
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, site)
	}
	if err := g.sites.SaveAll(ctx, list); err != nil {
		g.state.Alert = alertSaveFailed
		return model.Site{}, err
	}

	g.state.Sites = list
	g.state.Editing = nil
	g.state.Alert = ""
	g.log.Info("site saved", zap.String("site", site.ID), zap.Strings("templates", site.TemplateIDs))
	return site, nil
}

// Remove deletes a site after confirmation.
func (g *Registry) Remove(ctx context.Context, id string, confirm prompt.Confirmer) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	site, ok := model.FindSite(g.state.Sites, id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSiteNotFound, id)
	}
	if !confirm.Confirm(fmt.Sprintf("Are you sure you want to remove site %q?", site.Name)) {
		return prompt.ErrDeclined
	}

	list := make([]model.Site, 0, len(g.state.Sites))
	for _, s := range g.state.Sites {
		if s.ID != id {
			list = append(list, s)
		}
	}
	if err := g.sites.SaveAll(ctx, list); err != nil {
		g.state.Alert = alertSaveFailed
		return err
	}
	g.state.Sites = list
	g.state.Alert = ""
	if g.state.Editing != nil && g.state.Editing.SiteID == id {
		g.state.Editing = nil
	}
	return nil
}

// Render projects the current state to a View.
func (g *Registry) Render() View {
	g.mu.Lock()
	defer g.mu.Unlock()

	v := View{Sites: make([]SiteItem, 0, len(g.state.Sites)), Alert: g.state.Alert}
	for _, s := range g.state.Sites {
		found, missing := model.ResolveTemplates(s.TemplateIDs, g.state.Templates)
		names := make([]string, 0, len(found))
		for _, t := range found {
			names = append(names, t.Name)
		}
		label := strings.Join(names, ", ")
		if label == "" {
			label = noTemplatesLabel
		}
		v.Sites = append(v.Sites, SiteItem{
			ID:            s.ID,
			Name:          s.Name,
			Description:   s.Description,
			URIPattern:    s.URIPattern,
			TemplateNames: names,
			Templates:     label,
			Missing:       len(missing),
		})
	}

	if ed := g.state.Editing; ed != nil {
		ev := &EditorView{
			Title:       titleAddSite,
			SiteID:      ed.SiteID,
			Name:        ed.Name,
			Description: ed.Description,
			URIPattern:  ed.URIPattern,
			Assignments: make([]Assignment, 0, len(g.state.Templates)),
		}
		if ed.SiteID != "" {
			ev.Title = titleEditSite
		}
		for _, t := range g.state.Templates {
			ev.Assignments = append(ev.Assignments, Assignment{TemplateID: t.ID, Name: t.Name, Checked: ed.Checked[t.ID]})
		}
		if len(g.state.Templates) == 0 {
			ev.Hint = noTemplatesHint
		}
		v.Editor = ev
	}
	return v
}

// assignedIDs returns the checked template ids in template list order.
func assignedIDs(tpls []model.Template, checked map[string]bool) []string {
	ids := []string{}
	for _, t := range tpls {
		if checked[t.ID] {
			ids = append(ids, t.ID)
		}
	}
	return ids
}
