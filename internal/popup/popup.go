// Package popup is the browser-action shell: it switches between the fill
// view, the template shortcut and the site registry, and keeps them in step
// with storage changes.
package popup

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ziadkadry99/labelkit/internal/fill"
	"github.com/ziadkadry99/labelkit/internal/kvstore"
	"github.com/ziadkadry99/labelkit/internal/logging"
	"github.com/ziadkadry99/labelkit/internal/sites"
	"github.com/ziadkadry99/labelkit/internal/templates"
)

// Tab is a popup tab.
type Tab string

const (
	TabEditor    Tab = "editor"
	TabTemplates Tab = "templates"
	TabSites     Tab = "sites"
)

// ErrUnknownTab is returned by SwitchTab for a tab that does not exist.
var ErrUnknownTab = errors.New("unknown tab")

// Opener opens the options page where templates are edited.
type Opener interface {
	OpenOptions(ctx context.Context) error
}

// OpenerFunc adapts a function to an Opener.
type OpenerFunc func(ctx context.Context) error

func (f OpenerFunc) OpenOptions(ctx context.Context) error { return f(ctx) }

// View is the rendered popup.
type View struct {
	Tab   Tab        `json:"tab"`
	Fill  fill.View  `json:"fill"`
	Sites sites.View `json:"sites"`
}

// Popup coordinates the fill controller and the site registry.
type Popup struct {
	fill   *fill.Controller
	sites  *sites.Registry
	opener Opener
	log    *zap.Logger

	mu   sync.Mutex
	tab  Tab
	tabs fill.TabSource
}

// New creates a popup showing the editor tab.
func New(f *fill.Controller, reg *sites.Registry, opener Opener, log *zap.Logger) *Popup {
	return &Popup{fill: f, sites: reg, opener: opener, log: logging.OrNop(log), tab: TabEditor}
}

// Open loads the site registry and activates the fill view for tabs.
func (p *Popup) Open(ctx context.Context, tabs fill.TabSource) {
	p.mu.Lock()
	p.tabs = tabs
	p.mu.Unlock()

	p.sites.Reload(ctx)
	p.fill.Activate(ctx, tabs)
}

// Tab returns the active tab.
func (p *Popup) Tab() Tab {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tab
}

// SwitchTab activates t and refreshes its content.
func (p *Popup) SwitchTab(ctx context.Context, t Tab) error {
	switch t {
	case TabEditor, TabTemplates, TabSites:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTab, t)
	}

	p.mu.Lock()
	p.tab = t
	tabs := p.tabs
	p.mu.Unlock()

	switch t {
	case TabEditor:
		if tabs != nil {
			p.fill.Activate(ctx, tabs)
		}
	case TabSites:
		p.sites.Reload(ctx)
	}
	return nil
}

// OpenOptions asks the platform to open the options page.
func (p *Popup) OpenOptions(ctx context.Context) error {
	if p.opener == nil {
		return errors.New("no options page opener configured")
	}
	if err := p.opener.OpenOptions(ctx); err != nil {
		return fmt.Errorf("opening options page: %w", err)
	}
	return nil
}

// HandleChange reloads the registry and, while the editor tab is active,
// the fill view.
func (p *Popup) HandleChange(ctx context.Context, change kvstore.Change) {
	if !change.Has(templates.Key, sites.Key) {
		return
	}
	p.log.Debug("storage changed, reloading popup", zap.Strings("keys", change.Keys))
	p.sites.Reload(ctx)
	if p.Tab() == TabEditor {
		p.fill.Refresh(ctx)
	}
}

// Watch applies storage changes until ctx is done or ch is closed.
func (p *Popup) Watch(ctx context.Context, ch <-chan kvstore.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-ch:
			if !ok {
				return
			}
			p.HandleChange(ctx, change)
		}
	}
}

// Render projects the popup state.
func (p *Popup) Render() View {
	return View{Tab: p.Tab(), Fill: p.fill.Render(), Sites: p.sites.Render()}
}
