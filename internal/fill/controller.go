package fill

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ziadkadry99/labelkit/internal/kvstore"
	"github.com/ziadkadry99/labelkit/internal/logging"
	"github.com/ziadkadry99/labelkit/internal/model"
	"github.com/ziadkadry99/labelkit/internal/printer"
	"github.com/ziadkadry99/labelkit/internal/sites"
	"github.com/ziadkadry99/labelkit/internal/templates"
	"github.com/ziadkadry99/labelkit/internal/urlmatch"
)

// Submitter hands a job to the print facility.
type Submitter interface {
	Submit(ctx context.Context, job printer.Job) (printer.Record, error)
}

// codePlaceholder is shown by a Codebox without a source.
const codePlaceholder = "[Barcode Area]"

// Controller owns the fill view state.
type Controller struct {
	templates *templates.Store
	sites     *sites.Store
	encoder   Encoder
	printer   Submitter
	log       *zap.Logger

	mu      sync.Mutex
	tabs    TabSource
	status  string
	url     string
	site    *model.Site
	options []model.Template
	current *model.Template
	fields  []Field
}

// New creates a fill controller. A nil encoder means DatamatrixStub.
func New(tpl *templates.Store, st *sites.Store, enc Encoder, p Submitter, log *zap.Logger) *Controller {
	if enc == nil {
		enc = DatamatrixStub{}
	}
	return &Controller{
		templates: tpl,
		sites:     st,
		encoder:   enc,
		printer:   p,
		log:       logging.OrNop(log),
		status:    StatusChecking,
	}
}

// Activate reloads templates and sites, reads the active tab's URL and
// shows the first template of the first matching site.
func (c *Controller) Activate(ctx context.Context, tabs TabSource) {
	tpls := c.templates.Load(ctx)
	siteList := c.sites.Load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.tabs = tabs
	c.reset()

	if tabs == nil {
		c.status = StatusTabError
		return
	}
	url, err := tabs.ActiveURL(ctx)
	if err != nil || url == "" {
		c.status = StatusTabError
		c.log.Error("getting current tab url", zap.Error(err))
		return
	}
	c.url = url

	site, ok := urlmatch.FirstMatch(siteList, url, c.log)
	if !ok || len(site.TemplateIDs) == 0 {
		c.status = StatusNoTemplate
		return
	}
	c.site = &site

	found, missing := model.ResolveTemplates(site.TemplateIDs, tpls)
	if len(missing) > 0 {
		c.log.Warn("site references missing templates", zap.String("site", site.ID), zap.Strings("templates", missing))
	}
	if len(found) == 0 {
		c.status = statusNoValidTemplates(site.Name)
		return
	}

	c.status = statusMatched(site.Name)
	c.options = found
	c.show(found[0])
}

// Refresh activates again with the last TabSource. It does nothing if the
// controller was never activated.
func (c *Controller) Refresh(ctx context.Context) {
	c.mu.Lock()
	tabs := c.tabs
	c.mu.Unlock()
	if tabs == nil {
		return
	}
	c.Activate(ctx, tabs)
}

// HandleChange refreshes when templates or sites changed.
func (c *Controller) HandleChange(ctx context.Context, change kvstore.Change) {
	if change.Has(templates.Key, sites.Key) {
		c.Refresh(ctx)
	}
}

// Watch applies storage changes until ctx is done or ch is closed.
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

func (c *Controller) reset() {
	c.status = StatusChecking
	c.url = ""
	c.site = nil
	c.options = nil
	c.current = nil
	c.fields = nil
}

// Select shows the offered template with the given id.
func (c *Controller) Select(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := model.FindTemplate(c.options, id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	c.show(t)
	return nil
}

// show builds the fields of t and renders every Codebox.
func (c *Controller) show(t model.Template) {
	t = t.Clone()
	c.current = &t
	c.fields = make([]Field, 0, len(t.Elements))
	for _, el := range t.Elements {
		f := Field{ID: el.ID, Kind: el.Kind()}
		switch content := el.Content.(type) {
		case model.Textbox:
			f.Text = content.DefaultValue
			f.DataSource = content.DataSource
		case model.Codebox:
			f.SourceID = content.SourceTextboxID
			f.State = CodeNoSource
			f.Rendered = codePlaceholder
		default:
		}
		c.fields = append(c.fields, f)
	}
	c.recompute("")
	c.log.Debug("showing template", zap.String("template", t.ID), zap.Int("fields", len(c.fields)))
}

// SetText changes a Textbox's live value and recomputes the Codeboxes
// sourced from it. It returns the ids of the recomputed Codeboxes.
func (c *Controller) SetText(id, value string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := c.field(id, model.KindTextbox)
	if err != nil {
		return nil, err
	}
	if f.Text != value {
		f.Text = value
		f.Revision++
	}
	return c.recompute(id), nil
}

// SetImage attaches a user-chosen image to an Imagebox.
func (c *Controller) SetImage(id, name string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := c.field(id, model.KindImagebox)
	if err != nil {
		return err
	}
	f.ImageName = name
	f.Image = data
	f.Revision++
	return nil
}

// Recompute re-renders the Codeboxes sourced from source, or all
// Codeboxes when source is empty.
func (c *Controller) Recompute(source string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recompute(source)
}

func (c *Controller) recompute(source string) []string {
	var touched []string
	for i := range c.fields {
		f := &c.fields[i]
		if f.Kind != model.KindCodebox || f.SourceID == "" {
			continue
		}
		if source != "" && f.SourceID != source {
			continue
		}

		src := c.lookup(f.SourceID)
		if src == nil || src.Kind != model.KindTextbox {
			f.State = CodeSourceNotFound
			f.Rendered = sourceNotFound(f.SourceID)
		} else {
			f.Rendered = c.encoder.Encode(src.Text, f.ID)
			f.State = CodeRendered
			if src.Text == "" {
				f.State = CodeNoText
			}
		}
		f.Revision++
		touched = append(touched, f.ID)
	}
	return touched
}

func (c *Controller) lookup(id string) *Field {
	for i := range c.fields {
		if c.fields[i].ID == id {
			return &c.fields[i]
		}
	}
	return nil
}

func (c *Controller) field(id string, kind model.Kind) (*Field, error) {
	if c.current == nil {
		return nil, ErrNoTemplate
	}
	f := c.lookup(id)
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrFieldNotFound, id)
	}
	if f.Kind != kind {
		return nil, fmt.Errorf("%w: %s is a %s", ErrWrongFieldKind, id, f.Kind)
	}
	return f, nil
}

// PrintData gathers the live value of every element: the text of a
// Textbox, a placeholder for an Imagebox and the source text of a
// Codebox. Unknown elements are left out.
func (c *Controller) PrintData() (printer.Job, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.printData()
}

func (c *Controller) printData() (printer.Job, error) {
	if c.current == nil {
		return printer.Job{}, ErrNoTemplate
	}
	job := printer.Job{
		TemplateID:   c.current.ID,
		TemplateName: c.current.Name,
		Data:         make(map[string]string, len(c.fields)),
	}
	for _, f := range c.fields {
		var value string
		switch f.Kind {
		case model.KindTextbox:
			value = f.Text
		case model.KindImagebox:
			value = ImagePlaceholder
		case model.KindCodebox:
			if src := c.lookup(f.SourceID); src != nil && src.Kind == model.KindTextbox {
				value = src.Text
			}
		default:
			continue
		}
		job.Data[f.ID] = value
		job.Order = append(job.Order, f.ID)
	}
	return job, nil
}

// Print sends the current print data to the printer.
func (c *Controller) Print(ctx context.Context) (printer.Record, error) {
	c.mu.Lock()
	job, err := c.printData()
	c.mu.Unlock()
	if err != nil {
		return printer.Record{}, err
	}
	if c.printer == nil {
		return printer.Record{}, fmt.Errorf("no printer configured")
	}
	c.log.Info("printing template", zap.String("template", job.TemplateID))
	return c.printer.Submit(ctx, job)
}

// Render projects the current state to a View.
func (c *Controller) Render() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		Status:  c.status,
		URL:     c.url,
		Options: make([]Option, 0, len(c.options)),
		Fields:  append([]Field{}, c.fields...),
	}
	if c.site != nil {
		v.Site = c.site.Name
	}
	for _, t := range c.options {
		v.Options = append(v.Options, Option{ID: t.ID, Name: t.Name})
	}
	if c.current != nil {
		v.Selected = c.current.ID
		v.Heading = fmt.Sprintf("Editing: %s (%s)", c.current.Name, c.current.SizeLabel())
		v.CanPrint = true
	}
	return v
}
