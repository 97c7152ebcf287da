package popup

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/labelkit/internal/db"
	"github.com/ziadkadry99/labelkit/internal/fill"
	"github.com/ziadkadry99/labelkit/internal/kvstore"
	"github.com/ziadkadry99/labelkit/internal/model"
	"github.com/ziadkadry99/labelkit/internal/printer"
	"github.com/ziadkadry99/labelkit/internal/sites"
	"github.com/ziadkadry99/labelkit/internal/templates"
)

type fixture struct {
	popup  *Popup
	tpls   *templates.Store
	sites  *sites.Store
	opened int
}

func setupTestPopup(t *testing.T) *fixture {
	t.Helper()
	d, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	kv := kvstore.NewSQLStore(d, nil)
	ts := templates.NewStore(kv, nil)
	ss := sites.NewStore(kv, nil)
	ctx := context.Background()
	label := model.Template{ID: "ship", Name: "Shipping", Width: 4, Height: 2, Unit: model.UnitInch, Elements: []model.Element{}}
	if err := ts.SaveAll(ctx, []model.Template{label}); err != nil {
		t.Fatalf("seeding templates: %v", err)
	}
	shop := model.Site{ID: "s1", Name: "Shop", URIPattern: "https://shop/*", TemplateIDs: []string{"ship"}}
	if err := ss.SaveAll(ctx, []model.Site{shop}); err != nil {
		t.Fatalf("seeding sites: %v", err)
	}

	f := &fixture{tpls: ts, sites: ss}
	fc := fill.New(ts, ss, nil, printer.NewManager(nil, printer.NewLogPrinter("", nil), nil), nil)
	reg := sites.NewRegistry(ts, ss, nil)
	opener := OpenerFunc(func(context.Context) error {
		f.opened++
		return nil
	})
	f.popup = New(fc, reg, opener, nil)
	return f
}

func renameTemplate(t *testing.T, f *fixture, name string) {
	t.Helper()
	label := model.Template{ID: "ship", Name: name, Width: 4, Height: 2, Unit: model.UnitInch, Elements: []model.Element{}}
	if err := f.tpls.SaveAll(context.Background(), []model.Template{label}); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
}

func TestOpenActivatesFillAndSites(t *testing.T) {
	f := setupTestPopup(t)
	f.popup.Open(context.Background(), fill.StaticTab("https://shop/orders"))

	v := f.popup.Render()
	if v.Tab != TabEditor {
		t.Errorf("Tab = %q, want editor", v.Tab)
	}
	if v.Fill.Selected != "ship" {
		t.Errorf("Fill.Selected = %q", v.Fill.Selected)
	}
	if len(v.Sites.Sites) != 1 || v.Sites.Sites[0].Name != "Shop" {
		t.Errorf("Sites = %+v", v.Sites.Sites)
	}
}

func TestHandleChangeRefreshesEditorOnlyWhenActive(t *testing.T) {
	f := setupTestPopup(t)
	ctx := context.Background()
	f.popup.Open(ctx, fill.StaticTab("https://shop/orders"))

	if err := f.popup.SwitchTab(ctx, TabSites); err != nil {
		t.Fatalf("SwitchTab: %v", err)
	}
	renameTemplate(t, f, "Renamed")
	f.popup.HandleChange(ctx, kvstore.Change{Keys: []string{templates.Key}})

	v := f.popup.Render()
	if got := v.Fill.Options[0].Name; got != "Shipping" {
		t.Errorf("fill refreshed while hidden: %q", got)
	}
	if got := v.Sites.Sites[0].Templates; got != "Renamed" {
		t.Errorf("site template names = %q, want Renamed", got)
	}

	if err := f.popup.SwitchTab(ctx, TabEditor); err != nil {
		t.Fatalf("SwitchTab: %v", err)
	}
	if got := f.popup.Render().Fill.Options[0].Name; got != "Renamed" {
		t.Errorf("switching to editor did not refresh: %q", got)
	}

	renameTemplate(t, f, "Again")
	f.popup.HandleChange(ctx, kvstore.Change{Keys: []string{templates.Key}})
	if got := f.popup.Render().Fill.Options[0].Name; got != "Again" {
		t.Errorf("active editor not refreshed: %q", got)
	}
}

func TestSwitchTabUnknown(t *testing.T) {
	f := setupTestPopup(t)
	if err := f.popup.SwitchTab(context.Background(), "history"); !errors.Is(err, ErrUnknownTab) {
		t.Errorf("err = %v, want ErrUnknownTab", err)
	}
	if f.popup.Tab() != TabEditor {
		t.Errorf("Tab changed to %q", f.popup.Tab())
	}
}

func TestOpenOptions(t *testing.T) {
	f := setupTestPopup(t)
	if err := f.popup.OpenOptions(context.Background()); err != nil {
		t.Fatalf("OpenOptions: %v", err)
	}
	if f.opened != 1 {
		t.Errorf("opener called %d times", f.opened)
	}

	bare := New(nil, nil, nil, nil)
	if err := bare.OpenOptions(context.Background()); err == nil {
		t.Error("expected error without an opener")
	}
}

func TestRoutes(t *testing.T) {
	f := setupTestPopup(t)
	r := chi.NewRouter()
	RegisterRoutes(r, f.popup)

	do := func(method, path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
		return w
	}

	if w := do(http.MethodPost, "/api/popup/open?url=https://shop/x"); !strings.Contains(w.Body.String(), `"selected":"ship"`) {
		t.Errorf("open = %d %s", w.Code, w.Body)
	}
	if w := do(http.MethodPost, "/api/popup/tab/sites"); !strings.Contains(w.Body.String(), `"tab":"sites"`) {
		t.Errorf("tab = %d %s", w.Code, w.Body)
	}
	if w := do(http.MethodPost, "/api/popup/tab/nope"); w.Code != http.StatusNotFound {
		t.Errorf("unknown tab: status = %d", w.Code)
	}
	if w := do(http.MethodPost, "/api/popup/options"); w.Code != http.StatusNoContent || f.opened != 1 {
		t.Errorf("options: status = %d, opened = %d", w.Code, f.opened)
	}
}
