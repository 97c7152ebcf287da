package templates

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/labelkit/internal/db"
	"github.com/ziadkadry99/labelkit/internal/kvstore"
	"github.com/ziadkadry99/labelkit/internal/model"
)

func setupTestStore(t *testing.T) (*Store, *kvstore.SQLStore, *db.DB) {
	t.Helper()
	d, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	kv := kvstore.NewSQLStore(d, nil)
	return NewStore(kv, nil), kv, d
}

func labelTemplate(id string) model.Template {
	return model.Template{
		ID:     id,
		Name:   "Label " + id,
		Width:  4,
		Height: 2,
		Unit:   model.UnitInch,
		Elements: []model.Element{
			{ID: "t1", Layout: model.Layout{Left: 10, Width: 120, Height: 25}, Content: model.Textbox{DefaultValue: "ABC"}},
			{ID: "c1", Layout: model.Layout{Left: 10, Top: 30, Width: 120, Height: 25}, Content: model.Codebox{SourceTextboxID: "t1"}},
			{ID: "i1", Layout: model.Layout{Left: 10, Top: 60, Width: 50, Height: 50}, Content: model.Imagebox{}},
		},
	}
}

func TestLoadEmpty(t *testing.T) {
	store, _, _ := setupTestStore(t)
	got := store.Load(context.Background())
	if got == nil || len(got) != 0 {
		t.Errorf("Load() = %#v, want empty slice", got)
	}
}

func TestSaveAllRoundTrip(t *testing.T) {
	store, _, _ := setupTestStore(t)
	ctx := context.Background()

	want := []model.Template{labelTemplate("b"), labelTemplate("a")}
	if err := store.SaveAll(ctx, want); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	got := store.Load(ctx)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, want)
	}
}

func TestLoadNormalizesMissingElements(t *testing.T) {
	store, kv, _ := setupTestStore(t)
	ctx := context.Background()

	raw := json.RawMessage(`[{"id":"old","name":"Old","width":1,"height":1,"unit":"in"}]`)
	if err := kv.Set(ctx, map[string]any{Key: raw}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got := store.Load(ctx)
	if len(got) != 1 || got[0].Elements == nil {
		t.Fatalf("Load() = %#v", got)
	}
}

func TestLoadFailsSoft(t *testing.T) {
	store, kv, d := setupTestStore(t)
	ctx := context.Background()

	kv.Set(ctx, map[string]any{Key: json.RawMessage(`{"not":"a list"}`)})
	if got := store.Load(ctx); len(got) != 0 {
		t.Errorf("Load() on corrupt doc = %v, want empty", got)
	}

	d.Close()
	if got := store.Load(ctx); got == nil || len(got) != 0 {
		t.Errorf("Load() on closed db = %#v, want empty slice", got)
	}
}

func TestLoadSkipsOnlyTheMalformedTemplate(t *testing.T) {
	store, kv, _ := setupTestStore(t)
	ctx := context.Background()

	bad := `{"id":"bad","name":"Bad","width":1,"height":1,"unit":"in","elements":[{"id":"t1","type":"Textbox","defaultValue":5}]}`
	good, err := json.Marshal(labelTemplate("a"))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	raw := json.RawMessage(`[` + string(good) + `,` + bad + `]`)
	if err := kv.Set(ctx, map[string]any{Key: raw}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got := store.Load(ctx)
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("Load() = %+v, want only template a", got)
	}

	// Saving the visible list must not drop the unreadable entry.
	got[0].Name = "Renamed"
	if err := store.SaveAll(ctx, got); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	stored, err := kv.Get(ctx, Key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(stored[Key], &entries); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(entries) != 2 || !strings.Contains(string(entries[1]), `"defaultValue":5`) {
		t.Errorf("stored entries = %s", stored[Key])
	}
	if got := store.Load(ctx); len(got) != 1 || got[0].Name != "Renamed" {
		t.Errorf("Load() after save = %+v", got)
	}
}

func TestSaveAllSurfacesStorageError(t *testing.T) {
	store, _, d := setupTestStore(t)
	d.Close()

	err := store.SaveAll(context.Background(), []model.Template{labelTemplate("a")})
	var se *kvstore.StorageError
	if !errors.As(err, &se) {
		t.Fatalf("SaveAll error = %v, want *kvstore.StorageError", err)
	}
}

func TestImport(t *testing.T) {
	store, _, _ := setupTestStore(t)
	ctx := context.Background()
	store.SaveAll(ctx, []model.Template{labelTemplate("a")})

	changed := labelTemplate("a")
	changed.Name = "Replaced"
	fresh := labelTemplate("")
	fresh.Elements = nil

	added, replaced, err := store.Import(ctx, []model.Template{changed, fresh})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if added != 1 || replaced != 1 {
		t.Errorf("added=%d replaced=%d, want 1/1", added, replaced)
	}

	got := store.Load(ctx)
	if len(got) != 2 {
		t.Fatalf("got %d templates, want 2", len(got))
	}
	if got[0].Name != "Replaced" {
		t.Errorf("first template name = %q, want Replaced", got[0].Name)
	}
	if got[1].ID == "" || got[1].Elements == nil {
		t.Errorf("imported template not normalized: %+v", got[1])
	}
}

func TestImportRejectsInvalidTemplates(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Template)
		field  string
	}{
		{name: "empty name", mutate: func(tpl *model.Template) { tpl.Name = "" }, field: "name"},
		{name: "zero width", mutate: func(tpl *model.Template) { tpl.Width = 0 }, field: "width"},
		{name: "negative height", mutate: func(tpl *model.Template) { tpl.Height = -1 }, field: "height"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _, _ := setupTestStore(t)
			ctx := context.Background()
			store.SaveAll(ctx, []model.Template{labelTemplate("a")})

			bad := labelTemplate("bad")
			tt.mutate(&bad)
			_, _, err := store.Import(ctx, []model.Template{labelTemplate("ok"), bad})

			var verr *model.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Import error = %v, want *model.ValidationError", err)
			}
			if len(verr.Fields) != 1 || verr.Fields[0] != tt.field {
				t.Errorf("fields = %v, want [%s]", verr.Fields, tt.field)
			}
			got := store.Load(ctx)
			if len(got) != 1 || got[0].ID != "a" {
				t.Errorf("stored templates changed after rejected import: %+v", got)
			}
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	list := []model.Template{labelTemplate("a")}

	for _, format := range []Format{FormatJSON, FormatYAML} {
		var buf bytes.Buffer
		if err := Encode(&buf, list, format); err != nil {
			t.Fatalf("Encode(%s): %v", format, err)
		}
		got, err := Decode(buf.Bytes(), format)
		if err != nil {
			t.Fatalf("Decode(%s): %v", format, err)
		}
		if !reflect.DeepEqual(got, list) {
			t.Errorf("%s round trip mismatch:\n got  %+v\n want %+v", format, got, list)
		}
	}
}

func TestExportStoredList(t *testing.T) {
	store, _, _ := setupTestStore(t)
	ctx := context.Background()
	want := []model.Template{labelTemplate("a"), labelTemplate("b")}
	if err := store.SaveAll(ctx, want); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	var buf bytes.Buffer
	if err := store.Export(ctx, &buf, FormatYAML); err != nil {
		t.Fatalf("Export: %v", err)
	}
	got, err := Decode(buf.Bytes(), FormatYAML)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("exported %+v, want %+v", got, want)
	}
}

func TestDecodeSingleTemplate(t *testing.T) {
	got, err := Decode([]byte(`{"id":"x","name":"X","width":1,"height":1}`), FormatJSON)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 1 || got[0].ID != "x" {
		t.Errorf("Decode = %+v", got)
	}
	if _, err := Decode([]byte("   "), FormatJSON); err == nil {
		t.Error("expected error for empty file")
	}
}

func TestFormatForPath(t *testing.T) {
	tests := map[string]Format{
		"a.json":      FormatJSON,
		"a.YAML":      FormatYAML,
		"dir/b.yml":   FormatYAML,
		"no-extension": FormatJSON,
	}
	for path, want := range tests {
		if got := FormatForPath(path); got != want {
			t.Errorf("FormatForPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestRoutes(t *testing.T) {
	store, _, _ := setupTestStore(t)
	store.SaveAll(context.Background(), []model.Template{labelTemplate("a")})

	r := chi.NewRouter()
	RegisterRoutes(r, store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/templates", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list []model.Template
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil || len(list) != 1 {
		t.Fatalf("list body: %v %v", list, err)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/templates/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("missing status = %d, want 404", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/templates/export?format=yaml", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "sourceTextboxId: t1") {
		t.Errorf("yaml export status=%d body=%s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/templates/export?format=xml", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("xml export status = %d, want 400", w.Code)
	}
}
