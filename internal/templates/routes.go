package templates

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts read-only template endpoints on the given router.
// Edits go through the editor controller.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Get("/api/templates", listTemplatesHandler(store))
	r.Get("/api/templates/export", exportTemplatesHandler(store))
	r.Get("/api/templates/{id}", getTemplateHandler(store))
}

func listTemplatesHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, store.Load(r.Context()))
	}
}

func getTemplateHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		t, ok := store.Get(r.Context(), id)
		if !ok {
			http.Error(w, "template not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

func exportTemplatesHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format := Format(r.URL.Query().Get("format"))
		if format == "" {
			format = FormatJSON
		}
		if format != FormatJSON && format != FormatYAML {
			http.Error(w, "format must be json or yaml", http.StatusBadRequest)
			return
		}
		if format == FormatYAML {
			w.Header().Set("Content-Type", "application/yaml")
		} else {
			w.Header().Set("Content-Type", "application/json")
		}
		w.Header().Set("Content-Disposition", `attachment; filename="templates.`+string(format)+`"`)
		if err := store.Export(r.Context(), w, format); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

