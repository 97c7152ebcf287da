package sites

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/labelkit/internal/model"
	"github.com/ziadkadry99/labelkit/internal/prompt"
	"github.com/ziadkadry99/labelkit/internal/urlmatch"
)

// RegisterRoutes mounts the site registry API on the given router.
func RegisterRoutes(r chi.Router, g *Registry) {
	r.Route("/api/sites", func(r chi.Router) {
		r.Get("/", viewHandler(g))
		r.Get("/match", matchHandler(g))
		r.Post("/reload", reloadHandler(g))
		r.Post("/form", addHandler(g))
		r.Delete("/form", cancelHandler(g))
		r.Put("/form", setFieldsHandler(g))
		r.Put("/form/templates/{templateID}", assignHandler(g, true))
		r.Delete("/form/templates/{templateID}", assignHandler(g, false))
		r.Post("/form/save", saveHandler(g))
		r.Post("/{id}/edit", editHandler(g))
		r.Delete("/{id}", removeHandler(g))
	})
}

func viewHandler(g *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, g.Render())
	}
}

func matchHandler(g *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url := r.URL.Query().Get("url")
		if url == "" {
			http.Error(w, "url is required", http.StatusBadRequest)
			return
		}
		site, ok := urlmatch.FirstMatch(g.Sites(), url, g.log)
		resp := map[string]interface{}{"matched": ok}
		if ok {
			resp["site"] = site
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func reloadHandler(g *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g.Reload(r.Context())
		writeJSON(w, http.StatusOK, g.Render())
	}
}

func addHandler(g *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g.Add()
		writeJSON(w, http.StatusOK, g.Render())
	}
}

func cancelHandler(g *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g.Cancel()
		writeJSON(w, http.StatusOK, g.Render())
	}
}

func editHandler(g *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, g, g.Edit(chi.URLParam(r, "id")), "")
	}
}

func setFieldsHandler(g *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			URIPattern  string `json:"uriPattern"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		respond(w, g, g.SetFields(req.Name, req.Description, req.URIPattern), "")
	}
}

func assignHandler(g *Registry, checked bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, g, g.SetAssigned(chi.URLParam(r, "templateID"), checked), "")
	}
}

func saveHandler(g *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, err := g.Save(r.Context())
		respond(w, g, err, "")
	}
}

func removeHandler(g *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		confirm := prompt.FromRequest(r)
		err := g.Remove(r.Context(), chi.URLParam(r, "id"), confirm)
		respond(w, g, err, confirm.Question)
	}
}

func respond(w http.ResponseWriter, g *Registry, err error, question string) {
	if err == nil {
		writeJSON(w, http.StatusOK, g.Render())
		return
	}
	status := http.StatusInternalServerError
	switch {
	case model.IsValidation(err):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, ErrSiteNotFound), errors.Is(err, ErrTemplateNotFound):
		status = http.StatusNotFound
	case errors.Is(err, prompt.ErrDeclined), errors.Is(err, ErrNotEditing):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]interface{}{
		"error":   err.Error(),
		"confirm": question,
		"view":    g.Render(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
