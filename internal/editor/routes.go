package editor

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/labelkit/internal/model"
	"github.com/ziadkadry99/labelkit/internal/prompt"
)

// RegisterRoutes mounts the editor API on the given router. Every
// successful call responds with the rendered view.
func RegisterRoutes(r chi.Router, c *Controller) {
	r.Route("/api/editor", func(r chi.Router) {
		r.Get("/", viewHandler(c))
		r.Post("/reload", reloadHandler(c))
		r.Post("/new", addNewHandler(c))
		r.Post("/open/{id}", openHandler(c))
		r.Put("/templates/{id}/name", renameHandler(c))
		r.Delete("/templates/{id}", deleteHandler(c))
		r.Patch("/draft", updateTemplateHandler(c))
		r.Post("/elements", addElementHandler(c))
		r.Post("/select/{id}", selectHandler(c))
		r.Delete("/select", deselectHandler(c))
		r.Patch("/selection", updateElementHandler(c))
		r.Post("/save", saveHandler(c))
		r.Post("/exit", exitHandler(c))
	})
}

func viewHandler(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, c.Render())
	}
}

func reloadHandler(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c.Reload(r.Context())
		writeJSON(w, http.StatusOK, c.Render())
	}
}

func addNewHandler(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, c, c.AddNew(), "")
	}
}

func openHandler(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, c, c.Open(chi.URLParam(r, "id")), "")
	}
}

func renameHandler(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		respond(w, c, c.Rename(r.Context(), chi.URLParam(r, "id"), req.Name), "")
	}
}

func deleteHandler(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		confirm := prompt.FromRequest(r)
		err := c.Delete(r.Context(), chi.URLParam(r, "id"), confirm)
		respond(w, c, err, confirm.Question)
	}
}

func updateTemplateHandler(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var props TemplateProps
		if err := json.NewDecoder(r.Body).Decode(&props); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		respond(w, c, c.UpdateTemplate(props), "")
	}
}

func addElementHandler(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Type string `json:"type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		kind, ok := model.ParseKind(req.Type)
		if !ok {
			http.Error(w, "type must be Textbox, Imagebox or Codebox", http.StatusBadRequest)
			return
		}
		_, err := c.AddElement(kind)
		respond(w, c, err, "")
	}
}

func selectHandler(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, c, c.Select(chi.URLParam(r, "id")), "")
	}
}

func deselectHandler(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c.Deselect()
		writeJSON(w, http.StatusOK, c.Render())
	}
}

func updateElementHandler(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var props ElementProps
		if err := json.NewDecoder(r.Body).Decode(&props); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		respond(w, c, c.UpdateElement(props), "")
	}
}

func saveHandler(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, c, c.Save(r.Context()), "")
	}
}

func exitHandler(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		confirm := prompt.FromRequest(r)
		respond(w, c, c.Exit(confirm), confirm.Question)
	}
}

// respond writes the view, or maps err to a status. A declined
// confirmation carries the question so the client can ask and retry.
func respond(w http.ResponseWriter, c *Controller, err error, question string) {
	if err == nil {
		writeJSON(w, http.StatusOK, c.Render())
		return
	}
	status := http.StatusInternalServerError
	switch {
	case model.IsValidation(err):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, ErrTemplateNotFound), errors.Is(err, ErrElementNotFound):
		status = http.StatusNotFound
	case errors.Is(err, prompt.ErrDeclined), errors.Is(err, ErrNotEditing), errors.Is(err, ErrWrongScreen):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]interface{}{
		"error":   err.Error(),
		"confirm": question,
		"view":    c.Render(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
