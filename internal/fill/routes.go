package fill

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// maxImageSize bounds uploaded image bodies.
const maxImageSize = 10 << 20

// RegisterRoutes mounts the fill view API on the given router.
func RegisterRoutes(r chi.Router, c *Controller) {
	r.Route("/api/fill", func(r chi.Router) {
		r.Get("/", viewHandler(c))
		r.Post("/activate", activateHandler(c))
		r.Post("/select/{id}", selectHandler(c))
		r.Put("/fields/{id}/text", textHandler(c))
		r.Put("/fields/{id}/image", imageHandler(c))
		r.Get("/print-data", printDataHandler(c))
		r.Post("/print", printHandler(c))
	})
}

func viewHandler(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, c.Render())
	}
}

// activateHandler takes the active tab's URL from the url query parameter.
func activateHandler(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c.Activate(r.Context(), StaticTab(r.URL.Query().Get("url")))
		writeJSON(w, http.StatusOK, c.Render())
	}
}

func selectHandler(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, c, c.Select(chi.URLParam(r, "id")))
	}
}

func textHandler(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Value string `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		touched, err := c.SetText(chi.URLParam(r, "id"), req.Value)
		if err != nil {
			respond(w, c, err)
			return
		}
		if touched == nil {
			touched = []string{}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"recomputed": touched,
			"view":       c.Render(),
		})
	}
}

func imageHandler(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImageSize))
		if err != nil {
			http.Error(w, "image too large", http.StatusRequestEntityTooLarge)
			return
		}
		respond(w, c, c.SetImage(chi.URLParam(r, "id"), r.URL.Query().Get("name"), data))
	}
}

func printDataHandler(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := c.PrintData()
		if err != nil {
			respond(w, c, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"template_id": job.TemplateID,
			"data":        job.Data,
			"order":       job.Order,
		})
	}
}

func printHandler(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := c.Print(r.Context())
		switch {
		case errors.Is(err, ErrNoTemplate):
			respond(w, c, err)
		case err != nil && rec.ID != "":
			writeJSON(w, http.StatusBadGateway, map[string]interface{}{"error": err.Error(), "job": rec})
		case err != nil:
			respond(w, c, err)
		default:
			writeJSON(w, http.StatusOK, rec)
		}
	}
}

func respond(w http.ResponseWriter, c *Controller, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, c.Render())
		return
	}
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrTemplateNotFound), errors.Is(err, ErrFieldNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrWrongFieldKind):
		status = http.StatusBadRequest
	case errors.Is(err, ErrNoTemplate):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]interface{}{
		"error": err.Error(),
		"view":  c.Render(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
