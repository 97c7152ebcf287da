package popup

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/labelkit/internal/fill"
)

// RegisterRoutes mounts the popup API on the given router.
func RegisterRoutes(r chi.Router, p *Popup) {
	r.Route("/api/popup", func(r chi.Router) {
		r.Get("/", viewHandler(p))
		r.Post("/open", openHandler(p))
		r.Post("/tab/{tab}", tabHandler(p))
		r.Post("/options", optionsHandler(p))
	})
}

func viewHandler(p *Popup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, p.Render())
	}
}

// openHandler takes the active tab's URL from the url query parameter.
func openHandler(p *Popup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.Open(r.Context(), fill.StaticTab(r.URL.Query().Get("url")))
		writeJSON(w, http.StatusOK, p.Render())
	}
}

func tabHandler(p *Popup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := p.SwitchTab(r.Context(), Tab(chi.URLParam(r, "tab")))
		if errors.Is(err, ErrUnknownTab) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, p.Render())
	}
}

func optionsHandler(p *Popup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := p.OpenOptions(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
