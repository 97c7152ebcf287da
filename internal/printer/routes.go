package printer

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts print history endpoints on the given router.
func RegisterRoutes(r chi.Router, m *Manager) {
	r.Get("/api/print/jobs", listJobsHandler(m))
	r.Get("/api/print/printer", printerHandler(m))
}

func listJobsHandler(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if l := r.URL.Query().Get("limit"); l != "" {
			n, err := strconv.Atoi(l)
			if err != nil || n < 0 {
				http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
				return
			}
			limit = n
		}
		jobs, err := m.History(r.Context(), limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if jobs == nil {
			jobs = []Record{}
		}
		writeJSON(w, http.StatusOK, jobs)
	}
}

func printerHandler(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := m.Printer()
		resp := map[string]string{"name": p.Name(), "type": p.Type()}
		if np, ok := p.(*NetworkPrinter); ok {
			resp["status"] = np.Status(r.Context())
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
