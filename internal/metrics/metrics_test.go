package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareRecordsRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/api/templates/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(requestTotal.WithLabelValues("GET", "/api/templates/{id}", "404"))

	req := httptest.NewRequest(http.MethodGet, "/api/templates/abc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	after := testutil.ToFloat64(requestTotal.WithLabelValues("GET", "/api/templates/{id}", "404"))
	if after-before != 1 {
		t.Errorf("requests_total delta = %v, want 1", after-before)
	}
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(storageOps.WithLabelValues("set", "sites", "error"))
	ObserveStorage("set", "sites", errors.New("disk full"))
	if got := testutil.ToFloat64(storageOps.WithLabelValues("set", "sites", "error")) - before; got != 1 {
		t.Errorf("storage error delta = %v, want 1", got)
	}

	before = testutil.ToFloat64(siteMatches.WithLabelValues(MatchInvalidPattern))
	ObserveMatch(MatchInvalidPattern)
	if got := testutil.ToFloat64(siteMatches.WithLabelValues(MatchInvalidPattern)) - before; got != 1 {
		t.Errorf("match delta = %v, want 1", got)
	}

	before = testutil.ToFloat64(printJobs.WithLabelValues("log", "ok"))
	ObservePrint("log", nil)
	if got := testutil.ToFloat64(printJobs.WithLabelValues("log", "ok")) - before; got != 1 {
		t.Errorf("print delta = %v, want 1", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	ObserveMatch(MatchMatched)

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if !strings.Contains(w.Body.String(), "labelkit_sites_match_total") {
		t.Error("expected labelkit_sites_match_total in /metrics output")
	}
}
