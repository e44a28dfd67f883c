package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestInstrument_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Instrument)
	r.Get("/teapots/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teapots/"+id, nil))
	}

	body := scrape(t)
	assert.Contains(t, body, `starter_http_requests_total{method="GET",route="/teapots/{id}",status="418"} 2`)
	assert.NotContains(t, body, `route="/teapots/a"`)
}

func TestHandler_IncludesRuntimeCollectors(t *testing.T) {
	assert.Contains(t, scrape(t), "go_goroutines")
}
