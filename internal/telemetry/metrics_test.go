package telemetry

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"teamboard/internal/domain"
	"teamboard/internal/repo"
)

func TestMiddlewareCountsByRoute(t *testing.T) {
	m := New()
	router := chi.NewRouter()
	router.Use(m.Middleware)
	router.Get("/api/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	router.Handle("/metrics", m.Handler())

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks/"+id, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}
	require.Equal(t, 3.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/tasks/{id}", "404")))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	require.Contains(t, string(body), `teamboard_http_requests_total{method="GET",route="/api/tasks/{id}",status="404"} 3`)
}

func TestObserveStore(t *testing.T) {
	m := New()
	r := repo.New(nil)
	r.CreateUser(domain.UserInput{Name: "Ann", Email: "ann@example.com"})
	m.ObserveStore(r)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	require.Contains(t, body, `teamboard_store_records{kind="users"} 1`)
	require.Contains(t, body, `teamboard_store_records{kind="metrics"} 1`)
	require.Contains(t, body, `teamboard_store_records{kind="tasks"} 0`)
}

func TestStatusRecorderDefaults(t *testing.T) {
	rec := &StatusRecorder{ResponseWriter: httptest.NewRecorder()}
	require.Equal(t, http.StatusOK, rec.Status())
	rec.WriteHeader(http.StatusCreated)
	require.Equal(t, http.StatusCreated, rec.Status())
}
