package opsserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_Health(t *testing.T) {
	health := NewHealth()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	health.Report("sync_odds", "success", nil, at)
	health.Report("sync_fixtures", "failure", errors.New("feed down"), at)

	srv := New(Options{Health: health})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Status string               `json:"status"`
		Jobs   map[string]JobStatus `json:"jobs"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "success", body.Jobs["sync_odds"].LastStatus)
	assert.Equal(t, "feed down", body.Jobs["sync_fixtures"].LastError)
	assert.True(t, body.Jobs["sync_odds"].LastRun.Equal(at))
}

func TestRouter_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "ops_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	h := NewRouter(NewHealth(), promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ops_test_total 1")
}

func TestRouter_NoMetricsHandler(t *testing.T) {
	h := NewRouter(NewHealth(), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth_SnapshotIsCopy(t *testing.T) {
	h := NewHealth()
	h.Report("sync_odds", "success", nil, time.Now())
	snap := h.Snapshot()
	delete(snap, "sync_odds")
	assert.Len(t, h.Snapshot(), 1)
}
