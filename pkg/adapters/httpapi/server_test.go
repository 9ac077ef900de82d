package httpapi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilianodellacasa/colloquio/internal/metrics"
	"github.com/emilianodellacasa/colloquio/pkg/adapters/httpapi"
	"github.com/emilianodellacasa/colloquio/pkg/adapters/memory"
	"github.com/emilianodellacasa/colloquio/pkg/domain"
)

func newTestServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	reg := prometheus.NewRegistry()
	collectors := metrics.NewCollectors(reg)
	collectors.Hooks().OnTurn(context.Background(), &domain.TurnEvent{Mode: domain.ModeMain})

	srv := httptest.NewServer(httpapi.NewServer(store, httpapi.WithMetrics(reg)).Handler())
	t.Cleanup(srv.Close)
	return srv, store
}

func TestServer_Healthz(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestServer_Metrics(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "colloquio_turns_total")
}

func TestServer_ListSessions(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "s1", domain.NewSessionState("s1")))
	require.NoError(t, store.Save(ctx, "s2", domain.NewSessionState("s2")))

	resp, err := http.Get(srv.URL + "/sessions")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Sessions []string `json:"sessions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.ElementsMatch(t, []string{"s1", "s2"}, body.Sessions)
}

func TestServer_ListSessionsEmpty(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/sessions")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Sessions []string `json:"sessions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotNil(t, body.Sessions)
	assert.Empty(t, body.Sessions)
}

func TestServer_GetSession(t *testing.T) {
	srv, store := newTestServer(t)
	state := domain.NewSessionState("s1")
	state.CurrentIndex = 3
	state.Signals = append(state.Signals, domain.Signal{QuestionID: 1, Evasive: true})
	require.NoError(t, store.Save(context.Background(), "s1", state))

	resp, err := http.Get(srv.URL + "/sessions/s1")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var loaded domain.SessionState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&loaded))
	assert.Equal(t, 3, loaded.CurrentIndex)
	require.Len(t, loaded.Signals, 1)
	assert.True(t, loaded.Signals[0].Evasive)
}

func TestServer_GetSessionNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/sessions/missing")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
