package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorAggregate(t *testing.T) {
	m := NewMonitor()

	agg := m.Aggregate("ircbot")
	assert.True(t, agg.IsHealthy(), "empty monitor aggregates healthy")

	m.UpdateHealthy("connection", "connected")
	m.UpdateHealthy("bridge", "publishing")
	assert.True(t, m.Aggregate("ircbot").IsHealthy())

	m.UpdateDegraded("bridge", "reconnecting")
	agg = m.Aggregate("ircbot")
	assert.Equal(t, StateDegraded, agg.Status)
	assert.Len(t, agg.SubStatuses, 2)

	m.UpdateUnhealthy("connection", "disconnected")
	agg = m.Aggregate("ircbot")
	assert.Equal(t, StateUnhealthy, agg.Status)
	assert.False(t, agg.Healthy)

	got, ok := m.Get("connection")
	require.True(t, ok)
	assert.Equal(t, "disconnected", got.Message)
	_, ok = m.Get("missing")
	assert.False(t, ok)
}

func TestHandlerStatusCodes(t *testing.T) {
	m := NewMonitor()
	m.UpdateHealthy("connection", "connected")

	rec := httptest.NewRecorder()
	m.Handler("ircbot")(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var agg Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &agg))
	assert.Equal(t, "ircbot", agg.Component)

	m.UpdateUnhealthy("connection", "disconnected")
	rec = httptest.NewRecorder()
	m.Handler("ircbot")(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
