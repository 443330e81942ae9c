package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volnudge/internal/adapter/secondary/audio"
	"volnudge/internal/domain"
	"volnudge/internal/usecase"
)

func newTestServer(t *testing.T, sim *audio.Simulated, rateLimit int) http.Handler {
	t.Helper()
	cfg := domain.DefaultConfig().Remote
	cfg.Password = "4242"
	rc, err := usecase.NewRemoteControl(usecase.NewVolumeAdjuster(sim), nil, cfg)
	require.NoError(t, err)
	return NewServer(rc, "127.0.0.1:0", rateLimit).Handler()
}

func post(h http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func connect(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := post(h, "/api/connect", `{"password":"4242"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp tokenPayload
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestServer_VolumeFlow(t *testing.T) {
	sim := audio.NewSimulated(0.4, true)
	h := newTestServer(t, sim, 100)

	token := connect(t, h)

	rec := post(h, "/api/volume", `{"token":"`+token+`","delta":0.1}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	level, muted := sim.State()
	assert.Equal(t, 0.5, level)
	assert.False(t, muted)

	rec = post(h, "/api/ping", `{"token":"`+token+`"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = post(h, "/api/disconnect", `{"token":"`+token+`"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = post(h, "/api/volume", `{"token":"`+token+`","delta":0.1}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	level, _ = sim.State()
	assert.Equal(t, 0.5, level)
}

func TestServer_ConnectErrors(t *testing.T) {
	h := newTestServer(t, audio.NewSimulated(0.4, false), 100)

	rec := post(h, "/api/connect", `{"password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	connect(t, h)
	rec = post(h, "/api/connect", `{"password":"4242"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = post(h, "/api/connect", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_VolumeValidation(t *testing.T) {
	sim := audio.NewSimulated(0.4, false)
	h := newTestServer(t, sim, 100)
	token := connect(t, h)

	rec := post(h, "/api/volume", `{"token":"`+token+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(h, "/api/volume", `{"token":"`+token+`","delta":"up"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Zero(t, sim.Writes())
}

func TestServer_DeviceFailureIsSilent(t *testing.T) {
	sim := audio.NewSimulated(0.4, false)
	sim.SetAbsent(true)
	h := newTestServer(t, sim, 100)
	token := connect(t, h)

	rec := post(h, "/api/volume", `{"token":"`+token+`","delta":0.3}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestServer_MethodNotAllowed(t *testing.T) {
	h := newTestServer(t, audio.NewSimulated(0.4, false), 100)

	for _, path := range []string{"/api/connect", "/api/ping", "/api/disconnect", "/api/volume"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, path)
	}
}

func TestServer_RateLimit(t *testing.T) {
	h := newTestServer(t, audio.NewSimulated(0.4, false), 2)

	assert.Equal(t, http.StatusUnauthorized, post(h, "/api/connect", `{"password":"a"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, post(h, "/api/connect", `{"password":"b"}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, post(h, "/api/connect", `{"password":"4242"}`).Code)
}

type countingPower struct {
	shutdowns, restarts int
}

func (p *countingPower) Shutdown() error { p.shutdowns++; return nil }
func (p *countingPower) Restart() error  { p.restarts++; return nil }

func TestServer_PowerDisabled(t *testing.T) {
	h := newTestServer(t, audio.NewSimulated(0.5, false), 100)
	token := connect(t, h)

	rec := post(h, "/api/shutdown", `{"token":"`+token+`"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = post(h, "/api/restart", `{"token":"`+token+`"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestServer_PowerEnabled(t *testing.T) {
	power := &countingPower{}
	cfg := domain.DefaultConfig().Remote
	cfg.Password = "4242"
	cfg.AllowPower = true
	rc, err := usecase.NewRemoteControl(usecase.NewVolumeAdjuster(audio.NewSimulated(0.5, false)), power, cfg)
	require.NoError(t, err)
	h := NewServer(rc, "127.0.0.1:0", 100).Handler()

	rec := post(h, "/api/restart", `{"token":"stale"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, power.restarts)

	token := connect(t, h)
	rec = post(h, "/api/shutdown", `{"token":"`+token+`"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = post(h, "/api/restart", `{"token":"`+token+`"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, power.shutdowns)
	assert.Equal(t, 1, power.restarts)
}
