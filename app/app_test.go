package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Black-And-White-Club/curling-club/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
events:
  - id: 0b7f3c1e-6f57-4d8e-a1f4-2c9d5e8a7b60
    title: Tuesday practice
    type: practice
    start: 2099-01-06 18:00
    end: 2099-01-06 20:00
    location: Sheet B
    capacity: 8
  - title: Winter spiel
    type: spiel
    start: 2099-02-14 09:00
    end: 2099-02-15 17:00
`

const practiceID = "0b7f3c1e-6f57-4d8e-a1f4-2c9d5e8a7b60"

func newTestApp(t *testing.T) (*App, *httptest.Server) {
	t.Helper()

	seed := filepath.Join(t.TempDir(), "events.yaml")
	require.NoError(t, os.WriteFile(seed, []byte(seedYAML), 0o600))

	cfg := &config.Config{
		HTTP:    config.HTTPConfig{ShutdownTimeout: 2 * time.Second},
		JWT:     config.JWTConfig{Secret: "test-secret", Issuer: "curling-club", DefaultTTL: time.Hour},
		Storage: config.StorageConfig{Driver: config.StorageMemory, SeedFile: seed},
		Events:  config.EventsConfig{Timezone: "UTC"},
		Observability: config.ObservabilityConfig{
			Environment: "development",
			LogLevel:    "error",
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	app, err := NewApp(ctx, cfg)
	require.NoError(t, err)

	go func() { _ = app.Router.Run(ctx) }()
	<-app.Router.Running()

	srv := httptest.NewServer(app.HTTPRouter)
	t.Cleanup(func() {
		srv.Close()
		cancel()
		_ = app.Close()
	})
	return app, srv
}

func call(t *testing.T, srv *httptest.Server, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func TestApp_SignUpRegisterAndTrialPractice(t *testing.T) {
	_, srv := newTestApp(t)

	status, body := call(t, srv, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name":     "Morgan Stone",
		"email":    "morgan@example.com",
		"password": "pebbled-ice",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var auth struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &auth))
	require.NotEmpty(t, auth.Token)

	status, body = call(t, srv, http.MethodGet, "/api/events?type=practice", "", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var list struct {
		Events []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"events"`
	}
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Events, 1)
	assert.Equal(t, practiceID, list.Events[0].ID)

	status, _ = call(t, srv, http.MethodPost, "/api/events/"+practiceID+"/registration", "", map[string]string{"mode": "self"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = call(t, srv, http.MethodPost, "/api/events/"+practiceID+"/registration", auth.Token, map[string]string{"mode": "self"})
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = call(t, srv, http.MethodGet, "/api/events/"+practiceID+"/registration", auth.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"event_id":"`+practiceID+`","registered":true}`, string(body))

	// The trial practice is used by the user module once the registration
	// message has been handled.
	assert.Eventually(t, func() bool {
		status, body := call(t, srv, http.MethodGet, "/api/me", auth.Token, nil)
		if status != http.StatusOK {
			return false
		}
		var profile struct {
			PracticesLeft int `json:"practices_left"`
		}
		return json.Unmarshal(body, &profile) == nil && profile.PracticesLeft == 1
	}, 5*time.Second, 20*time.Millisecond)
}

func TestApp_Endpoints(t *testing.T) {
	_, srv := newTestApp(t)

	status, body := call(t, srv, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", string(body))

	status, _ = call(t, srv, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = call(t, srv, http.MethodGet, "/api/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status, "an invalid token reads as signed out")

	status, _ = call(t, srv, http.MethodGet, "/api/events", "", nil)
	require.Equal(t, http.StatusOK, status)

	status, body = call(t, srv, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, strings.Contains(string(body), "curling_club_operation_attempts_total"), "operation metrics are exported")
}
