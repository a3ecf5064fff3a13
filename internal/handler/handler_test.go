package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venturehub/internal/configs"
	"venturehub/internal/handler"
	"venturehub/internal/hub"
	"venturehub/internal/pkg/auth/jwt"
)

const (
	testJWTSecret  = "handler-test-secret"
	testServiceKey = "handler-test-service-key"
)

type jsonResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

func newTestServer(t *testing.T) (*httptest.Server, *hub.Hub) {
	t.Helper()

	cfg := &configs.AppConfig{
		Environment:       "test",
		JWTSecret:         testJWTSecret,
		ServiceKey:        testServiceKey,
		HeartbeatInterval: time.Second,
		SendQueueSize:     32,
		NodeID:            "test-node",
	}

	h := hub.New(hub.Options{
		HeartbeatInterval: cfg.HeartbeatInterval,
		SendQueueSize:     cfg.SendQueueSize,
		NodeID:            cfg.NodeID,
	})
	require.NoError(t, h.Start(context.Background()))

	srv := httptest.NewServer(handler.NewRouter(&handler.AppDeps{
		Hub:      h,
		Config:   cfg,
		Verifier: handler.NewJWTVerifier(cfg.JWTSecret),
	}))

	t.Cleanup(func() {
		srv.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = h.Stop(ctx)
	})

	return srv, h
}

func doJSON(t *testing.T, method, url string, body any, headers map[string]string) (*http.Response, jsonResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	httpResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer httpResp.Body.Close()

	var decoded jsonResponse
	require.NoError(t, json.NewDecoder(httpResp.Body).Decode(&decoded))
	return httpResp, decoded
}

func mintToken(t *testing.T, userID, name string) string {
	t.Helper()
	token, err := jwt.GenerateToken(&jwt.Claims{UserID: userID, Name: name}, testJWTSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	httpResp, body := doJSON(t, http.MethodGet, srv.URL+"/health", nil, nil)
	assert.Equal(t, http.StatusOK, httpResp.StatusCode)
	assert.Equal(t, 0, body.Code)
	assert.Equal(t, "ok", body.Data["status"])
}

func TestWSRejectsMissingAndInvalidTokens(t *testing.T) {
	srv, h := newTestServer(t)

	httpResp, body := doJSON(t, http.MethodGet, srv.URL+"/ws", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, httpResp.StatusCode)
	assert.Equal(t, 3001, body.Code)

	httpResp, body = doJSON(t, http.MethodGet, srv.URL+"/ws?token=bogus", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, httpResp.StatusCode)
	assert.Equal(t, 3001, body.Code)

	// A refused handshake must leave no trace in the registries.
	stats := h.Stats()
	assert.Equal(t, 0, stats.Connections)
	assert.Equal(t, 0, stats.Users)
}

func TestWSAcceptsTokenInQueryParameter(t *testing.T) {
	srv, h := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + mintToken(t, "u1", "Alice")
	ws, httpResp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if httpResp != nil && httpResp.Body != nil {
		httpResp.Body.Close()
	}
	defer ws.Close()

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := ws.ReadMessage()
	require.NoError(t, err)

	var f struct {
		Type string         `json:"type"`
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(payload, &f))
	assert.Equal(t, "CONNECTION_ESTABLISHED", f.Type)
	assert.Equal(t, "u1", f.Data["userId"])

	require.Eventually(t, func() bool { return h.Stats().Connections == 1 }, 2*time.Second, 20*time.Millisecond)
}

func TestWSAcceptsBearerHeader(t *testing.T) {
	srv, _ := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	header := http.Header{"Authorization": []string{"Bearer " + mintToken(t, "u2", "Bob")}}
	ws, httpResp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	if httpResp != nil && httpResp.Body != nil {
		httpResp.Body.Close()
	}
	ws.Close()
}

func TestServiceAPIRequiresServiceKey(t *testing.T) {
	srv, _ := newTestServer(t)

	httpResp, body := doJSON(t, http.MethodGet, srv.URL+"/api/stats", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, httpResp.StatusCode)
	assert.Equal(t, 3001, body.Code)

	httpResp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/stats", nil, map[string]string{"X-Service-Key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, httpResp.StatusCode)

	httpResp, body = doJSON(t, http.MethodGet, srv.URL+"/api/stats", nil, map[string]string{"X-Service-Key": testServiceKey})
	assert.Equal(t, http.StatusOK, httpResp.StatusCode)
	assert.Equal(t, 0, body.Code)
	assert.Contains(t, body.Data, "connections")
	assert.Contains(t, body.Data, "users")
	assert.Contains(t, body.Data, "rooms")
}

func TestNotifyUserValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	auth := map[string]string{"X-Service-Key": testServiceKey, "Content-Type": "application/json"}

	// Missing Content-Type is refused before decoding.
	_, body := doJSON(t, http.MethodPost, srv.URL+"/api/notify/user",
		map[string]any{"userId": "u1", "message": "hi"},
		map[string]string{"X-Service-Key": testServiceKey})
	assert.Equal(t, 1002, body.Code)

	_, body = doJSON(t, http.MethodPost, srv.URL+"/api/notify/user",
		map[string]any{"message": "no recipient"}, auth)
	assert.Equal(t, 1001, body.Code)

	_, body = doJSON(t, http.MethodPost, srv.URL+"/api/notify/user",
		map[string]any{"userId": "u1", "unexpected": true}, auth)
	assert.Equal(t, 1003, body.Code)

	// Notifying an offline user succeeds with zero deliveries.
	_, body = doJSON(t, http.MethodPost, srv.URL+"/api/notify/user",
		map[string]any{"userId": "offline-user", "title": "Hello", "message": "anyone home?"}, auth)
	assert.Equal(t, 0, body.Code)
	assert.Equal(t, float64(0), body.Data["delivered"])
}

func TestBroadcastEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	auth := map[string]string{"X-Service-Key": testServiceKey, "Content-Type": "application/json"}

	_, body := doJSON(t, http.MethodPost, srv.URL+"/api/broadcast", map[string]any{}, auth)
	assert.Equal(t, 1001, body.Code)

	_, body = doJSON(t, http.MethodPost, srv.URL+"/api/broadcast",
		map[string]any{"updateType": "feature_released", "data": map[string]any{"flag": "dark_mode"}}, auth)
	assert.Equal(t, 0, body.Code)
}
