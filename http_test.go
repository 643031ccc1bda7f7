package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doJSON(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestHTTP_sessionLifecycle(t *testing.T) {
	h := newHTTPHandler(newTestServer(), []string{"*"})

	rec, opened := doJSON(t, h, http.MethodPost, "/sessions", map[string]any{
		"payload": map[string]any{"guestCount": 2},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	id, _ := opened["session"].(string)
	require.NotEmpty(t, id)

	rec, added := doJSON(t, h, http.MethodPost, "/sessions/"+id+"/commands", map[string]any{
		"type":    "AddProduct",
		"payload": map[string]any{"product": map[string]any{"sku": "x1", "name": "Torta", "price": 2500}},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, added["instanceId"])
	form := added["form"].(map[string]any)
	assert.Equal(t, "1250", form["cuotaAmount"])

	rec, got := doJSON(t, h, http.MethodGet, "/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, got["instances"], 1)

	rec, closed := doJSON(t, h, http.MethodDelete, "/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, closed["closed"])

	rec, missing := doJSON(t, h, http.MethodGet, "/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", missing["code"])
}

func TestHTTP_openWithEmptyBody(t *testing.T) {
	h := newHTTPHandler(newTestServer(), []string{"*"})

	req := httptest.NewRequest(http.MethodPost, "/sessions", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestHTTP_badRequests(t *testing.T) {
	h := newHTTPHandler(newTestServer(), []string{"*"})
	_, opened := doJSON(t, h, http.MethodPost, "/sessions", nil)
	id := opened["session"].(string)

	rec, body := doJSON(t, h, http.MethodPost, "/sessions/"+id+"/commands", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ARGUMENT", body["code"])

	rec, _ = doJSON(t, h, http.MethodPost, "/sessions/"+id+"/commands", map[string]any{"type": "Explode"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+id+"/commands", bytes.NewBufferString("{not json"))
	raw := httptest.NewRecorder()
	h.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestHTTP_healthz(t *testing.T) {
	h := newHTTPHandler(newTestServer(), []string{"*"})
	rec, body := doJSON(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SERVING", body["status"])
}

func TestHTTP_cors(t *testing.T) {
	h := newHTTPHandler(newTestServer(), []string{"https://eventos.example.com"})

	req := httptest.NewRequest(http.MethodOptions, "/sessions", nil)
	req.Header.Set("Origin", "https://eventos.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://eventos.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
