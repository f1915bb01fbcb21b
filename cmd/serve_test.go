//go:build !integration

package main

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/sells-group/credit-cli/internal/config"
)

func setTestConfig(t *testing.T) {
	t.Helper()
	prev := cfg
	cfg = &config.Config{
		Pipeline: config.PipelineConfig{MaxRetries: 3, TimeoutSecs: 300},
		Upload: config.UploadConfig{
			MaxFileBytes: 1 << 20,
			AllowedExts:  []string{".pdf", ".txt", ".csv"},
		},
		Registry: config.RegistryConfig{Providers: []string{"receitaws", "brasilapi"}},
		Server:   config.ServerConfig{Port: 8080, RatePerMinute: 6000, RateBurst: 100},
	}
	t.Cleanup(func() { cfg = prev })
}

func TestRouter_Health(t *testing.T) {
	setTestConfig(t)
	router := newRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_Config(t *testing.T) {
	setTestConfig(t)
	router := newRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/config", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.EqualValues(t, 3, body["max_retries"])
	assert.EqualValues(t, 300, body["timeout_secs"])
}

func TestRouter_Analyze_NotMultipart(t *testing.T) {
	setTestConfig(t)
	router := newRouter(nil)

	req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewBufferString(`{"tax_id":"11222333000181"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func multipartRequest(t *testing.T, taxID string, files map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if taxID != "" {
		require.NoError(t, mw.WriteField("tax_id", taxID))
	}
	for name, content := range files {
		fw, err := mw.CreateFormFile("documents", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestRouter_Analyze_MissingTaxID(t *testing.T) {
	setTestConfig(t)
	router := newRouter(nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, multipartRequest(t, "", nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "tax_id is required", body["error"])
}

func TestRouter_Analyze_MalformedTaxID(t *testing.T) {
	setTestConfig(t)
	router := newRouter(nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, multipartRequest(t, "1234", nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "14 digits")
}

func TestRouter_Analyze_DisallowedExtension(t *testing.T) {
	setTestConfig(t)
	router := newRouter(nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, multipartRequest(t, "11222333000181", map[string]string{
		"malware.exe": "MZ",
	}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPerClientRateLimit(t *testing.T) {
	mw := perClientRateLimit(rate.Limit(1), 2)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	newReq := func(addr string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = addr
		return req
	}

	// Burst of 2 for the first client, then throttled.
	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, newReq("10.0.0.1:1234"))
		assert.Equal(t, http.StatusOK, rr.Code)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newReq("10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	// A different client has its own budget.
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, newReq("10.0.0.2:1234"))
	assert.Equal(t, http.StatusOK, rr.Code)
}
