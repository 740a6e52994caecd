package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recorre/indie-comments-cloud/internal/config"
)

type upstreamCapture struct {
	header http.Header
	method string
	path   string
	query  string
	body   string
}

func newProxyApp(upstreamURL, apiKey string) *fiber.App {
	handler := &ProxyHandler{
		Cfg: &config.Config{
			UpstreamBaseURL:  upstreamURL,
			UpstreamAPIKey:   apiKey,
			UpstreamInstance: "test_instance",
			HTTPTimeout:      5 * time.Second,
		},
		HTTP: &http.Client{Timeout: 5 * time.Second},
	}
	app := fiber.New()
	app.All("/api/proxy/*", handler.Forward)
	return app
}

func TestForwardStripsAndInjectsHeaders(t *testing.T) {
	var got upstreamCapture
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.header = r.Header.Clone()
		got.method = r.Method
		got.path = r.URL.Path
		got.query = r.URL.RawQuery
		raw, _ := io.ReadAll(r.Body)
		got.body = string(raw)
		w.Write([]byte(`{"status":"success","data":[]}`))
	}))
	defer srv.Close()

	app := newProxyApp(srv.URL, "server-key")

	req := httptest.NewRequest("GET", "/api/proxy/read/comments?thread_id=5&visible=1", nil)
	req.Header.Set("Origin", "https://attacker.example")
	req.Header.Set("Referer", "https://attacker.example/page")
	req.Header.Set("Sec-Fetch-Mode", "cors")
	req.Header.Set("If-None-Match", `"abc"`)
	req.Header.Set("Authorization", "Bearer caller-key")
	req.Header.Set("Cookie", "session=1")
	req.Header.Set("X-Request-Id", "req-7")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "/read/comments", got.path)
	assert.Contains(t, got.query, "thread_id=5")

	// Browser fetch metadata never reaches the upstream.
	assert.Empty(t, got.header.Get("Origin"))
	assert.Empty(t, got.header.Get("Referer"))
	assert.Empty(t, got.header.Get("Sec-Fetch-Mode"))
	assert.Empty(t, got.header.Get("If-None-Match"))

	// Benign headers pass through.
	assert.Equal(t, "session=1", got.header.Get("Cookie"))
	assert.Equal(t, "req-7", got.header.Get("X-Request-Id"))

	// Injected values always win over what the caller sent.
	assert.Equal(t, "Bearer server-key", got.header.Get("Authorization"))
	assert.Equal(t, "test_instance", got.header.Get("Instance"))
}

func TestForwardRelaysStatusAndBodyVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "max-age=60")
		w.Header().Set("X-Internal-Secret", "do-not-relay")
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte(`{"status":"error","message":"teapot"}`))
	}))
	defer srv.Close()

	app := newProxyApp(srv.URL, "server-key")

	resp, err := app.Test(httptest.NewRequest("GET", "/api/proxy/read/sites", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, `{"status":"error","message":"teapot"}`, string(raw))

	assert.Equal(t, "max-age=60", resp.Header.Get("Cache-Control"))
	assert.Empty(t, resp.Header.Get("X-Internal-Secret"))
}

func TestForwardSendsBodyForWrites(t *testing.T) {
	var got upstreamCapture
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		raw, _ := io.ReadAll(r.Body)
		got.body = string(raw)
		got.header = r.Header.Clone()
		w.Write([]byte(`{"status":"success","id":1}`))
	}))
	defer srv.Close()

	app := newProxyApp(srv.URL, "server-key")

	req := httptest.NewRequest("POST", "/api/proxy/create/threads",
		strings.NewReader(`{"site_id":3,"page_identifier":"/"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, `{"site_id":3,"page_identifier":"/"}`, got.body)
	assert.Equal(t, "application/json", got.header.Get("Content-Type"))
}

func TestForwardWithoutServerCredential(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream must not be called without a server credential")
	}))
	defer srv.Close()

	app := newProxyApp(srv.URL, "")

	resp, err := app.Test(httptest.NewRequest("GET", "/api/proxy/read/sites", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
