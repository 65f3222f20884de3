package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formsite/internal/logging"
	"github.com/goliatone/go-formsite/internal/settings"
	"github.com/goliatone/go-formsite/pkg/themes"
)

func testSettings(t *testing.T) settings.Settings {
	t.Helper()
	cfg, err := settings.Load(
		settings.WithEnvironment(settings.Test),
		settings.WithLookupEnv(func(string) (string, bool) { return "", false }),
		settings.WithFS(fstest.MapFS{}),
	)
	require.NoError(t, err)
	cfg.AllowedHosts = []string{"example.com"}
	return cfg
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestApplicationRoutes(t *testing.T) {
	stack, err := Wire(testSettings(t), logging.NewNop(), nil)
	require.NoError(t, err)
	defer stack.Close()
	h := stack.Handler

	health := serve(h, http.MethodGet, "http://example.com/healthz")
	assert.Equal(t, http.StatusOK, health.Code)
	assert.Equal(t, "ok", health.Body.String())

	page := serve(h, http.MethodGet, "http://example.com/")
	assert.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), `type="radio"`)
	assert.NotEmpty(t, page.Header().Get("Set-Cookie"))

	schema := serve(h, http.MethodGet, "http://example.com/api/schema")
	assert.Equal(t, http.StatusOK, schema.Code)

	metricsRec := serve(h, http.MethodGet, "http://example.com/metrics")
	require.Equal(t, http.StatusOK, metricsRec.Code)
	assert.Contains(t, metricsRec.Body.String(), "formsite_http_request_duration_seconds")

	missing := serve(h, http.MethodGet, "http://example.com/nope")
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestApplicationRejectsUnknownHosts(t *testing.T) {
	stack, err := Wire(testSettings(t), logging.NewNop(), nil)
	require.NoError(t, err)
	defer stack.Close()

	rec := serve(stack.Handler, http.MethodGet, "http://evil.test/")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApplicationLogsRequests(t *testing.T) {
	var buf bytes.Buffer
	stack, err := Wire(testSettings(t), logging.New(&buf, "info", "text"), nil)
	require.NoError(t, err)
	defer stack.Close()

	serve(stack.Handler, http.MethodGet, "http://example.com/healthz")
	assert.Contains(t, buf.String(), "path=/healthz")
	assert.Contains(t, buf.String(), "status=200")
}

func TestStaticServesBundleAndRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "site.css"), []byte("body{color:red}"), 0o644))
	media := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(media, "upload.txt"), []byte("uploaded"), 0o644))

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("next"))
	})
	h, err := Static(next, StaticConfig{
		StaticURL:  "/static",
		StaticRoot: root,
		MediaURL:   "/media/",
		MediaRoot:  media,
	})
	require.NoError(t, err)

	override := serve(h, http.MethodGet, "/static/site.css")
	require.Equal(t, http.StatusOK, override.Code)
	assert.Equal(t, "body{color:red}", override.Body.String())

	bundled := serve(h, http.MethodGet, "/static/formsite-vanilla.css")
	require.Equal(t, http.StatusOK, bundled.Code)
	assert.Contains(t, bundled.Header().Get("Content-Type"), "text/css")

	uploaded := serve(h, http.MethodGet, "/media/upload.txt")
	require.Equal(t, http.StatusOK, uploaded.Code)
	assert.Equal(t, "uploaded", uploaded.Body.String())

	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/static/").Code)
	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/static/missing.css").Code)
	assert.Equal(t, "next", serve(h, http.MethodGet, "/anything").Body.String())
}

func TestStaticWithoutMediaRootDelegates(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h, err := Static(next, StaticConfig{MediaURL: "/media/", Bundle: fstest.MapFS{"a.css": {Data: []byte("a")}}})
	require.NoError(t, err)

	assert.Equal(t, http.StatusTeapot, serve(h, http.MethodGet, "/media/upload.txt").Code)
	assert.Equal(t, "a", serve(h, http.MethodGet, "/static/a.css").Body.String())
}

func TestStaticRejectsOverlappingMounts(t *testing.T) {
	for _, mediaURL := range []string{"/assets/", "/assets", "/assets/uploads/", "/"} {
		_, err := Static(http.NotFoundHandler(), StaticConfig{
			StaticURL: "/assets/",
			MediaURL:  mediaURL,
			MediaRoot: t.TempDir(),
		})
		assert.ErrorIs(t, err, ErrMountConflict, "media url %q", mediaURL)
	}

	// Without a media root the media mount is never registered.
	_, err := Static(http.NotFoundHandler(), StaticConfig{StaticURL: "/assets/", MediaURL: "/assets/"})
	assert.NoError(t, err)
}

func TestWireRejectsOverlappingMounts(t *testing.T) {
	cfg := testSettings(t)
	cfg.StaticURL = "/assets/"
	cfg.MediaURL = "/assets/"
	cfg.MediaRoot = t.TempDir()

	_, err := Wire(cfg, logging.NewNop(), nil)
	assert.ErrorIs(t, err, ErrMountConflict)
}

func TestMountsOverlap(t *testing.T) {
	assert.True(t, MountsOverlap("/static/", "/static"))
	assert.True(t, MountsOverlap("/static/", "/static/media/"))
	assert.False(t, MountsOverlap("/static/", "/media/"))
	assert.False(t, MountsOverlap("/static/", "/staticfiles/"))
	assert.False(t, MountsOverlap("https://cdn.example.com/static/", "/static/"))
}

func TestWireRedisHealth(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	cfg := testSettings(t)
	cfg.StoreBackend = "redis"
	cfg.RedisAddr = mr.Addr()
	stack, err := Wire(cfg, logging.NewNop(), nil)
	require.NoError(t, err)
	defer stack.Close()

	assert.Equal(t, http.StatusOK, serve(stack.Handler, http.MethodGet, "http://example.com/healthz").Code)
	mr.Close()
	assert.Equal(t, http.StatusServiceUnavailable, serve(stack.Handler, http.MethodGet, "http://example.com/healthz").Code)
}

func TestWireRejectsUnknownBackends(t *testing.T) {
	cfg := testSettings(t)
	cfg.StoreBackend = "sqlite"
	_, err := Wire(cfg, logging.NewNop(), nil)
	assert.Error(t, err)

	cfg = testSettings(t)
	cfg.EmailBackend = "pigeon"
	_, err = Wire(cfg, logging.NewNop(), nil)
	assert.Error(t, err)

	cfg = testSettings(t)
	cfg.ThemeVariant = "neon"
	_, err = Wire(cfg, logging.NewNop(), nil)
	assert.ErrorIs(t, err, themes.ErrUnknownVariant)
}

func TestNewSetsReadHeaderTimeout(t *testing.T) {
	srv := New(":0", http.NotFoundHandler())
	assert.Equal(t, 5*time.Second, srv.ReadHeaderTimeout)
}

func TestRunStopsOnCancel(t *testing.T) {
	srv := New("127.0.0.1:0", http.NotFoundHandler())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, srv, time.Second, logging.NewNop()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestRunReportsListenErrors(t *testing.T) {
	srv := New("256.0.0.1:bad", http.NotFoundHandler())
	err := Run(context.Background(), srv, time.Second, nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, http.ErrServerClosed))
	assert.True(t, strings.HasPrefix(err.Error(), "server: listen"))
}
