package httpapi

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"pebblely/internal/http/handlers"
	"pebblely/internal/processing"
	"pebblely/internal/providers/pebblely"
	"pebblely/internal/storage"
)

func newTestRouter(t *testing.T, opts Options) http.Handler {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	// No API key: every vendor call fails without touching the network.
	client := pebblely.NewClient(pebblely.Options{})
	app := handlers.NewApp(store, processing.NewProcessor(store, client, nil), client, nil, "http://localhost:8080", 1<<20)
	return NewRouter(app, opts)
}

func TestRouterHealthAndRequestID(t *testing.T) {
	h := newTestRouter(t, Options{})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestRouterFileTraversalIsNotFound(t *testing.T) {
	h := newTestRouter(t, Options{})

	for _, target := range []string{
		"/files/originals/..%2F..%2Fgo.mod",
		"/files/nowhere/a.png",
	} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
		if rr.Code != http.StatusNotFound {
			t.Fatalf("%s: status = %d", target, rr.Code)
		}
	}
}

func TestRouterIndexWithoutVendor(t *testing.T) {
	h := newTestRouter(t, Options{})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/credits", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("credits status = %d", rr.Code)
	}
}

func TestRouterRateLimitsProcessing(t *testing.T) {
	h := newTestRouter(t, Options{RateLimitPerMin: 1})

	post := func() int {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		_ = mw.Close()
		req := httptest.NewRequest(http.MethodPost, "/remove-background", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.RemoteAddr = "203.0.113.9:4000"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}
	if code := post(); code != http.StatusBadRequest {
		t.Fatalf("first status = %d", code)
	}
	if code := post(); code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d", code)
	}

	// Reads are not limited.
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/themes", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("themes status = %d", rr.Code)
		}
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	h := newTestRouter(t, Options{CORSAllowedOrigins: []string{"https://app.example"}})

	req := httptest.NewRequest(http.MethodOptions, "/upscale", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Fatalf("allow origin = %q", got)
	}
}
