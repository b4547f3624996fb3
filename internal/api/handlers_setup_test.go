package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ducttapeprodigy/boilerplate/internal/auth"
	"github.com/ducttapeprodigy/boilerplate/internal/metrics"
	"github.com/ducttapeprodigy/boilerplate/internal/model"
	"github.com/ducttapeprodigy/boilerplate/internal/storage"
)

const testSecret = "test-secret-key-that-is-long-enough"

func init() {
	auth.BcryptCost = bcrypt.MinCost
}

type testEnv struct {
	store   storage.Storage
	tokens  *auth.TokenManager
	metrics *metrics.Metrics
	mux     *http.ServeMux
}

// setupTestHandler builds a handler over store (a fresh memory store when
// nil) with the demo user and admin seeded
func setupTestHandler(t *testing.T, store storage.Storage, opts ...HandlerOption) *testEnv {
	t.Helper()

	if store == nil {
		store = storage.NewMemoryStorage()
	}

	for _, name := range []string{"testuser", model.AdminUsername} {
		if _, err := storage.SeedUser(store, name, name+"@example.com", name+"password"); err != nil {
			t.Fatalf("SeedUser(%s) error = %v", name, err)
		}
	}
	return newTestEnv(t, store, opts...)
}

// newTestEnv builds a handler over store without seeding any account
func newTestEnv(t *testing.T, store storage.Storage, opts ...HandlerOption) *testEnv {
	t.Helper()

	tokens, err := auth.NewTokenManager(testSecret, time.Minute)
	if err != nil {
		t.Fatalf("NewTokenManager() error = %v", err)
	}

	m := metrics.New()
	handler := NewHandler(store, tokens, append([]HandlerOption{WithMetrics(m)}, opts...)...)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	return &testEnv{store: store, tokens: tokens, metrics: m, mux: mux}
}

func (e *testEnv) tokenFor(t *testing.T, username string) string {
	t.Helper()
	token, _, err := e.tokens.Issue(username)
	if err != nil {
		t.Fatalf("Issue(%s) error = %v", username, err)
	}
	return token
}

// do sends a request through the mux. body may be nil, a string, or a value
// to marshal.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		r = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, code, detail string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("Expected status %d, got %d: %s", status, w.Code, w.Body.String())
	}
	var resp ErrorResponse
	decodeBody(t, w, &resp)
	if resp.Error != code {
		t.Errorf("Expected error code %s, got %s", code, resp.Error)
	}
	if detail != "" && resp.Detail != detail {
		t.Errorf("Expected detail %q, got %q", detail, resp.Detail)
	}
}
