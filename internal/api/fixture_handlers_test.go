package api

import (
	"bytes"
	"net/http"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ducttapeprodigy/boilerplate/internal/fixture"
)

func TestHandler_Fixtures(t *testing.T) {
	env := setupTestHandler(t, nil)
	token := env.tokenFor(t, "testuser")

	w := env.do(t, http.MethodGet, "/fixtures?roots=2&depth=3&children=2&seed=42", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %q", ct)
	}

	records, err := fixture.Decode(w.Body, fixture.FormatJSON)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	want, err := fixture.NewGenerator(fixture.WithSeed(42)).Generate(2, 3, 2)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(records) != len(want) || records[0].ObjectID != want[0].ObjectID {
		t.Errorf("Seeded response should match a seeded generator")
	}
	if got := w.Header().Get("X-Fixture-Records"); got != strconv.Itoa(len(records)) {
		t.Errorf("X-Fixture-Records = %q, want %d", got, len(records))
	}
	if got := testutil.ToFloat64(env.metrics.FixturesGeneratedTotal.WithLabelValues("api", "ok")); got != 1 {
		t.Errorf("Expected one fixture set counted, got %v", got)
	}
}

func TestHandler_Fixtures_Defaults(t *testing.T) {
	env := setupTestHandler(t, nil)

	w := env.do(t, http.MethodGet, "/fixtures?seed=1", env.tokenFor(t, "testuser"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	records, err := fixture.Decode(w.Body, fixture.FormatJSON)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if s := fixture.Summarize(records); s.Roots != 3 || s.MaxDepth > 4 {
		t.Errorf("Expected default 3 roots and depth <= 4, got %+v", s)
	}
}

func TestHandler_Fixtures_YAML(t *testing.T) {
	env := setupTestHandler(t, nil)

	w := env.do(t, http.MethodGet, "/fixtures?roots=1&depth=2&seed=3&format=yaml", env.tokenFor(t, "testuser"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("Expected application/yaml, got %q", ct)
	}
	records, err := fixture.Decode(bytes.NewReader(w.Body.Bytes()), fixture.FormatYAML)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(records) == 0 || records[0].Kind != fixture.KindDatacenter {
		t.Errorf("Unexpected YAML records: %+v", records)
	}
}

func TestHandler_Fixtures_Errors(t *testing.T) {
	env := setupTestHandler(t, nil, WithMaxRecords(10))
	token := env.tokenFor(t, "testuser")

	tests := []struct {
		name  string
		query string
	}{
		{"negative roots", "roots=-1"},
		{"zero depth", "depth=0"},
		{"negative children", "children=-2"},
		{"not a number", "roots=many"},
		{"unknown format", "format=xml"},
		{"record cap", "roots=20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/fixtures?"+tt.query, token, nil)
			assertError(t, w, http.StatusBadRequest, CodeBadRequest, "")
		})
	}

	if got := testutil.ToFloat64(env.metrics.FixturesGeneratedTotal.WithLabelValues("api", "error")); got != 1 {
		t.Errorf("Expected the capped request counted as an error, got %v", got)
	}
}

func TestHandler_Fixtures_RequiresAuth(t *testing.T) {
	env := setupTestHandler(t, nil)

	w := env.do(t, http.MethodGet, "/fixtures", "", nil)
	assertError(t, w, http.StatusUnauthorized, CodeUnauthorized, "Could not validate credentials")
}
