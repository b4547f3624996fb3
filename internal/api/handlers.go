package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/ducttapeprodigy/boilerplate/internal/auth"
	"github.com/ducttapeprodigy/boilerplate/internal/log"
	"github.com/ducttapeprodigy/boilerplate/internal/metrics"
	"github.com/ducttapeprodigy/boilerplate/internal/storage"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

// Error codes carried in the "error" field of every error response
const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeInternal     = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

// MessageResponse is a plain acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
}

// Handler handles HTTP requests
type Handler struct {
	storage    storage.Storage
	tokens     *auth.TokenManager
	metrics    *metrics.Metrics
	maxRecords int
}

// HandlerOption configures a Handler
type HandlerOption func(*Handler)

// WithMetrics records login, registration and fixture metrics
func WithMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *Handler) { h.metrics = m }
}

// WithMaxRecords caps the size of a generated fixture forest
func WithMaxRecords(n int) HandlerOption {
	return func(h *Handler) { h.maxRecords = n }
}

// NewHandler creates a new API handler
func NewHandler(s storage.Storage, tokens *auth.TokenManager, opts ...HandlerOption) *Handler {
	h := &Handler{storage: s, tokens: tokens}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.root)
	mux.HandleFunc("GET /health", h.health)

	// Auth
	mux.HandleFunc("POST /auth/register", h.register)
	mux.HandleFunc("POST /auth/login", h.login)

	// Users
	mux.HandleFunc("GET /users/profile", h.requireUser(h.profile))
	mux.HandleFunc("GET /admin/users", h.requireUser(h.listUsers))

	// Items
	mux.HandleFunc("GET /items", h.requireUser(h.listItems))
	mux.HandleFunc("POST /items", h.requireUser(h.createItem))
	mux.HandleFunc("GET /items/{id}", h.requireUser(h.getItem))
	mux.HandleFunc("PUT /items/{id}", h.requireUser(h.updateItem))
	mux.HandleFunc("DELETE /items/{id}", h.requireUser(h.deleteItem))

	// Fixtures
	mux.HandleFunc("GET /fixtures", h.requireUser(h.generateFixtures))

	mux.HandleFunc("/", h.notFound)
}

// root handles GET /
func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the API",
		"status":  "healthy",
	})
}

// health handles GET /health
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, http.StatusNotFound, CodeNotFound, "Resource not found")
}

// decodeJSON reads a single JSON document from the request body
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			h.writeError(w, http.StatusRequestEntityTooLarge, CodeBadRequest, "Request body too large")
		case errors.Is(err, io.EOF):
			h.writeError(w, http.StatusBadRequest, CodeBadRequest, "Request body required")
		default:
			h.writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body")
		}
		return false
	}
	return true
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, code, detail string) {
	h.writeJSON(w, status, ErrorResponse{Detail: detail, Error: code})
}

// internalError logs the error and writes a generic 500 response
func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	log.Error("Internal server error", "method", r.Method, "path", r.URL.Path, "error", err)
	h.writeError(w, http.StatusInternalServerError, CodeInternal, "Internal server error")
}
