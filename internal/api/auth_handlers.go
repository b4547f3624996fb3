package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ducttapeprodigy/boilerplate/internal/auth"
	"github.com/ducttapeprodigy/boilerplate/internal/log"
	"github.com/ducttapeprodigy/boilerplate/internal/model"
	"github.com/ducttapeprodigy/boilerplate/internal/storage"
)

// register handles POST /auth/register
func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if err := validateStruct(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	// the admin account is only ever created by startup seeding
	if strings.EqualFold(req.Username, model.AdminUsername) {
		h.writeError(w, http.StatusBadRequest, CodeBadRequest, "Username already registered")
		return
	}

	if _, err := h.storage.GetUserByUsername(req.Username); err == nil {
		h.writeError(w, http.StatusBadRequest, CodeBadRequest, "Username already registered")
		return
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		h.internalError(w, r, err)
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	user := &model.User{
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashed,
		IsActive:       true,
	}
	if err := h.storage.CreateUser(user); err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			h.writeError(w, http.StatusBadRequest, CodeBadRequest, "Username already registered")
			return
		}
		h.internalError(w, r, err)
		return
	}

	h.metrics.ObserveRegistration()
	log.Info("User registered", "username", user.Username, "id", user.ID)
	h.writeJSON(w, http.StatusCreated, MessageResponse{Message: "User created successfully"})
}

// login handles POST /auth/login
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if err := validateStruct(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	user, err := h.storage.GetUserByUsername(req.Username)
	if err != nil && !errors.Is(err, storage.ErrUserNotFound) {
		h.internalError(w, r, err)
		return
	}
	if user == nil || !auth.VerifyPassword(user.HashedPassword, req.Password) {
		h.metrics.ObserveLogin(false)
		log.Warn("Failed login attempt", "username", req.Username)
		h.unauthorized(w, "Incorrect username or password")
		return
	}

	token, _, err := h.tokens.Issue(user.Username)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	h.metrics.ObserveLogin(true)
	log.Info("User logged in", "username", user.Username)
	h.writeJSON(w, http.StatusOK, model.Token{AccessToken: token, TokenType: auth.TokenType})
}

// authedHandler is a handler that runs with the authenticated user
type authedHandler func(w http.ResponseWriter, r *http.Request, user *model.User)

// requireUser resolves the bearer token to an active user before calling
// next
func (h *Handler) requireUser(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			h.unauthorized(w, "Could not validate credentials")
			return
		}

		username, err := h.tokens.Validate(token)
		if err != nil {
			log.Debug("Rejected token", "path", r.URL.Path, "error", err)
			h.unauthorized(w, "Could not validate credentials")
			return
		}

		user, err := h.storage.GetUserByUsername(username)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				h.unauthorized(w, "Could not validate credentials")
				return
			}
			h.internalError(w, r, err)
			return
		}
		if !user.IsActive {
			h.writeError(w, http.StatusBadRequest, CodeBadRequest, "Inactive user")
			return
		}

		next(w, r.WithContext(auth.WithUser(r.Context(), user)), user)
	}
}

func (h *Handler) unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	h.writeError(w, http.StatusUnauthorized, CodeUnauthorized, detail)
}

// bearerToken extracts the token from "Authorization: Bearer <token>"
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
