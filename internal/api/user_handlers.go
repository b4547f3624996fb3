package api

import (
	"net/http"

	"github.com/ducttapeprodigy/boilerplate/internal/model"
)

// profile handles GET /users/profile
func (h *Handler) profile(w http.ResponseWriter, r *http.Request, user *model.User) {
	h.writeJSON(w, http.StatusOK, user)
}

// listUsers handles GET /admin/users
func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request, user *model.User) {
	if !user.IsAdmin() {
		h.writeError(w, http.StatusForbidden, CodeForbidden, "Admin access required")
		return
	}

	users, err := h.storage.ListUsers()
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, users)
}
