package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ducttapeprodigy/boilerplate/internal/log"
	"github.com/ducttapeprodigy/boilerplate/internal/model"
	"github.com/ducttapeprodigy/boilerplate/internal/storage"
)

// listItems handles GET /items
func (h *Handler) listItems(w http.ResponseWriter, r *http.Request, user *model.User) {
	items, err := h.storage.ListItemsByOwner(user.ID)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, items)
}

// createItem handles POST /items
func (h *Handler) createItem(w http.ResponseWriter, r *http.Request, user *model.User) {
	var req model.ItemRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if err := validateStruct(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	item := &model.Item{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		OwnerID:     user.ID,
	}
	if err := h.storage.CreateItem(item); err != nil {
		h.internalError(w, r, err)
		return
	}

	log.Debug("Item created", "id", item.ID, "owner", user.Username)
	h.writeJSON(w, http.StatusCreated, item)
}

// getItem handles GET /items/{id}
func (h *Handler) getItem(w http.ResponseWriter, r *http.Request, user *model.User) {
	item, ok := h.ownedItem(w, r, user, "access")
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, item)
}

// updateItem handles PUT /items/{id}
func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request, user *model.User) {
	item, ok := h.ownedItem(w, r, user, "update")
	if !ok {
		return
	}

	var req model.ItemRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if err := validateStruct(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	item.Name = req.Name
	item.Description = req.Description
	item.Price = req.Price

	if err := h.storage.UpdateItem(item); err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			h.writeError(w, http.StatusNotFound, CodeNotFound, "Item not found")
			return
		}
		h.internalError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, item)
}

// deleteItem handles DELETE /items/{id}
func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request, user *model.User) {
	item, ok := h.ownedItem(w, r, user, "delete")
	if !ok {
		return
	}

	if err := h.storage.DeleteItem(item.ID); err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			h.writeError(w, http.StatusNotFound, CodeNotFound, "Item not found")
			return
		}
		h.internalError(w, r, err)
		return
	}

	log.Debug("Item deleted", "id", item.ID, "owner", user.Username)
	h.writeJSON(w, http.StatusOK, MessageResponse{Message: "Item deleted successfully"})
}

// ownedItem loads the item named by the path and checks that user owns it.
// action completes the "Not authorized to ... this item" message.
func (h *Handler) ownedItem(w http.ResponseWriter, r *http.Request, user *model.User, action string) (*model.Item, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid item ID")
		return nil, false
	}

	item, err := h.storage.GetItem(id)
	if err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			h.writeError(w, http.StatusNotFound, CodeNotFound, "Item not found")
			return nil, false
		}
		h.internalError(w, r, err)
		return nil, false
	}

	if item.OwnerID != user.ID {
		h.writeError(w, http.StatusForbidden, CodeForbidden, "Not authorized to "+action+" this item")
		return nil, false
	}
	return item, true
}
