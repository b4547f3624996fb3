package api

import (
	"net/http"
	"testing"

	"github.com/ducttapeprodigy/boilerplate/internal/model"
)

func createItem(t *testing.T, env *testEnv, token string, req model.ItemRequest) model.Item {
	t.Helper()
	w := env.do(t, http.MethodPost, "/items", token, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var item model.Item
	decodeBody(t, w, &item)
	return item
}

func TestHandler_ItemLifecycle(t *testing.T) {
	env := setupTestHandler(t, nil)
	token := env.tokenFor(t, "testuser")

	desc := "A test item"
	item := createItem(t, env, token, model.ItemRequest{Name: "Widget", Description: &desc, Price: 9.99})
	if item.ID != 1 || item.OwnerID != 1 || item.Name != "Widget" || item.Description == nil || *item.Description != desc {
		t.Errorf("Unexpected created item: %+v", item)
	}

	w := env.do(t, http.MethodGet, "/items/1", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	w = env.do(t, http.MethodPut, "/items/1", token, model.ItemRequest{Name: "Gadget", Price: 1.5})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var updated model.Item
	decodeBody(t, w, &updated)
	if updated.ID != 1 || updated.Name != "Gadget" || updated.Price != 1.5 || updated.Description != nil || updated.OwnerID != 1 {
		t.Errorf("Unexpected updated item: %+v", updated)
	}

	w = env.do(t, http.MethodGet, "/items", token, nil)
	var items []model.Item
	decodeBody(t, w, &items)
	if len(items) != 1 || items[0].Name != "Gadget" {
		t.Errorf("Unexpected item list: %+v", items)
	}

	w = env.do(t, http.MethodDelete, "/items/1", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var msg MessageResponse
	decodeBody(t, w, &msg)
	if msg.Message != "Item deleted successfully" {
		t.Errorf("Unexpected message %q", msg.Message)
	}

	w = env.do(t, http.MethodGet, "/items/1", token, nil)
	assertError(t, w, http.StatusNotFound, CodeNotFound, "Item not found")
}

func TestHandler_ListItems_Empty(t *testing.T) {
	env := setupTestHandler(t, nil)

	w := env.do(t, http.MethodGet, "/items", env.tokenFor(t, "testuser"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if got := w.Body.String(); got != "[]\n" {
		t.Errorf("Expected empty JSON array, got %q", got)
	}
}

func TestHandler_ItemOwnership(t *testing.T) {
	env := setupTestHandler(t, nil)
	owner := env.tokenFor(t, "testuser")
	other := env.tokenFor(t, model.AdminUsername)

	createItem(t, env, owner, model.ItemRequest{Name: "Mine", Price: 1})

	tests := []struct {
		method string
		body   any
		detail string
	}{
		{http.MethodGet, nil, "Not authorized to access this item"},
		{http.MethodPut, model.ItemRequest{Name: "Stolen"}, "Not authorized to update this item"},
		{http.MethodDelete, nil, "Not authorized to delete this item"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			w := env.do(t, tt.method, "/items/1", other, tt.body)
			assertError(t, w, http.StatusForbidden, CodeForbidden, tt.detail)
		})
	}

	w := env.do(t, http.MethodGet, "/items", other, nil)
	if w.Body.String() != "[]\n" {
		t.Errorf("Other user should not see the item, got %s", w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/items/1", owner, nil)
	var item model.Item
	decodeBody(t, w, &item)
	if item.Name != "Mine" {
		t.Errorf("Item was modified by another user: %+v", item)
	}
}

func TestHandler_ItemErrors(t *testing.T) {
	env := setupTestHandler(t, nil)
	token := env.tokenFor(t, "testuser")

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"non-integer id", http.MethodGet, "/items/abc", nil, http.StatusBadRequest, CodeBadRequest},
		{"missing item", http.MethodGet, "/items/99", nil, http.StatusNotFound, CodeNotFound},
		{"update missing", http.MethodPut, "/items/99", model.ItemRequest{Name: "x"}, http.StatusNotFound, CodeNotFound},
		{"delete missing", http.MethodDelete, "/items/99", nil, http.StatusNotFound, CodeNotFound},
		{"create without name", http.MethodPost, "/items", model.ItemRequest{Price: 1}, http.StatusBadRequest, CodeValidation},
		{"create negative price", http.MethodPost, "/items", model.ItemRequest{Name: "x", Price: -1}, http.StatusBadRequest, CodeValidation},
		{"create malformed", http.MethodPost, "/items", `[1,2]`, http.StatusBadRequest, CodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, tt.method, tt.path, token, tt.body)
			assertError(t, w, tt.wantStatus, tt.wantCode, "")
		})
	}
}

func TestHandler_ListItems_StorageFailure(t *testing.T) {
	store := newFailingStorage()
	env := setupTestHandler(t, store)
	store.failItems = true

	w := env.do(t, http.MethodGet, "/items", env.tokenFor(t, "testuser"), nil)
	assertError(t, w, http.StatusInternalServerError, CodeInternal, "Internal server error")
}
