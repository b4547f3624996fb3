package api

import (
	"errors"

	"github.com/ducttapeprodigy/boilerplate/internal/model"
	"github.com/ducttapeprodigy/boilerplate/internal/storage"
)

var errStorageDown = errors.New("storage unavailable")

// failingStorage wraps a real store and fails item reads on demand
type failingStorage struct {
	*storage.MemoryStorage
	failItems bool
	failUsers bool
}

func newFailingStorage() *failingStorage {
	return &failingStorage{MemoryStorage: storage.NewMemoryStorage()}
}

func (f *failingStorage) ListItemsByOwner(ownerID int) ([]model.Item, error) {
	if f.failItems {
		return nil, errStorageDown
	}
	return f.MemoryStorage.ListItemsByOwner(ownerID)
}

func (f *failingStorage) ListUsers() ([]model.User, error) {
	if f.failUsers {
		return nil, errStorageDown
	}
	return f.MemoryStorage.ListUsers()
}
