package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ducttapeprodigy/boilerplate/internal/model"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("username already registered")
	ErrItemNotFound = errors.New("item not found")
)

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Storage holds users and their items. Implementations return copies, so
// callers may modify returned values freely.
type Storage interface {
	CreateUser(user *model.User) error
	GetUserByUsername(username string) (*model.User, error)
	ListUsers() ([]model.User, error)

	CreateItem(item *model.Item) error
	GetItem(id int) (*model.Item, error)
	ListItemsByOwner(ownerID int) ([]model.Item, error)
	UpdateItem(item *model.Item) error
	DeleteItem(id int) error

	Close() error
}

// NewStorage opens the named backend
func NewStorage(backend string) (Storage, error) {
	switch strings.ToLower(backend) {
	case "", BackendMemory:
		return NewMemoryStorage(), nil
	case BackendSQLite:
		return NewSQLiteStorage()
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
