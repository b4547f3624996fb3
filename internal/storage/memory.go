package storage

import (
	"sort"
	"sync"

	"github.com/ducttapeprodigy/boilerplate/internal/model"
)

// MemoryStorage keeps everything in maps guarded by a single lock. Ids are
// assigned from counters starting at 1 and are never reused.
type MemoryStorage struct {
	mu         sync.RWMutex
	users      map[int]*model.User
	byUsername map[string]int
	items      map[int]*model.Item
	nextUserID int
	nextItemID int
}

// NewMemoryStorage creates an empty store
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		users:      make(map[int]*model.User),
		byUsername: make(map[string]int),
		items:      make(map[int]*model.Item),
		nextUserID: 1,
		nextItemID: 1,
	}
}

// CreateUser stores user and sets its ID
func (ms *MemoryStorage) CreateUser(user *model.User) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.byUsername[user.Username]; exists {
		return ErrUserExists
	}

	user.ID = ms.nextUserID
	ms.nextUserID++

	clone := *user
	ms.users[user.ID] = &clone
	ms.byUsername[user.Username] = user.ID
	return nil
}

// GetUserByUsername looks a user up by exact username
func (ms *MemoryStorage) GetUserByUsername(username string) (*model.User, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	id, ok := ms.byUsername[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	clone := *ms.users[id]
	return &clone, nil
}

// ListUsers returns all users ordered by ID
func (ms *MemoryStorage) ListUsers() ([]model.User, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	users := make([]model.User, 0, len(ms.users))
	for _, u := range ms.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// CreateItem stores item and sets its ID
func (ms *MemoryStorage) CreateItem(item *model.Item) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	item.ID = ms.nextItemID
	ms.nextItemID++

	ms.items[item.ID] = cloneItem(item)
	return nil
}

// GetItem retrieves an item by ID
func (ms *MemoryStorage) GetItem(id int) (*model.Item, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	item, ok := ms.items[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	return cloneItem(item), nil
}

// ListItemsByOwner returns the owner's items ordered by ID
func (ms *MemoryStorage) ListItemsByOwner(ownerID int) ([]model.Item, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	items := make([]model.Item, 0)
	for _, item := range ms.items {
		if item.OwnerID == ownerID {
			items = append(items, *cloneItem(item))
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// UpdateItem replaces the stored item with the same ID
func (ms *MemoryStorage) UpdateItem(item *model.Item) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.items[item.ID]; !ok {
		return ErrItemNotFound
	}
	ms.items[item.ID] = cloneItem(item)
	return nil
}

// DeleteItem removes an item
func (ms *MemoryStorage) DeleteItem(id int) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.items[id]; !ok {
		return ErrItemNotFound
	}
	delete(ms.items, id)
	return nil
}

// Close is a no-op
func (ms *MemoryStorage) Close() error {
	return nil
}

func cloneItem(item *model.Item) *model.Item {
	clone := *item
	if item.Description != nil {
		desc := *item.Description
		clone.Description = &desc
	}
	return &clone
}
