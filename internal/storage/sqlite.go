package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/ducttapeprodigy/boilerplate/internal/model"
)

//go:embed schema.sql
var schemaFS embed.FS

// memoryDSN opens a private in-memory database. It lives as long as the
// single pooled connection, so the pool is pinned to one connection.
const memoryDSN = "file::memory:?_pragma=foreign_keys(1)"

// SQLiteStorage implements Storage on an in-memory SQLite database
type SQLiteStorage struct {
	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteStorage opens a fresh database and applies migrations
func NewSQLiteStorage() (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", memoryDSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	ss := &SQLiteStorage{db: db}

	if err := ss.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	if err := ss.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return ss, nil
}

func (ss *SQLiteStorage) initSchema() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("reading schema: %w", err)
	}

	_, err = ss.db.Exec(string(schema))
	return err
}

// Close closes the database connection, discarding all data
func (ss *SQLiteStorage) Close() error {
	return ss.db.Close()
}

// CreateUser stores user and sets its ID
func (ss *SQLiteStorage) CreateUser(user *model.User) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	res, err := ss.db.Exec(`
		INSERT INTO users (username, email, hashed_password, is_active)
		VALUES (?, ?, ?, ?)
	`, user.Username, user.Email, user.HashedPassword, user.IsActive)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUserExists
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading user id: %w", err)
	}
	user.ID = int(id)
	return nil
}

// GetUserByUsername looks a user up by exact username
func (ss *SQLiteStorage) GetUserByUsername(username string) (*model.User, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	var user model.User
	err := ss.db.QueryRow(`
		SELECT id, username, email, hashed_password, is_active
		FROM users WHERE username = ?
	`, username).Scan(&user.ID, &user.Username, &user.Email, &user.HashedPassword, &user.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &user, nil
}

// ListUsers returns all users ordered by ID
func (ss *SQLiteStorage) ListUsers() ([]model.User, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	rows, err := ss.db.Query(`
		SELECT id, username, email, hashed_password, is_active
		FROM users ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.IsActive); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CreateItem stores item and sets its ID
func (ss *SQLiteStorage) CreateItem(item *model.Item) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	res, err := ss.db.Exec(`
		INSERT INTO items (name, description, price, owner_id)
		VALUES (?, ?, ?, ?)
	`, item.Name, nullString(item.Description), item.Price, item.OwnerID)
	if err != nil {
		return fmt.Errorf("inserting item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading item id: %w", err)
	}
	item.ID = int(id)
	return nil
}

// GetItem retrieves an item by ID
func (ss *SQLiteStorage) GetItem(id int) (*model.Item, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	item, err := scanItem(ss.db.QueryRow(`
		SELECT id, name, description, price, owner_id
		FROM items WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying item: %w", err)
	}
	return item, nil
}

// ListItemsByOwner returns the owner's items ordered by ID
func (ss *SQLiteStorage) ListItemsByOwner(ownerID int) ([]model.Item, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	rows, err := ss.db.Query(`
		SELECT id, name, description, price, owner_id
		FROM items WHERE owner_id = ? ORDER BY id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	items := make([]model.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItem replaces the stored item with the same ID
func (ss *SQLiteStorage) UpdateItem(item *model.Item) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	res, err := ss.db.Exec(`
		UPDATE items SET name = ?, description = ?, price = ?, owner_id = ?
		WHERE id = ?
	`, item.Name, nullString(item.Description), item.Price, item.OwnerID, item.ID)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return requireAffected(res, ErrItemNotFound)
}

// DeleteItem removes an item
func (ss *SQLiteStorage) DeleteItem(id int) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	res, err := ss.db.Exec("DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return requireAffected(res, ErrItemNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	var item model.Item
	var desc sql.NullString
	if err := row.Scan(&item.ID, &item.Name, &desc, &item.Price, &item.OwnerID); err != nil {
		return nil, err
	}
	if desc.Valid {
		item.Description = &desc.String
	}
	return &item, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
