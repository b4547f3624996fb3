package storage

import (
	"errors"
	"fmt"

	"github.com/ducttapeprodigy/boilerplate/internal/auth"
	"github.com/ducttapeprodigy/boilerplate/internal/model"
)

// SeedUser creates an active user unless the username is already taken.
// It reports whether a user was created.
func SeedUser(store Storage, username, email, password string) (bool, error) {
	if _, err := store.GetUserByUsername(username); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrUserNotFound) {
		return false, err
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("seeding %s: %w", username, err)
	}

	user := &model.User{
		Username:       username,
		Email:          email,
		HashedPassword: hashed,
		IsActive:       true,
	}
	if err := store.CreateUser(user); err != nil {
		if errors.Is(err, ErrUserExists) {
			return false, nil
		}
		return false, fmt.Errorf("seeding %s: %w", username, err)
	}
	return true, nil
}
