package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ducttapeprodigy/boilerplate/internal/model"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func init() {
	BcryptCost = bcrypt.MinCost
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("testpassword")
	require.NoError(t, err)
	assert.NotEqual(t, "testpassword", hash)

	assert.True(t, VerifyPassword(hash, "testpassword"))
	assert.False(t, VerifyPassword(hash, "wrongpassword"))
	assert.False(t, VerifyPassword("", "testpassword"))
	assert.False(t, VerifyPassword(hash, ""))

	other, err := HashPassword("testpassword")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "hashes should be salted")
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := HashPassword("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestNewTokenManager(t *testing.T) {
	_, err := NewTokenManager("short", time.Minute)
	assert.ErrorIs(t, err, ErrShortSecret)

	m, err := NewTokenManager(testSecret, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenDuration, m.TokenDuration())
}

func TestTokenManager_IssueValidate(t *testing.T) {
	m, err := NewTokenManager(testSecret, time.Minute)
	require.NoError(t, err)

	token, expiresAt, err := m.Issue("testuser")
	require.NoError(t, err)
	assert.Equal(t, 3, len(strings.Split(token, ".")))
	assert.WithinDuration(t, time.Now().Add(time.Minute), expiresAt, 5*time.Second)

	username, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "testuser", username)

	_, _, err = m.Issue("")
	assert.ErrorIs(t, err, ErrEmptyUsername)
}

func TestTokenManager_Expired(t *testing.T) {
	m, err := NewTokenManager(testSecret, time.Minute)
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := m.Issue("testuser")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenManager_Invalid(t *testing.T) {
	m, err := NewTokenManager(testSecret, time.Minute)
	require.NoError(t, err)
	other, err := NewTokenManager(strings.Repeat("x", 32), time.Minute)
	require.NoError(t, err)

	foreign, _, err := other.Issue("testuser")
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "testuser",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"wrong secret", foreign},
		{"missing subject", noSubject},
		{"missing expiry", noExpiry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Validate(tt.token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidToken), "got %v", err)
		})
	}
}

func TestTokenManager_RejectsOtherAlgorithms(t *testing.T) {
	m, err := NewTokenManager(testSecret, time.Minute)
	require.NoError(t, err)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "testuser",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = m.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserContext(t *testing.T) {
	_, ok := UserFromContext(context.Background())
	assert.False(t, ok)

	user := &model.User{ID: 1, Username: "testuser"}
	got, ok := UserFromContext(WithUser(context.Background(), user))
	require.True(t, ok)
	assert.Equal(t, user, got)
}
