// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/oliverandrich/school-auth/internal/database"
	"codeberg.org/oliverandrich/school-auth/internal/models"
	"codeberg.org/oliverandrich/school-auth/internal/repository"
	"codeberg.org/oliverandrich/school-auth/internal/services/password"
	"codeberg.org/oliverandrich/school-auth/internal/services/token"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// TestSecret signs tokens in tests.
const TestSecret = "test-secret-do-not-use-in-production"

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// NewTestHasher returns a hasher with the minimum bcrypt cost.
func NewTestHasher(t *testing.T) *password.Hasher {
	t.Helper()
	h, err := password.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

// NewTestTokens returns a token service signing with TestSecret.
func NewTestTokens(t *testing.T) *token.Service {
	t.Helper()
	svc, err := token.NewService(token.Config{Secret: TestSecret})
	require.NoError(t, err)
	return svc
}

// NewTestUser creates an active user with the given email and password.
func NewTestUser(t *testing.T, repo *repository.Repository, email, plaintext string) models.User {
	t.Helper()
	hash, err := NewTestHasher(t).Hash(plaintext)
	require.NoError(t, err)

	user, err := repo.CreateUser(context.Background(), models.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	})
	require.NoError(t, err)
	return user
}

// NewTestRole creates a role and assigns it to the user.
func NewTestRole(t *testing.T, repo *repository.Repository, userID int64, name string) models.Role {
	t.Helper()
	ctx := context.Background()
	role, err := repo.EnsureRole(ctx, name)
	require.NoError(t, err)
	require.NoError(t, repo.AssignRole(ctx, userID, role.ID))
	return role
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewEchoContextWithHeaders creates an Echo context with custom headers.
func NewEchoContextWithHeaders(e *echo.Echo, method, path string, body io.Reader, headers map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, path string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}
