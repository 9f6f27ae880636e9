// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package appcontext_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/oliverandrich/school-auth/internal/appcontext"
	"codeberg.org/oliverandrich/school-auth/internal/services/token"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContext_UserID(t *testing.T) {
	ctx := &appcontext.Context{Claims: &token.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "123"}}}

	id, ok := ctx.UserID()

	assert.True(t, ok)
	assert.Equal(t, int64(123), id)
}

func TestContext_UserID_Nil(t *testing.T) {
	ctx := &appcontext.Context{}

	_, ok := ctx.UserID()

	assert.False(t, ok)
}

func TestMiddleware_WrapsContext(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen echo.Context
	handler := appcontext.Middleware()(func(c echo.Context) error {
		seen = c
		return nil
	})

	require.NoError(t, handler(c))
	cc, ok := seen.(*appcontext.Context)
	require.True(t, ok)
	assert.Nil(t, cc.Claims)

	// Wrapping twice keeps the existing context.
	require.NoError(t, appcontext.Middleware()(func(c echo.Context) error {
		assert.Same(t, cc, c)
		return nil
	})(cc))
}
