// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package appcontext provides the custom Echo context.
package appcontext

import (
	"codeberg.org/oliverandrich/school-auth/internal/services/token"
	"github.com/labstack/echo/v4"
)

// Context is a custom Echo context with typed request-scoped fields.
type Context struct {
	echo.Context
	Claims *token.Claims // nil until the bearer gate accepted the request
}

// UserID returns the authenticated user's ID.
func (c *Context) UserID() (int64, bool) {
	if c.Claims == nil {
		return 0, false
	}
	id, err := c.Claims.SubjectID()
	if err != nil {
		return 0, false
	}
	return id, true
}

// Middleware wraps every Echo context in a *Context.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := c.(*Context); ok {
				return next(c)
			}
			return next(&Context{Context: c})
		}
	}
}
