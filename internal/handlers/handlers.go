// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package handlers implements the HTTP handlers of the API.
package handlers

import (
	"context"
	"net/http"

	"codeberg.org/oliverandrich/school-auth/internal/apperror"
	"github.com/labstack/echo/v4"
)

// Pinger checks the database connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers contains the public, unauthenticated handlers.
type Handlers struct {
	db Pinger
}

// New creates a new Handlers instance.
func New(db Pinger) *Handlers {
	return &Handlers{db: db}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	if h.db != nil {
		if err := h.db.Ping(c.Request().Context()); err != nil {
			return apperror.Internal(err)
		}
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
