// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"codeberg.org/oliverandrich/school-auth/internal/appcontext"
	"codeberg.org/oliverandrich/school-auth/internal/apperror"
	"codeberg.org/oliverandrich/school-auth/internal/auth"
	"codeberg.org/oliverandrich/school-auth/internal/validation"
	"github.com/labstack/echo/v4"
)

// Envelope wraps every successful response body.
type Envelope struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Success bool   `json:"success"`
}

// respond writes data in the success envelope.
func respond(c echo.Context, status int, data any) error {
	return c.JSON(status, Envelope{Success: true, Data: data})
}

// normalizer is implemented by requests that clean up their input before
// validation.
type normalizer interface {
	normalize()
}

// bindAndValidate decodes the JSON body into req, normalizes and validates it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return apperror.WithStatus(apperror.KindValidation, http.StatusBadRequest, apperror.MsgInvalidBody).WithCause(err)
	}
	if n, ok := req.(normalizer); ok {
		n.normalize()
	}
	return validation.Validate(req)
}

// currentUserID returns the subject bound by the bearer gate.
func currentUserID(c echo.Context) (int64, error) {
	if cc, ok := c.(*appcontext.Context); ok {
		if id, ok := cc.UserID(); ok {
			return id, nil
		}
	}
	if id, ok := auth.UserID(c.Request().Context()); ok {
		return id, nil
	}
	return 0, apperror.Unauthorized(apperror.MsgInvalidToken)
}
