// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"codeberg.org/oliverandrich/school-auth/internal/apperror"
	"codeberg.org/oliverandrich/school-auth/internal/i18n"
	"github.com/labstack/echo/v4"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Details any    `json:"details,omitempty"`
	Error   string `json:"error"`
	Success bool   `json:"success"`
}

// ValidationDetails lists the invalid fields of a request.
type ValidationDetails struct {
	Fields []apperror.FieldError `json:"fields"`
}

// ErrorHandler renders every error returned by handlers and middleware into
// the error envelope. With showDetails the cause of internal errors is
// included in the response.
func ErrorHandler(showDetails bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		appErr := toAppError(err)
		ctx := c.Request().Context()

		if appErr.Kind == apperror.KindInternal {
			slog.ErrorContext(ctx, "internal_error",
				"error", appErr.Cause,
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
			)
		}

		resp := ErrorResponse{
			Error: i18n.Message(ctx, appErr.Msg.ID, appErr.Msg.Text),
		}
		switch {
		case len(appErr.Fields) > 0:
			resp.Details = ValidationDetails{Fields: appErr.Fields}
		case showDetails && appErr.Kind == apperror.KindInternal && appErr.Cause != nil:
			resp.Details = appErr.Cause.Error()
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(appErr.Status())
		} else {
			writeErr = c.JSON(appErr.Status(), resp)
		}
		if writeErr != nil {
			slog.ErrorContext(ctx, "error_response_failed", "error", writeErr)
		}
	}
}

func toAppError(err error) *apperror.Error {
	if appErr, ok := apperror.As(err); ok {
		return appErr
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		cause := he.Internal
		if cause == nil {
			cause = err
		}
		switch he.Code {
		case http.StatusNotFound:
			return apperror.NotFound().WithCause(cause)
		case http.StatusMethodNotAllowed:
			return apperror.WithStatus(apperror.KindNotFound, he.Code, apperror.MsgMethodNotAllowed).WithCause(cause)
		case http.StatusRequestEntityTooLarge:
			return apperror.WithStatus(apperror.KindValidation, he.Code, apperror.MsgBodyTooLarge).WithCause(cause)
		case http.StatusTooManyRequests:
			return apperror.TooManyRequests().WithCause(cause)
		case http.StatusUnauthorized:
			return apperror.Unauthorized(apperror.MsgInvalidToken).WithCause(cause)
		case http.StatusForbidden:
			return apperror.Forbidden().WithCause(cause)
		case http.StatusBadRequest, http.StatusUnsupportedMediaType:
			return apperror.WithStatus(apperror.KindValidation, he.Code, apperror.MsgInvalidBody).WithCause(cause)
		}
	}

	return apperror.Internal(err)
}
