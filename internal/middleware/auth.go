// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package middleware provides the Echo middleware of the API.
package middleware

import (
	"log/slog"
	"strings"

	"codeberg.org/oliverandrich/school-auth/internal/appcontext"
	"codeberg.org/oliverandrich/school-auth/internal/apperror"
	"codeberg.org/oliverandrich/school-auth/internal/auth"
	"codeberg.org/oliverandrich/school-auth/internal/services/token"
	"github.com/labstack/echo/v4"
)

const bearerPrefix = "Bearer "

// AccessVerifier validates access tokens.
type AccessVerifier interface {
	VerifyAccess(raw string) (*token.Claims, error)
}

// BearerToken extracts the token from an Authorization header value. The
// scheme is matched case-sensitively and the token must not be empty.
func BearerToken(header string) (string, bool) {
	raw, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || raw == "" {
		return "", false
	}
	return raw, true
}

// RequireBearer rejects requests without a valid access token. Accepted
// claims are bound to the request context and, when available, to the
// *appcontext.Context.
func RequireBearer(verifier AccessVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return apperror.Unauthorized(apperror.MsgNoToken)
			}

			claims, err := verifier.VerifyAccess(raw)
			if err != nil {
				slog.Debug("token_rejected", "error", err, "path", c.Path())
				return apperror.Unauthorized(apperror.MsgInvalidToken).WithCause(err)
			}

			req := c.Request()
			c.SetRequest(req.WithContext(auth.WithClaims(req.Context(), claims)))
			if cc, ok := c.(*appcontext.Context); ok {
				cc.Claims = claims
			}

			return next(c)
		}
	}
}
