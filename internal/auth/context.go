// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth provides authentication context helpers.
package auth

import (
	"context"

	"codeberg.org/oliverandrich/school-auth/internal/ctxkeys"
	"codeberg.org/oliverandrich/school-auth/internal/services/token"
)

// WithClaims returns a copy of ctx carrying the verified claims.
func WithClaims(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, ctxkeys.Claims{}, claims)
}

// GetClaims returns the verified claims from the context, or nil if the
// request is not authenticated.
func GetClaims(ctx context.Context) *token.Claims {
	if claims, ok := ctx.Value(ctxkeys.Claims{}).(*token.Claims); ok {
		return claims
	}
	return nil
}

// UserID returns the authenticated user's ID.
func UserID(ctx context.Context) (int64, bool) {
	claims := GetClaims(ctx)
	if claims == nil {
		return 0, false
	}
	id, err := claims.SubjectID()
	if err != nil {
		return 0, false
	}
	return id, true
}
