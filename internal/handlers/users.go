// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"strings"

	authsvc "codeberg.org/oliverandrich/school-auth/internal/services/auth"
	"github.com/labstack/echo/v4"
)

// UserHandlers serve the account of the authenticated user.
type UserHandlers struct {
	auth *authsvc.Service
}

// NewUsers creates a new UserHandlers instance.
func NewUsers(svc *authsvc.Service) *UserHandlers {
	return &UserHandlers{auth: svc}
}

// UpdateProfileRequest is the request body for PATCH /users/me.
type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=3,max=50"`
	Email *string `json:"email" validate:"omitempty,email"`
}

func (r *UpdateProfileRequest) normalize() {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		r.Name = &name
	}
	if r.Email != nil {
		email := authsvc.NormalizeEmail(*r.Email)
		r.Email = &email
	}
}

// ChangePasswordRequest is the request body for PUT /users/me/password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,maxbytes=72"`
}

// Me returns the identity of the authenticated user.
func (h *UserHandlers) Me(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	identity, err := h.auth.Profile(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, identity)
}

// UpdateMe changes name and email of the authenticated user.
func (h *UserHandlers) UpdateMe(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	identity, err := h.auth.UpdateProfile(c.Request().Context(), userID, authsvc.UpdateProfileParams{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, identity)
}

// ChangePassword replaces the password of the authenticated user.
func (h *UserHandlers) ChangePassword(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req ChangePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.auth.ChangePassword(c.Request().Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, Envelope{Success: true, Message: "Password updated"})
}

// DeleteMe soft deletes the authenticated user.
func (h *UserHandlers) DeleteMe(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	if err := h.auth.DeleteAccount(c.Request().Context(), userID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
