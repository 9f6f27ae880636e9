// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/school-auth/internal/models"
	"github.com/samber/lo"
)

// EnsureRole returns the role named name, creating it if necessary.
func (r *Repository) EnsureRole(ctx context.Context, name string) (models.Role, error) {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, r.q(
		`INSERT INTO roles (name, created_at, updated_at) VALUES (?, ?, ?) ON CONFLICT (name) DO NOTHING`),
		name, now, now)
	if err != nil {
		return models.Role{}, err
	}
	return r.GetRoleByName(ctx, name)
}

// GetRoleByName retrieves a role by its unique name.
func (r *Repository) GetRoleByName(ctx context.Context, name string) (models.Role, error) {
	var role models.Role
	err := r.db.GetContext(ctx, &role, r.q(
		`SELECT id, name, description, created_at, updated_at FROM roles WHERE name = ?`), name)
	if err != nil {
		return models.Role{}, wrapError(err)
	}
	return role, nil
}

// AssignRole links a user to a role. Assigning an existing link is a no-op.
func (r *Repository) AssignRole(ctx context.Context, userID, roleID int64) error {
	_, err := r.db.ExecContext(ctx, r.q(
		`INSERT INTO role_users (user_id, role_id, created_at) VALUES (?, ?, ?) ON CONFLICT (user_id, role_id) DO NOTHING`),
		userID, roleID, time.Now().UTC())
	return err
}

// RevokeRole removes the link between a user and a role.
func (r *Repository) RevokeRole(ctx context.Context, userID, roleID int64) error {
	res, err := r.db.ExecContext(ctx, r.q(
		`DELETE FROM role_users WHERE user_id = ? AND role_id = ?`), userID, roleID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// GetUserRoles returns the roles of a user ordered by name.
func (r *Repository) GetUserRoles(ctx context.Context, userID int64) ([]models.Role, error) {
	var roles []models.Role
	err := r.db.SelectContext(ctx, &roles, r.q(
		`SELECT r.id, r.name, r.description, r.created_at, r.updated_at FROM roles r
		 JOIN role_users ru ON ru.role_id = r.id
		 WHERE ru.user_id = ?
		 ORDER BY r.name`), userID)
	if err != nil {
		return nil, err
	}
	return roles, nil
}

// GetRoleNames returns the sorted role names of a user.
func (r *Repository) GetRoleNames(ctx context.Context, userID int64) ([]string, error) {
	roles, err := r.GetUserRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	return lo.Map(roles, func(role models.Role, _ int) string { return role.Name }), nil
}
