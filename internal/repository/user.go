// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/oliverandrich/school-auth/internal/models"
)

const userColumns = `id, name, email, username, password_hash, is_verified, is_active, created_at, updated_at, deleted_at`

// CreateUser inserts u and returns the stored record. ID and timestamps are
// assigned here.
func (r *Repository) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	u.DeletedAt = nil

	err := r.db.GetContext(ctx, &u.ID, r.q(
		`INSERT INTO users (name, email, username, password_hash, is_verified, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		u.Name, u.Email, u.Username, u.PasswordHash, u.IsVerified, u.IsActive, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return models.User{}, wrapUserWriteError(err)
	}
	return u, nil
}

// GetUserByID retrieves a user by ID within scope.
func (r *Repository) GetUserByID(ctx context.Context, id int64, scope Scope) (models.User, error) {
	var u models.User
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = ? AND %s`, userColumns, scope.Where("deleted_at"))
	if err := r.db.GetContext(ctx, &u, r.q(query), id); err != nil {
		return models.User{}, wrapError(err)
	}
	return u, nil
}

// GetUserByEmail retrieves a user by email within scope. With Deleted or All
// several rows may match; the most recent one is returned.
func (r *Repository) GetUserByEmail(ctx context.Context, email string, scope Scope) (models.User, error) {
	var u models.User
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = ? AND %s ORDER BY id DESC LIMIT 1`,
		userColumns, scope.Where("deleted_at"))
	if err := r.db.GetContext(ctx, &u, r.q(query), email); err != nil {
		return models.User{}, wrapError(err)
	}
	return u, nil
}

// GetUserByEmailWithRoles retrieves an active user by email together with
// the names of its roles.
func (r *Repository) GetUserByEmailWithRoles(ctx context.Context, email string) (models.User, []string, error) {
	u, err := r.GetUserByEmail(ctx, email, Active)
	if err != nil {
		return models.User{}, nil, err
	}
	roles, err := r.GetRoleNames(ctx, u.ID)
	if err != nil {
		return models.User{}, nil, err
	}
	return u, roles, nil
}

// ListUsers returns users within scope ordered by ID.
func (r *Repository) ListUsers(ctx context.Context, scope Scope) ([]models.User, error) {
	var users []models.User
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY id`, userColumns, scope.Where("deleted_at"))
	if err := r.db.SelectContext(ctx, &users, r.q(query)); err != nil {
		return nil, err
	}
	return users, nil
}

// EmailExists reports whether an active user owns email.
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	query := fmt.Sprintf(`SELECT count(*) FROM users WHERE email = ? AND %s`, Active.Where("deleted_at"))
	if err := r.db.GetContext(ctx, &count, r.q(query), email); err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateUser writes the mutable fields of u to the active row with u.ID and
// returns the stored record.
func (r *Repository) UpdateUser(ctx context.Context, u models.User) (models.User, error) {
	u.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, r.q(
		`UPDATE users SET name = ?, email = ?, username = ?, password_hash = ?, is_verified = ?, is_active = ?, updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL`),
		u.Name, u.Email, u.Username, u.PasswordHash, u.IsVerified, u.IsActive, u.UpdatedAt, u.ID)
	if err != nil {
		return models.User{}, wrapUserWriteError(err)
	}
	if err := expectAffected(res); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// SoftDeleteUser marks the active user with id as deleted.
func (r *Repository) SoftDeleteUser(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, r.q(
		`UPDATE users SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`),
		now, now, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// RestoreUser clears the deletion mark of a soft deleted user. It fails with
// ErrDuplicateEmail if the email has been taken again in the meantime.
func (r *Repository) RestoreUser(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.q(
		`UPDATE users SET deleted_at = NULL, updated_at = ? WHERE id = ? AND deleted_at IS NOT NULL`),
		time.Now().UTC(), id)
	if err != nil {
		return wrapUserWriteError(err)
	}
	return expectAffected(res)
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func expectAffected(res rowsAffecter) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
