// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package models holds the persisted records and their public projections.
package models

import (
	"time"
)

// User is a credential record. Values are treated as immutable snapshots of
// a row; updates build a changed copy and write it back in one statement.
type User struct {
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
	Username     *string    `db:"username"`
	Name         string     `db:"name"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	ID           int64      `db:"id"`
	IsVerified   bool       `db:"is_verified"`
	IsActive     bool       `db:"is_active"`
}

// IsDeleted reports whether the record has been soft deleted.
func (u User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// Identity returns the public projection of u with the given role names.
func (u User) Identity(roles []string) Identity {
	if roles == nil {
		roles = []string{}
	}
	return Identity{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Username:   u.Username,
		IsVerified: u.IsVerified,
		Roles:      roles,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// Identity is the user as shown to API clients. It never carries the
// password hash.
type Identity struct {
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Username   *string   `json:"username"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Roles      []string  `json:"roles"`
	ID         int64     `json:"id"`
	IsVerified bool      `json:"is_verified"`
}
