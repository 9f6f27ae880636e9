// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package repository implements persistence for users and roles with sqlx.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vinovest/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when an active user already owns the email.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrDuplicateUsername is returned when an active user already owns the username.
	ErrDuplicateUsername = errors.New("username already exists")
)

const pgUniqueViolation = "23505"

// Repository wraps sqlx for database operations.
type Repository struct {
	db *sqlx.DB
}

// New creates a new Repository instance.
func New(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Ping checks that the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// q rebinds ? placeholders for the connected driver.
func (r *Repository) q(query string) string {
	return r.db.Rebind(query)
}

// wrapError converts driver errors to repository errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// wrapUserWriteError maps unique violations on the users table.
func wrapUserWriteError(err error) error {
	detail, ok := uniqueViolation(err)
	if !ok {
		return wrapError(err)
	}
	if strings.Contains(detail, "username") {
		return errors.Join(ErrDuplicateUsername, err)
	}
	return errors.Join(ErrDuplicateEmail, err)
}

// uniqueViolation reports whether err is a unique constraint failure in
// either supported driver, and returns the constraint detail.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName + " " + pgErr.Detail, pgErr.Code == pgUniqueViolation
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		switch {
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return sqliteErr.Error(), true
		case code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), "UNIQUE"):
			return sqliteErr.Error(), true
		}
	}

	return "", false
}
