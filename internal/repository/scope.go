// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownScope is returned by ParseScope for names other than active,
// deleted and all.
var ErrUnknownScope = errors.New("unknown scope")

// Scope filters soft-deletable rows by their deleted_at column.
type Scope int

const (
	// Active matches rows that are not soft deleted.
	Active Scope = iota
	// Deleted matches only soft deleted rows.
	Deleted
	// All matches every row.
	All
)

// Where returns the SQL condition for the scope on the given column.
func (s Scope) Where(column string) string {
	switch s {
	case Deleted:
		return column + " IS NOT NULL"
	case All:
		return "1 = 1"
	default:
		return column + " IS NULL"
	}
}

func (s Scope) String() string {
	switch s {
	case Deleted:
		return "deleted"
	case All:
		return "all"
	default:
		return "active"
	}
}

// ParseScope returns the scope named by s.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "active":
		return Active, nil
	case "deleted":
		return Deleted, nil
	case "all":
		return All, nil
	}
	return Active, fmt.Errorf("%w: %q", ErrUnknownScope, s)
}
