// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"time"
)

type Role struct {
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
	Description *string   `db:"description" json:"description"`
	Name        string    `db:"name" json:"name"`
	ID          int64     `db:"id" json:"id"`
}
