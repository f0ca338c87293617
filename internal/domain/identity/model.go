// Package identity manages application user accounts and authentication.
package identity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("usuario no encontrado")
	// ErrInvalidCredentials covers unknown emails, wrong passwords and
	// deactivated accounts so login failures stay indistinguishable.
	ErrInvalidCredentials = errors.New("credenciales inválidas")
)

// User is an application account. Non-ADMIN users belong to exactly one
// laboratory; platform ADMIN accounts have no laboratory.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	Name         string     `db:"name" json:"name"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	Avatar       *string    `db:"avatar" json:"avatar,omitempty"`
	Phone        *string    `db:"phone" json:"phone,omitempty"`
	LaboratoryID *uuid.UUID `db:"laboratory_id" json:"laboratoryId,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// Patch carries a partial update; nil fields are left unchanged.
type Patch struct {
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	Active   *bool   `json:"active"`
	Avatar   *string `json:"avatar"`
	Phone    *string `json:"phone"`
}
