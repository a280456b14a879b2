// Package repository implements the MySQL persistence layer. Sentinel
// errors defined here let handlers distinguish failure scenarios
// without inspecting driver-specific errors: ErrReservationNotFound
// maps to an HTTP 404, ErrDuplicate to a 409.
package repository

import (
	"errors"
	"strings"
)

// ErrReservationNotFound is returned when a lookup by primary key
// matches no reservation row.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrDuplicate is returned when an insert violates a uniqueness
// constraint, such as adding the same user to a reservation twice.
var ErrDuplicate = errors.New("duplicate entry")

// ErrEmailExists is returned by UserRepo.Create when the email is
// already registered.
var ErrEmailExists = errors.New("email already exists")

// ErrTokenReused is returned by TokenRepo.ValidateRefresh when the
// presented token was already revoked. A replay of a rotated-out token
// means the token leaked; callers revoke the whole session set.
var ErrTokenReused = errors.New("refresh token reused")

// isDuplicateKey reports whether err is a MySQL duplicate-key
// violation (error 1062).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
