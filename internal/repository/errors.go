// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios.
package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is the root of every "record does not exist" error.
// Handlers translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write violates a uniqueness rule, such
// as creating an admin user with a taken username. Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

var (
	// ErrCategoryNotFound is returned when a category lookup fails.
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)
	// ErrGameNotFound is returned when a game lookup fails.
	ErrGameNotFound = fmt.Errorf("game %w", ErrNotFound)
	// ErrUserNotFound is returned when an admin user lookup fails.
	ErrUserNotFound = fmt.Errorf("admin user %w", ErrNotFound)
)
