// Package repository declares errors shared by all repository
// backends. Backend implementations live in the subpackages.
package repository

import "github.com/m-mizutani/goerr/v2"

// ErrNotFound is returned when a requested record does not exist.
// All backends wrap this sentinel so callers can match with errors.Is
// regardless of the configured backend.
var ErrNotFound = goerr.New("record not found")
