// Package repository implements the data access layer. Sentinel errors
// defined here let handlers map failures onto the HTTP taxonomy without
// inspecting driver-specific error values.
package repository

import (
	"errors"
	"strings"
)

// ErrConflict is returned when a write collides with existing state, such
// as a second reponse from the same vendeur. Handlers translate this into
// HTTP 409.
var ErrConflict = errors.New("conflict")

// isDuplicate detects a unique-key violation. MySQL reports error 1062;
// the SQLite driver used in tests reports "UNIQUE constraint failed".
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "1062") || strings.Contains(msg, "unique")
}
