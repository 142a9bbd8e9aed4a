// Package ident generates and checks the canonical identifiers used for
// products, orders, order items and users.
package ident

import (
	"strings"

	"github.com/google/uuid"
)

// New returns a fresh canonical identifier.
func New() string {
	return uuid.NewString()
}

// IsCanonical reports whether id is a hyphenated 36-character UUID.
// uuid.Parse alone also accepts the braced, urn and 32-digit forms.
func IsCanonical(id string) bool {
	if len(id) != 36 || strings.Count(id, "-") != 4 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
