// Package uid issues the identifiers of users, communities, applications and
// outgoing requests.
package uid

import (
	"strings"

	"github.com/google/uuid"
)

// New returns a random version 4 UUID in canonical form.
func New() string {
	return uuid.NewString()
}

// IsValid reports whether id is a UUID in canonical, lower-case form. URN and
// braced spellings accepted by uuid.Parse are rejected.
func IsValid(id string) bool {
	u, err := uuid.Parse(id)
	return err == nil && u.String() == strings.ToLower(id) && id == strings.ToLower(id)
}
