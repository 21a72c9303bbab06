// Package acl holds the permission set granted by the current session token
// and answers permission checks against it.
//
// Permissions are dotted names such as "community.foo.leader". The single
// permission "*" grants everything, and a trailing ".*" segment grants a
// subtree ("community.foo.*" grants "community.foo.leader").
package acl

import (
	"sort"
	"strings"
	"sync"
)

// ACL is safe for concurrent use.
type ACL struct {
	mu    sync.RWMutex
	perms map[string]struct{}
}

func New() *ACL {
	return &ACL{perms: make(map[string]struct{})}
}

// Parse replaces the current permission set. Names are trimmed and
// lower-cased; empty names are dropped.
func (a *ACL) Parse(permissions []string) {
	next := make(map[string]struct{}, len(permissions))
	for _, p := range permissions {
		p = normalize(p)
		if p == "" {
			continue
		}
		next[p] = struct{}{}
	}
	a.mu.Lock()
	a.perms = next
	a.mu.Unlock()
}

// Clear drops every permission.
func (a *ACL) Clear() {
	a.mu.Lock()
	a.perms = make(map[string]struct{})
	a.mu.Unlock()
}

// Can reports whether perm is granted, directly or through a wildcard.
func (a *ACL) Can(perm string) bool {
	perm = normalize(perm)
	if perm == "" {
		return false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	if _, ok := a.perms["*"]; ok {
		return true
	}
	if _, ok := a.perms[perm]; ok {
		return true
	}
	parts := strings.Split(perm, ".")
	for i := len(parts) - 1; i > 0; i-- {
		if _, ok := a.perms[strings.Join(parts[:i], ".")+".*"]; ok {
			return true
		}
	}
	return false
}

// CanAny reports whether at least one of perms is granted.
func (a *ACL) CanAny(perms ...string) bool {
	for _, p := range perms {
		if a.Can(p) {
			return true
		}
	}
	return false
}

// Permissions returns the granted names in sorted order.
func (a *ACL) Permissions() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, 0, len(a.perms))
	for p := range a.perms {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func normalize(p string) string {
	return strings.ToLower(strings.TrimSpace(p))
}
