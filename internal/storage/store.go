// Package storage is the persisted client-side key/value store the session
// survives restarts in. Every backend scopes its keys to one namespace so
// Clear only drops the session's own entries.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("storage: key not found")

// Keys written by the session store.
const (
	KeyToken        = "auth-token"
	KeyDecodedToken = "auth-decodedToken"
	KeyRedirect     = "auth-redirect"
)

// DefaultNamespace is used when a backend is opened with an empty namespace.
const DefaultNamespace = "slotlist"

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Remove is a no-op for missing keys.
	Remove(ctx context.Context, key string) error
	// Clear drops every key in the store's namespace.
	Clear(ctx context.Context) error
	Close() error
}

// GetJSON decodes the value under key into v.
func GetJSON(ctx context.Context, s Store, key string, v any) error {
	b, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func SetJSON(ctx context.Context, s Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, b)
}

// namespacePattern keeps namespaces free of the separators and glob
// characters the prefix-keyed backends (redis, minio) scan by, so one
// namespace's prefix never matches another's keys.
var namespacePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// CheckNamespace returns the effective namespace, or an error when ns holds
// characters other than letters, digits, '_' and '-'.
func CheckNamespace(ns string) (string, error) {
	ns = namespaceOr(ns)
	if !namespacePattern.MatchString(ns) {
		return "", fmt.Errorf("storage: invalid namespace %q (letters, digits, '_' and '-' only)", ns)
	}
	return ns, nil
}

func namespaceOr(ns string) string {
	if ns == "" {
		return DefaultNamespace
	}
	return ns
}
