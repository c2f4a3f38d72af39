// Package session keeps the credentials and identity of the logged in user.
// Values live in a key-value Store so that separate cli invocations share them.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/shiftmatch/internal/posting"
)

// Keys used in the store.
const (
	KeyToken  = "userToken"
	KeyUserID = "userId"
	KeyRole   = "userRole"
)

// ErrNotFound is returned by stores for missing keys.
var ErrNotFound = errors.New("key not found")

// ErrNotLoggedIn is returned when no token is stored.
var ErrNotLoggedIn = errors.New("not logged in: run the login command first")

// Store is an opaque string key-value persistence.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Session is the identity every backend call is made with.
type Session struct {
	Token  string
	UserID string
	Role   posting.Role
}

// Load reads the session from the store. A missing token is ErrNotLoggedIn;
// missing user id or role are left empty.
func Load(ctx context.Context, store Store) (*Session, error) {
	token, err := store.Get(ctx, KeyToken)
	if errors.Is(err, ErrNotFound) || (err == nil && strings.TrimSpace(token) == "") {
		return nil, ErrNotLoggedIn
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", KeyToken, err)
	}

	s := &Session{Token: strings.TrimSpace(token)}

	if s.UserID, err = optional(ctx, store, KeyUserID); err != nil {
		return nil, err
	}

	rawRole, err := optional(ctx, store, KeyRole)
	if err != nil {
		return nil, err
	}
	if rawRole != "" {
		if s.Role, err = posting.ParseRole(rawRole); err != nil {
			return nil, fmt.Errorf("stored role: %w", err)
		}
	}

	return s, nil
}

// Save writes all non-empty session values.
func Save(ctx context.Context, store Store, s *Session) error {
	if s == nil || strings.TrimSpace(s.Token) == "" {
		return errors.New("session token is required")
	}

	values := []struct{ key, value string }{
		{KeyToken, s.Token},
		{KeyUserID, s.UserID},
		{KeyRole, string(s.Role)},
	}
	for _, v := range values {
		if v.value == "" {
			continue
		}
		if err := store.Set(ctx, v.key, v.value); err != nil {
			return fmt.Errorf("write %s: %w", v.key, err)
		}
	}
	return nil
}

// Clear removes every session key including the applied jobs ledger.
func Clear(ctx context.Context, store Store) error {
	for _, key := range []string{KeyToken, KeyUserID, KeyRole, KeyApplied} {
		if err := store.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}

func optional(ctx context.Context, store Store, key string) (string, error) {
	value, err := store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return strings.TrimSpace(value), nil
}
