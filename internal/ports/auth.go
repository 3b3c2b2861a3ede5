package ports

// Package ports defines interfaces (hexagonal ports) for session-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/target/mmk-ui-session/internal/domain/auth"
)

// KeyValueStore is the persistence capability the session core consumes.
// Get reports found=false for keys that were never set or have been removed.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes the given keys; missing keys are not an error.
	Remove(ctx context.Context, keys ...string) error
}

// BatchWriter is implemented by stores that can write several keys atomically.
type BatchWriter interface {
	SetMany(ctx context.Context, entries map[string]string) error
}

// SessionStore owns the session token and the cached user profile.
type SessionStore interface {
	Save(ctx context.Context, token string, profile domainauth.Profile) error
	Token(ctx context.Context) (string, bool, error)
	Profile(ctx context.Context) (domainauth.Profile, bool, error)
	Clear(ctx context.Context) error
}

// Icon selects the visual treatment of a notice.
type Icon string

const (
	IconSuccess  Icon = "success"
	IconError    Icon = "error"
	IconWarning  Icon = "warning"
	IconInfo     Icon = "info"
	IconQuestion Icon = "question"
)

// Notice is a user-facing message handed to a Notifier.
type Notice struct {
	Icon         Icon
	Title        string
	Text         string
	ConfirmLabel string
	CancelLabel  string
	// Timer auto-dismisses informational notices; zero waits for the user.
	Timer time.Duration
}

// Notifier presents notices to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notice) error
	// Confirm presents a notice with confirm/cancel semantics and returns the user's choice.
	Confirm(ctx context.Context, n Notice) (bool, error)
}

// Navigator moves the client to another location (route path with optional query).
type Navigator interface {
	Navigate(ctx context.Context, destination string) error
}
