package service

import (
	"context"
	"log/slog"

	domainauth "github.com/target/mmk-ui-session/internal/domain/auth"
	apperrors "github.com/target/mmk-ui-session/internal/errors"
	"github.com/target/mmk-ui-session/internal/ports"
)

// Oracle answers authentication and role questions from the Session Store.
// It never touches the network and never returns errors; failures read as "no".
type Oracle struct {
	sessions ports.SessionStore
	logger   *slog.Logger
}

// NewOracle constructs an Oracle.
func NewOracle(sessions ports.SessionStore, logger *slog.Logger) *Oracle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Oracle{sessions: sessions, logger: logger.With("component", "oracle")}
}

// IsAuthenticated reports whether a non-empty token is stored.
func (o *Oracle) IsAuthenticated(ctx context.Context) bool {
	tok, found, err := o.sessions.Token(ctx)
	if err != nil {
		o.logger.WarnContext(ctx, "read session token failed", "error", err)
		return false
	}
	return found && tok != ""
}

// State derives the session state.
func (o *Oracle) State(ctx context.Context) domainauth.State {
	if o.IsAuthenticated(ctx) {
		return domainauth.StateAuthenticated
	}
	return domainauth.StateAnonymous
}

// HasRole reports whether the stored profile's role is one of roles.
func (o *Oracle) HasRole(ctx context.Context, roles ...string) bool {
	p, ok := o.CurrentProfile(ctx)
	if !ok {
		return false
	}
	return p.HasAnyRole(roles...)
}

// CurrentProfile returns the stored profile, if a valid one exists.
func (o *Oracle) CurrentProfile(ctx context.Context) (domainauth.Profile, bool) {
	p, found, err := o.sessions.Profile(ctx)
	if err != nil {
		if apperrors.IsCorruptSession(err) {
			o.logger.WarnContext(ctx, "stored profile is corrupt", "error", err)
		} else {
			o.logger.WarnContext(ctx, "read session profile failed", "error", err)
		}
		return domainauth.Profile{}, false
	}
	return p, found
}
