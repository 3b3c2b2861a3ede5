package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	domainauth "github.com/target/mmk-ui-session/internal/domain/auth"
	apperrors "github.com/target/mmk-ui-session/internal/errors"
	"github.com/target/mmk-ui-session/internal/ports"
)

// Default storage keys of the session token and cached profile.
const (
	DefaultTokenKey   = "token"
	DefaultProfileKey = "user"
)

// SessionStoreOptions groups dependencies for SessionStore.
type SessionStoreOptions struct {
	Store      ports.KeyValueStore
	TokenKey   string
	ProfileKey string
	Logger     *slog.Logger
}

// SessionStore persists the session token and profile under two well-known keys.
// Every read goes to the underlying storage.
type SessionStore struct {
	store      ports.KeyValueStore
	tokenKey   string
	profileKey string
	logger     *slog.Logger
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore constructs a SessionStore.
func NewSessionStore(opts SessionStoreOptions) *SessionStore {
	s := &SessionStore{
		store:      opts.Store,
		tokenKey:   opts.TokenKey,
		profileKey: opts.ProfileKey,
		logger:     opts.Logger,
	}
	if s.tokenKey == "" {
		s.tokenKey = DefaultTokenKey
	}
	if s.profileKey == "" {
		s.profileKey = DefaultProfileKey
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Save writes token and profile together. Batch-capable stores write both atomically;
// otherwise the profile goes first so a present token always has its profile.
func (s *SessionStore) Save(ctx context.Context, token string, profile domainauth.Profile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode profile")
	}

	if bw, ok := s.store.(ports.BatchWriter); ok {
		if err := bw.SetMany(ctx, map[string]string{
			s.profileKey: string(raw),
			s.tokenKey:   token,
		}); err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeInternal, "save session")
		}
		return nil
	}

	if err := s.store.Set(ctx, s.profileKey, string(raw)); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "save profile")
	}
	if err := s.store.Set(ctx, s.tokenKey, token); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "save token")
	}
	return nil
}

// Token returns the stored token.
func (s *SessionStore) Token(ctx context.Context) (string, bool, error) {
	tok, found, err := s.store.Get(ctx, s.tokenKey)
	if err != nil {
		return "", false, apperrors.Wrap(err, apperrors.ErrCodeInternal, "read token")
	}
	return tok, found, nil
}

// Profile returns the stored profile. A profile without a non-empty token reads as absent.
func (s *SessionStore) Profile(ctx context.Context) (domainauth.Profile, bool, error) {
	tok, hasToken, err := s.Token(ctx)
	if err != nil {
		return domainauth.Profile{}, false, err
	}
	if !hasToken || tok == "" {
		return domainauth.Profile{}, false, nil
	}

	raw, found, err := s.store.Get(ctx, s.profileKey)
	if err != nil {
		return domainauth.Profile{}, false, apperrors.Wrap(err, apperrors.ErrCodeInternal, "read profile")
	}
	if !found {
		return domainauth.Profile{}, false, nil
	}

	p, err := domainauth.DecodeProfile(raw)
	if err != nil {
		return domainauth.Profile{}, false, apperrors.CorruptSession(fmt.Errorf("key %q: %w", s.profileKey, err))
	}
	return p, true, nil
}

// Clear removes token and profile. Clearing an empty store is a no-op.
func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.store.Remove(ctx, s.tokenKey, s.profileKey); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "clear session")
	}
	return nil
}
