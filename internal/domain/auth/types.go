package auth

// Package auth contains domain-level types for client sessions and authorization.
// It is pure and free of framework/adapter concerns.

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// State is the derived session state of the client.
type State string

const (
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

// Role is the authorization label carried by a profile.
// Only the name participates in authorization decisions.
type Role struct {
	Name string `json:"name"`
}

// Profile is the user record returned by the backend and cached next to the token.
type Profile struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  *Role  `json:"role,omitempty"`
}

// RoleName returns the role label or "" when the profile carries no role.
func (p Profile) RoleName() string {
	if p.Role == nil {
		return ""
	}
	return p.Role.Name
}

// HasAnyRole reports whether the profile role is one of roles.
func (p Profile) HasAnyRole(roles ...string) bool {
	name := p.RoleName()
	if name == "" {
		return false
	}
	return slices.Contains(roles, name)
}

// Validate checks the persisted profile schema.
func (p Profile) Validate() error {
	if p.ID == 0 {
		return errors.New("profile id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("profile name is required")
	}
	if p.Role != nil && strings.TrimSpace(p.Role.Name) == "" {
		return errors.New("profile role name is empty")
	}
	return nil
}

// DecodeProfile parses a stored profile and validates its shape.
func DecodeProfile(raw string) (Profile, error) {
	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Credentials is the identifier/secret pair sent to the login endpoint.
type Credentials struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
}

// SessionStart is the decoded payload of a successful login.
type SessionStart struct {
	Token   string  `json:"token"`
	Profile Profile `json:"profile"`
}
