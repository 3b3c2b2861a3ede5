package config

import "strings"

// SessionConfig names the persisted keys and the client routes used by the session layer.
type SessionConfig struct {
	TokenKey     string `env:"SESSION_TOKEN_KEY"     envDefault:"token"`
	ProfileKey   string `env:"SESSION_PROFILE_KEY"   envDefault:"user"`
	LoginRoute   string `env:"SESSION_LOGIN_ROUTE"   envDefault:"/auth/login"`
	DefaultRoute string `env:"SESSION_DEFAULT_ROUTE" envDefault:"/dashboard"`
}

// Sanitize restores defaults for blank values and makes routes absolute.
func (c *SessionConfig) Sanitize() {
	c.TokenKey = orDefault(c.TokenKey, "token")
	c.ProfileKey = orDefault(c.ProfileKey, "user")
	c.LoginRoute = absRoute(orDefault(c.LoginRoute, "/auth/login"))
	c.DefaultRoute = absRoute(orDefault(c.DefaultRoute, "/dashboard"))
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

func absRoute(r string) string {
	if !strings.HasPrefix(r, "/") {
		return "/" + r
	}
	return r
}
