package config

import (
	"strings"
	"time"
)

const defaultAPITimeout = 15 * time.Second

// APIConfig locates the backend API.
type APIConfig struct {
	// BaseURL is the API root; endpoints such as /auth/login are resolved against it.
	BaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:3000/api"`

	// Timeout bounds every backend request.
	Timeout time.Duration `env:"API_TIMEOUT" envDefault:"15s"`
}

// Sanitize trims the base URL and clamps the timeout.
func (c *APIConfig) Sanitize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.Timeout <= 0 {
		c.Timeout = defaultAPITimeout
	}
}
