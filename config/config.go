package config

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - api.go: backend API location and request timeout
//   - session.go: storage keys and client routes
//   - storage.go: session storage backend selection
//   - database.go: PostgreSQL and Redis connection settings
//   - observability.go: logging and metrics
type AppConfig struct {
	// Backend API configuration
	API APIConfig

	// Session keys and routes
	Session SessionConfig

	// Storage backend selection
	Storage StorageConfig

	// Database configuration (postgres and redis backends)
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// Logging configuration
	Logging LoggingConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.API.Sanitize()
	c.Session.Sanitize()
	c.Storage.Sanitize()
	c.Postgres.Sanitize()
	c.Redis.Sanitize()
	c.Logging.Sanitize()
	c.Observability.Sanitize()
}
