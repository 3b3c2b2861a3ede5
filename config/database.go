package config

import "strings"

// DBConfig contains PostgreSQL configuration for the postgres storage backend.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"mmk"`
	Password string `env:"PASSWORD" envDefault:"mmk"`
	Name     string `env:"NAME"     envDefault:"mmk_session"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// Table holds the session rows; it is created on start when missing.
	Table string `env:"TABLE" envDefault:"client_sessions"`
}

// Sanitize restores defaults for blank values.
func (c *DBConfig) Sanitize() {
	c.SSLMode = orDefault(c.SSLMode, "disable")
	c.Table = orDefault(c.Table, "client_sessions")
	if c.Port <= 0 {
		c.Port = 5432
	}
}

// RedisConfig contains Redis configuration for the redis storage backend.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	DB                 int      `env:"DB"                   envDefault:"0"`
	KeyPrefix          string   `env:"KEY_PREFIX"           envDefault:"mmk:session:"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:""`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
}

// Sanitize drops empty sentinel nodes and disables sentinel when none remain.
func (c *RedisConfig) Sanitize() {
	c.SentinelNodes = compact(c.SentinelNodes)
	if len(c.SentinelNodes) == 0 {
		c.UseSentinel = false
	}
	if c.DB < 0 {
		c.DB = 0
	}
}

func compact(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
