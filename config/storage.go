package config

import (
	"fmt"
	"strings"
)

// StorageBackend selects where the session is persisted.
type StorageBackend string

const (
	// StorageMemory keeps the session in process memory (lost on exit).
	StorageMemory StorageBackend = "memory"
	// StorageFile keeps the session in a JSON file under the user's config directory.
	StorageFile StorageBackend = "file"
	// StorageRedis keeps the session in Redis.
	StorageRedis StorageBackend = "redis"
	// StoragePostgres keeps the session in a PostgreSQL table.
	StoragePostgres StorageBackend = "postgres"
	// StorageSQLite keeps the session in a SQLite database file.
	StorageSQLite StorageBackend = "sqlite"
)

// UnmarshalText implements encoding.TextUnmarshaler for StorageBackend.
func (b *StorageBackend) UnmarshalText(text []byte) error {
	v := StorageBackend(strings.ToLower(strings.TrimSpace(string(text))))
	switch v {
	case StorageMemory, StorageFile, StorageRedis, StoragePostgres, StorageSQLite:
		*b = v
		return nil
	default:
		return fmt.Errorf("invalid StorageBackend: %q (valid options: memory, file, redis, postgres, sqlite)", v)
	}
}

// StorageConfig selects and locates the session storage backend.
type StorageConfig struct {
	Backend StorageBackend `env:"STORAGE_BACKEND" envDefault:"file"`

	// FilePath is the session file of the file backend. Empty means the per-user default.
	FilePath string `env:"STORAGE_FILE_PATH"`

	// SQLitePath is the database of the sqlite backend. Empty means the per-user default.
	SQLitePath string `env:"STORAGE_SQLITE_PATH"`
}

// Sanitize trims paths and defaults the backend.
func (c *StorageConfig) Sanitize() {
	if c.Backend == "" {
		c.Backend = StorageFile
	}
	c.FilePath = strings.TrimSpace(c.FilePath)
	c.SQLitePath = strings.TrimSpace(c.SQLitePath)
}
