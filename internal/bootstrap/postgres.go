package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx database/sql driver
	"github.com/target/mmk-ui-session/config"
)

const connectTimeout = 5 * time.Second

// PostgresDSN renders c as a postgres:// URL. Credentials are escaped.
func PostgresDSN(c config.DBConfig) string {
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	return (&url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Name,
		RawQuery: q.Encode(),
	}).String()
}

// OpenPostgres opens a small pgx pool for the session table and checks it answers.
func OpenPostgres(ctx context.Context, c config.DBConfig, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", PostgresDSN(c))
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(time.Minute)

	if err := verify(ctx, "postgres", db.PingContext, db.Close); err != nil {
		return nil, err
	}
	logger.Debug("postgres reachable", "host", c.Host, "port", c.Port, "database", c.Name)
	return db, nil
}

// verify pings with connectTimeout and closes the handle when the ping fails.
func verify(ctx context.Context, name string, ping func(context.Context) error, closeFn func() error) error {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	err := ping(ctx)
	if err == nil {
		return nil
	}
	if cerr := closeFn(); cerr != nil {
		return fmt.Errorf("reach %s: %w (close: %w)", name, err, cerr)
	}
	return fmt.Errorf("reach %s: %w", name, err)
}
