package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/target/mmk-ui-session/config"
)

// OpenRedis connects to a single redis master, directly or through sentinel.
// Session writes use MULTI and multi-key DEL, so cluster deployments are not supported.
//
//nolint:ireturn // NewUniversalClient picks the direct or failover client.
func OpenRedis(ctx context.Context, c config.RedisConfig, logger *slog.Logger) (redis.UniversalClient, error) {
	opts, target, err := redisOptions(c)
	if err != nil {
		return nil, err
	}
	client := redis.NewUniversalClient(opts)
	ping := func(ctx context.Context) error { return client.Ping(ctx).Err() }
	if err := verify(ctx, "redis", ping, client.Close); err != nil {
		return nil, err
	}
	// target never carries credentials.
	logger.Debug("redis reachable", "target", target, "db", opts.DB)
	return client, nil
}

// redisOptions maps c onto client options and a credential-free target for logs.
// A redis:// or rediss:// URI supplies its own credentials, database and TLS.
func redisOptions(c config.RedisConfig) (*redis.UniversalOptions, string, error) {
	if c.UseSentinel {
		if len(c.SentinelNodes) == 0 {
			return nil, "", errors.New("redis sentinel needs at least one node")
		}
		if c.SentinelMasterName == "" {
			return nil, "", errors.New("redis sentinel needs a master name")
		}
		return &redis.UniversalOptions{
			MasterName:       c.SentinelMasterName,
			Addrs:            c.SentinelNodes,
			Password:         c.Password,
			SentinelPassword: c.SentinelPassword,
			DB:               c.DB,
		}, "sentinel " + c.SentinelMasterName + " via " + strings.Join(c.SentinelNodes, ","), nil
	}

	uri := strings.TrimSpace(c.URI)
	switch {
	case uri == "":
		return nil, "", errors.New("redis uri is empty")
	case strings.HasPrefix(uri, "redis://"), strings.HasPrefix(uri, "rediss://"):
		parsed, err := redis.ParseURL(uri)
		if err != nil {
			return nil, "", fmt.Errorf("parse redis uri: %w", err)
		}
		password := parsed.Password
		if password == "" {
			password = c.Password
		}
		return &redis.UniversalOptions{
			Addrs:     []string{parsed.Addr},
			Username:  parsed.Username,
			Password:  password,
			DB:        parsed.DB,
			TLSConfig: parsed.TLSConfig,
		}, parsed.Addr, nil
	default:
		return &redis.UniversalOptions{
			Addrs:    []string{uri},
			Password: c.Password,
			DB:       c.DB,
		}, uri, nil
	}
}
