package bootstrap

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/mmk-ui-session/config"
	"github.com/target/mmk-ui-session/internal/adapters/filestore"
	"github.com/target/mmk-ui-session/internal/adapters/memory"
	"github.com/target/mmk-ui-session/internal/adapters/navigation"
	redisstore "github.com/target/mmk-ui-session/internal/adapters/redis"
	"github.com/target/mmk-ui-session/internal/adapters/sqlite"
	domainauth "github.com/target/mmk-ui-session/internal/domain/auth"
	mockauth "github.com/target/mmk-ui-session/internal/mocks/auth"
	"github.com/target/mmk-ui-session/internal/service"
	"github.com/target/mmk-ui-session/internal/testutil"
)

func TestInitLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	var line map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &line))
	assert.Equal(t, "shown", line["msg"])

	buf.Reset()
	logger = InitLogger(config.LoggingConfig{Level: "info", Format: "text"}, &buf)
	logger.Info("plain")
	assert.Contains(t, buf.String(), "msg=plain")
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com/v1/")
	t.Setenv("STORAGE_BACKEND", "SQLite")
	t.Setenv("LOG_LEVEL", "WARNING")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/v1", cfg.API.BaseURL)
	assert.Equal(t, config.StorageSQLite, cfg.Storage.Backend)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadConfig_InvalidBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "etcd")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestPostgresDSN_EscapesCredentials(t *testing.T) {
	dsn := PostgresDSN(config.DBConfig{
		Host:     "db.internal",
		Port:     6543,
		User:     "svc",
		Password: "p@ss/word",
		Name:     "sessions",
		SSLMode:  "require",
	})

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "db.internal:6543", u.Host)
	assert.Equal(t, "/sessions", u.Path)
	pw, _ := u.User.Password()
	assert.Equal(t, "p@ss/word", pw)
	assert.Equal(t, "require", u.Query().Get("sslmode"))
}

func TestBuildStore_Backends(t *testing.T) {
	ctx := t.Context()
	dir := t.TempDir()

	t.Run("memory", func(t *testing.T) {
		store, closeFn, err := BuildStore(ctx, StoreConfig{Storage: config.StorageConfig{Backend: config.StorageMemory}})
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &memory.Store{}, store)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(dir, "nested", "session.json")
		store, closeFn, err := BuildStore(ctx, StoreConfig{
			Storage: config.StorageConfig{Backend: config.StorageFile, FilePath: path},
		})
		require.NoError(t, err)
		defer closeFn()
		fs, ok := store.(*filestore.Store)
		require.True(t, ok)
		assert.Equal(t, path, fs.Path())
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(dir, "db", "session.db")
		store, closeFn, err := BuildStore(ctx, StoreConfig{
			Storage: config.StorageConfig{Backend: config.StorageSQLite, SQLitePath: path},
		})
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &sqlite.Store{}, store)

		require.NoError(t, store.Set(ctx, "token", "abc"))
		v, found, err := store.Get(ctx, "token")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "abc", v)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		store, closeFn, err := BuildStore(ctx, StoreConfig{
			Storage: config.StorageConfig{Backend: config.StorageRedis},
			Redis:   config.RedisConfig{URI: mr.Addr(), KeyPrefix: "test:"},
			Logger:  testutil.NewTestLogger(),
		})
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &redisstore.Store{}, store)

		require.NoError(t, store.Set(ctx, "token", "abc"))
		got, err := mr.Get("test:token")
		require.NoError(t, err)
		assert.Equal(t, "abc", got)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, _, err := BuildStore(ctx, StoreConfig{Storage: config.StorageConfig{Backend: "etcd"}})
		require.Error(t, err)
	})
}

func testConfig(baseURL string) *config.AppConfig {
	cfg := &config.AppConfig{
		API:     config.APIConfig{BaseURL: baseURL},
		Storage: config.StorageConfig{Backend: config.StorageMemory},
	}
	cfg.Sanitize()
	return cfg
}

func TestNewServices_RequiresDeps(t *testing.T) {
	_, err := NewServices(nil)
	require.Error(t, err)

	_, err = NewServices(&ServiceDeps{Config: testConfig("http://localhost")})
	require.Error(t, err)

	_, err = NewServices(&ServiceDeps{Config: testConfig("ftp://localhost"), Store: memory.NewStore()})
	require.Error(t, err)
}

// The container must share one session between the gateway, the oracle and the
// bearer credential of later requests.
func TestNewServices_LoginThenProfile(t *testing.T) {
	var profileAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":{"token":"tok-9","profile":{"id":9,"name":"Ana","role":{"name":"admin"}}}}`)
	})
	mux.HandleFunc("GET /api/auth/perfil", func(w http.ResponseWriter, r *http.Request) {
		profileAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":{"id":9,"name":"Ana","role":{"name":"admin"}}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	router := navigation.NewRouter(service.DefaultLoginRoute)
	notices := &mockauth.RecordingNotifier{}
	svc, err := NewServices(&ServiceDeps{
		Config:    testConfig(srv.URL + "/api"),
		Store:     memory.NewStore(),
		Notifier:  notices,
		Navigator: router,
		Logger:    testutil.NewTestLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	ctx := t.Context()
	start, err := svc.LoginFlow.Submit(ctx, service.LoginForm{Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "tok-9", start.Token)
	assert.Equal(t, "/dashboard", router.Path())
	assert.Equal(t, domainauth.StateAuthenticated, svc.Oracle.State(ctx))
	assert.True(t, svc.Oracle.HasRole(ctx, "admin"))

	profile, err := svc.Gateway.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ana", profile.Name)
	assert.Equal(t, "Bearer tok-9", profileAuth)

	decision := svc.Guard.Check(ctx, "/dashboard")
	assert.True(t, decision.Allowed)

	require.NoError(t, svc.Gateway.Logout(ctx))
	assert.False(t, svc.Oracle.IsAuthenticated(ctx))
	assert.Equal(t, "/auth/login", router.Path())
}
