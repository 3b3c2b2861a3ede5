package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/target/mmk-ui-session/config"
	"github.com/target/mmk-ui-session/internal/adapters/httpapi"
	"github.com/target/mmk-ui-session/internal/adapters/navigation"
	"github.com/target/mmk-ui-session/internal/adapters/notifier"
	"github.com/target/mmk-ui-session/internal/observability/statsd"
	"github.com/target/mmk-ui-session/internal/ports"
	"github.com/target/mmk-ui-session/internal/service"
)

// ServiceContainer holds the session layer, wired against one storage backend.
type ServiceContainer struct {
	Sessions      *service.SessionStore
	API           *httpapi.Client
	Gateway       *service.Gateway
	Oracle        *service.Oracle
	LoginFlow     *service.LoginFlow
	Guard         *service.RouteGuard
	Notifier      ports.Notifier
	Navigator     ports.Navigator
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink   *statsd.Client
	MetricsConfig config.ObservabilityMetricsConfig
}

// ServiceDeps groups dependencies for service initialization. Store is required;
// Notifier and Navigator default to a log notifier and an in-memory router.
type ServiceDeps struct {
	Config    *config.AppConfig
	Store     ports.KeyValueStore
	Notifier  ports.Notifier
	Navigator ports.Navigator
	// Transport replaces the HTTP base transport (tests point it at httptest servers).
	Transport http.RoundTripper
	Logger    *slog.Logger
}

func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obs := ObservabilityContainer{MetricsConfig: cfg.Metrics}
	if !cfg.Metrics.IsEnabled() {
		return obs
	}
	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.Metrics.StatsdAddress,
		Prefix:  cfg.Metrics.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return obs
	}
	obs.MetricsSink = client
	return obs
}

// NewServices wires the session components. The same SessionStore backs the
// gateway, the oracle and the bearer credential of the API client.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps require a config")
	}
	if deps.Store == nil {
		return ServiceContainer{}, errors.New("service deps require a key-value store")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	observability := buildObservability(logger, cfg.Observability)
	var sink statsd.Sink
	if observability.MetricsSink != nil {
		sink = observability.MetricsSink
	}

	notify := deps.Notifier
	if notify == nil {
		notify = notifier.NewLog(logger)
	}
	nav := deps.Navigator
	if nav == nil {
		nav = navigation.NewRouter("/")
	}

	sessions := service.NewSessionStore(service.SessionStoreOptions{
		Store:      deps.Store,
		TokenKey:   cfg.Session.TokenKey,
		ProfileKey: cfg.Session.ProfileKey,
		Logger:     logger,
	})

	api, err := httpapi.New(httpapi.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		Tokens:    sessions,
		Transport: deps.Transport,
		Logger:    logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build api client: %w", err)
	}

	gateway, err := service.NewGateway(service.GatewayOptions{
		API:        api,
		Sessions:   sessions,
		Notifier:   notify,
		Navigator:  nav,
		LoginRoute: cfg.Session.LoginRoute,
		Logger:     logger,
		Metrics:    sink,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build gateway: %w", err)
	}

	oracle := service.NewOracle(sessions, logger)

	return ServiceContainer{
		Sessions: sessions,
		API:      api,
		Gateway:  gateway,
		Oracle:   oracle,
		LoginFlow: service.NewLoginFlow(service.LoginFlowOptions{
			Auth:         gateway,
			Checker:      oracle,
			Notifier:     notify,
			Navigator:    nav,
			DefaultRoute: cfg.Session.DefaultRoute,
			Logger:       logger,
		}),
		Guard: service.NewRouteGuard(service.RouteGuardOptions{
			Oracle:       oracle,
			Navigator:    nav,
			Routes:       service.DefaultRoutes(cfg.Session.LoginRoute),
			LoginRoute:   cfg.Session.LoginRoute,
			DefaultRoute: cfg.Session.DefaultRoute,
		}),
		Notifier:      notify,
		Navigator:     nav,
		Observability: observability,
	}, nil
}

// Close releases the metrics connection.
func (c ServiceContainer) Close() error {
	return c.Observability.MetricsSink.Close()
}
