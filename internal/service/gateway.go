package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	domainauth "github.com/target/mmk-ui-session/internal/domain/auth"
	apperrors "github.com/target/mmk-ui-session/internal/errors"
	"github.com/target/mmk-ui-session/internal/observability/metrics"
	"github.com/target/mmk-ui-session/internal/observability/statsd"
	"github.com/target/mmk-ui-session/internal/ports"
	"golang.org/x/sync/singleflight"
)

// Backend endpoints, relative to the API base URL.
const (
	LoginPath   = "/auth/login"
	ProfilePath = "/auth/perfil"
)

// DefaultLoginRoute is where a logged-out client is sent.
const DefaultLoginRoute = "/auth/login"

var errMalformedLogin = errors.New("malformed login response")

// API is the request pipeline used by the Gateway. *httpapi.Client implements it.
type API interface {
	Public(ctx context.Context, method, path string, body, out any) error
	Authorized(ctx context.Context, method, path string, body, out any) error
}

// GatewayOptions groups dependencies for Gateway.
type GatewayOptions struct {
	API        API
	Sessions   ports.SessionStore
	Notifier   ports.Notifier
	Navigator  ports.Navigator
	LoginRoute string
	Logger     *slog.Logger
	Metrics    statsd.Sink
}

// Gateway performs every backend call on behalf of the session layer. All calls pass
// through one interceptor that normalizes failures, presents them and forces logout on 401.
type Gateway struct {
	api        API
	sessions   ports.SessionStore
	navigator  ports.Navigator
	loginRoute string
	logger     *slog.Logger
	metrics    statsd.Sink
	failures   *FailureHandler
	profiles   singleflight.Group
}

// NewGateway constructs a Gateway.
func NewGateway(opts GatewayOptions) (*Gateway, error) {
	if opts.API == nil {
		return nil, errors.New("gateway requires an API client")
	}
	if opts.Sessions == nil {
		return nil, errors.New("gateway requires a session store")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gateway{
		api:        opts.API,
		sessions:   opts.Sessions,
		navigator:  opts.Navigator,
		loginRoute: opts.LoginRoute,
		logger:     logger.With("component", "gateway"),
		metrics:    opts.Metrics,
	}
	if g.loginRoute == "" {
		g.loginRoute = DefaultLoginRoute
	}
	g.failures = NewFailureHandler(opts.Notifier, g.forceLogout, g.logger)
	return g, nil
}

// Login exchanges credentials for a session and persists it before returning.
func (g *Gateway) Login(ctx context.Context, creds domainauth.Credentials) (*domainauth.SessionStart, error) {
	var start domainauth.SessionStart
	err := g.intercept(ctx, metrics.OpLogin, func(ctx context.Context) error {
		if err := g.api.Public(ctx, http.MethodPost, LoginPath, creds, &start); err != nil {
			return err
		}
		if start.Token == "" {
			return errMalformedLogin
		}
		if err := start.Profile.Validate(); err != nil {
			return fmt.Errorf("%w: %w", errMalformedLogin, err)
		}
		return g.sessions.Save(ctx, start.Token, start.Profile)
	})
	if err != nil {
		return nil, err
	}

	g.logger.InfoContext(ctx, "session started",
		"user_id", start.Profile.ID,
		"role", start.Profile.RoleName(),
	)
	metrics.EmitSessionState(g.metrics, true)
	return &start, nil
}

// Profile fetches the current user's profile. It does not update the Session Store.
// Concurrent calls share one request. The shared request is not bound to any single
// caller's context; a caller that gives up gets a canceled error while the others
// still receive the outcome.
func (g *Gateway) Profile(ctx context.Context) (domainauth.Profile, error) {
	shared := context.WithoutCancel(ctx)
	ch := g.profiles.DoChan("profile", func() (any, error) {
		var p domainauth.Profile
		err := g.intercept(shared, metrics.OpProfile, func(ctx context.Context) error {
			if err := g.api.Authorized(ctx, http.MethodGet, ProfilePath, nil, &p); err != nil {
				return err
			}
			if err := p.Validate(); err != nil {
				return fmt.Errorf("malformed profile response: %w", err)
			}
			return nil
		})
		return p, err
	})

	select {
	case <-ctx.Done():
		return domainauth.Profile{}, apperrors.Wrap(ctx.Err(), apperrors.ErrCodeCanceled, "profile request abandoned")
	case res := <-ch:
		if res.Err != nil {
			return domainauth.Profile{}, res.Err
		}
		p, _ := res.Val.(domainauth.Profile)
		return p, nil
	}
}

// Authorized issues any other authenticated call through the same failure handling.
func (g *Gateway) Authorized(ctx context.Context, method, path string, body, out any) error {
	return g.intercept(ctx, metrics.OpRequest, func(ctx context.Context) error {
		return g.api.Authorized(ctx, method, path, body, out)
	})
}

// Logout clears the session and navigates to the login route. It is idempotent.
func (g *Gateway) Logout(ctx context.Context) error {
	start := time.Now()
	err := g.logout(ctx)
	emitResult(g.metrics, metrics.OpLogout, start, 0, err)
	return err
}

func (g *Gateway) forceLogout(ctx context.Context) error {
	start := time.Now()
	err := g.logout(ctx)
	emitResult(g.metrics, metrics.OpForcedLogout, start, 0, err)
	return err
}

func (g *Gateway) logout(ctx context.Context) error {
	if err := g.sessions.Clear(ctx); err != nil {
		return err
	}
	g.logger.InfoContext(ctx, "session ended")
	metrics.EmitSessionState(g.metrics, false)

	if g.navigator == nil {
		return nil
	}
	if err := g.navigator.Navigate(ctx, g.loginRoute); err != nil {
		return apperrors.Wrapf(err, apperrors.ErrCodeInternal, "navigate to %s", g.loginRoute)
	}
	return nil
}

// intercept runs fn and routes any failure through the failure handler.
func (g *Gateway) intercept(ctx context.Context, op string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	if err == nil {
		emitResult(g.metrics, op, start, 0, nil)
		return nil
	}
	appErr := g.failures.Handle(ctx, err)
	emitResult(g.metrics, op, start, appErr.Status, appErr)
	return appErr
}

func emitResult(sink statsd.Sink, op string, start time.Time, status int, err error) {
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.EmitSessionOperation(sink, metrics.SessionMetric{
		Operation: op,
		Result:    result,
		Status:    status,
		Duration:  time.Since(start),
		Err:       err,
	})
}
