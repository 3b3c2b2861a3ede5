package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/target/mmk-ui-session/internal/ports"
)

// Route is one entry of the client route table.
type Route struct {
	// Path matches itself and everything below it ("/dashboard" matches "/dashboard/reports").
	// "/" matches only the root.
	Path string
	// Public routes are reachable without a session.
	Public bool
	// Roles, when set, restricts the route to those role labels.
	Roles []string
	// RedirectTo sends every visitor elsewhere.
	RedirectTo string
}

// DefaultRoutes mirrors the application's route table.
func DefaultRoutes(loginRoute string) []Route {
	if loginRoute == "" {
		loginRoute = DefaultLoginRoute
	}
	return []Route{
		{Path: "/", RedirectTo: loginRoute},
		{Path: "/auth", Public: true},
		{Path: "/dashboard"},
	}
}

// Decision is the outcome of a guard check.
type Decision struct {
	Allowed  bool
	Redirect string
}

// RoleChecker is the part of the Oracle the guard consults.
type RoleChecker interface {
	IsAuthenticated(ctx context.Context) bool
	HasRole(ctx context.Context, roles ...string) bool
}

// RouteGuardOptions groups dependencies for RouteGuard.
type RouteGuardOptions struct {
	Oracle       RoleChecker
	Navigator    ports.Navigator
	Routes       []Route
	LoginRoute   string
	DefaultRoute string
}

// RouteGuard gates navigation on the session state and role.
type RouteGuard struct {
	oracle       RoleChecker
	navigator    ports.Navigator
	routes       []Route
	loginRoute   string
	defaultRoute string
}

// NewRouteGuard constructs a RouteGuard.
func NewRouteGuard(opts RouteGuardOptions) *RouteGuard {
	g := &RouteGuard{
		oracle:       opts.Oracle,
		navigator:    opts.Navigator,
		routes:       opts.Routes,
		loginRoute:   opts.LoginRoute,
		defaultRoute: opts.DefaultRoute,
	}
	if g.loginRoute == "" {
		g.loginRoute = DefaultLoginRoute
	}
	if g.defaultRoute == "" {
		g.defaultRoute = DefaultLandingRoute
	}
	if len(g.routes) == 0 {
		g.routes = DefaultRoutes(g.loginRoute)
	}
	return g
}

// Check decides whether path may be entered. It consults only the Oracle.
func (g *RouteGuard) Check(ctx context.Context, path string) Decision {
	clean := normalizePath(path)
	route, ok := g.match(clean)
	if !ok {
		// Unknown routes fall back like a wildcard route would.
		if g.oracle.IsAuthenticated(ctx) {
			return Decision{Redirect: g.defaultRoute}
		}
		return Decision{Redirect: g.loginRoute}
	}

	if route.RedirectTo != "" {
		return Decision{Redirect: route.RedirectTo}
	}
	if route.Public {
		return Decision{Allowed: true}
	}
	if !g.oracle.IsAuthenticated(ctx) {
		return Decision{Redirect: g.loginRoute + "?returnUrl=" + url.QueryEscape(path)}
	}
	if len(route.Roles) > 0 && !g.oracle.HasRole(ctx, route.Roles...) {
		return Decision{Redirect: g.defaultRoute}
	}
	return Decision{Allowed: true}
}

// Navigate applies the decision for path and returns the location actually reached.
func (g *RouteGuard) Navigate(ctx context.Context, path string) (string, error) {
	dest := path
	if d := g.Check(ctx, path); !d.Allowed {
		dest = d.Redirect
	}
	if g.navigator != nil {
		if err := g.navigator.Navigate(ctx, dest); err != nil {
			return "", err
		}
	}
	return dest, nil
}

// match returns the most specific route for path.
func (g *RouteGuard) match(path string) (Route, bool) {
	var (
		best    Route
		bestLen = -1
	)
	for _, r := range g.routes {
		rp := normalizePath(r.Path)
		hit := path == rp || (rp != "/" && strings.HasPrefix(path, rp+"/"))
		if hit && len(rp) > bestLen {
			best, bestLen = r, len(rp)
		}
	}
	return best, bestLen >= 0
}

func normalizePath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = "/" + strings.Trim(strings.TrimSpace(p), "/")
	return p
}
