package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/mmk-ui-session/internal/domain/auth"
	mockauth "github.com/target/mmk-ui-session/internal/mocks/auth"
)

func TestRouteGuard_Check(t *testing.T) {
	ctx := context.Background()
	anonymous, _ := newMemorySessions()

	editor, _ := newMemorySessions()
	require.NoError(t, editor.Save(ctx, "tok", domainauth.Profile{ID: 3, Name: "Ed", Role: &domainauth.Role{Name: "editor"}}))

	routes := append(DefaultRoutes(""), Route{Path: "/dashboard/admin", Roles: []string{"admin"}})

	tests := []struct {
		name     string
		sessions *SessionStore
		path     string
		want     Decision
	}{
		{name: "root redirects to login", sessions: anonymous, path: "", want: Decision{Redirect: "/auth/login"}},
		{name: "auth is public", sessions: anonymous, path: "/auth/login", want: Decision{Allowed: true}},
		{name: "dashboard needs session", sessions: anonymous, path: "/dashboard/reports",
			want: Decision{Redirect: "/auth/login?returnUrl=%2Fdashboard%2Freports"}},
		{name: "dashboard with session", sessions: editor, path: "/dashboard", want: Decision{Allowed: true}},
		{name: "role mismatch", sessions: editor, path: "/dashboard/admin/users", want: Decision{Redirect: DefaultLandingRoute}},
		{name: "unknown anonymous", sessions: anonymous, path: "/nowhere", want: Decision{Redirect: "/auth/login"}},
		{name: "unknown authenticated", sessions: editor, path: "/nowhere", want: Decision{Redirect: DefaultLandingRoute}},
		{name: "prefix is not a match", sessions: anonymous, path: "/authx", want: Decision{Redirect: "/auth/login"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewRouteGuard(RouteGuardOptions{Oracle: NewOracle(tt.sessions, nil), Routes: routes})
			assert.Equal(t, tt.want, g.Check(ctx, tt.path))
		})
	}
}

func TestRouteGuard_AdminAllowed(t *testing.T) {
	ctx := context.Background()
	sessions, _ := newMemorySessions()
	require.NoError(t, sessions.Save(ctx, "tok", adminProfile()))

	g := NewRouteGuard(RouteGuardOptions{
		Oracle: NewOracle(sessions, nil),
		Routes: []Route{{Path: "/dashboard/admin", Roles: []string{"admin"}}},
	})
	assert.Equal(t, Decision{Allowed: true}, g.Check(ctx, "/dashboard/admin"))
}

func TestRouteGuard_Navigate(t *testing.T) {
	ctx := context.Background()
	sessions, _ := newMemorySessions()
	nav := &mockauth.RecordingNavigator{}
	g := NewRouteGuard(RouteGuardOptions{Oracle: NewOracle(sessions, nil), Navigator: nav})

	got, err := g.Navigate(ctx, "/dashboard")
	require.NoError(t, err)
	assert.Equal(t, "/auth/login?returnUrl=%2Fdashboard", got)

	require.NoError(t, sessions.Save(ctx, "tok", adminProfile()))
	got, err = g.Navigate(ctx, "/dashboard")
	require.NoError(t, err)
	assert.Equal(t, "/dashboard", got)
	assert.Equal(t, []string{"/auth/login?returnUrl=%2Fdashboard", "/dashboard"}, nav.Destinations())
}
