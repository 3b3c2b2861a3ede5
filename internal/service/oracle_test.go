package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/mmk-ui-session/internal/domain/auth"
	"github.com/target/mmk-ui-session/internal/mocks"
	"github.com/target/mmk-ui-session/internal/testutil"
	"go.uber.org/mock/gomock"
)

func TestOracle_Anonymous(t *testing.T) {
	ctx := context.Background()
	sessions, _ := newMemorySessions()
	oracle := NewOracle(sessions, testutil.NewTestLogger())

	assert.False(t, oracle.IsAuthenticated(ctx))
	assert.Equal(t, domainauth.StateAnonymous, oracle.State(ctx))
	for _, roles := range [][]string{{"admin"}, {"editor", "viewer"}, nil} {
		assert.False(t, oracle.HasRole(ctx, roles...))
	}
	_, ok := oracle.CurrentProfile(ctx)
	assert.False(t, ok)
}

func TestOracle_AdminProfile(t *testing.T) {
	ctx := context.Background()
	sessions, _ := newMemorySessions()
	require.NoError(t, sessions.Save(ctx, "tok-123", adminProfile()))
	oracle := NewOracle(sessions, testutil.NewTestLogger())

	assert.True(t, oracle.IsAuthenticated(ctx))
	assert.Equal(t, domainauth.StateAuthenticated, oracle.State(ctx))
	assert.True(t, oracle.HasRole(ctx, "admin"))
	assert.True(t, oracle.HasRole(ctx, "editor", "admin"))
	assert.False(t, oracle.HasRole(ctx, "editor"))

	p, ok := oracle.CurrentProfile(ctx)
	assert.True(t, ok)
	assert.Equal(t, "Ana", p.Name)
}

func TestOracle_ProfileWithoutRole(t *testing.T) {
	ctx := context.Background()
	sessions, _ := newMemorySessions()
	require.NoError(t, sessions.Save(ctx, "tok", domainauth.Profile{ID: 2, Name: "Bo"}))
	oracle := NewOracle(sessions, nil)

	assert.True(t, oracle.IsAuthenticated(ctx))
	assert.False(t, oracle.HasRole(ctx, "admin"))
}

func TestOracle_EmptyTokenIsAnonymous(t *testing.T) {
	ctx := context.Background()
	sessions, kv := newMemorySessions()
	require.NoError(t, kv.Set(ctx, DefaultTokenKey, ""))

	assert.False(t, NewOracle(sessions, nil).IsAuthenticated(ctx))
}

func TestOracle_StorageErrorDegradesToFalse(t *testing.T) {
	ctrl := gomock.NewController(t)
	sessions := mocks.NewMockSessionStore(ctrl)
	boom := errors.New("storage offline")
	sessions.EXPECT().Token(gomock.Any()).Return("", false, boom)
	sessions.EXPECT().Profile(gomock.Any()).Return(domainauth.Profile{}, false, boom)

	oracle := NewOracle(sessions, testutil.NewTestLogger())
	ctx := context.Background()
	assert.False(t, oracle.IsAuthenticated(ctx))
	assert.False(t, oracle.HasRole(ctx, "admin"))
}
