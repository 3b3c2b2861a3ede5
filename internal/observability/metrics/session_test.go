package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/target/mmk-ui-session/internal/errors"
	"github.com/target/mmk-ui-session/internal/observability/statsd"
)

func TestEmitSessionOperation(t *testing.T) {
	var rec statsd.Recorder
	EmitSessionOperation(&rec, SessionMetric{
		Operation: OpLogin,
		Result:    ResultError,
		Status:    401,
		Duration:  20 * time.Millisecond,
		Err:       apperrors.Authentication(401, "bad credentials"),
	})

	counts := rec.Named("session.operation")
	require.Len(t, counts, 1)
	assert.Equal(t, map[string]string{
		"operation":    "login",
		"result":       "error",
		"status_class": "4xx",
		"error_class":  "authentication",
	}, counts[0].Tags)
	require.Len(t, rec.Named("session.duration"), 1)
}

func TestEmitSessionOperation_SuccessOmitsErrorClass(t *testing.T) {
	var rec statsd.Recorder
	EmitSessionOperation(&rec, SessionMetric{Operation: OpLogout, Result: ResultSuccess, Err: errors.New("ignored")})

	counts := rec.Named("session.operation")
	require.Len(t, counts, 1)
	assert.NotContains(t, counts[0].Tags, "error_class")
	assert.NotContains(t, counts[0].Tags, "status_class")
	assert.Empty(t, rec.Named("session.duration"))
}

func TestEmitNilSink(_ *testing.T) {
	EmitSessionOperation(nil, SessionMetric{Operation: OpLogin})
	EmitSessionState(nil, true)
}

func TestEmitSessionState(t *testing.T) {
	var rec statsd.Recorder
	EmitSessionState(&rec, true)
	EmitSessionState(&rec, false)

	got := rec.Named("session.authenticated")
	require.Len(t, got, 2)
	assert.InDelta(t, 1.0, got[0].Value, 0)
	assert.InDelta(t, 0.0, got[1].Value, 0)
}
