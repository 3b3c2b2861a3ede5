package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/mmk-ui-session/internal/adapters/httpapi"
	apperrors "github.com/target/mmk-ui-session/internal/errors"
	mockauth "github.com/target/mmk-ui-session/internal/mocks/auth"
	"github.com/target/mmk-ui-session/internal/ports"
	"github.com/target/mmk-ui-session/internal/testutil"
)

func TestClassifyFailure(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode apperrors.ErrorCode
		wantMsg  string
	}{
		{
			name:     "validation messages joined",
			status:   http.StatusBadRequest,
			body:     `{"errors":[{"msg":"email invalid"},{"msg":"secret too short"}]}`,
			wantCode: apperrors.ErrCodeValidation,
			wantMsg:  "email invalid\nsecret too short",
		},
		{
			name:     "validation without errors list",
			status:   http.StatusBadRequest,
			body:     `{"message":"bad"}`,
			wantCode: apperrors.ErrCodeValidation,
			wantMsg:  DefaultValidationMessage,
		},
		{
			name:     "validation with malformed entries",
			status:   http.StatusBadRequest,
			body:     `{"errors":[{"field":"email"},{"msg":""},{"msg":42},{"msg":"kept"}]}`,
			wantCode: apperrors.ErrCodeValidation,
			wantMsg:  "kept",
		},
		{
			name:     "validation with errors as object",
			status:   http.StatusBadRequest,
			body:     `{"errors":{"msg":"x"}}`,
			wantCode: apperrors.ErrCodeValidation,
			wantMsg:  DefaultValidationMessage,
		},
		{
			name:     "unauthorized message",
			status:   http.StatusUnauthorized,
			body:     `{"message":"token expired"}`,
			wantCode: apperrors.ErrCodeAuthentication,
			wantMsg:  "token expired",
		},
		{
			name:     "unauthorized without payload",
			status:   http.StatusUnauthorized,
			wantCode: apperrors.ErrCodeAuthentication,
			wantMsg:  DefaultFailureMessage,
		},
		{
			name:     "server error message",
			status:   http.StatusInternalServerError,
			body:     `{"message":"internal error"}`,
			wantCode: apperrors.ErrCodeUnexpected,
			wantMsg:  "internal error",
		},
		{
			name:     "html error page",
			status:   http.StatusBadGateway,
			body:     `<html>bad gateway</html>`,
			wantCode: apperrors.ErrCodeUnexpected,
			wantMsg:  DefaultFailureMessage,
		},
		{
			name:     "non-string message",
			status:   http.StatusForbidden,
			body:     `{"message":{"text":"nope"}}`,
			wantCode: apperrors.ErrCodeUnexpected,
			wantMsg:  DefaultFailureMessage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyFailure(tt.status, []byte(tt.body))
			require.NotNil(t, got)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantMsg, got.Message)
			assert.Equal(t, tt.status, got.Status)
		})
	}
}

func TestNormalizeFailure(t *testing.T) {
	transport := normalizeFailure(fmt.Errorf("dial: %w", errors.New("connection refused")))
	assert.Equal(t, apperrors.ErrCodeUnexpected, transport.Code)
	assert.Equal(t, DefaultFailureMessage, transport.Message)
	assert.Zero(t, transport.Status)

	status := normalizeFailure(&httpapi.StatusError{Status: 401, Body: []byte(`{"message":"x"}`)})
	assert.Equal(t, apperrors.ErrCodeAuthentication, status.Code)

	internal := normalizeFailure(apperrors.Internal("save session"))
	assert.Equal(t, apperrors.ErrCodeUnexpected, internal.Code)
	assert.Equal(t, DefaultFailureMessage, internal.Message)

	kept := apperrors.Unexpected(500, "boom")
	assert.Same(t, kept, normalizeFailure(kept))
}

func TestFailureHandler_NotifiesOnceThenLogsOutOn401(t *testing.T) {
	notifier := &mockauth.RecordingNotifier{}
	var order []string
	logout := func(context.Context) error {
		order = append(order, fmt.Sprintf("logout after %d notices", len(notifier.Notices())))
		return nil
	}
	h := NewFailureHandler(notifier, logout, testutil.NewTestLogger())

	err := h.Handle(context.Background(), &httpapi.StatusError{Status: 401, Body: []byte(`{"message":"token expired"}`)})
	assert.True(t, apperrors.IsAuthentication(err))

	notices := notifier.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, ports.Notice{Icon: ports.IconError, Title: "Error", Text: "token expired"}, notices[0])
	assert.Equal(t, []string{"logout after 1 notices"}, order)
}

func TestFailureHandler_NoLogoutForOtherKinds(t *testing.T) {
	notifier := &mockauth.RecordingNotifier{}
	called := false
	h := NewFailureHandler(notifier, func(context.Context) error { called = true; return nil }, nil)

	for _, status := range []int{400, 403, 500} {
		_ = h.Handle(context.Background(), &httpapi.StatusError{Status: status})
	}
	assert.False(t, called)
	assert.Len(t, notifier.Notices(), 3)
}

func TestFailureHandler_NotifierFailureKeepsNormalizedError(t *testing.T) {
	notifier := &mockauth.RecordingNotifier{Err: errors.New("tty closed")}
	h := NewFailureHandler(notifier, nil, testutil.NewTestLogger())

	err := h.Handle(context.Background(), &httpapi.StatusError{Status: 500, Body: []byte(`{"message":"internal error"}`)})
	assert.Equal(t, "internal error", err.Message)
	assert.True(t, apperrors.IsUnexpected(err))
}

func TestFailureHandler_LateUnauthorizedStillLogsOut(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var logoutCtxErr error
	h := NewFailureHandler(nil, func(ctx context.Context) error {
		logoutCtxErr = ctx.Err()
		return nil
	}, nil)

	_ = h.Handle(ctx, &httpapi.StatusError{Status: 401})
	assert.NoError(t, logoutCtxErr)
}

func TestFailureHandler_LogsClassNotRequestURL(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := NewFailureHandler(&mockauth.RecordingNotifier{}, nil, logger)

	transportErr := &url.Error{
		Op:  "Get",
		URL: "https://api.example.com/reports?access_token=s3cr3t",
		Err: errors.New("connection refused"),
	}
	appErr := h.Handle(context.Background(), transportErr)

	assert.Equal(t, apperrors.ErrCodeUnexpected, appErr.Code)
	out := buf.String()
	assert.Contains(t, out, `"error_class"`)
	assert.NotContains(t, out, "s3cr3t")
	assert.NotContains(t, out, "api.example.com")
}
