package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
	"github.com/target/mmk-ui-session/internal/adapters/httpapi"
	apperrors "github.com/target/mmk-ui-session/internal/errors"
	obserrors "github.com/target/mmk-ui-session/internal/observability/errors"
	"github.com/target/mmk-ui-session/internal/ports"
)

// Messages used when a failure payload carries nothing usable.
const (
	DefaultFailureMessage    = "An unexpected error occurred"
	DefaultValidationMessage = "Validation failed"
)

// Payload expressions of the backend error contract.
const (
	validationMessagesExpr = "errors[*].msg"
	messageExpr            = "message"
)

// ClassifyFailure maps a failed response to a normalized error. It has no side effects.
func ClassifyFailure(status int, body []byte) *apperrors.AppError {
	payload := decodePayload(body)

	switch status {
	case http.StatusBadRequest:
		msgs := searchStrings(validationMessagesExpr, payload)
		if len(msgs) == 0 {
			msgs = []string{DefaultValidationMessage}
		}
		return apperrors.ValidationMessages(status, msgs)
	case http.StatusUnauthorized:
		return apperrors.Authentication(status, searchMessage(payload))
	default:
		return apperrors.Unexpected(status, searchMessage(payload))
	}
}

// normalizeFailure turns any gateway error into a validation, authentication or unexpected AppError.
func normalizeFailure(err error) *apperrors.AppError {
	if appErr, ok := apperrors.As(err); ok {
		switch appErr.Code {
		case apperrors.ErrCodeValidation, apperrors.ErrCodeAuthentication, apperrors.ErrCodeUnexpected:
			return appErr
		}
	}
	var se *httpapi.StatusError
	if errors.As(err, &se) {
		return ClassifyFailure(se.Status, se.Body)
	}
	out := apperrors.Unexpected(0, DefaultFailureMessage)
	out.Cause = err
	return out
}

func decodePayload(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil
	}
	return v
}

func searchStrings(expr string, payload any) []string {
	if payload == nil {
		return nil
	}
	res, err := jmespath.Search(expr, payload)
	if err != nil {
		return nil
	}
	items, ok := res.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func searchMessage(payload any) string {
	if payload == nil {
		return DefaultFailureMessage
	}
	res, err := jmespath.Search(messageExpr, payload)
	if err != nil {
		return DefaultFailureMessage
	}
	if s, ok := res.(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return DefaultFailureMessage
}

// FailureHandler applies the side effects of a failed gateway call: one error notice,
// and on authentication failure a forced logout.
type FailureHandler struct {
	notifier ports.Notifier
	logout   func(ctx context.Context) error
	logger   *slog.Logger
}

// NewFailureHandler constructs a FailureHandler. logout runs after the notice on 401.
func NewFailureHandler(notifier ports.Notifier, logout func(ctx context.Context) error, logger *slog.Logger) *FailureHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FailureHandler{notifier: notifier, logout: logout, logger: logger}
}

// Handle normalizes err, presents it once and forces logout when the session was rejected.
// The returned error is always the normalized one; notifier and logout failures are only logged.
func (h *FailureHandler) Handle(ctx context.Context, err error) *apperrors.AppError {
	appErr := normalizeFailure(err)
	// Effects must complete even when the caller gave up on the request.
	ctx = context.WithoutCancel(ctx)

	// Raw transport errors carry request URLs; only their class is logged.
	h.logger.WarnContext(ctx, "api call failed",
		"code", string(appErr.Code),
		"status", appErr.Status,
		"error_class", obserrors.Classify(err),
	)

	if h.notifier != nil {
		notice := ports.Notice{Icon: ports.IconError, Title: "Error", Text: appErr.Message}
		if nerr := h.notifier.Notify(ctx, notice); nerr != nil {
			h.logger.WarnContext(ctx, "present failure notice", "error", nerr)
		}
	}

	if appErr.Code == apperrors.ErrCodeAuthentication && h.logout != nil {
		if lerr := h.logout(ctx); lerr != nil {
			h.logger.ErrorContext(ctx, "forced logout failed", "error", lerr)
		}
	}
	return appErr
}
