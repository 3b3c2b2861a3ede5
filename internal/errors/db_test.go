package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapDBError_NilError(t *testing.T) {
	if err := MapDBError(nil); err != nil {
		t.Errorf("MapDBError(nil) = %v, want nil", err)
	}
}

func TestMapDBError_ContextErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode ErrorCode
	}{
		{name: "deadline exceeded", err: context.DeadlineExceeded, wantCode: ErrCodeTimeout},
		{name: "canceled", err: context.Canceled, wantCode: ErrCodeCanceled},
		{name: "wrapped deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), wantCode: ErrCodeTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.err)
			if GetCode(err) != tt.wantCode {
				t.Errorf("MapDBError() code = %v, want %v", GetCode(err), tt.wantCode)
			}
		})
	}
}

func TestMapDBError_NoRows(t *testing.T) {
	if err := MapDBError(pgx.ErrNoRows); GetCode(err) != ErrCodeNotFound {
		t.Errorf("MapDBError(pgx.ErrNoRows) should be NotFound, got %v", GetCode(err))
	}
}

func TestMapDBError_PgErrors(t *testing.T) {
	tests := []struct {
		name     string
		pgErr    *pgconn.PgError
		wantCode ErrorCode
		wantMsg  string
	}{
		{
			name:     "undefined table",
			pgErr:    &pgconn.PgError{Code: pgerrcode.UndefinedTable},
			wantCode: ErrCodeInternal,
			wantMsg:  "session table does not exist; run the storage migration",
		},
		{
			name:     "connection failure",
			pgErr:    &pgconn.PgError{Code: pgerrcode.ConnectionFailure},
			wantCode: ErrCodeInternal,
			wantMsg:  "session storage unavailable",
		},
		{
			name:     "too many connections",
			pgErr:    &pgconn.PgError{Code: pgerrcode.TooManyConnections},
			wantCode: ErrCodeInternal,
			wantMsg:  "session storage unavailable",
		},
		{
			name:     "not null",
			pgErr:    &pgconn.PgError{Code: pgerrcode.NotNullViolation, ColumnName: "value"},
			wantCode: ErrCodeValidation,
			wantMsg:  "session value rejected by storage",
		},
		{
			name:     "unknown",
			pgErr:    &pgconn.PgError{Code: pgerrcode.SyntaxError},
			wantCode: ErrCodeInternal,
			wantMsg:  "a session storage error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.pgErr)
			appErr, ok := As(err)
			if !ok {
				t.Fatalf("expected AppError, got %T", err)
			}
			if appErr.Code != tt.wantCode {
				t.Errorf("Code = %v, want %v", appErr.Code, tt.wantCode)
			}
			if appErr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", appErr.Message, tt.wantMsg)
			}
			var pgErr *pgconn.PgError
			if !errors.As(err, &pgErr) {
				t.Errorf("cause was not preserved")
			}
		})
	}
}

func TestMapDBError_StandardError(t *testing.T) {
	original := errors.New("boom")
	if err := MapDBError(original); !errors.Is(err, original) || GetCode(err) != "" {
		t.Errorf("MapDBError() should pass through unknown errors, got %v", err)
	}
}
