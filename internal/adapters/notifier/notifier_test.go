package notifier

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/mmk-ui-session/internal/ports"
)

func TestTerminal_Notify(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(&out, nil)

	err := term.Notify(context.Background(), ports.Notice{
		Icon:  ports.IconError,
		Title: "Error",
		Text:  "Email is invalid\nPassword too short",
	})
	require.NoError(t, err)
	assert.Equal(t, "[✖] Error\n    Email is invalid\n    Password too short\n", out.String())
}

func TestTerminal_Confirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		label string
		want  bool
	}{
		{name: "yes", input: "y\n", want: true},
		{name: "full yes", input: "YES\n", want: true},
		{name: "confirm label", input: "log out\n", label: "Log out", want: true},
		{name: "empty answer", input: "\n", want: false},
		{name: "no", input: "n\n", want: false},
		{name: "eof", input: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			term := NewTerminal(&out, strings.NewReader(tt.input))
			got, err := term.Confirm(context.Background(), ports.Notice{
				Icon:         ports.IconQuestion,
				Title:        "Log out?",
				ConfirmLabel: tt.label,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "[?] Log out?")
		})
	}
}

func TestTerminal_ConfirmWithoutInput(t *testing.T) {
	term := NewTerminal(&bytes.Buffer{}, nil)
	_, err := term.Confirm(context.Background(), ports.Notice{Title: "x"})
	require.Error(t, err)
}

func TestTerminal_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	err := NewTerminal(&out, nil).Notify(ctx, ports.Notice{Title: "x"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}

func TestLog_NotifyLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	n := NewLog(logger)

	require.NoError(t, n.Notify(context.Background(), ports.Notice{Icon: ports.IconError, Title: "Error", Text: "boom"}))
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
	assert.Contains(t, buf.String(), `"text":"boom"`)

	buf.Reset()
	require.NoError(t, n.Notify(context.Background(), ports.Notice{Icon: ports.IconSuccess, Title: "Welcome!"}))
	assert.Contains(t, buf.String(), `"level":"INFO"`)
}

func TestLog_ConfirmUsesDefault(t *testing.T) {
	n := NewLog(nil)
	ok, err := n.Confirm(context.Background(), ports.Notice{Title: "Log out?"})
	require.NoError(t, err)
	assert.False(t, ok)

	n.Default = true
	ok, err = n.Confirm(context.Background(), ports.Notice{Title: "Log out?"})
	require.NoError(t, err)
	assert.True(t, ok)
}
