package notifier

// Package notifier renders session notices for non-browser hosts: a terminal dialog for
// interactive use and a structured-log notifier for headless hosts.

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/target/mmk-ui-session/internal/ports"
)

var iconGlyphs = map[ports.Icon]string{
	ports.IconSuccess:  "✔",
	ports.IconError:    "✖",
	ports.IconWarning:  "!",
	ports.IconInfo:     "i",
	ports.IconQuestion: "?",
}

// Terminal writes notices to an output stream and reads confirmations from an input stream.
type Terminal struct {
	mu  sync.Mutex
	out io.Writer
	in  *bufio.Reader
}

// NewTerminal creates a Terminal. in may be nil for hosts that never confirm.
func NewTerminal(out io.Writer, in io.Reader) *Terminal {
	t := &Terminal{out: out}
	if in != nil {
		t.in = bufio.NewReader(in)
	}
	return t
}

// Notify prints the notice. Timers are ignored; a terminal line needs no dismissal.
func (t *Terminal) Notify(ctx context.Context, n ports.Notice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.write(n)
}

// Confirm prints the notice followed by a prompt and reads a y/N answer.
// Anything other than yes, y or the confirm label counts as cancel; so does end of input.
func (t *Terminal) Confirm(ctx context.Context, n ports.Notice) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if t.in == nil {
		return false, errors.New("terminal notifier has no input")
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.write(n); err != nil {
		return false, err
	}
	if _, err := fmt.Fprintf(t.out, "%s [y/N]: ", promptLabels(n)); err != nil {
		return false, fmt.Errorf("write prompt: %w", err)
	}

	line, err := t.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	switch {
	case answer == "y", answer == "yes":
		return true, nil
	case n.ConfirmLabel != "" && answer == strings.ToLower(n.ConfirmLabel):
		return true, nil
	}
	return false, nil
}

func (t *Terminal) write(n ports.Notice) error {
	glyph, ok := iconGlyphs[n.Icon]
	if !ok {
		glyph = "-"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", glyph, n.Title)
	if n.Text != "" {
		for _, line := range strings.Split(n.Text, "\n") {
			fmt.Fprintf(&b, "\n    %s", line)
		}
	}
	b.WriteByte('\n')
	if _, err := io.WriteString(t.out, b.String()); err != nil {
		return fmt.Errorf("write notice: %w", err)
	}
	return nil
}

func promptLabels(n ports.Notice) string {
	confirm, cancel := n.ConfirmLabel, n.CancelLabel
	if confirm == "" {
		confirm = "Yes"
	}
	if cancel == "" {
		cancel = "No"
	}
	return confirm + " / " + cancel
}
