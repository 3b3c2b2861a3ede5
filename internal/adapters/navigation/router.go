package navigation

// Package navigation provides a Navigator that records route changes for hosts without a
// browser router.

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// Router tracks the current location and the history of navigations.
type Router struct {
	mu       sync.Mutex
	current  string
	history  []string
	onChange func(ctx context.Context, from, to string)
}

// NewRouter creates a Router positioned at start.
func NewRouter(start string) *Router {
	return &Router{current: start}
}

// OnChange registers a listener invoked after every successful navigation.
func (r *Router) OnChange(fn func(ctx context.Context, from, to string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = fn
}

// Navigate moves to destination, an absolute route path with an optional query.
func (r *Router) Navigate(ctx context.Context, destination string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !strings.HasPrefix(destination, "/") {
		return fmt.Errorf("navigate: route %q must be absolute", destination)
	}
	if _, err := url.ParseRequestURI(destination); err != nil {
		return fmt.Errorf("navigate: %w", err)
	}

	r.mu.Lock()
	from := r.current
	r.current = destination
	r.history = append(r.history, destination)
	fn := r.onChange
	r.mu.Unlock()

	if fn != nil {
		fn(ctx, from, destination)
	}
	return nil
}

// Current returns the current location.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Path returns the current location without its query.
func (r *Router) Path() string {
	cur := r.Current()
	if i := strings.IndexByte(cur, '?'); i >= 0 {
		return cur[:i]
	}
	return cur
}

// Query returns a query parameter of the current location.
func (r *Router) Query(name string) string {
	u, err := url.ParseRequestURI(r.Current())
	if err != nil {
		return ""
	}
	return u.Query().Get(name)
}

// History returns a copy of every destination navigated to, oldest first.
func (r *Router) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.history))
	copy(out, r.history)
	return out
}
