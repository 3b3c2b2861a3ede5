package auth

// Package auth contains simple hand-written test doubles for the session ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"maps"
	"sync"

	"github.com/target/mmk-ui-session/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.Notifier      = (*RecordingNotifier)(nil)
	_ ports.Navigator     = (*RecordingNavigator)(nil)
	_ ports.KeyValueStore = (*FlakyStore)(nil)
)

// ErrInjected is the default failure returned by doubles configured to fail.
var ErrInjected = errors.New("injected failure")

// RecordingNotifier captures every notice it is asked to present.
type RecordingNotifier struct {
	mu       sync.Mutex
	notices  []ports.Notice
	confirms []ports.Notice

	// Answer is returned by Confirm.
	Answer bool
	// Err, when set, is returned by Notify and Confirm after recording.
	Err error
}

func (n *RecordingNotifier) Notify(_ context.Context, notice ports.Notice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return n.Err
}

func (n *RecordingNotifier) Confirm(_ context.Context, notice ports.Notice) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirms = append(n.confirms, notice)
	if n.Err != nil {
		return false, n.Err
	}
	return n.Answer, nil
}

// Notices returns the notices passed to Notify, oldest first.
func (n *RecordingNotifier) Notices() []ports.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]ports.Notice(nil), n.notices...)
}

// Confirms returns the notices passed to Confirm, oldest first.
func (n *RecordingNotifier) Confirms() []ports.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]ports.Notice(nil), n.confirms...)
}

// RecordingNavigator captures navigation destinations.
type RecordingNavigator struct {
	mu    sync.Mutex
	dests []string

	Err error
}

func (n *RecordingNavigator) Navigate(_ context.Context, destination string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.dests = append(n.dests, destination)
	return nil
}

// Destinations returns every successful navigation, oldest first.
func (n *RecordingNavigator) Destinations() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.dests...)
}

// Last returns the most recent destination or "".
func (n *RecordingNavigator) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.dests) == 0 {
		return ""
	}
	return n.dests[len(n.dests)-1]
}

// FlakyStore is a map-backed KeyValueStore with per-operation failure injection.
// It deliberately does not implement BatchWriter so callers exercise sequential writes.
type FlakyStore struct {
	mu   sync.Mutex
	data map[string]string

	// FailGet fails every Get.
	FailGet error
	// FailSetKey makes Set fail for one key only.
	FailSetKey string
	// FailSet is returned for FailSetKey (ErrInjected when nil).
	FailSet error
	// FailRemove fails every Remove.
	FailRemove error

	sets []string
}

// NewFlakyStore creates a store preloaded with data.
func NewFlakyStore(data map[string]string) *FlakyStore {
	s := &FlakyStore{data: make(map[string]string, len(data))}
	maps.Copy(s.data, data)
	return s
}

func (s *FlakyStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailGet != nil {
		return "", false, s.FailGet
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *FlakyStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets = append(s.sets, key)
	if s.FailSetKey != "" && key == s.FailSetKey {
		if s.FailSet != nil {
			return s.FailSet
		}
		return ErrInjected
	}
	if s.data == nil {
		s.data = make(map[string]string)
	}
	s.data[key] = value
	return nil
}

func (s *FlakyStore) Remove(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailRemove != nil {
		return s.FailRemove
	}
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

// SetOrder returns the keys passed to Set in call order.
func (s *FlakyStore) SetOrder() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sets...)
}

// Raw returns the stored value without failure injection.
func (s *FlakyStore) Raw(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}
