// Package mocks provides gomock implementations of the session ports for tests.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	notifier := mocks.NewMockNotifier(ctrl)
//	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil)
package mocks

// Generate mocks for the storage, presentation and navigation ports and the session store.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=ports_mock.go github.com/target/mmk-ui-session/internal/ports KeyValueStore,Notifier,Navigator,SessionStore
