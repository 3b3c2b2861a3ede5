package service

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	domainauth "github.com/target/mmk-ui-session/internal/domain/auth"
	apperrors "github.com/target/mmk-ui-session/internal/errors"
	"github.com/target/mmk-ui-session/internal/ports"
)

// DefaultLandingRoute is where an authenticated client lands when no return URL applies.
const DefaultLandingRoute = "/dashboard"

// MinPasswordLength is the shortest password the login form submits.
const MinPasswordLength = 6

// Login form fields.
const (
	FieldEmail    = "email"
	FieldPassword = "password"
)

// welcomeTimer is how long the success notice stays up.
const welcomeTimer = 1500 * time.Millisecond

// LoginForm is the user's input on the login screen.
type LoginForm struct {
	Email    string
	Password string
	// ReturnURL is where to go after login; "" or "/" means the default landing route.
	ReturnURL string
}

// FieldErrors maps form fields to their validation message.
type FieldErrors map[string]string

// Authenticator is the part of the Gateway the login flow needs.
type Authenticator interface {
	Login(ctx context.Context, creds domainauth.Credentials) (*domainauth.SessionStart, error)
	Logout(ctx context.Context) error
}

// AuthChecker reports whether a session exists.
type AuthChecker interface {
	IsAuthenticated(ctx context.Context) bool
}

// LoginFlowOptions groups dependencies for LoginFlow.
type LoginFlowOptions struct {
	Auth         Authenticator
	Checker      AuthChecker
	Notifier     ports.Notifier
	Navigator    ports.Navigator
	DefaultRoute string
	Logger       *slog.Logger
}

// LoginFlow drives the login screen: validation, submission, welcome and redirect.
// Failure presentation belongs to the Gateway; the flow never re-presents an error.
type LoginFlow struct {
	auth         Authenticator
	checker      AuthChecker
	notifier     ports.Notifier
	navigator    ports.Navigator
	defaultRoute string
	logger       *slog.Logger
	loading      atomic.Bool
}

// NewLoginFlow constructs a LoginFlow.
func NewLoginFlow(opts LoginFlowOptions) *LoginFlow {
	f := &LoginFlow{
		auth:         opts.Auth,
		checker:      opts.Checker,
		notifier:     opts.Notifier,
		navigator:    opts.Navigator,
		defaultRoute: opts.DefaultRoute,
		logger:       opts.Logger,
	}
	if f.defaultRoute == "" {
		f.defaultRoute = DefaultLandingRoute
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Enter is called when the login screen opens. An authenticated client is sent to the
// default landing route and Enter reports true.
func (f *LoginFlow) Enter(ctx context.Context) (bool, error) {
	if f.checker == nil || !f.checker.IsAuthenticated(ctx) {
		return false, nil
	}
	if err := f.navigate(ctx, f.defaultRoute); err != nil {
		return true, err
	}
	return true, nil
}

// Validate checks the form without any network call.
func (f *LoginFlow) Validate(form LoginForm) FieldErrors {
	errs := FieldErrors{}

	email := strings.TrimSpace(form.Email)
	switch {
	case email == "":
		errs[FieldEmail] = "Email is required"
	case !validEmail(email):
		errs[FieldEmail] = "Enter a valid email"
	}

	switch {
	case form.Password == "":
		errs[FieldPassword] = "Password is required"
	case utf8.RuneCountInString(form.Password) < MinPasswordLength:
		errs[FieldPassword] = "Minimum 6 characters"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Submit validates and, when valid, logs in. On success the user is welcomed and sent to
// the return URL. Errors were already presented by the Gateway.
func (f *LoginFlow) Submit(ctx context.Context, form LoginForm) (*domainauth.SessionStart, error) {
	if errs := f.Validate(form); errs != nil {
		return nil, apperrors.ValidationFields(errs)
	}
	if !f.loading.CompareAndSwap(false, true) {
		return nil, apperrors.Validation("login already in progress")
	}
	defer f.loading.Store(false)

	start, err := f.auth.Login(ctx, domainauth.Credentials{
		Identifier: strings.TrimSpace(form.Email),
		Secret:     form.Password,
	})
	if err != nil {
		return nil, err
	}

	if f.notifier != nil {
		notice := ports.Notice{
			Icon:  ports.IconSuccess,
			Title: "Welcome!",
			Text:  "Hello " + start.Profile.Name,
			Timer: welcomeTimer,
		}
		if nerr := f.notifier.Notify(ctx, notice); nerr != nil {
			f.logger.WarnContext(ctx, "present welcome notice", "error", nerr)
		}
	}

	if err := f.navigate(ctx, f.destination(form.ReturnURL)); err != nil {
		return start, err
	}
	return start, nil
}

// Loading reports whether a submission is in flight.
func (f *LoginFlow) Loading() bool { return f.loading.Load() }

// ConfirmLogout asks the user before logging out. It reports whether logout happened.
func (f *LoginFlow) ConfirmLogout(ctx context.Context) (bool, error) {
	if f.notifier == nil {
		return false, apperrors.Internal("no notifier to confirm logout")
	}
	ok, err := f.notifier.Confirm(ctx, ports.Notice{
		Icon:         ports.IconQuestion,
		Title:        "Log out?",
		Text:         "Are you sure you want to leave?",
		ConfirmLabel: "Yes, leave",
		CancelLabel:  "Cancel",
	})
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := f.auth.Logout(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// destination accepts only local absolute paths as return URLs.
func (f *LoginFlow) destination(returnURL string) string {
	r := strings.TrimSpace(returnURL)
	if r == "" || r == "/" || !strings.HasPrefix(r, "/") || strings.HasPrefix(r, "//") {
		return f.defaultRoute
	}
	return r
}

func (f *LoginFlow) navigate(ctx context.Context, dest string) error {
	if f.navigator == nil {
		return nil
	}
	if err := f.navigator.Navigate(ctx, dest); err != nil {
		return apperrors.Wrapf(err, apperrors.ErrCodeInternal, "navigate to %s", dest)
	}
	return nil
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	return at > 0 && at < len(s)-1
}
