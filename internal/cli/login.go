package cli

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/target/mmk-ui-session/internal/service"
)

var errCanceled = errors.New("canceled")

func (a *app) newLoginCmd() *cobra.Command {
	var form service.LoginForm

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Long: "Sign in with email and password. Missing values are prompted for. " +
			"An existing session is kept and the command only reports where it landed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			flow := a.svc.LoginFlow

			already, err := flow.Enter(ctx)
			if err != nil {
				return err
			}
			if already {
				a.printf("Already signed in; at %s\n", a.router.Current())
				return nil
			}

			if form.Email == "" {
				if form.Email, err = a.prompt("Email: "); err != nil {
					return err
				}
			}
			if form.Password == "" {
				if form.Password, err = a.prompt("Password: "); err != nil {
					return err
				}
			}

			if fieldErrs := flow.Validate(form); fieldErrs != nil {
				for _, field := range slices.Sorted(maps.Keys(fieldErrs)) {
					a.printf("  %s: %s\n", field, fieldErrs[field])
				}
				return errors.New("invalid login form")
			}

			start, err := flow.Submit(ctx, form)
			if err != nil {
				// The gateway already presented the failure.
				return fmt.Errorf("login failed: %w", err)
			}
			a.printf("Signed in as %s", start.Profile.Name)
			if role := start.Profile.RoleName(); role != "" {
				a.printf(" (%s)", role)
			}
			a.printf("; at %s\n", a.router.Current())
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Email, "email", "", "Account email (prompted if omitted)")
	cmd.Flags().StringVar(&form.Password, "password", "", "Account password (prompted if omitted)")
	cmd.Flags().StringVar(&form.ReturnURL, "return-url", "", "Local path to open after signing in")
	return cmd
}

func (a *app) newLogoutCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if yes {
				if err := a.svc.Gateway.Logout(ctx); err != nil {
					return err
				}
				a.printf("Logged out\n")
				return nil
			}

			done, err := a.svc.LoginFlow.ConfirmLogout(ctx)
			if err != nil {
				return err
			}
			if !done {
				a.printf("Logout canceled\n")
				return errCanceled
			}
			a.printf("Logged out\n")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// prompt writes label and reads one line. End of input after some text still counts.
func (a *app) prompt(label string) (string, error) {
	a.printf("%s", label)
	line, err := a.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
