package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jmespath-community/go-jmespath"
	"github.com/spf13/cobra"
	domainauth "github.com/target/mmk-ui-session/internal/domain/auth"
)

var (
	errNotAuthenticated = errors.New("not signed in")
	errNotPermitted     = errors.New("role not permitted")
)

func (a *app) newWhoamiCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Fetch the signed-in profile from the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile, err := a.svc.Gateway.Profile(cmd.Context())
			if err != nil {
				return err
			}
			return a.writeProfile(profile, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the profile as JSON")
	return cmd
}

func (a *app) newStatusCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stored session state without calling the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			state := a.svc.Oracle.State(ctx)
			profile, hasProfile := a.svc.Oracle.CurrentProfile(ctx)

			if asJSON {
				out := struct {
					State   domainauth.State    `json:"state"`
					Profile *domainauth.Profile `json:"profile,omitempty"`
				}{State: state}
				if hasProfile {
					out.Profile = &profile
				}
				return a.writeJSON(out)
			}

			a.printf("State: %s\n", state)
			if hasProfile {
				a.printf("User:  %s\n", profile.Name)
				if role := profile.RoleName(); role != "" {
					a.printf("Role:  %s\n", role)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the state as JSON")
	return cmd
}

func (a *app) newCanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "can <role> [role...]",
		Short: "Exit non-zero unless the stored profile holds one of the roles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !a.svc.Oracle.IsAuthenticated(ctx) {
				a.printf("no\n")
				return errNotAuthenticated
			}
			if !a.svc.Oracle.HasRole(ctx, args...) {
				a.printf("no\n")
				return errNotPermitted
			}
			a.printf("yes\n")
			return nil
		},
	}
}

func (a *app) newOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <path>",
		Short: "Resolve a client route through the route guard",
		Long: "open asks the route guard whether the stored session may view path and " +
			"prints where navigation ends up.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest, err := a.svc.Guard.Navigate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if dest != args[0] {
				a.printf("Redirected to %s\n", dest)
				return nil
			}
			a.printf("Opened %s\n", dest)
			return nil
		},
	}
}

func (a *app) newRequestCmd() *cobra.Command {
	var (
		data  string
		query string
	)

	cmd := &cobra.Command{
		Use:   "request <method> <path>",
		Short: "Send an authorized API request and print its data",
		Long: "request sends the stored bearer token with an arbitrary API call. " +
			"--query filters the returned data with a JMESPath expression.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method := strings.ToUpper(args[0])
			var body any
			if data != "" {
				if !json.Valid([]byte(data)) {
					return errors.New("--data must be valid JSON")
				}
				body = json.RawMessage(data)
			}

			var out json.RawMessage
			if err := a.svc.Gateway.Authorized(cmd.Context(), method, args[1], body, &out); err != nil {
				return err
			}
			if query == "" {
				return a.writeJSON(out)
			}

			var doc any
			if err := json.Unmarshal(out, &doc); err != nil {
				return fmt.Errorf("decode response data: %w", err)
			}
			result, err := jmespath.Search(query, doc)
			if err != nil {
				return fmt.Errorf("query %q: %w", query, err)
			}
			return a.writeJSON(result)
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body")
	cmd.Flags().StringVarP(&query, "query", "q", "", "JMESPath expression applied to the response data")
	return cmd
}

func (a *app) writeProfile(p domainauth.Profile, asJSON bool) error {
	if asJSON {
		return a.writeJSON(p)
	}
	a.printf("ID:    %d\n", p.ID)
	a.printf("Name:  %s\n", p.Name)
	if p.Email != "" {
		a.printf("Email: %s\n", p.Email)
	}
	if role := p.RoleName(); role != "" {
		a.printf("Role:  %s\n", role)
	}
	return nil
}

func (a *app) writeJSON(v any) error {
	enc := json.NewEncoder(a.opts.Out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
