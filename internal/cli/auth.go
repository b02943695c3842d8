package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk/internal/api/dto"
)

func newLoginCmd(app *App) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = envOr("HELPDESK_PASSWORD", "")
			}
			if username == "" || password == "" {
				return writeErr(cmd, errors.New("--username and --password (or HELPDESK_PASSWORD) are required"))
			}
			ok, err := app.session.Login(cmd.Context(), username, password)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !ok {
				return writeErr(cmd, errors.New("invalid credentials"))
			}
			current, _ := app.session.Current()
			return writeOut(cmd, app, map[string]any{
				"user":       dto.NewUserResponse(current.User),
				"expires_at": current.ExpiresAt,
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "Staff username")
	cmd.Flags().StringVar(&password, "password", "", "Password (prefer HELPDESK_PASSWORD)")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke and forget the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.session.Logout(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"logged_out": true})
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(); err != nil {
				return writeErr(cmd, err)
			}
			user, err := app.api.Me(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, dto.NewUserResponse(user))
		},
	}
}
