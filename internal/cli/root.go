// Package cli implements the ticketctl command tree.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/client"
	"github.com/spec-kit/helpdesk/internal/controller"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/session"
)

var errNotLoggedIn = errors.New("not logged in; run `ticketctl login`")

// App carries the flags and the wired client components for one invocation.
type App struct {
	APIURL      string
	SessionFile string
	PrettyJSON  bool
	Verbose     bool

	logger  *zap.Logger
	api     *client.Client
	session *session.Manager
	tickets *controller.TicketList
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "ticketctl",
		Short:        "Staff client for the municipal IT helpdesk",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Sign in once; the session is kept between runs
  ticketctl login --username admin

  # Open tickets assigned to Emir
  ticketctl list --status Open --assignee Emir

  # Follow changes live, ringing on new tickets
  ticketctl watch
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.init()
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if app.logger != nil {
			_ = app.logger.Sync()
		}
	}

	cmd.PersistentFlags().StringVar(&app.APIURL, "api", envOr("HELPDESK_API_URL", "http://127.0.0.1:8080"), "Helpdesk API base URL")
	cmd.PersistentFlags().StringVar(&app.SessionFile, "session-file", envOr("HELPDESK_SESSION_FILE", ""), "Path of the saved login (default: user config dir)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().BoolVar(&app.Verbose, "verbose", false, "Log debug output to stderr")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newSubmitCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newToggleCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newDeleteCmd(app))
	cmd.AddCommand(newCleanupCmd(app))
	cmd.AddCommand(newReportCmd(app))
	cmd.AddCommand(newWatchCmd(app))

	return cmd
}

func (a *App) init() error {
	level := "warn"
	if a.Verbose {
		level = "debug"
	}
	logger, err := observability.NewCLILogger(level)
	if err != nil {
		return err
	}
	a.logger = logger

	path := a.SessionFile
	if path == "" {
		path, err = session.DefaultPath()
		if err != nil {
			return fmt.Errorf("resolve session file: %w", err)
		}
	}

	a.api = client.New(a.APIURL, nil)
	a.session = session.NewManager(path, a.api, logger)
	a.session.Restore()
	a.tickets = controller.NewTicketList(a.api)
	return nil
}

func (a *App) requireSession() error {
	if !a.session.IsAuthenticated() {
		return errNotLoggedIn
	}
	return nil
}

func (a *App) requireAdmin() error {
	if err := a.requireSession(); err != nil {
		return err
	}
	if !a.session.IsAdmin() {
		return errors.New("this action requires the admin role")
	}
	return nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if app.PrettyJSON {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(map[string]any{"data": v})
}

func writeErr(cmd *cobra.Command, err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && len(apiErr.Details) > 0 {
		details, _ := json.Marshal(apiErr.Details)
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", err.Error(), details)
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
