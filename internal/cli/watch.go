package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/controller"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/live"
)

// printingSource prints the visible list after every successful reload.
type printingSource struct {
	list  *controller.TicketList
	print func([]domain.Ticket)
}

func (s printingSource) Reload(ctx context.Context) error {
	if err := s.list.Reload(ctx); err != nil {
		return err
	}
	s.print(s.list.Visible())
	return nil
}

func (s printingSource) Find(id string) (domain.Ticket, bool) {
	return s.list.Find(id)
}

func newWatchCmd(app *App) *cobra.Command {
	var flags filterFlags
	var poll time.Duration
	var quiet bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow ticket changes live until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(); err != nil {
				return writeErr(cmd, err)
			}
			filter, err := flags.filter()
			if err != nil {
				return writeErr(cmd, err)
			}
			current, _ := app.session.Current()
			feed, err := live.FeedURL(app.api.BaseURL(), current.Token)
			if err != nil {
				return writeErr(cmd, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app.tickets.SetFilter(filter)
			source := printingSource{list: app.tickets, print: func(tickets []domain.Ticket) {
				_ = writeOut(cmd, app, dto.NewTicketList(tickets))
			}}
			// fail fast on a bad session; the listener prints once subscribed
			if err := app.tickets.Reload(ctx); err != nil {
				return writeErr(cmd, err)
			}

			if poll > 0 {
				go func() {
					ticker := time.NewTicker(poll)
					defer ticker.Stop()
					for {
						select {
						case <-ctx.Done():
							return
						case <-ticker.C:
							if err := source.Reload(ctx); err != nil && ctx.Err() == nil {
								app.logger.Warn("poll reload failed", zap.Error(err))
							}
						}
					}
				}()
			}

			var notifier live.Notifier
			if !quiet {
				notifier = live.NewTerminalNotifier(cmd.ErrOrStderr())
			}
			return live.NewListener(feed, source, notifier, app.logger).Run(ctx)
		},
	}
	flags.bind(cmd)
	cmd.Flags().DurationVar(&poll, "poll", 0, "Also refetch on this interval (e.g. 30s)")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Do not ring or show toasts for new tickets")
	return cmd
}
