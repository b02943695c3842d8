package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
)

type filterFlags struct {
	status, priority, assignee, category string
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.status, "status", "", "Only tickets with this status")
	cmd.Flags().StringVar(&f.priority, "priority", "", "Only tickets with this priority")
	cmd.Flags().StringVar(&f.assignee, "assignee", "", "Only tickets assigned to this staff member")
	cmd.Flags().StringVar(&f.category, "category", "", "Only tickets in this category")
}

func (f *filterFlags) filter() (domain.TicketFilter, error) {
	out := domain.TicketFilter{
		Status:     domain.TicketStatus(f.status),
		Priority:   domain.TicketPriority(f.priority),
		AssignedTo: domain.Assignee(f.assignee),
		Category:   domain.Category(f.category),
	}
	switch {
	case out.Status != "" && !out.Status.Valid():
		return out, fmt.Errorf("unknown status %q", f.status)
	case out.Priority != "" && !out.Priority.Valid():
		return out, fmt.Errorf("unknown priority %q", f.priority)
	case out.AssignedTo != "" && !out.AssignedTo.Valid():
		return out, fmt.Errorf("unknown assignee %q", f.assignee)
	case out.Category != "" && !out.Category.Valid():
		return out, fmt.Errorf("unknown category %q", f.category)
	}
	return out, nil
}

func newSubmitCmd(app *App) *cobra.Command {
	var req dto.SubmitTicketRequest
	var category, department string
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "File a new ticket through the public form",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Category = domain.Category(category)
			req.CreatedByDepartment = domain.Department(department)
			created, err := app.tickets.Create(cmd.Context(), req)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, dto.NewTicketResponse(created))
		},
	}
	cmd.Flags().StringVar(&req.Title, "title", "", "Short summary")
	cmd.Flags().StringVar(&req.Description, "description", "", "What happened")
	cmd.Flags().StringVar(&category, "category", "", "Municipality, Printer Issue, E-Municipality or Other")
	cmd.Flags().StringVar(&req.CreatedByName, "name", "", "Reporter first name")
	cmd.Flags().StringVar(&req.CreatedBySurname, "surname", "", "Reporter surname")
	cmd.Flags().StringVar(&department, "department", "", "Reporter directorate")
	return cmd
}

func newListCmd(app *App) *cobra.Command {
	var flags filterFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tickets, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(); err != nil {
				return writeErr(cmd, err)
			}
			filter, err := flags.filter()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := app.tickets.Reload(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			app.tickets.SetFilter(filter)
			return writeOut(cmd, app, dto.NewTicketList(app.tickets.Visible()))
		},
	}
	flags.bind(cmd)
	return cmd
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <ticket-id>",
		Short: "Show one ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(); err != nil {
				return writeErr(cmd, err)
			}
			t, err := app.api.GetTicket(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, dto.NewTicketResponse(t))
		},
	}
}

func newToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <ticket-id>",
		Short: "Advance Open -> In Progress -> Solved -> Open",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(); err != nil {
				return writeErr(cmd, err)
			}
			if err := app.tickets.Reload(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			t, err := app.tickets.ToggleStatus(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, dto.NewTicketResponse(t))
		},
	}
}

func newEditCmd(app *App) *cobra.Command {
	var title, description, status, priority, assignee, category, comment string
	cmd := &cobra.Command{
		Use:   "edit <ticket-id>",
		Short: "Edit a ticket (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAdmin(); err != nil {
				return writeErr(cmd, err)
			}
			var req dto.UpdateTicketRequest
			flags := cmd.Flags()
			if flags.Changed("title") {
				req.Title = &title
			}
			if flags.Changed("description") {
				req.Description = &description
			}
			if flags.Changed("status") {
				s := domain.TicketStatus(status)
				if !s.Valid() {
					return writeErr(cmd, fmt.Errorf("unknown status %q", status))
				}
				req.Status = &s
			}
			if flags.Changed("priority") {
				p := domain.TicketPriority(priority)
				if !p.Valid() {
					return writeErr(cmd, fmt.Errorf("unknown priority %q", priority))
				}
				req.Priority = &p
			}
			if flags.Changed("assignee") {
				a := domain.Assignee(assignee)
				if !a.Valid() {
					return writeErr(cmd, fmt.Errorf("unknown assignee %q", assignee))
				}
				req.AssignedTo = &a
			}
			if flags.Changed("category") {
				c := domain.Category(category)
				if !c.Valid() {
					return writeErr(cmd, fmt.Errorf("unknown category %q", category))
				}
				req.Category = &c
			}
			if flags.Changed("comment") {
				req.RejectionComment = &comment
			}
			if req.Status != nil && *req.Status == domain.TicketStatusCouldNotBeSolved && !flags.Changed("comment") {
				return writeErr(cmd, domain.ErrRejectionCommentRequired)
			}

			t, err := app.tickets.Update(cmd.Context(), args[0], req)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, dto.NewTicketResponse(t))
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&status, "status", "", "New status")
	cmd.Flags().StringVar(&priority, "priority", "", "New priority")
	cmd.Flags().StringVar(&assignee, "assignee", "", "New assignee")
	cmd.Flags().StringVar(&category, "category", "", "New category")
	cmd.Flags().StringVar(&comment, "comment", "", "Rejection comment, required for Could Not Be Solved")
	return cmd
}

func newDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <ticket-id>",
		Short: "Delete a ticket (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAdmin(); err != nil {
				return writeErr(cmd, err)
			}
			if err := app.tickets.Delete(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"deleted": args[0]})
		},
	}
}

func newCleanupCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete tickets older than the retention window (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAdmin(); err != nil {
				return writeErr(cmd, err)
			}
			removed, err := app.api.Cleanup(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, dto.CleanupResponse{Removed: removed})
		},
	}
}
