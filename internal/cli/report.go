package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk/internal/api/dto"
)

func newReportCmd(app *App) *cobra.Command {
	var text bool
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show ticket statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(); err != nil {
				return writeErr(cmd, err)
			}
			report, err := app.api.Report(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if text {
				renderReport(cmd.OutOrStdout(), report)
				return nil
			}
			return writeOut(cmd, app, report)
		},
	}
	cmd.Flags().BoolVar(&text, "text", false, "Render a human readable summary instead of JSON")
	return cmd
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	labelStyle   = lipgloss.NewStyle().Width(28)
)

func renderReport(w io.Writer, r dto.ReportResponse) {
	fmt.Fprintln(w, headingStyle.Render("Overview"))
	fmt.Fprintln(w, labelStyle.Render("Total tickets")+fmt.Sprint(r.TotalTickets))
	fmt.Fprintln(w, labelStyle.Render("Resolution rate")+fmt.Sprintf("%d%%", r.ResolutionRate))
	fmt.Fprintln(w, labelStyle.Render("Average resolution time")+r.AverageResolution)

	section := func(title string, rows []dto.CountResponse) {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headingStyle.Render(title))
		if len(rows) == 0 {
			fmt.Fprintln(w, "  -")
			return
		}
		for _, row := range rows {
			fmt.Fprintln(w, "  "+labelStyle.Render(row.Key)+fmt.Sprint(row.Count))
		}
	}
	section("By status", r.StatusCounts)
	section("By priority", r.PriorityCounts)
	section("By department", r.DepartmentCounts)
	section("By assignee", r.AssigneeCounts)

	fmt.Fprintln(w)
	fmt.Fprintln(w, headingStyle.Render("Hourly distribution"))
	var peak int64
	for _, h := range r.HourlyCounts {
		if h.Count > peak {
			peak = h.Count
		}
	}
	for _, h := range r.HourlyCounts {
		bar := 0
		if peak > 0 {
			bar = int(h.Count * 30 / peak)
		}
		fmt.Fprintf(w, "  %02d:00 %s %d\n", h.Hour, strings.Repeat("█", bar), h.Count)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, headingStyle.Render("Last 7 days"))
	for _, t := range r.Recent {
		fmt.Fprintf(w, "  %s  %-20s %-10s %s\n", t.CreatedAt.Format("2006-01-02 15:04"), t.Status, t.AssignedTo, t.Title)
	}
}
