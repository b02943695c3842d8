package live

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// TerminalNotifier rings the terminal bell and prints a toast box.
type TerminalNotifier struct {
	out   io.Writer
	box   lipgloss.Style
	title lipgloss.Style
}

// NewTerminalNotifier writes alerts to out, normally stderr.
func NewTerminalNotifier(out io.Writer) *TerminalNotifier {
	return &TerminalNotifier{
		out: out,
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("42")).
			Padding(0, 1),
		title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
	}
}

// Sound rings the bell.
func (n *TerminalNotifier) Sound() error {
	_, err := io.WriteString(n.out, "\a")
	return err
}

// Toast prints a short summary of the new ticket.
func (n *TerminalNotifier) Toast(t domain.Ticket) {
	body := n.title.Render("New ticket received")
	if t.Title != "" {
		body += "\n" + t.Title
	}
	if t.CreatedByName != "" {
		body += fmt.Sprintf("\n%s %s · %s", t.CreatedByName, t.CreatedBySurname, t.CreatedByDepartment)
	}
	body += "\n" + lipgloss.NewStyle().Faint(true).Render(t.ID)
	fmt.Fprintln(n.out, n.box.Render(body))
}
