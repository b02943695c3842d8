package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Zone is the fixed UTC+3 offset every ticket timestamp is computed in,
// regardless of the host locale.
var Zone = time.FixedZone("UTC+3", 3*60*60)

// RetentionPeriod is how long a ticket lives before the retention sweep removes it.
const RetentionPeriod = 7 * 24 * time.Hour

// TicketPriority enumerates urgency labels.
type TicketPriority string

const (
	TicketPriorityVeryImportant TicketPriority = "Very Important"
	TicketPriorityImportant     TicketPriority = "Important"
	TicketPrioritySecondary     TicketPriority = "Secondary"
)

// TicketPriorities lists priorities from highest to lowest.
var TicketPriorities = []TicketPriority{
	TicketPriorityVeryImportant,
	TicketPriorityImportant,
	TicketPrioritySecondary,
}

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	for _, candidate := range TicketPriorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// Category classifies the reported problem.
type Category string

const (
	CategoryMunicipality  Category = "Municipality"
	CategoryPrinterIssue  Category = "Printer Issue"
	CategoryEMunicipality Category = "E-Municipality"
	CategoryOther         Category = "Other"
)

// Categories lists every selectable category.
var Categories = []Category{
	CategoryMunicipality,
	CategoryPrinterIssue,
	CategoryEMunicipality,
	CategoryOther,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, candidate := range Categories {
		if candidate == c {
			return true
		}
	}
	return false
}

// Assignee is a member of the fixed IT staff roster.
type Assignee string

const (
	AssigneeEmir   Assignee = "Emir"
	AssigneeAhmet  Assignee = "Ahmet"
	AssigneeAtakan Assignee = "Atakan"
	AssigneeGorkem Assignee = "Görkem"
)

// DefaultAssignee receives every newly submitted ticket.
const DefaultAssignee = AssigneeEmir

// Assignees is the staff roster.
var Assignees = []Assignee{AssigneeEmir, AssigneeAhmet, AssigneeAtakan, AssigneeGorkem}

// Valid reports whether a is on the roster.
func (a Assignee) Valid() bool {
	for _, candidate := range Assignees {
		if candidate == a {
			return true
		}
	}
	return false
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID                  string
	Title               string
	Description         string
	Status              TicketStatus
	Priority            TicketPriority
	AssignedTo          Assignee
	Category            Category
	CreatedByName       string
	CreatedBySurname    string
	CreatedByDepartment Department
	CreatedAt           time.Time
	IPAddress           string
	RejectionComment    string
	ResolvedAt          *time.Time
}

// NewTicketID returns a timestamp-derived identifier with a random suffix.
func NewTicketID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("ticket-%d-%s", now.UnixMilli(), suffix)
}

// ApplyCategoryRules enforces the couplings between category and the other
// fields. It must run on every mutation path.
func ApplyCategoryRules(t *Ticket) {
	if t.Category == CategoryPrinterIssue {
		t.Priority = TicketPriorityVeryImportant
	}
}

// Validate checks enum membership and the rejection comment invariant.
func (t *Ticket) Validate() error {
	details := map[string]any{}
	if strings.TrimSpace(t.Title) == "" {
		details["title"] = "required"
	}
	if strings.TrimSpace(t.Description) == "" {
		details["description"] = "required"
	}
	if !t.Status.Valid() {
		details["status"] = "unknown status"
	}
	if !t.Priority.Valid() {
		details["priority"] = "unknown priority"
	}
	if !t.AssignedTo.Valid() {
		details["assigned_to"] = "unknown assignee"
	}
	if t.Category != "" && !t.Category.Valid() {
		details["category"] = "unknown category"
	}
	if !t.CreatedByDepartment.Valid() {
		details["created_by_department"] = "unknown department"
	}
	if t.Category == CategoryPrinterIssue && t.Priority != TicketPriorityVeryImportant {
		details["priority"] = "printer issues are always very important"
	}
	if t.Status == TicketStatusCouldNotBeSolved && strings.TrimSpace(t.RejectionComment) == "" {
		return ErrRejectionCommentRequired
	}
	if len(details) > 0 {
		return &ValidationError{Fields: details}
	}
	return nil
}
