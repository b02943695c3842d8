package domain

// FilterDimension names one constraint of a TicketFilter.
type FilterDimension string

const (
	FilterStatus     FilterDimension = "status"
	FilterPriority   FilterDimension = "priority"
	FilterAssignedTo FilterDimension = "assigned_to"
	FilterCategory   FilterDimension = "category"
)

// TicketFilter holds optional equality constraints. A zero field means no
// constraint on that dimension.
type TicketFilter struct {
	Status     TicketStatus
	Priority   TicketPriority
	AssignedTo Assignee
	Category   Category
}

// IsEmpty reports whether no dimension is set.
func (f TicketFilter) IsEmpty() bool {
	return f == TicketFilter{}
}

// Without returns a copy of f with one dimension cleared.
func (f TicketFilter) Without(dim FilterDimension) TicketFilter {
	switch dim {
	case FilterStatus:
		f.Status = ""
	case FilterPriority:
		f.Priority = ""
	case FilterAssignedTo:
		f.AssignedTo = ""
	case FilterCategory:
		f.Category = ""
	}
	return f
}

// Matches reports whether t satisfies every set dimension of f.
func (f TicketFilter) Matches(t Ticket) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.AssignedTo != "" && t.AssignedTo != f.AssignedTo {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	return true
}

// ApplyFilter returns the tickets matching f in their original order.
func ApplyFilter(tickets []Ticket, f TicketFilter) []Ticket {
	result := make([]Ticket, 0, len(tickets))
	for _, t := range tickets {
		if f.Matches(t) {
			result = append(result, t)
		}
	}
	return result
}
