package domain

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CountBucket is one row of a grouped count.
type CountBucket struct {
	Key   string
	Count int64
}

// AssigneeStatusCount is one row of the per-assignee-per-status view.
type AssigneeStatusCount struct {
	AssignedTo string
	Status     string
	Count      int64
}

// HourCount is one bucket of the hour-of-day histogram.
type HourCount struct {
	Hour  int
	Count int64
}

// TicketSummary is the condensed row used by the report lists.
type TicketSummary struct {
	ID         string
	Title      string
	AssignedTo string
	Status     string
	CreatedAt  time.Time
	ResolvedAt *time.Time
}

// Report aggregates the read-only dashboard data.
type Report struct {
	TotalTickets          int64
	StatusCounts          []CountBucket
	PriorityCounts        []CountBucket
	DepartmentCounts      []CountBucket
	AssigneeCounts        []CountBucket
	AssigneeStatusCounts  []AssigneeStatusCount
	HourlyCounts          []HourCount
	AverageResolution     *time.Duration
	AverageResolutionText string
	ResolutionRate        int
	Recent                []TicketSummary
	Summary               []TicketSummary
	GeneratedAt           time.Time
}

// ResolutionRate returns the rounded percentage of solved tickets across the
// status buckets. An empty or zero total yields 0.
func ResolutionRate(statusCounts []CountBucket) int {
	var total, solved int64
	for _, bucket := range statusCounts {
		total += bucket.Count
		if bucket.Key == string(TicketStatusSolved) {
			solved += bucket.Count
		}
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(solved) / float64(total) * 100))
}

var intervalPattern = regexp.MustCompile(`^(?:(\d+) days?)?\s*(?:(\d+):(\d+):(\d+)(?:\.\d+)?)?$`)

// ParseInterval parses the Postgres interval text form ("3 days 04:05:06",
// "1 day", "00:12:30.5") into a duration.
func ParseInterval(text string) (time.Duration, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("empty interval")
	}
	m := intervalPattern.FindStringSubmatch(text)
	if m == nil || (m[1] == "" && m[2] == "") {
		return 0, fmt.Errorf("unsupported interval %q", text)
	}
	atoi := func(s string) int64 {
		if s == "" {
			return 0
		}
		v, _ := strconv.ParseInt(s, 10, 64)
		return v
	}
	d := time.Duration(atoi(m[1])) * 24 * time.Hour
	d += time.Duration(atoi(m[2])) * time.Hour
	d += time.Duration(atoi(m[3])) * time.Minute
	d += time.Duration(atoi(m[4])) * time.Second
	return d, nil
}

// FormatDuration renders d as "X days Y hours Z minutes", omitting zero units.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "less than a minute"
	}
	days := int64(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	hours := int64(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	minutes := int64(d / time.Minute)

	parts := []string{}
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	if len(parts) == 0 {
		return "less than a minute"
	}
	return strings.Join(parts, " ")
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
