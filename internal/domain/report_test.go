package domain

import (
	"testing"
	"time"
)

func TestResolutionRate(t *testing.T) {
	tests := []struct {
		name    string
		buckets []CountBucket
		want    int
	}{
		{"empty", nil, 0},
		{"zero counts", []CountBucket{{Key: "Solved", Count: 0}, {Key: "Open", Count: 0}}, 0},
		{"no solved", []CountBucket{{Key: "Open", Count: 4}}, 0},
		{"rounded", []CountBucket{{Key: "Solved", Count: 1}, {Key: "Open", Count: 2}}, 33},
		{"all solved", []CountBucket{{Key: "Solved", Count: 5}}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolutionRate(tt.buckets); got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseInterval(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"3 days 04:05:06", 3*24*time.Hour + 4*time.Hour + 5*time.Minute + 6*time.Second},
		{"1 day", 24 * time.Hour},
		{"00:12:30.512", 12*time.Minute + 30*time.Second},
		{"2 days 00:00:00", 48 * time.Hour},
	}
	for _, tt := range tests {
		got, err := ParseInterval(tt.in)
		if err != nil {
			t.Fatalf("ParseInterval(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseInterval(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	for _, bad := range []string{"", "soon", "1 mon"} {
		if _, err := ParseInterval(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{26*time.Hour + 3*time.Minute, "1 day 2 hours 3 minutes"},
		{2 * time.Hour, "2 hours"},
		{45 * time.Second, "less than a minute"},
		{3*24*time.Hour + time.Minute, "3 days 1 minute"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Fatalf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
