package stats

import (
	"fmt"
	"strings"
	"time"
)

// Window scopes an aggregation query.
type Window string

const (
	WindowWeekly  Window = "weekly"
	WindowMonthly Window = "monthly"
	WindowAllTime Window = "alltime"
)

// Windows lists the supported windows in display order.
var Windows = []Window{WindowWeekly, WindowMonthly, WindowAllTime}

// ParseWindow accepts a window name. An empty string means weekly.
func ParseWindow(s string) (Window, error) {
	switch Window(strings.ToLower(strings.TrimSpace(s))) {
	case "", WindowWeekly, "week", "7d":
		return WindowWeekly, nil
	case WindowMonthly, "month", "30d":
		return WindowMonthly, nil
	case WindowAllTime, "all":
		return WindowAllTime, nil
	}
	return "", fmt.Errorf("unknown window %q", s)
}

// Since returns the inclusive lower bound, or nil for all-time.
func (w Window) Since(now time.Time) *time.Time {
	var d time.Duration
	switch w {
	case WindowWeekly:
		d = 7 * 24 * time.Hour
	case WindowMonthly:
		d = 30 * 24 * time.Hour
	default:
		return nil
	}
	since := now.UTC().Add(-d)
	return &since
}

// Title is the report heading for the window.
func (w Window) Title() string {
	switch w {
	case WindowWeekly:
		return "Last 7 days"
	case WindowMonthly:
		return "Last 30 days"
	case WindowAllTime:
		return "All time"
	}
	return "Summary"
}
