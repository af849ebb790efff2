package pagination

import "fmt"

// SortOrder selects the server-side ordering of a listing. The constant
// values are the exact lowercase tokens the query string carries.
type SortOrder string

const (
	SortNew           SortOrder = "new"
	SortHot           SortOrder = "hot"
	SortTop           SortOrder = "top"
	SortControversial SortOrder = "controversial"
)

// TimeWindow restricts ranking-sensitive sorts (top, controversial) to a
// time range. The token is transmitted for every parameterized listing;
// the server ignores it for sorts that do not rank by time.
type TimeWindow string

const (
	WindowAll   TimeWindow = "all"
	WindowYear  TimeWindow = "year"
	WindowMonth TimeWindow = "month"
	WindowWeek  TimeWindow = "week"
	WindowDay   TimeWindow = "day"
	WindowHour  TimeWindow = "hour"
)

// ParseSortOrder maps a wire token onto the closed sort set.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(s) {
	case SortNew, SortHot, SortTop, SortControversial:
		return SortOrder(s), nil
	default:
		return "", fmt.Errorf("unknown sort order %q", s)
	}
}

// ParseTimeWindow maps a wire token onto the closed window set.
func ParseTimeWindow(s string) (TimeWindow, error) {
	switch TimeWindow(s) {
	case WindowAll, WindowYear, WindowMonth, WindowWeek, WindowDay, WindowHour:
		return TimeWindow(s), nil
	default:
		return "", fmt.Errorf("unknown time window %q", s)
	}
}
