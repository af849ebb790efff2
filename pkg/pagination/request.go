package pagination

import (
	"fmt"
	"strconv"
	"strings"
)

// Page size bounds enforced before any request is issued. Reddit caps
// listing pages at 100 items; larger values are rejected, not clamped.
const (
	MinPageSize = 1
	MaxPageSize = 100
)

// RangeError reports a construction parameter outside its valid bounds.
// It is returned synchronously, before any network I/O.
type RangeError struct {
	Param string
	Value int
	Min   int
	Max   int
}

// Error implements the error interface.
func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %d out of range [%d, %d]", e.Param, e.Value, e.Min, e.Max)
}

func checkPageSize(pageSize int) error {
	if pageSize < MinPageSize || pageSize > MaxPageSize {
		return &RangeError{Param: "pageSize", Value: pageSize, Min: MinPageSize, Max: MaxPageSize}
	}
	return nil
}

// Request describes one listing endpoint together with the query parameters
// sent on every page fetch. After holds the continuation cursor; it is empty
// before the first fetch.
type Request struct {
	Path     string
	Sort     SortOrder
	Window   TimeWindow
	PageSize int
	After    string

	// sorted records the construction family: the parameterized family
	// transmits sort and window tokens, the simple family sends neither.
	sorted bool
}

// Query renders the request's query string. The wire format is positional,
// sort then limit then t, with the cursor appended last; identical inputs
// produce a byte-identical string.
func (r *Request) Query() string {
	var b strings.Builder

	if r.sorted {
		b.WriteString("sort=")
		b.WriteString(string(r.Sort))
		b.WriteString("&limit=")
		b.WriteString(strconv.Itoa(r.PageSize))
		b.WriteString("&t=")
		b.WriteString(string(r.Window))
	} else {
		b.WriteString("limit=")
		b.WriteString(strconv.Itoa(r.PageSize))
	}

	if r.After != "" {
		b.WriteString("&after=")
		b.WriteString(r.After)
	}

	return b.String()
}

// URL renders the full request target, path and query combined.
func (r *Request) URL() string {
	return r.Path + "?" + r.Query()
}
