package pagination

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mkarlsen/reddit-user-client/pkg/logging"
)

// Page is one fetched window of a listing. An empty After cursor means the
// listing is exhausted.
type Page[T any] struct {
	Items []T
	After string
}

// FetchFunc retrieves a single page. Implementations perform one
// authenticated GET of path with rawQuery and map the response body onto
// typed items. Errors propagate to the Next call that triggered the fetch.
type FetchFunc[T any] func(ctx context.Context, path, rawQuery string) (Page[T], error)

// Listing is a lazy, cursor-driven sequence of typed items backed by a
// paginated endpoint. It owns its request state, the buffered page, and the
// running count of items yielded; distinct listings share nothing.
//
// A Listing is not safe for concurrent use: callers must serialize access to
// an instance. It cannot be rewound; construct a fresh Listing to read from
// the start again.
type Listing[T any] struct {
	req   Request
	fetch FetchFunc[T]

	buf     []T
	bufIdx  int
	yielded int
	max     int

	started bool
	done    bool
	err     error

	logger zerolog.Logger
}

// New builds a listing in the simple family: no sort or window token is ever
// sent, the server applies its default ordering. max bounds the total number
// of items yielded across all pages; a negative max means unbounded, and a
// max of zero yields an empty sequence without any fetch.
func New[T any](fetch FetchFunc[T], path string, max, pageSize int) (*Listing[T], error) {
	if err := checkPageSize(pageSize); err != nil {
		return nil, err
	}

	if max < 0 {
		max = -1
	}

	return &Listing[T]{
		req:    Request{Path: path, PageSize: pageSize},
		fetch:  fetch,
		max:    max,
		logger: logging.NewLogger("pagination"),
	}, nil
}

// NewSorted builds a listing in the parameterized family: every page fetch
// carries the sort, limit, and window tokens, in that order. The sequence has
// no item bound; it exhausts when the server stops returning a cursor.
func NewSorted[T any](fetch FetchFunc[T], path string, sort SortOrder, pageSize int, window TimeWindow) (*Listing[T], error) {
	if err := checkPageSize(pageSize); err != nil {
		return nil, err
	}

	return &Listing[T]{
		req: Request{
			Path:     path,
			Sort:     sort,
			Window:   window,
			PageSize: pageSize,
			sorted:   true,
		},
		fetch:  fetch,
		max:    -1,
		logger: logging.NewLogger("pagination"),
	}, nil
}

// Next yields the next item in the sequence. The boolean is false once the
// listing is exhausted; exhaustion is the sole end-of-data signal and never
// an error. A fetch or decode failure terminates the listing: the error
// returns from this call and from every call after it.
func (l *Listing[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T

	if l.err != nil {
		return zero, false, l.err
	}
	if l.done {
		return zero, false, nil
	}
	if l.max >= 0 && l.yielded >= l.max {
		l.done = true
		return zero, false, nil
	}

	// An empty page that still carries a cursor keeps the loop fetching;
	// only an absent cursor terminates.
	for l.bufIdx >= len(l.buf) {
		if l.started && l.req.After == "" {
			l.done = true
			return zero, false, nil
		}

		page, err := l.fetch(ctx, l.req.Path, l.req.Query())
		if err != nil {
			l.err = err
			return zero, false, err
		}

		l.started = true
		l.buf = page.Items
		l.bufIdx = 0
		l.req.After = page.After

		l.logger.Debug().
			Str("path", l.req.Path).
			Int("items", len(page.Items)).
			Str("after", page.After).
			Int("yielded", l.yielded).
			Msg("Fetched listing page")
	}

	item := l.buf[l.bufIdx]
	l.bufIdx++
	l.yielded++
	return item, true, nil
}

// Collect drains the listing and returns every remaining item. On error the
// items gathered so far are returned alongside it.
func (l *Listing[T]) Collect(ctx context.Context) ([]T, error) {
	var items []T
	for {
		item, ok, err := l.Next(ctx)
		if err != nil {
			return items, err
		}
		if !ok {
			return items, nil
		}
		items = append(items, item)
	}
}

// Take yields up to n further items. Fewer are returned when the listing
// exhausts first.
func (l *Listing[T]) Take(ctx context.Context, n int) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}

	items := make([]T, 0, n)
	for len(items) < n {
		item, ok, err := l.Next(ctx)
		if err != nil {
			return items, err
		}
		if !ok {
			break
		}
		items = append(items, item)
	}
	return items, nil
}

// Yielded reports how many items the listing has produced so far.
func (l *Listing[T]) Yielded() int {
	return l.yielded
}
