package pagination

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// scriptedFetch returns a FetchFunc that serves the given pages in order and
// records every raw query it receives. Fetching past the script fails the test.
func scriptedFetch(t *testing.T, pages []Page[string]) (FetchFunc[string], *fetchLog) {
	t.Helper()
	log := &fetchLog{}
	fetch := func(ctx context.Context, path, rawQuery string) (Page[string], error) {
		if log.calls >= len(pages) {
			t.Fatalf("Unexpected fetch #%d with query %q", log.calls+1, rawQuery)
		}
		page := pages[log.calls]
		log.calls++
		log.paths = append(log.paths, path)
		log.queries = append(log.queries, rawQuery)
		return page, nil
	}
	return fetch, log
}

type fetchLog struct {
	calls   int
	paths   []string
	queries []string
}

func TestNew_ValidatesPageSize(t *testing.T) {
	fetch := func(ctx context.Context, path, rawQuery string) (Page[string], error) {
		t.Fatal("Fetch must not run during construction")
		return Page[string]{}, nil
	}

	tests := []struct {
		name     string
		pageSize int
		wantErr  bool
	}{
		{"lower_bound", 1, false},
		{"typical", 50, false},
		{"upper_bound", 100, false},
		{"zero", 0, true},
		{"negative", -5, true},
		{"above_cap", 101, true},
		{"well_above_cap", 150, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(fetch, "/user/alice/comments.json", -1, tt.pageSize)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(pageSize=%d) error = %v, wantErr %v", tt.pageSize, err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}

			var rangeErr *RangeError
			if !errors.As(err, &rangeErr) {
				t.Fatalf("Expected *RangeError, got %T", err)
			}
			if !strings.Contains(err.Error(), "[1, 100]") {
				t.Errorf("Error %q does not state the valid range [1, 100]", err.Error())
			}
		})
	}
}

func TestNewSorted_ValidatesPageSize(t *testing.T) {
	fetch := func(ctx context.Context, path, rawQuery string) (Page[string], error) {
		t.Fatal("Fetch must not run during construction")
		return Page[string]{}, nil
	}

	_, err := NewSorted(fetch, "/user/alice/comments.json", SortNew, 150, WindowAll)
	if err == nil {
		t.Fatal("Expected error for pageSize 150")
	}
	var rangeErr *RangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("Expected *RangeError, got %T", err)
	}
	if rangeErr.Value != 150 {
		t.Errorf("Value = %d, want 150", rangeErr.Value)
	}
}

func TestListing_ConstructionIsLazy(t *testing.T) {
	fetch, log := scriptedFetch(t, []Page[string]{{Items: []string{"a"}}})

	if _, err := New(fetch, "/user/alice/comments.json", -1, 25); err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if log.calls != 0 {
		t.Errorf("Construction performed %d fetches, want 0", log.calls)
	}
}

func TestListing_MaxZeroFetchesNothing(t *testing.T) {
	fetch, log := scriptedFetch(t, nil)

	listing, err := New(fetch, "/user/alice/comments.json", 0, 25)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, ok, err := listing.Next(context.Background())
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if ok {
		t.Error("Expected exhausted listing for max=0")
	}
	if log.calls != 0 {
		t.Errorf("max=0 listing performed %d fetches, want 0", log.calls)
	}
}

func TestListing_SortedQueryShape(t *testing.T) {
	fetch, log := scriptedFetch(t, []Page[string]{{Items: []string{"a"}}})

	listing, err := NewSorted(fetch, "/user/alice/comments.json", SortNew, 25, WindowAll)
	if err != nil {
		t.Fatalf("NewSorted failed: %v", err)
	}

	if _, _, err := listing.Next(context.Background()); err != nil {
		t.Fatalf("Next failed: %v", err)
	}

	if log.paths[0] != "/user/alice/comments.json" {
		t.Errorf("path = %q, want /user/alice/comments.json", log.paths[0])
	}
	if log.queries[0] != "sort=new&limit=25&t=all" {
		t.Errorf("query = %q, want sort=new&limit=25&t=all", log.queries[0])
	}
}

func TestListing_SimpleQueryOmitsSortAndWindow(t *testing.T) {
	fetch, log := scriptedFetch(t, []Page[string]{{Items: []string{"a"}}})

	listing, err := New(fetch, "/user/alice/saved.json", -1, 25)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, _, err := listing.Next(context.Background()); err != nil {
		t.Fatalf("Next failed: %v", err)
	}

	if log.queries[0] != "limit=25" {
		t.Errorf("query = %q, want limit=25", log.queries[0])
	}
}

func TestListing_CursorThreading(t *testing.T) {
	// First page carries a cursor; the follow-up request must send it and the
	// items must come back in order across the page boundary.
	fetch, log := scriptedFetch(t, []Page[string]{
		{Items: []string{"A", "B"}, After: "t1_x"},
		{Items: []string{"C"}},
	})

	listing, err := New(fetch, "/user/alice/comments.json", -1, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()

	first, ok, err := listing.Next(ctx)
	if err != nil || !ok {
		t.Fatalf("Next #1 = (%v, %v), want item", ok, err)
	}
	if first != "A" {
		t.Errorf("item #1 = %q, want A", first)
	}
	if log.calls != 1 {
		t.Fatalf("Fetches after first Next = %d, want 1", log.calls)
	}

	second, ok, err := listing.Next(ctx)
	if err != nil || !ok {
		t.Fatalf("Next #2 = (%v, %v), want item", ok, err)
	}
	if second != "B" {
		t.Errorf("item #2 = %q, want B", second)
	}
	if log.calls != 1 {
		t.Fatalf("Buffered item triggered a fetch, calls = %d", log.calls)
	}

	third, ok, err := listing.Next(ctx)
	if err != nil || !ok {
		t.Fatalf("Next #3 = (%v, %v), want item", ok, err)
	}
	if third != "C" {
		t.Errorf("item #3 = %q, want C", third)
	}
	if log.calls != 2 {
		t.Fatalf("Fetches after third Next = %d, want 2", log.calls)
	}
	if !strings.Contains(log.queries[1], "after=t1_x") {
		t.Errorf("Second fetch query = %q, missing after=t1_x", log.queries[1])
	}
}

func TestListing_Continuity(t *testing.T) {
	fetch, _ := scriptedFetch(t, []Page[string]{
		{Items: []string{"a", "b"}, After: "c1"},
		{Items: []string{"c"}},
	})

	listing, err := New(fetch, "/user/alice/overview.json", -1, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got, err := listing.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("Collect returned %d items, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item #%d = %q, want %q", i, got[i], want[i])
		}
	}

	// Exhausted listings stay exhausted.
	for i := 0; i < 3; i++ {
		_, ok, err := listing.Next(context.Background())
		if err != nil {
			t.Fatalf("Next after exhaustion failed: %v", err)
		}
		if ok {
			t.Fatal("Exhausted listing yielded an item")
		}
	}
}

func TestListing_MaxBoundsTotal(t *testing.T) {
	fetch, log := scriptedFetch(t, []Page[string]{
		{Items: []string{"a", "b", "c"}, After: "c1"},
		{Items: []string{"d", "e"}, After: "c2"},
	})

	listing, err := New(fetch, "/user/alice/comments.json", 4, 3)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got, err := listing.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if len(got) != 4 {
		t.Fatalf("Collect returned %d items, want 4", len(got))
	}
	if log.calls != 2 {
		t.Errorf("Fetches = %d, want 2", log.calls)
	}
}

func TestListing_MaxBeyondUpstreamEnd(t *testing.T) {
	fetch, _ := scriptedFetch(t, []Page[string]{
		{Items: []string{"a", "b"}},
	})

	listing, err := New(fetch, "/user/alice/comments.json", 10, 25)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got, err := listing.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Collect returned %d items, want 2 (upstream end before max)", len(got))
	}
}

func TestListing_EmptyFirstPage(t *testing.T) {
	fetch, _ := scriptedFetch(t, []Page[string]{{}})

	listing, err := New(fetch, "/user/ghost/comments.json", -1, 25)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, ok, err := listing.Next(context.Background())
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if ok {
		t.Error("Expected empty sequence for empty first page")
	}
}

func TestListing_EmptyPageWithCursorContinues(t *testing.T) {
	fetch, log := scriptedFetch(t, []Page[string]{
		{After: "c1"},
		{Items: []string{"a"}},
	})

	listing, err := New(fetch, "/user/alice/comments.json", -1, 25)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got, ok, err := listing.Next(context.Background())
	if err != nil || !ok {
		t.Fatalf("Next = (%v, %v), want item from second page", ok, err)
	}
	if got != "a" {
		t.Errorf("item = %q, want a", got)
	}
	if log.calls != 2 {
		t.Errorf("Fetches = %d, want 2", log.calls)
	}
}

func TestListing_FetchErrorIsSticky(t *testing.T) {
	fetchErr := errors.New("boom")
	calls := 0
	fetch := func(ctx context.Context, path, rawQuery string) (Page[string], error) {
		calls++
		return Page[string]{}, fetchErr
	}

	listing, err := New(fetch, "/user/alice/comments.json", -1, 25)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, ok, err := listing.Next(context.Background())
	if ok {
		t.Error("Failed fetch yielded an item")
	}
	if !errors.Is(err, fetchErr) {
		t.Fatalf("Next error = %v, want %v", err, fetchErr)
	}

	// No retry on subsequent calls; the same error comes back.
	_, ok, err = listing.Next(context.Background())
	if ok {
		t.Error("Terminated listing yielded an item")
	}
	if !errors.Is(err, fetchErr) {
		t.Fatalf("Second Next error = %v, want %v", err, fetchErr)
	}
	if calls != 1 {
		t.Errorf("Fetch ran %d times, want 1", calls)
	}
}

func TestListing_ErrorMidStream(t *testing.T) {
	fetchErr := errors.New("boom")
	calls := 0
	fetch := func(ctx context.Context, path, rawQuery string) (Page[string], error) {
		calls++
		if calls == 1 {
			return Page[string]{Items: []string{"a", "b"}, After: "c1"}, nil
		}
		return Page[string]{}, fetchErr
	}

	listing, err := New(fetch, "/user/alice/comments.json", -1, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got, err := listing.Collect(context.Background())
	if !errors.Is(err, fetchErr) {
		t.Fatalf("Collect error = %v, want %v", err, fetchErr)
	}
	if len(got) != 2 {
		t.Errorf("Collect returned %d items before the error, want 2", len(got))
	}
	if listing.Yielded() != 2 {
		t.Errorf("Yielded() = %d, want 2", listing.Yielded())
	}
}

func TestListing_Take(t *testing.T) {
	fetch, log := scriptedFetch(t, []Page[string]{
		{Items: []string{"a", "b", "c"}, After: "c1"},
		{Items: []string{"d", "e", "f"}, After: "c2"},
	})

	listing, err := New(fetch, "/user/alice/comments.json", -1, 3)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()

	got, err := listing.Take(ctx, 4)
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("Take(4) returned %d items", len(got))
	}
	if got[3] != "d" {
		t.Errorf("item #4 = %q, want d", got[3])
	}
	if log.calls != 2 {
		t.Errorf("Fetches = %d, want 2", log.calls)
	}

	// A later Take resumes where the first stopped.
	more, err := listing.Take(ctx, 2)
	if err != nil {
		t.Fatalf("Second Take failed: %v", err)
	}
	if len(more) != 2 || more[0] != "e" || more[1] != "f" {
		t.Errorf("Second Take = %v, want [e f]", more)
	}

	none, err := listing.Take(ctx, 0)
	if err != nil || none != nil {
		t.Errorf("Take(0) = (%v, %v), want (nil, nil)", none, err)
	}
}

func TestListing_ContextCancellation(t *testing.T) {
	fetch := func(ctx context.Context, path, rawQuery string) (Page[string], error) {
		return Page[string]{}, ctx.Err()
	}

	listing, err := New(fetch, "/user/alice/comments.json", -1, 25)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok, err := listing.Next(ctx)
	if ok {
		t.Error("Cancelled Next yielded an item")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Next error = %v, want context.Canceled", err)
	}
}
