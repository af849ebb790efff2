// Package pagination implements cursor-driven retrieval of Reddit listing
// endpoints.
//
// Reddit pages listings with an opaque "after" cursor rather than numbered
// pages: each response carries the cursor of the page that follows it, and an
// absent cursor marks the end of the data set. A Listing turns such an
// endpoint into a lazily-fetched sequence of typed items, issuing one fetch at
// a time as the consumer advances past the buffered page.
//
// Example usage:
//
//	listing, err := pagination.New(fetch, "/user/alice/comments.json", 50, 25)
//	if err != nil {
//		return err
//	}
//	for {
//		item, ok, err := listing.Next(ctx)
//		if err != nil {
//			return err
//		}
//		if !ok {
//			break
//		}
//		process(item)
//	}
//
// A Listing:
//   - performs no fetch until the first Next call
//   - keeps at most one fetch in flight, strictly on consumer demand
//   - terminates when the server stops returning a cursor, or max is reached
//   - stays terminated after a fetch error; build a fresh Listing to retry
//   - is not safe for concurrent use and cannot be rewound
package pagination
