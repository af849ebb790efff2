// Package users provides typed access to Reddit user profile resources:
// the account summary and the paginated content feeds (overview, comments,
// submitted posts, liked, disliked, saved) plus subscribed subreddits.
package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/mkarlsen/reddit-user-client/pkg/logging"
	"github.com/mkarlsen/reddit-user-client/pkg/pagination"
	"github.com/mkarlsen/reddit-user-client/pkg/reddit"
)

// ErrInvalidUsername reports a username that cannot form a profile path.
var ErrInvalidUsername = errors.New("invalid username")

// DefaultPageSize is the page size the non-sorted accessors request.
// Matches Reddit's own listing default.
const DefaultPageSize = 25

// subscribedPath lists the authenticated account's subscriptions. Reddit
// exposes no public view of another account's subscriptions.
const subscribedPath = "/subreddits/mine/subscriber.json"

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Getter is the transport listing pages are pulled through.
// *client.Client satisfies it.
type Getter interface {
	GetJSON(ctx context.Context, path, rawQuery string) ([]byte, error)
}

// Service exposes the user profile endpoints.
type Service struct {
	api      Getter
	pageSize int
	logger   zerolog.Logger
}

// NewService creates a user profile service on top of api.
func NewService(api Getter) *Service {
	if api == nil {
		panic("api cannot be nil")
	}
	return &Service{
		api:      api,
		pageSize: DefaultPageSize,
		logger:   logging.NewLogger("users"),
	}
}

// fetchFunc builds a pagination fetch that pulls one listing page through
// the API and decodes every child with decode.
func fetchFunc[T any](api Getter, decode func(reddit.Thing) (T, error)) pagination.FetchFunc[T] {
	return func(ctx context.Context, path, rawQuery string) (pagination.Page[T], error) {
		body, err := api.GetJSON(ctx, path, rawQuery)
		if err != nil {
			return pagination.Page[T]{}, err
		}

		children, after, err := reddit.DecodeListing(body)
		if err != nil {
			return pagination.Page[T]{}, err
		}

		items := make([]T, 0, len(children))
		for _, child := range children {
			item, err := decode(child)
			if err != nil {
				return pagination.Page[T]{}, err
			}
			items = append(items, item)
		}

		return pagination.Page[T]{Items: items, After: after}, nil
	}
}

func newListing[T any](s *Service, path string, max int, decode func(reddit.Thing) (T, error)) (*pagination.Listing[T], error) {
	return pagination.New(fetchFunc(s.api, decode), path, max, s.pageSize)
}

func newSortedListing[T any](s *Service, path string, sort pagination.SortOrder, pageSize int, window pagination.TimeWindow, decode func(reddit.Thing) (T, error)) (*pagination.Listing[T], error) {
	return pagination.NewSorted(fetchFunc(s.api, decode), path, sort, pageSize, window)
}

func validateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("%w: empty", ErrInvalidUsername)
	}
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("%w: %q", ErrInvalidUsername, username)
	}
	return nil
}

func feedPath(username, feed string) (string, error) {
	if err := validateUsername(username); err != nil {
		return "", err
	}
	return fmt.Sprintf("/user/%s/%s.json", username, feed), nil
}

// About fetches the account summary for a user.
func (s *Service) About(ctx context.Context, username string) (*reddit.Account, error) {
	path, err := feedPath(username, "about")
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Str("username", username).Msg("Fetching account summary")

	body, err := s.api.GetJSON(ctx, path, "")
	if err != nil {
		return nil, err
	}

	var thing reddit.Thing
	if err := json.Unmarshal(body, &thing); err != nil {
		return nil, &reddit.MalformedResponseError{Reason: "invalid json", Err: err}
	}

	return reddit.DecodeAccount(thing)
}

// Overview returns the user's combined post and comment history.
// max bounds the total number of items yielded; negative means unbounded.
func (s *Service) Overview(username string, max int) (*pagination.Listing[reddit.Votable], error) {
	path, err := feedPath(username, "overview")
	if err != nil {
		return nil, err
	}
	return newListing(s, path, max, reddit.DecodeVotable)
}

// OverviewSorted returns the user's combined history with explicit ordering.
func (s *Service) OverviewSorted(username string, sort pagination.SortOrder, pageSize int, window pagination.TimeWindow) (*pagination.Listing[reddit.Votable], error) {
	path, err := feedPath(username, "overview")
	if err != nil {
		return nil, err
	}
	return newSortedListing(s, path, sort, pageSize, window, reddit.DecodeVotable)
}

// Comments returns the user's comments.
// max bounds the total number of items yielded; negative means unbounded.
func (s *Service) Comments(username string, max int) (*pagination.Listing[*reddit.Comment], error) {
	path, err := feedPath(username, "comments")
	if err != nil {
		return nil, err
	}
	return newListing(s, path, max, reddit.DecodeComment)
}

// CommentsSorted returns the user's comments with explicit ordering.
func (s *Service) CommentsSorted(username string, sort pagination.SortOrder, pageSize int, window pagination.TimeWindow) (*pagination.Listing[*reddit.Comment], error) {
	path, err := feedPath(username, "comments")
	if err != nil {
		return nil, err
	}
	return newSortedListing(s, path, sort, pageSize, window, reddit.DecodeComment)
}

// Submitted returns the user's submitted posts.
// max bounds the total number of items yielded; negative means unbounded.
func (s *Service) Submitted(username string, max int) (*pagination.Listing[*reddit.Post], error) {
	path, err := feedPath(username, "submitted")
	if err != nil {
		return nil, err
	}
	return newListing(s, path, max, reddit.DecodePost)
}

// SubmittedSorted returns the user's submitted posts with explicit ordering.
func (s *Service) SubmittedSorted(username string, sort pagination.SortOrder, pageSize int, window pagination.TimeWindow) (*pagination.Listing[*reddit.Post], error) {
	path, err := feedPath(username, "submitted")
	if err != nil {
		return nil, err
	}
	return newSortedListing(s, path, sort, pageSize, window, reddit.DecodePost)
}

// Liked returns the things the user upvoted. Reddit hides votes unless the
// profile makes them public or the listing belongs to the authenticated user.
func (s *Service) Liked(username string, max int) (*pagination.Listing[reddit.Votable], error) {
	path, err := feedPath(username, "liked")
	if err != nil {
		return nil, err
	}
	return newListing(s, path, max, reddit.DecodeVotable)
}

// LikedSorted returns the things the user upvoted, with explicit ordering.
func (s *Service) LikedSorted(username string, sort pagination.SortOrder, pageSize int, window pagination.TimeWindow) (*pagination.Listing[reddit.Votable], error) {
	path, err := feedPath(username, "liked")
	if err != nil {
		return nil, err
	}
	return newSortedListing(s, path, sort, pageSize, window, reddit.DecodeVotable)
}

// Disliked returns the things the user downvoted. Same visibility rules
// as Liked.
func (s *Service) Disliked(username string, max int) (*pagination.Listing[reddit.Votable], error) {
	path, err := feedPath(username, "disliked")
	if err != nil {
		return nil, err
	}
	return newListing(s, path, max, reddit.DecodeVotable)
}

// DislikedSorted returns the things the user downvoted, with explicit ordering.
func (s *Service) DislikedSorted(username string, sort pagination.SortOrder, pageSize int, window pagination.TimeWindow) (*pagination.Listing[reddit.Votable], error) {
	path, err := feedPath(username, "disliked")
	if err != nil {
		return nil, err
	}
	return newSortedListing(s, path, sort, pageSize, window, reddit.DecodeVotable)
}

// Saved returns the things the user saved. Only visible to the
// authenticated user.
func (s *Service) Saved(username string, max int) (*pagination.Listing[reddit.Votable], error) {
	path, err := feedPath(username, "saved")
	if err != nil {
		return nil, err
	}
	return newListing(s, path, max, reddit.DecodeVotable)
}

// SavedSorted returns the things the user saved, with explicit ordering.
func (s *Service) SavedSorted(username string, sort pagination.SortOrder, pageSize int, window pagination.TimeWindow) (*pagination.Listing[reddit.Votable], error) {
	path, err := feedPath(username, "saved")
	if err != nil {
		return nil, err
	}
	return newSortedListing(s, path, sort, pageSize, window, reddit.DecodeVotable)
}

// Subscribed returns the subreddits the authenticated account subscribes to.
// max bounds the total number of items yielded; negative means unbounded.
func (s *Service) Subscribed(max int) (*pagination.Listing[*reddit.Subreddit], error) {
	return newListing(s, subscribedPath, max, reddit.DecodeSubreddit)
}

// SubscribedSorted returns the authenticated account's subscriptions with
// explicit ordering.
func (s *Service) SubscribedSorted(sort pagination.SortOrder, pageSize int, window pagination.TimeWindow) (*pagination.Listing[*reddit.Subreddit], error) {
	return newSortedListing(s, subscribedPath, sort, pageSize, window, reddit.DecodeSubreddit)
}
