package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mkarlsen/reddit-user-client/pkg/client"
	"github.com/mkarlsen/reddit-user-client/pkg/logging"
	"github.com/mkarlsen/reddit-user-client/pkg/pagination"
	"github.com/mkarlsen/reddit-user-client/pkg/reddit"
	"github.com/mkarlsen/reddit-user-client/pkg/users"
)

// collectTimeout bounds one API call's worth of upstream fetches. Deep
// listings cross many pages, each paced by the rate limiter.
const collectTimeout = 60 * time.Second

type server struct {
	users    *users.Service
	redis    *redis.Client
	maxItems int
	logger   zerolog.Logger
}

func newServer(userService *users.Service, redisClient *redis.Client, maxItems int) *server {
	return &server{
		users:    userService,
		redis:    redisClient,
		maxItems: maxItems,
		logger:   logging.NewLogger("reddit-proxy"),
	}
}

func (s *server) register(e *echo.Echo) {
	e.GET("/health", s.health)
	e.GET("/ready", s.ready)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.GET("/users/:username/about", s.getAbout)
	e.GET("/users/:username/overview", s.getOverview)
	e.GET("/users/:username/comments", s.getComments)
	e.GET("/users/:username/submitted", s.getSubmitted)
}

func (s *server) health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// ready reports whether downstream dependencies are reachable. Without
// Redis the proxy is ready as soon as it serves.
func (s *server) ready(c echo.Context) error {
	if s.redis != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := s.redis.Ping(ctx).Err(); err != nil {
			return c.String(http.StatusServiceUnavailable, "redis unavailable")
		}
	}
	return c.String(http.StatusOK, "OK")
}

// listingQuery carries the pagination parameters of a listing request.
// Any of sort, limit, or t selects the parameterized request family;
// a bare request uses the plain one.
type listingQuery struct {
	sorted   bool
	sort     pagination.SortOrder
	window   pagination.TimeWindow
	pageSize int
	max      int
}

func (s *server) parseListingQuery(c echo.Context) (listingQuery, error) {
	q := listingQuery{
		sort:     pagination.SortNew,
		window:   pagination.WindowAll,
		pageSize: users.DefaultPageSize,
		max:      s.maxItems,
	}

	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, echo.NewHTTPError(http.StatusBadRequest, "invalid `limit`")
		}
		q.pageSize = n
		q.sorted = true
	}

	if raw := c.QueryParam("max"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return q, echo.NewHTTPError(http.StatusBadRequest, "`max` must be a positive integer")
		}
		if n < q.max {
			q.max = n
		}
	}

	if raw := c.QueryParam("sort"); raw != "" {
		sort, err := pagination.ParseSortOrder(raw)
		if err != nil {
			return q, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		q.sort = sort
		q.sorted = true
	}

	if raw := c.QueryParam("t"); raw != "" {
		window, err := pagination.ParseTimeWindow(raw)
		if err != nil {
			return q, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		q.window = window
		q.sorted = true
	}

	return q, nil
}

type listingResponse[T any] struct {
	Username string `json:"username"`
	Count    int    `json:"count"`
	Items    []T    `json:"items"`
}

// respondListing builds the listing for the requested family, collects up
// to q.max items, and writes the JSON response.
func respondListing[T any](c echo.Context, username string, q listingQuery,
	simple func(string, int) (*pagination.Listing[T], error),
	sorted func(string, pagination.SortOrder, int, pagination.TimeWindow) (*pagination.Listing[T], error),
) error {
	var listing *pagination.Listing[T]
	var err error
	if q.sorted {
		listing, err = sorted(username, q.sort, q.pageSize, q.window)
	} else {
		listing, err = simple(username, q.max)
	}
	if err != nil {
		// Construction fails before any I/O: bad page size or username.
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), collectTimeout)
	defer cancel()

	items, err := listing.Take(ctx, q.max)
	if err != nil {
		return upstreamError(err)
	}

	return c.JSON(http.StatusOK, listingResponse[T]{
		Username: username,
		Count:    len(items),
		Items:    items,
	})
}

func (s *server) getComments(c echo.Context) error {
	q, err := s.parseListingQuery(c)
	if err != nil {
		return err
	}
	return respondListing(c, c.Param("username"), q, s.users.Comments, s.users.CommentsSorted)
}

func (s *server) getSubmitted(c echo.Context) error {
	q, err := s.parseListingQuery(c)
	if err != nil {
		return err
	}
	return respondListing(c, c.Param("username"), q, s.users.Submitted, s.users.SubmittedSorted)
}

// votableItem restores the kind discriminator mixed listings lose when
// their items marshal as concrete types.
type votableItem struct {
	Kind string         `json:"kind"`
	Data reddit.Votable `json:"data"`
}

func wrapVotables(items []reddit.Votable) []votableItem {
	wrapped := make([]votableItem, 0, len(items))
	for _, item := range items {
		kind := reddit.KindLink
		if _, ok := item.(*reddit.Comment); ok {
			kind = reddit.KindComment
		}
		wrapped = append(wrapped, votableItem{Kind: kind, Data: item})
	}
	return wrapped
}

func (s *server) getOverview(c echo.Context) error {
	q, err := s.parseListingQuery(c)
	if err != nil {
		return err
	}
	username := c.Param("username")

	var listing *pagination.Listing[reddit.Votable]
	if q.sorted {
		listing, err = s.users.OverviewSorted(username, q.sort, q.pageSize, q.window)
	} else {
		listing, err = s.users.Overview(username, q.max)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), collectTimeout)
	defer cancel()

	items, err := listing.Take(ctx, q.max)
	if err != nil {
		return upstreamError(err)
	}

	return c.JSON(http.StatusOK, listingResponse[votableItem]{
		Username: username,
		Count:    len(items),
		Items:    wrapVotables(items),
	})
}

func (s *server) getAbout(c echo.Context) error {
	username := c.Param("username")

	ctx, cancel := context.WithTimeout(c.Request().Context(), collectTimeout)
	defer cancel()

	account, err := s.users.About(ctx, username)
	if err != nil {
		if errors.Is(err, users.ErrInvalidUsername) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return upstreamError(err)
	}

	return c.JSON(http.StatusOK, account)
}

// upstreamError maps client failures onto proxy responses. Reddit 4xx
// statuses pass through; everything else is a bad gateway.
func upstreamError(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorClass == client.ErrorClassClient {
		return echo.NewHTTPError(apiErr.StatusCode, apiErr.Message)
	}
	return echo.NewHTTPError(http.StatusBadGateway, fmt.Sprintf("reddit request failed: %v", err))
}
