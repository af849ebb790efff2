// Package reddit defines the wire types returned by the Reddit JSON API and
// the decoders that map listing responses onto typed records.
//
// Every API object arrives wrapped in a Thing envelope carrying a kind tag
// and a raw payload. Listings (kind "Listing") hold an ordered child array
// plus an "after" continuation cursor; an empty cursor means the listing is
// exhausted.
package reddit

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind tags carried by Thing envelopes.
const (
	KindComment   = "t1"
	KindAccount   = "t2"
	KindLink      = "t3"
	KindSubreddit = "t5"
	KindListing   = "Listing"
)

// Thing is the envelope Reddit wraps every API object in. Data stays raw
// until the kind-specific decoder runs.
type Thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// Edited reports whether and when a post or comment was edited. Reddit
// encodes this as false or an epoch timestamp.
type Edited struct {
	Edited    bool
	Timestamp float64
}

// UnmarshalJSON accepts both encodings.
func (e *Edited) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		e.Edited = b
		e.Timestamp = 0
		return nil
	}

	var ts float64
	if err := json.Unmarshal(data, &ts); err != nil {
		return fmt.Errorf("edited field is neither bool nor timestamp: %w", err)
	}
	e.Edited = true
	e.Timestamp = ts
	return nil
}

// Post is a submission (kind t3).
type Post struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Subreddit   string  `json:"subreddit"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	SelfText    string  `json:"selftext"`
	IsSelf      bool    `json:"is_self"`
	Score       int     `json:"score"`
	Ups         int     `json:"ups"`
	Downs       int     `json:"downs"`
	NumComments int     `json:"num_comments"`
	Over18      bool    `json:"over_18"`
	Stickied    bool    `json:"stickied"`
	Edited      Edited  `json:"edited"`
	CreatedUTC  float64 `json:"created_utc"`
}

// CreatedAt returns the submission time in UTC.
func (p *Post) CreatedAt() time.Time { return epochTime(p.CreatedUTC) }

// Comment is a comment (kind t1).
type Comment struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Author     string  `json:"author"`
	Body       string  `json:"body"`
	Subreddit  string  `json:"subreddit"`
	LinkID     string  `json:"link_id"`
	ParentID   string  `json:"parent_id"`
	Score      int     `json:"score"`
	Ups        int     `json:"ups"`
	Downs      int     `json:"downs"`
	Edited     Edited  `json:"edited"`
	CreatedUTC float64 `json:"created_utc"`
}

// CreatedAt returns the comment time in UTC.
func (c *Comment) CreatedAt() time.Time { return epochTime(c.CreatedUTC) }

// Subreddit is a community (kind t5).
type Subreddit struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Description string  `json:"public_description"`
	Subscribers int     `json:"subscribers"`
	Over18      bool    `json:"over18"` // t5 spells this without the underscore
	CreatedUTC  float64 `json:"created_utc"`
}

// CreatedAt returns the subreddit creation time in UTC.
func (s *Subreddit) CreatedAt() time.Time { return epochTime(s.CreatedUTC) }

// Account is a user profile (kind t2).
type Account struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	LinkKarma    int     `json:"link_karma"`
	CommentKarma int     `json:"comment_karma"`
	IsGold       bool    `json:"is_gold"`
	IsMod        bool    `json:"is_mod"`
	Verified     bool    `json:"verified"`
	CreatedUTC   float64 `json:"created_utc"`
}

// CreatedAt returns the account creation time in UTC.
func (a *Account) CreatedAt() time.Time { return epochTime(a.CreatedUTC) }

// Votable is the closed union over the content kinds that carry votes.
// Mixed-content listings (overview, saved, liked, disliked) yield it;
// callers type-switch on *Post and *Comment.
type Votable interface {
	// Fullname returns the kind-prefixed identifier, e.g. "t3_15bfi0".
	Fullname() string

	isVotable()
}

// Fullname implements Votable.
func (p *Post) Fullname() string { return p.Name }

func (p *Post) isVotable() {}

// Fullname implements Votable.
func (c *Comment) Fullname() string { return c.Name }

func (c *Comment) isVotable() {}

func epochTime(sec float64) time.Time {
	return time.Unix(int64(sec), 0).UTC()
}
