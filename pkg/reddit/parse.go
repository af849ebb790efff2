package reddit

import (
	"encoding/json"
	"fmt"
)

// MalformedResponseError reports a response body that does not carry the
// expected listing envelope or item shape. It is fatal for the listing that
// received it; there is no partial recovery.
type MalformedResponseError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Reason, e.Err)
	}
	return "malformed response: " + e.Reason
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// listingData is the inner payload of a kind=Listing envelope.
type listingData struct {
	After    string  `json:"after"`
	Before   string  `json:"before"`
	Dist     int     `json:"dist"`
	Children []Thing `json:"children"`
}

// DecodeListing extracts the child things and the continuation cursor from a
// listing response body. An empty cursor means the listing is exhausted; an
// empty child array with an empty cursor is a legitimate empty listing, not
// an error.
func DecodeListing(body []byte) ([]Thing, string, error) {
	var envelope Thing
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, "", &MalformedResponseError{Reason: "invalid json", Err: err}
	}

	if envelope.Kind != KindListing {
		return nil, "", &MalformedResponseError{
			Reason: fmt.Sprintf("kind is %q, want %q", envelope.Kind, KindListing),
		}
	}

	if len(envelope.Data) == 0 {
		return nil, "", &MalformedResponseError{Reason: "missing listing data"}
	}

	var data listingData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, "", &MalformedResponseError{Reason: "listing data", Err: err}
	}

	if data.Children == nil {
		return nil, "", &MalformedResponseError{Reason: "missing children array"}
	}

	return data.Children, data.After, nil
}

// DecodeComment maps a t1 thing onto a Comment.
func DecodeComment(th Thing) (*Comment, error) {
	if th.Kind != KindComment {
		return nil, &MalformedResponseError{
			Reason: fmt.Sprintf("kind is %q, want %q", th.Kind, KindComment),
		}
	}

	var c Comment
	if err := json.Unmarshal(th.Data, &c); err != nil {
		return nil, &MalformedResponseError{Reason: "comment data", Err: err}
	}
	return &c, nil
}

// DecodePost maps a t3 thing onto a Post.
func DecodePost(th Thing) (*Post, error) {
	if th.Kind != KindLink {
		return nil, &MalformedResponseError{
			Reason: fmt.Sprintf("kind is %q, want %q", th.Kind, KindLink),
		}
	}

	var p Post
	if err := json.Unmarshal(th.Data, &p); err != nil {
		return nil, &MalformedResponseError{Reason: "post data", Err: err}
	}
	return &p, nil
}

// DecodeSubreddit maps a t5 thing onto a Subreddit.
func DecodeSubreddit(th Thing) (*Subreddit, error) {
	if th.Kind != KindSubreddit {
		return nil, &MalformedResponseError{
			Reason: fmt.Sprintf("kind is %q, want %q", th.Kind, KindSubreddit),
		}
	}

	var s Subreddit
	if err := json.Unmarshal(th.Data, &s); err != nil {
		return nil, &MalformedResponseError{Reason: "subreddit data", Err: err}
	}
	return &s, nil
}

// DecodeAccount maps a t2 thing onto an Account.
func DecodeAccount(th Thing) (*Account, error) {
	if th.Kind != KindAccount {
		return nil, &MalformedResponseError{
			Reason: fmt.Sprintf("kind is %q, want %q", th.Kind, KindAccount),
		}
	}

	var a Account
	if err := json.Unmarshal(th.Data, &a); err != nil {
		return nil, &MalformedResponseError{Reason: "account data", Err: err}
	}
	return &a, nil
}

// DecodeVotable maps a mixed-listing thing onto the Votable union.
func DecodeVotable(th Thing) (Votable, error) {
	switch th.Kind {
	case KindComment:
		c, err := DecodeComment(th)
		if err != nil {
			return nil, err
		}
		return c, nil
	case KindLink:
		p, err := DecodePost(th)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, &MalformedResponseError{
			Reason: fmt.Sprintf("unexpected kind %q in mixed listing", th.Kind),
		}
	}
}
