package reddit

import (
	"errors"
	"strings"
	"testing"
)

func TestDecodeListing(t *testing.T) {
	body := []byte(`{
		"kind": "Listing",
		"data": {
			"after": "t1_c2",
			"dist": 2,
			"children": [
				{"kind": "t1", "data": {"id": "c1", "body": "first"}},
				{"kind": "t1", "data": {"id": "c2", "body": "second"}}
			]
		}
	}`)

	things, after, err := DecodeListing(body)
	if err != nil {
		t.Fatalf("DecodeListing failed: %v", err)
	}

	if len(things) != 2 {
		t.Fatalf("len(things) = %d, want 2", len(things))
	}

	if after != "t1_c2" {
		t.Errorf("after = %q, want %q", after, "t1_c2")
	}

	if things[0].Kind != KindComment {
		t.Errorf("things[0].Kind = %q, want %q", things[0].Kind, KindComment)
	}
}

func TestDecodeListing_NullAfterMeansExhausted(t *testing.T) {
	body := []byte(`{"kind": "Listing", "data": {"after": null, "children": []}}`)

	things, after, err := DecodeListing(body)
	if err != nil {
		t.Fatalf("DecodeListing failed: %v", err)
	}

	if len(things) != 0 {
		t.Errorf("len(things) = %d, want 0", len(things))
	}

	if after != "" {
		t.Errorf("after = %q, want empty cursor", after)
	}
}

func TestDecodeListing_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		reason string
	}{
		{
			name:   "invalid_json",
			body:   `{"kind": "Listing"`,
			reason: "invalid json",
		},
		{
			name:   "wrong_kind",
			body:   `{"kind": "t2", "data": {"name": "alice"}}`,
			reason: `kind is "t2"`,
		},
		{
			name:   "missing_data",
			body:   `{"kind": "Listing"}`,
			reason: "missing listing data",
		},
		{
			name:   "missing_children",
			body:   `{"kind": "Listing", "data": {"after": "abc"}}`,
			reason: "missing children array",
		},
		{
			name:   "children_wrong_type",
			body:   `{"kind": "Listing", "data": {"children": "nope"}}`,
			reason: "listing data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeListing([]byte(tt.body))
			if err == nil {
				t.Fatal("Expected error, got nil")
			}

			var malformed *MalformedResponseError
			if !errors.As(err, &malformed) {
				t.Fatalf("Expected MalformedResponseError, got %T: %v", err, err)
			}

			if !strings.Contains(err.Error(), tt.reason) {
				t.Errorf("Error %q does not mention %q", err.Error(), tt.reason)
			}
		})
	}
}

func TestDecodeComment(t *testing.T) {
	th := Thing{
		Kind: KindComment,
		Data: []byte(`{
			"id": "abc123",
			"name": "t1_abc123",
			"author": "alice",
			"body": "nice post",
			"subreddit": "golang",
			"link_id": "t3_parent",
			"parent_id": "t3_parent",
			"score": 42,
			"created_utc": 1700000000.0
		}`),
	}

	c, err := DecodeComment(th)
	if err != nil {
		t.Fatalf("DecodeComment failed: %v", err)
	}

	if c.Author != "alice" {
		t.Errorf("Author = %q, want alice", c.Author)
	}
	if c.Body != "nice post" {
		t.Errorf("Body = %q, want %q", c.Body, "nice post")
	}
	if c.Score != 42 {
		t.Errorf("Score = %d, want 42", c.Score)
	}
	if got := c.CreatedAt().Year(); got != 2023 {
		t.Errorf("CreatedAt().Year() = %d, want 2023", got)
	}
}

func TestDecodeComment_WrongKind(t *testing.T) {
	th := Thing{Kind: KindLink, Data: []byte(`{}`)}

	if _, err := DecodeComment(th); err == nil {
		t.Error("Expected error decoding t3 as comment")
	}
}

func TestDecodePost(t *testing.T) {
	th := Thing{
		Kind: KindLink,
		Data: []byte(`{
			"id": "xyz",
			"name": "t3_xyz",
			"title": "Show and tell",
			"author": "bob",
			"subreddit": "programming",
			"url": "https://example.com",
			"permalink": "/r/programming/comments/xyz/show_and_tell/",
			"is_self": false,
			"score": 1234,
			"num_comments": 56,
			"over_18": false
		}`),
	}

	p, err := DecodePost(th)
	if err != nil {
		t.Fatalf("DecodePost failed: %v", err)
	}

	if p.Title != "Show and tell" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.NumComments != 56 {
		t.Errorf("NumComments = %d, want 56", p.NumComments)
	}
	if p.Fullname() != "t3_xyz" {
		t.Errorf("Fullname() = %q, want t3_xyz", p.Fullname())
	}
}

func TestDecodeSubreddit(t *testing.T) {
	th := Thing{
		Kind: KindSubreddit,
		Data: []byte(`{
			"id": "2qh0y",
			"name": "t5_2qh0y",
			"display_name": "golang",
			"title": "The Go Programming Language",
			"url": "/r/golang/",
			"subscribers": 250000,
			"over18": false
		}`),
	}

	s, err := DecodeSubreddit(th)
	if err != nil {
		t.Fatalf("DecodeSubreddit failed: %v", err)
	}

	if s.DisplayName != "golang" {
		t.Errorf("DisplayName = %q, want golang", s.DisplayName)
	}
	if s.Subscribers != 250000 {
		t.Errorf("Subscribers = %d, want 250000", s.Subscribers)
	}
}

func TestDecodeAccount(t *testing.T) {
	th := Thing{
		Kind: KindAccount,
		Data: []byte(`{
			"id": "abc",
			"name": "alice",
			"link_karma": 1500,
			"comment_karma": 9800,
			"verified": true,
			"created_utc": 1300000000.0
		}`),
	}

	a, err := DecodeAccount(th)
	if err != nil {
		t.Fatalf("DecodeAccount failed: %v", err)
	}

	if a.Name != "alice" {
		t.Errorf("Name = %q, want alice", a.Name)
	}
	if a.LinkKarma != 1500 || a.CommentKarma != 9800 {
		t.Errorf("karma = %d/%d, want 1500/9800", a.LinkKarma, a.CommentKarma)
	}
	if !a.Verified {
		t.Error("Verified = false, want true")
	}
}

func TestDecodeVotable(t *testing.T) {
	tests := []struct {
		name     string
		thing    Thing
		wantPost bool
		wantErr  bool
	}{
		{
			name:  "comment",
			thing: Thing{Kind: KindComment, Data: []byte(`{"name": "t1_a", "body": "hi"}`)},
		},
		{
			name:     "post",
			thing:    Thing{Kind: KindLink, Data: []byte(`{"name": "t3_b", "title": "hello"}`)},
			wantPost: true,
		},
		{
			name:    "unexpected_kind",
			thing:   Thing{Kind: "t4", Data: []byte(`{}`)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := DecodeVotable(tt.thing)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeVotable failed: %v", err)
			}

			_, isPost := v.(*Post)
			if isPost != tt.wantPost {
				t.Errorf("item is *Post = %v, want %v", isPost, tt.wantPost)
			}
		})
	}
}
