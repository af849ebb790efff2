package reddit

import (
	"encoding/json"
	"testing"
)

func TestEdited_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		wantEdited    bool
		wantTimestamp float64
		wantErr       bool
	}{
		{"false", `false`, false, 0, false},
		{"true", `true`, true, 0, false},
		{"timestamp", `1700000123.0`, true, 1700000123.0, false},
		{"string", `"yesterday"`, false, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Edited
			err := json.Unmarshal([]byte(tt.input), &e)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}

			if e.Edited != tt.wantEdited {
				t.Errorf("Edited = %v, want %v", e.Edited, tt.wantEdited)
			}
			if e.Timestamp != tt.wantTimestamp {
				t.Errorf("Timestamp = %v, want %v", e.Timestamp, tt.wantTimestamp)
			}
		})
	}
}

func TestEdited_InStruct(t *testing.T) {
	var c Comment
	body := `{"id": "x", "body": "fixed a typo", "edited": 1700000123.0}`

	if err := json.Unmarshal([]byte(body), &c); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !c.Edited.Edited {
		t.Error("Edited.Edited = false, want true")
	}
}

func TestVotable_ClosedUnion(t *testing.T) {
	// Both content kinds satisfy the union and report their fullname.
	var items []Votable = []Votable{
		&Post{Name: "t3_abc"},
		&Comment{Name: "t1_def"},
	}

	want := []string{"t3_abc", "t1_def"}
	for i, item := range items {
		if item.Fullname() != want[i] {
			t.Errorf("Fullname() = %q, want %q", item.Fullname(), want[i])
		}
	}
}

func TestCreatedAt(t *testing.T) {
	p := &Post{CreatedUTC: 0}
	if got := p.CreatedAt().Unix(); got != 0 {
		t.Errorf("CreatedAt().Unix() = %d, want 0", got)
	}

	c := &Comment{CreatedUTC: 1700000000.5}
	if got := c.CreatedAt().Unix(); got != 1700000000 {
		t.Errorf("CreatedAt().Unix() = %d, want 1700000000", got)
	}
}
