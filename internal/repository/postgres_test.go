package repository

import (
	"strings"
	"testing"

	"github.com/jaekwang-park/todolist/internal/model"
)

func TestBuildListQuery(t *testing.T) {
	done := false
	high := model.PriorityHigh
	work := "work"

	tests := []struct {
		name     string
		filter   model.TodoFilter
		contains []string
		args     int
	}{
		{
			name:     "defaults",
			filter:   model.TodoFilter{},
			contains: []string{"ORDER BY created_at DESC NULLS LAST, id"},
			args:     0,
		},
		{
			name:     "owner scoped",
			filter:   model.TodoFilter{Owner: "user-1"},
			contains: []string{"AND user_id = $1"},
			args:     1,
		},
		{
			name: "all filters",
			filter: model.TodoFilter{
				Owner: "user-1", Completed: &done, Priority: &high, Category: &work,
				Sort: model.SortSpec{Field: model.SortTitle},
			},
			contains: []string{
				"user_id = $1", "completed = $2", "priority = $3", "category = $4",
				"ORDER BY title ASC",
			},
			args: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildListQuery(tt.filter)
			for _, want := range tt.contains {
				if !strings.Contains(query, want) {
					t.Errorf("expected query to contain %q, got: %s", want, query)
				}
			}
			if len(args) != tt.args {
				t.Errorf("expected %d args, got %d", tt.args, len(args))
			}
		})
	}
}

func TestValidUUID(t *testing.T) {
	if !validUUID("0b6f4a1e-6a3c-4c53-9a3e-1f2d3c4b5a69") {
		t.Error("expected valid uuid")
	}
	if validUUID("not-an-id") {
		t.Error("expected malformed id to be rejected")
	}
}

func TestOwnedByID(t *testing.T) {
	if _, ok := ownedByID("", "zzz"); ok {
		t.Error("expected malformed ObjectID to be rejected")
	}
	filter, ok := ownedByID("user-1", "64b7f0c2a1b2c3d4e5f60718")
	if !ok {
		t.Fatal("expected ObjectID to parse")
	}
	if filter["user"] != "user-1" {
		t.Errorf("expected owner constraint, got %v", filter)
	}
}
