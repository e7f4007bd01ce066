package database

import (
	"strings"
	"testing"
)

func TestListRecipesQuery(t *testing.T) {
	author := int64(7)
	viewer := int64(3)

	tests := []struct {
		name         string
		filter       RecipeFilter
		wantContains []string
		wantArgs     int
	}{
		{
			name:         "no filters",
			filter:       RecipeFilter{Limit: 6},
			wantContains: []string{"FROM recipes r", "ORDER BY r.created_at DESC, r.id DESC", "LIMIT 6"},
			wantArgs:     0,
		},
		{
			name:         "author filter",
			filter:       RecipeFilter{AuthorID: &author, Limit: 6, Offset: 12},
			wantContains: []string{"r.author_id = $1", "LIMIT 6", "OFFSET 12"},
			wantArgs:     1,
		},
		{
			name:         "tags favorites and cart",
			filter:       RecipeFilter{TagSlugs: []string{"breakfast", "lunch"}, FavoritedBy: &viewer, InCartOf: &viewer},
			wantContains: []string{"t.slug = ANY($1::text[])", "f.user_id = $2", "sc.user_id = $3"},
			wantArgs:     3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := ListRecipesQuery(tt.filter)
			if err != nil {
				t.Fatalf("ListRecipesQuery() error = %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(query, want) {
					t.Errorf("query %q does not contain %q", query, want)
				}
			}
			if len(args) != tt.wantArgs {
				t.Errorf("got %d args, want %d", len(args), tt.wantArgs)
			}
		})
	}
}

func TestCountRecipesQuery(t *testing.T) {
	author := int64(1)
	query, args, err := CountRecipesQuery(RecipeFilter{AuthorID: &author, Limit: 10, Offset: 20})
	if err != nil {
		t.Fatalf("CountRecipesQuery() error = %v", err)
	}
	if !strings.HasPrefix(query, "SELECT count(*) FROM recipes r") {
		t.Errorf("unexpected query %q", query)
	}
	if strings.Contains(query, "LIMIT") || strings.Contains(query, "OFFSET") {
		t.Errorf("count query must not paginate: %q", query)
	}
	if len(args) != 1 {
		t.Errorf("got %d args, want 1", len(args))
	}
}
