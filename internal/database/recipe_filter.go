package database

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
)

// RecipeFilter narrows the recipe list. Nil and empty fields are ignored.
type RecipeFilter struct {
	AuthorID    *int64
	TagSlugs    []string
	FavoritedBy *int64
	InCartOf    *int64
	Limit       uint64
	Offset      uint64
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func (f RecipeFilter) where() squirrel.And {
	w := squirrel.And{}
	if f.AuthorID != nil {
		w = append(w, squirrel.Eq{"r.author_id": *f.AuthorID})
	}
	if len(f.TagSlugs) != 0 {
		w = append(w, squirrel.Expr(
			"EXISTS (SELECT 1 FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id "+
				"WHERE rt.recipe_id = r.id AND t.slug = ANY(?::text[]))", f.TagSlugs))
	}
	if f.FavoritedBy != nil {
		w = append(w, squirrel.Expr(
			"EXISTS (SELECT 1 FROM favorites f WHERE f.recipe_id = r.id AND f.user_id = ?)", *f.FavoritedBy))
	}
	if f.InCartOf != nil {
		w = append(w, squirrel.Expr(
			"EXISTS (SELECT 1 FROM shopping_cart sc WHERE sc.recipe_id = r.id AND sc.user_id = ?)", *f.InCartOf))
	}
	return w
}

// ListRecipesQuery builds the paginated recipe list statement, newest first.
func ListRecipesQuery(f RecipeFilter) (string, []any, error) {
	q := psql.
		Select("r.id", "r.author_id", "r.name", "r.text", "r.cooking_time", "r.image_key", "r.created_at").
		From("recipes r").
		Where(f.where()).
		OrderBy("r.created_at DESC", "r.id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	return q.ToSql()
}

// CountRecipesQuery builds the statement counting every recipe matching f.
func CountRecipesQuery(f RecipeFilter) (string, []any, error) {
	return psql.
		Select("count(*)").
		From("recipes r").
		Where(f.where()).
		ToSql()
}

func (q *Queries) ListRecipes(ctx context.Context, f RecipeFilter) ([]Recipe, error) {
	query, args, err := ListRecipesQuery(f)
	if err != nil {
		return nil, fmt.Errorf("building recipe list query: %w", err)
	}

	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Recipe
	for rows.Next() {
		var i Recipe
		if err := rows.Scan(
			&i.ID,
			&i.AuthorID,
			&i.Name,
			&i.Text,
			&i.CookingTime,
			&i.ImageKey,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (q *Queries) CountRecipes(ctx context.Context, f RecipeFilter) (int64, error) {
	query, args, err := CountRecipesQuery(f)
	if err != nil {
		return 0, fmt.Errorf("building recipe count query: %w", err)
	}

	var count int64
	err = q.db.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}
