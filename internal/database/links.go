package database

import (
	"context"
)

const createLink = `-- name: CreateLink :one
INSERT INTO links (recipe_id, short_code, original_link)
VALUES ($1, $2, $3)
ON CONFLICT (recipe_id) DO NOTHING
RETURNING id, recipe_id, short_code, original_link
`

type CreateLinkParams struct {
	RecipeID     int64
	ShortCode    string
	OriginalLink string
}

func (q *Queries) CreateLink(ctx context.Context, arg CreateLinkParams) (Link, error) {
	row := q.db.QueryRow(ctx, createLink, arg.RecipeID, arg.ShortCode, arg.OriginalLink)
	var i Link
	err := row.Scan(
		&i.ID,
		&i.RecipeID,
		&i.ShortCode,
		&i.OriginalLink,
	)
	return i, err
}

const getLinkByCode = `-- name: GetLinkByCode :one
SELECT id, recipe_id, short_code, original_link FROM links WHERE short_code = $1
`

func (q *Queries) GetLinkByCode(ctx context.Context, shortCode string) (Link, error) {
	row := q.db.QueryRow(ctx, getLinkByCode, shortCode)
	var i Link
	err := row.Scan(
		&i.ID,
		&i.RecipeID,
		&i.ShortCode,
		&i.OriginalLink,
	)
	return i, err
}

const getLinkByRecipe = `-- name: GetLinkByRecipe :one
SELECT id, recipe_id, short_code, original_link FROM links WHERE recipe_id = $1
`

func (q *Queries) GetLinkByRecipe(ctx context.Context, recipeID int64) (Link, error) {
	row := q.db.QueryRow(ctx, getLinkByRecipe, recipeID)
	var i Link
	err := row.Scan(
		&i.ID,
		&i.RecipeID,
		&i.ShortCode,
		&i.OriginalLink,
	)
	return i, err
}
