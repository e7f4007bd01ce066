package database

import (
	"context"
)

const addRecipeIngredients = `-- name: AddRecipeIngredients :exec
INSERT INTO recipe_ingredients (recipe_id, ingredient_id, amount, position)
SELECT $1, t.ingredient_id, t.amount, t.position
FROM unnest($2::bigint[], $3::integer[]) WITH ORDINALITY AS t(ingredient_id, amount, position)
`

type AddRecipeIngredientsParams struct {
	RecipeID      int64
	IngredientIds []int64
	Amounts       []int32
}

func (q *Queries) AddRecipeIngredients(ctx context.Context, arg AddRecipeIngredientsParams) error {
	_, err := q.db.Exec(ctx, addRecipeIngredients, arg.RecipeID, arg.IngredientIds, arg.Amounts)
	return err
}

const addRecipeTags = `-- name: AddRecipeTags :exec
INSERT INTO recipe_tags (recipe_id, tag_id)
SELECT $1, unnest($2::bigint[])
`

type AddRecipeTagsParams struct {
	RecipeID int64
	TagIds   []int64
}

func (q *Queries) AddRecipeTags(ctx context.Context, arg AddRecipeTagsParams) error {
	_, err := q.db.Exec(ctx, addRecipeTags, arg.RecipeID, arg.TagIds)
	return err
}

const countExistingIngredients = `-- name: CountExistingIngredients :one
SELECT count(*) FROM ingredients WHERE id = ANY($1::bigint[])
`

func (q *Queries) CountExistingIngredients(ctx context.Context, ids []int64) (int64, error) {
	row := q.db.QueryRow(ctx, countExistingIngredients, ids)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countExistingTags = `-- name: CountExistingTags :one
SELECT count(*) FROM tags WHERE id = ANY($1::bigint[])
`

func (q *Queries) CountExistingTags(ctx context.Context, ids []int64) (int64, error) {
	row := q.db.QueryRow(ctx, countExistingTags, ids)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createRecipe = `-- name: CreateRecipe :one
INSERT INTO recipes (author_id, name, text, cooking_time, image_key)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, author_id, name, text, cooking_time, image_key, created_at
`

type CreateRecipeParams struct {
	AuthorID    int64
	Name        string
	Text        string
	CookingTime int32
	ImageKey    string
}

func (q *Queries) CreateRecipe(ctx context.Context, arg CreateRecipeParams) (Recipe, error) {
	row := q.db.QueryRow(ctx, createRecipe,
		arg.AuthorID,
		arg.Name,
		arg.Text,
		arg.CookingTime,
		arg.ImageKey,
	)
	var i Recipe
	err := row.Scan(
		&i.ID,
		&i.AuthorID,
		&i.Name,
		&i.Text,
		&i.CookingTime,
		&i.ImageKey,
		&i.CreatedAt,
	)
	return i, err
}

const deleteRecipe = `-- name: DeleteRecipe :exec
DELETE FROM recipes WHERE id = $1
`

func (q *Queries) DeleteRecipe(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, deleteRecipe, id)
	return err
}

const deleteRecipeIngredients = `-- name: DeleteRecipeIngredients :exec
DELETE FROM recipe_ingredients WHERE recipe_id = $1
`

func (q *Queries) DeleteRecipeIngredients(ctx context.Context, recipeID int64) error {
	_, err := q.db.Exec(ctx, deleteRecipeIngredients, recipeID)
	return err
}

const deleteRecipeTags = `-- name: DeleteRecipeTags :exec
DELETE FROM recipe_tags WHERE recipe_id = $1
`

func (q *Queries) DeleteRecipeTags(ctx context.Context, recipeID int64) error {
	_, err := q.db.Exec(ctx, deleteRecipeTags, recipeID)
	return err
}

const getRecipe = `-- name: GetRecipe :one
SELECT id, author_id, name, text, cooking_time, image_key, created_at
FROM recipes
WHERE id = $1
`

func (q *Queries) GetRecipe(ctx context.Context, id int64) (Recipe, error) {
	row := q.db.QueryRow(ctx, getRecipe, id)
	var i Recipe
	err := row.Scan(
		&i.ID,
		&i.AuthorID,
		&i.Name,
		&i.Text,
		&i.CookingTime,
		&i.ImageKey,
		&i.CreatedAt,
	)
	return i, err
}

const getRecipesIngredients = `-- name: GetRecipesIngredients :many
SELECT ri.recipe_id, i.id, i.name, i.measurement_unit, ri.amount
FROM recipe_ingredients ri
JOIN ingredients i ON i.id = ri.ingredient_id
WHERE ri.recipe_id = ANY($1::bigint[])
ORDER BY ri.recipe_id, ri.position
`

type GetRecipesIngredientsRow struct {
	RecipeID        int64
	IngredientID    int64
	Name            string
	MeasurementUnit string
	Amount          int32
}

func (q *Queries) GetRecipesIngredients(ctx context.Context, recipeIds []int64) ([]GetRecipesIngredientsRow, error) {
	rows, err := q.db.Query(ctx, getRecipesIngredients, recipeIds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetRecipesIngredientsRow
	for rows.Next() {
		var i GetRecipesIngredientsRow
		if err := rows.Scan(
			&i.RecipeID,
			&i.IngredientID,
			&i.Name,
			&i.MeasurementUnit,
			&i.Amount,
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

const getRecipesTags = `-- name: GetRecipesTags :many
SELECT rt.recipe_id, t.id, t.name, t.slug
FROM recipe_tags rt
JOIN tags t ON t.id = rt.tag_id
WHERE rt.recipe_id = ANY($1::bigint[])
ORDER BY rt.recipe_id, t.id
`

type GetRecipesTagsRow struct {
	RecipeID int64
	ID       int64
	Name     string
	Slug     string
}

func (q *Queries) GetRecipesTags(ctx context.Context, recipeIds []int64) ([]GetRecipesTagsRow, error) {
	rows, err := q.db.Query(ctx, getRecipesTags, recipeIds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetRecipesTagsRow
	for rows.Next() {
		var i GetRecipesTagsRow
		if err := rows.Scan(
			&i.RecipeID,
			&i.ID,
			&i.Name,
			&i.Slug,
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

const updateRecipe = `-- name: UpdateRecipe :one
UPDATE recipes
SET name = $2,
    text = $3,
    cooking_time = $4,
    image_key = $5
WHERE id = $1
RETURNING id, author_id, name, text, cooking_time, image_key, created_at
`

type UpdateRecipeParams struct {
	ID          int64
	Name        string
	Text        string
	CookingTime int32
	ImageKey    string
}

func (q *Queries) UpdateRecipe(ctx context.Context, arg UpdateRecipeParams) (Recipe, error) {
	row := q.db.QueryRow(ctx, updateRecipe,
		arg.ID,
		arg.Name,
		arg.Text,
		arg.CookingTime,
		arg.ImageKey,
	)
	var i Recipe
	err := row.Scan(
		&i.ID,
		&i.AuthorID,
		&i.Name,
		&i.Text,
		&i.CookingTime,
		&i.ImageKey,
		&i.CreatedAt,
	)
	return i, err
}
