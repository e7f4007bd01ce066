package database

import (
	"context"
)

const createIngredient = `-- name: CreateIngredient :one
INSERT INTO ingredients (name, measurement_unit)
VALUES ($1, $2)
RETURNING id, name, measurement_unit
`

type CreateIngredientParams struct {
	Name            string
	MeasurementUnit string
}

func (q *Queries) CreateIngredient(ctx context.Context, arg CreateIngredientParams) (Ingredient, error) {
	row := q.db.QueryRow(ctx, createIngredient, arg.Name, arg.MeasurementUnit)
	var i Ingredient
	err := row.Scan(&i.ID, &i.Name, &i.MeasurementUnit)
	return i, err
}

const createTag = `-- name: CreateTag :one
INSERT INTO tags (name, slug)
VALUES ($1, $2)
RETURNING id, name, slug
`

type CreateTagParams struct {
	Name string
	Slug string
}

func (q *Queries) CreateTag(ctx context.Context, arg CreateTagParams) (Tag, error) {
	row := q.db.QueryRow(ctx, createTag, arg.Name, arg.Slug)
	var i Tag
	err := row.Scan(&i.ID, &i.Name, &i.Slug)
	return i, err
}

const getIngredient = `-- name: GetIngredient :one
SELECT id, name, measurement_unit FROM ingredients WHERE id = $1
`

func (q *Queries) GetIngredient(ctx context.Context, id int64) (Ingredient, error) {
	row := q.db.QueryRow(ctx, getIngredient, id)
	var i Ingredient
	err := row.Scan(&i.ID, &i.Name, &i.MeasurementUnit)
	return i, err
}

const getTag = `-- name: GetTag :one
SELECT id, name, slug FROM tags WHERE id = $1
`

func (q *Queries) GetTag(ctx context.Context, id int64) (Tag, error) {
	row := q.db.QueryRow(ctx, getTag, id)
	var i Tag
	err := row.Scan(&i.ID, &i.Name, &i.Slug)
	return i, err
}

const listIngredients = `-- name: ListIngredients :many
SELECT id, name, measurement_unit
FROM ingredients
WHERE starts_with(lower(name), lower($1::text))
ORDER BY name, measurement_unit
`

func (q *Queries) ListIngredients(ctx context.Context, search string) ([]Ingredient, error) {
	rows, err := q.db.Query(ctx, listIngredients, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Ingredient
	for rows.Next() {
		var i Ingredient
		if err := rows.Scan(&i.ID, &i.Name, &i.MeasurementUnit); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listTags = `-- name: ListTags :many
SELECT id, name, slug FROM tags ORDER BY id
`

func (q *Queries) ListTags(ctx context.Context) ([]Tag, error) {
	rows, err := q.db.Query(ctx, listTags)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Tag
	for rows.Next() {
		var i Tag
		if err := rows.Scan(&i.ID, &i.Name, &i.Slug); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertIngredients = `-- name: UpsertIngredients :execrows
INSERT INTO ingredients (name, measurement_unit)
SELECT unnest($1::text[]), unnest($2::text[])
ON CONFLICT (name, measurement_unit) DO NOTHING
`

type UpsertIngredientsParams struct {
	Names            []string
	MeasurementUnits []string
}

func (q *Queries) UpsertIngredients(ctx context.Context, arg UpsertIngredientsParams) (int64, error) {
	result, err := q.db.Exec(ctx, upsertIngredients, arg.Names, arg.MeasurementUnits)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
