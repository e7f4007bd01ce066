package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const checkSubscriptions = `-- name: CheckSubscriptions :many
SELECT following_id
FROM subscriptions
WHERE user_id = $1
  AND following_id = ANY($2::bigint[])
`

type CheckSubscriptionsParams struct {
	UserID       int64
	FollowingIds []int64
}

func (q *Queries) CheckSubscriptions(ctx context.Context, arg CheckSubscriptionsParams) ([]int64, error) {
	rows, err := q.db.Query(ctx, checkSubscriptions, arg.UserID, arg.FollowingIds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []int64
	for rows.Next() {
		var following_id int64
		if err := rows.Scan(&following_id); err != nil {
			return nil, err
		}
		items = append(items, following_id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countRecipesByAuthors = `-- name: CountRecipesByAuthors :many
SELECT author_id, count(*) AS recipes_count
FROM recipes
WHERE author_id = ANY($1::bigint[])
GROUP BY author_id
`

type CountRecipesByAuthorsRow struct {
	AuthorID     int64
	RecipesCount int64
}

func (q *Queries) CountRecipesByAuthors(ctx context.Context, authorIds []int64) ([]CountRecipesByAuthorsRow, error) {
	rows, err := q.db.Query(ctx, countRecipesByAuthors, authorIds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CountRecipesByAuthorsRow
	for rows.Next() {
		var i CountRecipesByAuthorsRow
		if err := rows.Scan(&i.AuthorID, &i.RecipesCount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countSubscriptions = `-- name: CountSubscriptions :one
SELECT count(*) FROM subscriptions WHERE user_id = $1
`

func (q *Queries) CountSubscriptions(ctx context.Context, userID int64) (int64, error) {
	row := q.db.QueryRow(ctx, countSubscriptions, userID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createCartEntry = `-- name: CreateCartEntry :exec
INSERT INTO shopping_cart (user_id, recipe_id) VALUES ($1, $2)
`

type CreateCartEntryParams struct {
	UserID   int64
	RecipeID int64
}

func (q *Queries) CreateCartEntry(ctx context.Context, arg CreateCartEntryParams) error {
	_, err := q.db.Exec(ctx, createCartEntry, arg.UserID, arg.RecipeID)
	return err
}

const createFavorite = `-- name: CreateFavorite :exec
INSERT INTO favorites (user_id, recipe_id) VALUES ($1, $2)
`

type CreateFavoriteParams struct {
	UserID   int64
	RecipeID int64
}

func (q *Queries) CreateFavorite(ctx context.Context, arg CreateFavoriteParams) error {
	_, err := q.db.Exec(ctx, createFavorite, arg.UserID, arg.RecipeID)
	return err
}

const createSubscription = `-- name: CreateSubscription :exec
INSERT INTO subscriptions (user_id, following_id) VALUES ($1, $2)
`

type CreateSubscriptionParams struct {
	UserID      int64
	FollowingID int64
}

func (q *Queries) CreateSubscription(ctx context.Context, arg CreateSubscriptionParams) error {
	_, err := q.db.Exec(ctx, createSubscription, arg.UserID, arg.FollowingID)
	return err
}

const deleteCartEntry = `-- name: DeleteCartEntry :execrows
DELETE FROM shopping_cart WHERE user_id = $1 AND recipe_id = $2
`

type DeleteCartEntryParams struct {
	UserID   int64
	RecipeID int64
}

func (q *Queries) DeleteCartEntry(ctx context.Context, arg DeleteCartEntryParams) (int64, error) {
	result, err := q.db.Exec(ctx, deleteCartEntry, arg.UserID, arg.RecipeID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteFavorite = `-- name: DeleteFavorite :execrows
DELETE FROM favorites WHERE user_id = $1 AND recipe_id = $2
`

type DeleteFavoriteParams struct {
	UserID   int64
	RecipeID int64
}

func (q *Queries) DeleteFavorite(ctx context.Context, arg DeleteFavoriteParams) (int64, error) {
	result, err := q.db.Exec(ctx, deleteFavorite, arg.UserID, arg.RecipeID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteSubscription = `-- name: DeleteSubscription :execrows
DELETE FROM subscriptions WHERE user_id = $1 AND following_id = $2
`

type DeleteSubscriptionParams struct {
	UserID      int64
	FollowingID int64
}

func (q *Queries) DeleteSubscription(ctx context.Context, arg DeleteSubscriptionParams) (int64, error) {
	result, err := q.db.Exec(ctx, deleteSubscription, arg.UserID, arg.FollowingID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getCartLineItems = `-- name: GetCartLineItems :many
SELECT i.id, i.name, i.measurement_unit, ri.amount
FROM shopping_cart sc
JOIN recipe_ingredients ri ON ri.recipe_id = sc.recipe_id
JOIN ingredients i ON i.id = ri.ingredient_id
WHERE sc.user_id = $1
`

type GetCartLineItemsRow struct {
	IngredientID    int64
	Name            string
	MeasurementUnit string
	Amount          int32
}

func (q *Queries) GetCartLineItems(ctx context.Context, userID int64) ([]GetCartLineItemsRow, error) {
	rows, err := q.db.Query(ctx, getCartLineItems, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetCartLineItemsRow
	for rows.Next() {
		var i GetCartLineItemsRow
		if err := rows.Scan(
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

const getRecipeFlags = `-- name: GetRecipeFlags :many
SELECT r.id AS recipe_id,
       EXISTS (SELECT 1 FROM favorites f WHERE f.recipe_id = r.id AND f.user_id = $1) AS is_favorited,
       EXISTS (SELECT 1 FROM shopping_cart sc WHERE sc.recipe_id = r.id AND sc.user_id = $1) AS is_in_shopping_cart
FROM recipes r
WHERE r.id = ANY($2::bigint[])
`

type GetRecipeFlagsParams struct {
	UserID    int64
	RecipeIds []int64
}

type GetRecipeFlagsRow struct {
	RecipeID         int64
	IsFavorited      bool
	IsInShoppingCart bool
}

func (q *Queries) GetRecipeFlags(ctx context.Context, arg GetRecipeFlagsParams) ([]GetRecipeFlagsRow, error) {
	rows, err := q.db.Query(ctx, getRecipeFlags, arg.UserID, arg.RecipeIds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetRecipeFlagsRow
	for rows.Next() {
		var i GetRecipeFlagsRow
		if err := rows.Scan(&i.RecipeID, &i.IsFavorited, &i.IsInShoppingCart); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listRecipesByAuthor = `-- name: ListRecipesByAuthor :many
SELECT id, author_id, name, text, cooking_time, image_key, created_at
FROM recipes
WHERE author_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2
`

type ListRecipesByAuthorParams struct {
	AuthorID int64
	Limit    pgtype.Int4
}

func (q *Queries) ListRecipesByAuthor(ctx context.Context, arg ListRecipesByAuthorParams) ([]Recipe, error) {
	rows, err := q.db.Query(ctx, listRecipesByAuthor, arg.AuthorID, arg.Limit)
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

const listSubscriptions = `-- name: ListSubscriptions :many
SELECT u.id, u.email, u.username, u.first_name, u.last_name, u.password_hash, u.role, u.avatar_key, u.created_at
FROM subscriptions s
JOIN users u ON u.id = s.following_id
WHERE s.user_id = $1
ORDER BY s.id
LIMIT $2 OFFSET $3
`

type ListSubscriptionsParams struct {
	UserID int64
	Limit  int32
	Offset int32
}

func (q *Queries) ListSubscriptions(ctx context.Context, arg ListSubscriptionsParams) ([]User, error) {
	rows, err := q.db.Query(ctx, listSubscriptions, arg.UserID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []User
	for rows.Next() {
		var i User
		if err := rows.Scan(
			&i.ID,
			&i.Email,
			&i.Username,
			&i.FirstName,
			&i.LastName,
			&i.PasswordHash,
			&i.Role,
			&i.AvatarKey,
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

const recipeExists = `-- name: RecipeExists :one
SELECT EXISTS (SELECT 1 FROM recipes WHERE id = $1) AS exists
`

func (q *Queries) RecipeExists(ctx context.Context, id int64) (bool, error) {
	row := q.db.QueryRow(ctx, recipeExists, id)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const userExists = `-- name: UserExists :one
SELECT EXISTS (SELECT 1 FROM users WHERE id = $1) AS exists
`

func (q *Queries) UserExists(ctx context.Context, id int64) (bool, error) {
	row := q.db.QueryRow(ctx, userExists, id)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}
