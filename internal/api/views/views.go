// Package views renders database rows into API representations. Every
// builder takes the id of the viewing user; 0 means an anonymous viewer,
// for whom all caller-relative flags are false.
package views

import (
	"context"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/matt-dz/foodgram/internal/database"
	"github.com/matt-dz/foodgram/internal/env"
)

type User struct {
	Email        string  `json:"email"`
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	IsSubscribed bool    `json:"is_subscribed"`
	Avatar       *string `json:"avatar"`
}

// Subscription is a followed author with a preview of their recipes.
type Subscription struct {
	User
	Recipes      []RecipeShort `json:"recipes"`
	RecipesCount int64         `json:"recipes_count"`
}

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Ingredient struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type RecipeIngredient struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int32  `json:"amount"`
}

type Recipe struct {
	ID               int64              `json:"id"`
	Tags             []Tag              `json:"tags"`
	Author           User               `json:"author"`
	Ingredients      []RecipeIngredient `json:"ingredients"`
	IsFavorited      bool               `json:"is_favorited"`
	IsInShoppingCart bool               `json:"is_in_shopping_cart"`
	Name             string             `json:"name"`
	Image            string             `json:"image"`
	Text             string             `json:"text"`
	CookingTime      int32              `json:"cooking_time"`
}

// RecipeShort is the recipe card used by favorites, the cart and
// subscriptions.
type RecipeShort struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int32  `json:"cooking_time"`
}

func fileURL(env *env.Env, key string) string {
	if env.FileStore == nil {
		return key
	}
	return env.FileStore.FileURL(key)
}

func avatarURL(env *env.Env, key pgtype.Text) *string {
	if !key.Valid || key.String == "" {
		return nil
	}
	url := fileURL(env, key.String)
	return &url
}

func TagView(t database.Tag) Tag {
	return Tag{ID: t.ID, Name: t.Name, Slug: t.Slug}
}

func IngredientView(i database.Ingredient) Ingredient {
	return Ingredient{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func ShortRecipe(env *env.Env, r database.Recipe) RecipeShort {
	return RecipeShort{
		ID:          r.ID,
		Name:        r.Name,
		Image:       fileURL(env, r.ImageKey),
		CookingTime: r.CookingTime,
	}
}

// Users renders users, marking the ones viewerID follows.
func Users(ctx context.Context, env *env.Env, viewerID int64, users []database.User) ([]User, error) {
	followed := map[int64]bool{}
	if viewerID != 0 && len(users) != 0 {
		ids := make([]int64, len(users))
		for i, u := range users {
			ids[i] = u.ID
		}
		following, err := env.Database.CheckSubscriptions(ctx, database.CheckSubscriptionsParams{
			UserID:       viewerID,
			FollowingIds: ids,
		})
		if err != nil {
			return nil, fmt.Errorf("checking subscriptions: %w", err)
		}
		for _, id := range following {
			followed[id] = true
		}
	}

	views := make([]User, len(users))
	for i, u := range users {
		views[i] = User{
			Email:        u.Email,
			ID:           u.ID,
			Username:     u.Username,
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			IsSubscribed: followed[u.ID],
			Avatar:       avatarURL(env, u.AvatarKey),
		}
	}
	return views, nil
}

func SingleUser(ctx context.Context, env *env.Env, viewerID int64, user database.User) (User, error) {
	views, err := Users(ctx, env, viewerID, []database.User{user})
	if err != nil {
		return User{}, err
	}
	return views[0], nil
}

// Subscriptions renders followed authors with at most recipesLimit of
// their newest recipes. A nil recipesLimit includes every recipe.
func Subscriptions(
	ctx context.Context, env *env.Env, viewerID int64, users []database.User, recipesLimit *int64,
) ([]Subscription, error) {
	userViews, err := Users(ctx, env, viewerID, users)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return []Subscription{}, nil
	}

	ids := make([]int64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	counts, err := env.Database.CountRecipesByAuthors(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("counting recipes: %w", err)
	}
	recipeCounts := make(map[int64]int64, len(counts))
	for _, c := range counts {
		recipeCounts[c.AuthorID] = c.RecipesCount
	}

	limit := pgtype.Int4{}
	if recipesLimit != nil {
		limit = pgtype.Int4{Int32: int32(min(*recipesLimit, math.MaxInt32)), Valid: true}
	}

	views := make([]Subscription, len(users))
	for i, u := range userViews {
		recipes, err := env.Database.ListRecipesByAuthor(ctx, database.ListRecipesByAuthorParams{
			AuthorID: u.ID,
			Limit:    limit,
		})
		if err != nil {
			return nil, fmt.Errorf("listing recipes of author %d: %w", u.ID, err)
		}
		short := make([]RecipeShort, len(recipes))
		for j, r := range recipes {
			short[j] = ShortRecipe(env, r)
		}
		views[i] = Subscription{
			User:         u,
			Recipes:      short,
			RecipesCount: recipeCounts[u.ID],
		}
	}
	return views, nil
}

// Recipes renders recipes with their ingredients, tags, authors and the
// viewer's favorite and cart flags.
func Recipes(ctx context.Context, env *env.Env, viewerID int64, recipes []database.Recipe) ([]Recipe, error) {
	if len(recipes) == 0 {
		return []Recipe{}, nil
	}

	recipeIDs := make([]int64, len(recipes))
	authorIDs := make([]int64, 0, len(recipes))
	seenAuthors := map[int64]bool{}
	for i, r := range recipes {
		recipeIDs[i] = r.ID
		if !seenAuthors[r.AuthorID] {
			seenAuthors[r.AuthorID] = true
			authorIDs = append(authorIDs, r.AuthorID)
		}
	}

	ingredientRows, err := env.Database.GetRecipesIngredients(ctx, recipeIDs)
	if err != nil {
		return nil, fmt.Errorf("getting recipe ingredients: %w", err)
	}
	ingredients := map[int64][]RecipeIngredient{}
	for _, row := range ingredientRows {
		ingredients[row.RecipeID] = append(ingredients[row.RecipeID], RecipeIngredient{
			ID:              row.IngredientID,
			Name:            row.Name,
			MeasurementUnit: row.MeasurementUnit,
			Amount:          row.Amount,
		})
	}

	tagRows, err := env.Database.GetRecipesTags(ctx, recipeIDs)
	if err != nil {
		return nil, fmt.Errorf("getting recipe tags: %w", err)
	}
	tags := map[int64][]Tag{}
	for _, row := range tagRows {
		tags[row.RecipeID] = append(tags[row.RecipeID], Tag{ID: row.ID, Name: row.Name, Slug: row.Slug})
	}

	authorRows, err := env.Database.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("getting recipe authors: %w", err)
	}
	authorViews, err := Users(ctx, env, viewerID, authorRows)
	if err != nil {
		return nil, err
	}
	authors := make(map[int64]User, len(authorViews))
	for _, a := range authorViews {
		authors[a.ID] = a
	}

	flags := map[int64]database.GetRecipeFlagsRow{}
	if viewerID != 0 {
		rows, err := env.Database.GetRecipeFlags(ctx, database.GetRecipeFlagsParams{
			UserID:    viewerID,
			RecipeIds: recipeIDs,
		})
		if err != nil {
			return nil, fmt.Errorf("getting recipe flags: %w", err)
		}
		for _, row := range rows {
			flags[row.RecipeID] = row
		}
	}

	views := make([]Recipe, len(recipes))
	for i, r := range recipes {
		views[i] = Recipe{
			ID:               r.ID,
			Tags:             nonNil(tags[r.ID]),
			Author:           authors[r.AuthorID],
			Ingredients:      nonNil(ingredients[r.ID]),
			IsFavorited:      flags[r.ID].IsFavorited,
			IsInShoppingCart: flags[r.ID].IsInShoppingCart,
			Name:             r.Name,
			Image:            fileURL(env, r.ImageKey),
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		}
	}
	return views, nil
}

func SingleRecipe(ctx context.Context, env *env.Env, viewerID int64, recipe database.Recipe) (Recipe, error) {
	views, err := Recipes(ctx, env, viewerID, []database.Recipe{recipe})
	if err != nil {
		return Recipe{}, err
	}
	return views[0], nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
