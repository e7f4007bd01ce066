package database

//go:generate go run go.uber.org/mock/mockgen -source=querier.go -destination=mock_querier.go -package=database

import (
	"context"
)

type Querier interface {
	AddRecipeIngredients(ctx context.Context, arg AddRecipeIngredientsParams) error
	AddRecipeTags(ctx context.Context, arg AddRecipeTagsParams) error
	CheckSubscriptions(ctx context.Context, arg CheckSubscriptionsParams) ([]int64, error)
	CheckUsersTableExists(ctx context.Context) (bool, error)
	CountExistingIngredients(ctx context.Context, ids []int64) (int64, error)
	CountExistingTags(ctx context.Context, ids []int64) (int64, error)
	CountRecipes(ctx context.Context, f RecipeFilter) (int64, error)
	CountRecipesByAuthors(ctx context.Context, authorIds []int64) ([]CountRecipesByAuthorsRow, error)
	CountSubscriptions(ctx context.Context, userID int64) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
	CreateCartEntry(ctx context.Context, arg CreateCartEntryParams) error
	CreateFavorite(ctx context.Context, arg CreateFavoriteParams) error
	CreateIngredient(ctx context.Context, arg CreateIngredientParams) (Ingredient, error)
	CreateLink(ctx context.Context, arg CreateLinkParams) (Link, error)
	CreateRecipe(ctx context.Context, arg CreateRecipeParams) (Recipe, error)
	CreateSubscription(ctx context.Context, arg CreateSubscriptionParams) error
	CreateTag(ctx context.Context, arg CreateTagParams) (Tag, error)
	CreateUser(ctx context.Context, arg CreateUserParams) (User, error)
	DeleteCartEntry(ctx context.Context, arg DeleteCartEntryParams) (int64, error)
	DeleteFavorite(ctx context.Context, arg DeleteFavoriteParams) (int64, error)
	DeleteRecipe(ctx context.Context, id int64) error
	DeleteRecipeIngredients(ctx context.Context, recipeID int64) error
	DeleteRecipeTags(ctx context.Context, recipeID int64) error
	DeleteSubscription(ctx context.Context, arg DeleteSubscriptionParams) (int64, error)
	DeleteUser(ctx context.Context, id int64) error
	GetAdminCount(ctx context.Context) (int64, error)
	GetCartLineItems(ctx context.Context, userID int64) ([]GetCartLineItemsRow, error)
	GetIngredient(ctx context.Context, id int64) (Ingredient, error)
	GetLinkByCode(ctx context.Context, shortCode string) (Link, error)
	GetLinkByRecipe(ctx context.Context, recipeID int64) (Link, error)
	GetRecipe(ctx context.Context, id int64) (Recipe, error)
	GetRecipeFlags(ctx context.Context, arg GetRecipeFlagsParams) ([]GetRecipeFlagsRow, error)
	GetRecipesIngredients(ctx context.Context, recipeIds []int64) ([]GetRecipesIngredientsRow, error)
	GetRecipesTags(ctx context.Context, recipeIds []int64) ([]GetRecipesTagsRow, error)
	GetTag(ctx context.Context, id int64) (Tag, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, id int64) (User, error)
	GetUsersByIDs(ctx context.Context, ids []int64) ([]User, error)
	ListIngredients(ctx context.Context, search string) ([]Ingredient, error)
	ListRecipes(ctx context.Context, f RecipeFilter) ([]Recipe, error)
	ListRecipesByAuthor(ctx context.Context, arg ListRecipesByAuthorParams) ([]Recipe, error)
	ListSubscriptions(ctx context.Context, arg ListSubscriptionsParams) ([]User, error)
	ListTags(ctx context.Context) ([]Tag, error)
	ListUsers(ctx context.Context, arg ListUsersParams) ([]User, error)
	RecipeExists(ctx context.Context, id int64) (bool, error)
	UpdateRecipe(ctx context.Context, arg UpdateRecipeParams) (Recipe, error)
	UpdateUserAvatar(ctx context.Context, arg UpdateUserAvatarParams) error
	UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error
	UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) (User, error)
	UpsertIngredients(ctx context.Context, arg UpsertIngredientsParams) (int64, error)
	UserExists(ctx context.Context, id int64) (bool, error)
}

var _ Querier = (*Queries)(nil)
