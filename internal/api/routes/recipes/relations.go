package recipes

import (
	"errors"
	"log/slog"
	"net/http"

	apiError "github.com/matt-dz/foodgram/internal/api/error"
	"github.com/matt-dz/foodgram/internal/api/request"
	"github.com/matt-dz/foodgram/internal/api/requestid"
	"github.com/matt-dz/foodgram/internal/api/views"
	"github.com/matt-dz/foodgram/internal/env"
	mJson "github.com/matt-dz/foodgram/internal/json"
	"github.com/matt-dz/foodgram/internal/relation"
)

type conflictMessages struct {
	addCode       apiError.ErrorCode
	addMessage    string
	removeCode    apiError.ErrorCode
	removeMessage string
}

var relationConflicts = map[relation.Kind]conflictMessages{
	relation.Favorite: {
		addCode:       apiError.AlreadyFavorited,
		addMessage:    "recipe is already in favorites",
		removeCode:    apiError.NotFavorited,
		removeMessage: "recipe is not in favorites",
	},
	relation.Cart: {
		addCode:       apiError.AlreadyInCart,
		addMessage:    "recipe is already in the shopping cart",
		removeCode:    apiError.NotInCart,
		removeMessage: "recipe is not in the shopping cart",
	},
}

// AddFavorite godoc
//
//	@Summary	Add a recipe to favorites.
//	@Tags		Recipes
//
//	@Produce	json
//	@Param		id	path	int	true	"Recipe ID"
//	@Security	TokenAuth
//
//	@Success	201	{object}	views.RecipeShort
//	@Failure	400	{object}	apiError.Error	"Already in favorites"
//	@Failure	401	{object}	apiError.Error
//	@Failure	404	{object}	apiError.Error	"Recipe not found"
//	@Router		/api/recipes/{id}/favorite/ [POST]
func AddFavorite(w http.ResponseWriter, r *http.Request) {
	addRelation(w, r, relation.Favorite)
}

// RemoveFavorite godoc
//
//	@Summary	Remove a recipe from favorites.
//	@Tags		Recipes
//
//	@Param		id	path	int	true	"Recipe ID"
//	@Security	TokenAuth
//
//	@Success	204
//	@Failure	400	{object}	apiError.Error	"Not in favorites"
//	@Failure	401	{object}	apiError.Error
//	@Failure	404	{object}	apiError.Error	"Recipe not found"
//	@Router		/api/recipes/{id}/favorite/ [DELETE]
func RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	removeRelation(w, r, relation.Favorite)
}

// AddToCart godoc
//
//	@Summary	Add a recipe to the shopping cart.
//	@Tags		Recipes
//
//	@Produce	json
//	@Param		id	path	int	true	"Recipe ID"
//	@Security	TokenAuth
//
//	@Success	201	{object}	views.RecipeShort
//	@Failure	400	{object}	apiError.Error	"Already in the cart"
//	@Failure	401	{object}	apiError.Error
//	@Failure	404	{object}	apiError.Error	"Recipe not found"
//	@Router		/api/recipes/{id}/shopping_cart/ [POST]
func AddToCart(w http.ResponseWriter, r *http.Request) {
	addRelation(w, r, relation.Cart)
}

// RemoveFromCart godoc
//
//	@Summary	Remove a recipe from the shopping cart.
//	@Tags		Recipes
//
//	@Param		id	path	int	true	"Recipe ID"
//	@Security	TokenAuth
//
//	@Success	204
//	@Failure	400	{object}	apiError.Error	"Not in the cart"
//	@Failure	401	{object}	apiError.Error
//	@Failure	404	{object}	apiError.Error	"Recipe not found"
//	@Router		/api/recipes/{id}/shopping_cart/ [DELETE]
func RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	removeRelation(w, r, relation.Cart)
}

func addRelation(w http.ResponseWriter, r *http.Request, kind relation.Kind) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	recipeID, err := request.PathID(r, "id")
	if err != nil {
		env.Logger.ErrorContext(ctx, "Invalid recipe id", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.RecipeNotFound, "recipe not found", requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Adding relation", slog.String("kind", string(kind)), slog.Int64("recipe-id", recipeID))
	if err := env.Relations().Add(ctx, kind, userID, recipeID); err != nil {
		encodeRelationError(w, r, kind, err, true)
		return
	}

	recipe, err := env.Database.GetRecipe(ctx, recipeID)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to get recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	if err := mJson.WriteJSON(w, http.StatusCreated, views.ShortRecipe(env, recipe)); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

func removeRelation(w http.ResponseWriter, r *http.Request, kind relation.Kind) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	recipeID, err := request.PathID(r, "id")
	if err != nil {
		env.Logger.ErrorContext(ctx, "Invalid recipe id", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.RecipeNotFound, "recipe not found", requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Removing relation", slog.String("kind", string(kind)), slog.Int64("recipe-id", recipeID))
	if err := env.Relations().Remove(ctx, kind, userID, recipeID); err != nil {
		encodeRelationError(w, r, kind, err, false)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func encodeRelationError(w http.ResponseWriter, r *http.Request, kind relation.Kind, err error, adding bool) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)

	switch {
	case errors.Is(err, relation.ErrNotFound):
		env.Logger.ErrorContext(ctx, "Recipe not found", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.RecipeNotFound, "recipe not found", requestID)
	case errors.Is(err, relation.ErrConflict):
		env.Logger.ErrorContext(ctx, "Relation conflict", slog.String("kind", string(kind)), slog.Any("error", err))
		msgs := relationConflicts[kind]
		if adding {
			_ = apiError.EncodeError(w, msgs.addCode, msgs.addMessage, requestID)
		} else {
			_ = apiError.EncodeError(w, msgs.removeCode, msgs.removeMessage, requestID)
		}
	default:
		env.Logger.ErrorContext(ctx, "Failed to toggle relation", slog.String("kind", string(kind)), slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
	}
}
