// Package recipes contains handlers for the recipes endpoint.
package recipes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5"

	apiError "github.com/matt-dz/foodgram/internal/api/error"
	"github.com/matt-dz/foodgram/internal/api/pagination"
	"github.com/matt-dz/foodgram/internal/api/request"
	"github.com/matt-dz/foodgram/internal/api/requestid"
	"github.com/matt-dz/foodgram/internal/api/token"
	"github.com/matt-dz/foodgram/internal/api/views"
	"github.com/matt-dz/foodgram/internal/database"
	"github.com/matt-dz/foodgram/internal/env"
	"github.com/matt-dz/foodgram/internal/form"
	mJson "github.com/matt-dz/foodgram/internal/json"
	"github.com/matt-dz/foodgram/internal/role"
)

var (
	errUnknownIngredient = errors.New("unknown ingredient")
	errUnknownTag        = errors.New("unknown tag")
)

// ListRecipes godoc
//
//	@Summary		List recipes.
//	@Description	Newest first. is_favorited and is_in_shopping_cart only apply to an authenticated caller.
//	@Tags			Recipes
//
//	@Produce		json
//	@Param			page				query		int			false	"Page number"
//	@Param			limit				query		int			false	"Page size"
//	@Param			author				query		int			false	"Author ID"
//	@Param			tags				query		[]string	false	"Tag slugs (any of)"
//	@Param			is_favorited		query		int			false	"1 to list favorites"
//	@Param			is_in_shopping_cart	query		int			false	"1 to list the cart"
//
//	@Success		200					{object}	pagination.Page[views.Recipe]
//	@Failure		400					{object}	apiError.Error
//	@Router			/api/recipes/ [GET]
func ListRecipes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)
	viewerID, _ := token.UserIDFromCtx(ctx)

	params, err := pagination.FromRequest(r, env.Config.PageSize)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Invalid pagination parameters", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.ValidationError, "invalid pagination parameters", requestID)
		return
	}
	authorID, err := request.OptionalInt(r, "author")
	if err != nil {
		env.Logger.ErrorContext(ctx, "Invalid author filter", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.ValidationError, "author must be a user id", requestID)
		return
	}

	filter := database.RecipeFilter{
		AuthorID: authorID,
		TagSlugs: r.URL.Query()["tags"],
		Limit:    uint64(params.Limit),
		Offset:   uint64(params.Offset()),
	}
	if viewerID != 0 {
		if request.Flag(r, "is_favorited") {
			filter.FavoritedBy = &viewerID
		}
		if request.Flag(r, "is_in_shopping_cart") {
			filter.InCartOf = &viewerID
		}
	}

	env.Logger.DebugContext(ctx, "Counting recipes")
	count, err := env.Database.CountRecipes(ctx, filter)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to count recipes", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Listing recipes")
	recipes, err := env.Database.ListRecipes(ctx, filter)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to list recipes", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	results, err := views.Recipes(ctx, env, viewerID, recipes)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to render recipes", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	if err := mJson.WriteJSON(w, http.StatusOK, pagination.New(r, params, count, results)); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// GetRecipe godoc
//
//	@Summary	Get a recipe.
//	@Tags		Recipes
//
//	@Produce	json
//	@Param		id	path		int	true	"Recipe ID"
//
//	@Success	200	{object}	views.Recipe
//	@Failure	404	{object}	apiError.Error	"Recipe not found"
//	@Router		/api/recipes/{id}/ [GET]
func GetRecipe(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := token.UserIDFromCtx(r.Context())

	recipe, ok := loadRecipe(w, r)
	if !ok {
		return
	}
	writeRecipe(w, r, http.StatusOK, viewerID, recipe)
}

// CreateRecipe godoc
//
//	@Summary	Create a recipe.
//	@Tags		Recipes
//
//	@Accept		json
//	@Produce	json
//	@Param		request	body	RecipeWriteRequest	true	"Recipe"
//	@Security	TokenAuth
//
//	@Success	201		{object}	views.Recipe
//	@Failure	400		{object}	apiError.Error	"Validation error"
//	@Failure	401		{object}	apiError.Error
//	@Router		/api/recipes/ [POST]
func CreateRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	req, ok := decodeRecipe(w, r)
	if !ok {
		return
	}

	env.Logger.DebugContext(ctx, "Decoding recipe image")
	image, err := form.DecodeDataURI(req.Image)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to decode recipe image", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.InvalidImage, "image must be a base64 encoded image", requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Writing recipe image", slog.Int64("size", image.Size))
	imageKey, _, err := env.FileStore.WriteRecipeImage(ctx, image.Suffix, image.MimeType, image.Data)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write recipe image", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Creating recipe")
	var recipe database.Recipe
	err = env.Database.InTx(ctx, func(q database.Querier) error {
		var err error
		recipe, err = q.CreateRecipe(ctx, database.CreateRecipeParams{
			AuthorID:    userID,
			Name:        req.Name,
			Text:        req.Text,
			CookingTime: req.CookingTime,
			ImageKey:    imageKey,
		})
		if err != nil {
			return fmt.Errorf("creating recipe: %w", err)
		}
		return setComposition(ctx, q, recipe.ID, req)
	})
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to create recipe", slog.Any("error", err))
		deleteMedia(r, imageKey)
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	writeRecipe(w, r, http.StatusCreated, userID, recipe)
}

// UpdateRecipe godoc
//
//	@Summary		Update a recipe.
//	@Description	Ingredients and tags are replaced as a whole. The image is kept when omitted.
//	@Tags			Recipes
//
//	@Accept			json
//	@Produce		json
//	@Param			id		path	int					true	"Recipe ID"
//	@Param			request	body	RecipeWriteRequest	true	"Recipe"
//	@Security		TokenAuth
//
//	@Success		200		{object}	views.Recipe
//	@Failure		400		{object}	apiError.Error	"Validation error"
//	@Failure		401		{object}	apiError.Error
//	@Failure		403		{object}	apiError.Error	"Not the author"
//	@Failure		404		{object}	apiError.Error	"Recipe not found"
//	@Router			/api/recipes/{id}/ [PATCH]
//	@Router			/api/recipes/{id}/ [PUT]
func UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	recipe, ok := loadRecipe(w, r)
	if !ok {
		return
	}
	if !canMutate(r, recipe) {
		env.Logger.ErrorContext(ctx, "User does not own recipe", slog.Int64("recipe-id", recipe.ID))
		_ = apiError.EncodeError(w, apiError.RecipeNotOwned, "only the author may change this recipe", requestID)
		return
	}

	req, ok := decodeRecipe(w, r)
	if !ok {
		return
	}

	imageKey := recipe.ImageKey
	if req.Image != "" {
		env.Logger.DebugContext(ctx, "Decoding recipe image")
		image, err := form.DecodeDataURI(req.Image)
		if err != nil {
			env.Logger.ErrorContext(ctx, "Failed to decode recipe image", slog.Any("error", err))
			_ = apiError.EncodeError(w, apiError.InvalidImage, "image must be a base64 encoded image", requestID)
			return
		}
		imageKey, _, err = env.FileStore.WriteRecipeImage(ctx, image.Suffix, image.MimeType, image.Data)
		if err != nil {
			env.Logger.ErrorContext(ctx, "Failed to write recipe image", slog.Any("error", err))
			_ = apiError.EncodeInternalError(w, requestID)
			return
		}
	}

	env.Logger.DebugContext(ctx, "Updating recipe", slog.Int64("recipe-id", recipe.ID))
	var updated database.Recipe
	err := env.Database.InTx(ctx, func(q database.Querier) error {
		var err error
		updated, err = q.UpdateRecipe(ctx, database.UpdateRecipeParams{
			ID:          recipe.ID,
			Name:        req.Name,
			Text:        req.Text,
			CookingTime: req.CookingTime,
			ImageKey:    imageKey,
		})
		if err != nil {
			return fmt.Errorf("updating recipe: %w", err)
		}
		if err := q.DeleteRecipeIngredients(ctx, recipe.ID); err != nil {
			return fmt.Errorf("clearing ingredients: %w", err)
		}
		if err := q.DeleteRecipeTags(ctx, recipe.ID); err != nil {
			return fmt.Errorf("clearing tags: %w", err)
		}
		return setComposition(ctx, q, recipe.ID, req)
	})
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to update recipe", slog.Any("error", err))
		if imageKey != recipe.ImageKey {
			deleteMedia(r, imageKey)
		}
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	if imageKey != recipe.ImageKey {
		deleteMedia(r, recipe.ImageKey)
	}

	writeRecipe(w, r, http.StatusOK, userID, updated)
}

// DeleteRecipe godoc
//
//	@Summary	Delete a recipe.
//	@Tags		Recipes
//
//	@Param		id	path	int	true	"Recipe ID"
//	@Security	TokenAuth
//
//	@Success	204
//	@Failure	401	{object}	apiError.Error
//	@Failure	403	{object}	apiError.Error	"Not the author"
//	@Failure	404	{object}	apiError.Error	"Recipe not found"
//	@Router		/api/recipes/{id}/ [DELETE]
func DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)
	if _, ok := currentUser(w, r); !ok {
		return
	}

	recipe, ok := loadRecipe(w, r)
	if !ok {
		return
	}
	if !canMutate(r, recipe) {
		env.Logger.ErrorContext(ctx, "User does not own recipe", slog.Int64("recipe-id", recipe.ID))
		_ = apiError.EncodeError(w, apiError.RecipeNotOwned, "only the author may delete this recipe", requestID)
		return
	}

	// The link row cascades with the recipe, so read its code first.
	links := env.ShortLinks()
	code, _, err := links.Code(ctx, recipe.ID)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to get recipe short link", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Deleting recipe", slog.Int64("recipe-id", recipe.ID))
	if err := env.Database.DeleteRecipe(ctx, recipe.ID); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to delete recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	if err := links.Evict(ctx, code); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to evict short link", slog.Any("error", err))
	}
	deleteMedia(r, recipe.ImageKey)

	w.WriteHeader(http.StatusNoContent)
}

// decodeRecipe reads and validates the write representation, including
// that every referenced ingredient and tag exists.
func decodeRecipe(w http.ResponseWriter, r *http.Request) (RecipeWriteRequest, bool) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)

	var req RecipeWriteRequest
	env.Logger.DebugContext(ctx, "Reading request body")
	if err := request.DecodeJSON(w, r, &req); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.ValidationError, "invalid recipe", requestID)
		return req, false
	}

	err := checkReferences(ctx, env.Database, req)
	switch {
	case errors.Is(err, errUnknownIngredient):
		env.Logger.ErrorContext(ctx, "Recipe references unknown ingredients", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.ValidationError, "unknown ingredient", requestID)
		return req, false
	case errors.Is(err, errUnknownTag):
		env.Logger.ErrorContext(ctx, "Recipe references unknown tags", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.ValidationError, "unknown tag", requestID)
		return req, false
	case err != nil:
		env.Logger.ErrorContext(ctx, "Failed to check recipe references", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return req, false
	}
	return req, true
}

func checkReferences(ctx context.Context, q database.Querier, req RecipeWriteRequest) error {
	n, err := q.CountExistingIngredients(ctx, req.ingredientIDs())
	if err != nil {
		return fmt.Errorf("counting ingredients: %w", err)
	}
	if n != int64(len(req.Ingredients)) {
		return errUnknownIngredient
	}

	n, err = q.CountExistingTags(ctx, req.Tags)
	if err != nil {
		return fmt.Errorf("counting tags: %w", err)
	}
	if n != int64(len(req.Tags)) {
		return errUnknownTag
	}
	return nil
}

func setComposition(ctx context.Context, q database.Querier, recipeID int64, req RecipeWriteRequest) error {
	if err := q.AddRecipeIngredients(ctx, database.AddRecipeIngredientsParams{
		RecipeID:      recipeID,
		IngredientIds: req.ingredientIDs(),
		Amounts:       req.amounts(),
	}); err != nil {
		return fmt.Errorf("adding ingredients: %w", err)
	}
	if err := q.AddRecipeTags(ctx, database.AddRecipeTagsParams{
		RecipeID: recipeID,
		TagIds:   req.Tags,
	}); err != nil {
		return fmt.Errorf("adding tags: %w", err)
	}
	return nil
}

func loadRecipe(w http.ResponseWriter, r *http.Request) (database.Recipe, bool) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)

	recipeID, err := request.PathID(r, "id")
	if err != nil {
		env.Logger.ErrorContext(ctx, "Invalid recipe id", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.RecipeNotFound, "recipe not found", requestID)
		return database.Recipe{}, false
	}

	env.Logger.DebugContext(ctx, "Getting recipe", slog.Int64("recipe-id", recipeID))
	recipe, err := env.Database.GetRecipe(ctx, recipeID)
	if errors.Is(err, pgx.ErrNoRows) {
		env.Logger.ErrorContext(ctx, "Recipe not found", slog.Int64("recipe-id", recipeID))
		_ = apiError.EncodeError(w, apiError.RecipeNotFound, "recipe not found", requestID)
		return database.Recipe{}, false
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to get recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return database.Recipe{}, false
	}
	return recipe, true
}

func writeRecipe(w http.ResponseWriter, r *http.Request, status int, viewerID int64, recipe database.Recipe) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)

	view, err := views.SingleRecipe(ctx, env, viewerID, recipe)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to render recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestid.ExtractRequestID(ctx))
		return
	}
	if err := mJson.WriteJSON(w, status, view); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

func canMutate(r *http.Request, recipe database.Recipe) bool {
	claims, ok := token.ClaimsFromCtx(r.Context())
	if !ok {
		return false
	}
	userID, err := claims.UserID()
	if err != nil {
		return false
	}
	return role.CanMutate(claims.UserRole(), userID, recipe.AuthorID)
}

func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := token.UserIDFromCtx(r.Context())
	if !ok {
		_ = apiError.EncodeError(w, apiError.AuthenticationRequired,
			"authentication credentials were not provided", requestid.ExtractRequestID(r.Context()))
	}
	return userID, ok
}

func deleteMedia(r *http.Request, key string) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	if key == "" || env.FileStore == nil {
		return
	}
	if err := env.FileStore.DeleteKey(ctx, key); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to delete media", slog.String("key", key), slog.Any("error", err))
	}
}
