package ingredients

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"

	apiError "github.com/matt-dz/foodgram/internal/api/error"
	"github.com/matt-dz/foodgram/internal/api/request"
	"github.com/matt-dz/foodgram/internal/api/requestid"
	"github.com/matt-dz/foodgram/internal/api/views"
	"github.com/matt-dz/foodgram/internal/env"
	mJson "github.com/matt-dz/foodgram/internal/json"
)

// searchTerm returns the name prefix to filter by. "name" is accepted as
// an alias of "search".
func searchTerm(r *http.Request) string {
	q := r.URL.Query()
	term := q.Get("search")
	if term == "" {
		term = q.Get("name")
	}
	return strings.TrimSpace(term)
}

// HandleListIngredients godoc
//
//	@Summary		List ingredients.
//	@Description	Unpaginated. search matches the start of the name, case-insensitively.
//	@Tags			Ingredients
//
//	@Produce		json
//	@Param			search	query	string	false	"Name prefix"
//
//	@Success		200		{array}	views.Ingredient
//	@Router			/api/ingredients/ [GET]
func HandleListIngredients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)
	search := searchTerm(r)

	env.Logger.DebugContext(ctx, "Listing ingredients", slog.String("search", search))
	ingredients, err := env.Database.ListIngredients(ctx, search)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to list ingredients", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	res := make([]views.Ingredient, len(ingredients))
	for i, ing := range ingredients {
		res[i] = views.IngredientView(ing)
	}
	if err := mJson.WriteJSON(w, http.StatusOK, res); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleGetIngredient godoc
//
//	@Summary	Get an ingredient.
//	@Tags		Ingredients
//
//	@Produce	json
//	@Param		id	path		int	true	"Ingredient ID"
//
//	@Success	200	{object}	views.Ingredient
//	@Failure	404	{object}	apiError.Error	"Ingredient not found"
//	@Router		/api/ingredients/{id}/ [GET]
func HandleGetIngredient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)

	id, err := request.PathID(r, "id")
	if err != nil {
		env.Logger.ErrorContext(ctx, "Invalid ingredient id", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.IngredientNotFound, "ingredient not found", requestID)
		return
	}

	ingredient, err := env.Database.GetIngredient(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		env.Logger.ErrorContext(ctx, "Ingredient not found", slog.Int64("ingredient-id", id))
		_ = apiError.EncodeError(w, apiError.IngredientNotFound, "ingredient not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to get ingredient", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	if err := mJson.WriteJSON(w, http.StatusOK, views.IngredientView(ingredient)); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}
