package recipes

import (
	"fmt"
	"log/slog"
	"net/http"

	apiError "github.com/matt-dz/foodgram/internal/api/error"
	"github.com/matt-dz/foodgram/internal/api/requestid"
	"github.com/matt-dz/foodgram/internal/env"
	"github.com/matt-dz/foodgram/internal/shoppinglist"
)

// DownloadShoppingCart godoc
//
//	@Summary		Download the shopping list.
//	@Description	Sums the ingredients of every recipe in the cart, one line per name and unit.
//	@Tags			Recipes
//
//	@Produce		plain
//	@Security		TokenAuth
//
//	@Success		200	{string}	string	"Shopping list"
//	@Failure		401	{object}	apiError.Error
//	@Router			/api/recipes/download_shopping_cart/ [GET]
func DownloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, err := env.Database.GetUserByID(ctx, userID)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to get user", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Exporting shopping list")
	document, err := shoppinglist.Export(ctx, env.ShoppingList(), userID)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to export shopping list", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	w.Header().Set("Content-Type", shoppinglist.ContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", shoppinglist.Filename(user.Username)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(document)); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write shopping list", slog.Any("error", err))
	}
}
