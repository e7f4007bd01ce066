// Package links contains the short link handlers of recipes.
package links

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apiError "github.com/matt-dz/foodgram/internal/api/error"
	"github.com/matt-dz/foodgram/internal/api/request"
	"github.com/matt-dz/foodgram/internal/api/requestid"
	"github.com/matt-dz/foodgram/internal/env"
	mJson "github.com/matt-dz/foodgram/internal/json"
	"github.com/matt-dz/foodgram/internal/shortlink"
)

type GetLinkResponse struct {
	ShortLink string `json:"short-link"`
}

// HandleGetLink godoc
//
//	@Summary		Get the short link of a recipe.
//	@Description	The link is created on first use and stays the same afterwards.
//	@Tags			Recipes
//
//	@Produce		json
//	@Param			id	path		int	true	"Recipe ID"
//
//	@Success		200	{object}	GetLinkResponse
//	@Failure		404	{object}	apiError.Error	"Recipe not found"
//	@Router			/api/recipes/{id}/get-link/ [GET]
func HandleGetLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)

	shortURL, ok := issue(w, r)
	if !ok {
		return
	}
	if err := mJson.WriteJSON(w, http.StatusOK, GetLinkResponse{ShortLink: shortURL}); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleGetLinkQR godoc
//
//	@Summary	Get the short link of a recipe as a QR code.
//	@Tags		Recipes
//
//	@Produce	png
//	@Param		id	path	int	true	"Recipe ID"
//
//	@Success	200	{file}		binary
//	@Failure	404	{object}	apiError.Error	"Recipe not found"
//	@Router		/api/recipes/{id}/get-link/qr/ [GET]
func HandleGetLinkQR(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)

	shortURL, ok := issue(w, r)
	if !ok {
		return
	}

	env.Logger.DebugContext(ctx, "Encoding QR code", slog.String("url", shortURL))
	png, err := shortlink.QRCode(shortURL)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to encode QR code", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write QR code", slog.Any("error", err))
	}
}

// HandleRedirect godoc
//
//	@Summary	Follow a short link.
//	@Tags		Links
//
//	@Param		code	path	string	true	"Short code"
//
//	@Success	302
//	@Failure	404	{object}	apiError.Error	"Link not found"
//	@Router		/s/{code} [GET]
func HandleRedirect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)
	code := chi.URLParam(r, "code")

	env.Logger.DebugContext(ctx, "Resolving short link", slog.String("code", code))
	target, err := env.ShortLinks().Resolve(ctx, code)
	if errors.Is(err, shortlink.ErrNotFound) {
		env.Logger.ErrorContext(ctx, "Short link not found", slog.String("code", code))
		_ = apiError.EncodeError(w, apiError.LinkNotFound, "link not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to resolve short link", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

func issue(w http.ResponseWriter, r *http.Request) (string, bool) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)

	recipeID, err := request.PathID(r, "id")
	if err != nil {
		env.Logger.ErrorContext(ctx, "Invalid recipe id", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.RecipeNotFound, "recipe not found", requestID)
		return "", false
	}

	env.Logger.DebugContext(ctx, "Issuing short link", slog.Int64("recipe-id", recipeID))
	links := env.ShortLinks()
	code, err := links.Issue(ctx, recipeID)
	if errors.Is(err, shortlink.ErrNotFound) {
		env.Logger.ErrorContext(ctx, "Recipe not found", slog.Int64("recipe-id", recipeID))
		_ = apiError.EncodeError(w, apiError.RecipeNotFound, "recipe not found", requestID)
		return "", false
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to issue short link", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return "", false
	}
	return links.ShortURL(code), true
}
