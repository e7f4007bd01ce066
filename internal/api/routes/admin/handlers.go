// Package admin contains handlers for the admin endpoints
package admin

import (
	"log/slog"
	"net/http"
	"strings"

	apiError "github.com/matt-dz/foodgram/internal/api/error"
	"github.com/matt-dz/foodgram/internal/api/request"
	"github.com/matt-dz/foodgram/internal/api/requestid"
	"github.com/matt-dz/foodgram/internal/api/views"
	"github.com/matt-dz/foodgram/internal/database"
	"github.com/matt-dz/foodgram/internal/env"
	mJson "github.com/matt-dz/foodgram/internal/json"
)

type CreateTagRequest struct {
	Name string `json:"name" validate:"required,max=32"`
	Slug string `json:"slug" validate:"required,max=32,slug"`
}

type CreateIngredientRequest struct {
	Name            string `json:"name" validate:"required,max=128"`
	MeasurementUnit string `json:"measurement_unit" validate:"required,max=64"`
}

// HandleCreateTag godoc
//
//	@Summary	Create a tag.
//	@Tags		Admin
//
//	@Accept		json
//	@Produce	json
//	@Param		request	body	CreateTagRequest	true	"Tag"
//	@Security	TokenAuth
//
//	@Success	201	{object}	views.Tag
//	@Failure	400	{object}	apiError.Error	"Validation error"
//	@Failure	401	{object}	apiError.Error
//	@Failure	403	{object}	apiError.Error	"Not an admin"
//	@Failure	409	{object}	apiError.Error	"Name or slug taken"
//	@Router		/api/admin/tags/ [POST]
func HandleCreateTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)

	var req CreateTagRequest
	env.Logger.DebugContext(ctx, "Reading request body")
	if err := request.DecodeJSON(w, r, &req); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.ValidationError, "invalid tag", requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Creating tag", slog.String("slug", req.Slug))
	tag, err := env.Database.CreateTag(ctx, database.CreateTagParams{
		Name: strings.TrimSpace(req.Name),
		Slug: req.Slug,
	})
	if database.IsUniqueViolation(err, "") {
		env.Logger.ErrorContext(ctx, "Tag already exists", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.TagConflict, "a tag with this name or slug already exists", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to create tag", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	if err := mJson.WriteJSON(w, http.StatusCreated, views.TagView(tag)); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleCreateIngredient godoc
//
//	@Summary	Create an ingredient.
//	@Tags		Admin
//
//	@Accept		json
//	@Produce	json
//	@Param		request	body	CreateIngredientRequest	true	"Ingredient"
//	@Security	TokenAuth
//
//	@Success	201	{object}	views.Ingredient
//	@Failure	400	{object}	apiError.Error	"Validation error"
//	@Failure	401	{object}	apiError.Error
//	@Failure	403	{object}	apiError.Error	"Not an admin"
//	@Failure	409	{object}	apiError.Error	"Ingredient exists with this unit"
//	@Router		/api/admin/ingredients/ [POST]
func HandleCreateIngredient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)

	var req CreateIngredientRequest
	env.Logger.DebugContext(ctx, "Reading request body")
	if err := request.DecodeJSON(w, r, &req); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.ValidationError, "invalid ingredient", requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Creating ingredient", slog.String("name", req.Name))
	ingredient, err := env.Database.CreateIngredient(ctx, database.CreateIngredientParams{
		Name:            strings.TrimSpace(req.Name),
		MeasurementUnit: strings.TrimSpace(req.MeasurementUnit),
	})
	if database.IsUniqueViolation(err, "") {
		env.Logger.ErrorContext(ctx, "Ingredient already exists", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.IngredientConflict,
			"this ingredient already exists with this measurement unit", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to create ingredient", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	if err := mJson.WriteJSON(w, http.StatusCreated, views.IngredientView(ingredient)); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}
