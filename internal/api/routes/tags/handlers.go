package tags

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5"

	apiError "github.com/matt-dz/foodgram/internal/api/error"
	"github.com/matt-dz/foodgram/internal/api/request"
	"github.com/matt-dz/foodgram/internal/api/requestid"
	"github.com/matt-dz/foodgram/internal/api/views"
	"github.com/matt-dz/foodgram/internal/env"
	mJson "github.com/matt-dz/foodgram/internal/json"
)

// HandleListTags godoc
//
//	@Summary	List tags.
//	@Tags		Tags
//
//	@Produce	json
//
//	@Success	200	{array}	views.Tag
//	@Router		/api/tags/ [GET]
func HandleListTags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)

	env.Logger.DebugContext(ctx, "Listing tags")
	tags, err := env.Database.ListTags(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to list tags", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	res := make([]views.Tag, len(tags))
	for i, t := range tags {
		res[i] = views.TagView(t)
	}
	if err := mJson.WriteJSON(w, http.StatusOK, res); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleGetTag godoc
//
//	@Summary	Get a tag.
//	@Tags		Tags
//
//	@Produce	json
//	@Param		id	path		int	true	"Tag ID"
//
//	@Success	200	{object}	views.Tag
//	@Failure	404	{object}	apiError.Error	"Tag not found"
//	@Router		/api/tags/{id}/ [GET]
func HandleGetTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)

	id, err := request.PathID(r, "id")
	if err != nil {
		env.Logger.ErrorContext(ctx, "Invalid tag id", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.TagNotFound, "tag not found", requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Getting tag", slog.Int64("tag-id", id))
	tag, err := env.Database.GetTag(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		env.Logger.ErrorContext(ctx, "Tag not found", slog.Int64("tag-id", id))
		_ = apiError.EncodeError(w, apiError.TagNotFound, "tag not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to get tag", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	if err := mJson.WriteJSON(w, http.StatusOK, views.TagView(tag)); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}
