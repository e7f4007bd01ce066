package users

import (
	"errors"
	"log/slog"
	"net/http"

	apiError "github.com/matt-dz/foodgram/internal/api/error"
	"github.com/matt-dz/foodgram/internal/api/pagination"
	"github.com/matt-dz/foodgram/internal/api/request"
	"github.com/matt-dz/foodgram/internal/api/requestid"
	"github.com/matt-dz/foodgram/internal/api/views"
	"github.com/matt-dz/foodgram/internal/database"
	"github.com/matt-dz/foodgram/internal/env"
	mJson "github.com/matt-dz/foodgram/internal/json"
	"github.com/matt-dz/foodgram/internal/relation"
)

const recipesLimitParam = "recipes_limit"

// HandleSubscribe godoc
//
//	@Summary	Subscribe to an author.
//	@Tags		Users
//
//	@Produce	json
//	@Param		id				path		int	true	"Author ID"
//	@Param		recipes_limit	query		int	false	"Recipes to include"
//	@Security	TokenAuth
//
//	@Success	201				{object}	views.Subscription
//	@Failure	400				{object}	apiError.Error	"Already subscribed or self subscription"
//	@Failure	401				{object}	apiError.Error
//	@Failure	404				{object}	apiError.Error	"User not found"
//	@Router		/api/users/{id}/subscribe/ [POST]
func HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	authorID, err := request.PathID(r, "id")
	if err != nil {
		env.Logger.ErrorContext(ctx, "Invalid user id", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.UserNotFound, "user not found", requestID)
		return
	}
	recipesLimit, err := request.OptionalInt(r, recipesLimitParam)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Invalid recipes limit", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.ValidationError, "recipes_limit must be a non-negative integer", requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Subscribing", slog.Int64("author-id", authorID))
	if err := env.Relations().Add(ctx, relation.Subscription, userID, authorID); err != nil {
		encodeSubscriptionError(w, r, err, apiError.AlreadySubscribed, "already subscribed to this user")
		return
	}

	author, err := env.Database.GetUserByID(ctx, authorID)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to get author", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	subscriptions, err := views.Subscriptions(ctx, env, userID, []database.User{author}, recipesLimit)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to render subscription", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	if err := mJson.WriteJSON(w, http.StatusCreated, subscriptions[0]); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleUnsubscribe godoc
//
//	@Summary	Unsubscribe from an author.
//	@Tags		Users
//
//	@Param		id	path	int	true	"Author ID"
//	@Security	TokenAuth
//
//	@Success	204
//	@Failure	400	{object}	apiError.Error	"Not subscribed"
//	@Failure	401	{object}	apiError.Error
//	@Failure	404	{object}	apiError.Error	"User not found"
//	@Router		/api/users/{id}/subscribe/ [DELETE]
func HandleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	authorID, err := request.PathID(r, "id")
	if err != nil {
		env.Logger.ErrorContext(ctx, "Invalid user id", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.UserNotFound, "user not found", requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Unsubscribing", slog.Int64("author-id", authorID))
	if err := env.Relations().Remove(ctx, relation.Subscription, userID, authorID); err != nil {
		encodeSubscriptionError(w, r, err, apiError.NotSubscribed, "not subscribed to this user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleListSubscriptions godoc
//
//	@Summary	List the authors the current user follows.
//	@Tags		Users
//
//	@Produce	json
//	@Param		page			query		int	false	"Page number"
//	@Param		limit			query		int	false	"Page size"
//	@Param		recipes_limit	query		int	false	"Recipes per author"
//	@Security	TokenAuth
//
//	@Success	200				{object}	pagination.Page[views.Subscription]
//	@Failure	401				{object}	apiError.Error
//	@Router		/api/users/subscriptions/ [GET]
func HandleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	params, err := pagination.FromRequest(r, env.Config.PageSize)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Invalid pagination parameters", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.ValidationError, "invalid pagination parameters", requestID)
		return
	}
	recipesLimit, err := request.OptionalInt(r, recipesLimitParam)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Invalid recipes limit", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.ValidationError, "recipes_limit must be a non-negative integer", requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Counting subscriptions")
	count, err := env.Database.CountSubscriptions(ctx, userID)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to count subscriptions", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Listing subscriptions")
	authors, err := env.Database.ListSubscriptions(ctx, database.ListSubscriptionsParams{
		UserID: userID,
		Limit:  int32(params.Limit),
		Offset: int32(params.Offset()),
	})
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to list subscriptions", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	results, err := views.Subscriptions(ctx, env, userID, authors, recipesLimit)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to render subscriptions", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	if err := mJson.WriteJSON(w, http.StatusOK, pagination.New(r, params, count, results)); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

func encodeSubscriptionError(
	w http.ResponseWriter, r *http.Request, err error, conflictCode apiError.ErrorCode, conflictMessage string,
) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)

	switch {
	case errors.Is(err, relation.ErrNotFound):
		env.Logger.ErrorContext(ctx, "Author not found", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.UserNotFound, "user not found", requestID)
	case errors.Is(err, relation.ErrSelfReference):
		env.Logger.ErrorContext(ctx, "Self subscription", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.SelfSubscription, "cannot subscribe to yourself", requestID)
	case errors.Is(err, relation.ErrConflict):
		env.Logger.ErrorContext(ctx, "Subscription conflict", slog.Any("error", err))
		_ = apiError.EncodeError(w, conflictCode, conflictMessage, requestID)
	default:
		env.Logger.ErrorContext(ctx, "Failed to toggle subscription", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
	}
}
