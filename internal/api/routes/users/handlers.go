// Package users contains handlers for the user resource.
package users

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	apiError "github.com/matt-dz/foodgram/internal/api/error"
	"github.com/matt-dz/foodgram/internal/api/pagination"
	"github.com/matt-dz/foodgram/internal/api/request"
	"github.com/matt-dz/foodgram/internal/api/requestid"
	"github.com/matt-dz/foodgram/internal/api/token"
	"github.com/matt-dz/foodgram/internal/api/views"
	"github.com/matt-dz/foodgram/internal/argon2id"
	"github.com/matt-dz/foodgram/internal/database"
	"github.com/matt-dz/foodgram/internal/env"
	"github.com/matt-dz/foodgram/internal/form"
	mJson "github.com/matt-dz/foodgram/internal/json"
	"github.com/matt-dz/foodgram/internal/password"
)

// HandleCreateUser godoc
//
//	@Summary	Register a user.
//	@Tags		Users
//
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CreateUserRequest	true	"Create User Request"
//
//	@Success	201		{object}	CreateUserResponse
//	@Failure	400		{object}	apiError.Error	"Validation error or email/username taken"
//	@Router		/api/users/ [POST]
func HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)

	// Decode JSON
	var req CreateUserRequest
	env.Logger.DebugContext(ctx, "Reading request body")
	if err := request.DecodeJSON(w, r, &req); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.ValidationError, "invalid request body", requestID)
		return
	}

	// Ensure password strength
	env.Logger.DebugContext(ctx, "Validating password")
	if err := password.Validate(req.Password, req.Username, req.Email); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to validate password", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.WeakPassword, err.Error(), requestID) // OK to share the error with client.
		return
	}

	// Hash password
	env.Logger.DebugContext(ctx, "Hashing password")
	hash, err := argon2id.EncodeHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to hash password", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	// Create user
	env.Logger.DebugContext(ctx, "Creating user")
	user, err := env.Database.CreateUser(ctx, database.CreateUserParams{
		Email:        req.Email,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
		Role:         database.RoleUser,
	})
	if err != nil {
		encodeProfileError(w, r, err)
		return
	}

	// Write response
	env.Logger.DebugContext(ctx, "Writing response")
	if err := mJson.WriteJSON(w, http.StatusCreated, CreateUserResponse{
		Email:     user.Email,
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleListUsers godoc
//
//	@Summary	List users.
//	@Tags		Users
//
//	@Produce	json
//	@Param		page	query		int	false	"Page number"
//	@Param		limit	query		int	false	"Page size"
//
//	@Success	200		{object}	pagination.Page[views.User]
//	@Failure	400		{object}	apiError.Error
//	@Router		/api/users/ [GET]
func HandleListUsers(w http.ResponseWriter, r *http.Request) {
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

	env.Logger.DebugContext(ctx, "Counting users")
	count, err := env.Database.CountUsers(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to count users", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Listing users")
	users, err := env.Database.ListUsers(ctx, database.ListUsersParams{
		Limit:  int32(params.Limit),
		Offset: int32(params.Offset()),
	})
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to list users", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	results, err := views.Users(ctx, env, viewerID, users)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to render users", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	if err := mJson.WriteJSON(w, http.StatusOK, pagination.New(r, params, count, results)); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleGetUser godoc
//
//	@Summary	Get a user profile.
//	@Tags		Users
//
//	@Produce	json
//	@Param		id	path		int	true	"User ID"
//
//	@Success	200	{object}	views.User
//	@Failure	404	{object}	apiError.Error	"User not found"
//	@Router		/api/users/{id}/ [GET]
func HandleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)
	viewerID, _ := token.UserIDFromCtx(ctx)

	userID, err := request.PathID(r, "id")
	if err != nil {
		env.Logger.ErrorContext(ctx, "Invalid user id", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.UserNotFound, "user not found", requestID)
		return
	}

	writeUser(w, r, viewerID, userID)
}

// HandleGetMe godoc
//
//	@Summary	Get the current user.
//	@Tags		Users
//
//	@Produce	json
//	@Security	TokenAuth
//
//	@Success	200	{object}	views.User
//	@Failure	401	{object}	apiError.Error
//	@Router		/api/users/me/ [GET]
func HandleGetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	writeUser(w, r, userID, userID)
}

func writeUser(w http.ResponseWriter, r *http.Request, viewerID, userID int64) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)

	env.Logger.DebugContext(ctx, "Getting user", slog.Int64("target-id", userID))
	user, err := env.Database.GetUserByID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		env.Logger.ErrorContext(ctx, "User not found", slog.Int64("target-id", userID))
		_ = apiError.EncodeError(w, apiError.UserNotFound, "user not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to get user", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	view, err := views.SingleUser(ctx, env, viewerID, user)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to render user", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	if err := mJson.WriteJSON(w, http.StatusOK, view); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleUpdateMe godoc
//
//	@Summary		Update the current user.
//	@Description	PUT replaces every profile field; PATCH updates the fields sent.
//	@Tags			Users
//
//	@Accept			json
//	@Produce		json
//	@Param			request	body	UpdateUserRequest	true	"Profile fields"
//	@Security		TokenAuth
//
//	@Success		200		{object}	views.User
//	@Failure		400		{object}	apiError.Error
//	@Failure		401		{object}	apiError.Error
//	@Router			/api/users/me/ [PUT]
//	@Router			/api/users/me/ [PATCH]
func HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	env.Logger.DebugContext(ctx, "Reading request body")
	if err := request.DecodeJSON(w, r, &req); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.ValidationError, "invalid request body", requestID)
		return
	}
	if r.Method == http.MethodPut && !req.complete() {
		env.Logger.ErrorContext(ctx, "Incomplete profile for PUT")
		_ = apiError.EncodeError(w, apiError.ValidationError,
			"email, username, first_name and last_name are required", requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Getting current profile")
	user, err := env.Database.GetUserByID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		_ = apiError.EncodeError(w, apiError.UserNotFound, "user not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to get user", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	params := database.UpdateUserProfileParams{
		ID:        userID,
		Email:     valueOr(req.Email, user.Email),
		Username:  valueOr(req.Username, user.Username),
		FirstName: valueOr(req.FirstName, user.FirstName),
		LastName:  valueOr(req.LastName, user.LastName),
	}

	env.Logger.DebugContext(ctx, "Updating profile")
	user, err = env.Database.UpdateUserProfile(ctx, params)
	if err != nil {
		encodeProfileError(w, r, err)
		return
	}

	view, err := views.SingleUser(ctx, env, userID, user)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to render user", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	if err := mJson.WriteJSON(w, http.StatusOK, view); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleDeleteMe godoc
//
//	@Summary		Delete the current user.
//	@Description	Removes the account with its recipes and relations and revokes the token.
//	@Tags			Users
//	@Security		TokenAuth
//
//	@Success		204
//	@Failure		401	{object}	apiError.Error
//	@Router			/api/users/me/ [DELETE]
func HandleDeleteMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, err := env.Database.GetUserByID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		_ = apiError.EncodeError(w, apiError.UserNotFound, "user not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to get user", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Deleting user")
	if err := env.Database.DeleteUser(ctx, userID); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to delete user", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	if user.AvatarKey.Valid {
		deleteMedia(r, user.AvatarKey.String)
	}
	if claims, ok := token.ClaimsFromCtx(ctx); ok {
		if err := token.Revoke(ctx, env, claims); err != nil {
			env.Logger.ErrorContext(ctx, "Failed to revoke token", slog.Any("error", err))
		}
	}

	http.SetCookie(w, token.ExpiredAccessTokenCookie(env))
	w.WriteHeader(http.StatusNoContent)
}

// HandleSetAvatar godoc
//
//	@Summary	Set the current user's avatar.
//	@Tags		Users
//
//	@Accept		json
//	@Produce	json
//	@Param		request	body	AvatarRequest	true	"Base64 data URI"
//	@Security	TokenAuth
//
//	@Success	200		{object}	AvatarResponse
//	@Failure	400		{object}	apiError.Error
//	@Failure	401		{object}	apiError.Error
//	@Router		/api/users/me/avatar/ [PUT]
//	@Router		/api/users/me/avatar/ [PATCH]
func HandleSetAvatar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req AvatarRequest
	env.Logger.DebugContext(ctx, "Reading request body")
	if err := request.DecodeJSON(w, r, &req); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.ValidationError, "avatar is required", requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Decoding avatar")
	image, err := form.DecodeDataURI(req.Avatar)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to decode avatar", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.InvalidImage, "avatar must be a base64 encoded image", requestID)
		return
	}

	user, err := env.Database.GetUserByID(ctx, userID)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to get user", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Writing avatar", slog.Int64("size", image.Size))
	key, _, err := env.FileStore.WriteAvatar(ctx, image.Suffix, image.MimeType, image.Data)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write avatar", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	if err := env.Database.UpdateUserAvatar(ctx, database.UpdateUserAvatarParams{
		ID:        userID,
		AvatarKey: pgtype.Text{String: key, Valid: true},
	}); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to update avatar", slog.Any("error", err))
		deleteMedia(r, key)
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	if user.AvatarKey.Valid {
		deleteMedia(r, user.AvatarKey.String)
	}

	if err := mJson.WriteJSON(w, http.StatusOK, AvatarResponse{Avatar: env.FileStore.FileURL(key)}); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleDeleteAvatar godoc
//
//	@Summary	Remove the current user's avatar.
//	@Tags		Users
//	@Security	TokenAuth
//
//	@Success	204
//	@Failure	401	{object}	apiError.Error
//	@Router		/api/users/me/avatar/ [DELETE]
func HandleDeleteAvatar(w http.ResponseWriter, r *http.Request) {
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

	env.Logger.DebugContext(ctx, "Clearing avatar")
	if err := env.Database.UpdateUserAvatar(ctx, database.UpdateUserAvatarParams{ID: userID}); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to clear avatar", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	if user.AvatarKey.Valid {
		deleteMedia(r, user.AvatarKey.String)
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleSetPassword godoc
//
//	@Summary	Change the current user's password.
//	@Tags		Users
//
//	@Accept		json
//	@Param		request	body	SetPasswordRequest	true	"Passwords"
//	@Security	TokenAuth
//
//	@Success	204
//	@Failure	400	{object}	apiError.Error
//	@Failure	401	{object}	apiError.Error
//	@Router		/api/users/set_password/ [POST]
func HandleSetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req SetPasswordRequest
	env.Logger.DebugContext(ctx, "Reading request body")
	if err := request.DecodeJSON(w, r, &req); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.ValidationError, "invalid request body", requestID)
		return
	}

	user, err := env.Database.GetUserByID(ctx, userID)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to get user", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Verifying current password")
	match, err := argon2id.Verify(req.CurrentPassword, user.PasswordHash)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to verify password", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	if !match {
		env.Logger.ErrorContext(ctx, "Current password is incorrect")
		_ = apiError.EncodeError(w, apiError.InvalidPassword, "current password is incorrect", requestID)
		return
	}

	if err := password.Validate(req.NewPassword, user.Username, user.Email); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to validate password", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.WeakPassword, err.Error(), requestID)
		return
	}

	hash, err := argon2id.EncodeHash(req.NewPassword, argon2id.DefaultParams)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to hash password", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Updating password")
	if err := env.Database.UpdateUserPassword(ctx, database.UpdateUserPasswordParams{
		ID:           userID,
		PasswordHash: hash,
	}); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to update password", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := token.UserIDFromCtx(r.Context())
	if !ok {
		_ = apiError.EncodeError(w, apiError.AuthenticationRequired,
			"authentication credentials were not provided", requestid.ExtractRequestID(r.Context()))
	}
	return userID, ok
}

func encodeProfileError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)

	switch {
	case database.IsUniqueViolation(err, database.ConstraintUserEmail):
		env.Logger.ErrorContext(ctx, "User with email already exists", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.EmailConflict, "email already in use", requestID)
	case database.IsUniqueViolation(err, database.ConstraintUserUsername):
		env.Logger.ErrorContext(ctx, "User with username already exists", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.UsernameConflict, "username already in use", requestID)
	default:
		env.Logger.ErrorContext(ctx, "Failed to save user", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
	}
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

func valueOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}
