// Package auth contains handlers for the auth endpoints
package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"

	apiError "github.com/matt-dz/foodgram/internal/api/error"
	"github.com/matt-dz/foodgram/internal/api/request"
	"github.com/matt-dz/foodgram/internal/api/requestid"
	"github.com/matt-dz/foodgram/internal/api/token"
	"github.com/matt-dz/foodgram/internal/argon2id"
	"github.com/matt-dz/foodgram/internal/env"
	mJson "github.com/matt-dz/foodgram/internal/json"
	"github.com/matt-dz/foodgram/internal/jwt"
	"github.com/matt-dz/foodgram/internal/role"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AuthToken string `json:"auth_token"`
}

// HandleLogin godoc
//
//	@Summary		Obtain an access token.
//	@Description	The token is returned in the body and set as an HTTP-only cookie.
//	@Tags			Auth
//
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Credentials"
//
//	@Success		200		{object}	LoginResponse
//	@Failure		400		{object}	apiError.Error	"Invalid credentials"
//	@Failure		429		{object}	apiError.Error	"Too many attempts"
//	@Router			/api/auth/token/login/ [POST]
func HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)

	// Decode JSON
	var req LoginRequest
	env.Logger.DebugContext(ctx, "Reading request body")
	if err := request.DecodeJSON(w, r, &req); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.ValidationError, "email and password are required", requestID)
		return
	}

	// Retrieve user information
	env.Logger.DebugContext(ctx, "Retrieving user information")
	user, err := env.Database.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if errors.Is(err, pgx.ErrNoRows) {
		env.Logger.ErrorContext(ctx, "User with email does not exist", slog.String("email", req.Email))
		_ = apiError.EncodeError(w, apiError.InvalidCredentials, "unable to log in with provided credentials", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to retrieve user information", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	// Comparing passwords
	env.Logger.DebugContext(ctx, "Comparing passwords")
	match, err := argon2id.Verify(req.Password, user.PasswordHash)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to verify password", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	if !match {
		env.Logger.ErrorContext(ctx, "Given password is incorrect")
		_ = apiError.EncodeError(w, apiError.InvalidCredentials, "unable to log in with provided credentials", requestID)
		return
	}

	// Create access token
	env.Logger.DebugContext(ctx, "Generating access token")
	accessToken, err := token.NewAccessToken(jwt.JWTParams{
		Role:   role.DBToRole(user.Role),
		UserID: user.ID,
	}, env)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Failed to create access token", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	// Write response
	env.Logger.DebugContext(ctx, "Writing response")
	http.SetCookie(w, token.NewAccessTokenCookie(accessToken, env))
	if err := mJson.WriteJSON(w, http.StatusOK, LoginResponse{AuthToken: accessToken}); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to write response", slog.Any("error", err))
	}
}

// HandleLogout godoc
//
//	@Summary		Revoke the current access token.
//	@Tags			Auth
//	@Security		TokenAuth
//
//	@Success		204
//	@Failure		401	{object}	apiError.Error
//	@Router			/api/auth/token/logout/ [POST]
func HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := requestid.ExtractRequestID(ctx)

	claims, ok := token.ClaimsFromCtx(ctx)
	if !ok {
		_ = apiError.EncodeError(w, apiError.AuthenticationRequired,
			"authentication credentials were not provided", requestID)
		return
	}

	env.Logger.DebugContext(ctx, "Revoking access token")
	if err := token.Revoke(ctx, env, claims); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to revoke access token", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	http.SetCookie(w, token.ExpiredAccessTokenCookie(env))
	w.WriteHeader(http.StatusNoContent)
}
