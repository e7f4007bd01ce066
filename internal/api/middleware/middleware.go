// Package middleware contains middleware functions for the API
package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/httprate"
	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"

	apiError "github.com/matt-dz/foodgram/internal/api/error"
	"github.com/matt-dz/foodgram/internal/api/requestid"
	"github.com/matt-dz/foodgram/internal/api/token"
	"github.com/matt-dz/foodgram/internal/config"
	"github.com/matt-dz/foodgram/internal/env"
	"github.com/matt-dz/foodgram/internal/log"
	"github.com/matt-dz/foodgram/internal/metrics"
	"github.com/matt-dz/foodgram/internal/role"
)

const corsMaxAge = 86400

// InjectEnv injects an environment struct into the request context.
func InjectEnv(environment *env.Env) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(env.WithCtx(r.Context(), environment)))
		})
	}
}

func LogRequest(logger *slog.Logger) func(http.Handler) http.Handler {
	return httplog.RequestLogger(logger, &httplog.Options{
		Level:         slog.LevelInfo,
		RecoverPanics: true,
		LogExtraAttrs: func(r *http.Request, reqBody string, respStatus int) []slog.Attr {
			if id := requestid.ExtractRequestID(r.Context()); id != "" {
				return []slog.Attr{slog.String("log_id", id)}
			}
			return []slog.Attr{slog.String("log_id", "N/A")}
		},
	})
}

// AddRequestID adds a request ID to the request context and response headers.
func AddRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := ulid.Make().String()
		ctx := log.AppendCtx(r.Context(), slog.String("log_id", requestID))
		ctx = requestid.InjectRequestID(ctx, requestID)
		w.Header().Set(requestid.Header, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CORS allows the configured origins. Without configuration, production
// only allows the host origin and development allows any origin.
func CORS(conf config.Config) func(http.Handler) http.Handler {
	origins := conf.CORS.AllowedOrigins
	if len(origins) == 0 {
		if conf.IsProd() {
			origins = []string{conf.HostOrigin}
		} else {
			origins = []string{"http://*", "https://*"}
		}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", requestid.Header},
		AllowCredentials: true,
		MaxAge:           corsMaxAge,
	})
}

// Metrics records request counts and latencies per route pattern.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RecordAPIRequest(r.Method, route, strconv.Itoa(status), time.Since(start))
	})
}

// RateLimitByIP allows limit requests per window for each client IP. A
// non-positive limit disables the limiter.
func RateLimitByIP(limit int, window time.Duration) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			_ = apiError.EncodeError(w, apiError.TooManyRequests, "too many requests",
				requestid.ExtractRequestID(r.Context()))
		}),
	)
}

// Authenticate resolves the caller from the access token when one is sent.
// Requests without a token continue anonymously; requests with a bad token
// are rejected.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		env := env.EnvFromCtx(ctx)
		requestID := requestid.ExtractRequestID(ctx)

		rawToken, err := token.FromRequest(r, env)
		if errors.Is(err, token.ErrMissingToken) {
			next.ServeHTTP(w, r)
			return
		} else if err != nil {
			env.Logger.ErrorContext(ctx, "unable to read access token", slog.Any("error", err))
			_ = apiError.EncodeError(w, apiError.InvalidAccessToken, "invalid access token", requestID)
			return
		}

		claims, err := token.ValidateAccessToken(rawToken, env)
		if errors.Is(err, jwt.ErrTokenExpired) {
			env.Logger.ErrorContext(ctx, "access token expired", slog.Any("error", err))
			_ = apiError.EncodeError(w, apiError.ExpiredAccessToken, "access token expired", requestID)
			return
		} else if errors.Is(err, token.ErrMissingAppSecret) {
			env.Logger.ErrorContext(ctx, "app secret not configured")
			_ = apiError.EncodeInternalError(w, requestID)
			return
		} else if err != nil {
			env.Logger.ErrorContext(ctx, "invalid access token", slog.Any("error", err))
			_ = apiError.EncodeError(w, apiError.InvalidAccessToken, "invalid access token", requestID)
			return
		}

		revoked, err := token.IsRevoked(ctx, env, claims)
		if err != nil {
			env.Logger.ErrorContext(ctx, "failed to check token revocation", slog.Any("error", err))
			_ = apiError.EncodeInternalError(w, requestID)
			return
		}
		if revoked {
			env.Logger.DebugContext(ctx, "access token revoked")
			_ = apiError.EncodeError(w, apiError.RevokedAccessToken, "access token revoked", requestID)
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			env.Logger.ErrorContext(ctx, "failed to parse user id", slog.Any("error", err))
			_ = apiError.EncodeError(w, apiError.InvalidAccessToken, "invalid access token", requestID)
			return
		}

		ctx = log.AppendCtx(ctx, slog.Int64("user-id", userID))
		ctx = token.UserIDWithCtx(ctx, userID)
		ctx = token.ClaimsWithCtx(ctx, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser rejects anonymous requests.
func RequireUser(next http.Handler) http.Handler {
	return AuthorizeRequest(role.RoleUser)(next)
}

// AuthorizeRequest rejects requests whose caller lacks requiredRole.
// Authenticate must run first.
func AuthorizeRequest(requiredRole role.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			env := env.EnvFromCtx(ctx)
			requestID := requestid.ExtractRequestID(ctx)

			claims, ok := token.ClaimsFromCtx(ctx)
			if !ok {
				_ = apiError.EncodeError(w, apiError.AuthenticationRequired,
					"authentication credentials were not provided", requestID)
				return
			}

			if userRole := claims.UserRole(); userRole < requiredRole {
				env.Logger.ErrorContext(ctx, "user does not have required role",
					slog.String("user-role", userRole.String()),
					slog.String("required-role", requiredRole.String()))
				_ = apiError.EncodeError(w, apiError.InsufficientPermissions, "insufficient permissions", requestID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	_ = apiError.EncodeError(w, apiError.NotFound, "not found", requestid.ExtractRequestID(r.Context()))
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	_ = apiError.EncodeError(w, apiError.MethodNotAllowed, "method not allowed",
		requestid.ExtractRequestID(r.Context()))
}
