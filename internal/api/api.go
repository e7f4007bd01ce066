// Package api sets up and starts the API
// server with routing, middleware, and Swagger documentation.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/matt-dz/foodgram/docs"
	"github.com/matt-dz/foodgram/internal/api/middleware"
	"github.com/matt-dz/foodgram/internal/api/routes/admin"
	"github.com/matt-dz/foodgram/internal/api/routes/auth"
	"github.com/matt-dz/foodgram/internal/api/routes/ingredients"
	"github.com/matt-dz/foodgram/internal/api/routes/links"
	"github.com/matt-dz/foodgram/internal/api/routes/ping"
	"github.com/matt-dz/foodgram/internal/api/routes/recipes"
	"github.com/matt-dz/foodgram/internal/api/routes/tags"
	"github.com/matt-dz/foodgram/internal/api/routes/users"
	"github.com/matt-dz/foodgram/internal/env"
	"github.com/matt-dz/foodgram/internal/fileserver"
	"github.com/matt-dz/foodgram/internal/role"
)

const (
	serverPort      = 8080
	readTimeout     = 15 * time.Second
	writeTimeout    = 30 * time.Second
	shutdownTimeout = 10 * time.Second
	rateWindow      = time.Minute
)

func addDocs(r chi.Router) {
	swagger := httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	)

	r.Mount("/api/swagger", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		// Handle preflight
		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if req.Method == http.MethodGet {
			swagger.ServeHTTP(w, req)
			return
		}

		middleware.MethodNotAllowed(w, req)
	}))
}

func addRoutes(router chi.Router, env *env.Env) {
	router.With(middleware.RateLimitByIP(env.Config.RateLimit.Redirect, rateWindow)).
		Get("/s/{code}", links.HandleRedirect)

	router.Route("/api", func(r chi.Router) {
		r.Get("/ping", ping.HandlePing)

		r.Route("/auth/token", func(r chi.Router) {
			r.With(middleware.RateLimitByIP(env.Config.RateLimit.Login, rateWindow)).
				Post("/login", auth.HandleLogin)
			r.With(middleware.RequireUser).Post("/logout", auth.HandleLogout)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", users.HandleListUsers)
			r.Post("/", users.HandleCreateUser)
			r.Get("/{id}", users.HandleGetUser)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireUser)
				r.Get("/me", users.HandleGetMe)
				r.Put("/me", users.HandleUpdateMe)
				r.Patch("/me", users.HandleUpdateMe)
				r.Delete("/me", users.HandleDeleteMe)
				r.Put("/me/avatar", users.HandleSetAvatar)
				r.Patch("/me/avatar", users.HandleSetAvatar)
				r.Delete("/me/avatar", users.HandleDeleteAvatar)
				r.Post("/set_password", users.HandleSetPassword)
				r.Get("/subscriptions", users.HandleListSubscriptions)
				r.Post("/{id}/subscribe", users.HandleSubscribe)
				r.Delete("/{id}/subscribe", users.HandleUnsubscribe)
			})
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", tags.HandleListTags)
			r.Get("/{id}", tags.HandleGetTag)
		})

		r.Route("/ingredients", func(r chi.Router) {
			r.Get("/", ingredients.HandleListIngredients)
			r.Get("/{id}", ingredients.HandleGetIngredient)
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", recipes.ListRecipes)
			r.Get("/{id}", recipes.GetRecipe)
			r.Get("/{id}/get-link", links.HandleGetLink)
			r.Get("/{id}/get-link/qr", links.HandleGetLinkQR)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireUser)
				r.Post("/", recipes.CreateRecipe)
				r.Patch("/{id}", recipes.UpdateRecipe)
				r.Put("/{id}", recipes.UpdateRecipe)
				r.Delete("/{id}", recipes.DeleteRecipe)
				r.Get("/download_shopping_cart", recipes.DownloadShoppingCart)
				r.Post("/{id}/favorite", recipes.AddFavorite)
				r.Delete("/{id}/favorite", recipes.RemoveFavorite)
				r.Post("/{id}/shopping_cart", recipes.AddToCart)
				r.Delete("/{id}/shopping_cart", recipes.RemoveFromCart)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.AuthorizeRequest(role.RoleAdmin))

			r.Post("/tags", admin.HandleCreateTag)
			r.Post("/ingredients", admin.HandleCreateIngredient)
		})
	})
}

// addMedia serves uploaded media from the local volume. With an object
// store configured the bucket serves it instead.
func addMedia(r chi.Router, env *env.Env) {
	if env.Config.ObjectStore.Enabled() {
		return
	}
	prefix := env.Config.Fileserver.URLPrefix
	r.Handle(prefix+"/*", fileserver.New(env.Config.Fileserver.Volume).Handler(prefix))
}

// NewRouter builds the HTTP handler of the service. Trailing slashes are
// optional on every route.
func NewRouter(env *env.Env) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.AddRequestID)
	router.Use(middleware.Metrics)
	router.Use(middleware.LogRequest(env.Logger))
	router.Use(middleware.InjectEnv(env))
	router.Use(middleware.CORS(env.Config))
	router.Use(chimw.StripSlashes)
	router.Use(middleware.Authenticate)
	router.NotFound(middleware.NotFound)
	router.MethodNotAllowed(middleware.MethodNotAllowed)

	addRoutes(router, env)
	addDocs(router)
	addMedia(router, env)
	router.Handle("/metrics", promhttp.Handler())

	return router
}

// Start godoc
//
//	@title						Foodgram API
//	@version					1.0
//	@description				Recipes, favorites, shopping lists and author subscriptions.
//
//	@securityDefinitions.apikey	TokenAuth
//	@in							header
//	@name						Authorization
//	@description				"Token <jwt>" or "Bearer <jwt>"
//
//	@host						localhost:8080
//	@BasePath					/
func Start(ctx context.Context, env *env.Env) error {
	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", serverPort)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", serverPort),
		Handler:      NewRouter(env),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		env.Logger.Info(fmt.Sprintf("Listening at 0.0.0.0:%d", serverPort))
		env.Logger.Info(fmt.Sprintf("Swagger UI available at http://0.0.0.0:%d/api/swagger/index.html", serverPort))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		env.Logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		return nil
	}
}
