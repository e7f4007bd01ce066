// Package env provides a structure for managing application-wide dependencies.
package env

import (
	"context"
	"log/slog"

	"github.com/matt-dz/foodgram/internal/cache"
	"github.com/matt-dz/foodgram/internal/config"
	"github.com/matt-dz/foodgram/internal/database"
	"github.com/matt-dz/foodgram/internal/filestore"
	"github.com/matt-dz/foodgram/internal/http"
	"github.com/matt-dz/foodgram/internal/log"
	"github.com/matt-dz/foodgram/internal/relation"
	"github.com/matt-dz/foodgram/internal/shoppinglist"
	"github.com/matt-dz/foodgram/internal/shortlink"
)

type envKeyType struct{}

var envKey envKeyType

type Env struct {
	Logger    *slog.Logger
	Database  *database.Database
	FileStore filestore.Store
	Cache     cache.Cache
	HTTP      *http.HTTP
	Config    config.Config
}

// New returns an Env with default configuration and an in-process cache.
// A nil logger discards output.
func New(lg *slog.Logger) *Env {
	if lg == nil {
		lg = log.NullLogger()
	}

	c, _ := cache.NewLRU(config.DefaultCacheSize)
	return &Env{
		Logger: lg,
		Cache:  c,
		Config: config.Default(),
	}
}

func Null() *Env {
	return New(nil)
}

func (e *Env) Relations() *relation.Toggle {
	return relation.New(relation.NewDBStore(e.Database))
}

func (e *Env) ShortLinks() *shortlink.Service {
	return shortlink.New(e.Database, e.Cache, e.Config.HostOrigin, e.Config.Cache.ShortLinkTTL)
}

func (e *Env) ShoppingList() shoppinglist.Source {
	return shoppinglist.DBSource{Querier: e.Database}
}

// WithCtx stores env in ctx.
func WithCtx(ctx context.Context, env *Env) context.Context {
	return context.WithValue(ctx, envKey, env)
}

// EnvFromCtx returns the Env stored in ctx, or a Null env when there is none.
func EnvFromCtx(ctx context.Context) *Env {
	if env, ok := ctx.Value(envKey).(*Env); ok && env != nil {
		return env
	}
	return Null()
}
