// Package setup is responsible for setting up components.
package setup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/matt-dz/foodgram/internal/argon2id"
	"github.com/matt-dz/foodgram/internal/cache"
	"github.com/matt-dz/foodgram/internal/config"
	"github.com/matt-dz/foodgram/internal/database"
	"github.com/matt-dz/foodgram/internal/env"
	"github.com/matt-dz/foodgram/internal/fileserver"
	"github.com/matt-dz/foodgram/internal/filestore"
	mHttp "github.com/matt-dz/foodgram/internal/http"
	"github.com/matt-dz/foodgram/internal/objectstore"
)

const (
	redisKeyPrefix       = "foodgram:"
	defaultAdminUsername = "admin"
)

// DatabaseURL builds the connection string for conf.
func DatabaseURL(conf config.Database) string {
	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(conf.User, conf.Password),
		Host:   net.JoinHostPort(conf.Host, strconv.Itoa(int(conf.Port))),
		Path:   "/" + conf.Database,
	}
	return u.String()
}

// Database connects to Postgres and applies the schema on first start.
func Database(ctx context.Context, conf config.Config) (*database.Database, error) {
	pool, err := pgxpool.New(ctx, DatabaseURL(conf.Database))
	if err != nil {
		return nil, fmt.Errorf("creating database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db := database.NewDatabase(pool)
	if err := db.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initializing database: %w", err)
	}

	return db, nil
}

// FileStore stores media in the configured S3 bucket, or on the local
// volume served under the fileserver URL prefix.
func FileStore(ctx context.Context, conf config.Config, httpClient *mHttp.HTTP) (filestore.Store, error) {
	if conf.ObjectStore.Enabled() {
		store, err := objectstore.New(ctx, conf.ObjectStore, httpClient)
		if err != nil {
			return nil, fmt.Errorf("connecting object store: %w", err)
		}
		return filestore.New(store, "", objectstore.PublicURL(conf.ObjectStore)), nil
	}

	volume, err := filepath.Abs(conf.Fileserver.Volume)
	if err != nil {
		return nil, fmt.Errorf("resolving fileserver volume: %w", err)
	}
	return filestore.New(fileserver.New(volume), conf.Fileserver.URLPrefix, conf.HostOrigin), nil
}

// Cache connects to Redis when configured. Otherwise an in-process LRU
// is used, which is not shared between replicas.
func Cache(ctx context.Context, conf config.Config) (cache.Cache, error) {
	if !conf.Redis.Enabled() {
		lru, err := cache.NewLRU(conf.Cache.Size)
		if err != nil {
			return nil, err
		}
		return lru, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	c := cache.NewRedis(client, redisKeyPrefix)
	if err := c.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return c, nil
}

// Admin creates the configured admin account unless an admin already
// exists. Requires env.Database.
func Admin(ctx context.Context, env *env.Env) error {
	conf := env.Config.Admin

	count, err := env.Database.GetAdminCount(ctx)
	if err != nil {
		return fmt.Errorf("getting admin count: %w", err)
	}
	if count > 0 {
		env.Logger.InfoContext(ctx, "admin already setup, skipping setup")
		return nil
	}

	if conf.Email == "" || conf.Password == "" {
		env.Logger.InfoContext(ctx, "admin email and password not configured, skipping admin setup")
		return nil
	}

	hashedPassword, err := argon2id.EncodeHash(string(conf.Password), argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	username := conf.Username
	if username == "" {
		username = defaultAdminUsername
	}

	_, err = env.Database.CreateUser(ctx, database.CreateUserParams{
		Email:        conf.Email,
		Username:     username,
		FirstName:    conf.FirstName,
		LastName:     conf.LastName,
		PasswordHash: hashedPassword,
		Role:         database.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("creating admin: %w", err)
	}
	env.Logger.InfoContext(ctx, "successfully setup admin!")

	return nil
}

type seedIngredient struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// ReadIngredients parses a JSON array of {name, measurement_unit}
// objects. Entries with an empty name or unit are skipped.
func ReadIngredients(path string) (database.UpsertIngredientsParams, error) {
	var params database.UpsertIngredientsParams

	contents, err := os.ReadFile(path)
	if err != nil {
		return params, fmt.Errorf("reading ingredients: %w", err)
	}

	var seed []seedIngredient
	if err := json.Unmarshal(contents, &seed); err != nil {
		return params, fmt.Errorf("parsing ingredients: %w", err)
	}

	for _, ing := range seed {
		name, unit := strings.TrimSpace(ing.Name), strings.TrimSpace(ing.MeasurementUnit)
		if name == "" || unit == "" {
			continue
		}
		params.Names = append(params.Names, name)
		params.MeasurementUnits = append(params.MeasurementUnits, unit)
	}
	return params, nil
}

// Ingredients loads the ingredient catalogue from the configured seed
// file. Existing (name, unit) pairs are left untouched, so it is safe to
// run on every start.
func Ingredients(ctx context.Context, env *env.Env) error {
	path := env.Config.IngredientsFile
	if path == "" {
		env.Logger.DebugContext(ctx, "no ingredients file configured, skipping seed")
		return nil
	}

	params, err := ReadIngredients(path)
	if err != nil {
		return err
	}
	if len(params.Names) == 0 {
		return nil
	}

	inserted, err := env.Database.UpsertIngredients(ctx, params)
	if err != nil {
		return fmt.Errorf("seeding ingredients: %w", err)
	}
	env.Logger.InfoContext(ctx, "seeded ingredients",
		slog.Int64("inserted", inserted), slog.Int("total", len(params.Names)))
	return nil
}
