// Package config contains utilities for loading configs
package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/matt-dz/foodgram/internal/password"
)

const (
	configFilePath     = "/data/foodgram.yaml"
	appSecretBytes     = 32
	appSecretFilePerms = 0o600
)

const (
	EnvProd = "PROD"
	EnvDev  = "DEV"
)

const (
	DefaultPageSize     = 6
	MaxPageSize         = 100
	DefaultCacheSize    = 4096
	DefaultShortLinkTTL = 24 * time.Hour
	DefaultLoginLimit   = 10
	DefaultRedirectRate = 120
)

type AdminPassword string

func (a AdminPassword) Validate() error {
	return password.Validate(string(a))
}

type AppSecretValue string

func (a *AppSecretValue) Validate() error {
	if a == nil {
		return errors.New("secret should not be nil")
	}
	if len([]byte(*a)) < appSecretBytes {
		return errors.New("secret should be at least 32 bytes")
	}
	return nil
}

func splitFieldList(param string) []string {
	// "A,B,C" or "A B C"
	param = strings.ReplaceAll(param, " ", ",")
	parts := strings.Split(param, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// allOrNothing is a cross-field validator attached to a placeholder field.
// It passes when the listed sibling fields are either all zero or all
// non-zero. Nil pointers and interfaces count as zero. A missing field
// name or a non-struct parent fails validation.
func allOrNothing(fl validator.FieldLevel) bool {
	parent := fl.Parent()
	if parent.Kind() == reflect.Pointer {
		if parent.IsNil() {
			return true
		}
		parent = parent.Elem()
	}
	if parent.Kind() != reflect.Struct {
		return false
	}

	names := splitFieldList(fl.Param())
	if len(names) == 0 {
		return false
	}

	hasZero := false
	hasNonZero := false

	for _, name := range names {
		f := parent.FieldByName(name)
		if !f.IsValid() {
			return false
		}

		for (f.Kind() == reflect.Pointer || f.Kind() == reflect.Interface) && !f.IsNil() {
			f = f.Elem()
		}

		if f.IsZero() {
			hasZero = true
		} else {
			hasNonZero = true
		}

		if hasZero && hasNonZero {
			return false
		}
	}

	return true
}

func registerAllOrNothing(v *validator.Validate) {
	_ = v.RegisterValidation("allOrNothing", allOrNothing)
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	for _, e := range validationErrs {
		if e.Tag() == "allOrNothing" {
			// "Config.ObjectStore.Validate" -> "ObjectStore"
			parts := strings.Split(e.Namespace(), ".")
			var structName string
			//nolint:mnd
			if len(parts) >= 2 {
				structName = parts[len(parts)-2]
			}

			var fields string
			switch structName {
			case "ObjectStore":
				fields = "Endpoint, AccessKey, SecretKey, and Bucket"
			case "Database":
				fields = "Port, Host, Database, User, and Password"
			case "Admin":
				fields = "FirstName, LastName, Email, and Password"
			default:
				fields = "all related fields"
			}

			return fmt.Errorf(
				"%s configuration is incomplete: either all fields must be set (%s) or all must be empty",
				structName, fields)
		}
	}

	return err
}

type AppSecret struct {
	Value   *AppSecretValue `yaml:"value" validate:"omitempty,validateFn"`
	Path    string          `yaml:"path" validate:"omitempty,filepath"`
	Version string          `yaml:"version"`
}

type Database struct {
	Port     uint16 `yaml:"port"`
	Host     string `yaml:"host" validate:"omitempty,hostname_rfc1123"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`

	Validate struct{} `yaml:"-" validate:"allOrNothing=Port Host Database User Password"`
}

type Fileserver struct {
	Volume    string `yaml:"volume"`
	URLPrefix string `yaml:"url_prefix"`
}

// ObjectStore selects the S3 media backend when configured. Otherwise
// media is written to the local fileserver volume.
type ObjectStore struct {
	Endpoint  string `yaml:"endpoint" validate:"omitempty,hostname_port"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
	PublicURL string `yaml:"public_url" validate:"omitempty,url"`

	Validate struct{} `yaml:"-" validate:"allOrNothing=Endpoint AccessKey SecretKey Bucket"`
}

func (o ObjectStore) Enabled() bool {
	return o.Endpoint != ""
}

type Redis struct {
	Addr     string `yaml:"addr" validate:"omitempty,hostname_port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
}

func (r Redis) Enabled() bool {
	return r.Addr != ""
}

type Cache struct {
	Size         int           `yaml:"size" validate:"gte=1"`
	ShortLinkTTL time.Duration `yaml:"short_link_ttl" validate:"gte=0"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" validate:"dive,url|eq=*"`
}

// RateLimit holds per-IP request budgets per minute.
type RateLimit struct {
	Login    int `yaml:"login" validate:"gte=0"`
	Redirect int `yaml:"redirect" validate:"gte=0"`
}

type Admin struct {
	FirstName string        `yaml:"first_name" validate:"required_with_all=Email Password"`
	LastName  string        `yaml:"last_name" validate:"required_with_all=Email Password"`
	Username  string        `yaml:"username"`
	Email     string        `yaml:"email" validate:"omitempty,email"`
	Password  AdminPassword `yaml:"password" validate:"omitempty,validateFn"`

	Validate struct{} `yaml:"-" validate:"allOrNothing=FirstName LastName Email Password"`
}

type Config struct {
	AppSecret       AppSecret   `yaml:"app_secret"`
	Admin           Admin       `yaml:"admin"`
	Fileserver      Fileserver  `yaml:"fileserver"`
	ObjectStore     ObjectStore `yaml:"object_store"`
	Database        Database    `yaml:"database"`
	Redis           Redis       `yaml:"redis"`
	Cache           Cache       `yaml:"cache"`
	CORS            CORS        `yaml:"cors"`
	RateLimit       RateLimit   `yaml:"rate_limit"`
	HostOrigin      string      `yaml:"host_origin" validate:"url"`
	Env             string      `yaml:"env" validate:"omitempty,oneof=DEV PROD"`
	IngredientsFile string      `yaml:"ingredients_file" validate:"omitempty,filepath"`
	PageSize        int         `yaml:"page_size" validate:"gte=1,lte=100"`
}

func newAppSecret() (string, error) {
	token := make([]byte, appSecretBytes)
	if _, err := rand.Reader.Read(token); err != nil {
		return "", fmt.Errorf("creating app secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(token), nil
}

func loadAppSecret(config *Config) error {
	if config.AppSecret.Value != nil {
		return nil
	}

	var secret string
	if f1, err := os.Lstat(config.AppSecret.Path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("checking secret path: %w", err)
		}

		file, err := os.OpenFile(config.AppSecret.Path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, appSecretFilePerms)
		if err != nil {
			return fmt.Errorf("creating secret file: %w", err)
		}
		defer func() { _ = file.Close() }()

		secret, err = newAppSecret()
		if err != nil {
			return fmt.Errorf("generating new app secret: %w", err)
		}

		if _, err := file.WriteString(secret); err != nil {
			return fmt.Errorf("writing secret file: %w", err)
		}
	} else {
		if f1.IsDir() {
			return fmt.Errorf("expected file, got directory at %q", config.AppSecret.Path)
		}
		data, err := os.ReadFile(config.AppSecret.Path)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}
		secret = string(data)
	}
	val := AppSecretValue(secret)
	config.AppSecret.Value = &val
	return nil
}

func loadWithDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func loadInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s (%q): %w", key, v, err)
	}
	return n, nil
}

func loadConfigFromEnv() (Config, error) {
	environment := loadWithDefault("ENV", EnvDev)
	hostOrigin := loadWithDefault("HOST_ORIGIN", "http://localhost:8080")

	// AppSecret
	appSecretValue := AppSecretValue(loadWithDefault("APP_SECRET", ""))
	appSecretPath := loadWithDefault("APP_SECRET_PATH", "/data/secret")
	appSecretVersion := loadWithDefault("APP_SECRET_VERSION", "1")

	// Database
	databasePort := loadWithDefault("DATABASE_PORT", "5432")
	databaseHost := loadWithDefault("DATABASE_HOST", "localhost")
	databaseDatabase := loadWithDefault("DATABASE", "")
	databaseUser := loadWithDefault("DATABASE_USER", "")
	databasePassword := loadWithDefault("DATABASE_PASSWORD", "")

	conf := Config{
		HostOrigin:      hostOrigin,
		Env:             environment,
		IngredientsFile: loadWithDefault("INGREDIENTS_FILE", ""),
	}

	conf.AppSecret = AppSecret{
		Path:    appSecretPath,
		Version: appSecretVersion,
	}
	if appSecretValue != "" {
		conf.AppSecret.Value = &appSecretValue
	}

	conf.Database = Database{
		Host:     databaseHost,
		Database: databaseDatabase,
		User:     databaseUser,
		Password: databasePassword,
	}
	if port, err := strconv.ParseUint(databasePort, 10, 16); err != nil {
		return conf, fmt.Errorf("invalid DATABASE_PORT (%q): %w", databasePort, err)
	} else {
		conf.Database.Port = uint16(port)
	}

	conf.Fileserver = Fileserver{
		Volume:    loadWithDefault("FILESERVER_VOLUME", "/data/files"),
		URLPrefix: loadWithDefault("FILESERVER_URL_PREFIX", "/media"),
	}

	conf.ObjectStore = ObjectStore{
		Endpoint:  loadWithDefault("S3_ENDPOINT", ""),
		AccessKey: loadWithDefault("S3_ACCESS_KEY", ""),
		SecretKey: loadWithDefault("S3_SECRET_KEY", ""),
		Bucket:    loadWithDefault("S3_BUCKET", ""),
		Region:    loadWithDefault("S3_REGION", ""),
		PublicURL: loadWithDefault("S3_PUBLIC_URL", ""),
	}
	useSSL := loadWithDefault("S3_USE_SSL", "false")
	if b, err := strconv.ParseBool(useSSL); err != nil {
		return conf, fmt.Errorf("invalid S3_USE_SSL (%q): %w", useSSL, err)
	} else {
		conf.ObjectStore.UseSSL = b
	}

	conf.Redis = Redis{
		Addr:     loadWithDefault("REDIS_ADDR", ""),
		Password: loadWithDefault("REDIS_PASSWORD", ""),
	}
	var err error
	if conf.Redis.DB, err = loadInt("REDIS_DB", 0); err != nil {
		return conf, err
	}

	if conf.Cache.Size, err = loadInt("CACHE_SIZE", DefaultCacheSize); err != nil {
		return conf, err
	}
	conf.Cache.ShortLinkTTL = DefaultShortLinkTTL
	if v := os.Getenv("SHORT_LINK_TTL"); v != "" {
		if conf.Cache.ShortLinkTTL, err = time.ParseDuration(v); err != nil {
			return conf, fmt.Errorf("invalid SHORT_LINK_TTL (%q): %w", v, err)
		}
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		conf.CORS.AllowedOrigins = splitFieldList(origins)
	}

	if conf.RateLimit.Login, err = loadInt("RATE_LIMIT_LOGIN", DefaultLoginLimit); err != nil {
		return conf, err
	}
	if conf.RateLimit.Redirect, err = loadInt("RATE_LIMIT_REDIRECT", DefaultRedirectRate); err != nil {
		return conf, err
	}
	if conf.PageSize, err = loadInt("PAGE_SIZE", DefaultPageSize); err != nil {
		return conf, err
	}

	conf.Admin = Admin{
		FirstName: loadWithDefault("ADMIN_FIRST_NAME", ""),
		LastName:  loadWithDefault("ADMIN_LAST_NAME", ""),
		Username:  loadWithDefault("ADMIN_USERNAME", ""),
		Email:     loadWithDefault("ADMIN_EMAIL", ""),
		Password:  AdminPassword(loadWithDefault("ADMIN_PASSWORD", "")),
	}

	if err := finalize(&conf); err != nil {
		return conf, err
	}
	return conf, nil
}

func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	registerAllOrNothing(validate)
	return validate
}

func finalize(conf *Config) error {
	if err := newValidator().Struct(conf); err != nil {
		return formatValidationError(err)
	}

	if err := loadAppSecret(conf); err != nil {
		return fmt.Errorf("loading app secret: %w", err)
	}

	return nil
}

func applyDefaults(config *Config) {
	if config.AppSecret.Path == "" {
		config.AppSecret.Path = "/data/secret"
	}
	if config.AppSecret.Version == "" {
		config.AppSecret.Version = "1"
	}
	if config.Env == "" {
		config.Env = EnvDev
	}
	if config.HostOrigin == "" {
		config.HostOrigin = "http://localhost:8080"
	}
	if config.Database.Host == "" {
		config.Database.Host = "localhost"
	}
	if config.Database.Port == 0 {
		config.Database.Port = 5432
	}
	if config.Fileserver.Volume == "" {
		config.Fileserver.Volume = "/data/files"
	}
	if config.Fileserver.URLPrefix == "" {
		config.Fileserver.URLPrefix = "/media"
	}
	if config.Cache.Size == 0 {
		config.Cache.Size = DefaultCacheSize
	}
	if config.Cache.ShortLinkTTL == 0 {
		config.Cache.ShortLinkTTL = DefaultShortLinkTTL
	}
	if config.RateLimit.Login == 0 {
		config.RateLimit.Login = DefaultLoginLimit
	}
	if config.RateLimit.Redirect == 0 {
		config.RateLimit.Redirect = DefaultRedirectRate
	}
	if config.PageSize == 0 {
		config.PageSize = DefaultPageSize
	}
}

func loadConfigFromFile(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(contents, &config); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyDefaults(&config)

	if err := finalize(&config); err != nil {
		return Config{}, err
	}

	return config, nil
}

func configFileExists(path string) bool {
	f, err := os.Lstat(path)
	if err != nil {
		return false
	}

	return !f.IsDir()
}

// LoadConfig reads the YAML config file when present. Otherwise it reads
// the environment, after loading an optional .env file.
func LoadConfig() (Config, error) {
	if configFileExists(configFilePath) {
		return loadConfigFromFile(configFilePath)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	return loadConfigFromEnv()
}

// Default returns a Config with every default applied and nothing loaded.
func Default() Config {
	var c Config
	applyDefaults(&c)
	return c
}

// IsProd reports whether the service runs in production mode.
func (c Config) IsProd() bool {
	return c.Env == EnvProd
}
