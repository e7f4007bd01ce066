// Package shortlink issues and resolves short codes for recipes.
package shortlink

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/skip2/go-qrcode"

	"github.com/matt-dz/foodgram/internal/cache"
	"github.com/matt-dz/foodgram/internal/database"
	"github.com/matt-dz/foodgram/internal/metrics"
)

const (
	CodeLength  = 6
	alphabet    = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	maxAttempts = 5
	cachePrefix = "shortlink:"
	qrSize      = 256
)

var (
	ErrNotFound  = errors.New("short link not found")
	ErrExhausted = errors.New("could not allocate a unique short code")
)

type Service struct {
	db       database.Querier
	cache    cache.Cache
	baseURL  string
	cacheTTL time.Duration
	newCode  func() (string, error)
}

// New creates a Service. c may be nil, in which case every resolution
// reads the database.
func New(db database.Querier, c cache.Cache, baseURL string, cacheTTL time.Duration) *Service {
	return &Service{
		db:       db,
		cache:    c,
		baseURL:  strings.TrimRight(baseURL, "/"),
		cacheTTL: cacheTTL,
		newCode:  GenerateCode,
	}
}

// GenerateCode returns a random base62 code of CodeLength characters.
func GenerateCode() (string, error) {
	base := big.NewInt(int64(len(alphabet)))
	b := make([]byte, CodeLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", fmt.Errorf("generating short code: %w", err)
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b), nil
}

// CanonicalURL is the frontend address of a recipe.
func (s *Service) CanonicalURL(recipeID int64) string {
	return s.baseURL + "/recipes/" + strconv.FormatInt(recipeID, 10)
}

// ShortURL is the public redirect address for code.
func (s *Service) ShortURL(code string) string {
	return s.baseURL + "/s/" + code
}

// Issue returns the short code of recipeID, creating it on first use.
// Repeated calls return the same code.
func (s *Service) Issue(ctx context.Context, recipeID int64) (string, error) {
	exists, err := s.db.RecipeExists(ctx, recipeID)
	if err != nil {
		return "", fmt.Errorf("checking recipe: %w", err)
	}
	if !exists {
		return "", ErrNotFound
	}

	if code, found, err := s.existing(ctx, recipeID); err != nil || found {
		return code, err
	}

	for range maxAttempts {
		code, err := s.newCode()
		if err != nil {
			return "", err
		}

		link, err := s.db.CreateLink(ctx, database.CreateLinkParams{
			RecipeID:     recipeID,
			ShortCode:    code,
			OriginalLink: s.CanonicalURL(recipeID),
		})
		switch {
		case err == nil:
			metrics.ShortLinksIssued.Inc()
			return link.ShortCode, nil
		case errors.Is(err, pgx.ErrNoRows):
			// Another request issued a code for this recipe first.
			code, found, err := s.existing(ctx, recipeID)
			if err != nil {
				return "", err
			}
			if !found {
				return "", fmt.Errorf("link for recipe %d vanished", recipeID)
			}
			return code, nil
		case database.IsUniqueViolation(err, database.ConstraintLinkShortCode):
			continue
		default:
			return "", fmt.Errorf("creating link: %w", err)
		}
	}
	return "", ErrExhausted
}

// Code returns the short code already issued for recipeID, if any.
func (s *Service) Code(ctx context.Context, recipeID int64) (string, bool, error) {
	return s.existing(ctx, recipeID)
}

// Evict drops the cached resolution of code so later lookups read the
// database.
func (s *Service) Evict(ctx context.Context, code string) error {
	if s.cache == nil || code == "" {
		return nil
	}
	if err := s.cache.Delete(ctx, cachePrefix+code); err != nil {
		return fmt.Errorf("evicting short link %q: %w", code, err)
	}
	return nil
}

func (s *Service) existing(ctx context.Context, recipeID int64) (string, bool, error) {
	link, err := s.db.GetLinkByRecipe(ctx, recipeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	} else if err != nil {
		return "", false, fmt.Errorf("getting link: %w", err)
	}
	return link.ShortCode, true, nil
}

// Resolve maps a short code to the canonical recipe URL.
func (s *Service) Resolve(ctx context.Context, code string) (string, error) {
	if code == "" || len(code) > 64 {
		return "", ErrNotFound
	}

	if s.cache != nil {
		if url, ok, err := s.cache.Get(ctx, cachePrefix+code); err == nil && ok {
			metrics.RecordShortLinkLookup("cache", metrics.ResultOK)
			return url, nil
		}
	}

	link, err := s.db.GetLinkByCode(ctx, code)
	if errors.Is(err, pgx.ErrNoRows) {
		metrics.RecordShortLinkLookup("database", metrics.ResultNotFound)
		return "", ErrNotFound
	} else if err != nil {
		metrics.RecordShortLinkLookup("database", metrics.ResultError)
		return "", fmt.Errorf("getting link: %w", err)
	}
	metrics.RecordShortLinkLookup("database", metrics.ResultOK)

	if s.cache != nil {
		_ = s.cache.Set(ctx, cachePrefix+code, link.OriginalLink, s.cacheTTL)
	}
	return link.OriginalLink, nil
}

// QRCode renders url as a PNG QR code.
func QRCode(url string) ([]byte, error) {
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("encoding qr code: %w", err)
	}
	return png, nil
}
