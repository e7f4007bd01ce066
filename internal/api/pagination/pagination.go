// Package pagination implements page/limit pagination of list endpoints.
package pagination

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/matt-dz/foodgram/internal/config"
)

const (
	PageParam  = "page"
	LimitParam = "limit"
)

var ErrInvalidParams = errors.New("invalid pagination parameters")

// Page is the body of a paginated list.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Params is a 1-based page number and a page size.
type Params struct {
	Page  int
	Limit int
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// FromRequest reads page and limit from the query. Missing values fall back
// to the first page and defaultLimit; limit is capped at config.MaxPageSize.
// Pages whose offset does not fit an int32 are rejected.
func FromRequest(r *http.Request, defaultLimit int) (Params, error) {
	p := Params{Page: 1, Limit: defaultLimit}
	if p.Limit <= 0 {
		p.Limit = config.DefaultPageSize
	}

	q := r.URL.Query()
	if raw := q.Get(PageParam); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return Params{}, fmt.Errorf("%w: page=%q", ErrInvalidParams, raw)
		}
		p.Page = page
	}
	if raw := q.Get(LimitParam); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return Params{}, fmt.Errorf("%w: limit=%q", ErrInvalidParams, raw)
		}
		p.Limit = min(limit, config.MaxPageSize)
	}
	// Offsets are passed to the database as int32.
	if p.Page-1 > math.MaxInt32/p.Limit {
		return Params{}, fmt.Errorf("%w: page %d is out of range", ErrInvalidParams, p.Page)
	}
	return p, nil
}

// New builds the page for results, linking the neighbouring pages of r.
func New[T any](r *http.Request, p Params, count int64, results []T) Page[T] {
	if results == nil {
		results = []T{}
	}
	page := Page[T]{Count: count, Results: results}
	if int64(p.Page*p.Limit) < count {
		next := pageURL(r, p.Page+1)
		page.Next = &next
	}
	if p.Page > 1 {
		previous := pageURL(r, p.Page-1)
		page.Previous = &previous
	}
	return page
}

func pageURL(r *http.Request, page int) string {
	u := url.URL{
		Scheme: "http",
		Host:   r.Host,
		Path:   r.URL.Path,
	}
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		u.Scheme = "https"
	}

	q := r.URL.Query()
	if page == 1 {
		q.Del(PageParam)
	} else {
		q.Set(PageParam, strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
