package pagination

import (
	"math"
	"net/http"
	"net/url"
	"strconv"
)

// Query parameter names.
const (
	PageParam  = "page"
	LimitParam = "limit"
)

// Limits are the server-side page size settings.
type Limits struct {
	Default int
	Max     int
}

// DefaultLimits mirrors the public contract: 6 per page, never more than 50.
var DefaultLimits = Limits{Default: 6, Max: 50}

// Params is a resolved page request. Page is 1-based.
type Params struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Normalize clamps p into the allowed range.
func (p Params) Normalize(l Limits) Params {
	if l.Default <= 0 {
		l.Default = DefaultLimits.Default
	}
	if l.Max <= 0 {
		l.Max = DefaultLimits.Max
	}
	if p.Page < 1 {
		p.Page = 1
	}
	// Keeps Offset and the next-page number from overflowing.
	if maxPage := math.MaxInt / l.Max; p.Page > maxPage {
		p.Page = maxPage
	}
	if p.Limit <= 0 {
		p.Limit = l.Default
	}
	if p.Limit > l.Max {
		p.Limit = l.Max
	}
	return p
}

// FromRequest reads page and limit. Garbage values fall back to defaults.
func FromRequest(r *http.Request, l Limits) Params {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get(PageParam))
	limit, _ := strconv.Atoi(q.Get(LimitParam))
	return Params{Page: page, Limit: limit}.Normalize(l)
}

// Page is a paginated result set.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// NewPage builds a page and its navigation links relative to base.
func NewPage[T any](base *url.URL, p Params, count int64, results []T) Page[T] {
	if results == nil {
		results = []T{}
	}
	page := Page[T]{Count: count, Results: results}

	if base == nil {
		return page
	}
	if int64(p.Offset()+len(results)) < count {
		page.Next = link(base, p.Page+1, p.Limit)
	}
	if p.Page > 1 {
		page.Previous = link(base, p.Page-1, p.Limit)
	}
	return page
}

func link(base *url.URL, page, limit int) *string {
	u := *base
	q := u.Query()
	q.Set(PageParam, strconv.Itoa(page))
	q.Set(LimitParam, strconv.Itoa(limit))
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}
