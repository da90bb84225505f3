// Package pagination slices query results into fixed-size pages and builds
// the list envelope returned by every collection endpoint.
package pagination

import (
	"net/url"
	"strconv"

	"chatapi/internal/domain"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Params is a validated page request. Pages are 1-indexed.
type Params struct {
	Page     int
	PageSize int
}

// ParseParams reads page and page_size from request parameters. Requests
// above the page-size ceiling are clamped, not rejected; non-positive values
// are validation errors.
func ParseParams(values url.Values) (Params, error) {
	p := Params{Page: 1, PageSize: DefaultPageSize}
	verr := &domain.ValidationError{}

	if raw := values.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			verr.Add("page", "must be a positive integer")
		} else {
			p.Page = n
		}
	}
	if raw := values.Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			verr.Add("page_size", "must be a positive integer")
		} else {
			if n > MaxPageSize {
				n = MaxPageSize
			}
			p.PageSize = n
		}
	}

	if !verr.Empty() {
		return Params{}, verr
	}
	return p, nil
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func (p Params) Limit() int {
	return p.PageSize
}

// Page is the fixed-shape envelope for paginated lists.
type Page struct {
	Count       int     `json:"count"`
	TotalPages  int     `json:"total_pages"`
	CurrentPage int     `json:"current_page"`
	PageSize    int     `json:"page_size"`
	Next        *string `json:"next"`
	Previous    *string `json:"previous"`
	Results     any     `json:"results"`
}

// NewPage assembles the envelope for one page of results. count is the total
// number of matching items regardless of page. requestURL is used to build
// next/previous references preserving all other query parameters; a page
// beyond the last yields empty results with accurate metadata and no next
// link.
func NewPage(results any, count int, p Params, requestURL *url.URL) Page {
	totalPages := 0
	if count > 0 {
		totalPages = (count + p.PageSize - 1) / p.PageSize
	}

	page := Page{
		Count:       count,
		TotalPages:  totalPages,
		CurrentPage: p.Page,
		PageSize:    p.PageSize,
		Results:     results,
	}
	if requestURL != nil {
		if p.Page < totalPages {
			page.Next = pageLink(requestURL, p.Page+1)
		}
		if p.Page > 1 {
			page.Previous = pageLink(requestURL, p.Page-1)
		}
	}
	return page
}

func pageLink(requestURL *url.URL, page int) *string {
	u := *requestURL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}
