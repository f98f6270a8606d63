package views

import (
	"math"
	"strconv"
	"strings"

	"github.com/vidtube/backend/internal/apperr"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Page is a validated pagination request.
type Page struct {
	Number int
	Limit  int
}

// Offset is the number of items preceding the page, saturating at
// math.MaxInt for page numbers far past any real collection.
func (p Page) Offset() int {
	if p.Number <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Limit
}

// TotalPages returns ceil(total / limit).
func (p Page) TotalPages(total int) int {
	if total <= 0 || p.Limit <= 0 {
		return 0
	}
	pages := total / p.Limit
	if total%p.Limit != 0 {
		pages++
	}
	return pages
}

// ParsePage reads page and limit query values. Empty values take the
// defaults; anything that is not a positive integer, or a limit above
// MaxLimit, is rejected.
func ParsePage(page, limit string) (Page, error) {
	number, err := parsePositive("page", page, DefaultPage)
	if err != nil {
		return Page{}, err
	}
	size, err := parsePositive("limit", limit, DefaultLimit)
	if err != nil {
		return Page{}, err
	}
	if size > MaxLimit {
		return Page{}, apperr.Newf(apperr.InvalidArgument, "limit must not exceed %d", MaxLimit)
	}
	return Page{Number: number, Limit: size}, nil
}

func parsePositive(name, raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, apperr.Newf(apperr.InvalidArgument, "%s must be a positive integer", name)
	}
	return value, nil
}
