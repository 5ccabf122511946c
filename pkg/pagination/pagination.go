package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Params holds the list parameters understood by the clinic endpoint.
type Params struct {
	Limit int
}

// Normalize returns p with Limit clamped into [1, MaxLimit]. A zero or
// negative limit means DefaultLimit.
func (p Params) Normalize() Params {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Query renders the limit as a query parameter value.
func (p Params) Query() string {
	return strconv.Itoa(p.Normalize().Limit)
}

// FromContext extracts list parameters from the echo context.
func FromContext(c echo.Context) Params {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return Params{Limit: limit}.Normalize()
}

// Apply returns at most p.Limit leading items.
func Apply[T any](items []T, p Params) []T {
	p = p.Normalize()
	if len(items) > p.Limit {
		return items[:p.Limit]
	}
	return items
}
