package taxonomy

import (
	"fmt"
	"net/http"

	"github.com/toyz/routeplan/internal/models"
)

// Table maps error categories and custom status codes to response entries.
// It is an immutable value; With* methods return modified copies.
type Table struct {
	categories map[models.ErrorCategory]models.ResponseEntry
	codes      map[int]models.ResponseEntry
	fallback   models.ResponseEntry
}

// DefaultTable returns the canonical mapping
func DefaultTable() Table {
	return Table{
		categories: map[models.ErrorCategory]models.ResponseEntry{
			models.CategoryValidation:   entry(http.StatusBadRequest, models.ShapeValidationProblem, false),
			models.CategoryUnauthorized: entry(http.StatusUnauthorized, models.ShapeNone, false),
			models.CategoryForbidden:    entry(http.StatusForbidden, models.ShapeNone, false),
			models.CategoryNotFound:     entry(http.StatusNotFound, models.ShapeProblem, true),
			models.CategoryConflict:     entry(http.StatusConflict, models.ShapeProblem, true),
			models.CategoryFailure:      entry(http.StatusInternalServerError, models.ShapeProblem, true),
			models.CategoryUnexpected:   entry(http.StatusInternalServerError, models.ShapeProblem, true),
		},
		codes: map[int]models.ResponseEntry{
			http.StatusBadRequest:          entry(http.StatusBadRequest, models.ShapeBadRequest, true),
			http.StatusUnauthorized:        entry(http.StatusUnauthorized, models.ShapeNone, false),
			http.StatusForbidden:           entry(http.StatusForbidden, models.ShapeNone, false),
			http.StatusNotFound:            entry(http.StatusNotFound, models.ShapeNotFound, true),
			http.StatusConflict:            entry(http.StatusConflict, models.ShapeConflict, true),
			http.StatusUnprocessableEntity: entry(http.StatusUnprocessableEntity, models.ShapeUnprocessable, true),
			http.StatusInternalServerError: entry(http.StatusInternalServerError, models.ShapeInternal, true),
		},
		fallback: entry(http.StatusInternalServerError, models.ShapeProblem, true),
	}
}

func entry(status int, shape models.ResponseBodyShape, hasBody bool) models.ResponseEntry {
	return models.ResponseEntry{Status: status, Shape: shape, HasBody: hasBody, Title: Title(status)}
}

// Title returns the human-readable title for a status code
func Title(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("Status %d", status)
}

// WithCategory returns a copy of t with the mapping for c replaced
func (t Table) WithCategory(c models.ErrorCategory, status int, shape models.ResponseBodyShape, hasBody bool) Table {
	out := t.clone()
	out.categories[c] = entry(status, shape, hasBody)
	return out
}

// WithCode returns a copy of t with a dedicated factory for code
func (t Table) WithCode(code int, shape models.ResponseBodyShape, hasBody bool) Table {
	out := t.clone()
	out.codes[code] = entry(code, shape, hasBody)
	return out
}

func (t Table) clone() Table {
	out := Table{
		categories: make(map[models.ErrorCategory]models.ResponseEntry, len(t.categories)),
		codes:      make(map[int]models.ResponseEntry, len(t.codes)),
		fallback:   t.fallback,
	}
	for k, v := range t.categories {
		out.categories[k] = v
	}
	for k, v := range t.codes {
		out.codes[k] = v
	}
	return out
}

// Category returns the response entry for a known category
func (t Table) Category(c models.ErrorCategory) models.ResponseEntry {
	if e, ok := t.categories[c]; ok {
		return e
	}
	return t.fallback
}

// Fallback returns the entry used for unknown categories
func (t Table) Fallback() models.ResponseEntry {
	return t.fallback
}

// Code returns the response entry for a custom status code. inRange is false
// when code lies outside [400,600) and the entry is the 500 fallback.
func (t Table) Code(code int) (e models.ResponseEntry, inRange bool) {
	if code < 400 || code >= 600 {
		return t.codes[http.StatusInternalServerError], false
	}
	if e, ok := t.codes[code]; ok {
		return e, true
	}
	return entry(code, models.ShapeProblem, true), true
}

// Fingerprint renders the table deterministically, for cache keys
func (t Table) Fingerprint() string {
	s := ""
	for _, c := range models.AllErrorCategories() {
		e := t.Category(c)
		s += fmt.Sprintf("%s=%d/%s/%t;", c, e.Status, e.Shape, e.HasBody)
	}
	for code := 400; code < 600; code++ {
		if e, ok := t.codes[code]; ok {
			s += fmt.Sprintf("%d=%s/%t;", code, e.Shape, e.HasBody)
		}
	}
	return s
}
