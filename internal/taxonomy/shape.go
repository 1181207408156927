package taxonomy

import (
	"net/http"
	"sort"

	"github.com/toyz/routeplan/internal/diagnostics"
	"github.com/toyz/routeplan/internal/models"
)

// Shape builds the response shape of a handler: its success response plus the
// union of error entries reachable from declared categories and custom codes.
// Entries sharing a status are merged; the first in canonical order wins
// (known categories in enum order, unknown categories by name, then codes
// ascending).
func (t Table) Shape(ret models.ReturnDescriptor, ann models.MethodAnnotations, loc models.SourceLocation) (models.ResponseShape, []models.Diagnostic) {
	var diags []models.Diagnostic

	shape := models.ResponseShape{
		SuccessType:   ret.SuccessType,
		SuccessStatus: successStatus(ret),
	}

	declared := make(map[models.ErrorCategory]bool)
	reported := make(map[string]bool)
	var unknown []string
	for _, name := range ann.ErrorCategories {
		c, err := models.ParseErrorCategory(name)
		if err != nil {
			if !reported[name] {
				reported[name] = true
				unknown = append(unknown, name)
				diags = append(diags, diagnostics.New(diagnostics.UnknownErrorCategory, loc, name))
			}
			continue
		}
		if declared[c] {
			if !reported[c.String()] {
				reported[c.String()] = true
				diags = append(diags, diagnostics.New(diagnostics.DuplicateErrorCategory, loc, c.String()))
			}
			continue
		}
		declared[c] = true
	}
	sort.Strings(unknown)

	var candidates []models.ResponseEntry
	for _, c := range models.AllErrorCategories() {
		if declared[c] {
			candidates = append(candidates, t.Category(c))
		}
	}
	for range unknown {
		candidates = append(candidates, t.Fallback())
	}

	codes := append([]int(nil), ann.CustomCodes...)
	sort.Ints(codes)
	for i, code := range codes {
		if i > 0 && codes[i-1] == code {
			continue
		}
		e, inRange := t.Code(code)
		if !inRange {
			diags = append(diags, diagnostics.New(diagnostics.StatusOutOfRange, loc, code))
		}
		candidates = append(candidates, e)
	}

	if len(candidates) > 0 && !ret.ReturnsError {
		diags = append(diags, diagnostics.New(diagnostics.ErrorsWithoutErrorReturn, loc))
	}

	shape.Errors = merge(candidates)
	return shape, diags
}

func merge(candidates []models.ResponseEntry) []models.ResponseEntry {
	if len(candidates) == 0 {
		return nil
	}
	seen := make(map[int]bool, len(candidates))
	out := make([]models.ResponseEntry, 0, len(candidates))
	for _, e := range candidates {
		if seen[e.Status] {
			continue
		}
		seen[e.Status] = true
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out
}

func successStatus(ret models.ReturnDescriptor) int {
	switch {
	case ret.SuccessStatus != 0:
		return ret.SuccessStatus
	case ret.SuccessType == "":
		return http.StatusNoContent
	default:
		return http.StatusOK
	}
}
