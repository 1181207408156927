package diagnostics

import (
	"sort"

	"github.com/toyz/routeplan/internal/models"
)

// Sort orders diagnostics by location, then rule identifier, then message.
// The input slice is sorted in place and returned.
func Sort(diags []models.Diagnostic) []models.Diagnostic {
	sort.SliceStable(diags, func(i, j int) bool {
		return less(diags[i], diags[j])
	})
	return diags
}

func less(a, b models.Diagnostic) bool {
	if a.Location != b.Location {
		return a.Location.Less(b.Location)
	}
	if a.ID != b.ID {
		return a.ID < b.ID
	}
	return a.Message < b.Message
}

// Dedup sorts diags and drops repeats of the same rule at the same site
func Dedup(diags []models.Diagnostic) []models.Diagnostic {
	if len(diags) == 0 {
		return diags
	}
	Sort(diags)
	out := diags[:1]
	for _, d := range diags[1:] {
		if d == out[len(out)-1] {
			continue
		}
		out = append(out, d)
	}
	return out
}

// HasErrors reports whether any diagnostic has Error severity
func HasErrors(diags []models.Diagnostic) bool {
	for _, d := range diags {
		if d.IsError() {
			return true
		}
	}
	return false
}

// Count tallies diagnostics by severity
func Count(diags []models.Diagnostic) (errors, warnings, infos int) {
	for _, d := range diags {
		switch d.Severity {
		case models.SeverityError:
			errors++
		case models.SeverityWarning:
			warnings++
		case models.SeverityInfo:
			infos++
		}
	}
	return errors, warnings, infos
}
