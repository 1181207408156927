package duplicates

import (
	"sort"
	"strings"

	"github.com/toyz/routeplan/internal/diagnostics"
	"github.com/toyz/routeplan/internal/models"
	"github.com/toyz/routeplan/internal/routes"
)

// Entry is one provisional endpoint taking part in duplicate detection
type Entry struct {
	Method   string
	Template models.RouteTemplate
	Handler  string
	Location models.SourceLocation
}

type groupKey struct {
	method string
	route  int
}

// Detect flags every endpoint whose (method, normalised route) pair was
// already taken by an earlier declaration. Declarations are ordered by
// location then pattern, so the result does not depend on input order.
// The returned map is keyed by index into entries.
func Detect(entries []Entry) map[int]models.Diagnostic {
	arena := NewArena()
	groups := make(map[groupKey][]int)
	var order []groupKey

	for i, e := range entries {
		if e.Template.Invalid {
			continue
		}
		k := groupKey{
			method: strings.ToUpper(e.Method),
			route:  arena.Intern(routes.Normalize(e.Template)),
		}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}

	found := make(map[int]models.Diagnostic)
	for _, k := range order {
		members := groups[k]
		if len(members) < 2 {
			continue
		}
		sort.SliceStable(members, func(a, b int) bool {
			return declaredBefore(entries[members[a]], entries[members[b]])
		})

		first := entries[members[0]]
		for _, idx := range members[1:] {
			e := entries[idx]
			found[idx] = diagnostics.New(diagnostics.DuplicateRoute, e.Location,
				k.method, e.Template.Raw, strings.ToUpper(first.Method), first.Template.Raw, first.Handler, first.Location)
		}
	}
	return found
}

func declaredBefore(a, b Entry) bool {
	if a.Location != b.Location {
		return a.Location.Less(b.Location)
	}
	if a.Template.Raw != b.Template.Raw {
		return a.Template.Raw < b.Template.Raw
	}
	return a.Handler < b.Handler
}
