package diagnostics

import (
	"fmt"
	"sort"

	"github.com/toyz/routeplan/internal/models"
)

// Rule is a catalogue entry. Identifiers are never reused; a removed rule
// stays in the catalogue with Retired set.
type Rule struct {
	ID       string
	Severity models.Severity
	Title    string
	Category string
	Format   string
	Retired  bool
}

const (
	CategoryRouting     = "Routing"
	CategoryBinding     = "Binding"
	CategoryResponses   = "Responses"
	CategoryAnnotations = "Annotations"
)

var (
	InvalidMethod = Rule{"EOE001", models.SeverityError, "Invalid HTTP method",
		CategoryRouting, "handler %s declares invalid HTTP method %q", false}
	ConflictingAnnotations = Rule{"EOE002", models.SeverityError, "Conflicting binding annotations",
		CategoryBinding, "parameter %q has conflicting binding annotations: %s", false}
	AmbiguousBinding = Rule{"EOE003", models.SeverityError, "Ambiguous binding",
		CategoryBinding, "parameter %q of complex type %s on %s needs an explicit binding annotation", false}
	MultipleBodySources = Rule{"EOE004", models.SeverityError, "Multiple body-consuming parameters",
		CategoryBinding, "handler %s has more than one body-consuming parameter: %s", false}
	InvalidRoutePattern = Rule{"EOE005", models.SeverityError, "Invalid route pattern",
		CategoryRouting, "route pattern %q is invalid: %s", false}
	UnboundPlaceholder = Rule{"EOE006", models.SeverityError, "Unbound route placeholder",
		CategoryRouting, "route placeholder %q is not bound to any parameter", false}
	PlaceholderBoundTwice = Rule{"EOE007", models.SeverityError, "Route placeholder bound more than once",
		CategoryRouting, "route placeholder %q is bound by more than one parameter: %s", false}
	IncompatibleBinding = Rule{"EOE008", models.SeverityError, "Binding incompatible with parameter type",
		CategoryBinding, "parameter %q of type %s cannot bind from %s", false}
	ConstraintMismatch = Rule{"EOE009", models.SeverityWarning, "Route constraint does not match parameter type",
		CategoryRouting, "route constraint %q on placeholder %q does not match parameter type %s", false}
	UnknownConstraint = Rule{"EOE010", models.SeverityWarning, "Unknown route constraint",
		CategoryRouting, "route constraint %q on placeholder %q is not recognised", false}
	OptionalNeedsDefault = Rule{"EOE011", models.SeverityError, "Optional placeholder needs nullable parameter",
		CategoryRouting, "optional placeholder %q binds to parameter %q of type %s which is neither nullable nor defaulted", false}
	CatchAllNeedsString = Rule{"EOE012", models.SeverityError, "Catch-all placeholder needs string parameter",
		CategoryRouting, "catch-all placeholder %q binds to parameter %q of type %s, want string", false}
	CompositeNotConstructible = Rule{"EOE013", models.SeverityError, "Parameter group type cannot be constructed",
		CategoryBinding, "parameter %q of type %s cannot be expanded as a parameter group: %s", false}
	NestedComposite = Rule{"EOE014", models.SeverityError, "Nested parameter group",
		CategoryBinding, "member %q of parameter group %q is itself a parameter group", false}
	DuplicateRoute = Rule{"EOE015", models.SeverityError, "Duplicate route",
		CategoryRouting, "route %s %s duplicates %s %s declared by %s at %s", false}
	StatusOutOfRange = Rule{"EOE016", models.SeverityWarning, "Status code out of range",
		CategoryResponses, "custom status code %d is outside [400,600) and maps to 500", false}
	UnknownErrorCategory = Rule{"EOE017", models.SeverityWarning, "Unknown error category",
		CategoryResponses, "error category %q is not recognised and maps to 500", false}
	BodyOnReadOnlyMethod = Rule{"EOE018", models.SeverityInfo, "Body binding on read-only method",
		CategoryBinding, "parameter %q binds the request body on %s, which usually carries none", false}
	UnknownRoutePlaceholder = Rule{"EOE019", models.SeverityError, "Route binding names unknown placeholder",
		CategoryBinding, "parameter %q binds route value %q but the route has no such placeholder", false}
	HeaderLikeQuery = Rule{"EOE020", models.SeverityInfo, "Header-like parameter bound to query",
		CategoryBinding, "parameter %q looks like a header name but binds from the query string; add a header binding if that was intended", false}
	DuplicateErrorCategory = Rule{"EOE021", models.SeverityInfo, "Error category declared twice",
		CategoryResponses, "error category %q is declared more than once", false}
	KeyedServiceWithoutKey = Rule{"EOE022", models.SeverityError, "Keyed service without key",
		CategoryBinding, "parameter %q binds a keyed service but no key is given", false}
	InvalidAnnotation = Rule{"EOE023", models.SeverityError, "Invalid annotation",
		CategoryAnnotations, "annotation %q is invalid: %s", false}
	UnknownBindingTarget = Rule{"EOE024", models.SeverityError, "Binding annotation names unknown parameter",
		CategoryAnnotations, "binding annotation targets parameter %q which handler %s does not declare", false}
	FormFileOnReadOnlyMethod = Rule{"EOE025", models.SeverityWarning, "Form file on read-only method",
		CategoryBinding, "parameter %q reads a form file on %s", true}
	ErrorsWithoutErrorReturn = Rule{"EOE026", models.SeverityWarning, "Error responses on handler without error return",
		CategoryResponses, "error responses are declared but the handler does not return an error", false}
	UnknownMiddleware = Rule{"EOE027", models.SeverityError, "Unknown middleware",
		CategoryAnnotations, "handler %s references unknown middleware %q", false}
	DialectConflict = Rule{"EOE028", models.SeverityWarning, "Router dialect conflict",
		CategoryRouting, "route %s %s does not register cleanly on %s: %s", false}
)

var catalogue = []Rule{
	InvalidMethod, ConflictingAnnotations, AmbiguousBinding, MultipleBodySources,
	InvalidRoutePattern, UnboundPlaceholder, PlaceholderBoundTwice, IncompatibleBinding,
	ConstraintMismatch, UnknownConstraint, OptionalNeedsDefault, CatchAllNeedsString,
	CompositeNotConstructible, NestedComposite, DuplicateRoute, StatusOutOfRange,
	UnknownErrorCategory, BodyOnReadOnlyMethod, UnknownRoutePlaceholder, HeaderLikeQuery,
	DuplicateErrorCategory, KeyedServiceWithoutKey, InvalidAnnotation, UnknownBindingTarget,
	FormFileOnReadOnlyMethod, ErrorsWithoutErrorReturn, UnknownMiddleware, DialectConflict,
}

// Catalogue returns every rule, including retired ones, ordered by identifier
func Catalogue() []Rule {
	out := make([]Rule, len(catalogue))
	copy(out, catalogue)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Lookup finds a rule by identifier
func Lookup(id string) (Rule, bool) {
	for _, r := range catalogue {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

// New builds a diagnostic for rule at loc. Reporting a retired rule is an
// internal fault and panics.
func New(rule Rule, loc models.SourceLocation, args ...interface{}) models.Diagnostic {
	if rule.Retired {
		panic(fmt.Sprintf("diagnostic rule %s is retired", rule.ID))
	}
	return models.Diagnostic{
		ID:       rule.ID,
		Severity: rule.Severity,
		Title:    rule.Title,
		Message:  fmt.Sprintf(rule.Format, args...),
		Category: rule.Category,
		Location: loc,
	}
}
