package diagnostics

import (
	"sort"
	"strings"

	"github.com/toyz/routeplan/internal/models"
)

// ResolvedParameter is a parameter together with the source the resolver chose for it
type ResolvedParameter struct {
	Parameter models.ParameterDeclaration
	Source    *models.BindingSource // nil when unbound
}

// Analysis is the per-endpoint state the local rule set evaluates
type Analysis struct {
	Handler       models.HandlerDeclaration
	Template      models.RouteTemplate
	TemplateValid bool
	Parameters    []ResolvedParameter
}

// EngineOptions configures the local rule set
type EngineOptions struct {
	// KnownMiddleware lists middleware names handlers may reference. Empty disables the check.
	KnownMiddleware []string
}

// Engine evaluates the declaration-level rules
type Engine struct {
	middleware map[string]struct{}
}

// NewEngine creates a new rule engine
func NewEngine(opts EngineOptions) *Engine {
	e := &Engine{}
	if len(opts.KnownMiddleware) > 0 {
		e.middleware = make(map[string]struct{}, len(opts.KnownMiddleware))
		for _, m := range opts.KnownMiddleware {
			e.middleware[m] = struct{}{}
		}
	}
	return e
}

// routeUse is one Route binding of a placeholder
type routeUse struct {
	label     string
	parameter models.ParameterDeclaration
}

// Check evaluates every local rule against a and returns the findings, sorted
func (e *Engine) Check(a Analysis) []models.Diagnostic {
	var diags []models.Diagnostic
	h := a.Handler

	if !ValidMethod(h.Method) {
		diags = append(diags, New(InvalidMethod, h.Location, h.Name, h.Method))
	}

	for _, inv := range h.Annotations.Invalid {
		diags = append(diags, New(InvalidAnnotation, inv.Location, inv.Raw, inv.Reason))
	}
	for _, ref := range h.Annotations.Unattached {
		diags = append(diags, New(UnknownBindingTarget, ref.Binding.Location, ref.Parameter, h.Name))
	}

	if e.middleware != nil {
		for _, m := range h.Annotations.Middleware {
			if _, ok := e.middleware[m]; !ok {
				diags = append(diags, New(UnknownMiddleware, h.Location, h.Name, m))
			}
		}
	}

	diags = append(diags, e.checkBodyConsumers(a)...)
	if a.TemplateValid {
		diags = append(diags, e.checkPlaceholders(a)...)
	}

	return Sort(diags)
}

func (e *Engine) checkBodyConsumers(a Analysis) []models.Diagnostic {
	var names []string
	var second models.SourceLocation
	for _, p := range a.Parameters {
		if p.Source == nil {
			continue
		}
		if p.Source.Kind == models.SourceComposite {
			for _, c := range p.Source.Children {
				if c.Source.ConsumesBody() {
					names = append(names, c.Path)
					if len(names) == 2 {
						second = c.Parameter.Location
					}
				}
			}
			continue
		}
		if p.Source.ConsumesBody() {
			names = append(names, p.Parameter.Name)
			if len(names) == 2 {
				second = p.Parameter.Location
			}
		}
	}
	if len(names) < 2 {
		return nil
	}
	return []models.Diagnostic{New(MultipleBodySources, second, a.Handler.Name, strings.Join(names, ", "))}
}

func (e *Engine) checkPlaceholders(a Analysis) []models.Diagnostic {
	uses := make(map[string][]routeUse)
	unbound := make(map[string]bool)
	for _, p := range a.Parameters {
		if p.Source == nil {
			unbound[strings.ToLower(p.Parameter.Name)] = true
			continue
		}
		switch p.Source.Kind {
		case models.SourceRoute:
			key := strings.ToLower(p.Source.Key)
			uses[key] = append(uses[key], routeUse{p.Parameter.Name, p.Parameter})
		case models.SourceComposite:
			for _, c := range p.Source.Children {
				if c.Source.Kind == models.SourceRoute {
					key := strings.ToLower(c.Source.Key)
					uses[key] = append(uses[key], routeUse{c.Path, c.Parameter})
				}
			}
		}
	}

	var diags []models.Diagnostic
	for _, ph := range a.Template.Placeholders() {
		key := strings.ToLower(ph.Name)
		bound := uses[key]
		switch {
		case len(bound) == 0:
			// the parameter meant for this slot already carries its own error
			if !unbound[key] {
				diags = append(diags, New(UnboundPlaceholder, a.Handler.Location, ph.Name))
			}
			continue
		case len(bound) > 1:
			labels := make([]string, len(bound))
			for i, u := range bound {
				labels[i] = u.label
			}
			sort.Strings(labels)
			diags = append(diags, New(PlaceholderBoundTwice, bound[1].parameter.Location, ph.Name, strings.Join(labels, ", ")))
			continue
		}

		use := bound[0]
		t := use.parameter.Type
		if ph.Optional && !t.Nullable && !use.parameter.HasDefault {
			diags = append(diags, New(OptionalNeedsDefault, use.parameter.Location, ph.Name, use.label, t.Name))
		}
		if ph.CatchAll && !t.IsString() {
			diags = append(diags, New(CatchAllNeedsString, use.parameter.Location, ph.Name, use.label, t.Name))
		}
	}
	return diags
}

// ValidMethod reports whether method is a syntactically valid HTTP method token
func ValidMethod(method string) bool {
	if method == "" {
		return false
	}
	for _, r := range method {
		if !isTokenChar(r) {
			return false
		}
	}
	return true
}

func isTokenChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("!#$%&'*+-.^_`|~", r)
}
