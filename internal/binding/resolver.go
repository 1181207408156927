package binding

import (
	"strings"

	"github.com/toyz/routeplan/internal/diagnostics"
	"github.com/toyz/routeplan/internal/models"
	"github.com/toyz/routeplan/internal/routes"
)

// Resolution is the outcome of resolving one parameter. A nil Source means
// the parameter is unbound and the endpoint carries an Error diagnostic.
type Resolution struct {
	Source      *models.BindingSource
	Diagnostics []models.Diagnostic
}

// Resolver decides the binding source of handler parameters.
//
// Resolution order, first match wins:
//
//  0. more than one explicit binding is a conflict
//  1. an explicit binding is used verbatim
//  2. well-known special types bind to the framework
//  3. a group marker expands the type's members
//  4. a scalar whose name matches a placeholder binds to the route
//  5. complex types bind to the body on payload methods and are ambiguous
//     elsewhere; scalars and collections bind to the query string
//
// Parseable types count as scalars in steps 4 and 5.
type Resolver struct {
	readOnly    map[string]bool
	payload     map[string]bool
	headerNames map[string]bool
}

// NewResolver creates a resolver for the given method partition and naming policy
func NewResolver(opts Options) *Resolver {
	r := &Resolver{
		readOnly:    methodSet(opts.ReadOnlyMethods),
		payload:     methodSet(opts.PayloadMethods),
		headerNames: make(map[string]bool, len(opts.HeaderLikeNames)),
	}
	for _, n := range opts.HeaderLikeNames {
		r.headerNames[headerKey(n)] = true
	}
	return r
}

// Classify returns the method's class under the configured partition
func (r *Resolver) Classify(method string) MethodClass {
	method = strings.ToUpper(method)
	switch {
	case r.readOnly[method]:
		return MethodReadOnly
	case r.payload[method]:
		return MethodPayload
	default:
		return MethodUnclassified
	}
}

// Resolve resolves the binding source of p on a handler with the given template and method
func (r *Resolver) Resolve(p models.ParameterDeclaration, tmpl models.RouteTemplate, method string) Resolution {
	var res Resolution
	res.Source = r.resolve(&res, p, tmpl, strings.ToUpper(method), false)
	return res
}

// resolve runs the ordered steps. member is true while expanding a parameter
// group, where step 3 does not apply.
func (r *Resolver) resolve(res *Resolution, p models.ParameterDeclaration, tmpl models.RouteTemplate, method string, member bool) *models.BindingSource {
	if len(p.Bindings) > 1 {
		names := make([]string, len(p.Bindings))
		for i, b := range p.Bindings {
			names[i] = b.Source.String()
		}
		res.add(diagnostics.New(diagnostics.ConflictingAnnotations, p.Location, p.Name, strings.Join(names, ", ")))
		return nil
	}

	var explicit *models.ExplicitBinding
	if len(p.Bindings) == 1 {
		explicit = &p.Bindings[0]
	}
	grouped := explicit != nil && explicit.Source == models.BindGroup

	if explicit != nil && !grouped {
		return r.explicit(res, p, *explicit, tmpl, method)
	}

	if p.Type.Kind == models.KindSpecial {
		if grouped {
			res.add(diagnostics.New(diagnostics.IncompatibleBinding, p.Location, p.Name, p.Type.Name, "a parameter group"))
			return nil
		}
		return special(p)
	}

	if grouped {
		if member {
			// reported by the enclosing group
			return nil
		}
		return r.composite(res, p, tmpl, method)
	}

	return r.infer(res, p, tmpl, method)
}

func (r *Resolver) explicit(res *Resolution, p models.ParameterDeclaration, b models.ExplicitBinding, tmpl models.RouteTemplate, method string) *models.BindingSource {
	key := b.Name
	if key == "" {
		key = p.Name
	}
	t := p.Type
	incompatible := func() *models.BindingSource {
		res.add(diagnostics.New(diagnostics.IncompatibleBinding, b.Location, p.Name, t.Name, b.Source.String()))
		return nil
	}

	switch b.Source {
	case models.BindRoute:
		if !t.IsScalar() {
			return incompatible()
		}
		if tmpl.Invalid {
			return &models.BindingSource{Kind: models.SourceRoute, Key: key}
		}
		ph, ok := tmpl.Placeholder(key)
		if !ok {
			res.add(diagnostics.New(diagnostics.UnknownRoutePlaceholder, b.Location, p.Name, key))
			return nil
		}
		r.checkConstraint(res, p, ph)
		return &models.BindingSource{Kind: models.SourceRoute, Key: ph.Name}

	case models.BindQuery, models.BindHeader:
		if !t.IsScalar() && t.Kind != models.KindCollection {
			return incompatible()
		}
		kind := models.SourceQuery
		if b.Source == models.BindHeader {
			kind = models.SourceHeader
		}
		return &models.BindingSource{Kind: kind, Key: key}

	case models.BindBody:
		if t.Kind == models.KindSpecial || t.Kind == models.KindCollection {
			return incompatible()
		}
		if r.Classify(method) == MethodReadOnly {
			res.add(diagnostics.New(diagnostics.BodyOnReadOnlyMethod, b.Location, p.Name, method))
		}
		return &models.BindingSource{Kind: models.SourceBody, Key: key}

	case models.BindForm:
		if t.Kind == models.KindSpecial {
			switch t.Special {
			case models.SpecialFormFile:
				return &models.BindingSource{Kind: models.SourceFormFile, Key: key}
			case models.SpecialFormFiles:
				return &models.BindingSource{Kind: models.SourceFormFiles, Key: key}
			case models.SpecialFormCollection:
				return &models.BindingSource{Kind: models.SourceForm, Key: key}
			}
			return incompatible()
		}
		return &models.BindingSource{Kind: models.SourceForm, Key: key}

	case models.BindService:
		if t.IsScalar() || t.Kind == models.KindCollection {
			return incompatible()
		}
		return &models.BindingSource{Kind: models.SourceService}

	case models.BindKeyedService:
		if t.IsScalar() || t.Kind == models.KindCollection {
			return incompatible()
		}
		if b.ServiceKey == "" {
			res.add(diagnostics.New(diagnostics.KeyedServiceWithoutKey, b.Location, p.Name))
			return nil
		}
		return &models.BindingSource{Kind: models.SourceKeyedService, ServiceKey: b.ServiceKey}
	}

	return incompatible()
}

func special(p models.ParameterDeclaration) *models.BindingSource {
	switch p.Type.Special {
	case models.SpecialFormFile:
		return &models.BindingSource{Kind: models.SourceFormFile, Key: p.Name}
	case models.SpecialFormFiles:
		return &models.BindingSource{Kind: models.SourceFormFiles, Key: p.Name}
	case models.SpecialFormCollection:
		return &models.BindingSource{Kind: models.SourceForm, Key: p.Name}
	default:
		return &models.BindingSource{Kind: models.SourceSpecial, Special: p.Type.Special}
	}
}

func (r *Resolver) infer(res *Resolution, p models.ParameterDeclaration, tmpl models.RouteTemplate, method string) *models.BindingSource {
	t := p.Type

	if t.IsScalar() && !tmpl.Invalid {
		if ph, ok := tmpl.Placeholder(p.Name); ok {
			r.checkConstraint(res, p, ph)
			return &models.BindingSource{Kind: models.SourceRoute, Key: ph.Name}
		}
	}

	if t.IsScalar() || t.Kind == models.KindCollection {
		if r.looksLikeHeader(p.Name) {
			res.add(diagnostics.New(diagnostics.HeaderLikeQuery, p.Location, p.Name))
		}
		return &models.BindingSource{Kind: models.SourceQuery, Key: p.Name}
	}

	if r.Classify(method) == MethodPayload {
		return &models.BindingSource{Kind: models.SourceBody, Key: p.Name}
	}
	res.add(diagnostics.New(diagnostics.AmbiguousBinding, p.Location, p.Name, t.Name, method))
	return nil
}

func (r *Resolver) checkConstraint(res *Resolution, p models.ParameterDeclaration, ph models.Placeholder) {
	c, ok := ph.FirstConstraint()
	if !ok || routes.Compatible(c.Name, p.Type.Name) {
		return
	}
	res.add(diagnostics.New(diagnostics.ConstraintMismatch, p.Location, c.Name, ph.Name, p.Type.Name))
}

func (res *Resolution) add(d models.Diagnostic) {
	res.Diagnostics = append(res.Diagnostics, d)
}
