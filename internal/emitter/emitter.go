package emitter

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/toyz/routeplan/internal/diagnostics"
	"github.com/toyz/routeplan/internal/models"
	"github.com/toyz/routeplan/internal/routes"
)

// namespace seeds descriptor ids so they are stable across runs and machines
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/toyz/routeplan/endpoint"))

// Provisional is a descriptor assembled for one endpoint before the batch
// wide passes have run
type Provisional struct {
	Descriptor models.EndpointDescriptor
	// Template is kept with Invalid intact for the duplicate pass
	Template models.RouteTemplate
}

// NewProvisional assembles the descriptor of one endpoint from its analysis
func NewProvisional(decl models.HandlerDeclaration, tmpl models.RouteTemplate, plan []diagnostics.ResolvedParameter, shape models.ResponseShape, diags []models.Diagnostic) Provisional {
	bindings := make([]models.ParameterBinding, 0, len(plan))
	for _, p := range plan {
		if p.Source == nil {
			continue
		}
		bindings = append(bindings, models.ParameterBinding{
			Name:       p.Parameter.Name,
			Type:       p.Parameter.Type.Name,
			Nullable:   p.Parameter.Type.Nullable,
			HasDefault: p.Parameter.HasDefault,
			Source:     *p.Source,
		})
	}

	d := models.EndpointDescriptor{
		Method:     strings.ToUpper(decl.Method),
		Route:      decl.Pattern,
		Template:   tmpl,
		Handler:    decl.QualifiedName(),
		Bindings:   bindings,
		Response:   shape,
		Middleware: append([]string(nil), decl.Annotations.Middleware...),
		Tags:       append([]string(nil), decl.Annotations.Tags...),
		Location:   decl.Location,
	}
	if !tmpl.Invalid {
		d.Route = routes.Render(tmpl)
		d.NormalizedRoute = routes.Normalize(tmpl)
	}
	d.Diagnostics = diagnostics.Dedup(append([]models.Diagnostic(nil), diags...))

	return Provisional{Descriptor: d, Template: tmpl}
}

// Attach adds batch-level diagnostics to the provisional descriptor. The
// existing slice is copied since provisionals may be shared through a cache.
func (p *Provisional) Attach(diags ...models.Diagnostic) {
	merged := make([]models.Diagnostic, 0, len(p.Descriptor.Diagnostics)+len(diags))
	merged = append(merged, p.Descriptor.Diagnostics...)
	p.Descriptor.Diagnostics = diagnostics.Dedup(append(merged, diags...))
}

// Valid reports whether the endpoint carries no Error diagnostic
func (p Provisional) Valid() bool {
	return !diagnostics.HasErrors(p.Descriptor.Diagnostics)
}

// Emit builds the routing table from every valid provisional descriptor,
// ordered by normalised route, method and location.
func Emit(provisionals []Provisional) models.RoutingTable {
	endpoints := make([]models.EndpointDescriptor, 0, len(provisionals))
	for _, p := range provisionals {
		if !p.Valid() {
			continue
		}
		d := p.Descriptor
		d.ID = EndpointID(d.Method, d.NormalizedRoute)
		endpoints = append(endpoints, d)
	}

	sort.SliceStable(endpoints, func(i, j int) bool {
		a, b := endpoints[i], endpoints[j]
		if a.NormalizedRoute != b.NormalizedRoute {
			return a.NormalizedRoute < b.NormalizedRoute
		}
		if a.Method != b.Method {
			return a.Method < b.Method
		}
		return a.Location.Less(b.Location)
	})

	return models.RoutingTable{Endpoints: endpoints}
}

// EndpointID derives the deterministic id of an endpoint
func EndpointID(method, normalizedRoute string) string {
	return uuid.NewSHA1(namespace, []byte(strings.ToUpper(method)+" "+normalizedRoute)).String()
}
