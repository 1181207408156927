package binding

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/toyz/routeplan/internal/diagnostics"
	"github.com/toyz/routeplan/internal/models"
)

// TagKey is the struct tag read from members of a parameter group
const TagKey = "bind"

// composite expands a group-marked parameter one level into its members.
// Members of a group never expand further.
func (r *Resolver) composite(res *Resolution, p models.ParameterDeclaration, tmpl models.RouteTemplate, method string) *models.BindingSource {
	t := p.Type
	switch {
	case t.Kind != models.KindComplex || !t.Constructible:
		res.add(diagnostics.New(diagnostics.CompositeNotConstructible, p.Location, p.Name, t.Name, "type cannot be constructed"))
		return nil
	case len(t.Members) == 0:
		res.add(diagnostics.New(diagnostics.CompositeNotConstructible, p.Location, p.Name, t.Name, "type has no exported members"))
		return nil
	}

	src := &models.BindingSource{Kind: models.SourceComposite}
	skipped := 0
	for _, m := range t.Members {
		decl, skip, err := memberDeclaration(m)
		if err != nil {
			res.add(diagnostics.New(diagnostics.InvalidAnnotation, m.Location, m.Tag, err.Error()))
			continue
		}
		if skip {
			skipped++
			continue
		}
		if len(decl.Bindings) == 1 && decl.Bindings[0].Source == models.BindGroup {
			res.add(diagnostics.New(diagnostics.NestedComposite, m.Location, m.Name, p.Name))
			continue
		}

		child := r.resolve(res, decl, tmpl, method, true)
		if child == nil {
			continue
		}
		src.Children = append(src.Children, models.BoundMember{
			Path:      p.Name + "." + m.Name,
			Parameter: decl,
			Type:      m.Type.Name,
			Source:    *child,
		})
	}
	if skipped == len(t.Members) {
		res.add(diagnostics.New(diagnostics.CompositeNotConstructible, p.Location, p.Name, t.Name, "every member is excluded with "+TagKey+`:"-"`))
		return nil
	}
	return src
}

// memberDeclaration turns a struct member into a parameter declaration. The
// key is the lower camel case member name unless the bind tag names it. A tag
// of "-" excludes the member and reports skip.
func memberDeclaration(m models.MemberDeclaration) (decl models.ParameterDeclaration, skip bool, err error) {
	decl = models.ParameterDeclaration{
		Name:     strcase.ToLowerCamel(m.Name),
		Type:     m.Type,
		Location: m.Location,
	}

	tag, ok := reflect.StructTag(m.Tag).Lookup(TagKey)
	switch {
	case tag == "-":
		return decl, true, nil
	case !ok || tag == "":
		return decl, false, nil
	}

	source, options, _ := strings.Cut(tag, ",")
	binding := models.ExplicitBinding{Location: m.Location}
	for _, opt := range strings.Split(options, ",") {
		if opt == "" {
			continue
		}
		k, v, found := strings.Cut(opt, "=")
		if !found || v == "" {
			return decl, false, fmt.Errorf("malformed %s tag option %q", TagKey, opt)
		}
		switch k {
		case "name":
			binding.Name = v
		case "key":
			binding.ServiceKey = v
		default:
			return decl, false, fmt.Errorf("unknown %s tag option %q", TagKey, k)
		}
	}

	if source == "" {
		// name override only, source is inferred
		if binding.Name != "" {
			decl.Name = binding.Name
		}
		return decl, false, nil
	}

	kind, err := models.ParseBindingAnnotation(source)
	if err != nil {
		return decl, false, err
	}
	binding.Source = kind
	decl.Bindings = []models.ExplicitBinding{binding}
	return decl, false, nil
}
