package loader

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"strings"

	"github.com/toyz/routeplan/internal/annotations"
	"github.com/toyz/routeplan/internal/diagnostics"
	"github.com/toyz/routeplan/internal/models"
)

// controller is the shared configuration a controller annotation gives its methods
type controller struct {
	prefix     string
	middleware []string
	tags       []string
}

// annotation is one annotation comment with its parse outcome
type annotation struct {
	raw    string
	loc    models.SourceLocation
	parsed *annotations.ParsedAnnotation
	err    error
}

func (a annotation) invalid() models.InvalidAnnotation {
	loc := a.loc
	var annErr annotations.AnnotationError
	if errors.As(a.err, &annErr) {
		loc = annErr.Location()
	}
	return models.InvalidAnnotation{Raw: a.raw, Reason: annotations.Reason(a.err), Location: loc}
}

// unit is one package to load
type unit struct {
	path  string
	name  string
	files []*ast.File
}

// scope holds what one package contributes while it is being loaded
type scope struct {
	l           *Loader
	unit        unit
	res         *Result
	types       map[string]*ast.TypeSpec
	parseable   map[string]bool
	shared      map[string]bool
	controllers map[string]controller
	attached    map[*ast.CommentGroup]bool
	funcs       []*ast.FuncDecl
	pending     map[*ast.FuncDecl][]annotation
}

// load extracts handlers from units. Every package is prepared before any
// handler is built so parsers declared in one package apply to all of them.
func (l *Loader) load(units []unit, res *Result) {
	shared := make(map[string]bool)
	for _, t := range l.parseable {
		shared[t] = true
	}

	scopes := make([]*scope, len(units))
	for i, u := range units {
		scopes[i] = l.prepare(u, res, shared)
	}
	for _, s := range scopes {
		s.build()
	}
	res.finish()
}

// prepare indexes types, controllers, middleware and parsers of one package
func (l *Loader) prepare(u unit, res *Result, shared map[string]bool) *scope {
	s := &scope{
		l:           l,
		unit:        u,
		res:         res,
		types:       make(map[string]*ast.TypeSpec),
		parseable:   make(map[string]bool),
		shared:      shared,
		controllers: make(map[string]controller),
		attached:    make(map[*ast.CommentGroup]bool),
		pending:     make(map[*ast.FuncDecl][]annotation),
	}

	for _, file := range u.files {
		for _, decl := range file.Decls {
			switch d := decl.(type) {
			case *ast.GenDecl:
				s.typeDecl(d)
			case *ast.FuncDecl:
				if isUnmarshalText(d) {
					s.addParseable(receiverName(d))
				}
				anns := s.comments(d.Doc)
				if len(anns) == 0 {
					continue
				}
				s.pending[d] = s.funcLevel(d, anns)
				s.funcs = append(s.funcs, d)
			}
		}
	}
	return s
}

// build creates the handler declarations and reports stray annotations
func (s *scope) build() {
	parseable := make(map[string]bool, len(s.shared)+len(s.parseable))
	for t := range s.shared {
		parseable[t] = true
	}
	for t := range s.parseable {
		parseable[t] = true
	}

	cls := &classifier{
		types:     s.types,
		parseable: parseable,
		position:  func(n ast.Node) models.SourceLocation { return s.l.position(n.Pos()) },
	}
	for _, fn := range s.funcs {
		s.handler(fn, s.pending[fn], cls)
	}
	for _, file := range s.unit.files {
		s.stray(file)
	}
}

// addParseable marks a type as parseable here, and under its qualified
// name for other packages
func (s *scope) addParseable(name string) {
	s.parseable[name] = true
	if !strings.Contains(name, ".") {
		name = s.unit.name + "." + name
	}
	s.shared[name] = true
}

// comments parses every annotation line of a doc comment
func (s *scope) comments(doc *ast.CommentGroup) []annotation {
	if doc == nil {
		return nil
	}
	s.attached[doc] = true

	var out []annotation
	for _, c := range doc.List {
		if !annotations.IsAnnotation(c.Text) {
			continue
		}
		loc := s.l.position(c.Slash)
		parsed, err := s.l.parser.ParseAnnotation(c.Text, loc)
		out = append(out, annotation{raw: strings.TrimSpace(c.Text), loc: loc, parsed: parsed, err: err})
	}
	return out
}

func (s *scope) typeDecl(d *ast.GenDecl) {
	if d.Tok != token.TYPE {
		return
	}
	for _, spec := range d.Specs {
		ts, ok := spec.(*ast.TypeSpec)
		if !ok {
			continue
		}
		s.types[ts.Name.Name] = ts

		doc := ts.Doc
		if doc == nil && len(d.Specs) == 1 {
			doc = d.Doc
		}
		for _, a := range s.comments(doc) {
			if a.err != nil {
				s.report(a.invalid())
				continue
			}
			switch a.parsed.Type {
			case annotations.ControllerAnnotation:
				s.controllers[ts.Name.Name] = controller{
					prefix:     a.parsed.GetString("Prefix"),
					middleware: a.parsed.GetStringSlice("Middleware"),
					tags:       a.parsed.GetStringSlice("Tags"),
				}
			case annotations.MiddlewareAnnotation:
				s.res.Middleware = append(s.res.Middleware, a.parsed.GetString("name"))
			default:
				s.misplaced(a, "a type declaration")
			}
		}
	}
}

// funcLevel consumes annotations that describe the function itself rather
// than a handler and returns the rest
func (s *scope) funcLevel(fn *ast.FuncDecl, anns []annotation) []annotation {
	var rest []annotation
	for _, a := range anns {
		if a.err != nil {
			rest = append(rest, a)
			continue
		}
		switch a.parsed.Type {
		case annotations.MiddlewareAnnotation:
			s.res.Middleware = append(s.res.Middleware, a.parsed.GetString("name"))
		case annotations.ParserAnnotation:
			s.parserFunc(fn, a)
		case annotations.ControllerAnnotation:
			s.misplaced(a, "a function")
		default:
			rest = append(rest, a)
		}
	}
	return rest
}

// parserFunc registers a parser annotation. The function must look like
// func(..., string) (T, error).
func (s *scope) parserFunc(fn *ast.FuncDecl, a annotation) {
	params := flatten(fn.Type.Params)
	res := flatten(fn.Type.Results)
	if len(params) == 0 || typeString(params[len(params)-1]) != "string" ||
		len(res) != 2 || typeString(res[1]) != "error" {
		s.report(models.InvalidAnnotation{
			Raw:      a.raw,
			Reason:   fmt.Sprintf("parser %s must have signature func(..., string) (T, error)", fn.Name.Name),
			Location: a.loc,
		})
		return
	}
	name := a.parsed.GetString("type")
	s.addParseable(name)
	s.res.Parsers = append(s.res.Parsers, name)
}

// handler builds the declaration of a function carrying a route annotation
func (s *scope) handler(fn *ast.FuncDecl, anns []annotation, cls *classifier) {
	var route *annotations.ParsedAnnotation
	var invalid []models.InvalidAnnotation
	var rest []*annotations.ParsedAnnotation
	for _, a := range anns {
		switch {
		case a.err != nil:
			invalid = append(invalid, a.invalid())
		case a.parsed.Type != annotations.RouteAnnotation:
			rest = append(rest, a.parsed)
		case route != nil:
			invalid = append(invalid, models.InvalidAnnotation{
				Raw:      a.raw,
				Reason:   fmt.Sprintf("handler already has a route annotation at %s", route.Location),
				Location: a.loc,
			})
		default:
			route = a.parsed
		}
	}

	if route == nil {
		for _, inv := range invalid {
			s.report(inv)
		}
		if len(invalid) > 0 {
			return
		}
		for _, a := range rest {
			s.report(models.InvalidAnnotation{
				Raw:      a.Raw,
				Reason:   fmt.Sprintf("%s annotation needs a route annotation on the same function", a.Type),
				Location: a.Location,
			})
		}
		return
	}

	decl := models.HandlerDeclaration{
		Name:       fn.Name.Name,
		Package:    s.unit.path,
		Method:     strings.ToUpper(route.GetString("method")),
		Pattern:    route.GetString("path"),
		Parameters: s.parameters(fn, cls),
		Return:     returnDescriptor(fn),
		Location:   s.l.position(fn.Name.Pos()),
	}
	decl.Annotations.Invalid = invalid
	if route.HasParameter("Status") {
		decl.Return.SuccessStatus = route.GetInt("Status")
	}

	var ctrl controller
	if fn.Recv != nil {
		recv := receiverName(fn)
		decl.Name = recv + "." + fn.Name.Name
		ctrl = s.controllers[recv]
	}
	decl.Pattern = joinPath(ctrl.prefix, decl.Pattern)
	decl.Annotations.Middleware = merge(ctrl.middleware, route.GetStringSlice("Middleware"))
	decl.Annotations.Tags = merge(ctrl.tags, route.GetStringSlice("Tags"))

	for _, a := range rest {
		s.apply(&decl, a)
	}
	s.res.Declarations = append(s.res.Declarations, decl)
}

// apply attaches one parameter or response annotation to decl
func (s *scope) apply(decl *models.HandlerDeclaration, a *annotations.ParsedAnnotation) {
	ann := &decl.Annotations
	switch a.Type {
	case annotations.BindAnnotation:
		source, err := models.ParseBindingAnnotation(a.GetString("source"))
		if err != nil {
			ann.Invalid = append(ann.Invalid, models.InvalidAnnotation{Raw: a.Raw, Reason: err.Error(), Location: a.Location})
			return
		}
		binding := models.ExplicitBinding{
			Source:     source,
			Name:       a.GetString("Name"),
			ServiceKey: a.GetString("Key"),
			Location:   a.Location,
		}
		name := a.GetString("param")
		if p := findParameter(decl.Parameters, name); p != nil {
			p.Bindings = append(p.Bindings, binding)
			return
		}
		ann.Unattached = append(ann.Unattached, models.ExplicitBindingRef{Parameter: name, Binding: binding})

	case annotations.DefaultAnnotation:
		name := a.GetString("param")
		p := findParameter(decl.Parameters, name)
		if p == nil {
			ann.Invalid = append(ann.Invalid, models.InvalidAnnotation{
				Raw:      a.Raw,
				Reason:   fmt.Sprintf("default names parameter %q which the handler does not declare", name),
				Location: a.Location,
			})
			return
		}
		if p.HasDefault {
			ann.Invalid = append(ann.Invalid, models.InvalidAnnotation{
				Raw:      a.Raw,
				Reason:   fmt.Sprintf("parameter %q already has a default", name),
				Location: a.Location,
			})
			return
		}
		p.HasDefault = true
		p.Default = a.GetString("value")

	case annotations.ErrorsAnnotation:
		ann.ErrorCategories = append(ann.ErrorCategories, a.Rest...)
		ann.CustomCodes = append(ann.CustomCodes, a.GetIntSlice("Codes")...)

	default:
		ann.Invalid = append(ann.Invalid, models.InvalidAnnotation{
			Raw:      a.Raw,
			Reason:   fmt.Sprintf("%s annotation does not apply to a handler", a.Type),
			Location: a.Location,
		})
	}
}

func (s *scope) parameters(fn *ast.FuncDecl, cls *classifier) []models.ParameterDeclaration {
	var params []models.ParameterDeclaration
	if fn.Type.Params == nil {
		return nil
	}
	for _, field := range fn.Type.Params.List {
		typ := cls.describe(field.Type)
		if len(field.Names) == 0 {
			params = append(params, models.ParameterDeclaration{
				Name:     fmt.Sprintf("param%d", len(params)),
				Type:     typ,
				Location: s.l.position(field.Type.Pos()),
			})
			continue
		}
		for _, n := range field.Names {
			name := n.Name
			if name == "_" {
				name = fmt.Sprintf("param%d", len(params))
			}
			params = append(params, models.ParameterDeclaration{
				Name:     name,
				Type:     typ,
				Location: s.l.position(n.Pos()),
			})
		}
	}
	return params
}

// stray reports annotation lines that are not part of any declaration's doc comment
func (s *scope) stray(file *ast.File) {
	for _, group := range file.Comments {
		if s.attached[group] {
			continue
		}
		for _, c := range group.List {
			if !annotations.IsAnnotation(c.Text) {
				continue
			}
			s.report(models.InvalidAnnotation{
				Raw:      strings.TrimSpace(c.Text),
				Reason:   "annotation is not attached to a declaration",
				Location: s.l.position(c.Slash),
			})
		}
	}
}

func (s *scope) misplaced(a annotation, where string) {
	s.report(models.InvalidAnnotation{
		Raw:      a.raw,
		Reason:   fmt.Sprintf("%s annotation does not apply to %s", a.parsed.Type, where),
		Location: a.loc,
	})
}

func (s *scope) report(inv models.InvalidAnnotation) {
	s.res.Diagnostics = append(s.res.Diagnostics, diagnostics.New(diagnostics.InvalidAnnotation, inv.Location, inv.Raw, inv.Reason))
}

func returnDescriptor(fn *ast.FuncDecl) models.ReturnDescriptor {
	var ret models.ReturnDescriptor
	results := flatten(fn.Type.Results)
	if n := len(results); n > 0 && typeString(results[n-1]) == "error" {
		ret.ReturnsError = true
		results = results[:n-1]
	}
	if len(results) > 0 {
		ret.SuccessType = typeString(results[0])
	}
	return ret
}

// flatten lists one type expression per declared name
func flatten(list *ast.FieldList) []ast.Expr {
	if list == nil {
		return nil
	}
	var out []ast.Expr
	for _, f := range list.List {
		n := len(f.Names)
		if n == 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			out = append(out, f.Type)
		}
	}
	return out
}

func receiverName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return ""
	}
	expr := fn.Recv.List[0].Type
	for {
		switch t := expr.(type) {
		case *ast.StarExpr:
			expr = t.X
		case *ast.IndexExpr:
			expr = t.X
		case *ast.IndexListExpr:
			expr = t.X
		case *ast.ParenExpr:
			expr = t.X
		case *ast.Ident:
			return t.Name
		default:
			return typeString(expr)
		}
	}
}

// isUnmarshalText reports whether fn is an UnmarshalText([]byte) error method
func isUnmarshalText(fn *ast.FuncDecl) bool {
	if fn.Recv == nil || fn.Name.Name != "UnmarshalText" {
		return false
	}
	params, results := flatten(fn.Type.Params), flatten(fn.Type.Results)
	return len(params) == 1 && typeString(params[0]) == "[]byte" &&
		len(results) == 1 && typeString(results[0]) == "error"
}

func findParameter(params []models.ParameterDeclaration, name string) *models.ParameterDeclaration {
	for i := range params {
		if params[i].Name == name {
			return &params[i]
		}
	}
	return nil
}

// joinPath prefixes a route path with a controller prefix
func joinPath(prefix, path string) string {
	prefix = strings.TrimRight(prefix, "/")
	switch {
	case prefix == "":
		return path
	case path == "" || path == "/":
		return prefix
	case strings.HasPrefix(path, "/"):
		return prefix + path
	}
	return prefix + "/" + path
}

// merge concatenates a and b, dropping repeats and keeping first occurrence order
func merge(a, b []string) []string {
	var out []string
	seen := make(map[string]bool, len(a)+len(b))
	for _, s := range append(append([]string(nil), a...), b...) {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
