package loader

import (
	"go/ast"
	"strconv"
	"strings"

	"github.com/toyz/routeplan/internal/models"
)

// specialTypes are framework types that never come from user input
var specialTypes = map[string]models.SpecialKind{
	"context.Context":         models.SpecialCancellation,
	"*http.Request":           models.SpecialRequestContext,
	"echo.Context":            models.SpecialRequestContext,
	"*gin.Context":            models.SpecialRequestContext,
	"*fiber.Ctx":              models.SpecialRequestContext,
	"http.ResponseWriter":     models.SpecialResponseWriter,
	"io.Reader":               models.SpecialStream,
	"io.ReadCloser":           models.SpecialStream,
	"*io.PipeReader":          models.SpecialPipeReader,
	"*multipart.FileHeader":   models.SpecialFormFile,
	"[]*multipart.FileHeader": models.SpecialFormFiles,
	"*multipart.Form":         models.SpecialFormCollection,
}

var primitiveTypes = map[string]bool{
	"string": true, "bool": true, "byte": true, "rune": true,
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true, "uintptr": true,
	"float32": true, "float64": true,
}

// maxDepth bounds how far named local types are followed
const maxDepth = 8

// classifier describes parameter types using only the syntax of one package
type classifier struct {
	types     map[string]*ast.TypeSpec
	parseable map[string]bool
	position  func(ast.Node) models.SourceLocation
}

// describe classifies a parameter type. Struct members are captured one level deep.
func (c *classifier) describe(expr ast.Expr) models.TypeDescriptor {
	return c.describeAt(expr, 0, true)
}

func (c *classifier) describeAt(expr ast.Expr, depth int, members bool) models.TypeDescriptor {
	name := typeString(expr)
	if kind, ok := specialTypes[name]; ok {
		return models.TypeDescriptor{Name: name, Kind: models.KindSpecial, Special: kind}
	}
	if c.parseable[name] {
		return models.TypeDescriptor{Name: name, Kind: models.KindParseable}
	}

	switch t := expr.(type) {
	case *ast.ParenExpr:
		return c.describeAt(t.X, depth, members)

	case *ast.StarExpr:
		d := c.describeAt(t.X, depth, members)
		d.Name = name
		d.Nullable = true
		return d

	case *ast.Ellipsis:
		return c.sequence(name, t.Elt, depth, true)

	case *ast.ArrayType:
		return c.sequence(name, t.Elt, depth, t.Len == nil)

	case *ast.MapType:
		return models.TypeDescriptor{Name: name, Kind: models.KindComplex, Nullable: true, Constructible: true}

	case *ast.InterfaceType, *ast.FuncType, *ast.ChanType:
		return models.TypeDescriptor{Name: name, Kind: models.KindComplex, Nullable: true}

	case *ast.Ident:
		return c.named(t.Name, depth, members)

	case *ast.SelectorExpr:
		// declared elsewhere, so only its name is known
		return models.TypeDescriptor{Name: name, Kind: models.KindComplex, Constructible: true}

	case *ast.IndexExpr, *ast.IndexListExpr:
		return models.TypeDescriptor{Name: name, Kind: models.KindComplex, Constructible: true}

	case *ast.StructType:
		d := models.TypeDescriptor{Name: name, Kind: models.KindComplex, Constructible: true}
		if members {
			d.Members = c.members(t)
		}
		return d
	}

	return models.TypeDescriptor{Name: name, Kind: models.KindComplex}
}

// sequence describes slices and arrays. Scalar elements make a collection,
// anything else is bound as a whole.
func (c *classifier) sequence(name string, elt ast.Expr, depth int, nullable bool) models.TypeDescriptor {
	elem := c.describeAt(elt, depth+1, false)
	if elem.IsScalar() {
		return models.TypeDescriptor{Name: name, Kind: models.KindCollection, Elem: &elem, Nullable: nullable}
	}
	return models.TypeDescriptor{Name: name, Kind: models.KindComplex, Elem: &elem, Nullable: nullable, Constructible: true}
}

func (c *classifier) named(name string, depth int, members bool) models.TypeDescriptor {
	switch {
	case primitiveTypes[name]:
		return models.TypeDescriptor{Name: name, Kind: models.KindPrimitive}
	case name == "error" || name == "any":
		return models.TypeDescriptor{Name: name, Kind: models.KindComplex, Nullable: true}
	}

	spec, ok := c.types[name]
	if !ok || depth >= maxDepth {
		return models.TypeDescriptor{Name: name, Kind: models.KindComplex}
	}

	d := c.describeAt(spec.Type, depth+1, members)
	d.Name = name
	if spec.Assign.IsValid() {
		// aliases keep the underlying descriptor, including a special kind
		if under := typeString(spec.Type); under != name {
			d.Name = under
		}
	}
	return d
}

// members lists the exported fields of a struct. Embedded fields are skipped.
func (c *classifier) members(st *ast.StructType) []models.MemberDeclaration {
	var out []models.MemberDeclaration
	for _, field := range st.Fields.List {
		var tag string
		if field.Tag != nil {
			if unquoted, err := strconv.Unquote(field.Tag.Value); err == nil {
				tag = unquoted
			}
		}
		for _, n := range field.Names {
			if !n.IsExported() {
				continue
			}
			out = append(out, models.MemberDeclaration{
				Name:     n.Name,
				Type:     c.describeAt(field.Type, maxDepth-1, false),
				Tag:      tag,
				Location: c.position(n),
			})
		}
	}
	return out
}

// typeString renders a type expression the way it is written in source
func typeString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.ParenExpr:
		return typeString(t.X)
	case *ast.StarExpr:
		return "*" + typeString(t.X)
	case *ast.SelectorExpr:
		return typeString(t.X) + "." + t.Sel.Name
	case *ast.ArrayType:
		if t.Len == nil {
			return "[]" + typeString(t.Elt)
		}
		return "[" + exprString(t.Len) + "]" + typeString(t.Elt)
	case *ast.Ellipsis:
		return "[]" + typeString(t.Elt)
	case *ast.MapType:
		return "map[" + typeString(t.Key) + "]" + typeString(t.Value)
	case *ast.ChanType:
		switch t.Dir {
		case ast.SEND:
			return "chan<- " + typeString(t.Value)
		case ast.RECV:
			return "<-chan " + typeString(t.Value)
		}
		return "chan " + typeString(t.Value)
	case *ast.InterfaceType:
		if t.Methods == nil || len(t.Methods.List) == 0 {
			return "interface{}"
		}
		return "interface{...}"
	case *ast.StructType:
		if t.Fields == nil || len(t.Fields.List) == 0 {
			return "struct{}"
		}
		return "struct{...}"
	case *ast.FuncType:
		return "func(" + fieldTypes(t.Params) + ")" + results(t.Results)
	case *ast.IndexExpr:
		return typeString(t.X) + "[" + typeString(t.Index) + "]"
	case *ast.IndexListExpr:
		args := make([]string, len(t.Indices))
		for i, idx := range t.Indices {
			args[i] = typeString(idx)
		}
		return typeString(t.X) + "[" + strings.Join(args, ", ") + "]"
	}
	return exprString(expr)
}

func fieldTypes(list *ast.FieldList) string {
	if list == nil {
		return ""
	}
	var parts []string
	for _, f := range list.List {
		n := len(f.Names)
		if n == 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			parts = append(parts, typeString(f.Type))
		}
	}
	return strings.Join(parts, ", ")
}

func results(list *ast.FieldList) string {
	s := fieldTypes(list)
	switch {
	case s == "":
		return ""
	case strings.Contains(s, ", "):
		return " (" + s + ")"
	}
	return " " + s
}

func exprString(expr ast.Expr) string {
	if lit, ok := expr.(*ast.BasicLit); ok {
		return lit.Value
	}
	return "..."
}
