package annotations

import (
	"fmt"
	"strings"

	"github.com/toyz/routeplan/internal/models"
)

// Prefix introduces every annotation comment
const Prefix = "//routeplan::"

// AnnotationType represents the kind of annotation
type AnnotationType int

const (
	RouteAnnotation AnnotationType = iota
	BindAnnotation
	DefaultAnnotation
	ErrorsAnnotation
	ControllerAnnotation
	MiddlewareAnnotation
	ParserAnnotation
)

var annotationTypeNames = []string{"route", "bind", "default", "errors", "controller", "middleware", "parser"}

// String returns the string representation of the annotation type
func (a AnnotationType) String() string {
	if int(a) < 0 || int(a) >= len(annotationTypeNames) {
		return "unknown"
	}
	return annotationTypeNames[a]
}

// ParseAnnotationType converts the annotation keyword to an AnnotationType
func ParseAnnotationType(s string) (AnnotationType, error) {
	for i, name := range annotationTypeNames {
		if name == s {
			return AnnotationType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown annotation type: %s", s)
}

// ParsedAnnotation is one annotation comment after parsing and schema validation
type ParsedAnnotation struct {
	Type AnnotationType
	// Parameters holds positional arguments under their schema names and
	// flags under their flag names, converted to the declared type
	Parameters map[string]interface{}
	// Rest holds positional arguments beyond the named ones for variadic schemas
	Rest     []string
	Location models.SourceLocation
	Raw      string
}

// GetString returns a string parameter value with optional default
func (p *ParsedAnnotation) GetString(name string, defaultValue ...string) string {
	if v, ok := p.Parameters[name].(string); ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// GetInt returns an integer parameter value with optional default
func (p *ParsedAnnotation) GetInt(name string, defaultValue ...int) int {
	if v, ok := p.Parameters[name].(int); ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return 0
}

// GetStringSlice returns a string slice parameter value
func (p *ParsedAnnotation) GetStringSlice(name string) []string {
	v, _ := p.Parameters[name].([]string)
	return v
}

// GetIntSlice returns an integer slice parameter value
func (p *ParsedAnnotation) GetIntSlice(name string) []int {
	v, _ := p.Parameters[name].([]int)
	return v
}

// HasParameter checks if a parameter was given
func (p *ParsedAnnotation) HasParameter(name string) bool {
	_, ok := p.Parameters[name]
	return ok
}

// ParameterType represents the type of a parameter value
type ParameterType int

const (
	StringType ParameterType = iota
	BoolType
	IntType
	StringSliceType
	IntSliceType
)

// String returns the string representation of the parameter type
func (p ParameterType) String() string {
	switch p {
	case StringType:
		return "string"
	case BoolType:
		return "bool"
	case IntType:
		return "int"
	case StringSliceType:
		return "[]string"
	case IntSliceType:
		return "[]int"
	default:
		return "unknown"
	}
}

// ParameterSpec defines one positional argument or flag
type ParameterSpec struct {
	Type        ParameterType
	Required    bool
	Description string
	Validator   func(interface{}) error
}

// PositionalSpec is a named positional argument
type PositionalSpec struct {
	Name string
	ParameterSpec
}

// CustomValidator checks an annotation as a whole
type CustomValidator func(*ParsedAnnotation) error

// AnnotationSchema defines the accepted shape of an annotation kind
type AnnotationSchema struct {
	Type        AnnotationType
	Description string
	Positional  []PositionalSpec
	// Variadic accepts extra positional arguments into ParsedAnnotation.Rest
	Variadic   bool
	Parameters map[string]ParameterSpec
	Validators []CustomValidator
	Examples   []string
}

// usage renders the schema's synopsis for hints
func (s AnnotationSchema) usage() string {
	var b strings.Builder
	b.WriteString(Prefix + s.Type.String())
	for _, p := range s.Positional {
		if p.Required {
			fmt.Fprintf(&b, " <%s>", p.Name)
		} else {
			fmt.Fprintf(&b, " [%s]", p.Name)
		}
	}
	if s.Variadic {
		b.WriteString(" ...")
	}
	for _, name := range sortedKeys(s.Parameters) {
		fmt.Fprintf(&b, " [-%s]", name)
	}
	return b.String()
}
