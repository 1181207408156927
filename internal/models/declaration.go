package models

import "fmt"

// SourceLocation identifies a position in a source file
type SourceLocation struct {
	File   string `json:"file" yaml:"file"`
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`
}

// String returns file:line:column
func (l SourceLocation) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Less orders locations by file, then line, then column
func (l SourceLocation) Less(o SourceLocation) bool {
	if l.File != o.File {
		return l.File < o.File
	}
	if l.Line != o.Line {
		return l.Line < o.Line
	}
	return l.Column < o.Column
}

// TypeDescriptor describes the Go type of a parameter or member
type TypeDescriptor struct {
	Name          string              `json:"name" yaml:"name"`
	Kind          TypeKind            `json:"kind" yaml:"kind"`
	Elem          *TypeDescriptor     `json:"elem,omitempty" yaml:"elem,omitempty"`
	Special       SpecialKind         `json:"special,omitempty" yaml:"special,omitempty"`
	Nullable      bool                `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Constructible bool                `json:"constructible,omitempty" yaml:"constructible,omitempty"`
	Members       []MemberDeclaration `json:"members,omitempty" yaml:"members,omitempty"`
}

// IsScalar reports whether the type binds like a single primitive value
func (t TypeDescriptor) IsScalar() bool {
	return t.Kind == KindPrimitive || t.Kind == KindParseable
}

// IsString reports whether the type is a (possibly nullable) string
func (t TypeDescriptor) IsString() bool {
	return t.Kind == KindPrimitive && (t.Name == "string" || t.Name == "*string")
}

// MemberDeclaration is an exported field of a struct type
type MemberDeclaration struct {
	Name     string         `json:"name" yaml:"name"`
	Type     TypeDescriptor `json:"type" yaml:"type"`
	Tag      string         `json:"tag,omitempty" yaml:"tag,omitempty"`
	Location SourceLocation `json:"location" yaml:"location"`
}

// BindingAnnotation names the source requested by an explicit binding annotation
type BindingAnnotation int

const (
	BindRoute BindingAnnotation = iota
	BindQuery
	BindHeader
	BindBody
	BindForm
	BindService
	BindKeyedService
	BindGroup
)

var bindingAnnotationNames = []string{"route", "query", "header", "body", "form", "service", "keyed", "group"}

// String returns the annotation keyword
func (b BindingAnnotation) String() string {
	if int(b) < 0 || int(b) >= len(bindingAnnotationNames) {
		return "unknown"
	}
	return bindingAnnotationNames[b]
}

// MarshalText implements encoding.TextMarshaler
func (b BindingAnnotation) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// ParseBindingAnnotation converts an annotation keyword to a BindingAnnotation
func ParseBindingAnnotation(s string) (BindingAnnotation, error) {
	switch s {
	case "keyed_service", "keyedservice":
		return BindKeyedService, nil
	}
	for i, name := range bindingAnnotationNames {
		if name == s {
			return BindingAnnotation(i), nil
		}
	}
	return 0, fmt.Errorf("unknown binding source: %s", s)
}

// ExplicitBinding is one explicit binding annotation attached to a parameter
type ExplicitBinding struct {
	Source     BindingAnnotation `json:"source" yaml:"source"`
	Name       string            `json:"name,omitempty" yaml:"name,omitempty"`
	ServiceKey string            `json:"service_key,omitempty" yaml:"service_key,omitempty"`
	Location   SourceLocation    `json:"location" yaml:"location"`
}

// ParameterDeclaration is a single handler parameter as captured from source
type ParameterDeclaration struct {
	Name       string            `json:"name" yaml:"name"`
	Type       TypeDescriptor    `json:"type" yaml:"type"`
	Bindings   []ExplicitBinding `json:"bindings,omitempty" yaml:"bindings,omitempty"`
	HasDefault bool              `json:"has_default,omitempty" yaml:"has_default,omitempty"`
	Default    string            `json:"default,omitempty" yaml:"default,omitempty"`
	Location   SourceLocation    `json:"location" yaml:"location"`
}

// ReturnDescriptor describes the handler's return signature
type ReturnDescriptor struct {
	SuccessType   string `json:"success_type,omitempty" yaml:"success_type,omitempty"`
	ReturnsError  bool   `json:"returns_error" yaml:"returns_error"`
	SuccessStatus int    `json:"success_status,omitempty" yaml:"success_status,omitempty"`
}

// MethodAnnotations holds handler-level directives and metadata
type MethodAnnotations struct {
	Middleware      []string `json:"middleware,omitempty" yaml:"middleware,omitempty"`
	Tags            []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	ErrorCategories []string `json:"error_categories,omitempty" yaml:"error_categories,omitempty"`
	CustomCodes     []int    `json:"custom_codes,omitempty" yaml:"custom_codes,omitempty"`
	// Invalid holds annotations that could not be parsed; each one becomes a diagnostic
	Invalid []InvalidAnnotation `json:"invalid,omitempty" yaml:"invalid,omitempty"`
	// Unattached holds binding annotations naming parameters the handler does not declare
	Unattached []ExplicitBindingRef `json:"unattached,omitempty" yaml:"unattached,omitempty"`
}

// InvalidAnnotation is an annotation comment that failed to parse or validate
type InvalidAnnotation struct {
	Raw      string         `json:"raw" yaml:"raw"`
	Reason   string         `json:"reason" yaml:"reason"`
	Location SourceLocation `json:"location" yaml:"location"`
}

// ExplicitBindingRef is a binding annotation together with the parameter name it targets
type ExplicitBindingRef struct {
	Parameter string          `json:"parameter" yaml:"parameter"`
	Binding   ExplicitBinding `json:"binding" yaml:"binding"`
}

// HandlerDeclaration is one annotated handler; immutable once captured
type HandlerDeclaration struct {
	Name        string                 `json:"name" yaml:"name"`
	Package     string                 `json:"package,omitempty" yaml:"package,omitempty"`
	Method      string                 `json:"method" yaml:"method"`
	Pattern     string                 `json:"pattern" yaml:"pattern"`
	Parameters  []ParameterDeclaration `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Return      ReturnDescriptor       `json:"return" yaml:"return"`
	Annotations MethodAnnotations      `json:"annotations" yaml:"annotations"`
	Location    SourceLocation         `json:"location" yaml:"location"`
}

// QualifiedName returns package-qualified handler name
func (h HandlerDeclaration) QualifiedName() string {
	if h.Package == "" {
		return h.Name
	}
	return h.Package + "." + h.Name
}
