package models

import "strings"

// Constraint is one entry of a placeholder constraint chain, e.g. min(1)
type Constraint struct {
	Name     string `json:"name" yaml:"name"`
	Argument string `json:"argument,omitempty" yaml:"argument,omitempty"`
	// HasArgument distinguishes min() from min
	HasArgument bool `json:"-" yaml:"-"`
}

// Placeholder is a named route parameter inside a segment
type Placeholder struct {
	Name        string       `json:"name" yaml:"name"`
	Constraints []Constraint `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	CatchAll    bool         `json:"catch_all,omitempty" yaml:"catch_all,omitempty"`
	Optional    bool         `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// FirstConstraint returns the constraint used for type compatibility checks
func (p Placeholder) FirstConstraint() (Constraint, bool) {
	if len(p.Constraints) == 0 {
		return Constraint{}, false
	}
	return p.Constraints[0], true
}

// Part is either literal text or a placeholder
type Part struct {
	Literal     string       `json:"literal,omitempty" yaml:"literal,omitempty"`
	Placeholder *Placeholder `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

// IsLiteral reports whether the part is literal text
func (p Part) IsLiteral() bool {
	return p.Placeholder == nil
}

// Segment is the text between two slashes
type Segment struct {
	Parts []Part `json:"parts" yaml:"parts"`
}

// IsLiteral reports whether the segment has no placeholders
func (s Segment) IsLiteral() bool {
	for _, p := range s.Parts {
		if !p.IsLiteral() {
			return false
		}
	}
	return true
}

// RouteTemplate is a parsed route pattern
type RouteTemplate struct {
	Raw      string    `json:"raw" yaml:"raw"`
	Segments []Segment `json:"segments" yaml:"segments"`
	// Invalid marks a template whose pattern failed to parse
	Invalid bool `json:"-" yaml:"-"`
}

// Placeholders returns every placeholder in template order
func (t RouteTemplate) Placeholders() []Placeholder {
	var out []Placeholder
	for _, seg := range t.Segments {
		for _, part := range seg.Parts {
			if part.Placeholder != nil {
				out = append(out, *part.Placeholder)
			}
		}
	}
	return out
}

// Placeholder looks up a placeholder by name; route names are case-insensitive
func (t RouteTemplate) Placeholder(name string) (Placeholder, bool) {
	for _, p := range t.Placeholders() {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Placeholder{}, false
}
