package routes

import (
	"sort"
	"strings"
)

// ConstraintSpec describes a known inline route constraint
type ConstraintSpec struct {
	Name    string
	MinArgs int
	MaxArgs int
	// Types lists the Go types the constraint is compatible with. Nil means any.
	Types []string
}

var (
	integerTypes = []string{"int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64"}
	floatTypes   = []string{"float32", "float64"}
	stringTypes  = []string{"string"}
)

var knownConstraints = map[string]ConstraintSpec{
	"int":       {Name: "int", Types: []string{"int", "int32", "int64"}},
	"long":      {Name: "long", Types: []string{"int", "int64"}},
	"bool":      {Name: "bool", Types: []string{"bool"}},
	"datetime":  {Name: "datetime", Types: []string{"time.Time"}},
	"decimal":   {Name: "decimal", Types: floatTypes},
	"double":    {Name: "double", Types: []string{"float64"}},
	"float":     {Name: "float", Types: floatTypes},
	"guid":      {Name: "guid", Types: []string{"uuid.UUID", "string"}},
	"alpha":     {Name: "alpha", Types: stringTypes},
	"minlength": {Name: "minlength", MinArgs: 1, MaxArgs: 1, Types: stringTypes},
	"maxlength": {Name: "maxlength", MinArgs: 1, MaxArgs: 1, Types: stringTypes},
	"length":    {Name: "length", MinArgs: 1, MaxArgs: 2, Types: stringTypes},
	"min":       {Name: "min", MinArgs: 1, MaxArgs: 1, Types: integerTypes},
	"max":       {Name: "max", MinArgs: 1, MaxArgs: 1, Types: integerTypes},
	"range":     {Name: "range", MinArgs: 2, MaxArgs: 2, Types: integerTypes},
	"regex":     {Name: "regex", MinArgs: 1, MaxArgs: 1, Types: stringTypes},
	"required":  {Name: "required"},
	"nonfile":   {Name: "nonfile", Types: stringTypes},
}

// LookupConstraint returns the spec for a constraint name (case-insensitive)
func LookupConstraint(name string) (ConstraintSpec, bool) {
	spec, ok := knownConstraints[strings.ToLower(name)]
	return spec, ok
}

// KnownConstraints returns the names of every recognised constraint, sorted
func KnownConstraints() []string {
	names := make([]string, 0, len(knownConstraints))
	for name := range knownConstraints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compatible reports whether a constraint accepts values of the given Go type.
// Unknown constraints and pointer types are judged by their base.
func Compatible(constraint, typeName string) bool {
	spec, ok := LookupConstraint(constraint)
	if !ok || spec.Types == nil {
		return true
	}
	base := strings.TrimPrefix(typeName, "*")
	for _, t := range spec.Types {
		if t == base {
			return true
		}
	}
	return false
}

// argCount returns the number of comma-separated arguments; regex counts as one
func argCount(spec ConstraintSpec, arg string) int {
	if spec.MaxArgs == 1 {
		return 1
	}
	return len(strings.Split(arg, ","))
}
