package routes

import (
	"errors"
	"fmt"
	"strings"

	"github.com/toyz/routeplan/internal/diagnostics"
	"github.com/toyz/routeplan/internal/models"
)

// Parse parses a route pattern into a RouteTemplate.
//
// A malformed pattern yields a single EOE005 diagnostic and a template with
// no segments. Unknown constraint names yield EOE010 warnings and do not
// invalidate the template.
func Parse(pattern string, loc models.SourceLocation) (models.RouteTemplate, []models.Diagnostic) {
	p := &parser{loc: loc}
	tmpl := models.RouteTemplate{Raw: pattern}

	segments, err := p.parse(pattern)
	if err == nil {
		err = validateStructure(segments)
	}
	if err != nil {
		tmpl.Invalid = true
		return tmpl, []models.Diagnostic{diagnostics.New(diagnostics.InvalidRoutePattern, loc, pattern, err.Error())}
	}

	tmpl.Segments = segments
	return tmpl, p.warnings
}

type parser struct {
	loc      models.SourceLocation
	warnings []models.Diagnostic
}

func (p *parser) parse(pattern string) ([]models.Segment, error) {
	src := strings.TrimPrefix(pattern, "/")
	if len(src) > 0 {
		src = strings.TrimSuffix(src, "/")
	}
	if src == "" {
		return nil, nil
	}

	var (
		segments []models.Segment
		parts    []models.Part
		lit      strings.Builder
	)

	flushLiteral := func() {
		if lit.Len() > 0 {
			parts = append(parts, models.Part{Literal: lit.String()})
			lit.Reset()
		}
	}
	flushSegment := func() error {
		flushLiteral()
		if len(parts) == 0 {
			return errors.New("empty path segment")
		}
		segments = append(segments, models.Segment{Parts: parts})
		parts = nil
		return nil
	}

	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '{' && i+1 < len(src) && src[i+1] == '{':
			lit.WriteByte('{')
			i += 2
		case c == '}' && i+1 < len(src) && src[i+1] == '}':
			lit.WriteByte('}')
			i += 2
		case c == '{':
			end, err := closingBrace(src, i+1)
			if err != nil {
				return nil, err
			}
			ph, err := p.placeholder(src[i+1 : end])
			if err != nil {
				return nil, err
			}
			flushLiteral()
			if n := len(parts); n > 0 && !parts[n-1].IsLiteral() {
				return nil, fmt.Errorf("placeholders %q and %q must be separated by literal text", parts[n-1].Placeholder.Name, ph.Name)
			}
			parts = append(parts, models.Part{Placeholder: ph})
			i = end + 1
		case c == '}':
			return nil, errors.New("unbalanced '}'")
		case c == '/':
			if err := flushSegment(); err != nil {
				return nil, err
			}
			i++
		default:
			lit.WriteByte(c)
			i++
		}
	}
	if err := flushSegment(); err != nil {
		return nil, err
	}
	return segments, nil
}

// closingBrace finds the '}' closing a placeholder opened just before start.
// Braces inside a parenthesised constraint argument are part of the argument.
func closingBrace(src string, start int) (int, error) {
	depth := 0
	for j := start; j < len(src); j++ {
		switch src[j] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case '{':
			if depth == 0 {
				return -1, errors.New("unbalanced '{'")
			}
		case '}':
			if depth == 0 {
				return j, nil
			}
		}
	}
	return -1, errors.New("unbalanced '{'")
}

func (p *parser) placeholder(body string) (*models.Placeholder, error) {
	ph := &models.Placeholder{}

	if strings.HasPrefix(body, "*") {
		ph.CatchAll = true
		body = strings.TrimPrefix(strings.TrimPrefix(body, "*"), "*")
	}
	if strings.HasSuffix(body, "?") {
		ph.Optional = true
		body = strings.TrimSuffix(body, "?")
	}

	name, rest, hasConstraints := strings.Cut(body, ":")
	if name == "" {
		return nil, errors.New("empty placeholder name")
	}
	if !validName(name) {
		return nil, fmt.Errorf("invalid placeholder name %q", name)
	}
	ph.Name = name
	if ph.CatchAll && ph.Optional {
		return nil, fmt.Errorf("catch-all placeholder %q cannot be optional", name)
	}

	if hasConstraints {
		constraints, err := p.constraints(name, rest)
		if err != nil {
			return nil, err
		}
		ph.Constraints = constraints
	}
	return ph, nil
}

func (p *parser) constraints(placeholder, chain string) ([]models.Constraint, error) {
	var out []models.Constraint
	for _, raw := range splitChain(chain) {
		if raw == "" {
			return nil, fmt.Errorf("empty constraint on placeholder %q", placeholder)
		}

		c := models.Constraint{Name: raw}
		if idx := strings.IndexByte(raw, '('); idx >= 0 {
			if !strings.HasSuffix(raw, ")") {
				return nil, fmt.Errorf("malformed constraint %q on placeholder %q", raw, placeholder)
			}
			c.Name = raw[:idx]
			c.Argument = raw[idx+1 : len(raw)-1]
			c.HasArgument = true
		}
		if c.Name == "" {
			return nil, fmt.Errorf("empty constraint on placeholder %q", placeholder)
		}
		if !validName(c.Name) {
			return nil, fmt.Errorf("malformed constraint %q on placeholder %q", raw, placeholder)
		}

		spec, known := LookupConstraint(c.Name)
		if !known {
			p.warnings = append(p.warnings, diagnostics.New(diagnostics.UnknownConstraint, p.loc, c.Name, placeholder))
		} else if err := checkArity(spec, c); err != nil {
			return nil, fmt.Errorf("%v on placeholder %q", err, placeholder)
		}
		out = append(out, c)
	}
	return out, nil
}

func checkArity(spec ConstraintSpec, c models.Constraint) error {
	if spec.MaxArgs == 0 {
		if c.HasArgument {
			return fmt.Errorf("constraint %q takes no argument", c.Name)
		}
		return nil
	}
	if !c.HasArgument || strings.TrimSpace(c.Argument) == "" {
		return fmt.Errorf("constraint %q needs an argument", c.Name)
	}
	if n := argCount(spec, c.Argument); n < spec.MinArgs || n > spec.MaxArgs {
		return fmt.Errorf("constraint %q takes %d to %d arguments, got %d", c.Name, spec.MinArgs, spec.MaxArgs, n)
	}
	return nil
}

// splitChain splits a constraint chain on ':' outside parentheses
func splitChain(chain string) []string {
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(chain); i++ {
		switch chain[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ':':
			if depth == 0 {
				out = append(out, chain[start:i])
				start = i + 1
			}
		}
	}
	return append(out, chain[start:])
}

func validName(name string) bool {
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return name != ""
}

func validateStructure(segments []models.Segment) error {
	seen := make(map[string]bool)
	catchAlls := 0
	optionalSeen := false

	for si, seg := range segments {
		if optionalSeen && seg.IsLiteral() {
			return fmt.Errorf("literal segment %q follows an optional placeholder", seg.Parts[0].Literal)
		}
		for pi, part := range seg.Parts {
			ph := part.Placeholder
			if ph == nil {
				continue
			}

			key := strings.ToLower(ph.Name)
			if seen[key] {
				return fmt.Errorf("duplicate placeholder name %q", ph.Name)
			}
			seen[key] = true

			switch {
			case ph.CatchAll:
				catchAlls++
				if catchAlls > 1 {
					return errors.New("more than one catch-all placeholder")
				}
				if si != len(segments)-1 {
					return fmt.Errorf("catch-all placeholder %q must be in the final segment", ph.Name)
				}
				if len(seg.Parts) != 1 {
					return fmt.Errorf("catch-all placeholder %q must be the whole segment", ph.Name)
				}
			case ph.Optional:
				if pi != len(seg.Parts)-1 {
					return fmt.Errorf("optional placeholder %q must end its segment", ph.Name)
				}
				optionalSeen = true
			case optionalSeen:
				return fmt.Errorf("required placeholder %q follows an optional placeholder", ph.Name)
			}
		}
	}
	return nil
}
