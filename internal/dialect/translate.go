package dialect

import (
	"strconv"
	"strings"

	"github.com/toyz/routeplan/internal/models"
)

// Route is one concrete router pattern together with a request path it must match
type Route struct {
	Pattern string
	// Sample is a path the pattern should serve; empty when no sample can be
	// derived (regex constraints)
	Sample string
}

type style struct {
	// expandOptional registers one pattern per optional prefix instead of native '?'
	expandOptional bool
	param          func(ph models.Placeholder) string
	catchAll       func(ph models.Placeholder) string
	// mixed renders a segment that combines literal text and placeholders
	mixed func(seg models.Segment) string
}

var echoStyle = style{
	expandOptional: true,
	param:          func(ph models.Placeholder) string { return ":" + ph.Name },
	catchAll:       func(models.Placeholder) string { return "*" },
	mixed:          collapse,
}

var ginStyle = style{
	expandOptional: true,
	param:          func(ph models.Placeholder) string { return ":" + ph.Name },
	catchAll:       func(ph models.Placeholder) string { return "*" + ph.Name },
	mixed:          collapse,
}

var fiberStyle = style{
	param:    fiberParam,
	catchAll: func(models.Placeholder) string { return "*" },
	mixed: func(seg models.Segment) string {
		var b strings.Builder
		for _, part := range seg.Parts {
			if part.Placeholder == nil {
				b.WriteString(part.Literal)
				continue
			}
			b.WriteString(fiberParam(*part.Placeholder))
		}
		return b.String()
	},
}

// Echo translates a template to echo patterns
func Echo(t models.RouteTemplate) []Route { return translate(t, echoStyle) }

// Gin translates a template to gin patterns
func Gin(t models.RouteTemplate) []Route { return translate(t, ginStyle) }

// Fiber translates a template to a fiber pattern; optional placeholders and
// constraints are expressed natively
func Fiber(t models.RouteTemplate) []Route { return translate(t, fiberStyle) }

// collapse turns a mixed segment into a single wildcard covering the whole segment
func collapse(seg models.Segment) string {
	var names []string
	for _, part := range seg.Parts {
		if part.Placeholder != nil {
			names = append(names, part.Placeholder.Name)
		}
	}
	return ":" + strings.Join(names, "_")
}

func translate(t models.RouteTemplate, s style) []Route {
	firstOptional := len(t.Segments)
	if s.expandOptional {
		for i, seg := range t.Segments {
			if optionalSegment(seg) {
				firstOptional = i
				break
			}
		}
	}

	var out []Route
	for k := firstOptional; k <= len(t.Segments); k++ {
		out = append(out, render(t.Segments[:k], s))
	}
	return out
}

func optionalSegment(seg models.Segment) bool {
	return len(seg.Parts) == 1 && seg.Parts[0].Placeholder != nil && seg.Parts[0].Placeholder.Optional
}

func render(segments []models.Segment, s style) Route {
	if len(segments) == 0 {
		return Route{Pattern: "/", Sample: "/"}
	}

	var pattern, sample strings.Builder
	sampleOK := true
	for _, seg := range segments {
		pattern.WriteByte('/')
		sample.WriteByte('/')

		switch {
		case seg.IsLiteral():
			for _, part := range seg.Parts {
				pattern.WriteString(part.Literal)
				sample.WriteString(part.Literal)
			}
			continue
		case len(seg.Parts) == 1:
			ph := *seg.Parts[0].Placeholder
			if ph.CatchAll {
				pattern.WriteString(s.catchAll(ph))
			} else {
				pattern.WriteString(s.param(ph))
			}
		default:
			pattern.WriteString(s.mixed(seg))
		}

		for _, part := range seg.Parts {
			if part.Placeholder == nil {
				sample.WriteString(part.Literal)
				continue
			}
			v, ok := sampleValue(*part.Placeholder)
			sampleOK = sampleOK && ok
			sample.WriteString(v)
		}
	}

	r := Route{Pattern: pattern.String()}
	if sampleOK {
		r.Sample = sample.String()
	}
	return r
}

// sampleValue returns a path value satisfying the placeholder's constraints
func sampleValue(ph models.Placeholder) (string, bool) {
	if ph.CatchAll {
		return "sample/rest", true
	}
	value := "sample"
	for _, c := range ph.Constraints {
		switch strings.ToLower(c.Name) {
		case "int", "long":
			value = "1"
		case "bool":
			value = "true"
		case "decimal", "double", "float":
			value = "1.5"
		case "datetime":
			value = "2024-01-02"
		case "guid":
			value = "3f2504e0-4f89-41d3-9a0c-0305e82c3301"
		case "min", "range":
			value = firstNumber(c.Argument)
		case "max":
			value = "0"
		case "minlength", "length":
			n, _ := strconv.Atoi(firstNumber(c.Argument))
			if n < 1 {
				n = 1
			}
			value = strings.Repeat("a", n)
		case "maxlength":
			value = "a"
		case "regex":
			return "", false
		}
	}
	return value, true
}

func firstNumber(arg string) string {
	first, _, _ := strings.Cut(arg, ",")
	return strings.TrimSpace(first)
}

// fiberConstraints maps constraint names to fiber's inline constraint names
var fiberConstraints = map[string]string{
	"int":       "int",
	"long":      "int",
	"bool":      "bool",
	"decimal":   "float",
	"double":    "float",
	"float":     "float",
	"guid":      "guid",
	"alpha":     "alpha",
	"datetime":  "datetime",
	"minlength": "minLen",
	"maxlength": "maxLen",
	"min":       "min",
	"max":       "max",
	"range":     "range",
	"regex":     "regex",
}

func fiberParam(ph models.Placeholder) string {
	var b strings.Builder
	b.WriteByte(':')
	b.WriteString(ph.Name)

	var cs []string
	for _, c := range ph.Constraints {
		name := strings.ToLower(c.Name)
		if name == "length" {
			if strings.Contains(c.Argument, ",") {
				cs = append(cs, "betweenLen("+c.Argument+")")
			} else {
				cs = append(cs, "len("+c.Argument+")")
			}
			continue
		}
		mapped, ok := fiberConstraints[name]
		if !ok {
			continue
		}
		if name == "datetime" {
			cs = append(cs, "datetime(2006\\-01\\-02)")
			continue
		}
		if c.HasArgument {
			mapped += "(" + c.Argument + ")"
		}
		cs = append(cs, mapped)
	}
	if len(cs) > 0 {
		b.WriteString("<" + strings.Join(cs, ";") + ">")
	}
	if ph.Optional {
		b.WriteByte('?')
	}
	return b.String()
}
