package routes

import (
	"strings"

	"github.com/toyz/routeplan/internal/models"
)

// NormalizedName is the token every placeholder name is replaced with by Normalize
const NormalizedName = "_"

// Render re-renders a template as a pattern string
func Render(t models.RouteTemplate) string {
	return render(t, nil, false)
}

// RenderWith re-renders a template, substituting placeholder names through rename
func RenderWith(t models.RouteTemplate, rename func(string) string) string {
	return render(t, rename, false)
}

// Normalize renders the template's structural key: placeholder names become a
// fixed token, constraint chains and markers stay, literal text is lowercased.
func Normalize(t models.RouteTemplate) string {
	return render(t, func(string) string { return NormalizedName }, true)
}

func render(t models.RouteTemplate, rename func(string) string, normalize bool) string {
	var b strings.Builder
	for _, seg := range t.Segments {
		b.WriteByte('/')
		for _, part := range seg.Parts {
			if part.Placeholder == nil {
				lit := part.Literal
				if normalize {
					lit = strings.ToLower(lit)
				}
				b.WriteString(escapeLiteral(lit))
				continue
			}
			writePlaceholder(&b, *part.Placeholder, rename, normalize)
		}
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

func writePlaceholder(b *strings.Builder, ph models.Placeholder, rename func(string) string, normalize bool) {
	name := ph.Name
	if rename != nil {
		name = rename(name)
	}

	b.WriteByte('{')
	if ph.CatchAll {
		b.WriteByte('*')
	}
	b.WriteString(name)
	for _, c := range ph.Constraints {
		b.WriteByte(':')
		if normalize {
			b.WriteString(strings.ToLower(c.Name))
		} else {
			b.WriteString(c.Name)
		}
		if c.HasArgument {
			b.WriteByte('(')
			b.WriteString(c.Argument)
			b.WriteByte(')')
		}
	}
	if ph.Optional {
		b.WriteByte('?')
	}
	b.WriteByte('}')
}

func escapeLiteral(s string) string {
	if !strings.ContainsAny(s, "{}") {
		return s
	}
	s = strings.ReplaceAll(s, "{", "{{")
	return strings.ReplaceAll(s, "}", "}}")
}
