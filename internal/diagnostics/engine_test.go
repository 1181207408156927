package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toyz/routeplan/internal/models"
)

func loc(line int) models.SourceLocation {
	return models.SourceLocation{File: "handlers.go", Line: line, Column: 1}
}

func placeholderTemplate(name string, optional, catchAll bool) models.RouteTemplate {
	return models.RouteTemplate{
		Raw: "/x/{" + name + "}",
		Segments: []models.Segment{
			{Parts: []models.Part{{Literal: "x"}}},
			{Parts: []models.Part{{Placeholder: &models.Placeholder{Name: name, Optional: optional, CatchAll: catchAll}}}},
		},
	}
}

func intParam(name string, line int) models.ParameterDeclaration {
	return models.ParameterDeclaration{
		Name:     name,
		Type:     models.TypeDescriptor{Name: "int", Kind: models.KindPrimitive},
		Location: loc(line),
	}
}

func ids(diags []models.Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.ID
	}
	return out
}

func TestCatalogue(t *testing.T) {
	rules := Catalogue()
	require.Len(t, rules, 28)

	seen := make(map[string]bool)
	for i, r := range rules {
		assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
		if i > 0 {
			assert.Less(t, rules[i-1].ID, r.ID)
		}
		assert.NotEmpty(t, r.Title)
		assert.NotEmpty(t, r.Category)
	}

	retired, ok := Lookup("EOE025")
	require.True(t, ok)
	assert.True(t, retired.Retired)
	assert.Panics(t, func() { New(retired, loc(1), "p", "GET") })

	_, ok = Lookup("EOE999")
	assert.False(t, ok)
}

func TestNew(t *testing.T) {
	d := New(AmbiguousBinding, loc(4), "filter", "Filter", "GET")
	assert.Equal(t, "EOE003", d.ID)
	assert.Equal(t, models.SeverityError, d.Severity)
	assert.Equal(t, CategoryBinding, d.Category)
	assert.Contains(t, d.Message, `"filter"`)
	assert.Equal(t, loc(4), d.Location)
}

func TestSortAndDedup(t *testing.T) {
	diags := []models.Diagnostic{
		{ID: "EOE010", Message: "b", Location: loc(5)},
		{ID: "EOE003", Message: "a", Location: loc(5)},
		{ID: "EOE010", Message: "a", Location: loc(2)},
		{ID: "EOE003", Message: "a", Location: loc(5)},
	}

	out := Dedup(diags)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"EOE010", "EOE003", "EOE010"}, ids(out))
	assert.Equal(t, 2, out[0].Location.Line)
}

func TestEngine_Check(t *testing.T) {
	route := func(key string) *models.BindingSource {
		return &models.BindingSource{Kind: models.SourceRoute, Key: key}
	}
	body := &models.BindingSource{Kind: models.SourceBody, Key: "req"}

	tests := []struct {
		name     string
		analysis Analysis
		opts     EngineOptions
		want     []string
	}{
		{
			name: "clean",
			analysis: Analysis{
				Handler:       models.HandlerDeclaration{Name: "Get", Method: "GET", Location: loc(1)},
				Template:      placeholderTemplate("id", false, false),
				TemplateValid: true,
				Parameters:    []ResolvedParameter{{intParam("id", 2), route("id")}},
			},
		},
		{
			name: "invalid method",
			analysis: Analysis{
				Handler: models.HandlerDeclaration{Name: "Get", Method: "GE T", Location: loc(1)},
			},
			want: []string{"EOE001"},
		},
		{
			name: "unbound placeholder",
			analysis: Analysis{
				Handler:       models.HandlerDeclaration{Name: "Get", Method: "GET", Location: loc(1)},
				Template:      placeholderTemplate("id", false, false),
				TemplateValid: true,
			},
			want: []string{"EOE006"},
		},
		{
			name: "unbound placeholder suppressed when its parameter failed",
			analysis: Analysis{
				Handler:       models.HandlerDeclaration{Name: "Get", Method: "GET", Location: loc(1)},
				Template:      placeholderTemplate("id", false, false),
				TemplateValid: true,
				Parameters:    []ResolvedParameter{{intParam("id", 2), nil}},
			},
		},
		{
			name: "placeholder bound twice",
			analysis: Analysis{
				Handler:       models.HandlerDeclaration{Name: "Get", Method: "GET", Location: loc(1)},
				Template:      placeholderTemplate("id", false, false),
				TemplateValid: true,
				Parameters: []ResolvedParameter{
					{intParam("id", 2), route("id")},
					{intParam("other", 3), route("ID")},
				},
			},
			want: []string{"EOE007"},
		},
		{
			name: "optional needs nullable",
			analysis: Analysis{
				Handler:       models.HandlerDeclaration{Name: "Get", Method: "GET", Location: loc(1)},
				Template:      placeholderTemplate("id", true, false),
				TemplateValid: true,
				Parameters:    []ResolvedParameter{{intParam("id", 2), route("id")}},
			},
			want: []string{"EOE011"},
		},
		{
			name: "catch-all needs string",
			analysis: Analysis{
				Handler:       models.HandlerDeclaration{Name: "Get", Method: "GET", Location: loc(1)},
				Template:      placeholderTemplate("path", false, true),
				TemplateValid: true,
				Parameters:    []ResolvedParameter{{intParam("path", 2), route("path")}},
			},
			want: []string{"EOE012"},
		},
		{
			name: "multiple body consumers",
			analysis: Analysis{
				Handler: models.HandlerDeclaration{Name: "Post", Method: "POST", Location: loc(1)},
				Parameters: []ResolvedParameter{
					{models.ParameterDeclaration{Name: "a", Location: loc(2)}, body},
					{models.ParameterDeclaration{Name: "b", Location: loc(3)}, &models.BindingSource{Kind: models.SourceFormFile, Key: "b"}},
				},
			},
			want: []string{"EOE004"},
		},
		{
			name: "composite child counts as body consumer",
			analysis: Analysis{
				Handler: models.HandlerDeclaration{Name: "Post", Method: "POST", Location: loc(1)},
				Parameters: []ResolvedParameter{
					{models.ParameterDeclaration{Name: "a", Location: loc(2)}, body},
					{models.ParameterDeclaration{Name: "g", Location: loc(3)}, &models.BindingSource{
						Kind: models.SourceComposite,
						Children: []models.BoundMember{
							{Path: "g.File", Parameter: models.ParameterDeclaration{Name: "File", Location: loc(9)}, Source: models.BindingSource{Kind: models.SourceFormFile}},
						},
					}},
				},
			},
			want: []string{"EOE004"},
		},
		{
			name: "unknown middleware",
			analysis: Analysis{
				Handler: models.HandlerDeclaration{Name: "Get", Method: "GET", Location: loc(1),
					Annotations: models.MethodAnnotations{Middleware: []string{"Auth", "Nope"}}},
			},
			opts: EngineOptions{KnownMiddleware: []string{"Auth"}},
			want: []string{"EOE027"},
		},
		{
			name: "invalid and unattached annotations",
			analysis: Analysis{
				Handler: models.HandlerDeclaration{Name: "Get", Method: "GET", Location: loc(1),
					Annotations: models.MethodAnnotations{
						Invalid:    []models.InvalidAnnotation{{Raw: "//routeplan::bogus", Reason: "unknown", Location: loc(1)}},
						Unattached: []models.ExplicitBindingRef{{Parameter: "ghost", Binding: models.ExplicitBinding{Location: loc(1)}}},
					}},
			},
			want: []string{"EOE023", "EOE024"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewEngine(tt.opts).Check(tt.analysis)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestValidMethod(t *testing.T) {
	assert.True(t, ValidMethod("GET"))
	assert.True(t, ValidMethod("PROPFIND"))
	assert.False(t, ValidMethod(""))
	assert.False(t, ValidMethod("GET /x"))
}
