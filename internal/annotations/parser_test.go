package annotations

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toyz/routeplan/internal/models"
)

var testLoc = models.SourceLocation{File: "api/users.go", Line: 12, Column: 1}

func TestParseAnnotation_Valid(t *testing.T) {
	tests := []struct {
		name    string
		comment string
		want    AnnotationType
		check   func(t *testing.T, a *ParsedAnnotation)
	}{
		{
			name:    "route",
			comment: "//routeplan::route GET /users/{id:int}",
			want:    RouteAnnotation,
			check: func(t *testing.T, a *ParsedAnnotation) {
				assert.Equal(t, "GET", a.GetString("method"))
				assert.Equal(t, "/users/{id:int}", a.GetString("path"))
				assert.False(t, a.HasParameter("Status"))
			},
		},
		{
			name:    "route with flags",
			comment: "//routeplan::route POST /users -Middleware=Auth,Audit -Tags=users -Status=201",
			want:    RouteAnnotation,
			check: func(t *testing.T, a *ParsedAnnotation) {
				assert.Equal(t, []string{"Auth", "Audit"}, a.GetStringSlice("Middleware"))
				assert.Equal(t, []string{"users"}, a.GetStringSlice("Tags"))
				assert.Equal(t, 201, a.GetInt("Status"))
			},
		},
		{
			name:    "leading space after slashes",
			comment: "  // routeplan::route GET /health",
			want:    RouteAnnotation,
			check: func(t *testing.T, a *ParsedAnnotation) {
				assert.Equal(t, "/health", a.GetString("path"))
			},
		},
		{
			name:    "bind with name",
			comment: "//routeplan::bind trace header -Name=X-Trace-Id",
			want:    BindAnnotation,
			check: func(t *testing.T, a *ParsedAnnotation) {
				assert.Equal(t, "trace", a.GetString("param"))
				assert.Equal(t, "header", a.GetString("source"))
				assert.Equal(t, "X-Trace-Id", a.GetString("Name"))
			},
		},
		{
			name:    "keyed bind",
			comment: "//routeplan::bind store keyed -Key=primary",
			want:    BindAnnotation,
			check: func(t *testing.T, a *ParsedAnnotation) {
				assert.Equal(t, "primary", a.GetString("Key"))
			},
		},
		{
			name:    "quoted default",
			comment: `//routeplan::default sort "name asc"`,
			want:    DefaultAnnotation,
			check: func(t *testing.T, a *ParsedAnnotation) {
				assert.Equal(t, "name asc", a.GetString("value"))
			},
		},
		{
			name:    "negative default",
			comment: "//routeplan::default offset -1",
			want:    DefaultAnnotation,
			check: func(t *testing.T, a *ParsedAnnotation) {
				assert.Equal(t, "-1", a.GetString("value"))
			},
		},
		{
			name:    "errors",
			comment: "//routeplan::errors NotFound Conflict -Codes=429,503",
			want:    ErrorsAnnotation,
			check: func(t *testing.T, a *ParsedAnnotation) {
				assert.Equal(t, []string{"NotFound", "Conflict"}, a.Rest)
				assert.Equal(t, []int{429, 503}, a.GetIntSlice("Codes"))
			},
		},
		{
			name:    "controller",
			comment: "//routeplan::controller -Prefix=/api/v1 -Middleware=Auth",
			want:    ControllerAnnotation,
			check: func(t *testing.T, a *ParsedAnnotation) {
				assert.Equal(t, "/api/v1", a.GetString("Prefix"))
			},
		},
		{
			name:    "middleware",
			comment: "//routeplan::middleware Auth",
			want:    MiddlewareAnnotation,
			check: func(t *testing.T, a *ParsedAnnotation) {
				assert.Equal(t, "Auth", a.GetString("name"))
			},
		},
		{
			name:    "parser",
			comment: "//routeplan::parser money.Amount",
			want:    ParserAnnotation,
			check: func(t *testing.T, a *ParsedAnnotation) {
				assert.Equal(t, "money.Amount", a.GetString("type"))
			},
		},
	}

	p := NewParser(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := p.ParseAnnotation(tt.comment, testLoc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.Type)
			assert.Equal(t, testLoc, a.Location)
			tt.check(t, a)
		})
	}
}

func TestParseAnnotation_Errors(t *testing.T) {
	tests := []struct {
		name    string
		comment string
		code    ErrorCode
		message string
	}{
		{"unknown kind", "//routeplan::inject Foo", SchemaErrorCode, "unknown annotation kind 'inject'"},
		{"missing path", "//routeplan::route GET", SchemaErrorCode, "requires <path>"},
		{"too many args", "//routeplan::route GET /a /b", SchemaErrorCode, "takes 2 positional"},
		{"unknown flag", "//routeplan::route GET /a -Cache=1", SchemaErrorCode, "unknown flag -Cache"},
		{"repeated flag", "//routeplan::route GET /a -Status=200 -Status=201", SchemaErrorCode, "more than once"},
		{"bad status", "//routeplan::route GET /a -Status=abc", ValidationErrorCode, "'Status'"},
		{"status out of range", "//routeplan::route GET /a -Status=99", ValidationErrorCode, "'Status'"},
		{"flag without value", "//routeplan::route GET /a -Status", ValidationErrorCode, "'Status'"},
		{"bad source", "//routeplan::bind id cookie", ValidationErrorCode, "'source'"},
		{"bad identifier", "//routeplan::bind 1id query", ValidationErrorCode, "'param'"},
		{"bad codes", "//routeplan::errors -Codes=4x9", ValidationErrorCode, "'Codes'"},
		{"empty errors", "//routeplan::errors", SchemaErrorCode, "no category and no codes"},
		{"relative prefix", "//routeplan::controller -Prefix=api", ValidationErrorCode, "'Prefix'"},
		{"positional after flag", "//routeplan::route GET /a -Status=201 extra", SyntaxErrorCode, "syntax error"},
		{"unterminated string", `//routeplan::default sort "name`, SyntaxErrorCode, "syntax error"},
		{"missing kind", "//routeplan::", SyntaxErrorCode, "syntax error"},
	}

	p := NewParser(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ParseAnnotation(tt.comment, testLoc)
			require.Error(t, err)

			var annErr AnnotationError
			require.True(t, errors.As(err, &annErr), "got %T", err)
			assert.Equal(t, tt.code, annErr.Code())
			assert.Equal(t, testLoc.File, annErr.Location().File)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestParseAnnotation_ErrorColumn(t *testing.T) {
	_, err := NewParser(nil).ParseAnnotation("//routeplan::route GET /a -Cache=1", testLoc)
	require.Error(t, err)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, testLoc.Column+len("//routeplan::route GET /a "), schemaErr.Loc.Column)
}

func TestIsAnnotation(t *testing.T) {
	assert.True(t, IsAnnotation("//routeplan::route GET /"))
	assert.True(t, IsAnnotation("// routeplan::bogus"))
	assert.False(t, IsAnnotation("// routes everything"))
	assert.False(t, IsAnnotation("/* routeplan::route */"))
}

func TestReason(t *testing.T) {
	_, err := NewParser(nil).ParseAnnotation("//routeplan::inject Foo", testLoc)
	require.Error(t, err)
	assert.NotContains(t, Reason(err), testLoc.File)
	assert.Contains(t, Reason(err), "unknown annotation kind")
}
