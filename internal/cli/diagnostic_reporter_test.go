package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/toyz/routeplan/internal/models"
)

func init() {
	color.NoColor = true
}

func TestDiagnosticReporter_ReportDiagnostics(t *testing.T) {
	diags := []models.Diagnostic{
		{ID: "EOE015", Severity: models.SeverityError, Title: "Duplicate route", Category: "Routing",
			Message: "GET /users is also handled by api.List", Location: models.SourceLocation{File: "api/users.go", Line: 20, Column: 6}},
		{ID: "EOE020", Severity: models.SeverityInfo, Title: "Header-like parameter bound to query", Category: "Binding",
			Message: "parameter \"authorization\" looks like a header", Location: models.SourceLocation{File: "api/users.go", Line: 30, Column: 2}},
		{ID: "EOE023", Severity: models.SeverityError, Title: "Invalid annotation", Category: "Annotations",
			Message: "annotation is invalid", Location: models.SourceLocation{File: "api/orders.go", Line: 3, Column: 1}},
	}

	var buf bytes.Buffer
	NewDiagnosticReporter(false, &buf).ReportDiagnostics(diags)
	out := buf.String()

	assert.Contains(t, out, "api/users.go\n  20:6 error EOE015 GET /users is also handled by api.List\n  30:2 info EOE020")
	assert.Contains(t, out, "api/orders.go\n  3:1 error EOE023")
	assert.Contains(t, out, "2 errors, 0 warnings, 1 info")
	assert.NotContains(t, out, "Routing: Duplicate route")

	buf.Reset()
	NewDiagnosticReporter(true, &buf).ReportDiagnostics(diags[:1])
	assert.Contains(t, buf.String(), "Routing: Duplicate route")
	assert.Contains(t, buf.String(), "1 error, 0 warnings, 0 infos")
}

func TestDiagnosticReporter_ReportDiagnosticsEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewDiagnosticReporter(false, &buf).ReportDiagnostics(nil)
	assert.Empty(t, buf.String())
}

func TestDiagnosticReporter_ReportError(t *testing.T) {
	cause := errors.New("open policy.yaml: no such file")
	genErr := &models.GeneratorError{
		Type:        models.ErrorTypeConfig,
		File:        "policy.yaml",
		Message:     "reading policy file",
		Suggestions: []string{"check the path\nor omit -config"},
		Context:     map[string]interface{}{"handler_name": "api.Get", "stack": "goroutine 1"},
		Cause:       cause,
	}

	tests := []struct {
		name     string
		verbose  bool
		err      error
		contains []string
		excludes []string
	}{
		{
			name: "generator error",
			err:  genErr,
			contains: []string{
				"Type: Config Error", "Message: reading policy file", "File: policy.yaml",
				"Handler Name: api.Get", "1. check the path", "      or omit -config",
			},
			excludes: []string{"goroutine 1", "Error Chain"},
		},
		{
			name:     "verbose",
			verbose:  true,
			err:      genErr,
			contains: []string{"Stack: goroutine 1", "Error Chain:", "1. open policy.yaml"},
		},
		{
			name:     "plain error",
			err:      errors.New("boom"),
			contains: []string{"Message: boom"},
		},
		{
			name:     "multiple errors",
			err:      multierror.Append(nil, errors.New("first"), errors.New("second")),
			contains: []string{"ERROR: 2 problems", "Message: first", "Message: second"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewDiagnosticReporter(tt.verbose, &buf).ReportError(tt.err)
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}
