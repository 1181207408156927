package emitter

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toyz/routeplan/internal/diagnostics"
	"github.com/toyz/routeplan/internal/models"
	"github.com/toyz/routeplan/internal/routes"
	"gopkg.in/yaml.v3"
)

func provisional(t *testing.T, method, pattern, name string, line int, diags ...models.Diagnostic) Provisional {
	t.Helper()
	loc := models.SourceLocation{File: "api.go", Line: line}
	tmpl, parseDiags := routes.Parse(pattern, loc)
	decl := models.HandlerDeclaration{
		Name:     name,
		Package:  "api",
		Method:   method,
		Pattern:  pattern,
		Location: loc,
		Annotations: models.MethodAnnotations{
			Middleware: []string{"Auth"},
		},
	}
	idType := models.TypeDescriptor{Name: "int", Kind: models.KindPrimitive}
	plan := []diagnostics.ResolvedParameter{
		{Parameter: models.ParameterDeclaration{Name: "id", Type: idType}, Source: &models.BindingSource{Kind: models.SourceRoute, Key: "id"}},
		{Parameter: models.ParameterDeclaration{Name: "broken", Type: idType}},
	}
	shape := models.ResponseShape{SuccessType: "User", SuccessStatus: 200}
	return NewProvisional(decl, tmpl, plan, shape, append(parseDiags, diags...))
}

func TestNewProvisional(t *testing.T) {
	p := provisional(t, "get", "/Users/{id:int}", "GetUser", 3)
	d := p.Descriptor

	assert.Equal(t, "GET", d.Method)
	assert.Equal(t, "/Users/{id:int}", d.Route)
	assert.Equal(t, "/users/{_:int}", d.NormalizedRoute)
	assert.Equal(t, "api.GetUser", d.Handler)
	require.Len(t, d.Bindings, 1)
	assert.Equal(t, "id", d.Bindings[0].Name)
	assert.Equal(t, []string{"Auth"}, d.Middleware)
	assert.True(t, p.Valid())
}

func TestEmit_FiltersAndOrders(t *testing.T) {
	errDiag := diagnostics.New(diagnostics.AmbiguousBinding, models.SourceLocation{File: "api.go", Line: 9}, "filter", "Filter", "GET")
	warn := diagnostics.New(diagnostics.UnknownConstraint, models.SourceLocation{File: "api.go", Line: 1}, "slug", "id")

	provs := []Provisional{
		provisional(t, "POST", "/users", "CreateUser", 5),
		provisional(t, "GET", "/search", "Search", 9, errDiag),
		provisional(t, "GET", "/users", "ListUsers", 4, warn),
		provisional(t, "DELETE", "/users/{id}", "DeleteUser", 1),
		provisional(t, "GET", "/users/{id", "Broken", 2),
	}

	table := Emit(provs)
	require.Len(t, table.Endpoints, 3)
	assert.Equal(t, "ListUsers", table.Endpoints[0].Handler[len("api."):])
	assert.Equal(t, "CreateUser", table.Endpoints[1].Handler[len("api."):])
	assert.Equal(t, "DeleteUser", table.Endpoints[2].Handler[len("api."):])

	require.Len(t, table.Endpoints[0].Diagnostics, 1)
	assert.Equal(t, "EOE010", table.Endpoints[0].Diagnostics[0].ID)

	for _, e := range table.Endpoints {
		assert.Equal(t, EndpointID(e.Method, e.NormalizedRoute), e.ID)
	}
	assert.NotEqual(t, table.Endpoints[0].ID, table.Endpoints[1].ID)
}

func TestAttach(t *testing.T) {
	p := provisional(t, "GET", "/users/{id}", "GetUser", 3)
	dup := diagnostics.New(diagnostics.DuplicateRoute, p.Descriptor.Location, "GET", "/users/{id}", "GET", "/users/{uid}", "api.Other", p.Descriptor.Location)
	p.Attach(dup)
	p.Attach(dup)

	assert.False(t, p.Valid())
	assert.Len(t, p.Descriptor.Diagnostics, 1)
	assert.Empty(t, Emit([]Provisional{p}).Endpoints)
}

func TestEndpointID_Deterministic(t *testing.T) {
	assert.Equal(t, EndpointID("get", "/users/{_}"), EndpointID("GET", "/users/{_}"))
	assert.NotEqual(t, EndpointID("GET", "/users/{_}"), EndpointID("POST", "/users/{_}"))
}

func TestEncode(t *testing.T) {
	table := Emit([]Provisional{
		provisional(t, "GET", "/users/{id}", "GetUser", 3),
		provisional(t, "POST", "/users", "CreateUser", 8),
	})

	t.Run("json", func(t *testing.T) {
		var a, b bytes.Buffer
		require.NoError(t, Encode(&a, table, FormatJSON))
		require.NoError(t, Encode(&b, table, FormatJSON))
		assert.Equal(t, a.String(), b.String())

		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(a.Bytes(), &decoded))
		endpoints := decoded["endpoints"].([]interface{})
		require.Len(t, endpoints, 2)
		first := endpoints[0].(map[string]interface{})
		assert.Equal(t, "POST", first["method"])
		bindings := endpoints[1].(map[string]interface{})["bindings"].([]interface{})
		assert.Equal(t, "route", bindings[0].(map[string]interface{})["source"].(map[string]interface{})["kind"])
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, table, FormatYAML))

		var decoded struct {
			Endpoints []struct {
				Method  string `yaml:"method"`
				Handler string `yaml:"handler"`
			} `yaml:"endpoints"`
		}
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		require.Len(t, decoded.Endpoints, 2)
		assert.Equal(t, "api.CreateUser", decoded.Endpoints[0].Handler)
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, Encode(&bytes.Buffer{}, table, Format("toml")))
	})
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}
