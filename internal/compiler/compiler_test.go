package compiler

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toyz/routeplan/internal/config"
	"github.com/toyz/routeplan/internal/emitter"
	"github.com/toyz/routeplan/internal/models"
	"github.com/toyz/routeplan/internal/utils"
)

var (
	intType    = models.TypeDescriptor{Name: "int", Kind: models.KindPrimitive}
	stringType = models.TypeDescriptor{Name: "string", Kind: models.KindPrimitive}
	ctxType    = models.TypeDescriptor{Name: "context.Context", Kind: models.KindSpecial, Special: models.SpecialCancellation}
	orderType  = models.TypeDescriptor{Name: "CreateOrder", Kind: models.KindComplex, Constructible: true}
	filterType = models.TypeDescriptor{Name: "SearchFilter", Kind: models.KindComplex, Constructible: true}
)

func handler(name, method, pattern string, line int, params ...models.ParameterDeclaration) models.HandlerDeclaration {
	loc := models.SourceLocation{File: "api/handlers.go", Line: line, Column: 1}
	for i := range params {
		params[i].Location = models.SourceLocation{File: loc.File, Line: line, Column: 10 + i}
	}
	return models.HandlerDeclaration{
		Name:       name,
		Package:    "api",
		Method:     method,
		Pattern:    pattern,
		Parameters: params,
		Return:     models.ReturnDescriptor{SuccessType: "Response", ReturnsError: true},
		Location:   loc,
	}
}

func param(name string, typ models.TypeDescriptor, sources ...models.BindingAnnotation) models.ParameterDeclaration {
	p := models.ParameterDeclaration{Name: name, Type: typ}
	for _, s := range sources {
		p.Bindings = append(p.Bindings, models.ExplicitBinding{Source: s})
	}
	return p
}

func ids(diags []models.Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.ID
	}
	return out
}

func compile(t *testing.T, decls ...models.HandlerDeclaration) *Result {
	t.Helper()
	res, err := New(config.Default()).Compile(decls)
	require.NoError(t, err)
	return res
}

func TestCompile_RouteParameter(t *testing.T) {
	res := compile(t, handler("GetUser", "GET", "/users/{id:int}", 10, param("id", intType)))

	assert.Empty(t, res.Diagnostics)
	require.Len(t, res.Table.Endpoints, 1)

	e := res.Table.Endpoints[0]
	assert.Equal(t, "GET", e.Method)
	assert.Equal(t, "/users/{id:int}", e.Route)
	assert.Equal(t, "api.GetUser", e.Handler)
	assert.NotEmpty(t, e.ID)
	require.Len(t, e.Bindings, 1)
	assert.Equal(t, models.SourceRoute, e.Bindings[0].Source.Kind)
	assert.Equal(t, "id", e.Bindings[0].Source.Key)
	assert.Equal(t, 200, e.Response.SuccessStatus)
}

func TestCompile_DuplicateRoutes(t *testing.T) {
	res := compile(t,
		handler("GetUserByID", "GET", "/users/{id}", 20, param("id", intType)),
		handler("GetUser", "GET", "/users/{userId}", 10, param("userId", intType)),
	)

	require.Len(t, res.Table.Endpoints, 1)
	assert.Equal(t, "api.GetUser", res.Table.Endpoints[0].Handler)
	assert.Equal(t, []string{"EOE015"}, ids(res.Diagnostics))
	assert.Equal(t, 20, res.Diagnostics[0].Location.Line)
}

func TestCompile_BodyOnPayloadMethod(t *testing.T) {
	res := compile(t, handler("CreateOrder", "POST", "/orders", 10, param("request", orderType)))

	assert.Empty(t, res.Diagnostics)
	require.Len(t, res.Table.Endpoints, 1)
	assert.Equal(t, models.SourceBody, res.Table.Endpoints[0].Bindings[0].Source.Kind)
}

func TestCompile_AmbiguousComplexOnReadOnlyMethod(t *testing.T) {
	res := compile(t, handler("Search", "GET", "/search", 10, param("filter", filterType)))

	assert.Empty(t, res.Table.Endpoints)
	assert.Equal(t, []string{"EOE003"}, ids(res.Diagnostics))
	assert.Equal(t, models.SeverityError, res.Diagnostics[0].Severity)
}

func TestCompile_ErrorShape(t *testing.T) {
	decl := handler("GetUser", "GET", "/users/{id:int}", 10, param("id", intType))
	decl.Annotations.ErrorCategories = []string{"NotFound"}
	decl.Annotations.CustomCodes = []int{429}

	res := compile(t, decl)
	require.Len(t, res.Table.Endpoints, 1)

	errs := res.Table.Endpoints[0].Response.Errors
	require.Len(t, errs, 2)
	assert.Equal(t, 404, errs[0].Status)
	assert.True(t, errs[0].HasBody)
	assert.Equal(t, 429, errs[1].Status)
	assert.True(t, errs[1].HasBody)
	assert.Equal(t, models.ShapeProblem, errs[1].Shape)
}

func TestCompile_ConflictingAnnotations(t *testing.T) {
	res := compile(t, handler("CreateOrder", "POST", "/orders", 10,
		param("request", orderType, models.BindBody, models.BindQuery)))

	assert.Empty(t, res.Table.Endpoints)
	assert.Equal(t, []string{"EOE002"}, ids(res.Diagnostics))
}

func TestCompile_InvalidEndpointDoesNotStopBatch(t *testing.T) {
	res := compile(t,
		handler("Broken", "GET", "/users/{id", 10, param("id", intType)),
		handler("ListUsers", "GET", "/users", 20, param("page", intType)),
	)

	require.Len(t, res.Table.Endpoints, 1)
	assert.Equal(t, "api.ListUsers", res.Table.Endpoints[0].Handler)
	assert.Equal(t, []string{"EOE005"}, ids(res.Diagnostics))
}

func batch() []models.HandlerDeclaration {
	return []models.HandlerDeclaration{
		handler("GetUser", "GET", "/users/{id:int}", 10, param("ctx", ctxType), param("id", intType)),
		handler("ListUsers", "GET", "/users", 20, param("page", intType), param("q", stringType)),
		handler("CreateOrder", "POST", "/orders", 30, param("request", orderType)),
		handler("Search", "GET", "/search", 40, param("filter", filterType)),
		handler("GetUserAgain", "GET", "/users/{userId:int}", 50, param("userId", intType)),
		handler("Files", "GET", "/files/{*path}", 60, param("path", stringType)),
	}
}

// every declared parameter is either bound in the table or explained by an Error
func TestCompile_TotalResolution(t *testing.T) {
	decls := batch()
	res := compile(t, decls...)

	bound := make(map[string]map[string]bool)
	for _, e := range res.Table.Endpoints {
		bound[e.Handler] = make(map[string]bool)
		for _, b := range e.Bindings {
			bound[e.Handler][b.Name] = true
		}
	}

	errorsAt := make(map[int]bool)
	for _, d := range res.Diagnostics {
		if d.IsError() {
			errorsAt[d.Location.Line] = true
		}
	}

	for _, decl := range decls {
		if errorsAt[decl.Location.Line] {
			assert.NotContains(t, bound, decl.QualifiedName())
			continue
		}
		for _, p := range decl.Parameters {
			assert.True(t, bound[decl.QualifiedName()][p.Name], "%s.%s unbound", decl.Name, p.Name)
		}
	}
}

// a bound parameter has exactly one source
func TestCompile_MutualExclusion(t *testing.T) {
	res := compile(t, batch()...)
	for _, e := range res.Table.Endpoints {
		seen := make(map[string]bool)
		for _, b := range e.Bindings {
			assert.False(t, seen[b.Name], "%s bound twice in %s", b.Name, e.Handler)
			seen[b.Name] = true
		}
	}
}

func TestCompile_Idempotent(t *testing.T) {
	encode := func(res *Result) string {
		var buf bytes.Buffer
		require.NoError(t, emitter.Encode(&buf, res.Table, emitter.FormatJSON))
		return buf.String()
	}

	first := compile(t, batch()...)
	second := compile(t, batch()...)
	assert.Equal(t, encode(first), encode(second))
	assert.Equal(t, first.Diagnostics, second.Diagnostics)

	shuffled := batch()
	rand.New(rand.NewSource(7)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	third := compile(t, shuffled...)
	assert.Equal(t, encode(first), encode(third))
	assert.Equal(t, first.Diagnostics, third.Diagnostics)
}

func TestCompile_Memoised(t *testing.T) {
	cache := utils.NewCache[string, emitter.Provisional]()
	c := New(config.Default(), WithCache(cache))

	first, err := c.Compile(batch())
	require.NoError(t, err)
	assert.Equal(t, 0, c.CacheStats().Hits)

	second, err := c.Compile(batch())
	require.NoError(t, err)
	assert.Equal(t, len(batch()), c.CacheStats().Hits)
	assert.Equal(t, first.Table, second.Table)
	assert.Equal(t, first.Diagnostics, second.Diagnostics)

	// a different policy never reuses entries
	policy, err := config.Parse("policy.yaml", []byte("payload_methods: [POST, PUT, PATCH, DELETE]\nread_only_methods: [GET]"))
	require.NoError(t, err)
	hits := cache.GetStats().Hits
	_, err = New(policy, WithCache(cache)).Compile(batch())
	require.NoError(t, err)
	assert.Equal(t, hits, cache.GetStats().Hits)
	assert.Equal(t, 2*len(batch()), cache.GetStats().Size)
}

func TestCompile_DialectProbes(t *testing.T) {
	policy, err := config.Default().WithTargets([]string{"fiber"})
	require.NoError(t, err)

	res, err := New(policy).Compile([]models.HandlerDeclaration{
		handler("GetUser", "GET", "/users/{id}", 10, param("id", stringType)),
		handler("GetMe", "GET", "/users/me", 20),
	})
	require.NoError(t, err)

	require.Len(t, res.Table.Endpoints, 2)
	assert.Equal(t, []string{"EOE028"}, ids(res.Diagnostics))
	assert.Equal(t, 20, res.Diagnostics[0].Location.Line)
}

func TestCompile_Concurrency(t *testing.T) {
	var decls []models.HandlerDeclaration
	for i := 0; i < 64; i++ {
		decls = append(decls, handler(fmt.Sprintf("Get%d", i), "GET", fmt.Sprintf("/items%d/{id:int}", i), i+1, param("id", intType)))
	}

	policy, err := config.Parse("policy.yaml", []byte("concurrency: 4"))
	require.NoError(t, err)
	res, err := New(policy).Compile(decls)
	require.NoError(t, err)
	assert.Len(t, res.Table.Endpoints, 64)
	assert.Empty(t, res.Diagnostics)
}
