package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toyz/routeplan/internal/models"
)

func member(name string, typ models.TypeDescriptor, tag string) models.MemberDeclaration {
	return models.MemberDeclaration{Name: name, Type: typ, Tag: tag, Location: paramLoc}
}

func groupType(members ...models.MemberDeclaration) models.TypeDescriptor {
	return models.TypeDescriptor{Name: "ListUsersParams", Kind: models.KindComplex, Constructible: true, Members: members}
}

func TestComposite_Expansion(t *testing.T) {
	typ := groupType(
		member("TenantID", stringType, ""),
		member("PageSize", intType, ""),
		member("Trace", stringType, `bind:"header,name=X-Trace"`),
		member("Store", ifaceType, `bind:"keyed,key=replica"`),
		member("Search", stringType, `json:"s" bind:",name=q"`),
		member("Internal", stringType, `bind:"-"`),
	)
	tmpl := parse(t, "/tenants/{tenantId}/users")

	res := testResolver().Resolve(param("params", typ, bind(models.BindGroup)), tmpl, "GET")
	require.Empty(t, res.Diagnostics)
	require.NotNil(t, res.Source)
	assert.Equal(t, models.SourceComposite, res.Source.Kind)
	require.Len(t, res.Source.Children, 5)

	got := make(map[string]models.BindingSource)
	for _, c := range res.Source.Children {
		got[c.Path] = c.Source
	}

	assert.Equal(t, models.SourceRoute, got["params.TenantID"].Kind)
	assert.Equal(t, "tenantId", got["params.TenantID"].Key)
	assert.Equal(t, models.BindingSource{Kind: models.SourceQuery, Key: "pageSize"}, got["params.PageSize"])
	assert.Equal(t, models.BindingSource{Kind: models.SourceHeader, Key: "X-Trace"}, got["params.Trace"])
	assert.Equal(t, models.BindingSource{Kind: models.SourceKeyedService, ServiceKey: "replica"}, got["params.Store"])
	assert.Equal(t, models.BindingSource{Kind: models.SourceQuery, Key: "q"}, got["params.Search"])
	assert.NotContains(t, got, "params.Internal")

	assert.True(t, res.Source.ReadsRequest())
	assert.False(t, res.Source.NeedsContract())
	assert.Equal(t, 0, res.Source.BodyConsumers())
}

func TestComposite_Errors(t *testing.T) {
	tests := []struct {
		name  string
		typ   models.TypeDescriptor
		diags []string
	}{
		{
			name:  "not constructible",
			typ:   models.TypeDescriptor{Name: "Store", Kind: models.KindComplex},
			diags: []string{"EOE013"},
		},
		{
			name:  "primitive group",
			typ:   intType,
			diags: []string{"EOE013"},
		},
		{
			name:  "no members",
			typ:   groupType(),
			diags: []string{"EOE013"},
		},
		{
			name:  "nested group",
			typ:   groupType(member("Inner", groupType(member("A", intType, "")), `bind:"group"`)),
			diags: []string{"EOE014"},
		},
		{
			name:  "member conflict",
			typ:   groupType(member("Filter", orderType, "")),
			diags: []string{"EOE003"},
		},
		{
			name:  "malformed tag",
			typ:   groupType(member("Page", intType, `bind:"query,size"`)),
			diags: []string{"EOE023"},
		},
		{
			name:  "every member excluded",
			typ:   groupType(member("Internal", stringType, `bind:"-"`)),
			diags: []string{"EOE013"},
		},
		{
			name:  "unknown tag source",
			typ:   groupType(member("Page", intType, `bind:"cookie"`)),
			diags: []string{"EOE023"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := testResolver().Resolve(param("params", tt.typ, bind(models.BindGroup)), parse(t, "/users"), "GET")
			assert.Equal(t, tt.diags, diagIDs(res.Diagnostics))
		})
	}
}

func TestComposite_BodyMember(t *testing.T) {
	typ := groupType(
		member("Payload", orderType, ""),
		member("Attachment", fileType, ""),
	)
	res := testResolver().Resolve(param("input", typ, bind(models.BindGroup)), parse(t, "/orders"), "POST")
	require.Empty(t, res.Diagnostics)
	require.NotNil(t, res.Source)
	assert.Equal(t, 2, res.Source.BodyConsumers())
	assert.True(t, res.Source.NeedsContract())
}
