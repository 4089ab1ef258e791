package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func mustRoute(t *testing.T, variant Variant, id string) Route {
	t.Helper()
	r, err := NewRoute(variant, id)
	require.NoError(t, err)
	return r
}

func TestStripURL(t *testing.T) {
	tests := map[string]string{
		"/":                        "/",
		"/(app)":                   "/",
		"/(app)/(marketing)//home": "/home",
		"/groups/(group)/more":     "/groups/more",
		"/(params)/[one]":          "/[one]",
		"/users/id=[user_id]":      "/users/id=[user_id]",
	}
	for in, want := range tests {
		require.Equal(t, want, StripURL(in), "input %q", in)
	}
}

func TestSortRoutes(t *testing.T) {
	routes := []Route{
		{Variant: VariantAction, Key: "b"},
		{Variant: VariantServer, Key: "gamma"},
		{Variant: VariantPage, Key: "gamma"},
		{Variant: VariantAction, Key: "a"},
		{Variant: VariantPage, Key: "Beta"},
		{Variant: VariantServer, Key: "alpha"},
		{Variant: VariantPage, Key: "alpha"},
	}
	input := append([]Route(nil), routes...)

	got := SortRoutes(routes)

	var order []string
	for _, r := range got {
		order = append(order, string(r.Variant)+":"+r.Key)
	}
	require.Equal(t, []string{
		"PAGE:alpha", "PAGE:Beta", "PAGE:gamma",
		"SERVER:alpha", "SERVER:gamma",
		"ACTION:a", "ACTION:b",
	}, order)
	require.Equal(t, input, routes, "input must not be reordered")
}

func TestSortRoutesUnknownVariant(t *testing.T) {
	require.Panics(t, func() {
		SortRoutes([]Route{{Variant: "LAYOUT", Key: "x"}})
	})
}

func TestFlatten(t *testing.T) {
	page := mustRoute(t, VariantPage, "/(params)/[one]")
	server := mustRoute(t, VariantServer, "/api/health")
	server.Methods = []string{"GET", "HEAD"}
	empty := mustRoute(t, VariantServer, "/empty")
	action := mustRoute(t, VariantAction, "/users/id=[user_id]")
	action.Names = []string{"create", "default"}
	noActions := mustRoute(t, VariantAction, "/empty")

	config := RoutesConfig{
		Pages: map[string]RouteOverride{
			"params_one": {ExplicitQueryParams: QueryParams{{Name: "tab", Type: "string"}}},
		},
		Servers: map[string]RouteOverride{
			"api_health_GET": {ExplicitQueryParams: QueryParams{{Name: "verbose", Type: "'1'"}}},
			// Must not leak into the action of the same composite key.
			"users_id_user_id_create": {ExplicitQueryParams: QueryParams{{Name: "wrong", Type: "string"}}},
		},
		Actions: map[string]RouteOverride{
			"users_id_user_id_create": {ExplicitQueryParams: QueryParams{{Name: "redirect", Type: "string", Required: true}}},
		},
	}

	got := Flatten([]Route{noActions, action, empty, server, page}, config)

	userID := []PathParam{{Name: "user_id", RawInRoute: "[user_id]"}}
	require.Equal(t, []FinalRoute{
		{
			Variant:     VariantPage,
			RouteKey:    "params_one",
			Key:         "params_one",
			BaseURL:     "/[one]",
			PathParams:  []PathParam{{Name: "one", RawInRoute: "[one]"}},
			QueryParams: QueryParams{{Name: "tab", Type: "string"}},
		},
		{
			Variant:     VariantServer,
			RouteKey:    "api_health",
			Key:         "api_health_GET",
			BaseURL:     "/api/health",
			QueryParams: QueryParams{{Name: "verbose", Type: "'1'"}},
		},
		{
			Variant:  VariantServer,
			RouteKey: "api_health",
			Key:      "api_health_HEAD",
			BaseURL:  "/api/health",
		},
		{
			Variant:     VariantAction,
			RouteKey:    "users_id_user_id",
			Key:         "users_id_user_id_create",
			BaseURL:     "/users/id=[user_id]",
			URLSuffix:   "?/create",
			PathParams:  userID,
			QueryParams: QueryParams{{Name: "redirect", Type: "string", Required: true}},
		},
		{
			Variant:    VariantAction,
			RouteKey:   "users_id_user_id",
			Key:        "users_id_user_id_default",
			BaseURL:    "/users/id=[user_id]",
			PathParams: userID,
		},
	}, got)

	require.Equal(t, "PAGE_params_one", got[0].Identifier())
	require.Equal(t, "ACTION_users_id_user_id_create", got[3].Identifier())
	require.Equal(t, "/users/id=[user_id]?/create", got[3].URL())
}

func TestFlattenEndToEndAction(t *testing.T) {
	r := mustRoute(t, VariantAction, "/users/id=[user_id]")
	r.Names = []string{"create"}

	got := Flatten([]Route{r}, RoutesConfig{})
	require.Len(t, got, 1)
	require.Equal(t, "ACTION_users_id_user_id_create", got[0].Identifier())
	require.Equal(t, "/users/id=[user_id]", got[0].BaseURL)
	require.Equal(t, "?/create", got[0].URLSuffix)
	require.Equal(t, []PathParam{{Name: "user_id", RawInRoute: "[user_id]"}}, got[0].PathParams)
	require.Equal(t, "string", got[0].PathParams[0].Type())
	require.Empty(t, got[0].QueryParams)
}

func TestFlattenDeterministic(t *testing.T) {
	a := mustRoute(t, VariantServer, "/[...rest]")
	a.Methods = []string{"GET", "POST"}
	b := mustRoute(t, VariantPage, "/about")
	c := mustRoute(t, VariantPage, "/")
	routes := []Route{a, b, c}

	first := Flatten(routes, RoutesConfig{})
	second := Flatten(routes, RoutesConfig{})
	require.Equal(t, first, second)
	require.Equal(t, []string{"GET", "POST"}, routes[0].Methods)
}

func TestFinalRouteParams(t *testing.T) {
	rest := PathParam{Name: "rest", Multi: true}
	one := PathParam{Name: "one"}

	r := FinalRoute{PathParams: []PathParam{rest}, QueryParams: QueryParams{{Name: "a"}}}
	require.Equal(t, 2, r.ParamCount())
	require.True(t, r.AllOptional())
	require.Equal(t, []string{"rest", "a"}, r.ParamNames())

	r.QueryParams[0].Required = true
	require.False(t, r.AllOptional())

	r = FinalRoute{PathParams: []PathParam{rest, one}}
	require.False(t, r.AllOptional())
}

func TestMatchers(t *testing.T) {
	routes := []Route{
		mustRoute(t, VariantPage, "/a/[id=int]"),
		mustRoute(t, VariantPage, "/b/[id=int]/[slug=slug]"),
		mustRoute(t, VariantPage, "/c/[any]"),
	}
	require.Equal(t, []string{"int", "slug"}, Matchers(routes))
	require.Empty(t, Matchers(nil))
}

func TestGroupByRouteKey(t *testing.T) {
	routes := []FinalRoute{
		{RouteKey: "b", Key: "b"},
		{RouteKey: "a", Key: "a_GET"},
		{RouteKey: "b", Key: "b_create"},
	}
	keys, groups := GroupByRouteKey(routes)
	require.Equal(t, []string{"b", "a"}, keys)
	require.Len(t, groups["b"], 2)
	require.Len(t, groups["a"], 1)
}

func TestRoutesConfigYAML(t *testing.T) {
	const src = `
PAGES:
  search:
    explicitQueryParams:
      query: {type: string, required: true}
      page: {type: number}
      sort: {type: "'asc' | 'desc'"}
ACTIONS:
  users_login:
    explicitQueryParams:
      next: {type: string}
`
	var config RoutesConfig
	require.NoError(t, yaml.Unmarshal([]byte(src), &config))

	require.Equal(t, QueryParams{
		{Name: "query", Type: "string", Required: true},
		{Name: "page", Type: "number"},
		{Name: "sort", Type: "'asc' | 'desc'"},
	}, config.QueryParamsFor(VariantPage, "search"))
	require.Equal(t, QueryParams{{Name: "next", Type: "string"}},
		config.QueryParamsFor(VariantAction, "users_login"))
	require.Empty(t, config.QueryParamsFor(VariantServer, "users_login"))

	out, err := yaml.Marshal(config.Pages["search"])
	require.NoError(t, err)

	var back RouteOverride
	require.NoError(t, yaml.Unmarshal(out, &back))
	require.Equal(t, config.Pages["search"], back)
}

func TestQueryParamsYAMLNotMapping(t *testing.T) {
	var o RouteOverride
	err := yaml.Unmarshal([]byte("explicitQueryParams: [a, b]"), &o)
	require.Error(t, err)
}
