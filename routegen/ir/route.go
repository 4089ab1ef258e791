// Package ir defines the route model shared by the resolver and the emitters:
// route descriptors discovered from a routes directory, their path parameters,
// per-route configuration, and the flattened final routes the emitters consume.
package ir

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownVariant is raised when a switch over Variant meets a value outside
// the closed set. Valid input never triggers it.
var ErrUnknownVariant = errors.New("unknown route variant")

// Variant identifies the kind of a route descriptor.
type Variant string

const (
	// VariantPage is a page with exactly one URL.
	VariantPage Variant = "PAGE"

	// VariantServer is an endpoint exporting one or more HTTP method handlers.
	VariantServer Variant = "SERVER"

	// VariantAction is a page server script exporting form actions.
	VariantAction Variant = "ACTION"
)

// Variants lists all variants in emission order.
var Variants = []Variant{VariantPage, VariantServer, VariantAction}

// Valid reports whether v is one of the known variants.
func (v Variant) Valid() bool {
	return slices.Contains(Variants, v)
}

// Group returns the configuration and metadata group name of the variant
// (PAGES, SERVERS or ACTIONS).
func (v Variant) Group() string {
	switch v {
	case VariantPage, VariantServer, VariantAction:
		return string(v) + "S"
	default:
		panic(fmt.Errorf("%w: %q", ErrUnknownVariant, string(v)))
	}
}

// String returns the variant name.
func (v Variant) String() string {
	return string(v)
}

// PathParam is one placeholder of a route pattern like [id], [id=int] or [...rest].
type PathParam struct {
	// Name is the parameter as a valid identifier.
	Name string

	// RawInRoute is the exact text matched in the route id, e.g. "[id=int]".
	RawInRoute string

	// Matcher is the name of the param matcher after "=". Empty means untyped.
	Matcher string

	// Multi marks rest parameters ([...name]) capturing zero or more segments.
	Multi bool
}

// Type returns the declared type of the parameter value.
func (p PathParam) Type() string {
	switch {
	case p.Multi:
		return "string | string[]"
	case p.Matcher != "":
		return "Param_" + p.Matcher
	default:
		return "string"
	}
}

// Route is one route descriptor discovered in the routes directory.
//
// Methods is only meaningful for VariantServer and Names only for
// VariantAction. Both are kept sorted.
type Route struct {
	Variant Variant

	// ID is the slash-separated route id, including route groups like "(app)".
	ID string

	// Key is the identifier-safe slug of ID. The root route uses "_ROOT".
	Key string

	PathParams []PathParam

	// Methods are the upper-case HTTP methods exported by an endpoint.
	Methods []string

	// Names are the exported form action names. "default" produces no URL suffix.
	Names []string
}

// NewRoute creates a descriptor for the route id, parsing its path parameters.
func NewRoute(variant Variant, id string) (Route, error) {
	if !variant.Valid() {
		return Route{}, fmt.Errorf("route %q: %w: %q", id, ErrUnknownVariant, string(variant))
	}
	params, err := ParsePathParams(id)
	if err != nil {
		return Route{}, fmt.Errorf("route %q: %w", id, err)
	}
	return Route{
		Variant:    variant,
		ID:         id,
		Key:        RouteKey(id),
		PathParams: params,
	}, nil
}

// Clone returns a deep copy of r.
func (r Route) Clone() Route {
	r.PathParams = slices.Clone(r.PathParams)
	r.Methods = slices.Clone(r.Methods)
	r.Names = slices.Clone(r.Names)
	return r
}

// FinalRoute is one concrete route: a page, one method of an endpoint or one
// action of a page server script. Emitters consume final routes only.
type FinalRoute struct {
	Variant Variant

	// RouteKey is the key of the originating descriptor. All final routes of
	// one descriptor key share a route module.
	RouteKey string

	// Key is the composite key: RouteKey, followed by "_<method>" or "_<action>"
	// for endpoints and actions.
	Key string

	// BaseURL is the route id with route groups removed and slashes collapsed.
	BaseURL string

	// URLSuffix is "?/<action>" for named actions, empty otherwise.
	URLSuffix string

	PathParams  []PathParam
	QueryParams QueryParams
}

// Identifier returns the export name of the route, "<VARIANT>_<key>".
func (r FinalRoute) Identifier() string {
	return string(r.Variant) + "_" + r.Key
}

// URL returns the base URL followed by the suffix.
func (r FinalRoute) URL() string {
	return r.BaseURL + r.URLSuffix
}

// ParamCount returns the number of path and explicit query parameters.
func (r FinalRoute) ParamCount() int {
	return len(r.PathParams) + len(r.QueryParams)
}

// AllOptional reports whether every parameter may be omitted by callers:
// all path parameters are rest parameters and no query parameter is required.
func (r FinalRoute) AllOptional() bool {
	for _, p := range r.PathParams {
		if !p.Multi {
			return false
		}
	}
	for _, q := range r.QueryParams {
		if q.Required {
			return false
		}
	}
	return true
}

// ParamNames returns path parameter names followed by query parameter names.
func (r FinalRoute) ParamNames() []string {
	names := make([]string, 0, r.ParamCount())
	for _, p := range r.PathParams {
		names = append(names, p.Name)
	}
	for _, q := range r.QueryParams {
		names = append(names, q.Name)
	}
	return names
}
