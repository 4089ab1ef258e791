// Package genroutes builds query strings with the same merge semantics as the
// runtime helpers imported by generated route modules, so Go code can link
// to SvelteKit routes the way the generated functions do.
//
// Query parameters come from a Source: ordered Pairs, a Map, url.Values or a
// tagged struct. Empty values are dropped, repeated values repeat their key
// and explicitly declared parameters are appended after the caller's
// parameters without replacing them.
package genroutes

import (
	"net/url"
	"slices"
	"strings"

	"github.com/gorilla/schema"
)

// DefaultSeparator prefixes a non-empty query string.
const DefaultSeparator = "?"

// Pair is one query parameter. Each value is emitted as its own name=value
// entry; empty values are skipped.
type Pair struct {
	Name   string
	Values []string
}

// P returns a pair for name with the given values.
func P(name string, values ...string) Pair {
	return Pair{Name: name, Values: values}
}

// Source provides query parameters in emission order.
type Source interface {
	Entries() []Pair
}

// Pairs is an ordered list of query parameters.
type Pairs []Pair

// Entries implements Source.
func (p Pairs) Entries() []Pair {
	return p
}

// Map holds query parameters by name. Entries are ordered by name.
type Map map[string][]string

// Entries implements Source.
func (m Map) Entries() []Pair {
	return sortedPairs(m)
}

// Values adapts url.Values. Entries are ordered by name, as url.Values.Encode does.
type Values url.Values

// Entries implements Source.
func (v Values) Entries() []Pair {
	return sortedPairs(v)
}

func sortedPairs[M ~map[string][]string](m M) []Pair {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)

	pairs := make([]Pair, len(names))
	for i, name := range names {
		pairs[i] = Pair{Name: name, Values: m[name]}
	}
	return pairs
}

var structEncoder = schema.NewEncoder()

// Struct encodes the exported fields of a struct (or pointer to struct) into
// a Source. Field names follow the "schema" tag.
func Struct(v any) (Source, error) {
	values := make(map[string][]string)
	if err := structEncoder.Encode(v, values); err != nil {
		return nil, err
	}
	return Map(values), nil
}

// Search renders q as a query string prefixed by sep, or DefaultSeparator
// when sep is empty. It returns "" when no value remains. A nil q yields "".
func Search(q Source, sep string) string {
	return search(entriesOf(q), sep)
}

// SearchExtra renders the entries of q followed by those of extra. Keys
// present in both appear once per value, in that order.
func SearchExtra(q Source, extra Source, sep string) string {
	return search(append(slices.Clone(entriesOf(q)), entriesOf(extra)...), sep)
}

// RouteQuery returns a function appending a query string to route.
func RouteQuery(route, sep string) func(q Source) string {
	return func(q Source) string {
		return route + Search(q, sep)
	}
}

// RouteQueryParam appends the query string of q to route.
func RouteQueryParam(route string, q Source, sep string) string {
	return route + Search(q, sep)
}

// RouteQueryExtra appends the query string of q merged with extra to route.
func RouteQueryExtra(route string, q Source, extra Source, sep string) string {
	return route + SearchExtra(q, extra, sep)
}

// JoinSegments joins the non-empty segments, each preceded by a slash.
// No segments yield "".
func JoinSegments(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		if s != "" {
			b.WriteByte('/')
			b.WriteString(s)
		}
	}
	return b.String()
}

func entriesOf(q Source) []Pair {
	if q == nil {
		return nil
	}
	return q.Entries()
}

func search(pairs []Pair, sep string) string {
	var b strings.Builder
	for _, p := range pairs {
		name := url.QueryEscape(p.Name)
		for _, v := range p.Values {
			if v == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(name)
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	if b.Len() == 0 {
		return ""
	}
	if sep == "" {
		sep = DefaultSeparator
	}
	return sep + b.String()
}
