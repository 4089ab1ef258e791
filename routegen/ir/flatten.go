package ir

import (
	"fmt"
	"regexp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultAction is the action name that produces no URL suffix.
const DefaultAction = "default"

// SortRoutes returns the routes ordered by variant (pages, endpoints,
// actions) and by key within each variant. Keys are compared with a
// language-neutral collation. The input is not modified.
func SortRoutes(routes []Route) []Route {
	col := collate.New(language.Und)

	sorted := make([]Route, 0, len(routes))
	for _, variant := range Variants {
		start := len(sorted)
		for _, r := range routes {
			if r.Variant == variant {
				sorted = append(sorted, r)
			}
		}
		slices.SortStableFunc(sorted[start:], func(a, b Route) int {
			return col.CompareString(a.Key, b.Key)
		})
	}

	if len(sorted) != len(routes) {
		for _, r := range routes {
			if !r.Variant.Valid() {
				panic(fmt.Errorf("route %q: %w: %q", r.ID, ErrUnknownVariant, string(r.Variant)))
			}
		}
	}

	return sorted
}

var (
	routeGroupPattern = regexp.MustCompile(`\([^/]+?\)`)
	slashRunPattern   = regexp.MustCompile(`/{2,}`)
)

// StripURL removes route groups like "(app)" from a route id and collapses
// the resulting runs of slashes.
func StripURL(routeID string) string {
	url := routeGroupPattern.ReplaceAllString(routeID, "")
	return slashRunPattern.ReplaceAllString(url, "/")
}

// Flatten expands route descriptors into final routes: one per page, one per
// endpoint method and one per action name. Endpoints without methods and
// actions without names produce nothing. The result is sorted as by
// SortRoutes and depends only on its inputs.
func Flatten(routes []Route, config RoutesConfig) []FinalRoute {
	var final []FinalRoute

	for _, r := range SortRoutes(routes) {
		base := FinalRoute{
			Variant:    r.Variant,
			RouteKey:   r.Key,
			BaseURL:    StripURL(r.ID),
			PathParams: r.PathParams,
		}

		switch r.Variant {
		case VariantPage:
			fr := base
			fr.Key = r.Key
			fr.QueryParams = config.QueryParamsFor(r.Variant, fr.Key)
			final = append(final, fr)

		case VariantServer:
			for _, method := range r.Methods {
				fr := base
				fr.Key = r.Key + "_" + method
				fr.QueryParams = config.QueryParamsFor(r.Variant, fr.Key)
				final = append(final, fr)
			}

		case VariantAction:
			for _, name := range r.Names {
				fr := base
				fr.Key = r.Key + "_" + name
				if name != DefaultAction {
					fr.URLSuffix = "?/" + name
				}
				fr.QueryParams = config.QueryParamsFor(r.Variant, fr.Key)
				final = append(final, fr)
			}

		default:
			panic(fmt.Errorf("route %q: %w: %q", r.ID, ErrUnknownVariant, string(r.Variant)))
		}
	}

	return final
}

// GroupByRouteKey splits final routes by the key of their descriptor,
// keeping the order of first appearance.
func GroupByRouteKey(routes []FinalRoute) (keys []string, groups map[string][]FinalRoute) {
	groups = make(map[string][]FinalRoute)
	for _, r := range routes {
		if _, ok := groups[r.RouteKey]; !ok {
			keys = append(keys, r.RouteKey)
		}
		groups[r.RouteKey] = append(groups[r.RouteKey], r)
	}
	return keys, groups
}

// Matchers returns the distinct matcher names referenced by any path
// parameter, sorted.
func Matchers(routes []Route) []string {
	var matchers []string
	for _, r := range routes {
		for _, p := range r.PathParams {
			if p.Matcher != "" {
				matchers = append(matchers, p.Matcher)
			}
		}
	}
	slices.Sort(matchers)
	return slices.Compact(matchers)
}
