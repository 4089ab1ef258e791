package typescript

import (
	"iter"
	"slices"
	"strings"

	"github.com/fehnomenal/sveltekit-gen-routes/routegen/ir"
)

// Names of the runtime helpers imported by route modules.
const (
	JoinSegmentsName    = "joinSegments"
	RouteQueryName      = "routeQuery"
	RouteQueryParamName = "routeQueryParam"
	RouteQueryExtraName = "routeQueryExtra"
)

// extraQueryParamName is the name of the caller-supplied query bag argument.
const extraQueryParamName = "q"

// ModuleOptions configures route module generation.
type ModuleOptions struct {
	// HelpersModule is the import specifier of the runtime helpers module.
	HelpersModule string
}

// IndexModule returns the lines of the barrel module re-exporting every
// final route from its route module "./<moduleName>/<key>.js".
func IndexModule(routes []ir.Route, config ir.RoutesConfig, moduleName string) []string {
	final := ir.Flatten(routes, config)
	return slices.Collect(Traverse(final,
		func(emit func(string), r ir.FinalRoute) Signal {
			id := r.Identifier()
			emit("export { " + id + ", " + id + "_query } from './" + moduleName + "/" + r.RouteKey + ".js';")
			return Continue
		},
		nil,
		func(emit func(string), r ir.FinalRoute, _ string) Signal {
			emit("export { " + r.Identifier() + " } from './" + moduleName + "/" + r.RouteKey + ".js';")
			return Continue
		},
	))
}

// RouteModule returns the lines of the module exporting the final routes of
// the given descriptors, which must share one route key: a shared base route
// builder followed by one export per page, endpoint method or action.
func RouteModule(routes []ir.Route, config ir.RoutesConfig, opts ModuleOptions) []string {
	final := ir.Flatten(routes, config)

	lines := []string{
		"import { base } from '$app/paths';",
		"import { " + strings.Join([]string{JoinSegmentsName, RouteQueryName, RouteQueryParamName, RouteQueryExtraName}, ", ") +
			" } from '" + opts.HelpersModule + "';",
		"",
	}
	lines = slices.AppendSeq(lines, baseRoute(final))
	lines = slices.AppendSeq(lines, routesCode(final))
	return lines
}

// baseRoute emits the "route" binding of the first final route only.
func baseRoute(routes []ir.FinalRoute) iter.Seq[string] {
	return Traverse(routes,
		func(emit func(string), r ir.FinalRoute) Signal {
			emit(BaseRouteWithoutParams(r.BaseURL))
			return Stop
		},
		baseRoutePlaceholder,
		func(emit func(string), r ir.FinalRoute, url string) Signal {
			if len(r.PathParams) == 0 {
				emit(BaseRouteWithoutParams(url))
				return Stop
			}
			emit("const route = (" + strings.Join(pathParamNames(r.PathParams), ", ") + ") => `" + baseURLString("base", url) + "`;")
			return Stop
		},
	)
}

// BaseRouteWithoutParams returns the constant base route for url.
func BaseRouteWithoutParams(url string) string {
	return "const route = `" + baseURLString("base", url) + "`;"
}

// baseRoutePlaceholder interpolates a parameter into the base route builder.
// A rest parameter that is the only path parameter and the last segment falls
// back to "/" so the route never becomes empty.
func baseRoutePlaceholder(p ir.PathParam, r ir.FinalRoute) string {
	if !p.Multi {
		return "${" + p.Name + "}"
	}

	fallback := ""
	if len(r.PathParams) == 1 && isLastSegment(r.BaseURL, p.RawInRoute) {
		fallback = " || '/'"
	}
	return "${" + JoinSegmentsName + "(" + p.Name + ")" + fallback + "}"
}

func isLastSegment(url, segment string) bool {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	var segments []string
	for s := range strings.SplitSeq(url, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return len(segments) > 0 && slices.Index(segments, segment) == len(segments)-1
}

func routesCode(routes []ir.FinalRoute) iter.Seq[string] {
	return Traverse(routes,
		func(emit func(string), r ir.FinalRoute) Signal {
			for _, line := range RouteWithoutParams(r) {
				emit(line)
			}
			return Continue
		},
		nil,
		func(emit func(string), r ir.FinalRoute, _ string) Signal {
			emit(RouteWithParams(r))
			return Continue
		},
	)
}

// RouteWithoutParams returns the exports of a final route without any
// parameters: the route constant and its curried query builder.
func RouteWithoutParams(r ir.FinalRoute) []string {
	var lines []string
	id := r.Identifier()

	route := "route"
	if r.URLSuffix != "" {
		route = "route_" + id
		lines = append(lines, "const "+route+" = `${route}"+r.URLSuffix+"`;")
	}

	return append(lines,
		"export const "+id+" = "+route+";",
		"export const "+id+"_query = "+routeCall(RouteQueryName, route, querySeparatorArg(r.URL()))+";",
	)
}

// RouteWithParams returns the exported function of a final route with path
// or explicit query parameters.
func RouteWithParams(r ir.FinalRoute) string {
	route := "route"
	if len(r.PathParams) > 0 {
		route = "route(" + strings.Join(pathParamNames(r.PathParams), ", ") + ")"
	}
	if r.URLSuffix != "" {
		route = "`${" + route + "}" + r.URLSuffix + "`"
	}

	var b strings.Builder
	b.WriteString("export const ")
	b.WriteString(r.Identifier())
	b.WriteString(" = (")

	names := r.ParamNames()
	if len(names) == 1 {
		b.WriteString(names[0])
	} else {
		b.WriteString("{ ")
		b.WriteString(strings.Join(names, ", "))
		b.WriteString(" }")
		if r.AllOptional() {
			b.WriteString(" = {}")
		}
	}

	b.WriteString(", " + extraQueryParamName + ") => ")

	sep := querySeparatorArg(r.URL())
	if len(r.QueryParams) == 0 {
		b.WriteString(routeCall(RouteQueryParamName, route, extraQueryParamName, sep))
	} else {
		explicit := make([]string, len(r.QueryParams))
		for i, q := range r.QueryParams {
			explicit[i] = q.Name
		}
		b.WriteString(routeCall(RouteQueryExtraName, route, extraQueryParamName, "{ "+strings.Join(explicit, ", ")+" }", sep))
	}

	b.WriteString(";")
	return b.String()
}

func routeCall(fn, url string, args ...string) string {
	parts := []string{url}
	for _, a := range args {
		if a != "" {
			parts = append(parts, a)
		}
	}
	return fn + "(" + strings.Join(parts, ", ") + ")"
}

// querySeparatorArg returns the separator argument for URLs that already
// carry a query string, or "" to use the helper default.
func querySeparatorArg(url string) string {
	if strings.Contains(url, "?") {
		return "'&'"
	}
	return ""
}

func pathParamNames(params []ir.PathParam) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}
