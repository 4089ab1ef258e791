package typescript

import (
	"fmt"
	"iter"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fehnomenal/sveltekit-gen-routes/routegen/ir"
)

// DeclarationOptions configures the ambient declaration file.
type DeclarationOptions struct {
	// ModuleName is the declared module, e.g. "$routes".
	ModuleName string

	// DeclarationPath is the path the declaration file is written to.
	DeclarationPath string

	// MatchersDir is the directory holding the param matcher modules.
	MatchersDir string

	// TypesModule is the import specifier of the shared route types.
	TypesModule string

	// TypesImport, when set, is the path of an emitted types module relative
	// to the declaration file. The shared types are then aliased from it and
	// TypesModule is not used.
	TypesImport string
}

// DeclarationFile returns the lines of the ambient module declaration
// describing every export of the index module, followed by the ROUTES
// metadata type.
func DeclarationFile(routes []ir.Route, config ir.RoutesConfig, opts DeclarationOptions) ([]string, error) {
	prelude, err := preludeDecls(routes, opts)
	if err != nil {
		return nil, err
	}

	final := ir.Flatten(routes, config)

	var inner []string
	inner = append(inner, prelude...)
	inner = slices.AppendSeq(inner, routeDecls(final))
	inner = append(inner, RoutesMeta(final)...)
	inner = append(inner, "", "export {};")

	lines := []string{
		"/* eslint-disable */",
		"// prettier-ignore",
		"declare module '" + opts.ModuleName + "' {",
	}
	for _, l := range inner {
		lines = append(lines, strings.TrimRight("  "+l, " \t"))
	}
	return append(lines, "}"), nil
}

func preludeDecls(routes []ir.Route, opts DeclarationOptions) ([]string, error) {
	lines := []string{
		"import type { Base, ParamOfMatcher, QueryParams } from '" + opts.TypesModule + "';",
		"",
	}
	if opts.TypesImport != "" {
		// Relative imports are not allowed inside an ambient module.
		types := "import('" + opts.TypesImport + "')"
		lines = []string{
			"type Base = " + types + ".Base;",
			"type ParamOfMatcher<T extends (...args: any) => any> = " + types + ".ParamOfMatcher<T>;",
			"type QueryParams = " + types + ".QueryParams;",
			"",
		}
	}

	matchers := ir.Matchers(routes)
	if len(matchers) > 0 {
		prefix, err := filepath.Rel(filepath.Dir(opts.DeclarationPath), opts.MatchersDir)
		if err != nil {
			return nil, fmt.Errorf("locate param matchers: %w", err)
		}
		prefix = filepath.ToSlash(prefix)

		for _, m := range matchers {
			lines = append(lines, "type Param_"+m+" = ParamOfMatcher<typeof import('./"+prefix+"/"+m+".js').match>;")
		}
	}

	return append(lines, ""), nil
}

func routeDecls(routes []ir.FinalRoute) iter.Seq[string] {
	return Traverse(routes,
		func(emit func(string), r ir.FinalRoute) Signal {
			url := baseURLString("Base", r.URL())
			emit("export const " + r.Identifier() + ": `" + url + "`;")
			emit("export function " + r.Identifier() + "_query(")
			emit("  queryParams: QueryParams,")
			emit("): `" + url + "${string /* queryParams */}`;")
			return Continue
		},
		declarationPlaceholder,
		func(emit func(string), r ir.FinalRoute, url string) Signal {
			members := make([]string, 0, r.ParamCount())
			for _, p := range r.PathParams {
				members = append(members, pathParamMember(p))
			}
			for _, q := range r.QueryParams {
				members = append(members, queryParamMember(q))
			}

			emit("export function " + r.Identifier() + "(")
			if len(members) == 1 {
				emit("  " + members[0] + ",")
			} else {
				if r.AllOptional() {
					emit("  params?: {")
				} else {
					emit("  params: {")
				}
				for _, m := range members {
					emit("    " + m + ",")
				}
				emit("  },")
			}
			emit("  queryParams?: QueryParams,")
			emit("): `" + baseURLString("Base", url+r.URLSuffix) + "${string /* queryParams */}`;")
			return Continue
		},
	)
}

// declarationPlaceholder renders a path parameter inside a template literal
// type. Rest parameters may join any number of segments and become string.
func declarationPlaceholder(p ir.PathParam, r ir.FinalRoute) string {
	name := p.Name
	if r.ParamCount() > 1 {
		name = "params." + name
	}
	if p.Multi {
		return "${string /* " + name + " */}"
	}
	return "${typeof " + name + "}"
}

func pathParamMember(p ir.PathParam) string {
	if p.Multi {
		return p.Name + "?: " + p.Type()
	}
	return p.Name + ": " + p.Type()
}

func queryParamMember(q ir.QueryParam) string {
	if q.Required {
		return q.Name + ": " + q.Type
	}
	return q.Name + "?: " + q.Type
}

// RoutesMeta returns the ROUTES type mapping every final route key to the
// union of its path parameter names, grouped by variant. Empty groups are
// left out.
func RoutesMeta(routes []ir.FinalRoute) []string {
	lines := []string{"export type ROUTES = {"}

	for _, variant := range ir.Variants {
		var entries []string
		for _, r := range routes {
			if r.Variant != variant {
				continue
			}
			names := "never"
			if len(r.PathParams) > 0 {
				quoted := make([]string, len(r.PathParams))
				for i, p := range r.PathParams {
					quoted[i] = "'" + p.Name + "'"
				}
				names = strings.Join(quoted, " | ")
			}
			entries = append(entries, "    "+r.Key+": "+names+";")
		}
		if len(entries) == 0 {
			continue
		}

		lines = append(lines, "  "+variant.Group()+": {")
		lines = append(lines, entries...)
		lines = append(lines, "  };")
	}

	return append(lines, "};")
}
