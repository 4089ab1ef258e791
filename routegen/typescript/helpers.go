package typescript

// Default import specifiers of the runtime modules shipped with the package.
const (
	DefaultHelpersModule = "@fehnomenal/sveltekit-gen-routes/helpers"
	DefaultTypesModule   = "@fehnomenal/sveltekit-gen-routes/types"
)

// HelpersModule returns the source of the runtime helpers imported by route
// modules. Falsy values are dropped, arrays repeat their key and explicit
// query params are appended after the caller's bag without overwriting it.
func HelpersModule() []string {
	return []string{
		"const createSearchFromParams = (params, char = '?') => {",
		"  const search = params.toString();",
		"  return search ? char + search : '';",
		"};",
		"",
		"const createSearchFromArray = (params, char) => {",
		"  const search = new URLSearchParams();",
		"  for (const [name, val] of params) {",
		"    if (Array.isArray(val)) {",
		"      for (const v of val) {",
		"        if (v) {",
		"          search.append(name, v);",
		"        }",
		"      }",
		"    } else if (val) {",
		"      search.append(name, val);",
		"    }",
		"  }",
		"  return createSearchFromParams(search, char);",
		"};",
		"",
		"const entriesOf = (params) => {",
		"  if (Array.isArray(params)) {",
		"    return params;",
		"  } else if (params instanceof URLSearchParams) {",
		"    return [...params.entries()];",
		"  } else if (params) {",
		"    return Object.entries(params);",
		"  }",
		"  return [];",
		"};",
		"",
		"const createSearch = (params, char) => createSearchFromArray(entriesOf(params), char);",
		"",
		"const createSearchExtra = (params, extra, char) =>",
		"  createSearchFromArray([...entriesOf(params), ...Object.entries(extra)], char);",
		"",
		"export const " + RouteQueryName + " = (url, char) => (q) => url + createSearch(q, char);",
		"export const " + RouteQueryParamName + " = (url, q, char) => url + createSearch(q, char);",
		"export const " + RouteQueryExtraName + " = (url, q, extra, char) => url + createSearchExtra(q, extra, char);",
		"export const " + JoinSegmentsName + " = (segments) =>",
		"  segments ? [segments].flat().filter(Boolean).map((s) => '/' + s).join('') : '';",
	}
}

// HelpersDeclaration returns the type declarations of HelpersModule.
func HelpersDeclaration(typesModule string) []string {
	return []string{
		"import type { QueryParams } from '" + typesModule + "';",
		"",
		"export declare const " + RouteQueryName + ": (url: string, char?: string) => (q: QueryParams) => string;",
		"export declare const " + RouteQueryParamName + ": (url: string, q: QueryParams | undefined, char?: string) => string;",
		"export declare const " + RouteQueryExtraName + ": (",
		"  url: string,",
		"  q: QueryParams | undefined,",
		"  extra: Record<string, string | string[] | undefined>,",
		"  char?: string,",
		") => string;",
		"export declare const " + JoinSegmentsName + ": (segments: string | string[] | undefined) => string;",
	}
}

// TypesDeclaration returns the shared types referenced by the ambient
// declaration file.
func TypesDeclaration() []string {
	return []string{
		"import type { base } from '$app/paths';",
		"",
		"export type Base = typeof base;",
		"",
		"export type ParamOfMatcher<T extends (...args: any) => any> = T extends (param: any) => param is infer P",
		"  ? P",
		"  : string;",
		"",
		"export type QueryParams =",
		"  | URLSearchParams",
		"  | Record<string, string | string[] | undefined>",
		"  | [string, string | string[] | undefined][];",
	}
}
