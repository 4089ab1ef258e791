package typescript

import (
	"iter"
	"strings"

	"github.com/fehnomenal/sveltekit-gen-routes/routegen/ir"
)

// Signal is returned by route callbacks to control the traversal.
type Signal int

const (
	// Continue proceeds with the next route.
	Continue Signal = iota

	// Stop ends the traversal after the separator of the current route.
	Stop
)

// PlainFunc emits the lines of a route without path or query parameters.
type PlainFunc func(emit func(string), r ir.FinalRoute) Signal

// ParamFunc emits the lines of a route with parameters. url is the base URL
// of r after placeholder substitution, or r.BaseURL when no placeholder
// function was given.
type ParamFunc func(emit func(string), r ir.FinalRoute, url string) Signal

// PlaceholderFunc returns the text replacing a path parameter in the base
// URL. r is the unmodified route the parameter belongs to.
type PlaceholderFunc func(p ir.PathParam, r ir.FinalRoute) string

// Traverse walks the final routes in order and yields the lines emitted by
// plain or withParams for each of them, followed by an empty separator line.
// placeholder may be nil. The sequence holds no state and can be iterated
// any number of times.
func Traverse(routes []ir.FinalRoute, plain PlainFunc, placeholder PlaceholderFunc, withParams ParamFunc) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, r := range routes {
			done := false
			emit := func(line string) {
				if !done && !yield(line) {
					done = true
				}
			}

			var sig Signal
			if r.ParamCount() == 0 {
				sig = plain(emit, r)
			} else {
				url := r.BaseURL
				if placeholder != nil {
					url = ReplacePathParams(url, r.PathParams, func(p ir.PathParam) string {
						return placeholder(p, r)
					})
				}
				sig = withParams(emit, r, url)
			}

			if done || !yield("") || sig == Stop {
				return
			}
		}
	}
}

// ReplacePathParams replaces the first occurrence of every parameter in url.
// For rest parameters the leading slash is part of the replaced text, so a
// replacement can add it back only when there are segments to join.
func ReplacePathParams(url string, params []ir.PathParam, replace func(ir.PathParam) string) string {
	for _, p := range params {
		search := p.RawInRoute
		if p.Multi {
			search = "/" + search
		}
		url = strings.Replace(url, search, replace(p), 1)
	}
	return url
}

// baseURLString renders url as the body of a template literal prefixed by the
// interpolated baseName. A trailing slash is dropped except for the root.
func baseURLString(baseName, url string) string {
	if url != "/" {
		url = strings.TrimSuffix(url, "/")
	}
	return "${" + baseName + "}" + url
}

// JoinLines joins lines with lineEnding, trims surrounding whitespace and
// terminates the result with a single lineEnding.
func JoinLines(lines []string, lineEnding string) string {
	return strings.TrimSpace(strings.Join(lines, lineEnding)) + lineEnding
}

// LineTerminator maps a line ending name ("lf" or "crlf") to its characters.
// Anything else yields "\n".
func LineTerminator(name string) string {
	if name == "crlf" {
		return "\r\n"
	}
	return "\n"
}
