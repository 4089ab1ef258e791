package ir

import (
	"path"
	"regexp"
	"strings"

	"github.com/gosimple/slug"
)

// RootKey is the key of the root route "/".
const RootKey = "_ROOT"

// RouteID returns the route id of a file given by its slash-separated path
// relative to the routes directory: "api/health/+server.js" has the id
// "/api/health", files directly in the routes directory have the id "/".
func RouteID(relPath string) string {
	return path.Dir("/" + strings.ReplaceAll(relPath, "\\", "/"))
}

var (
	camelBoundary    = regexp.MustCompile(`([a-z\d])([A-Z])`)
	acronymBoundary  = regexp.MustCompile(`([A-Z]+)([A-Z][a-rt-z\d]+)`)
	separatorRuns    = regexp.MustCompile(`[-_]+`)
	keySubstitutions = map[string]string{"&": " and ", "@": " at "}
)

// RouteKey returns the identifier-safe key of a route id: a lower-case slug
// joined by underscores. The root route gets RootKey.
func RouteKey(routeID string) string {
	if routeID == "/" {
		return RootKey
	}

	s := acronymBoundary.ReplaceAllString(routeID, "$1 $2")
	s = camelBoundary.ReplaceAllString(s, "$1 $2")

	s = slug.Substitute(s, keySubstitutions)
	s = slug.Make(s)
	s = separatorRuns.ReplaceAllString(s, "_")

	return strings.Trim(s, "_")
}
