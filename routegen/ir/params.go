package ir

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	// ErrOptionalParam is returned for route ids using the [[name]] syntax.
	ErrOptionalParam = errors.New("optional path parameters are not supported")

	// ErrDuplicateParam is returned when a route id repeats a parameter name.
	ErrDuplicateParam = errors.New("duplicate path parameter")
)

var (
	optionalParamPattern = regexp.MustCompile(`\[\[.+\]\]`)
	pathParamPattern     = regexp.MustCompile(`\[(.+?)(?:=(.+?))?\]`)
)

// ParsePathParams extracts the path parameters of a route id in order of
// appearance.
func ParsePathParams(routeID string) ([]PathParam, error) {
	if optionalParamPattern.MatchString(routeID) {
		return nil, ErrOptionalParam
	}

	var params []PathParam
	seen := make(map[string]bool)

	for _, m := range pathParamPattern.FindAllStringSubmatch(routeID, -1) {
		raw, name, matcher := m[0], m[1], m[2]

		multi := false
		if rest, ok := strings.CutPrefix(name, "..."); ok {
			name = rest
			multi = true
		}
		if name == "" {
			continue
		}

		name = MakeIdentifier(name)
		if seen[name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateParam, name)
		}
		seen[name] = true

		params = append(params, PathParam{
			Name:       name,
			RawInRoute: raw,
			Matcher:    matcher,
			Multi:      multi,
		})
	}

	return params, nil
}

// JavaScript reserved words.
var reservedWords = map[string]bool{
	"break":      true,
	"case":       true,
	"catch":      true,
	"class":      true,
	"const":      true,
	"continue":   true,
	"debugger":   true,
	"default":    true,
	"delete":     true,
	"do":         true,
	"else":       true,
	"enum":       true,
	"export":     true,
	"extends":    true,
	"false":      true,
	"finally":    true,
	"for":        true,
	"function":   true,
	"if":         true,
	"implements": true,
	"import":     true,
	"in":         true,
	"instanceof": true,
	"interface":  true,
	"let":        true,
	"new":        true,
	"null":       true,
	"package":    true,
	"private":    true,
	"protected":  true,
	"public":     true,
	"return":     true,
	"static":     true,
	"super":      true,
	"switch":     true,
	"this":       true,
	"throw":      true,
	"true":       true,
	"try":        true,
	"typeof":     true,
	"var":        true,
	"void":       true,
	"while":      true,
	"with":       true,
	"yield":      true,
}

// MakeIdentifier turns a parameter name into a valid JavaScript identifier.
// Names starting with a digit or a hyphen get a leading underscore, other
// invalid characters become underscores and reserved words get a trailing one.
func MakeIdentifier(name string) string {
	if name == "" {
		return "_"
	}

	var b strings.Builder
	if name[0] == '-' || unicode.IsDigit(rune(name[0])) {
		b.WriteByte('_')
	}
	for _, r := range name {
		if IsIdentifierRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}

	id := b.String()
	if reservedWords[id] {
		return id + "_"
	}
	return id
}

// IsIdentifierRune reports whether r may appear in an identifier.
func IsIdentifierRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$'
}

// IsIdentifier reports whether s is a valid, non-reserved identifier.
func IsIdentifier(s string) bool {
	if s == "" || unicode.IsDigit(rune(s[0])) || reservedWords[s] {
		return false
	}
	for _, r := range s {
		if !IsIdentifierRune(r) {
			return false
		}
	}
	return true
}
