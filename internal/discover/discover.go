// Package discover finds route files in a SvelteKit routes directory.
//
// A route file is recognized by its name alone:
//   - +server.js / +server.ts          endpoint
//   - +page.svelte / +page@layout.svelte page component
//   - +page.js / +page.ts              page script
//   - +page.server.js / +page.server.ts page server script (form actions)
package discover

import (
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/fehnomenal/sveltekit-gen-routes/routegen/ir"
)

// FileType is the kind of a route file.
type FileType int

const (
	FileTypeNone             FileType = iota
	FileTypeServerEndpoint            // +server.(js|ts)
	FileTypePageComponent             // +page(@layout).svelte
	FileTypePageScript                // +page.(js|ts)
	FileTypePageServerScript          // +page.server.(js|ts)
)

func (t FileType) String() string {
	switch t {
	case FileTypeServerEndpoint:
		return "server endpoint"
	case FileTypePageComponent:
		return "page component"
	case FileTypePageScript:
		return "page script"
	case FileTypePageServerScript:
		return "page server script"
	default:
		return "none"
	}
}

// Variant returns the route variant a file of this type defines.
func (t FileType) Variant() (ir.Variant, bool) {
	switch t {
	case FileTypeServerEndpoint:
		return ir.VariantServer, true
	case FileTypePageComponent, FileTypePageScript:
		return ir.VariantPage, true
	case FileTypePageServerScript:
		return ir.VariantAction, true
	default:
		return "", false
	}
}

// HasSource reports whether the route is derived from the file's contents.
func (t FileType) HasSource() bool {
	return t == FileTypeServerEndpoint || t == FileTypePageServerScript
}

var (
	serverEndpointPattern   = regexp.MustCompile(`^\+server\.(js|ts)$`)
	pageComponentPattern    = regexp.MustCompile(`^\+page(@.*?)?\.svelte$`)
	pageScriptPattern       = regexp.MustCompile(`^\+page\.(js|ts)$`)
	pageServerScriptPattern = regexp.MustCompile(`^\+page\.server\.(js|ts)$`)
)

// Classify returns the type of the file at the slash-separated path p.
// Only the base name is considered.
func Classify(p string) FileType {
	name := path.Base(p)
	switch {
	case serverEndpointPattern.MatchString(name):
		return FileTypeServerEndpoint
	case pageComponentPattern.MatchString(name):
		return FileTypePageComponent
	case pageScriptPattern.MatchString(name):
		return FileTypePageScript
	case pageServerScriptPattern.MatchString(name):
		return FileTypePageServerScript
	default:
		return FileTypeNone
	}
}

// File is a route file found in the routes directory.
type File struct {
	// Path is slash-separated and relative to the routes directory.
	Path string
	Type FileType
}

// RouteID returns the id of the route the file belongs to.
func (f File) RouteID() string {
	return ir.RouteID(f.Path)
}

// Find returns the route files of fsys, sorted by path.
func Find(fsys fs.FS) ([]File, error) {
	matches, err := doublestar.Glob(fsys, "**/+*", doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("find route files: %w", err)
	}
	slices.Sort(matches)

	var files []File
	for _, m := range matches {
		if t := Classify(m); t != FileTypeNone {
			files = append(files, File{Path: m, Type: t})
		}
	}
	return files, nil
}
