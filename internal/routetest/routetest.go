// Package routetest builds SvelteKit routes directory fixtures for tests.
//
// A fixture is a txtar archive: each file section is one file of the routes
// directory, named by its slash-separated path relative to the directory.
//
//	-- api/[...path]/+server.ts --
//	export const GET = () => new Response();
//	-- about/+page.svelte --
package routetest

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"golang.org/x/tools/txtar"
)

// Parse returns the routes directory described by the txtar archive.
func Parse(t testing.TB, archive string) fstest.MapFS {
	t.Helper()
	return toFS(t, txtar.Parse([]byte(archive)))
}

// Load reads a txtar archive from file and returns the routes directory it
// describes.
func Load(t testing.TB, file string) fstest.MapFS {
	t.Helper()
	a, err := txtar.ParseFile(file)
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return toFS(t, a)
}

func toFS(t testing.TB, a *txtar.Archive) fstest.MapFS {
	t.Helper()
	fsys := make(fstest.MapFS, len(a.Files))
	for _, f := range a.Files {
		if _, dup := fsys[f.Name]; dup {
			t.Fatalf("fixture: duplicate file %q", f.Name)
		}
		fsys[f.Name] = &fstest.MapFile{Data: f.Data, Mode: 0o644}
	}
	return fsys
}

// WriteDir writes fsys below a new temporary directory and returns its path.
func WriteDir(t testing.TB, fsys fstest.MapFS) string {
	t.Helper()
	dir := t.TempDir()
	for name, f := range fsys {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
		if err := os.WriteFile(p, f.Data, 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}
	return dir
}
