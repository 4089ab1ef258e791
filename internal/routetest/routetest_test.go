package routetest

import (
	"os"
	"path/filepath"
	"testing"
)

const fixture = `comment is ignored
-- +page.svelte --
<h1>home</h1>
-- api/[...path]/+server.ts --
export const GET = () => new Response();
-- about/+page.svelte --
`

func TestParse(t *testing.T) {
	fsys := Parse(t, fixture)

	if len(fsys) != 3 {
		t.Fatalf("got %d files, want 3", len(fsys))
	}
	if got := string(fsys["api/[...path]/+server.ts"].Data); got != "export const GET = () => new Response();\n" {
		t.Errorf("unexpected server source %q", got)
	}
	if f := fsys["about/+page.svelte"]; f == nil || len(f.Data) != 0 {
		t.Errorf("expected empty about page, got %+v", f)
	}
}

func TestWriteDir(t *testing.T) {
	dir := WriteDir(t, Parse(t, fixture))

	data, err := os.ReadFile(filepath.Join(dir, "api", "[...path]", "+server.ts"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "export const GET = () => new Response();\n" {
		t.Errorf("unexpected content %q", data)
	}
	if _, err := os.Stat(filepath.Join(dir, "about", "+page.svelte")); err != nil {
		t.Errorf("about page not written: %v", err)
	}
}
